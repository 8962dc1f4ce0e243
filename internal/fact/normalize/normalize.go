// Package normalize maps one raw billing export row into a canonical fact.
//
// Billing exports from different providers are heterogeneous and partial data
// is still valuable for cost totals, so every coercer here is total: a bad
// field gets a safe default and the row is always ingested.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	factdomain "github.com/costlens/costlens/internal/fact/domain"
	"gorm.io/datatypes"
)

// Raw field names follow the FOCUS column naming used by the cloud exports.
const (
	FieldProvider             = "ProviderName"
	FieldBillingAccountID     = "BillingAccountId"
	FieldServiceName          = "ServiceName"
	FieldRegionID             = "RegionId"
	FieldSKUID                = "SkuId"
	FieldResourceID           = "ResourceId"
	FieldSubAccountID         = "SubAccountId"
	FieldCommitmentDiscountID = "CommitmentDiscountId"

	FieldChargeCategory    = "ChargeCategory"
	FieldChargeClass       = "ChargeClass"
	FieldChargeDescription = "ChargeDescription"
	FieldChargeFrequency   = "ChargeFrequency"

	FieldConsumedQuantity    = "ConsumedQuantity"
	FieldPricingQuantity     = "PricingQuantity"
	FieldListUnitPrice       = "ListUnitPrice"
	FieldContractedUnitPrice = "ContractedUnitPrice"
	FieldListCost            = "ListCost"
	FieldContractedCost      = "ContractedCost"
	FieldEffectiveCost       = "EffectiveCost"
	FieldBilledCost          = "BilledCost"

	FieldBillingPeriodStart = "BillingPeriodStart"
	FieldBillingPeriodEnd   = "BillingPeriodEnd"
	FieldChargePeriodStart  = "ChargePeriodStart"
	FieldChargePeriodEnd    = "ChargePeriodEnd"

	FieldTags = "Tags"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// Normalize builds a canonical fact from one raw row and its resolved
// dimension keys. Coercion failures never abort the row.
func Normalize(uploadID string, raw map[string]any, dims factdomain.ResolvedDimensions) *factdomain.BillingUsageFact {
	fact := &factdomain.BillingUsageFact{
		UploadID: strings.TrimSpace(uploadID),

		CloudAccountID:       dims.CloudAccountID,
		ServiceID:            dims.ServiceID,
		RegionID:             dims.RegionID,
		SKUID:                dims.SKUID,
		ResourceID:           dims.ResourceID,
		SubAccountID:         dims.SubAccountID,
		CommitmentDiscountID: dims.CommitmentDiscountID,

		ChargeCategory:    Text(raw[FieldChargeCategory]),
		ChargeClass:       Text(raw[FieldChargeClass]),
		ChargeDescription: Text(raw[FieldChargeDescription]),
		ChargeFrequency:   Text(raw[FieldChargeFrequency]),

		ConsumedQuantity:    Number(raw[FieldConsumedQuantity]),
		PricingQuantity:     Number(raw[FieldPricingQuantity]),
		ListUnitPrice:       Number(raw[FieldListUnitPrice]),
		ContractedUnitPrice: Number(raw[FieldContractedUnitPrice]),
		ListCost:            Number(raw[FieldListCost]),
		ContractedCost:      Number(raw[FieldContractedCost]),
		EffectiveCost:       Number(raw[FieldEffectiveCost]),
		BilledCost:          Number(raw[FieldBilledCost]),

		BillingPeriodStart: Time(raw[FieldBillingPeriodStart]),
		BillingPeriodEnd:   Time(raw[FieldBillingPeriodEnd]),
		ChargePeriodStart:  Time(raw[FieldChargePeriodStart]),
		ChargePeriodEnd:    Time(raw[FieldChargePeriodEnd]),

		Tags: Tags(raw[FieldTags]),
	}

	fact.RowHash = factdomain.RowHash(fact)
	return fact
}

// Number coerces any value to a finite float64. NaN, infinities, missing and
// unparsable input all become 0. Negative values are kept as-is.
func Number(value any) float64 {
	var parsed float64
	switch typed := value.(type) {
	case nil:
		return 0
	case float64:
		parsed = typed
	case float32:
		parsed = float64(typed)
	case int:
		parsed = float64(typed)
	case int32:
		parsed = float64(typed)
	case int64:
		parsed = float64(typed)
	case uint64:
		parsed = float64(typed)
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return 0
		}
		parsed = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0
		}
		parsed = f
	case bool:
		if typed {
			parsed = 1
		}
	default:
		return 0
	}

	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}

// Text coerces any value to an optional string. Nil input stays absent
// instead of becoming the literal "null" or "<nil>".
func Text(value any) *string {
	switch typed := value.(type) {
	case nil:
		return nil
	case string:
		return &typed
	default:
		rendered := fmt.Sprintf("%v", typed)
		return &rendered
	}
}

// Time coerces any value to an optional absolute timestamp. Unparsable input
// stays absent; no date is ever fabricated.
func Time(value any) *time.Time {
	switch typed := value.(type) {
	case nil:
		return nil
	case time.Time:
		utc := typed.UTC()
		return &utc
	case *time.Time:
		if typed == nil {
			return nil
		}
		utc := typed.UTC()
		return &utc
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				utc := parsed.UTC()
				return &utc
			}
		}
		return nil
	default:
		return nil
	}
}

// Tags coerces a JSON-encoded object blob to a string-valued tag mapping.
// Malformed tag metadata must never fail a row, so any parse failure yields
// an empty mapping.
func Tags(value any) datatypes.JSONMap {
	switch typed := value.(type) {
	case nil:
		return datatypes.JSONMap{}
	case datatypes.JSONMap:
		return stringifyTags(typed)
	case map[string]any:
		return stringifyTags(typed)
	case map[string]string:
		tags := make(datatypes.JSONMap, len(typed))
		for k, v := range typed {
			tags[k] = v
		}
		return tags
	case []byte:
		return parseTagBlob(typed)
	case string:
		return parseTagBlob([]byte(typed))
	default:
		return datatypes.JSONMap{}
	}
}

func parseTagBlob(blob []byte) datatypes.JSONMap {
	var decoded map[string]any
	if err := json.Unmarshal(blob, &decoded); err != nil {
		return datatypes.JSONMap{}
	}
	return stringifyTags(decoded)
}

func stringifyTags(raw map[string]any) datatypes.JSONMap {
	tags := make(datatypes.JSONMap, len(raw))
	for key, value := range raw {
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok {
			tags[key] = s
			continue
		}
		tags[key] = fmt.Sprintf("%v", value)
	}
	return tags
}
