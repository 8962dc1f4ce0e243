package service

import (
	"context"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/costlens/costlens/internal/clock"
	dimensiondomain "github.com/costlens/costlens/internal/dimension/domain"
	factdomain "github.com/costlens/costlens/internal/fact/domain"
	"github.com/costlens/costlens/internal/fact/normalize"
	"github.com/costlens/costlens/internal/fact/writer"
	ingestdomain "github.com/costlens/costlens/internal/ingest/domain"
	obsmetrics "github.com/costlens/costlens/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log      *zap.Logger
	Resolver dimensiondomain.Resolver
	Writer   *writer.BatchWriter
	GenID    *snowflake.Node
	Clock    clock.Clock
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	resolver dimensiondomain.Resolver
	writer   *writer.BatchWriter
	genID    *snowflake.Node
	clock    clock.Clock
	metrics  *obsmetrics.Metrics

	buildOnce sync.Once
	buildErr  error
}

func NewService(p ServiceParam) ingestdomain.Service {
	return &Service{
		log:      p.Log.Named("ingest.service"),
		resolver: p.Resolver,
		writer:   p.Writer,
		genID:    p.GenID,
		clock:    p.Clock,
		metrics:  p.Metrics,
	}
}

// IngestRow resolves, normalizes and buffers one raw billing row. The
// dimension maps are built on the first row and reused read-only for the rest
// of the run; no row is resolved against a partially loaded map.
func (s *Service) IngestRow(ctx context.Context, uploadID string, raw map[string]any) error {
	uploadID = strings.TrimSpace(uploadID)
	if uploadID == "" {
		return factdomain.ErrMissingUpload
	}

	if err := s.ensureDimensions(ctx); err != nil {
		return err
	}

	dims := s.resolveDimensions(ctx, raw)
	fact := normalize.Normalize(uploadID, raw, dims)
	fact.ID = s.genID.Generate()
	fact.CreatedAt = s.clock.Now()

	return s.writer.Append(ctx, fact)
}

// Flush writes any buffered facts at end-of-run.
func (s *Service) Flush(ctx context.Context) error {
	return s.writer.Flush(ctx)
}

func (s *Service) ensureDimensions(ctx context.Context) error {
	s.buildOnce.Do(func() {
		if s.resolver.Ready() {
			return
		}
		s.buildErr = s.resolver.Build(ctx)
	})
	return s.buildErr
}

func (s *Service) resolveDimensions(ctx context.Context, raw map[string]any) factdomain.ResolvedDimensions {
	provider := stringField(raw, normalize.FieldProvider)

	dims := factdomain.ResolvedDimensions{}
	dims.CloudAccountID = s.resolve(ctx, dimensiondomain.KindCloudAccount, provider, stringField(raw, normalize.FieldBillingAccountID))
	dims.ServiceID = s.resolve(ctx, dimensiondomain.KindService, provider, stringField(raw, normalize.FieldServiceName))
	dims.RegionID = s.resolve(ctx, dimensiondomain.KindRegion, provider, stringField(raw, normalize.FieldRegionID))
	dims.SKUID = s.resolve(ctx, dimensiondomain.KindSKU, stringField(raw, normalize.FieldSKUID))
	dims.ResourceID = s.resolve(ctx, dimensiondomain.KindResource, stringField(raw, normalize.FieldResourceID))
	dims.SubAccountID = s.resolve(ctx, dimensiondomain.KindSubAccount, stringField(raw, normalize.FieldSubAccountID))
	dims.CommitmentDiscountID = s.resolve(ctx, dimensiondomain.KindCommitmentDiscount, stringField(raw, normalize.FieldCommitmentDiscountID))
	return dims
}

// resolve maps a miss to nil: the fact is written with a null dimension
// reference and governance scoring treats it as a quality signal, not an
// ingestion failure.
func (s *Service) resolve(ctx context.Context, kind dimensiondomain.Kind, parts ...string) *string {
	id, ok := s.resolver.Resolve(kind, parts...)
	if !ok {
		if dimensiondomain.Key(parts...) != "" {
			s.metrics.RecordDimensionMiss(ctx, string(kind))
		}
		return nil
	}
	return &id
}

func stringField(raw map[string]any, key string) string {
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	text := normalize.Text(value)
	if text == nil {
		return ""
	}
	return strings.TrimSpace(*text)
}
