package service

import (
	"context"
	"strings"

	obsmetrics "github.com/costlens/costlens/internal/observability/metrics"
	scopedomain "github.com/costlens/costlens/internal/uploadscope/domain"
	"github.com/costlens/costlens/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// guardState enumerates the authorization states a request moves through.
type guardState int

const (
	stateStart guardState = iota
	stateEmptyScope
	stateScoped
	stateAuthenticated
	stateAllowed
	stateDenied
)

type guardEvent int

const (
	eventScopeEmpty guardEvent = iota
	eventScopeProvided
	eventIdentityPresent
	eventIdentityMissing
	eventOwnershipConfirmed
	eventOwnershipDenied
)

const (
	reasonNoIdentity      = "no_identity"
	reasonForeignUpload   = "foreign_upload"
	reasonOwnershipLookup = "ownership_lookup_failed"
)

// transition is the explicit finite-state function over guard states.
// Unknown combinations deny, never allow.
func transition(state guardState, event guardEvent) guardState {
	switch state {
	case stateStart:
		switch event {
		case eventScopeEmpty:
			return stateEmptyScope
		case eventScopeProvided:
			return stateScoped
		}
	case stateScoped:
		switch event {
		case eventIdentityPresent:
			return stateAuthenticated
		case eventIdentityMissing:
			return stateDenied
		}
	case stateAuthenticated:
		switch event {
		case eventOwnershipConfirmed:
			return stateAllowed
		case eventOwnershipDenied:
			return stateDenied
		}
	}
	return stateDenied
}

func transitionScope(ids []string) guardState {
	if len(ids) == 0 {
		return transition(stateStart, eventScopeEmpty)
	}
	return transition(stateStart, eventScopeProvided)
}

type GuardParam struct {
	fx.In

	Log     *zap.Logger
	Repo    scopedomain.Repository
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type Guard struct {
	log     *zap.Logger
	repo    scopedomain.Repository
	metrics *obsmetrics.Metrics
}

func NewGuard(p GuardParam) scopedomain.Guard {
	return &Guard{
		log:     p.Log.Named("uploadscope.guard"),
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

// Authorize normalizes the requested id set and verifies ownership.
// An empty normalized set means "no data", not "all data": it is approved
// immediately without touching the ownership store. When no explicit client id
// is passed, the identity carried on the context is used.
func (g *Guard) Authorize(ctx context.Context, clientID string, requested ...string) ([]string, error) {
	ids := NormalizeIDs(requested...)

	state := transitionScope(ids)
	if state == stateEmptyScope {
		return []string{}, nil
	}

	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		clientID, _ = tenantctx.ClientIDFromContext(ctx)
	}
	if clientID == "" {
		state = transition(state, eventIdentityMissing)
		g.deny(ctx, reasonNoIdentity)
		return nil, scopedomain.ErrMissingClientIdentity
	}
	state = transition(state, eventIdentityPresent)

	owned, err := g.repo.ListOwned(ctx, clientID, ids)
	if err != nil {
		g.deny(ctx, reasonOwnershipLookup)
		return nil, err
	}

	ownedSet := make(map[string]struct{}, len(owned))
	for _, id := range owned {
		ownedSet[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := ownedSet[id]; !ok {
			state = transition(state, eventOwnershipDenied)
			g.deny(ctx, reasonForeignUpload)
			g.log.Warn("upload scope rejected",
				zap.String("client_id", clientID),
				zap.Int("requested", len(ids)),
			)
			// Do not name the offending id; the caller must not learn
			// whether it exists.
			return nil, scopedomain.ErrUploadNotOwned
		}
	}

	state = transition(state, eventOwnershipConfirmed)
	if state != stateAllowed {
		g.deny(ctx, reasonForeignUpload)
		return nil, scopedomain.ErrUploadNotOwned
	}

	return ids, nil
}

func (g *Guard) deny(ctx context.Context, reason string) {
	g.metrics.RecordScopeDenied(ctx, reason)
}

// NormalizeIDs flattens the accepted request shapes (single id,
// comma-separated string, collection) into a deduplicated id list that keeps
// first-seen order.
func NormalizeIDs(values ...string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			id := strings.TrimSpace(part)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
