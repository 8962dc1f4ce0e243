package service

import (
	"context"
	"errors"
	"testing"

	scopedomain "github.com/costlens/costlens/internal/uploadscope/domain"
	"github.com/costlens/costlens/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// -- Mocks --

type ownershipMock struct {
	mock.Mock
}

func (m *ownershipMock) ListOwned(ctx context.Context, clientID string, uploadIDs []string) ([]string, error) {
	args := m.Called(ctx, clientID, uploadIDs)
	owned := args.Get(0)
	if owned == nil {
		return nil, args.Error(1)
	}
	return owned.([]string), args.Error(1)
}

func newGuard(repo scopedomain.Repository) scopedomain.Guard {
	return NewGuard(GuardParam{
		Log:  zap.NewNop(),
		Repo: repo,
	})
}

// -- Tests --

func TestAuthorize_EmptyScopeSkipsOwnershipStore(t *testing.T) {
	repo := new(ownershipMock)
	guard := newGuard(repo)

	ids, err := guard.Authorize(context.Background(), "client_1")
	require.NoError(t, err)
	assert.Equal(t, []string{}, ids)

	ids, err = guard.Authorize(context.Background(), "client_1", " ", ",,")
	require.NoError(t, err)
	assert.Equal(t, []string{}, ids)

	repo.AssertNotCalled(t, "ListOwned")
}

func TestAuthorize_MissingIdentityFailsAuthentication(t *testing.T) {
	repo := new(ownershipMock)
	guard := newGuard(repo)

	_, err := guard.Authorize(context.Background(), "", "u1")
	assert.ErrorIs(t, err, scopedomain.ErrMissingClientIdentity)

	_, err = guard.Authorize(context.Background(), "   ", "u1")
	assert.ErrorIs(t, err, scopedomain.ErrMissingClientIdentity)

	repo.AssertNotCalled(t, "ListOwned")
}

func TestAuthorize_FallsBackToContextIdentity(t *testing.T) {
	repo := new(ownershipMock)
	repo.On("ListOwned", mock.Anything, "client_ctx", []string{"u1"}).
		Return([]string{"u1"}, nil)
	guard := newGuard(repo)

	ctx := tenantctx.WithClientID(context.Background(), "client_ctx")
	ids, err := guard.Authorize(ctx, "", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids)
	repo.AssertExpectations(t)
}

func TestAuthorize_PartialOwnershipRejectsEntireRequest(t *testing.T) {
	tests := []struct {
		name      string
		requested []string
	}{
		{"duplicates and foreign id", []string{"u1", "u1", "u2"}},
		{"foreign id first", []string{"u2", "u1"}},
		{"comma separated", []string{"u1,u2,u1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(ownershipMock)
			// Only u1 is owned, regardless of request order or duplication.
			repo.On("ListOwned", mock.Anything, "client_1", mock.Anything).Return([]string{"u1"}, nil)
			guard := newGuard(repo)

			ids, err := guard.Authorize(context.Background(), "client_1", tt.requested...)
			assert.ErrorIs(t, err, scopedomain.ErrUploadNotOwned)
			assert.Nil(t, ids)
		})
	}
}

func TestAuthorize_FullOwnershipApprovesNormalizedSet(t *testing.T) {
	repo := new(ownershipMock)
	repo.On("ListOwned", mock.Anything, "client_1", []string{"u1", "u2"}).
		Return([]string{"u2", "u1"}, nil)
	guard := newGuard(repo)

	ids, err := guard.Authorize(context.Background(), "client_1", "u1, u2", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, ids)
	repo.AssertExpectations(t)
}

func TestAuthorize_OwnershipLookupErrorSurfaces(t *testing.T) {
	repo := new(ownershipMock)
	lookupErr := errors.New("ownership store unavailable")
	repo.On("ListOwned", mock.Anything, "client_1", mock.Anything).Return(nil, lookupErr)
	guard := newGuard(repo)

	_, err := guard.Authorize(context.Background(), "client_1", "u1")
	assert.ErrorIs(t, err, lookupErr)
}

func TestNormalizeIDs(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"single id", []string{"u1"}, []string{"u1"}},
		{"comma separated", []string{"u1,u2, u3"}, []string{"u1", "u2", "u3"}},
		{"dedupe keeps first-seen order", []string{"u2", "u1", "u2", "u1"}, []string{"u2", "u1"}},
		{"mixed shapes", []string{"u1,u2", "u2", "u3"}, []string{"u1", "u2", "u3"}},
		{"blank fragments dropped", []string{" , u1 ,, ", ""}, []string{"u1"}},
		{"empty", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeIDs(tt.input...))
		})
	}
}

func TestTransition_UnknownCombinationsDeny(t *testing.T) {
	assert.Equal(t, stateDenied, transition(stateEmptyScope, eventIdentityPresent))
	assert.Equal(t, stateDenied, transition(stateAllowed, eventScopeProvided))
	assert.Equal(t, stateDenied, transition(stateDenied, eventOwnershipConfirmed))
}
