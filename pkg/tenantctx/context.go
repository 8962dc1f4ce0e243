package tenantctx

import (
	"context"
	"strings"
)

// ClientContextKey is the request context key for the active client (tenant) ID.
type ClientContextKey struct{}

// WithClientID stores the client ID in the context.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, ClientContextKey{}, clientID)
}

// ClientIDFromContext returns the client ID from context, if set.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(ClientContextKey{}).(string)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}
