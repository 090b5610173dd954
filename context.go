package goAuthClient

import (
	"context"

	"github.com/google/uuid"
)

type flowIDContextKey struct{}

// WithFlowID attaches a correlation id to ctx. Audit events and log lines
// emitted while serving ctx carry it. Without one, each Coordinator call
// generates a random id.
func WithFlowID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, flowIDContextKey{}, id)
}

func flowIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(flowIDContextKey{}).(string)
	return id
}

// ensureFlowID returns ctx carrying a flow id, generating one when absent.
func ensureFlowID(ctx context.Context) (context.Context, string) {
	if id := flowIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return WithFlowID(ctx, id), id
}
