package auth

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/types"
)

// Principal is an already authenticated caller
type Principal struct {
	ID   string
	Role types.Role
	Name string
}

type ctxPrincipalKey struct{}

// ContextWithPrincipal stores the principal in ctx
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey{}, p)
}

// PrincipalFromContext returns the principal stored by ContextWithPrincipal
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ctxPrincipalKey{}).(*Principal)
	return p, ok && p != nil
}
