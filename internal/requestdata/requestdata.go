// Package requestdata carries the per-request decision context through
// context.Context: the authenticated principal and the resources the
// locator already fetched. Values are set once by the middleware chain
// and read downstream; nothing mutates them after attachment.
package requestdata

import (
	"context"

	"github.com/classdesk/classdesk-backend/internal/authz"
)

type principalKey struct{}
type resolvedKey struct{}

func WithPrincipal(ctx context.Context, p authz.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func GetPrincipal(ctx context.Context) (authz.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(authz.Principal)
	return p, ok
}

func WithResolved(ctx context.Context, r *authz.Resolved) context.Context {
	return context.WithValue(ctx, resolvedKey{}, r)
}

func GetResolved(ctx context.Context) *authz.Resolved {
	r, _ := ctx.Value(resolvedKey{}).(*authz.Resolved)
	return r
}
