package actorctx

import (
	"context"

	"github.com/geocoder89/coursehub/internal/domain/user"
)

type identityKey struct{}

// WithIdentity returns a child context carrying the authenticated user.
func WithIdentity(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, identityKey{}, u)
}

func IdentityFrom(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(identityKey{}).(user.User)

	return u, ok && u.ID != 0
}
