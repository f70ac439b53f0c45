package auth

import (
	"context"

	"github.com/gofrs/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the resolved caller: who they are and what they may do.
// It is attached to the request context by the Authenticate middleware and
// is the only thing domain code ever sees of the credentials.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

type ctxKey int

const identityKey ctxKey = iota

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
