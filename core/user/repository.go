package user

import (
	"context"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("user not found")

// Repository resolves identities from the users table.
type Repository interface {
	// GetIdentity returns ErrNotFound when no user has that id.
	GetIdentity(ctx context.Context, id int64) (Identity, error)
}
