package notification

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-market/core/user"
)

var ErrNotFound = errors.New("notification not found")

type Repository interface {
	CreateNotification(ctx context.Context, n Notification) (Notification, error)
	// GetNotification returns ErrNotFound when no notification has that id.
	GetNotification(ctx context.Context, id int64) (Notification, error)
	// MarkRead reports whether the notification went from unread to read.
	MarkRead(ctx context.Context, id int64) (bool, error)
	// MarkAllRead returns the number of notifications of userID that were marked as read.
	MarkAllRead(ctx context.Context, userID int64) (int, error)
}

// Invalidator is notified whenever the notifications of an identity change.
// The sidebar menu service implements it to drop the cached badges of that identity.
type Invalidator interface {
	Invalidate(ctx context.Context, identity user.Identity) error
}
