package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-market/core"
	"github.com/trezcool/masomo-market/core/user"
)

var nowFunc = time.Now // mockable

type Service struct {
	repo        Repository
	usrRepo     user.Repository
	invalidator Invalidator
	validate    *validator.Validate
	logger      core.Logger
}

func NewService(
	repo Repository,
	usrRepo user.Repository,
	invalidator Invalidator,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		repo:        repo,
		usrRepo:     usrRepo,
		invalidator: invalidator,
		validate:    validate,
		logger:      logger,
	}
}

// Create stores a new unread notification and invalidates its owner's menu.
func (svc *Service) Create(ctx context.Context, nn NewNotification) (Notification, error) {
	if err := nn.Validate(svc.validate); err != nil {
		return Notification{}, err
	}

	owner, err := svc.usrRepo.GetIdentity(ctx, nn.UserID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Notification{}, core.NewValidationError(nil, core.FieldError{Field: "user_id", Error: "user does not exist"})
		}
		return Notification{}, errors.Wrap(err, "getting notification owner")
	}

	n, err := svc.repo.CreateNotification(ctx, Notification{
		UserID:    owner.ID,
		Type:      nn.Type,
		Title:     nn.Title,
		Message:   nn.Message,
		CreatedAt: nowFunc().UTC(),
	})
	if err != nil {
		return Notification{}, errors.Wrap(err, "creating notification")
	}

	svc.invalidate(ctx, owner)
	return n, nil
}

// MarkRead marks one of identity's notifications as read.
// Notifications owned by someone else are reported as ErrNotFound.
func (svc *Service) MarkRead(ctx context.Context, identity user.Identity, id int64) error {
	n, err := svc.repo.GetNotification(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return ErrNotFound
		}
		return errors.Wrap(err, "getting notification")
	}
	if n.UserID != identity.ID {
		return ErrNotFound
	}

	changed, err := svc.repo.MarkRead(ctx, id)
	if err != nil {
		return errors.Wrap(err, "marking notification as read")
	}
	if changed {
		svc.invalidate(ctx, identity)
	}
	return nil
}

// MarkAllRead marks all of identity's notifications as read and returns how many changed.
func (svc *Service) MarkAllRead(ctx context.Context, identity user.Identity) (int, error) {
	cnt, err := svc.repo.MarkAllRead(ctx, identity.ID)
	if err != nil {
		return 0, errors.Wrap(err, "marking notifications as read")
	}
	if cnt > 0 {
		svc.invalidate(ctx, identity)
	}
	return cnt, nil
}

// invalidate logs failures and never undoes the write; the stale menu expires with its TTL.
func (svc *Service) invalidate(ctx context.Context, identity user.Identity) {
	if svc.invalidator == nil {
		return
	}
	if err := svc.invalidator.Invalidate(ctx, identity); err != nil {
		svc.logger.Warn(fmt.Sprintf("invalidating menu of user %d: %v", identity.ID, err), err, identity)
	}
}
