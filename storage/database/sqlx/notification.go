package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-market/core"
	"github.com/trezcool/masomo-market/core/notification"
)

var notificationColumns = []string{"id", "user_id", "type", "title", "message", "read", "created_at"}

type notificationRepository struct {
	baseRepository
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db core.DBQueryer) *notificationRepository {
	return &notificationRepository{baseRepository{db: db}}
}

func (repo notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	query, args, err := qb.Insert("notifications").
		Columns("user_id", "type", "title", "message", "read", "created_at", "updated_at").
		Values(n.UserID, string(n.Type), n.Title, n.Message, n.Read, n.CreatedAt, n.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "building insert notification query")
	}
	if err = repo.db.QueryRowxContext(ctx, repo.db.Rebind(query), args...).Scan(&n.ID); err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}

func (repo notificationRepository) GetNotification(ctx context.Context, id int64) (notification.Notification, error) {
	query, args, err := qb.Select(notificationColumns...).
		From("notifications").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "building get notification query")
	}
	var n notification.Notification
	if err = repo.db.GetContext(ctx, &n, repo.db.Rebind(query), args...); err != nil {
		return notification.Notification{}, trapNoRowsErr(err, notification.ErrNotFound, "getting notification")
	}
	n.CreatedAt = n.CreatedAt.UTC()
	return n, nil
}

func (repo notificationRepository) MarkRead(ctx context.Context, id int64) (bool, error) {
	cnt, err := repo.markRead(ctx, sq.Eq{"id": id, "read": false})
	return cnt > 0, err
}

func (repo notificationRepository) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	return repo.markRead(ctx, sq.Eq{"user_id": userID, "read": false})
}

func (repo notificationRepository) markRead(ctx context.Context, where sq.Eq) (int, error) {
	query, args, err := qb.Update("notifications").
		Set("read", true).
		Set("updated_at", time.Now().UTC()).
		Where(where).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building mark read query")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return 0, errors.Wrap(err, "marking notifications as read")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting notifications marked as read")
	}
	return int(cnt), nil
}

// trapNoRowsErr maps sql "no rows" err to notFound
func trapNoRowsErr(err, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}
