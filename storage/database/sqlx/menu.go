package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/masomo-market/core"
	"github.com/trezcool/masomo-market/core/course"
	"github.com/trezcool/masomo-market/core/enrollment"
	"github.com/trezcool/masomo-market/core/menu"
	"github.com/trezcool/masomo-market/core/notification"
	"github.com/trezcool/masomo-market/core/user"
)

type menuRepository struct {
	baseRepository
}

var _ menu.Repository = (*menuRepository)(nil) // interface compliance check

func NewMenuRepository(db core.DBQueryer) *menuRepository {
	return &menuRepository{baseRepository{db: db}}
}

func (repo menuRepository) CountPendingCourses(ctx context.Context) (int, error) {
	return repo.count(ctx,
		qb.Select("COUNT(*)").
			From("courses").
			Where(sq.Eq{"status": string(course.StatusPendingApproval)}),
		"counting pending courses")
}

func (repo menuRepository) CountPendingInstructors(ctx context.Context) (int, error) {
	return repo.count(ctx,
		qb.Select("COUNT(*)").
			From("users").
			Where(sq.Eq{"role": string(user.RoleInstructor), "is_approved": false}),
		"counting pending instructors")
}

func (repo menuRepository) CountUnreadNotifications(ctx context.Context, userID int64, types ...notification.Type) (int, error) {
	b := qb.Select("COUNT(*)").
		From("notifications").
		Where(sq.Eq{"user_id": userID, "read": false})
	if len(types) > 0 {
		typs := make([]string, 0, len(types))
		for _, typ := range types {
			typs = append(typs, string(typ))
		}
		b = b.Where(sq.Eq{"type": typs})
	}
	return repo.count(ctx, b, "counting unread notifications")
}

func (repo menuRepository) CountUnreadReviews(ctx context.Context, instructorID int64) (int, error) {
	return repo.count(ctx,
		qb.Select("COUNT(*)").
			From("course_reviews r").
			Join("courses c ON c.id = r.course_id").
			Where(sq.Eq{"c.instructor_id": instructorID, "r.approved": false}),
		"counting unread reviews")
}

func (repo menuRepository) CountActiveEnrollments(ctx context.Context, studentID int64) (int, error) {
	return repo.count(ctx,
		qb.Select("COUNT(*)").
			From("enrollments").
			Where(sq.Eq{"student_id": studentID, "status": string(enrollment.StatusActive)}),
		"counting active enrollments")
}
