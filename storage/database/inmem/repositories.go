package inmemdb

import (
	"context"

	"github.com/trezcool/masomo-market/core/course"
	"github.com/trezcool/masomo-market/core/enrollment"
	"github.com/trezcool/masomo-market/core/menu"
	"github.com/trezcool/masomo-market/core/notification"
	"github.com/trezcool/masomo-market/core/user"
)

type menuRepository struct {
	db *DB
}

var _ menu.Repository = (*menuRepository)(nil)

func NewMenuRepository(db *DB) menu.Repository {
	return &menuRepository{db: db}
}

func (repo *menuRepository) CountPendingCourses(context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, c := range repo.db.courses {
		if c.Status == course.StatusPendingApproval {
			n++
		}
	}
	return n, nil
}

func (repo *menuRepository) CountPendingInstructors(context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, u := range repo.db.users {
		if u.Role == user.RoleInstructor && !u.IsApproved {
			n++
		}
	}
	return n, nil
}

func (repo *menuRepository) CountUnreadNotifications(_ context.Context, userID int64, types ...notification.Type) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, notif := range repo.db.notifications {
		if notif.UserID == userID && !notif.Read && hasType(notif.Type, types) {
			n++
		}
	}
	return n, nil
}

func hasType(typ notification.Type, types []notification.Type) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if t == typ {
			return true
		}
	}
	return false
}

func (repo *menuRepository) CountUnreadReviews(_ context.Context, instructorID int64) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, r := range repo.db.reviews {
		if c, ok := repo.db.courses[r.CourseID]; ok && c.InstructorID == instructorID && !r.Approved {
			n++
		}
	}
	return n, nil
}

func (repo *menuRepository) CountActiveEnrollments(_ context.Context, studentID int64) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, e := range repo.db.enrollments {
		if e.StudentID == studentID && e.Status == enrollment.StatusActive {
			n++
		}
	}
	return n, nil
}

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) GetIdentity(_ context.Context, id int64) (user.Identity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if u, ok := repo.db.users[id]; ok {
		return user.Identity{ID: u.ID, Role: u.Role}, nil
	}
	return user.Identity{}, user.ErrNotFound
}

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	n.ID = repo.db.nextPK()
	repo.db.notifications[n.ID] = &n
	return n, nil
}

func (repo *notificationRepository) GetNotification(_ context.Context, id int64) (notification.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if n, ok := repo.db.notifications[id]; ok {
		return *n, nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) MarkRead(_ context.Context, id int64) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	n, ok := repo.db.notifications[id]
	if !ok || n.Read {
		return false, nil
	}
	n.Read = true
	return true, nil
}

func (repo *notificationRepository) MarkAllRead(_ context.Context, userID int64) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, n := range repo.db.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			cnt++
		}
	}
	return cnt, nil
}
