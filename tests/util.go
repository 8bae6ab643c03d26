package testutil

import (
	"fmt"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/masomo-market/core"
	"github.com/trezcool/masomo-market/core/course"
	"github.com/trezcool/masomo-market/core/enrollment"
	"github.com/trezcool/masomo-market/core/notification"
	"github.com/trezcool/masomo-market/core/user"
	"github.com/trezcool/masomo-market/storage/database"
)

// NewConfig returns a test configuration backed by an in-memory sqlite database.
func NewConfig() *core.Config {
	conf := &core.Config{
		Env:       "TEST",
		Build:     "test",
		Debug:     false,
		TestMode:  true,
		AppName:   "Masomo Market",
		SecretKey: "test-secret",
	}
	conf.Database.Engine = database.EngineSQLite
	conf.Database.Name = ":memory:"
	conf.Menu.CacheDriver = "memory"
	conf.Menu.CacheTTL = 300 * time.Second
	conf.Menu.CachePrefix = "sidebar_menu"
	conf.Menu.BuildTimeout = 5 * time.Second
	conf.Realtime.Driver = "none"
	return conf
}

// PrepareDB opens a fresh, migrated in-memory database closed at the end of the test.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(NewConfig())
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

var seq int

func insert(t *testing.T, db *sqlx.DB, b sq.InsertBuilder) int64 {
	t.Helper()
	query, args, err := b.Suffix("RETURNING id").ToSql()
	if err != nil {
		t.Fatalf("insert() failed: %v", err)
	}
	var id int64
	if err = db.QueryRowx(db.Rebind(query), args...).Scan(&id); err != nil {
		t.Fatalf("insert() failed: %v", err)
	}
	return id
}

func CreateUser(t *testing.T, db *sqlx.DB, name string, role user.Role, approved bool) user.Identity {
	t.Helper()
	seq++
	id := insert(t, db, sq.Insert("users").
		Columns("name", "email", "role", "is_approved").
		Values(name, fmt.Sprintf("user%d@test.cd", seq), string(role), approved))
	return user.Identity{ID: id, Role: role}
}

func CreateCourse(t *testing.T, db *sqlx.DB, instructorID int64, status course.Status) int64 {
	t.Helper()
	seq++
	return insert(t, db, sq.Insert("courses").
		Columns("title", "slug", "status", "instructor_id").
		Values(fmt.Sprintf("Course %d", seq), fmt.Sprintf("course-%d", seq), string(status), instructorID))
}

func CreateEnrollment(t *testing.T, db *sqlx.DB, studentID, courseID int64, status enrollment.Status) int64 {
	t.Helper()
	return insert(t, db, sq.Insert("enrollments").
		Columns("student_id", "course_id", "status").
		Values(studentID, courseID, string(status)))
}

func CreateReview(t *testing.T, db *sqlx.DB, courseID, studentID int64, approved bool) int64 {
	t.Helper()
	return insert(t, db, sq.Insert("course_reviews").
		Columns("course_id", "student_id", "rating", "approved").
		Values(courseID, studentID, 4, approved))
}

func CreateNotification(t *testing.T, db *sqlx.DB, userID int64, typ notification.Type, read bool) int64 {
	t.Helper()
	return insert(t, db, sq.Insert("notifications").
		Columns("user_id", "type", "title", "read").
		Values(userID, string(typ), "Notification", read))
}

// Repeat runs fn n times.
func Repeat(n int, fn func()) {
	for i := 0; i < n; i++ {
		fn()
	}
}
