// Package inmemdb keeps the marketplace facts in memory. Used by the "inmem" engine and tests.
package inmemdb

import (
	"sync"

	"github.com/trezcool/masomo-market/core/course"
	"github.com/trezcool/masomo-market/core/enrollment"
	"github.com/trezcool/masomo-market/core/notification"
	"github.com/trezcool/masomo-market/core/user"
)

type (
	User struct {
		ID         int64
		Name       string
		Role       user.Role
		IsApproved bool
	}

	Course struct {
		ID           int64
		Title        string
		Status       course.Status
		InstructorID int64
	}

	Enrollment struct {
		ID        int64
		StudentID int64
		CourseID  int64
		Status    enrollment.Status
	}

	Review struct {
		ID        int64
		CourseID  int64
		StudentID int64
		Approved  bool
	}
)

// DB is a set of mutex-guarded tables.
type DB struct {
	mutex sync.RWMutex
	pk    int64

	users         map[int64]*User
	courses       map[int64]*Course
	enrollments   map[int64]*Enrollment
	reviews       map[int64]*Review
	notifications map[int64]*notification.Notification
}

func NewDB() *DB {
	return &DB{
		users:         make(map[int64]*User),
		courses:       make(map[int64]*Course),
		enrollments:   make(map[int64]*Enrollment),
		reviews:       make(map[int64]*Review),
		notifications: make(map[int64]*notification.Notification),
	}
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK() int64 {
	db.pk++
	return db.pk
}

func (db *DB) AddUser(u User) User {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	u.ID = db.nextPK()
	db.users[u.ID] = &u
	return u
}

func (db *DB) AddCourse(c Course) Course {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	c.ID = db.nextPK()
	db.courses[c.ID] = &c
	return c
}

func (db *DB) AddEnrollment(e Enrollment) Enrollment {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	e.ID = db.nextPK()
	db.enrollments[e.ID] = &e
	return e
}

func (db *DB) AddReview(r Review) Review {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	r.ID = db.nextPK()
	db.reviews[r.ID] = &r
	return r
}

// SetCourseStatus returns false when the course does not exist.
func (db *DB) SetCourseStatus(id int64, status course.Status) bool {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	c, ok := db.courses[id]
	if ok {
		c.Status = status
	}
	return ok
}
