// Package enrollment holds the enrollment vocabulary the menu counters filter on.
package enrollment

type Status string

// Enrollment statuses
const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)
