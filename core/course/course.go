// Package course holds the course vocabulary the menu counters filter on.
package course

type Status string

// Course statuses
const (
	StatusDraft           Status = "draft"
	StatusPublished       Status = "published"
	StatusPendingApproval Status = "pending_approval"
	StatusRejected        Status = "rejected"
)
