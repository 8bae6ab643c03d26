package notification

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-market/core"
)

type Type string

// Notification types, as broadcast to the owner's "user.{id}" channel.
const (
	TypeForumReply     Type = "forum_reply"
	TypeDirectMessage  Type = "direct_message"
	TypeCourseApproval Type = "course_approval"
	TypePayoutRequest  Type = "payout_request"
	TypeReviewReceived Type = "review_received"
	TypeEnrollment     Type = "enrollment"
)

var AllTypes = []Type{
	TypeForumReply,
	TypeDirectMessage,
	TypeCourseApproval,
	TypePayoutRequest,
	TypeReviewReceived,
	TypeEnrollment,
}

type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Type      Type      `db:"type" json:"type"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
}

// NewNotification contains information needed to create a new Notification.
type NewNotification struct {
	UserID  int64  `json:"user_id" validate:"required,gt=0"`
	Type    Type   `json:"type" validate:"required,oneof=forum_reply direct_message course_approval payout_request review_received enrollment"`
	Title   string `json:"title" validate:"required,max=255"`
	Message string `json:"message" validate:"max=2000"`
}

func (nn *NewNotification) Validate(validate *validator.Validate) error {
	nn.Type = Type(core.CleanString(string(nn.Type), true /* lower */))
	nn.Title = core.CleanString(nn.Title)
	nn.Message = core.CleanString(nn.Message)
	return validate.Struct(nn)
}
