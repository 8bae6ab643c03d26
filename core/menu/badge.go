package menu

import (
	"context"

	"github.com/trezcool/masomo-market/core/notification"
	"github.com/trezcool/masomo-market/core/user"
)

// Badge identifies one counter shown next to a menu item.
type Badge int

const (
	BadgeNone Badge = iota
	BadgePendingCourses
	BadgePendingInstructors
	BadgePendingPayouts
	BadgeUnreadNotifications
	BadgeUnreadReviews
	BadgeUnreadMessages
	BadgeIncompleteCourses
	BadgeUnreadForumReplies
	BadgeWishlist
)

var badgeNames = map[Badge]string{
	BadgePendingCourses:      "pendingCourses",
	BadgePendingInstructors:  "pendingInstructors",
	BadgePendingPayouts:      "pendingPayouts",
	BadgeUnreadNotifications: "unreadNotifications",
	BadgeUnreadReviews:       "unreadReviews",
	BadgeUnreadMessages:      "unreadMessages",
	BadgeIncompleteCourses:   "incompleteCourses",
	BadgeUnreadForumReplies:  "unreadForumReplies",
	BadgeWishlist:            "wishlist",
}

func (b Badge) String() string {
	if name, ok := badgeNames[b]; ok {
		return name
	}
	return "none"
}

// Counts holds the badge values of one build.
type Counts map[Badge]int

// Repository is the read-only view of the marketplace data the badges are computed from.
// Every method must run a single aggregate query.
type Repository interface {
	// CountPendingCourses counts courses awaiting approval.
	CountPendingCourses(ctx context.Context) (int, error)
	// CountPendingInstructors counts instructors not approved yet.
	CountPendingInstructors(ctx context.Context) (int, error)
	// CountUnreadNotifications counts the unread notifications of userID, restricted to types when given.
	CountUnreadNotifications(ctx context.Context, userID int64, types ...notification.Type) (int, error)
	// CountUnreadReviews counts unapproved reviews on the courses taught by instructorID.
	CountUnreadReviews(ctx context.Context, instructorID int64) (int, error)
	// CountActiveEnrollments counts the enrollments of studentID still in progress.
	CountActiveEnrollments(ctx context.Context, studentID int64) (int, error)
}

// CounterFunc computes one badge for identity.
type CounterFunc func(ctx context.Context, identity user.Identity) (int, error)

// Counters maps every badge to the function computing it.
type Counters map[Badge]CounterFunc

// Zero is the counter of badges without a backing subsystem yet.
func Zero(context.Context, user.Identity) (int, error) {
	return 0, nil
}

// DefaultCounters binds every badge to repo.
// BadgePendingPayouts and BadgeWishlist have no data source and always count 0;
// replace them with WithCounter once payouts or wishlists are stored.
func DefaultCounters(repo Repository) Counters {
	return Counters{
		BadgePendingCourses: func(ctx context.Context, _ user.Identity) (int, error) {
			return repo.CountPendingCourses(ctx)
		},
		BadgePendingInstructors: func(ctx context.Context, _ user.Identity) (int, error) {
			return repo.CountPendingInstructors(ctx)
		},
		BadgeUnreadNotifications: func(ctx context.Context, identity user.Identity) (int, error) {
			return repo.CountUnreadNotifications(ctx, identity.ID)
		},
		BadgeUnreadReviews: func(ctx context.Context, identity user.Identity) (int, error) {
			return repo.CountUnreadReviews(ctx, identity.ID)
		},
		BadgeUnreadMessages: func(ctx context.Context, identity user.Identity) (int, error) {
			return repo.CountUnreadNotifications(ctx, identity.ID, notification.TypeDirectMessage)
		},
		BadgeIncompleteCourses: func(ctx context.Context, identity user.Identity) (int, error) {
			return repo.CountActiveEnrollments(ctx, identity.ID)
		},
		BadgeUnreadForumReplies: func(ctx context.Context, identity user.Identity) (int, error) {
			return repo.CountUnreadNotifications(ctx, identity.ID, notification.TypeForumReply)
		},
		BadgePendingPayouts: Zero,
		BadgeWishlist:       Zero,
	}
}
