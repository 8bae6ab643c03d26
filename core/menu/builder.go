package menu

import (
	"github.com/trezcool/masomo-market/core/user"
)

type (
	itemDef struct {
		label, href, icon string
		badge             Badge
	}

	groupDef struct {
		label string
		items []itemDef
	}

	// layout is the fixed shape of one role's menu.
	layout []groupDef
)

var (
	notificationsItem = itemDef{"Notifications", "/notifications", "Bell", BadgeUnreadNotifications}
	settingsItem      = itemDef{"Settings", "/settings", "Settings", BadgeNone}

	adminLayout = layout{
		{"Administration", []itemDef{
			{"Dashboard", "/admin/dashboard", "LayoutDashboard", BadgeNone},
			{"Approval Queue", "/admin/approvals", "CheckCircle", BadgePendingCourses},
			{"Instructors", "/admin/instructors", "Users", BadgePendingInstructors},
			{"Payouts", "/admin/payouts", "DollarSign", BadgePendingPayouts},
		}},
		{"System", []itemDef{
			{"Users", "/admin/users", "UserCheck", BadgeNone},
			{"Courses", "/admin/courses", "BookOpen", BadgeNone},
			{"Categories", "/admin/categories", "Tags", BadgeNone},
			{"Analytics", "/admin/analytics", "BarChart3", BadgeNone},
		}},
		{"Personal", []itemDef{notificationsItem, settingsItem}},
	}

	instructorLayout = layout{
		{"Teaching", []itemDef{
			{"Dashboard", "/instructor/dashboard", "LayoutDashboard", BadgeNone},
			{"My Courses", "/instructor/courses", "BookOpen", BadgeNone},
			{"Create Course", "/instructor/courses/create", "Plus", BadgeNone},
			{"Students", "/instructor/students", "GraduationCap", BadgeNone},
		}},
		{"Engagement", []itemDef{
			{"Reviews", "/instructor/reviews", "Star", BadgeUnreadReviews},
			{"Messages", "/instructor/messages", "MessageCircle", BadgeUnreadMessages},
			{"Analytics", "/instructor/analytics", "TrendingUp", BadgeNone},
		}},
		{"Personal", []itemDef{
			{"Earnings", "/instructor/earnings", "DollarSign", BadgeNone},
			notificationsItem,
			settingsItem,
		}},
	}

	studentLayout = layout{
		{"Learning", []itemDef{
			{"Dashboard", "/student/dashboard", "LayoutDashboard", BadgeNone},
			{"Continue Learning", "/student/courses", "Play", BadgeIncompleteCourses},
			{"Browse Courses", "/courses", "Search", BadgeNone},
			{"My Certificates", "/student/certificates", "Award", BadgeNone},
		}},
		{"Community", []itemDef{
			{"Discussion Forum", "/forum", "MessageSquare", BadgeUnreadForumReplies},
			{"Study Groups", "/student/groups", "Users", BadgeNone},
		}},
		{"Personal", []itemDef{
			{"Wishlist", "/student/wishlist", "Heart", BadgeWishlist},
			{"Purchase History", "/student/purchases", "ShoppingBag", BadgeNone},
			notificationsItem,
			settingsItem,
		}},
	}
)

// layoutFor returns nil for any role outside the known set.
func layoutFor(role user.Role) layout {
	switch role {
	case user.RoleAdmin:
		return adminLayout
	case user.RoleInstructor:
		return instructorLayout
	case user.RoleStudent:
		return studentLayout
	default:
		return nil
	}
}

// badges lists the badges the layout displays, in display order and without duplicates.
func (l layout) badges() []Badge {
	var badges []Badge
	seen := make(map[Badge]bool)
	for _, g := range l {
		for _, it := range g.items {
			if it.badge != BadgeNone && !seen[it.badge] {
				seen[it.badge] = true
				badges = append(badges, it.badge)
			}
		}
	}
	return badges
}

func (l layout) render(counts Counts) Tree {
	tree := make(Tree, 0, len(l))
	for _, g := range l {
		grp := Group{Type: KindGroup, Label: g.label, Items: make([]Item, 0, len(g.items))}
		for _, it := range g.items {
			item := Item{Type: KindItem, Label: it.label, Href: it.href, Icon: it.icon}
			if it.badge != BadgeNone {
				n := counts[it.badge]
				item.Badge = &n
			}
			grp.Items = append(grp.Items, item)
		}
		tree = append(tree, grp)
	}
	return tree
}

// Badges returns the badges the menu of role needs; nil for unknown roles.
func Badges(role user.Role) []Badge {
	return layoutFor(role).badges()
}

// Build renders the menu of role with counts. Missing counts render as 0.
// Unknown roles get an empty, non-nil Tree.
func Build(role user.Role, counts Counts) Tree {
	l := layoutFor(role)
	if l == nil {
		return Tree{}
	}
	return l.render(counts)
}
