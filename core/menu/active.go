package menu

import "strings"

// IsActive reports whether path falls under href: it is href itself or one of its sub-paths.
// Matching is by whole path segment, so /admin/dashboard-old is not under /admin/dashboard.
func IsActive(path, href string) bool {
	if path == "" || href == "" {
		return false
	}
	path = trimSlash(path)
	href = trimSlash(href)
	if path == href {
		return true
	}
	if href == "/" {
		return false
	}
	return strings.HasPrefix(path, href+"/")
}

func trimSlash(p string) string {
	if t := strings.TrimRight(p, "/"); t != "" {
		return t
	}
	return "/"
}

// WithActive returns a copy of t with IsActive set for the current request path.
// t itself is left untouched.
func (t Tree) WithActive(path string) Tree {
	out := t.Clone()
	for i := range out {
		for j := range out[i].Items {
			out[i].Items[j].IsActive = IsActive(path, out[i].Items[j].Href)
		}
	}
	return out
}
