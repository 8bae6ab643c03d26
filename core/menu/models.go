package menu

import "encoding/json"

type Kind string

const (
	KindGroup Kind = "group"
	KindItem  Kind = "item"
)

// Item is a single sidebar link. Badge is nil for items that never carry a counter.
type Item struct {
	Type     Kind   `json:"type"`
	Label    string `json:"label"`
	Href     string `json:"href"`
	Icon     string `json:"icon"`
	Badge    *int   `json:"badge,omitempty"`
	IsActive bool   `json:"isActive"`
}

type Group struct {
	Type  Kind   `json:"type"`
	Label string `json:"label"`
	Items []Item `json:"items"`
}

// Tree is the ordered list of groups rendered top to bottom.
type Tree []Group

// MarshalJSON encodes a nil Tree as [] so clients always get an array.
func (t Tree) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Group(t))
}

// Labels returns the group labels in order.
func (t Tree) Labels() []string {
	labels := make([]string, 0, len(t))
	for _, g := range t {
		labels = append(labels, g.Label)
	}
	return labels
}

// Find returns the first item labeled label.
func (t Tree) Find(label string) (Item, bool) {
	for _, g := range t {
		for _, it := range g.Items {
			if it.Label == label {
				return it, true
			}
		}
	}
	return Item{}, false
}

// Clone returns a deep copy of t; cached trees are shared and must never be mutated.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for i, g := range t {
		out[i] = Group{Type: g.Type, Label: g.Label, Items: make([]Item, len(g.Items))}
		for j, it := range g.Items {
			if it.Badge != nil {
				b := *it.Badge
				it.Badge = &b
			}
			out[i].Items[j] = it
		}
	}
	return out
}
