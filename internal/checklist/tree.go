// Package checklist builds and tracks remediation checklists for Pod
// security problems. A checklist is a tree of check items addressed by
// stable IDs, so progress updates survive serialization round-trips.
package checklist

import (
	"encoding/json"
	"fmt"
)

// Severity levels for check items
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// CheckItem is one node of a remediation checklist
type CheckItem struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Category    string       `json:"category,omitempty"`
	Severity    string       `json:"severity,omitempty"`
	Checked     bool         `json:"checked"`
	Children    []*CheckItem `json:"children,omitempty"`
}

// Progress summarizes completion of a checklist
type Progress struct {
	Total   int     `json:"total"`
	Checked int     `json:"checked"`
	Percent float64 `json:"percent"`
}

// ProblemTree is a checklist rooted in one problem description. The ID
// index is rebuilt whenever the tree is constructed or deserialized, making
// per-item lookups and updates O(1).
type ProblemTree struct {
	Problem  string     `json:"problem"`
	Category string     `json:"category"`
	Severity string     `json:"severity"`
	Root     *CheckItem `json:"root"`

	index map[string]*CheckItem
}

// NewProblemTree creates a tree and assigns stable IDs to every node
func NewProblemTree(problem, category, severity string, root *CheckItem) *ProblemTree {
	t := &ProblemTree{
		Problem:  problem,
		Category: category,
		Severity: severity,
		Root:     root,
	}
	assignIDs(root, "1")
	t.reindex()
	return t
}

// assignIDs numbers nodes by position: "1", "1.1", "1.2.1" and so on
func assignIDs(item *CheckItem, id string) {
	if item == nil {
		return
	}
	item.ID = id
	for i, child := range item.Children {
		assignIDs(child, fmt.Sprintf("%s.%d", id, i+1))
	}
}

func (t *ProblemTree) reindex() {
	t.index = make(map[string]*CheckItem)
	t.walk(t.Root, func(item *CheckItem) {
		t.index[item.ID] = item
	})
}

func (t *ProblemTree) walk(item *CheckItem, fn func(*CheckItem)) {
	if item == nil {
		return
	}
	fn(item)
	for _, child := range item.Children {
		t.walk(child, fn)
	}
}

// Find returns the item with the given ID
func (t *ProblemTree) Find(id string) (*CheckItem, bool) {
	item, ok := t.index[id]
	return item, ok
}

// SetChecked marks one item done or not done
func (t *ProblemTree) SetChecked(id string, checked bool) error {
	item, ok := t.index[id]
	if !ok {
		return fmt.Errorf("no checklist item with id %q", id)
	}
	item.Checked = checked
	return nil
}

// Progress reports completion over all items in the tree
func (t *ProblemTree) Progress() Progress {
	var p Progress
	t.walk(t.Root, func(item *CheckItem) {
		p.Total++
		if item.Checked {
			p.Checked++
		}
	})
	if p.Total > 0 {
		p.Percent = float64(p.Checked) / float64(p.Total) * 100
	}
	return p
}

// NextUnchecked returns the first unchecked item in depth-first order
func (t *ProblemTree) NextUnchecked() (*CheckItem, bool) {
	var next *CheckItem
	t.walk(t.Root, func(item *CheckItem) {
		if next == nil && !item.Checked {
			next = item
		}
	})
	return next, next != nil
}

// ByCategory returns all items with the given category in depth-first order
func (t *ProblemTree) ByCategory(category string) []*CheckItem {
	var out []*CheckItem
	t.walk(t.Root, func(item *CheckItem) {
		if item.Category == category {
			out = append(out, item)
		}
	})
	return out
}

// BySeverity returns all items with the given severity in depth-first order
func (t *ProblemTree) BySeverity(severity string) []*CheckItem {
	var out []*CheckItem
	t.walk(t.Root, func(item *CheckItem) {
		if item.Severity == severity {
			out = append(out, item)
		}
	})
	return out
}

// ToJSON serializes the tree
func (t *ProblemTree) ToJSON() ([]byte, error) {
	return json.Marshal(t)
}

// FromJSON deserializes a tree and rebuilds its ID index
func FromJSON(data []byte) (*ProblemTree, error) {
	var t ProblemTree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode checklist: %w", err)
	}
	if t.Root == nil {
		return nil, fmt.Errorf("decode checklist: missing root item")
	}
	t.reindex()
	return &t, nil
}
