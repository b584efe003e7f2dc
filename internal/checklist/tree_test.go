package checklist

import (
	"testing"
)

func sampleTree() *ProblemTree {
	root := &CheckItem{
		Title: "root",
		Children: []*CheckItem{
			{Title: "first", Children: []*CheckItem{
				{Title: "first child"},
			}},
			{Title: "second"},
		},
	}
	return NewProblemTree("container runs as root", CategoryPodSecurity, SeverityCritical, root)
}

func TestAssignIDs(t *testing.T) {
	tree := sampleTree()

	want := map[string]string{
		"1":     "root",
		"1.1":   "first",
		"1.1.1": "first child",
		"1.2":   "second",
	}
	for id, title := range want {
		item, ok := tree.Find(id)
		if !ok {
			t.Errorf("Find(%q) missing", id)
			continue
		}
		if item.Title != title {
			t.Errorf("Find(%q).Title = %q, want %q", id, item.Title, title)
		}
	}
	if _, ok := tree.Find("1.3"); ok {
		t.Error("Find(1.3) found an item, want miss")
	}
}

func TestSetCheckedAndProgress(t *testing.T) {
	tree := sampleTree()

	p := tree.Progress()
	if p.Total != 4 || p.Checked != 0 || p.Percent != 0 {
		t.Errorf("initial progress = %+v", p)
	}

	if err := tree.SetChecked("1.1", true); err != nil {
		t.Fatalf("SetChecked: %v", err)
	}
	if err := tree.SetChecked("1.2", true); err != nil {
		t.Fatalf("SetChecked: %v", err)
	}
	p = tree.Progress()
	if p.Total != 4 || p.Checked != 2 || p.Percent != 50 {
		t.Errorf("progress after two checks = %+v", p)
	}

	if err := tree.SetChecked("1.1", false); err != nil {
		t.Fatalf("SetChecked uncheck: %v", err)
	}
	if p = tree.Progress(); p.Checked != 1 {
		t.Errorf("progress after uncheck = %+v", p)
	}

	if err := tree.SetChecked("nope", true); err == nil {
		t.Error("SetChecked on unknown id error = nil")
	}
}

func TestNextUnchecked(t *testing.T) {
	tree := sampleTree()

	next, ok := tree.NextUnchecked()
	if !ok || next.ID != "1" {
		t.Fatalf("NextUnchecked = %v, %v; want root first", next, ok)
	}

	// Depth-first: after the root, its first subtree comes before siblings
	tree.SetChecked("1", true)
	next, _ = tree.NextUnchecked()
	if next.ID != "1.1" {
		t.Errorf("NextUnchecked after root = %q, want 1.1", next.ID)
	}

	for _, id := range []string{"1.1", "1.1.1", "1.2"} {
		tree.SetChecked(id, true)
	}
	if _, ok := tree.NextUnchecked(); ok {
		t.Error("NextUnchecked on complete tree found an item")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	tree := sampleTree()
	tree.SetChecked("1.1.1", true)

	data, err := tree.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	restored, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}

	if restored.Problem != tree.Problem || restored.Category != tree.Category {
		t.Errorf("restored tree = %q/%q, want %q/%q",
			restored.Problem, restored.Category, tree.Problem, tree.Category)
	}

	// Index is rebuilt so updates still work after the round-trip
	item, ok := restored.Find("1.1.1")
	if !ok || !item.Checked {
		t.Errorf("restored Find(1.1.1) = %v, %v; want checked item", item, ok)
	}
	if err := restored.SetChecked("1.2", true); err != nil {
		t.Errorf("SetChecked on restored tree: %v", err)
	}

	if p := restored.Progress(); p.Checked != 2 {
		t.Errorf("restored progress = %+v, want 2 checked", p)
	}
}

func TestFromJSONMissingRoot(t *testing.T) {
	if _, err := FromJSON([]byte(`{"problem": "x"}`)); err == nil {
		t.Error("FromJSON without root error = nil")
	}
	if _, err := FromJSON([]byte(`not json`)); err == nil {
		t.Error("FromJSON on garbage error = nil")
	}
}

func TestByCategoryAndSeverity(t *testing.T) {
	tree := Build("container runs privileged", CategoryPodSecurity, SeverityHigh)

	critical := tree.BySeverity(SeverityCritical)
	if len(critical) == 0 {
		t.Error("BySeverity(critical) empty, template marks privileged items critical")
	}
	for _, item := range tree.ByCategory(CategoryPodSecurity) {
		if item.Category != CategoryPodSecurity {
			t.Errorf("item %q category = %q", item.ID, item.Category)
		}
	}
	if len(tree.ByCategory(CategoryRBAC)) != 0 {
		t.Error("ByCategory(rbac) found items in a pod_security tree")
	}
}
