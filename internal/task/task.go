package task

import "fmt"

// MaxQuantity is the largest quantity a single task may request.
const MaxQuantity = 4

// Task is one selection to perform: pick Category inside Section and set
// the quantity. Tasks are read-only once a run starts.
type Task struct {
	ID       string `yaml:"id,omitempty" json:"id"`
	Section  int    `yaml:"section" json:"section"`
	Category int    `yaml:"category" json:"category"`
	Quantity int    `yaml:"quantity" json:"quantity"`
}

// String renders the task for logs and status lines.
func (t Task) String() string {
	return fmt.Sprintf("%s: section %d, category %d, qty %d", t.ID, t.Section, t.Category, t.Quantity)
}

// Label renders the task using the page's own words, e.g. "Match 3 · Category 2 ×2".
func (t Task) Label(sectionWord, categoryWord string) string {
	return fmt.Sprintf("%s %d · %s %d ×%d", sectionWord, t.Section, categoryWord, t.Category, t.Quantity)
}

// Validate checks the task's ordinals and quantity bounds.
func (t Task) Validate() error {
	if t.Section < 1 {
		return fmt.Errorf("task %s: section must be positive, got %d", t.ID, t.Section)
	}
	if t.Category < 1 {
		return fmt.Errorf("task %s: category must be positive, got %d", t.ID, t.Category)
	}
	if t.Quantity < 1 || t.Quantity > MaxQuantity {
		return fmt.Errorf("task %s: quantity must be between 1 and %d, got %d", t.ID, MaxQuantity, t.Quantity)
	}
	return nil
}
