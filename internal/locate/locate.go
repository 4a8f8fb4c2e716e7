// Package locate finds sections and category controls in a page snapshot.
//
// Locating never touches the live page. Callers take a snapshot, search it
// here and act on the returned handle straight away; after anything that
// can re-render they search again.
package locate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pablasso/ticksel/internal/dom"
	"golang.org/x/net/html"
)

// Labels are the words a page uses to name sections and categories.
type Labels struct {
	Section       string
	SectionAbbrev string
	Category      string
	Exclude       []string
}

// DefaultLabels returns the labels used by the stock config.
func DefaultLabels() Labels {
	return Labels{
		Section:       "Match",
		SectionAbbrev: "M",
		Category:      "Category",
		Exclude:       []string{"wheelchair", "accessible", "accessibility", "easy access"},
	}
}

// Locator searches snapshots for sections and category controls.
type Locator struct {
	labels        Labels
	sectionDepth  int
	ancestorDepth int
	strategies    []Strategy
}

// New creates a Locator with the default search depths.
func New(labels Labels) *Locator {
	l := &Locator{
		labels:        labels,
		sectionDepth:  6,
		ancestorDepth: 5,
	}
	l.strategies = l.CategoryStrategies()
	return l
}

// WithDepths sets how far section and interactive-target searches walk up.
func (l *Locator) WithDepths(section, ancestor int) *Locator {
	l.sectionDepth = section
	l.ancestorDepth = ancestor
	l.strategies = l.CategoryStrategies()
	return l
}

// Labels returns the locator's labels.
func (l *Locator) Labels() Labels {
	return l.labels
}

// AncestorDepth is the bound used when resolving text to a clickable target.
func (l *Locator) AncestorDepth() int {
	return l.ancestorDepth
}

// Excluded reports whether n's text or aria-label mentions an exclusion
// keyword.
func (l *Locator) Excluded(n *html.Node) bool {
	if len(l.labels.Exclude) == 0 || n == nil {
		return false
	}
	text := strings.ToLower(dom.Text(n) + " " + dom.AttrValue(n, "aria-label"))
	for _, kw := range l.labels.Exclude {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// categoryLabels returns "Category N" and "CategoryN".
func (l *Locator) categoryLabels(ordinal int) []string {
	return []string{
		fmt.Sprintf("%s %d", l.labels.Category, ordinal),
		fmt.Sprintf("%s%d", l.labels.Category, ordinal),
	}
}

// categoryPattern matches the category label as a whole word, so that
// "Category 2" does not match "Category 20".
func (l *Locator) categoryPattern(ordinal int) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)\b%s\s*%d\b`, regexp.QuoteMeta(l.labels.Category), ordinal))
}

func (l *Locator) isCategoryLabel(text string, ordinal int) bool {
	text = dom.NormalizeSpace(text)
	for _, label := range l.categoryLabels(ordinal) {
		if strings.EqualFold(text, label) {
			return true
		}
	}
	return false
}

// identWord reports whether w can be dropped into a CSS selector unescaped.
var identWord = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
