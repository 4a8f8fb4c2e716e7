// Package expand opens collapsed sections so their category controls render.
package expand

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pablasso/ticksel/internal/dom"
	"github.com/pablasso/ticksel/internal/locate"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Expander finds and triggers disclosure controls inside a section.
type Expander struct {
	phrases  []string
	category *regexp.Regexp
	settle   time.Duration
	logger   *zap.Logger
}

// New creates an Expander matching the given disclosure phrases
// (case-insensitive).
func New(phrases []string) *Expander {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lowered = append(lowered, p)
		}
	}
	return &Expander{
		phrases:  lowered,
		category: categoryPattern("Category"),
		settle:   500 * time.Millisecond,
		logger:   zap.NewNop(),
	}
}

// WithCategoryWord sets the word category rows are labelled with. Rows
// that read like a category are never treated as section disclosures.
func (e *Expander) WithCategoryWord(word string) *Expander {
	e.category = categoryPattern(word)
	return e
}

// WithSettle sets the wait after triggering a control.
func (e *Expander) WithSettle(d time.Duration) *Expander {
	e.settle = d
	return e
}

// WithLogger sets the logger.
func (e *Expander) WithLogger(logger *zap.Logger) *Expander {
	e.logger = logger
	return e
}

func categoryPattern(word string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)\b%s\s*\d`, regexp.QuoteMeta(word)))
}

// Expand triggers the section's disclosure control, if it has a collapsed
// one, and waits for the page to settle. It returns false when there was
// nothing to expand. Controls already marked expanded are never clicked,
// so calling Expand again is harmless.
func (e *Expander) Expand(ctx context.Context, page dom.Page, section dom.Handle) (bool, error) {
	if section.Node == nil {
		return false, fmt.Errorf("expand: empty section handle")
	}

	ctrl := e.Control(section.Node)
	if ctrl == nil {
		return false, nil
	}

	h := dom.HandleFor(ctrl)
	e.logger.Debug("expanding section",
		zap.String("section", section.Path),
		zap.String("control", dom.Describe(ctrl)),
	)
	if err := page.Click(ctx, h); err != nil {
		return false, fmt.Errorf("expand %s: %w", h.Path, err)
	}
	if err := page.Settle(ctx, e.settle); err != nil {
		return true, err
	}
	return true, nil
}

// Control returns the collapsed disclosure control inside section, or nil.
// A clickable element whose text carries a disclosure phrase wins over a
// bare aria-expanded="false" element. A phrase control without
// aria-expanded is taken as a toggle and left alone while what it
// discloses is already showing.
func (e *Expander) Control(section *html.Node) *html.Node {
	elements := dom.Elements(section)

	for _, n := range elements {
		if !locate.IsInteractive(n) || !e.hasPhrase(n) || e.looksLikeCategory(n) {
			continue
		}
		state, stateful := dom.Attr(n, "aria-expanded")
		if state == "true" || (!stateful && e.showing(section, n)) {
			continue
		}
		return n
	}

	for _, n := range elements {
		if dom.AttrValue(n, "aria-expanded") == "false" && !e.looksLikeCategory(n) {
			return n
		}
	}
	return nil
}

// showing reports whether ctrl's aria-controls target is visible and
// rendered or, with no target, whether section already shows a category
// row outside ctrl.
func (e *Expander) showing(section, ctrl *html.Node) bool {
	if id := dom.AttrValue(ctrl, "aria-controls"); id != "" {
		if target := dom.Find(top(section), func(n *html.Node) bool { return dom.AttrValue(n, "id") == id }); target != nil {
			return !dom.Hidden(target) && dom.Text(target) != ""
		}
	}

	var found bool
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found || n == ctrl {
			return
		}
		if n.Type == html.TextNode && e.category.MatchString(n.Data) && !dom.Hidden(n.Parent) {
			found = true
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(section)
	return found
}

func top(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

func (e *Expander) hasPhrase(n *html.Node) bool {
	text := strings.ToLower(dom.Text(n) + " " + dom.AttrValue(n, "aria-label"))
	for _, p := range e.phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func (e *Expander) looksLikeCategory(n *html.Node) bool {
	return e.category.MatchString(dom.Text(n))
}
