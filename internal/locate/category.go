package locate

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/pablasso/ticksel/internal/dom"
	"golang.org/x/net/html"
)

// Category control strategy names, in cascade order.
const (
	StrategyAttribute = "attribute"
	StrategyExactText = "exact-text"
	StrategyAriaText  = "aria-text"
	StrategyIndicator = "indicator"
	StrategyTextNode  = "text-node"
	StrategyOwnText   = "own-text"
)

// FindCategoryControl returns the element to click to select the given
// category, and the name of the strategy that found it. Candidates that
// mention an exclusion keyword are skipped in every strategy.
func (l *Locator) FindCategoryControl(scope *html.Node, ordinal int) (dom.Handle, string, bool) {
	if scope == nil || ordinal < 1 {
		return dom.Handle{}, "", false
	}
	n, name := FirstMatch(scope, ordinal, l.Excluded, l.strategies...)
	if n == nil {
		return dom.Handle{}, "", false
	}
	return dom.HandleFor(n), name, true
}

// CategoryStrategies returns the category cascade, most specific first.
func (l *Locator) CategoryStrategies() []Strategy {
	return []Strategy{
		{Name: StrategyAttribute, Candidates: l.byAttribute},
		{Name: StrategyExactText, Candidates: l.byExactText},
		{Name: StrategyAriaText, Candidates: l.byAriaText},
		{Name: StrategyIndicator, Candidates: l.byIndicator},
		{Name: StrategyTextNode, Candidates: l.byTextNode},
		{Name: StrategyOwnText, Candidates: l.byOwnText},
	}
}

func (l *Locator) byAttribute(scope *html.Node, ordinal int) []*html.Node {
	word := "category"
	if identWord.MatchString(l.labels.Category) {
		word = strings.ToLower(l.labels.Category)
	}
	selectors := []string{
		fmt.Sprintf(`[data-%s="%d"]`, word, ordinal),
		fmt.Sprintf(`input[type="radio"][value="%d"]`, ordinal),
		fmt.Sprintf(`input[type="checkbox"][value="%d"]`, ordinal),
		fmt.Sprintf(`input[value="%s%d"]`, word, ordinal),
		fmt.Sprintf(`.%s-%d`, word, ordinal),
		fmt.Sprintf(`.%s%d`, word, ordinal),
	}
	doc := goquery.NewDocumentFromNode(scope)
	return documentOrder(scope, doc.Find(strings.Join(selectors, ", ")).Nodes)
}

// byExactText matches the innermost elements whose whole text is the label.
// Wrappers whose text is the same label only because of that child are
// skipped; resolution climbs back to them when they are the clickable part.
func (l *Locator) byExactText(scope *html.Node, ordinal int) []*html.Node {
	var out []*html.Node
	for _, n := range dom.Elements(scope) {
		if !l.isCategoryLabel(dom.Text(n), ordinal) || l.childIsLabel(n, ordinal) {
			continue
		}
		out = append(out, l.resolveOrSelf(n))
	}
	return out
}

func (l *Locator) childIsLabel(n *html.Node, ordinal int) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElement(c) && l.isCategoryLabel(dom.Text(c), ordinal) {
			return true
		}
	}
	return false
}

func (l *Locator) byAriaText(scope *html.Node, ordinal int) []*html.Node {
	re := l.categoryPattern(ordinal)
	var out []*html.Node
	for _, n := range dom.Elements(scope) {
		if !ariaMarked(n) {
			continue
		}
		if re.MatchString(dom.Text(n)) || re.MatchString(dom.AttrValue(n, "aria-label")) {
			out = append(out, n)
		}
	}
	return out
}

func ariaMarked(n *html.Node) bool {
	if interactiveRoles[strings.ToLower(dom.AttrValue(n, "role"))] {
		return true
	}
	for _, key := range []string{"aria-label", "aria-checked", "aria-selected", "aria-pressed"} {
		if _, ok := dom.Attr(n, key); ok {
			return true
		}
	}
	return false
}

func (l *Locator) byIndicator(scope *html.Node, ordinal int) []*html.Node {
	re := l.categoryPattern(ordinal)
	doc := goquery.NewDocumentFromNode(scope)
	var out []*html.Node
	for _, n := range documentOrder(scope, doc.Find(l.indicatorSelector()).Nodes) {
		if re.MatchString(dom.Text(n)) {
			out = append(out, l.resolveOrSelf(n))
		}
	}
	return out
}

// byTextNode matches raw text nodes and climbs to the nearest element that
// exposes aria-expanded, for pages that render categories as disclosure
// rows.
func (l *Locator) byTextNode(scope *html.Node, ordinal int) []*html.Node {
	re := l.categoryPattern(ordinal)
	var out []*html.Node
	for _, t := range htmlquery.Find(scope, "//text()") {
		if !re.MatchString(t.Data) {
			continue
		}
		expandable := dom.Closest(t, l.ancestorDepth, func(c *html.Node) bool {
			_, ok := dom.Attr(c, "aria-expanded")
			return ok
		})
		if expandable != nil {
			out = append(out, expandable)
		}
	}
	return out
}

func (l *Locator) byOwnText(scope *html.Node, ordinal int) []*html.Node {
	var out []*html.Node
	for _, n := range dom.Elements(scope) {
		if l.isCategoryLabel(dom.OwnText(n), ordinal) {
			out = append(out, n)
		}
	}
	return out
}

func (l *Locator) resolveOrSelf(n *html.Node) *html.Node {
	if target := ResolveInteractive(n, l.ancestorDepth); target != nil {
		return target
	}
	return n
}

// FindCategoryIn looks for the category control of one section. The
// section's container is searched first; then the whole tree, for controls
// rendered away from their section, skipping any control that sits under a
// different section's label.
func (l *Locator) FindCategoryIn(root *html.Node, section, category int) (dom.Handle, string, bool) {
	if root == nil {
		return dom.Handle{}, "", false
	}
	if s, ok := l.FindSection(root, section); ok {
		if h, name, ok := l.FindCategoryControl(s.Node, category); ok {
			return h, name, true
		}
	}

	m := l.newSectionMatcher(section)
	reject := func(n *html.Node) bool {
		return l.Excluded(n) || belongsElsewhere(n, m)
	}
	n, name := FirstMatch(root, category, reject, l.strategies...)
	if n == nil {
		return dom.Handle{}, "", false
	}
	return dom.HandleFor(n), name, true
}

// belongsElsewhere reports whether the nearest ancestor that names any
// section names only other sections.
func belongsElsewhere(n *html.Node, m *sectionMatcher) bool {
	for cur := n; cur != nil; cur = dom.ParentElement(cur) {
		text := dom.Text(cur)
		if m.names(text) {
			return false
		}
		if m.spansOther(text) {
			return true
		}
	}
	return false
}
