package locate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pablasso/ticksel/internal/dom"
	"golang.org/x/net/html"
)

// FindSection returns the smallest container that names the given section
// ordinal and holds category controls. Structural candidates are tried
// first, then every element of the tree.
func (l *Locator) FindSection(root *html.Node, ordinal int) (dom.Handle, bool) {
	if root == nil || ordinal < 1 {
		return dom.Handle{}, false
	}
	m := l.newSectionMatcher(ordinal)

	if n := l.sectionFrom(l.sectionCandidates(root), m); n != nil {
		return dom.HandleFor(n), true
	}
	if n := l.sectionFrom(dom.Elements(root), m); n != nil {
		return dom.HandleFor(n), true
	}
	return dom.Handle{}, false
}

// sectionCandidates returns the structural containers a section is usually
// rendered in.
func (l *Locator) sectionCandidates(root *html.Node) []*html.Node {
	selectors := []string{"article", "section"}
	if word := l.labels.Section; identWord.MatchString(word) {
		lower := strings.ToLower(word)
		title := strings.ToUpper(lower[:1]) + lower[1:]
		selectors = append([]string{
			fmt.Sprintf(`[class*="%s"]`, lower),
			fmt.Sprintf(`[class*="%s"]`, title),
			fmt.Sprintf(`[data-%s]`, lower),
		}, selectors...)
	}
	doc := goquery.NewDocumentFromNode(root)
	return documentOrder(root, doc.Find(strings.Join(selectors, ", ")).Nodes)
}

func (l *Locator) sectionFrom(candidates []*html.Node, m *sectionMatcher) *html.Node {
	var hits []*html.Node
	for _, c := range candidates {
		text := dom.Text(c)
		if !m.names(text) {
			continue
		}
		// Another section's heading that mentions this one, e.g. "Winner Match 89".
		if k, ok := m.leading(text); ok && k != m.ordinal {
			continue
		}
		hits = append(hits, c)
	}

	for _, hit := range innermost(hits) {
		cur := hit
		for depth := 0; cur != nil && depth <= l.sectionDepth; depth++ {
			if depth > 0 && m.holdsOther(cur, hit) {
				break
			}
			if l.hasCategoryIndicators(cur, dom.Text(cur)) {
				return cur
			}
			cur = dom.ParentElement(cur)
		}
	}
	return nil
}

// innermost keeps the hits that contain no other hit, preserving order.
func innermost(hits []*html.Node) []*html.Node {
	var out []*html.Node
	for _, h := range hits {
		inner := true
		for _, other := range hits {
			if other != h && dom.Contains(h, other) {
				inner = false
				break
			}
		}
		if inner {
			out = append(out, h)
		}
	}
	return out
}

func (l *Locator) hasCategoryIndicators(n *html.Node, text string) bool {
	if l.categoryWordPattern().MatchString(text) {
		return true
	}
	sel := l.indicatorSelector()
	doc := goquery.NewDocumentFromNode(n)
	return doc.Selection.Is(sel) || doc.Find(sel).Length() > 0
}

func (l *Locator) categoryWordPattern() *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)\b%s\s*\d`, regexp.QuoteMeta(l.labels.Category)))
}

func (l *Locator) indicatorSelector() string {
	word := "category"
	if identWord.MatchString(l.labels.Category) {
		word = strings.ToLower(l.labels.Category)
	}
	return fmt.Sprintf(`[data-%s], [class*="%s"]`, word, word)
}

// sectionMatcher recognizes the textual forms of one section ordinal:
// "Match 3", "#M3" and "M3".
type sectionMatcher struct {
	ordinal  int
	patterns []*regexp.Regexp
	others   []*regexp.Regexp
	leads    []*regexp.Regexp
}

func (l *Locator) newSectionMatcher(ordinal int) *sectionMatcher {
	m := &sectionMatcher{ordinal: ordinal}
	word := regexp.QuoteMeta(l.labels.Section)
	m.patterns = append(m.patterns, regexp.MustCompile(fmt.Sprintf(`(?i)\b%s\s*#?\s*%d\b`, word, ordinal)))
	m.others = append(m.others, regexp.MustCompile(fmt.Sprintf(`(?i)\b%s\s*#?\s*(\d+)\b`, word)))
	m.leads = append(m.leads, regexp.MustCompile(fmt.Sprintf(`(?i)^\s*%s\s*#?\s*(\d+)\b`, word)))

	if abbrev := regexp.QuoteMeta(l.labels.SectionAbbrev); abbrev != "" {
		m.patterns = append(m.patterns,
			regexp.MustCompile(fmt.Sprintf(`#%s%d\b`, abbrev, ordinal)),
			regexp.MustCompile(fmt.Sprintf(`\b%s%d\b`, abbrev, ordinal)),
		)
		m.others = append(m.others, regexp.MustCompile(fmt.Sprintf(`\b%s(\d+)\b`, abbrev)))
		m.leads = append(m.leads, regexp.MustCompile(fmt.Sprintf(`^\s*#?%s(\d+)\b`, abbrev)))
	}
	return m
}

func (m *sectionMatcher) names(text string) bool {
	for _, re := range m.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// spansOther reports whether text also names a different ordinal, which
// means the walk has climbed out of this section.
func (m *sectionMatcher) spansOther(text string) bool {
	for _, re := range m.others {
		for _, sub := range re.FindAllStringSubmatch(text, -1) {
			if n, err := strconv.Atoi(sub[1]); err == nil && n != m.ordinal {
				return true
			}
		}
	}
	return false
}

// holdsOther reports whether n contains, off the path from hit up to n, an
// element whose text opens with a different ordinal. The walk has then
// climbed into a container of several sections. Mentions inside a heading
// ("Match 97 · Winner Match 89") do not count.
func (m *sectionMatcher) holdsOther(n, hit *html.Node) bool {
	for _, e := range dom.Elements(n) {
		if e == n || dom.Contains(e, hit) || dom.Contains(hit, e) {
			continue
		}
		if k, ok := m.leading(dom.Text(e)); ok && k != m.ordinal {
			return true
		}
	}
	return false
}

// leading returns the ordinal text opens with, if any.
func (m *sectionMatcher) leading(text string) (int, bool) {
	for _, re := range m.leads {
		if sub := re.FindStringSubmatch(text); sub != nil {
			if n, err := strconv.Atoi(sub[1]); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
