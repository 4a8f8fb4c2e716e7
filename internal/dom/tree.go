package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Attr returns the value of an attribute and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrValue returns the attribute value or the empty string.
func AttrValue(n *html.Node, key string) string {
	v, _ := Attr(n, key)
	return v
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, key, val string) {
	if n == nil {
		return
	}
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	if n == nil {
		return
	}
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

// HasClassToken reports whether the class attribute contains token exactly.
func HasClassToken(n *html.Node, token string) bool {
	for _, c := range strings.Fields(AttrValue(n, "class")) {
		if c == token {
			return true
		}
	}
	return false
}

// Text returns the element's text content with whitespace collapsed. Text
// nodes are joined with a space so adjacent inline elements do not run
// their words together.
func Text(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			if s := strings.TrimSpace(c.Data); s != "" {
				parts = append(parts, s)
			}
			return
		case html.CommentNode:
			return
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	if n != nil {
		walk(n)
	}
	return NormalizeSpace(strings.Join(parts, " "))
}

// OwnText returns only the element's direct text children, collapsed.
func OwnText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var parts []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			if s := strings.TrimSpace(c.Data); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return NormalizeSpace(strings.Join(parts, " "))
}

// NormalizeSpace trims s and collapses internal runs of whitespace.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Elements returns every element under root, root included, in document order.
func Elements(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// Contains reports whether n is a descendant of ancestor or ancestor itself.
func Contains(ancestor, n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// ParentElement returns the nearest element ancestor, or nil.
func ParentElement(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

// Closest walks from n (inclusive) up at most depth element levels and
// returns the first element matching pred.
func Closest(n *html.Node, depth int, pred func(*html.Node) bool) *html.Node {
	cur := n
	if cur != nil && cur.Type != html.ElementNode {
		cur = ParentElement(cur)
	}
	for i := 0; cur != nil && i <= depth; i++ {
		if pred(cur) {
			return cur
		}
		cur = ParentElement(cur)
	}
	return nil
}

// Find returns the first element under root, root included, matching pred.
func Find(root *html.Node, pred func(*html.Node) bool) *html.Node {
	for _, n := range Elements(root) {
		if pred(n) {
			return n
		}
	}
	return nil
}

// Describe renders a short human-readable label for logs.
func Describe(n *html.Node) string {
	if n == nil {
		return "<nil>"
	}
	if n.Type != html.ElementNode {
		return fmt.Sprintf("#text %q", truncate(NormalizeSpace(n.Data), 40))
	}
	var b strings.Builder
	b.WriteString(n.Data)
	if id := AttrValue(n, "id"); id != "" {
		b.WriteString("#" + id)
	}
	if cls := strings.Fields(AttrValue(n, "class")); len(cls) > 0 {
		b.WriteString("." + strings.Join(cls, "."))
	}
	if t := Text(n); t != "" {
		fmt.Fprintf(&b, " %q", truncate(t, 40))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// Hidden reports whether n or an ancestor is hidden by markup: the hidden
// attribute or an inline display:none / visibility:hidden.
func Hidden(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if _, ok := Attr(cur, "hidden"); ok {
			return true
		}
		style := strings.ReplaceAll(strings.ToLower(AttrValue(cur, "style")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return true
		}
	}
	return false
}
