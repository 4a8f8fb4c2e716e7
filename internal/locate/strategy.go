package locate

import (
	"golang.org/x/net/html"
)

// Strategy produces candidate elements for an ordinal, in document order.
type Strategy struct {
	Name       string
	Candidates func(scope *html.Node, ordinal int) []*html.Node
}

// FirstMatch runs strategies in order and returns the first candidate that
// reject does not refuse, together with the name of the strategy that
// produced it. A nil reject accepts everything.
func FirstMatch(scope *html.Node, ordinal int, reject func(*html.Node) bool, strategies ...Strategy) (*html.Node, string) {
	if scope == nil {
		return nil, ""
	}
	for _, s := range strategies {
		for _, c := range s.Candidates(scope, ordinal) {
			if c == nil {
				continue
			}
			if reject != nil && reject(c) {
				continue
			}
			return c, s.Name
		}
	}
	return nil, ""
}

// documentOrder sorts nodes by their position under root and drops
// duplicates and nodes outside root.
func documentOrder(root *html.Node, nodes []*html.Node) []*html.Node {
	if len(nodes) < 2 {
		return nodes
	}
	want := make(map[*html.Node]bool, len(nodes))
	for _, n := range nodes {
		want[n] = true
	}
	out := make([]*html.Node, 0, len(want))
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if want[n] {
			out = append(out, n)
			delete(want, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}
