package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// XPath returns the absolute, position-indexed path of an element, e.g.
// /html[1]/body[1]/div[2]/button[1]. Positions count same-tag element
// siblings, which is how both htmlquery and document.evaluate index them.
func XPath(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type != html.ElementNode {
		n = ParentElement(n)
		if n == nil {
			return ""
		}
	}

	var segments []string
	for cur := n; cur != nil && cur.Type == html.ElementNode; cur = cur.Parent {
		pos := 1
		for s := cur.PrevSibling; s != nil; s = s.PrevSibling {
			if s.Type == html.ElementNode && s.Data == cur.Data {
				pos++
			}
		}
		segments = append(segments, fmt.Sprintf("%s[%d]", cur.Data, pos))
	}

	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return "/" + strings.Join(segments, "/")
}
