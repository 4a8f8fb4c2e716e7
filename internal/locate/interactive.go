package locate

import (
	"strings"

	"github.com/pablasso/ticksel/internal/dom"
	"golang.org/x/net/html"
)

var interactiveRoles = map[string]bool{
	"button":        true,
	"radio":         true,
	"option":        true,
	"tab":           true,
	"checkbox":      true,
	"menuitemradio": true,
	"switch":        true,
}

// IsInteractive reports whether clicking n is likely to do something.
func IsInteractive(n *html.Node) bool {
	if !dom.IsElement(n) {
		return false
	}
	switch n.Data {
	case "button", "label", "a", "select", "summary":
		return true
	case "input":
		switch strings.ToLower(dom.AttrValue(n, "type")) {
		case "radio", "checkbox", "button", "submit":
			return true
		}
	}
	if interactiveRoles[strings.ToLower(dom.AttrValue(n, "role"))] {
		return true
	}
	if _, ok := dom.Attr(n, "onclick"); ok {
		return true
	}
	if _, ok := dom.Attr(n, "tabindex"); ok {
		return true
	}
	if dom.HasClassToken(n, "clickable") {
		return true
	}
	style := strings.ReplaceAll(strings.ToLower(dom.AttrValue(n, "style")), " ", "")
	return strings.Contains(style, "cursor:pointer")
}

// ResolveInteractive walks up from n at most depth levels and returns the
// nearest interactive element. An element that wraps exactly one radio or
// checkbox resolves to that input. Returns nil when nothing qualifies.
func ResolveInteractive(n *html.Node, depth int) *html.Node {
	var target *html.Node
	dom.Closest(n, depth, func(c *html.Node) bool {
		if IsInteractive(c) {
			target = c
			return true
		}
		if in := soleChoiceInput(c); in != nil {
			target = in
			return true
		}
		return false
	})
	return target
}

func soleChoiceInput(n *html.Node) *html.Node {
	var found *html.Node
	for _, c := range dom.Elements(n) {
		if c.Data != "input" {
			continue
		}
		switch strings.ToLower(dom.AttrValue(c, "type")) {
		case "radio", "checkbox":
			if found != nil {
				return nil
			}
			found = c
		}
	}
	return found
}
