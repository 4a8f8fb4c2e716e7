package memdom

import (
	"strconv"
	"strings"

	"github.com/pablasso/ticksel/internal/dom"
	"golang.org/x/net/html"
)

// Checkable toggles checkbox inputs and selects radio inputs, clearing the
// other radios of the same name.
func Checkable(p *Page, n *html.Node) bool {
	if n.Data != "input" {
		return false
	}
	switch strings.ToLower(dom.AttrValue(n, "type")) {
	case "checkbox":
		if _, checked := dom.Attr(n, "checked"); checked {
			dom.RemoveAttr(n, "checked")
		} else {
			dom.SetAttr(n, "checked", "checked")
		}
		return true
	case "radio":
		if name := dom.AttrValue(n, "name"); name != "" {
			for _, other := range dom.Elements(p.doc) {
				if other.Data == "input" && dom.AttrValue(other, "type") == "radio" && dom.AttrValue(other, "name") == name {
					dom.RemoveAttr(other, "checked")
				}
			}
		}
		dom.SetAttr(n, "checked", "checked")
		return true
	}
	return false
}

// Disclosure flips aria-expanded on the clicked control (or a close
// ancestor) and queues the show/hide of its aria-controls target for the
// next Settle. A control with aria-controls but no aria-expanded only
// reveals.
func Disclosure(p *Page, n *html.Node) bool {
	ctrl := dom.Closest(n, 2, func(c *html.Node) bool {
		_, hasExpanded := dom.Attr(c, "aria-expanded")
		_, hasControls := dom.Attr(c, "aria-controls")
		return hasExpanded || hasControls
	})
	if ctrl == nil {
		return false
	}

	expand := true
	if state, ok := dom.Attr(ctrl, "aria-expanded"); ok {
		expand = state != "true"
		dom.SetAttr(ctrl, "aria-expanded", strconv.FormatBool(expand))
	}

	target := dom.AttrValue(ctrl, "aria-controls")
	if target == "" {
		return true
	}
	p.afterLocked(1, func(doc *html.Node) {
		for _, id := range strings.Fields(target) {
			panel := dom.Find(doc, func(c *html.Node) bool { return dom.AttrValue(c, "id") == id })
			if panel == nil {
				continue
			}
			if expand {
				dom.RemoveAttr(panel, "hidden")
			} else {
				dom.SetAttr(panel, "hidden", "")
			}
		}
	})
	return true
}

// SpinButton applies a data-step click to the nearest role=spinbutton,
// clamped to aria-valuemin/aria-valuemax, and disables the step controls
// that can no longer move the value.
func SpinButton(p *Page, n *html.Node) bool {
	step, err := strconv.Atoi(dom.AttrValue(n, "data-step"))
	if err != nil || step == 0 {
		return false
	}

	var spin *html.Node
	group := dom.Closest(n, 4, func(c *html.Node) bool {
		spin = dom.Find(c, func(s *html.Node) bool { return dom.AttrValue(s, "role") == "spinbutton" })
		return spin != nil
	})
	if group == nil {
		return false
	}

	lo := intAttr(spin, "aria-valuemin", 0)
	hi := intAttr(spin, "aria-valuemax", 99)
	value := intAttr(spin, "aria-valuenow", lo) + step
	if value < lo {
		value = lo
	}
	if value > hi {
		value = hi
	}

	text := strconv.Itoa(value)
	dom.SetAttr(spin, "aria-valuenow", text)
	if spin.Data == "input" {
		dom.SetAttr(spin, "value", text)
	} else {
		setText(spin, text)
	}

	for _, ctrl := range dom.Elements(group) {
		s, err := strconv.Atoi(dom.AttrValue(ctrl, "data-step"))
		if err != nil || s == 0 {
			continue
		}
		if (s < 0 && value <= lo) || (s > 0 && value >= hi) {
			dom.SetAttr(ctrl, "disabled", "")
		} else {
			dom.RemoveAttr(ctrl, "disabled")
		}
	}
	return true
}

func intAttr(n *html.Node, key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(dom.AttrValue(n, key)))
	if err != nil {
		return def
	}
	return v
}

func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}
