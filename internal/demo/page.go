package demo

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/pablasso/ticksel/internal/dom"
	"github.com/pablasso/ticksel/internal/dom/memdom"
	"golang.org/x/net/html"
)

//go:embed fixtures/tournament.html fixtures/panels/*.html
var fixtures embed.FS

// PageHTML returns the demo page markup as first loaded.
func PageHTML() ([]byte, error) {
	data, err := fixtures.ReadFile("fixtures/tournament.html")
	if err != nil {
		return nil, fmt.Errorf("read embedded demo page: %w", err)
	}
	return data, nil
}

// NewPage parses the demo page. Seats behind a "Show more" button render
// into their panel one settle after the click, or after delays[panelID]
// settles when set.
func NewPage(delays map[string]int, opts ...memdom.Option) (*memdom.Page, error) {
	data, err := PageHTML()
	if err != nil {
		return nil, err
	}
	opts = append(opts, memdom.WithBehavior(reveal(delays)))
	return memdom.Parse(bytes.NewReader(data), opts...)
}

// reveal handles buttons carrying data-reveal: the first click marks the
// button expanded and schedules the panel's seats to render.
func reveal(delays map[string]int) memdom.Behavior {
	return func(p *memdom.Page, n *html.Node) bool {
		id := dom.AttrValue(n, "data-reveal")
		if id == "" {
			return false
		}
		if dom.AttrValue(n, "aria-expanded") == "true" {
			return true
		}
		dom.SetAttr(n, "aria-expanded", "true")

		markup, err := fixtures.ReadFile("fixtures/panels/" + id + ".html")
		if err != nil {
			return true
		}
		p.RenderLater(delays[id], func(doc *html.Node) {
			panel := dom.Find(doc, func(c *html.Node) bool { return dom.AttrValue(c, "id") == id })
			if panel == nil || panel.FirstChild != nil {
				return
			}
			nodes, err := html.ParseFragment(bytes.NewReader(markup), panel)
			if err != nil {
				return
			}
			for _, c := range nodes {
				panel.AppendChild(c)
			}
		})
		return true
	}
}
