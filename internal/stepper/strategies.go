package stepper

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pablasso/ticksel/internal/dom"
	"github.com/pablasso/ticksel/internal/locate"
	"golang.org/x/net/html"
)

var (
	increaseWords = []string{"increase", "increment", "plus"}
	iconMarkers   = []string{"plus", "add"}
	legacyInc     = []string{"increase", "add", "plus"}
	legacyDec     = []string{"decrease", "remove", "minus"}
)

func query(scope *html.Node, selector string) []*html.Node {
	return goquery.NewDocumentFromNode(scope).Find(selector).Nodes
}

func targets(nodes []*html.Node) []control {
	out := make([]control, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, control{target: n})
	}
	return out
}

func containsAny(s string, words []string) bool {
	s = strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func findNumericInputs(scope *html.Node) []control {
	return targets(query(scope, `input[type="number"], input[class*="quantity"], input[class*="qty"], input[role="spinbutton"]`))
}

func findAriaIncrease(scope *html.Node) []control {
	var out []*html.Node
	for _, n := range query(scope, `[aria-label]`) {
		if containsAny(dom.AttrValue(n, "aria-label"), increaseWords) {
			out = append(out, n)
		}
	}
	return targets(out)
}

func findClassIncrease(scope *html.Node) []control {
	return targets(query(scope, `[class*="increment"], [class*="increase"], [class*="plus"]`))
}

// findIconIncrease matches icon elements marked as plus/add and clicks the
// control that wraps them.
func findIconIncrease(scope *html.Node) []control {
	var out []*html.Node
	for _, icon := range query(scope, `svg, i, img, [class*="icon"]`) {
		target := locate.ResolveInteractive(icon, 3)
		if target == nil {
			target = icon
		}
		marker := strings.Join([]string{
			dom.AttrValue(icon, "data-icon"),
			dom.AttrValue(icon, "aria-label"),
			dom.AttrValue(icon, "title"),
			dom.AttrValue(icon, "alt"),
			dom.AttrValue(icon, "class"),
			dom.AttrValue(target, "title"),
			dom.AttrValue(target, "aria-label"),
		}, " ")
		if containsAny(marker, iconMarkers) {
			out = append(out, target)
		}
	}
	return targets(out)
}

// findLegacyPair matches "+" / "-" buttons. The decrement is optional.
func findLegacyPair(scope *html.Node) []control {
	var inc, dec *html.Node
	for _, n := range query(scope, `button, [role="button"], input[type="button"]`) {
		label := strings.Join([]string{dom.Text(n), dom.AttrValue(n, "aria-label"), dom.AttrValue(n, "title"), dom.AttrValue(n, "value")}, " ")
		text := strings.TrimSpace(dom.Text(n) + dom.AttrValue(n, "value"))
		switch {
		case inc == nil && (text == "+" || containsAny(label, legacyInc)):
			inc = n
		case dec == nil && (text == "-" || text == "−" || containsAny(label, legacyDec)):
			dec = n
		}
	}
	if inc == nil {
		return nil
	}
	return []control{{target: inc, decrement: dec}}
}

func (s *Stepper) setNumeric(ctx context.Context, page dom.Page, c control, q int) error {
	h := dom.HandleFor(c.target)
	if err := page.SetValue(ctx, h, strconv.Itoa(q)); err != nil {
		return err
	}
	for _, event := range []string{"input", "change"} {
		if err := page.Dispatch(ctx, h, event); err != nil {
			return err
		}
	}
	return page.Settle(ctx, s.settle)
}

func (s *Stepper) increment(ctx context.Context, page dom.Page, c control, q int) error {
	h := dom.HandleFor(c.target)
	for i := 0; i < q; i++ {
		if err := page.Click(ctx, h); err != nil {
			return err
		}
		if err := page.Settle(ctx, s.clickDelay); err != nil {
			return err
		}
	}
	return nil
}

// resetThenIncrement presses decrement until it reports disabled or the
// attempt bound is hit, then increments q times.
func (s *Stepper) resetThenIncrement(ctx context.Context, page dom.Page, c control, q int) error {
	if c.decrement != nil {
		dec := dom.HandleFor(c.decrement)
		for i := 0; i < s.decrementAttempts; i++ {
			state, err := page.Inspect(ctx, dec)
			if err != nil || state.Disabled || !state.Visible {
				break
			}
			if err := page.Click(ctx, dec); err != nil {
				return err
			}
			if err := page.Settle(ctx, s.decrementDelay); err != nil {
				return err
			}
		}
	}
	return s.increment(ctx, page, c, q)
}
