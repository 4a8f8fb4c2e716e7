package expand

import (
	"context"
	"testing"

	"github.com/pablasso/ticksel/internal/dom"
	"github.com/pablasso/ticksel/internal/dom/memdom"
	"golang.org/x/net/html"
)

var phrases = []string{"Show more", "expand", "details", "more options"}

func openSection(t *testing.T, src string) (*memdom.Page, dom.Handle) {
	t.Helper()
	page, err := memdom.ParseString(src)
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	section, err := page.Find(`//*[@id="section"]`)
	if err != nil {
		t.Fatalf("fixture has no section: %v", err)
	}
	return page, section
}

func TestExpand_PhraseControl(t *testing.T) {
	page, section := openSection(t, `<html><body><div id="section">
<h2>Match 1</h2>
<button id="more" aria-expanded="false" aria-controls="panel">Show more</button>
<div id="panel" hidden><button>Category 1</button></div>
</div></body></html>`)

	ok, err := New(phrases).Expand(context.Background(), page, section)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected the section to be expanded")
	}

	more, _ := page.Find(`//*[@id="more"]`)
	if got := page.Clicks(more.Path); got != 1 {
		t.Errorf("expected 1 click on the control, got %d", got)
	}
	panel, _ := page.Find(`//*[@id="panel"]`)
	if _, hidden := page.AttrAt(panel.Path, "hidden"); hidden {
		t.Error("expected panel to be revealed after settle")
	}
}

func TestExpand_NeverDoubleExpands(t *testing.T) {
	page, _ := openSection(t, `<html><body><div id="section">
<button id="more" aria-expanded="false" aria-controls="panel">Show more</button>
<div id="panel" hidden></div>
</div></body></html>`)
	ctx := context.Background()
	e := New(phrases)

	for i := 0; i < 3; i++ {
		// Each call works from a fresh snapshot, as the sequencer does.
		snap, err := page.Snapshot(ctx)
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		section := dom.HandleFor(dom.Find(snap, func(n *html.Node) bool { return dom.AttrValue(n, "id") == "section" }))

		ok, err := e.Expand(ctx, page, section)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := i == 0; ok != want {
			t.Errorf("call %d: expected expanded=%v, got %v", i, want, ok)
		}
	}

	if got := page.TotalClicks(); got != 1 {
		t.Errorf("expected exactly 1 click, got %d", got)
	}
}

func TestExpand_NothingToExpand(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "already expanded",
			src: `<html><body><div id="section">
<button aria-expanded="true">Show more</button><button>Category 1</button>
</div></body></html>`,
		},
		{
			name: "no disclosure",
			src:  `<html><body><div id="section"><button>Category 1</button></div></body></html>`,
		},
		{
			name: "collapsed category row",
			src:  `<html><body><div id="section"><div aria-expanded="false">Category 2 details</div></div></body></html>`,
		},
		{
			name: "stateless toggle with categories showing",
			src: `<html><body><div id="section">
<button class="toggle">Show more</button>
<div class="panel"><button>Category 1</button><button>Category 2</button></div>
</div></body></html>`,
		},
		{
			name: "details link with categories showing",
			src: `<html><body><div id="section">
<h2>Match 4</h2><a href="/match/4">Match details</a>
<ul><li tabindex="0">Category 1</li></ul>
</div></body></html>`,
		},
		{
			name: "stateless toggle with controlled panel open",
			src: `<html><body><div id="section">
<button aria-controls="seats">Show more</button>
<div id="seats"><label><input type="radio" value="1">Seats A</label></div>
</div></body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, section := openSection(t, tt.src)

			ok, err := New(phrases).Expand(context.Background(), page, section)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok {
				t.Error("expected nothing to expand")
			}
			if got := page.TotalClicks(); got != 0 {
				t.Errorf("expected no clicks, got %d", got)
			}
		})
	}
}

func TestExpand_StatelessToggle(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "categories not rendered yet",
			src: `<html><body><div id="section">
<p class="category-summary">Seats in 3 categories</p>
<button id="more">Show more</button><div id="seats"></div>
</div></body></html>`,
		},
		{
			name: "categories hidden",
			src: `<html><body><div id="section">
<button id="more">Show more</button>
<div style="display:none"><button>Category 1</button></div>
</div></body></html>`,
		},
		{
			name: "controlled panel hidden",
			src: `<html><body><div id="section">
<button id="more" aria-controls="seats">Show more</button>
<div id="seats" hidden><button>Category 1</button></div>
</div></body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, section := openSection(t, tt.src)

			ok, err := New(phrases).Expand(context.Background(), page, section)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				t.Fatal("expected the section to be expanded")
			}
			more, _ := page.Find(`//*[@id="more"]`)
			if got := page.Clicks(more.Path); got != 1 {
				t.Errorf("expected 1 click on the toggle, got %d", got)
			}
		})
	}
}

func TestControl_PrefersPhraseOverBareFlag(t *testing.T) {
	_, section := openSection(t, `<html><body><div id="section">
<div id="flag" aria-expanded="false">Seating</div>
<a id="phrase" href="#">More options</a>
</div></body></html>`)

	ctrl := New(phrases).Control(section.Node)
	if got := dom.AttrValue(ctrl, "id"); got != "phrase" {
		t.Errorf("expected #phrase, got %s", dom.Describe(ctrl))
	}
}

func TestControl_FallsBackToCollapsedFlag(t *testing.T) {
	_, section := openSection(t, `<html><body><div id="section">
<div id="flag" aria-expanded="false"><span>Seating</span></div>
</div></body></html>`)

	ctrl := New(phrases).Control(section.Node)
	if got := dom.AttrValue(ctrl, "id"); got != "flag" {
		t.Errorf("expected #flag, got %s", dom.Describe(ctrl))
	}
}

func TestExpand_StaleSection(t *testing.T) {
	page, section := openSection(t, `<html><body><div id="section">
<button id="more" aria-expanded="false">Expand</button>
</div></body></html>`)
	page.Mutate(func(doc *html.Node) {
		more := dom.Find(doc, func(n *html.Node) bool { return dom.AttrValue(n, "id") == "more" })
		more.Parent.RemoveChild(more)
	})

	if _, err := New(phrases).Expand(context.Background(), page, section); err == nil {
		t.Error("expected an error clicking a control that is gone")
	}
}
