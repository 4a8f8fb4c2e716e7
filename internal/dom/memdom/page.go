// Package memdom implements dom.Page over an in-memory HTML tree.
//
// It backs fixture tests, offline dry runs against a saved page and demo
// mode. Clicks apply a small set of behaviors that mimic what the live page
// does (disclosure toggles, spin buttons, checkable inputs); reveals are
// queued as pending renders that only land when Settle is called, so tests
// exercise the same settle discipline the engine uses against a browser.
package memdom

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/pablasso/ticksel/internal/dom"
	"golang.org/x/net/html"
)

// Event is one recorded interaction with the page.
type Event struct {
	Path string
	Type string
}

// Behavior reacts to a click on a live node. It returns true when it handled
// the click so later behaviors are skipped.
type Behavior func(p *Page, n *html.Node) bool

type pendingRender struct {
	settles int
	apply   func(doc *html.Node)
}

// Page is an in-memory dom.Page.
type Page struct {
	mu            sync.Mutex
	doc           *html.Node
	pending       []pendingRender
	pace          time.Duration
	behaviors     []Behavior
	clicks        map[string]int
	events        []Event
	settles       int
	notifications []string
}

// Option configures a Page.
type Option func(*Page)

// WithPace makes every Settle wait for d before flushing pending renders.
func WithPace(d time.Duration) Option {
	return func(p *Page) {
		p.pace = d
	}
}

// WithBehavior appends a click behavior after the defaults.
func WithBehavior(b Behavior) Option {
	return func(p *Page) {
		p.behaviors = append(p.behaviors, b)
	}
}

// Parse builds a page from an HTML document.
func Parse(r io.Reader, opts ...Option) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	p := &Page{
		doc:       doc,
		behaviors: []Behavior{Checkable, Disclosure, SpinButton},
		clicks:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ParseString builds a page from an HTML string.
func ParseString(src string, opts ...Option) (*Page, error) {
	return Parse(strings.NewReader(src), opts...)
}

// Open builds a page from an HTML file on disk.
func Open(path string, opts ...Option) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer f.Close()
	return Parse(f, opts...)
}

// Snapshot returns a deep copy of the live tree.
func (p *Page) Snapshot(ctx context.Context) (*html.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return clone(p.doc), nil
}

// Click records the click and applies the first matching behavior.
// Disabled elements record the click but do not react.
func (p *Page) Click(ctx context.Context, h dom.Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.resolveLocked(h)
	if err != nil {
		return err
	}
	p.clicks[h.Path]++
	p.events = append(p.events, Event{Path: h.Path, Type: "click"})

	if isDisabled(n) {
		return nil
	}
	for _, b := range p.behaviors {
		if b(p, n) {
			break
		}
	}
	return nil
}

// SetValue sets the value attribute.
func (p *Page) SetValue(ctx context.Context, h dom.Handle, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.resolveLocked(h)
	if err != nil {
		return err
	}
	dom.SetAttr(n, "value", value)
	return nil
}

// Dispatch records an event on the element.
func (p *Page) Dispatch(ctx context.Context, h dom.Handle, event string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.resolveLocked(h); err != nil {
		return err
	}
	p.events = append(p.events, Event{Path: h.Path, Type: event})
	return nil
}

// Inspect reports visibility and disabled state from markup. An element is
// hidden when it or an ancestor carries the hidden attribute or an inline
// display:none / visibility:hidden style.
func (p *Page) Inspect(ctx context.Context, h dom.Handle) (dom.State, error) {
	if err := ctx.Err(); err != nil {
		return dom.State{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := p.resolveLocked(h)
	if err != nil {
		return dom.State{}, err
	}
	return dom.State{Visible: !dom.Hidden(n), Disabled: isDisabled(n)}, nil
}

// Settle applies pending renders whose settle count has elapsed.
func (p *Page) Settle(ctx context.Context, d time.Duration) error {
	if p.pace > 0 {
		wait := p.pace
		if d > 0 && d < wait {
			wait = d
		}
		if err := dom.Sleep(ctx, wait); err != nil {
			return err
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.settles++
	remaining := p.pending[:0]
	var due []pendingRender
	for _, r := range p.pending {
		r.settles--
		if r.settles <= 0 {
			due = append(due, r)
			continue
		}
		remaining = append(remaining, r)
	}
	p.pending = remaining
	for _, r := range due {
		r.apply(p.doc)
	}
	return nil
}

// Notify records a notification.
func (p *Page) Notify(ctx context.Context, message string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, message)
	return nil
}

// After schedules a mutation of the live tree to land on the n-th Settle
// from now. n <= 0 applies it on the next Settle.
func (p *Page) After(n int, mutate func(doc *html.Node)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.afterLocked(n, mutate)
}

// RenderLater is After for use inside a Behavior, which already runs with
// the page locked.
func (p *Page) RenderLater(n int, mutate func(doc *html.Node)) {
	p.afterLocked(n, mutate)
}

func (p *Page) afterLocked(n int, mutate func(doc *html.Node)) {
	if n < 1 {
		n = 1
	}
	p.pending = append(p.pending, pendingRender{settles: n, apply: mutate})
}

// Mutate changes the live tree immediately.
func (p *Page) Mutate(mutate func(doc *html.Node)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	mutate(p.doc)
}

// Find resolves an XPath against a fresh snapshot. The handle's Node
// belongs to that snapshot, not to the live tree.
func (p *Page) Find(expr string) (dom.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n, err := htmlquery.Query(clone(p.doc), expr)
	if err != nil {
		return dom.Handle{}, fmt.Errorf("query %q: %w", expr, err)
	}
	if n == nil {
		return dom.Handle{}, fmt.Errorf("query %q: %w", expr, dom.ErrStale)
	}
	return dom.HandleFor(n), nil
}

// Clicks returns how many times the element at path was clicked.
func (p *Page) Clicks(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clicks[path]
}

// TotalClicks returns the number of clicks across all elements.
func (p *Page) TotalClicks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, c := range p.clicks {
		total += c
	}
	return total
}

// Events returns every recorded interaction in order.
func (p *Page) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Settles returns how many times Settle completed.
func (p *Page) Settles() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settles
}

// Notifications returns the recorded notification messages.
func (p *Page) Notifications() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.notifications))
	copy(out, p.notifications)
	return out
}

// AttrAt returns an attribute of the live element at path.
func (p *Page) AttrAt(path, key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, err := htmlquery.Query(p.doc, path)
	if err != nil || n == nil {
		return "", false
	}
	return dom.Attr(n, key)
}

// HTML renders the live tree.
func (p *Page) HTML() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var buf bytes.Buffer
	_ = html.Render(&buf, p.doc)
	return buf.String()
}

func (p *Page) resolveLocked(h dom.Handle) (*html.Node, error) {
	if h.IsZero() {
		return nil, fmt.Errorf("empty handle: %w", dom.ErrStale)
	}
	n, err := htmlquery.Query(p.doc, h.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", h.Path, err)
	}
	if n == nil {
		return nil, fmt.Errorf("resolve %s: %w", h.Path, dom.ErrStale)
	}
	return n, nil
}

func clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(clone(child))
	}
	return c
}

func isDisabled(n *html.Node) bool {
	if _, ok := dom.Attr(n, "disabled"); ok {
		return true
	}
	return dom.AttrValue(n, "aria-disabled") == "true"
}
