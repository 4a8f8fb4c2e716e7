// Package rodpage implements dom.Page over a live Chrome tab driven by rod.
package rodpage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/pablasso/ticksel/internal/dom"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	jsClick    = `() => this.click()`
	jsSetValue = `(v) => { this.value = v }`
	jsDispatch = `(t) => this.dispatchEvent(new Event(t, { bubbles: true }))`
	jsDisabled = `() => this.disabled === true || this.getAttribute('aria-disabled') === 'true'`
)

// Page adapts a rod page to dom.Page.
type Page struct {
	page   *rod.Page
	logger *zap.Logger
}

// New wraps a rod page.
func New(page *rod.Page, logger *zap.Logger) *Page {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Page{page: page, logger: logger}
}

// Rod returns the underlying rod page.
func (p *Page) Rod() *rod.Page {
	return p.page
}

// Snapshot parses the current document markup.
func (p *Page) Snapshot(ctx context.Context) (*html.Node, error) {
	src, err := p.page.Context(ctx).HTML()
	if err != nil {
		return nil, fmt.Errorf("read page html: %w", err)
	}
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}
	return doc, nil
}

// Click invokes the element's click() in page script. A DOM click is used
// instead of a synthesized mouse event so controls under overlays still fire.
func (p *Page) Click(ctx context.Context, h dom.Handle) error {
	el, err := p.element(ctx, h)
	if err != nil {
		return err
	}
	if _, err := el.Eval(jsClick); err != nil {
		return fmt.Errorf("click %s: %w", h.Path, err)
	}
	return nil
}

// SetValue assigns the element's value property.
func (p *Page) SetValue(ctx context.Context, h dom.Handle, value string) error {
	el, err := p.element(ctx, h)
	if err != nil {
		return err
	}
	if _, err := el.Eval(jsSetValue, value); err != nil {
		return fmt.Errorf("set value %s: %w", h.Path, err)
	}
	return nil
}

// Dispatch fires a bubbling event on the element.
func (p *Page) Dispatch(ctx context.Context, h dom.Handle, event string) error {
	el, err := p.element(ctx, h)
	if err != nil {
		return err
	}
	if _, err := el.Eval(jsDispatch, event); err != nil {
		return fmt.Errorf("dispatch %s on %s: %w", event, h.Path, err)
	}
	return nil
}

// Inspect reports whether the element has a rendered box and whether it is
// disabled.
func (p *Page) Inspect(ctx context.Context, h dom.Handle) (dom.State, error) {
	el, err := p.element(ctx, h)
	if err != nil {
		return dom.State{}, err
	}
	visible, err := el.Visible()
	if err != nil {
		return dom.State{}, fmt.Errorf("visibility of %s: %w", h.Path, err)
	}
	res, err := el.Eval(jsDisabled)
	if err != nil {
		return dom.State{}, fmt.Errorf("disabled state of %s: %w", h.Path, err)
	}
	return dom.State{Visible: visible, Disabled: res.Value.Bool()}, nil
}

// Settle waits d. There is no reliable render-complete signal on the pages
// this targets, so the wait is a plain delay.
func (p *Page) Settle(ctx context.Context, d time.Duration) error {
	return dom.Sleep(ctx, d)
}

// element resolves a handle on the live document without rod's implicit
// retry, so a missing element fails fast and the caller searches again.
func (p *Page) element(ctx context.Context, h dom.Handle) (*rod.Element, error) {
	if h.IsZero() {
		return nil, fmt.Errorf("empty handle: %w", dom.ErrStale)
	}
	el, err := p.page.Context(ctx).Sleeper(rod.NotFoundSleeper).ElementX(h.Path)
	if err != nil {
		var notFound *rod.ElementNotFoundError
		if errors.As(err, &notFound) {
			p.logger.Debug("Handle no longer resolves", zap.String("path", h.Path))
			return nil, fmt.Errorf("resolve %s: %w", h.Path, dom.ErrStale)
		}
		return nil, fmt.Errorf("resolve %s: %w", h.Path, err)
	}
	return el, nil
}
