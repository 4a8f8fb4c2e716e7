// Package stepper sets a selected category's quantity through whatever
// control the page offers for it.
package stepper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pablasso/ticksel/internal/dom"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ErrNoControl is returned when no strategy finds a usable quantity control.
var ErrNoControl = errors.New("no quantity control found")

// control is what a strategy found: the element to act on and, for
// increment/decrement pairs, the decrement button.
type control struct {
	target    *html.Node
	decrement *html.Node
}

type strategy struct {
	name string
	// clicks strategies only act on visible targets.
	clicks bool
	find   func(scope *html.Node) []control
	set    func(ctx context.Context, page dom.Page, c control, q int) error
}

// Stepper applies a quantity using a cascade of control strategies. It
// does not read the quantity back; increment strategies assume the
// starting value is zero or already acceptable.
type Stepper struct {
	clickDelay        time.Duration
	decrementDelay    time.Duration
	decrementAttempts int
	settle            time.Duration
	logger            *zap.Logger
	strategies        []strategy
}

// New creates a Stepper with the default pacing.
func New() *Stepper {
	s := &Stepper{
		clickDelay:        150 * time.Millisecond,
		decrementDelay:    100 * time.Millisecond,
		decrementAttempts: 10,
		settle:            500 * time.Millisecond,
		logger:            zap.NewNop(),
	}
	s.strategies = []strategy{
		{name: "numeric-input", find: findNumericInputs, set: s.setNumeric},
		{name: "aria-increase", clicks: true, find: findAriaIncrease, set: s.increment},
		{name: "class-increase", clicks: true, find: findClassIncrease, set: s.increment},
		{name: "icon-increase", clicks: true, find: findIconIncrease, set: s.increment},
		{name: "legacy-pair", clicks: true, find: findLegacyPair, set: s.resetThenIncrement},
	}
	return s
}

// WithPacing sets the delay between increment clicks, the delay between
// decrement clicks and the bound on decrement clicks.
func (s *Stepper) WithPacing(click, decrement time.Duration, attempts int) *Stepper {
	s.clickDelay = click
	s.decrementDelay = decrement
	s.decrementAttempts = attempts
	return s
}

// WithSettle sets the wait after writing a numeric field.
func (s *Stepper) WithSettle(d time.Duration) *Stepper {
	s.settle = d
	return s
}

// WithLogger sets the logger.
func (s *Stepper) WithLogger(logger *zap.Logger) *Stepper {
	s.logger = logger
	return s
}

// SetQuantity sets q through the first strategy that succeeds within scope
// and returns that strategy's name.
func (s *Stepper) SetQuantity(ctx context.Context, page dom.Page, scope dom.Handle, q int) (string, error) {
	if scope.Node == nil {
		return "", fmt.Errorf("set quantity: empty scope handle")
	}
	if q < 0 {
		return "", fmt.Errorf("set quantity: negative quantity %d", q)
	}

	var lastErr error
	for _, st := range s.strategies {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		for _, c := range st.find(scope.Node) {
			if st.clicks && !s.visible(ctx, page, c.target) {
				continue
			}
			err := st.set(ctx, page, c, q)
			if err == nil {
				s.logger.Debug("quantity set",
					zap.String("strategy", st.name),
					zap.String("control", dom.Describe(c.target)),
					zap.Int("quantity", q),
				)
				return st.name, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			s.logger.Debug("quantity strategy failed", zap.String("strategy", st.name), zap.Error(err))
			lastErr = fmt.Errorf("%s: %w", st.name, err)
			break
		}
	}

	if lastErr != nil {
		return "", lastErr
	}
	return "", ErrNoControl
}

// HasControl reports whether any strategy would find a quantity control
// under n. Visibility is not checked.
func (s *Stepper) HasControl(n *html.Node) bool {
	if n == nil {
		return false
	}
	for _, st := range s.strategies {
		if len(st.find(n)) > 0 {
			return true
		}
	}
	return false
}

func (s *Stepper) visible(ctx context.Context, page dom.Page, n *html.Node) bool {
	state, err := page.Inspect(ctx, dom.HandleFor(n))
	return err == nil && state.Visible
}
