// Package dom defines the page abstraction the selection engine runs against.
//
// Every search runs over a snapshot of the page taken with Snapshot. Matches
// are turned into Handles that carry an absolute XPath, and every action
// resolves that path against the live page again. A Handle is therefore only
// as good as the snapshot it came from: after any action that can re-render,
// callers take a new snapshot and search again instead of reusing it.
package dom

import (
	"context"
	"errors"
	"time"

	"golang.org/x/net/html"
)

// ErrStale is returned when a handle no longer resolves on the live page.
var ErrStale = errors.New("stale element handle")

// Handle identifies an element by its absolute XPath.
type Handle struct {
	// Path is an absolute, position-indexed XPath such as /html[1]/body[1]/div[2].
	Path string
	// Node is the element in the snapshot the handle was taken from.
	Node *html.Node
}

// IsZero reports whether the handle is empty.
func (h Handle) IsZero() bool {
	return h.Path == ""
}

// String returns the handle path.
func (h Handle) String() string {
	return h.Path
}

// HandleFor builds a handle for a snapshot element.
func HandleFor(n *html.Node) Handle {
	if n == nil {
		return Handle{}
	}
	return Handle{Path: XPath(n), Node: n}
}

// State is the rendered state of an element at inspection time.
type State struct {
	Visible  bool
	Disabled bool
}

// Page is a live, mutable element tree.
type Page interface {
	// Snapshot returns a point-in-time copy of the element tree.
	Snapshot(ctx context.Context) (*html.Node, error)

	// Click triggers the element's click behavior.
	Click(ctx context.Context, h Handle) error

	// SetValue assigns a form control's value without emitting events.
	SetValue(ctx context.Context, h Handle, value string) error

	// Dispatch fires a bubbling event of the given type on the element.
	Dispatch(ctx context.Context, h Handle, event string) error

	// Inspect reports visibility and disabled state.
	Inspect(ctx context.Context, h Handle) (State, error)

	// Settle waits for pending renders after a mutating action. d is the
	// time a real page is given; fixture pages may flush instead of waiting.
	Settle(ctx context.Context, d time.Duration) error
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
