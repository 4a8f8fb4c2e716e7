package rodpage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ysmood/gson"
	"go.uber.org/zap"
)

const bindingName = "__tickselTrigger"

// hotkeyScript installs a keydown listener for Ctrl/Cmd+Shift+<key> that
// calls the exposed binding. The guard keeps repeated installs idempotent.
func hotkeyScript(key string) string {
	return fmt.Sprintf(`() => {
  if (window.__tickselHotkey) return;
  window.__tickselHotkey = true;
  document.addEventListener('keydown', (e) => {
    if ((e.ctrlKey || e.metaKey) && e.shiftKey && e.key.toLowerCase() === %q) {
      e.preventDefault();
      window[%q]();
    }
  });
}`, strings.ToLower(key), bindingName)
}

// InstallHotkey exposes a binding to the page and wires Ctrl/Cmd+Shift+key
// to it, on the current document and every document loaded afterwards.
// fire is called on rod's event goroutine and must not block.
func (p *Page) InstallHotkey(key string, fire func()) (stop func() error, err error) {
	if key == "" {
		return nil, fmt.Errorf("empty hotkey")
	}
	unexpose, err := p.page.Expose(bindingName, func(gson.JSON) (interface{}, error) {
		p.logger.Debug("In-page hotkey pressed", zap.String("key", key))
		fire()
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("expose trigger binding: %w", err)
	}

	script := hotkeyScript(key)
	remove, err := p.page.EvalOnNewDocument("(" + script + ")()")
	if err != nil {
		_ = unexpose()
		return nil, fmt.Errorf("install hotkey for new documents: %w", err)
	}
	if _, err := p.page.Eval(script); err != nil {
		_ = remove()
		_ = unexpose()
		return nil, fmt.Errorf("install hotkey: %w", err)
	}

	return func() error {
		removeErr := remove()
		if err := unexpose(); err != nil {
			return err
		}
		return removeErr
	}, nil
}

const jsToast = `(msg, ms) => {
  const el = document.createElement('div');
  el.setAttribute('data-ticksel-toast', '');
  el.textContent = msg;
  el.style.cssText = 'position:fixed;top:20px;right:20px;background:#1a472a;color:#fff;' +
    'padding:16px 24px;border-radius:8px;font:500 14px sans-serif;z-index:999999;' +
    'box-shadow:0 4px 12px rgba(0,0,0,.3);transition:opacity .3s';
  document.body.appendChild(el);
  setTimeout(() => { el.style.opacity = '0'; setTimeout(() => el.remove(), 300); }, ms);
}`

// Notify shows a toast on the page that removes itself after d.
func (p *Page) Notify(ctx context.Context, message string, d time.Duration) error {
	if _, err := p.page.Context(ctx).Eval(jsToast, message, d.Milliseconds()); err != nil {
		return fmt.Errorf("show page notification: %w", err)
	}
	return nil
}
