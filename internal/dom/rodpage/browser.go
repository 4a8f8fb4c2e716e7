package rodpage

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Options selects the browser and tab to drive.
type Options struct {
	// ControlURL is the DevTools websocket of an already running Chrome.
	ControlURL string
	// Launch starts a new Chrome when ControlURL is empty.
	Launch   bool
	Headless bool
	Bin      string
	// URL picks the first open tab whose address contains it. When no tab
	// matches and URL is absolute, a new tab is opened on it.
	URL string
}

// Session is a connected browser and the tab selected for automation.
type Session struct {
	Browser *rod.Browser
	Page    *Page
	owned   bool
}

// Connect attaches to (or launches) Chrome and selects a tab.
func Connect(ctx context.Context, opts Options, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	controlURL := opts.ControlURL
	owned := false
	if controlURL == "" {
		if !opts.Launch {
			return nil, fmt.Errorf("no browser: pass a DevTools URL or enable launch")
		}
		l := launcher.New().Headless(opts.Headless)
		if opts.Bin != "" {
			l = l.Bin(opts.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
		owned = true
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	page, err := selectPage(browser, opts.URL)
	if err != nil {
		_ = browser.Close()
		return nil, err
	}

	info, _ := page.Info()
	if info != nil {
		logger.Info("Attached to tab", zap.String("url", info.URL), zap.String("title", info.Title))
	}

	return &Session{Browser: browser, Page: New(page, logger), owned: owned}, nil
}

// Close disconnects, closing the browser only when this session launched it.
func (s *Session) Close() error {
	if s == nil || s.Browser == nil || !s.owned {
		return nil
	}
	return s.Browser.Close()
}

func selectPage(browser *rod.Browser, match string) (*rod.Page, error) {
	pages, err := browser.Pages()
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		if string(info.Type) != "page" {
			continue
		}
		if match == "" || strings.Contains(info.URL, match) {
			return p, nil
		}
	}

	if strings.HasPrefix(match, "http://") || strings.HasPrefix(match, "https://") {
		page, err := browser.Page(proto.TargetCreateTarget{URL: match})
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", match, err)
		}
		if err := page.WaitLoad(); err != nil {
			return nil, fmt.Errorf("load %s: %w", match, err)
		}
		return page, nil
	}
	if match == "" {
		return nil, fmt.Errorf("browser has no open tabs")
	}
	return nil, fmt.Errorf("no open tab matches %q", match)
}
