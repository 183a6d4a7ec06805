// Package browser drives a persistent headless Chrome tab via chromedp.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/seedscout/founder-harvest/internal/harvest"
)

// Config controls the behavior of the browser session.
type Config struct {
	UserAgent         string
	Headless          bool
	NavigationTimeout time.Duration
}

// blockedPatterns lists resource URLs the session refuses to load. Profile
// extraction only needs the DOM, so images, fonts, styles and media are
// dead weight on every navigation.
var blockedPatterns = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.svg", "*.webp", "*.ico",
	"*.woff", "*.woff2", "*.ttf", "*.otf",
	"*.css",
	"*.mp4", "*.webm", "*.mp3",
}

// Session is a single long-lived browser tab implementing harvest.Surface.
// It is not safe for concurrent use; the pipeline navigates it sequentially.
type Session struct {
	cfg         Config
	allocator   context.Context
	allocCancel context.CancelFunc
	tab         context.Context
	tabCancel   context.CancelFunc
	logger      *zap.Logger
}

// NewSession launches the browser and prepares a tab with the user agent
// override and resource blocking applied. A launch failure is a fatal setup
// error; there is no degraded mode without a browser.
func NewSession(cfg Config, logger *zap.Logger) (*Session, error) {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	if cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		cfg:         cfg,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		tab:         tabCtx,
		tabCancel:   tabCancel,
		logger:      logger,
	}

	if err := chromedp.Run(tabCtx, s.setupAction()); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("launch browser session: %w", err)
	}
	logger.Debug("Browser session started", zap.Bool("headless", cfg.Headless))
	return s, nil
}

func (s *Session) setupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if s.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(s.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		if err := network.SetBlockedURLs(blockedPatterns).Do(ctx); err != nil {
			return fmt.Errorf("block resource urls: %w", err)
		}
		return nil
	})
}

// Navigate loads the URL in the session tab and waits according to policy.
func (s *Session) Navigate(ctx context.Context, url string, policy harvest.WaitPolicy) error {
	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if policy == harvest.WaitNetworkIdle {
		actions = append(actions, chromedp.Sleep(750*time.Millisecond))
	}
	if err := s.run(ctx, actions...); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// Evaluate runs a script in the page and unmarshals the result into out.
// out may be nil when the result is not needed.
func (s *Session) Evaluate(ctx context.Context, script string, out any) error {
	if err := s.run(ctx, chromedp.Evaluate(script, out)); err != nil {
		return fmt.Errorf("evaluate script: %w", err)
	}
	return nil
}

// ScrollBy scrolls the page vertically by deltaY pixels.
func (s *Session) ScrollBy(ctx context.Context, deltaY int) error {
	script := fmt.Sprintf("window.scrollBy(0, %d)", deltaY)
	if err := s.run(ctx, chromedp.Evaluate(script, nil)); err != nil {
		return fmt.Errorf("scroll page: %w", err)
	}
	return nil
}

// PageHTML returns the current serialized DOM of the tab.
func (s *Session) PageHTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("capture page html: %w", err)
	}
	return html, nil
}

// run executes actions against the session tab, bounded by the navigation
// timeout and abandoned when the caller's context is canceled.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.tab, s.cfg.NavigationTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	defer close(done)

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Close shuts down the tab and the browser process.
func (s *Session) Close() {
	s.tabCancel()
	s.allocCancel()
}

var _ harvest.Surface = (*Session)(nil)
