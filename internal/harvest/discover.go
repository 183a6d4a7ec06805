package harvest

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const scrollHeightScript = "document.body.scrollHeight"

// Discoverer collects candidate founder profile URLs from batch listing pages.
type Discoverer struct {
	surface Surface
	cfg     Config
	pauser  Pauser
	logger  *zap.Logger
}

// NewDiscoverer wires a Discoverer against a browser surface.
func NewDiscoverer(surface Surface, cfg Config, logger *zap.Logger) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{
		surface: surface,
		cfg:     cfg,
		pauser:  timerPauser{},
		logger:  logger,
	}
}

// Discover navigates to the batch listing, scrolls until the page extent
// stabilizes (or the scroll ceiling is hit), and returns every deduplicated
// profile URL found. A navigation failure is not fatal to the run: the batch
// is logged and skipped, and its URLs surface again on the next invocation.
func (d *Discoverer) Discover(ctx context.Context, batch Batch) []string {
	listing := fmt.Sprintf("%s/founders?batches=%s", d.cfg.BaseURL, url.QueryEscape(string(batch)))
	d.logger.Info("Discovering batch", zap.String("batch", string(batch)))

	if err := d.surface.Navigate(ctx, listing, WaitContentReady); err != nil {
		d.logger.Warn("Batch listing navigation failed",
			zap.String("batch", string(batch)), zap.Error(err))
		return nil
	}
	if err := d.scrollToBottom(ctx); err != nil {
		d.logger.Warn("Batch listing scroll failed",
			zap.String("batch", string(batch)), zap.Error(err))
		return nil
	}

	html, err := d.surface.PageHTML(ctx)
	if err != nil {
		d.logger.Warn("Batch listing snapshot failed",
			zap.String("batch", string(batch)), zap.Error(err))
		return nil
	}
	state, err := ParsePage(listing, html)
	if err != nil {
		d.logger.Warn("Batch listing parse failed",
			zap.String("batch", string(batch)), zap.Error(err))
		return nil
	}

	links := ProfileLinks(state.Anchors)
	d.logger.Info("Batch discovered",
		zap.String("batch", string(batch)), zap.Int("profiles", len(links)))
	return links
}

// scrollToBottom scrolls forward a fixed increment at a time until the page
// extent stops growing. The scroll ceiling guards listings that never
// stabilize.
func (d *Discoverer) scrollToBottom(ctx context.Context) error {
	last, err := d.measureExtent(ctx)
	if err != nil {
		return err
	}
	for attempt := 0; attempt < d.cfg.ScrollLimit; attempt++ {
		if err := d.surface.ScrollBy(ctx, d.cfg.ScrollIncrement); err != nil {
			return fmt.Errorf("scroll listing: %w", err)
		}
		d.pauser.Pause(ctx, d.cfg.ScrollSettle)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("scroll canceled: %w", err)
		}
		current, err := d.measureExtent(ctx)
		if err != nil {
			return err
		}
		if current == last {
			return nil
		}
		last = current
	}
	return nil
}

func (d *Discoverer) measureExtent(ctx context.Context) (float64, error) {
	var extent float64
	if err := d.surface.Evaluate(ctx, scrollHeightScript, &extent); err != nil {
		return 0, fmt.Errorf("measure page extent: %w", err)
	}
	return extent, nil
}

// ProfileLinks filters anchors down to the deduplicated, sorted set of founder
// profile URLs. Verification, application, and query-variant links are
// navigation noise, not profiles.
func ProfileLinks(anchors []Anchor) []string {
	seen := make(map[string]struct{})
	for _, a := range anchors {
		if !IsProfileURL(a.Href) {
			continue
		}
		seen[a.Href] = struct{}{}
	}
	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)
	return links
}

// IsProfileURL reports whether href points at an individual founder profile.
func IsProfileURL(href string) bool {
	if !strings.Contains(href, "/founders/") {
		return false
	}
	if SlugFromURL(href) == "" {
		return false
	}
	if strings.Contains(href, "?") || strings.Contains(href, "#") {
		return false
	}
	if strings.Contains(href, "/verify") || strings.Contains(href, "/apply") {
		return false
	}
	return true
}
