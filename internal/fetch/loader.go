package fetch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seedscout/founder-harvest/internal/harvest"
)

// Loader produces parsed page states, trying the cheap static probe first and
// promoting to the browser surface when the probe result is too thin.
type Loader struct {
	prober     *Prober
	detector   *Heuristic
	surface    harvest.Surface
	probeFirst bool
	logger     *zap.Logger
}

// NewLoader wires a loader. prober may be nil when probeFirst is false.
func NewLoader(prober *Prober, detector *Heuristic, surface harvest.Surface, probeFirst bool, logger *zap.Logger) *Loader {
	if detector == nil {
		detector = NewHeuristic(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		prober:     prober,
		detector:   detector,
		surface:    surface,
		probeFirst: probeFirst && prober != nil,
		logger:     logger,
	}
}

// Load fetches and parses the page. Probe failures are not fatal; they fall
// through to the browser.
func (l *Loader) Load(ctx context.Context, url string, policy harvest.WaitPolicy) (harvest.PageState, error) {
	if l.probeFirst {
		html, err := l.prober.Probe(ctx, url)
		if err == nil && !l.detector.ShouldPromote(html) {
			l.logger.Debug("Static probe sufficient", zap.String("url", url))
			return harvest.ParsePage(url, html)
		}
		if err != nil {
			l.logger.Debug("Static probe failed; promoting to browser",
				zap.String("url", url), zap.Error(err))
		} else {
			l.logger.Debug("Static probe too thin; promoting to browser",
				zap.String("url", url))
		}
		if ctx.Err() != nil {
			return harvest.PageState{}, ctx.Err()
		}
	}

	if err := l.surface.Navigate(ctx, url, policy); err != nil {
		return harvest.PageState{}, err
	}
	html, err := l.surface.PageHTML(ctx)
	if err != nil {
		return harvest.PageState{}, fmt.Errorf("render %s: %w", url, err)
	}
	return harvest.ParsePage(url, html)
}

var _ harvest.Loader = (*Loader)(nil)
