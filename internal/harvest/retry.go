package harvest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrExhausted reports that a URL failed every permitted attempt. Exhaustion
// is not fatal to the run; the orchestrator records the URL as processed and
// moves on.
var ErrExhausted = errors.New("retry attempts exhausted")

// Loader turns a URL into a PageState. Implementations decide whether the
// static fast path or the browser session serves the request.
type Loader interface {
	Load(ctx context.Context, url string, policy WaitPolicy) (PageState, error)
}

// Processor drives one URL through navigation, extraction, and the optional
// company-page backfill, under bounded retry with a fixed backoff.
type Processor struct {
	loader Loader
	cfg    Config
	pauser Pauser
	now    func() time.Time
	logger *zap.Logger
}

// NewProcessor builds a Processor.
func NewProcessor(loader Loader, cfg Config, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		loader: loader,
		cfg:    cfg,
		pauser: timerPauser{},
		now:    time.Now,
		logger: logger,
	}
}

// Process attempts the URL up to MaxAttempts times. Navigation errors,
// evaluation errors, and insufficient extracted data are all soft failures:
// wait the fixed backoff and try again. The returned error is nil on success,
// the context error on cancellation, or wraps ErrExhausted once attempts run
// out.
func (p *Processor) Process(ctx context.Context, url string) (ProfileRecord, error) {
	var lastErr error
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		rec, err := p.attempt(ctx, url)
		if err == nil {
			return rec, nil
		}
		if ctx.Err() != nil {
			return ProfileRecord{}, fmt.Errorf("process %s: %w", url, ctx.Err())
		}
		lastErr = err
		p.logger.Warn("Profile attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.cfg.MaxAttempts),
			zap.Error(err))
		if attempt < p.cfg.MaxAttempts {
			p.pauser.Pause(ctx, p.cfg.RetryBackoff)
		}
	}
	return ProfileRecord{}, fmt.Errorf("%w for %s after %d attempts: %v",
		ErrExhausted, url, p.cfg.MaxAttempts, lastErr)
}

func (p *Processor) attempt(ctx context.Context, url string) (ProfileRecord, error) {
	state, err := p.loader.Load(ctx, url, WaitNetworkIdle)
	if err != nil {
		return ProfileRecord{}, fmt.Errorf("load profile: %w", err)
	}
	rec, err := ExtractProfile(state, p.now().UTC())
	if err != nil {
		return ProfileRecord{}, err
	}
	p.backfillCompany(ctx, url, &rec)
	return rec, nil
}

// backfillCompany issues at most one extra navigation to the company's base
// page to pick up the official name and website. Its failure never fails the
// profile; the record simply keeps what the profile page yielded.
func (p *Processor) backfillCompany(ctx context.Context, profileURL string, rec *ProfileRecord) {
	if !rec.NeedsBackfill() {
		return
	}
	companyURL := CompanyBaseURL(rec.CompanyPage)
	if companyURL == "" || companyURL == profileURL {
		return
	}
	state, err := p.loader.Load(ctx, companyURL, WaitNetworkIdle)
	if err != nil {
		p.logger.Debug("Company backfill failed",
			zap.String("url", companyURL), zap.Error(err))
		return
	}
	rec.Backfill(ExtractCompany(state))
}
