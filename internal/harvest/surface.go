package harvest

import (
	"context"
	"time"
)

// WaitPolicy controls how long a navigation waits before the page is
// considered loaded.
type WaitPolicy int

// Supported wait policies.
const (
	// WaitContentReady returns once the document body exists. Listing pages
	// lazy-load below the fold and never go idle; the scroll loop supplies
	// its own settle pauses.
	WaitContentReady WaitPolicy = iota
	// WaitNetworkIdle adds a fixed settle after the body exists, an
	// approximation of waiting for late hydration traffic. Used for profile
	// and company pages.
	WaitNetworkIdle
)

// Surface is the narrow controllable-browser capability the pipeline consumes.
// One Surface corresponds to one browser session; all calls are sequential.
type Surface interface {
	Navigate(ctx context.Context, url string, policy WaitPolicy) error
	Evaluate(ctx context.Context, script string, out any) error
	ScrollBy(ctx context.Context, deltaY int) error
	PageHTML(ctx context.Context) (string, error)
}

// Pauser abstracts how the pipeline waits between actions, so tests can run
// without real sleeps.
type Pauser interface {
	Pause(ctx context.Context, d time.Duration)
}
