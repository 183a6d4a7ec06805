package harvest

import (
	"context"
	"time"
)

// timerPauser waits on a real timer but exits immediately on cancellation.
type timerPauser struct{}

func (timerPauser) Pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
