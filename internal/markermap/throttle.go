package markermap

import (
	"time"

	"golang.org/x/time/rate"
)

// ResizeInterval is the minimum spacing between handled resize events.
const ResizeInterval = time.Second

// Throttle lets one call through per interval and schedules a single
// trailing call for anything suppressed in between. It is not safe for
// concurrent use.
type Throttle struct {
	limiter   *rate.Limiter
	scheduled bool
}

func NewThrottle(every time.Duration) *Throttle {
	return &Throttle{limiter: rate.NewLimiter(rate.Every(every), 1)}
}

// Allow reports whether the call at now may run. When it may not and no
// trailing call is pending yet, trailing is the delay after which the caller
// should invoke Flush and run the call.
func (t *Throttle) Allow(now time.Time) (run bool, trailing time.Duration) {
	if t.limiter.AllowN(now, 1) {
		return true, 0
	}
	if t.scheduled {
		return false, 0
	}
	r := t.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	t.scheduled = true
	return false, r.DelayFrom(now)
}

// Flush marks the trailing call as run.
func (t *Throttle) Flush() {
	t.scheduled = false
}

func (t *Throttle) Pending() bool { return t.scheduled }
