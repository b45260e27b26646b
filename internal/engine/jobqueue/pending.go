package jobqueue

import (
	"context"

	"github.com/rendis/markview/internal/engine/overlap"
)

// Pending is the handle for one submitted job.
type Pending struct {
	id   uint64
	done chan struct{}

	markers []overlap.MarkerData
	err     error
}

func newPending(id uint64) *Pending {
	return &Pending{id: id, done: make(chan struct{})}
}

func (p *Pending) ID() uint64 { return p.id }

// Done is closed once the job has resolved or failed.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the job resolves or ctx ends. Giving up on ctx does not
// cancel the job.
func (p *Pending) Wait(ctx context.Context) ([]overlap.MarkerData, error) {
	select {
	case <-p.done:
		return p.markers, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result reports the survivors without blocking. ok is false while the job
// is still pending or when it failed.
func (p *Pending) Result() (markers []overlap.MarkerData, ok bool) {
	select {
	case <-p.done:
		return p.markers, p.err == nil
	default:
		return nil, false
	}
}

func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

func (p *Pending) resolve(markers []overlap.MarkerData) {
	p.markers = markers
	close(p.done)
}

func (p *Pending) fail(err error) {
	p.err = err
	close(p.done)
}
