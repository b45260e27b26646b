// Package jobqueue serialises filtering passes onto a single background
// worker. Callers submit a snapshot of marker boxes and get a Pending handle
// back; the dispatcher keeps at most one job on the worker and resolves
// handles in submission order.
package jobqueue

import (
	"errors"
	"io"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rendis/markview/internal/engine/geo"
	"github.com/rendis/markview/internal/engine/overlap"
	"github.com/rendis/markview/internal/pkg/metrics"
)

var ErrQueueClosed = errors.New("jobqueue: queue closed")

// FilterFunc runs one filtering pass on the worker.
type FilterFunc func(markers []overlap.MarkerData, bounds geo.BBox, margin float64) overlap.Result

type Stats struct {
	Submitted  atomic.Int64
	Dispatched atomic.Int64
	Resolved   atomic.Int64
	Dropped    atomic.Int64
	MaxPending atomic.Int64
}

type Job struct {
	ID      uint64
	Markers []overlap.MarkerData
	Bounds  geo.BBox
	Margin  float64

	pending *Pending
}

// request is what crosses into the worker: a value copy, no handle.
type request struct {
	id      uint64
	markers []overlap.MarkerData
	bounds  geo.BBox
	margin  float64
}

type reply struct {
	id     uint64
	result overlap.Result
}

type Option func(*Queue)

func WithFilterFunc(f FilterFunc) Option {
	return func(q *Queue) { q.filter = f }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(q *Queue) { q.log = l }
}

func WithMetrics(m *metrics.Registry) Option {
	return func(q *Queue) { q.metrics = m }
}

type Queue struct {
	filter  FilterFunc
	log     logrus.FieldLogger
	metrics *metrics.Registry
	stats   Stats

	// submitMu makes ID assignment and the hand-off to the dispatcher one
	// step, so IDs follow queue order even with concurrent submitters.
	submitMu sync.Mutex
	nextID   uint64

	submit   chan *Job
	requests chan request
	results  chan reply
	quit     chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New starts the dispatcher and the worker goroutine.
func New(opts ...Option) *Queue {
	q := &Queue{
		filter:   overlap.Run,
		submit:   make(chan *Job),
		requests: make(chan request, 1),
		results:  make(chan reply),
		quit:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		q.log = l
	}

	q.wg.Add(2)
	go q.dispatch()
	go q.work()
	return q
}

// Submit enqueues a filtering pass over a copy of markers. It never waits
// for filtering; the returned handle resolves when the worker replies.
func (q *Queue) Submit(markers []overlap.MarkerData, bounds geo.BBox, margin float64) *Pending {
	markers = slices.Clone(markers)

	q.submitMu.Lock()
	defer q.submitMu.Unlock()

	q.nextID++
	p := newPending(q.nextID)

	select {
	case <-q.quit:
		p.fail(ErrQueueClosed)
		return p
	default:
	}

	job := &Job{
		ID:      p.id,
		Markers: markers,
		Bounds:  bounds,
		Margin:  margin,
		pending: p,
	}

	select {
	case q.submit <- job:
		q.stats.Submitted.Add(1)
		q.metrics.JobSubmitted()
	case <-q.quit:
		p.fail(ErrQueueClosed)
	}
	return p
}

func (q *Queue) Stats() *Stats {
	return &q.stats
}

// Close stops the dispatcher and the worker. Handles still pending at that
// point never resolve. Close waits for a pass already running to return.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.quit)
	})
	q.wg.Wait()
}

func (q *Queue) dispatch() {
	defer q.wg.Done()

	var active *Job
	var waiting []*Job

	for {
		select {
		case job := <-q.submit:
			if active == nil {
				active = job
				q.send(job)
			} else {
				waiting = append(waiting, job)
			}
			q.trackDepth(active, waiting)

		case r := <-q.results:
			if active == nil || r.id != active.ID {
				q.stats.Dropped.Add(1)
				q.metrics.ResultDropped()
				q.log.WithField("job", r.id).Warn("dropping result with no matching active job")
				continue
			}

			done := active
			active = nil
			if len(waiting) > 0 {
				active = waiting[0]
				waiting[0] = nil
				waiting = waiting[1:]
				q.send(active)
			}
			q.trackDepth(active, waiting)

			q.stats.Resolved.Add(1)
			q.metrics.JobResolved()
			done.pending.resolve(r.result.Kept)

		case <-q.quit:
			return
		}
	}
}

// send never blocks: requests has room for the single in-flight job.
func (q *Queue) send(job *Job) {
	q.stats.Dispatched.Add(1)
	q.requests <- request{
		id:      job.ID,
		markers: job.Markers,
		bounds:  job.Bounds,
		margin:  job.Margin,
	}
}

func (q *Queue) trackDepth(active *Job, waiting []*Job) {
	depth := len(waiting)
	if active != nil {
		depth++
	}
	if int64(depth) > q.stats.MaxPending.Load() {
		q.stats.MaxPending.Store(int64(depth))
	}
	q.metrics.SetQueueDepth(depth)
}

func (q *Queue) work() {
	defer q.wg.Done()

	for {
		select {
		case req := <-q.requests:
			res, ok := q.run(req)
			if !ok {
				continue
			}
			select {
			case q.results <- reply{id: req.id, result: res}:
			case <-q.quit:
				return
			}
		case <-q.quit:
			return
		}
	}
}

// run executes one pass. A panic is logged and yields no reply, so the job
// and everything queued behind it stay pending.
func (q *Queue) run(req request) (res overlap.Result, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			q.log.WithField("job", req.id).Errorf("filter pass panicked: %v", r)
			ok = false
		}
	}()

	start := time.Now()
	res = q.filter(req.markers, req.bounds, req.margin)
	took := time.Since(start)

	q.metrics.ObserveFilter(len(req.markers), len(res.Kept), res.OutOfZone, res.Collided, took)
	q.log.WithFields(logrus.Fields{
		"job":  req.id,
		"in":   len(req.markers),
		"kept": len(res.Kept),
		"took": took,
	}).Debug("filter pass done")
	return res, true
}
