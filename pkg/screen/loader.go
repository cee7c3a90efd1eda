// Package screen holds the per-view state: what was loaded, whether it is
// still loading, and which request a result belongs to.
package screen

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	}
	return "failed"
}

// Logger abstracts logging so callers can use logrus or anything else with
// the same shape.
type Logger interface {
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}

// Loader applies only the result of the most recent Load. A result from a
// superseded request is dropped when it arrives; the request itself is not
// cancelled.
type Loader[T any] struct {
	mu    sync.Mutex
	gen   uint64
	state State
	data  T
	err   error
	reqID string
	log   Logger
}

func NewLoader[T any](log Logger) *Loader[T] {
	if log == nil {
		log = nopLogger{}
	}
	return &Loader[T]{log: log}
}

// Load runs fetch and applies its result if no newer Load started meanwhile.
// applied reports whether this call's result is now the loader's state; err is
// always this call's own fetch error.
func (l *Loader[T]) Load(ctx context.Context, fetch func(ctx context.Context) (T, error)) (applied bool, err error) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	reqID := uuid.NewString()
	l.state = Loading
	l.reqID = reqID
	l.mu.Unlock()

	data, err := fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		l.log.Debugf("discarding stale result of request %s", reqID)
		return false, err
	}
	if err != nil {
		var zero T
		l.data = zero
		l.err = err
		l.state = Failed
		return true, err
	}
	l.data = data
	l.err = nil
	l.state = Loaded
	return true, nil
}

// Reset drops the current data and supersedes any request in flight.
func (l *Loader[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	var zero T
	l.data = zero
	l.err = nil
	l.state = Idle
	l.reqID = ""
}

func (l *Loader[T]) Snapshot() (T, State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data, l.state, l.err
}

func (l *Loader[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// RequestID is the id of the most recent request.
func (l *Loader[T]) RequestID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reqID
}
