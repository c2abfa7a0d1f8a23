package completion

import (
	"errors"
	"sync"
)

// ErrDiscoverAfterTerminal is reported when a part is discovered after the framer
// has already signalled that no more parts follow.
var ErrDiscoverAfterTerminal = errors.New("part discovered after terminal event")

// State is the progress of a session.
type State int

const (
	Idle State = iota
	Discovering
	AwaitingDrain
	Completed
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Discovering:
		return "discovering"
	case AwaitingDrain:
		return "awaiting_drain"
	case Completed:
		return "completed"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

//go:generate go run go.uber.org/mock/mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock

// ITracker receives the events of one session.
type ITracker interface {
	Begin()
	Discover() bool
	Drain(err error)
	Terminal()
	Fail(err error)
	Snapshot() Snapshot
}

// DoneFunc is called once with the outcome of the session.
type DoneFunc func(err error)

// Snapshot is a point-in-time view of a Tracker.
type Snapshot struct {
	State      State
	Discovered int
	Drained    int
	Terminal   bool
	Err        error
}

// Tracker reconciles part discovery, part drain and the terminal signal of one
// request into a single call of the done callback.
type Tracker struct {
	mu         sync.Mutex
	done       DoneFunc
	started    bool
	discovered int
	drained    int
	terminal   bool
	completed  bool
	err        error
}

// NewTracker returns an idle tracker that reports to done.
func NewTracker(done DoneFunc) *Tracker {
	return &Tracker{
		done: done,
	}
}

// Begin marks the first byte of the body as processed.
func (t *Tracker) Begin() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.started = true
}

// Discover records a new part. It returns false once the session has finished,
// in which case the part must not be handed to a handler.
func (t *Tracker) Discover() bool {
	t.mu.Lock()
	if t.completed {
		t.mu.Unlock()
		return false
	}

	if t.terminal {
		fire := t.finishLocked(ErrDiscoverAfterTerminal)
		t.mu.Unlock()
		fire()
		return false
	}

	t.started = true
	t.discovered++
	t.mu.Unlock()

	return true
}

func (t *Tracker) Drain(err error) {
	if err != nil {
		t.Fail(err)
		return
	}

	t.mu.Lock()
	if t.completed || t.drained >= t.discovered {
		t.mu.Unlock()
		return
	}

	t.drained++
	fire := t.settleLocked()
	t.mu.Unlock()

	fire()
}

func (t *Tracker) Terminal() {
	t.mu.Lock()
	if t.completed || t.terminal {
		t.mu.Unlock()
		return
	}

	t.started = true
	t.terminal = true
	fire := t.settleLocked()
	t.mu.Unlock()

	fire()
}

// Fail finishes the session with err. The first error wins.
func (t *Tracker) Fail(err error) {
	if err == nil {
		return
	}

	t.mu.Lock()
	if t.completed {
		t.mu.Unlock()
		return
	}

	fire := t.finishLocked(err)
	t.mu.Unlock()

	fire()
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Snapshot{
		State:      t.stateLocked(),
		Discovered: t.discovered,
		Drained:    t.drained,
		Terminal:   t.terminal,
		Err:        t.err,
	}
}

func (t *Tracker) settleLocked() func() {
	if !t.terminal || t.drained != t.discovered {
		return func() {}
	}

	return t.finishLocked(nil)
}

// finishLocked marks the session as completed and returns the callback
// invocation, which the caller runs after releasing the lock.
func (t *Tracker) finishLocked(err error) func() {
	t.completed = true
	t.err = err

	done := t.done
	return func() {
		if done != nil {
			done(err)
		}
	}
}

func (t *Tracker) stateLocked() State {
	switch {
	case t.completed && t.err != nil:
		return Errored
	case t.completed:
		return Completed
	case t.terminal:
		return AwaitingDrain
	case t.started:
		return Discovering
	default:
		return Idle
	}
}
