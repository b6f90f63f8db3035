// Package resource wraps remote operations in a uniform lifecycle
// (Idle, Loading, Success, Failure) whose read model views render from.
package resource

import (
	"context"
	"sync"

	"waystation/internal/logger"
)

// State is the lifecycle position of a Controller.
type State int

const (
	Idle State = iota
	Loading
	Success
	Failure
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "idle"
	}
}

// Snapshot is the read model of a Controller at one instant.
type Snapshot[T any] struct {
	State State
	Data  T
	// HasData is false until the first success, and after a clearing execute.
	HasData bool
	Err     error
}

func (s Snapshot[T]) IsLoading() bool { return s.State == Loading }

// Func performs the remote operation.
type Func[In, Out any] func(ctx context.Context, in In) (Out, error)

// Options tune a Controller for one operation.
type Options[In any] struct {
	// Validate runs before the remote call. A non-nil error moves the
	// controller to Failure without calling Func.
	Validate func(In) error
	// ClearDataOnExecute drops previously held data when a call starts.
	ClearDataOnExecute bool
}

// Controller runs one kind of remote operation for one view.
//
// Overlapping Execute calls are allowed and not fenced: whichever outcome is
// applied last overwrites data and error, even if it belongs to the call that
// was issued first. Nothing cancels or times out a call; a call that never
// returns leaves the controller Loading.
type Controller[In, Out any] struct {
	name string
	fn   Func[In, Out]
	opts Options[In]

	mu        sync.Mutex
	snap      Snapshot[Out]
	listeners map[int]func(Snapshot[Out])
	nextID    int
}

// New builds an idle Controller.
func New[In, Out any](name string, fn Func[In, Out], opts Options[In]) *Controller[In, Out] {
	return &Controller[In, Out]{
		name:      name,
		fn:        fn,
		opts:      opts,
		listeners: make(map[int]func(Snapshot[Out])),
	}
}

func (c *Controller[In, Out]) Name() string { return c.name }

// Snapshot returns the current read model.
func (c *Controller[In, Out]) Snapshot() Snapshot[Out] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Subscribe registers fn to receive every new snapshot. The returned func
// removes the subscription.
func (c *Controller[In, Out]) Subscribe(fn func(Snapshot[Out])) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Execute runs the operation. The result is returned to the caller and also
// recorded in the read model; a failure is both recorded and returned.
func (c *Controller[In, Out]) Execute(ctx context.Context, in In) (Out, error) {
	ctx = logger.WithOperation(ctx, c.name)
	var zero Out

	if c.opts.Validate != nil {
		if err := c.opts.Validate(in); err != nil {
			logger.Debug(ctx, "precondition failed", "error", err)
			c.apply(ctx, func(s *Snapshot[Out]) {
				s.State = Failure
				s.Err = err
			})
			return zero, err
		}
	}

	c.apply(ctx, func(s *Snapshot[Out]) {
		s.State = Loading
		s.Err = nil
		if c.opts.ClearDataOnExecute {
			s.Data = zero
			s.HasData = false
		}
	})

	out, err := c.fn(ctx, in)
	if err != nil {
		c.apply(ctx, func(s *Snapshot[Out]) {
			s.State = Failure
			s.Err = err
		})
		return zero, err
	}

	c.apply(ctx, func(s *Snapshot[Out]) {
		s.State = Success
		s.Data = out
		s.HasData = true
		s.Err = nil
	})
	return out, nil
}

func (c *Controller[In, Out]) apply(ctx context.Context, mutate func(*Snapshot[Out])) {
	c.mu.Lock()
	mutate(&c.snap)
	snap := c.snap
	listeners := make([]func(Snapshot[Out]), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	logger.Debug(ctx, "state change", "state", snap.State.String(), "has_data", snap.HasData)
	for _, fn := range listeners {
		fn(snap)
	}
}
