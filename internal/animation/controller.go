// Package animation steps through the available years on a fixed interval.
//
// The controller is a small state machine:
//
//	Idle --Start--> Running --tick--> Running
//	Running --Stop--> Idle          (index kept, next Start resumes)
//	Running --complete--> Idle      (fired by the tick that shows the last year)
//
// At most one timer goroutine exists at any time; Start stops the previous
// run before launching a new one.
package animation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type State string

const (
	Idle    State = "idle"
	Running State = "running"
)

var ErrNoYears = errors.New("animation: no years to animate")

// Event is delivered on every tick. Complete is set on the last one.
type Event struct {
	RunID    string `json:"run_id"`
	Year     int    `json:"year"`
	Index    int    `json:"index"`
	Complete bool   `json:"complete"`
}

// Status is a snapshot of the controller.
type Status struct {
	State State  `json:"state"`
	RunID string `json:"run_id,omitempty"`
	Index int    `json:"index"`
	Years []int  `json:"years"`
}

type Controller struct {
	interval time.Duration
	onFrame  func(Event)

	ops sync.Mutex // serializes Start, Stop and Reset

	mu     sync.Mutex
	state  State
	years  []int
	idx    int
	runID  string
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns an idle controller. onFrame runs on the timer goroutine.
func New(interval time.Duration, onFrame func(Event)) *Controller {
	if onFrame == nil {
		onFrame = func(Event) {}
	}
	return &Controller{interval: interval, onFrame: onFrame, state: Idle}
}

// Start animates years from the current index, or from the beginning when
// the previous run completed or the year list changed.
func (c *Controller) Start(years []int) (string, error) {
	if len(years) == 0 {
		return "", ErrNoYears
	}

	c.ops.Lock()
	defer c.ops.Unlock()

	c.stop()

	c.mu.Lock()
	if !sameYears(c.years, years) {
		c.years = append([]int(nil), years...)
		c.idx = 0
	}
	if c.idx >= len(c.years) {
		c.idx = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.runID = uuid.NewString()
	c.state = Running
	runID, done := c.runID, c.done
	c.mu.Unlock()

	slog.Info("animation started", "run_id", runID, "years", len(years), "interval", c.interval)
	go c.run(ctx, runID, done)
	return runID, nil
}

// Stop pauses a running animation and keeps its position.
func (c *Controller) Stop() {
	c.ops.Lock()
	defer c.ops.Unlock()
	c.stop()
}

// Reset stops the animation and rewinds to the first year.
func (c *Controller) Reset() {
	c.ops.Lock()
	defer c.ops.Unlock()
	c.stop()

	c.mu.Lock()
	c.idx = 0
	c.mu.Unlock()
}

// Wait blocks until the current run ends or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State: c.state,
		RunID: c.runID,
		Index: c.idx,
		Years: append([]int(nil), c.years...),
	}
}

// stop cancels the running goroutine and waits for it. Caller holds ops.
// The state flips to Idle before cancel, so a tick racing the cancellation
// finds the run over and neither advances nor draws.
func (c *Controller) stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	if c.state == Running {
		c.state = Idle
		slog.Info("animation stopped", "run_id", c.runID, "index", c.idx)
	}
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (c *Controller) run(ctx context.Context, runID string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			ev, ok := c.tick(runID)
			if !ok {
				return
			}
			c.onFrame(ev)
			if ev.Complete {
				slog.Info("animation complete", "run_id", runID)
				return
			}
		}
	}
}

// tick advances the index and fires complete when the years run out.
func (c *Controller) tick(runID string) (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Running || c.runID != runID || c.idx >= len(c.years) {
		return Event{}, false
	}

	ev := Event{RunID: runID, Year: c.years[c.idx], Index: c.idx}
	c.idx++
	if c.idx >= len(c.years) {
		ev.Complete = true
		c.state = Idle
	}
	return ev, true
}

func sameYears(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
