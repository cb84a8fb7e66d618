package scan

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into single firings. It is a
// trailing debounce with a hard ceiling: a firing happens no later than max
// after the first trigger of a burst, even if triggers never go quiet. A pure
// trailing debounce stalls forever under a mutation storm, which is exactly
// when scanning matters most.
type Debouncer struct {
	quiet time.Duration
	max   time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	deadline time.Time
	stopped  bool

	c chan struct{}
}

func NewDebouncer(quiet, max time.Duration) *Debouncer {
	if max < quiet {
		max = quiet
	}
	return &Debouncer{
		quiet: quiet,
		max:   max,
		c:     make(chan struct{}, 1),
	}
}

// C delivers one value per coalesced burst. The channel has capacity one; a
// firing that arrives while the consumer is mid-pass folds into the next
// receive instead of queueing.
func (d *Debouncer) C() <-chan struct{} { return d.c }

// Trigger notes an event. The first trigger of a burst fixes the latest
// allowed firing time; later triggers push the quiet-period timer out but
// never past that ceiling.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	now := time.Now()
	if d.timer == nil {
		d.deadline = now.Add(d.max)
		d.timer = time.AfterFunc(d.quiet, d.fire)
		return
	}

	wait := d.quiet
	if remaining := d.deadline.Sub(now); remaining < wait {
		wait = remaining
		if wait < 0 {
			wait = 0
		}
	}
	d.timer.Reset(wait)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	d.timer = nil
	stopped := d.stopped
	d.mu.Unlock()
	if stopped {
		return
	}
	select {
	case d.c <- struct{}{}:
	default:
	}
}

// Stop cancels any pending firing. Triggers after Stop are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
