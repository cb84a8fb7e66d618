package scan

import (
	"testing"
	"time"
)

func waitFire(t *testing.T, d *Debouncer, within time.Duration) bool {
	t.Helper()
	select {
	case <-d.C():
		return true
	case <-time.After(within):
		return false
	}
}

func TestDebouncerFiresAfterQuiet(t *testing.T) {
	d := NewDebouncer(20*time.Millisecond, 500*time.Millisecond)
	defer d.Stop()

	d.Trigger()
	d.Trigger()
	d.Trigger()

	if !waitFire(t, d, 200*time.Millisecond) {
		t.Fatal("burst never fired")
	}
	// a fully quiet debouncer does not fire again
	if waitFire(t, d, 60*time.Millisecond) {
		t.Fatal("spurious second firing")
	}
}

func TestDebouncerBoundedLatencyUnderStorm(t *testing.T) {
	d := NewDebouncer(30*time.Millisecond, 120*time.Millisecond)
	defer d.Stop()

	// continuous triggers faster than the quiet window: a pure trailing
	// debounce would never fire
	stop := make(chan struct{})
	go func() {
		tick := time.NewTicker(10 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				d.Trigger()
			}
		}
	}()
	defer close(stop)

	start := time.Now()
	if !waitFire(t, d, time.Second) {
		t.Fatal("storm suppressed firing entirely")
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("firing took %v, want bounded near the 120ms ceiling", elapsed)
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, 50*time.Millisecond)
	d.Trigger()
	d.Stop()
	if waitFire(t, d, 80*time.Millisecond) {
		t.Fatal("fired after Stop")
	}
	d.Trigger() // ignored
	if waitFire(t, d, 80*time.Millisecond) {
		t.Fatal("trigger after Stop fired")
	}
}
