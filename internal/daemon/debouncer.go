package daemon

import (
	"context"
	"time"
)

// DebouncerConfig tunes batch coalescing.
type DebouncerConfig struct {
	// QuietWindow is how long the change stream must stay silent before the
	// pending batch is emitted.
	QuietWindow time.Duration
	// MaxDelay caps how long a batch can be postponed by a steady stream of
	// changes; it cannot be postponed indefinitely.
	MaxDelay time.Duration
}

// Debouncer coalesces bursts of changes into batches:
//   - quiet window debounce
//   - max delay (cannot postpone indefinitely)
//
// It is safe to run as a single goroutine. Emitted batches are consumed by
// the rebuild loop one at a time; an emit blocks until the loop accepts it,
// so rebuilds never overlap.
type Debouncer struct {
	in  <-chan Change
	out chan Batch
	cfg DebouncerConfig
}

// NewDebouncer wires a debouncer over a change stream.
func NewDebouncer(in <-chan Change, cfg DebouncerConfig) *Debouncer {
	if cfg.QuietWindow <= 0 {
		cfg.QuietWindow = 300 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 5 * time.Second
	}
	return &Debouncer{in: in, out: make(chan Batch), cfg: cfg}
}

// Batches returns the stream of coalesced change batches.
func (d *Debouncer) Batches() <-chan Batch { return d.out }

// Run coalesces until the context ends or the input closes. It owns the
// output channel and closes it on return.
func (d *Debouncer) Run(ctx context.Context) error {
	defer close(d.out)

	newStoppedTimer := func() *time.Timer {
		t := time.NewTimer(time.Hour)
		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
		return t
	}
	quietTimer := newStoppedTimer()
	maxTimer := newStoppedTimer()
	resetTimer := func(t *time.Timer, after time.Duration) {
		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
		t.Reset(after)
	}

	var (
		pending Batch
		quietC  <-chan time.Time
		maxC    <-chan time.Time
	)
	emit := func() bool {
		batch := pending
		pending = Batch{}
		quietC, maxC = nil, nil
		select {
		case d.out <- batch:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-d.in:
			if !ok {
				if len(pending.Changes) > 0 {
					emit()
				}
				return nil
			}
			first := len(pending.Changes) == 0
			pending.add(change, time.Now())
			resetTimer(quietTimer, d.cfg.QuietWindow)
			quietC = quietTimer.C
			if first {
				resetTimer(maxTimer, d.cfg.MaxDelay)
				maxC = maxTimer.C
			}
		case <-quietC:
			if !emit() {
				return nil
			}
		case <-maxC:
			if !emit() {
				return nil
			}
		}
	}
}
