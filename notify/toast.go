package notify

import (
	"sync"
	"time"
)

// Toast keeps one transient message on a status surface and clears it after a
// while. A newer message replaces the current one and takes over its timer;
// there is no other way to cancel a toast.
type Toast struct {
	draw     func(status string)
	duration time.Duration
	color    bool

	mu      sync.Mutex
	current string
	seq     int
	timer   *time.Timer
}

// NewToast returns a Toast that calls draw with the rendered message, and
// with an empty string once it expires. A duration of zero keeps messages
// until they are replaced.
func NewToast(draw func(status string), duration time.Duration, color bool) *Toast {
	return &Toast{draw: draw, duration: duration, color: color}
}

func (t *Toast) Notify(message string, severity Severity) {
	status := Format(message, severity, t.color)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.seq++
	t.current = status
	t.draw(status)
	if t.duration > 0 {
		seq := t.seq
		t.timer = time.AfterFunc(t.duration, func() {
			t.expire(seq)
		})
	}
}

func (t *Toast) expire(seq int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if seq != t.seq {
		return
	}
	t.current = ""
	t.timer = nil
	t.draw("")
}

// Current returns the rendered message on display, or "" if none.
func (t *Toast) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Close stops the expiry timer without drawing.
func (t *Toast) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
