package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/shrimpsizemoose/roster/internal/metrics"
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
)

const DefaultTTL = 3 * time.Second

// Banner shows one message at a time and hides it after ttl. A newer
// message replaces the current one and restarts the timer.
type Banner struct {
	mu       sync.Mutex
	out      io.Writer
	ttl      time.Duration
	message  string
	severity Severity
	visible  bool
	gen      uint64
	timer    *time.Timer
}

func NewBanner(out io.Writer, ttl time.Duration) *Banner {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Banner{out: out, ttl: ttl}
}

func (b *Banner) Notify(severity Severity, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	metrics.NotificationsTotal.WithLabelValues(string(severity)).Inc()

	b.gen++
	gen := b.gen
	b.message = message
	b.severity = severity
	b.visible = true

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.ttl, func() { b.hide(gen) })

	if b.out != nil {
		fmt.Fprintf(b.out, "[%s] %s\n", severity, message)
	}
}

func (b *Banner) hide(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return
	}
	b.visible = false
}

// Current returns the visible message, if any.
func (b *Banner) Current() (Severity, string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.visible {
		return "", "", false
	}
	return b.severity, b.message, true
}

func (b *Banner) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.visible = false
}
