package models

import (
	"math"
	"time"
)

// Telemetry accumulates counters for one logical fetch, across all of its
// internal retries. It is mutated in place by the fetcher and must not be
// shared between concurrent fetches.
type Telemetry struct {
	Attempts       int     `json:"tentativas"`
	CaptchasSolved int     `json:"captchas_resolvidos"`
	BytesSent      int64   `json:"bytes_enviados"`
	TotalTime      float64 `json:"tempo_total"`

	startedAt time.Time
}

// NewTelemetry returns a Telemetry whose clock starts now.
func NewTelemetry() *Telemetry {
	return &Telemetry{startedAt: time.Now()}
}

// Start sets the start instant if it has not been set yet.
func (t *Telemetry) Start() {
	if t.startedAt.IsZero() {
		t.startedAt = time.Now()
	}
}

// StartedAt reports when the logical fetch began.
func (t *Telemetry) StartedAt() time.Time { return t.startedAt }

// AddBytes adds n to the cumulative byte counter. Negative values are ignored.
func (t *Telemetry) AddBytes(n int64) {
	if n > 0 {
		t.BytesSent += n
	}
}

// Finish recomputes TotalTime as the elapsed seconds since start, rounded to
// two decimals, and returns a snapshot of the counters.
func (t *Telemetry) Finish() *Telemetry {
	t.Start()
	elapsed := time.Since(t.startedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	t.TotalTime = math.Round(elapsed*100) / 100
	snapshot := *t
	return &snapshot
}
