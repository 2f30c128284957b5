// Package progress accounts for a migration run. A Tracker is an explicit
// value owned by one run; nothing here is global.
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
)

// maxFailures bounds the failures a Tracker keeps; older ones are dropped.
const maxFailures = 100

// Status is how a processed record ended.
type Status string

const (
	StatusCommitted Status = "committed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Snapshot is a point-in-time copy of a Tracker.
type Snapshot struct {
	Pipeline  string        `json:"pipeline"`
	RunID     string        `json:"run_id,omitempty"`
	Total     int           `json:"total"`
	Processed int           `json:"processed"`
	Committed int           `json:"committed"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Percent   int           `json:"percent"`
	Rate      float64       `json:"rate_per_second"`
	ETA       time.Duration `json:"eta_ns"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Complete  bool          `json:"complete"`
	// RecentFailures holds the latest rolled back records, oldest first.
	RecentFailures []Failure `json:"recent_failures,omitempty"`
}

// Failure is one rolled back record.
type Failure struct {
	SourceID int64     `json:"source_id"`
	Kind     string    `json:"kind"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
	err      error
}

// Err is the error the record failed with.
func (f Failure) Err() error { return f.err }

// FindFailure returns the most recent failure of sourceID in the snapshot.
func (s Snapshot) FindFailure(sourceID int64) (Failure, bool) {
	for i := len(s.RecentFailures) - 1; i >= 0; i-- {
		if s.RecentFailures[i].SourceID == sourceID {
			return s.RecentFailures[i], true
		}
	}
	return Failure{}, false
}

// Tracker counts processed records against the total captured at the start
// of the run. The total is not refreshed, so processed can undershoot or
// overshoot it when the pending set changes under the run.
//
// A Tracker is safe for concurrent use; the admin server reads it while the
// run updates it.
type Tracker struct {
	mu           sync.Mutex
	pipeline     string
	runID        string
	total        int
	processed    int
	committed    int
	failed       int
	skipped      int
	everyPercent int
	lastLogged   int
	failures     []Failure
	started      time.Time
	now          func() time.Time
	logger       ectologger.Logger
}

type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogEvery sets how many percent apart progress lines are logged.
func WithLogEvery(percent int) Option {
	return func(t *Tracker) {
		if percent > 0 {
			t.everyPercent = percent
		}
	}
}

func WithRunID(runID string) Option {
	return func(t *Tracker) { t.runID = runID }
}

func NewTracker(pipeline string, total int, logger ectologger.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		pipeline:     pipeline,
		total:        total,
		everyPercent: 1,
		now:          time.Now,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.started = t.now()
	return t
}

// Tick counts one processed record and logs a progress line each time the
// percentage crosses a logging boundary.
func (t *Tracker) Tick(ctx context.Context, status Status) {
	t.mu.Lock()
	t.processed++
	switch status {
	case StatusCommitted:
		t.committed++
	case StatusFailed:
		t.failed++
	case StatusSkipped:
		t.skipped++
	}

	snap := t.snapshotLocked()
	boundary := snap.Percent / t.everyPercent * t.everyPercent
	shouldLog := boundary > t.lastLogged || (snap.Complete && t.lastLogged < 100)
	if shouldLog {
		t.lastLogged = boundary
		if snap.Complete {
			t.lastLogged = 100
		}
	}
	t.mu.Unlock()

	if shouldLog {
		t.logger.WithContext(ctx).WithFields(map[string]any{
			"processed": snap.Processed,
			"total":     snap.Total,
			"percent":   snap.Percent,
			"rate":      snap.Rate,
			"eta":       snap.ETA.Round(time.Second).String(),
		}).Infof("Migrating %d%% %d/%d", snap.Percent, snap.Processed, snap.Total)
	}
}

// RecordFailure keeps err as the failure of sourceID. It does not count the
// record; Tick does.
func (t *Tracker) RecordFailure(sourceID int64, err error) {
	if err == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.failures) == maxFailures {
		t.failures = append(t.failures[:0], t.failures[1:]...)
	}
	t.failures = append(t.failures, Failure{
		SourceID: sourceID,
		Kind:     migerrors.Classify(err),
		Message:  err.Error(),
		At:       t.now(),
		err:      err,
	})
}

// Complete reports whether every record counted at the start was processed.
func (t *Tracker) Complete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.processed >= t.total
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() Snapshot {
	elapsed := t.now().Sub(t.started)
	snap := Snapshot{
		Pipeline:  t.pipeline,
		RunID:     t.runID,
		Total:     t.total,
		Processed: t.processed,
		Committed: t.committed,
		Failed:    t.failed,
		Skipped:   t.skipped,
		Elapsed:   elapsed,
		Complete:  t.processed >= t.total,
	}
	if len(t.failures) > 0 {
		snap.RecentFailures = append([]Failure(nil), t.failures...)
	}

	if t.total > 0 {
		snap.Percent = min(t.processed*100/t.total, 100)
	} else {
		snap.Percent = 100
	}

	if elapsed > 0 && t.processed > 0 {
		snap.Rate = float64(t.processed) / elapsed.Seconds()
		if remaining := t.total - t.processed; remaining > 0 {
			snap.ETA = time.Duration(float64(remaining) / snap.Rate * float64(time.Second))
		}
	}

	return snap
}
