// Package cleanup prunes aged selection history on a schedule.
package cleanup

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// HistoryPurger removes history rows older than a cutoff.
type HistoryPurger interface {
	Purge(before time.Time) (int64, error)
}

// HistoryJob deletes selection history past the retention window.
// Implements scheduler.Job.
type HistoryJob struct {
	purger    HistoryPurger
	retention time.Duration
	log       zerolog.Logger
}

// NewHistoryJob creates a history retention job. Retention must be positive;
// a zero retention would silently delete everything on every run.
func NewHistoryJob(purger HistoryPurger, retention time.Duration, log zerolog.Logger) (*HistoryJob, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("history retention must be positive, got %s", retention)
	}
	return &HistoryJob{
		purger:    purger,
		retention: retention,
		log:       log.With().Str("module", "cleanup").Logger(),
	}, nil
}

// Name returns the job name for scheduler logs
func (j *HistoryJob) Name() string {
	return "history-cleanup"
}

// Run purges history older than the retention window
func (j *HistoryJob) Run() error {
	cutoff := time.Now().Add(-j.retention)

	purged, err := j.purger.Purge(cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge selection history: %w", err)
	}
	if purged > 0 {
		j.log.Info().
			Int64("purged", purged).
			Time("cutoff", cutoff).
			Msg("Selection history pruned")
	}
	return nil
}
