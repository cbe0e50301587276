package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Purger removes expired entries.
type Purger interface {
	PurgeExpired() (int, error)
}

// Janitor periodically purges expired disk cache entries.
type Janitor struct {
	cron   *cron.Cron
	purger Purger
	log    *slog.Logger
}

// NewJanitor creates a Janitor that purges every interval.
func NewJanitor(purger Purger, interval time.Duration, log *slog.Logger) (*Janitor, error) {
	c := cron.New()

	j := &Janitor{
		cron:   c,
		purger: purger,
		log:    log,
	}

	if _, err := c.AddFunc("@every "+interval.String(), j.RunOnce); err != nil {
		return nil, err
	}

	return j, nil
}

// Start begins running scheduled purges.
func (j *Janitor) Start() {
	j.log.Info("cache janitor started")
	j.cron.Start()
}

// Stop stops the janitor, waiting for a running purge to finish.
func (j *Janitor) Stop() context.Context {
	j.log.Info("cache janitor stopping")
	return j.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (j *Janitor) Entries() []cron.Entry {
	return j.cron.Entries()
}

// RunOnce purges expired entries immediately.
func (j *Janitor) RunOnce() {
	n, err := j.purger.PurgeExpired()
	if err != nil {
		j.log.Error("cache purge failed", "error", err)
		return
	}
	if n > 0 {
		j.log.Info("purged expired cache entries", "count", n)
	}
}
