// Package jobs runs the background maintenance work: a periodic sweep
// that evicts expired cache entries and stale progress records so the
// stores don't grow without bound between application starts.
package jobs

import (
	"time"

	"github.com/go-co-op/gocron"

	"github.com/eduapps/quizvault/autosave"
	"github.com/eduapps/quizvault/cache"
	"github.com/eduapps/quizvault/storage"
	"github.com/eduapps/quizvault/utils"
)

type Manager struct {
	scheduler *gocron.Scheduler
	db        *storage.DB // nil when structured storage is unavailable
	cache     *cache.Cache
	progress  *autosave.ProgressStore
	interval  time.Duration
}

func NewManager(db *storage.DB, c *cache.Cache, progress *autosave.ProgressStore, interval time.Duration) *Manager {
	return &Manager{
		scheduler: gocron.NewScheduler(time.UTC),
		db:        db,
		cache:     c,
		progress:  progress,
		interval:  interval,
	}
}

// Start runs one sweep immediately, then schedules it at the configured
// interval. A failing sweep is logged and retried on the next run.
func (m *Manager) Start() error {
	utils.LogStartup("Starting maintenance jobs (every %v)...", m.interval)

	m.Sweep()
	if _, err := m.scheduler.Every(m.interval).Do(m.Sweep); err != nil {
		return err
	}
	m.scheduler.StartAsync()
	return nil
}

func (m *Manager) Stop() {
	utils.LogShutdown("Stopping maintenance jobs...")
	m.scheduler.Stop()
}

// Sweep purges expired cache entries and stale progress records across
// both storage layers.
func (m *Manager) Sweep() {
	start := time.Now()
	expired := m.cache.Cleanup()
	stale := m.progress.PurgeStale()

	queryRows := 0
	if m.db != nil {
		n, err := m.db.CleanExpiredCache()
		if err != nil {
			utils.LogError("Query cache sweep failed: %v", err)
		} else {
			queryRows = n
		}
	}

	utils.LogJobs("Sweep done in %v: %d cache entries, %d stale progress records, %d query rows",
		time.Since(start), expired, stale, queryRows)
}
