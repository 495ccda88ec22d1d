package autosave

import (
	"math/rand"
	"sync"
	"time"

	"github.com/eduapps/quizvault/models"
	"github.com/eduapps/quizvault/utils"
)

// SnapshotProvider returns the current in-memory quiz state at the
// moment a save fires.
type SnapshotProvider func() models.Snapshot

// DefaultInterval matches the auto-save interval preference default.
const DefaultInterval = 30 * time.Second

// Config controls save timing. Jitter, when set, spreads each tick by a
// random offset in [0, Jitter) so many sessions don't save in lockstep.
type Config struct {
	Interval time.Duration
	Jitter   time.Duration
}

// ConfigFromEnv builds a Config from AUTOSAVE_INTERVAL (seconds) and
// AUTOSAVE_JITTER_MS, falling back to the defaults when unset.
func ConfigFromEnv() Config {
	return Config{
		Interval: time.Duration(utils.GetEnvInt("AUTOSAVE_INTERVAL", int(DefaultInterval/time.Second))) * time.Second,
		Jitter:   time.Duration(utils.GetEnvInt("AUTOSAVE_JITTER_MS", 0)) * time.Millisecond,
	}
}

type timerKey struct {
	quizID string
	userID string
}

type sessionTimer struct {
	provider SnapshotProvider
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// Scheduler runs at most one auto-save timer per (quiz, user) key.
type Scheduler struct {
	progress        *ProgressStore
	defaultInterval time.Duration
	jitter          time.Duration

	mu     sync.Mutex
	timers map[timerKey]*sessionTimer
}

// NewScheduler wires a scheduler to the progress store. The store keeps
// a back-reference so ProgressStore.Clear can stop the matching timer.
func NewScheduler(progress *ProgressStore, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	s := &Scheduler{
		progress:        progress,
		defaultInterval: cfg.Interval,
		jitter:          cfg.Jitter,
		timers:          make(map[timerKey]*sessionTimer),
	}
	progress.sched = s
	return s
}

// Start begins periodic saves for (quizID, userID). If a timer already
// exists for the key it is replaced; there is never more than one.
func (s *Scheduler) Start(quizID, userID string, provider SnapshotProvider, interval time.Duration) {
	if interval <= 0 {
		interval = s.defaultInterval
	}

	t := &sessionTimer{
		provider: provider,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	s.mu.Lock()
	key := timerKey{quizID: quizID, userID: userID}
	if old, ok := s.timers[key]; ok {
		utils.LogAutoSave("Replacing auto-save timer for user %s quiz %s", userID, quizID)
		close(old.stop)
		<-old.done
	}
	s.timers[key] = t
	s.mu.Unlock()

	utils.LogAutoSave("Auto-save started for user %s quiz %s every %v", userID, quizID, interval)
	go s.run(key, t)
}

func (s *Scheduler) run(key timerKey, t *sessionTimer) {
	defer close(t.done)
	timer := time.NewTimer(s.nextDelay(t.interval))
	defer timer.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-timer.C:
			s.tick(key, t.provider)
			timer.Reset(s.nextDelay(t.interval))
		}
	}
}

func (s *Scheduler) nextDelay(interval time.Duration) time.Duration {
	if s.jitter <= 0 {
		return interval
	}
	return interval + time.Duration(rand.Int63n(int64(s.jitter)))
}

// tick takes one snapshot and persists it. A failure inside the
// snapshot provider or the save must not kill the timer, so everything
// is recovered and logged.
func (s *Scheduler) tick(key timerKey, provider SnapshotProvider) (saved bool) {
	defer func() {
		if r := recover(); r != nil {
			utils.LogError("Auto-save tick failed for user %s quiz %s: %v", key.userID, key.quizID, r)
		}
	}()

	snap := provider()
	if len(snap.Answers) == 0 {
		utils.LogDebug("Skipping auto-save for user %s quiz %s: no answers yet", key.userID, key.quizID)
		return false
	}
	s.progress.saveSnapshot(key.quizID, key.userID, snap)
	return true
}

// Flush saves the current snapshot for (quizID, userID) immediately,
// without waiting for the next tick. It reports whether a save
// happened.
func (s *Scheduler) Flush(quizID, userID string) bool {
	s.mu.Lock()
	key := timerKey{quizID: quizID, userID: userID}
	t, ok := s.timers[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return s.tick(key, t.provider)
}

// Stop cancels the timer for (quizID, userID). Stopping a key with no
// timer is a no-op. A save already in flight still completes.
func (s *Scheduler) Stop(quizID, userID string) {
	s.mu.Lock()
	key := timerKey{quizID: quizID, userID: userID}
	t, ok := s.timers[key]
	if ok {
		delete(s.timers, key)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	close(t.stop)
	<-t.done
	utils.LogAutoSave("Auto-save stopped for user %s quiz %s", userID, quizID)
}

// Active reports whether a timer exists for (quizID, userID).
func (s *Scheduler) Active(quizID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[timerKey{quizID: quizID, userID: userID}]
	return ok
}

// ActiveCount returns the number of running timers.
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Shutdown flushes every active session one last time and stops all
// timers. This is the page-unload path: best-effort persistence of
// whatever is still unsaved before the process goes away.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	keys := make([]timerKey, 0, len(s.timers))
	for key := range s.timers {
		keys = append(keys, key)
	}
	s.mu.Unlock()

	for _, key := range keys {
		s.Flush(key.quizID, key.userID)
		s.Stop(key.quizID, key.userID)
	}
	if len(keys) > 0 {
		utils.LogShutdown("Auto-save flushed %d active sessions", len(keys))
	}
}
