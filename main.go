package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/eduapps/quizvault/autosave"
	"github.com/eduapps/quizvault/cache"
	"github.com/eduapps/quizvault/jobs"
	"github.com/eduapps/quizvault/kv"
	"github.com/eduapps/quizvault/storage"
	"github.com/eduapps/quizvault/utils"
)

func main() {
	// Set up logging with timestamps
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	utils.LogStartup("quizvault maintenance daemon starting...")

	// Load .env if present; real env vars win either way.
	if err := godotenv.Load(); err == nil {
		utils.LogStartup("Loaded configuration from .env")
	}

	vaultDir := utils.GetEnvOrDefault("VAULT_DIR", "./vault")
	dbPath := utils.GetEnvOrDefault("DB_PATH", "./vault/quizvault.db")
	sweepMinutes := utils.GetEnvInt("CLEANUP_INTERVAL_MINUTES", 15)
	utils.LogStartup("Using vault directory: %s", vaultDir)
	utils.LogStartup("Using database path: %s", dbPath)

	store := kv.Open(vaultDir)
	if store.Degraded() {
		utils.LogError("Keyed storage is degraded, nothing will persist")
	}
	contentCache := cache.New(store)
	progress := autosave.NewProgressStore(store)

	// Embedding applications register their sessions on this scheduler;
	// the daemon owns its lifecycle so unsaved state is flushed on exit.
	var scheduler *autosave.Scheduler
	if utils.GetEnvBool("AUTOSAVE_ENABLED", true) {
		cfg := autosave.ConfigFromEnv()
		scheduler = autosave.NewScheduler(progress, cfg)
		utils.LogStartup("Auto-save enabled: every %v (jitter %v)", cfg.Interval, cfg.Jitter)
	} else {
		utils.LogStartup("Auto-save disabled by AUTOSAVE_ENABLED")
	}

	// The structured store is optional: without it we still sweep the
	// keyed storage layers.
	db, err := storage.Open(dbPath)
	if err != nil {
		utils.LogError("Structured storage unavailable, continuing without it: %v", err)
		db = nil
	}

	manager := jobs.NewManager(db, contentCache, progress, time.Duration(sweepMinutes)*time.Minute)
	if err := manager.Start(); err != nil {
		log.Fatalf("[FATAL] Failed to start maintenance jobs: %v", err)
	}

	if db != nil {
		if info, err := db.StorageInfo(); err == nil {
			utils.LogInfo("Structured store holds %d records (%d bytes on disk)",
				info.TotalRecords, info.UsedBytes)
		}
	}

	utils.LogStartup("Maintenance daemon ready")

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	utils.LogShutdown("Received shutdown signal")
	if scheduler != nil {
		scheduler.Shutdown()
	}
	manager.Stop()
	if db != nil {
		if err := db.Close(); err != nil {
			utils.LogError("Error closing database: %v", err)
		}
	}
	utils.LogShutdown("Maintenance daemon stopped")
}
