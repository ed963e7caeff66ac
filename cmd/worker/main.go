package main

import (
	"flag"
	"log"
	"time"

	"hookwatch/internal/pkg/logger"
	"hookwatch/internal/platform/config"
	"hookwatch/internal/platform/database"
	"hookwatch/internal/platform/repositories"

	zlog "github.com/rs/zerolog/log"
)

// The retention worker is the external pruning the dispatch log design
// assumes: event_logs grows without bound otherwise.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	once := flag.Bool("once", false, "Run a single sweep and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	logRepo := repositories.NewDispatchLogRepository(db)

	sweep := func() {
		cutoff := time.Now().Add(-cfg.Retention.LogMaxAge).Unix()
		pruned, err := logRepo.DeleteOlderThan(cutoff)
		if err != nil {
			zlog.Error().Err(err).Msg("dispatch log sweep failed")
			return
		}
		zlog.Info().Int64("pruned", pruned).Int64("cutoff", cutoff).Msg("dispatch log sweep completed")
	}

	sweep()
	if *once {
		return
	}

	ticker := time.NewTicker(cfg.Retention.SweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		sweep()
	}
}
