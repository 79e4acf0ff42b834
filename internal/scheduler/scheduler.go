// Package scheduler runs the listing pipeline on a daily cron.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/config"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/pipeline"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers scheduled pipeline runs.
type Scheduler struct {
	cron      *cron.Cron
	runner    *pipeline.Runner
	config    *config.Config
	isRunning bool
}

// NewScheduler creates a scheduler around the pipeline runner.
func NewScheduler(runner *pipeline.Runner, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		config: cfg,
	}
}

// Start registers the daily job and starts the cron loop. Does nothing
// when the daily run is disabled in configuration.
func (s *Scheduler) Start() error {
	if !s.config.Scheduler.DailyRunEnabled {
		log.Println("Scheduler: Daily run is disabled in configuration")
		return nil
	}

	cronSpec := parseDailyRunTime(s.config.Scheduler.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("Scheduler: Starting daily pipeline run...")
		if _, err := s.runner.Run(context.Background()); err != nil {
			log.Printf("Scheduler: Daily pipeline run failed: %v", err)
		} else {
			log.Println("Scheduler: Daily pipeline run completed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: Started with daily run at %s (cron: %s)", s.config.Scheduler.DailyRunTime, cronSpec)

	return nil
}

// Stop stops the cron loop. A run already in flight finishes.
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

// parseDailyRunTime converts "HH:MM" to a cron specification.
// Example: "02:00" -> "0 2 * * *".
func parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	log.Printf("Scheduler: Failed to parse time %q, using default 02:00", timeStr)
	return "0 2 * * *"
}
