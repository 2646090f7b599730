package jobs

import (
	"context"
	"log"
	"time"

	"claim_flow_app_go/config"
	"claim_flow_app_go/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	sessionCleanupSpec = "30 3 * * *"
	reminderSpec       = "0 10 * * *"
)

// StartScheduler registers the nightly jobs and starts the cron runner.
// The caller stops it on shutdown.
func StartScheduler(database *gorm.DB, cfg *config.Config, sms *services.SMSService) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("[CRON] Unknown timezone %q, using UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(sessionCleanupSpec, func() {
		CleanupSessions(database)
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(reminderSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := SendMissingDocumentReminders(ctx, database, sms, cfg, time.Now()); err != nil {
			log.Printf("[JOB] Reminder job failed: %v", err)
		}
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc("@hourly", func() {
		if services.Monitor != nil {
			services.Monitor.Prune()
		}
	}); err != nil {
		return nil, err
	}

	c.Start()
	log.Println("[CRON] Scheduler started")
	return c, nil
}

// CleanupSessions removes expired sessions
func CleanupSessions(database *gorm.DB) {
	n, err := services.CleanupExpiredSessions(database)
	if err != nil {
		log.Printf("[JOB] Session cleanup failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[JOB] Cleaned up %d expired sessions", n)
	}
}
