package jobs

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"claim_flow_app_go/config"
	"claim_flow_app_go/models"
	"claim_flow_app_go/services"
	"claim_flow_app_go/services/casefile"

	"gorm.io/gorm"
)

// ReminderInterval is the minimum gap between two reminders of one case
const ReminderInterval = 7 * 24 * time.Hour

// reminderBatchSize bounds the cases handled in one run
const reminderBatchSize = 500

// DueReminderCases returns the cases still waiting for documents that were
// opened at least afterDays ago and not reminded within ReminderInterval.
func DueReminderCases(database *gorm.DB, afterDays int, now time.Time) ([]models.Case, error) {
	openedBefore := now.Add(-time.Duration(afterDays) * 24 * time.Hour)
	remindedBefore := now.Add(-ReminderInterval)

	var cases []models.Case
	err := database.
		Where("status = ?", casefile.StatusDocumentsPending).
		Where("created_at <= ?", openedBefore).
		Where("customer_phone <> ''").
		Where("last_reminder_at IS NULL OR last_reminder_at <= ?", remindedBefore).
		Order("created_at ASC").
		Limit(reminderBatchSize).
		Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cases for reminders: %w", err)
	}
	return cases, nil
}

// ReminderMessage lists the missing documents of a case for the customer
func ReminderMessage(c *models.Case, missing []string) string {
	msg := fmt.Sprintf("Sayin %s, %s numarali dosyaniz icin evraklariniz bekleniyor.", c.CustomerName, c.CaseNumber)
	if len(missing) > 0 {
		msg += " Eksik: " + strings.Join(missing, ", ") + "."
	}
	return msg
}

// SendMissingDocumentReminders texts every due customer and returns how many
// reminders were recorded.
func SendMissingDocumentReminders(ctx context.Context, database *gorm.DB, sms *services.SMSService, cfg *config.Config, now time.Time) (int, error) {
	log.Println("[JOB] Starting missing document reminder job...")

	cases, err := DueReminderCases(database, cfg.ReminderAfterDays, now)
	if err != nil {
		return 0, err
	}
	log.Printf("[JOB] Found %d cases to remind", len(cases))

	sent := 0
	for i := range cases {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		c := &cases[i]

		missing, err := services.MissingDocumentLabels(database, c)
		if err != nil {
			log.Printf("[JOB] Failed to list missing documents for %s: %v", c.CaseNumber, err)
			continue
		}
		if len(missing) == 0 {
			continue
		}

		if _, err := sms.Send(ctx, services.SMSRequest{
			DealerID: c.DealerID,
			CaseID:   c.ID,
			Phone:    c.CustomerPhone,
			Message:  ReminderMessage(c, missing),
		}); err != nil {
			log.Printf("[JOB] Reminder for %s failed: %v", c.CaseNumber, err)
			continue
		}

		if err := database.Model(c).Update("last_reminder_at", now).Error; err != nil {
			log.Printf("[JOB] Failed to mark reminder for %s: %v", c.CaseNumber, err)
			continue
		}
		sent++
	}

	log.Printf("[JOB] Missing document reminder job completed, %d sent", sent)
	return sent, nil
}
