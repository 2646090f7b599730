package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"claim_flow_app_go/config"
	"claim_flow_app_go/models"
	"claim_flow_app_go/services/casefile"

	"gorm.io/gorm"
)

type NotificationService struct {
	DB  *gorm.DB
	Cfg *config.Config
	SMS *SMSService
}

func NewNotificationService(db *gorm.DB, cfg *config.Config, sms *SMSService) *NotificationService {
	return &NotificationService{DB: db, Cfg: cfg, SMS: sms}
}

// visibleTo matches notifications addressed to the user or broadcast to the dealer
func (s *NotificationService) visibleTo(dealerID, userID string) *gorm.DB {
	return s.DB.Model(&models.Notification{}).
		Where("dealer_id = ? AND (user_id IS NULL OR user_id = ?)", dealerID, userID)
}

func (s *NotificationService) GetUnreadNotifications(dealerID, userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.visibleTo(dealerID, userID).
		Where("read_at IS NULL").
		Order("created_at DESC").
		Limit(5).
		Find(&notifications).Error
	return notifications, err
}

func (s *NotificationService) MarkAsRead(notificationID, userID string, dealerID string) error {
	return s.visibleTo(dealerID, userID).
		Where("id = ?", notificationID).
		Update("read_at", time.Now()).Error
}

func (s *NotificationService) MarkAllAsRead(dealerID, userID string) error {
	return s.visibleTo(dealerID, userID).
		Where("read_at IS NULL").
		Update("read_at", time.Now()).Error
}

func (s *NotificationService) GetNotificationCount(dealerID, userID string) (int64, error) {
	var count int64
	err := s.visibleTo(dealerID, userID).
		Where("read_at IS NULL").
		Count(&count).Error
	return count, err
}

func (s *NotificationService) CreateNotification(notification *models.Notification) error {
	return s.DB.Create(notification).Error
}

// CaseStatusSMS is the customer message sent on a status change
func CaseStatusSMS(c *models.Case, missing []string) string {
	msg := fmt.Sprintf("Sayin %s, %s numarali dosyanizin durumu: %s.", c.CustomerName, c.CaseNumber, c.StatusLabel())
	if c.Status == casefile.StatusDocumentsPending && len(missing) > 0 {
		msg += " Eksik evraklar: " + strings.Join(missing, ", ") + "."
	}
	return msg
}

// NotifyCaseStatusChange informs the dealer in-app and the customer by SMS
// and email. Delivery runs in the background.
func (s *NotificationService) NotifyCaseStatusChange(c *models.Case, from casefile.Status, actorID string) {
	missing, err := MissingDocumentLabels(s.DB, c)
	if err != nil {
		log.Printf("[WARNING] Failed to list missing documents of %s: %v", c.CaseNumber, err)
	}

	caseID := c.ID
	notification := &models.Notification{
		DealerID: c.DealerID,
		CaseID:   &caseID,
		Type:     models.NotificationTypeCaseUpdate,
		Title:    c.CaseNumber + " durum güncellendi",
		Message:  fmt.Sprintf("%s → %s", from.Label(), c.StatusLabel()),
		LinkURL:  "/cases/" + c.ID,
	}
	if err := s.CreateNotification(notification); err != nil {
		log.Printf("[WARNING] Failed to create notification for %s: %v", c.CaseNumber, err)
	}

	if s.SMS != nil && c.CustomerPhone != "" {
		s.SMS.SendAsync(SMSRequest{
			DealerID: c.DealerID,
			CaseID:   c.ID,
			SentByID: actorID,
			Phone:    c.CustomerPhone,
			Message:  CaseStatusSMS(c, missing),
		})
	}

	if s.Cfg != nil && c.CustomerEmail != "" {
		email := BuildCaseStatusEmail(c.CustomerEmail, CaseStatusEmailData{
			CustomerName:   c.CustomerName,
			CaseNumber:     c.CaseNumber,
			PreviousStatus: from.Label(),
			Status:         c.StatusLabel(),
			Missing:        missing,
			CaseURL:        strings.TrimSuffix(s.Cfg.AppURL, "/") + "/cases/" + c.ID,
		})
		SendEmailAsync(s.Cfg, email)
	}
}
