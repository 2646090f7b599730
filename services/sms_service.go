package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode"

	"claim_flow_app_go/config"
	"claim_flow_app_go/models"

	"gorm.io/gorm"
)

// MaxSMSLength is the longest body accepted (three concatenated parts)
const MaxSMSLength = 459

var (
	ErrInvalidPhone     = errors.New("phone number must be a Turkish mobile number")
	ErrEmptySMS         = errors.New("message is empty")
	ErrSMSTooLong       = errors.New("message is too long")
	ErrSMSNotConfigured = errors.New("SMS gateway is not configured")
)

// NormalizePhone converts the common Turkish mobile notations
// (0532..., +90 532..., 532...) to 90XXXXXXXXXX.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	digits = strings.TrimPrefix(digits, "00")

	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "90"):
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		digits = "9" + digits
	case len(digits) == 10:
		digits = "90" + digits
	default:
		return "", ErrInvalidPhone
	}
	if digits[2] != '5' {
		return "", ErrInvalidPhone
	}
	return digits, nil
}

// SMSProvider delivers one message and returns the vendor message id
type SMSProvider interface {
	Send(ctx context.Context, phone, message string) (string, error)
}

// HTTPSMSProvider posts JSON to a vendor endpoint with basic credentials
type HTTPSMSProvider struct {
	URL      string
	Username string
	Password string
	Sender   string
	Client   *http.Client
}

type smsRequest struct {
	Sender  string   `json:"sender"`
	Message string   `json:"message"`
	Phones  []string `json:"phones"`
}

type smsResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

// NewHTTPSMSProvider creates a provider from configuration
func NewHTTPSMSProvider(cfg *config.Config) *HTTPSMSProvider {
	return &HTTPSMSProvider{
		URL:      cfg.SMSAPIURL,
		Username: cfg.SMSUsername,
		Password: cfg.SMSPassword,
		Sender:   cfg.SMSSender,
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Send implements SMSProvider
func (p *HTTPSMSProvider) Send(ctx context.Context, phone, message string) (string, error) {
	if p.URL == "" {
		return "", ErrSMSNotConfigured
	}
	body, err := json.Marshal(smsRequest{Sender: p.Sender, Message: message, Phones: []string{phone}})
	if err != nil {
		return "", fmt.Errorf("failed to encode sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(p.Username, p.Password)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send sms: %w", err)
	}
	defer resp.Body.Close()

	var result smsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode sms response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 || !result.Success {
		return "", fmt.Errorf("sms gateway rejected message (status %d): %s", resp.StatusCode, result.Error)
	}
	return result.MessageID, nil
}

// SMSService records and dispatches customer SMS
type SMSService struct {
	DB       *gorm.DB
	Provider SMSProvider
	TestMode bool
}

// NewSMSService wires the HTTP provider from configuration
func NewSMSService(db *gorm.DB, cfg *config.Config) *SMSService {
	return &SMSService{
		DB:       db,
		Provider: NewHTTPSMSProvider(cfg),
		TestMode: cfg.SMSTestMode,
	}
}

// SMSRequest is one message to send
type SMSRequest struct {
	DealerID string
	CaseID   string
	SentByID string
	Phone    string
	Message  string
}

// Send validates, records and delivers a message. Delivery failures are
// recorded on the returned row and also returned as error.
func (s *SMSService) Send(ctx context.Context, in SMSRequest) (*models.SmsMessage, error) {
	message := SanitizeText(in.Message)
	if message == "" {
		return nil, ErrEmptySMS
	}
	if len([]rune(message)) > MaxSMSLength {
		return nil, ErrSMSTooLong
	}
	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}

	msg := &models.SmsMessage{
		DealerID: in.DealerID,
		CaseID:   ptrIfNotEmpty(in.CaseID),
		SentByID: ptrIfNotEmpty(in.SentByID),
		Phone:    phone,
		Message:  message,
		Status:   models.SmsStatusPending,
	}
	if err := s.DB.Create(msg).Error; err != nil {
		return nil, fmt.Errorf("failed to record sms: %w", err)
	}

	updates := map[string]interface{}{}
	var sendErr error
	if s.TestMode {
		log.Printf("[SMS] Test mode, not sent | To: %s | %s", phone, message)
		updates["status"] = models.SmsStatusSkipped
	} else {
		providerID, err := s.Provider.Send(ctx, phone, message)
		if err != nil {
			log.Printf("[SMS] Delivery to %s failed: %v", phone, err)
			updates["status"] = models.SmsStatusFailed
			updates["error"] = err.Error()
			sendErr = err
		} else {
			now := time.Now()
			updates["status"] = models.SmsStatusSent
			updates["provider_id"] = providerID
			updates["sent_at"] = now
		}
	}

	if err := s.DB.Model(msg).Updates(updates).Error; err != nil {
		log.Printf("[SMS] Failed to update sms %s: %v", msg.ID, err)
	}
	return msg, sendErr
}

// SendAsync delivers in the background, like SendEmailAsync
func (s *SMSService) SendAsync(in SMSRequest) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.Send(ctx, in); err != nil {
			log.Printf("[SMS] Async send failed: %v", err)
		}
	}()
}

// ListSMS returns one page of SMS history inside scope, newest first
func ListSMS(db *gorm.DB, scope CaseScope, caseID string, page, pageSize int) ([]models.SmsMessage, int64, error) {
	query := db.Model(&models.SmsMessage{})
	switch {
	case scope.All:
	case scope.DealerID != "":
		query = query.Where("dealer_id = ?", scope.DealerID)
	default:
		return nil, 0, ErrForbidden
	}
	if caseID != "" {
		query = query.Where("case_id = ?", caseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sms: %w", err)
	}
	page, pageSize = NormalizePage(page, pageSize)

	var messages []models.SmsMessage
	err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&messages).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sms: %w", err)
	}
	return messages, total, nil
}
