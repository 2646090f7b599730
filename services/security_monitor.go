package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"claim_flow_app_go/config"

	"gorm.io/gorm"
)

// Login failure thresholds
const (
	FailedLoginThreshold = 5
	FailedLoginWindow    = 10 * time.Minute
	alertCooldown        = time.Hour
	maxAlertHistory      = 100
)

// SecurityAlert represents a triggered security alert
type SecurityAlert struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	Reason    string    `json:"reason"`
	Level     string    `json:"level"` // "WARNING", "CRITICAL"
}

// SecurityEventMonitor counts failed logins per IP and raises an alert when
// an IP crosses the threshold inside the window. One alert per IP per hour.
type SecurityEventMonitor struct {
	mu           sync.Mutex
	failedLogins map[string][]time.Time
	alertedIPs   map[string]time.Time
	alerts       []SecurityAlert
	onAlert      func(SecurityAlert)
	now          func() time.Time
}

// Monitor is the process-wide instance; nil until InitSecurityMonitor runs
var Monitor *SecurityEventMonitor

// NewSecurityMonitor creates a monitor; onAlert may be nil
func NewSecurityMonitor(onAlert func(SecurityAlert)) *SecurityEventMonitor {
	return &SecurityEventMonitor{
		failedLogins: make(map[string][]time.Time),
		alertedIPs:   make(map[string]time.Time),
		onAlert:      onAlert,
		now:          time.Now,
	}
}

// InitSecurityMonitor installs the global monitor. Alerts go to the audit
// trail and, when SecurityAlertEmail is set, to that mailbox.
func InitSecurityMonitor(db *gorm.DB, cfg *config.Config) {
	Monitor = NewSecurityMonitor(func(a SecurityAlert) {
		LogSecurityEvent(db, "LOGIN_BRUTE_FORCE", "", fmt.Sprintf("%s from IP: %s", a.Reason, a.IP))
		if cfg.SecurityAlertEmail == "" {
			return
		}
		SendEmailAsync(cfg, &Email{
			To:       []string{cfg.SecurityAlertEmail},
			Subject:  "Güvenlik uyarısı: " + a.Reason,
			TextBody: fmt.Sprintf("Tür: %s\nIP: %s\nZaman: %s\n", a.Reason, a.IP, a.Timestamp.Format(time.RFC1123)),
		})
	})
}

// TrackFailedLogin records a failed login attempt and reports whether it
// raised an alert
func (m *SecurityEventMonitor) TrackFailedLogin(ip string) bool {
	m.mu.Lock()
	now := m.now()
	windowStart := now.Add(-FailedLoginWindow)

	valid := m.failedLogins[ip][:0]
	for _, t := range m.failedLogins[ip] {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	valid = append(valid, now)
	m.failedLogins[ip] = valid

	if len(valid) < FailedLoginThreshold {
		m.mu.Unlock()
		return false
	}
	if last, ok := m.alertedIPs[ip]; ok && now.Sub(last) < alertCooldown {
		m.mu.Unlock()
		return false
	}

	m.alertedIPs[ip] = now
	alert := SecurityAlert{
		Timestamp: now,
		IP:        ip,
		Reason:    "Multiple failed logins detected",
		Level:     "CRITICAL",
	}
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxAlertHistory {
		m.alerts = m.alerts[:maxAlertHistory]
	}
	onAlert := m.onAlert
	m.mu.Unlock()

	log.Printf("[SECURITY ALERT] %s from IP: %s", alert.Reason, ip)
	if onAlert != nil {
		onAlert(alert)
	}
	return true
}

// GetRecentAlerts returns a copy of recent alerts, newest first
func (m *SecurityEventMonitor) GetRecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	alertsCopy := make([]SecurityAlert, len(m.alerts))
	copy(alertsCopy, m.alerts)
	return alertsCopy
}

// Prune removes stale counters. The scheduler calls it hourly.
func (m *SecurityEventMonitor) Prune() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for ip, attempts := range m.failedLogins {
		if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) > FailedLoginWindow {
			delete(m.failedLogins, ip)
		}
	}
	for ip, lastAlert := range m.alertedIPs {
		if now.Sub(lastAlert) > alertCooldown {
			delete(m.alertedIPs, ip)
		}
	}
}
