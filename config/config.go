package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// MinSessionSecretLength is the minimum session secret length in production
const MinSessionSecretLength = 32

var (
	ErrInsecureSessionSecret = errors.New("SESSION_SECRET is an insecure default")
	ErrShortSessionSecret    = fmt.Errorf("SESSION_SECRET must be at least %d characters", MinSessionSecretLength)
)

var insecureSecrets = []string{"dev-secret-change-in-production", "change-me", "secret", "development", "test", ""}

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	UploadDir   string
	AppURL      string
	// Origins allowed to call the API with credentials
	AllowedOrigins []string
	SessionSecret  string
	// Turso / libSQL; DBPath is used when empty
	TursoDatabaseURL string
	TursoAuthToken   string
	// Cloudflare R2; UploadDir is used unless all four are set
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	// Email (Resend)
	ResendAPIKey       string
	EmailFrom          string
	EmailFromName      string
	EmailTestMode      bool // emails are logged instead of sent
	SecurityAlertEmail string
	// SMS gateway
	SMSAPIURL   string
	SMSUsername string
	SMSPassword string
	SMSSender   string
	SMSTestMode bool // messages are recorded as skipped and logged
	// Jobs
	ReminderAfterDays int
	Timezone          string
	// Chrome binary for case summary PDFs; empty lets chromedp search
	ChromePath string
}

// Load reads .env (when present) and the environment. Use Validate before
// serving traffic.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appURL := getEnv("APP_URL", "http://localhost:8080")
	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		DBPath:             getEnv("DB_PATH", "db/app.db"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		UploadDir:          getEnv("UPLOAD_DIR", "static/uploads"),
		AppURL:             appURL,
		AllowedOrigins:     getEnvList("ALLOWED_ORIGINS", []string{appURL}),
		SessionSecret:      getEnv("SESSION_SECRET", ""),
		TursoDatabaseURL:   getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:     getEnv("TURSO_AUTH_TOKEN", ""),
		R2AccountID:        getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:      getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey:  getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:       getEnv("R2_BUCKET_NAME", ""),
		ResendAPIKey:       getEnv("RESEND_API_KEY", ""),
		EmailFrom:          getEnv("EMAIL_FROM", "noreply@hasarportal.com.tr"),
		EmailFromName:      getEnv("EMAIL_FROM_NAME", "Hasar Portal"),
		EmailTestMode:      getEnvBool("EMAIL_TEST_MODE", true),
		SecurityAlertEmail: getEnv("SECURITY_ALERT_EMAIL", ""),
		SMSAPIURL:          getEnv("SMS_API_URL", ""),
		SMSUsername:        getEnv("SMS_USERNAME", ""),
		SMSPassword:        getEnv("SMS_PASSWORD", ""),
		SMSSender:          getEnv("SMS_SENDER", "HASARPORTAL"),
		SMSTestMode:        getEnvBool("SMS_TEST_MODE", true),
		ReminderAfterDays:  getEnvInt("REMINDER_AFTER_DAYS", 3),
		Timezone:           getEnv("TIMEZONE", "Europe/Istanbul"),
		ChromePath:         getEnv("CHROME_PATH", ""),
	}

	if cfg.SessionSecret == "" && !cfg.IsProduction() {
		cfg.SessionSecret = GenerateSecureSecret()
		log.Println("[INFO] Generated temporary session secret for development. Set SESSION_SECRET env var for persistence.")
	}
	return cfg
}

// Validate rejects settings that are unsafe in production. Outside
// production it only warns.
func (c *Config) Validate() error {
	if err := validateSessionSecret(c.SessionSecret); err != nil {
		if c.IsProduction() {
			return err
		}
		log.Printf("[WARNING] %v; acceptable only in development", err)
	}
	if c.IsProduction() && c.EmailTestMode {
		log.Println("[WARNING] EMAIL_TEST_MODE is on in production, emails are only logged")
	}
	return nil
}

func validateSessionSecret(secret string) error {
	for _, insecure := range insecureSecrets {
		if strings.EqualFold(secret, insecure) {
			return ErrInsecureSessionSecret
		}
	}
	if len(secret) < MinSessionSecretLength {
		return ErrShortSessionSecret
	}
	return nil
}

// IsProduction reports whether the app runs with ENVIRONMENT=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasObjectStorage reports whether every R2 setting is present
func (c *Config) HasObjectStorage() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

// GenerateSecureSecret returns 32 random bytes, base64 encoded
func GenerateSecureSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Printf("[WARNING] Failed to generate secure secret: %v", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		log.Printf("[WARNING] Invalid value for %s: %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
