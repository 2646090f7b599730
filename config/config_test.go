package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("SMS_TEST_MODE", "")
	t.Setenv("REMINDER_AFTER_DAYS", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.True(t, cfg.SMSTestMode)
	assert.True(t, cfg.EmailTestMode)
	assert.Equal(t, 3, cfg.ReminderAfterDays)
	assert.Equal(t, "Europe/Istanbul", cfg.Timezone)
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.False(t, cfg.IsProduction())
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("X_DAYS", "7")
	assert.Equal(t, 7, getEnvInt("X_DAYS", 3))

	t.Setenv("X_DAYS", "yedi")
	assert.Equal(t, 3, getEnvInt("X_DAYS", 3))

	t.Setenv("X_DAYS", "-1")
	assert.Equal(t, 3, getEnvInt("X_DAYS", 3))
}

func TestGetEnvBool(t *testing.T) {
	for _, v := range []string{"true", "1", "YES", "on"} {
		t.Setenv("X_FLAG", v)
		assert.True(t, getEnvBool("X_FLAG", false), v)
	}
	t.Setenv("X_FLAG", "off")
	assert.False(t, getEnvBool("X_FLAG", true))
	t.Setenv("X_FLAG", "belki")
	assert.True(t, getEnvBool("X_FLAG", true))
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("X_ORIGINS", " https://a.example , ,https://b.example")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, getEnvList("X_ORIGINS", nil))

	t.Setenv("X_ORIGINS", "")
	assert.Equal(t, []string{"http://x"}, getEnvList("X_ORIGINS", []string{"http://x"}))
}

func TestValidate(t *testing.T) {
	strong := GenerateSecureSecret()
	require.Len(t, strong, 44)

	prod := &Config{Environment: "production", SessionSecret: "change-me"}
	assert.ErrorIs(t, prod.Validate(), ErrInsecureSessionSecret)

	prod.SessionSecret = "kisa-ama-ozel"
	assert.ErrorIs(t, prod.Validate(), ErrShortSessionSecret)

	prod.SessionSecret = strong
	assert.NoError(t, prod.Validate())

	dev := &Config{Environment: "development", SessionSecret: "secret"}
	assert.NoError(t, dev.Validate())
}

func TestHasObjectStorage(t *testing.T) {
	cfg := &Config{R2AccountID: "acc", R2AccessKeyID: "key", R2SecretAccessKey: "sec"}
	assert.False(t, cfg.HasObjectStorage())
	cfg.R2BucketName = "evrak"
	assert.True(t, cfg.HasObjectStorage())
}
