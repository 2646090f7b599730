package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityMonitor(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var fired []SecurityAlert
	m := NewSecurityMonitor(func(a SecurityAlert) { fired = append(fired, a) })
	m.now = func() time.Time { return clock }
	ip := "127.0.0.1"

	t.Run("threshold raises one alert", func(t *testing.T) {
		for i := 0; i < FailedLoginThreshold-1; i++ {
			assert.False(t, m.TrackFailedLogin(ip))
		}
		assert.True(t, m.TrackFailedLogin(ip))

		alerts := m.GetRecentAlerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, ip, alerts[0].IP)
		assert.Contains(t, alerts[0].Reason, "Multiple failed logins")
		assert.Len(t, fired, 1)
	})

	t.Run("alerts are rate limited per ip", func(t *testing.T) {
		for i := 0; i < FailedLoginThreshold; i++ {
			assert.False(t, m.TrackFailedLogin(ip))
		}
		assert.Len(t, m.GetRecentAlerts(), 1)
	})

	t.Run("attempts outside the window are forgotten", func(t *testing.T) {
		other := "10.0.0.9"
		for i := 0; i < FailedLoginThreshold-1; i++ {
			m.TrackFailedLogin(other)
		}
		clock = clock.Add(FailedLoginWindow + time.Second)
		assert.False(t, m.TrackFailedLogin(other))
	})

	t.Run("prune drops stale counters", func(t *testing.T) {
		clock = clock.Add(2 * time.Hour)
		m.Prune()
		m.mu.Lock()
		defer m.mu.Unlock()
		assert.Empty(t, m.failedLogins)
		assert.Empty(t, m.alertedIPs)
	})
}
