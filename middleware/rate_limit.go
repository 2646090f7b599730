package middleware

import (
	"html"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimitConfig describes a token bucket: Requests tokens refill evenly
// over Window, and up to Requests may be spent at once.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	// KeyFunc identifies the caller; defaults to the client IP
	KeyFunc func(c echo.Context) string
	// Message is shown when the bucket is empty
	Message string
}

// RateLimiter shares one in-memory store across every route it guards
type RateLimiter struct {
	config     RateLimitConfig
	store      *echomiddleware.RateLimiterMemoryStore
	retryAfter string
}

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string {
			return c.RealIP()
		}
	}
	if config.Message == "" {
		config.Message = "Çok fazla istek. Lütfen daha sonra tekrar deneyin."
	}

	perToken := config.Window
	if config.Requests > 0 {
		perToken = config.Window / time.Duration(config.Requests)
	}

	return &RateLimiter{
		config: config,
		store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Every(perToken),
			Burst:     config.Requests,
			ExpiresIn: 3 * config.Window,
		}),
		retryAfter: strconv.Itoa(int(math.Ceil(perToken.Seconds()))),
	}
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: rl.store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return rl.config.KeyFunc(c), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return rl.deny(c)
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			return rl.deny(c)
		},
	})
}

func (rl *RateLimiter) deny(c echo.Context) error {
	c.Response().Header().Set("Retry-After", rl.retryAfter)
	if c.Request().Header.Get("HX-Request") == "true" {
		return c.HTML(http.StatusTooManyRequests, `<div class="alert alert-error" role="alert">`+html.EscapeString(rl.config.Message)+`</div>`)
	}
	return echo.NewHTTPError(http.StatusTooManyRequests, rl.config.Message)
}

// LoginRateLimiter limits login attempts to 5 per minute per IP
var LoginRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests: 5,
	Window:   time.Minute,
	Message:  "Çok fazla giriş denemesi. Lütfen bir dakika sonra tekrar deneyin.",
})

// ExportRateLimiter limits archive and spreadsheet exports to 10 per minute per user
var ExportRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests: 10,
	Window:   time.Minute,
	KeyFunc:  userOrIPKey,
	Message:  "Çok fazla dışa aktarım isteği. Lütfen biraz bekleyin.",
})

// SMSRateLimiter limits manual SMS sends to 20 per minute per user
var SMSRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests: 20,
	Window:   time.Minute,
	KeyFunc:  userOrIPKey,
	Message:  "Çok fazla SMS isteği. Lütfen biraz bekleyin.",
})

// APIRateLimiter limits authenticated traffic to 120 requests per minute per user
var APIRateLimiter = NewRateLimiter(RateLimitConfig{
	Requests: 120,
	Window:   time.Minute,
	KeyFunc:  userOrIPKey,
	Message:  "İstek sınırı aşıldı. Lütfen yavaşlayın.",
})

// userOrIPKey keys authenticated requests by user and the rest by IP
func userOrIPKey(c echo.Context) string {
	if user := GetCurrentUser(c); user != nil {
		return "user:" + user.ID
	}
	return "ip:" + c.RealIP()
}
