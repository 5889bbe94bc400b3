package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jbrannst/mcp-konnect-portal/internal/observability"
)

// requestIDHeader carries the per-request correlation id.
const requestIDHeader = "X-Request-ID"

// RequestID middleware assigns each request an id, honoring one supplied by
// the caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger middleware logs HTTP requests
func RequestLogger(logger observability.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("request", map[string]interface{}{
			"request_id": c.GetString("request_id"),
			"client_ip":  c.ClientIP(),
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
	}
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Limit      int           `mapstructure:"limit"`
	Burst      int           `mapstructure:"burst"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// rateLimiterStorage provides per-client limiters
type rateLimiterStorage struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	expiry   map[string]time.Time
	config   RateLimitConfig
}

func newRateLimiterStorage(config RateLimitConfig) *rateLimiterStorage {
	return &rateLimiterStorage{
		limiters: make(map[string]*rate.Limiter),
		expiry:   make(map[string]time.Time),
		config:   config,
	}
}

func (s *rateLimiterStorage) getLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limiter, exists := s.limiters[key]; exists {
		if time.Now().Before(s.expiry[key]) {
			return limiter
		}
		delete(s.limiters, key)
		delete(s.expiry, key)
	}

	limiter := rate.NewLimiter(rate.Limit(s.config.Limit), s.config.Burst)
	s.limiters[key] = limiter
	s.expiry[key] = time.Now().Add(s.config.Expiration)
	return limiter
}

// RateLimiter middleware implements per-client-IP rate limiting
func RateLimiter(config RateLimitConfig) gin.HandlerFunc {
	storage := newRateLimiterStorage(config)

	return func(c *gin.Context) {
		limiter := storage.getLimiter(c.ClientIP())
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
