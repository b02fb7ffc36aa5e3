package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"github.com/zorex/kdash/internal/storage"
)

// Tier is a named limiter.
type Tier struct {
	Name    string
	Limiter *Limiter
}

// Config holds the limiters of each tier. A nil tier is unlimited.
type Config struct {
	API     *Tier
	Summary *Tier
}

// NewConfig creates limiters from the dashboard rate limits. Bursts allow a
// sixth of a minute's budget at once.
func NewConfig(rl storage.RateLimits) *Config {
	c := &Config{}
	if rl.APIRatePerMin > 0 {
		c.API = &Tier{Name: "api", Limiter: NewLimiter(rl.APIRatePerMin, time.Minute, max(rl.APIRatePerMin/6, 1))}
	}
	if rl.SummaryRatePerMin > 0 {
		c.Summary = &Tier{Name: "summary", Limiter: NewLimiter(rl.SummaryRatePerMin, time.Minute, max(rl.SummaryRatePerMin/6, 1))}
	}
	return c
}

// Match returns the tier applying to a request, or nil for requests that
// are not rate limited: the health check and everything outside /api/.
func (c *Config) Match(method, path string) *Tier {
	if path == "/api/health" || !strings.HasPrefix(path, "/api/") {
		return nil
	}
	if method == http.MethodPost && strings.HasPrefix(path, "/api/products/") && strings.HasSuffix(path, "/summary") {
		if c.Summary != nil {
			return c.Summary
		}
	}
	return c.API
}

// Close stops all limiters.
func (c *Config) Close() {
	for _, t := range []*Tier{c.API, c.Summary} {
		if t != nil {
			t.Limiter.Close()
		}
	}
}

// BuildKey creates a bucket key from a client identifier and a tier.
func BuildKey(clientIP, tierName string) string {
	return "ip:" + clientIP + ":" + tierName
}
