package ratelimit

import (
	"testing"
	"time"

	"github.com/zorex/kdash/internal/storage"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(5, time.Minute, 5)
	defer l.Close()

	for i := range 5 {
		r := l.Allow("k")
		if !r.Allowed {
			t.Errorf("request %d should be allowed", i+1)
		}
		if r.Limit != 5 {
			t.Errorf("Limit = %d, want 5", r.Limit)
		}
		if r.Remaining != 4-i {
			t.Errorf("request %d: Remaining = %d, want %d", i+1, r.Remaining, 4-i)
		}
	}
	r := l.Allow("k")
	if r.Allowed {
		t.Error("6th request should be rate limited")
	}
	if r.RetryAfter < 11*time.Second || r.RetryAfter > 12*time.Second {
		t.Errorf("RetryAfter = %v, want ~12s", r.RetryAfter)
	}
	if other := l.Allow("other"); !other.Allowed {
		t.Error("other key should not be limited")
	}
}

func TestLimiter_Refill(t *testing.T) {
	l := NewLimiter(60, time.Minute, 1)
	defer l.Close()
	now := time.Unix(1700000000, 0)
	l.now = func() time.Time { return now }

	if !l.Allow("k").Allowed {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("k").Allowed {
		t.Fatal("second request should be limited")
	}
	now = now.Add(time.Second)
	if !l.Allow("k").Allowed {
		t.Error("request after refill should be allowed")
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	l := NewLimiter(60, time.Minute, 10)
	defer l.Close()
	now := time.Unix(1700000000, 0)
	l.now = func() time.Time { return now }

	l.Allow("idle")
	now = now.Add(staleAfter + time.Minute)
	l.Allow("active")
	l.cleanup()
	if got := l.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestConfig_Match(t *testing.T) {
	c := NewConfig(storage.RateLimits{APIRatePerMin: 600, SummaryRatePerMin: 60})
	defer c.Close()
	tests := []struct {
		method, path string
		want         string
	}{
		{"GET", "/api/health", ""},
		{"GET", "/", ""},
		{"GET", "/assets/logo.png", ""},
		{"GET", "/api/products", "api"},
		{"POST", "/api/qa/search", "api"},
		{"POST", "/api/products/Eye%20Defense/summary", "summary"},
		{"GET", "/api/products/all", "api"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := ""
			if tier := c.Match(tt.method, tt.path); tier != nil {
				got = tier.Name
			}
			if got != tt.want {
				t.Errorf("Match() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_Unlimited(t *testing.T) {
	c := NewConfig(storage.RateLimits{})
	defer c.Close()
	if tier := c.Match("GET", "/api/products"); tier != nil {
		t.Errorf("Match() = %v, want nil", tier)
	}

	c2 := NewConfig(storage.RateLimits{APIRatePerMin: 60})
	defer c2.Close()
	if tier := c2.Match("POST", "/api/products/x/summary"); tier == nil || tier.Name != "api" {
		t.Errorf("Match(summary) = %v, want api tier", tier)
	}
}

func TestBuildKey(t *testing.T) {
	if got := BuildKey("10.0.0.1", "api"); got != "ip:10.0.0.1:api" {
		t.Errorf("BuildKey() = %q", got)
	}
}
