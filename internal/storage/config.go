// Manages dashboard configuration stored in dashboard_config.json.

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// ConfigFile is the configuration file name in the data directory.
const ConfigFile = "dashboard_config.json"

// DashboardConfig stores all dashboard-wide configuration.
// Loaded from dashboard_config.json, created with defaults if missing.
type DashboardConfig struct {
	// RateLimits defines per-client API rate limiting.
	RateLimits RateLimits `json:"rate_limits"`

	// Search defines Q&A search options.
	Search SearchConfig `json:"search"`

	// Activity defines the retention of the activity log.
	Activity ActivityConfig `json:"activity"`
}

// RateLimits defines rate limiting configuration (requests per minute).
type RateLimits struct {
	// APIRatePerMin limits API requests per client IP. 0 means unlimited.
	APIRatePerMin int `json:"api_rate_per_min"`

	// SummaryRatePerMin limits summary generation per client IP, the only
	// endpoint that writes to disk. 0 means unlimited.
	SummaryRatePerMin int `json:"summary_rate_per_min"`
}

// Validate checks that rate limit values are non-negative.
func (r *RateLimits) Validate() error {
	if r.APIRatePerMin < 0 {
		return errors.New("api_rate_per_min must be non-negative")
	}
	if r.SummaryRatePerMin < 0 {
		return errors.New("summary_rate_per_min must be non-negative")
	}
	return nil
}

// SearchConfig defines the Q&A result counts offered to clients.
type SearchConfig struct {
	// AllowedMaxResults lists the accepted max_results values.
	AllowedMaxResults []int `json:"allowed_max_results"`

	// DefaultMaxResults is used when a request omits max_results.
	DefaultMaxResults int `json:"default_max_results"`
}

// Validate checks that the default is one of the allowed values.
func (s *SearchConfig) Validate() error {
	if len(s.AllowedMaxResults) == 0 {
		return errors.New("allowed_max_results is required")
	}
	for _, v := range s.AllowedMaxResults {
		if v <= 0 {
			return errors.New("allowed_max_results must be positive")
		}
	}
	if !slices.Contains(s.AllowedMaxResults, s.DefaultMaxResults) {
		return fmt.Errorf("default_max_results %d is not in allowed_max_results", s.DefaultMaxResults)
	}
	return nil
}

// ActivityConfig defines how much history is shown and kept.
type ActivityConfig struct {
	// RecentlyViewed is the number of unique products listed.
	RecentlyViewed int `json:"recently_viewed"`

	// RecentSearches is the number of searches listed.
	RecentSearches int `json:"recent_searches"`

	// MaxRows is the number of newest rows kept on disk. The views listed in
	// the sidebar are kept in addition.
	MaxRows int `json:"max_rows"`
}

// Validate checks that all values are positive.
func (a *ActivityConfig) Validate() error {
	if a.RecentlyViewed <= 0 {
		return errors.New("recently_viewed must be positive")
	}
	if a.RecentSearches <= 0 {
		return errors.New("recent_searches must be positive")
	}
	if a.MaxRows < a.RecentSearches {
		return errors.New("max_rows must hold at least recent_searches rows")
	}
	return nil
}

// DefaultDashboardConfig returns the default configuration.
func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		RateLimits: RateLimits{
			APIRatePerMin:     600, // 10 req/s sustained for a single local user
			SummaryRatePerMin: 120,
		},
		Search: SearchConfig{
			AllowedMaxResults: []int{3, 5, 10},
			DefaultMaxResults: 3,
		},
		Activity: ActivityConfig{
			RecentlyViewed: 5,
			RecentSearches: 10,
			MaxRows:        1000,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *DashboardConfig) Validate() error {
	if err := c.RateLimits.Validate(); err != nil {
		return fmt.Errorf("rate_limits: %w", err)
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if err := c.Activity.Validate(); err != nil {
		return fmt.Errorf("activity: %w", err)
	}
	return nil
}

// LoadDashboardConfig loads configuration from dataDir/dashboard_config.json.
// Creates the file with defaults if it doesn't exist.
func LoadDashboardConfig(dataDir string) (*DashboardConfig, error) {
	path := filepath.Join(dataDir, ConfigFile)
	cfg := DefaultDashboardConfig()

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is constructed from dataDir, not user input
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
		}
		if err := cfg.Save(dataDir); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	return &cfg, nil
}

// Save saves configuration to dataDir/dashboard_config.json.
func (c *DashboardConfig) Save(dataDir string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')
	if err := writeFileAtomic(filepath.Join(dataDir, ConfigFile), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", ConfigFile, err)
	}
	return nil
}
