package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezone database for hosts without zoneinfo
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	if c.Storage.MaxBytes <= 0 {
		return fmt.Errorf("storage.max_bytes must be > 0 (got %d)", c.Storage.MaxBytes)
	}
	if strings.TrimSpace(c.Storage.UploadDir) == "" {
		return fmt.Errorf("storage.upload_dir is required")
	}

	if err := c.Workflow.validate(); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}

	if c.RateLimit.UploadsPerMinute <= 0 {
		return fmt.Errorf("ratelimit.uploads_per_minute must be > 0 (got %d)", c.RateLimit.UploadsPerMinute)
	}

	return nil
}

func (w *WorkflowConfig) validate() error {
	if w.MaxFilterIDs <= 0 {
		return fmt.Errorf("max_filter_ids must be > 0 (got %d)", w.MaxFilterIDs)
	}
	if w.MaxSettleIDs <= 0 {
		return fmt.Errorf("max_settle_ids must be > 0 (got %d)", w.MaxSettleIDs)
	}

	loc, err := time.LoadLocation(w.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", w.Timezone, err)
	}
	w.Location = loc

	return nil
}
