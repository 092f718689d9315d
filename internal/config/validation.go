package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/haskel/aguacate/internal/imageio"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Training.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("training: %w", err))
	}

	if err := c.Image.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("image: %w", err))
	}

	if err := c.History.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("history: %w", err))
	}

	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	return errors.Join(errs...)
}

func (s *ServerConfig) Validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", s.Port))
	}
	if s.MaxBodyMB < 1 {
		errs = append(errs, fmt.Errorf("max_body_mb must be at least 1, got %d", s.MaxBodyMB))
	}
	if s.RateLimit.Enabled {
		if s.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.requests_per_second must be positive"))
		}
		if s.RateLimit.Burst < 1 {
			errs = append(errs, fmt.Errorf("rate_limit.burst must be at least 1"))
		}
		if s.RateLimit.ImageCost < 1 || s.RateLimit.ImageCost > s.RateLimit.Burst {
			errs = append(errs, fmt.Errorf("rate_limit.image_cost must be between 1 and burst (%d), got %d",
				s.RateLimit.Burst, s.RateLimit.ImageCost))
		}
	}

	return errors.Join(errs...)
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", l.Format)
	}

	return nil
}

func (t *TrainingConfig) Validate() error {
	var errs []error

	if t.Epochs < 1 {
		errs = append(errs, fmt.Errorf("epochs must be at least 1, got %d", t.Epochs))
	}
	if !(t.LearningRate > 0) || math.IsInf(t.LearningRate, 0) {
		errs = append(errs, fmt.Errorf("learning_rate must be positive, got %v", t.LearningRate))
	}
	if t.AugmentCopies < 0 {
		errs = append(errs, fmt.Errorf("augment_copies must be non-negative, got %d", t.AugmentCopies))
	}
	if !(t.Jitter >= 0) || math.IsInf(t.Jitter, 0) {
		errs = append(errs, fmt.Errorf("jitter must be non-negative, got %v", t.Jitter))
	}
	if t.ProgressEvery < 0 {
		errs = append(errs, fmt.Errorf("progress_every must be non-negative, got %d", t.ProgressEvery))
	}

	for name, size := range map[string]int{
		"leaf":  t.Hidden.Leaf,
		"fruit": t.Hidden.Fruit,
		"pest":  t.Hidden.Pest,
	} {
		if size < 1 {
			errs = append(errs, fmt.Errorf("hidden.%s must be at least 1, got %d", name, size))
		}
	}

	return errors.Join(errs...)
}

func (i *ImageConfig) Validate() error {
	method, err := imageio.ParseResampler(i.Resampler)
	if err != nil {
		return fmt.Errorf("invalid resampler: %s (valid: none, nearest, bilinear, catmullrom, lanczos3)", i.Resampler)
	}
	if method != imageio.ResamplerNone && i.WorkingSize < 1 {
		return fmt.Errorf("working_size must be at least 1, got %d", i.WorkingSize)
	}
	if i.MaxPixels < 1 {
		return fmt.Errorf("max_pixels must be at least 1, got %d", i.MaxPixels)
	}
	return nil
}

func (h *HistoryConfig) Validate() error {
	if !h.Enabled {
		return nil
	}
	if h.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if h.FlushIntervalSec < 1 {
		return fmt.Errorf("flush_interval_sec must be at least 1")
	}
	if h.MaxRecords < 1 {
		return fmt.Errorf("max_records must be at least 1")
	}
	return nil
}

func (a *AuthConfig) Validate() error {
	if a.Enabled {
		if a.User == "" {
			return fmt.Errorf("user cannot be empty when auth is enabled")
		}
		if a.Password == "" {
			return fmt.Errorf("password cannot be empty when auth is enabled")
		}
	}
	return nil
}
