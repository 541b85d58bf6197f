package core

import (
	"fmt"
	"time"
)

// Bounds accepted for caller supplied run settings
const (
	MinDaysBack   = 1
	MaxDaysBack   = 90
	MinBatchSize  = 1
	MaxBatchSize  = 50
	MinMaxRetries = 1
	MaxMaxRetries = 10
)

// Settings is the immutable configuration of one analysis run
type Settings struct {
	Models      []string
	Folders     []string
	DaysBack    int
	BatchSize   int
	MaxRetries  int
	BaseDelay   time.Duration
	BatchDelay  time.Duration
	MaxBodySize int
}

// Overrides holds optional per-run replacements; nil and empty values keep the base setting
type Overrides struct {
	Models     []string
	Folders    []string
	DaysBack   *int
	BatchSize  *int
	MaxRetries *int
	BatchDelay *time.Duration
}

// With returns a copy of s with the overrides applied
func (s Settings) With(o Overrides) Settings {
	out := s
	out.Models = append([]string(nil), s.Models...)
	out.Folders = append([]string(nil), s.Folders...)

	if len(o.Models) > 0 {
		out.Models = append([]string(nil), o.Models...)
	}
	if len(o.Folders) > 0 {
		out.Folders = append([]string(nil), o.Folders...)
	}
	if o.DaysBack != nil {
		out.DaysBack = *o.DaysBack
	}
	if o.BatchSize != nil {
		out.BatchSize = *o.BatchSize
	}
	if o.MaxRetries != nil {
		out.MaxRetries = *o.MaxRetries
	}
	if o.BatchDelay != nil {
		out.BatchDelay = *o.BatchDelay
	}
	return out
}

// Validate checks the settings against the accepted bounds
func (s Settings) Validate() error {
	var problems []string

	if len(s.Models) == 0 {
		problems = append(problems, "at least one model is required")
	}
	for i, m := range s.Models {
		if m == "" {
			problems = append(problems, fmt.Sprintf("model %d is empty", i+1))
		}
	}
	if len(s.Folders) == 0 {
		problems = append(problems, "at least one folder is required")
	}
	if s.DaysBack < MinDaysBack || s.DaysBack > MaxDaysBack {
		problems = append(problems, fmt.Sprintf("days_back must be between %d and %d, got %d", MinDaysBack, MaxDaysBack, s.DaysBack))
	}
	if s.BatchSize < MinBatchSize || s.BatchSize > MaxBatchSize {
		problems = append(problems, fmt.Sprintf("batch_size must be between %d and %d, got %d", MinBatchSize, MaxBatchSize, s.BatchSize))
	}
	if s.MaxRetries < MinMaxRetries || s.MaxRetries > MaxMaxRetries {
		problems = append(problems, fmt.Sprintf("max_retries must be between %d and %d, got %d", MinMaxRetries, MaxMaxRetries, s.MaxRetries))
	}
	if s.BaseDelay < 0 {
		problems = append(problems, "base_delay must not be negative")
	}
	if s.BatchDelay < 0 {
		problems = append(problems, "batch_delay must not be negative")
	}
	if s.MaxBodySize < 0 {
		problems = append(problems, "max_body_size must not be negative")
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}
