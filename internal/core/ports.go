package core

import (
	"context"
	"time"
)

// MailSource fetches the emails to analyze
type MailSource interface {
	// Fetch returns the emails received in the last daysBack days across folders, in folder order.
	// Unparsable messages are omitted rather than reported.
	Fetch(ctx context.Context, folders []string, daysBack int) ([]RawEmail, error)
}

// Generator produces text from a prompt using a named model
type Generator interface {
	// Generate returns the raw model output; status bearing failures are reported as *ServiceError
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// CacheEntry is a cached generation response
type CacheEntry struct {
	Key       string
	Response  string
	Model     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ResponseCache stores raw generation responses keyed by prompt fingerprint
type ResponseCache interface {
	// Get retrieves a live entry, returning ErrCacheMiss when none exists
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// Notifier delivers the result of a finished run
type Notifier interface {
	Name() string
	Notify(ctx context.Context, result *Result) error
}

// Metrics records pipeline measurements
type Metrics interface {
	RecordGeneration(model, outcome string, duration time.Duration)
	RecordBackoff(model string, delay time.Duration)
	RecordDecodeFailure()
	RecordCategorized(category Category, count int)
	RecordBatch(status string)
	RecordRun(status string, duration time.Duration)
}

// NopMetrics discards all measurements
type NopMetrics struct{}

func (NopMetrics) RecordGeneration(string, string, time.Duration) {}
func (NopMetrics) RecordBackoff(string, time.Duration)            {}
func (NopMetrics) RecordDecodeFailure()                           {}
func (NopMetrics) RecordCategorized(Category, int)                {}
func (NopMetrics) RecordBatch(string)                             {}
func (NopMetrics) RecordRun(string, time.Duration)                {}
