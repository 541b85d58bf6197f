package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const notifyTimeout = 30 * time.Second

// Batch statuses reported to metrics
const (
	BatchSucceeded = "succeeded"
	BatchExhausted = "exhausted"
	BatchMalformed = "malformed"
	BatchFatal     = "fatal"
)

// Result is the aggregate produced by one analysis run
type Result struct {
	RunID            string      `json:"run_id"`
	Collections      Collections `json:"results"`
	Summary          Summary     `json:"summary"`
	EmailsFetched    int         `json:"emails_fetched"`
	BatchesTotal     int         `json:"batches_total"`
	BatchesSucceeded int         `json:"batches_succeeded"`
	BatchesFailed    int         `json:"batches_failed"`
	Partial          bool        `json:"partial"`
	StartedAt        time.Time   `json:"started_at"`
	FinishedAt       time.Time   `json:"finished_at"`
}

func newResult(runID string, started time.Time) *Result {
	cols := NewCollections()
	return &Result{
		RunID:       runID,
		Collections: cols,
		Summary:     cols.Summary(),
		StartedAt:   started,
	}
}

// AnalysisService fetches emails, drives them through the model in batches and categorizes the replies
type AnalysisService struct {
	source    MailSource
	driver    *Driver
	decoder   *Decoder
	processor BodyProcessor
	cache     ResponseCache
	cacheTTL  time.Duration
	notifiers []Notifier
	metrics   Metrics
	sleep     Sleeper
	logger    *zap.Logger
}

// NewAnalysisService creates a new analysis service. cache may be nil to disable response caching.
func NewAnalysisService(
	source MailSource,
	generator Generator,
	cache ResponseCache,
	cacheTTL time.Duration,
	processor BodyProcessor,
	notifiers []Notifier,
	metrics Metrics,
	sleep Sleeper,
	logger *zap.Logger,
) *AnalysisService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if sleep == nil {
		sleep = SleepContext
	}
	return &AnalysisService{
		source:    source,
		driver:    NewDriver(generator, sleep, metrics, logger),
		decoder:   NewDecoder(logger),
		processor: processor,
		cache:     cache,
		cacheTTL:  cacheTTL,
		notifiers: notifiers,
		metrics:   metrics,
		sleep:     sleep,
		logger:    logger,
	}
}

// RunFullAnalysis executes one run: fetch, partition, then render, generate, decode,
// categorize and merge every batch in order.
//
// Invalid settings fail before any network activity with a *ConfigError. A fetch failure
// returns a *SourceError and no result. A fatal generation error or cancellation returns
// the aggregate of the batches merged so far, marked Partial, together with the error.
func (s *AnalysisService) RunFullAnalysis(ctx context.Context, settings Settings) (*Result, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))
	result := newResult(runID, time.Now())

	logger.Info("Starting analysis run",
		zap.Strings("folders", settings.Folders),
		zap.Int("days_back", settings.DaysBack),
		zap.Int("batch_size", settings.BatchSize),
		zap.Strings("models", settings.Models))

	emails, err := s.source.Fetch(ctx, settings.Folders, settings.DaysBack)
	if err != nil {
		s.metrics.RecordRun("source_error", time.Since(result.StartedAt))
		if !IsSourceError(err) {
			err = &SourceError{Err: err}
		}
		logger.Error("Failed to fetch emails", zap.Error(err))
		return nil, err
	}

	result.EmailsFetched = len(emails)
	if len(emails) == 0 {
		logger.Info("No emails found, nothing to analyze")
		s.finish(ctx, logger, result, "empty")
		return result, nil
	}

	batches := Partition(emails, settings.BatchSize)
	result.BatchesTotal = len(batches)
	logger.Info("Fetched emails",
		zap.Int("emails", len(emails)),
		zap.Int("batches", len(batches)))

	renderer := NewPromptRenderer(s.processor, "", settings.MaxBodySize)
	policy := RetryPolicy{
		Models:     settings.Models,
		MaxRetries: settings.MaxRetries,
		BaseDelay:  settings.BaseDelay,
	}

	for i, batch := range batches {
		if i > 0 && settings.BatchDelay > 0 {
			if err := s.sleep(ctx, settings.BatchDelay); err != nil {
				return s.abort(ctx, logger, result, err)
			}
		}

		batchLogger := logger.With(
			zap.Int("batch", i+1),
			zap.Int("batches", len(batches)),
			zap.Int("batch_emails", len(batch)))

		cols, status, err := s.processBatch(ctx, batchLogger, renderer.Render(batch), policy, len(batch))
		s.metrics.RecordBatch(status)
		if err != nil {
			result.BatchesFailed++
			return s.abort(ctx, logger, result, err)
		}
		if status != BatchSucceeded {
			result.BatchesFailed++
			continue
		}

		result.Collections.Merge(cols)
		result.BatchesSucceeded++
	}

	s.finish(ctx, logger, result, "completed")
	return result, nil
}

// processBatch turns one rendered prompt into categorized collections
func (s *AnalysisService) processBatch(
	ctx context.Context,
	logger *zap.Logger,
	prompt string,
	policy RetryPolicy,
	expected int,
) (Collections, string, error) {
	key := CacheKey(policy.Models, prompt)

	text, cached := s.lookup(ctx, logger, key)
	if !cached {
		outcome := s.driver.Drive(ctx, prompt, policy)
		switch outcome.Kind {
		case OutcomeFatal:
			return nil, BatchFatal, outcome.Err
		case OutcomeExhausted:
			logger.Warn("Skipping batch, no model produced a response")
			return nil, BatchExhausted, nil
		}
		text = outcome.Text
		s.store(ctx, logger, key, outcome)
	}

	records, err := s.decoder.Decode(text)
	if err != nil {
		s.metrics.RecordDecodeFailure()
		logger.Warn("Skipping batch, response could not be decoded", zap.Error(err))
		if cached {
			s.evict(ctx, logger, key)
		}
		return nil, BatchMalformed, nil
	}
	if len(records) != expected {
		logger.Warn("Record count does not match batch size",
			zap.Int("records", len(records)),
			zap.Int("expected", expected))
	}

	cols := Categorize(records)
	logger.Info("Batch categorized",
		zap.Int("records", len(records)),
		zap.Bool("cached", cached),
		zap.Int("filed", cols.Summary().Total()))
	return cols, BatchSucceeded, nil
}

func (s *AnalysisService) lookup(ctx context.Context, logger *zap.Logger, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			logger.Warn("Failed to read response cache", zap.Error(err))
		}
		return "", false
	}
	logger.Debug("Response cache hit", zap.String("model", entry.Model))
	return entry.Response, true
}

func (s *AnalysisService) store(ctx context.Context, logger *zap.Logger, key string, outcome Outcome) {
	if s.cache == nil {
		return
	}
	now := time.Now()
	entry := &CacheEntry{
		Key:       key,
		Response:  outcome.Text,
		Model:     outcome.Model,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cacheTTL),
	}
	if err := s.cache.Set(ctx, entry); err != nil {
		logger.Error("Failed to update response cache", zap.Error(err))
	}
}

func (s *AnalysisService) evict(ctx context.Context, logger *zap.Logger, key string) {
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Warn("Failed to evict cached response", zap.Error(err))
	}
}

// abort marks the result partial, runs the notifiers and returns the merged batches with err
func (s *AnalysisService) abort(ctx context.Context, logger *zap.Logger, result *Result, err error) (*Result, error) {
	result.Partial = true
	logger.Error("Analysis run aborted, returning partial results",
		zap.Int("batches_succeeded", result.BatchesSucceeded),
		zap.Int("batches_total", result.BatchesTotal),
		zap.Error(err))
	s.finish(ctx, logger, result, "partial")
	return result, fmt.Errorf("analysis aborted after %d of %d batches: %w", result.BatchesSucceeded+result.BatchesFailed, result.BatchesTotal, err)
}

func (s *AnalysisService) finish(ctx context.Context, logger *zap.Logger, result *Result, status string) {
	result.Summary = result.Collections.Summary()
	result.FinishedAt = time.Now()

	for category, n := range result.Summary {
		if n > 0 {
			s.metrics.RecordCategorized(category, n)
		}
	}
	s.metrics.RecordRun(status, result.FinishedAt.Sub(result.StartedAt))

	fields := []zap.Field{
		zap.String("status", status),
		zap.Int("emails", result.EmailsFetched),
		zap.Int("batches_succeeded", result.BatchesSucceeded),
		zap.Int("batches_failed", result.BatchesFailed),
		zap.Duration("duration", result.FinishedAt.Sub(result.StartedAt)),
	}
	for _, c := range Categories() {
		fields = append(fields, zap.Int(strings.ToLower(c.String()), result.Summary[c]))
	}
	logger.Info("Analysis run finished", fields...)

	s.notify(ctx, logger, result)
}

// notify delivers the result to every notifier; a cancelled run still gets delivered
func (s *AnalysisService) notify(ctx context.Context, logger *zap.Logger, result *Result) {
	if len(s.notifiers) == 0 {
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	for _, n := range s.notifiers {
		if err := n.Notify(notifyCtx, result); err != nil {
			logger.Error("Failed to deliver analysis result",
				zap.String("notifier", n.Name()),
				zap.Error(err))
			continue
		}
		logger.Debug("Delivered analysis result", zap.String("notifier", n.Name()))
	}
}

// CacheKey fingerprints a prompt together with the candidate models that may answer it
func CacheKey(models []string, prompt string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(models, ",")))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}
