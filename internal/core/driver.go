package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// OutcomeKind tags the result of driving one prompt through the candidate models
type OutcomeKind int

const (
	// OutcomeSuccess carries the generated text
	OutcomeSuccess OutcomeKind = iota
	// OutcomeExhausted means every candidate model failed without a fatal error
	OutcomeExhausted
	// OutcomeFatal carries a non-retryable error that aborts the run
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of Driver.Drive
type Outcome struct {
	Kind  OutcomeKind
	Text  string
	Model string
	Err   error
}

// Sleeper pauses for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryPolicy bounds the attempts made against each candidate model
type RetryPolicy struct {
	Models     []string
	MaxRetries int
	BaseDelay  time.Duration
}

// Backoff returns the pause after the given zero based attempt
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(1<<attempt)
}

// Driver runs a prompt against an ordered list of candidate models with per model retry
type Driver struct {
	generator Generator
	sleep     Sleeper
	metrics   Metrics
	logger    *zap.Logger
}

// NewDriver creates a new generation driver. A nil sleeper selects SleepContext and nil metrics discard.
func NewDriver(generator Generator, sleep Sleeper, metrics Metrics, logger *zap.Logger) *Driver {
	if sleep == nil {
		sleep = SleepContext
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Driver{
		generator: generator,
		sleep:     sleep,
		metrics:   metrics,
		logger:    logger,
	}
}

// Drive generates text for prompt, trying each model in order.
// Transient overloads back off exponentially and retry; other failures abandon the model
// unless they are fatal, which ends the drive immediately.
func (d *Driver) Drive(ctx context.Context, prompt string, policy RetryPolicy) Outcome {
	for _, model := range policy.Models {
		d.logger.Debug("Trying model", zap.String("model", model))

	attempts:
		for attempt := 0; attempt < policy.MaxRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				return Outcome{Kind: OutcomeFatal, Model: model, Err: err}
			}

			start := time.Now()
			text, err := d.generator.Generate(ctx, model, prompt)
			elapsed := time.Since(start)

			if err == nil {
				d.metrics.RecordGeneration(model, OutcomeSuccess.String(), elapsed)
				d.logger.Info("Generation succeeded",
					zap.String("model", model),
					zap.Int("attempt", attempt+1),
					zap.Duration("latency", elapsed))
				return Outcome{Kind: OutcomeSuccess, Text: text, Model: model}
			}

			kind := ClassifyFailure(err)
			d.metrics.RecordGeneration(model, kind.String(), elapsed)

			switch kind {
			case FailureFatal:
				d.logger.Error("Generation failed with non-retryable error",
					zap.String("model", model),
					zap.Int("attempt", attempt+1),
					zap.Error(err))
				return Outcome{Kind: OutcomeFatal, Model: model, Err: err}

			case FailureTransient:
				if attempt == policy.MaxRetries-1 {
					d.logger.Warn("Model unavailable after all attempts",
						zap.String("model", model),
						zap.Int("attempts", policy.MaxRetries))
					break attempts
				}

				delay := policy.Backoff(attempt)
				d.logger.Warn("Model overloaded, backing off",
					zap.String("model", model),
					zap.Int("attempt", attempt+1),
					zap.Int("max_retries", policy.MaxRetries),
					zap.Duration("delay", delay))
				d.metrics.RecordBackoff(model, delay)

				if err := d.sleep(ctx, delay); err != nil {
					return Outcome{Kind: OutcomeFatal, Model: model, Err: err}
				}

			default:
				d.logger.Warn("Generation failed, trying next model",
					zap.String("model", model),
					zap.Int("attempt", attempt+1),
					zap.Error(err))
				break attempts
			}
		}
	}

	d.logger.Warn("All candidate models exhausted", zap.Strings("models", policy.Models))
	return Outcome{Kind: OutcomeExhausted}
}
