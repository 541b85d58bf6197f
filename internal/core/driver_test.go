package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	primary  = "gemini-2.5-flash"
	fallback = "gemini-2.5-flash-lite"
)

func testPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		Models:     []string{primary, fallback},
		MaxRetries: maxRetries,
		BaseDelay:  2 * time.Second,
	}
}

func TestDriveBackoffThenFallback(t *testing.T) {
	gen := newScriptedGenerator().
		on(primary, unavailable(primary)).
		on(fallback, reply{text: "[]"})
	sleeper := &recordingSleeper{}

	outcome := NewDriver(gen, sleeper.sleep, nil, zaptest.NewLogger(t)).Drive(context.Background(), "prompt", testPolicy(3))

	require.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.Equal(t, "[]", outcome.Text)
	assert.Equal(t, fallback, outcome.Model)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeper.delays)
	assert.Equal(t, []string{primary, primary, primary, fallback}, gen.models())
}

func TestDriveSuccessStopsImmediately(t *testing.T) {
	gen := newScriptedGenerator().
		on(primary, unavailable(primary), reply{text: "ok"})
	sleeper := &recordingSleeper{}

	outcome := NewDriver(gen, sleeper.sleep, nil, zaptest.NewLogger(t)).Drive(context.Background(), "prompt", testPolicy(5))

	require.Equal(t, OutcomeSuccess, outcome.Kind)
	assert.Equal(t, primary, outcome.Model)
	assert.Equal(t, []time.Duration{2 * time.Second}, sleeper.delays)
	assert.Equal(t, []string{primary, primary}, gen.models())
}

func TestDriveExhausted(t *testing.T) {
	gen := newScriptedGenerator().
		on(primary, unavailable(primary)).
		on(fallback, unavailable(fallback))
	sleeper := &recordingSleeper{}

	outcome := NewDriver(gen, sleeper.sleep, nil, zaptest.NewLogger(t)).Drive(context.Background(), "prompt", testPolicy(2))

	assert.Equal(t, OutcomeExhausted, outcome.Kind)
	assert.NoError(t, outcome.Err)
	assert.Empty(t, outcome.Text)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, sleeper.delays)
	assert.Equal(t, []string{primary, primary, fallback, fallback}, gen.models())
}

func TestDriveGenericFailureSkipsModel(t *testing.T) {
	for name, err := range map[string]error{
		"plain error":     errors.New("connection reset"),
		"unknown model":   &ServiceError{Provider: "test", StatusCode: 404},
		"quota exhausted": &ServiceError{Provider: "test", StatusCode: 429},
	} {
		t.Run(name, func(t *testing.T) {
			gen := newScriptedGenerator().
				on(primary, reply{err: err}).
				on(fallback, reply{text: "done"})
			sleeper := &recordingSleeper{}

			outcome := NewDriver(gen, sleeper.sleep, nil, zaptest.NewLogger(t)).Drive(context.Background(), "prompt", testPolicy(5))

			require.Equal(t, OutcomeSuccess, outcome.Kind)
			assert.Equal(t, fallback, outcome.Model)
			assert.Empty(t, sleeper.delays)
			assert.Equal(t, []string{primary, fallback}, gen.models())
		})
	}
}

func TestDriveFatalFailureAborts(t *testing.T) {
	for name, err := range map[string]error{
		"fatal":        &FatalError{Reason: "invalid api key"},
		"unauthorized": &ServiceError{Provider: "test", StatusCode: 401},
		"server error": &ServiceError{Provider: "test", StatusCode: 500},
	} {
		t.Run(name, func(t *testing.T) {
			gen := newScriptedGenerator().
				on(primary, reply{err: err}).
				on(fallback, reply{text: "never"})

			outcome := NewDriver(gen, (&recordingSleeper{}).sleep, nil, zaptest.NewLogger(t)).Drive(context.Background(), "prompt", testPolicy(5))

			require.Equal(t, OutcomeFatal, outcome.Kind)
			assert.ErrorIs(t, outcome.Err, err)
			assert.Equal(t, []string{primary}, gen.models())
		})
	}
}

func TestDriveCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen := newScriptedGenerator().on(primary, unavailable(primary))
	sleeper := func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	outcome := NewDriver(gen, sleeper, nil, zaptest.NewLogger(t)).Drive(ctx, "prompt", testPolicy(5))

	require.Equal(t, OutcomeFatal, outcome.Kind)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
	assert.Equal(t, []string{primary}, gen.models())
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))
}

func TestRetryPolicyBackoff(t *testing.T) {
	p := RetryPolicy{BaseDelay: 2 * time.Second}
	assert.Equal(t, 2*time.Second, p.Backoff(0))
	assert.Equal(t, 4*time.Second, p.Backoff(1))
	assert.Equal(t, 16*time.Second, p.Backoff(3))
}
