package factory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mikey/mail-insight/internal/adapters/cache"
	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/core"
	"github.com/mikey/mail-insight/internal/ports"
	"github.com/mikey/mail-insight/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig(values map[string]any) *config.Config {
	v := config.NewEmptyViper()
	for key, value := range values {
		v.Set(key, value)
	}
	return config.NewFromViper(v)
}

func TestCreateGeneratorRejectsUnknownProvider(t *testing.T) {
	f := NewLLMFactory(testConfig(map[string]any{"llm.provider": "carrier-pigeon"}), zaptest.NewLogger(t))

	_, err := f.CreateGenerator(context.Background(), "")
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestCreateGeneratorRequiresAPIKey(t *testing.T) {
	for _, provider := range []string{"gemini", "vertex", "openai"} {
		t.Run(provider, func(t *testing.T) {
			f := NewLLMFactory(testConfig(map[string]any{"llm.provider": provider}), zaptest.NewLogger(t))
			_, err := f.CreateGenerator(context.Background(), "")
			require.Error(t, err)
			assert.True(t, core.IsConfigError(err))
		})
	}
}

func TestCreateGeneratorUsesOverrideKey(t *testing.T) {
	f := NewLLMFactory(testConfig(map[string]any{"llm.provider": "openai"}), zaptest.NewLogger(t))

	gen, err := f.CreateGenerator(context.Background(), "sk-override")
	require.NoError(t, err)
	assert.NotNil(t, gen)
}

func TestCreateResponseCache(t *testing.T) {
	logger := zaptest.NewLogger(t)

	disabled, err := NewCacheFactory(testConfig(nil), logger).CreateResponseCache(context.Background())
	require.NoError(t, err)
	assert.Nil(t, disabled)

	f := NewCacheFactory(testConfig(map[string]any{"cache.enabled": true, "cache.type": "memory"}), logger)
	c, err := f.CreateResponseCache(context.Background())
	require.NoError(t, err)
	defer c.Stop()
	assert.IsType(t, &cache.MemoryCache{}, c)

	_, err = NewCacheFactory(testConfig(map[string]any{"cache.enabled": true, "cache.type": "floppy"}), logger).
		CreateResponseCache(context.Background())
	assert.True(t, core.IsConfigError(err))
}

func TestCreateMailSourceValidates(t *testing.T) {
	f := NewSourceFactory(testConfig(nil), zaptest.NewLogger(t))

	_, err := f.CreateMailSource("", "", "")
	require.Error(t, err)
	var cfgErr *core.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Len(t, cfgErr.Problems, 2)

	src, err := f.CreateMailSource("me@example.com", "app-password", "")
	require.NoError(t, err)
	assert.NotNil(t, src)
}

func TestCreateNotifiers(t *testing.T) {
	logger := zaptest.NewLogger(t)

	none, err := NewNotifierFactory(testConfig(nil), logger).CreateNotifiers()
	require.NoError(t, err)
	assert.Empty(t, none)

	both, err := NewNotifierFactory(testConfig(map[string]any{
		"notify.smtp.enabled": true,
		"notify.smtp.from":    "insight@example.com",
		"notify.smtp.to":      []string{"me@example.com"},
		"notify.amqp.enabled": true,
	}), logger).CreateNotifiers()
	require.NoError(t, err)
	require.Len(t, both, 2)
	assert.Equal(t, "smtp", both[0].Name())
	assert.Equal(t, "amqp", both[1].Name())

	_, err = NewNotifierFactory(testConfig(map[string]any{"notify.smtp.enabled": true}), logger).CreateNotifiers()
	assert.True(t, core.IsConfigError(err))
}

func newTestEngine(t *testing.T, values map[string]any) *Engine {
	cfg := testConfig(values)
	logger := zaptest.NewLogger(t)
	return NewEngine(
		cfg,
		NewLLMFactory(cfg, logger),
		NewSourceFactory(cfg, logger),
		nil,
		nil,
		utils.NewTextProcessor(logger),
		core.NopMetrics{},
		logger,
	)
}

func TestEngineRejectsInvalidOverridesBeforeConnecting(t *testing.T) {
	engine := newTestEngine(t, map[string]any{"mail.address": "me@example.com", "mail.password": "pw"})
	daysBack := 91

	_, err := engine.RunAnalysis(context.Background(), ports.AnalysisRequest{
		Settings: core.Overrides{DaysBack: &daysBack},
	})
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
	assert.Contains(t, err.Error(), "days_back")
}

func TestEngineRequiresCredentials(t *testing.T) {
	engine := newTestEngine(t, nil)

	_, err := engine.RunAnalysis(context.Background(), ports.AnalysisRequest{})
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
}

type slowGenerator struct{}

func (slowGenerator) Generate(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestTimeoutGeneratorSkipsModelOnOwnDeadline(t *testing.T) {
	gen := withTimeout(slowGenerator{}, 10*time.Millisecond)

	_, err := gen.Generate(context.Background(), "gemini-2.5-flash", "prompt")
	require.Error(t, err)
	assert.Equal(t, core.FailureSkipModel, core.ClassifyFailure(err))
}

func TestTimeoutGeneratorPropagatesCancellation(t *testing.T) {
	gen := withTimeout(slowGenerator{}, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.Generate(ctx, "gemini-2.5-flash", "prompt")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, core.FailureFatal, core.ClassifyFailure(err))
}

func TestWithTimeoutDisabled(t *testing.T) {
	var g core.Generator = slowGenerator{}
	assert.Equal(t, g, withTimeout(g, 0))
}
