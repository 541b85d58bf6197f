package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/mail-insight/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsMatchOriginalBehaviour(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	settings, err := cfg.Settings()
	require.NoError(t, err)
	require.NoError(t, settings.Validate())

	assert.Equal(t, []string{"gemini-2.5-flash", "gemini-2.5-flash-lite"}, settings.Models)
	assert.Equal(t, []string{"INBOX", "[Gmail]/Sent Mail", "[Gmail]/Spam", "[Gmail]/Promotions"}, settings.Folders)
	assert.Equal(t, 10, settings.DaysBack)
	assert.Equal(t, 10, settings.BatchSize)
	assert.Equal(t, 5, settings.MaxRetries)
	assert.Equal(t, 2*time.Second, settings.BaseDelay)
	assert.Equal(t, 3*time.Second, settings.BatchDelay)

	mail, err := cfg.GetMail()
	require.NoError(t, err)
	assert.Equal(t, "imap.gmail.com", mail.IMAPServer)
	assert.Equal(t, 993, mail.IMAPPort)

	llm, err := cfg.GetLLM()
	require.NoError(t, err)
	assert.Equal(t, "gemini", llm.Provider)
}

func TestConfigFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
analysis:
  batch_size: 4
  batch_delay: 0s
  folders: [INBOX]
cache:
  enabled: true
  type: redis
`), 0o600))

	t.Setenv("MAIL_INSIGHT_ANALYSIS_DAYS_BACK", "30")
	t.Setenv("MAIL_INSIGHT_GEMINI_API_KEY", "from-env")

	cfg, err := NewWithFile(path)
	require.NoError(t, err)

	settings, err := cfg.Settings()
	require.NoError(t, err)
	assert.Equal(t, 4, settings.BatchSize)
	assert.Equal(t, 30, settings.DaysBack)
	assert.Zero(t, settings.BatchDelay)
	assert.Equal(t, []string{"INBOX"}, settings.Folders)

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.True(t, cache.Enabled)
	assert.Equal(t, "redis", cache.Type)
	assert.Equal(t, 24*time.Hour, cache.TTL)

	assert.Equal(t, "from-env", cfg.GetGemini().APIKey)
}

func TestInvalidDurationIsConfigError(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())
	cfg.Set("analysis.batch_delay", "soon")

	_, err := cfg.Settings()
	assert.True(t, core.IsConfigError(err))
}

func TestMissingExplicitFileFails(t *testing.T) {
	_, err := NewWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
