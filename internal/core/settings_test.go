package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsValidate(t *testing.T) {
	require.NoError(t, testSettings().Validate())

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"no models", func(s *Settings) { s.Models = nil }},
		{"empty model", func(s *Settings) { s.Models = []string{""} }},
		{"no folders", func(s *Settings) { s.Folders = nil }},
		{"days back too small", func(s *Settings) { s.DaysBack = 0 }},
		{"days back too large", func(s *Settings) { s.DaysBack = 91 }},
		{"batch size too large", func(s *Settings) { s.BatchSize = 51 }},
		{"max retries zero", func(s *Settings) { s.MaxRetries = 0 }},
		{"max retries too large", func(s *Settings) { s.MaxRetries = 11 }},
		{"negative batch delay", func(s *Settings) { s.BatchDelay = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings()
			tt.mutate(&s)

			err := s.Validate()
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Len(t, cfgErr.Problems, 1)
		})
	}
}

func TestSettingsWith(t *testing.T) {
	base := testSettings()
	days, retries := 3, 7
	delay := time.Duration(0)

	out := base.With(Overrides{
		Folders:    []string{"[Gmail]/Spam"},
		DaysBack:   &days,
		MaxRetries: &retries,
		BatchDelay: &delay,
	})

	assert.Equal(t, []string{"[Gmail]/Spam"}, out.Folders)
	assert.Equal(t, 3, out.DaysBack)
	assert.Equal(t, 7, out.MaxRetries)
	assert.Zero(t, out.BatchDelay)
	assert.Equal(t, base.Models, out.Models)
	assert.Equal(t, base.BatchSize, out.BatchSize)

	// the base value is untouched
	out.Models[0] = "changed"
	assert.Equal(t, primary, base.Models[0])
	assert.Equal(t, []string{"INBOX"}, base.Folders)
}

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		err  error
		want FailureKind
	}{
		{&ServiceError{StatusCode: http.StatusServiceUnavailable}, FailureTransient},
		{&ServiceError{StatusCode: http.StatusInternalServerError}, FailureFatal},
		{&ServiceError{StatusCode: http.StatusUnauthorized}, FailureFatal},
		{&ServiceError{StatusCode: http.StatusForbidden}, FailureFatal},
		{&ServiceError{StatusCode: http.StatusNotFound}, FailureSkipModel},
		{&ServiceError{StatusCode: http.StatusTooManyRequests}, FailureSkipModel},
		{&FatalError{Reason: "bad key"}, FailureFatal},
		{errors.New("boom"), FailureSkipModel},
		{fmt.Errorf("generate: %w", context.Canceled), FailureFatal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyFailure(tt.err), tt.err.Error())
	}
}

func TestErrorHelpersSeeThroughWrapping(t *testing.T) {
	svc := &ServiceError{Provider: "gemini", Model: "m", StatusCode: 503, Err: errors.New("overloaded")}
	wrapped := errors.Join(errors.New("batch 2"), svc)

	assert.True(t, IsServiceError(wrapped))
	assert.True(t, IsUnavailable(wrapped))
	assert.False(t, IsFatalError(wrapped))
	assert.Contains(t, svc.Error(), "status 503")

	src := &SourceError{Server: "imap.example.com:993", Err: errors.New("refused")}
	assert.True(t, IsSourceError(src))
	assert.Equal(t, "mail source imap.example.com:993: refused", src.Error())

	cfg := &ConfigError{Problems: []string{"a", "b"}}
	assert.Equal(t, "configuration error: a; b", cfg.Error())
}
