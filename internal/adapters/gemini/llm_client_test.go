package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestStatusCode(t *testing.T) {
	unavailable, ok := apierror.FromError(status.Error(codes.Unavailable, "model is overloaded"))
	require.True(t, ok)
	denied, ok := apierror.FromError(status.Error(codes.PermissionDenied, "key revoked"))
	require.True(t, ok)

	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(unavailable))
	assert.Equal(t, http.StatusForbidden, StatusCode(fmt.Errorf("call: %w", denied)))
	assert.Equal(t, http.StatusNotFound, StatusCode(&googleapi.Error{Code: http.StatusNotFound}))
	assert.Zero(t, StatusCode(errors.New("dial tcp: timeout")))
}

func TestClassify(t *testing.T) {
	unavailable, _ := apierror.FromError(status.Error(codes.Unavailable, "overloaded"))
	err := classify("gemini-2.5-flash", unavailable)
	assert.True(t, core.IsUnavailable(err))

	var svcErr *core.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "gemini-2.5-flash", svcErr.Model)
	assert.Equal(t, provider, svcErr.Provider)

	assert.True(t, core.IsFatalError(classify("m", &googleapi.Error{Code: http.StatusUnauthorized})))
	assert.Equal(t, core.FailureSkipModel, core.ClassifyFailure(classify("m", errors.New("reset"))))
	assert.ErrorIs(t, classify("m", context.Canceled), context.Canceled)
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	_, err := NewFactory(config.GeminiConfig{}, zaptest.NewLogger(t)).CreateGenerator(context.Background())
	assert.True(t, core.IsConfigError(err))
}
