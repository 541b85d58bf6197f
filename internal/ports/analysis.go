package ports

import (
	"context"

	"github.com/mikey/mail-insight/internal/core"
)

// AnalysisRequest carries the per-run overrides a caller may supply.
// Empty credential fields keep the configured values.
type AnalysisRequest struct {
	EmailAddress  string
	EmailPassword string
	IMAPServer    string
	APIKey        string
	Settings      core.Overrides
}

// AnalysisRunner executes complete analysis runs
type AnalysisRunner interface {
	// RunAnalysis builds the run's collaborators from configuration and request, then runs the pipeline
	RunAnalysis(ctx context.Context, req AnalysisRequest) (*core.Result, error)
}
