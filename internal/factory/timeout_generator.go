package factory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/mail-insight/internal/core"
)

// timeoutGenerator bounds every generation call. A call that hits its own deadline
// is reported as a plain failure so the driver moves on to the next model, while
// cancellation of the run itself still propagates.
type timeoutGenerator struct {
	next    core.Generator
	timeout time.Duration
}

func withTimeout(next core.Generator, timeout time.Duration) core.Generator {
	if timeout <= 0 {
		return next
	}
	return &timeoutGenerator{next: next, timeout: timeout}
}

func (g *timeoutGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.next.Generate(callCtx, model, prompt)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("model %s timed out after %s", model, g.timeout)
	}
	return text, err
}
