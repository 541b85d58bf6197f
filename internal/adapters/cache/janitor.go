package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// janitor runs a cache's Cleanup on a fixed schedule until stopped
type janitor struct {
	stopCh chan struct{}
	done   chan struct{}
	once   sync.Once
}

// startJanitor starts the background cleanup task. A non-positive frequency disables it.
func startJanitor(freq time.Duration, cleanup func(context.Context) error, logger *zap.Logger) *janitor {
	j := &janitor{
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	if freq <= 0 {
		close(j.done)
		return j
	}

	go func() {
		defer close(j.done)
		ticker := time.NewTicker(freq)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := cleanup(context.Background()); err != nil {
					logger.Error("Failed to clean up cache", zap.Error(err))
				}
			case <-j.stopCh:
				return
			}
		}
	}()
	return j
}

// stop ends the cleanup task and waits for it to exit
func (j *janitor) stop() {
	j.once.Do(func() { close(j.stopCh) })
	<-j.done
}
