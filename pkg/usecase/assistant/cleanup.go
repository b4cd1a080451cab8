package assistant

import (
	"context"
	"time"

	"github.com/rapid-crm/jasper/pkg/model"
	"github.com/rapid-crm/jasper/pkg/utils/logging"
)

// CleanupResult reports what one retention sweep removed.
type CleanupResult struct {
	Messages int64 `json:"messages"`
	Contexts int64 `json:"contexts"`
}

// Cleanup deletes messages and contexts older than the retention window of
// the active persona (or the default window when none is active).
func (uc *UseCase) Cleanup(ctx context.Context) (*CleanupResult, error) {
	retention := model.DefaultRetentionDays
	if uc.personas != nil {
		if p, err := uc.personas.Active(ctx); err == nil {
			retention = p.RetentionDays()
		}
	}
	cutoff := time.Now().AddDate(0, 0, -retention)

	messages, err := uc.repo.DeleteMessagesBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	contexts, err := uc.repo.DeleteContextsBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("retention cleanup finished",
		"messages", messages, "contexts", contexts, "cutoff", cutoff)
	return &CleanupResult{Messages: messages, Contexts: contexts}, nil
}

// CleanupLoop runs retention sweeps on a fixed interval until stopped.
type CleanupLoop struct {
	stop chan struct{}
	done chan struct{}
}

// StartCleanupLoop launches a background sweep every interval. Errors are
// logged and the loop keeps running; read-time filtering already hides
// expired rows, so a failed sweep only delays reclamation.
func (uc *UseCase) StartCleanupLoop(ctx context.Context, interval time.Duration) *CleanupLoop {
	if interval <= 0 {
		interval = time.Hour
	}
	loop := &CleanupLoop{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(loop.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := uc.Cleanup(ctx); err != nil {
					logging.From(ctx).Error("retention cleanup failed", "error", err)
				}
			case <-loop.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return loop
}

// Stop halts the loop and waits for the in-flight sweep to finish.
func (l *CleanupLoop) Stop() {
	close(l.stop)
	<-l.done
}
