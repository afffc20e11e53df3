package sync

import (
	"context"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"
)

// SweeperConfig holds configuration for the background reconciliation task.
type SweeperConfig struct {
	// PollInterval is how often to look for unsynced records.
	PollInterval time.Duration

	// BatchSize is the max number of records retried per cycle.
	BatchSize int
}

func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
	}
}

// Sweeper periodically re-attempts the spreadsheet append for records whose
// sync flag is still false. It is the recovery path for the create
// workflow's no-rollback behavior: a record that outlived a failed append
// gets another chance here.
type Sweeper struct {
	orch   *Orchestrator
	config SweeperConfig

	mu      stdsync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSweeper(orch *Orchestrator, config SweeperConfig) *Sweeper {
	return &Sweeper{orch: orch, config: config}
}

// Start begins the sweep loop. Returns an error if already running.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("sweeper is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)

	slog.InfoContext(ctx, "Sync sweeper started",
		"poll_interval", s.config.PollInterval,
		"batch_size", s.config.BatchSize)
	return nil
}

// Stop gracefully stops the sweeper and waits for the loop to exit.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	// Flip the flag before closing so a concurrent Stop cannot close twice.
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)

	select {
	case <-s.doneCh:
		slog.InfoContext(ctx, "Sync sweeper stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync sweeper stop timed out")
		return ctx.Err()
	}
	return nil
}

// IsRunning reports whether the sweep loop is active.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Sweeper) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.orch.ResyncPending(ctx, s.config.BatchSize); n > 0 {
				slog.InfoContext(ctx, "Reconciled unsynced expenses", "count", n)
			}
		}
	}
}
