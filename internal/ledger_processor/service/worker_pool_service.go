package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
)

// drainWithoutDeadline bounds Drain when the caller's context has no deadline.
const drainWithoutDeadline = 30 * time.Second

// WorkerPoolFundingService bounds how many funding events are applied at once.
type WorkerPoolFundingService struct {
	base   FundingProcessor
	pool   *ants.Pool
	logger *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolFundingService(base FundingProcessor, cfg WorkerPoolConfig, logger *slog.Logger) (*WorkerPoolFundingService, error) {
	pool, err := ants.NewPool(cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return &WorkerPoolFundingService{
		base:   base,
		pool:   pool,
		logger: logger,
	}, nil
}

// ProcessFundingEvent runs the base processor on a pooled worker and waits for its answer.
// A started event is not cancelled with ctx: its unit of work runs to commit or rollback,
// and Drain waits for it. The caller stops waiting once ctx is done.
func (s *WorkerPoolFundingService) ProcessFundingEvent(ctx context.Context, rawEvent []byte) (bool, error) {
	type result struct {
		applied bool
		err     error
	}
	done := make(chan result, 1)

	if err := s.pool.Submit(func() {
		applied, err := s.base.ProcessFundingEvent(context.WithoutCancel(ctx), rawEvent)
		done <- result{applied: applied, err: err}
	}); err != nil {
		s.logger.Error("Failed to submit funding event to worker pool", "error", err)
		return false, fmt.Errorf("failed to submit funding event: %w", err)
	}

	select {
	case r := <-done:
		return r.applied, r.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Drain stops accepting events and waits for running ones until ctx expires.
func (s *WorkerPoolFundingService) Drain(ctx context.Context) error {
	timeout := drainWithoutDeadline
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	s.logger.Info("Draining worker pool", "running_workers", s.pool.Running(), "timeout", timeout.String())

	if err := s.pool.ReleaseTimeout(timeout); err != nil {
		return fmt.Errorf("worker pool did not drain, %d events still running: %w", s.pool.Running(), err)
	}
	return nil
}

func (s *WorkerPoolFundingService) Running() int {
	return s.pool.Running()
}

func (s *WorkerPoolFundingService) Capacity() int {
	return s.pool.Cap()
}
