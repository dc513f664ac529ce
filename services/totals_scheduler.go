package services

import (
	"context"
	"sync"
	"time"

	"prestamos/utils"
)

// TotalsSource recomputes the per-collection document counts
type TotalsSource interface {
	RefreshTotals(ctx context.Context) (map[string]int, error)
}

// TotalsScheduler refreshes the dashboard totals and the entity gauges on a ticker
type TotalsScheduler struct {
	source   TotalsSource
	interval time.Duration
	metrics  *utils.Metrics

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTotalsScheduler creates a new TotalsScheduler
func NewTotalsScheduler(source TotalsSource, interval time.Duration) *TotalsScheduler {
	return &TotalsScheduler{
		source:   source,
		interval: interval,
		metrics:  utils.GetMetrics(),
	}
}

// Start refreshes once and then every interval until ctx ends or Stop is called
func (s *TotalsScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.run(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.run(ctx)
			}
		}
	}()
	utils.LogInfo("totals scheduler started, interval %s", s.interval)
}

// Stop halts the scheduler and waits for the running refresh to finish
func (s *TotalsScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// RunOnce refreshes the totals and publishes them as gauges
func (s *TotalsScheduler) RunOnce(ctx context.Context) (totals map[string]int, err error) {
	start := time.Now()
	defer func() { utils.LogOperation("totals.refresh", start, err) }()

	totals, err = s.source.RefreshTotals(ctx)
	for collection, total := range totals {
		s.metrics.SetTotal(collection, total)
	}
	return totals, err
}

func (s *TotalsScheduler) run(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
		utils.LogError("error refreshing totals: %v", err)
	}
}
