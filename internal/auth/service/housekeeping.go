package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/metrics"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
)

// DefaultRetention keeps expired refresh tokens around for a while so audit
// queries can still find them.
const DefaultRetention = 30 * 24 * time.Hour

// HousekeepingService periodically deletes refresh token rows that expired
// more than Retention ago. Only already-dead rows are touched, so reaping
// never changes the outcome of a consume or revoke.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Interval  time.Duration
	Retention time.Duration
	Now       func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a reaper running every interval.
// A non-positive retention falls back to DefaultRetention.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = DefaultRetention
	}

	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started",
		slog.Duration("interval", s.Interval),
		slog.Duration("retention", s.Retention),
	)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	// First pass runs immediately
	_, _ = s.Cleanup(ctx)

	for {
		select {
		case <-ticker.C:
			_, _ = s.Cleanup(ctx)
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one reaping pass and returns the number of rows removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) (int64, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	cutoff := now.Add(-s.Retention)

	n, err := s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to delete expired refresh tokens", slog.Any("err", err))
		return 0, err
	}

	s.Metrics.ObserveReaped(n)
	s.Logger.Info("housekeeping cleanup completed",
		slog.Int64("refresh_tokens_deleted", n),
		slog.Time("cutoff", cutoff),
	)
	return n, nil
}
