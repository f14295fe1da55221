package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/khatrisoftware/alankar-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const DefaultNewArrivalSpec = "0 3 * * *"

// NewArrivalExpirer clears the new-arrival flag on products older than a window.
type NewArrivalExpirer interface {
	ExpireNewArrivals(ctx context.Context, olderThan time.Duration) (int64, error)
}

// NewArrivalScheduler periodically expires the new-arrival flag.
type NewArrivalScheduler struct {
	cron    *cron.Cron
	expirer NewArrivalExpirer
	spec    string
	window  time.Duration
}

func NewNewArrivalScheduler(expirer NewArrivalExpirer, spec string, days int) *NewArrivalScheduler {
	if spec == "" {
		spec = DefaultNewArrivalSpec
	}
	return &NewArrivalScheduler{
		cron:    cron.New(),
		expirer: expirer,
		spec:    spec,
		window:  time.Duration(days) * 24 * time.Hour,
	}
}

// RunOnce performs a single expiry pass.
func (s *NewArrivalScheduler) RunOnce(ctx context.Context) (int64, error) {
	logger.Info("Starting scheduled new-arrival expiry", map[string]interface{}{
		"window": s.window.String(),
	})

	cleared, err := s.expirer.ExpireNewArrivals(ctx, s.window)
	if err != nil {
		logger.Error("Failed to expire new arrivals from scheduler", err)
		return 0, err
	}

	logger.Info("New-arrival expiry finished", map[string]interface{}{
		"cleared": cleared,
	})
	return cleared, nil
}

func (s *NewArrivalScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_, _ = s.RunOnce(ctx)
	})
	if err != nil {
		logger.Error("Failed to add cron job for new-arrival expiry", err, map[string]interface{}{
			"spec": s.spec,
		})
		return fmt.Errorf("invalid new-arrival schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	logger.Info("New-arrival scheduler started", map[string]interface{}{
		"spec":   s.spec,
		"window": s.window.String(),
	})
	return nil
}

// Stop waits for a running job to finish.
func (s *NewArrivalScheduler) Stop() {
	logger.Info("Stopping new-arrival scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("New-arrival scheduler stopped", nil)
}
