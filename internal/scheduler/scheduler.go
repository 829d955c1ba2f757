package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/kdubois/netatmo-weather/internal/weather"
)

// Scheduler periodically walks the device inventory so the repository
// caches stay warm between caller requests. The core stays request-driven;
// this job only front-loads the same fetches a caller would trigger.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	interval  time.Duration
	log       *zap.Logger
}

// New creates a new Scheduler.
func New(interval time.Duration, service *weather.Service, log *zap.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// A non-positive interval disables the job entirely.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.log.Info("scheduler: cache warming disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		devices, err := s.service.AvailableDevices(ctx)
		if err != nil {
			s.log.Warn("scheduler: device inventory refresh failed", zap.Error(err))
			return
		}

		if _, err := s.service.CurrentWeather(ctx); err != nil {
			s.log.Warn("scheduler: current weather refresh failed", zap.Error(err))
		}

		s.log.Info("scheduler: refreshed station caches", zap.Int("devices", len(devices)))
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
