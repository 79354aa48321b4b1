// Package scheduler periodically scans vehicles for checks that are due and
// publishes a notification for each.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/carlog/internal/config"
	"github.com/ukydev/carlog/internal/db"
	"github.com/ukydev/carlog/internal/notify"
	"github.com/ukydev/carlog/internal/schedule"
)

// Scheduler runs the due-check scan on a cron spec.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	windowDays int
	vehicles   db.VehicleCollection
	engine     *schedule.Engine
	publisher  notify.Publisher
	logger     log.FieldLogger
	timeout    time.Duration
}

func New(cfg config.SchedulerConfig, vehicles db.VehicleCollection, engine *schedule.Engine, publisher notify.Publisher, logger log.FieldLogger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.Local)),
		spec:       cfg.Spec,
		windowDays: cfg.WindowDays,
		vehicles:   vehicles,
		engine:     engine,
		publisher:  publisher,
		logger:     logger,
		timeout:    5 * time.Minute,
	}
}

// Start registers the scan and starts the cron runner in the background.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return fmt.Errorf("add due-check scan %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.WithFields(log.Fields{"spec": s.spec, "window_days": s.windowDays}).Info("Scheduler started")
	return nil
}

// Stop halts the runner and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.Scan(ctx); err != nil {
		s.logger.WithError(err).Error("Due-check scan failed")
	}
}

// Scan publishes an event for every check due within the window, overdue
// checks included, and returns how many were published. Checks that were
// never performed are always a full interval away, so only recorded checks
// can fall due. A failed publish is logged and the scan carries on.
func (s *Scheduler) Scan(ctx context.Context) (int, error) {
	vehicles, err := db.FindAllVehicles(ctx, s.vehicles)
	if err != nil {
		return 0, fmt.Errorf("load vehicles: %w", err)
	}

	published := 0
	var failed error
	for _, v := range vehicles {
		statuses := s.engine.Statuses(schedule.FromStrings(v.LastCheckDates))
		for _, st := range schedule.DueWithin(statuses, s.windowDays) {
			if !st.MarkedDone {
				continue
			}
			e := notify.NewEvent(v.ID.Hex(), v.UserID, v.Plate, st)
			if err := s.publisher.Publish(ctx, e); err != nil {
				s.logger.WithError(err).WithFields(log.Fields{
					"vehicle_id": e.VehicleID,
					"check":      e.CheckID,
				}).Warn("Failed to publish due-check event")
				failed = errors.Join(failed, err)
				if ctx.Err() != nil {
					return published, ctx.Err()
				}
				continue
			}
			published++
		}
	}

	s.logger.WithFields(log.Fields{"vehicles": len(vehicles), "published": published}).Info("Due-check scan finished")
	if failed != nil {
		return published, fmt.Errorf("some events were not published: %w", failed)
	}
	return published, nil
}
