// Package scheduler runs periodic maintenance jobs
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/service"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

// RepairScheduler periodically recomputes every partition's ranks so a rank left stale
// by a failed write converges without manual action.
type RepairScheduler struct {
	scheduler gocron.Scheduler
	repairs   service.RepairService
	interval  time.Duration
	timeout   time.Duration
}

// NewRepairScheduler creates a scheduler running RepairAll every interval. Each run is
// bounded by the interval itself.
func NewRepairScheduler(repairs service.RepairService, interval time.Duration) (*RepairScheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("repair interval must be positive, got %s", interval)
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &RepairScheduler{
		scheduler: s,
		repairs:   repairs,
		interval:  interval,
		timeout:   interval,
	}, nil
}

// Start registers the repair job and starts the scheduler. The first run happens
// immediately, then once per interval.
func (r *RepairScheduler) Start() error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.run),
		gocron.WithName("rank-repair"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule rank repair: %w", err)
	}

	r.scheduler.Start()
	log.WithField("interval", r.interval).Info("Rank repair scheduled")
	return nil
}

func (r *RepairScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	started := time.Now()
	report, err := r.repairs.RepairAll(ctx)
	if err != nil {
		log.WithError(err).Error("Scheduled rank repair failed")
		return
	}

	log.WithFields(log.Fields{
		"rankingPartitions": report.RankingPartitions,
		"duelPartitions":    report.DuelPartitions,
		"rowsUpdated":       report.RowsUpdated,
		"duration":          time.Since(started),
	}).Info("Scheduled rank repair completed")
}

// Shutdown stops the scheduler and waits for a running repair to finish
func (r *RepairScheduler) Shutdown() error {
	return r.scheduler.Shutdown()
}
