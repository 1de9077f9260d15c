// Package integrity runs the scheduled whole-ledger balance check.
package integrity

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	"github.com/corebank-service/corebank_service/internal/domain/services/ledger"
	"github.com/corebank-service/corebank_service/internal/infrastructure/cache"
	"github.com/corebank-service/corebank_service/internal/infrastructure/repositories"
	"github.com/corebank-service/corebank_service/pkg/logger"
)

const (
	lockKey = "corebank:integrity:lock"
	lockTTL = 10 * time.Minute
	runTTL  = 5 * time.Minute
)

// Worker periodically verifies that total debits equal total credits.
// When several replicas run, a redis lock elects one per tick; without
// redis every replica checks, which is harmless but noisy.
type Worker struct {
	cron  *cron.Cron
	db    *sqlx.DB
	redis *cache.Client
	log   *logger.Logger
}

// NewWorker creates the integrity worker. redis may be nil.
func NewWorker(db *sqlx.DB, redis *cache.Client, log *logger.Logger) *Worker {
	return &Worker{
		cron:  cron.New(),
		db:    db,
		redis: redis,
		log:   log,
	}
}

// Start schedules the check with the given cron expression.
func (w *Worker) Start(schedule string) error {
	if _, err := w.cron.AddFunc(schedule, w.run); err != nil {
		return err
	}
	w.cron.Start()
	w.log.Info("integrity worker started", "schedule", schedule)
	return nil
}

// Shutdown stops the scheduler, waiting for a running check to finish.
func (w *Worker) Shutdown(timeout time.Duration) error {
	ctx := w.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(timeout):
	}
	return nil
}

func (w *Worker) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTTL)
	defer cancel()

	if w.redis != nil {
		acquired, err := w.redis.AcquireLock(ctx, lockKey, lockTTL)
		if err != nil {
			w.log.Warn("integrity lock error, skipping run", "error", err)
			return
		}
		if !acquired {
			return
		}
		defer func() {
			if err := w.redis.ReleaseLock(ctx, lockKey); err != nil {
				w.log.Warn("integrity lock release failed", "error", err)
			}
		}()
	}

	svc := ledger.NewService(repositories.NewLedgerRepository(w.db), w.log)
	report, err := svc.CheckIntegrity(ctx)
	if err != nil {
		w.log.Error("integrity check failed", "error", err)
		return
	}

	if report.IsBalanced {
		w.log.Info("integrity check passed",
			"total_debits", report.TotalDebits.String(),
			"total_credits", report.TotalCredits.String(),
		)
	}
	// the unbalanced case is logged (and gauged) by the ledger service
}
