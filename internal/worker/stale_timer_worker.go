package worker

import (
	"context"
	"time"

	"focusPlanner/internal/logger"
	rep "focusPlanner/internal/repository"

	"go.uber.org/zap"
)

// StaleTimerWorker чистит зависшие отметки timer_started_at: клиент мог
// умереть, не остановив таймер, и задача навсегда осталась бы "идущей".
type StaleTimerWorker struct {
	repo      rep.TaskRepository
	interval  time.Duration
	maxAge    time.Duration
	batchSize int
}

func NewStaleTimerWorker(repo rep.TaskRepository, interval, maxAge time.Duration) *StaleTimerWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if maxAge <= 0 {
		maxAge = 12 * time.Hour
	}
	return &StaleTimerWorker{
		repo:      repo,
		interval:  interval,
		maxAge:    maxAge,
		batchSize: 100,
	}
}

func (w *StaleTimerWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("Worker: Проверка зависших таймеров", zap.Time("started_at", time.Now()))
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Проверка зависших таймеров останавливается")
			return
		}
	}
}

func (w *StaleTimerWorker) Check(ctx context.Context) {
	start := time.Now()

	cutoff := time.Now().Add(-w.maxAge)
	tasks, err := w.repo.FindTimersStartedBefore(ctx, cutoff, w.batchSize)
	if err != nil {
		logger.Warn("Worker: ошибка получения задач", zap.Error(err))
		return
	}

	cleared := 0
	for _, t := range tasks {
		t.TimerStartedAt = nil
		if err := w.repo.Update(ctx, t); err != nil {
			logger.Warn("Worker: Ошибка обновления задачи",
				zap.Error(err),
				zap.String("task_id", t.UUID.String()))
			continue
		}
		cleared++
	}

	logger.Info("Worker: Завершение проверки таймеров",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(tasks)),
		zap.Int("cleared", cleared),
	)
}
