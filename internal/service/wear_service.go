package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"focusPlanner/internal/logger"
	"focusPlanner/internal/models/session"
	"focusPlanner/internal/models/task"
	rep "focusPlanner/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Приём отчётов о времени с часов. Часы пишут независимо от телефона,
// поэтому один и тот же реальный интервал может приехать дважды - от обоих
// устройств или повторной отправкой. Защита - окно дедупликации по start_time.

const watchSessionMemo = "Watch Session"

type WearReport struct {
	Title           *string
	StartTimeMillis int64
	EndTimeMillis   int64
	DurationMinutes int
	TaskID          *uuid.UUID
}

type WearSyncService struct {
	tasks    rep.TaskRepository
	sessions rep.SessionRepository

	// ±2 минуты по умолчанию: уже - начнутся дубли из-за расхождения часов
	// устройств, шире - молча склеятся легитимные сессии подряд
	dedupWindow time.Duration
}

func NewWearSyncService(tasks rep.TaskRepository, sessions rep.SessionRepository, dedupWindow time.Duration) *WearSyncService {
	if dedupWindow <= 0 {
		dedupWindow = 2 * time.Minute
	}
	return &WearSyncService{
		tasks:       tasks,
		sessions:    sessions,
		dedupWindow: dedupWindow,
	}
}

// Sync принимает один отчёт с часов. Возвращает задачу, к которой времени
// засчиталось (существующую, созданную "призрачную" или задачу уже
// записанной сессии-дубликата; nil если дубликат не был привязан).
//
// Шаги выполняются отдельными запросами без транзакции: два параллельных
// отчёта о пересекающихся интервалах могут оба пройти проверку дубликата.
// Окно гонки осознанное, см. DESIGN.md.
func (s *WearSyncService) Sync(ctx context.Context, userID uuid.UUID, report WearReport) (*task.Task, error) {
	if report.StartTimeMillis < 0 {
		return nil, NewValidationError("startTimeMillis", "не может быть отрицательным")
	}
	if report.EndTimeMillis < 0 {
		return nil, NewValidationError("endTimeMillis", "не может быть отрицательным")
	}
	if report.DurationMinutes <= 0 {
		return nil, NewValidationError("durationMinutes", "должно быть больше нуля")
	}

	startDate := time.UnixMilli(report.StartTimeMillis)
	var endDate time.Time
	if report.EndTimeMillis > 0 {
		endDate = time.UnixMilli(report.EndTimeMillis)
	} else {
		endDate = time.UnixMilli(report.StartTimeMillis + int64(report.DurationMinutes)*60000)
	}

	// привязанная задача, если часы её знали; отсутствие - не ошибка
	var linked *task.Task
	if report.TaskID != nil {
		t, err := s.tasks.GetByID(ctx, *report.TaskID)
		if err != nil && !errors.Is(err, rep.ErrNotFound) {
			return nil, fmt.Errorf("получение задачи отчёта: %w", err)
		}
		if err == nil && t.UserID == userID {
			linked = t
		}
	}

	// дубликат: сессия этого пользователя со стартом в пределах окна уже есть
	// (записана телефоном или прошлой синхронизацией) - ничего не пишем
	nearby, err := s.sessions.FindByUserStartBetween(ctx, userID,
		startDate.Add(-s.dedupWindow), startDate.Add(s.dedupWindow))
	if err != nil {
		return nil, fmt.Errorf("проверка дубликата: %w", err)
	}
	if len(nearby) > 0 {
		duplicate := nearby[0]
		logger.Info("WearSync: Отчёт распознан как дубликат, запись пропущена",
			zap.String("existing_session_id", duplicate.UUID.String()),
			zap.Time("report_start", startDate))

		if duplicate.TaskID == nil {
			return nil, nil
		}
		existingTask, err := s.tasks.GetByID(ctx, *duplicate.TaskID)
		if err != nil {
			if errors.Is(err, rep.ErrNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("получение задачи дубликата: %w", err)
		}
		return existingTask, nil
	}

	// нет ни задачи, ни дубликата: пользователь работал только с часов,
	// заводим "призрачную" задачу в расписание дня отчёта
	if linked == nil {
		localStart := startDate.Local()
		startTimeStr := localStart.Format("15:04")
		scheduledDate := localStart.Format(scheduledDateLayout)

		title := fmt.Sprintf("%s %s", watchSessionMemo, startTimeStr)
		if report.Title != nil && *report.Title != "" {
			title = *report.Title
		}

		linked = &task.Task{
			UUID:           uuid.New(),
			UserID:         userID,
			Title:          title,
			ScheduledDate:  &scheduledDate,
			StartTime:      &startTimeStr,
			IsCompleted:    false,
			TimerStartedAt: &startDate,
			CreatedAt:      time.Now(),
			Version:        1,
		}
		if err := s.tasks.Create(ctx, linked); err != nil {
			return nil, fmt.Errorf("создание задачи из отчёта: %w", err)
		}

		logger.Info("WearSync: Создана задача из отчёта часов",
			zap.String("task_id", linked.UUID.String()),
			zap.String("title", linked.Title))
	}

	memo := watchSessionMemo
	if report.Title != nil && *report.Title != "" {
		memo = *report.Title
	}

	focusSession := &session.FocusSession{
		UUID:      uuid.New(),
		UserID:    userID,
		TaskID:    &linked.UUID,
		StartTime: startDate,
		EndTime:   endDate,
		Duration:  report.DurationMinutes,
		Memo:      &memo,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.Create(ctx, focusSession); err != nil {
		return nil, fmt.Errorf("запись сессии отчёта: %w", err)
	}

	// легаси-кэш для совместимости со старым клиентом
	linked.AddCachedDuration(report.DurationMinutes)
	if err := s.tasks.Update(ctx, linked); err != nil {
		return nil, fmt.Errorf("инкремент фактического времени: %w", err)
	}

	logger.Info("WearSync: Отчёт принят",
		zap.String("task_id", linked.UUID.String()),
		zap.String("session_id", focusSession.UUID.String()),
		zap.Int("duration_min", report.DurationMinutes))
	return linked, nil
}
