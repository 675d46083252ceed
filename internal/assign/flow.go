package assign

import (
	"context"
	"fmt"
	"time"

	"focusPlanner/internal/logger"
	"focusPlanner/internal/models/session"
	"focusPlanner/internal/models/task"
	"focusPlanner/internal/service"
	"focusPlanner/internal/timer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Поток назначения: превращает завершённый замер таймера в записанную
// сессию. Для любой ветки кроме Discard контракт один - ровно одно
// создание FocusSession и ровно один инкремент легаси-кэша, в этом порядке.
// Ошибки не ретраятся автоматически: повтор создания сессии дал бы дубль,
// замеренное время остаётся у вызывающего для ручного повтора.

type TaskService interface {
	GetTask(ctx context.Context, userID, id uuid.UUID) (*task.Task, error)
	CreateTask(ctx context.Context, userID uuid.UUID, title string, options ...task.TaskOption) (*task.Task, error)
	UpdateTask(ctx context.Context, userID, id uuid.UUID, options ...task.TaskOption) (*task.Task, error)
	AddActualDuration(ctx context.Context, userID, id uuid.UUID, minutes int) (*task.Task, error)
}

type SessionService interface {
	CreateSession(ctx context.Context, userID uuid.UUID, in service.CreateSessionInput) (*session.FocusSession, error)
}

type Flow struct {
	tasks    TaskService
	sessions SessionService
}

func New(tasks TaskService, sessions SessionService) *Flow {
	return &Flow{
		tasks:    tasks,
		sessions: sessions,
	}
}

// Complete - ветка "заверши задачу": отметить план выполненным и записать время.
// Только для замера с заранее выбранной задачей.
func (f *Flow) Complete(ctx context.Context, userID uuid.UUID, c timer.Completion) error {
	if c.TaskID == nil {
		return service.NewValidationError("task_id", "замер без задачи нельзя завершить напрямую")
	}

	t, err := f.tasks.GetTask(ctx, userID, *c.TaskID)
	if err != nil {
		return err
	}

	if !t.IsCompleted {
		if _, err := f.tasks.UpdateTask(ctx, userID, t.UUID, task.WithCompleted(true)); err != nil {
			return fmt.Errorf("отметка о выполнении: %w", err)
		}
	}

	return f.record(ctx, userID, *c.TaskID, c)
}

// SaveOnly - записать время по заранее выбранной задаче, не трогая выполненность.
func (f *Flow) SaveOnly(ctx context.Context, userID uuid.UUID, c timer.Completion) error {
	if c.TaskID == nil {
		return service.NewValidationError("task_id", "у замера нет задачи, используйте назначение")
	}
	return f.record(ctx, userID, *c.TaskID, c)
}

// AssignToTask - "быстрый фокус" задним числом привязывается к существующей задаче.
func (f *Flow) AssignToTask(ctx context.Context, userID uuid.UUID, c timer.Completion, taskID uuid.UUID) error {
	if _, err := f.tasks.GetTask(ctx, userID, taskID); err != nil {
		return err
	}
	return f.record(ctx, userID, taskID, c)
}

// CreateNewTask - "быстрый фокус" становится новой задачей; плановое время
// старта выводится из конца замера минус длительность.
func (f *Flow) CreateNewTask(ctx context.Context, userID uuid.UUID, c timer.Completion, title string, scheduledDate *string) (*task.Task, error) {
	if c.ElapsedMinutes <= 0 {
		return nil, service.NewValidationError("elapsed_minutes", "нечего записывать")
	}

	startedAt := c.EndedAt.Add(-time.Duration(c.ElapsedMinutes) * time.Minute)
	startTime := startedAt.Local().Format("15:04")

	t, err := f.tasks.CreateTask(ctx, userID, title,
		task.WithScheduledDate(scheduledDate),
		task.WithStartTime(&startTime),
	)
	if err != nil {
		return nil, err
	}

	if err := f.record(ctx, userID, t.UUID, c); err != nil {
		return nil, err
	}
	return t, nil
}

// Discard - осознанная потеря замеренного времени, никаких записей.
// След остаётся только в логе.
func (f *Flow) Discard(c timer.Completion) {
	logger.Info("Assign: Замер отброшен пользователем",
		zap.Int("elapsed_minutes", c.ElapsedMinutes))
}

func (f *Flow) record(ctx context.Context, userID, taskID uuid.UUID, c timer.Completion) error {
	if c.ElapsedMinutes <= 0 {
		return service.NewValidationError("elapsed_minutes", "нечего записывать")
	}

	startTime := c.EndedAt.Add(-time.Duration(c.ElapsedMinutes) * time.Minute)

	if _, err := f.sessions.CreateSession(ctx, userID, service.CreateSessionInput{
		TaskID:    &taskID,
		StartTime: startTime,
		EndTime:   c.EndedAt,
		Duration:  c.ElapsedMinutes,
	}); err != nil {
		return fmt.Errorf("запись сессии: %w", err)
	}

	if _, err := f.tasks.AddActualDuration(ctx, userID, taskID, c.ElapsedMinutes); err != nil {
		return fmt.Errorf("инкремент фактического времени: %w", err)
	}
	return nil
}
