package repository

import (
	"context"
	"time"

	"focusPlanner/internal/models/session"
	"focusPlanner/internal/models/task"

	"github.com/google/uuid"
)

type TaskRepository interface {
	Create(ctx context.Context, t *task.Task) error
	Update(ctx context.Context, t *task.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error

	FindByUser(ctx context.Context, userID uuid.UUID) ([]*task.Task, error)
	FindByDate(ctx context.Context, userID uuid.UUID, date string) ([]*task.Task, error)
	FindUnscheduled(ctx context.Context, userID uuid.UUID) ([]*task.Task, error)
	FindBetweenDates(ctx context.Context, userID uuid.UUID, from, to string) ([]*task.Task, error)

	// для фонового воркера: задачи с зависшим timer_started_at
	FindTimersStartedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*task.Task, error)

	HealthCheck(ctx context.Context) error
}

type SessionRepository interface {
	Create(ctx context.Context, s *session.FocusSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*session.FocusSession, error)
	Update(ctx context.Context, s *session.FocusSession) error

	FindByTask(ctx context.Context, taskID uuid.UUID) ([]*session.FocusSession, error)
	FindByUserStartBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*session.FocusSession, error)
	FindUnassigned(ctx context.Context, userID uuid.UUID) ([]*session.FocusSession, error)

	// при удалении задачи её сессии не удаляются, снимается только ссылка
	UnlinkTask(ctx context.Context, taskID uuid.UUID) error

	HealthCheck(ctx context.Context) error
}
