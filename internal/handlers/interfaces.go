package handlers

import (
	"context"
	"time"

	"focusPlanner/internal/models/session"
	"focusPlanner/internal/models/task"
	"focusPlanner/internal/service"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, userID uuid.UUID, title string, options ...task.TaskOption) (*task.Task, error)
	GetTask(ctx context.Context, userID, id uuid.UUID) (*task.Task, error)
	ListTasks(ctx context.Context, userID uuid.UUID, date *string) ([]*task.Task, error)
	ListBrainDump(ctx context.Context, userID uuid.UUID) ([]*task.Task, error)
	ListWeek(ctx context.Context, userID uuid.UUID, startDate string) ([]*task.Task, error)
	UpdateTask(ctx context.Context, userID, id uuid.UUID, options ...task.TaskOption) (*task.Task, error)
	DeleteTask(ctx context.Context, userID, id uuid.UUID) error
}

type FocusSessionService interface {
	CreateSession(ctx context.Context, userID uuid.UUID, in service.CreateSessionInput) (*session.FocusSession, error)
	ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*session.FocusSession, error)
	ListUnassigned(ctx context.Context, userID uuid.UUID) ([]*session.FocusSession, error)
	LinkToTask(ctx context.Context, userID, sessionID uuid.UUID, taskID *uuid.UUID, memo *string) (*session.FocusSession, error)
}

type WearSyncService interface {
	Sync(ctx context.Context, userID uuid.UUID, report service.WearReport) (*task.Task, error)
}
