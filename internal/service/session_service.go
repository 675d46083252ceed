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

// FocusSession (Action) - запись одного отработанного интервала.
// Сессия создаётся один раз и дальше может измениться только привязкой к задаче.

type CreateSessionInput struct {
	TaskID    *uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Duration  int // минуты
	Memo      *string
}

type FocusSessionService struct {
	sessions rep.SessionRepository
	tasks    rep.TaskRepository
}

func NewFocusSessionService(sessions rep.SessionRepository, tasks rep.TaskRepository) *FocusSessionService {
	return &FocusSessionService{
		sessions: sessions,
		tasks:    tasks,
	}
}

func (s *FocusSessionService) HealthCheck(ctx context.Context) error {
	return s.sessions.HealthCheck(ctx)
}

func (s *FocusSessionService) CreateSession(ctx context.Context, userID uuid.UUID, in CreateSessionInput) (*session.FocusSession, error) {
	if in.Duration <= 0 {
		return nil, NewValidationError("duration", "должно быть больше нуля")
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return nil, NewValidationError("start_time", "временные метки должны быть заданы")
	}
	if in.EndTime.Before(in.StartTime) {
		return nil, NewValidationError("end_time", "не может быть раньше start_time")
	}

	// привязка к чужой либо несуществующей задаче отклоняется до записи
	if in.TaskID != nil {
		if _, err := s.ownedTask(ctx, userID, *in.TaskID); err != nil {
			return nil, err
		}
	}

	focusSession := &session.FocusSession{
		UUID:      uuid.New(),
		UserID:    userID,
		TaskID:    in.TaskID,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Duration:  in.Duration,
		Memo:      in.Memo,
		CreatedAt: time.Now(),
	}

	if err := s.sessions.Create(ctx, focusSession); err != nil {
		return nil, fmt.Errorf("создание сессии: %w", err)
	}

	logger.Info("Service: Сессия записана",
		zap.String("session_id", focusSession.UUID.String()),
		zap.Int("duration_min", focusSession.Duration))
	return focusSession, nil
}

// ListRange - сессии пользователя, начавшиеся в интервале [from, to].
func (s *FocusSessionService) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*session.FocusSession, error) {
	if to.Before(from) {
		return nil, NewValidationError("endDate", "не может быть раньше startDate")
	}

	sessions, err := s.sessions.FindByUserStartBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("получение сессий: %w", err)
	}
	return sessions, nil
}

// ListUnassigned - сессии без привязанной задачи.
func (s *FocusSessionService) ListUnassigned(ctx context.Context, userID uuid.UUID) ([]*session.FocusSession, error) {
	sessions, err := s.sessions.FindUnassigned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение неназначенных сессий: %w", err)
	}
	return sessions, nil
}

// LinkToTask - единственная разрешённая мутация сессии: привязать/заменить
// задачу и дописать заметку.
func (s *FocusSessionService) LinkToTask(ctx context.Context, userID, sessionID uuid.UUID, taskID *uuid.UUID, memo *string) (*session.FocusSession, error) {
	focusSession, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Сессия не найдена", zap.String("target_id", sessionID.String()))
			return nil, NewNotFound("сессия", sessionID.String())
		}
		return nil, fmt.Errorf("получение сессии: %w", err)
	}
	if focusSession.UserID != userID {
		return nil, NewForbidden("сессия", sessionID.String())
	}

	if taskID != nil {
		if _, err := s.ownedTask(ctx, userID, *taskID); err != nil {
			return nil, err
		}
		focusSession.TaskID = taskID
	}
	if memo != nil {
		focusSession.Memo = memo
	}

	if err := s.sessions.Update(ctx, focusSession); err != nil {
		return nil, fmt.Errorf("привязка сессии: %w", err)
	}
	return focusSession, nil
}

func (s *FocusSessionService) ownedTask(ctx context.Context, userID, taskID uuid.UUID) (*task.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound("задача", taskID.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	if t.UserID != userID {
		return nil, NewForbidden("задача", taskID.String())
	}
	return t, nil
}
