package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"focusPlanner/internal/logger"
	"focusPlanner/internal/models/task"
	rep "focusPlanner/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// проверка бизнес-правил над планами (Plan)

const scheduledDateLayout = "2006-01-02"

type TaskService struct {
	tasks    rep.TaskRepository
	sessions rep.SessionRepository
}

func NewTaskService(tasks rep.TaskRepository, sessions rep.SessionRepository) *TaskService {
	return &TaskService{
		tasks:    tasks,
		sessions: sessions,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.tasks.HealthCheck(ctx)
}

func (s *TaskService) CreateTask(ctx context.Context, userID uuid.UUID, title string, options ...task.TaskOption) (*task.Task, error) {
	if title == "" {
		return nil, NewValidationError("title", "не может быть пустым")
	}

	t := &task.Task{
		UUID:      uuid.New(),
		UserID:    userID,
		Title:     title,
		CreatedAt: time.Now(),
		Version:   1,
	}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}
	return t, nil
}

// getOwned загружает задачу и проверяет владельца. Чужая задача - FORBIDDEN,
// отдельно от NOT_FOUND.
func (s *TaskService) getOwned(ctx context.Context, userID, id uuid.UUID) (*task.Task, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound("задача", id.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if t.UserID != userID {
		logger.Warn("Service: Попытка доступа к чужой задаче",
			zap.String("target_id", id.String()),
			zap.String("user_id", userID.String()))
		return nil, NewForbidden("задача", id.String())
	}
	return t, nil
}

func (s *TaskService) GetTask(ctx context.Context, userID, id uuid.UUID) (*task.Task, error) {
	t, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.attachSessions(ctx, t)
}

// ListTasks возвращает все задачи пользователя, при заданной дате - только на неё.
func (s *TaskService) ListTasks(ctx context.Context, userID uuid.UUID, date *string) ([]*task.Task, error) {
	var tasks []*task.Task
	var err error

	if date != nil {
		if _, parseErr := time.Parse(scheduledDateLayout, *date); parseErr != nil {
			return nil, NewValidationError("date", "ожидается формат YYYY-MM-DD")
		}
		tasks, err = s.tasks.FindByDate(ctx, userID, *date)
	} else {
		tasks, err = s.tasks.FindByUser(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	return s.attachSessionsAll(ctx, tasks)
}

// ListBrainDump - незапланированные задачи (инбокс).
func (s *TaskService) ListBrainDump(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	tasks, err := s.tasks.FindUnscheduled(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("получение инбокса: %w", err)
	}
	return s.attachSessionsAll(ctx, tasks)
}

// ListWeek - задачи на неделю от startDate включительно.
func (s *TaskService) ListWeek(ctx context.Context, userID uuid.UUID, startDate string) ([]*task.Task, error) {
	start, err := time.Parse(scheduledDateLayout, startDate)
	if err != nil {
		return nil, NewValidationError("startDate", "ожидается формат YYYY-MM-DD")
	}
	endDate := start.AddDate(0, 0, 6).Format(scheduledDateLayout)

	tasks, err := s.tasks.FindBetweenDates(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("получение задач недели: %w", err)
	}
	return s.attachSessionsAll(ctx, tasks)
}

func (s *TaskService) UpdateTask(ctx context.Context, userID, id uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	t, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		if errors.Is(err, rep.ErrVersionConflict) {
			return nil, &BusinessError{
				Code:    "VERSION_CONFLICT",
				Message: "задача была изменена параллельно, повторите запрос",
				Err:     err,
			}
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	return s.attachSessions(ctx, t)
}

// DeleteTask удаляет план. Сессии переживают задачу: с них только снимается ссылка.
func (s *TaskService) DeleteTask(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}

	if err := s.sessions.UnlinkTask(ctx, id); err != nil {
		return fmt.Errorf("отвязка сессий: %w", err)
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("удаление задачи: %w", err)
	}
	return nil
}

// AddActualDuration двигает легаси-кэш фактического времени вперёд на minutes
// и сбрасывает отметку запущенного таймера. Повтор безопасен для кэша, но
// вызывается ровно один раз на одну записанную сессию.
func (s *TaskService) AddActualDuration(ctx context.Context, userID, id uuid.UUID, minutes int) (*task.Task, error) {
	if minutes <= 0 {
		return nil, NewValidationError("minutes", "должно быть больше нуля")
	}

	t, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	t.AddCachedDuration(minutes)
	t.TimerStartedAt = nil

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("инкремент фактического времени: %w", err)
	}
	return t, nil
}

func (s *TaskService) attachSessions(ctx context.Context, t *task.Task) (*task.Task, error) {
	sessions, err := s.sessions.FindByTask(ctx, t.UUID)
	if err != nil {
		return nil, fmt.Errorf("получение сессий задачи: %w", err)
	}
	return ReconcileActualDuration(t, sessions), nil
}

func (s *TaskService) attachSessionsAll(ctx context.Context, tasks []*task.Task) ([]*task.Task, error) {
	for _, t := range tasks {
		if _, err := s.attachSessions(ctx, t); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}
