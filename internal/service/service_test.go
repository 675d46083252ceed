package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"focusPlanner/internal/models/session"
	"focusPlanner/internal/models/task"
	"focusPlanner/internal/repository"
	"focusPlanner/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskRepository - мок репозитория задач
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) FindByDate(ctx context.Context, userID uuid.UUID, date string) ([]*task.Task, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) FindUnscheduled(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) FindBetweenDates(ctx context.Context, userID uuid.UUID, from, to string) ([]*task.Task, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) FindTimersStartedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSessionRepository - мок репозитория сессий
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, s *session.FocusSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*session.FocusSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.FocusSession), args.Error(1)
}

func (m *MockSessionRepository) Update(ctx context.Context, s *session.FocusSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]*session.FocusSession, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*session.FocusSession), args.Error(1)
}

func (m *MockSessionRepository) FindByUserStartBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*session.FocusSession, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*session.FocusSession), args.Error(1)
}

func (m *MockSessionRepository) FindUnassigned(ctx context.Context, userID uuid.UUID) ([]*session.FocusSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*session.FocusSession), args.Error(1)
}

func (m *MockSessionRepository) UnlinkTask(ctx context.Context, taskID uuid.UUID) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

func (m *MockSessionRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ repository.TaskRepository = (*MockTaskRepository)(nil)
var _ repository.SessionRepository = (*MockSessionRepository)(nil)

func businessCode(t *testing.T, err error) string {
	t.Helper()
	var be *service.BusinessError
	require.True(t, errors.As(err, &be), "expected BusinessError, got %v", err)
	return be.Code
}

// TestTaskService_CreateTask тестирует создание задачи
func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	tests := []struct {
		name        string
		title       string
		options     []task.TaskOption
		setupMocks  func(*MockTaskRepository)
		expectError bool
		errorCode   string
	}{
		{
			name:  "success - minimal task",
			title: "Сходить за хлебом",
			setupMocks: func(tasks *MockTaskRepository) {
				tasks.On("Create", mock.Anything, mock.MatchedBy(func(created *task.Task) bool {
					return created.Title == "Сходить за хлебом" &&
						created.UserID == userID &&
						created.Version == 1 &&
						created.UUID != uuid.Nil
				})).Return(nil)
			},
		},
		{
			name:  "success - scheduled with start time",
			title: "Планёрка",
			options: []task.TaskOption{
				task.WithScheduledDate(ptr("2026-03-14")),
				task.WithStartTime(ptr("09:30")),
				task.WithPlannedDuration(ptr(30)),
			},
			setupMocks: func(tasks *MockTaskRepository) {
				tasks.On("Create", mock.Anything, mock.MatchedBy(func(created *task.Task) bool {
					return created.ScheduledDate != nil && *created.ScheduledDate == "2026-03-14" &&
						created.StartTime != nil && *created.StartTime == "09:30"
				})).Return(nil)
			},
		},
		{
			name:        "error - empty title",
			title:       "",
			setupMocks:  func(tasks *MockTaskRepository) {},
			expectError: true,
			errorCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taskRepo := new(MockTaskRepository)
			sessionRepo := new(MockSessionRepository)
			tt.setupMocks(taskRepo)

			svc := service.NewTaskService(taskRepo, sessionRepo)
			created, err := svc.CreateTask(ctx, userID, tt.title, tt.options...)

			if tt.expectError {
				assert.Error(t, err)
				assert.Equal(t, tt.errorCode, businessCode(t, err))
			} else {
				require.NoError(t, err)
				assert.NotNil(t, created)
			}

			taskRepo.AssertExpectations(t)
		})
	}
}

// TestTaskService_GetTask тестирует получение задачи с проверкой владельца
func TestTaskService_GetTask(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	strangerID := uuid.New()
	taskID := uuid.New()

	tests := []struct {
		name       string
		caller     uuid.UUID
		setupMocks func(*MockTaskRepository, *MockSessionRepository)
		errorCode  string
	}{
		{
			name:   "success - own task with sessions",
			caller: userID,
			setupMocks: func(tasks *MockTaskRepository, sessions *MockSessionRepository) {
				tasks.On("GetByID", mock.Anything, taskID).
					Return(&task.Task{UUID: taskID, UserID: userID}, nil)
				sessions.On("FindByTask", mock.Anything, taskID).
					Return([]*session.FocusSession{}, nil)
			},
		},
		{
			name:   "error - not found",
			caller: userID,
			setupMocks: func(tasks *MockTaskRepository, sessions *MockSessionRepository) {
				tasks.On("GetByID", mock.Anything, taskID).
					Return(nil, repository.ErrNotFound)
			},
			errorCode: "NOT_FOUND",
		},
		{
			name:   "error - someone else's task is forbidden, not hidden",
			caller: strangerID,
			setupMocks: func(tasks *MockTaskRepository, sessions *MockSessionRepository) {
				tasks.On("GetByID", mock.Anything, taskID).
					Return(&task.Task{UUID: taskID, UserID: userID}, nil)
			},
			errorCode: "FORBIDDEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taskRepo := new(MockTaskRepository)
			sessionRepo := new(MockSessionRepository)
			tt.setupMocks(taskRepo, sessionRepo)

			svc := service.NewTaskService(taskRepo, sessionRepo)
			got, err := svc.GetTask(ctx, tt.caller, taskID)

			if tt.errorCode != "" {
				assert.Equal(t, tt.errorCode, businessCode(t, err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, taskID, got.UUID)
			}

			taskRepo.AssertExpectations(t)
			sessionRepo.AssertExpectations(t)
		})
	}
}

// TestTaskService_ListTasks тестирует выборки по дате
func TestTaskService_ListTasks(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("success - by date", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		sessionRepo := new(MockSessionRepository)

		found := &task.Task{UUID: uuid.New(), UserID: userID, Title: "На сегодня"}
		taskRepo.On("FindByDate", mock.Anything, userID, "2026-03-14").
			Return([]*task.Task{found}, nil)
		sessionRepo.On("FindByTask", mock.Anything, found.UUID).
			Return([]*session.FocusSession{}, nil)

		svc := service.NewTaskService(taskRepo, sessionRepo)
		tasks, err := svc.ListTasks(ctx, userID, ptr("2026-03-14"))

		require.NoError(t, err)
		assert.Len(t, tasks, 1)
	})

	t.Run("success - all tasks without date", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		sessionRepo := new(MockSessionRepository)

		taskRepo.On("FindByUser", mock.Anything, userID).
			Return([]*task.Task{}, nil)

		svc := service.NewTaskService(taskRepo, sessionRepo)
		tasks, err := svc.ListTasks(ctx, userID, nil)

		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("error - malformed date", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		sessionRepo := new(MockSessionRepository)

		svc := service.NewTaskService(taskRepo, sessionRepo)
		_, err := svc.ListTasks(ctx, userID, ptr("14.03.2026"))

		assert.Equal(t, "VALIDATION_ERROR", businessCode(t, err))
		taskRepo.AssertNotCalled(t, "FindByDate")
	})
}

// TestTaskService_ListWeek тестирует границы недельной выборки
func TestTaskService_ListWeek(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("success - seven day window inclusive", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		sessionRepo := new(MockSessionRepository)

		taskRepo.On("FindBetweenDates", mock.Anything, userID, "2026-03-09", "2026-03-15").
			Return([]*task.Task{}, nil)

		svc := service.NewTaskService(taskRepo, sessionRepo)
		_, err := svc.ListWeek(ctx, userID, "2026-03-09")

		require.NoError(t, err)
		taskRepo.AssertExpectations(t)
	})

	t.Run("error - malformed start date", func(t *testing.T) {
		svc := service.NewTaskService(new(MockTaskRepository), new(MockSessionRepository))
		_, err := svc.ListWeek(ctx, userID, "next monday")

		assert.Equal(t, "VALIDATION_ERROR", businessCode(t, err))
	})
}

// TestTaskService_UpdateTask тестирует обновление с оптимистичной блокировкой
func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	taskID := uuid.New()

	t.Run("success - partial update applies only given options", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		sessionRepo := new(MockSessionRepository)

		existing := &task.Task{UUID: taskID, UserID: userID, Title: "Старое имя", Version: 3}
		taskRepo.On("GetByID", mock.Anything, taskID).Return(existing, nil)
		taskRepo.On("Update", mock.Anything, mock.MatchedBy(func(updated *task.Task) bool {
			return updated.Title == "Новое имя" && updated.Version == 3
		})).Return(nil)
		sessionRepo.On("FindByTask", mock.Anything, taskID).
			Return([]*session.FocusSession{}, nil)

		svc := service.NewTaskService(taskRepo, sessionRepo)
		updated, err := svc.UpdateTask(ctx, userID, taskID, task.WithTitle("Новое имя"))

		require.NoError(t, err)
		assert.Equal(t, "Новое имя", updated.Title)
	})

	t.Run("error - version conflict maps to VERSION_CONFLICT", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		sessionRepo := new(MockSessionRepository)

		taskRepo.On("GetByID", mock.Anything, taskID).
			Return(&task.Task{UUID: taskID, UserID: userID, Version: 3}, nil)
		taskRepo.On("Update", mock.Anything, mock.Anything).
			Return(repository.ErrVersionConflict)

		svc := service.NewTaskService(taskRepo, sessionRepo)
		_, err := svc.UpdateTask(ctx, userID, taskID, task.WithCompleted(true))

		assert.Equal(t, "VERSION_CONFLICT", businessCode(t, err))
	})
}

// TestTaskService_DeleteTask тестирует что сессии переживают задачу
func TestTaskService_DeleteTask(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	taskID := uuid.New()

	taskRepo := new(MockTaskRepository)
	sessionRepo := new(MockSessionRepository)

	taskRepo.On("GetByID", mock.Anything, taskID).
		Return(&task.Task{UUID: taskID, UserID: userID}, nil)
	sessionRepo.On("UnlinkTask", mock.Anything, taskID).Return(nil).Once()
	taskRepo.On("Delete", mock.Anything, taskID).Return(nil).Once()

	svc := service.NewTaskService(taskRepo, sessionRepo)
	err := svc.DeleteTask(ctx, userID, taskID)

	require.NoError(t, err)
	taskRepo.AssertExpectations(t)
	sessionRepo.AssertExpectations(t)
}

// TestTaskService_AddActualDuration тестирует инкремент легаси-кэша
func TestTaskService_AddActualDuration(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	taskID := uuid.New()
	startedAt := time.Now().Add(-30 * time.Minute)

	t.Run("success - increments cache and clears stale timer mark", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		sessionRepo := new(MockSessionRepository)

		cached := 20
		existing := &task.Task{
			UUID:           taskID,
			UserID:         userID,
			ActualDuration: &cached,
			TimerStartedAt: &startedAt,
		}
		taskRepo.On("GetByID", mock.Anything, taskID).Return(existing, nil)
		taskRepo.On("Update", mock.Anything, mock.MatchedBy(func(updated *task.Task) bool {
			return updated.CachedDuration() == 45 && updated.TimerStartedAt == nil
		})).Return(nil)

		svc := service.NewTaskService(taskRepo, sessionRepo)
		updated, err := svc.AddActualDuration(ctx, userID, taskID, 25)

		require.NoError(t, err)
		assert.Equal(t, 45, updated.CachedDuration())
		assert.Nil(t, updated.TimerStartedAt)
	})

	t.Run("error - non-positive minutes", func(t *testing.T) {
		svc := service.NewTaskService(new(MockTaskRepository), new(MockSessionRepository))
		_, err := svc.AddActualDuration(ctx, userID, taskID, 0)

		assert.Equal(t, "VALIDATION_ERROR", businessCode(t, err))
	})
}

func ptr[T any](v T) *T {
	return &v
}
