package service_test

import (
	"context"
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

// TestSessionService_CreateSession тестирует запись сессии
func TestSessionService_CreateSession(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	taskID := uuid.New()
	start := time.Now().Add(-25 * time.Minute)
	end := time.Now()

	tests := []struct {
		name       string
		input      service.CreateSessionInput
		setupMocks func(*MockTaskRepository, *MockSessionRepository)
		errorCode  string
	}{
		{
			name: "success - unassigned session",
			input: service.CreateSessionInput{
				StartTime: start,
				EndTime:   end,
				Duration:  25,
			},
			setupMocks: func(tasks *MockTaskRepository, sessions *MockSessionRepository) {
				sessions.On("Create", mock.Anything, mock.MatchedBy(func(fs *session.FocusSession) bool {
					return fs.TaskID == nil && fs.Duration == 25 && fs.UserID == userID
				})).Return(nil)
			},
		},
		{
			name: "success - linked to own task",
			input: service.CreateSessionInput{
				TaskID:    &taskID,
				StartTime: start,
				EndTime:   end,
				Duration:  25,
			},
			setupMocks: func(tasks *MockTaskRepository, sessions *MockSessionRepository) {
				tasks.On("GetByID", mock.Anything, taskID).
					Return(&task.Task{UUID: taskID, UserID: userID}, nil)
				sessions.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
		},
		{
			name: "error - zero duration",
			input: service.CreateSessionInput{
				StartTime: start,
				EndTime:   end,
				Duration:  0,
			},
			setupMocks: func(tasks *MockTaskRepository, sessions *MockSessionRepository) {},
			errorCode:  "VALIDATION_ERROR",
		},
		{
			name: "error - missing timestamps",
			input: service.CreateSessionInput{
				Duration: 25,
			},
			setupMocks: func(tasks *MockTaskRepository, sessions *MockSessionRepository) {},
			errorCode:  "VALIDATION_ERROR",
		},
		{
			name: "error - end before start",
			input: service.CreateSessionInput{
				StartTime: end,
				EndTime:   start,
				Duration:  25,
			},
			setupMocks: func(tasks *MockTaskRepository, sessions *MockSessionRepository) {},
			errorCode:  "VALIDATION_ERROR",
		},
		{
			name: "error - linked task belongs to someone else",
			input: service.CreateSessionInput{
				TaskID:    &taskID,
				StartTime: start,
				EndTime:   end,
				Duration:  25,
			},
			setupMocks: func(tasks *MockTaskRepository, sessions *MockSessionRepository) {
				tasks.On("GetByID", mock.Anything, taskID).
					Return(&task.Task{UUID: taskID, UserID: uuid.New()}, nil)
			},
			errorCode: "FORBIDDEN",
		},
		{
			name: "error - linked task does not exist",
			input: service.CreateSessionInput{
				TaskID:    &taskID,
				StartTime: start,
				EndTime:   end,
				Duration:  25,
			},
			setupMocks: func(tasks *MockTaskRepository, sessions *MockSessionRepository) {
				tasks.On("GetByID", mock.Anything, taskID).
					Return(nil, repository.ErrNotFound)
			},
			errorCode: "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taskRepo := new(MockTaskRepository)
			sessionRepo := new(MockSessionRepository)
			tt.setupMocks(taskRepo, sessionRepo)

			svc := service.NewFocusSessionService(sessionRepo, taskRepo)
			created, err := svc.CreateSession(ctx, userID, tt.input)

			if tt.errorCode != "" {
				assert.Equal(t, tt.errorCode, businessCode(t, err))
				sessionRepo.AssertNotCalled(t, "Create")
			} else {
				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, created.UUID)
			}

			taskRepo.AssertExpectations(t)
			sessionRepo.AssertExpectations(t)
		})
	}
}

// TestSessionService_ListRange тестирует выборку сессий за интервал
func TestSessionService_ListRange(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	from := time.Now().Add(-24 * time.Hour)
	to := time.Now()

	t.Run("success", func(t *testing.T) {
		sessionRepo := new(MockSessionRepository)
		sessionRepo.On("FindByUserStartBetween", mock.Anything, userID, from, to).
			Return([]*session.FocusSession{{UUID: uuid.New()}}, nil)

		svc := service.NewFocusSessionService(sessionRepo, new(MockTaskRepository))
		sessions, err := svc.ListRange(ctx, userID, from, to)

		require.NoError(t, err)
		assert.Len(t, sessions, 1)
	})

	t.Run("error - inverted range", func(t *testing.T) {
		svc := service.NewFocusSessionService(new(MockSessionRepository), new(MockTaskRepository))
		_, err := svc.ListRange(ctx, userID, to, from)

		assert.Equal(t, "VALIDATION_ERROR", businessCode(t, err))
	})
}

// TestSessionService_LinkToTask тестирует привязку сессии задним числом
func TestSessionService_LinkToTask(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	sessionID := uuid.New()
	taskID := uuid.New()

	t.Run("success - link and memo", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		sessionRepo := new(MockSessionRepository)

		sessionRepo.On("GetByID", mock.Anything, sessionID).
			Return(&session.FocusSession{UUID: sessionID, UserID: userID}, nil)
		taskRepo.On("GetByID", mock.Anything, taskID).
			Return(&task.Task{UUID: taskID, UserID: userID}, nil)
		sessionRepo.On("Update", mock.Anything, mock.MatchedBy(func(fs *session.FocusSession) bool {
			return fs.TaskID != nil && *fs.TaskID == taskID &&
				fs.Memo != nil && *fs.Memo == "после обеда"
		})).Return(nil)

		svc := service.NewFocusSessionService(sessionRepo, taskRepo)
		linked, err := svc.LinkToTask(ctx, userID, sessionID, &taskID, ptr("после обеда"))

		require.NoError(t, err)
		assert.Equal(t, taskID, *linked.TaskID)
	})

	t.Run("success - memo only, link untouched", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		sessionRepo := new(MockSessionRepository)

		existingTask := taskID
		sessionRepo.On("GetByID", mock.Anything, sessionID).
			Return(&session.FocusSession{UUID: sessionID, UserID: userID, TaskID: &existingTask}, nil)
		sessionRepo.On("Update", mock.Anything, mock.MatchedBy(func(fs *session.FocusSession) bool {
			return fs.TaskID != nil && *fs.TaskID == existingTask
		})).Return(nil)

		svc := service.NewFocusSessionService(sessionRepo, taskRepo)
		_, err := svc.LinkToTask(ctx, userID, sessionID, nil, ptr("только заметка"))

		require.NoError(t, err)
		taskRepo.AssertNotCalled(t, "GetByID")
	})

	t.Run("error - session not found", func(t *testing.T) {
		sessionRepo := new(MockSessionRepository)
		sessionRepo.On("GetByID", mock.Anything, sessionID).
			Return(nil, repository.ErrNotFound)

		svc := service.NewFocusSessionService(sessionRepo, new(MockTaskRepository))
		_, err := svc.LinkToTask(ctx, userID, sessionID, &taskID, nil)

		assert.Equal(t, "NOT_FOUND", businessCode(t, err))
	})

	t.Run("error - someone else's session", func(t *testing.T) {
		sessionRepo := new(MockSessionRepository)
		sessionRepo.On("GetByID", mock.Anything, sessionID).
			Return(&session.FocusSession{UUID: sessionID, UserID: uuid.New()}, nil)

		svc := service.NewFocusSessionService(sessionRepo, new(MockTaskRepository))
		_, err := svc.LinkToTask(ctx, userID, sessionID, &taskID, nil)

		assert.Equal(t, "FORBIDDEN", businessCode(t, err))
	})

	t.Run("error - target task belongs to someone else", func(t *testing.T) {
		taskRepo := new(MockTaskRepository)
		sessionRepo := new(MockSessionRepository)

		sessionRepo.On("GetByID", mock.Anything, sessionID).
			Return(&session.FocusSession{UUID: sessionID, UserID: userID}, nil)
		taskRepo.On("GetByID", mock.Anything, taskID).
			Return(&task.Task{UUID: taskID, UserID: uuid.New()}, nil)

		svc := service.NewFocusSessionService(sessionRepo, taskRepo)
		_, err := svc.LinkToTask(ctx, userID, sessionID, &taskID, nil)

		assert.Equal(t, "FORBIDDEN", businessCode(t, err))
		sessionRepo.AssertNotCalled(t, "Update")
	})
}

// TestSessionService_UnassignedFlow тестирует сценарий: быстрый фокус без
// задачи виден в неназначенных, после привязки - исчезает
func TestSessionService_UnassignedFlow(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	sessionRepo := new(MockSessionRepository)
	unassigned := &session.FocusSession{UUID: uuid.New(), UserID: userID}
	sessionRepo.On("FindUnassigned", mock.Anything, userID).
		Return([]*session.FocusSession{unassigned}, nil)

	svc := service.NewFocusSessionService(sessionRepo, new(MockTaskRepository))
	sessions, err := svc.ListUnassigned(ctx, userID)

	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Nil(t, sessions[0].TaskID)
}
