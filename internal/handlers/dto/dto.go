package dto

import (
	"time"

	"focusPlanner/internal/models/session"
	"focusPlanner/internal/models/task"

	"github.com/google/uuid"
)

// Внешний формат - camelCase, как его ждут телефонный клиент и часы.

type CreateTaskRequest struct {
	Title              string  `json:"title"`
	Description        *string `json:"description,omitempty"`
	IsCompleted        *bool   `json:"isCompleted,omitempty"`
	ScheduledDate      *string `json:"scheduledDate,omitempty"`
	StartTime          *string `json:"startTime,omitempty"`
	Duration           *int    `json:"duration,omitempty"`
	MandalartGridIndex *int    `json:"mandalartGridIndex,omitempty"`
	MandalartCellIndex *int    `json:"mandalartCellIndex,omitempty"`
}

type UpdateTaskRequest struct {
	Title              *string    `json:"title,omitempty"`
	Description        *string    `json:"description,omitempty"`
	IsCompleted        *bool      `json:"isCompleted,omitempty"`
	ScheduledDate      *string    `json:"scheduledDate,omitempty"`
	StartTime          *string    `json:"startTime,omitempty"`
	Duration           *int       `json:"duration,omitempty"`
	TimerStartedAt     *time.Time `json:"timerStartedAt,omitempty"`
	MandalartGridIndex *int       `json:"mandalartGridIndex,omitempty"`
	MandalartCellIndex *int       `json:"mandalartCellIndex,omitempty"`
	GoogleEventID      *string    `json:"googleEventId,omitempty"`
}

type CreateFocusSessionRequest struct {
	TaskID    *uuid.UUID `json:"taskId,omitempty"`
	StartTime time.Time  `json:"startTime"`
	EndTime   time.Time  `json:"endTime"`
	Duration  int        `json:"duration"` // минуты
	Memo      *string    `json:"memo,omitempty"`
}

type LinkSessionRequest struct {
	TaskID *uuid.UUID `json:"taskId,omitempty"`
	Memo   *string    `json:"memo,omitempty"`
}

type WearSessionRequest struct {
	Title           *string    `json:"title,omitempty"`
	StartTimeMillis int64      `json:"startTimeMillis"`
	EndTimeMillis   int64      `json:"endTimeMillis"`
	DurationMinutes int        `json:"durationMinutes"`
	TaskID          *uuid.UUID `json:"taskId,omitempty"`
}

type TaskResponse struct {
	UUID               uuid.UUID         `json:"id"`
	Title              string            `json:"title"`
	Description        *string           `json:"description,omitempty"`
	IsCompleted        bool              `json:"isCompleted"`
	ScheduledDate      *string           `json:"scheduledDate,omitempty"`
	StartTime          *string           `json:"startTime,omitempty"`
	Duration           *int              `json:"duration,omitempty"`
	ActualDuration     *int              `json:"actualDuration,omitempty"`
	TimerStartedAt     *time.Time        `json:"timerStartedAt,omitempty"`
	MandalartGridIndex *int              `json:"mandalartGridIndex,omitempty"`
	MandalartCellIndex *int              `json:"mandalartCellIndex,omitempty"`
	GoogleEventID      *string           `json:"googleEventId,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
	UpdatedAt          *time.Time        `json:"updatedAt,omitempty"`
	FocusSessions      []SessionResponse `json:"focusSessions,omitempty"`
}

type SessionResponse struct {
	UUID      uuid.UUID  `json:"id"`
	TaskID    *uuid.UUID `json:"taskId,omitempty"`
	StartTime time.Time  `json:"startTime"`
	EndTime   time.Time  `json:"endTime"`
	Duration  int        `json:"duration"`
	Memo      *string    `json:"memo,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		UUID:               t.UUID,
		Title:              t.Title,
		Description:        t.Description,
		IsCompleted:        t.IsCompleted,
		ScheduledDate:      t.ScheduledDate,
		StartTime:          t.StartTime,
		Duration:           t.Duration,
		ActualDuration:     t.ActualDuration,
		TimerStartedAt:     t.TimerStartedAt,
		MandalartGridIndex: t.MandalartGridIndex,
		MandalartCellIndex: t.MandalartCellIndex,
		GoogleEventID:      t.GoogleEventID,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
		FocusSessions:      FromSessionList(t.FocusSessions),
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

func FromSession(s *session.FocusSession) SessionResponse {
	return SessionResponse{
		UUID:      s.UUID,
		TaskID:    s.TaskID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Duration:  s.Duration,
		Memo:      s.Memo,
		CreatedAt: s.CreatedAt,
	}
}

func FromSessionList(sessions []*session.FocusSession) []SessionResponse {
	if len(sessions) == 0 {
		return nil
	}
	result := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		result[i] = FromSession(s)
	}
	return result
}
