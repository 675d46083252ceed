package service_test

import (
	"testing"

	"focusPlanner/internal/models/session"
	"focusPlanner/internal/models/task"
	"focusPlanner/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionsWithDurations(durations ...int) []*session.FocusSession {
	res := make([]*session.FocusSession, 0, len(durations))
	for _, d := range durations {
		res = append(res, &session.FocusSession{Duration: d})
	}
	return res
}

// TestReconcileActualDuration тестирует свод легаси-кэша с суммой сессий
func TestReconcileActualDuration(t *testing.T) {
	tests := []struct {
		name     string
		cached   *int
		sessions []*session.FocusSession
		expected int
	}{
		{
			name:     "sessions exceed cache - sum wins",
			cached:   ptr(30),
			sessions: sessionsWithDurations(25, 25),
			expected: 50,
		},
		{
			name:     "cache exceeds sessions - cache wins",
			cached:   ptr(60),
			sessions: sessionsWithDurations(10, 20),
			expected: 60,
		},
		{
			name:     "equal - cache stays",
			cached:   ptr(45),
			sessions: sessionsWithDurations(45),
			expected: 45,
		},
		{
			name:     "no cache - sum of sessions",
			cached:   nil,
			sessions: sessionsWithDurations(15, 10),
			expected: 25,
		},
		{
			name:     "no sessions - cache untouched",
			cached:   ptr(40),
			sessions: nil,
			expected: 40,
		},
		{
			name:     "nothing at all",
			cached:   nil,
			sessions: nil,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tsk := &task.Task{ActualDuration: tt.cached}
			got := service.ReconcileActualDuration(tsk, tt.sessions)

			assert.Equal(t, tt.expected, got.CachedDuration())
			assert.Equal(t, tt.sessions, got.FocusSessions)
		})
	}
}

// TestReconcileActualDuration_Monotonic тестирует что видимое время
// не убывает: добавление сессии не уменьшает результат
func TestReconcileActualDuration_Monotonic(t *testing.T) {
	tsk := &task.Task{ActualDuration: ptr(30)}

	service.ReconcileActualDuration(tsk, sessionsWithDurations(25))
	first := tsk.CachedDuration()
	require.Equal(t, 30, first) // кэш больше суммы - держим кэш

	service.ReconcileActualDuration(tsk, sessionsWithDurations(25, 25))
	second := tsk.CachedDuration()
	assert.Equal(t, 50, second)
	assert.GreaterOrEqual(t, second, first)
}
