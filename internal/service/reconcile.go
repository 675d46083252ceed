package service

import (
	"focusPlanner/internal/models/session"
	"focusPlanner/internal/models/task"
)

// ReconcileActualDuration присоединяет сессии к задаче и сводит легаси-кэш
// с их суммой: показываем max(кэш, сумма сессий). Результат никогда не
// пишется обратно в хранилище - кэш двигают только явные инкременты при
// записи сессий, поэтому читатели безопасны при любом параллелизме.
func ReconcileActualDuration(t *task.Task, sessions []*session.FocusSession) *task.Task {
	t.FocusSessions = sessions

	if len(sessions) == 0 {
		return t
	}

	sessionTotal := 0
	for _, s := range sessions {
		sessionTotal += s.Duration
	}

	if sessionTotal > t.CachedDuration() {
		t.ActualDuration = &sessionTotal
	}
	return t
}
