package task

import (
	"time"
)

type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	if title == "" {
		return nil
	}
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description *string) TaskOption {
	return func(task *Task) {
		task.Description = description
	}
}

func WithCompleted(done bool) TaskOption {
	return func(task *Task) {
		task.IsCompleted = done
	}
}

func WithScheduledDate(date *string) TaskOption {
	return func(task *Task) {
		task.ScheduledDate = date
	}
}

func WithStartTime(hhmm *string) TaskOption {
	return func(task *Task) {
		task.StartTime = hhmm
	}
}

func WithPlannedDuration(minutes *int) TaskOption {
	return func(task *Task) {
		task.Duration = minutes
	}
}

func WithTimerStartedAt(at *time.Time) TaskOption {
	return func(task *Task) {
		task.TimerStartedAt = at
	}
}

func WithMandalartCell(gridIndex, cellIndex *int) TaskOption {
	return func(task *Task) {
		task.MandalartGridIndex = gridIndex
		task.MandalartCellIndex = cellIndex
	}
}

func WithGoogleEventID(eventID *string) TaskOption {
	return func(task *Task) {
		task.GoogleEventID = eventID
	}
}
