package session

import (
	"time"

	"github.com/google/uuid"
)

// FocusSession (Action) - неизменяемая запись одного реально отработанного интервала.
// Задача (Plan) может быть не привязана - тогда это "неназначенная" сессия.
type FocusSession struct {
	UUID      uuid.UUID  `json:"uuid" db:"uuid"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	TaskID    *uuid.UUID `json:"task_id,omitempty" db:"task_id"`
	StartTime time.Time  `json:"start_time" db:"start_time"`
	EndTime   time.Time  `json:"end_time" db:"end_time"`
	Duration  int        `json:"duration" db:"duration"` // минуты, всегда > 0
	Memo      *string    `json:"memo,omitempty" db:"memo"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
