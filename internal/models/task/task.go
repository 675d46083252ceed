package task

import (
	"time"

	"focusPlanner/internal/models/session"

	"github.com/google/uuid"
)

// Task (Plan) - запланированная единица работы.
// Задача без scheduled_date лежит в инбоксе ("brain dump").
type Task struct {
	UUID        uuid.UUID `json:"uuid" db:"uuid"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	IsCompleted bool      `json:"is_completed" db:"is_completed"`

	// Планирование
	ScheduledDate *string `json:"scheduled_date,omitempty" db:"scheduled_date"` // "2006-01-02"
	StartTime     *string `json:"start_time,omitempty" db:"start_time"`         // "HH:MM"
	Duration      *int    `json:"duration,omitempty" db:"duration"`             // план, минуты

	// Легаси-поле: кэш фактического времени в минутах. Только растёт и не авторитетно -
	// при чтении сверяется с суммой длительностей FocusSession.
	ActualDuration *int       `json:"actual_duration,omitempty" db:"actual_duration"`
	TimerStartedAt *time.Time `json:"timer_started_at,omitempty" db:"timer_started_at"`

	// Привязка к ячейке мандалы (редактор сетки вне этого сервиса)
	MandalartGridIndex *int `json:"mandalart_grid_index,omitempty" db:"mandalart_grid_index"`
	MandalartCellIndex *int `json:"mandalart_cell_index,omitempty" db:"mandalart_cell_index"`

	GoogleEventID *string `json:"google_event_id,omitempty" db:"google_event_id"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at,omitempty"`
	Version   int        `json:"version" db:"version"`

	// Заполняется только на чтении, в таблице tasks не хранится
	FocusSessions []*session.FocusSession `json:"focus_sessions,omitempty" db:"-"`
}

// CachedDuration возвращает легаси-кэш, 0 если поле не задано.
func (t *Task) CachedDuration() int {
	if t.ActualDuration == nil {
		return 0
	}
	return *t.ActualDuration
}

// AddCachedDuration увеличивает легаси-кэш на minutes минут.
func (t *Task) AddCachedDuration(minutes int) {
	total := t.CachedDuration() + minutes
	t.ActualDuration = &total
}
