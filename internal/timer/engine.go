package timer

import (
	"fmt"
	"math"
	"time"

	"focusPlanner/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Phase string
type Mode string

const (
	PhaseFocus Phase = "focus"
	PhaseBreak Phase = "break"

	ModePomodoro Mode = "pomodoro" // обратный отсчёт 25/5
	ModeTask     Mode = "task"     // секундомер по задаче
)

const (
	FocusDuration = 25 * time.Minute
	BreakDuration = 5 * time.Minute
)

// Clock - источник текущего времени. Весь прошедший интервал всегда
// пересчитывается от меток часов, а не копится по тикам, иначе уход
// приложения в фон даёт дрейф.
type Clock func() time.Time

// Completion - событие завершённого замера по задаче.
// Доставляется не более одного раза на каждый StopTask.
type Completion struct {
	ElapsedMinutes int
	TaskID         *uuid.UUID
	EndedAt        time.Time
}

type Option func(*Engine)

// WithAlert задаёт звуковой/визуальный сигнал (завершение фазы, старт и стоп замера).
func WithAlert(alert func()) Option {
	return func(e *Engine) {
		e.alert = alert
	}
}

// WithPomodoroComplete задаёт колбэк на завершение фазы помодоро.
func WithPomodoroComplete(cb func(finished Phase)) Option {
	return func(e *Engine) {
		e.onPomodoroComplete = cb
	}
}

// Engine - клиентский двухрежимный таймер. Однопоточный и кооперативный:
// все переходы синхронные, хост дёргает Tick раз в секунду.
type Engine struct {
	clock Clock

	mode    Mode
	phase   Phase
	running bool

	// состояние помодоро
	remainingAtPause time.Duration
	runningSince     time.Time

	// состояние замера по задаче
	taskID        *uuid.UUID
	taskTitle     string
	taskStartedAt time.Time

	alert              func()
	onPomodoroComplete func(finished Phase)
	completions        chan Completion
}

func New(clock Clock, opts ...Option) *Engine {
	e := &Engine{
		clock:            clock,
		mode:             ModePomodoro,
		phase:            PhaseFocus,
		remainingAtPause: FocusDuration,
		alert:            func() {},
		completions:      make(chan Completion, 8),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Completions - канал завершённых замеров, на него подписывается поток назначения.
func (e *Engine) Completions() <-chan Completion {
	return e.completions
}

func (e *Engine) Mode() Mode         { return e.mode }
func (e *Engine) Phase() Phase       { return e.phase }
func (e *Engine) IsRunning() bool    { return e.running }
func (e *Engine) TaskID() *uuid.UUID { return e.taskID }
func (e *Engine) TaskTitle() string  { return e.taskTitle }

func presetFor(phase Phase) time.Duration {
	if phase == PhaseBreak {
		return BreakDuration
	}
	return FocusDuration
}

// Remaining пересчитывает остаток фазы помодоро от часов.
func (e *Engine) Remaining() time.Duration {
	if e.mode != ModePomodoro {
		return 0
	}
	if !e.running {
		return e.remainingAtPause
	}
	remaining := e.remainingAtPause - e.clock().Sub(e.runningSince)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Start запускает отсчёт текущей фазы. В режиме замера и на уже
// запущенном таймере ничего не делает.
func (e *Engine) Start() {
	if e.mode != ModePomodoro || e.running {
		return
	}
	e.runningSince = e.clock()
	e.running = true
}

// Toggle переключает запущено/пауза, сохраняя остаток на момент паузы.
func (e *Engine) Toggle() {
	if e.mode != ModePomodoro {
		return
	}
	if e.running {
		e.remainingAtPause = e.Remaining()
		e.running = false
		return
	}
	e.Start()
}

// Reset останавливает отсчёт и возвращает пресет текущей фазы.
func (e *Engine) Reset() {
	if e.mode != ModePomodoro {
		return
	}
	e.running = false
	e.remainingAtPause = presetFor(e.phase)
}

// Tick - кооперативный тик от хоста. Сколько тиков было пропущено - не важно,
// остаток всё равно считается от часов.
func (e *Engine) Tick() {
	if e.mode != ModePomodoro || !e.running {
		return
	}
	if e.Remaining() > 0 {
		return
	}

	// фаза дошла до нуля: сигнал, смена фазы, пресет новой фазы,
	// и пауза - следующую фазу пользователь запускает сам
	finished := e.phase
	e.running = false
	e.alert()
	if e.onPomodoroComplete != nil {
		e.onPomodoroComplete(finished)
	}

	if e.phase == PhaseFocus {
		e.phase = PhaseBreak
	} else {
		e.phase = PhaseFocus
	}
	e.remainingAtPause = presetFor(e.phase)
}

// StartWithTask запускает секундомер по задаче из любого состояния.
// Уже идущий замер сначала останавливается (с событием), идущее помодоро
// ставится на паузу с сохранением остатка.
func (e *Engine) StartWithTask(taskID *uuid.UUID, title string) {
	if e.mode == ModeTask && e.running {
		e.StopTask()
	}
	if e.mode == ModePomodoro && e.running {
		e.remainingAtPause = e.Remaining()
		e.running = false
	}

	e.mode = ModeTask
	e.taskID = taskID
	e.taskTitle = title
	e.taskStartedAt = e.clock()
	e.running = true

	e.alert()
}

// ElapsedSeconds - прошедшие секунды замера, от часов.
func (e *Engine) ElapsedSeconds() int {
	if e.mode != ModeTask {
		return 0
	}
	return int(e.clock().Sub(e.taskStartedAt).Seconds())
}

// ElapsedMinutes - прошедшие минуты с округлением до ближайшей.
func (e *Engine) ElapsedMinutes() int {
	return int(math.Round(float64(e.ElapsedSeconds()) / 60.0))
}

// StopTask завершает замер: ровно одно событие Completion и возврат
// в режим помодоро (остаток фазы сохранён с последней паузы).
func (e *Engine) StopTask() int {
	if e.mode != ModeTask {
		return 0
	}

	elapsedMinutes := e.ElapsedMinutes()
	endedAt := e.clock()

	e.alert()

	completion := Completion{
		ElapsedMinutes: elapsedMinutes,
		TaskID:         e.taskID,
		EndedAt:        endedAt,
	}
	select {
	case e.completions <- completion:
	default:
		logger.Warn("Timer: Канал завершений переполнен, событие потеряно",
			zap.Int("elapsed_minutes", elapsedMinutes))
	}

	e.resetTaskState()
	return elapsedMinutes
}

// CancelTask отбрасывает накопленное время без какого-либо события.
func (e *Engine) CancelTask() {
	if e.mode != ModeTask {
		return
	}
	e.resetTaskState()
}

func (e *Engine) resetTaskState() {
	e.running = false
	e.taskID = nil
	e.taskTitle = ""
	e.taskStartedAt = time.Time{}
	e.mode = ModePomodoro
}

// FormatClock - "MM:SS" для обратного отсчёта.
func FormatClock(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// FormatElapsed - "MM:SS", с часами если замер перевалил за час.
func FormatElapsed(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
