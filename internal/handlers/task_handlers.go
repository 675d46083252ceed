package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"focusPlanner/internal/handlers/dto"
	"focusPlanner/internal/logger"
	"focusPlanner/internal/middleware"
	"focusPlanner/internal/models/task"
	"focusPlanner/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
	WearService WearSyncService
}

func NewTaskHandler(taskService TaskService, wearService WearSyncService) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
		WearService: wearService,
	}
}

func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		logger.Warn("HTTP: Запрос без пользователя в контексте",
			zap.String("path", r.URL.Path))
		responseWithError(w, http.StatusUnauthorized, "пользователь не аутентифицирован")
		return uuid.Nil, false
	}
	return userID, true
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "не удалось получить id: "+err.Error())
		return uuid.Nil, false
	}
	if id == uuid.Nil {
		responseWithError(w, http.StatusBadRequest, "id не может быть пустым")
		return uuid.Nil, false
	}
	return id, true
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		responseWithError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	healthCheck(w)
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if request.Title == "" {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "title"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "название не может быть пустым")
		return
	}

	if request.StartTime != nil && !isValidClockTime(*request.StartTime) {
		responseWithError(w, http.StatusBadRequest, "startTime должен быть в формате HH:MM")
		return
	}

	options := []task.TaskOption{
		task.WithDescription(request.Description),
		task.WithScheduledDate(request.ScheduledDate),
		task.WithStartTime(request.StartTime),
		task.WithPlannedDuration(request.Duration),
		task.WithMandalartCell(request.MandalartGridIndex, request.MandalartCellIndex),
	}
	if request.IsCompleted != nil {
		options = append(options, task.WithCompleted(*request.IsCompleted))
	}

	created, err := h.TaskService.CreateTask(r.Context(), userID, request.Title, options...)
	if err != nil {
		serviceError(w, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, dto.FromTask(created))
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var date *string
	if d := r.URL.Query().Get("date"); d != "" {
		date = &d
	}

	tasks, err := h.TaskService.ListTasks(r.Context(), userID, date)
	if err != nil {
		serviceError(w, err, "list_tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) GetBrainDump(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	tasks, err := h.TaskService.ListBrainDump(r.Context(), userID)
	if err != nil {
		serviceError(w, err, "list_brain_dump")
		return
	}

	responseWithJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) GetWeek(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	startDate := r.URL.Query().Get("startDate")
	if startDate == "" {
		responseWithError(w, http.StatusBadRequest, "параметр startDate обязателен")
		return
	}

	tasks, err := h.TaskService.ListWeek(r.Context(), userID, startDate)
	if err != nil {
		serviceError(w, err, "list_week")
		return
	}

	responseWithJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	t, err := h.TaskService.GetTask(r.Context(), userID, id)
	if err != nil {
		serviceError(w, err, "get_task")
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.String("task_id", t.UUID.String()),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, dto.FromTask(t))
}

func (h *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверно переданы параметры обновления: "+err.Error())
		return
	}

	if request.StartTime != nil && !isValidClockTime(*request.StartTime) {
		responseWithError(w, http.StatusBadRequest, "startTime должен быть в формате HH:MM")
		return
	}

	// только присланные поля превращаются в опции
	options := []task.TaskOption{}
	if request.Title != nil {
		options = append(options, task.WithTitle(*request.Title))
	}
	if request.Description != nil {
		options = append(options, task.WithDescription(request.Description))
	}
	if request.IsCompleted != nil {
		options = append(options, task.WithCompleted(*request.IsCompleted))
	}
	if request.ScheduledDate != nil {
		options = append(options, task.WithScheduledDate(request.ScheduledDate))
	}
	if request.StartTime != nil {
		options = append(options, task.WithStartTime(request.StartTime))
	}
	if request.Duration != nil {
		options = append(options, task.WithPlannedDuration(request.Duration))
	}
	if request.TimerStartedAt != nil {
		options = append(options, task.WithTimerStartedAt(request.TimerStartedAt))
	}
	if request.MandalartGridIndex != nil || request.MandalartCellIndex != nil {
		options = append(options, task.WithMandalartCell(request.MandalartGridIndex, request.MandalartCellIndex))
	}
	if request.GoogleEventID != nil {
		options = append(options, task.WithGoogleEventID(request.GoogleEventID))
	}

	updated, err := h.TaskService.UpdateTask(r.Context(), userID, id, options...)
	if err != nil {
		serviceError(w, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", updated.UUID.String()),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, dto.FromTask(updated))
}

func (h *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.TaskService.DeleteTask(r.Context(), userID, id); err != nil {
		serviceError(w, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

// WearSync принимает отчёт о сессии с часов.
func (h *TaskHandler) WearSync(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.WearSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	resolved, err := h.WearService.Sync(r.Context(), userID, service.WearReport{
		Title:           request.Title,
		StartTimeMillis: request.StartTimeMillis,
		EndTimeMillis:   request.EndTimeMillis,
		DurationMinutes: request.DurationMinutes,
		TaskID:          request.TaskID,
	})
	if err != nil {
		serviceError(w, err, "wear_sync")
		return
	}

	logger.Info("HTTP_OUT: Отчёт часов обработан",
		zap.Bool("has_task", resolved != nil),
		zap.Duration("ms", time.Since(start)))

	if resolved == nil {
		// дубликат без привязанной задачи
		responseWithJSON(w, http.StatusOK, nil)
		return
	}
	responseWithJSON(w, http.StatusOK, dto.FromTask(resolved))
}
