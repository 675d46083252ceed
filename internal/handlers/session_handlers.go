package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"focusPlanner/internal/handlers/dto"
	"focusPlanner/internal/logger"
	"focusPlanner/internal/service"

	"go.uber.org/zap"
)

type SessionHandler struct {
	SessionService FocusSessionService
}

func NewSessionHandler(sessionService FocusSessionService) SessionHandler {
	return SessionHandler{
		SessionService: sessionService,
	}
}

func (h *SessionHandler) PostSession(w http.ResponseWriter, r *http.Request) {
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

	var request dto.CreateFocusSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	created, err := h.SessionService.CreateSession(r.Context(), userID, service.CreateSessionInput{
		TaskID:    request.TaskID,
		StartTime: request.StartTime,
		EndTime:   request.EndTime,
		Duration:  request.Duration,
		Memo:      request.Memo,
	})
	if err != nil {
		serviceError(w, err, "create_session")
		return
	}

	logger.Info("HTTP_OUT: Сессия записана",
		zap.String("session_id", created.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, dto.FromSession(created))
}

func (h *SessionHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	startDate := r.URL.Query().Get("startDate")
	endDate := r.URL.Query().Get("endDate")
	if startDate == "" || endDate == "" {
		responseWithError(w, http.StatusBadRequest, "параметры startDate и endDate обязательны")
		return
	}

	from, err := time.Parse(time.RFC3339, startDate)
	if err != nil {
		// клиент может слать и дату без времени
		from, err = time.Parse("2006-01-02", startDate)
		if err != nil {
			responseWithError(w, http.StatusBadRequest, "неверный формат startDate")
			return
		}
	}
	to, err := time.Parse(time.RFC3339, endDate)
	if err != nil {
		to, err = time.Parse("2006-01-02", endDate)
		if err != nil {
			responseWithError(w, http.StatusBadRequest, "неверный формат endDate")
			return
		}
		// дата без времени означает конец дня
		to = to.Add(24*time.Hour - time.Nanosecond)
	}

	sessions, err := h.SessionService.ListRange(r.Context(), userID, from, to)
	if err != nil {
		serviceError(w, err, "list_sessions")
		return
	}

	responseWithJSON(w, http.StatusOK, dto.FromSessionList(sessions))
}

func (h *SessionHandler) GetUnassigned(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	sessions, err := h.SessionService.ListUnassigned(r.Context(), userID)
	if err != nil {
		serviceError(w, err, "list_unassigned")
		return
	}

	responseWithJSON(w, http.StatusOK, dto.FromSessionList(sessions))
}

func (h *SessionHandler) LinkToTask(w http.ResponseWriter, r *http.Request) {
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

	var request dto.LinkSessionRequest
	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	linked, err := h.SessionService.LinkToTask(r.Context(), userID, id, request.TaskID, request.Memo)
	if err != nil {
		serviceError(w, err, "link_session")
		return
	}

	logger.Info("HTTP_OUT: Сессия привязана",
		zap.String("session_id", linked.UUID.String()),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, dto.FromSession(linked))
}
