package handlers

import (
	"errors"
	"net/http"

	"focusPlanner/internal/logger"
	"focusPlanner/internal/service"

	"go.uber.org/zap"
)

// handleBusinessError переводит ошибку бизнес-слоя в HTTP-ответ.
// Возвращает false, если ошибка не бизнесовая.
func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithJSON(w, statusCode, map[string]any{
		"error":   businessErr.Code,
		"message": businessErr.Message,
		"details": businessErr.Details,
	})
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case "NOT_FOUND":
		return http.StatusNotFound
	case "FORBIDDEN":
		return http.StatusForbidden
	case "VALIDATION_ERROR":
		return http.StatusBadRequest
	case "VERSION_CONFLICT":
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// serviceError - общий выход для ошибок сервиса: бизнесовые мапятся на
// свой статус, остальные уходят 500-кой.
func serviceError(w http.ResponseWriter, err error, operation string) {
	if handleBusinessError(w, err) {
		return
	}

	logger.Error("HTTP: Ошибка Service", err, zap.String("operation", operation))
	responseWithError(w, http.StatusInternalServerError, err.Error())
}
