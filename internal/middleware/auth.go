package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"focusPlanner/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const UserIdKey contextKey = "user_id"

// Auth проверяет Bearer-токен (HS256) и кладёт user id из claim "sub" в контекст.
// Выпуск токенов - зона ответственности отдельного auth-сервиса.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, r, "отсутствует Bearer токен")
				return
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("AUTH: Невалидный токен",
					zap.Error(err),
					zap.String("client_ip", r.RemoteAddr))
				unauthorized(w, r, "невалидный токен")
				return
			}

			sub, err := token.Claims.GetSubject()
			if err != nil || sub == "" {
				unauthorized(w, r, "в токене нет subject")
				return
			}

			userID, err := uuid.Parse(sub)
			if err != nil {
				unauthorized(w, r, "subject не является uuid")
				return
			}

			ctx := context.WithValue(r.Context(), UserIdKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIdKey).(uuid.UUID)
	return id, ok
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error":      "unauthorized",
		"message":    message,
		"request_id": GetRequestID(r.Context()),
	})
}
