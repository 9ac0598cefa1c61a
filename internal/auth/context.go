package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/VitaminP8/blogd/internal/model"
)

type contextKey string

const userIDKey = contextKey("userID")

// Verifier проверяет токен и возвращает id пользователя.
type Verifier interface {
	Verify(token string) (string, error)
}

// Сохраняет userID в контексте
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Достает userID из контекста
func GetUserIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(userIDKey).(string)
	if !ok || id == "" {
		return "", errors.New("user ID not found in context")
	}
	return id, nil
}

// AuthMiddleware пропускает запрос дальше только с валидным Bearer токеном и
// кладет userID в context. Иначе ответ формирует fail.
func AuthMiddleware(v Verifier, fail func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := extractTokenFromHeader(r.Header.Get("Authorization"))
			if tokenStr == "" {
				fail(w, r, fmt.Errorf("%w: missing bearer token", model.ErrInvalidToken))
				return
			}

			userID, err := v.Verify(tokenStr)
			if err != nil {
				fail(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func extractTokenFromHeader(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
