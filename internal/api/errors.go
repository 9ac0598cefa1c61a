package api

import (
	"errors"
	"net/http"

	"github.com/VitaminP8/blogd/internal/model"
	"go.uber.org/zap"
)

const internalErrorMessage = "Something went wrong!"

// classify сопоставляет доменную ошибку со статусом и текстом для клиента.
// Для неверных учетных данных текст один и тот же, существует пользователь или нет.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrDuplicateUsername):
		return http.StatusConflict, "Username already taken"
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid"
	case errors.Is(err, model.ErrInvalidToken):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

// writeError: единственное место, где ошибки превращаются в HTTP-ответы.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)

	fields := []zap.Field{
		fieldRequestID(r),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("user_id", requestUser(r)),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", fields...)
	} else {
		s.log.Info("request rejected", fields...)
	}

	writeText(w, status, msg)
}
