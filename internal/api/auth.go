package api

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := readJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	userID, err := s.auth.Register(r.Context(), in.Username, in.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.log.Info("user registered", fieldRequestID(r), fieldUserID(userID))
	writeText(w, http.StatusCreated, "User created")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.allowLogin(w, r) {
		return
	}

	var in credentials
	if err := readJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.auth.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// allowLogin ограничивает попытки входа по IP. Если хранилище лимитов
// недоступно, запрос пропускается: вход важнее лимита.
func (s *Server) allowLogin(w http.ResponseWriter, r *http.Request) bool {
	if s.loginPerMinute <= 0 {
		return true
	}

	key := fmt.Sprintf("login:ip:%s", s.clientIP(r))
	ok, retry, err := s.limiter.Allow(r.Context(), key, s.loginPerMinute, time.Minute)
	if err != nil {
		s.log.Warn("rate limiter unavailable", fieldRequestID(r), zap.Error(err))
		return true
	}
	if !ok {
		s.log.Info("login rate limited", fieldRequestID(r), s.fieldClientIP(r))
		writeRateLimit(w, retry)
		return false
	}
	return true
}
