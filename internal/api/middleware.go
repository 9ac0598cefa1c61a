package api

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/VitaminP8/blogd/internal/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.status == 0 {
		rec.status = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

// logRequests пишет одну строку на запрос и проставляет X-Request-ID.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		s.log.Info("http request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
			s.fieldClientIP(r),
		)
	})
}

// recoverPanics превращает панику обработчика в 500, процесс продолжает работу.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.log.Error("panic in handler",
				zap.Any("panic", rec),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Stack("stack"),
			)
			writeText(w, http.StatusInternalServerError, internalErrorMessage)
		}()
		next.ServeHTTP(w, r)
	})
}

// clientIP возвращает адрес соединения. X-Forwarded-For учитывается, только
// если соединение пришло от доверенного прокси: тогда берется самый правый
// адрес цепочки, который не принадлежит доверенным прокси.
func (s *Server) clientIP(r *http.Request) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		remote = host
	}

	addr, err := netip.ParseAddr(remote)
	if err != nil || !s.trustedProxy(addr) {
		return remote
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			// дальше цепочке верить нельзя
			break
		}
		if !s.trustedProxy(hop) {
			return hop.Unmap().String()
		}
	}
	return remote
}

func (s *Server) trustedProxy(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range s.trustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func fieldRequestID(r *http.Request) zap.Field {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return zap.String("request_id", id)
}

func (s *Server) fieldClientIP(r *http.Request) zap.Field {
	return zap.String("client_ip", s.clientIP(r))
}

func fieldUserID(id string) zap.Field {
	return zap.String("user_id", id)
}

func requestUser(r *http.Request) string {
	id, _ := auth.GetUserIDFromContext(r.Context())
	return id
}
