// Package api отдает auth-сервис и хранилища постов и комментариев по HTTP.
package api

import (
	"context"
	"net/http"
	"net/netip"
	"time"

	"github.com/VitaminP8/blogd/internal/auth"
	"github.com/VitaminP8/blogd/internal/comment"
	"github.com/VitaminP8/blogd/internal/post"
	"github.com/VitaminP8/blogd/internal/rate"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Authenticator описывает, что HTTP-слою нужно от auth.Service.
type Authenticator interface {
	auth.Verifier
	Register(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (auth.Session, error)
}

type Options struct {
	Auth     Authenticator
	Posts    post.PostStorage
	Comments comment.CommentStorage
	Limiter  rate.Limiter
	// LoginPerMinute: попыток входа с одного IP в минуту, 0 отключает лимит.
	LoginPerMinute int
	// TrustedProxies: только от этих адресов принимается X-Forwarded-For.
	TrustedProxies []netip.Prefix
	Logger         *zap.Logger
}

type Server struct {
	auth           Authenticator
	posts          post.PostStorage
	comments       comment.CommentStorage
	limiter        rate.Limiter
	loginPerMinute int
	trustedProxies []netip.Prefix
	log            *zap.Logger
	handler        http.Handler
}

func NewServer(opts Options) *Server {
	s := &Server{
		auth:           opts.Auth,
		posts:          opts.Posts,
		comments:       opts.Comments,
		limiter:        opts.Limiter,
		loginPerMinute: opts.LoginPerMinute,
		trustedProxies: opts.TrustedProxies,
		log:            opts.Logger,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.limiter == nil {
		s.limiter = rate.NewMemory()
	}

	s.handler = s.recoverPanics(s.logRequests(s.routes()))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	requireAuth := auth.AuthMiddleware(s.auth, s.writeError)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	r.HandleFunc("/posts", s.handleListPosts).Methods(http.MethodGet)
	r.Handle("/posts", requireAuth(http.HandlerFunc(s.handleCreatePost))).Methods(http.MethodPost)
	r.HandleFunc("/posts/{id}", s.handleGetPost).Methods(http.MethodGet)
	r.HandleFunc("/posts/{id}/comments", s.handleListComments).Methods(http.MethodGet)
	r.Handle("/posts/{id}/comments", requireAuth(http.HandlerFunc(s.handleCreateComment))).Methods(http.MethodPost)

	return r
}

// HTTPServer оборачивает Server в http.Server с таймаутами.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok")
}
