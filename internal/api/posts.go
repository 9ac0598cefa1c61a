package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/VitaminP8/blogd/internal/auth"
	"github.com/VitaminP8/blogd/internal/model"
	"github.com/gorilla/mux"
)

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type createCommentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserIDFromContext(r.Context())
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", model.ErrInvalidToken, err))
		return
	}

	var in createPostRequest
	if err := readJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.posts.CreatePost(r.Context(), &model.Post{
		Title:    in.Title,
		Content:  in.Content,
		AuthorID: userID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.posts.GetAllPosts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.posts.GetPostById(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserIDFromContext(r.Context())
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", model.ErrInvalidToken, err))
		return
	}

	var in createCommentRequest
	if err := readJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.comments.CreateComment(r.Context(), &model.Comment{
		Content:  in.Content,
		AuthorID: userID,
		PostID:   mux.Vars(r)["id"],
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	comments, err := s.comments.GetComments(r.Context(), mux.Vars(r)["id"], limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// queryInt читает неотрицательный параметр запроса, отсутствующий считается 0.
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", model.ErrValidation, key)
	}
	return n, nil
}
