package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server combines all handlers and registers their routes
type Server struct {
	*PostsHandler
	*HealthHandler
}

// NewServer creates a new server from the individual handlers
func NewServer(postsHandler *PostsHandler, healthHandler *HealthHandler) *Server {
	return &Server{
		PostsHandler:  postsHandler,
		HealthHandler: healthHandler,
	}
}

// Routes registers every API route on r. Mutating routes are wrapped in the
// given middlewares (session, rate limit).
func (s *Server) Routes(r chi.Router, mutating ...func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health/live", s.GetLiveness)
		r.Get("/health/ready", s.GetReadiness)

		r.Get("/posts", s.ListPosts)
		r.Get("/post/{id}", s.GetPost)

		r.Group(func(r chi.Router) {
			r.Use(mutating...)
			r.Post("/add-post", s.CreatePost)
			r.Put("/post/{id}", s.UpdatePost)
			r.Delete("/post/{id}", s.DeletePost)
		})
	})
}

// NotFound answers unknown routes with a JSON error
func (s *Server) NotFound(w http.ResponseWriter, r *http.Request) {
	s.PostsHandler.HandleError(w, r, errRouteNotFound)
}

// MethodNotAllowed answers known paths used with the wrong method
func (s *Server) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.PostsHandler.WriteJSONError(w, r, "METHOD_NOT_ALLOWED", "method not allowed", http.StatusMethodNotAllowed)
}
