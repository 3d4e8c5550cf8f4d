package web

import (
	"net/http"

	"club-ladder/internal/club"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

type Server struct {
	club      *club.Service
	logger    zerolog.Logger
	adminHash []byte
	origins   []string
}

type ServerOptions struct {
	// AdminPasswordHash is a bcrypt hash. Empty disables the admin guard.
	AdminPasswordHash string
	CORSOrigins       []string
}

func NewServer(svc *club.Service, logger zerolog.Logger, opts ServerOptions) *Server {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s := &Server{club: svc, logger: logger, origins: origins}
	if opts.AdminPasswordHash != "" {
		s.adminHash = []byte(opts.AdminPasswordHash)
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID(s.logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID", adminPasswordHeader},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/api", func(r chi.Router) {
		r.Get("/ladder", s.handleLadder)

		r.Get("/players", s.handlePlayersList)
		r.Post("/players", s.handlePlayerCreate)
		r.Get("/players/{playerID}", s.handlePlayerShow)
		r.Get("/players/{playerID}/opponents", s.handlePlayerOpponents)
		r.Get("/players/{playerID}/suggestion", s.handlePlayerSuggestion)

		r.Get("/matches", s.handleMatchesList)
		r.Post("/matches", s.handleMatchCreate)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin(s.adminHash))
			r.Delete("/players/{playerID}", s.handlePlayerDelete)
			r.Delete("/matches/{matchID}", s.handleMatchDelete)
		})
	})

	return r
}
