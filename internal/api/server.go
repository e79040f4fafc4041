package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/dgallion1/pdfchat/internal/chat"
	"github.com/dgallion1/pdfchat/internal/config"
	"github.com/dgallion1/pdfchat/internal/localstore"
	"github.com/dgallion1/pdfchat/internal/session"
	"github.com/dgallion1/pdfchat/internal/vault"
)

// Server is the HTTP API the reader UI talks to.
type Server struct {
	router   chi.Router
	sessions *session.Manager
	store    *localstore.Store
	vault    *vault.Vault
	gemini   *chat.GeminiClient
	validate *validator.Validate
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(sessions *session.Manager, store *localstore.Store, v *vault.Vault, gemini *chat.GeminiClient, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		sessions: sessions,
		store:    store,
		vault:    v,
		gemini:   gemini,
		validate: validator.New(),
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/documents", s.handleOpenDocument)

		r.Route("/api/documents/{sessionID}", func(r chi.Router) {
			r.Use(s.sessionCtx)
			r.Get("/outline", s.handleOutline)
			r.Post("/resolve", s.handleResolve)

			r.Get("/selections", s.handleListSelections)
			r.Post("/selections", s.handleAddSelection)
			r.Delete("/selections", s.handleClearSelections)
			r.Delete("/selections/{title}", s.handleRemoveSelection)

			r.Post("/context", s.handleBuildContext)
			r.Post("/chat", s.handleChat)
			r.Post("/chat/clear", s.handleClearChat)

			r.Delete("/", s.handleCloseDocument)
		})

		r.Post("/api/render", s.handleRenderMarkdown)

		r.Get("/api/history", s.handleHistory)
		r.Put("/api/history/{fileName}/page", s.handleSetLastPage)
		r.Put("/api/history/{fileName}/outline-state", s.handleSetOutlineState)

		r.Get("/api/key", s.handleKeyStatus)
		r.Put("/api/key", s.handleStoreKey)
		r.Post("/api/key/unlock", s.handleUnlockKey)
		r.Delete("/api/key", s.handleDeleteKey)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
