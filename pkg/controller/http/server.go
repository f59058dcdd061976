package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	emergency_service "github.com/mindwell-lab/serene/pkg/service/emergency"
	"github.com/mindwell-lab/serene/pkg/utils/logging"
)

type Server struct {
	router    *chi.Mux
	emergency *emergency_service.Service
}

type Options func(*Server)

// WithEmergency enables the emergency resource endpoints
func WithEmergency(svc *emergency_service.Service) Options {
	return func(s *Server) {
		s.emergency = svc
	}
}

func New(uc UseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(loggingMiddleware)
	r.Use(panicRecoveryMiddleware)
	r.Use(corsMiddleware)

	r.Get("/", statusHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Post("/start", startSessionHandler(uc))
			r.Get("/{sessionID}", getSessionHandler(uc))
			r.Delete("/{sessionID}", deleteSessionHandler(uc))
		})

		r.Route("/conversation", func(r chi.Router) {
			r.Post("/", conversationHandler(uc))
			r.Get("/{sessionID}/history", historyHandler(uc))
			r.Get("/{sessionID}/summary", summaryHandler(uc))
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/stats", statsHandler(uc))
			r.Post("/cleanup", cleanupHandler(uc))
		})

		r.Post("/score/calculate", calculateScoreHandler(uc))

		r.Route("/crisis", func(r chi.Router) {
			r.Post("/check", crisisCheckHandler(uc))
			r.Get("/status", crisisStatusHandler(uc))
			r.Post("/reset", crisisResetHandler(uc))
		})

		if s.emergency != nil {
			r.Route("/emergency", func(r chi.Router) {
				r.Get("/contacts", listContactsHandler(s.emergency))
				r.Post("/contacts", addContactHandler(s.emergency))
				r.Delete("/contacts/{name}/{country}", removeContactHandler(s.emergency))
				r.Get("/message", emergencyMessageHandler(s.emergency))
				r.Post("/message/config", messageConfigHandler(s.emergency))
				r.Get("/validate", validateResourcesHandler(s.emergency))
			})
		}
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{
		"service": "serene",
		"status":  "ok",
	})
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.From(r.Context()).Warn("failed to write response", "error", err)
	}
}
