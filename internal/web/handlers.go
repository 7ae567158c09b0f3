package web

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"wayfarer/internal/config"
	"wayfarer/internal/saves"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Handlers bundles the HTTP surface dependencies.
type Handlers struct {
	config      *config.Config
	hub         *StateHub
	sessions    *SessionManager
	saveManager *saves.Manager
}

// NewHandlers wires the handler set.
func NewHandlers(cfg *config.Config, hub *StateHub, sessions *SessionManager, saveManager *saves.Manager) *Handlers {
	return &Handlers{
		config:      cfg,
		hub:         hub,
		sessions:    sessions,
		saveManager: saveManager,
	}
}

// HealthCheck reports liveness plus a few gauges.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":           "ok",
		"service":          "wayfarer",
		"sessions":         h.sessions.Count(),
		"sessions_created": h.sessions.CreatedTotal(),
		"watchers":         h.hub.GetClientCount(),
		"typewriter_cps":   h.config.Game.TypewriterCPS,
	})
}

// WatchSession upgrades to WebSocket and streams the session's transitions.
func (h *Handlers) WatchSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if _, ok := h.sessions.Get(sessionID); !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Web] WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		ID:        generateSessionID(),
		SessionID: sessionID,
		Conn:      conn,
		Send:      make(chan []byte, 64),
		Hub:       h.hub,
	}
	h.hub.register <- client
	go client.readPump()
}

// CORS middleware
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Max-Age", "300")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter assembles the HTTP surface.
func NewRouter(cfg *config.Config, hub *StateHub, sessions *SessionManager, saveManager *saves.Manager) *chi.Mux {
	r := chi.NewRouter()

	// Request logging middleware
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("REQUEST: %s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	})
	r.Use(corsMiddleware)

	h := NewHandlers(cfg, hub, sessions, saveManager)

	r.Get("/health", h.HealthCheck)
	r.Get("/ws/sessions/{id}", h.WatchSession)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", h.CreateSession)
		r.Get("/sessions/{id}/state", h.GetSessionState)
		r.Post("/sessions/{id}/intents", h.DispatchIntent)
		r.Post("/sessions/{id}/save", h.SaveSession)
		r.Post("/sessions/{id}/load", h.LoadSession)
		r.Delete("/sessions/{id}", h.DeleteSession)

		r.Get("/saves", h.ListSaves)
		r.Delete("/saves/{id}", h.DeleteSave)
	})

	return r
}
