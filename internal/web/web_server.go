package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/BetterCallFirewall/Cryptoscope/internal/broker"
	"github.com/BetterCallFirewall/Cryptoscope/internal/capture"
	"github.com/BetterCallFirewall/Cryptoscope/internal/codec"
	"github.com/BetterCallFirewall/Cryptoscope/internal/config"
	"github.com/BetterCallFirewall/Cryptoscope/internal/keyring"
	"github.com/BetterCallFirewall/Cryptoscope/internal/models"
	"github.com/BetterCallFirewall/Cryptoscope/internal/storage"
	"github.com/BetterCallFirewall/Cryptoscope/internal/view"
	"github.com/BetterCallFirewall/Cryptoscope/internal/websocket"
)

// Session is the state of one inspection session shared by all handlers.
type Session struct {
	Store    *storage.MemoryStorage
	Keys     *keyring.Ring
	Codec    *codec.Codec
	View     *view.Machine
	Recorder *capture.Recorder
}

// NewSession wires store, keyring, codec, view machine and recorder together.
func NewSession(cfg *config.Config) (*Session, error) {
	ring, err := keyring.New(cfg.Keys.Environments, cfg.Keys.DefaultEnvironment)
	if err != nil {
		return nil, err
	}

	store := storage.NewMemoryStorage()
	c := codec.NewCodec(ring)

	return &Session{
		Store:    store,
		Keys:     ring,
		Codec:    c,
		View:     view.NewMachine(store, c),
		Recorder: capture.NewRecorder(capture.NewFilter(cfg.Capture.Markers), store),
	}, nil
}

type Server struct {
	config  config.WebConfig
	session *Session
	server  *http.Server
	hub     *websocket.Hub
	events  *broker.Broker[models.Event]
}

func NewServer(cfg config.WebConfig, session *Session, hub *websocket.Hub, events *broker.Broker[models.Event]) *Server {
	s := &Server{
		config:  cfg,
		session: session,
		hub:     hub,
		events:  events,
	}
	s.server = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	session.Store.SetNotifier(s)
	return s
}

// Router builds the HTTP handler with every route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	if len(s.config.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.config.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/exchanges", s.handleListExchanges)
		r.Delete("/exchanges", s.handleClearExchanges)
		r.Get("/exchanges/{id}", s.handleGetExchange)
		r.Post("/exchanges/{id}/select", s.handleSelectExchange)

		r.Get("/selection", s.handleGetSelection)
		r.Post("/selection/fields/{field}/toggle", s.handleToggleField)

		r.Get("/environments", s.handleGetEnvironments)
		r.Put("/environment", s.handleSetEnvironment)
		r.Post("/decrypt", s.handleDecrypt)

		r.Post("/capture", s.handleCapture)
		r.Post("/capture/har", s.handleImportHAR)
	})

	r.Get("/ws", s.hub.ServeWS)
	r.Get("/ws/capture", s.handleCaptureStream)

	return r
}

func (s *Server) Start() error {
	log.Printf("🌐 Web server listening on %s", s.config.ListenAddr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Notify publishes store events to the session topic.
func (s *Server) Notify(ev models.Event) {
	s.events.Publish(models.SessionTopic, ev)
}

// Pump forwards session events to websocket clients until ctx is done.
func (s *Server) Pump(ctx context.Context) {
	events := s.events.Subscribe(models.SessionTopic)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data := ev.Data
			if e, isExchange := data.(models.Exchange); isExchange {
				data = websocket.NewListEntry(e)
			}
			s.hub.Broadcast(ev.Type, data)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
