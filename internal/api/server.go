package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"statewatch/internal/engine"
	"statewatch/internal/logging"
	"statewatch/internal/metrics"
	"statewatch/internal/notify"
	"statewatch/internal/record"
)

// Server exposes the save pipeline over HTTP for hosts that drive
// statewatch remotely instead of embedding it.
type Server struct {
	engine  *engine.Engine
	records *record.Store
	inbox   *notify.InboxStore
	metrics *metrics.Metrics
	logger  *slog.Logger
	started time.Time
}

// NewServer wires the HTTP surface. inbox and m may be nil when the
// in-app channel or metrics are disabled; the matching routes then
// report unavailability.
func NewServer(eng *engine.Engine, records *record.Store, inbox *notify.InboxStore, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		engine:  eng,
		records: records,
		inbox:   inbox,
		metrics: m,
		logger:  logging.WithComponent(logger, "api"),
		started: time.Now().UTC(),
	}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Route("/records/{recordType}/{name}", func(r chi.Router) {
			r.Get("/", s.handleGetRecord)
			r.Post("/save", s.handleSave)
		})
		r.Get("/inbox/{userID}", s.handleInbox)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	Status  string         `json:"status"`
	Uptime  string         `json:"uptime"`
	Records map[string]int `json:"records"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.records.Stats(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "collect record stats", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:  "ok",
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Records: stats,
	})
}

type recordResponse struct {
	Type            string                  `json:"type"`
	Name            string                  `json:"name"`
	Owner           string                  `json:"owner,omitempty"`
	Fields          map[string]string       `json:"fields"`
	ExtraRecipients []record.ExtraRecipient `json:"extra_recipients,omitempty"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	ref := refFromRequest(r)
	rec, err := s.records.GetByRef(r.Context(), ref.Type, ref.Name)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "load record", err)
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "record not found"})
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{
		Type:            rec.Type,
		Name:            rec.Name,
		Owner:           rec.Owner,
		Fields:          rec.Fields,
		ExtraRecipients: rec.ExtraRecipients,
		UpdatedAt:       rec.UpdatedAt,
	})
}

type saveRequest struct {
	Owner  string            `json:"owner"`
	Fields map[string]string `json:"fields"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	ref := refFromRequest(r)

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	rec, err := s.engine.Save(r.Context(), ref, func(rec *record.Record) error {
		if owner := strings.TrimSpace(req.Owner); owner != "" {
			rec.Owner = owner
		}
		for key, value := range req.Fields {
			rec.SetField(key, value)
		}
		return nil
	})
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "save record", err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{
		Type:      rec.Type,
		Name:      rec.Name,
		Owner:     rec.Owner,
		Fields:    rec.Fields,
		UpdatedAt: rec.UpdatedAt,
	})
}

type inboxEntryResponse struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body,omitempty"`
	Record    string    `json:"record"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	if s.inbox == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "in-app channel disabled"})
		return
	}
	userID := chi.URLParam(r, "userID")
	unreadOnly := r.URL.Query().Get("unread") == "true"

	entries, err := s.inbox.Inbox(r.Context(), userID, unreadOnly)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "list inbox", err)
		return
	}
	payload := make([]inboxEntryResponse, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, inboxEntryResponse{
			ID:        entry.ID,
			Subject:   entry.Subject,
			Body:      entry.Body,
			Record:    entry.Ref.String(),
			Read:      entry.Read,
			CreatedAt: entry.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

func refFromRequest(r *http.Request) record.Ref {
	return record.Ref{
		Type: chi.URLParam(r, "recordType"),
		Name: chi.URLParam(r, "name"),
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, operation string, err error) {
	s.logger.Error("request failed",
		logging.String("operation", operation),
		logging.Error(err))
	writeJSON(w, status, map[string]string{"error": operation + " failed"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
