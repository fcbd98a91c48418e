package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/dialectic/internal/logging"
	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/ports"
	"github.com/aretw0/dialectic/pkg/session"
	"github.com/aretw0/dialectic/pkg/strategy"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps request bodies; snapshots are the largest payload.
const maxBodyBytes = 1 << 20

// Server exposes a DialogueEngine over JSON HTTP.
type Server struct {
	Engine  ports.DialogueEngine
	Content ports.ContentRegistry
	Slots   *session.Manager
	Streams *StreamManager

	logger  *slog.Logger
	version string

	// mutating keeps each broadcast diff to a single request's changes.
	mutating sync.Mutex
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithContent enables GET /graphs.
func WithContent(content ports.ContentRegistry) Option {
	return func(s *Server) { s.Content = content }
}

// WithSlots enables the /saves routes.
func WithSlots(slots *session.Manager) Option {
	return func(s *Server) { s.Slots = slots }
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = strings.TrimSpace(v) }
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.DialogueEngine, opts ...Option) http.Handler {
	s := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s.Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graphs", s.ListGraphs)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/dialogue", func(r chi.Router) {
		r.Get("/", s.GetDialogue)
		r.Post("/", s.StartDialogue)
		r.Delete("/", s.EndDialogue)
		r.Get("/options", s.GetOptions)
		r.Post("/options/{optionID}", s.SelectOption)
		r.Post("/tangent", s.TakeTangent)
		r.Post("/actions", s.ApplyAction)
		r.Get("/grade", s.GetGrade)
	})

	r.Get("/snapshot", s.GetSnapshot)
	r.Put("/snapshot", s.PutSnapshot)

	r.Route("/saves", func(r chi.Router) {
		r.Get("/", s.ListSaves)
		r.Post("/", s.CreateSave)
		r.Put("/{slotID}", s.CreateSave)
		r.Post("/{slotID}/resume", s.ResumeSave)
		r.Delete("/{slotID}", s.DeleteSave)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// View is the engine state as shown to a client.
type View struct {
	Active    bool                     `json:"active"`
	GraphID   string                   `json:"graph_id,omitempty"`
	Stage     *domain.Stage            `json:"stage,omitempty"`
	Options   []domain.AvailableOption `json:"options,omitempty"`
	History   []domain.HistoryEntry    `json:"history,omitempty"`
	Resources domain.ResourceState     `json:"resources"`
	Knowledge domain.KnowledgeState    `json:"knowledge"`
	Mentors   map[string]int           `json:"mentors,omitempty"`
}

// StartRequest is the body of POST /dialogue.
type StartRequest struct {
	GraphID string `json:"graph_id"`
}

// ActionRequest is the body of POST /dialogue/actions.
type ActionRequest struct {
	Kind        string `json:"kind"`
	CharacterID string `json:"character_id"`
	StageID     string `json:"stage_id"`
}

// ActionResponse reports the applied outcome together with the new view.
type ActionResponse struct {
	Text    string          `json:"text,omitempty"`
	JumpTo  string          `json:"jump_to,omitempty"`
	Options []domain.Option `json:"options,omitempty"`
	View    View            `json:"view"`
}

// GradeResponse is the body of GET /dialogue/grade.
type GradeResponse struct {
	Grade domain.Grade `json:"grade"`
}

// SaveResponse is returned after a checkpoint.
type SaveResponse struct {
	SlotID string `json:"slot_id"`
}

func (s *Server) view() View {
	snap := s.Engine.Snapshot()
	v := View{
		Resources: snap.Resources,
		Knowledge: snap.Knowledge,
		Mentors:   snap.Relationships,
	}
	if snap.Session == nil {
		return v
	}
	v.Active = true
	v.GraphID = snap.Session.GraphID
	v.History = snap.Session.History
	if stage, ok := s.Engine.CurrentNode(); ok {
		v.Stage = stage
	}
	if options, err := s.Engine.AvailableOptions(); err == nil {
		v.Options = options
	}
	return v
}

// mutate runs fn and broadcasts the resulting diff to event subscribers.
// Mutations through the server are serialised. Changes made to the engine
// by other hosts between the two snapshots still show up in the diff.
func (s *Server) mutate(ctx context.Context, fn func(context.Context) error) error {
	s.mutating.Lock()
	defer s.mutating.Unlock()

	before := s.Engine.Snapshot()
	if err := fn(ctx); err != nil {
		return err
	}
	if diff := domain.Diff(before, s.Engine.Snapshot()); diff != nil {
		if bytes, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(string(bytes))
		}
	}
	return nil
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "dialectic-http",
		"version": s.version,
	})
}

// ListGraphs handles the GET /graphs request.
func (s *Server) ListGraphs(w http.ResponseWriter, r *http.Request) {
	if s.Content == nil {
		http.Error(w, "content listing not configured", http.StatusNotImplemented)
		return
	}
	ids, err := s.Content.ListGraphs()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetDialogue handles the GET /dialogue request.
func (s *Server) GetDialogue(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.view())
}

// StartDialogue handles the POST /dialogue request.
func (s *Server) StartDialogue(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.GraphID == "" {
		s.fail(w, r, fmt.Errorf("%w: graph_id is required", domain.ErrInvalidArgument))
		return
	}
	err := s.mutate(r.Context(), func(ctx context.Context) error {
		return s.Engine.StartDialogue(ctx, body.GraphID)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, s.view())
}

// EndDialogue handles the DELETE /dialogue request.
func (s *Server) EndDialogue(w http.ResponseWriter, r *http.Request) {
	if err := s.mutate(r.Context(), s.Engine.EndDialogue); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.view())
}

// GetOptions handles the GET /dialogue/options request.
// ?armed=<kind> previews the options as decorated for that action.
func (s *Server) GetOptions(w http.ResponseWriter, r *http.Request) {
	kind, err := strategy.ParseKind(r.URL.Query().Get("armed"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	options, err := s.Engine.EnhanceOptions(kind)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, options)
}

// SelectOption handles the POST /dialogue/options/{optionID} request.
func (s *Server) SelectOption(w http.ResponseWriter, r *http.Request) {
	optionID := chi.URLParam(r, "optionID")
	err := s.mutate(r.Context(), func(ctx context.Context) error {
		return s.Engine.SelectOption(ctx, optionID)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.view())
}

// TakeTangent handles the POST /dialogue/tangent request.
func (s *Server) TakeTangent(w http.ResponseWriter, r *http.Request) {
	if err := s.mutate(r.Context(), s.Engine.TakeTangent); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.view())
}

// ApplyAction handles the POST /dialogue/actions request.
func (s *Server) ApplyAction(w http.ResponseWriter, r *http.Request) {
	var body ActionRequest
	if !s.decode(w, r, &body) {
		return
	}
	kind, err := strategy.ParseKind(body.Kind)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if body.StageID == "" {
		if stage, ok := s.Engine.CurrentNode(); ok {
			body.StageID = stage.ID
		}
	}

	var out strategy.Outcome
	err = s.mutate(r.Context(), func(ctx context.Context) error {
		var err error
		out, err = s.Engine.ApplyStrategicAction(ctx, kind, body.CharacterID, body.StageID)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := ActionResponse{Options: out.NewOptions, View: s.view()}
	if out.StageUpdate != nil {
		resp.Text = out.StageUpdate.Text
		resp.JumpTo = out.StageUpdate.JumpTo
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetGrade handles the GET /dialogue/grade request.
func (s *Server) GetGrade(w http.ResponseWriter, r *http.Request) {
	grade, err := s.Engine.Grade()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, GradeResponse{Grade: grade})
}

// GetSnapshot handles the GET /snapshot request.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.Snapshot())
}

// PutSnapshot handles the PUT /snapshot request.
func (s *Server) PutSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap domain.Snapshot
	if !s.decode(w, r, &snap) {
		return
	}
	err := s.mutate(r.Context(), func(ctx context.Context) error {
		return s.Engine.Restore(ctx, &snap)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.view())
}

// ListSaves handles the GET /saves request.
func (s *Server) ListSaves(w http.ResponseWriter, r *http.Request) {
	if !s.slotsEnabled(w) {
		return
	}
	slots, err := s.Slots.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, slots)
}

// CreateSave handles POST /saves (new slot) and PUT /saves/{slotID}.
func (s *Server) CreateSave(w http.ResponseWriter, r *http.Request) {
	if !s.slotsEnabled(w) {
		return
	}
	slot, err := s.Slots.Checkpoint(r.Context(), chi.URLParam(r, "slotID"), s.Engine)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, SaveResponse{SlotID: slot})
}

// ResumeSave handles the POST /saves/{slotID}/resume request.
func (s *Server) ResumeSave(w http.ResponseWriter, r *http.Request) {
	if !s.slotsEnabled(w) {
		return
	}
	slotID := chi.URLParam(r, "slotID")
	err := s.mutate(r.Context(), func(ctx context.Context) error {
		return s.Slots.Resume(ctx, slotID, s.Engine)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.view())
}

// DeleteSave handles the DELETE /saves/{slotID} request.
func (s *Server) DeleteSave(w http.ResponseWriter, r *http.Request) {
	if !s.slotsEnabled(w) {
		return
	}
	if err := s.Slots.Delete(r.Context(), chi.URLParam(r, "slotID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents handles the GET /events request (SSE of snapshot diffs).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// -- Helpers --

func (s *Server) slotsEnabled(w http.ResponseWriter) bool {
	if s.Slots == nil {
		http.Error(w, "save slots not configured", http.StatusNotImplemented)
		return false
	}
	return true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownGraph),
		errors.Is(err, domain.ErrUnknownStage),
		errors.Is(err, domain.ErrUnknownOption),
		errors.Is(err, domain.ErrUnknownMentor),
		errors.Is(err, domain.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOptionLocked):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNoActiveDialogue):
		return http.StatusConflict
	case errors.Is(err, domain.ErrHandlerFault):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
