package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aretw0/taxwizard/internal/presentation/graph"
	"github.com/aretw0/taxwizard/internal/runtime"
	"github.com/aretw0/taxwizard/pkg/domain"
	"github.com/aretw0/taxwizard/pkg/session"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var errBadRequest = errors.New("bad request")

const maxBodyBytes = 1 << 12

type createRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

type answerRequest struct {
	Value string `json:"value"`
}

func decodeBody(r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) && optional {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

// GetCatalog handles GET /catalog: the questions with their visible options.
func (s *Server) GetCatalog(w http.ResponseWriter, r *http.Request) {
	questions := runtime.DescribeCatalog(s.engine.Catalog().Questions())
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

// GetCatalogGraph handles GET /catalog/graph as a Mermaid flowchart.
func (s *Server) GetCatalogGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.Mermaid(s.engine.Catalog(), nil))
}

// GetSessionGraph handles GET /sessions/{id}/graph with the session path highlighted.
func (s *Server) GetSessionGraph(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.Mermaid(s.engine.Catalog(), state))
}

// CreateSession handles POST /sessions. An existing ID resumes that session.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := decodeBody(r, &body, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := strings.TrimSpace(body.SessionID)
	if id == "" {
		id = session.NewID()
	}

	ctx, span := s.tracer.Start(r.Context(), "session.create")
	span.SetAttributes(attribute.String("session.id", id))
	defer span.End()

	state, created, err := s.sessions.LoadOrStart(ctx, id, s.engine.Start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.writeError(w, r, err)
		return
	}
	span.SetAttributes(attribute.Bool("session.created", created))

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		s.logger.Info("session created", "session_id", id)
	}
	s.respondView(w, r, status, state)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondView(w, r, http.StatusOK, state)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// SubmitAnswer handles POST /sessions/{id}/answers.
func (s *Server) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var body answerRequest
	if err := decodeBody(r, &body, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, "session.answer", func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.Submit(ctx, st, body.Value)
	})
}

// GoBack handles POST /sessions/{id}/back.
func (s *Server) GoBack(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "session.back", s.engine.Back)
}

// RestartSession handles POST /sessions/{id}/restart.
func (s *Server) RestartSession(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "session.restart", func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.Restart(ctx, st), nil
	})
}

// mutate runs one engine step under the session lock, then broadcasts the diff.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op string, step func(context.Context, *domain.State) (*domain.State, error)) {
	id := chi.URLParam(r, "id")
	ctx, span := s.tracer.Start(r.Context(), op)
	span.SetAttributes(attribute.String("session.id", id))
	defer span.End()

	var before *domain.State
	after, err := s.sessions.Apply(ctx, id, func(current *domain.State) (*domain.State, error) {
		before = current
		return step(ctx, current)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.writeError(w, r, err)
		return
	}
	span.SetAttributes(attribute.String("session.status", string(after.Status)))

	if diff := domain.Diff(before, after); diff != nil {
		if payload, err := json.Marshal(diff); err == nil {
			s.streams.Broadcast(id, string(payload))
		}
	}
	s.respondView(w, r, http.StatusOK, after)
}

func (s *Server) respondView(w http.ResponseWriter, r *http.Request, status int, state *domain.State) {
	view, err := s.engine.Render(r.Context(), state)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, status, view)
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE).
// The optional watch query (answers,history,status,result) filters diffs.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Load(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	var watch []string
	if v := r.URL.Query().Get("watch"); v != "" {
		watch = strings.Split(v, ",")
	}

	ch, cancel := s.streams.Subscribe(id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE: client subscribed", "session_id", id)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: client disconnected", "session_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !matchesWatch(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func matchesWatch(msg string, watch []string) bool {
	var diff domain.StateDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watch {
		switch strings.TrimSpace(field) {
		case "answers":
			if len(diff.Answers) > 0 {
				return true
			}
		case "history":
			if diff.History != nil {
				return true
			}
		case "status":
			if diff.Status != nil {
				return true
			}
		case "result":
			if diff.Result != nil || diff.Blocker != nil {
				return true
			}
		}
	}
	return false
}
