package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/taxwizard/internal/runtime"
	httpadapter "github.com/aretw0/taxwizard/pkg/adapters/http"
	"github.com/aretw0/taxwizard/pkg/adapters/memory"
	"github.com/aretw0/taxwizard/pkg/domain"
	"github.com/aretw0/taxwizard/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type fixture struct {
	server  *httpadapter.Server
	handler http.Handler
	store   *memory.Store
	spans   *tracetest.SpanRecorder
}

func newFixture(t *testing.T, opts ...httpadapter.Option) *fixture {
	t.Helper()
	store := memory.NewStore()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	opts = append([]httpadapter.Option{httpadapter.WithTracerProvider(tp)}, opts...)
	srv := httpadapter.NewServer(runtime.NewEngine(nil), session.NewManager(store), opts...)
	return &fixture{server: srv, handler: srv.Routes(), store: store, spans: recorder}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) runtime.View {
	t.Helper()
	var view runtime.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	return view
}

func TestServer_Health(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_Info(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var info map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "taxwizard-http", info["app"])
	assert.EqualValues(t, 6, info["questions"])
}

func TestServer_Catalog(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Questions []struct {
			ID      string          `json:"id"`
			Options []domain.Option `json:"options"`
		} `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Questions, 6)
	assert.Equal(t, domain.QuestionApplicantType, body.Questions[1].ID)
	for _, opt := range body.Questions[1].Options {
		assert.NotEqual(t, domain.ApplicantPropertyOwner, opt.Value, "hidden options are not listed")
	}

	rec = f.do(t, http.MethodGet, "/catalog/graph", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "graph TD"))
}

func TestServer_CreateSession(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/sessions", map[string]string{"session_id": "abc"})
	require.Equal(t, http.StatusCreated, rec.Code)
	view := decodeView(t, rec)
	assert.Equal(t, "abc", view.SessionID)
	assert.Equal(t, domain.StatusInProgress, view.Status)
	require.NotNil(t, view.Question)
	assert.Equal(t, domain.QuestionHasTIN, view.Question.ID)
	assert.True(t, view.IsAtStart)

	rec = f.do(t, http.MethodPost, "/sessions", map[string]string{"session_id": "abc"})
	assert.Equal(t, http.StatusOK, rec.Code, "existing sessions are resumed")

	rec = f.do(t, http.MethodPost, "/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, decodeView(t, rec).SessionID)

	rec = f.do(t, http.MethodGet, "/sessions", nil)
	var list struct {
		Sessions []string `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Sessions, 2)
	assert.Contains(t, list.Sessions, "abc")
}

func TestServer_FullFlow(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/sessions", map[string]string{"session_id": "org"})

	for _, v := range []string{domain.AnswerYes, domain.ApplicantOrganization, domain.AnswerYes, domain.AnswerNo, domain.AnswerYes} {
		rec := f.do(t, http.MethodPost, "/sessions/org/answers", map[string]string{"value": v})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := f.do(t, http.MethodGet, "/sessions/org", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	assert.Equal(t, domain.StatusCompleted, view.Status)
	assert.Nil(t, view.Question)
	require.NotNil(t, view.Result)

	result, err := view.Result.Result()
	require.NoError(t, err)
	org, ok := result.(domain.PartnershipCorporation)
	require.True(t, ok)
	assert.True(t, org.HasOwners)
	assert.Equal(t, []string{domain.FormRF01, domain.FormOS01, domain.FormPropertyDeclaration}, org.Forms())

	rec = f.do(t, http.MethodPost, "/sessions/org/answers", map[string]string{"value": domain.AnswerYes})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/sessions/org/restart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeView(t, rec)
	assert.Equal(t, domain.StatusInProgress, view.Status)
	assert.Empty(t, view.Answers)
}

func TestServer_BlockedAndBack(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/sessions", map[string]string{"session_id": "s"})

	rec := f.do(t, http.MethodPost, "/sessions/s/answers", map[string]string{"value": domain.AnswerNo})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	assert.Equal(t, domain.StatusBlocked, view.Status)
	require.NotNil(t, view.Blocker)
	assert.Nil(t, view.Result)

	rec = f.do(t, http.MethodPost, "/sessions/s/back", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeView(t, rec)
	assert.Equal(t, domain.StatusInProgress, view.Status)
	require.NotNil(t, view.Question)
	assert.Equal(t, domain.QuestionHasTIN, view.Question.ID)

	rec = f.do(t, http.MethodPost, "/sessions/s/back", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StatusExited, decodeView(t, rec).Status)
}

func TestServer_Errors(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/sessions", map[string]string{"session_id": "s"})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown session", http.MethodGet, "/sessions/missing", nil, http.StatusNotFound, "session_not_found"},
		{"answer unknown session", http.MethodPost, "/sessions/missing/answers", map[string]string{"value": "yes"}, http.StatusNotFound, "session_not_found"},
		{"empty answer", http.MethodPost, "/sessions/s/answers", map[string]string{"value": "  "}, http.StatusBadRequest, "empty_answer"},
		{"invalid option", http.MethodPost, "/sessions/s/answers", map[string]string{"value": "maybe"}, http.StatusBadRequest, "invalid_option"},
		{"missing body", http.MethodPost, "/sessions/s/answers", nil, http.StatusBadRequest, "bad_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["code"])
		})
	}

	state, err := f.store.Load(context.Background(), "s")
	require.NoError(t, err)
	assert.Empty(t, state.Answers, "rejected answers leave the stored state untouched")
}

func TestServer_DeleteSession(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/sessions", map[string]string{"session_id": "s"})

	rec := f.do(t, http.MethodDelete, "/sessions/s", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/sessions/s", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Tracing(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/sessions", map[string]string{"session_id": "s"})
	f.do(t, http.MethodPost, "/sessions/s/answers", map[string]string{"value": domain.AnswerYes})

	var names []string
	for _, span := range f.spans.Ended() {
		names = append(names, span.Name())
	}
	assert.Equal(t, []string{"session.create", "session.answer"}, names)
}

func TestServer_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	f := newFixture(t, httpadapter.WithMetricsHandler(metrics))

	rec := f.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())
}

func TestServer_SubscribeEvents(t *testing.T) {
	f := newFixture(t)
	ts := httptest.NewServer(f.handler)
	defer ts.Close()

	f.do(t, http.MethodPost, "/sessions", map[string]string{"session_id": "s"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/sessions/s/events?watch=answers", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	require.Eventually(t, func() bool {
		return f.server.Streams().Subscribers("s") == 1
	}, time.Second, 10*time.Millisecond)

	rec := f.do(t, http.MethodPost, "/sessions/s/answers", map[string]string{"value": domain.AnswerYes})
	require.Equal(t, http.StatusOK, rec.Code)

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: {") {
			break
		}
	}

	var diff domain.StateDiff
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &diff))
	assert.Equal(t, "s", diff.SessionID)
	assert.Equal(t, domain.AnswerYes, diff.Answers[domain.QuestionHasTIN])
}

func TestStreamManager(t *testing.T) {
	sm := httpadapter.NewStreamManager(nil)
	ch, cancel := sm.Subscribe("s")
	assert.Equal(t, 1, sm.Subscribers("s"))

	sm.Broadcast("s", "hello")
	sm.Broadcast("other", "ignored")
	assert.Equal(t, "hello", <-ch)

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers("s"))
	_, open := <-ch
	assert.False(t, open)
}
