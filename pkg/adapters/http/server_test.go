package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/dialectic/internal/runtime"
	httpadapter "github.com/aretw0/dialectic/pkg/adapters/http"
	"github.com/aretw0/dialectic/pkg/adapters/memory"
	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/registry"
	"github.com/aretw0/dialectic/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGraph() *domain.Graph {
	return &domain.Graph{
		ID:           "calibration",
		StartStageID: "intro",
		Stages: map[string]*domain.Stage{
			"intro": {
				ID:             "intro",
				SpeakerID:      "kapoor",
				Text:           "Morning.",
				TangentStageID: "side",
				Options: []domain.Option{
					{ID: "go", Text: "Begin.", NextStageID: "wrap", InsightChange: domain.Int(5), IsCriticalPath: true},
					{ID: "locked", Text: "Using TG-51.", NextStageID: "wrap", RequiredStarID: "tg51"},
				},
			},
			"side": {
				ID: "side", SpeakerID: "quinn", Text: "Aside.",
				Options: []domain.Option{{ID: "back", Text: "Back.", NextStageID: "intro"}},
			},
			"wrap": {
				ID: "wrap", SpeakerID: "kapoor", Text: "Done.", IsConclusion: true,
				Options: []domain.Option{{ID: "bye", Text: "Bye.", IsEndNode: true}},
			},
		},
	}
}

type fixture struct {
	t       *testing.T
	handler http.Handler
	engine  *runtime.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	loader, err := memory.NewFromGraphs(testGraph())
	require.NoError(t, err)

	graphs := registry.New(loader, registry.WithMentors(memory.DefaultMentors()))
	eng := runtime.NewEngine(graphs)
	handler := httpadapter.NewHandler(eng,
		httpadapter.WithContent(loader),
		httpadapter.WithSlots(session.NewManager(memory.NewStore())),
		httpadapter.WithVersion("1.2.3\n"),
	)
	return &fixture{t: t, handler: handler, engine: eng}
}

func (f *fixture) do(method, path string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestServer_HealthAndInfo(t *testing.T) {
	f := newFixture(t)

	w := f.do("GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	info := decode[map[string]string](t, f.do("GET", "/info", nil))
	assert.Equal(t, "1.2.3", info["version"])

	graphs := decode[[]string](t, f.do("GET", "/graphs", nil))
	assert.Equal(t, []string{"calibration"}, graphs)
}

func TestServer_DialogueFlow(t *testing.T) {
	f := newFixture(t)

	w := f.do("POST", "/dialogue", httpadapter.StartRequest{GraphID: "calibration"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	view := decode[httpadapter.View](t, w)
	assert.True(t, view.Active)
	assert.Equal(t, "intro", view.Stage.ID)
	require.Len(t, view.Options, 2)
	assert.True(t, view.Options[1].Disabled, "gated option is listed disabled")

	w = f.do("POST", "/dialogue/options/locked", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do("POST", "/dialogue/options/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do("POST", "/dialogue/options/go", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view = decode[httpadapter.View](t, w)
	assert.Equal(t, "wrap", view.Stage.ID)
	assert.Equal(t, 5, view.Resources.Insight)

	grade := decode[httpadapter.GradeResponse](t, f.do("GET", "/dialogue/grade", nil))
	assert.Equal(t, domain.GradeExcellent, grade.Grade)

	w = f.do("POST", "/dialogue/options/bye", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[httpadapter.View](t, w)
	assert.False(t, view.Active)

	w = f.do("POST", "/dialogue/options/go", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode[httpadapter.ErrorResponse](t, w).Error, "no active dialogue")
}

func TestServer_ArmedOptionsPreview(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusConflict, f.do("GET", "/dialogue/options?armed=boast", nil).Code)
	require.Equal(t, http.StatusCreated, f.do("POST", "/dialogue", httpadapter.StartRequest{GraphID: "calibration"}).Code)

	armed := decode[[]domain.AvailableOption](t, f.do("GET", "/dialogue/options?armed=boast", nil))
	require.Len(t, armed, 2)
	assert.Equal(t, "Begin. [Challenge Mode]", armed[0].Option.Text)
	assert.True(t, armed[0].Option.BoastMode)
	assert.True(t, armed[1].Disabled, "gating survives decoration")

	plain := decode[[]domain.AvailableOption](t, f.do("GET", "/dialogue/options", nil))
	assert.Equal(t, "Begin.", plain[0].Option.Text)
	assert.False(t, plain[0].Option.BoastMode)

	node, ok := f.engine.CurrentNode()
	require.True(t, ok)
	assert.Equal(t, "Begin.", node.Options[0].Text)
	assert.Nil(t, f.engine.Session().Overlay)

	assert.Equal(t, http.StatusBadRequest, f.do("GET", "/dialogue/options?armed=bluff", nil).Code)
}

func TestServer_StartErrors(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do("POST", "/dialogue", httpadapter.StartRequest{}).Code)
	assert.Equal(t, http.StatusNotFound, f.do("POST", "/dialogue", httpadapter.StartRequest{GraphID: "ghost"}).Code)

	req := httptest.NewRequest("POST", "/dialogue", strings.NewReader(`{"graph":"calibration"}`))
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown fields are rejected")
}

func TestServer_TangentAndEnd(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do("POST", "/dialogue", httpadapter.StartRequest{GraphID: "calibration"}).Code)

	view := decode[httpadapter.View](t, f.do("POST", "/dialogue/tangent", nil))
	assert.Equal(t, "side", view.Stage.ID)

	w := f.do("DELETE", "/dialogue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[httpadapter.View](t, w).Active)

	assert.Equal(t, http.StatusOK, f.do("DELETE", "/dialogue", nil).Code, "ending twice is a no-op")
}

func TestServer_StrategicAction(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do("POST", "/dialogue", httpadapter.StartRequest{GraphID: "calibration"}).Code)

	w := f.do("POST", "/dialogue/actions", httpadapter.ActionRequest{Kind: "reframe", CharacterID: "kapoor"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[httpadapter.ActionResponse](t, w)
	assert.NotEmpty(t, resp.Text)
	assert.Len(t, resp.Options, 2)
	assert.Len(t, resp.View.Options, 2)
	assert.Equal(t, resp.Options[0].ID, resp.View.Options[0].Option.ID)

	w = f.do("POST", "/dialogue/actions", httpadapter.ActionRequest{Kind: "juggle"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do("POST", "/dialogue/actions", httpadapter.ActionRequest{Kind: "reframe", StageID: "wrap"})
	assert.Equal(t, http.StatusNotFound, w.Code, "stale stage is rejected")
}

func TestServer_SnapshotAndSaves(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do("POST", "/dialogue", httpadapter.StartRequest{GraphID: "calibration"}).Code)
	require.Equal(t, http.StatusOK, f.do("POST", "/dialogue/options/go", nil).Code)

	w := f.do("PUT", "/saves/slot-a", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "slot-a", decode[httpadapter.SaveResponse](t, w).SlotID)

	snap := decode[domain.Snapshot](t, f.do("GET", "/snapshot", nil))
	assert.Equal(t, "wrap", snap.Session.CurrentStageID)

	require.Equal(t, http.StatusOK, f.do("DELETE", "/dialogue", nil).Code)

	w = f.do("POST", "/saves/slot-a/resume", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode[httpadapter.View](t, w)
	assert.True(t, view.Active)
	assert.Equal(t, "wrap", view.Stage.ID)

	require.Equal(t, http.StatusOK, f.do("DELETE", "/dialogue", nil).Code)
	w = f.do("PUT", "/snapshot", snap)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "wrap", decode[httpadapter.View](t, w).Stage.ID)

	assert.Equal(t, []string{"slot-a"}, decode[[]string](t, f.do("GET", "/saves", nil)))
	assert.Equal(t, http.StatusNoContent, f.do("DELETE", "/saves/slot-a", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do("POST", "/saves/slot-a/resume", nil).Code)
}

func TestServer_SlotsNotConfigured(t *testing.T) {
	handler := httpadapter.NewHandler(runtime.NewEngine(nil))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/saves", nil))
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestSubscribeEvents_BroadcastsDiffs(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.handler.ServeHTTP(sub, httptest.NewRequest("GET", "/events", nil).WithContext(ctx))
	}()

	time.Sleep(100 * time.Millisecond) // Wait for subscription to register

	require.Equal(t, http.StatusCreated, f.do("POST", "/dialogue", httpadapter.StartRequest{GraphID: "calibration"}).Code)
	require.Equal(t, http.StatusOK, f.do("POST", "/dialogue/options/go", nil).Code)

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	output := sub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, `"current_stage_id":"wrap"`)
	assert.Contains(t, output, `"insight_change":5`)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		domain.ErrInvalidArgument:  http.StatusBadRequest,
		domain.ErrUnknownGraph:     http.StatusNotFound,
		domain.ErrSnapshotNotFound: http.StatusNotFound,
		domain.ErrOptionLocked:     http.StatusForbidden,
		domain.ErrNoActiveDialogue: http.StatusConflict,
		domain.ErrHandlerFault:     http.StatusBadGateway,
		context.Canceled:           http.StatusServiceUnavailable,
		assert.AnError:             http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, httpadapter.StatusFor(err), err.Error())
	}
}
