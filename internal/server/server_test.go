package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/schemadapt/pkg/bpc"
	"github.com/matzehuels/schemadapt/pkg/corpus"
	"github.com/matzehuels/schemadapt/pkg/graph"
	"github.com/matzehuels/schemadapt/pkg/metrics"
	"github.com/matzehuels/schemadapt/pkg/observability"
	"github.com/matzehuels/schemadapt/pkg/pipeline"
)

// series builds n two-pin boxes R1..Rn wired in a chain.
func series(t *testing.T, n int) *bpc.Graph {
	t.Helper()
	g := bpc.New()
	for i := 1; i <= n; i++ {
		box := fmt.Sprintf("R%d", i)
		require.NoError(t, g.AddBox(bpc.Box{ID: box, Placement: bpc.Fixed}))
		for p := 1; p <= 2; p++ {
			require.NoError(t, g.AddPin(bpc.Pin{BoxID: box, ID: fmt.Sprint(p), NetworkID: fmt.Sprintf("n%d", i+p-2)}))
		}
	}
	return g
}

func wire(t *testing.T, n int) *graph.Graph {
	g := graph.FromBPC(series(t, n))
	return &g
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, log.New(io.Discard))
	}
	if cfg.Corpus == nil {
		cfg.Corpus = corpus.NewMemSource(
			corpus.Template{Name: "three", Graph: series(t, 3)},
			corpus.Template{Name: "two", Graph: series(t, 2)},
			corpus.Template{Name: "five", Graph: series(t, 5)},
		)
	}
	cfg.Logger = log.New(io.Discard)
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error.Code
}

func TestNewRequiresRunner(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, Config{}), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","version":"dev"}`, rec.Body.String())
}

func TestAdapt(t *testing.T) {
	s := newTestServer(t, Config{})
	rec := do(t, s, http.MethodPost, "/v1/adapt", AdaptRequest{Template: wire(t, 3), Circuit: wire(t, 2)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.AdaptResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Solved())
	assert.Equal(t, 2, res.Graph.BoxCount())
	assert.InDelta(t, 3.0, res.Cost, 1e-9, "one box and two pins deleted")
	assert.NotEmpty(t, res.Script)
}

func TestAdaptByTemplateName(t *testing.T) {
	s := newTestServer(t, Config{})
	rec := do(t, s, http.MethodPost, "/v1/adapt", AdaptRequest{TemplateName: "five", Circuit: wire(t, 2)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.AdaptResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Graph.BoxCount())

	rec = do(t, s, http.MethodPost, "/v1/adapt", AdaptRequest{TemplateName: "missing", Circuit: wire(t, 2)})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TEMPLATE_NOT_FOUND", errorCode(t, rec))
}

func TestAdaptCustomCosts(t *testing.T) {
	s := newTestServer(t, Config{})
	rec := do(t, s, http.MethodPost, "/v1/adapt", AdaptRequest{
		Template: wire(t, 3),
		Circuit:  wire(t, 2),
		Costs:    json.RawMessage(`{"base_operation_cost": 2}`),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.AdaptResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.InDelta(t, 6.0, res.Cost, 1e-9)
}

func TestAdaptErrors(t *testing.T) {
	s := newTestServer(t, Config{})
	badGraph := &graph.Graph{Pins: []graph.Pin{{Box: "nope", ID: "1"}}}

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"missing circuit", AdaptRequest{Template: wire(t, 1)}, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing template", AdaptRequest{Circuit: wire(t, 1)}, http.StatusBadRequest, "INVALID_INPUT"},
		{"both templates", AdaptRequest{Template: wire(t, 1), TemplateName: "two", Circuit: wire(t, 1)}, http.StatusBadRequest, "INVALID_INPUT"},
		{"dangling pin", AdaptRequest{Template: badGraph, Circuit: wire(t, 1)}, http.StatusBadRequest, "INVALID_GRAPH"},
		{"bad policy", AdaptRequest{Template: wire(t, 1), Circuit: wire(t, 1), Options: pipeline.Options{Policy: "vote"}}, http.StatusBadRequest, "INVALID_OPTIONS"},
		{"negative cost", AdaptRequest{Template: wire(t, 1), Circuit: wire(t, 1), Costs: json.RawMessage(`{"base_operation_cost": -1}`)}, http.StatusBadRequest, "INVALID_COST_CONFIG"},
		{"unknown field", map[string]any{"circuit": wire(t, 1), "colour": "red"}, http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/adapt", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestAdaptBodyLimit(t *testing.T) {
	s := newTestServer(t, Config{MaxBodyBytes: 64})
	rec := do(t, s, http.MethodPost, "/v1/adapt", AdaptRequest{Template: wire(t, 3), Circuit: wire(t, 3)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "exceeds 64 bytes")
}

func TestRank(t *testing.T) {
	s := newTestServer(t, Config{})
	rec := do(t, s, http.MethodPost, "/v1/rank", RankRequest{Circuit: wire(t, 2), Options: pipeline.Options{TopK: 2}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res RankResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Matches, 2)
	assert.Equal(t, "two", res.Matches[0].Name)
	assert.Zero(t, res.Matches[0].Distance.Value)
	assert.Equal(t, "three", res.Matches[1].Name)
}

func TestRankCollection(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "amps")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, graph.WriteGraphFile(series(t, 4), filepath.Join(dir, "four.json")))

	s := newTestServer(t, Config{CorpusRoot: root})
	rec := do(t, s, http.MethodPost, "/v1/rank", RankRequest{Circuit: wire(t, 2), Collection: "amps"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res RankResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "four", res.Matches[0].Name)

	rec = do(t, s, http.MethodPost, "/v1/rank", RankRequest{Circuit: wire(t, 2), Collection: "../etc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PATH", errorCode(t, rec))

	rec = do(t, s, http.MethodPost, "/v1/rank", RankRequest{Circuit: wire(t, 2), Collection: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDistanceAndDiff(t *testing.T) {
	s := newTestServer(t, Config{})

	rec := do(t, s, http.MethodPost, "/v1/distance", PairRequest{From: wire(t, 3), To: wire(t, 2)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var d DistanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, 1, d.Distance.UnmatchedBoxes)
	assert.InDelta(t, 3.0, d.Distance.Value, 1e-9)

	rec = do(t, s, http.MethodPost, "/v1/diff", PairRequest{From: wire(t, 3), To: wire(t, 2)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var diff struct {
		Script []map[string]any `json:"script"`
		Stats  struct {
			Deletes int `json:"deletes"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &diff))
	assert.Equal(t, 3, diff.Stats.Deletes)
	assert.Equal(t, "delete_node", diff.Script[0]["op"])
}

func TestTemplates(t *testing.T) {
	s := newTestServer(t, Config{})

	rec := do(t, s, http.MethodGet, "/v1/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"templates":["five","three","two"]}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/v1/templates/two", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var g graph.Graph
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	assert.Equal(t, "two", g.Name)
	assert.Len(t, g.Boxes, 2)

	rec = do(t, s, http.MethodGet, "/v1/templates/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/templates/.hidden", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_NAME", errorCode(t, rec))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := metrics.NewRegistry()
	observability.SetServerHooks(reg)
	observability.SetAdaptHooks(reg)
	t.Cleanup(observability.Reset)

	s := newTestServer(t, Config{Metrics: reg.Handler()})
	do(t, s, http.MethodPost, "/v1/adapt", AdaptRequest{Template: wire(t, 2), Circuit: wire(t, 2)})
	do(t, s, http.MethodGet, "/v1/templates/nope", nil)

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		`schemadapt_http_requests_total{method="POST",route="/v1/adapt",status="200"} 1`,
		`schemadapt_http_requests_total{method="GET",route="/v1/templates/{name}",status="404"} 1`,
		`schemadapt_adaptations_total{state="solved"} 1`,
	} {
		assert.True(t, strings.Contains(body, want), "metrics output missing %s", want)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := newTestServer(t, Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
