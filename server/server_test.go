package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esime/ielec/archive"
	"github.com/esime/ielec/calc"
	"github.com/esime/ielec/config"
	"github.com/esime/ielec/database"
	"github.com/esime/ielec/history"
)

type testServer struct {
	*Server
	handler http.Handler
	store   *archive.Filesystem
}

func newTestServer(t *testing.T, configure func(*config.Config)) *testServer {
	t.Helper()
	cfg := config.Defaults()
	cfg.Server.Dev = true
	cfg.Auth.JWTSecret = config.NewSecretString("test-secret")
	cfg.Logging.Quiet = true
	if configure != nil {
		configure(cfg)
	}

	db, err := database.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := archive.NewFilesystem(t.TempDir())
	require.NoError(t, err)

	srv, err := New(cfg, Deps{DB: db, Archive: store}, &bytes.Buffer{})
	require.NoError(t, err)
	return &testServer{Server: srv, handler: srv.Handler(), store: store}
}

func (ts *testServer) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	case []byte:
		buf.Write(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// login registers an account and returns its credential token.
func (ts *testServer) login(t *testing.T, email string) string {
	t.Helper()
	creds := map[string]string{"email": email, "password": "secreto123"}
	rec := ts.do(t, http.MethodPost, "/api/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func conductorBody() map[string]any {
	return map[string]any{"power": 3500, "voltage": 127}
}

func TestNew_RequiresDatabase(t *testing.T) {
	_, err := New(config.Defaults(), Deps{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.Metrics.Enabled = true })
	ts.do(t, http.MethodGet, "/healthz", "", nil)

	rec := ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ielec_http_requests_total")

	ts = newTestServer(t, nil)
	rec = ts.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPIRequiresLogin(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, target := range []string{"/api/me", "/api/history", "/api/clients"} {
		rec := ts.do(t, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
	rec := ts.do(t, http.MethodPost, "/api/calc/conductor", "", conductorBody())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCalculate_ConductorSavesHistory(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "ana@example.com")

	rec := ts.do(t, http.MethodPost, "/api/calc/conductor?label=Cocina", token, conductorBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var result calc.ConductorResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "12", result.GaugeLabel())
	assert.Equal(t, "1 X 30A", result.Breaker.String())
	assert.InDelta(t, 30.62, result.Current, 5e-3)

	rec = ts.do(t, http.MethodGet, "/api/history?calculator=conductor", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []history.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Cocina", records[0].Label)
	assert.Equal(t, history.Conductor, records[0].Calculator)
}

func TestCalculate_NoSave(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "ana@example.com")

	rec := ts.do(t, http.MethodPost, "/api/calc/cavity?save=false", token, calc.DefaultCavityInput())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/history", token, nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCalculate_DegenerateInput(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "ana@example.com")

	body := map[string]any{"power": 3500, "voltage": 0}
	rec := ts.do(t, http.MethodPost, "/api/calc/conductor", token, body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/calc/flux", token, map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	zeroEfficiency := map[string]any{
		"systemType": calc.ThreePhase, "loadType": calc.InductiveLoad,
		"power": 10000, "voltage": 220, "efficiency": 0,
	}
	rec = ts.do(t, http.MethodPost, "/api/calc/conductor", token, zeroEfficiency)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Degenerate runs are never saved.
	rec = ts.do(t, http.MethodGet, "/api/history", token, nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	// The text summary spells the non-finite values out.
	rec = ts.do(t, http.MethodPost, "/api/calc/conductor?format=text", token, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Infinity")
}

func TestCalculate_BadRequests(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "ana@example.com")

	tests := []struct {
		name   string
		target string
		body   any
		want   int
	}{
		{"unknown calculator", "/api/calc/ohm", map[string]any{}, http.StatusNotFound},
		{"malformed json", "/api/calc/cavity", "{", http.StatusBadRequest},
		{"unknown field", "/api/calc/cavity", map[string]any{"lenght": 3}, http.StatusBadRequest},
		{"bad enum", "/api/calc/conductor", map[string]any{"systemType": "hexafasico"}, http.StatusBadRequest},
		{"no conductors", "/api/calc/conductor", map[string]any{"power": 1, "voltage": 127, "conductors": 0}, http.StatusBadRequest},
		{"bad system", "/api/calc/flux", map[string]any{"system": "lateral"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, tt.target, token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestCalculate_BodyTooLarge(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.Server.MaxBodySize = "64B" })
	token := ts.login(t, "ana@example.com")

	big := `{"power": 3500, "voltage": 127, "length": 1` + strings.Repeat(" ", 100) + `}`
	rec := ts.do(t, http.MethodPost, "/api/calc/conductor", token, big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCalculate_TextSummary(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "ana@example.com")

	rec := ts.do(t, http.MethodPost, "/api/calc/conductor?format=text&save=false", token, conductorBody())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Calibre AWG recomendado")
	assert.Contains(t, rec.Body.String(), "Fecha:")
}

func TestInterpolate(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "ana@example.com")

	rec := ts.do(t, http.MethodPost, "/api/interpolate", token, map[string]float64{"x1": 1, "y1": 0.5, "x2": 2, "y2": 0.7, "x": 1.5})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 0.6, resp["y"], 1e-9)

	// Equal abscissas return y1.
	rec = ts.do(t, http.MethodPost, "/api/interpolate", token, map[string]float64{"x1": 1, "y1": 0.5, "x2": 1, "y2": 0.7, "x": 9})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0.5, resp["y"])
}

func TestReport_PDFIsArchived(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "ana@example.com")

	rec := ts.do(t, http.MethodPost, "/api/report/cavity.pdf", token, calc.DefaultCavityInput())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="cavity-`)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
	require.NotEmpty(t, rec.Header().Get("X-Archive-Location"))

	rec = ts.do(t, http.MethodGet, "/api/archive", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var objects []archive.Object
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &objects))
	require.Len(t, objects, 1)

	rec = ts.do(t, http.MethodGet, "/api/archive/"+objects[0].Key, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	// Another user cannot read it.
	other := ts.login(t, "luis@example.com")
	rec = ts.do(t, http.MethodGet, "/api/archive/"+objects[0].Key, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/archive", other, nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestReport_Formats(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "ana@example.com")

	tests := []struct {
		file        string
		contentType string
		contains    string
	}{
		{"flux.html", "text/html; charset=utf-8", "<table>"},
		{"flux.md", "text/markdown; charset=utf-8", "| Concepto | Valor |"},
		{"flux.txt", "text/plain; charset=utf-8", "Fecha:"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/report/"+tt.file, token, calc.DefaultFluxInput())
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}

	rec := ts.do(t, http.MethodPost, "/api/report/flux.docx", token, calc.DefaultFluxInput())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(t, http.MethodPost, "/api/report/ohm.pdf", token, calc.DefaultFluxInput())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistory_RecordLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "ana@example.com")

	rec := ts.do(t, http.MethodPost, "/api/calc/flux", token, calc.DefaultFluxInput())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = ts.do(t, http.MethodGet, "/api/history", token, nil)
	var records []history.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	id := records[0].ID

	rec = ts.do(t, http.MethodGet, "/api/history/"+id, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/history/"+id+"/report/pdf", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = ts.do(t, http.MethodGet, "/api/history/"+id+"/report/txt", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Flujo Total")

	// Records are private.
	other := ts.login(t, "luis@example.com")
	rec = ts.do(t, http.MethodGet, "/api/history/"+id, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/api/history/"+id, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/history/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/history/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistory_ClearByCalculator(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "ana@example.com")

	ts.do(t, http.MethodPost, "/api/calc/cavity", token, calc.DefaultCavityInput())
	ts.do(t, http.MethodPost, "/api/calc/conductor", token, conductorBody())

	rec := ts.do(t, http.MethodDelete, "/api/history?calculator=cavity", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":1}`, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/history", token, nil)
	var records []history.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, history.Conductor, records[0].Calculator)

	rec = ts.do(t, http.MethodDelete, "/api/history?calculator=ohm", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistory_ExportAndImport(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "ana@example.com")

	ts.do(t, http.MethodPost, "/api/calc/conductor", token, conductorBody())

	rec := ts.do(t, http.MethodGet, "/api/history/export.csv?calculator=conductor", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), conductorCSVName)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 2)

	rec = ts.do(t, http.MethodGet, "/api/history/export.csv", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "id,calculator,label,created_at,inputs,results"))

	rec = ts.do(t, http.MethodGet, "/api/history/export.json?calculator=conductor", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "historial_calculos_conductor.json")
	exported := rec.Body.Bytes()

	// Import into another account.
	other := ts.login(t, "luis@example.com")
	rec = ts.do(t, http.MethodPost, "/api/history/import?calculator=conductor", other, exported)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"imported":1}`, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/history", other, nil)
	var records []history.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 1)

	// Records of another calculator are refused.
	rec = ts.do(t, http.MethodPost, "/api/history/import?calculator=cavity", other, exported)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(t, http.MethodPost, "/api/history/import", other, exported)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(t, http.MethodPost, "/api/history/import?calculator=conductor", other, "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistory_ImportKeepsExistingOnRejectedFile(t *testing.T) {
	ts := newTestServer(t, nil)
	ana := ts.login(t, "ana@example.com")
	luis := ts.login(t, "luis@example.com")

	ts.do(t, http.MethodPost, "/api/calc/conductor", ana, conductorBody())
	ts.do(t, http.MethodPost, "/api/calc/conductor", luis, conductorBody())
	ts.do(t, http.MethodPost, "/api/calc/conductor", luis, conductorBody())

	listConductor := func(token string) []history.Record {
		rec := ts.do(t, http.MethodGet, "/api/history?calculator=conductor", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var records []history.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		return records
	}
	anaBefore := listConductor(ana)
	require.Len(t, anaBefore, 1)

	// A file with a repeated id is refused before anything is removed.
	repeated := `[
	  {"id": "r1", "fechaISO": "2025-03-01T10:00:00Z", "inputs": {}, "resultados": {}},
	  {"id": "r1", "fechaISO": "2025-03-02T10:00:00Z", "inputs": {}, "resultados": {}}
	]`
	rec := ts.do(t, http.MethodPost, "/api/history/import?calculator=conductor", luis, repeated)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, listConductor(luis), 2)

	// Ids held by another account are reissued on import.
	rec = ts.do(t, http.MethodGet, "/api/history/export.json?calculator=conductor", ana, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodPost, "/api/history/import?calculator=conductor", luis, rec.Body.Bytes())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"imported":1}`, rec.Body.String())

	imported := listConductor(luis)
	require.Len(t, imported, 1)
	assert.NotEqual(t, anaBefore[0].ID, imported[0].ID)
	assert.Equal(t, anaBefore[0].ID, listConductor(ana)[0].ID)
}

func TestHistory_MemoryStore(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) { cfg.History.Store = "memory" })
	require.IsType(t, &history.Memory{}, ts.history)

	token := ts.login(t, "ana@example.com")
	rec := ts.do(t, http.MethodPost, "/api/calc/conductor", token, conductorBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/history", token, nil)
	var records []history.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 1)
}

func TestClientsAndTasks(t *testing.T) {
	ts := newTestServer(t, nil)
	token := ts.login(t, "ana@example.com")

	rec := ts.do(t, http.MethodPost, "/api/clients", token, map[string]string{"name": "ACME"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/clients", token, map[string]string{"name": "ACME", "email": "compras@acme.mx"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var client struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &client))

	rec = ts.do(t, http.MethodPost, "/api/tasks", token, map[string]string{"clientId": client.ID, "title": "Tablero"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tablero")

	other := ts.login(t, "luis@example.com")
	rec = ts.do(t, http.MethodPost, "/api/tasks", other, map[string]string{"clientId": client.ID, "title": "Intruso"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/clients", other, nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
	rec = ts.do(t, http.MethodDelete, "/api/clients/"+client.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/clients/"+client.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/tasks", token, nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestArchiveDisabled(t *testing.T) {
	cfg := config.Defaults()
	cfg.Server.Dev = true
	db, err := database.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	srv, err := New(cfg, Deps{DB: db}, &bytes.Buffer{})
	require.NoError(t, err)
	ts := &testServer{Server: srv, handler: srv.Handler()}
	token := ts.login(t, "ana@example.com")

	rec := ts.do(t, http.MethodPost, "/api/report/conductor.pdf", token, conductorBody())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Archive-Location"))

	rec = ts.do(t, http.MethodGet, "/api/archive", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimitedAPI(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.RateLimit.Requests = 2 })

	for range 2 {
		rec := ts.do(t, http.MethodGet, "/api/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := ts.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Health checks are not limited.
	rec = ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListenAddr(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ServerConfig
		want string
	}{
		{"dev defaults", config.ServerConfig{Dev: true, Port: 443}, "localhost:8080"},
		{"dev explicit", config.ServerConfig{Dev: true, Host: "0.0.0.0", Port: 9000}, "0.0.0.0:9000"},
		{"production", config.ServerConfig{Port: 443}, ":443"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{config: &config.Config{Server: tt.cfg}}
			assert.Equal(t, tt.want, s.listenAddr())
		})
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) {
		c.Server.Host = "127.0.0.1"
		c.Server.Port = 0
	})
	// Port 0 in dev mode falls back to 8080; listen on an ephemeral port.
	ts.config.Server.Dev = false

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ts.Run(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
