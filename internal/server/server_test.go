package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/ats-simulator/internal/cache"
	"github.com/jonathan/ats-simulator/internal/config"
	"github.com/jonathan/ats-simulator/internal/db"
	"github.com/jonathan/ats-simulator/internal/fetch"
	"github.com/jonathan/ats-simulator/internal/pipeline"
	"github.com/jonathan/ats-simulator/internal/server/ratelimit"
	"github.com/jonathan/ats-simulator/internal/taxonomy"
	"github.com/jonathan/ats-simulator/internal/types"
)

const (
	testResume  = "Jane Doe\njane@co.com\n555-123-4567\nSkills: Python, SQL"
	testPosting = "Backend Engineer, Remote, must have Python"
)

// countingEngine wraps a real engine and records the requests it sees.
type countingEngine struct {
	inner *pipeline.Engine
	calls atomic.Int32
	mu    sync.Mutex
	last  types.SimulationRequest
}

func (e *countingEngine) Simulate(ctx context.Context, req types.SimulationRequest) (*types.SimulationResult, error) {
	e.calls.Add(1)
	e.mu.Lock()
	e.last = req
	e.mu.Unlock()
	return e.inner.Simulate(ctx, req)
}

func (e *countingEngine) lastRequest() types.SimulationRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

type failingEngine struct{ err error }

func (e failingEngine) Simulate(context.Context, types.SimulationRequest) (*types.SimulationResult, error) {
	return nil, e.err
}

// memoryStore is an in-memory Store.
type memoryStore struct {
	mu      sync.Mutex
	records []*types.SimulationRecord
	saveErr error
}

func (m *memoryStore) SaveSimulation(_ context.Context, rec *types.SimulationRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryStore) GetSimulation(_ context.Context, id uuid.UUID) (*types.SimulationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *memoryStore) LatestResumeText(_ context.Context, userID, applicationID string) (*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].ApplicationID == applicationID && m.records[i].UserID == userID {
			text := m.records[i].ResumeText
			return &text, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) ListSimulations(_ context.Context, userID string, limit int) ([]db.SimulationSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []db.SimulationSummary{}
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		rec := m.records[i]
		if rec.UserID != userID {
			continue
		}
		out = append(out, db.SimulationSummary{
			ID:            rec.ID,
			ApplicationID: rec.ApplicationID,
			OverallScore:  rec.Result.Scorecard.OverallScore,
			Status:        rec.Result.Scorecard.Status,
			CreatedAt:     rec.CreatedAt,
		})
	}
	return out, nil
}

func newCountingEngine(t *testing.T) *countingEngine {
	t.Helper()
	return newCountingEngineWith(t, nil)
}

func newCountingEngineWith(t *testing.T, mutate func(*pipeline.Options)) *countingEngine {
	t.Helper()
	tax, err := taxonomy.Default()
	require.NoError(t, err)
	opts := pipeline.DefaultOptions(tax)
	opts.Logger = zaptest.NewLogger(t)
	if mutate != nil {
		mutate(&opts)
	}
	engine, err := pipeline.NewEngine(opts)
	require.NoError(t, err)
	return &countingEngine{inner: engine}
}

func newTestServer(t *testing.T, mutate func(*Deps)) *Server {
	t.Helper()
	deps := Deps{
		Engine: newCountingEngine(t),
		Logger: zaptest.NewLogger(t),
	}
	if mutate != nil {
		mutate(&deps)
	}
	s, err := New(deps)
	require.NoError(t, err)
	return s
}

func body(t *testing.T, v any) *strings.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return strings.NewReader(string(data))
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func postSimulation(t *testing.T, s *Server, payload any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/simulations", body(t, payload))
	req.Header.Set("Content-Type", "application/json")
	return do(s, req)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestNew_RequiresEngine(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}

func TestSimulate_Success(t *testing.T) {
	s := newTestServer(t, nil)

	rec := postSimulation(t, s, map[string]any{
		"targetRoleRaw": testPosting,
		"resumeText":    testResume,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "MISS", rec.Header().Get(HeaderCache))
	assert.Empty(t, rec.Header().Get(HeaderSimulationID))

	var result types.SimulationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 60, result.Scorecard.OverallScore)
	assert.Equal(t, types.StatusWarning, result.Scorecard.Status)
	assert.Len(t, result.Scorecard.Layers, 5)
	require.NotNil(t, result.ParserView.ExtractedEmail)
	assert.Equal(t, "jane@co.com", *result.ParserView.ExtractedEmail)
}

func TestSimulate_InvalidRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
		field   string
	}{
		{"missing resume", `{"targetRoleRaw":"Engineer"}`, types.MissingResumeMessage, "resume"},
		{"blank resume", `{"targetRoleRaw":"Engineer","resumeText":"   "}`, types.MissingResumeMessage, "resume"},
		{"both sources", `{"resumeText":"Jane","resumeUrl":"https://example.com/cv.pdf"}`, "Provide either resumeText or resumeUrl, not both.", "resume"},
		{"invalid url", `{"resumeUrl":"not a url"}`, "resumeUrl must be a valid URL.", "resumeUrl"},
		{"unknown field", `{"resumeText":"Jane","extra":true}`, "", ""},
		{"wrong type", `{"resumeText":42}`, "", ""},
		{"not json", `{"resumeText":`, "request body is not valid JSON", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newCountingEngine(t)
			s := newTestServer(t, func(d *Deps) { d.Engine = engine })

			req := httptest.NewRequest(http.MethodPost, "/simulations", strings.NewReader(tt.body))
			rec := do(s, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, "invalid_request", resp["error"])
			if tt.message != "" {
				assert.Equal(t, tt.message, resp["message"])
			} else {
				assert.NotEmpty(t, resp["message"])
			}
			if tt.field != "" {
				assert.Equal(t, tt.field, resp["field"])
			}
			assert.Zero(t, engine.calls.Load(), "invalid requests never reach the engine")
		})
	}
}

func TestSimulate_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, nil)
	big := `{"resumeText":"` + strings.Repeat("a", maxBodyBytes) + `"}`

	rec := do(s, httptest.NewRequest(http.MethodPost, "/simulations", strings.NewReader(big)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec)["message"], "exceeds")
}

func TestSimulate_EngineErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid request", types.ErrMissingResume(), http.StatusBadRequest, types.MissingResumeMessage},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, context.DeadlineExceeded.Error()},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, func(d *Deps) { d.Engine = failingEngine{err: tt.err} })
			rec := postSimulation(t, s, map[string]any{"resumeText": testResume})
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec)["message"])
		})
	}
}

func TestSimulate_Cache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	engine := newCountingEngine(t)
	s := newTestServer(t, func(d *Deps) {
		d.Engine = engine
		d.Cache = cache.NewRedisWithClient(client, time.Hour)
	})

	payload := map[string]any{"targetRoleRaw": testPosting, "resumeText": testResume}
	first := postSimulation(t, s, payload)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get(HeaderCache))

	second := postSimulation(t, s, payload)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get(HeaderCache))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), engine.calls.Load())

	// a different posting is a different key
	payload["targetRoleRaw"] = "Frontend Engineer in Austin"
	third := postSimulation(t, s, payload)
	assert.Equal(t, "MISS", third.Header().Get(HeaderCache))
	assert.Equal(t, int32(2), engine.calls.Load())
}

// flakyExtractor fails its first failures calls, then returns text.
type flakyExtractor struct {
	failures int32
	calls    atomic.Int32
	text     string
}

func (f *flakyExtractor) ExtractText(context.Context, string) (string, error) {
	if f.calls.Add(1) <= f.failures {
		return "", errors.New("HTTP 503")
	}
	return f.text, nil
}

func TestSimulate_FailedDocumentReadNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	extractor := &flakyExtractor{failures: 1, text: testResume}
	engine := newCountingEngineWith(t, func(o *pipeline.Options) { o.Extractor = extractor })
	s := newTestServer(t, func(d *Deps) {
		d.Engine = engine
		d.Cache = cache.NewRedisWithClient(client, time.Hour)
	})
	payload := map[string]any{"targetRoleRaw": testPosting, "resumeUrl": "https://files.example.com/resume.pdf"}

	decode := func(rec *httptest.ResponseRecorder) types.SimulationResult {
		var result types.SimulationResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		return result
	}

	first := postSimulation(t, s, payload)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Equal(t, "MISS", first.Header().Get(HeaderCache))
	failed := decode(first)
	assert.Zero(t, failed.ParserView.ParsingConfidenceScore)
	assert.NotEmpty(t, failed.ParserView.ExtractionWarning)

	second := postSimulation(t, s, payload)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "MISS", second.Header().Get(HeaderCache))
	recovered := decode(second)
	assert.Positive(t, recovered.ParserView.ParsingConfidenceScore)
	assert.Empty(t, recovered.ParserView.ExtractionWarning)

	third := postSimulation(t, s, payload)
	assert.Equal(t, "HIT", third.Header().Get(HeaderCache))
	assert.Equal(t, int32(2), extractor.calls.Load())
	assert.Equal(t, int32(2), engine.calls.Load())
}

func TestSimulate_ResumeURLOnPrivateHostRefused(t *testing.T) {
	var hits atomic.Int32
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("INTERNAL_SECRET=hunter2"))
	}))
	defer internal.Close()

	engine := newCountingEngineWith(t, func(o *pipeline.Options) {
		o.Extractor = fetch.NewDocumentExtractor(nil, fetch.DefaultOptions())
	})
	s := newTestServer(t, func(d *Deps) { d.Engine = engine })

	rec := postSimulation(t, s, map[string]any{"targetRoleRaw": testPosting, "resumeUrl": internal.URL + "/env"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result types.SimulationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Empty(t, result.ParserView.RawTextDump)
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.NotEmpty(t, result.ParserView.ExtractionWarning)
	assert.Zero(t, hits.Load())
}

func TestSimulate_CacheDownStillServes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	s := newTestServer(t, func(d *Deps) { d.Cache = cache.NewRedisWithClient(client, time.Hour) })
	rec := postSimulation(t, s, map[string]any{"resumeText": testResume})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get(HeaderCache))
}

func TestSimulate_PersistsAndResolvesPrior(t *testing.T) {
	store := &memoryStore{}
	engine := newCountingEngine(t)
	s := newTestServer(t, func(d *Deps) {
		d.Engine = engine
		d.Store = store
	})

	payload := map[string]any{
		"targetRoleRaw": testPosting,
		"resumeText":    testResume,
		"applicationId": "app-1",
		"userId":        "user-1",
		"targetComp":    "$150k",
	}
	first := postSimulation(t, s, payload)
	require.Equal(t, http.StatusOK, first.Code)
	id, err := uuid.Parse(first.Header().Get(HeaderSimulationID))
	require.NoError(t, err)
	assert.Nil(t, engine.lastRequest().PriorResumeText)

	require.Len(t, store.records, 1)
	saved := store.records[0]
	assert.Equal(t, id, saved.ID)
	assert.Equal(t, "user-1", saved.UserID)
	assert.Equal(t, testResume, saved.ResumeText)
	require.NotNil(t, saved.TargetComp)
	assert.Equal(t, "$150k", *saved.TargetComp)

	// resubmitting the same resume finds it as the prior version
	second := postSimulation(t, s, payload)
	require.Equal(t, http.StatusOK, second.Code)
	prior := engine.lastRequest().PriorResumeText
	require.NotNil(t, prior)
	assert.Equal(t, testResume, *prior)

	var result types.SimulationResult
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &result))
	version := result.Scorecard.Layers[types.LayerVersionControl]
	assert.Equal(t, 100, version.Score)
	assert.NotEmpty(t, version.Flags)
}

func TestSimulate_SaveFailureStillServes(t *testing.T) {
	s := newTestServer(t, func(d *Deps) { d.Store = &memoryStore{saveErr: errors.New("db down")} })
	rec := postSimulation(t, s, map[string]any{"resumeText": testResume})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(HeaderSimulationID))
}

func TestGetSimulation(t *testing.T) {
	store := &memoryStore{}
	s := newTestServer(t, func(d *Deps) { d.Store = store })

	created := postSimulation(t, s, map[string]any{"resumeText": testResume, "userId": "user-1"})
	require.Equal(t, http.StatusOK, created.Code)
	id := created.Header().Get(HeaderSimulationID)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/simulations/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got types.SimulationRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, id, got.ID.String())
	assert.Equal(t, "user-1", got.UserID)
	assert.Empty(t, got.ResumeText, "resume text is not serialized")
	require.NotNil(t, got.Result)

	rec = do(s, httptest.NewRequest(http.MethodGet, "/simulations/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(s, httptest.NewRequest(http.MethodGet, "/simulations/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "id", decodeError(t, rec)["field"])
}

func TestStoreRoutes_Unavailable(t *testing.T) {
	s := newTestServer(t, nil)
	for _, path := range []string{"/simulations/" + uuid.NewString(), "/simulations?userId=u"} {
		rec := do(s, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		assert.Equal(t, "unavailable", decodeError(t, rec)["error"])
	}
}

func TestListSimulations(t *testing.T) {
	store := &memoryStore{}
	s := newTestServer(t, func(d *Deps) { d.Store = store })

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, postSimulation(t, s, map[string]any{"resumeText": testResume, "userId": "user-1"}).Code)
	}
	postSimulation(t, s, map[string]any{"resumeText": testResume, "userId": "user-2"})

	rec := do(s, httptest.NewRequest(http.MethodGet, "/simulations?userId=user-1&limit=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Simulations []db.SimulationSummary `json:"simulations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Simulations, 2)

	tests := []struct {
		name  string
		query string
		field string
	}{
		{"missing user", "", "userId"},
		{"bad limit", "?userId=user-1&limit=0", "limit"},
		{"non-numeric limit", "?userId=user-1&limit=ten", "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, httptest.NewRequest(http.MethodGet, "/simulations"+tt.query, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.field, decodeError(t, rec)["field"])
		})
	}
}

func newJWTService(t *testing.T) *JWTService {
	t.Helper()
	cfg, err := config.ServerConfig{JWTSecret: "0123456789abcdef0123", JWTExpirationHours: 1}.JWT()
	require.NoError(t, err)
	return NewJWTService(cfg)
}

func TestAuth(t *testing.T) {
	jwtService := newJWTService(t)
	store := &memoryStore{}
	s := newTestServer(t, func(d *Deps) {
		d.JWT = jwtService
		d.Store = store
	})

	// anonymous requests are rejected
	rec := postSimulation(t, s, map[string]any{"resumeText": testResume})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := jwtService.GenerateToken("user-9")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/simulations",
		body(t, map[string]any{"resumeText": testResume, "userId": "someone-else"}))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = do(s, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.records, 1)
	assert.Equal(t, "user-9", store.records[0].UserID, "token subject wins over body")
	id := rec.Header().Get(HeaderSimulationID)

	// owners can read their records, others cannot
	get := httptest.NewRequest(http.MethodGet, "/simulations/"+id, nil)
	get.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, do(s, get).Code)

	otherToken, err := jwtService.GenerateToken("user-10")
	require.NoError(t, err)
	get = httptest.NewRequest(http.MethodGet, "/simulations/"+id, nil)
	get.Header.Set("Authorization", "Bearer "+otherToken)
	assert.Equal(t, http.StatusNotFound, do(s, get).Code)

	// health and metrics stay public
	assert.Equal(t, http.StatusOK, do(s, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	assert.Equal(t, http.StatusOK, do(s, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)
}

func TestSimulate_PriorScopedToSubject(t *testing.T) {
	jwtService := newJWTService(t)
	store := &memoryStore{}
	engine := newCountingEngine(t)
	s := newTestServer(t, func(d *Deps) {
		d.Engine = engine
		d.JWT = jwtService
		d.Store = store
	})

	post := func(subject, resume string) {
		t.Helper()
		token, err := jwtService.GenerateToken(subject)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/simulations", body(t, map[string]any{
			"targetRoleRaw": testPosting,
			"resumeText":    resume,
			"applicationId": "shared-app",
		}))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := do(s, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	post("user-b", testResume)
	assert.Nil(t, engine.lastRequest().PriorResumeText)

	// another subject using the same application id sees no prior
	post("user-a", testResume+"\nGo")
	assert.Nil(t, engine.lastRequest().PriorResumeText)

	// and does not become user-b's prior
	post("user-b", testResume)
	prior := engine.lastRequest().PriorResumeText
	require.NotNil(t, prior)
	assert.Equal(t, testResume, *prior)
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.FromSettings(config.RateLimitConfig{
		Enabled:           true,
		SimulationsPerMin: 1,
		Burst:             1,
		DefaultPerMin:     100,
	}))
	t.Cleanup(limiter.Stop)
	s := newTestServer(t, func(d *Deps) { d.Limiter = limiter })

	first := postSimulation(t, s, map[string]any{"resumeText": testResume})
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := postSimulation(t, s, map[string]any{"resumeText": testResume})
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
	var resp map[string]any
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.Equal(t, "rate_limit_exceeded", resp["error"])

	assert.Equal(t, http.StatusOK, do(s, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, func(d *Deps) { d.Store = &memoryStore{} })
	rec := do(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status     string          `json:"status"`
		Components map[string]bool `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]bool{"store": true, "cache": false, "auth": false}, resp.Components)
}

func TestMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	postSimulation(t, s, map[string]any{"resumeText": testResume})

	rec := do(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ats_simulations_total")
	assert.Contains(t, rec.Body.String(), `ats_http_requests_total{code="200",route="POST /simulations"}`)
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    string
	}{
		{"wildcard", []string{"*"}, "https://app.example.com", "*"},
		{"listed", []string{"https://app.example.com"}, "https://app.example.com", "https://app.example.com"},
		{"unlisted", []string{"https://app.example.com"}, "https://evil.example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, func(d *Deps) { d.AllowedOrigins = tt.origins })
			req := httptest.NewRequest(http.MethodOptions, "/simulations", nil)
			req.Header.Set("Origin", tt.origin)
			rec := do(s, req)
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestSimulateStream(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/simulations/stream", "application/json",
		body(t, map[string]any{"targetRoleRaw": testPosting, "resumeText": testResume}))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var events []string
	var lastData string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			events = append(events, strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			lastData = strings.TrimPrefix(line, "data: ")
		}
	}
	require.NoError(t, scanner.Err())

	require.NotEmpty(t, events)
	assert.Equal(t, EventProgress, events[0])
	assert.Equal(t, EventResult, events[len(events)-1])

	var payload struct {
		Cached bool                   `json:"cached"`
		Result types.SimulationResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(lastData), &payload))
	assert.False(t, payload.Cached)
	assert.Equal(t, 60, payload.Result.Scorecard.OverallScore)
}

func TestSimulateStream_InvalidRequest(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, httptest.NewRequest(http.MethodPost, "/simulations/stream", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, types.MissingResumeMessage, decodeError(t, rec)["message"])
}

func TestSimulateStream_EngineError(t *testing.T) {
	s := newTestServer(t, func(d *Deps) { d.Engine = failingEngine{err: errors.New("boom")} })
	rec := do(s, httptest.NewRequest(http.MethodPost, "/simulations/stream", strings.NewReader(`{"resumeText":"Jane"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event: error\n")
	assert.Contains(t, rec.Body.String(), `"internal_error"`)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestListenAndServe_Shutdown(t *testing.T) {
	s := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
