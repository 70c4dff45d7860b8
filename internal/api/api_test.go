package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/idbuilder/worker/internal/authtoken"
	"github.com/idbuilder/worker/internal/idservice"
	"github.com/idbuilder/worker/internal/storage"
)

const testAdminToken = "test-admin-secret"

func newTestAPI(t *testing.T) (*API, *chi.Mux) {
	t.Helper()

	st, err := storage.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage() error = %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	seqCfg := idservice.SequenceConfig{DefaultBatchSize: 100, PrefetchThreshold: 10}

	a := &API{
		Increment:      idservice.NewIncrementService(st, seqCfg, logger),
		Snowflake:      idservice.NewSnowflakeService(st, idservice.NewWorkerIDAllocator()),
		Formatted:      idservice.NewFormattedService(st, seqCfg, logger),
		Tokens:         authtoken.NewService(authtoken.Config{AdminToken: testAdminToken, KeyTokenExpiration: 24 * time.Hour}),
		Storage:        st,
		Version:        "test",
		WorkerLeaseTTL: time.Minute,
	}

	r := chi.NewRouter()
	a.Mount(r)
	return a, r
}

func doRequest(router *chi.Mux, method, path, token string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func decodeEnvelope(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decoding envelope: %v; body = %s", err, body)
	}
	return env
}

func TestHealthAndReadyRequireNoAuth(t *testing.T) {
	_, router := newTestAPI(t)

	w := doRequest(router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("/health status = %d, want 200", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/ready", "")
	if w.Code != http.StatusOK {
		t.Fatalf("/ready status = %d, want 200; body = %s", w.Code, w.Body.String())
	}
}

func TestConfigRoutesRejectMissingToken(t *testing.T) {
	_, router := newTestAPI(t)

	w := doRequest(router, http.MethodGet, "/v1/config/increment?name=foo", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestConfigRoutesRejectKeyToken(t *testing.T) {
	a, router := newTestAPI(t)
	info := a.Tokens.GetOrCreateToken("some-key")

	w := doRequest(router, http.MethodGet, "/v1/config/increment?name=foo", info.Token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 (key token must not pass admin auth)", w.Code)
	}
}

func TestCreateAndGetIncrementConfig(t *testing.T) {
	_, router := newTestAPI(t)

	body := `{"name":"orders","start":1,"step":1,"min":1,"max":9223372036854775807,"key_token_enable":false}`
	r := httptest.NewRequest(http.MethodPost, "/v1/config/increment", strings.NewReader(body))
	r.Header.Set("Authorization", "Bearer "+testAdminToken)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201; body = %s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodGet, "/v1/config/increment?name=orders", testAdminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200; body = %s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w.Body.Bytes())
	data, _ := env["data"].(map[string]any)
	if data["name"] != "orders" {
		t.Errorf("data.name = %v, want orders", data["name"])
	}
}

func TestGenerateIncrementIDsWithGlobalKeyToken(t *testing.T) {
	a, router := newTestAPI(t)

	createBody := `{"name":"invoices","start":1000,"step":1,"min":0,"max":9223372036854775807,"key_token_enable":false}`
	r := httptest.NewRequest(http.MethodPost, "/v1/config/increment", strings.NewReader(createBody))
	r.Header.Set("Authorization", "Bearer "+testAdminToken)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	info := a.Tokens.GetOrCreateToken("__global__")

	w = doRequest(router, http.MethodGet, "/v1/id/increment?name=invoices&count=3", info.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("generate status = %d, want 200; body = %s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w.Body.Bytes())
	data, _ := env["data"].(map[string]any)
	ids, _ := data["ids"].([]any)
	if len(ids) != 3 {
		t.Fatalf("got %d ids, want 3: %v", len(ids), ids)
	}
}

func TestGenerateRejectsCountOverLimit(t *testing.T) {
	_, router := newTestAPI(t)
	w := doRequest(router, http.MethodGet, "/v1/id/increment?name=x&count=1001", testAdminToken)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestVerifyAdminToken(t *testing.T) {
	_, router := newTestAPI(t)
	w := doRequest(router, http.MethodGet, "/v1/auth/verify", testAdminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestGetTokenMintsAndReturnsSameTokenOnRepeat(t *testing.T) {
	_, router := newTestAPI(t)

	w1 := doRequest(router, http.MethodGet, "/v1/auth/token?key=partner-a", testAdminToken)
	w2 := doRequest(router, http.MethodGet, "/v1/auth/token?key=partner-a", testAdminToken)

	env1 := decodeEnvelope(t, w1.Body.Bytes())
	env2 := decodeEnvelope(t, w2.Body.Bytes())
	d1 := env1["data"].(map[string]any)
	d2 := env2["data"].(map[string]any)

	if d1["token"] != d2["token"] {
		t.Errorf("token changed across repeated get-or-create calls: %v vs %v", d1["token"], d2["token"])
	}
}

func TestResetTokenRotatesValue(t *testing.T) {
	_, router := newTestAPI(t)

	w1 := doRequest(router, http.MethodGet, "/v1/auth/token?key=partner-b", testAdminToken)
	w2 := doRequest(router, http.MethodGet, "/v1/auth/tokenreset?key=partner-b", testAdminToken)

	env1 := decodeEnvelope(t, w1.Body.Bytes())
	env2 := decodeEnvelope(t, w2.Body.Bytes())
	d1 := env1["data"].(map[string]any)
	d2 := env2["data"].(map[string]any)

	if d1["token"] == d2["token"] {
		t.Errorf("tokenreset did not rotate the token")
	}
}
