package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/account"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/analysis"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/credits"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/llm"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/ratelimit"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/auth"
	"github.com/cakirfaruk/quill-scan-pro-sub000/internal/shared/config"
)

func testRouterDeps() RouterDeps {
	gin.SetMode(gin.TestMode)
	creditRepo := credits.NewMemoryRepo()
	creditSvc := credits.NewService(creditRepo)
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), nil)
	analysisSvc := analysis.NewService(analysis.NewMemoryRepo(creditRepo), creditSvc, limiter, llm.PlaceholderClient{}, nil)

	return RouterDeps{
		Config:          config.Config{Env: "dev", CORSAllowOrigin: []string{"*"}},
		Limiter:         limiter,
		AnalysisHandler: analysis.NewHandler(analysisSvc),
		CreditsHandler:  credits.NewHandler(creditSvc),
		AccountHandler:  account.NewHandler(account.NewService(analysis.NewMemoryRepo(creditRepo), creditRepo)),
	}
}

func TestHealthEndpoint(t *testing.T) {
	r := NewRouter(testRouterDeps())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected health payload: %s", w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := NewRouter(testRouterDeps())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "analysis_started_total") {
		t.Fatalf("expected counters in metrics output: %s", w.Body.String())
	}
}

func TestAPIRequiresAuth(t *testing.T) {
	r := NewRouter(testRouterDeps())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/credits", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAPIAcceptsSignedToken(t *testing.T) {
	r := NewRouter(testRouterDeps())

	token, err := auth.SignToken("user-1", "", "", time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/credits", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"credits":0`) {
		t.Fatalf("unexpected balance payload: %s", w.Body.String())
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{
		"":      ":8080",
		"9000":  ":9000",
		":7070": ":7070",
	}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
