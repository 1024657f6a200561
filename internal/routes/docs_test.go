package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/yamenzk/personal-trainer/internal/config"
)

func TestRegisterDocsRoutesServesDocsPageAndSpec(t *testing.T) {
	app := fiber.New()
	cfg := &config.Config{AppEnv: "development", EnableDocs: true}

	if err := registerDocsRoutes(app, cfg); err != nil {
		t.Fatalf("registerDocsRoutes: %v", err)
	}

	pageReq := httptest.NewRequest(http.MethodGet, "/docs", nil)
	pageResp, err := app.Test(pageReq)
	if err != nil {
		t.Fatalf("app.Test docs page: %v", err)
	}
	defer pageResp.Body.Close()

	if pageResp.StatusCode != http.StatusOK {
		t.Fatalf("expected docs page status 200, got %d", pageResp.StatusCode)
	}
	if got := pageResp.Header.Get("Content-Security-Policy"); !strings.Contains(got, "default-src 'none'") {
		t.Fatalf("expected restrictive CSP, got %q", got)
	}
	body, err := io.ReadAll(pageResp.Body)
	if err != nil {
		t.Fatalf("read docs page: %v", err)
	}
	if !strings.Contains(string(body), "/api/wizard/next") {
		t.Fatalf("expected docs page to list the wizard endpoints")
	}

	specReq := httptest.NewRequest(http.MethodGet, "/docs/openapi.yaml", nil)
	specResp, err := app.Test(specReq)
	if err != nil {
		t.Fatalf("app.Test docs spec: %v", err)
	}
	defer specResp.Body.Close()

	if specResp.StatusCode != http.StatusOK {
		t.Fatalf("expected docs spec status 200, got %d", specResp.StatusCode)
	}
	if got := specResp.Header.Get(fiber.HeaderContentType); !strings.Contains(got, "application/yaml") {
		t.Fatalf("expected yaml content type, got %q", got)
	}
}

func TestRegisterDocsRoutesSkipsWhenDisabled(t *testing.T) {
	app := fiber.New()
	cfg := &config.Config{AppEnv: "production", EnableDocs: true}

	if err := registerDocsRoutes(app, cfg); err != nil {
		t.Fatalf("registerDocsRoutes: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 when docs are not in development, got %d", resp.StatusCode)
	}
}

func TestParseOpenAPISpecListsEveryOperation(t *testing.T) {
	_, operations, err := parseOpenAPISpec(openAPISpec)
	if err != nil {
		t.Fatalf("parseOpenAPISpec: %v", err)
	}

	want := map[string]bool{
		"GET /api/navigate":          false,
		"POST /api/auth/login":       false,
		"PUT /api/wizard/input":      false,
		"POST /api/wizard/back":      false,
		"GET /api/preferences/theme": false,
	}
	for _, op := range operations {
		key := op.Method + " " + op.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for key, seen := range want {
		if !seen {
			t.Fatalf("expected operation %s in spec", key)
		}
	}
}

func TestParseOpenAPISpecRejectsEmptyPaths(t *testing.T) {
	if _, _, err := parseOpenAPISpec([]byte("openapi: 3.0.3\ninfo:\n  title: x\n")); err == nil {
		t.Fatalf("expected error for spec without paths")
	}
}
