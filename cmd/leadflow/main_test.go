package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/neomorfeo/leadflow/internal/adapter/fsm"
	"github.com/neomorfeo/leadflow/internal/adapter/settings"
	"github.com/neomorfeo/leadflow/internal/adapter/sqlite"
	"github.com/neomorfeo/leadflow/internal/app"
	"github.com/neomorfeo/leadflow/internal/domain"
	"github.com/neomorfeo/leadflow/internal/logger"

	handler "github.com/neomorfeo/leadflow/internal/adapter/http"
)

func TestSettingsReader_Static(t *testing.T) {
	if _, ok := settingsReader("").(settings.Static); !ok {
		t.Errorf("settingsReader(\"\") = %T, want settings.Static", settingsReader(""))
	}
}

func TestSettingsReader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	doc := "maxBasicAssignments: 2\nleadDistribution:\n  moving:\n    basic:\n      leadsPerWeek: 7\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("writing settings: %v", err)
	}

	got, err := settingsReader(path).AdminSettings(context.Background())
	if err != nil {
		t.Fatalf("AdminSettings: %v", err)
	}
	if got.MaxBasicAssignments != 2 {
		t.Errorf("MaxBasicAssignments = %d, want 2", got.MaxBasicAssignments)
	}
	if n, ok := got.LeadsPerWeek(domain.ServiceMoving, domain.PartnerBasic); !ok || n != 7 {
		t.Errorf("LeadsPerWeek = %d, %v, want 7, true", n, ok)
	}
}

// TestSmoke wires the HTTP stack like run() and verifies it responds.
func TestRequestLogger_CarriesActor(t *testing.T) {
	var buf bytes.Buffer

	router := chi.NewMux()
	router.Use(handler.ActorMiddleware)
	router.Use(requestLogger(logger.New(&buf, "info", "json")))
	router.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(handler.ActorHeader, "ops@example.com")
	router.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("parsing log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "http request" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["actor"] != "ops@example.com" {
		t.Errorf("actor = %v, want ops@example.com", entry["actor"])
	}
	if entry["status"] != float64(http.StatusNoContent) {
		t.Errorf("status = %v, want %d", entry["status"], http.StatusNoContent)
	}
}

func TestSmoke(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("database: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := app.NewWorkflow(store.Leads(), store.Partners(), settings.Static{}, nil, fsm.New())

	router := chi.NewMux()
	router.Use(handler.ActorMiddleware)
	api := humachi.New(router, huma.DefaultConfig("leadflow", "0.1.0"))
	handler.Register(api, svc)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/api/v1/leads", nil)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/v1/leads failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var leads []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&leads); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(leads) != 0 {
		t.Errorf("got %d leads, want 0 (empty database)", len(leads))
	}
}

// TestRun exercises the real run() function end-to-end: OTel, River, HTTP
// server, and graceful shutdown.
func TestRun(t *testing.T) {
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "test-run.db"))
	t.Setenv("PORT", "19876")
	t.Setenv("OTEL_EXPORTER", "none")
	t.Setenv("LOG_LEVEL", "error")

	errCh := make(chan error, 1)
	go func() { errCh <- run() }()

	serverURL := "http://localhost:19876"
	ready := false
	for i := 0; i < 50; i++ {
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, serverURL+"/api/v1/leads", nil)
		resp, reqErr := http.DefaultClient.Do(req)
		if reqErr == nil {
			resp.Body.Close()
			ready = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !ready {
		t.Fatal("server did not start within 5 seconds")
	}

	// A lead creation goes through the store and the River audit sink.
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, serverURL+"/api/v1/leads",
		strings.NewReader(`{"serviceType":"cleaning"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST /api/v1/leads failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("finding process: %v", err)
	}
	if err := proc.Signal(syscall.SIGINT); err != nil {
		t.Fatalf("sending SIGINT: %v", err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run() returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run() did not exit within 10 seconds")
	}
}

// TestRun_InvalidDB verifies run() returns an error for an invalid database path.
func TestRun_InvalidDB(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/nonexistent/path/db.sqlite")
	t.Setenv("PORT", "19877")
	t.Setenv("OTEL_EXPORTER", "none")
	t.Setenv("LOG_LEVEL", "error")

	if err := run(); err == nil {
		t.Fatal("expected error for invalid database path, got nil")
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")

	if err := run(); err == nil {
		t.Fatal("expected error for unknown log format, got nil")
	}
}
