package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"stockbook/internal/cache"
	"stockbook/internal/config"
	"stockbook/internal/http/handlers"
	applog "stockbook/internal/log"
	"stockbook/internal/repos"
	"stockbook/web"
)

var testLimits = handlers.Limits{API: 1000, Login: 100}

func newTestApp(t *testing.T, lim handlers.Limits) (*fiber.App, *sqlx.DB) {
	t.Helper()
	t.Cleanup(applog.SetOutput(io.Discard))
	cfg := config.Config{
		DBDSN:        filepath.Join(t.TempDir(), "api.db"),
		JWTSecret:    "test-secret",
		JWTTTL:       time.Hour,
		Timezone:     "UTC",
		CacheBackend: "memory",
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	app := handlers.NewApp(web.Engine(false), false)
	handlers.Routes(app, handlers.NewDeps(db, cfg, cache.NewMemory()), lim)
	return app, db
}

// do sends body as JSON (when non-nil) with an optional bearer token.
func do(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			if err != nil {
				t.Fatal(err)
			}
			r = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func decodeMap(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return m
}

// signup creates a seller and returns its bearer token.
func signup(t *testing.T, app *fiber.App, name, passcode string) string {
	t.Helper()
	resp, body := do(t, app, "POST", "/api/v1/sellers", "", map[string]string{"name": name, "passcode": passcode})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup %s: status %d body=%s", name, resp.StatusCode, body)
	}
	tok, _ := decodeMap(t, body)["token"].(string)
	if tok == "" {
		t.Fatalf("signup %s: no token in %s", name, body)
	}
	return tok
}

// addItem creates a catalog item and returns its id.
func addItem(t *testing.T, app *fiber.App, token, kind string, item map[string]any) int64 {
	t.Helper()
	resp, body := do(t, app, "POST", "/api/v1/catalog/"+kind, token, item)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add %s: status %d body=%s", kind, resp.StatusCode, body)
	}
	return int64(decodeMap(t, body)["id"].(float64))
}

type logEntry struct {
	Level    string         `json:"level"`
	Action   string         `json:"action"`
	Category string         `json:"category"`
	SellerID int64          `json:"seller_id"`
	Fields   map[string]any `json:"fields"`
}

type lockedWriter struct {
	mu sync.Mutex
	w  bytes.Buffer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// captureLogs collects the structured entries written while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	lw := &lockedWriter{}
	restore := applog.SetOutput(lw)
	fn()
	restore()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(lw.w.String()), "\n") {
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
