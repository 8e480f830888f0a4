package handlers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"stockbook/internal/http/handlers"
)

func testLimitsWithLogin(n int) handlers.Limits {
	lim := testLimits
	lim.Login = n
	return lim
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app, _ := newTestApp(t, testLimits)

	for _, path := range []string{"/api/v1/catalog/products", "/api/v1/sales", "/api/v1/dashboard", "/api/v1/export/catalog.xlsx"} {
		var status int
		entries := captureLogs(t, func() {
			resp, _ := do(t, app, "GET", path, "", nil)
			status = resp.StatusCode
		})
		if status != http.StatusUnauthorized {
			t.Fatalf("%s without token: want 401, got %d", path, status)
		}
		if _, ok := findLog(entries, "access.denied"); !ok {
			t.Fatalf("%s: access.denied not logged", path)
		}
	}

	resp, _ := do(t, app, "GET", "/api/v1/sales", "not-a-jwt", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("garbage token: want 401, got %d", resp.StatusCode)
	}
}

func TestDashboardPageAcceptsCookieOnly(t *testing.T) {
	app, _ := newTestApp(t, testLimits)
	tok := signup(t, app, "<b>Rija</b>", "2468")

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "stockbook_token", Value: tok})
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard page: %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	page := string(raw)
	if strings.Contains(page, "<b>Rija</b>") || !strings.Contains(page, "&lt;b&gt;Rija&lt;/b&gt;") {
		t.Fatalf("seller name not escaped: %s", page)
	}

	// the cookie is not enough for the API
	req = httptest.NewRequest("GET", "/api/v1/sales", nil)
	req.AddCookie(&http.Cookie{Name: "stockbook_token", Value: tok})
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("cookie on API: want 401, got %d", resp.StatusCode)
	}
}
