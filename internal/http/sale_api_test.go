package handlers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func phone(qty int) map[string]any {
	return map[string]any{"name": "Galaxy A15", "brand": "Samsung", "category": "smartphone", "basePrice": "650000", "quantity": qty}
}

func TestSaleFlow(t *testing.T) {
	app, _ := newTestApp(t, testLimits)
	tok := signup(t, app, "Rija", "2468")
	id := addItem(t, app, tok, "products", phone(5))
	item := map[string]any{"kind": "product", "id": id}

	// sell the whole stock at a negotiated price
	resp, body := do(t, app, "POST", "/api/v1/sales", tok, map[string]any{"item": item, "quantity": 5, "unitPrice": "640000", "color": "noir"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("commit: %d %s", resp.StatusCode, body)
	}
	sale := decodeMap(t, body)
	if sale["unitPrice"] != "640000" || sale["color"] != "noir" {
		t.Fatalf("unexpected sale: %s", body)
	}

	resp, body = do(t, app, "GET", fmt.Sprintf("/api/v1/catalog/products/%d", id), tok, nil)
	if resp.StatusCode != http.StatusOK || decodeMap(t, body)["quantity"].(float64) != 0 {
		t.Fatalf("stock after sale: %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, app, "POST", "/api/v1/sales", tok, map[string]any{"item": item, "quantity": 1})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("oversell: want 409, got %d %s", resp.StatusCode, body)
	}
	if got := decodeMap(t, body)["available"]; got != float64(0) {
		t.Fatalf("oversell: available=%v", got)
	}

	resp, _ = do(t, app, "POST", "/api/v1/sales", tok, map[string]any{"item": item, "quantity": 0})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("zero quantity: want 400, got %d", resp.StatusCode)
	}

	resp, _ = do(t, app, "POST", "/api/v1/sales", tok, map[string]any{"item": map[string]any{"kind": "accessory", "id": 77}, "quantity": 1, "unitPrice": "1"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown item: want 404, got %d", resp.StatusCode)
	}

	resp, body = do(t, app, "GET", "/api/v1/sales", tok, nil)
	if resp.StatusCode != http.StatusOK || decodeMap(t, body)["count"].(float64) != 1 {
		t.Fatalf("ledger: %d %s", resp.StatusCode, body)
	}
}

func TestSaleDefaultsToBasePrice(t *testing.T) {
	app, _ := newTestApp(t, testLimits)
	tok := signup(t, app, "Rija", "2468")
	id := addItem(t, app, tok, "accessories", map[string]any{"name": "Câble", "category": "cable", "basePrice": 8000, "quantity": 3})

	entries := captureLogs(t, func() {
		resp, body := do(t, app, "POST", "/api/v1/sales", tok, map[string]any{"item": map[string]any{"kind": "accessories", "id": id}, "quantity": 2})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("commit: %d %s", resp.StatusCode, body)
		}
		if decodeMap(t, body)["unitPrice"] != "8000" {
			t.Fatalf("base price not applied: %s", body)
		}
	})
	e, ok := findLog(entries, "sale.commit")
	if !ok {
		t.Fatal("sale.commit not audited")
	}
	if e.Category != "audit" || e.SellerID == 0 {
		t.Fatalf("audit entry missing seller: %+v", e)
	}
}

func TestSaleStorageFailureIsNotReportedAsMissingItem(t *testing.T) {
	app, db := newTestApp(t, testLimits)
	tok := signup(t, app, "Rija", "2468")
	db.MustExec(`DROP TABLE accessories`)

	entries := captureLogs(t, func() {
		resp, body := do(t, app, "POST", "/api/v1/sales", tok, map[string]any{"item": map[string]any{"kind": "accessories", "id": 1}, "quantity": 1})
		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("want 500, got %d %s", resp.StatusCode, body)
		}
		if strings.Contains(string(body), "accessories") {
			t.Fatalf("storage detail leaked: %s", body)
		}
	})
	if _, ok := findLog(entries, "sale.commit.fail"); !ok {
		t.Fatal("storage failure not logged")
	}
}

func TestBasketIsAtomic(t *testing.T) {
	app, _ := newTestApp(t, testLimits)
	tok := signup(t, app, "Rija", "2468")
	p := addItem(t, app, tok, "products", phone(2))
	a := addItem(t, app, tok, "accessories", map[string]any{"name": "Housse", "category": "housse", "basePrice": "15000", "quantity": 1})

	lines := []map[string]any{
		{"item": map[string]any{"kind": "product", "id": p}, "quantity": 1},
		{"item": map[string]any{"kind": "accessory", "id": a}, "quantity": 2},
	}
	resp, body := do(t, app, "POST", "/api/v1/sales/basket", tok, map[string]any{"lines": lines})
	if resp.StatusCode != http.StatusConflict || !strings.Contains(string(body), "line 2") {
		t.Fatalf("basket: want 409 on line 2, got %d %s", resp.StatusCode, body)
	}
	_, body = do(t, app, "GET", fmt.Sprintf("/api/v1/catalog/products/%d", p), tok, nil)
	if decodeMap(t, body)["quantity"].(float64) != 2 {
		t.Fatalf("first line was not rolled back: %s", body)
	}

	lines[1]["quantity"] = 1
	resp, body = do(t, app, "POST", "/api/v1/sales/basket", tok, map[string]any{"lines": lines})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("basket: %d %s", resp.StatusCode, body)
	}
	if got := decodeMap(t, body)["total"]; got != "665000" {
		t.Fatalf("basket total: %v", got)
	}
}

func TestCatalogValidationAndDelete(t *testing.T) {
	app, _ := newTestApp(t, testLimits)
	tok := signup(t, app, "Rija", "2468")

	cases := []struct {
		name, method, path string
		body               any
		want               int
	}{
		{"unknown kind", "GET", "/api/v1/catalog/gadgets", nil, http.StatusBadRequest},
		{"bad id", "GET", "/api/v1/catalog/products/abc", nil, http.StatusBadRequest},
		{"missing id", "GET", "/api/v1/catalog/products/4040", nil, http.StatusNotFound},
		{"malformed json", "POST", "/api/v1/catalog/products", `{"name":`, http.StatusBadRequest},
		{"foreign category", "POST", "/api/v1/catalog/accessories", map[string]any{"name": "x", "category": "laptop", "basePrice": 1}, http.StatusBadRequest},
		{"zero price", "POST", "/api/v1/catalog/products", map[string]any{"name": "x", "brand": "y", "category": "laptop", "basePrice": 0}, http.StatusBadRequest},
		{"negative stock", "POST", "/api/v1/catalog/products", phone(-1), http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp, body := do(t, app, tc.method, tc.path, tok, tc.body)
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: want %d, got %d %s", tc.name, tc.want, resp.StatusCode, body)
		}
	}

	sold := addItem(t, app, tok, "products", phone(3))
	unsold := addItem(t, app, tok, "products", phone(3))
	resp, _ := do(t, app, "POST", "/api/v1/sales", tok, map[string]any{"item": map[string]any{"kind": "product", "id": sold}, "quantity": 1})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("commit: %d", resp.StatusCode)
	}

	resp, _ = do(t, app, "DELETE", fmt.Sprintf("/api/v1/catalog/products/%d", sold), tok, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("delete sold: want 409, got %d", resp.StatusCode)
	}
	resp, _ = do(t, app, "DELETE", fmt.Sprintf("/api/v1/catalog/products/%d", unsold), tok, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete unsold: want 204, got %d", resp.StatusCode)
	}

	upd := phone(7)
	upd["basePrice"] = "600000"
	resp, body := do(t, app, "PUT", fmt.Sprintf("/api/v1/catalog/products/%d", sold), tok, upd)
	if resp.StatusCode != http.StatusOK || decodeMap(t, body)["quantity"].(float64) != 7 {
		t.Fatalf("update: %d %s", resp.StatusCode, body)
	}
}

func TestDashboardAndExport(t *testing.T) {
	app, _ := newTestApp(t, testLimits)
	tok := signup(t, app, "Rija", "2468")
	id := addItem(t, app, tok, "products", phone(4))

	resp, body := do(t, app, "GET", "/api/v1/dashboard", tok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: %d %s", resp.StatusCode, body)
	}
	if got := decodeMap(t, body)["totalGain"]; got != "2600000" {
		t.Fatalf("totalGain before sale: %v", got)
	}

	resp, _ = do(t, app, "POST", "/api/v1/sales", tok, map[string]any{"item": map[string]any{"kind": "product", "id": id}, "quantity": 1})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("commit: %d", resp.StatusCode)
	}
	_, body = do(t, app, "GET", "/api/v1/dashboard", tok, nil)
	d := decodeMap(t, body)
	if d["totalGain"] != "1950000" {
		t.Fatalf("dashboard not refreshed after sale: %s", body)
	}
	if d["sales"].(map[string]any)["todaySales"].(float64) != 1 {
		t.Fatalf("todaySales: %s", body)
	}

	resp, body = do(t, app, "GET", "/api/v1/export/catalog.xlsx", tok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "application/vnd.openxmlformats") {
		t.Fatalf("export content type: %s", resp.Header.Get("Content-Type"))
	}
	if !strings.HasPrefix(string(body), "PK") {
		t.Fatal("export is not a zip container")
	}
}
