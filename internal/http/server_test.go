package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/ledger"
	"spendlog/internal/report"
	"spendlog/internal/services"
	"spendlog/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	snapshots, err := storage.NewFileStore(filepath.Join(t.TempDir(), "ledger.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	store, err := ledger.Open(context.Background(), snapshots, ledger.DefaultConfig())
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}

	svc := services.NewLedgerService(store, nil)
	clock := func() time.Time { return time.Date(2023, 5, 15, 10, 0, 0, 0, time.UTC) }
	srv := NewServer(":0", svc, report.NewBuilder(clock), core.Categories(), "Amma")
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func createExpense(t *testing.T, srv *Server, date, desc, amount, category string) core.Record {
	t.Helper()

	rr := doJSON(t, srv, http.MethodPost, "/expenses", createExpenseRequest{
		Date: date, Description: desc, Amount: amount, Category: category,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create expense status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var rec core.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode created record: %v", err)
	}
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rr.Code)
		}
	}
}

func TestCreateAndListExpenses(t *testing.T) {
	srv := newTestServer(t)

	first := createExpense(t, srv, "2023-05-10", "Lunch", "123.45", "Food")
	if first.Amount.Cents != 12345 {
		t.Errorf("created amount = %d cents, want 12345", first.Amount.Cents)
	}
	if first.Category != core.CategoryFood {
		t.Errorf("created category = %q, want %q", first.Category, core.CategoryFood)
	}
	second := createExpense(t, srv, "2023-05-11", "Bus", "50", "Transport")

	rr := doJSON(t, srv, http.MethodGet, "/expenses", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}

	var resp expenseListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("list count = %d, want 2", resp.Count)
	}
	// Newest first.
	if resp.Expenses[0].ID != second.ID || resp.Expenses[1].ID != first.ID {
		t.Errorf("list order = [%d %d], want [%d %d]",
			resp.Expenses[0].ID, resp.Expenses[1].ID, second.ID, first.ID)
	}
}

func TestCreateExpenseRejectsInvalidInput(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		req  createExpenseRequest
	}{
		{"empty description", createExpenseRequest{Date: "2023-05-10", Description: "  ", Amount: "10", Category: "Food"}},
		{"bad amount", createExpenseRequest{Date: "2023-05-10", Description: "Lunch", Amount: "abc", Category: "Food"}},
		{"zero amount", createExpenseRequest{Date: "2023-05-10", Description: "Lunch", Amount: "0", Category: "Food"}},
		{"negative amount", createExpenseRequest{Date: "2023-05-10", Description: "Lunch", Amount: "-5", Category: "Food"}},
		{"unknown category", createExpenseRequest{Date: "2023-05-10", Description: "Lunch", Amount: "10", Category: "Gadgets"}},
		{"bad date", createExpenseRequest{Date: "10/05/2023", Description: "Lunch", Amount: "10", Category: "Food"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, http.MethodPost, "/expenses", tt.req)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422 (body: %s)", rr.Code, rr.Body.String())
			}
		})
	}

	rr := doJSON(t, srv, http.MethodGet, "/expenses", nil)
	var resp expenseListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("ledger gained %d records from rejected input", resp.Count)
	}
}

func TestCreateExpenseDefaultsDateToToday(t *testing.T) {
	srv := newTestServer(t)

	rec := createExpense(t, srv, "", "Coffee", "3.50", "Food")
	want := core.DateOf(time.Now())
	if !rec.Date.Equal(want) {
		t.Errorf("date = %s, want today %s", rec.Date, want)
	}
}

func TestDeleteExpense(t *testing.T) {
	srv := newTestServer(t)

	rec := createExpense(t, srv, "2023-05-10", "Lunch", "10", "Food")

	rr := doJSON(t, srv, http.MethodDelete, "/expenses/"+jsonID(rec.ID), nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rr.Code)
	}

	// Deleting an absent id is a no-op, still 204.
	rr = doJSON(t, srv, http.MethodDelete, "/expenses/"+jsonID(rec.ID), nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("repeat delete status = %d, want 204", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/expenses/not-a-number", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad id delete status = %d, want 400", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/expenses", nil)
	var resp expenseListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("list count after delete = %d, want 0", resp.Count)
	}
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestBudgetEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/budget", nil)
	var resp budgetResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode budget: %v", err)
	}
	if resp.BudgetCents != ledger.DefaultBudgetCents {
		t.Errorf("initial budget = %d, want %d", resp.BudgetCents, ledger.DefaultBudgetCents)
	}

	rr = doJSON(t, srv, http.MethodPut, "/budget", budgetRequest{Limit: "7500.50"})
	if rr.Code != http.StatusOK {
		t.Fatalf("put budget status = %d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode budget: %v", err)
	}
	if resp.BudgetCents != 750050 {
		t.Errorf("budget after put = %d, want 750050", resp.BudgetCents)
	}

	// Malformed limits collapse to zero.
	rr = doJSON(t, srv, http.MethodPut, "/budget", budgetRequest{Limit: "nonsense"})
	if rr.Code != http.StatusOK {
		t.Fatalf("put malformed budget status = %d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode budget: %v", err)
	}
	if resp.BudgetCents != 0 {
		t.Errorf("budget after malformed put = %d, want 0", resp.BudgetCents)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	createExpense(t, srv, "2023-05-10", "Lunch", "30", "Food")
	createExpense(t, srv, "2023-05-11", "Bus", "20", "Transport")

	rr := doJSON(t, srv, http.MethodGet, "/summary", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rr.Code)
	}

	var resp summaryResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if resp.PeriodTotalCents != 5000 {
		t.Errorf("period total = %d, want 5000", resp.PeriodTotalCents)
	}
	if resp.BudgetCents != ledger.DefaultBudgetCents {
		t.Errorf("budget = %d, want %d", resp.BudgetCents, ledger.DefaultBudgetCents)
	}
	if resp.OverBudget {
		t.Error("over_budget = true, want false")
	}
	if len(resp.ByCategory) != len(core.Categories()) {
		t.Errorf("by_category has %d entries, want %d", len(resp.ByCategory), len(core.Categories()))
	}

	// A new expense must invalidate the cached summary.
	createExpense(t, srv, "2023-05-12", "Book", "10", "Books")
	rr = doJSON(t, srv, http.MethodGet, "/summary", nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if resp.PeriodTotalCents != 6000 {
		t.Errorf("period total after add = %d, want 6000", resp.PeriodTotalCents)
	}
}

func TestReportEndpoint(t *testing.T) {
	srv := newTestServer(t)

	createExpense(t, srv, "2023-05-01", "Lunch", "500", "Food")
	createExpense(t, srv, "2023-05-20", "Rent", "900", "Bills")

	rr := doJSON(t, srv, http.MethodGet, "/report?start=2023-05-01&end=2023-05-02", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("report status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var doc report.Document
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if doc.Header.Recipient != "Amma" {
		t.Errorf("recipient = %q, want default %q", doc.Header.Recipient, "Amma")
	}
	if len(doc.Lines) != 1 {
		t.Fatalf("report has %d lines, want 1", len(doc.Lines))
	}
	if doc.Total.Cents != 50000 {
		t.Errorf("report total = %d, want 50000", doc.Total.Cents)
	}

	rr = doJSON(t, srv, http.MethodGet, "/report?start=2023-05-01&end=2023-05-31&to=Nangi", nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if doc.Header.Recipient != "Nangi" {
		t.Errorf("recipient = %q, want %q", doc.Header.Recipient, "Nangi")
	}
	if len(doc.Lines) != 2 {
		t.Errorf("report has %d lines, want 2", len(doc.Lines))
	}

	rr = doJSON(t, srv, http.MethodGet, "/report?start=bogus&end=2023-05-31", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad start date status = %d, want 400", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method, path string
	}{
		{http.MethodPut, "/expenses"},
		{http.MethodPost, "/expenses/123"},
		{http.MethodDelete, "/budget"},
		{http.MethodPost, "/summary"},
		{http.MethodPost, "/report"},
	}
	for _, tt := range tests {
		rr := doJSON(t, srv, tt.method, tt.path, nil)
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s status = %d, want 405", tt.method, tt.path, rr.Code)
		}
	}
}
