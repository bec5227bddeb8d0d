package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spendlog/internal/core"
)

type createExpenseRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
}

type expenseListResponse struct {
	Expenses []core.Record `json:"expenses"`
	Count    int           `json:"count"`
}

type budgetRequest struct {
	Limit string `json:"limit"`
}

type budgetResponse struct {
	BudgetCents int64 `json:"budget_cents"`
}

type summaryResponse struct {
	PeriodTotalCents int64                `json:"period_total_cents"`
	TodayCents       int64                `json:"today_cents"`
	BudgetCents      int64                `json:"budget_cents"`
	UsageRatio       float64              `json:"usage_ratio"`
	OverBudget       bool                 `json:"over_budget"`
	ByCategory       []core.CategoryTotal `json:"by_category"`
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListExpenses(w, r)
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleListExpenses returns every record, newest first.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	records := s.ledger.List()
	writeJSON(w, http.StatusOK, expenseListResponse{Expenses: records, Count: len(records)})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(r.Context(), "Parse request body error", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount: "+err.Error())
		return
	}

	candidate := core.Record{
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
		Category:    core.Category(sanitizeInput(req.Category)),
	}

	// Date is optional; an empty value means today.
	if v := strings.TrimSpace(req.Date); v != "" {
		date, err := core.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date: expected YYYY-MM-DD")
			return
		}
		candidate.Date = date
	}

	record, err := s.ledger.Add(r.Context(), candidate)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Expense create error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create expense")
		return
	}

	s.invalidateReads()
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/expenses/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	if err := s.ledger.Remove(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Expense delete error", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}

	s.invalidateReads()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, budgetResponse{BudgetCents: s.ledger.BudgetLimit().Cents})

	case http.MethodPut:
		var req budgetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		// A malformed or negative limit collapses to zero instead of
		// failing the request.
		limit := core.Money{Cents: core.ParseBudgetCents(strings.TrimSpace(req.Limit))}
		if err := s.ledger.SetBudgetLimit(r.Context(), limit); err != nil {
			slog.ErrorContext(r.Context(), "Budget update error", "error", err, "limit_cents", limit.Cents)
			writeError(w, http.StatusInternalServerError, "failed to update budget")
			return
		}

		s.invalidateReads()
		writeJSON(w, http.StatusOK, budgetResponse{BudgetCents: limit.Cents})

	default:
		w.Header().Set("Allow", "GET, PUT")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const key = "summary"
	if cached, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit")
		writeJSON(w, http.StatusOK, cached)
		return
	}

	records := s.ledger.List()
	budget := s.ledger.BudgetLimit()
	total := core.PeriodTotal(records)
	today := core.DailyTotal(records, core.DateOf(time.Now()))

	resp := summaryResponse{
		PeriodTotalCents: total.Cents,
		TodayCents:       today.Cents,
		BudgetCents:      budget.Cents,
		UsageRatio:       core.BudgetUsageRatio(total, budget),
		OverBudget:       core.IsOverBudget(total, budget),
		ByCategory:       core.TotalByCategory(records, s.categories),
	}

	s.summaryCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	start, err := core.ParseDate(strings.TrimSpace(q.Get("start")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date: expected YYYY-MM-DD")
		return
	}
	end, err := core.ParseDate(strings.TrimSpace(q.Get("end")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date: expected YYYY-MM-DD")
		return
	}

	recipient := sanitizeInput(q.Get("to"))
	if recipient == "" {
		recipient = s.recipient
	}

	key := start.String() + "|" + end.String() + "|" + recipient
	if cached, found := s.reportCache.Get(key); found {
		slog.DebugContext(r.Context(), "Report cache hit", "start", start.String(), "end", end.String())
		writeJSON(w, http.StatusOK, cached)
		return
	}

	doc := s.reports.Build(s.ledger.List(), start, end, recipient)
	s.reportCache.Set(key, doc)
	writeJSON(w, http.StatusOK, doc)
}
