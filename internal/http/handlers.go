package http

import (
	"context"
	"net/http"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

type (
	authResponse struct {
		Token     string      `json:"token"`
		ExpiresAt time.Time   `json:"expires_at"`
		User      profileView `json:"user"`
	}

	profileView struct {
		core.User
		Currency string `json:"currency"`
	}

	summaryView struct {
		services.Summary
		Formatted map[string]string `json:"formatted"`
	}
)

func newProfileView(u core.User) profileView {
	return profileView{User: u, Currency: core.CurrencySymbol(u.Country)}
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady verifies the record store answers within readyTimeout.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"store": "ok"}
	status, code := "ready", http.StatusOK
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				applog.FieldError, err.Error())
		}
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	u, err := s.accounts.Register(r.Context(), p.RegistrationInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeSession(w, r, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	u, err := s.accounts.Login(r.Context(), p.LoginInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, u)
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int, u core.User) {
	token, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, authResponse{Token: token, ExpiresAt: exp, User: newProfileView(u)})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.accounts.Profile(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(u))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	u, err := s.accounts.UpdateProfile(r.Context(), userID(r.Context()), p.ProfileInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(u))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.List(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	c, err := s.categories.Add(r.Context(), userID(r.Context()), p.Get("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.categories.Delete(r.Context(), userID(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q, ok := parseQuery(w, r)
	if !ok {
		return
	}
	txs, err := s.transactions.List(r.Context(), userID(r.Context()), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	t, err := s.transactions.Create(r.Context(), userID(r.Context()), p.TransactionInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	t, err := s.transactions.Update(r.Context(), userID(r.Context()), r.PathValue("id"), p.TransactionInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if _, err := s.transactions.Delete(r.Context(), userID(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	typeFilter, err := ParseTypeFilter(query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit := ParseLimit(query, "limit", services.DefaultRecentLimit, maxRecentLimit)
	txs, err := s.transactions.Recent(r.Context(), userID(r.Context()), limit, typeFilter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	q, ok := parseQuery(w, r)
	if !ok {
		return
	}
	data, enc, err := s.transactions.Export(r.Context(), userID(r.Context()), r.URL.Query().Get("format"), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filename := "transactions-" + time.Now().Format("2006-01-02") + "." + enc.Extension()
	w.Header().Set("Content-Type", enc.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	sum, err := s.transactions.Summary(r.Context(), userID(r.Context()), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	country := ""
	if u, err := s.accounts.Profile(r.Context(), userID(r.Context())); err == nil {
		country = u.Country
	}
	writeJSON(w, http.StatusOK, summaryView{
		Summary: sum,
		Formatted: map[string]string{
			"income":  core.FormatCurrency(sum.Totals.Income, country),
			"expense": core.FormatCurrency(sum.Totals.Expense, country),
			"balance": core.FormatCurrency(sum.Totals.Balance, country),
			"total":   core.FormatCurrency(sum.Total, country),
		},
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	d, err := s.transactions.Dashboard(r.Context(), userID(r.Context()), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	slices, err := s.transactions.Breakdown(r.Context(), userID(r.Context()), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slices)
}

func (s *Server) parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Malformed request body",
			applog.FieldError, err.Error())
		writeMessage(w, r, http.StatusBadRequest, "Invalid request format")
		return nil, false
	}
	return p, true
}

func parseQuery(w http.ResponseWriter, r *http.Request) (core.Query, bool) {
	query := r.URL.Query()
	q, err := core.ParseQuery(query.Get("search"), query.Get("type"), query.Get("sort"))
	if err != nil {
		writeError(w, r, err)
		return core.Query{}, false
	}
	return q, true
}

func parsePeriod(w http.ResponseWriter, r *http.Request) (core.Period, bool) {
	p, err := core.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, r, err)
		return "", false
	}
	return p, true
}
