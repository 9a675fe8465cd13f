package server

import (
	"net/http"

	"github.com/esime/ielec/metrics"
)

// setupRoutes registers every endpoint. API routes are rate limited per
// client; all but the account routes require a signed-in user.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.config.Metrics.Enabled {
		p := s.config.Metrics.Path
		if p == "" {
			p = "/metrics"
		}
		s.mux.Handle("GET "+p, metrics.Handler())
	}

	// Accounts
	s.public("POST /api/register", s.accounts.RegisterHandler)
	s.public("POST /api/login", s.accounts.LoginHandler)
	s.public("POST /api/logout", s.accounts.LogoutHandler)
	s.public("POST /api/forgot-password", s.accounts.ForgotPasswordHandler)
	s.public("POST /api/reset-password", s.accounts.ResetPasswordHandler)
	s.private("GET /api/me", s.accounts.MeHandler)

	// Calculators and documents
	s.private("POST /api/calc/{calculator}", s.handleCalculate)
	s.private("POST /api/interpolate", s.handleInterpolate)
	s.private("POST /api/report/{file}", s.handleReport)

	// History
	s.private("GET /api/history", s.handleHistoryList)
	s.private("DELETE /api/history", s.handleHistoryClear)
	s.private("GET /api/history/export.csv", s.handleHistoryCSV)
	s.private("GET /api/history/export.json", s.handleHistoryExport)
	s.private("POST /api/history/import", s.handleHistoryImport)
	s.private("GET /api/history/{id}", s.handleHistoryGet)
	s.private("DELETE /api/history/{id}", s.handleHistoryDelete)
	s.private("GET /api/history/{id}/report/{format}", s.handleHistoryReport)

	// Clients and tasks
	s.private("GET /api/clients", s.handleClientsList)
	s.private("POST /api/clients", s.handleClientsCreate)
	s.private("DELETE /api/clients/{id}", s.handleClientsDelete)
	s.private("GET /api/tasks", s.handleTasksList)
	s.private("POST /api/tasks", s.handleTasksCreate)

	// Archived reports
	s.private("GET /api/archive", s.handleArchiveList)
	s.private("GET /api/archive/{key...}", s.handleArchiveGet)
}

func (s *Server) public(pattern string, h http.HandlerFunc) {
	s.mux.Handle(pattern, s.limiter.limitRequests(h, s.config.Server.Proxy))
}

func (s *Server) private(pattern string, h http.HandlerFunc) {
	s.mux.Handle(pattern, s.limiter.limitRequests(s.gate.RequireAuth(h), s.config.Server.Proxy))
}
