package server

import (
	"net/http"
	"strings"

	"github.com/papertrade-io/papertrade/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Auth
	mux.HandleFunc("/auth/signup", s.handleSignup)
	mux.HandleFunc("/auth/login", s.handleLogin)

	// Dashboard (bearer auth)
	mux.HandleFunc("/dashboard/profile", s.handleProfile)
	mux.HandleFunc("/dashboard/portfolio", s.handlePortfolio)
	mux.HandleFunc("/dashboard/buy", s.handleBuy)
	mux.HandleFunc("/dashboard/sell", s.handleSell)

	// Analytics
	mux.HandleFunc("/analytics/stocks/popular", s.handlePopularStocks)
	mux.HandleFunc("/analytics/stocks/", s.routeAnalyticsStocks)
	mux.HandleFunc("/analytics/search", s.handleSearch)

	// Live prices
	mux.HandleFunc("/ws/prices", s.handlePricesWS)
}

// routeAnalyticsStocks dispatches /analytics/stocks/{symbol}[/chart|/predictions].
func (s *Server) routeAnalyticsStocks(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/analytics/stocks/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	parts := strings.SplitN(path, "/", 2)
	symbol := strings.ToUpper(parts[0])
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	switch subpath {
	case "":
		s.handleStockDetail(w, r, symbol)
	case "chart":
		s.handleStockChart(w, r, symbol)
	case "predictions":
		s.handleStockPredictions(w, r, symbol)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
