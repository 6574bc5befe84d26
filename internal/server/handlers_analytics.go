package server

import (
	"context"
	"net/http"

	"github.com/papertrade-io/papertrade/internal/analytics"
	"github.com/papertrade-io/papertrade/internal/models"
)

const maxSearchResults = 10

// handlePopularStocks handles GET /analytics/stocks/popular — quotes for
// the configured symbol list. Symbols that fail to quote are skipped.
func (s *Server) handlePopularStocks(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()

	quotes := make([]*models.Quote, 0, len(s.app.Config.Trading.PopularSymbols))
	for _, symbol := range s.app.Config.Trading.PopularSymbols {
		quote, err := s.app.Market.GetQuote(ctx, symbol)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Popular quote failed, skipping")
			continue
		}
		quotes = append(quotes, quote)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"stocks": quotes})
}

// handleStockDetail handles GET /analytics/stocks/{symbol}.
func (s *Server) handleStockDetail(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	quote, err := s.app.Market.GetQuote(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Stock not found: "+symbol)
		return
	}

	WriteJSON(w, http.StatusOK, quote)
}

// handleStockChart handles GET /analytics/stocks/{symbol}/chart — one month
// of daily closes. With ?format=png the series renders server-side.
func (s *Server) handleStockChart(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	bars, err := s.app.Market.GetHistory(r.Context(), symbol, "1mo")
	if err != nil {
		WriteError(w, http.StatusNotFound, "Chart data not found: "+symbol)
		return
	}

	if r.URL.Query().Get("format") == "png" {
		png, err := analytics.RenderPriceChart(symbol, bars)
		if err != nil {
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("Chart render failed")
			WriteError(w, http.StatusInternalServerError, "Chart render failed")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"chart":  bars,
	})
}

// handleStockPredictions handles GET /analytics/stocks/{symbol}/predictions —
// a trend projection from two months of history.
func (s *Server) handleStockPredictions(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	bars, err := s.app.Market.GetHistory(r.Context(), symbol, "2mo")
	if err != nil {
		WriteError(w, http.StatusNotFound, "History not found: "+symbol)
		return
	}

	preds, err := analytics.Predict(bars)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Not enough history for predictions: "+symbol)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":      symbol,
		"predictions": preds,
	})
}

// handleSearch handles GET /analytics/search?query= — up to 10 matches.
// Upstream failures degrade to an empty list rather than an error.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		WriteError(w, http.StatusBadRequest, "query is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.app.Config.Trading.GetQuoteTimeout())
	defer cancel()

	results, err := s.app.Market.Search(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", query).Msg("Symbol search failed")
		results = nil
	}
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	if results == nil {
		results = []models.SearchResult{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}
