package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/papertrade-io/papertrade/internal/common"
	"github.com/papertrade-io/papertrade/internal/interfaces"
	"github.com/papertrade-io/papertrade/internal/ledger"
	"github.com/papertrade-io/papertrade/internal/models"
)

// requireUser returns the authenticated user context or writes a 401.
// The middleware guarantees it for /dashboard/ paths; this guards against
// routing mistakes.
func requireUser(w http.ResponseWriter, r *http.Request) *common.UserContext {
	uc := common.UserContextFromContext(r.Context())
	if uc == nil {
		writeBearerChallenge(w, "Authorization required")
		return nil
	}
	return uc
}

// handleProfile handles GET /dashboard/profile.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	user, err := s.app.Store.GetUser(r.Context(), uc.UserID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "User not found")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"name":            user.Name,
		"email":           user.Email,
		"virtual_balance": user.VirtualBalance,
	})
}

// handlePortfolio handles GET /dashboard/portfolio — all holdings valued
// at live prices, falling back to cost basis when a quote is unavailable.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}
	ctx := r.Context()

	user, err := s.app.Store.GetUser(ctx, uc.UserID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "User not found")
		return
	}

	holdings, err := s.app.Store.ListHoldings(ctx, uc.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", uc.UserID).Msg("Failed to list holdings")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	valuation := ledger.Valuate(ctx, holdings, func(ctx context.Context, symbol string) (*models.Quote, error) {
		qctx, cancel := context.WithTimeout(ctx, s.app.Config.Trading.GetQuoteTimeout())
		defer cancel()
		return s.app.Market.GetQuote(qctx, symbol)
	})

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"portfolio":             valuation.Items,
		"virtual_balance":       user.VirtualBalance,
		"total_portfolio_value": valuation.TotalValue,
	})
}

// tradeParams extracts and validates the symbol and quantity query
// parameters shared by the buy and sell endpoints.
func tradeParams(w http.ResponseWriter, r *http.Request) (symbol string, quantity float64, ok bool) {
	symbol = strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return "", 0, false
	}

	qty := r.URL.Query().Get("quantity")
	if qty == "" {
		WriteError(w, http.StatusBadRequest, "quantity is required")
		return "", 0, false
	}
	quantity, err := strconv.ParseFloat(qty, 64)
	if err != nil || quantity <= 0 {
		WriteError(w, http.StatusBadRequest, "quantity must be a positive number")
		return "", 0, false
	}

	return symbol, quantity, true
}

// writeTradeError maps ledger errors to HTTP statuses.
func writeTradeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidQuantity):
		WriteError(w, http.StatusBadRequest, "quantity must be a positive number")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		WriteError(w, http.StatusBadRequest, "Insufficient virtual balance")
	case errors.Is(err, ledger.ErrInsufficientShares):
		WriteError(w, http.StatusBadRequest, "Not enough shares to sell")
	case errors.Is(err, ledger.ErrPriceUnavailable):
		WriteError(w, http.StatusNotFound, "Price unavailable for symbol")
	default:
		WriteError(w, http.StatusInternalServerError, "Trade failed")
	}
}

// handleBuy handles POST /dashboard/buy?symbol=&quantity=.
func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}
	symbol, quantity, ok := tradeParams(w, r)
	if !ok {
		return
	}

	qctx, cancel := context.WithTimeout(r.Context(), s.app.Config.Trading.GetQuoteTimeout())
	defer cancel()
	quote, err := s.app.Market.GetQuote(qctx, symbol)
	if err != nil || quote.Price <= 0 {
		// A buy needs a live price; there is no safe fallback.
		WriteError(w, http.StatusNotFound, "Price unavailable for symbol")
		return
	}

	receipt, err := s.app.Ledger.Buy(r.Context(), uc.UserID, symbol, quote.Name, quantity, quote.Price)
	if err != nil {
		writeTradeError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, receipt)
}

// handleSell handles POST /dashboard/sell?symbol=&quantity=.
// When the live quote fails, the sale executes at the holding's average
// buy price rather than rejecting — a documented degraded mode.
func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}
	symbol, quantity, ok := tradeParams(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	qctx, cancel := context.WithTimeout(ctx, s.app.Config.Trading.GetQuoteTimeout())
	quote, err := s.app.Market.GetQuote(qctx, symbol)
	cancel()

	var price float64
	if err == nil && quote.Price > 0 {
		price = quote.Price
	} else {
		holding, herr := s.app.Store.GetHolding(ctx, uc.UserID, symbol)
		if herr != nil {
			if errors.Is(herr, interfaces.ErrNotFound) {
				WriteError(w, http.StatusBadRequest, "Not enough shares to sell")
			} else {
				WriteError(w, http.StatusInternalServerError, "Trade failed")
			}
			return
		}
		price = holding.AvgBuyPrice
		s.logger.Warn().
			Str("symbol", symbol).
			Float64("price", price).
			Msg("Quote unavailable, selling at average buy price")
	}

	receipt, err := s.app.Ledger.Sell(ctx, uc.UserID, symbol, quantity, price)
	if err != nil {
		writeTradeError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, receipt)
}
