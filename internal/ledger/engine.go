// Package ledger implements the buy/sell accounting engine: virtual cash
// balance plus per-symbol holdings with moving-average cost basis.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/papertrade-io/papertrade/internal/common"
	"github.com/papertrade-io/papertrade/internal/interfaces"
	"github.com/papertrade-io/papertrade/internal/models"
)

var (
	// ErrInvalidQuantity rejects zero or negative trade quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrPriceUnavailable means no usable price could be resolved for the trade.
	ErrPriceUnavailable = errors.New("price unavailable")
	// ErrInsufficientFunds means the trade notional exceeds the cash balance.
	ErrInsufficientFunds = errors.New("insufficient virtual balance")
	// ErrInsufficientShares means the user holds fewer shares than requested,
	// including the case of no holding at all.
	ErrInsufficientShares = errors.New("not enough shares to sell")
)

// Engine executes trades against the user store. Trades for the same user
// serialize on a per-user lock; the store persists each trade atomically.
type Engine struct {
	store  interfaces.UserStore
	locks  *lockTable
	logger *common.Logger
}

// NewEngine creates a ledger engine over the given store.
func NewEngine(store interfaces.UserStore, logger *common.Logger) *Engine {
	return &Engine{
		store:  store,
		locks:  newLockTable(),
		logger: logger,
	}
}

// Buy purchases quantity shares of symbol at price, debiting the user's
// cash balance and folding the purchase into the holding's weighted
// average cost basis. On any failure the user's state is unchanged.
func (e *Engine) Buy(ctx context.Context, userID, symbol, name string, quantity, price float64) (*models.Receipt, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if price <= 0 {
		return nil, ErrPriceUnavailable
	}

	e.locks.lock(userID)
	defer e.locks.unlock(userID)

	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("buy: %w", err)
	}

	cost := quantity * price
	if user.VirtualBalance < cost {
		return nil, ErrInsufficientFunds
	}
	user.VirtualBalance -= cost

	holding, err := e.store.GetHolding(ctx, userID, symbol)
	switch {
	case err == nil:
		// Moving-average cost basis. The operation order matters for
		// bit-exact results against fixed fixtures.
		newQty := holding.Quantity + quantity
		holding.AvgBuyPrice = (holding.AvgBuyPrice*holding.Quantity + quantity*price) / newQty
		holding.Quantity = newQty
		if name != "" {
			holding.Name = name
		}
	case errors.Is(err, interfaces.ErrNotFound):
		holding = &models.Holding{
			UserID:      userID,
			Symbol:      symbol,
			Name:        name,
			Quantity:    quantity,
			AvgBuyPrice: price,
		}
	default:
		return nil, fmt.Errorf("buy: %w", err)
	}

	if err := e.store.CommitTrade(ctx, user, holding, false); err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("user_id", userID).
		Str("symbol", symbol).
		Float64("quantity", quantity).
		Float64("price", price).
		Msg("Buy executed")

	return &models.Receipt{
		Side:       models.SideBuy,
		Symbol:     symbol,
		Quantity:   quantity,
		Price:      price,
		Notional:   cost,
		NewBalance: user.VirtualBalance,
		ExecutedAt: time.Now(),
	}, nil
}

// Sell disposes of quantity shares of symbol at price, crediting the cash
// balance. The average buy price never changes on a sell; a position sold
// down to exactly zero is removed rather than kept as a zero row.
func (e *Engine) Sell(ctx context.Context, userID, symbol string, quantity, price float64) (*models.Receipt, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	e.locks.lock(userID)
	defer e.locks.unlock(userID)

	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sell: %w", err)
	}

	holding, err := e.store.GetHolding(ctx, userID, symbol)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrInsufficientShares
		}
		return nil, fmt.Errorf("sell: %w", err)
	}
	if holding.Quantity < quantity {
		return nil, ErrInsufficientShares
	}

	if price <= 0 {
		return nil, ErrPriceUnavailable
	}

	proceeds := quantity * price
	user.VirtualBalance += proceeds
	holding.Quantity -= quantity
	remove := holding.Quantity == 0

	if err := e.store.CommitTrade(ctx, user, holding, remove); err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("user_id", userID).
		Str("symbol", symbol).
		Float64("quantity", quantity).
		Float64("price", price).
		Bool("closed", remove).
		Msg("Sell executed")

	return &models.Receipt{
		Side:       models.SideSell,
		Symbol:     symbol,
		Quantity:   quantity,
		Price:      price,
		Notional:   proceeds,
		NewBalance: user.VirtualBalance,
		ExecutedAt: time.Now(),
	}, nil
}
