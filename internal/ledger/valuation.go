package ledger

import (
	"context"

	"github.com/papertrade-io/papertrade/internal/models"
)

// QuoteFunc resolves a current price for a symbol. An error means the
// price is unavailable right now, not that the symbol is invalid.
type QuoteFunc func(ctx context.Context, symbol string) (*models.Quote, error)

// Valuate prices each holding with a live quote and sums the results.
// When a quote cannot be fetched the line falls back to the holding's
// average buy price and is flagged PriceStale — a documented degraded
// accuracy mode, not an error. Pure read; nothing is persisted.
func Valuate(ctx context.Context, holdings []*models.Holding, fetch QuoteFunc) models.PortfolioValuation {
	out := models.PortfolioValuation{
		Items: make([]models.PortfolioItem, 0, len(holdings)),
	}

	for _, h := range holdings {
		price := h.AvgBuyPrice
		stale := true
		if q, err := fetch(ctx, h.Symbol); err == nil && q.Price > 0 {
			price = q.Price
			stale = false
		}

		value := price * h.Quantity
		out.TotalValue += value
		out.Items = append(out.Items, models.PortfolioItem{
			Symbol:       h.Symbol,
			Name:         h.Name,
			Quantity:     h.Quantity,
			AvgBuyPrice:  h.AvgBuyPrice,
			CurrentPrice: price,
			TotalValue:   value,
			PriceStale:   stale,
		})
	}

	return out
}
