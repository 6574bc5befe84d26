package interfaces

import (
	"context"

	"github.com/papertrade-io/papertrade/internal/models"
)

// MarketDataClient is the boundary to the external price/history provider.
// The ledger and valuation layers treat it purely as a price oracle and
// tolerate its failures via explicit fallback policies.
type MarketDataClient interface {
	// GetQuote returns the current quote for a symbol.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// GetHistory returns daily bars for the given range (e.g. "1mo", "2mo"),
	// oldest first.
	GetHistory(ctx context.Context, symbol, rng string) ([]models.Bar, error)

	// Search looks up symbols matching a free-text query.
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}
