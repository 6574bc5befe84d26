package models

import "time"

// Holding is one user's position in a single symbol. A holding exists only
// while Quantity > 0; selling a position down to exactly zero removes it.
type Holding struct {
	UserID      string    `json:"user_id"`
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Quantity    float64   `json:"quantity"`
	AvgBuyPrice float64   `json:"avg_buy_price"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TradeSide distinguishes buy and sell receipts.
type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// Receipt summarizes an executed trade.
type Receipt struct {
	Side       TradeSide `json:"side"`
	Symbol     string    `json:"symbol"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	Notional   float64   `json:"notional"` // quantity * price
	NewBalance float64   `json:"new_balance"`
	ExecutedAt time.Time `json:"executed_at"`
}

// PortfolioItem is one valued line of a portfolio response.
// Field names are camelCase for the frontend.
type PortfolioItem struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	AvgBuyPrice  float64 `json:"avgBuyPrice"`
	CurrentPrice float64 `json:"currentPrice"`
	TotalValue   float64 `json:"totalValue"`
	// PriceStale is set when the live quote was unavailable and the value
	// falls back to the average buy price.
	PriceStale bool `json:"priceStale,omitempty"`
}

// PortfolioValuation combines valued holdings with their total.
type PortfolioValuation struct {
	Items      []PortfolioItem `json:"items"`
	TotalValue float64         `json:"totalValue"`
}
