package models

import "time"

// Quote is a normalized real-time quote from the market data gateway.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume,omitempty"`
	MarketCap     int64   `json:"marketCap,omitempty"`
}

// Bar is one daily OHLC sample reduced to the fields the frontend charts.
type Bar struct {
	Date   time.Time `json:"-"`
	Time   string    `json:"time"` // YYYY-MM-DD
	Close  float64   `json:"price"`
	Volume int64     `json:"volume"`
}

// SearchResult is one symbol lookup match.
type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Prediction is one row of the trend-projection display. This is a
// cosmetic heuristic, not a forecast.
type Prediction struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	Change float64 `json:"change"`
}

// PriceUpdate is one frame of the websocket price stream.
type PriceUpdate struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Timestamp     time.Time `json:"timestamp"`
}
