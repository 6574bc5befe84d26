package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/papertrade-io/papertrade/internal/models"
)

const priceStreamInterval = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Same policy as the REST CORS middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handlePricesWS handles GET /ws/prices — a websocket stream of quote
// updates for the popular symbols, one batch per interval, until the
// client disconnects.
func (s *Server) handlePricesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	s.logger.Info().Str("remote", r.RemoteAddr).Msg("Price stream connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain client frames so close messages are noticed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	// First batch immediately, then on the interval.
	if err := s.writePriceBatch(ctx, conn); err != nil {
		return
	}

	ticker := time.NewTicker(priceStreamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Str("remote", r.RemoteAddr).Msg("Price stream disconnected")
			return
		case <-ticker.C:
			if err := s.writePriceBatch(ctx, conn); err != nil {
				return
			}
		}
	}
}

// writePriceBatch fetches and sends one update per popular symbol.
// Failed quotes are skipped; a write error ends the stream.
func (s *Server) writePriceBatch(ctx context.Context, conn *websocket.Conn) error {
	for _, symbol := range s.app.Config.Trading.PopularSymbols {
		quote, err := s.app.Market.GetQuote(ctx, symbol)
		if err != nil {
			continue
		}
		update := models.PriceUpdate{
			Symbol:        quote.Symbol,
			Price:         quote.Price,
			Change:        quote.Change,
			ChangePercent: quote.ChangePercent,
			Timestamp:     time.Now(),
		}
		if err := conn.WriteJSON(update); err != nil {
			return err
		}
	}
	return nil
}
