package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/papertrade-io/papertrade/internal/app"
	"github.com/papertrade-io/papertrade/internal/auth"
	"github.com/papertrade-io/papertrade/internal/common"
	"github.com/papertrade-io/papertrade/internal/interfaces"
	"github.com/papertrade-io/papertrade/internal/ledger"
	"github.com/papertrade-io/papertrade/internal/models"
)

// memUserStore is an in-memory UserStore for handler tests.
type memUserStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	holdings map[string]map[string]*models.Holding
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		users:    make(map[string]*models.User),
		holdings: make(map[string]map[string]*models.Holding),
	}
}

func (m *memUserStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (m *memUserStore) SaveUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUserStore) GetHolding(ctx context.Context, userID, symbol string) (*models.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.holdings[userID][symbol]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	cp := *h
	return &cp, nil
}

func (m *memUserStore) ListHoldings(ctx context.Context, userID string) ([]*models.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Holding
	for _, h := range m.holdings[userID] {
		cp := *h
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memUserStore) CommitTrade(ctx context.Context, user *models.User, holding *models.Holding, removeHolding bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	uc := *user
	m.users[user.ID] = &uc
	if m.holdings[user.ID] == nil {
		m.holdings[user.ID] = make(map[string]*models.Holding)
	}
	if removeHolding {
		delete(m.holdings[user.ID], holding.Symbol)
	} else {
		hc := *holding
		m.holdings[user.ID][holding.Symbol] = &hc
	}
	return nil
}

func (m *memUserStore) Close() error { return nil }

// stubMarket is a canned MarketDataClient for handler tests.
type stubMarket struct {
	quotes  map[string]*models.Quote
	history map[string][]models.Bar
	results []models.SearchResult
	err     error
}

func newStubMarket() *stubMarket {
	return &stubMarket{
		quotes:  make(map[string]*models.Quote),
		history: make(map[string][]models.Bar),
	}
}

func (s *stubMarket) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if s.err != nil {
		return nil, s.err
	}
	q, ok := s.quotes[symbol]
	if !ok {
		return nil, errors.New("symbol not found")
	}
	return q, nil
}

func (s *stubMarket) GetHistory(ctx context.Context, symbol, rng string) ([]models.Bar, error) {
	if s.err != nil {
		return nil, s.err
	}
	bars, ok := s.history[symbol]
	if !ok {
		return nil, errors.New("symbol not found")
	}
	return bars, nil
}

func (s *stubMarket) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

type testHarness struct {
	server *Server
	store  *memUserStore
	market *stubMarket
	app    *app.App
}

func newTestServer(t *testing.T) *testHarness {
	t.Helper()

	config := common.NewDefaultConfig()
	config.Auth.JWTSecret = "test-secret"
	logger := common.NewSilentLogger()

	store := newMemUserStore()
	market := newStubMarket()

	a := &app.App{
		Config:      config,
		Logger:      logger,
		Store:       store,
		Market:      market,
		Ledger:      ledger.NewEngine(store, logger),
		Tokens:      auth.NewIssuer(&config.Auth),
		StartupTime: time.Now(),
	}

	return &testHarness{
		server: NewServer(a),
		store:  store,
		market: market,
		app:    a,
	}
}

// seedUser registers a user directly in the store and returns a valid token.
func (h *testHarness) seedUser(t *testing.T, id, name, email, password string, balance float64) string {
	t.Helper()

	hash, err := hashPassword(password)
	require.NoError(t, err)

	err = h.store.SaveUser(context.Background(), &models.User{
		ID:             id,
		Name:           name,
		Email:          email,
		PasswordHash:   hash,
		VirtualBalance: balance,
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)

	token, err := h.app.Tokens.Issue(email, name)
	require.NoError(t, err)
	return token
}

// do performs a request against the full middleware-wrapped handler.
func (h *testHarness) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

