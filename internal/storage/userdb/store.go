// Package userdb implements interfaces.UserStore using BadgerHold.
// It persists user accounts and per-user holdings in a single embedded
// database so a trade can update both inside one transaction.
package userdb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"

	"github.com/papertrade-io/papertrade/internal/common"
	"github.com/papertrade-io/papertrade/internal/interfaces"
	"github.com/papertrade-io/papertrade/internal/models"
)

// Store implements interfaces.UserStore backed by BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// holdingSep is the composite key separator for holding records.
// A null byte cannot appear in a user ID or ticker symbol, so the
// composite key is collision-free.
const holdingSep = "\x00"

func holdingKey(userID, symbol string) string {
	return userID + holdingSep + symbol
}

// NewStore creates a UserStore backed by BadgerHold at the given path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open user db at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("User database opened")
	return &Store{db: db, logger: logger}, nil
}

// --- User accounts ---

func (s *Store) GetUser(_ context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.Get(userID, &user); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("user %q: %w", userID, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user %q: %w", userID, err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.FindOne(&user, badgerhold.Where("Email").Eq(email)); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("user with email %q: %w", email, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up email %q: %w", email, err)
	}
	return &user, nil
}

func (s *Store) SaveUser(_ context.Context, user *models.User) error {
	now := time.Now()
	var existing models.User
	if err := s.db.Get(user.ID, &existing); err == nil {
		user.CreatedAt = existing.CreatedAt
	} else if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.ModifiedAt = now

	if err := s.db.Upsert(user.ID, user); err != nil {
		return fmt.Errorf("failed to save user %q: %w", user.ID, err)
	}
	s.logger.Debug().Str("user_id", user.ID).Msg("User saved")
	return nil
}

// --- Holdings ---

func (s *Store) GetHolding(_ context.Context, userID, symbol string) (*models.Holding, error) {
	var h models.Holding
	if err := s.db.Get(holdingKey(userID, symbol), &h); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("holding %s/%s: %w", userID, symbol, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get holding %s/%s: %w", userID, symbol, err)
	}
	return &h, nil
}

func (s *Store) ListHoldings(_ context.Context, userID string) ([]*models.Holding, error) {
	var holdings []models.Holding
	if err := s.db.Find(&holdings, badgerhold.Where("UserID").Eq(userID)); err != nil {
		return nil, fmt.Errorf("failed to list holdings for %q: %w", userID, err)
	}
	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].Symbol < holdings[j].Symbol
	})
	out := make([]*models.Holding, len(holdings))
	for i := range holdings {
		out[i] = &holdings[i]
	}
	return out, nil
}

// CommitTrade writes the post-trade balance and holding in one badger
// transaction. Concurrent readers never observe the balance without the
// matching holding update.
func (s *Store) CommitTrade(_ context.Context, user *models.User, holding *models.Holding, removeHolding bool) error {
	user.ModifiedAt = time.Now()
	holding.UpdatedAt = user.ModifiedAt

	err := s.db.Badger().Update(func(tx *badger.Txn) error {
		if err := s.db.TxUpsert(tx, user.ID, user); err != nil {
			return fmt.Errorf("balance update: %w", err)
		}
		key := holdingKey(holding.UserID, holding.Symbol)
		if removeHolding {
			if err := s.db.TxDelete(tx, key, models.Holding{}); err != nil && err != badgerhold.ErrNotFound {
				return fmt.Errorf("holding delete: %w", err)
			}
			return nil
		}
		if err := s.db.TxUpsert(tx, key, holding); err != nil {
			return fmt.Errorf("holding update: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("trade commit for user %q: %w", user.ID, err)
	}

	s.logger.Debug().
		Str("user_id", user.ID).
		Str("symbol", holding.Symbol).
		Float64("balance", user.VirtualBalance).
		Msg("Trade committed")
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
