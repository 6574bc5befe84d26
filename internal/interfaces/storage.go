// Package interfaces defines service contracts for papertrade
package interfaces

import (
	"context"
	"errors"

	"github.com/papertrade-io/papertrade/internal/models"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

// UserStore persists user accounts and their holdings.
type UserStore interface {
	// User accounts
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error

	// Holdings
	GetHolding(ctx context.Context, userID, symbol string) (*models.Holding, error)
	ListHoldings(ctx context.Context, userID string) ([]*models.Holding, error)

	// CommitTrade persists the post-trade balance and holding in a single
	// transaction. When removeHolding is set the holding row is deleted
	// instead of written. Either both records change or neither does.
	CommitTrade(ctx context.Context, user *models.User, holding *models.Holding, removeHolding bool) error

	Close() error
}
