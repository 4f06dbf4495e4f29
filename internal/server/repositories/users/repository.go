// Package users provides the account repository consumed by the identity
// services.
package users

import (
	"context"

	"github.com/withgossing/bank-app/internal/server/models"
)

// Repository is the storage contract for account records. Create must fail
// with a per-field duplicate error when a unique constraint is violated;
// the services treat that as the authoritative uniqueness signal, pre-checks
// notwithstanding.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
