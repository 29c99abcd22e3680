// Package refreshtokens declares and implements the PostgreSQL repository for
// refresh-token records. Rows hold bcrypt hashes of the opaque secrets, never
// the plaintext, so resolution is a hash-and-scan over live rows.
package refreshtokens

import (
	"context"
	"time"

	"github.com/velotrans/tms/internal/server/models"
)

type Repository interface {
	// Create stores a new token hash for userID expiring at now+validity.
	Create(ctx context.Context, userID string, tokenHash string, validity time.Duration) error

	// ListLive returns all records whose expiry is still in the future.
	// Callers verify a candidate secret by re-hashing against each row.
	ListLive(ctx context.Context) ([]*models.RefreshToken, error)

	// DeleteByID revokes a single record. Deleting an absent id is not an
	// error.
	DeleteByID(ctx context.Context, id string) error

	// DeleteByUser revokes every record owned by userID (logout everywhere).
	DeleteByUser(ctx context.Context, userID string) error

	// DeleteExpired removes lapsed records and reports how many went away.
	DeleteExpired(ctx context.Context) (int64, error)
}
