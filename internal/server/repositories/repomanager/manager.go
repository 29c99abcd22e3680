// Package repomanager wires repository constructors together and owns schema
// migrations, so services depend on one seam instead of individual repos.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/velotrans/tms/internal/dbx"
	"github.com/velotrans/tms/internal/server/repositories/refreshtokens"
	"github.com/velotrans/tms/internal/server/repositories/shipments"
	"github.com/velotrans/tms/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Shipments(db dbx.DBTX) shipments.Repository
}
