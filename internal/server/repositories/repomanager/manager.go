package repomanager

import (
	"context"
	"database/sql"

	"github.com/withgossing/bank-app/internal/dbx"
	"github.com/withgossing/bank-app/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
