package repomanager

import (
	"context"

	"github.com/dmitrijs2005/tenantauth/internal/dbx"
	"github.com/dmitrijs2005/tenantauth/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/tenantauth/internal/server/repositories/tenants"
	"github.com/dmitrijs2005/tenantauth/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a handle: DB() for
// standalone statements, or the transactional handle passed to the
// WithTx callback.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	DB() dbx.DBTX
	WithTx(ctx context.Context, fn dbx.TxFunc) error
	Users(db dbx.DBTX) users.Repository
	Tenants(db dbx.DBTX) tenants.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	Close() error
}
