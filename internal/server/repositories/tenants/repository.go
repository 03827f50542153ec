// Package tenants persists tenant organisations.
package tenants

import (
	"context"

	"github.com/dmitrijs2005/tenantauth/internal/server/models"
)

type Repository interface {
	// Create inserts the tenant; a taken name yields common.ErrorAlreadyExists.
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
}
