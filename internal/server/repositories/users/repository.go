// Package users persists user identities, their metadata and role
// assignments.
package users

import (
	"context"

	"github.com/dmitrijs2005/tenantauth/internal/server/models"
)

// Repository is the user store. Lookups return common.ErrorNotFound when no
// row matches; inserts breaking a unique constraint return
// common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	AssignRole(ctx context.Context, userID, role string) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByMobile(ctx context.Context, mobile string) (*models.User, error)
	// GetSuperAdminByMobile only considers users outside any tenant.
	GetSuperAdminByMobile(ctx context.Context, mobile string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	SetMobileVerified(ctx context.Context, id string) error
}
