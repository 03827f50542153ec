// Package credentials persists single-use credentials: password-reset and
// invite tokens, and the OTP codes of the mobile flows.
//
// Each purpose maps to a table: reset tokens live in password_reset_tokens,
// tenant user OTPs share tenant_password_otps (scoped by a purpose column)
// and super-admin OTPs live in super_admin_otps. Only secret fingerprints
// are stored.
package credentials

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tenantauth/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Credential) error
	// CreateForMobile inserts c for the user owning mobile and fills
	// c.UserID. It reports false, without error, when no user matches.
	CreateForMobile(ctx context.Context, c *models.Credential, mobile string) (bool, error)
	// FindBySecret returns the most recent credential of purpose with the
	// given fingerprint that is redeemable at now, or common.ErrorNotFound.
	FindBySecret(ctx context.Context, purpose models.Purpose, secretHash string, now time.Time) (*models.Credential, error)
	// FindByMobile is FindBySecret keyed by the owner's mobile number.
	FindByMobile(ctx context.Context, purpose models.Purpose, mobile string, now time.Time) (*models.Credential, error)
	// Redeem marks the credential used if it is still redeemable at now and
	// reports whether this call did so.
	Redeem(ctx context.Context, purpose models.Purpose, id string, now time.Time) (bool, error)
}
