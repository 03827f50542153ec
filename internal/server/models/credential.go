package models

import "time"

// Purpose scopes a single-use credential to the flow that issued it.
type Purpose string

const (
	// PurposePasswordReset covers emailed reset links and tenant-admin invites.
	PurposePasswordReset Purpose = "password-reset"
	PurposeMobileVerify  Purpose = "mobile-verify"
	PurposePasswordOTP   Purpose = "password-otp"
	PurposeSuperAdminOTP Purpose = "super-admin-otp"
)

// IsOTP reports whether credentials of this purpose are six digit codes
// rather than long random tokens.
func (p Purpose) IsOTP() bool {
	return p == PurposeMobileVerify || p == PurposePasswordOTP || p == PurposeSuperAdminOTP
}

// Valid reports whether p is one of the known purposes.
func (p Purpose) Valid() bool {
	return p == PurposePasswordReset || p.IsOTP()
}

// Credential is a password-reset token or OTP code. Only the fingerprint of
// the secret is stored.
type Credential struct {
	ID         string
	UserID     string
	Purpose    Purpose
	SecretHash string
	ExpiresAt  time.Time
	UsedAt     *time.Time
	CreatedAt  time.Time
}

// Redeemable reports whether the credential can still be consumed at now.
func (c *Credential) Redeemable(now time.Time) bool {
	return c.UsedAt == nil && now.Before(c.ExpiresAt)
}
