package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredential_Redeemable(t *testing.T) {
	now := time.Now()
	used := now.Add(-time.Minute)

	assert.True(t, (&Credential{ExpiresAt: now.Add(time.Minute)}).Redeemable(now))
	assert.False(t, (&Credential{ExpiresAt: now}).Redeemable(now), "expiry instant is not redeemable")
	assert.False(t, (&Credential{ExpiresAt: now.Add(-time.Second)}).Redeemable(now))
	assert.False(t, (&Credential{ExpiresAt: now.Add(time.Minute), UsedAt: &used}).Redeemable(now))
}

func TestPurpose(t *testing.T) {
	assert.False(t, PurposePasswordReset.IsOTP())
	assert.True(t, PurposeMobileVerify.IsOTP())
	assert.True(t, PurposePasswordOTP.IsOTP())
	assert.True(t, PurposeSuperAdminOTP.IsOTP())

	assert.True(t, PurposePasswordReset.Valid())
	assert.False(t, Purpose("magic-link").Valid())
}

func TestUser_IsSuperAdmin(t *testing.T) {
	tenant := "t-1"
	assert.True(t, (&User{}).IsSuperAdmin())
	assert.False(t, (&User{TenantID: &tenant}).IsSuperAdmin())
}
