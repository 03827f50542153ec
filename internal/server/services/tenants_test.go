package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/server/auth"
	"github.com/dmitrijs2005/tenantauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func caller(sub string, roles ...auth.Role) *auth.Claims {
	return &auth.Claims{Roles: roles, RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}
}

var globex = CreateTenantInput{
	TenantName:    "Globex",
	AdminFullName: "Hank Scorpio",
	AdminEmail:    "hank@globex.io",
	AdminMobile:   "+15557777",
}

func TestCreateTenant_ProvisionsTenantAndAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.tenants.CreateTenant(ctx, caller("root", auth.RoleSuperAdmin), globex)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	tenant, err := f.m.Tenants(f.m.DB()).GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Globex", tenant.Name)

	admin, err := f.m.Users(f.m.DB()).GetByEmail(ctx, globex.AdminEmail)
	require.NoError(t, err)
	require.NotNil(t, admin.TenantID)
	assert.Equal(t, id, *admin.TenantID)
	assert.Equal(t, globex.AdminMobile, admin.Mobile)
	assert.Empty(t, admin.PasswordHash)
	assert.Equal(t, models.UserMetadata{Role: "TENANT_ADMIN", Name: "Hank Scorpio"}, admin.Metadata)

	msg := f.sent.last(t)
	assert.Equal(t, globex.AdminEmail, msg.To)
	assert.Contains(t, msg.Subject, "Globex")
	assert.Equal(t, 1, f.m.CredentialCount(models.PurposePasswordReset))
}

func TestCreateTenant_InviteSetsPasswordAndLogsIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.tenants.CreateTenant(ctx, caller("root", auth.RoleSuperAdmin), globex)
	require.NoError(t, err)
	invite := f.sent.token(t, f.cfg.InviteURL)

	require.NoError(t, f.creds.SetPassword(ctx, invite, "hank-pass"))

	token, err := f.creds.Login(ctx, globex.AdminEmail, "hank-pass")
	require.NoError(t, err)
	claims, err := f.verify.Verify(token)
	require.NoError(t, err)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, id, *claims.TenantID)
	assert.Equal(t, auth.Roles{auth.RoleTenantAdmin}, claims.Roles)
}

func TestCreateTenant_InviteOutlivesResetTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tenants.CreateTenant(ctx, caller("root", auth.RoleSuperAdmin), globex)
	require.NoError(t, err)
	invite := f.sent.token(t, f.cfg.InviteURL)

	f.clock.Advance(71 * time.Hour)
	require.NoError(t, f.creds.SetPassword(ctx, invite, "hank-pass"))
}

func TestCreateTenant_InviteExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tenants.CreateTenant(ctx, caller("root", auth.RoleSuperAdmin), globex)
	require.NoError(t, err)
	invite := f.sent.token(t, f.cfg.InviteURL)

	f.clock.Advance(72*time.Hour + time.Second)
	assert.ErrorIs(t, f.creds.SetPassword(ctx, invite, "hank-pass"), common.ErrTokenInvalidOrExpired)
}

func TestCreateTenant_Forbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for name, c := range map[string]*auth.Claims{
		"anonymous":    nil,
		"no roles":     caller("u-1"),
		"user":         caller("u-1", auth.RoleUser),
		"tenant admin": caller("u-1", auth.RoleTenantAdmin),
	} {
		t.Run(name, func(t *testing.T) {
			id, err := f.tenants.CreateTenant(ctx, c, globex)
			assert.ErrorIs(t, err, common.ErrForbidden)
			assert.Empty(t, id)
		})
	}

	_, err := f.m.Users(f.m.DB()).GetByEmail(ctx, globex.AdminEmail)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Zero(t, f.sent.count())
}

func TestCreateTenant_ForbiddenBeforeValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.tenants.CreateTenant(context.Background(), caller("u-1", auth.RoleUser), CreateTenantInput{})
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestCreateTenant_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := caller("root", auth.RoleSuperAdmin)

	for name, mutate := range map[string]func(*CreateTenantInput){
		"tenant name": func(in *CreateTenantInput) { in.TenantName = " " },
		"admin name":  func(in *CreateTenantInput) { in.AdminFullName = "" },
		"admin email": func(in *CreateTenantInput) { in.AdminEmail = "" },
		"mobile":      func(in *CreateTenantInput) { in.AdminMobile = "\t" },
	} {
		t.Run(name, func(t *testing.T) {
			in := globex
			mutate(&in)
			_, err := f.tenants.CreateTenant(ctx, root, in)
			assert.ErrorIs(t, err, common.ErrValidationFailed)
		})
	}
	assert.Zero(t, f.sent.count())
}

func TestCreateTenant_DuplicateTenantName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := globex
	in.TenantName = "Acme"

	_, err := f.tenants.CreateTenant(ctx, caller("root", auth.RoleSuperAdmin), in)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	_, err = f.m.Users(f.m.DB()).GetByEmail(ctx, globex.AdminEmail)
	assert.ErrorIs(t, err, common.ErrorNotFound, "admin must not outlive a failed provisioning")
	assert.Zero(t, f.m.CredentialCount(models.PurposePasswordReset))
	assert.Zero(t, f.sent.count())
}

func TestCreateTenant_DuplicateAdminRollsBackTenant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := caller("root", auth.RoleSuperAdmin)
	in := globex
	in.AdminEmail = userEmail

	_, err := f.tenants.CreateTenant(ctx, root, in)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
	assert.Zero(t, f.sent.count())

	// The tenant name is free again, so the first attempt left nothing behind.
	_, err = f.tenants.CreateTenant(ctx, root, globex)
	assert.NoError(t, err)
}
