package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/dbx"
	"github.com/dmitrijs2005/tenantauth/internal/server/auth"
	"github.com/dmitrijs2005/tenantauth/internal/server/config"
	"github.com/dmitrijs2005/tenantauth/internal/server/models"
	"github.com/dmitrijs2005/tenantauth/internal/server/notify"
	"github.com/google/uuid"
)

// CreateTenantInput describes a new tenant and its first administrator.
type CreateTenantInput struct {
	TenantName    string
	AdminFullName string
	AdminEmail    string
	AdminMobile   string
}

func (in CreateTenantInput) trimmed() CreateTenantInput {
	return CreateTenantInput{
		TenantName:    strings.TrimSpace(in.TenantName),
		AdminFullName: strings.TrimSpace(in.AdminFullName),
		AdminEmail:    strings.TrimSpace(in.AdminEmail),
		AdminMobile:   strings.TrimSpace(in.AdminMobile),
	}
}

// TenantService provisions tenants. Only super-admins may call it.
type TenantService struct {
	Deps
	inviteTTL time.Duration
	inviteURL string
}

// NewTenantService constructs a TenantService from shared deps and server
// config.
func NewTenantService(d Deps, cfg *config.Config) *TenantService {
	d.Logger = d.Logger.With("module", "services.tenants")
	return &TenantService{Deps: d, inviteTTL: cfg.InviteTTL, inviteURL: cfg.InviteURL}
}

// CreateTenant creates the tenant, its admin user, the admin's role
// assignment and an invite token in one transaction, then emails the invite.
// Authorization is checked before anything else is looked at.
func (s *TenantService) CreateTenant(ctx context.Context, caller *auth.Claims, in CreateTenantInput) (string, error) {
	if caller == nil || !caller.Roles.CanProvisionTenants() {
		s.Logger.Warn(ctx, "tenant creation forbidden", "caller", callerID(caller))
		return "", common.ErrForbidden
	}

	in = in.trimmed()
	if blank(in.TenantName, in.AdminFullName, in.AdminEmail, in.AdminMobile) {
		return "", common.ErrValidationFailed
	}

	tenantID := uuid.NewString()
	adminID := uuid.NewString()

	var invite string
	err := s.Repos.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.Repos.Tenants(tx).Create(ctx, &models.Tenant{ID: tenantID, Name: in.TenantName}); err != nil {
			return err
		}

		admin := &models.User{
			ID:       adminID,
			TenantID: &tenantID,
			Email:    in.AdminEmail,
			Mobile:   in.AdminMobile,
			Metadata: models.UserMetadata{Role: string(auth.RoleTenantAdmin), Name: in.AdminFullName},
		}
		if err := s.Repos.Users(tx).Create(ctx, admin); err != nil {
			return err
		}
		if err := s.Repos.Users(tx).AssignRole(ctx, adminID, string(auth.RoleTenantAdmin)); err != nil {
			return err
		}

		raw, _, err := s.Store.Issue(ctx, tx, adminID, models.PurposePasswordReset, s.inviteTTL)
		if err != nil {
			return err
		}
		invite = raw
		return nil
	})
	if err != nil {
		var rbErr *dbx.RollbackError
		if errors.As(err, &rbErr) {
			s.Logger.Error(ctx, "tenant creation rollback failed", "tenant", in.TenantName, "error", rbErr.RollbackErr)
		}
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.Logger.Info(ctx, "tenant or admin already exists", "tenant", in.TenantName)
			return "", common.ErrDuplicateEntry
		}
		s.Logger.Error(ctx, "tenant creation failed", "tenant", in.TenantName, "error", err)
		return "", common.ErrorInternal
	}

	s.Sender.Send(ctx, notify.InviteEmail(in.AdminEmail, in.AdminFullName, in.TenantName, s.inviteURL+invite, s.inviteTTL))
	s.Logger.Info(ctx, "tenant created", "tenant_id", tenantID, "admin_id", adminID, "by", caller.Subject)
	return tenantID, nil
}

func callerID(c *auth.Claims) string {
	if c == nil {
		return ""
	}
	return c.Subject
}
