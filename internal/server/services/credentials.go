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
	"github.com/dmitrijs2005/tenantauth/internal/server/singleuse"
)

// CredentialService handles email/password login and the emailed
// reset and invite tokens.
type CredentialService struct {
	Deps
	resetTTL time.Duration
	resetURL string
}

// NewCredentialService constructs a CredentialService from shared deps and
// server config.
func NewCredentialService(d Deps, cfg *config.Config) *CredentialService {
	d.Logger = d.Logger.With("module", "services.credentials")
	return &CredentialService{Deps: d, resetTTL: cfg.ResetTokenTTL, resetURL: cfg.ResetURL}
}

// Login verifies email and password and returns a session token scoped to
// the user's tenant and roles.
func (s *CredentialService) Login(ctx context.Context, email, password string) (string, error) {
	if blank(email, password) {
		return "", common.ErrValidationFailed
	}

	user, err := s.Repos.Users(s.Repos.DB()).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrUserNotFound
		}
		s.Logger.Error(ctx, "login lookup failed", "error", err)
		return "", common.ErrorInternal
	}

	if !s.Hasher.VerifyPassword(password, user.PasswordHash) {
		s.Logger.Info(ctx, "login rejected", "user_id", user.ID)
		return "", common.ErrInvalidPassword
	}

	token, err := s.Signer.Issue(auth.SubjectFromUser(user))
	if err != nil {
		s.Logger.Error(ctx, "sign session token", "user_id", user.ID, "error", err)
		return "", common.ErrorInternal
	}

	s.Logger.Info(ctx, "login succeeded", "user_id", user.ID)
	return token, nil
}

// ForgotPassword issues a reset token for the user with email and hands the
// reset link to the notifier. Delivery failures do not affect the result.
func (s *CredentialService) ForgotPassword(ctx context.Context, email string) error {
	if blank(email) {
		return common.ErrValidationFailed
	}

	user, err := s.Repos.Users(s.Repos.DB()).GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		s.Logger.Error(ctx, "forgot password lookup failed", "error", err)
		return common.ErrorInternal
	}

	raw, _, err := s.Store.Issue(ctx, s.Repos.DB(), user.ID, models.PurposePasswordReset, s.resetTTL)
	if err != nil {
		s.Logger.Error(ctx, "issue reset token", "user_id", user.ID, "error", err)
		return common.ErrorInternal
	}

	s.Sender.Send(ctx, notify.ResetLinkEmail(user.Email, s.resetURL+raw, s.resetTTL))
	s.Logger.Info(ctx, "reset token issued", "user_id", user.ID)
	return nil
}

// ResetPassword sets a new password using an emailed reset token.
func (s *CredentialService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return s.redeemPasswordToken(ctx, "reset", token, newPassword)
}

// SetPassword sets the first password of an invited user. Invite tokens are
// reset tokens with a longer lifetime.
func (s *CredentialService) SetPassword(ctx context.Context, token, newPassword string) error {
	return s.redeemPasswordToken(ctx, "invite", token, newPassword)
}

func (s *CredentialService) redeemPasswordToken(ctx context.Context, flow, token, newPassword string) error {
	if blank(token, newPassword) {
		return common.ErrValidationFailed
	}

	record, err := s.Store.FindBySecret(ctx, s.Repos.DB(), models.PurposePasswordReset, token)
	if err != nil {
		if errors.Is(err, singleuse.ErrNotRedeemable) {
			return common.ErrTokenInvalidOrExpired
		}
		s.Logger.Error(ctx, "find password token", "flow", flow, "error", err)
		return common.ErrorInternal
	}

	hash, err := hashNewPassword(s.Hasher, newPassword)
	if err != nil {
		return err
	}

	err = s.Repos.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.Store.Redeem(ctx, tx, record); err != nil {
			if errors.Is(err, singleuse.ErrNotRedeemable) {
				return common.ErrTokenInvalidOrExpired
			}
			return err
		}
		return s.Repos.Users(tx).UpdatePasswordHash(ctx, record.UserID, hash)
	})
	if err != nil {
		if errors.Is(err, common.ErrTokenInvalidOrExpired) {
			return err
		}
		s.Logger.Error(ctx, "password update failed", "flow", flow, "user_id", record.UserID, "error", err)
		return common.ErrorInternal
	}

	s.Logger.Info(ctx, "password updated", "flow", flow, "user_id", record.UserID)
	return nil
}
