package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/dbx"
	"github.com/dmitrijs2005/tenantauth/internal/server/auth"
	"github.com/dmitrijs2005/tenantauth/internal/server/config"
	"github.com/dmitrijs2005/tenantauth/internal/server/models"
	"github.com/dmitrijs2005/tenantauth/internal/server/notify"
	"github.com/dmitrijs2005/tenantauth/internal/server/singleuse"
)

// OTPService implements the three mobile OTP flows: mobile verification,
// password reset by OTP, and super-admin login.
type OTPService struct {
	Deps
	ttl time.Duration
}

// NewOTPService constructs an OTPService from shared deps and server config.
func NewOTPService(d Deps, cfg *config.Config) *OTPService {
	d.Logger = d.Logger.With("module", "services.otp")
	return &OTPService{Deps: d, ttl: cfg.OTPTTL}
}

// MobileVerifyRequest sends a verification code to mobile. An unknown
// mobile is not reported: nothing is issued and the call succeeds.
func (s *OTPService) MobileVerifyRequest(ctx context.Context, mobile string) error {
	if blank(mobile) {
		return common.ErrValidationFailed
	}

	raw, issued, err := s.Store.IssueForMobile(ctx, s.Repos.DB(), mobile, models.PurposeMobileVerify, s.ttl)
	if err != nil {
		s.Logger.Error(ctx, "issue mobile verification code", "mobile", mobile, "error", err)
		return common.ErrorInternal
	}
	if issued {
		s.Sender.Send(ctx, notify.OTPSMS(mobile, "verification", raw, s.ttl))
	}

	s.Logger.Info(ctx, "mobile verification requested", "mobile", mobile)
	return nil
}

// MobileVerifyConfirm checks the code and marks the mobile verified.
func (s *OTPService) MobileVerifyConfirm(ctx context.Context, mobile, otp string) error {
	if blank(mobile, otp) {
		return common.ErrValidationFailed
	}

	record, err := s.findCode(ctx, models.PurposeMobileVerify, mobile, otp)
	if err != nil {
		return err
	}

	err = s.redeem(ctx, record, func(ctx context.Context, tx dbx.DBTX) error {
		return s.Repos.Users(tx).SetMobileVerified(ctx, record.UserID)
	})
	if err != nil {
		return err
	}

	s.Logger.Info(ctx, "mobile verified", "user_id", record.UserID)
	return nil
}

// PasswordOtpRequest sends a password-reset code to a verified mobile.
func (s *OTPService) PasswordOtpRequest(ctx context.Context, mobile string) error {
	if blank(mobile) {
		return common.ErrValidationFailed
	}

	user, err := s.Repos.Users(s.Repos.DB()).GetByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUserNotFound
		}
		s.Logger.Error(ctx, "password otp lookup failed", "mobile", mobile, "error", err)
		return common.ErrorInternal
	}
	if !user.MobileVerified {
		return common.ErrMobileNotVerified
	}

	return s.issueFor(ctx, user, models.PurposePasswordOTP, "password reset")
}

// PasswordOtpVerify checks the code and replaces the user's password.
func (s *OTPService) PasswordOtpVerify(ctx context.Context, mobile, otp, newPassword string) error {
	if blank(mobile, otp, newPassword) {
		return common.ErrValidationFailed
	}

	record, err := s.findCode(ctx, models.PurposePasswordOTP, mobile, otp)
	if err != nil {
		return err
	}

	hash, err := hashNewPassword(s.Hasher, newPassword)
	if err != nil {
		return err
	}

	err = s.redeem(ctx, record, func(ctx context.Context, tx dbx.DBTX) error {
		return s.Repos.Users(tx).UpdatePasswordHash(ctx, record.UserID, hash)
	})
	if err != nil {
		return err
	}

	s.Logger.Info(ctx, "password reset by otp", "user_id", record.UserID)
	return nil
}

// SuperAdminOtpRequest sends a login code to the platform super-admin
// owning mobile.
func (s *OTPService) SuperAdminOtpRequest(ctx context.Context, mobile string) error {
	if blank(mobile) {
		return common.ErrValidationFailed
	}

	user, err := s.Repos.Users(s.Repos.DB()).GetSuperAdminByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrSuperAdminNotFound
		}
		s.Logger.Error(ctx, "super admin lookup failed", "mobile", mobile, "error", err)
		return common.ErrorInternal
	}

	return s.issueFor(ctx, user, models.PurposeSuperAdminOTP, "super admin login")
}

// SuperAdminOtpVerify checks the code and returns a session token without a
// tenant. If signing fails the code stays unused.
func (s *OTPService) SuperAdminOtpVerify(ctx context.Context, mobile, otp string) (string, error) {
	if blank(mobile, otp) {
		return "", common.ErrValidationFailed
	}

	record, err := s.findCode(ctx, models.PurposeSuperAdminOTP, mobile, otp)
	if err != nil {
		return "", err
	}

	var token string
	err = s.redeem(ctx, record, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.Repos.Users(tx).GetByID(ctx, record.UserID)
		if err != nil {
			return err
		}

		roles := auth.ParseRoles(user.Metadata.Role)
		if !roles.Has(auth.RoleSuperAdmin) {
			roles = append(roles, auth.RoleSuperAdmin)
		}

		token, err = s.Signer.Issue(auth.Subject{UserID: user.ID, Roles: roles})
		return err
	})
	if err != nil {
		return "", err
	}

	s.Logger.Info(ctx, "super admin login succeeded", "user_id", record.UserID)
	return token, nil
}

func (s *OTPService) issueFor(ctx context.Context, user *models.User, purpose models.Purpose, label string) error {
	raw, _, err := s.Store.Issue(ctx, s.Repos.DB(), user.ID, purpose, s.ttl)
	if err != nil {
		s.Logger.Error(ctx, "issue otp", "purpose", string(purpose), "user_id", user.ID, "error", err)
		return common.ErrorInternal
	}

	s.Sender.Send(ctx, notify.OTPSMS(user.Mobile, label, raw, s.ttl))
	s.Logger.Info(ctx, "otp issued", "purpose", string(purpose), "user_id", user.ID)
	return nil
}

// findCode returns the latest redeemable code of purpose for mobile. No
// redeemable code and an unknown mobile look the same to the caller.
func (s *OTPService) findCode(ctx context.Context, purpose models.Purpose, mobile, otp string) (*models.Credential, error) {
	record, err := s.Store.FindByMobile(ctx, s.Repos.DB(), purpose, mobile)
	if err != nil {
		if errors.Is(err, singleuse.ErrNotRedeemable) {
			return nil, common.ErrOTPInvalidOrExpired
		}
		s.Logger.Error(ctx, "find otp", "purpose", string(purpose), "error", err)
		return nil, common.ErrorInternal
	}
	if !s.Store.Matches(record, otp) {
		s.Logger.Info(ctx, "otp mismatch", "purpose", string(purpose), "user_id", record.UserID)
		return nil, common.ErrOTPInvalid
	}
	return record, nil
}

// redeem consumes record and applies effect in one transaction.
func (s *OTPService) redeem(ctx context.Context, record *models.Credential, effect dbx.TxFunc) error {
	err := s.Repos.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.Store.Redeem(ctx, tx, record); err != nil {
			if errors.Is(err, singleuse.ErrNotRedeemable) {
				return common.ErrOTPInvalidOrExpired
			}
			return err
		}
		return effect(ctx, tx)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrOTPInvalidOrExpired) {
		return err
	}
	s.Logger.Error(ctx, "otp redemption failed", "purpose", string(record.Purpose), "user_id", record.UserID, "error", err)
	return common.ErrorInternal
}
