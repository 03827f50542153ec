package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/server/models"
)

type credentialRepo struct {
	m *Manager
	h *handle
}

func (r *credentialRepo) Create(ctx context.Context, c *models.Credential) error {
	if !c.Purpose.Valid() {
		return fmt.Errorf("unknown credential purpose %q", c.Purpose)
	}
	return r.m.write(r.h, func(s *state) error {
		if _, ok := s.users[c.UserID]; !ok {
			return fmt.Errorf("db error: user %s does not exist", c.UserID)
		}
		return insertCredential(s, c)
	})
}

func (r *credentialRepo) CreateForMobile(ctx context.Context, c *models.Credential, mobile string) (bool, error) {
	if !c.Purpose.Valid() {
		return false, fmt.Errorf("unknown credential purpose %q", c.Purpose)
	}
	var inserted bool
	err := r.m.write(r.h, func(s *state) error {
		for _, u := range s.users {
			if u.Mobile != mobile || !ownerMatches(c.Purpose, u) {
				continue
			}
			c.UserID = u.ID
			inserted = true
			return insertCredential(s, c)
		}
		return nil
	})
	return inserted, err
}

func (r *credentialRepo) FindBySecret(ctx context.Context, purpose models.Purpose, secretHash string, now time.Time) (*models.Credential, error) {
	return r.latest(purpose, now, func(s *state, c *storedCredential) bool {
		return c.SecretHash == secretHash
	})
}

func (r *credentialRepo) FindByMobile(ctx context.Context, purpose models.Purpose, mobile string, now time.Time) (*models.Credential, error) {
	return r.latest(purpose, now, func(s *state, c *storedCredential) bool {
		u, ok := s.users[c.UserID]
		return ok && u.Mobile == mobile
	})
}

func (r *credentialRepo) Redeem(ctx context.Context, purpose models.Purpose, id string, now time.Time) (bool, error) {
	var redeemed bool
	err := r.m.write(r.h, func(s *state) error {
		c, ok := s.creds[id]
		if !ok || c.Purpose != purpose || !c.Redeemable(now) {
			return nil
		}
		used := now
		c.UsedAt = &used
		redeemed = true
		return nil
	})
	return redeemed, err
}

func (r *credentialRepo) latest(purpose models.Purpose, now time.Time, match func(s *state, c *storedCredential) bool) (*models.Credential, error) {
	var (
		best *storedCredential
		out  models.Credential
	)
	err := r.m.read(r.h, func(s *state) error {
		for _, c := range s.creds {
			if c.Purpose != purpose || !c.Redeemable(now) || !match(s, c) {
				continue
			}
			if u, ok := s.users[c.UserID]; !ok || !ownerMatches(purpose, u) {
				continue
			}
			if best == nil || c.CreatedAt.After(best.CreatedAt) ||
				(c.CreatedAt.Equal(best.CreatedAt) && c.seq > best.seq) {
				best = c
			}
		}
		if best != nil {
			out = best.Credential
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if best == nil {
		return nil, common.ErrorNotFound
	}
	return &out, nil
}

func insertCredential(s *state, c *models.Credential) error {
	if _, ok := s.creds[c.ID]; ok {
		return fmt.Errorf("%w: credential id %s", common.ErrorAlreadyExists, c.ID)
	}
	s.seq++
	s.creds[c.ID] = &storedCredential{Credential: *c, seq: s.seq}
	return nil
}

// ownerMatches mirrors the tenant scoping of the super-admin table.
func ownerMatches(p models.Purpose, u *models.User) bool {
	if p == models.PurposeSuperAdminOTP {
		return u.TenantID == nil
	}
	return true
}
