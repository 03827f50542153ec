// Package singleuse issues, finds and redeems single-use credentials
// (reset and invite tokens, OTP codes). Raw secrets are returned to the
// caller once and only their fingerprints are persisted.
//
// Redemption is a conditional update: of any number of concurrent attempts
// on the same credential exactly one succeeds. Callers run Redeem inside the
// same transaction as the effect it authorises.
package singleuse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/cryptox"
	"github.com/dmitrijs2005/tenantauth/internal/dbx"
	"github.com/dmitrijs2005/tenantauth/internal/server/models"
	"github.com/dmitrijs2005/tenantauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ErrNotRedeemable is returned when no credential is unused and unexpired,
// or when a redemption race was lost.
var ErrNotRedeemable = errors.New("credential not redeemable")

// tokenBytes is the entropy of reset and invite tokens.
const tokenBytes = 32

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock used for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the single-use credential lifecycle over the credentials
// repository. It is safe for concurrent use.
type Store struct {
	repos  repomanager.RepositoryManager
	hasher *cryptox.Hasher
	now    func() time.Time
}

// NewStore returns a Store persisting through repos.
func NewStore(repos repomanager.RepositoryManager, hasher *cryptox.Hasher, opts ...Option) *Store {
	s := &Store{repos: repos, hasher: hasher, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Issue creates a credential of purpose for userID valid for ttl and returns
// the raw secret together with the stored record.
func (s *Store) Issue(ctx context.Context, db dbx.DBTX, userID string, purpose models.Purpose, ttl time.Duration) (string, *models.Credential, error) {
	raw, c, err := s.prepare(purpose, ttl)
	if err != nil {
		return "", nil, err
	}
	c.UserID = userID

	if err := s.repos.Credentials(db).Create(ctx, c); err != nil {
		return "", nil, err
	}
	return raw, c, nil
}

// IssueForMobile creates a credential for the user owning mobile in a single
// statement. When no user matches nothing is stored and issued is false.
func (s *Store) IssueForMobile(ctx context.Context, db dbx.DBTX, mobile string, purpose models.Purpose, ttl time.Duration) (raw string, issued bool, err error) {
	raw, c, err := s.prepare(purpose, ttl)
	if err != nil {
		return "", false, err
	}

	issued, err = s.repos.Credentials(db).CreateForMobile(ctx, c, mobile)
	if err != nil || !issued {
		return "", false, err
	}
	return raw, true, nil
}

// FindBySecret returns the most recent redeemable credential of purpose
// whose fingerprint matches raw.
func (s *Store) FindBySecret(ctx context.Context, db dbx.DBTX, purpose models.Purpose, raw string) (*models.Credential, error) {
	c, err := s.repos.Credentials(db).FindBySecret(ctx, purpose, s.hasher.Fingerprint(raw), s.now())
	return c, notRedeemable(err)
}

// FindByMobile returns the most recent redeemable credential of purpose
// owned by the user with mobile.
func (s *Store) FindByMobile(ctx context.Context, db dbx.DBTX, purpose models.Purpose, mobile string) (*models.Credential, error) {
	c, err := s.repos.Credentials(db).FindByMobile(ctx, purpose, mobile, s.now())
	return c, notRedeemable(err)
}

// Matches reports, in constant time, whether raw is the secret of c.
func (s *Store) Matches(c *models.Credential, raw string) bool {
	if c == nil {
		return false
	}
	return s.hasher.FingerprintEqual(c.SecretHash, s.hasher.Fingerprint(raw))
}

// Redeem marks c used. It fails with ErrNotRedeemable if c was already used,
// has expired, or another caller redeemed it first.
func (s *Store) Redeem(ctx context.Context, db dbx.DBTX, c *models.Credential) error {
	now := s.now()
	ok, err := s.repos.Credentials(db).Redeem(ctx, c.Purpose, c.ID, now)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotRedeemable
	}
	c.UsedAt = &now
	return nil
}

func (s *Store) prepare(purpose models.Purpose, ttl time.Duration) (string, *models.Credential, error) {
	if !purpose.Valid() {
		return "", nil, fmt.Errorf("unknown credential purpose %q", purpose)
	}
	if ttl <= 0 {
		return "", nil, errors.New("credential ttl must be positive")
	}

	raw, err := newSecret(purpose)
	if err != nil {
		return "", nil, fmt.Errorf("generate secret: %w", err)
	}

	now := s.now()
	return raw, &models.Credential{
		ID:         uuid.NewString(),
		Purpose:    purpose,
		SecretHash: s.hasher.Fingerprint(raw),
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}, nil
}

func newSecret(purpose models.Purpose) (string, error) {
	if purpose.IsOTP() {
		return common.MakeOTP()
	}
	return common.MakeRandHexString(tokenBytes)
}

func notRedeemable(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return ErrNotRedeemable
	}
	return err
}
