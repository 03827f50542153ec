// Package auth issues and verifies RS256 session tokens and models the
// closed set of roles they carry.
//
// Signing and verification are separate capabilities: a Verifier only ever
// holds the public key, so components that check tokens cannot mint them.
package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the session assertions carried by a token. TenantID is absent
// for super-admin tokens.
type Claims struct {
	TenantID *string `json:"tenant,omitempty"`
	Roles    Roles   `json:"roles"`
	jwt.RegisteredClaims
}

// Subject describes whom a token is issued for.
type Subject struct {
	UserID   string
	TenantID *string
	Roles    Roles
}

// SubjectFromUser derives the token subject from a stored user.
func SubjectFromUser(u *models.User) Subject {
	return Subject{
		UserID:   u.ID,
		TenantID: u.TenantID,
		Roles:    ParseRoles(u.Metadata.Role),
	}
}

// Signer mints session tokens with the private key.
type Signer struct {
	key    *rsa.PrivateKey
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner returns a Signer for the given key, issuer and token lifetime.
func NewSigner(key *rsa.PrivateKey, issuer string, ttl time.Duration) (*Signer, error) {
	if key == nil {
		return nil, errors.New("signer requires a private key")
	}
	if issuer == "" {
		return nil, errors.New("signer requires an issuer")
	}
	if ttl <= 0 {
		return nil, errors.New("signer requires a positive ttl")
	}
	return &Signer{key: key, issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for sub.
func (s *Signer) Issue(sub Subject) (string, error) {
	if sub.UserID == "" {
		return "", errors.New("token subject is empty")
	}
	roles := sub.Roles
	if roles == nil {
		roles = Roles{}
	}

	now := s.now()
	claims := Claims{
		TenantID: sub.TenantID,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verifier returns the verification capability matching this signer.
func (s *Signer) Verifier() *Verifier {
	return &Verifier{key: &s.key.PublicKey, issuer: s.issuer, now: s.now}
}

// Verifier checks tokens with the public key only.
type Verifier struct {
	key    *rsa.PublicKey
	issuer string
	now    func() time.Time
}

// NewVerifier returns a Verifier accepting tokens of issuer signed by key.
func NewVerifier(key *rsa.PublicKey, issuer string) (*Verifier, error) {
	if key == nil {
		return nil, errors.New("verifier requires a public key")
	}
	if issuer == "" {
		return nil, errors.New("verifier requires an issuer")
	}
	return &Verifier{key: key, issuer: issuer, now: time.Now}, nil
}

// Verify checks the signature, algorithm, issuer and expiry of token.
// Every failure is reported as common.ErrTokenInvalid.
func (v *Verifier) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return v.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, common.ErrTokenInvalid
	}

	return claims, nil
}
