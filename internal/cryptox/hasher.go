// Package cryptox implements one-way hashing of secrets: slow salted hashing
// for passwords and fast deterministic fingerprints for single-use tokens and
// OTP codes.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the bcrypt cost the service has always used.
const DefaultCost = 10

// Hasher hashes passwords with bcrypt and fingerprints tokens with SHA-256.
// It holds no mutable state and is safe for concurrent use.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using the given bcrypt cost. Values outside
// bcrypt's accepted range fall back to DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// HashPassword returns a salted bcrypt hash of raw. Every call yields a
// different hash for the same input.
//
// Passwords longer than bcrypt accepts are reported as common.ErrValidationFailed;
// any other failure is common.ErrorInternal.
func (h *Hasher) HashPassword(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password too long", common.ErrValidationFailed)
		}
		return "", fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether raw matches hash. It never fails: an empty
// or malformed hash simply does not match.
func (h *Hasher) VerifyPassword(raw, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// Fingerprint returns the hex SHA-256 of raw. It is deterministic and used
// only as a lookup key for stored tokens and OTP codes.
func (h *Hasher) Fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// FingerprintEqual compares two fingerprints in constant time.
func (h *Hasher) FingerprintEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
