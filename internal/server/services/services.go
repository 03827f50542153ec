// Package services contains the server-side business logic: password login
// and reset, the OTP flows, and tenant provisioning.
//
// Every flow that consumes a single-use credential finds and checks it
// outside a transaction, then redeems it and applies its effect inside one
// transaction, so a credential is never marked used without the effect and
// never applied twice.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/cryptox"
	"github.com/dmitrijs2005/tenantauth/internal/logging"
	"github.com/dmitrijs2005/tenantauth/internal/server/auth"
	"github.com/dmitrijs2005/tenantauth/internal/server/notify"
	"github.com/dmitrijs2005/tenantauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tenantauth/internal/server/singleuse"
)

// Sender queues an outbound message without waiting for delivery.
// notify.Dispatcher implements it.
type Sender interface {
	Send(ctx context.Context, msg notify.Message)
}

// Deps are the collaborators shared by all services.
type Deps struct {
	Repos  repomanager.RepositoryManager
	Store  *singleuse.Store
	Hasher *cryptox.Hasher
	Signer *auth.Signer
	Sender Sender
	Logger logging.Logger
}

// hashNewPassword hashes a password being set through a reset, invite or
// OTP flow. Input errors pass through; anything else is internal.
func hashNewPassword(h *cryptox.Hasher, raw string) (string, error) {
	hash, err := h.HashPassword(raw)
	if err != nil {
		if errors.Is(err, common.ErrValidationFailed) {
			return "", err
		}
		return "", common.ErrorInternal
	}
	return hash, nil
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
