package memory

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/server/models"
)

type tenantRepo struct {
	m *Manager
	h *handle
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	return r.m.write(r.h, func(s *state) error {
		if _, ok := s.tenants[tenant.ID]; ok {
			return fmt.Errorf("%w: tenant id %s", common.ErrorAlreadyExists, tenant.ID)
		}
		for _, t := range s.tenants {
			if t.Name == tenant.Name {
				return fmt.Errorf("%w: tenant name", common.ErrorAlreadyExists)
			}
		}
		tenant.CreatedAt = r.m.now()
		stored := *tenant
		s.tenants[tenant.ID] = &stored
		return nil
	})
}

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	var out *models.Tenant
	err := r.m.read(r.h, func(s *state) error {
		t, ok := s.tenants[id]
		if !ok {
			return common.ErrorNotFound
		}
		c := *t
		out = &c
		return nil
	})
	return out, err
}
