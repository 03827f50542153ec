package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/server/models"
)

type userRepo struct {
	m *Manager
	h *handle
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return r.m.write(r.h, func(s *state) error {
		if _, ok := s.users[user.ID]; ok {
			return fmt.Errorf("%w: user id %s", common.ErrorAlreadyExists, user.ID)
		}
		for _, u := range s.users {
			if strings.EqualFold(u.Email, user.Email) {
				return fmt.Errorf("%w: email", common.ErrorAlreadyExists)
			}
			if u.Mobile == user.Mobile {
				return fmt.Errorf("%w: mobile", common.ErrorAlreadyExists)
			}
		}
		if user.TenantID != nil {
			if _, ok := s.tenants[*user.TenantID]; !ok {
				return fmt.Errorf("db error: tenant %s does not exist", *user.TenantID)
			}
		}

		user.CreatedAt = r.m.now()
		stored := *user
		s.users[user.ID] = &stored
		return nil
	})
}

func (r *userRepo) AssignRole(ctx context.Context, userID, role string) error {
	return r.m.write(r.h, func(s *state) error {
		if _, ok := s.users[userID]; !ok {
			return fmt.Errorf("db error: user %s does not exist", userID)
		}
		rs := s.roles[userID]
		if rs == nil {
			rs = map[string]bool{}
			s.roles[userID] = rs
		}
		if rs[role] {
			return fmt.Errorf("%w: role %s", common.ErrorAlreadyExists, role)
		}
		rs[role] = true
		return nil
	})
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepo) GetByMobile(ctx context.Context, mobile string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Mobile == mobile })
}

func (r *userRepo) GetSuperAdminByMobile(ctx context.Context, mobile string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Mobile == mobile && u.TenantID == nil })
}

func (r *userRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.update(id, func(u *models.User) { u.PasswordHash = hash })
}

func (r *userRepo) SetMobileVerified(ctx context.Context, id string) error {
	return r.update(id, func(u *models.User) { u.MobileVerified = true })
}

func (r *userRepo) find(match func(u *models.User) bool) (*models.User, error) {
	var out *models.User
	err := r.m.read(r.h, func(s *state) error {
		for _, u := range s.users {
			if match(u) {
				c := *u
				out = &c
				return nil
			}
		}
		return common.ErrorNotFound
	})
	return out, err
}

func (r *userRepo) update(id string, fn func(u *models.User)) error {
	return r.m.write(r.h, func(s *state) error {
		u, ok := s.users[id]
		if !ok {
			return common.ErrorNotFound
		}
		fn(u)
		return nil
	})
}
