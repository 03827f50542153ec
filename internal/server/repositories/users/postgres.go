package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/dbx"
	"github.com/dmitrijs2005/tenantauth/internal/server/models"
)

const selectUser = `SELECT id, tenant_id, email, mobile, password_hash, mobile_verified, metadata, created_at
		 FROM users
		 `

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	metadata, err := json.Marshal(user.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	query :=
		`INSERT INTO users (id, tenant_id, email, mobile, password_hash, mobile_verified, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		user.ID, nullString(user.TenantID), user.Email, user.Mobile,
		nullable(user.PasswordHash), user.MobileVerified, string(metadata),
	).Scan(&user.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %w", common.ErrorAlreadyExists, err)
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) AssignRole(ctx context.Context, userID, role string) error {
	query :=
		`INSERT INTO user_roles (user_id, role)
		 VALUES ($1, $2)
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, role); err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %w", common.ErrorAlreadyExists, err)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *PostgresRepository) GetByMobile(ctx context.Context, mobile string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`WHERE mobile = $1`, mobile)
}

func (r *PostgresRepository) GetSuperAdminByMobile(ctx context.Context, mobile string) (*models.User, error) {
	return r.getOne(ctx, selectUser+`WHERE mobile = $1 AND tenant_id IS NULL`, mobile)
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	query :=
		`UPDATE users SET password_hash = $1
		 WHERE id = $2
		 `
	return r.updateOne(ctx, query, hash, id)
}

func (r *PostgresRepository) SetMobileVerified(ctx context.Context, id string) error {
	query :=
		`UPDATE users SET mobile_verified = TRUE
		 WHERE id = $1
		 `
	return r.updateOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	var (
		user         models.User
		tenantID     sql.NullString
		passwordHash sql.NullString
		metadata     []byte
	)

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &tenantID, &user.Email, &user.Mobile, &passwordHash,
		&user.MobileVerified, &metadata, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if tenantID.Valid {
		user.TenantID = &tenantID.String
	}
	user.PasswordHash = passwordHash.String
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &user.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}

	return &user, nil
}

func (r *PostgresRepository) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
