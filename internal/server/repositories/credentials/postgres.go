package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/dbx"
	"github.com/dmitrijs2005/tenantauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Credential) error {
	t, err := tableFor(c.Purpose)
	if err != nil {
		return err
	}

	var a args
	cols := []string{"id", "user_id"}
	vals := []string{a.add(c.ID), a.add(c.UserID)}
	if t.scoped {
		cols = append(cols, "purpose")
		vals = append(vals, a.add(string(c.Purpose)))
	}
	cols = append(cols, t.hashCol, "expires_at", "created_at")
	vals = append(vals, a.add(c.SecretHash), a.add(c.ExpiresAt), a.add(c.CreatedAt))

	query := fmt.Sprintf(`INSERT INTO %s (%s)
		 VALUES (%s)
		 `, t.name, strings.Join(cols, ", "), strings.Join(vals, ", "))

	if _, err := r.db.ExecContext(ctx, query, a...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateForMobile(ctx context.Context, c *models.Credential, mobile string) (bool, error) {
	t, err := tableFor(c.Purpose)
	if err != nil {
		return false, err
	}

	// Select-list parameters are cast so Postgres does not resolve them as text.
	var a args
	cols := []string{"id", "user_id"}
	vals := []string{a.add(c.ID) + "::uuid", "id"}
	if t.scoped {
		cols = append(cols, "purpose")
		vals = append(vals, a.add(string(c.Purpose))+"::text")
	}
	cols = append(cols, t.hashCol, "expires_at", "created_at")
	vals = append(vals, a.add(c.SecretHash)+"::text", a.add(c.ExpiresAt)+"::timestamptz", a.add(c.CreatedAt)+"::timestamptz")

	where := "mobile = " + a.add(mobile)
	if t.superAdmin {
		where += " AND tenant_id IS NULL"
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s)
		 SELECT %s FROM users
		 WHERE %s
		 RETURNING user_id
		 `, t.name, strings.Join(cols, ", "), strings.Join(vals, ", "), where)

	err = r.db.QueryRowContext(ctx, query, a...).Scan(&c.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}

func (r *PostgresRepository) FindBySecret(ctx context.Context, purpose models.Purpose, secretHash string, now time.Time) (*models.Credential, error) {
	t, err := tableFor(purpose)
	if err != nil {
		return nil, err
	}

	var a args
	conds := []string{"c." + t.hashCol + " = " + a.add(secretHash)}
	if t.superAdmin {
		conds = append(conds, "u.tenant_id IS NULL")
	}
	return r.findLatest(ctx, t, purpose, &a, conds, now)
}

func (r *PostgresRepository) FindByMobile(ctx context.Context, purpose models.Purpose, mobile string, now time.Time) (*models.Credential, error) {
	t, err := tableFor(purpose)
	if err != nil {
		return nil, err
	}

	var a args
	conds := []string{"u.mobile = " + a.add(mobile)}
	if t.superAdmin {
		conds = append(conds, "u.tenant_id IS NULL")
	}
	return r.findLatest(ctx, t, purpose, &a, conds, now)
}

func (r *PostgresRepository) findLatest(ctx context.Context, t table, purpose models.Purpose, a *args, conds []string, now time.Time) (*models.Credential, error) {
	if t.scoped {
		conds = append(conds, "c.purpose = "+a.add(string(purpose)))
	}
	conds = append(conds, "c.used_at IS NULL", "c.expires_at > "+a.add(now))

	query := fmt.Sprintf(`SELECT c.id, c.user_id, c.%s, c.expires_at, c.used_at, c.created_at
		 FROM %s c
		 JOIN users u ON u.id = c.user_id
		 WHERE %s
		 ORDER BY c.created_at DESC
		 LIMIT 1
		 `, t.hashCol, t.name, strings.Join(conds, " AND "))

	c := &models.Credential{Purpose: purpose}
	var usedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, *a...).Scan(&c.ID, &c.UserID, &c.SecretHash, &c.ExpiresAt, &usedAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if usedAt.Valid {
		c.UsedAt = &usedAt.Time
	}
	return c, nil
}

func (r *PostgresRepository) Redeem(ctx context.Context, purpose models.Purpose, id string, now time.Time) (bool, error) {
	t, err := tableFor(purpose)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`UPDATE %s SET used_at = $1
		 WHERE id = $2 AND used_at IS NULL AND expires_at > $1
		 `, t.name)

	res, err := r.db.ExecContext(ctx, query, now, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}
