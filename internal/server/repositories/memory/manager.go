// Package memory is an in-process RepositoryManager for development and
// tests. It keeps the same observable contract as the PostgreSQL
// repositories: unique constraints, conditional redemption, and
// transactions that are all-or-nothing.
//
// Transactions are serialised: WithTx holds a manager-wide lock for the
// whole callback and restores a snapshot when the callback fails. Reads and
// writes outside a transaction wait for a running transaction to finish, so
// they never observe its uncommitted changes.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/tenantauth/internal/dbx"
	"github.com/dmitrijs2005/tenantauth/internal/server/models"
	"github.com/dmitrijs2005/tenantauth/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/tenantauth/internal/server/repositories/tenants"
	"github.com/dmitrijs2005/tenantauth/internal/server/repositories/users"
)

var errNoSQL = errors.New("memory handle does not execute SQL")

type state struct {
	users   map[string]*models.User
	roles   map[string]map[string]bool
	tenants map[string]*models.Tenant
	creds   map[string]*storedCredential
	seq     int64
}

type storedCredential struct {
	models.Credential
	seq int64
}

func newState() state {
	return state{
		users:   map[string]*models.User{},
		roles:   map[string]map[string]bool{},
		tenants: map[string]*models.Tenant{},
		creds:   map[string]*storedCredential{},
	}
}

func (s state) clone() state {
	out := newState()
	out.seq = s.seq
	for k, v := range s.users {
		u := *v
		out.users[k] = &u
	}
	for k, v := range s.roles {
		rs := make(map[string]bool, len(v))
		for r := range v {
			rs[r] = true
		}
		out.roles[k] = rs
	}
	for k, v := range s.tenants {
		t := *v
		out.tenants[k] = &t
	}
	for k, v := range s.creds {
		c := *v
		out.creds[k] = &c
	}
	return out
}

// Manager implements repomanager.RepositoryManager in memory.
type Manager struct {
	txMu sync.RWMutex
	mu   sync.RWMutex
	data state
	now  func() time.Time
}

// NewManager returns an empty store.
func NewManager() *Manager {
	return &Manager{data: newState(), now: time.Now}
}

// handle is the DBTX handed to repositories. It only marks whether the
// caller is inside a transaction.
type handle struct {
	m  *Manager
	tx bool
}

func (h *handle) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errNoSQL
}

func (h *handle) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errNoSQL
}

// QueryRowContext is unsupported; memory repositories never call it.
func (h *handle) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func (m *Manager) RunMigrations(context.Context) error { return nil }

func (m *Manager) DB() dbx.DBTX { return &handle{m: m} }

// WithTx runs fn with exclusive write access and rolls every change back
// if fn returns an error or panics.
func (m *Manager) WithTx(ctx context.Context, fn dbx.TxFunc) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	snapshot := m.data.clone()
	m.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			m.restore(snapshot)
			panic(p)
		}
		if err != nil {
			m.restore(snapshot)
		}
	}()

	return fn(ctx, &handle{m: m, tx: true})
}

func (m *Manager) restore(s state) {
	m.mu.Lock()
	m.data = s
	m.mu.Unlock()
}

func (m *Manager) Users(db dbx.DBTX) users.Repository {
	return &userRepo{m: m, h: m.bind(db)}
}

func (m *Manager) Tenants(db dbx.DBTX) tenants.Repository {
	return &tenantRepo{m: m, h: m.bind(db)}
}

func (m *Manager) Credentials(db dbx.DBTX) credentials.Repository {
	return &credentialRepo{m: m, h: m.bind(db)}
}

func (m *Manager) Close() error { return nil }

// CredentialCount returns how many credentials of purpose are stored,
// redeemed or not.
func (m *Manager) CredentialCount(p models.Purpose) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, c := range m.data.creds {
		if c.Purpose == p {
			n++
		}
	}
	return n
}

func (m *Manager) bind(db dbx.DBTX) *handle {
	if h, ok := db.(*handle); ok && h.m == m {
		return h
	}
	return &handle{m: m}
}

// write runs fn with the data lock held, taking the transaction lock too
// when the handle is not already inside a transaction.
func (m *Manager) write(h *handle, fn func(s *state) error) error {
	if !h.tx {
		m.txMu.Lock()
		defer m.txMu.Unlock()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&m.data)
}

// read runs fn with the data lock shared. Outside a transaction it also
// waits for any running transaction.
func (m *Manager) read(h *handle, fn func(s *state) error) error {
	if !h.tx {
		m.txMu.RLock()
		defer m.txMu.RUnlock()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&m.data)
}
