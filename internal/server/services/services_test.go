package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tenantauth/internal/cryptox"
	"github.com/dmitrijs2005/tenantauth/internal/logging"
	"github.com/dmitrijs2005/tenantauth/internal/server/auth"
	"github.com/dmitrijs2005/tenantauth/internal/server/config"
	"github.com/dmitrijs2005/tenantauth/internal/server/models"
	"github.com/dmitrijs2005/tenantauth/internal/server/notify"
	"github.com/dmitrijs2005/tenantauth/internal/server/repositories/memory"
	"github.com/dmitrijs2005/tenantauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tenantauth/internal/server/singleuse"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	tenantID      = "11111111-1111-1111-1111-111111111111"
	userEmail     = "alice@acme.io"
	userMobile    = "+15550001"
	userPassword  = "s3cret-pass"
	rootMobile    = "+15559999"
	unknownMobile = "+15550000"
)

var (
	keyOnce sync.Once
	key     *rsa.PrivateKey

	otpPattern = regexp.MustCompile(`\b[1-9][0-9]{5}\b`)
)

func signingKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		var err error
		if key, err = rsa.GenerateKey(rand.Reader, 2048); err != nil {
			panic(err)
		}
	})
	return key
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// recorder captures messages instead of delivering them.
type recorder struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (r *recorder) Send(_ context.Context, msg notify.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func (r *recorder) last(t *testing.T) notify.Message {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.msgs, "no message sent")
	return r.msgs[len(r.msgs)-1]
}

// code extracts the one-time code from the last SMS.
func (r *recorder) code(t *testing.T) string {
	t.Helper()
	msg := r.last(t)
	require.Equal(t, notify.ChannelSMS, msg.Channel)
	code := otpPattern.FindString(msg.Body)
	require.NotEmpty(t, code, "no code in %q", msg.Body)
	return code
}

// token extracts the raw token from the link in the last email.
func (r *recorder) token(t *testing.T, base string) string {
	t.Helper()
	msg := r.last(t)
	require.Equal(t, notify.ChannelEmail, msg.Channel)
	i := strings.Index(msg.Body, base)
	require.GreaterOrEqual(t, i, 0, "no link in %q", msg.Body)
	return strings.TrimSpace(msg.Body[i+len(base):])
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

func newDeps(t *testing.T, repos repomanager.RepositoryManager, c *clock, logger logging.Logger) (Deps, *recorder) {
	t.Helper()
	signer, err := auth.NewSigner(signingKey(t), "tenantauth", 15*time.Minute)
	require.NoError(t, err)

	hasher := cryptox.NewHasher(bcrypt.MinCost)
	sent := &recorder{}
	return Deps{
		Repos:  repos,
		Store:  singleuse.NewStore(repos, hasher, singleuse.WithClock(c.Now)),
		Hasher: hasher,
		Signer: signer,
		Sender: sent,
		Logger: logger,
	}, sent
}

type fixture struct {
	m       *memory.Manager
	clock   *clock
	sent    *recorder
	cfg     *config.Config
	verify  *auth.Verifier
	creds   *CredentialService
	otp     *OTPService
	tenants *TenantService
}

// newFixture seeds a tenant with one user and a platform super-admin.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	m := memory.NewManager()
	c := &clock{t: time.Now().UTC()}
	d, sent := newDeps(t, m, c, logging.Nop())
	cfg := testConfig()

	hash, err := d.Hasher.HashPassword(userPassword)
	require.NoError(t, err)

	tid := tenantID
	require.NoError(t, m.Tenants(m.DB()).Create(ctx, &models.Tenant{ID: tid, Name: "Acme"}))
	require.NoError(t, m.Users(m.DB()).Create(ctx, &models.User{
		ID: "u-1", TenantID: &tid, Email: userEmail, Mobile: userMobile, PasswordHash: hash,
		Metadata: models.UserMetadata{Role: "USER", Name: "Alice"},
	}))
	require.NoError(t, m.Users(m.DB()).Create(ctx, &models.User{
		ID: "root", Email: "root@platform.io", Mobile: rootMobile,
		Metadata: models.UserMetadata{Role: "SUPER_ADMIN", Name: "Root"},
	}))

	return &fixture{
		m:       m,
		clock:   c,
		sent:    sent,
		cfg:     cfg,
		verify:  d.Signer.Verifier(),
		creds:   NewCredentialService(d, cfg),
		otp:     NewOTPService(d, cfg),
		tenants: NewTenantService(d, cfg),
	}
}

func (f *fixture) user(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := f.m.Users(f.m.DB()).GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}
