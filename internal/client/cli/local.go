package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/cryptox"
	"github.com/dmitrijs2005/tenantauth/internal/dbx"
	"github.com/dmitrijs2005/tenantauth/internal/filex"
	"github.com/dmitrijs2005/tenantauth/internal/server/auth"
	"github.com/dmitrijs2005/tenantauth/internal/server/models"
	"github.com/google/uuid"
)

const (
	privateKeyFile = "private.pem"
	publicKeyFile  = "public.pem"
)

func (a *App) keygen(_ context.Context, args []string) error {
	fs := a.flags("keygen")
	dir := fs.String("out", "keys", "output directory")
	bits := fs.Int("bits", 2048, "RSA key size")
	force := fs.Bool("force", false, "overwrite existing files")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *bits < 2048 {
		return fmt.Errorf("%w: -bits must be at least 2048", ErrUsage)
	}

	out, err := filex.EnsureDir(*dir, 0o700)
	if err != nil {
		return err
	}
	privPath := filepath.Join(out, privateKeyFile)
	pubPath := filepath.Join(out, publicKeyFile)
	if !*force {
		for _, p := range []string{privPath, pubPath} {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("%w: %s, use -force to overwrite", filex.ErrExists, p)
			}
		}
	}

	priv, pub, err := auth.GenerateKeyPair(*bits)
	if err != nil {
		return fmt.Errorf("generate key pair: %w", err)
	}

	if err := filex.WriteNew(privPath, priv, 0o600, *force); err != nil {
		return err
	}
	if err := filex.WriteNew(pubPath, pub, 0o644, *force); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Wrote %s and %s\n", privPath, pubPath)
	return nil
}

func (a *App) hash(_ context.Context, args []string) error {
	if err := parse(a.flags("hash"), args); err != nil {
		return err
	}

	pw, err := GetPassword(a.prompt, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	h, err := cryptox.NewHasher(a.config.BcryptCost).HashPassword(string(pw))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, h)
	return nil
}

func (a *App) seedSuperAdmin(ctx context.Context, args []string) error {
	fs := a.flags("seed-superadmin")
	email := fs.String("email", "", "super-admin email")
	mobile := fs.String("mobile", "", "super-admin mobile, E.164")
	name := fs.String("name", "Platform Admin", "display name")
	withPassword := fs.Bool("password", false, "prompt for a login password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "email", "mobile"); err != nil {
		return err
	}

	user := &models.User{
		ID:             uuid.NewString(),
		Email:          *email,
		Mobile:         *mobile,
		MobileVerified: true,
		Metadata:       models.UserMetadata{Role: string(auth.RoleSuperAdmin), Name: *name},
	}

	if *withPassword {
		pw, err := GetNewPassword(a.prompt)
		if err != nil {
			return err
		}
		user.PasswordHash, err = cryptox.NewHasher(a.config.BcryptCost).HashPassword(string(pw))
		common.WipeByteArray(pw)
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	repos, err := a.openRepos(ctx, a.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repos.Close()

	if a.config.Migrate {
		if err := repos.RunMigrations(ctx); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	err = repos.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := repos.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		return repos.Users(tx).AssignRole(ctx, user.ID, string(auth.RoleSuperAdmin))
	})
	if errors.Is(err, common.ErrorAlreadyExists) {
		return fmt.Errorf("a user with email %s or mobile %s already exists", *email, *mobile)
	}
	if err != nil {
		return fmt.Errorf("seed super-admin: %w", err)
	}

	fmt.Fprintf(a.out, "Super-admin %s created\n", user.ID)
	return nil
}
