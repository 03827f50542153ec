package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/tenantauth/internal/flagx"
	"github.com/dmitrijs2005/tenantauth/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Pointer fields distinguish "absent" from a zero value.
type JsonConfig struct {
	EndpointAddrGRPC *string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP *string         `json:"endpoint_addr_http"`
	DatabaseDSN      *string         `json:"database_dsn"`
	PrivateKeyPath   *string         `json:"private_key_path"`
	PublicKeyPath    *string         `json:"public_key_path"`
	Issuer           *string         `json:"issuer"`
	AccessTokenTTL   *timex.Duration `json:"access_token_ttl"`
	ResetTokenTTL    *timex.Duration `json:"reset_token_ttl"`
	InviteTTL        *timex.Duration `json:"invite_ttl"`
	OTPTTL           *timex.Duration `json:"otp_ttl"`
	BcryptCost       *int            `json:"bcrypt_cost"`
	ResetURL         *string         `json:"reset_url"`
	InviteURL        *string         `json:"invite_url"`
	Notifier         *string         `json:"notifier"`
	SESFrom          *string         `json:"ses_from"`
	AWSRegion        *string         `json:"aws_region"`
	AWSEndpoint      *string         `json:"aws_endpoint"`
	AWSAccessKeyID   *string         `json:"aws_access_key_id"`
	AWSSecretKey     *string         `json:"aws_secret_access_key"`
	LogLevel         *string         `json:"log_level"`
	Migrate          *bool           `json:"migrate"`
	Storage          *string         `json:"storage"`
}

// parseJson overlays the file named by -c/-config (or $TENANTAUTH_CONFIG)
// onto config. Without a file nothing changes.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.PrivateKeyPath, c.PrivateKeyPath)
	setString(&config.PublicKeyPath, c.PublicKeyPath)
	setString(&config.Issuer, c.Issuer)
	setDuration(&config.AccessTokenTTL, c.AccessTokenTTL)
	setDuration(&config.ResetTokenTTL, c.ResetTokenTTL)
	setDuration(&config.InviteTTL, c.InviteTTL)
	setDuration(&config.OTPTTL, c.OTPTTL)
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	setString(&config.ResetURL, c.ResetURL)
	setString(&config.InviteURL, c.InviteURL)
	setString(&config.Notifier, c.Notifier)
	setString(&config.SESFrom, c.SESFrom)
	setString(&config.AWSRegion, c.AWSRegion)
	setString(&config.AWSEndpoint, c.AWSEndpoint)
	setString(&config.AWSAccessKeyID, c.AWSAccessKeyID)
	setString(&config.AWSSecretKey, c.AWSSecretKey)
	setString(&config.LogLevel, c.LogLevel)
	if c.Migrate != nil {
		config.Migrate = *c.Migrate
	}
	setString(&config.Storage, c.Storage)

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
