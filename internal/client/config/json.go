package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/tenantauth/internal/flagx"
	"github.com/dmitrijs2005/tenantauth/internal/timex"
)

// JsonConfig is the on-disk shape of the authctl configuration file.
type JsonConfig struct {
	ServerEndpointAddr *string         `json:"server_endpoint_addr"`
	DatabaseDSN        *string         `json:"database_dsn"`
	Timeout            *timex.Duration `json:"timeout"`
	BcryptCost         *int            `json:"bcrypt_cost"`
	Migrate            *bool           `json:"migrate"`
}

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

	if c.ServerEndpointAddr != nil {
		config.ServerEndpointAddr = *c.ServerEndpointAddr
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.Timeout != nil {
		config.Timeout = c.Timeout.Duration
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	if c.Migrate != nil {
		config.Migrate = *c.Migrate
	}
	return nil
}
