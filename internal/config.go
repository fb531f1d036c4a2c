package internal

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is loaded from a TOML file at startup. Store paths point at the files
// copied out of an iPhone backup; the auth database is the only writable file.
type Config struct {
	Server ServerConfig `toml:"server"`
	Stores StorePaths   `toml:"stores"`
	Auth   AuthConfig   `toml:"auth"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type AuthConfig struct {
	Database string `toml:"database"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Port: "8081"},
		Stores: StorePaths{
			Messages:    "sms.db",
			Calls:       "CallHistory.storedata",
			AddressBook: "AddressBook.sqlitedb",
		},
		Auth: AuthConfig{Database: "viewer_auth.db"},
	}
}

// LoadConfig reads the TOML config at path. An empty path yields the defaults.
// The PORT environment variable overrides the configured port either way.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}

	if cfg.Stores.Messages == "" || cfg.Stores.Calls == "" || cfg.Stores.AddressBook == "" {
		return Config{}, fmt.Errorf("config %s: all three store paths must be set", path)
	}

	return cfg, nil
}
