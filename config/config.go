package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServiceConfig covers the HTTP surface and its read model.
type ServiceConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	IndexerDB  string `mapstructure:"indexer_db"`
}

type Config struct {
	Home     string `mapstructure:"-"`
	LogLevel string `mapstructure:"log_level"`
	StateDir string `mapstructure:"state_dir"`

	Service ServiceConfig `mapstructure:"service"`
}

func DefaultConfig(home string) *Config {
	if len(home) == 0 {
		home = os.ExpandEnv("$HOME/.civ")
	}
	return &Config{
		Home:     home,
		LogLevel: "info",
		StateDir: "data",
		Service: ServiceConfig{
			ListenAddr: "0.0.0.0:8080",
			IndexerDB:  "indexer.db",
		},
	}
}

func (c *Config) ConfigFile() string {
	return filepath.Join(c.Home, "config", "config.toml")
}

// StateDBDir resolves the engine's leveldb directory.
func (c *Config) StateDBDir() string {
	if filepath.IsAbs(c.StateDir) {
		return c.StateDir
	}
	return filepath.Join(c.Home, c.StateDir)
}

func (c *Config) IndexerDBFile() string {
	if filepath.IsAbs(c.Service.IndexerDB) {
		return c.Service.IndexerDB
	}
	return filepath.Join(c.Home, c.Service.IndexerDB)
}

func (c *Config) ValidateBasic() error {
	if c.Service.ListenAddr == "" {
		return fmt.Errorf("service.listen_addr must not be empty")
	}
	if c.StateDir == "" {
		return fmt.Errorf("state_dir must not be empty")
	}
	return nil
}

// Load reads config.toml under home on top of the defaults.
func Load(home string) (*Config, error) {
	cfg := DefaultConfig(home)
	viper.SetConfigFile(cfg.ConfigFile())
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Home = home
	if err := cfg.ValidateBasic(); err != nil {
		return nil, err
	}
	return cfg, nil
}
