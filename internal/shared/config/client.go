package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig contains configuration for the poolctl command line client.
type ClientConfig struct {
	Addr             string        `mapstructure:"addr"`
	Timeout          time.Duration `mapstructure:"timeout"`
	KeepaliveTime    time.Duration `mapstructure:"keepalive_time"`
	KeepaliveTimeout time.Duration `mapstructure:"keepalive_timeout"`
}

// LoadClient loads the client configuration from the given path.
// If configPath is empty, it looks for poolctl.yaml in the config/ directory.
// Environment variables with GOPOOL_CLIENT_ prefix override config file values.
func LoadClient(configPath string) (*ClientConfig, error) {
	v := viper.New()

	v.SetDefault("addr", "localhost:9090")
	v.SetDefault("timeout", 0)
	v.SetDefault("keepalive_time", 30*time.Second)
	v.SetDefault("keepalive_timeout", 5*time.Second)

	if err := readConfig(v, configPath, "poolctl"); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("GOPOOL_CLIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}
