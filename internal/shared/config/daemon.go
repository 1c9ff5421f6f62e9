package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nemanja-m/gopool/internal/shared/logging"
)

// DaemonConfig contains all configuration for the pool daemon.
type DaemonConfig struct {
	Pool    PoolConfig    `mapstructure:"pool"`
	REST    RESTConfig    `mapstructure:"rest"`
	GRPC    GRPCConfig    `mapstructure:"grpc"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// PoolConfig contains worker pool configuration.
type PoolConfig struct {
	Workers     int  `mapstructure:"workers"`
	LogTasks    bool `mapstructure:"log_tasks"`
	StartPaused bool `mapstructure:"start_paused"`

	// ReportInterval controls periodic stats logging; zero disables it.
	ReportInterval time.Duration `mapstructure:"report_interval"`
	StallTimeout   time.Duration `mapstructure:"stall_timeout"`
}

// RESTConfig contains REST API server configuration.
type RESTConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// GRPCConfig contains gRPC server configuration.
type GRPCConfig struct {
	Addr             string        `mapstructure:"addr"`
	EnableReflection bool          `mapstructure:"enable_reflection"`
	KeepaliveMinTime time.Duration `mapstructure:"keepalive_min_time"`
}

// MetricsConfig contains Prometheus exposition configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoadDaemon loads the daemon configuration from the given path.
// If configPath is empty, it looks for poold.yaml in the config/ directory.
// Environment variables with GOPOOL_ prefix override config file values.
func LoadDaemon(configPath string) (*DaemonConfig, error) {
	v := viper.New()

	v.SetDefault("pool.workers", 4)
	v.SetDefault("pool.log_tasks", false)
	v.SetDefault("pool.start_paused", false)
	v.SetDefault("pool.report_interval", 30*time.Second)
	v.SetDefault("pool.stall_timeout", 5*time.Minute)
	v.SetDefault("rest.addr", ":8080")
	v.SetDefault("rest.read_timeout", 15*time.Second)
	v.SetDefault("rest.write_timeout", 0)
	v.SetDefault("rest.idle_timeout", 60*time.Second)
	v.SetDefault("grpc.addr", ":9090")
	v.SetDefault("grpc.enable_reflection", true)
	v.SetDefault("grpc.keepalive_min_time", 30*time.Second)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)

	if err := readConfig(v, configPath, "poold"); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("GOPOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg DaemonConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *DaemonConfig) Validate() error {
	var errs []error
	if c.Pool.Workers <= 0 {
		errs = append(errs, fmt.Errorf("pool.workers must be greater than 0, got %d", c.Pool.Workers))
	}
	if c.Pool.ReportInterval < 0 || c.Pool.StallTimeout < 0 {
		errs = append(errs, errors.New("pool.report_interval and pool.stall_timeout must not be negative"))
	}
	if c.REST.Addr == "" && c.GRPC.Addr == "" {
		errs = append(errs, errors.New("at least one of rest.addr and grpc.addr must be set"))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with '/', got %q", c.Metrics.Path))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

func readConfig(v *viper.Viper, configPath, name string) error {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(name)
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}
