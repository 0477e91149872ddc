package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/curioverse/curio/database"
	curiohttp "github.com/curioverse/curio/http"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for curio.
type Config struct {
	Server   ServerConfig         `mapstructure:"server"`
	Service  ServiceConfig        `mapstructure:"service"`
	Database database.Config      `mapstructure:"database"`
	Storage  StorageConfig        `mapstructure:"storage"`
	Access   AccessConfig         `mapstructure:"access"`
	CORS     curiohttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig            `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	ReadTTLSeconds  int `mapstructure:"read_ttl" validate:"min=0"`
	WriteTTLSeconds int `mapstructure:"write_ttl" validate:"min=0"`
}

// StorageConfig holds object-store configuration. With Enabled false no
// signer is wired: media responses carry a null URL and upload tickets
// are refused. An empty public base disables read URLs only; write
// tickets stay available.
type StorageConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	PublicBase string `mapstructure:"public_base" validate:"omitempty,url"`
}

// AccessConfig holds identity gate configuration. Admin routes fail
// closed: with Enabled false and Open false every admin request is
// denied. Enabled wires the assertion-verifying gate (CertsURL must
// point at the access proxy's key-set endpoint); Open admits every
// request and is meant for local development only.
type AccessConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Open            bool   `mapstructure:"open" validate:"excluded_if=Enabled true"`
	Header          string `mapstructure:"header"`
	CertsURL        string `mapstructure:"certs_url" validate:"required_if=Enabled true,omitempty,url"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl" validate:"min=0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":     "database.type",
	"db-dsn":      "database.dsn",
	"public-base": "storage.public_base",
	"port":        "server.port",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5716)

	v.SetDefault("service.read_ttl", 300)  // seconds
	v.SetDefault("service.write_ttl", 600) // seconds

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "curio.db")

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.public_base", "")

	v.SetDefault("access.enabled", false)
	v.SetDefault("access.open", false)
	v.SetDefault("access.header", "Cf-Access-Jwt-Assertion")
	v.SetDefault("access.cache_ttl", 300)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("CURIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
