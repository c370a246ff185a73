package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

const envPrefix = "HLTMENU_"

type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      *DatabaseConfig      `koanf:"database"`
	Storage       *StorageConfig       `koanf:"storage"`
	Menu          MenuConfig           `koanf:"menu"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=development staging production"`
}

type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// URL returns the postgres connection string.
func (d *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type StorageConfig struct {
	O3 *O3Config `koanf:"o3"`
}

// O3Config points at an S3-compatible bucket where published fragments are stored.
type O3Config struct {
	Endpoint  string `koanf:"endpoint" validate:"required,url"`
	Region    string `koanf:"region"`
	Bucket    string `koanf:"bucket" validate:"required"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
}

// MenuConfig selects where module records come from. Without Dir the built-in
// records are served.
type MenuConfig struct {
	Name     string   `koanf:"name"`
	Dir      string   `koanf:"dir"`
	Watch    bool     `koanf:"watch"`
	External []string `koanf:"external"`
}

// LoadConfig loads the configuration from environment variables using koanf.
func LoadConfig() (mainConfig *Config, err error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	k := koanf.New(".")
	err = k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil)
	if err != nil {
		logger.Error().Err(err).Msg("could not load initial env variables")
		return nil, err
	}

	mainConfig = &Config{}
	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error().Err(err).Msg("could not unmarshal mainconfig")
		return nil, err
	}
	applyDefaults(mainConfig)

	validate := validator.New()
	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error().Err(err).Msg("could not validate the struct")
		return nil, err
	}

	// set default observability config if not provided
	// in config struct we set Observability as pointer type to check whether it is nil or not
	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// fill some of the fields
	mainConfig.Observability.ServiceName = "hltmenu"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	// automatic pointer dereferencing for method calls
	err = mainConfig.Observability.Validate()
	if err != nil {
		logger.Error().Err(err).Msg("invalid observability config")
		return nil, err
	}

	return
}

// LoadApp loads the configuration and exits the process when it is invalid.
func LoadApp() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	return cfg
}

func applyDefaults(c *Config) {
	if c.Primary.Env == "" {
		c.Primary.Env = "development"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Menu.Name == "" {
		c.Menu.Name = "HLT_75e33"
	}
}
