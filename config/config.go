package config

import (
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/angeloszaimis/service-a/internal/httpserver"
)

const (
	DefaultClusterName    = "unknown-cluster"
	DefaultPodName        = "unknown-pod"
	DefaultServicePeerURL = "http://consumer:8000/"
	DefaultAddress        = ":8000"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type ClusterConfig struct {
	Name string `mapstructure:"name"`
}

type PodConfig struct {
	Name string `mapstructure:"name"`
}

type PeerConfig struct {
	URL              string `mapstructure:"url"`
	Timeout          string `mapstructure:"timeout"`
	BreakerThreshold int    `mapstructure:"breaker_threshold"`
	BreakerReset     string `mapstructure:"breaker_reset"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Config is read once at startup and never mutated afterwards.
type Config struct {
	Server   ServerConfig  `mapstructure:"server"`
	Cluster  ClusterConfig `mapstructure:"cluster"`
	Pod      PodConfig     `mapstructure:"pod"`
	ServiceB PeerConfig    `mapstructure:"service_b"`
	Logging  LoggingConfig `mapstructure:"logging"`
}

// Load reads defaults, an optional config.yaml and the environment, in
// increasing order of precedence. Keys map to environment variables by
// upper-casing and replacing dots, so cluster.name is CLUSTER_NAME and
// service_b.url is SERVICE_B_URL.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", DefaultAddress)
	v.SetDefault("cluster.name", DefaultClusterName)
	v.SetDefault("pod.name", DefaultPodName)
	v.SetDefault("service_b.url", DefaultServicePeerURL)
	v.SetDefault("service_b.timeout", "0s")
	v.SetDefault("service_b.breaker_threshold", 0)
	v.SetDefault("service_b.breaker_reset", "30s")
	v.SetDefault("logging.level", LogLevelInfo)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Debug("config file not found, using defaults and environment variables")
	} else {
		slog.Debug("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

// PeerTimeout is the bound on the outbound call; zero means unbounded.
func (c *Config) PeerTimeout() time.Duration {
	d, _ := time.ParseDuration(c.ServiceB.Timeout)
	return d
}

// BreakerReset is how long the breaker stays open before probing again.
func (c *Config) BreakerReset() time.Duration {
	d, _ := time.ParseDuration(c.ServiceB.BreakerReset)
	return d
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(httpserver.ValidateAddress),
					),
				)
			}),
		),
		validation.Field(&c.Cluster,
			validation.By(func(value interface{}) error {
				cc, ok := value.(ClusterConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ClusterConfig")
				}
				return validation.ValidateStruct(&cc,
					validation.Field(&cc.Name, validation.Required),
				)
			}),
		),
		validation.Field(&c.Pod,
			validation.By(func(value interface{}) error {
				pc, ok := value.(PodConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a PodConfig")
				}
				return validation.ValidateStruct(&pc,
					validation.Field(&pc.Name, validation.Required),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, "warning", LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.ServiceB,
			validation.Required,
			validation.By(func(value interface{}) error {
				pc, ok := value.(PeerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a PeerConfig")
				}
				return validation.ValidateStruct(&pc,
					validation.Field(&pc.URL,
						validation.Required,
						validation.By(validateServerURL),
					),
					validation.Field(&pc.Timeout,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&pc.BreakerThreshold,
						validation.Min(0),
					),
					validation.Field(&pc.BreakerReset,
						validation.Required,
						validation.By(validateDuration),
					),
				)
			}),
		),
	)
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	if d < 0 {
		return validation.NewError("validation_negative_duration", "must not be negative")
	}

	return nil
}

func validateServerURL(value interface{}) error {
	serverURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	parsedURL, err := url.Parse(serverURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
