package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable read by Load
const EnvPrefix = "FTSERVE_"

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Serving ServingConfig `yaml:"serving"`
	Model   ModelConfig   `yaml:"model"`
	Redis   RedisConfig   `yaml:"redis"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds transport settings
type ServerConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	Mode             string `yaml:"mode"`
	Transport        string `yaml:"transport"`
	Workers          int    `yaml:"workers"`
	MaxRequestSizeMB int    `yaml:"max_request_size_mb"`
}

// ServingConfig holds the limits and defaults applied to every batch.
// It is resolved once at startup and never mutated afterwards.
type ServingConfig struct {
	MaxTextLength    int     `yaml:"max_text_length"`
	DefaultThreshold float32 `yaml:"default_threshold"`
	DefaultVectorDim int     `yaml:"default_vector_dim"`
}

// ModelConfig describes where the loaded model is served from
type ModelConfig struct {
	Path       string        `yaml:"path"`
	BackendURL string        `yaml:"backend_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

// RedisConfig holds the optional prediction cache settings
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// MetricsConfig holds Prometheus settings.
// Address is only used by the gRPC transport, which has no HTTP router to
// mount /metrics on; empty disables the exporter there.
type MetricsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Address     string `yaml:"address"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Transports accepted by ServerConfig.Transport
const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Sources lists the optional files Load reads before the environment
type Sources struct {
	ConfigFile string
	EnvFile    string
}

// MaxRequestSizeBytes returns the request body cap in bytes
func (s ServerConfig) MaxRequestSizeBytes() int64 {
	return int64(s.MaxRequestSizeMB) * 1024 * 1024
}

// Address returns the listen address, keeping a unix: prefix untouched
func (s ServerConfig) Address() string {
	if strings.HasPrefix(s.Host, "unix:") {
		return s.Host
	}
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Addr returns the redis host:port pair
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Default returns the configuration used when nothing else is supplied
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "127.0.0.1",
			Port:             8000,
			Mode:             "release",
			Transport:        TransportHTTP,
			Workers:          runtime.NumCPU(),
			MaxRequestSizeMB: 500,
		},
		Serving: ServingConfig{
			MaxTextLength:    5_000_000,
			DefaultThreshold: 0.0,
			DefaultVectorDim: 100,
		},
		Model: ModelConfig{
			BackendURL: "http://127.0.0.1:8001",
			Timeout:    30 * time.Second,
		},
		Redis: RedisConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    6379,
			DB:      0,
			TTL:     10 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			ServiceName: "fasttext-serving",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// an optional .env file and FTSERVE_* environment variables, in that order.
// The result is not validated, so callers can layer further overrides
// before calling Validate.
func Load(src Sources) (*Config, error) {
	cfg := Default()

	if src.ConfigFile != "" {
		if err := loadYAML(src.ConfigFile, cfg); err != nil {
			return nil, err
		}
	}

	if src.EnvFile != "" {
		if err := godotenv.Load(src.EnvFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load env file %q: %w", src.EnvFile, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file %q: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config file %q: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	str("SERVER_HOST", &cfg.Server.Host)
	num("SERVER_PORT", &cfg.Server.Port)
	str("SERVER_MODE", &cfg.Server.Mode)
	str("SERVER_TRANSPORT", &cfg.Server.Transport)
	num("SERVER_WORKERS", &cfg.Server.Workers)
	num("SERVER_MAX_REQUEST_SIZE_MB", &cfg.Server.MaxRequestSizeMB)

	num("SERVING_MAX_TEXT_LENGTH", &cfg.Serving.MaxTextLength)
	if v, ok := lookup("SERVING_DEFAULT_THRESHOLD"); ok {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSERVING_DEFAULT_THRESHOLD: %w", EnvPrefix, err))
		} else {
			cfg.Serving.DefaultThreshold = float32(f)
		}
	}
	num("SERVING_DEFAULT_VECTOR_DIM", &cfg.Serving.DefaultVectorDim)

	str("MODEL_PATH", &cfg.Model.Path)
	str("MODEL_BACKEND_URL", &cfg.Model.BackendURL)
	duration("MODEL_TIMEOUT", &cfg.Model.Timeout)

	boolean("REDIS_ENABLED", &cfg.Redis.Enabled)
	str("REDIS_HOST", &cfg.Redis.Host)
	num("REDIS_PORT", &cfg.Redis.Port)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	num("REDIS_DB", &cfg.Redis.DB)
	duration("REDIS_TTL", &cfg.Redis.TTL)

	boolean("METRICS_ENABLED", &cfg.Metrics.Enabled)
	str("METRICS_SERVICE_NAME", &cfg.Metrics.ServiceName)
	str("METRICS_ADDRESS", &cfg.Metrics.Address)

	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	return errors.Join(errs...)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing every problem found.
func Validate(cfg *Config) error {
	var errs []error

	// a unix socket address ignores the port
	if !strings.HasPrefix(cfg.Server.Host, "unix:") && (cfg.Server.Port <= 0 || cfg.Server.Port > 65535) {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", cfg.Server.Port))
	}
	if cfg.Server.Transport != TransportHTTP && cfg.Server.Transport != TransportGRPC {
		errs = append(errs, fmt.Errorf("server.transport %q is invalid; valid values: http, grpc", cfg.Server.Transport))
	}
	if cfg.Server.Workers < 1 {
		errs = append(errs, fmt.Errorf("server.workers must be at least 1, got %d", cfg.Server.Workers))
	}
	if cfg.Server.MaxRequestSizeMB < 1 {
		errs = append(errs, fmt.Errorf("server.max_request_size_mb must be at least 1, got %d", cfg.Server.MaxRequestSizeMB))
	}
	if cfg.Serving.MaxTextLength < 1 {
		errs = append(errs, fmt.Errorf("serving.max_text_length must be at least 1, got %d", cfg.Serving.MaxTextLength))
	}
	if cfg.Serving.DefaultVectorDim < 0 {
		errs = append(errs, fmt.Errorf("serving.default_vector_dim must not be negative, got %d", cfg.Serving.DefaultVectorDim))
	}
	if cfg.Model.BackendURL == "" {
		errs = append(errs, errors.New("model.backend_url is required"))
	}
	if cfg.Model.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("model.timeout must be positive, got %s", cfg.Model.Timeout))
	}

	return errors.Join(errs...)
}
