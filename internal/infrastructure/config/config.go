package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key when read from the environment
const EnvPrefix = "PROMPT_GUARD"

// Config holds all service configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Model  ModelConfig  `mapstructure:"model"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ModelConfig holds model store and runtime settings
type ModelConfig struct {
	ID              string        `mapstructure:"id"`
	CacheDir        string        `mapstructure:"cache_dir"`
	Token           string        `mapstructure:"token"`
	Revision        string        `mapstructure:"revision"`
	OnnxFile        string        `mapstructure:"onnx_file"`
	HubURL          string        `mapstructure:"hub_url"`
	RuntimeLibrary  string        `mapstructure:"runtime_library"`
	MaxLength       int           `mapstructure:"max_length"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
}

// RedisConfig holds the optional result cache settings
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Addr returns the redis address
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// legacyEnv maps keys to the unprefixed variable names the service has always
// honoured. The prefixed variant still wins when both are set.
var legacyEnv = map[string]string{
	"model.id":              "MODEL_ID",
	"model.cache_dir":       "MODEL_CACHE_DIR",
	"model.token":           "HF_TOKEN",
	"model.revision":        "MODEL_REVISION",
	"model.onnx_file":       "MODEL_ONNX_FILE",
	"model.hub_url":         "HF_ENDPOINT",
	"model.runtime_library": "ONNXRUNTIME_LIB",
}

// Load reads configuration from defaults and environment variables
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	// Model
	v.SetDefault("model.id", "meta-llama/Llama-Prompt-Guard-2-86M")
	v.SetDefault("model.cache_dir", "/app/model_cache")
	v.SetDefault("model.token", "")
	v.SetDefault("model.revision", "main")
	v.SetDefault("model.onnx_file", "onnx/model.onnx")
	v.SetDefault("model.hub_url", "https://huggingface.co")
	v.SetDefault("model.runtime_library", "/usr/lib/libonnxruntime.so")
	v.SetDefault("model.max_length", 512)
	v.SetDefault("model.download_timeout", 10*time.Minute)

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Hour)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func (c *Config) validate() error {
	if c.Model.ID == "" {
		return fmt.Errorf("model id must not be empty")
	}
	if c.Model.CacheDir == "" {
		return fmt.Errorf("model cache dir must not be empty")
	}
	if c.Model.MaxLength < 2 {
		return fmt.Errorf("model max length must be at least 2, got %d", c.Model.MaxLength)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}
