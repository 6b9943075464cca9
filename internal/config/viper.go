package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/parsererror"
)

// EnvPrefix is prepended to every environment override, e.g.
// SMSLEDGER_SINK_DRIVER.
const EnvPrefix = "SMSLEDGER"

// Sink drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// PatternConfig declares an extra regex matcher. The regex uses the named
// groups amount, merchant, account, date and balance; amount is required.
type PatternConfig struct {
	Name      string `mapstructure:"name" yaml:"name"`
	Bank      string `mapstructure:"bank" yaml:"bank"`
	Direction string `mapstructure:"direction" yaml:"direction"`
	Regex     string `mapstructure:"regex" yaml:"regex"`
}

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Server struct {
		Addr               string `mapstructure:"addr" yaml:"addr"`
		MaxUploadMB        int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
		ReadTimeoutSeconds int    `mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds"`
	} `mapstructure:"server" yaml:"server"`

	Ingest struct {
		DefaultBank string          `mapstructure:"default_bank" yaml:"default_bank"`
		Workers     int             `mapstructure:"workers" yaml:"workers"`
		Timezone    string          `mapstructure:"timezone" yaml:"timezone"`
		Patterns    []PatternConfig `mapstructure:"patterns" yaml:"patterns"`
	} `mapstructure:"ingest" yaml:"ingest"`

	Categories struct {
		File          string `mapstructure:"file" yaml:"file"`
		MerchantsFile string `mapstructure:"merchants_file" yaml:"merchants_file"`
	} `mapstructure:"categories" yaml:"categories"`

	Sink struct {
		Driver    string `mapstructure:"driver" yaml:"driver"`
		DSN       string `mapstructure:"dsn" yaml:"-"`
		RedisAddr string `mapstructure:"redis_addr" yaml:"redis_addr"`
		Breaker   struct {
			Enabled          bool `mapstructure:"enabled" yaml:"enabled"`
			MaxFailures      int  `mapstructure:"max_failures" yaml:"max_failures"`
			OpenTimeoutSecs  int  `mapstructure:"open_timeout_seconds" yaml:"open_timeout_seconds"`
			HalfOpenRequests int  `mapstructure:"half_open_requests" yaml:"half_open_requests"`
		} `mapstructure:"breaker" yaml:"breaker"`
	} `mapstructure:"sink" yaml:"sink"`

	AI struct {
		Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
		Model          string `mapstructure:"model" yaml:"model"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey         string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	DemoUserID string `mapstructure:"demo_user_id" yaml:"demo_user_id"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return load("")
}

// InitializeConfigFromFile loads configuration from an explicit file path
// instead of the default search locations.
func InitializeConfigFromFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.sms-ledger")
		v.AddConfigPath(".sms-ledger")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if path != "" {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// Well-known variables are honored without the prefix.
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}
	if err := v.BindEnv("sink.dsn", EnvPrefix+"_SINK_DSN", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind DATABASE_URL: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_mb", 10)
	v.SetDefault("server.read_timeout_seconds", 30)

	v.SetDefault("ingest.default_bank", string(models.BankOther))
	v.SetDefault("ingest.workers", 4)
	v.SetDefault("ingest.timezone", "Asia/Kolkata")

	v.SetDefault("categories.file", "")
	v.SetDefault("categories.merchants_file", "")

	v.SetDefault("sink.driver", DriverMemory)
	v.SetDefault("sink.dsn", "")
	v.SetDefault("sink.redis_addr", "localhost:6379")
	v.SetDefault("sink.breaker.enabled", true)
	v.SetDefault("sink.breaker.max_failures", 5)
	v.SetDefault("sink.breaker.open_timeout_seconds", 30)
	v.SetDefault("sink.breaker.half_open_requests", 1)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout_seconds", 30)

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("demo_user_id", models.DemoUserID)
}

// Validate checks configuration values and returns a ValidationError for the
// first invalid one.
func Validate(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return &parsererror.ValidationError{Field: "log.level", Reason: fmt.Sprintf("unknown level %q", config.Log.Level)}
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return &parsererror.ValidationError{Field: "log.format", Reason: "must be 'text' or 'json'"}
	}
	if config.Server.MaxUploadMB < 1 || config.Server.MaxUploadMB > 100 {
		return &parsererror.ValidationError{Field: "server.max_upload_mb", Reason: fmt.Sprintf("must be between 1 and 100, got %d", config.Server.MaxUploadMB)}
	}
	if config.Ingest.Workers < 1 || config.Ingest.Workers > 64 {
		return &parsererror.ValidationError{Field: "ingest.workers", Reason: fmt.Sprintf("must be between 1 and 64, got %d", config.Ingest.Workers)}
	}
	if _, err := time.LoadLocation(config.Ingest.Timezone); err != nil {
		return &parsererror.ValidationError{Field: "ingest.timezone", Reason: err.Error()}
	}
	for i, p := range config.Ingest.Patterns {
		field := fmt.Sprintf("ingest.patterns[%d]", i)
		if p.Name == "" {
			return &parsererror.ValidationError{Field: field, Reason: "name is required"}
		}
		if p.Direction != string(models.Debit) && p.Direction != string(models.Credit) {
			return &parsererror.ValidationError{Field: field, Reason: "direction must be 'debit' or 'credit'"}
		}
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			return &parsererror.ValidationError{Field: field, Reason: err.Error()}
		}
		if re.SubexpIndex("amount") < 0 {
			return &parsererror.ValidationError{Field: field, Reason: "regex must have an 'amount' group"}
		}
	}

	switch config.Sink.Driver {
	case DriverMemory:
	case DriverPostgres:
		if config.Sink.DSN == "" {
			return &parsererror.ValidationError{Field: "sink.dsn", Reason: "DATABASE_URL required for the postgres sink"}
		}
	case DriverRedis:
		if config.Sink.RedisAddr == "" {
			return &parsererror.ValidationError{Field: "sink.redis_addr", Reason: "required for the redis sink"}
		}
	default:
		return &parsererror.ValidationError{Field: "sink.driver", Reason: fmt.Sprintf("unknown driver %q", config.Sink.Driver)}
	}
	if config.Sink.Breaker.Enabled && config.Sink.Breaker.MaxFailures < 1 {
		return &parsererror.ValidationError{Field: "sink.breaker.max_failures", Reason: "must be at least 1"}
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return &parsererror.ValidationError{Field: "ai.api_key", Reason: "GEMINI_API_KEY required when AI is enabled"}
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return &parsererror.ValidationError{Field: "ai.timeout_seconds", Reason: fmt.Sprintf("must be between 1 and 300, got %d", config.AI.TimeoutSeconds)}
		}
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return &parsererror.ValidationError{Field: "csv.delimiter", Reason: "must be a single character"}
	}

	if config.DemoUserID == "" {
		return &parsererror.ValidationError{Field: "demo_user_id", Reason: "must not be empty"}
	}
	return nil
}

// Location returns the configured ingest timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Ingest.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Delimiter returns the CSV export delimiter.
func (c *Config) Delimiter() rune {
	r := []rune(c.CSV.Delimiter)
	if len(r) == 0 {
		return ','
	}
	return r[0]
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}
