package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Focus    FocusConfig    `mapstructure:"focus"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	Timezone    string `mapstructure:"timezone"`
	WeekStart   string `mapstructure:"week_start"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	Host           string        `mapstructure:"host"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// StorageConfig selects the key-value backend behind the store
type StorageConfig struct {
	Driver    string `mapstructure:"driver"`
	KeyPrefix string `mapstructure:"key_prefix"`
	DataDir   string `mapstructure:"data_dir"`
	Watch     bool   `mapstructure:"watch"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	SQLitePath      string        `mapstructure:"sqlite_path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// DispatchConfig holds the credential shared with the dispatch host
type DispatchConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	Issuer   string        `mapstructure:"issuer"`
	Audience string        `mapstructure:"audience"`
}

// FocusConfig holds focus timer configuration
type FocusConfig struct {
	TickInterval    time.Duration `mapstructure:"tick_interval"`
	DefaultDuration int           `mapstructure:"default_duration"`
	TimerRetention  time.Duration `mapstructure:"timer_retention"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from various sources
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "productivity-brain")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.timezone", "Local")
	v.SetDefault("app.week_start", "sunday")

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")

	// Storage defaults
	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.key_prefix", "productivity-brain")
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.watch", true)

	// Database defaults
	v.SetDefault("database.sqlite_path", "./data/brain.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "productivity_brain")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "30s")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "productivity-brain:changes")

	// Dispatch defaults
	v.SetDefault("dispatch.api_key", "")
	v.SetDefault("dispatch.token_ttl", "24h")
	v.SetDefault("dispatch.issuer", "productivity-brain")
	v.SetDefault("dispatch.audience", "dispatch-host")

	// Focus defaults
	v.SetDefault("focus.tick_interval", "1s")
	v.SetDefault("focus.default_duration", 25)
	v.SetDefault("focus.timer_retention", "1h")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.filename", "")

	// Security defaults
	v.SetDefault("security.cors_allowed_origins", "*")
	v.SetDefault("security.rate_limit_requests", 100)
	v.SetDefault("security.rate_limit_window", "1m")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "APP_NAME")
	v.BindEnv("app.version", "APP_VERSION")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")
	v.BindEnv("app.debug", "APP_DEBUG")
	v.BindEnv("app.timezone", "APP_TIMEZONE")
	v.BindEnv("app.week_start", "APP_WEEK_START")

	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	v.BindEnv("server.idle_timeout", "SERVER_IDLE_TIMEOUT")
	v.BindEnv("server.request_timeout", "SERVER_REQUEST_TIMEOUT")

	// Storage
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.key_prefix", "STORAGE_KEY_PREFIX")
	v.BindEnv("storage.data_dir", "STORAGE_DATA_DIR")
	v.BindEnv("storage.watch", "STORAGE_WATCH")

	// Database
	v.BindEnv("database.sqlite_path", "DB_SQLITE_PATH")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.ssl_mode", "DB_SSL_MODE")
	v.BindEnv("database.max_open_conns", "DB_MAX_OPEN_CONNS")
	v.BindEnv("database.max_idle_conns", "DB_MAX_IDLE_CONNS")
	v.BindEnv("database.conn_max_lifetime", "DB_CONN_MAX_LIFETIME")
	v.BindEnv("database.conn_max_idle_time", "DB_CONN_MAX_IDLE_TIME")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("redis.channel", "REDIS_CHANNEL")

	// Dispatch
	v.BindEnv("dispatch.api_key", "DISPATCH_API_KEY")
	v.BindEnv("dispatch.token_ttl", "DISPATCH_TOKEN_TTL")
	v.BindEnv("dispatch.issuer", "DISPATCH_ISSUER")
	v.BindEnv("dispatch.audience", "DISPATCH_AUDIENCE")

	// Focus
	v.BindEnv("focus.tick_interval", "FOCUS_TICK_INTERVAL")
	v.BindEnv("focus.default_duration", "FOCUS_DEFAULT_DURATION")
	v.BindEnv("focus.timer_retention", "FOCUS_TIMER_RETENTION")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.format", "LOG_FORMAT")
	v.BindEnv("logger.output", "LOG_OUTPUT")
	v.BindEnv("logger.filename", "LOG_FILENAME")

	// Security
	v.BindEnv("security.cors_allowed_origins", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("security.rate_limit_requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("security.rate_limit_window", "RATE_LIMIT_WINDOW")

	// Metrics
	v.BindEnv("metrics.enabled", "ENABLE_METRICS")
}

func validateConfig(cfg *Config) error {
	switch cfg.Storage.Driver {
	case DriverMemory, DriverFile, DriverSQLite, DriverPostgres, DriverRedis:
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Storage.KeyPrefix == "" {
		return fmt.Errorf("storage key prefix is required")
	}

	if cfg.Storage.Driver == DriverFile && cfg.Storage.DataDir == "" {
		return fmt.Errorf("storage data dir is required for the file driver")
	}

	if cfg.Storage.Driver == DriverPostgres && (cfg.Database.Host == "" || cfg.Database.Name == "") {
		return fmt.Errorf("database host and name are required for the postgres driver")
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	if _, err := cfg.App.Location(); err != nil {
		return err
	}

	if _, err := cfg.App.FirstWeekday(); err != nil {
		return err
	}

	if cfg.Focus.TickInterval <= 0 {
		return fmt.Errorf("focus tick interval must be positive")
	}

	return nil
}

// GetDSN returns the postgres connection string
func (cfg *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// GetAddr returns the Redis address
func (cfg *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}

// IsProduction returns true if the environment is production
func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "production"
}

// Location resolves the configured timezone
func (cfg *AppConfig) Location() (*time.Location, error) {
	if cfg.Timezone == "" || strings.EqualFold(cfg.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return loc, nil
}

// FirstWeekday resolves the configured first day of the week
func (cfg *AppConfig) FirstWeekday() (time.Weekday, error) {
	switch strings.ToLower(cfg.WeekStart) {
	case "", "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	}
	return time.Sunday, fmt.Errorf("invalid week start %q, expected sunday or monday", cfg.WeekStart)
}

// AuthEnabled reports whether dispatch host requests must carry a token
func (cfg *DispatchConfig) AuthEnabled() bool {
	return cfg.APIKey != ""
}
