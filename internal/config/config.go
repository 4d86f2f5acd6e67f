// internal/config/config.go
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Security     SecurityConfig     `mapstructure:"security"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Transport    TransportConfig    `mapstructure:"transport"`
	Label        LabelConfig        `mapstructure:"label"`
	StatusStream StatusStreamConfig `mapstructure:"status_stream"`
	Printers     []PrinterConfig    `mapstructure:"printers"`
	App          AppConfig          `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host" validate:"required"`
	Port         string        `mapstructure:"port" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TLS          TLSConfig     `mapstructure:"tls"`
}

// TLSConfig represents TLS configuration
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// DatabaseConfig represents the print job history database
type DatabaseConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	DBName       string        `mapstructure:"dbname"`
	SSLMode      string        `mapstructure:"sslmode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
	HistorySize  int           `mapstructure:"history_size"`
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"required"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// TransportConfig represents printer transport settings
type TransportConfig struct {
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
	StatusAttempts int           `mapstructure:"status_attempts"`
	SNMP           SNMPConfig    `mapstructure:"snmp"`
}

// SNMPConfig represents SNMP status polling settings
type SNMPConfig struct {
	Community string        `mapstructure:"community"`
	Version   string        `mapstructure:"version"`
	Port      uint16        `mapstructure:"port"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Retries   int           `mapstructure:"retries"`
}

// LabelConfig represents label rendering settings
type LabelConfig struct {
	DefaultFont string   `mapstructure:"default_font"`
	FontDirs    []string `mapstructure:"font_dirs"`
}

// StatusStreamConfig represents the websocket status stream
type StatusStreamConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// PrinterConfig maps a printer name to its URI
type PrinterConfig struct {
	Name string `mapstructure:"name"`
	URI  string `mapstructure:"uri"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required"`
	Debug       bool   `mapstructure:"debug"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/label-service")

	return load(v, true)
}

// LoadFile loads configuration from an explicit file path
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	return load(v, false)
}

func load(v *viper.Viper, optional bool) (*Config, error) {
	// Environment variable support
	v.SetEnvPrefix("LABEL_SERVICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || !optional {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.tls.enabled", false)

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "label_service")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_lifetime", "5m")
	v.SetDefault("database.history_size", 200)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// Transport defaults
	v.SetDefault("transport.connect_timeout", "10s")
	v.SetDefault("transport.write_timeout", "30s")
	v.SetDefault("transport.http_timeout", "30s")
	v.SetDefault("transport.status_attempts", 3)
	v.SetDefault("transport.snmp.community", "public")
	v.SetDefault("transport.snmp.version", "2c")
	v.SetDefault("transport.snmp.port", 161)
	v.SetDefault("transport.snmp.timeout", "5s")
	v.SetDefault("transport.snmp.retries", 1)

	// Label defaults
	v.SetDefault("label.default_font", "mono")

	// Status stream defaults
	v.SetDefault("status_stream.poll_interval", "30s")

	// App defaults
	v.SetDefault("app.name", "label-service")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if config.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if config.Transport.StatusAttempts < 1 {
		return fmt.Errorf("transport.status_attempts must be at least 1")
	}

	// Validate environment
	validEnvs := []string{"development", "staging", "production", "test"}
	isValidEnv := false
	for _, env := range validEnvs {
		if config.App.Environment == env {
			isValidEnv = true
			break
		}
	}
	if !isValidEnv {
		return fmt.Errorf("app.environment must be one of: %v", validEnvs)
	}

	// Validate logging level
	validLevels := []string{"debug", "info", "warn", "error", "fatal"}
	isValidLevel := false
	for _, level := range validLevels {
		if config.Logging.Level == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	// Validate printers
	seen := make(map[string]bool, len(config.Printers))
	for i, printer := range config.Printers {
		if printer.Name == "" {
			return fmt.Errorf("printers[%d].name is required", i)
		}
		if seen[printer.Name] {
			return fmt.Errorf("duplicate printer name: %s", printer.Name)
		}
		seen[printer.Name] = true

		if _, err := url.Parse(printer.URI); err != nil || printer.URI == "" {
			return fmt.Errorf("printers[%d].uri is invalid: %q", i, printer.URI)
		}
	}

	return nil
}

// PrinterNames returns the configured printer names in file order
func (c *Config) PrinterNames() []string {
	names := make([]string, 0, len(c.Printers))
	for _, printer := range c.Printers {
		names = append(names, printer.Name)
	}
	return names
}

// GetDatabaseURL returns the postgres:// URL used by the connection pool and
// the migrator
func (c *Config) GetDatabaseURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Database.User, c.Database.Password),
		Host:   net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:   "/" + c.Database.DBName,
	}
	if c.Database.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.Database.SSLMode}}.Encode()
	}
	return u.String()
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsDevelopment checks if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsDebugEnabled checks if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.IsDevelopment()
}
