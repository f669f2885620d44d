// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig         `mapstructure:"app"`
	API          APIConfig         `mapstructure:"api"`
	Bridge       BridgeConfig      `mapstructure:"bridge"`
	Ledger       LedgerConfig      `mapstructure:"ledger"`
	Session      SessionConfig     `mapstructure:"session"`
	Database     DatabaseConfig    `mapstructure:"database"`
	Email        EmailConfig       `mapstructure:"email"`
	Integrations IntegrationConfig `mapstructure:"integrations"`
	Audit        AuditConfig       `mapstructure:"audit"`
	Server       ServerConfig      `mapstructure:"server"`
	Logging      LoggingConfig     `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig points at the remote to-do REST API.
type APIConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
	UserAgent string `mapstructure:"user_agent"`
}

// BridgeConfig drives the notification-to-email poll loop.
type BridgeConfig struct {
	PollInterval    int    `mapstructure:"poll_interval"` // milliseconds
	FetchTimeout    int    `mapstructure:"fetch_timeout"` // milliseconds
	SendTimeout     int    `mapstructure:"send_timeout"`  // milliseconds
	Timezone        string `mapstructure:"timezone"`
	RestoreSessions bool   `mapstructure:"restore_sessions"`
}

type LedgerConfig struct {
	Backend   string `mapstructure:"backend"` // memory | redis | postgres
	KeyPrefix string `mapstructure:"key_prefix"`
}

type SessionConfig struct {
	Backend   string `mapstructure:"backend"` // memory | redis
	KeyPrefix string `mapstructure:"key_prefix"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // single URL shorthand
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// EmailConfig holds settings for reminder email delivery.
type EmailConfig struct {
	Provider        string `mapstructure:"provider"` // ses | smtp | sns
	FromEmail       string `mapstructure:"from_email"`
	FromName        string `mapstructure:"from_name"`
	SubjectTemplate string `mapstructure:"subject_template"`
	BodyTemplate    string `mapstructure:"body_template"`

	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		UseTLS   bool   `mapstructure:"use_tls"`
	} `mapstructure:"smtp"`

	SNS struct {
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

// IntegrationConfig holds settings for cloud integrations.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Index   string `mapstructure:"index"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// UsesRedis reports whether any store is backed by Redis.
func (c *Config) UsesRedis() bool {
	return c.Ledger.Backend == "redis" || c.Session.Backend == "redis"
}

// UsesPostgres reports whether the ledger is backed by PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.Ledger.Backend == "postgres"
}
