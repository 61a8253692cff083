// Package config defines the top-level configuration for the auction server
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by AUCTION_* environment variables.
type Config struct {
	Auction  AuctionConfig  `toml:"auction"`
	Roster   RosterConfig   `toml:"roster"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Server   ServerConfig   `toml:"server"`
	Session  SessionConfig  `toml:"session"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// AuctionConfig holds the fixed rules of the auction run.
type AuctionConfig struct {
	InitialBudget int64    `toml:"initial_budget"`
	BidIncrement  int64    `toml:"bid_increment"`
	Teams         []string `toml:"teams"`
	// Resolution selects the sale-closing variant: "manual" requires the
	// admin to finalize, "auto" closes the floor once every non-leading
	// team has declined.
	Resolution string `toml:"resolution"`
	// BidRateLimit is the max raise/decline commands per team per second.
	// Zero disables the limiter.
	BidRateLimit int `toml:"bid_rate_limit"`
}

// RosterConfig holds the player list source.
type RosterConfig struct {
	Path string `toml:"path"`
}

// PostgresConfig holds PostgreSQL connection parameters for the result log.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for result archives.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// APIRateLimit is the max requests per second per client IP. Zero
	// disables the limiter.
	APIRateLimit int `toml:"api_rate_limit"`
}

// SessionConfig holds login/session parameters. Team logins use the team name
// as password; the admin uses AdminPassword (or its bcrypt hash when set).
type SessionConfig struct {
	TTL                 duration `toml:"ttl"`
	AdminUser           string   `toml:"admin_user"`
	AdminPassword       string   `toml:"admin_password"`
	AdminPasswordBcrypt string   `toml:"admin_password_bcrypt"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "12h", "30m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with the values of the original IPL
// auction: eight teams, a one-crore budget, and a 5,000 increment.
func Defaults() Config {
	return Config{
		Auction: AuctionConfig{
			InitialBudget: 10_000_000,
			BidIncrement:  5_000,
			Teams:         []string{"CSK", "MI", "RCB", "KKR", "SRH", "DC", "RR", "PBKS"},
			Resolution:    "manual",
			BidRateLimit:  5,
		},
		Roster: RosterConfig{
			Path: "data/players.csv",
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "auction",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "auction-archives",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Port:         8000,
			CORSOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
			APIRateLimit: 50,
		},
		Session: SessionConfig{
			TTL:       duration{12 * time.Hour},
			AdminUser: "admin",
		},
		Notify: NotifyConfig{
			Events: []string{"sold", "unsold", "auction_complete"},
		},
		Mode:     "server",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"server": true,
	"export": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validResolutions enumerates the accepted values for Auction.Resolution.
var validResolutions = map[string]bool{
	"manual": true,
	"auto":   true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, export)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Auction rules
	if c.Auction.InitialBudget <= 0 {
		errs = append(errs, "auction: initial_budget must be > 0")
	}
	if c.Auction.BidIncrement <= 0 {
		errs = append(errs, "auction: bid_increment must be > 0")
	}
	if len(c.Auction.Teams) < 2 {
		errs = append(errs, "auction: at least two teams are required")
	}
	seen := make(map[string]bool, len(c.Auction.Teams))
	for _, team := range c.Auction.Teams {
		name := strings.TrimSpace(team)
		if name == "" {
			errs = append(errs, "auction: empty team name")
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Sprintf("auction: duplicate team %q", name))
		}
		seen[name] = true
	}
	if !validResolutions[strings.ToLower(c.Auction.Resolution)] {
		errs = append(errs, fmt.Sprintf("auction: unknown resolution %q (valid: manual, auto)", c.Auction.Resolution))
	}
	if c.Auction.BidRateLimit < 0 {
		errs = append(errs, "auction: bid_rate_limit must be >= 0")
	}

	// Roster
	if strings.TrimSpace(c.Roster.Path) == "" {
		errs = append(errs, "roster: path must not be empty")
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when enabled")
		}
	}
	if c.Mode == "export" && !c.S3.Enabled {
		errs = append(errs, "s3: must be enabled for export mode")
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.APIRateLimit < 0 {
		errs = append(errs, "server: api_rate_limit must be >= 0")
	}

	// Session
	if c.Session.TTL.Duration <= 0 {
		errs = append(errs, "session: ttl must be > 0")
	}
	if c.Session.AdminUser == "" {
		errs = append(errs, "session: admin_user must not be empty")
	}
	if c.Session.AdminPassword == "" && c.Session.AdminPasswordBcrypt == "" {
		errs = append(errs, "session: admin_password or admin_password_bcrypt must be set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
