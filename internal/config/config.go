// Package config builds the immutable archivist configuration from
// defaults, an optional JSON file and the environment (including an optional
// .env file), in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/archivist/internal/common"
	"github.com/dmitrijs2005/archivist/internal/scoring"
	"github.com/joho/godotenv"
)

// Supported database drivers. They double as goose dialect names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Config holds runtime settings. It is built once by Load and treated as
// read-only afterwards.
type Config struct {
	Log      Log      `envPrefix:"LOG_"`
	Database Database `envPrefix:"DATABASE_"`
	Privacy  Privacy  `envPrefix:"PRIVACY_"`

	SentimentThreshold   float64  `env:"SENTIMENT_THRESHOLD"`
	ReactionThreshold    int      `env:"REACTION_THRESHOLD"`
	ReplyThreshold       int      `env:"REPLY_THRESHOLD"`
	Keywords             []string `env:"KEYWORDS" envSeparator:","`
	MinScore             float64  `env:"MIN_SCORE"`
	SentimentLexiconPath string   `env:"SENTIMENT_LEXICON_PATH"`

	DataRetentionDays int           `env:"DATA_RETENTION_DAYS"`
	AutoDeleteEnabled Toggle        `env:"AUTO_DELETE_ENABLED"`
	RetentionInterval time.Duration `env:"RETENTION_INTERVAL"`

	HTTPAddr     string `env:"HTTP_ADDR"`
	AdapterToken string `env:"ADAPTER_TOKEN"`

	BackupDir string `env:"BACKUP_DIR"`
	S3        S3     `envPrefix:"S3_"`

	Bot Bot
}

// Log configures the process logger.
type Log struct {
	Level  string `env:"LEVEL"`
	Format string `env:"FORMAT"`
}

// Database selects the table store. Path is used by sqlite3, DSN by pgx.
type Database struct {
	Driver string `env:"DRIVER"`
	Path   string `env:"PATH"`
	DSN    string `env:"DSN"`
}

// Privacy holds the identity hashing salt. When empty a generated salt is
// persisted in storage on first start.
type Privacy struct {
	Salt string `env:"SALT"`
}

// S3 configures the optional object storage backup sink.
type S3 struct {
	RootUser     string `env:"ROOT_USER"`
	RootPassword string `env:"ROOT_PASSWORD"`
	Bucket       string `env:"BUCKET"`
	Region       string `env:"REGION"`
	BaseEndpoint string `env:"BASE_ENDPOINT"`
}

// Enabled reports whether enough is configured to upload backups.
func (s S3) Enabled() bool {
	return s.Bucket != "" && s.BaseEndpoint != ""
}

// Bot carries the chat platform adapter credentials and presence. The
// archivist core never connects to the platform; the values are only
// reported by diagnostics.
type Bot struct {
	DiscordToken string `env:"DISCORD_TOKEN"`
	DevGuildID   string `env:"DEV_GUILD_ID"`
	ActivityName string `env:"BOT_ACTIVITY_NAME"`
	ActivityType string `env:"BOT_ACTIVITY_TYPE"`
	Status       string `env:"BOT_STATUS"`
}

// Toggle is a boolean that is on unless explicitly switched off with
// "false", "0" or "no" (any case).
type Toggle bool

func (t *Toggle) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "false", "0", "no":
		*t = false
	default:
		*t = true
	}
	return nil
}

func (t Toggle) MarshalText() ([]byte, error) {
	if t {
		return []byte("true"), nil
	}
	return []byte("false"), nil
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Log = Log{Level: "info", Format: "text"}
	c.Database = Database{Driver: DriverSQLite, Path: "highlights.db"}

	th := scoring.DefaultThresholds()
	c.SentimentThreshold = th.Sentiment
	c.ReactionThreshold = th.Reactions
	c.ReplyThreshold = th.Replies
	c.Keywords = th.Keywords
	c.MinScore = th.MinScore

	c.DataRetentionDays = 30
	c.AutoDeleteEnabled = true
	c.RetentionInterval = 24 * time.Hour

	c.HTTPAddr = ":8080"
	c.BackupDir = "backups"
	c.S3.Region = "us-east-1"
}

// DotEnvFile is read from the working directory when present. Variables
// already set in the process environment take precedence over it.
const DotEnvFile = ".env"

// Load builds a Config from defaults, the JSON file at jsonPath (skipped
// when empty), the DotEnvFile and the process environment.
func Load(jsonPath string) (*Config, error) {
	environ, err := environment(DotEnvFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInvalidConfig, err)
	}
	return load(jsonPath, environ)
}

// environment merges the variables of the dotenv file at path under the
// process environment. A missing file is not an error.
func environment(path string) (map[string]string, error) {
	environ, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		environ = map[string]string{}
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environ[k] = v
		}
	}
	return environ, nil
}

// load takes the environment as a map so tests do not touch the process
// environment.
func load(jsonPath string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if jsonPath != "" {
		if err := parseJSON(jsonPath, cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrorInvalidConfig, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInvalidConfig, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Keywords = scoring.NormalizeKeywords(c.Keywords)
	if len(c.Keywords) == 0 {
		c.Keywords = append([]string(nil), scoring.DefaultKeywords...)
	}
	if c.DataRetentionDays < 1 {
		c.DataRetentionDays = 1
	}
	c.Database.Driver = strings.ToLower(c.Database.Driver)
}

// Validate rejects settings the process cannot start with.
func (c *Config) Validate() error {
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("%w: MIN_SCORE %v outside [0, 1]", common.ErrorInvalidConfig, c.MinScore)
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: DATABASE_PATH is required for %s", common.ErrorInvalidConfig, DriverSQLite)
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("%w: DATABASE_DSN is required for %s", common.ErrorInvalidConfig, DriverPostgres)
		}
	default:
		return fmt.Errorf("%w: unknown DATABASE_DRIVER %q", common.ErrorInvalidConfig, c.Database.Driver)
	}
	if c.AutoDeleteEnabled && c.RetentionInterval <= 0 {
		return fmt.Errorf("%w: RETENTION_INTERVAL must be positive", common.ErrorInvalidConfig)
	}
	return nil
}

// Thresholds returns the highlight configuration as an immutable value.
func (c *Config) Thresholds() scoring.Thresholds {
	return scoring.Thresholds{
		Sentiment: c.SentimentThreshold,
		Reactions: c.ReactionThreshold,
		Replies:   c.ReplyThreshold,
		Keywords:  append([]string(nil), c.Keywords...),
		MinScore:  c.MinScore,
	}
}

// MissingAdapterSettings lists the settings a chat platform deployment
// needs that are empty.
func (c *Config) MissingAdapterSettings() []string {
	var missing []string
	if c.Bot.DiscordToken == "" {
		missing = append(missing, "DISCORD_TOKEN")
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			missing = append(missing, "DATABASE_DSN")
		}
	default:
		if c.Database.Path == "" {
			missing = append(missing, "DATABASE_PATH")
		}
	}
	return missing
}
