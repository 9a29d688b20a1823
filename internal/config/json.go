package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/archivist/internal/timex"
)

// JsonConfig is the on-disk shape of the optional configuration file.
// Durations use timex.Duration so "24h" and nanosecond integers both work.
// Keys missing from the file keep the value they had before the overlay.
type JsonConfig struct {
	LogLevel             string         `json:"log_level"`
	LogFormat            string         `json:"log_format"`
	DatabaseDriver       string         `json:"database_driver"`
	DatabasePath         string         `json:"database_path"`
	DatabaseDSN          string         `json:"database_dsn"`
	PrivacySalt          string         `json:"privacy_salt"`
	SentimentThreshold   float64        `json:"sentiment_threshold"`
	ReactionThreshold    int            `json:"reaction_threshold"`
	ReplyThreshold       int            `json:"reply_threshold"`
	Keywords             []string       `json:"keywords"`
	MinScore             float64        `json:"min_score"`
	SentimentLexiconPath string         `json:"sentiment_lexicon_path"`
	DataRetentionDays    int            `json:"data_retention_days"`
	AutoDeleteEnabled    bool           `json:"auto_delete_enabled"`
	RetentionInterval    timex.Duration `json:"retention_interval"`
	HTTPAddr             string         `json:"http_addr"`
	AdapterToken         string         `json:"adapter_token"`
	BackupDir            string         `json:"backup_dir"`
	S3RootUser           string         `json:"s3_root_user"`
	S3RootPassword       string         `json:"s3_root_password"`
	S3Bucket             string         `json:"s3_bucket"`
	S3Region             string         `json:"s3_region"`
	S3BaseEndpoint       string         `json:"s3_base_endpoint"`
	DiscordToken         string         `json:"discord_token"`
	DevGuildID           string         `json:"dev_guild_id"`
	BotActivityName      string         `json:"bot_activity_name"`
	BotActivityType      string         `json:"bot_activity_type"`
	BotStatus            string         `json:"bot_status"`
}

func toJSON(c *Config) *JsonConfig {
	return &JsonConfig{
		LogLevel:             c.Log.Level,
		LogFormat:            c.Log.Format,
		DatabaseDriver:       c.Database.Driver,
		DatabasePath:         c.Database.Path,
		DatabaseDSN:          c.Database.DSN,
		PrivacySalt:          c.Privacy.Salt,
		SentimentThreshold:   c.SentimentThreshold,
		ReactionThreshold:    c.ReactionThreshold,
		ReplyThreshold:       c.ReplyThreshold,
		Keywords:             c.Keywords,
		MinScore:             c.MinScore,
		SentimentLexiconPath: c.SentimentLexiconPath,
		DataRetentionDays:    c.DataRetentionDays,
		AutoDeleteEnabled:    bool(c.AutoDeleteEnabled),
		RetentionInterval:    timex.Duration{Duration: c.RetentionInterval},
		HTTPAddr:             c.HTTPAddr,
		AdapterToken:         c.AdapterToken,
		BackupDir:            c.BackupDir,
		S3RootUser:           c.S3.RootUser,
		S3RootPassword:       c.S3.RootPassword,
		S3Bucket:             c.S3.Bucket,
		S3Region:             c.S3.Region,
		S3BaseEndpoint:       c.S3.BaseEndpoint,
		DiscordToken:         c.Bot.DiscordToken,
		DevGuildID:           c.Bot.DevGuildID,
		BotActivityName:      c.Bot.ActivityName,
		BotActivityType:      c.Bot.ActivityType,
		BotStatus:            c.Bot.Status,
	}
}

func (j *JsonConfig) apply(c *Config) {
	c.Log = Log{Level: j.LogLevel, Format: j.LogFormat}
	c.Database = Database{Driver: j.DatabaseDriver, Path: j.DatabasePath, DSN: j.DatabaseDSN}
	c.Privacy.Salt = j.PrivacySalt
	c.SentimentThreshold = j.SentimentThreshold
	c.ReactionThreshold = j.ReactionThreshold
	c.ReplyThreshold = j.ReplyThreshold
	c.Keywords = j.Keywords
	c.MinScore = j.MinScore
	c.SentimentLexiconPath = j.SentimentLexiconPath
	c.DataRetentionDays = j.DataRetentionDays
	c.AutoDeleteEnabled = Toggle(j.AutoDeleteEnabled)
	c.RetentionInterval = j.RetentionInterval.Duration
	c.HTTPAddr = j.HTTPAddr
	c.AdapterToken = j.AdapterToken
	c.BackupDir = j.BackupDir
	c.S3 = S3{
		RootUser:     j.S3RootUser,
		RootPassword: j.S3RootPassword,
		Bucket:       j.S3Bucket,
		Region:       j.S3Region,
		BaseEndpoint: j.S3BaseEndpoint,
	}
	c.Bot = Bot{
		DiscordToken: j.DiscordToken,
		DevGuildID:   j.DevGuildID,
		ActivityName: j.BotActivityName,
		ActivityType: j.BotActivityType,
		Status:       j.BotStatus,
	}
}

// parseJSON overlays the file at path onto config. The current values are
// decoded into first, so absent keys are left alone.
func parseJSON(path string, config *Config) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	j := toJSON(config)
	if err := json.Unmarshal(file, j); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	j.apply(config)
	return nil
}
