package config

import "time"

type Config struct {
	Environment string `mapstructure:"environment" yaml:"environment"`
	Port        int    `mapstructure:"port" yaml:"port"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`

	Mongo         MongoConfig         `mapstructure:"mongo" yaml:"mongo"`
	Cache         CacheConfig         `mapstructure:"cache" yaml:"cache"`
	MQTT          MQTTConfig          `mapstructure:"mqtt" yaml:"mqtt"`
	Notifications NotificationsConfig `mapstructure:"notifications" yaml:"notifications"`
}

// MongoConfig holds the alert/reading document store connection. An empty
// URI switches the server to the in-memory stores (dev and test mode).
type MongoConfig struct {
	URI      string `mapstructure:"uri" yaml:"uri"`
	Database string `mapstructure:"database" yaml:"database"`
	Timeout  int    `mapstructure:"timeout" yaml:"timeout"` // milliseconds
}

// CacheConfig points the cooldown tracker at a Valkey/Redis node for
// multi-instance deployments. Disabled means the in-process tracker.
type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

// MQTTConfig configures the sensor reading subscriber.
type MQTTConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	BrokerURL string `mapstructure:"broker_url" yaml:"broker_url"`
	ClientID  string `mapstructure:"client_id" yaml:"client_id"`
	Topic     string `mapstructure:"topic" yaml:"topic"`
	QoS       int    `mapstructure:"qos" yaml:"qos"`
}

// NotificationsConfig enumerates every dispatch channel plus the shared
// dispatcher knobs. Loaded once at startup, read-only afterwards.
type NotificationsConfig struct {
	Email   EmailConfig   `mapstructure:"email" yaml:"email"`
	SMS     SMSConfig     `mapstructure:"sms" yaml:"sms"`
	Slack   SlackConfig   `mapstructure:"slack" yaml:"slack"`
	Discord DiscordConfig `mapstructure:"discord" yaml:"discord"`
	Console ConsoleConfig `mapstructure:"console" yaml:"console"`

	DashboardURL string        `mapstructure:"dashboard_url" yaml:"dashboard_url"`
	Cooldown     time.Duration `mapstructure:"cooldown" yaml:"cooldown"`
	SendTimeout  time.Duration `mapstructure:"send_timeout" yaml:"send_timeout"`
	QueueSize    int           `mapstructure:"queue_size" yaml:"queue_size"`
	Workers      int           `mapstructure:"workers" yaml:"workers"`
}

type EmailConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Suspended is an independent operational kill switch on top of
	// Enabled: both gates must pass before an email goes out.
	Suspended  bool     `mapstructure:"suspended" yaml:"suspended"`
	SMTPHost   string   `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort   int      `mapstructure:"smtp_port" yaml:"smtp_port"`
	Username   string   `mapstructure:"username" yaml:"username"`
	Password   string   `mapstructure:"password" yaml:"password"`
	Recipients []string `mapstructure:"recipients" yaml:"recipients"`
}

type SMSConfig struct {
	Enabled    bool     `mapstructure:"enabled" yaml:"enabled"`
	AccountSID string   `mapstructure:"account_sid" yaml:"account_sid"`
	AuthToken  string   `mapstructure:"auth_token" yaml:"auth_token"`
	FromNumber string   `mapstructure:"from_number" yaml:"from_number"`
	Recipients []string `mapstructure:"recipients" yaml:"recipients"`
}

type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url"`
}

type DiscordConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url"`
}

type ConsoleConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}
