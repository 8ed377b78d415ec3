package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration with priority order:
// 1. Environment variables
// 2. Configuration file (config.yaml)
// 3. Default values
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/airsense/")
	v.AddConfigPath("./configs/")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("AIRSENSE")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars and defaults
	}

	overrideWithEnvVars(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("environment", "development")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")

	// Store defaults (empty URI selects the in-memory stores)
	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "airsense")
	v.SetDefault("mongo.timeout", 10000)

	// Cooldown cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.db", 0)

	// MQTT defaults
	v.SetDefault("mqtt.enabled", true)
	v.SetDefault("mqtt.broker_url", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "airsense-core")
	v.SetDefault("mqtt.topic", "airsense/sensors")
	v.SetDefault("mqtt.qos", 1)

	// Notification defaults
	v.SetDefault("notifications.email.enabled", false)
	v.SetDefault("notifications.email.suspended", false)
	v.SetDefault("notifications.email.smtp_host", "smtp.gmail.com")
	v.SetDefault("notifications.email.smtp_port", 587)
	v.SetDefault("notifications.sms.enabled", false)
	v.SetDefault("notifications.slack.enabled", false)
	v.SetDefault("notifications.discord.enabled", false)
	v.SetDefault("notifications.console.enabled", true)
	v.SetDefault("notifications.dashboard_url", "http://localhost:3000")
	v.SetDefault("notifications.cooldown", 2*time.Hour)
	v.SetDefault("notifications.send_timeout", 10*time.Second)
	v.SetDefault("notifications.queue_size", 256)
	v.SetDefault("notifications.workers", 4)
}

// overrideWithEnvVars handles the flat, documented environment surface
// explicitly so operators do not need to know the viper key layout.
func overrideWithEnvVars(v *viper.Viper) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("port", p)
		}
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		v.Set("environment", env)
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		v.Set("log_level", logLevel)
	}

	if uri := os.Getenv("MONGO_URI"); uri != "" {
		v.Set("mongo.uri", uri)
	}
	if db := os.Getenv("MONGO_DATABASE"); db != "" {
		v.Set("mongo.database", db)
	}

	if addr := os.Getenv("VALKEY_ADDR"); addr != "" {
		v.Set("cache.addr", addr)
		v.Set("cache.enabled", true)
	}

	if broker := os.Getenv("MQTT_BROKER_URL"); broker != "" {
		v.Set("mqtt.broker_url", broker)
	}
	if topic := os.Getenv("MQTT_TOPIC"); topic != "" {
		v.Set("mqtt.topic", topic)
	}

	// Email channel
	if enabled := os.Getenv("EMAIL_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			v.Set("notifications.email.enabled", b)
		}
	}
	if suspended := os.Getenv("EMAIL_SUSPENDED"); suspended != "" {
		if b, err := strconv.ParseBool(suspended); err == nil {
			v.Set("notifications.email.suspended", b)
		}
	}
	if host := os.Getenv("SMTP_HOST"); host != "" {
		v.Set("notifications.email.smtp_host", host)
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("notifications.email.smtp_port", p)
		}
	}
	if user := os.Getenv("SMTP_USERNAME"); user != "" {
		v.Set("notifications.email.username", user)
	}
	if pass := os.Getenv("SMTP_PASSWORD"); pass != "" {
		v.Set("notifications.email.password", pass)
	}
	if recipients := os.Getenv("ALERT_EMAIL_RECIPIENTS"); recipients != "" {
		v.Set("notifications.email.recipients", splitList(recipients))
	}

	// SMS channel (Twilio)
	if enabled := os.Getenv("SMS_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			v.Set("notifications.sms.enabled", b)
		}
	}
	if sid := os.Getenv("TWILIO_ACCOUNT_SID"); sid != "" {
		v.Set("notifications.sms.account_sid", sid)
	}
	if token := os.Getenv("TWILIO_AUTH_TOKEN"); token != "" {
		v.Set("notifications.sms.auth_token", token)
	}
	if from := os.Getenv("TWILIO_FROM_NUMBER"); from != "" {
		v.Set("notifications.sms.from_number", from)
	}
	if recipients := os.Getenv("SMS_RECIPIENTS"); recipients != "" {
		v.Set("notifications.sms.recipients", splitList(recipients))
	}

	// Webhook channels: supplying a URL enables the channel
	if webhook := os.Getenv("SLACK_WEBHOOK_URL"); webhook != "" {
		v.Set("notifications.slack.webhook_url", webhook)
		v.Set("notifications.slack.enabled", true)
	}
	if webhook := os.Getenv("DISCORD_WEBHOOK_URL"); webhook != "" {
		v.Set("notifications.discord.webhook_url", webhook)
		v.Set("notifications.discord.enabled", true)
	}

	if url := os.Getenv("DASHBOARD_URL"); url != "" {
		v.Set("notifications.dashboard_url", url)
	}
	if console := os.Getenv("CONSOLE_LOGGING_ENABLED"); console != "" {
		if b, err := strconv.ParseBool(console); err == nil {
			v.Set("notifications.console.enabled", b)
		}
	}
	if cooldown := os.Getenv("NOTIFICATION_COOLDOWN"); cooldown != "" {
		if d, err := time.ParseDuration(cooldown); err == nil {
			v.Set("notifications.cooldown", d)
		}
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
