package config

import "fmt"

func validateConfig(config *Config) error {
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", config.Port)
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal"}
	if !contains(validLogLevels, config.LogLevel) {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	validEnvironments := []string{"development", "staging", "production", "test"}
	if !contains(validEnvironments, config.Environment) {
		return fmt.Errorf("invalid environment: %s", config.Environment)
	}

	if config.Notifications.Cooldown <= 0 {
		return fmt.Errorf("notification cooldown must be positive")
	}
	if config.Notifications.SendTimeout <= 0 {
		return fmt.Errorf("notification send timeout must be positive")
	}
	if config.Notifications.QueueSize < 1 {
		return fmt.Errorf("notification queue size must be at least 1")
	}
	if config.Notifications.Workers < 1 {
		return fmt.Errorf("notification worker count must be at least 1")
	}

	if config.Notifications.Email.Enabled {
		if config.Notifications.Email.SMTPHost == "" || config.Notifications.Email.SMTPPort == 0 {
			return fmt.Errorf("email channel enabled but SMTP host/port missing")
		}
	}
	if config.Notifications.SMS.Enabled {
		if config.Notifications.SMS.AccountSID == "" || config.Notifications.SMS.AuthToken == "" {
			return fmt.Errorf("sms channel enabled but Twilio credentials missing")
		}
	}

	if config.MQTT.Enabled && config.MQTT.BrokerURL == "" {
		return fmt.Errorf("mqtt enabled but broker URL missing")
	}
	if config.MQTT.QoS < 0 || config.MQTT.QoS > 2 {
		return fmt.Errorf("invalid mqtt qos: %d", config.MQTT.QoS)
	}

	if config.Cache.Enabled && config.Cache.Addr == "" {
		return fmt.Errorf("cache enabled but no node address configured")
	}

	return nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
