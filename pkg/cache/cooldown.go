// Package cache holds the Valkey-backed cooldown tracker used when
// multiple instances share notification duty.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/airsenselabs/airsense-core/pkg/logger"
)

// ValkeyCooldownTracker stores one key per (sensor, alert-type) pair with
// the cooldown window as TTL, so expiry is handled server-side and shared
// across instances. Lookups fail open: if Valkey is unreachable we would
// rather send a duplicate notification than miss a critical one.
type ValkeyCooldownTracker struct {
	client *redis.Client
	window time.Duration
	logger logger.Logger
}

func NewValkeyCooldownTracker(addr, password string, db int, window time.Duration, log logger.Logger) (*ValkeyCooldownTracker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("valkey ping %s: %w", addr, err)
	}

	log.Info("connected to valkey", "addr", addr, "db", db)
	return &ValkeyCooldownTracker{client: client, window: window, logger: log}, nil
}

func cooldownKey(sensorID, alertType string) string {
	return "cooldown:" + sensorID + ":" + alertType
}

func (t *ValkeyCooldownTracker) ShouldSend(ctx context.Context, sensorID, alertType string) bool {
	n, err := t.client.Exists(ctx, cooldownKey(sensorID, alertType)).Result()
	if err != nil {
		t.logger.Warn("cooldown lookup failed, allowing send", "error", err)
		return true
	}
	return n == 0
}

func (t *ValkeyCooldownTracker) RecordSent(ctx context.Context, sensorID, alertType string) {
	err := t.client.Set(ctx, cooldownKey(sensorID, alertType), time.Now().UTC().Format(time.RFC3339), t.window).Err()
	if err != nil {
		t.logger.Warn("cooldown record failed", "error", err)
	}
}

func (t *ValkeyCooldownTracker) Close() error {
	return t.client.Close()
}
