// Package ingest subscribes to the sensor reading topic and feeds parsed
// samples into the alert pipeline.
package ingest

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/airsenselabs/airsense-core/internal/config"
	"github.com/airsenselabs/airsense-core/internal/metrics"
	"github.com/airsenselabs/airsense-core/internal/models"
	"github.com/airsenselabs/airsense-core/internal/services"
	"github.com/airsenselabs/airsense-core/pkg/logger"
)

const sourceMQTT = "mqtt"

// Consumer bridges the MQTT broker to the pipeline. It resubscribes on
// every (re)connect so a broker restart does not silently stop ingestion.
type Consumer struct {
	cfg      config.MQTTConfig
	client   mqtt.Client
	readings services.ReadingStore
	pipeline *services.AlertPipeline
	logger   logger.Logger
}

func NewConsumer(
	cfg config.MQTTConfig,
	readings services.ReadingStore,
	pipeline *services.AlertPipeline,
	log logger.Logger,
) *Consumer {
	c := &Consumer{
		cfg:      cfg,
		readings: readings,
		pipeline: pipeline,
		logger:   log,
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID + "-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(30 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn("mqtt connection lost", "error", err)
		}).
		SetOnConnectHandler(func(client mqtt.Client) {
			log.Info("mqtt connected, subscribing", "topic", cfg.Topic, "qos", cfg.QoS)
			tok := client.Subscribe(cfg.Topic, byte(cfg.QoS), c.handleMessage)
			if tok.Wait() && tok.Error() != nil {
				log.Error("mqtt subscribe failed", "topic", cfg.Topic, "error", tok.Error())
			}
		})

	c.client = mqtt.NewClient(opts)
	return c
}

func (c *Consumer) Start() error {
	tok := c.client.Connect()
	if tok.Wait() && tok.Error() != nil {
		return fmt.Errorf("mqtt connect %s: %w", c.cfg.BrokerURL, tok.Error())
	}
	return nil
}

func (c *Consumer) Stop() {
	c.client.Disconnect(250)
}

func (c *Consumer) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	reading, err := ParseReading(msg.Payload())
	if err != nil {
		metrics.ReadingsRejected.WithLabelValues(sourceMQTT, "parse").Inc()
		c.logger.Warn("discarding unparseable reading", "topic", msg.Topic(), "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.readings.Insert(ctx, reading); err != nil {
		c.logger.Error("reading persist failed", "sensor", reading.SensorID, "error", err)
	}

	metrics.ReadingsProcessed.WithLabelValues(sourceMQTT).Inc()
	c.pipeline.ProcessReading(ctx, reading)
}

// ParseReading decodes a sensor payload. Timestamps arrive in several
// shapes depending on firmware version; anything unparseable falls back
// to receipt time rather than dropping the sample.
func ParseReading(payload []byte) (*models.Reading, error) {
	var reading models.Reading
	if err := unmarshalTolerant(payload, &reading); err != nil {
		return nil, err
	}
	if reading.SensorID == "" {
		return nil, fmt.Errorf("missing sensorId")
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}
	return &reading, nil
}
