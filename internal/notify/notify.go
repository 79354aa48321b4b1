// Package notify publishes due-check events.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/carlog/internal/config"
	"github.com/ukydev/carlog/internal/dates"
	"github.com/ukydev/carlog/internal/schedule"
)

// Event announces that a vehicle check is due soon or overdue.
type Event struct {
	ID           uuid.UUID        `json:"id"`
	VehicleID    string           `json:"vehicle_id"`
	UserID       string           `json:"user_id"`
	Plate        string           `json:"plate"`
	CheckID      schedule.CheckID `json:"check_id"`
	Label        string           `json:"label"`
	NextDue      dates.Date       `json:"next_due"`
	DaysUntilDue int              `json:"days_until_due"`
	Overdue      bool             `json:"overdue"`
	CreatedAt    time.Time        `json:"created_at"`
}

// NewEvent builds the event for one check status.
func NewEvent(vehicleID, userID, plate string, s schedule.CheckStatus) Event {
	return Event{
		ID:           uuid.New(),
		VehicleID:    vehicleID,
		UserID:       userID,
		Plate:        plate,
		CheckID:      s.CheckID,
		Label:        s.Label,
		NextDue:      s.NextDue,
		DaysUntilDue: s.DaysUntilDue,
		Overdue:      s.Overdue(),
		CreatedAt:    time.Now().UTC(),
	}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Topic is the MQTT topic of an event under prefix.
func Topic(prefix string, e Event) string {
	return fmt.Sprintf("%s/vehicles/%s/checks/%s", strings.TrimSuffix(prefix, "/"), e.VehicleID, e.CheckID)
}

// MQTTPublisher publishes events as JSON at QoS 1.
type MQTTPublisher struct {
	client  mqtt.Client
	prefix  string
	timeout time.Duration
}

// NewMQTTPublisher wraps a connected client.
func NewMQTTPublisher(client mqtt.Client, prefix string) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: prefix, timeout: 10 * time.Second}
}

// ConnectMQTT dials the configured broker.
func ConnectMQTT(cfg config.MQTTConfig, logger log.FieldLogger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(10 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.WithError(err).Warn("MQTT connection lost")
		}).
		SetOnConnectHandler(func(mqtt.Client) {
			logger.WithField("broker", cfg.Broker).Info("MQTT connected")
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if err := connect(client, cfg.Broker, 15*time.Second); err != nil {
		return nil, err
	}
	return client, nil
}

// connect waits up to wait for the first connection. On failure the client
// is disconnected so its retry loop stops.
func connect(client mqtt.Client, broker string, wait time.Duration) error {
	token := client.Connect()
	if !token.WaitTimeout(wait) {
		client.Disconnect(0)
		return fmt.Errorf("mqtt connect to %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	return nil
}

// Publish sends e and waits for the broker acknowledgement.
func (p *MQTTPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	token := p.client.Publish(Topic(p.prefix, e), 1, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.timeout):
		return fmt.Errorf("publish %s: timed out", e.ID)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", e.ID, err)
	}
	return nil
}

// Close disconnects the client, waiting up to 250ms for in-flight work.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// LogPublisher writes events to the log. It is used when no broker is
// configured.
type LogPublisher struct {
	Logger log.FieldLogger
}

func (p LogPublisher) Publish(_ context.Context, e Event) error {
	entry := p.Logger.WithFields(log.Fields{
		"event_id":   e.ID.String(),
		"vehicle_id": e.VehicleID,
		"plate":      e.Plate,
		"check":      e.CheckID,
		"next_due":   e.NextDue.Canonical(),
		"days":       e.DaysUntilDue,
	})
	if e.Overdue {
		entry.Warn("Check overdue")
	} else {
		entry.Info("Check due soon")
	}
	return nil
}
