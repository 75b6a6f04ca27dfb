package lockrelay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/NutMontree/kiosk/internal/auth"
	"github.com/NutMontree/kiosk/internal/room"
)

// commandTTL bounds how long a lock accepts a signed command.
const commandTTL = 30 * time.Second

// MQTTOptions configures the broker connection.
type MQTTOptions struct {
	BrokerURL   string
	ClientID    string
	TopicPrefix string
	// SigningKey, when set, adds an HS256 token to every payload.
	SigningKey string
}

// MQTT publishes lock commands to <prefix>/<room_id>/lock with QoS 1.
// The last command per room is retained so a reconnecting lock picks it up.
type MQTT struct {
	client mqtt.Client
	prefix string
	key    string
}

// payload is the JSON published to a lock.
type payload struct {
	room.LockCommand
	Token string `json:"token,omitempty"`
}

// NewMQTT connects to the broker, retrying with exponential backoff.
func NewMQTT(ctx context.Context, o MQTTOptions) (*MQTT, error) {
	clientID := o.ClientID
	if clientID == "" {
		clientID = "kiosk-relay"
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(o.BrokerURL)
	opts.SetClientID(fmt.Sprintf("%s-%s", clientID, uuid.NewString()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)
	opts.SetOrderMatters(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("mqtt: connection lost: %v", err)
	})

	client := mqtt.NewClient(opts)
	const maxRetries = 5
	var err error
	for i := 0; i < maxRetries; i++ {
		token := client.Connect()
		if token.WaitTimeout(5*time.Second) && token.Error() == nil {
			log.Printf("mqtt: connected to %s", o.BrokerURL)
			return &MQTT{client: client, prefix: o.TopicPrefix, key: o.SigningKey}, nil
		}
		err = token.Error()
		backoff := time.Duration(1<<uint(i)) * time.Second
		log.Printf("mqtt: connect attempt %d/%d failed: %v, retrying in %v", i+1, maxRetries, err, backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("mqtt: connect %s after %d attempts: %w", o.BrokerURL, maxRetries, err)
}

func (m *MQTT) Deliver(ctx context.Context, cmd room.LockCommand) error {
	body, err := m.encode(cmd)
	if err != nil {
		return err
	}
	token := m.client.Publish(Topic(m.prefix, cmd.RoomID), 1, true, body)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(3 * time.Second):
		return fmt.Errorf("mqtt: publish %s timed out", cmd.RoomID)
	}
}

func (m *MQTT) encode(cmd room.LockCommand) ([]byte, error) {
	p := payload{LockCommand: cmd}
	if m.key != "" {
		issued := cmd.IssuedAt
		if issued.IsZero() {
			issued = time.Now()
		}
		tok, err := auth.SignCommand(cmd.RoomID, cmd.Status, m.key, auth.DefaultIssuer, issued, commandTTL)
		if err != nil {
			return nil, fmt.Errorf("sign command: %w", err)
		}
		p.Token = tok
	}
	return json.Marshal(p)
}

// Close disconnects, allowing 250ms for in-flight work.
func (m *MQTT) Close() {
	if m.client != nil && m.client.IsConnected() {
		m.client.Disconnect(250)
	}
}

// Topic returns the lock topic of a room.
func Topic(prefix, roomID string) string {
	if prefix == "" {
		return roomID + "/lock"
	}
	return prefix + "/" + roomID + "/lock"
}
