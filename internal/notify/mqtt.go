package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher is the subset of mqtt.Client used to publish notifications.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTSender publishes notifications as JSON to a broker topic, where the
// mobile push bridge picks them up.
type MQTTSender struct {
	Client  Publisher
	Topic   string
	QoS     byte
	Timeout time.Duration
}

// ConnectMQTT connects to broker with clientID.
func ConnectMQTT(broker, clientID string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(timeout).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out after %s", broker, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	return client, nil
}

// Send publishes n and waits for the broker acknowledgement.
func (s *MQTTSender) Send(ctx context.Context, n Notification) error {
	if s.Client == nil {
		return fmt.Errorf("mqtt client is nil")
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	token := s.Client.Publish(s.Topic, s.QoS, false, payload)
	select {
	case <-token.Done():
	case <-time.After(timeout):
		return fmt.Errorf("mqtt publish to %s: timed out after %s", s.Topic, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", s.Topic, err)
	}
	return nil
}
