// Package automation optionally relays default-endpoint, mute, and volume
// changes to an MQTT broker, for home-automation integrations (scenes,
// physical volume knobs, presence-triggered muting) that want to observe
// or react to mixer state.
package automation

import (
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/wiremix/mixerd/internal/metrics"
)

// Client wraps a paho MQTT connection configured for outbound publish
// only — the relay never subscribes, since mixerd is not meant to accept
// unauthenticated remote control over MQTT.
type Client struct {
	conn      mqtt.Client
	connected atomic.Bool
	log       zerolog.Logger
}

// Options configures the broker connection.
type Options struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
	Log       zerolog.Logger
}

// Connect dials the broker and returns a ready-to-publish Client.
func Connect(opts Options) (*Client, error) {
	c := &Client{log: opts.Log}

	clientOpts := mqtt.NewClientOptions().
		AddBroker(opts.BrokerURL).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)

	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		clientOpts.SetPassword(opts.Password)
	}

	c.conn = mqtt.NewClient(clientOpts)
	token := c.conn.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) onConnect(mqtt.Client) {
	c.connected.Store(true)
	c.log.Info().Msg("automation relay connected")
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	c.connected.Store(false)
	c.log.Warn().Err(err).Msg("automation relay connection lost, will auto-reconnect")
}

// Publish sends payload to topic at QoS 0, dropping it silently if
// currently disconnected rather than blocking the caller — relay messages
// are best-effort state mirrors, not commands that must be delivered.
func (c *Client) Publish(topic string, payload []byte) {
	if !c.connected.Load() {
		return
	}
	c.conn.Publish(topic, 0, false, payload)
	metrics.AutomationMessagesTotal.Inc()
}

func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

func (c *Client) Close() {
	c.log.Info().Msg("disconnecting automation relay")
	c.conn.Disconnect(250)
}
