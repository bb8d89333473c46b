package plan

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// CommandHandler is called for every command received on the command topic.
// err is set when the payload could not be decoded.
type CommandHandler func(cmd Command, err error)

// MQTTClient manages the MQTT connection, the command subscription and the
// client used by the Publisher
type MQTTClient struct {
	client         mqtt.Client
	commandTopic   string
	commandHandler CommandHandler
	isConnected    bool
	mu             sync.RWMutex
}

// CommandTopic returns the topic plan edits are received on
func CommandTopic(prefix string) string {
	if prefix == "" {
		prefix = DefaultPublishPrefix
	}
	return fmt.Sprintf("%s/command", prefix)
}

// InitMQTT creates the MQTT client from env and config and connects in the
// background. If no broker is configured MQTT is disabled and this returns nil.
func InitMQTT(config *Config, handler CommandHandler) (*MQTTClient, error) {
	if config == nil {
		config = DefaultConfig()
	}

	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		broker = config.MQTT.Broker
	}
	if broker == "" {
		log.Println("MQTT disabled: MQTT_BROKER not set")
		return nil, nil
	}

	prefix := os.Getenv("MQTT_PUBLISH_PREFIX")
	if prefix == "" {
		prefix = config.MQTT.PublishPrefix
	}

	client := &MQTTClient{
		commandTopic:   CommandTopic(prefix),
		commandHandler: handler,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)

	clientID := os.Getenv("MQTT_CLIENT_ID")
	if clientID == "" {
		clientID = config.MQTT.ClientID
	}
	if clientID == "" {
		clientID = "roomplan"
	}
	opts.SetClientID(clientID)

	username := os.Getenv("MQTT_USERNAME")
	if username == "" {
		username = config.MQTT.Username
	}
	if username != "" {
		opts.SetUsername(username)
		password := os.Getenv("MQTT_PASSWORD")
		if password == "" {
			password = config.MQTT.Password
		}
		opts.SetPassword(password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(false)
	// edits must be applied in the order they were sent
	opts.SetOrderMatters(true)

	opts.SetOnConnectHandler(client.onConnect)
	opts.SetConnectionLostHandler(client.onConnectionLost)
	opts.SetReconnectingHandler(client.onReconnecting)

	client.client = mqtt.NewClient(opts)

	go client.connectWithRetry()

	return client, nil
}

// connectWithRetry attempts to connect to the MQTT broker with exponential backoff
func (c *MQTTClient) connectWithRetry() {
	retryDelay := 1 * time.Second
	maxRetryDelay := 60 * time.Second

	for {
		log.Println("Connecting to MQTT broker...")

		token := c.client.Connect()
		if token.WaitTimeout(10 * time.Second) {
			if token.Error() == nil {
				log.Println("Successfully connected to MQTT broker")
				c.setConnected(true)
				return
			}
			log.Printf("MQTT connection failed: %v", token.Error())
		} else {
			log.Println("MQTT connection timeout")
		}

		log.Printf("Retrying MQTT connection in %v...", retryDelay)
		time.Sleep(retryDelay)
		retryDelay *= 2
		if retryDelay > maxRetryDelay {
			retryDelay = maxRetryDelay
		}
	}
}

// onConnect subscribes to the command topic whenever the connection is (re)established
func (c *MQTTClient) onConnect(client mqtt.Client) {
	c.setConnected(true)
	if c.commandHandler == nil {
		return
	}

	log.Printf("Subscribing to %s for plan commands", c.commandTopic)
	token := client.Subscribe(c.commandTopic, 1, c.createCommandHandler())
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		log.Printf("Error subscribing to %s: %v", c.commandTopic, token.Error())
	}
}

// onConnectionLost is called when the MQTT connection is lost
// Auto-reconnect is enabled, so this is typically a transient event
func (c *MQTTClient) onConnectionLost(client mqtt.Client, err error) {
	log.Printf("MQTT connection interrupted (%v), auto-reconnect will retry", err)
	c.setConnected(false)
}

func (c *MQTTClient) onReconnecting(client mqtt.Client, opts *mqtt.ClientOptions) {
	log.Println("MQTT reconnecting...")
}

// createCommandHandler decodes command payloads and hands them to the handler
func (c *MQTTClient) createCommandHandler() mqtt.MessageHandler {
	return func(client mqtt.Client, msg mqtt.Message) {
		payload := msg.Payload()
		log.Printf("Received command (topic: %s, size: %d bytes)", msg.Topic(), len(payload))

		cmd, err := ParseCommand(payload)
		if err != nil {
			log.Printf("Error decoding command: %v", err)
		}
		c.commandHandler(cmd, err)
	}
}

// IsConnected returns true if the MQTT client is connected
func (c *MQTTClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

func (c *MQTTClient) setConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isConnected = connected
}

// Disconnect gracefully closes the MQTT connection
func (c *MQTTClient) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		log.Println("Disconnecting from MQTT broker...")
		c.client.Disconnect(250)
		c.setConnected(false)
	}
}

// GetClient returns the underlying MQTT client for publishing
func (c *MQTTClient) GetClient() mqtt.Client {
	return c.client
}

// newMQTTClientWithMock creates an MQTTClient with a provided mqtt.Client
// This is used for testing with mock clients
func newMQTTClientWithMock(client mqtt.Client, prefix string, handler CommandHandler) *MQTTClient {
	return &MQTTClient{
		client:         client,
		commandTopic:   CommandTopic(prefix),
		commandHandler: handler,
	}
}
