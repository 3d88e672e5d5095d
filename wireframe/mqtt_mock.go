package wireframe

import (
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MockToken implements mqtt.Token for testing
type MockToken struct {
	err error
}

func NewMockToken(err error) *MockToken {
	return &MockToken{err: err}
}

func (t *MockToken) Wait() bool {
	return true
}

func (t *MockToken) WaitTimeout(duration time.Duration) bool {
	return true
}

func (t *MockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (t *MockToken) Error() error {
	return t.err
}

// MockClient implements mqtt.Client for testing
type MockClient struct {
	connected         bool
	connectError      error
	publishError      error
	publishedMessages []MockMessage
	mu                sync.RWMutex
}

// MockMessage records one published message.
type MockMessage struct {
	Topic   string
	Payload []byte
	QoS     byte
	Retain  bool
}

// NewMockClient creates a new mock MQTT client
func NewMockClient() *MockClient {
	return &MockClient{}
}

// SetConnected sets the connection state
func (c *MockClient) SetConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = connected
}

// SetConnectError sets the error returned on Connect
func (c *MockClient) SetConnectError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectError = err
}

// SetPublishError sets the error returned on Publish
func (c *MockClient) SetPublishError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishError = err
}

// GetPublishedMessages returns all published messages
func (c *MockClient) GetPublishedMessages() []MockMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]MockMessage, len(c.publishedMessages))
	copy(result, c.publishedMessages)
	return result
}

// IsConnected returns the connection status
func (c *MockClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// IsConnectionOpen returns whether the connection is open
func (c *MockClient) IsConnectionOpen() bool {
	return c.IsConnected()
}

// Connect simulates connecting to the broker
func (c *MockClient) Connect() mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connectError == nil {
		c.connected = true
	}
	return NewMockToken(c.connectError)
}

// Disconnect simulates disconnecting from the broker
func (c *MockClient) Disconnect(quiesce uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
}

// Publish simulates publishing a message
func (c *MockClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return NewMockToken(mqtt.ErrNotConnected)
	}
	if c.publishError != nil {
		return NewMockToken(c.publishError)
	}

	var payloadBytes []byte
	switch v := payload.(type) {
	case []byte:
		payloadBytes = v
	case string:
		payloadBytes = []byte(v)
	}

	c.publishedMessages = append(c.publishedMessages, MockMessage{
		Topic:   topic,
		Payload: payloadBytes,
		QoS:     qos,
		Retain:  retained,
	})
	return NewMockToken(nil)
}

// Subscribe simulates subscribing to a topic
func (c *MockClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	return NewMockToken(nil)
}

// SubscribeMultiple simulates subscribing to multiple topics
func (c *MockClient) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	return NewMockToken(nil)
}

// Unsubscribe simulates unsubscribing from a topic
func (c *MockClient) Unsubscribe(topics ...string) mqtt.Token {
	return NewMockToken(nil)
}

// AddRoute adds a message handler for a topic
func (c *MockClient) AddRoute(topic string, callback mqtt.MessageHandler) {
}

// OptionsReader returns the client options (not implemented for mock)
func (c *MockClient) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}
