// Package mqtttest provides an in-memory MQTT client for tests.
package mqtttest

import (
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type Message struct {
	Topic    string
	Retained bool
	Payload  []byte
}

// Client records publishes and subscriptions. Methods it does not override
// panic through the nil embedded interface.
type Client struct {
	mqtt.Client

	mutex     sync.Mutex
	published []Message
	handlers  map[string]mqtt.MessageHandler
	err       error
}

func NewClient() *Client {
	return &Client{
		handlers: make(map[string]mqtt.MessageHandler),
	}
}

// Fail makes every following publish and subscribe return err.
func (c *Client) Fail(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.err = err
}

func (c *Client) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.err != nil {
		return &token{err: c.err}
	}

	var data []byte
	switch p := payload.(type) {
	case []byte:
		data = p
	case string:
		data = []byte(p)
	default:
		data = []byte(fmt.Sprint(p))
	}

	c.published = append(c.published, Message{Topic: topic, Retained: retained, Payload: data})

	return &token{}
}

func (c *Client) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.err != nil {
		return &token{err: c.err}
	}

	c.handlers[topic] = callback

	return &token{}
}

// Deliver hands payload to the handler subscribed to topic. It reports false
// when nothing is subscribed.
func (c *Client) Deliver(topic string, payload string) bool {
	c.mutex.Lock()
	handler, ok := c.handlers[topic]
	c.mutex.Unlock()

	if !ok {
		return false
	}

	handler(c, &message{topic: topic, payload: []byte(payload)})
	return true
}

func (c *Client) Published() []Message {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return append([]Message(nil), c.published...)
}

// Last returns the most recent message published to topic.
func (c *Client) Last(topic string) (Message, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for i := len(c.published) - 1; i >= 0; i-- {
		if c.published[i].Topic == topic {
			return c.published[i], true
		}
	}
	return Message{}, false
}

// Count returns how many messages were published to topic.
func (c *Client) Count(topic string) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var n int
	for _, m := range c.published {
		if m.Topic == topic {
			n++
		}
	}
	return n
}

func (c *Client) Subscribed() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var topics []string
	for topic := range c.handlers {
		topics = append(topics, topic)
	}
	return topics
}

type token struct {
	err error
}

func (t *token) Wait() bool                     { return true }
func (t *token) WaitTimeout(time.Duration) bool { return true }
func (t *token) Error() error                   { return t.err }

func (t *token) Done() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

type message struct {
	mqtt.Message

	topic   string
	payload []byte
}

func (m *message) Topic() string   { return m.topic }
func (m *message) Payload() []byte { return m.payload }
