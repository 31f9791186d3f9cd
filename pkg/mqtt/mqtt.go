// Package mqtt publishes received IR signals and subscribes to send requests.
package mqtt

import (
	"errors"
	"time"

	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/womat/debug"
)

var ErrNotConnected = errors.New("mqtt broker not connected")

const (
	// quiesce is the specified number of milliseconds to wait for existing work to be completed.
	quiesce = 250
	// connectTimeout limits the wait for the broker.
	connectTimeout = 10 * time.Second
)

// Handler contains the handler of the mqtt broker.
type Handler struct {
	handler mqttlib.Client
	// C is the channel to service the mqtt message
	// sending a message to channel C will send the message.
	C chan Message
}

// Message contains the properties of the mqtt message.
type Message struct {
	Topic    string
	Payload  []byte
	Qos      byte
	Retained bool
}

// New generate a new mqtt broker client.
func New() *Handler {
	return &Handler{
		C: make(chan Message),
	}
}

// Connect connects to the mqtt broker.
// If no broker is defined, no mqtt message are send.
func (m *Handler) Connect(broker, clientID string) error {
	if broker == "" {
		return nil
	}

	opts := mqttlib.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true)
	m.handler = mqttlib.NewClient(opts)

	t := m.handler.Connect()
	<-t.Done()
	return t.Error()
}

// Disconnect will end the connection to the broker.
func (m *Handler) Disconnect() error {
	if m.handler == nil {
		return nil
	}

	m.handler.Disconnect(quiesce)
	return nil
}

// Subscribe calls handler with every message received on topic.
// Handlers are called one after the other.
func (m *Handler) Subscribe(topic string, handler func(Message)) error {
	if m.handler == nil {
		return ErrNotConnected
	}

	t := m.handler.Subscribe(topic, 1, func(_ mqttlib.Client, msg mqttlib.Message) {
		debug.DebugLog.Printf("received %v bytes from topic %v", len(msg.Payload()), msg.Topic())
		handler(Message{
			Topic:    msg.Topic(),
			Payload:  msg.Payload(),
			Qos:      msg.Qos(),
			Retained: msg.Retained(),
		})
	})
	<-t.Done()
	return t.Error()
}

// Service listen to a message on the channel C and send the message to mqtt.
// If no handler or topic is defined, the message will be ignored.
func (m *Handler) Service() {
	for msg := range m.C {
		if m.handler == nil || msg.Topic == "" {
			continue
		}
		m.publish(msg)
	}
}

// publish sends msg without waiting for the broker. Messages are dropped
// while the client reconnects.
func (m *Handler) publish(msg Message) {
	if !m.handler.IsConnectionOpen() {
		debug.ErrorLog.Printf("mqtt broker isn't connected, dropping message to topic %v", msg.Topic)
		return
	}

	debug.DebugLog.Printf("publishing %v bytes to topic %v", len(msg.Payload), msg.Topic)
	t := m.handler.Publish(msg.Topic, msg.Qos, msg.Retained, msg.Payload)

	go func() {
		if !t.WaitTimeout(connectTimeout) {
			debug.ErrorLog.Printf("publishing topic %v: timeout", msg.Topic)
			return
		}
		if err := t.Error(); err != nil {
			debug.ErrorLog.Printf("publishing topic %v: %v", msg.Topic, err)
		}
	}()
}
