// HubBridge - MQTT Bridge
// Copyright (c) 2025 - Open Source Project

package hubbridge

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig contains MQTT broker configuration
type MQTTConfig struct {
	BrokerURL      string `json:"broker_url"` // tcp://localhost:1883 or ssl://broker:8883
	Username       string `json:"username"`
	Password       string `json:"password"`
	ClientID       string `json:"client_id"`
	TLSSkipVerify  bool   `json:"tls_skip_verify"`
	QoS            byte   `json:"qos"`
	TopicNamespace string `json:"topic_namespace"`
}

// MQTTBridge connects the hub registry to the message bus: it publishes
// retained status values and feeds inbound command topics into the registry's
// router.
type MQTTBridge struct {
	config    MQTTConfig
	client    mqtt.Client
	registry  *Registry
	mutex     sync.RWMutex
	connected bool
}

// NewMQTTBridge creates a bridge for the given broker configuration.
func NewMQTTBridge(config MQTTConfig, registry *Registry) *MQTTBridge {
	return &MQTTBridge{
		config:   config,
		registry: registry,
	}
}

// Connect establishes the connection to the MQTT broker.
func (mb *MQTTBridge) Connect() error {
	brokerURL, err := url.Parse(mb.config.BrokerURL)
	if err != nil {
		return fmt.Errorf("invalid broker URL: %w", err)
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(mb.config.BrokerURL)
	opts.SetClientID(mb.config.ClientID)

	if mb.config.Username != "" {
		opts.SetUsername(mb.config.Username)
		opts.SetPassword(mb.config.Password)
	}

	if brokerURL.Scheme == "ssl" || brokerURL.Scheme == "mqtts" || mb.config.TLSSkipVerify {
		opts.SetTLSConfig(&tls.Config{
			InsecureSkipVerify: mb.config.TLSSkipVerify,
		})
	}

	opts.SetOnConnectHandler(mb.onConnect)
	opts.SetConnectionLostHandler(mb.onConnectionLost)
	opts.SetReconnectingHandler(mb.onReconnecting)

	// Bridge availability for late subscribers
	opts.SetWill(mb.statusTopic(), "offline", mb.config.QoS, true)

	mb.client = mqtt.NewClient(opts)
	if token := mb.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect: %w", token.Error())
	}

	mb.setConnected(true)
	log.Printf("MQTT bridge connected to %s", mb.config.BrokerURL)

	return nil
}

// onConnect publishes bridge availability and subscribes to the three inbound
// command topic shapes.
func (mb *MQTTBridge) onConnect(client mqtt.Client) {
	mb.setConnected(true)
	mb.Publish("bridge/status", "online", true)

	filters := []string{
		mb.config.TopicNamespace + "/hubs/+/activities/+/command",
		mb.config.TopicNamespace + "/hubs/+/devices/+/command",
		mb.config.TopicNamespace + "/hubs/+/command",
	}

	for _, filter := range filters {
		if token := client.Subscribe(filter, mb.config.QoS, mb.onCommand); token.Wait() && token.Error() != nil {
			log.Printf("Failed to subscribe to %s: %v", filter, token.Error())
		}
	}
}

func (mb *MQTTBridge) onConnectionLost(client mqtt.Client, err error) {
	mb.setConnected(false)
	log.Printf("MQTT connection lost: %v", err)
}

func (mb *MQTTBridge) onReconnecting(client mqtt.Client, opts *mqtt.ClientOptions) {
	log.Printf("MQTT bridge reconnecting...")
}

// onCommand strips the namespace and hands the topic to the command router.
func (mb *MQTTBridge) onCommand(client mqtt.Client, msg mqtt.Message) {
	suffix := strings.TrimPrefix(msg.Topic(), mb.config.TopicNamespace+"/")
	mb.registry.RouteCommand(suffix, string(msg.Payload()))
}

// Publish sends one status value under the configured namespace. It
// implements the Publisher interface consumed by the registry.
func (mb *MQTTBridge) Publish(topic, payload string, retained bool) {
	if !mb.IsConnected() {
		return
	}

	fullTopic := mb.config.TopicNamespace + "/" + topic
	token := mb.client.Publish(fullTopic, mb.config.QoS, retained, payload)
	if token.Wait() && token.Error() != nil {
		log.Printf("Failed to publish to %s: %v", fullTopic, token.Error())
	}
}

// Disconnect publishes the offline status and closes the connection.
func (mb *MQTTBridge) Disconnect() {
	if mb.client != nil && mb.IsConnected() {
		mb.client.Publish(mb.statusTopic(), mb.config.QoS, true, "offline")
		mb.client.Disconnect(250)
		mb.setConnected(false)
		log.Printf("MQTT bridge disconnected")
	}
}

// IsConnected returns current connection status
func (mb *MQTTBridge) IsConnected() bool {
	mb.mutex.RLock()
	defer mb.mutex.RUnlock()

	return mb.connected
}

func (mb *MQTTBridge) setConnected(connected bool) {
	mb.mutex.Lock()
	mb.connected = connected
	mb.mutex.Unlock()
}

func (mb *MQTTBridge) statusTopic() string {
	return mb.config.TopicNamespace + "/bridge/status"
}
