// HubBridge - Configuration
// Copyright (c) 2025 - Open Source Project

package hubbridge

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the hub bridge
type Config struct {
	// Message bus
	MQTT MQTTConfig `json:"mqtt"`

	// HTTP API
	EnableHTTPServer bool `json:"enable_http_server"`
	HTTPPort         int  `json:"http_port"`

	// Hub discovery
	DiscoveryPort     int           `json:"discovery_port"`
	DiscoveryInterval time.Duration `json:"discovery_interval"`

	// Transition persistence (empty path disables it)
	DatabasePath string `json:"database_path"`
}

// NewConfig creates a new configuration from environment variables
func NewConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			BrokerURL:      getEnv("MQTT_HOST", "tcp://localhost:1883"),
			Username:       getEnv("MQTT_USERNAME", ""),
			Password:       getEnv("MQTT_PASSWORD", ""),
			ClientID:       getEnv("MQTT_CLIENT_ID", "hub-bridge"),
			TLSSkipVerify:  parseBool("MQTT_TLS_SKIP_VERIFY", false),
			QoS:            byte(parseInt("MQTT_QOS", 0)),
			TopicNamespace: getEnv("TOPIC_NAMESPACE", DEFAULT_TOPIC_NAMESPACE),
		},

		EnableHTTPServer: parseBool("ENABLE_HTTP_SERVER", true),
		HTTPPort:         parseInt("PORT", DEFAULT_HTTP_PORT),

		DiscoveryPort:     parseInt("DISCOVERY_PORT", DEFAULT_DISCOVERY_PORT),
		DiscoveryInterval: parseDuration("DISCOVERY_INTERVAL", 30*time.Second),

		DatabasePath: getEnv("DATABASE_PATH", ""),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.MQTT.BrokerURL == "" {
		return fmt.Errorf("MQTT_HOST is required")
	}

	if c.MQTT.TopicNamespace == "" || strings.Contains(c.MQTT.TopicNamespace, "/") {
		return fmt.Errorf("TOPIC_NAMESPACE must be a single topic segment")
	}

	if c.MQTT.QoS > 2 {
		return fmt.Errorf("MQTT_QOS must be 0, 1 or 2")
	}

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("PORT must be a valid TCP port")
	}

	if c.DiscoveryPort < 1 || c.DiscoveryPort > 65535 {
		return fmt.Errorf("DISCOVERY_PORT must be a valid UDP port")
	}

	if c.DiscoveryInterval < time.Second {
		return fmt.Errorf("DISCOVERY_INTERVAL must be at least 1 second")
	}

	return nil
}

// Helper functions for parsing environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
