package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"hubbridge"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	config := hubbridge.NewConfig()
	if err := config.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	log.Printf("Starting %s", hubbridge.PROJECT_NAME)
	log.Printf("  MQTT Broker: %s", config.MQTT.BrokerURL)
	log.Printf("  Topic Namespace: %s", config.MQTT.TopicNamespace)
	log.Printf("  Discovery Port: %d", config.DiscoveryPort)
	if config.EnableHTTPServer {
		log.Printf("  HTTP Port: %d", config.HTTPPort)
	}

	stats := hubbridge.NewBridgeStats()

	var store *hubbridge.TransitionStore
	if config.DatabasePath != "" {
		var err error
		store, err = hubbridge.NewTransitionStore(config.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to open transition store: %v", err)
		}
	}

	registry := hubbridge.NewRegistry(stats, store)

	bridge := hubbridge.NewMQTTBridge(config.MQTT, registry)
	registry.SetPublisher(bridge)
	if err := bridge.Connect(); err != nil {
		log.Fatalf("Failed to connect to MQTT broker: %v", err)
	}

	discover := hubbridge.NewDiscoverer(config.DiscoveryPort, config.DiscoveryInterval)
	if err := discover.Start(); err != nil {
		log.Fatalf("Failed to start hub discovery: %v", err)
	}
	go runDiscovery(discover, registry)

	if config.EnableHTTPServer {
		api := hubbridge.NewAPIServer(registry, stats)
		go func() {
			addr := fmt.Sprintf(":%d", config.HTTPPort)
			log.Printf("HTTP API listening on %s", addr)
			if err := http.ListenAndServe(addr, api.Routes()); err != nil {
				log.Fatalf("HTTP server failed: %v", err)
			}
		}()
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Println("Hub bridge running. Press Ctrl+C to stop.")
	<-sigChan

	log.Println("Shutting down...")
	discover.Stop()
	registry.Shutdown()
	bridge.Disconnect()
	if store != nil {
		store.Close()
	}
	log.Println("Shutdown complete")
}

// runDiscovery turns discovery events into hub session registrations.
func runDiscovery(discover *hubbridge.Discoverer, registry *hubbridge.Registry) {
	for event := range discover.Events() {
		switch event.Type {
		case hubbridge.HubOnline:
			if event.Info.IP == "" {
				log.Printf("Hub %s has no resolvable address, ignoring", event.Info.FriendlyName)
				continue
			}

			// Connecting can take a while on a busy network; do it off the
			// event loop so one slow hub cannot delay the others.
			go func(info hubbridge.HubInfo) {
				client, err := hubbridge.DialHub(context.Background(), info.IP)
				if err != nil {
					log.Printf("Failed to connect to hub %s at %s: %v", info.FriendlyName, info.IP, err)
					return
				}
				registry.Register(hubbridge.Slugify(info.FriendlyName), client)
			}(event.Info)

		case hubbridge.HubOffline:
			if event.Info.FriendlyName == "" {
				continue
			}
			registry.Unregister(hubbridge.Slugify(event.Info.FriendlyName))
		}
	}
}
