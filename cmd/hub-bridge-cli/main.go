package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// This is a simple CLI tool to poke a running hub bridge over its HTTP API.

func main() {
	baseURL := os.Getenv("BRIDGE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8282"
	}

	fmt.Println("Hub Bridge CLI Tool")
	fmt.Println("===================")
	fmt.Printf("Bridge: %s\n", baseURL)
	fmt.Println("Commands:")
	fmt.Println("  hubs - List registered hubs")
	fmt.Println("  activities <hub> - List a hub's activities")
	fmt.Println("  devices <hub> - List a hub's devices")
	fmt.Println("  status <hub> - Show a hub's current state")
	fmt.Println("  start <hub> <activity> - Start an activity")
	fmt.Println("  off <hub> - Power a hub off")
	fmt.Println("  send <hub> <command> [repeat] - Send a command to the current activity")
	fmt.Println("  quit - Exit")
	fmt.Println()

	client := &http.Client{Timeout: 10 * time.Second}
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		command := parts[0]

		switch command {
		case "hubs":
			get(client, baseURL+"/hubs")

		case "activities":
			if len(parts) < 2 {
				fmt.Println("Usage: activities <hub>")
				continue
			}
			get(client, fmt.Sprintf("%s/hubs/%s/activities", baseURL, parts[1]))

		case "devices":
			if len(parts) < 2 {
				fmt.Println("Usage: devices <hub>")
				continue
			}
			get(client, fmt.Sprintf("%s/hubs/%s/devices", baseURL, parts[1]))

		case "status":
			if len(parts) < 2 {
				fmt.Println("Usage: status <hub>")
				continue
			}
			get(client, fmt.Sprintf("%s/hubs/%s/status", baseURL, parts[1]))

		case "start":
			if len(parts) < 3 {
				fmt.Println("Usage: start <hub> <activity>")
				continue
			}
			do(client, http.MethodPost, fmt.Sprintf("%s/hubs/%s/activities/%s", baseURL, parts[1], parts[2]))

		case "off":
			if len(parts) < 2 {
				fmt.Println("Usage: off <hub>")
				continue
			}
			do(client, http.MethodPut, fmt.Sprintf("%s/hubs/%s/off", baseURL, parts[1]))

		case "send":
			if len(parts) < 3 {
				fmt.Println("Usage: send <hub> <command> [repeat]")
				continue
			}
			target := fmt.Sprintf("%s/hubs/%s/commands/%s", baseURL, parts[1], parts[2])
			if len(parts) > 3 {
				target += "?repeat=" + url.QueryEscape(parts[3])
			}
			do(client, http.MethodPost, target)

		case "quit", "exit":
			return

		default:
			fmt.Printf("Unknown command: %s\n", command)
		}
	}
}

// get prints the JSON body of a GET request.
func get(client *http.Client, target string) {
	resp, err := client.Get(target)
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		return
	}
	defer resp.Body.Close()
	printBody(resp)
}

// do issues a bodyless request and prints the response.
func do(client *http.Client, method, target string) {
	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		return
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		return
	}
	defer resp.Body.Close()
	printBody(resp)
}

func printBody(resp *http.Response) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Failed to read response: %v\n", err)
		return
	}

	var pretty map[string]interface{}
	if json.Unmarshal(body, &pretty) == nil {
		formatted, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(formatted))
		return
	}

	fmt.Println(strings.TrimSpace(string(body)))
}
