// HubBridge - HTTP API
// Copyright (c) 2025 - Open Source Project

package hubbridge

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// APIServer exposes the hub caches and the command dispatcher over HTTP.
type APIServer struct {
	registry *Registry
	stats    *BridgeStats
}

// NewAPIServer creates the HTTP facade for a registry.
func NewAPIServer(registry *Registry, stats *BridgeStats) *APIServer {
	return &APIServer{
		registry: registry,
		stats:    stats,
	}
}

// Routes builds the HTTP handler. Every hub endpoint requires at least one
// registered hub; only the ping and stats endpoints are reachable without.
func (a *APIServer) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /_ping", a.pingHandler)
	mux.HandleFunc("GET /stats", a.statsHandler)

	mux.HandleFunc("GET /hubs", a.requireHubs(a.hubsHandler))
	mux.HandleFunc("GET /hubs_for_index", a.requireHubs(a.hubsForIndexHandler))
	mux.HandleFunc("GET /hubs/{hub}/activities", a.requireHubs(a.activitiesHandler))
	mux.HandleFunc("GET /hubs/{hub}/activities/{activity}/commands", a.requireHubs(a.activityCommandsHandler))
	mux.HandleFunc("GET /hubs/{hub}/devices", a.requireHubs(a.devicesHandler))
	mux.HandleFunc("GET /hubs/{hub}/devices/{device}/commands", a.requireHubs(a.deviceCommandsHandler))
	mux.HandleFunc("GET /hubs/{hub}/status", a.requireHubs(a.statusHandler))
	mux.HandleFunc("GET /hubs/{hub}/commands", a.requireHubs(a.commandsHandler))
	mux.HandleFunc("GET /hubs/{hub}/history", a.requireHubs(a.historyHandler))

	mux.HandleFunc("POST /hubs/{hub}/commands/{command}", a.requireHubs(a.sendCommandHandler))
	mux.HandleFunc("PUT /hubs/{hub}/off", a.requireHubs(a.offHandler))
	mux.HandleFunc("POST /hubs/{hub}/activities/{activity}", a.requireHubs(a.startActivityHandler))
	mux.HandleFunc("POST /hubs/{hub}/devices/{device}/commands/{command}", a.requireHubs(a.sendDeviceCommandHandler))

	// DEPRECATED: use POST /hubs/{hub}/activities/{activity}
	mux.HandleFunc("POST /hubs/{hub}/start_activity", a.requireHubs(a.startActivityQueryHandler))

	return mux
}

// requireHubs rejects requests while no hub is registered.
func (a *APIServer) requireHubs(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.registry.HubCount() == 0 {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "No hubs available"})
			return
		}
		next(w, r)
	}
}

func (a *APIServer) pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("OK"))
}

func (a *APIServer) statsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.stats.Snapshot())
}

func (a *APIServer) hubsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"hubs": a.registry.Hubs()})
}

func (a *APIServer) activitiesHandler(w http.ResponseWriter, r *http.Request) {
	activities, ok := a.registry.Activities(r.PathValue("hub"))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]Activity{"activities": activities})
}

func (a *APIServer) activityCommandsHandler(w http.ResponseWriter, r *http.Request) {
	commands, ok := a.registry.ActivityCommands(r.PathValue("hub"), r.PathValue("activity"))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]Command{"commands": commands})
}

func (a *APIServer) devicesHandler(w http.ResponseWriter, r *http.Request) {
	devices, ok := a.registry.Devices(r.PathValue("hub"))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]Device{"devices": devices})
}

func (a *APIServer) deviceCommandsHandler(w http.ResponseWriter, r *http.Request) {
	commands, ok := a.registry.DeviceCommands(r.PathValue("hub"), r.PathValue("device"))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]Command{"commands": commands})
}

func (a *APIServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	state, ok := a.registry.State(r.PathValue("hub"))
	if !ok {
		notFound(w)
		return
	}
	if state == nil {
		// Registered but not yet refreshed
		state = &HubState{Off: true, ActivityCommands: []Command{}}
	}
	writeJSON(w, http.StatusOK, state)
}

func (a *APIServer) commandsHandler(w http.ResponseWriter, r *http.Request) {
	commands, ok := a.registry.CurrentCommands(r.PathValue("hub"))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]Command{"commands": commands})
}

func (a *APIServer) historyHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if value := r.URL.Query().Get("limit"); value != "" {
		limit = ParseRepeat(value)
	}
	transitions, err := a.registry.History(r.PathValue("hub"), limit)
	if err != nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]Transition{"transitions": transitions})
}

func (a *APIServer) sendCommandHandler(w http.ResponseWriter, r *http.Request) {
	repeat := ParseRepeat(r.URL.Query().Get("repeat"))
	err := a.registry.DispatchCurrentCommand(r.PathValue("hub"), r.PathValue("command"), repeat)
	if err != nil {
		notFound(w)
		return
	}
	okMessage(w)
}

func (a *APIServer) offHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.registry.PowerOff(r.PathValue("hub")); err != nil {
		notFound(w)
		return
	}
	okMessage(w)
}

func (a *APIServer) startActivityHandler(w http.ResponseWriter, r *http.Request) {
	err := a.registry.DispatchActivityStart(r.PathValue("hub"), r.PathValue("activity"))
	if err != nil {
		notFound(w)
		return
	}
	okMessage(w)
}

func (a *APIServer) startActivityQueryHandler(w http.ResponseWriter, r *http.Request) {
	err := a.registry.DispatchActivityStart(r.PathValue("hub"), r.URL.Query().Get("activity"))
	if err != nil {
		notFound(w)
		return
	}
	okMessage(w)
}

func (a *APIServer) sendDeviceCommandHandler(w http.ResponseWriter, r *http.Request) {
	repeat := ParseRepeat(r.URL.Query().Get("repeat"))
	err := a.registry.DispatchDeviceCommand(r.PathValue("hub"), r.PathValue("device"), r.PathValue("command"), repeat)
	if err != nil {
		notFound(w)
		return
	}
	okMessage(w)
}

// hubsForIndexHandler renders the endpoint overview used by the index page.
func (a *APIServer) hubsForIndexHandler(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder

	for _, hub := range a.registry.Hubs() {
		fmt.Fprintf(&b, `<h3 class="hub-name">%s</h3>`, strings.ReplaceAll(hub, "-", " "))
		fmt.Fprintf(&b, `<p><span class="method">GET</span> <a href="/hubs/%s/status">/hubs/%s/status</a></p>`, hub, hub)
		fmt.Fprintf(&b, `<p><span class="method">GET</span> <a href="/hubs/%s/activities">/hubs/%s/activities</a></p>`, hub, hub)
		fmt.Fprintf(&b, `<p><span class="method">GET</span> <a href="/hubs/%s/commands">/hubs/%s/commands</a></p>`, hub, hub)

		if activities, ok := a.registry.Activities(hub); ok {
			for _, activity := range activities {
				context := fmt.Sprintf("/hubs/%s/activities/%s/commands", hub, activity.Slug)
				fmt.Fprintf(&b, `<p><span class="method">GET</span> <a href="%s">%s</a></p>`, context, context)
			}
		}

		fmt.Fprintf(&b, `<p><span class="method">GET</span> <a href="/hubs/%s/devices">/hubs/%s/devices</a></p>`, hub, hub)

		if devices, ok := a.registry.Devices(hub); ok {
			for _, device := range devices {
				context := fmt.Sprintf("/hubs/%s/devices/%s/commands", hub, device.Slug)
				fmt.Fprintf(&b, `<p><span class="method">GET</span> <a href="%s">%s</a></p>`, context, context)
			}
		}
	}

	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(b.String()))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
}

func okMessage(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}
