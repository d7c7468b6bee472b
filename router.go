// HubBridge - Inbound Command Routing
// Copyright (c) 2025 - Open Source Project

package hubbridge

import "strings"

// RouteCommand interprets an inbound command topic, with the namespace
// already stripped, and dispatches it. Three addressing shapes are supported:
//
//	hubs/<hub>/activities/<activity>/command  payload "on" or "off"
//	hubs/<hub>/devices/<device>/command       payload "<command>[:<repeat>]"
//	hubs/<hub>/command                        payload "<command>[:<repeat>]"
//
// The bus has no response path, so unresolvable references are dropped
// silently.
func (r *Registry) RouteCommand(topic, payload string) {
	r.stats.IncrementInboundCommands()

	parts := strings.Split(topic, "/")
	switch {
	case len(parts) == 5 && parts[0] == "hubs" && parts[2] == "activities" && parts[4] == "command":
		r.routeActivityCommand(parts[1], parts[3], payload)
	case len(parts) == 5 && parts[0] == "hubs" && parts[2] == "devices" && parts[4] == "command":
		r.routeDeviceCommand(parts[1], parts[3], payload)
	case len(parts) == 3 && parts[0] == "hubs" && parts[2] == "command":
		r.routeCurrentActivityCommand(parts[1], payload)
	}
}

func (r *Registry) routeActivityCommand(hub, activitySlug, payload string) {
	switch payload {
	case "on":
		_ = r.DispatchActivityStart(hub, activitySlug)
	case "off":
		if _, ok := r.ActivityBySlug(hub, activitySlug); ok {
			_ = r.PowerOff(hub)
		}
	}
}

func (r *Registry) routeDeviceCommand(hub, deviceSlug, payload string) {
	commandSlug, repeat := ParseCommandPayload(payload)
	_ = r.DispatchDeviceCommand(hub, deviceSlug, commandSlug, repeat)
}

func (r *Registry) routeCurrentActivityCommand(hub, payload string) {
	commandSlug, repeat := ParseCommandPayload(payload)
	_ = r.DispatchCurrentCommand(hub, commandSlug, repeat)
}
