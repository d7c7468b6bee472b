// HubBridge - Hub Data Types
// Copyright (c) 2025 - Open Source Project

package hubbridge

// Activity is a named macro-state of a hub (e.g. "Watch TV") bundling device
// configuration. Identity is the numeric id; ActivityOff is reserved.
type Activity struct {
	ID           int64  `json:"id"`
	Slug         string `json:"slug"`
	Label        string `json:"label"`
	IsAVActivity bool   `json:"isAVActivity"`

	// Commands maps command slug to the activity's commands. Command actions
	// are hub-internal and resolved inside the bridge, so the map is kept out
	// of every serialized listing.
	Commands map[string]Command `json:"-"`
}

// Device is a controllable appliance known to a hub, with its own command set.
type Device struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Label string `json:"label"`

	Commands map[string]Command `json:"-"`
}

// Command is a named hub action invocable as a press/release pair. Action is
// the raw hub-internal identifier, delimiter-escaped at index time, and never
// exposed through a listing endpoint.
type Command struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Label string `json:"label"`

	Action string `json:"-"`
}

// HubState is the per-hub current-activity snapshot. It is recomputed
// wholesale on every state refresh, never mutated in place.
type HubState struct {
	Off              bool      `json:"off"`
	CurrentActivity  *Activity `json:"current_activity"`
	ActivityCommands []Command `json:"activity_commands"`
}

// ControlGroup is the nested command grouping a hub reports for an activity
// or device.
type ControlGroup struct {
	Name     string        `json:"name"`
	Function []HubFunction `json:"function"`
}

// HubFunction is a single invocable function inside a control group.
type HubFunction struct {
	Name   string `json:"name"`
	Label  string `json:"label"`
	Action string `json:"action"`
}

// HubActivity is the raw activity record returned by a hub.
type HubActivity struct {
	ID           int64          `json:"id"`
	Label        string         `json:"label"`
	IsAVActivity bool           `json:"isAVActivity"`
	ControlGroup []ControlGroup `json:"controlGroup"`
}

// HubDevice is the raw device record returned by a hub.
type HubDevice struct {
	ID           int64          `json:"id"`
	Label        string         `json:"label"`
	ControlGroup []ControlGroup `json:"controlGroup"`
}

// HubInfo identifies a hub found (or lost) by network discovery.
type HubInfo struct {
	FriendlyName string `json:"friendly_name"`
	IP           string `json:"ip"`
}
