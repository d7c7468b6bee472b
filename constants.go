// HubBridge - Protocol Constants and Configuration
// Copyright (c) 2025 - Open Source Project

package hubbridge

import "time"

// Bridge Constants
const (
	DEFAULT_TOPIC_NAMESPACE = "hub-bridge"
	DEFAULT_HTTP_PORT       = 8282
	DEFAULT_DISCOVERY_PORT  = 61991
	PROJECT_NAME            = "HubBridge"
)

// Refresh intervals for the three per-hub cache loops. State is polled far
// more often than the slow-moving activity and device lists.
const (
	ActivityUpdateInterval = 1 * time.Minute
	StateUpdateInterval    = 5 * time.Second
	DeviceUpdateInterval   = 1 * time.Minute
)

// Button-press emulation timestamps sent with hold actions.
const (
	PressTimestamp   = 0
	ReleaseTimestamp = 55
)

// ActivityOff is the reserved activity id hubs report when everything is off.
const ActivityOff int64 = -1
