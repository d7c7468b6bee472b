// HubBridge - Error Definitions
// Copyright (c) 2025 - Open Source Project

package hubbridge

import "errors"

// Common error types
var (
	ErrHubNotFound      = errors.New("hub not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrDeviceNotFound   = errors.New("device not found")
	ErrCommandNotFound  = errors.New("command not found")
)
