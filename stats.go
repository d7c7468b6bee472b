// HubBridge - Bridge Statistics
// Copyright (c) 2025 - Open Source Project

package hubbridge

import (
	"sync"
	"time"
)

// BridgeStats tracks bridge activity counters
type BridgeStats struct {
	mutex     sync.Mutex
	startTime time.Time

	refreshes       uint64
	refreshFailures uint64
	transitions     uint64
	publishes       uint64
	dispatches      uint64
	inboundCommands uint64
}

// StatsSnapshot is a point-in-time copy of the bridge counters.
type StatsSnapshot struct {
	UptimeSeconds   int64  `json:"uptime_seconds"`
	Refreshes       uint64 `json:"refreshes"`
	RefreshFailures uint64 `json:"refresh_failures"`
	Transitions     uint64 `json:"transitions"`
	Publishes       uint64 `json:"publishes"`
	Dispatches      uint64 `json:"dispatches"`
	InboundCommands uint64 `json:"inbound_commands"`
}

// NewBridgeStats creates a statistics tracker.
func NewBridgeStats() *BridgeStats {
	return &BridgeStats{startTime: time.Now()}
}

// IncrementRefreshes counts a completed cache refresh.
func (bs *BridgeStats) IncrementRefreshes() {
	bs.mutex.Lock()
	bs.refreshes++
	bs.mutex.Unlock()
}

// IncrementRefreshFailures counts a failed cache refresh.
func (bs *BridgeStats) IncrementRefreshFailures() {
	bs.mutex.Lock()
	bs.refreshFailures++
	bs.mutex.Unlock()
}

// IncrementTransitions counts a detected activity transition.
func (bs *BridgeStats) IncrementTransitions() {
	bs.mutex.Lock()
	bs.transitions++
	bs.mutex.Unlock()
}

// IncrementPublishes counts an outbound status publish.
func (bs *BridgeStats) IncrementPublishes() {
	bs.mutex.Lock()
	bs.publishes++
	bs.mutex.Unlock()
}

// IncrementDispatches counts a dispatched hub command.
func (bs *BridgeStats) IncrementDispatches() {
	bs.mutex.Lock()
	bs.dispatches++
	bs.mutex.Unlock()
}

// IncrementInboundCommands counts an inbound bus command.
func (bs *BridgeStats) IncrementInboundCommands() {
	bs.mutex.Lock()
	bs.inboundCommands++
	bs.mutex.Unlock()
}

// Snapshot returns a copy of the current counters.
func (bs *BridgeStats) Snapshot() StatsSnapshot {
	bs.mutex.Lock()
	defer bs.mutex.Unlock()

	return StatsSnapshot{
		UptimeSeconds:   int64(time.Since(bs.startTime).Seconds()),
		Refreshes:       bs.refreshes,
		RefreshFailures: bs.refreshFailures,
		Transitions:     bs.transitions,
		Publishes:       bs.publishes,
		Dispatches:      bs.dispatches,
		InboundCommands: bs.inboundCommands,
	}
}
