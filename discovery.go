// HubBridge - Hub Network Discovery
// Copyright (c) 2025 - Open Source Project

package hubbridge

import (
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"
)

// HubEventType classifies discovery events.
type HubEventType string

const (
	HubOnline  HubEventType = "online"
	HubOffline HubEventType = "offline"
)

// HubEvent reports a hub appearing on or disappearing from the network.
type HubEvent struct {
	Type HubEventType
	Info HubInfo
}

// Discoverer finds hubs by broadcasting probe datagrams and listening for
// announcement replies. A hub that misses three probe rounds in a row is
// reported offline.
type Discoverer struct {
	port     int
	interval time.Duration
	conn     *net.UDPConn

	mutex    sync.Mutex
	hubs     map[string]HubInfo
	lastSeen map[string]time.Time

	events   chan HubEvent
	stopChan chan struct{}
}

// NewDiscoverer creates a discoverer probing the given UDP port.
func NewDiscoverer(port int, interval time.Duration) *Discoverer {
	return &Discoverer{
		port:     port,
		interval: interval,
		hubs:     make(map[string]HubInfo),
		lastSeen: make(map[string]time.Time),
		events:   make(chan HubEvent, 16),
		stopChan: make(chan struct{}),
	}
}

// Start opens the probe socket and begins the probe/listen loops.
func (d *Discoverer) Start() error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: 0})
	if err != nil {
		return fmt.Errorf("failed to open discovery socket: %v", err)
	}
	d.conn = conn

	go d.probeLoop()
	go d.listen()

	log.Printf("Hub discovery started on port %d", d.port)
	return nil
}

// Events delivers online/offline notifications.
func (d *Discoverer) Events() <-chan HubEvent {
	return d.events
}

// Stop shuts discovery down.
func (d *Discoverer) Stop() {
	close(d.stopChan)
	if d.conn != nil {
		d.conn.Close()
	}
}

// probeLoop broadcasts one probe per interval and expires silent hubs.
func (d *Discoverer) probeLoop() {
	d.probe()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopChan:
			return
		case <-ticker.C:
			d.probe()
			d.expire()
		}
	}
}

func (d *Discoverer) probe() {
	local := d.conn.LocalAddr().(*net.UDPAddr)
	probe := fmt.Sprintf("_hubdiscover %d", local.Port)

	broadcast := &net.UDPAddr{IP: net.IPv4bcast, Port: d.port}
	if _, err := d.conn.WriteToUDP([]byte(probe), broadcast); err != nil {
		log.Printf("Discovery probe failed: %v", err)
	}
}

// listen reads announcement replies and emits online events for new hubs.
func (d *Discoverer) listen() {
	buf := make([]byte, 2048)

	for {
		n, addr, err := d.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-d.stopChan:
				return
			default:
				log.Printf("Discovery read failed: %v", err)
				continue
			}
		}

		fields := parseAnnouncement(string(buf[:n]))
		name := fields["friendlyName"]
		if name == "" {
			continue
		}

		ip := fields["ip"]
		if ip == "" {
			ip = addr.IP.String()
		}
		info := HubInfo{FriendlyName: name, IP: ip}

		d.mutex.Lock()
		_, known := d.hubs[name]
		d.hubs[name] = info
		d.lastSeen[name] = time.Now()
		d.mutex.Unlock()

		if !known {
			log.Printf("Hub discovered: %s at %s", info.FriendlyName, info.IP)
			d.emit(HubEvent{Type: HubOnline, Info: info})
		}
	}
}

// expire reports hubs offline after three silent probe rounds.
func (d *Discoverer) expire() {
	cutoff := time.Now().Add(-3 * d.interval)

	d.mutex.Lock()
	var lost []HubInfo
	for name, seen := range d.lastSeen {
		if seen.Before(cutoff) {
			lost = append(lost, d.hubs[name])
			delete(d.hubs, name)
			delete(d.lastSeen, name)
		}
	}
	d.mutex.Unlock()

	for _, info := range lost {
		log.Printf("Hub lost: %s at %s", info.FriendlyName, info.IP)
		d.emit(HubEvent{Type: HubOffline, Info: info})
	}
}

func (d *Discoverer) emit(event HubEvent) {
	select {
	case d.events <- event:
	case <-d.stopChan:
	}
}

// parseAnnouncement splits a "key:value;key:value" announcement payload.
func parseAnnouncement(payload string) map[string]string {
	fields := make(map[string]string)
	for _, pair := range strings.Split(payload, ";") {
		key, value, found := strings.Cut(pair, ":")
		if !found {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return fields
}
