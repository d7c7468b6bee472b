package hubbridge

import (
	"testing"
	"time"
)

func TestRouteActivityOn(t *testing.T) {
	client := defaultFakeClient()
	registry, _ := newTestRegistry(t, client)

	registry.RouteCommand("hubs/tv-room/activities/listen-to-music/command", "on")

	waitFor(t, time.Second, func() bool {
		started := client.startedActivities()
		return len(started) == 1 && started[0] == 2
	})
}

func TestRouteActivityOff(t *testing.T) {
	client := defaultFakeClient()
	registry, _ := newTestRegistry(t, client)

	registry.RouteCommand("hubs/tv-room/activities/watch-tv/command", "off")

	waitFor(t, time.Second, func() bool { return client.turnOffCount() == 1 })
}

func TestRouteActivityOffUnknownActivityIgnored(t *testing.T) {
	client := defaultFakeClient()
	registry, _ := newTestRegistry(t, client)

	registry.RouteCommand("hubs/tv-room/activities/nope/command", "off")

	time.Sleep(50 * time.Millisecond)
	if client.turnOffCount() != 0 {
		t.Errorf("unknown activity slug must not power the hub off")
	}
}

func TestRouteActivityUnknownPayloadIgnored(t *testing.T) {
	client := defaultFakeClient()
	registry, _ := newTestRegistry(t, client)

	registry.RouteCommand("hubs/tv-room/activities/watch-tv/command", "toggle")

	time.Sleep(50 * time.Millisecond)
	if len(client.startedActivities()) != 0 || client.turnOffCount() != 0 {
		t.Error("unrecognized payload must be dropped")
	}
}

func TestRouteDeviceCommandWithRepeat(t *testing.T) {
	client := defaultFakeClient()
	registry, _ := newTestRegistry(t, client)

	// volume-up is a device command, not part of the current activity, and
	// must resolve through the device regardless.
	registry.RouteCommand("hubs/tv-room/devices/living-room-tv/command", "volume-up:5")

	waitFor(t, time.Second, func() bool { return len(client.heldActions()) == 10 })
}

func TestRouteCurrentActivityCommand(t *testing.T) {
	client := defaultFakeClient()
	registry, _ := newTestRegistry(t, client)

	registry.RouteCommand("hubs/tv-room/command", "channel-up:2")

	waitFor(t, time.Second, func() bool { return len(client.heldActions()) == 4 })
}

func TestRouteUnresolvableSilentlyDropped(t *testing.T) {
	client := defaultFakeClient()
	registry, _ := newTestRegistry(t, client)

	registry.RouteCommand("hubs/tv-room/devices/toaster/command", "volume-up")
	registry.RouteCommand("hubs/ghost/command", "channel-up")
	registry.RouteCommand("hubs/tv-room/command", "not-a-command")

	time.Sleep(50 * time.Millisecond)
	if got := client.heldActions(); len(got) != 0 {
		t.Errorf("unresolvable commands must be dropped, got %v", got)
	}
}

func TestRouteMalformedTopicsIgnored(t *testing.T) {
	client := defaultFakeClient()
	registry, _ := newTestRegistry(t, client)

	topics := []string{
		"",
		"hubs",
		"hubs/tv-room",
		"hubs/tv-room/activities/watch-tv",
		"hubs/tv-room/activities/watch-tv/status",
		"other/tv-room/command",
		"hubs/tv-room/command/extra/parts",
	}
	for _, topic := range topics {
		registry.RouteCommand(topic, "on")
	}

	time.Sleep(50 * time.Millisecond)
	if len(client.startedActivities()) != 0 || len(client.heldActions()) != 0 {
		t.Error("malformed topics must not dispatch anything")
	}
}

func TestRouteCountsInboundCommands(t *testing.T) {
	client := defaultFakeClient()
	registry, _ := newTestRegistry(t, client)

	registry.RouteCommand("garbage", "x")
	registry.RouteCommand("hubs/tv-room/command", "channel-up")

	if got := registry.stats.Snapshot().InboundCommands; got != 2 {
		t.Errorf("inbound command count = %d, want 2", got)
	}
}
