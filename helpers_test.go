package hubbridge

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeHubClient is an in-memory HubClient for exercising the registry without
// a real hub on the network.
type fakeHubClient struct {
	mutex sync.Mutex

	activities    []HubActivity
	devices       []HubDevice
	currentID     int64
	activitiesErr error
	devicesErr    error
	currentErr    error

	holdActions []string
	started     []int64
	turnOffs    int
	closed      bool

	// when set, CurrentActivity blocks until the channel closes
	stateGate chan struct{}
}

func (f *fakeHubClient) Activities(ctx context.Context) ([]HubActivity, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.activitiesErr != nil {
		return nil, f.activitiesErr
	}
	return f.activities, nil
}

func (f *fakeHubClient) AvailableCommands(ctx context.Context) ([]HubDevice, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.devicesErr != nil {
		return nil, f.devicesErr
	}
	return f.devices, nil
}

func (f *fakeHubClient) CurrentActivity(ctx context.Context) (int64, error) {
	f.mutex.Lock()
	gate := f.stateGate
	f.mutex.Unlock()
	if gate != nil {
		<-gate
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.currentErr != nil {
		return 0, f.currentErr
	}
	return f.currentID, nil
}

func (f *fakeHubClient) StartActivity(ctx context.Context, activityID int64) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.started = append(f.started, activityID)
	f.currentID = activityID
	return nil
}

func (f *fakeHubClient) TurnOff(ctx context.Context) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.turnOffs++
	f.currentID = ActivityOff
	return nil
}

func (f *fakeHubClient) HoldAction(ctx context.Context, body string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.holdActions = append(f.holdActions, body)
	return nil
}

func (f *fakeHubClient) Close() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.closed = true
	return nil
}

func (f *fakeHubClient) setCurrent(id int64) {
	f.mutex.Lock()
	f.currentID = id
	f.mutex.Unlock()
}

func (f *fakeHubClient) setGate(gate chan struct{}) {
	f.mutex.Lock()
	f.stateGate = gate
	f.mutex.Unlock()
}

func (f *fakeHubClient) heldActions() []string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]string(nil), f.holdActions...)
}

func (f *fakeHubClient) startedActivities() []int64 {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]int64(nil), f.started...)
}

func (f *fakeHubClient) turnOffCount() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.turnOffs
}

func (f *fakeHubClient) isClosed() bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.closed
}

// publishRecord is one captured bus publish.
type publishRecord struct {
	topic    string
	payload  string
	retained bool
}

// fakePublisher records publishes in order.
type fakePublisher struct {
	mutex   sync.Mutex
	records []publishRecord
}

func (p *fakePublisher) Publish(topic, payload string, retained bool) {
	p.mutex.Lock()
	p.records = append(p.records, publishRecord{topic: topic, payload: payload, retained: retained})
	p.mutex.Unlock()
}

func (p *fakePublisher) snapshot() []publishRecord {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]publishRecord(nil), p.records...)
}

func (p *fakePublisher) reset() {
	p.mutex.Lock()
	p.records = nil
	p.mutex.Unlock()
}

func (p *fakePublisher) payloadFor(topic string) (string, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	for i := len(p.records) - 1; i >= 0; i-- {
		if p.records[i].topic == topic {
			return p.records[i].payload, true
		}
	}
	return "", false
}

// Test fixtures

func tvControlGroups() []ControlGroup {
	return []ControlGroup{{
		Name: "Channel",
		Function: []HubFunction{
			{Name: "ChannelUp", Label: "Channel Up", Action: `{"command":"ChannelUp","deviceId":"123"}`},
			{Name: "ChannelDown", Label: "Channel Down", Action: `{"command":"ChannelDown","deviceId":"123"}`},
		},
	}}
}

func musicControlGroups() []ControlGroup {
	return []ControlGroup{{
		Name: "Transport",
		Function: []HubFunction{
			{Name: "Play", Label: "Play", Action: `{"command":"Play","deviceId":"456"}`},
			{Name: "Pause", Label: "Pause", Action: `{"command":"Pause","deviceId":"456"}`},
		},
	}}
}

func deviceControlGroups() []ControlGroup {
	return []ControlGroup{{
		Name: "Volume",
		Function: []HubFunction{
			{Name: "VolumeUp", Label: "Volume Up", Action: `{"command":"VolumeUp","deviceId":"123"}`},
			{Name: "VolumeDown", Label: "Volume Down", Action: `{"command":"VolumeDown","deviceId":"123"}`},
		},
	}}
}

func defaultActivities() []HubActivity {
	return []HubActivity{
		{ID: ActivityOff, Label: "PowerOff"},
		{ID: 1, Label: "Watch TV", IsAVActivity: true, ControlGroup: tvControlGroups()},
		{ID: 2, Label: "Listen to Music", ControlGroup: musicControlGroups()},
	}
}

func defaultDevices() []HubDevice {
	return []HubDevice{
		{ID: 10, Label: "Living Room TV", ControlGroup: deviceControlGroups()},
	}
}

func defaultFakeClient() *fakeHubClient {
	return &fakeHubClient{
		activities: defaultActivities(),
		devices:    defaultDevices(),
		currentID:  1,
	}
}

// newTestRegistry registers the fake client as hub "tv-room" and returns the
// registry with its recording publisher.
func newTestRegistry(t *testing.T, client *fakeHubClient) (*Registry, *fakePublisher) {
	t.Helper()

	registry := NewRegistry(NewBridgeStats(), nil)
	publisher := &fakePublisher{}
	registry.SetPublisher(publisher)

	registry.Register("tv-room", client)
	t.Cleanup(func() { registry.Unregister("tv-room") })

	return registry, publisher
}

// waitFor polls a condition until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
