// HubBridge - Hub Session Registry
// Copyright (c) 2025 - Open Source Project

package hubbridge

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"
)

// Publisher delivers status values to the message bus. Retained values persist
// for late subscribers.
type Publisher interface {
	Publish(topic, payload string, retained bool)
}

// Registry owns every active hub session. A session is created when discovery
// reports a hub online and destroyed when it goes offline; destruction removes
// the session and all of its caches in a single map delete, so refresh calls
// that are still in flight find the session gone and discard their result.
type Registry struct {
	mutex    sync.RWMutex
	sessions map[string]*hubSession

	publisher Publisher
	store     *TransitionStore
	stats     *BridgeStats
}

// hubSession holds one hub's client handle, refresh loops and caches. Each
// refresh replaces an entire cache, never merges into it, so readers never
// observe a partially updated collection.
type hubSession struct {
	slug     string
	client   HubClient
	stopChan chan struct{}

	mutex      sync.RWMutex
	activities map[int64]*Activity
	devices    map[int64]*Device
	state      *HubState
}

// NewRegistry creates a hub session registry. The transition store is
// optional; pass nil to disable persistence.
func NewRegistry(stats *BridgeStats, store *TransitionStore) *Registry {
	return &Registry{
		sessions: make(map[string]*hubSession),
		store:    store,
		stats:    stats,
	}
}

// SetPublisher wires the message bus used for state-change notifications.
func (r *Registry) SetPublisher(publisher Publisher) {
	r.publisher = publisher
}

// Register creates a session for a discovered hub and brings its caches up.
// The first refresh is ordered: the state refresh resolves the current
// activity against the activities cache, so activities must land first.
// Afterwards three independent loops keep the caches fresh; they never block
// each other.
func (r *Registry) Register(slug string, client HubClient) {
	session := &hubSession{
		slug:     slug,
		client:   client,
		stopChan: make(chan struct{}),
	}

	r.mutex.Lock()
	old := r.sessions[slug]
	r.sessions[slug] = session
	r.mutex.Unlock()

	if old != nil {
		close(old.stopChan)
		old.client.Close()
	}

	log.Printf("Hub registered: %s", slug)

	r.refreshActivities(session)
	r.refreshState(session)
	r.refreshDevices(session)

	go r.activityLoop(session)
	go r.stateLoop(session)
	go r.deviceLoop(session)
}

// Unregister tears a hub session down: the refresh loops are stopped and the
// session entry, with all three caches, is removed atomically. In-flight hub
// calls are not interrupted; their completions no-op once the session is gone.
func (r *Registry) Unregister(slug string) {
	r.mutex.Lock()
	session, ok := r.sessions[slug]
	if ok {
		delete(r.sessions, slug)
	}
	r.mutex.Unlock()

	if !ok {
		return
	}

	close(session.stopChan)
	if err := session.client.Close(); err != nil {
		log.Printf("Failed to close client for %s: %v", slug, err)
	}

	log.Printf("Hub removed: %s", slug)
}

// Shutdown tears down every registered hub session.
func (r *Registry) Shutdown() {
	for _, slug := range r.Hubs() {
		r.Unregister(slug)
	}
}

// HubCount returns the number of registered hubs.
func (r *Registry) HubCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.sessions)
}

// Hubs returns the slugs of all registered hubs, sorted.
func (r *Registry) Hubs() []string {
	r.mutex.RLock()
	hubs := make([]string, 0, len(r.sessions))
	for slug := range r.sessions {
		hubs = append(hubs, slug)
	}
	r.mutex.RUnlock()

	sort.Strings(hubs)
	return hubs
}

// session looks up the live session for a hub slug.
func (r *Registry) session(slug string) (*hubSession, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	session, ok := r.sessions[slug]
	return session, ok
}

// registered reports whether this exact session is still the live entry for
// its slug. Refresh completions check this before writing so a late response
// cannot resurrect the caches of a hub that went offline, or leak into a
// session that replaced it.
func (r *Registry) registered(s *hubSession) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.sessions[s.slug] == s
}

func (r *Registry) activityLoop(s *hubSession) {
	ticker := time.NewTicker(ActivityUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			r.refreshActivities(s)
		}
	}
}

func (r *Registry) stateLoop(s *hubSession) {
	ticker := time.NewTicker(StateUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			r.refreshState(s)
		}
	}
}

func (r *Registry) deviceLoop(s *hubSession) {
	ticker := time.NewTicker(DeviceUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			r.refreshDevices(s)
		}
	}
}

// refreshActivities replaces the activities cache with the hub's current
// activity list. Failures leave the existing cache untouched; the next tick
// retries unconditionally.
func (r *Registry) refreshActivities(s *hubSession) {
	log.Printf("Updating activities for %s", s.slug)

	raw, err := s.client.Activities(context.Background())
	if err != nil {
		r.stats.IncrementRefreshFailures()
		log.Printf("Activity refresh failed for %s: %v", s.slug, err)
		return
	}

	if !r.registered(s) {
		return
	}

	found := make(map[int64]*Activity, len(raw))
	for _, activity := range raw {
		found[activity.ID] = &Activity{
			ID:           activity.ID,
			Slug:         Slugify(activity.Label),
			Label:        activity.Label,
			IsAVActivity: activity.IsAVActivity,
			Commands:     CommandsFromControlGroups(activity.ControlGroup),
		}
	}

	s.mutex.Lock()
	s.activities = found
	s.mutex.Unlock()

	r.stats.IncrementRefreshes()
}

// History returns the persisted transitions of a hub, newest first. Without a
// configured store the history is empty.
func (r *Registry) History(hub string, limit int) ([]Transition, error) {
	if _, ok := r.session(hub); !ok {
		return nil, ErrHubNotFound
	}
	if r.store == nil {
		return []Transition{}, nil
	}
	return r.store.History(hub, limit)
}

// refreshDevices replaces the devices cache with the hub's current device
// list, each carrying its flattened command index.
func (r *Registry) refreshDevices(s *hubSession) {
	log.Printf("Updating devices for %s", s.slug)

	raw, err := s.client.AvailableCommands(context.Background())
	if err != nil {
		r.stats.IncrementRefreshFailures()
		log.Printf("Device refresh failed for %s: %v", s.slug, err)
		return
	}

	if !r.registered(s) {
		return
	}

	found := make(map[int64]*Device, len(raw))
	for _, device := range raw {
		found[device.ID] = &Device{
			ID:       device.ID,
			Slug:     Slugify(device.Label),
			Label:    device.Label,
			Commands: CommandsFromControlGroups(device.ControlGroup),
		}
	}

	s.mutex.Lock()
	s.devices = found
	s.mutex.Unlock()

	r.stats.IncrementRefreshes()
}
