// HubBridge - Cache Lookups
// Copyright (c) 2025 - Open Source Project

package hubbridge

import "sort"

// Activities returns the cached activities of a hub, sorted by id. The second
// return value is false when the hub is not registered.
func (r *Registry) Activities(hub string) ([]Activity, bool) {
	session, ok := r.session(hub)
	if !ok {
		return nil, false
	}

	session.mutex.RLock()
	activities := make([]Activity, 0, len(session.activities))
	for _, activity := range session.activities {
		activities = append(activities, *activity)
	}
	session.mutex.RUnlock()

	sort.Slice(activities, func(i, j int) bool { return activities[i].ID < activities[j].ID })
	return activities, true
}

// ActivityBySlug resolves an activity by its slug.
func (r *Registry) ActivityBySlug(hub, activitySlug string) (*Activity, bool) {
	session, ok := r.session(hub)
	if !ok {
		return nil, false
	}

	session.mutex.RLock()
	defer session.mutex.RUnlock()

	for _, activity := range session.activities {
		if activity.Slug == activitySlug {
			return activity, true
		}
	}
	return nil, false
}

// ActivityCommands returns the commands of an activity, sorted by slug.
func (r *Registry) ActivityCommands(hub, activitySlug string) ([]Command, bool) {
	activity, ok := r.ActivityBySlug(hub, activitySlug)
	if !ok {
		return nil, false
	}

	return sortedCommands(activity.Commands), true
}

// Devices returns the cached devices of a hub, sorted by id.
func (r *Registry) Devices(hub string) ([]Device, bool) {
	session, ok := r.session(hub)
	if !ok {
		return nil, false
	}

	session.mutex.RLock()
	devices := make([]Device, 0, len(session.devices))
	for _, device := range session.devices {
		devices = append(devices, *device)
	}
	session.mutex.RUnlock()

	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	return devices, true
}

// DeviceBySlug resolves a device by its slug.
func (r *Registry) DeviceBySlug(hub, deviceSlug string) (*Device, bool) {
	session, ok := r.session(hub)
	if !ok {
		return nil, false
	}

	session.mutex.RLock()
	defer session.mutex.RUnlock()

	for _, device := range session.devices {
		if device.Slug == deviceSlug {
			return device, true
		}
	}
	return nil, false
}

// DeviceCommands returns the commands of a device, sorted by slug.
func (r *Registry) DeviceCommands(hub, deviceSlug string) ([]Command, bool) {
	device, ok := r.DeviceBySlug(hub, deviceSlug)
	if !ok {
		return nil, false
	}

	return sortedCommands(device.Commands), true
}

// State returns the current state snapshot of a hub. The snapshot may be nil
// when the hub registered but its first state refresh has not completed.
func (r *Registry) State(hub string) (*HubState, bool) {
	session, ok := r.session(hub)
	if !ok {
		return nil, false
	}

	session.mutex.RLock()
	defer session.mutex.RUnlock()

	return session.state, true
}

// CurrentCommands returns the command set of the hub's current activity.
func (r *Registry) CurrentCommands(hub string) ([]Command, bool) {
	state, ok := r.State(hub)
	if !ok || state == nil || state.CurrentActivity == nil {
		return nil, false
	}

	return sortedCommands(state.CurrentActivity.Commands), true
}

// CurrentCommand resolves a command slug against the hub's current activity.
func (r *Registry) CurrentCommand(hub, commandSlug string) (Command, bool) {
	state, ok := r.State(hub)
	if !ok || state == nil || state.CurrentActivity == nil {
		return Command{}, false
	}

	command, ok := state.CurrentActivity.Commands[commandSlug]
	return command, ok
}
