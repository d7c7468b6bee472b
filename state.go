// HubBridge - State Refresh and Change Detection
// Copyright (c) 2025 - Open Source Project

package hubbridge

import (
	"context"
	"fmt"
	"log"
	"sort"
)

// refreshState fetches the hub's current activity id, replaces the state
// snapshot wholesale, and publishes a notification sweep when the activity
// changed since the previous refresh. An unchanged id updates the cache
// silently.
//
// Transitions compare by activity id, not by object reference: the activities
// cache may have been rebuilt between refreshes without the hub actually
// switching activity.
func (r *Registry) refreshState(s *hubSession) {
	log.Printf("Updating state for %s", s.slug)

	id, err := s.client.CurrentActivity(context.Background())
	if err != nil {
		r.stats.IncrementRefreshFailures()
		log.Printf("State refresh failed for %s: %v", s.slug, err)
		return
	}

	if !r.registered(s) {
		return
	}

	s.mutex.Lock()

	activity, ok := s.activities[id]
	if !ok {
		s.mutex.Unlock()
		// The activities cache has not caught up with this id yet. Keep the
		// previous snapshot and let the next tick retry.
		log.Printf("No cached activity %d for %s, skipping state update", id, s.slug)
		return
	}

	previous := s.state
	state := &HubState{
		Off:              id == ActivityOff,
		CurrentActivity:  activity,
		ActivityCommands: sortedCommands(activity.Commands),
	}
	s.state = state

	changed := previous == nil || previous.CurrentActivity == nil ||
		previous.CurrentActivity.ID != id

	var known []*Activity
	if changed {
		known = make([]*Activity, 0, len(s.activities))
		for _, a := range s.activities {
			known = append(known, a)
		}
		sort.Slice(known, func(i, j int) bool { return known[i].ID < known[j].ID })
	}

	s.mutex.Unlock()

	r.stats.IncrementRefreshes()

	if !changed {
		return
	}

	r.publishTransition(s.slug, activity, known)
	r.recordTransition(s.slug, state)
}

// publishTransition emits the retained status values for one activity
// transition, in a fixed order: the current activity slug, the aggregate
// on/off state, then one on/off value per known activity. The sweep is linear
// in the number of activities, which stays in the tens.
func (r *Registry) publishTransition(hub string, current *Activity, known []*Activity) {
	r.publish(fmt.Sprintf("hubs/%s/current_activity", hub), current.Slug)

	if current.ID == ActivityOff {
		r.publish(fmt.Sprintf("hubs/%s/state", hub), "off")
	} else {
		r.publish(fmt.Sprintf("hubs/%s/state", hub), "on")
	}

	for _, activity := range known {
		value := "off"
		if activity.ID == current.ID {
			value = "on"
		}
		r.publish(fmt.Sprintf("hubs/%s/activities/%s/state", hub, activity.Slug), value)
	}

	r.stats.IncrementTransitions()
}

// publish sends one retained status value to the bus.
func (r *Registry) publish(topic, payload string) {
	if r.publisher == nil {
		return
	}

	r.publisher.Publish(topic, payload, true)
	r.stats.IncrementPublishes()
}

// recordTransition persists a transition for the history endpoint.
func (r *Registry) recordTransition(hub string, state *HubState) {
	if r.store == nil {
		return
	}

	value := "on"
	if state.Off {
		value = "off"
	}

	if err := r.store.Record(hub, state.CurrentActivity.ID, state.CurrentActivity.Slug, value); err != nil {
		log.Printf("Failed to record transition for %s: %v", hub, err)
	}
}

// sortedCommands materializes a command map as a slice ordered by slug.
func sortedCommands(commands map[string]Command) []Command {
	list := make([]Command, 0, len(commands))
	for _, command := range commands {
		list = append(list, command)
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Slug < list[j].Slug })
	return list
}
