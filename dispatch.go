// HubBridge - Command Dispatch
// Copyright (c) 2025 - Open Source Project

package hubbridge

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
)

// ParseRepeat coerces a caller-supplied repeat count. Missing or malformed
// input degrades to a single press.
func ParseRepeat(value string) int {
	repeat, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || repeat < 1 {
		return 1
	}
	return repeat
}

// ParseCommandPayload splits an inbound "<command>[:<repeat>]" payload into
// its command slug and repeat count.
func ParseCommandPayload(payload string) (string, int) {
	commandSlug, repeatValue, found := strings.Cut(payload, ":")
	if !found {
		return commandSlug, 1
	}
	return commandSlug, ParseRepeat(repeatValue)
}

// SendAction emulates pressing a button repeat times. Each repetition issues a
// press with a zero timestamp followed, once the press completes, by a release
// at 55 milliseconds. Repetitions may overlap in flight; hubs tolerate that
// the same way they tolerate hardware debounce.
func (r *Registry) SendAction(hub, action string, repeat int) error {
	session, ok := r.session(hub)
	if !ok {
		return ErrHubNotFound
	}
	if repeat < 1 {
		repeat = 1
	}

	press := fmt.Sprintf("action=%s:status=press:timestamp=%d", action, PressTimestamp)
	release := fmt.Sprintf("action=%s:status=release:timestamp=%d", action, ReleaseTimestamp)

	for i := 0; i < repeat; i++ {
		go func() {
			if err := session.client.HoldAction(context.Background(), press); err != nil {
				log.Printf("Press failed for %s: %v", hub, err)
				return
			}
			if err := session.client.HoldAction(context.Background(), release); err != nil {
				log.Printf("Release failed for %s: %v", hub, err)
			}
		}()
	}

	r.stats.IncrementDispatches()
	return nil
}

// StartActivity asks the hub to start an activity, then refreshes state out of
// cycle so the transition is published without waiting for the next tick.
func (r *Registry) StartActivity(hub string, activityID int64) error {
	session, ok := r.session(hub)
	if !ok {
		return ErrHubNotFound
	}

	go func() {
		if err := session.client.StartActivity(context.Background(), activityID); err != nil {
			log.Printf("Start activity %d failed for %s: %v", activityID, hub, err)
			return
		}
		r.refreshState(session)
	}()

	r.stats.IncrementDispatches()
	return nil
}

// PowerOff turns the hub off, then refreshes state out of cycle.
func (r *Registry) PowerOff(hub string) error {
	session, ok := r.session(hub)
	if !ok {
		return ErrHubNotFound
	}

	go func() {
		if err := session.client.TurnOff(context.Background()); err != nil {
			log.Printf("Power off failed for %s: %v", hub, err)
			return
		}
		r.refreshState(session)
	}()

	r.stats.IncrementDispatches()
	return nil
}

// DispatchActivityStart resolves an activity slug and starts it.
func (r *Registry) DispatchActivityStart(hub, activitySlug string) error {
	activity, ok := r.ActivityBySlug(hub, activitySlug)
	if !ok {
		if _, registered := r.session(hub); !registered {
			return ErrHubNotFound
		}
		return ErrActivityNotFound
	}

	return r.StartActivity(hub, activity.ID)
}

// DispatchDeviceCommand resolves a device/command slug pair and sends it.
func (r *Registry) DispatchDeviceCommand(hub, deviceSlug, commandSlug string, repeat int) error {
	device, ok := r.DeviceBySlug(hub, deviceSlug)
	if !ok {
		if _, registered := r.session(hub); !registered {
			return ErrHubNotFound
		}
		return ErrDeviceNotFound
	}

	command, ok := device.Commands[commandSlug]
	if !ok {
		return ErrCommandNotFound
	}

	return r.SendAction(hub, command.Action, repeat)
}

// DispatchCurrentCommand resolves a command slug against the hub's current
// activity and sends it.
func (r *Registry) DispatchCurrentCommand(hub, commandSlug string, repeat int) error {
	command, ok := r.CurrentCommand(hub, commandSlug)
	if !ok {
		if _, registered := r.session(hub); !registered {
			return ErrHubNotFound
		}
		return ErrCommandNotFound
	}

	return r.SendAction(hub, command.Action, repeat)
}
