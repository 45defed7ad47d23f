package engine

import (
	"github.com/lumenhaus/lumen-core/internal/device"
	"github.com/lumenhaus/lumen-core/internal/infrastructure/mqtt"
	"github.com/lumenhaus/lumen-core/internal/registry"
)

// applyStateReport merges one device state report into the collection.
//
// The power token wins when present; otherwise the prior power state is
// kept. A brightness token overwrites the stored setpoint; otherwise
// the prior value is kept (or the domain default for a device with no
// prior record). Receipt itself is the liveness signal: any report
// marks the device online and refreshes its last-seen time, regardless
// of payload content.
//
// An unknown id gets a synthesized record. Devices can message before
// registration completes propagating back to this instance.
func (e *Engine) applyStateReport(id, payload string) {
	power, hasPower := parsePower(payload)
	brightness, hasBrightness := parseBrightness(payload)

	e.mu.Lock()
	l, known := e.lights[id]
	if !known {
		l = device.New(id, "Light "+id, e.cfg.OwnerID)
	}
	if hasPower {
		l.On = power
	}
	if hasBrightness {
		l.Brightness = device.ClampBrightness(brightness)
	}
	l.Online = true
	e.lights[id] = l
	e.lastSeen[id] = e.now()
	e.mu.Unlock()

	if !known {
		e.logger.Info("unregistered device reporting, synthesized record",
			"device_id", id)
		// Queued ahead of the update below; the persist loop runs
		// writes in order, so the record exists before the partial
		// update lands and store-level healing never fires.
		e.createRecord(l)
	}

	e.persist(id, registry.Fields{
		On:         registry.Bool(l.On),
		Brightness: registry.Int(l.Brightness),
		Online:     registry.Bool(true),
	})
	e.record(l)

	e.logger.Debug("state report reconciled",
		"device_id", id, "on", l.On, "brightness", l.Brightness)
}

// applyLWT handles a last-will liveness message. The literal payload
// "Online" signals liveness; anything else means the broker published
// the device's will, i.e. the device dropped. Power and brightness are
// never touched here.
func (e *Engine) applyLWT(id, payload string) {
	online := payload == mqtt.PayloadOnline

	e.mu.Lock()
	l, known := e.lights[id]
	if !known {
		e.mu.Unlock()
		return
	}
	if online {
		e.lastSeen[id] = e.now()
	}
	changed := l.Online != online
	if changed {
		l.Online = online
		e.lights[id] = l
	}
	e.mu.Unlock()

	if !changed {
		return
	}

	e.persist(id, registry.Fields{Online: registry.Bool(online)})
	e.record(l)
	e.logger.Info("device liveness changed", "device_id", id, "online", online)
}

// applyHeartbeat refreshes the device's last-seen time. The online flag
// is flipped (and persisted) only when it was false; steady heartbeats
// from a healthy device produce no writes.
func (e *Engine) applyHeartbeat(id string) {
	e.mu.Lock()
	l, known := e.lights[id]
	if !known {
		e.mu.Unlock()
		return
	}
	e.lastSeen[id] = e.now()
	revived := !l.Online
	if revived {
		l.Online = true
		e.lights[id] = l
	}
	e.mu.Unlock()

	if !revived {
		return
	}

	e.persist(id, registry.Fields{Online: registry.Bool(true)})
	e.record(l)
	e.logger.Info("device revived by heartbeat", "device_id", id)
}

// applyRegistryPush replaces the whole in-memory collection with the
// pushed set. The store is the durable source of truth: last store
// write wins, superseding any local optimistic state not yet persisted.
// Topic subscriptions are diffed against the previous set so added
// devices get attached and vanished devices released.
func (e *Engine) applyRegistryPush(pushed []device.Light) {
	e.mu.Lock()
	previous := e.lights
	e.lights = make(map[string]device.Light, len(pushed))
	for _, l := range pushed {
		e.lights[l.ID] = l
	}

	// Subscriptions are diffed against the attached set, not the
	// previous map: a device registered via Add sits in memory without
	// subscriptions until the store confirms it through this push.
	var added, removed []string
	for id := range e.lights {
		if !e.attached[id] {
			added = append(added, id)
		}
	}
	for id := range e.attached {
		if _, ok := e.lights[id]; !ok {
			removed = append(removed, id)
		}
	}
	for id := range previous {
		if _, ok := e.lights[id]; !ok {
			delete(e.lastSeen, id)
			delete(e.toggleGen, id)
		}
	}
	e.mu.Unlock()

	for _, id := range added {
		e.attachDevice(id)
	}
	for _, id := range removed {
		e.detachDevice(id)
	}

	e.logger.Debug("registry push applied",
		"lights", len(pushed), "added", len(added), "removed", len(removed))
}

// applySweep runs one watchdog pass: every device currently online
// whose last signal is older than the timeout (never-seen counts as
// maximally stale) is demoted to offline. The transition is
// one-directional per sweep; a device returns online only via a new
// inbound signal.
func (e *Engine) applySweep() {
	now := e.now()

	e.mu.Lock()
	var stale []device.Light
	for id, l := range e.lights {
		if !l.Online {
			continue
		}
		seen, ok := e.lastSeen[id]
		if ok && now.Sub(seen) <= e.cfg.OfflineTimeout {
			continue
		}
		l.Online = false
		e.lights[id] = l
		stale = append(stale, l)
	}
	e.mu.Unlock()

	for _, l := range stale {
		e.persist(l.ID, registry.Fields{Online: registry.Bool(false)})
		e.record(l)
		e.logger.Info("device timed out, marked offline", "device_id", l.ID)
	}
}
