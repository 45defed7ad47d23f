package engine

import (
	"sort"
	"time"

	"github.com/lumenhaus/lumen-core/internal/infrastructure/mqtt"
)

// Discovered is one announcement collected during a discovery session.
// Entries are registration candidates only; they become devices via Add.
type Discovered struct {
	ID      string
	Address string
}

// StartDiscovery opens a time-boxed discovery session: the discovered
// set is cleared, the shared discovery topic is subscribed, and a
// broadcast trigger is published. Announcements of shape "{id}:{addr}"
// are collected, deduplicated by id, until the configured window
// elapses and the topic is unsubscribed again.
//
// Returns ErrDiscoveryActive if a session is already running. Collected
// entries remain readable via Discovered until the next session clears
// them.
func (e *Engine) StartDiscovery() error {
	e.mu.Lock()
	if e.discovering {
		e.mu.Unlock()
		return ErrDiscoveryActive
	}
	e.discovering = true
	e.discoveryGen++
	gen := e.discoveryGen
	e.discovered = make(map[string]string)
	e.mu.Unlock()

	if err := e.channel.Subscribe(mqtt.TopicDiscovery, e.cfg.QoS, e.onDiscoveryMessage); err != nil {
		e.mu.Lock()
		e.discovering = false
		e.mu.Unlock()
		return err
	}

	if err := e.channel.Publish(mqtt.TopicDiscoveryRequest, []byte(mqtt.PayloadDiscover), e.cfg.QoS, false); err != nil {
		e.logger.Warn("discovery broadcast failed", "error", err)
	}

	time.AfterFunc(e.cfg.DiscoveryWindow, func() {
		e.enqueue(discoveryEndEvent{gen: gen})
	})

	e.logger.Info("discovery session started", "window", e.cfg.DiscoveryWindow)
	return nil
}

// applyDiscovery collects one announcement into the discovered set.
// Announcements outside a session window, duplicates, and malformed
// payloads are ignored.
func (e *Engine) applyDiscovery(payload string) {
	id, addr, ok := parseAnnouncement(payload)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.discovering {
		return
	}
	if _, seen := e.discovered[id]; seen {
		return
	}
	e.discovered[id] = addr
	e.logger.Info("device announced", "device_id", id, "address", addr)
}

// applyDiscoveryEnd closes the session that armed it. The generation
// check keeps a stale timer from a previous session from cutting a
// newer one short.
func (e *Engine) applyDiscoveryEnd(gen uint64) {
	e.mu.Lock()
	if !e.discovering || e.discoveryGen != gen {
		e.mu.Unlock()
		return
	}
	e.discovering = false
	count := len(e.discovered)
	e.mu.Unlock()

	if err := e.channel.Unsubscribe(mqtt.TopicDiscovery); err != nil {
		e.logger.Debug("discovery unsubscribe failed", "error", err)
	}
	e.logger.Info("discovery session ended", "announced", count)
}

// Discovering reports whether a discovery session is currently open.
func (e *Engine) Discovering() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.discovering
}

// Discovered returns a snapshot of the current discovered set, sorted
// by id.
func (e *Engine) Discovered() []Discovered {
	e.mu.RLock()
	out := make([]Discovered, 0, len(e.discovered))
	for id, addr := range e.discovered {
		out = append(out, Discovered{ID: id, Address: addr})
	}
	e.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
