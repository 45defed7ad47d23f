package engine

import (
	"github.com/lumenhaus/lumen-core/internal/device"
	"github.com/lumenhaus/lumen-core/internal/infrastructure/mqtt"
)

// event is a reconciliation input queued for the single run loop
// consumer. MQTT handlers and the registry push never mutate engine
// state directly; they enqueue and return.
type event interface {
	apply(e *Engine)
}

// stateEvent carries a device state report (stat/{id}/RESULT).
type stateEvent struct {
	id      string
	payload string
}

func (ev stateEvent) apply(e *Engine) { e.applyStateReport(ev.id, ev.payload) }

// lwtEvent carries a last-will liveness message (tele/{id}/LWT).
type lwtEvent struct {
	id      string
	payload string
}

func (ev lwtEvent) apply(e *Engine) { e.applyLWT(ev.id, ev.payload) }

// heartbeatEvent carries a heartbeat (tele/{id}/HEARTBEAT).
type heartbeatEvent struct {
	id string
}

func (ev heartbeatEvent) apply(e *Engine) { e.applyHeartbeat(ev.id) }

// registryPushEvent carries a full-collection change push from the store.
type registryPushEvent struct {
	lights []device.Light
}

func (ev registryPushEvent) apply(e *Engine) { e.applyRegistryPush(ev.lights) }

// sweepEvent triggers one watchdog liveness sweep.
type sweepEvent struct{}

func (sweepEvent) apply(e *Engine) { e.applySweep() }

// discoveryEvent carries one announcement from the discovery topic.
type discoveryEvent struct {
	payload string
}

func (ev discoveryEvent) apply(e *Engine) { e.applyDiscovery(ev.payload) }

// discoveryEndEvent closes a discovery session. The generation guards
// against a stale timer ending a newer session.
type discoveryEndEvent struct {
	gen uint64
}

func (ev discoveryEndEvent) apply(e *Engine) { e.applyDiscoveryEnd(ev.gen) }

// enqueue hands an event to the run loop. A full queue drops the event;
// blocking here would stall the MQTT delivery goroutine. State
// re-converges via the next signal (status reports, watchdog, pushes).
func (e *Engine) enqueue(ev event) {
	select {
	case e.events <- ev:
	case <-e.done:
	default:
		e.logger.Warn("event queue full, dropping event")
	}
}

// runLoop drains the event queue and applies reconciliation. One
// failing event must not block the rest, so apply never panics across
// this boundary.
func (e *Engine) runLoop() {
	defer e.wg.Done()
	for {
		select {
		case ev := <-e.events:
			e.applySafely(ev)
		case <-e.done:
			return
		}
	}
}

// applySafely applies one event, containing any panic so the loop
// survives a malformed input.
func (e *Engine) applySafely(ev event) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic during reconciliation", "panic", r)
		}
	}()
	ev.apply(e)
}

// MQTT handlers. Invoked on the channel's delivery goroutine; they only
// parse the topic and enqueue.

func (e *Engine) onStateMessage(topic string, payload []byte) error {
	id := mqtt.DeviceID(topic)
	if id == "" {
		return nil
	}
	e.enqueue(stateEvent{id: id, payload: string(payload)})
	return nil
}

func (e *Engine) onLWTMessage(topic string, payload []byte) error {
	id := mqtt.DeviceID(topic)
	if id == "" {
		return nil
	}
	e.enqueue(lwtEvent{id: id, payload: string(payload)})
	return nil
}

func (e *Engine) onHeartbeatMessage(topic string, _ []byte) error {
	id := mqtt.DeviceID(topic)
	if id == "" {
		return nil
	}
	e.enqueue(heartbeatEvent{id: id})
	return nil
}

func (e *Engine) onDiscoveryMessage(_ string, payload []byte) error {
	e.enqueue(discoveryEvent{payload: string(payload)})
	return nil
}
