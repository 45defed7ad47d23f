package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/lumenhaus/lumen-core/internal/device"
	"github.com/lumenhaus/lumen-core/internal/infrastructure/mqtt"
	"github.com/lumenhaus/lumen-core/internal/registry"
)

// Command operations. All are safe for concurrent use and return errors
// across the engine boundary rather than panicking. The in-memory state
// is updated first, then registry writes and channel publishes are
// fired; a transport or store failure leaves the optimistic local state
// in place and is re-converged by the next signal.

// Toggle negates a device's power state, persists it, and publishes the
// power command. After turning a device on, the stored brightness is
// re-published once the device has had time to settle, so it resumes at
// its last setpoint. The follow-up is generation-guarded: if the device
// is toggled again before the delay elapses, the stale publish is
// suppressed.
func (e *Engine) Toggle(id string) error {
	e.mu.Lock()
	l, ok := e.lights[id]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", device.ErrNotFound, id)
	}
	l.On = !l.On
	e.lights[id] = l
	if e.cfg.OptimisticLiveness {
		e.lastSeen[id] = e.now()
	}
	e.toggleGen[id]++
	gen := e.toggleGen[id]
	e.mu.Unlock()

	e.persist(id, registry.Fields{On: registry.Bool(l.On)})

	payload := mqtt.PayloadOff
	if l.On {
		payload = mqtt.PayloadOn
	}
	if err := e.channel.Publish(e.topics.Power(id), []byte(payload), e.cfg.QoS, false); err != nil {
		e.logger.Warn("power publish failed", "device_id", id, "error", err)
	}
	e.recordCommand(id, "Power", payload)
	e.record(l)

	if l.On {
		e.scheduleSettlePublish(id, gen)
	}

	e.logger.Debug("toggled", "device_id", id, "on", l.On)
	return nil
}

// scheduleSettlePublish arms the delayed brightness follow-up for a
// power-on. When the delay elapses, the publish fires only if no
// further Toggle happened and the device is still on.
func (e *Engine) scheduleSettlePublish(id string, gen uint64) {
	time.AfterFunc(e.cfg.SettleDelay, func() {
		select {
		case <-e.done:
			return
		default:
		}

		e.mu.RLock()
		l, ok := e.lights[id]
		stale := !ok || e.toggleGen[id] != gen || !l.On
		brightness := l.Brightness
		e.mu.RUnlock()

		if stale {
			e.logger.Debug("settle publish suppressed", "device_id", id)
			return
		}
		e.publishBrightness(id, brightness)
	})
}

// SetBrightness stores a new brightness setpoint and, if the device is
// currently on, publishes it immediately. Out-of-range values are
// clamped to [0,100], never stored raw.
func (e *Engine) SetBrightness(id string, value int) error {
	value = device.ClampBrightness(value)

	e.mu.Lock()
	l, ok := e.lights[id]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", device.ErrNotFound, id)
	}
	l.Brightness = value
	e.lights[id] = l
	if e.cfg.OptimisticLiveness {
		e.lastSeen[id] = e.now()
	}
	e.mu.Unlock()

	if l.On {
		e.publishBrightness(id, value)
	}
	e.persist(id, registry.Fields{Brightness: registry.Int(value)})
	e.record(l)
	return nil
}

// SetBrightnessLocal stores a new brightness setpoint without any
// channel publish. Used by UIs that stream values during a drag gesture
// and defer network traffic to ApplyBrightness when the gesture ends.
func (e *Engine) SetBrightnessLocal(id string, value int) error {
	value = device.ClampBrightness(value)

	e.mu.Lock()
	l, ok := e.lights[id]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", device.ErrNotFound, id)
	}
	l.Brightness = value
	e.lights[id] = l
	e.mu.Unlock()

	e.persist(id, registry.Fields{Brightness: registry.Int(value)})
	return nil
}

// ApplyBrightness re-publishes the currently stored brightness if the
// device is on. Completes a SetBrightnessLocal sequence.
func (e *Engine) ApplyBrightness(id string) error {
	e.mu.Lock()
	l, ok := e.lights[id]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", device.ErrNotFound, id)
	}
	if l.On && e.cfg.OptimisticLiveness {
		e.lastSeen[id] = e.now()
	}
	e.mu.Unlock()

	if !l.On {
		return nil
	}
	e.publishBrightness(id, l.Brightness)
	return nil
}

// Rename updates a device's display name. No channel interaction.
func (e *Engine) Rename(id, name string) error {
	if err := device.ValidateName(name); err != nil {
		return err
	}

	e.mu.Lock()
	l, ok := e.lights[id]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", device.ErrNotFound, id)
	}
	l.Name = name
	e.lights[id] = l
	e.mu.Unlock()

	e.persist(id, registry.Fields{Name: registry.String(name)})
	return nil
}

// Add registers a new device. The registry write is synchronous so the
// caller sees a real success or failure; on success the device enters
// the in-memory collection with defaults (off, offline, brightness 50).
// Topic subscriptions are attached by the subsequent registry push, not
// here, so Add itself causes no channel traffic.
func (e *Engine) Add(ctx context.Context, id, name string) error {
	l := device.New(id, name, e.cfg.OwnerID)
	if err := device.Validate(&l); err != nil {
		return err
	}

	if err := e.store.Create(ctx, l); err != nil {
		return fmt.Errorf("registering device %s: %w", id, err)
	}

	e.mu.Lock()
	if _, exists := e.lights[id]; !exists {
		e.lights[id] = l
	}
	e.mu.Unlock()

	e.logger.Info("device registered", "device_id", id, "name", name)
	return nil
}

// Remove deletes a device from the registry and, on success, drops it
// from memory and releases its topic subscriptions. A store failure
// leaves all state unchanged.
func (e *Engine) Remove(ctx context.Context, id string) error {
	if err := e.store.Delete(ctx, e.cfg.OwnerID, id); err != nil {
		return fmt.Errorf("removing device %s: %w", id, err)
	}

	e.mu.Lock()
	delete(e.lights, id)
	delete(e.lastSeen, id)
	delete(e.toggleGen, id)
	e.mu.Unlock()

	e.detachDevice(id)
	e.logger.Info("device removed", "device_id", id)
	return nil
}

// publishBrightness sends a Dimmer command with the given value.
func (e *Engine) publishBrightness(id string, value int) {
	payload := strconv.Itoa(value)
	if err := e.channel.Publish(e.topics.Dimmer(id), []byte(payload), e.cfg.QoS, false); err != nil {
		e.logger.Warn("brightness publish failed", "device_id", id, "error", err)
	}
	e.recordCommand(id, "Dimmer", payload)
}
