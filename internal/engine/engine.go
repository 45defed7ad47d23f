package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lumenhaus/lumen-core/internal/device"
	"github.com/lumenhaus/lumen-core/internal/infrastructure/mqtt"
	"github.com/lumenhaus/lumen-core/internal/registry"
)

// Default timing values, applied when Config fields are zero.
const (
	defaultWatchdogInterval = 10 * time.Second
	defaultOfflineTimeout   = 15 * time.Second
	defaultSettleDelay      = 300 * time.Millisecond
	defaultDiscoveryWindow  = 2 * time.Second

	// persistTimeout bounds each queued registry write.
	persistTimeout = 5 * time.Second

	// eventQueueSize is the buffer for inbound reconciliation events.
	// A full queue drops the event with a warning rather than blocking
	// the MQTT delivery goroutine.
	eventQueueSize = 256

	// writeQueueSize is the buffer for outbound registry writes. Writes
	// are drained by a single goroutine so they reach the store in the
	// order they were issued.
	writeQueueSize = 256
)

// Channel is the message transport the engine needs. Implemented by
// *mqtt.Client; narrowed here so tests can substitute a fake.
type Channel interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	SetOnConnect(callback func())
	SetOnDisconnect(callback func(err error))
}

// StateRecorder receives every reconciled state transition and every
// outbound device command for history recording. Implemented by
// *influxdb.Client. Optional; may be nil.
type StateRecorder interface {
	WriteLightState(deviceID string, on, online bool, brightness int)
	WriteCommand(deviceID, command, payload string)
}

// Logger is the minimal logging interface used by the engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards all log output. Used when no logger is provided.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config holds engine tuning parameters.
type Config struct {
	// OwnerID scopes the engine to one owner's lights.
	OwnerID string

	// WatchdogInterval is the liveness sweep period.
	WatchdogInterval time.Duration

	// OfflineTimeout is the silence window after which a device is
	// demoted to offline.
	OfflineTimeout time.Duration

	// SettleDelay is the wait between a power-on command and the
	// follow-up brightness publish.
	SettleDelay time.Duration

	// DiscoveryWindow is the discovery collection window.
	DiscoveryWindow time.Duration

	// OptimisticLiveness treats locally-initiated commands as liveness
	// signals. Matches observed device behaviour; can mask a genuinely
	// offline device right after a command.
	OptimisticLiveness bool

	// QoS is the quality-of-service level for all publishes and
	// subscriptions.
	QoS byte
}

// normalized returns cfg with zero timing values replaced by defaults.
func (cfg Config) normalized() Config {
	if cfg.WatchdogInterval <= 0 {
		cfg.WatchdogInterval = defaultWatchdogInterval
	}
	if cfg.OfflineTimeout <= 0 {
		cfg.OfflineTimeout = defaultOfflineTimeout
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	if cfg.DiscoveryWindow <= 0 {
		cfg.DiscoveryWindow = defaultDiscoveryWindow
	}
	return cfg
}

// Engine owns the canonical in-memory light collection for one owner.
//
// Construct with New, start with Start, and always Close before
// discarding; a successor engine must not attach until Close returns,
// otherwise duplicate handlers double-apply reconciliation.
type Engine struct {
	cfg      Config
	store    registry.Store
	channel  Channel
	recorder StateRecorder
	logger   Logger
	topics   mqtt.Topics

	mu        sync.RWMutex
	lights    map[string]device.Light
	lastSeen  map[string]time.Time
	connected bool

	// attached tracks which device ids currently hold topic
	// subscriptions. Attach is driven by startup and registry pushes,
	// never by Add directly, so registering a device causes no channel
	// traffic until the store confirms it.
	attached map[string]bool

	// toggleGen guards the delayed brightness follow-up after power-on.
	// Each Toggle bumps the device's generation; a settle publish fires
	// only if the generation is unchanged when the delay elapses.
	toggleGen map[string]uint64

	// discovery session state
	discovering  bool
	discoveryGen uint64
	discovered   map[string]string // id -> address

	events      chan event
	writes      chan writeJob
	done        chan struct{}
	wg          sync.WaitGroup
	cancelPush  func()
	started     bool
	closed      bool
	lifecycleMu sync.Mutex

	// now is stubbed in tests.
	now func() time.Time
}

// New creates a reconciliation engine. The recorder may be nil; pass nil
// logger to discard log output.
func New(cfg Config, store registry.Store, channel Channel, recorder StateRecorder, logger Logger) *Engine {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Engine{
		cfg:        cfg.normalized(),
		store:      store,
		channel:    channel,
		recorder:   recorder,
		logger:     logger,
		lights:     make(map[string]device.Light),
		lastSeen:   make(map[string]time.Time),
		attached:   make(map[string]bool),
		toggleGen:  make(map[string]uint64),
		discovered: make(map[string]string),
		events:     make(chan event, eventQueueSize),
		writes:     make(chan writeJob, writeQueueSize),
		done:       make(chan struct{}),
		now:        time.Now,
	}
}

// Start loads the owner's lights from the registry, subscribes to their
// topics, attaches the registry change push, and starts the event loop,
// persist loop, and watchdog.
//
// A registry failure during the initial load is logged and treated as an
// empty collection; devices arrive later via the change push or inbound
// messages.
func (e *Engine) Start(ctx context.Context) error {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.started {
		return ErrAlreadyStarted
	}

	lights, err := e.store.ListForOwner(ctx, e.cfg.OwnerID)
	if err != nil {
		e.logger.Warn("initial registry load failed, starting empty",
			"owner_id", e.cfg.OwnerID, "error", err)
		lights = nil
	}

	e.mu.Lock()
	e.lights = make(map[string]device.Light, len(lights))
	for _, l := range lights {
		e.lights[l.ID] = l
	}
	e.mu.Unlock()

	for _, l := range lights {
		e.attachDevice(l.ID)
	}

	e.channel.SetOnConnect(func() {
		e.mu.Lock()
		e.connected = true
		e.mu.Unlock()
		e.logger.Info("channel connected")
	})
	e.channel.SetOnDisconnect(func(err error) {
		e.mu.Lock()
		e.connected = false
		e.mu.Unlock()
		e.logger.Warn("channel disconnected", "error", err)
	})

	e.cancelPush = e.store.Subscribe(e.cfg.OwnerID, func(pushed []device.Light) {
		e.enqueue(registryPushEvent{lights: pushed})
	})

	e.wg.Add(3)
	go e.runLoop()
	go e.persistLoop()
	go e.watchdog()

	e.started = true
	e.logger.Info("engine started",
		"owner_id", e.cfg.OwnerID, "lights", len(lights))
	return nil
}

// Close stops the event loop, persist loop, and watchdog, cancels the
// registry push, and unsubscribes all device topics. It blocks until
// all three goroutines have exited (queued registry writes are drained
// first), so a successor engine may attach as soon as it returns.
// Idempotent.
func (e *Engine) Close() error {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	if !e.started {
		return nil
	}

	close(e.done)
	e.wg.Wait()

	if e.cancelPush != nil {
		e.cancelPush()
	}

	e.mu.Lock()
	ids := make([]string, 0, len(e.attached))
	for id := range e.attached {
		ids = append(ids, id)
	}
	e.mu.Unlock()
	for _, id := range ids {
		e.detachDevice(id)
	}

	e.logger.Info("engine stopped", "owner_id", e.cfg.OwnerID)
	return nil
}

// attachDevice subscribes the device's state and telemetry topics and
// requests an immediate status report.
func (e *Engine) attachDevice(id string) {
	e.mu.Lock()
	if e.attached[id] {
		e.mu.Unlock()
		return
	}
	e.attached[id] = true
	e.mu.Unlock()

	subs := []struct {
		topic   string
		handler mqtt.MessageHandler
	}{
		{e.topics.StateResult(id), e.onStateMessage},
		{e.topics.LWT(id), e.onLWTMessage},
		{e.topics.Heartbeat(id), e.onHeartbeatMessage},
	}
	for _, s := range subs {
		if err := e.channel.Subscribe(s.topic, e.cfg.QoS, s.handler); err != nil {
			e.logger.Warn("device subscribe failed",
				"device_id", id, "topic", s.topic, "error", err)
		}
	}
	e.requestStatus(id)
}

// detachDevice releases the device's topic subscriptions.
func (e *Engine) detachDevice(id string) {
	e.mu.Lock()
	delete(e.attached, id)
	e.mu.Unlock()

	for _, topic := range []string{
		e.topics.StateResult(id),
		e.topics.LWT(id),
		e.topics.Heartbeat(id),
	} {
		if err := e.channel.Unsubscribe(topic); err != nil {
			e.logger.Debug("device unsubscribe failed",
				"device_id", id, "topic", topic, "error", err)
		}
	}
}

// requestStatus asks a device for a full status report.
func (e *Engine) requestStatus(id string) {
	topic := e.topics.StatusRequest(id)
	if err := e.channel.Publish(topic, []byte(mqtt.PayloadStatusAll), e.cfg.QoS, false); err != nil {
		e.logger.Warn("status request failed", "device_id", id, "error", err)
	}
}

// writeJob is one queued registry write. A non-nil create is a Create
// for a newly seen device; otherwise it is a partial Update.
type writeJob struct {
	create *device.Light
	id     string
	fields registry.Fields
}

// persist queues a registry update for the device without blocking the
// caller. Writes reach the store in issue order through the single
// persist loop. Failures are logged; the in-memory state is already
// applied and a later signal re-converges the store.
func (e *Engine) persist(id string, fields registry.Fields) {
	if fields.IsZero() {
		return
	}
	e.enqueueWrite(writeJob{id: id, fields: fields})
}

// createRecord queues a registry create for a newly seen device. Going
// through the same queue as persist guarantees the create lands before
// any update issued after it, so the store never has to heal a missing
// record for an id the engine already synthesized.
func (e *Engine) createRecord(l device.Light) {
	e.enqueueWrite(writeJob{create: &l, id: l.ID})
}

// enqueueWrite hands a job to the persist loop. A full queue drops the
// write; blocking here would stall reconciliation or a command caller.
func (e *Engine) enqueueWrite(job writeJob) {
	select {
	case e.writes <- job:
	default:
		e.logger.Warn("write queue full, dropping registry write",
			"device_id", job.id)
	}
}

// persistLoop is the single consumer of the write queue. On shutdown
// it drains writes already queued before exiting, so state applied in
// memory before Close is not silently lost.
func (e *Engine) persistLoop() {
	defer e.wg.Done()
	for {
		select {
		case job := <-e.writes:
			e.runWrite(job)
		case <-e.done:
			for {
				select {
				case job := <-e.writes:
					e.runWrite(job)
				default:
					return
				}
			}
		}
	}
}

// runWrite executes one registry write with a bounded timeout.
func (e *Engine) runWrite(job writeJob) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if job.create != nil {
		if err := e.store.Create(ctx, *job.create); err != nil {
			e.logger.Warn("registry create failed", "device_id", job.id, "error", err)
		}
		return
	}
	if err := e.store.Update(ctx, e.cfg.OwnerID, job.id, job.fields); err != nil {
		e.logger.Warn("registry update failed", "device_id", job.id, "error", err)
	}
}

// record forwards a reconciled state to the recorder, if one is set.
// Callers must not hold e.mu when the recorder may block; the light
// value is copied out first.
func (e *Engine) record(l device.Light) {
	if e.recorder == nil {
		return
	}
	e.recorder.WriteLightState(l.ID, l.On, l.Online, l.Brightness)
}

// recordCommand forwards an outbound device command to the recorder,
// if one is set.
func (e *Engine) recordCommand(id, command, payload string) {
	if e.recorder == nil {
		return
	}
	e.recorder.WriteCommand(id, command, payload)
}

// Lights returns a snapshot of the current collection, sorted by id.
func (e *Engine) Lights() []device.Light {
	e.mu.RLock()
	out := make([]device.Light, 0, len(e.lights))
	for _, l := range e.lights {
		out = append(out, l)
	}
	e.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Light returns a copy of one device's current state.
// Returns device.ErrNotFound for an unknown id.
func (e *Engine) Light(id string) (device.Light, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	l, ok := e.lights[id]
	if !ok {
		return device.Light{}, fmt.Errorf("%w: %s", device.ErrNotFound, id)
	}
	return l, nil
}

// Connected reports the channel connection state as of the last
// connect/disconnect callback.
func (e *Engine) Connected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}
