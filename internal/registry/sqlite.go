package registry

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumenhaus/lumen-core/internal/device"
)

// Logger defines the logging interface used by the store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// healedName is the display name given to records created by the
// update-on-missing recovery path, where no user-supplied name exists.
const healedName = "New Light"

// SQLiteStore implements Store using SQLite.
//
// All public methods are safe for concurrent use. Change notifications
// are dispatched from a single goroutine per mutation, serialized by an
// internal mutex so subscribers observe snapshots in mutation order.
type SQLiteStore struct {
	db     *sql.DB
	logger Logger

	// subscribers maps ownerID -> subscription token -> callback.
	subscribers map[string]map[string]func([]device.Light)
	subMu       sync.RWMutex

	// notifyMu serializes snapshot deliveries so pushes arrive in
	// mutation order.
	notifyMu sync.Mutex
}

// NewSQLiteStore creates a new SQLite-backed store.
// The db parameter should be an open SQLite connection with the lights
// schema migrated.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{
		db:          db,
		logger:      noopLogger{},
		subscribers: make(map[string]map[string]func([]device.Light)),
	}
}

// SetLogger sets the logger for the store.
func (s *SQLiteStore) SetLogger(logger Logger) {
	s.logger = logger
}

// ListForOwner retrieves all lights registered to an owner, ordered by name.
func (s *SQLiteStore) ListForOwner(ctx context.Context, ownerID string) ([]device.Light, error) {
	query := `
		SELECT id, name, is_on, is_online, brightness, owner_id
		FROM lights
		WHERE owner_id = ?
		ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying lights: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only result set

	var lights []device.Light
	for rows.Next() {
		var l device.Light
		if err := rows.Scan(&l.ID, &l.Name, &l.On, &l.Online, &l.Brightness, &l.OwnerID); err != nil {
			return nil, fmt.Errorf("scanning light: %w", err)
		}
		lights = append(lights, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lights: %w", err)
	}
	return lights, nil
}

// Create inserts a new light record. An existing record with the same
// owner and id is left untouched (no clobbering, no error).
func (s *SQLiteStore) Create(ctx context.Context, light device.Light) error {
	if err := device.Validate(&light); err != nil {
		return err
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO lights (owner_id, id, name, is_on, is_online, brightness, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, id) DO NOTHING`

	res, err := s.db.ExecContext(ctx, query,
		light.OwnerID, light.ID, light.Name, light.On, light.Online, light.Brightness, now, now)
	if err != nil {
		return fmt.Errorf("creating light: %w", err)
	}

	if n, raErr := res.RowsAffected(); raErr == nil && n == 0 {
		s.logger.Debug("create skipped, record exists", "id", light.ID, "owner", light.OwnerID)
		return nil
	}

	s.logger.Info("light created", "id", light.ID, "owner", light.OwnerID)
	s.notify(light.OwnerID)
	return nil
}

// Update applies a partial update. If the target record does not exist,
// a minimal default record is created first and the update re-applied.
func (s *SQLiteStore) Update(ctx context.Context, ownerID, id string, fields Fields) error {
	if fields.IsZero() {
		return nil
	}

	n, err := s.applyUpdate(ctx, ownerID, id, fields)
	if err != nil {
		return err
	}

	if n == 0 {
		// Self-healing: the update targeted a missing record. Create a
		// minimal one, then re-apply so no field of the caller's intent
		// is lost.
		s.logger.Warn("update targeted missing record, creating", "id", id, "owner", ownerID)

		name := healedName
		if fields.Name != nil {
			name = *fields.Name
		}
		healed := device.New(id, name, ownerID)
		if err := s.Create(ctx, healed); err != nil {
			return fmt.Errorf("healing missing record: %w", err)
		}

		if _, err := s.applyUpdate(ctx, ownerID, id, fields); err != nil {
			return err
		}
	}

	s.logger.Debug("light updated", "id", id, "owner", ownerID)
	s.notify(ownerID)
	return nil
}

// applyUpdate executes the partial UPDATE and reports rows affected.
func (s *SQLiteStore) applyUpdate(ctx context.Context, ownerID, id string, fields Fields) (int64, error) {
	var (
		sets []string
		args []any
	)
	if fields.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *fields.Name)
	}
	if fields.On != nil {
		sets = append(sets, "is_on = ?")
		args = append(args, *fields.On)
	}
	if fields.Online != nil {
		sets = append(sets, "is_online = ?")
		args = append(args, *fields.Online)
	}
	if fields.Brightness != nil {
		sets = append(sets, "brightness = ?")
		args = append(args, device.ClampBrightness(*fields.Brightness))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC())

	query := fmt.Sprintf("UPDATE lights SET %s WHERE owner_id = ? AND id = ?", strings.Join(sets, ", "))
	args = append(args, ownerID, id)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("updating light: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("updating light: %w", err)
	}
	return n, nil
}

// Delete removes a light record.
func (s *SQLiteStore) Delete(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM lights WHERE owner_id = ? AND id = ?", ownerID, id)
	if err != nil {
		return fmt.Errorf("deleting light: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting light: %w", err)
	}
	if n == 0 {
		return device.ErrNotFound
	}

	s.logger.Info("light deleted", "id", id, "owner", ownerID)
	s.notify(ownerID)
	return nil
}

// Subscribe registers a change callback for an owner's records.
func (s *SQLiteStore) Subscribe(ownerID string, fn func(lights []device.Light)) (cancel func()) {
	token := uuid.NewString()

	s.subMu.Lock()
	if s.subscribers[ownerID] == nil {
		s.subscribers[ownerID] = make(map[string]func([]device.Light))
	}
	s.subscribers[ownerID][token] = fn
	s.subMu.Unlock()

	s.logger.Debug("change subscription attached", "owner", ownerID, "token", token)

	return func() {
		s.subMu.Lock()
		delete(s.subscribers[ownerID], token)
		s.subMu.Unlock()
	}
}

// notify pushes the owner's full current list to all subscribers.
// Delivery runs on a background goroutine so mutating calls do not block
// on subscriber work; deliveries are serialized to preserve order.
func (s *SQLiteStore) notify(ownerID string) {
	s.subMu.RLock()
	n := len(s.subscribers[ownerID])
	s.subMu.RUnlock()
	if n == 0 {
		return
	}

	go func() {
		s.notifyMu.Lock()
		defer s.notifyMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		lights, err := s.ListForOwner(ctx, ownerID)
		if err != nil {
			s.logger.Error("change push list failed", "owner", ownerID, "error", err)
			return
		}

		s.subMu.RLock()
		fns := make([]func([]device.Light), 0, len(s.subscribers[ownerID]))
		for _, fn := range s.subscribers[ownerID] {
			fns = append(fns, fn)
		}
		s.subMu.RUnlock()

		for _, fn := range fns {
			fn(lights)
		}
	}()
}
