package registry

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lumenhaus/lumen-core/internal/device"
	"github.com/lumenhaus/lumen-core/internal/infrastructure/database"

	_ "github.com/lumenhaus/lumen-core/migrations"
)

const testOwner = "owner-1"

// openTestStore creates a migrated SQLite store backed by a temp file.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	return NewSQLiteStore(db.DB)
}

// waitFor polls until cond returns true or the deadline passes.
// Used for change-push assertions, which are delivered asynchronously.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestCreateAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, device.New("l1", "Kitchen", testOwner)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	lights, err := store.ListForOwner(ctx, testOwner)
	if err != nil {
		t.Fatalf("ListForOwner() error = %v", err)
	}
	if len(lights) != 1 {
		t.Fatalf("expected 1 light, got %d", len(lights))
	}

	got := lights[0]
	if got.ID != "l1" || got.Name != "Kitchen" {
		t.Errorf("light = %+v, want id=l1 name=Kitchen", got)
	}
	if got.On || got.Online {
		t.Error("new light should be off and offline")
	}
	if got.Brightness != device.DefaultBrightness {
		t.Errorf("brightness = %d, want %d", got.Brightness, device.DefaultBrightness)
	}
}

func TestCreate_ExistingNotClobbered(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, device.New("l1", "Kitchen", testOwner)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Update(ctx, testOwner, "l1", Fields{On: Bool(true), Brightness: Int(80)}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// A forgotten second create must not reset the record.
	if err := store.Create(ctx, device.New("l1", "Other Name", testOwner)); err != nil {
		t.Fatalf("second Create() error = %v", err)
	}

	lights, _ := store.ListForOwner(ctx, testOwner)
	if len(lights) != 1 {
		t.Fatalf("expected 1 light, got %d", len(lights))
	}
	if !lights[0].On || lights[0].Brightness != 80 || lights[0].Name != "Kitchen" {
		t.Errorf("existing record was clobbered: %+v", lights[0])
	}
}

func TestCreate_Invalid(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, device.New("", "Kitchen", testOwner)); !errors.Is(err, device.ErrInvalidID) {
		t.Errorf("Create(blank id) = %v, want ErrInvalidID", err)
	}
	if err := store.Create(ctx, device.New("l1", "", testOwner)); !errors.Is(err, device.ErrInvalidName) {
		t.Errorf("Create(blank name) = %v, want ErrInvalidName", err)
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, device.New("l1", "Kitchen", testOwner)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Update(ctx, testOwner, "l1", Fields{On: Bool(true), Brightness: Int(80)}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// Update a single field; the others must be untouched.
	if err := store.Update(ctx, testOwner, "l1", Fields{Name: String("Kitchen Main")}); err != nil {
		t.Fatalf("Update(name only) error = %v", err)
	}

	lights, _ := store.ListForOwner(ctx, testOwner)
	got := lights[0]
	if got.Name != "Kitchen Main" {
		t.Errorf("name = %q, want %q", got.Name, "Kitchen Main")
	}
	if !got.On || got.Brightness != 80 {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestUpdate_ZeroValuesWritten(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	light := device.New("l1", "Kitchen", testOwner)
	light.On = true
	light.Brightness = 80
	if err := store.Create(ctx, light); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Explicit false/0 must be written; they are present, not absent.
	if err := store.Update(ctx, testOwner, "l1", Fields{On: Bool(false), Brightness: Int(0)}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	lights, _ := store.ListForOwner(ctx, testOwner)
	if lights[0].On || lights[0].Brightness != 0 {
		t.Errorf("explicit zero fields not written: %+v", lights[0])
	}
}

func TestUpdate_CreateOnMissing(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// Update targets an id with no backing record: the store must heal
	// by creating a minimal record and then applying the update.
	if err := store.Update(ctx, testOwner, "ghost", Fields{On: Bool(true), Online: Bool(true)}); err != nil {
		t.Fatalf("Update(missing) error = %v", err)
	}

	lights, err := store.ListForOwner(ctx, testOwner)
	if err != nil {
		t.Fatalf("ListForOwner() error = %v", err)
	}
	if len(lights) != 1 {
		t.Fatalf("expected healed record, got %d lights", len(lights))
	}

	got := lights[0]
	if got.ID != "ghost" || !got.On || !got.Online {
		t.Errorf("healed record = %+v, want on+online ghost", got)
	}
	if got.Brightness != device.DefaultBrightness {
		t.Errorf("healed brightness = %d, want default %d", got.Brightness, device.DefaultBrightness)
	}
}

func TestUpdate_BrightnessClamped(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, device.New("l1", "Kitchen", testOwner)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Update(ctx, testOwner, "l1", Fields{Brightness: Int(150)}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	lights, _ := store.ListForOwner(ctx, testOwner)
	if lights[0].Brightness != device.MaxBrightness {
		t.Errorf("brightness = %d, want clamped %d", lights[0].Brightness, device.MaxBrightness)
	}
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, device.New("l1", "Kitchen", testOwner)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Delete(ctx, testOwner, "l1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	lights, _ := store.ListForOwner(ctx, testOwner)
	if len(lights) != 0 {
		t.Errorf("expected no lights after delete, got %d", len(lights))
	}

	if err := store.Delete(ctx, testOwner, "l1"); !errors.Is(err, device.ErrNotFound) {
		t.Errorf("Delete(missing) = %v, want ErrNotFound", err)
	}
}

func TestOwnerScoping(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, device.New("l1", "Kitchen", "owner-a")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Create(ctx, device.New("l1", "Garage", "owner-b")); err != nil {
		t.Fatalf("Create() same id different owner error = %v", err)
	}

	lightsA, _ := store.ListForOwner(ctx, "owner-a")
	lightsB, _ := store.ListForOwner(ctx, "owner-b")
	if len(lightsA) != 1 || len(lightsB) != 1 {
		t.Fatalf("owner scoping broken: a=%d b=%d", len(lightsA), len(lightsB))
	}
	if lightsA[0].Name != "Kitchen" || lightsB[0].Name != "Garage" {
		t.Errorf("cross-owner leakage: a=%+v b=%+v", lightsA[0], lightsB[0])
	}
}

func TestSubscribe_PushOnMutation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var (
		mu     sync.Mutex
		pushes [][]device.Light
	)
	cancel := store.Subscribe(testOwner, func(lights []device.Light) {
		mu.Lock()
		pushes = append(pushes, lights)
		mu.Unlock()
	})
	defer cancel()

	if err := store.Create(ctx, device.New("l1", "Kitchen", testOwner)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(pushes) >= 1
	})

	mu.Lock()
	last := pushes[len(pushes)-1]
	mu.Unlock()
	if len(last) != 1 || last[0].ID != "l1" {
		t.Errorf("push = %+v, want full list with l1", last)
	}

	// Deletion pushes the emptied list.
	if err := store.Delete(ctx, testOwner, "l1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(pushes) >= 2 && len(pushes[len(pushes)-1]) == 0
	})
}

func TestSubscribe_Cancel(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var (
		mu    sync.Mutex
		count int
	)
	cancel := store.Subscribe(testOwner, func([]device.Light) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	cancel()

	if err := store.Create(ctx, device.New("l1", "Kitchen", testOwner)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Give any stray delivery time to land.
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("cancelled subscriber received %d pushes", count)
	}
}

func TestSubscribe_OtherOwnerNotNotified(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var (
		mu    sync.Mutex
		count int
	)
	cancel := store.Subscribe("owner-b", func([]device.Light) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	defer cancel()

	if err := store.Create(ctx, device.New("l1", "Kitchen", "owner-a")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("owner-b subscriber received %d pushes for owner-a mutation", count)
	}
}
