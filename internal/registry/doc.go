// Package registry provides the durable store of registered lights.
//
// The registry is the system of record for light identity and the last
// persisted power/liveness/brightness state. It is scoped by owning
// principal: every query and mutation names an owner, and change
// subscriptions deliver only that owner's records.
//
// # Architecture
//
//   - Store: the persistence interface consumed by the engine
//   - Fields: pointer-presence partial update (nil field = leave untouched)
//   - SQLiteStore: the SQLite-backed implementation with change push
//
// # Change subscriptions
//
// Subscribe registers a callback that receives the owner's full current
// list after every mutation touching that owner. Deliveries are
// full-replace snapshots: subscribers are expected to replace their view
// wholesale rather than merge. Delivery is asynchronous with respect to
// the mutating call.
//
// # Self-healing updates
//
// An Update that targets an id with no backing record first creates a
// minimal default record and then applies the update. Callers therefore
// never need to distinguish "record missing" from "record stale".
//
// # Usage
//
//	store := registry.NewSQLiteStore(db.DB)
//	store.SetLogger(log)
//
//	lights, err := store.ListForOwner(ctx, ownerID)
//
//	cancel := store.Subscribe(ownerID, func(lights []device.Light) {
//	    // full-replace push
//	})
//	defer cancel()
//
//	on := true
//	store.Update(ctx, ownerID, "esp-01", registry.Fields{On: &on})
package registry
