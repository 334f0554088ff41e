package store

import "sync/atomic"

// Observer defines hooks invoked after committed store mutations.
// Implementations can use these to log operations, collect metrics, or
// assert on activity in tests.
type Observer interface {
	// OnInsert is called after a record is inserted.
	OnInsert(typeName, recID string)

	// OnUpdate is called after a record is updated.
	OnUpdate(typeName, recID string)

	// OnRemove is called after a record is removed.
	OnRemove(typeName, recID string)

	// OnReset is called after the store is reset, with the affected types.
	OnReset(typeNames []string)
}

// NoopObserver is a no-op implementation of Observer.
type NoopObserver struct{}

func (n *NoopObserver) OnInsert(typeName, recID string) {}
func (n *NoopObserver) OnUpdate(typeName, recID string) {}
func (n *NoopObserver) OnRemove(typeName, recID string) {}
func (n *NoopObserver) OnReset(typeNames []string)      {}

// CountingObserver tallies store mutations. Counters use atomic operations
// so the observer is safe under concurrent readers of distinct stores.
type CountingObserver struct {
	inserts atomic.Int64
	updates atomic.Int64
	removes atomic.Int64
	resets  atomic.Int64
}

func (c *CountingObserver) OnInsert(typeName, recID string) { c.inserts.Add(1) }
func (c *CountingObserver) OnUpdate(typeName, recID string) { c.updates.Add(1) }
func (c *CountingObserver) OnRemove(typeName, recID string) { c.removes.Add(1) }
func (c *CountingObserver) OnReset(typeNames []string)      { c.resets.Add(1) }

// Inserts returns the number of observed inserts.
func (c *CountingObserver) Inserts() int64 { return c.inserts.Load() }

// Updates returns the number of observed updates.
func (c *CountingObserver) Updates() int64 { return c.updates.Load() }

// Removes returns the number of observed removes.
func (c *CountingObserver) Removes() int64 { return c.removes.Load() }

// Resets returns the number of observed resets.
func (c *CountingObserver) Resets() int64 { return c.resets.Load() }
