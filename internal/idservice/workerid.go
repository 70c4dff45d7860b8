package idservice

import (
	"fmt"
	"sync"
	"time"

	"github.com/idbuilder/worker/internal/apperr"
)

// DefaultLeaseTTL is the worker-ID lease lifetime used when none is
// specified.
const DefaultLeaseTTL = 60 * time.Second

// workerLease records who holds a worker ID and until when.
type workerLease struct {
	holder    string
	expiresAt time.Time
}

// configLeases is the round-robin lease table for one snowflake config.
type configLeases struct {
	maxWorkerID uint32 // inclusive upper bound
	cursor      uint32
	leases      map[uint32]workerLease
}

// WorkerIDAllocator hands out worker IDs bounded to [0, 2^worker_bits-1] for
// each snowflake config, round-robin over a time-bounded lease table.
// Leases are held only in memory: a process restart releases every lease
// immediately rather than replaying a durable log, trading lease durability
// for the simplicity the reference implementation itself relies on (its
// lease table is also process-local).
type WorkerIDAllocator struct {
	mu      sync.Mutex
	configs map[string]*configLeases
}

func NewWorkerIDAllocator() *WorkerIDAllocator {
	return &WorkerIDAllocator{configs: make(map[string]*configLeases)}
}

// Lease acquires a worker ID for holder under the named config, bounded by
// maxWorkerID (inclusive). It scans round-robin from the last cursor
// position, reclaiming any lease that has expired, and fails with
// apperr.Internal("exhausted") if every slot in [0, maxWorkerID] is
// currently held by a live lease.
func (a *WorkerIDAllocator) Lease(configName, holder string, maxWorkerID uint32, ttl time.Duration) (uint32, time.Time, error) {
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	cl, ok := a.configs[configName]
	if !ok {
		cl = &configLeases{maxWorkerID: maxWorkerID, leases: make(map[uint32]workerLease)}
		a.configs[configName] = cl
	}
	cl.maxWorkerID = maxWorkerID

	now := time.Now()
	span := cl.maxWorkerID + 1
	for i := uint32(0); i < span; i++ {
		id := (cl.cursor + i) % span
		if existing, held := cl.leases[id]; held && existing.expiresAt.After(now) {
			continue
		}
		expiresAt := now.Add(ttl)
		cl.leases[id] = workerLease{holder: holder, expiresAt: expiresAt}
		cl.cursor = (id + 1) % span
		return id, expiresAt, nil
	}

	return 0, time.Time{}, apperr.Internal("exhausted")
}

// Release gives back a worker ID early, e.g. on graceful client shutdown.
// It is a no-op if the ID is not currently held by holder.
func (a *WorkerIDAllocator) Release(configName string, workerID uint32, holder string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	cl, ok := a.configs[configName]
	if !ok {
		return
	}
	if existing, held := cl.leases[workerID]; held && existing.holder == holder {
		delete(cl.leases, workerID)
	}
}

// Renew extends an existing lease's expiry, rejecting renewal if the lease
// was reclaimed or never existed.
func (a *WorkerIDAllocator) Renew(configName string, workerID uint32, holder string, ttl time.Duration) (time.Time, error) {
	if ttl <= 0 {
		ttl = DefaultLeaseTTL
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	cl, ok := a.configs[configName]
	if !ok {
		return time.Time{}, apperr.NotFound(fmt.Sprintf("no leases for config %q", configName))
	}
	existing, held := cl.leases[workerID]
	if !held || existing.holder != holder || existing.expiresAt.Before(time.Now()) {
		return time.Time{}, apperr.NotFound(fmt.Sprintf("lease for worker id %d not held by %q", workerID, holder))
	}
	expiresAt := time.Now().Add(ttl)
	cl.leases[workerID] = workerLease{holder: holder, expiresAt: expiresAt}
	return expiresAt, nil
}
