package memory

import (
	"sync"

	"github.com/marmos91/radosmem/pkg/metrics"
	"github.com/marmos91/radosmem/pkg/omap"
	"github.com/marmos91/radosmem/pkg/rados"
)

// Pool owns every object chain in one named pool: the revision chains,
// xattr maps, removal-notification handlers, the omap backend, and the
// pool-wide epoch and snapshot-id counters.
//
// Locking discipline:
//
// mu is the existence lock. Any verb that creates, forks or deletes a
// chain entry holds it exclusively; pure content reads on an existing
// revision hold it shared. Each File carries a second, independent lock
// for its own bytes. The order is always pool lock before File lock, and a
// verb never holds two different Files' locks at once.
//
// The epoch is the optimistic-concurrency token exposed to callers: it is
// pool-wide, monotonic, and advanced under the exclusive lock once per
// mutating verb, linearizing concurrent mutations in lock-acquisition
// order.
type Pool struct {
	name string

	// mu is the existence lock guarding all maps and counters below.
	mu sync.RWMutex

	// files maps each locator to its revision chain, oldest first. A chain,
	// once present, is never empty; it disappears only by full erasure when
	// the last revision is removed.
	files map[rados.Locator][]*File

	// xattrs holds each object's named-attribute map.
	xattrs map[rados.Locator]map[string][]byte

	// handlers holds the removal-notification handlers per locator. Fired
	// and cleared when the object's head is removed.
	handlers map[rados.Locator][]rados.ObjectHandler

	// omaps is the ordered key/value backend for this pool.
	omaps omap.Store

	// epoch is the pool-wide monotonic mutation counter.
	epoch uint64

	// snapID is the self-managed snapshot id counter.
	snapID rados.SnapID

	// snapSeqs is the set of live self-managed snapshot ids.
	snapSeqs map[rados.SnapID]struct{}

	metrics *metrics.StoreMetrics
}

func newPool(name string, omaps omap.Store, m *metrics.StoreMetrics) *Pool {
	return &Pool{
		name:     name,
		files:    make(map[rados.Locator][]*File),
		xattrs:   make(map[rados.Locator]map[string][]byte),
		handlers: make(map[rados.Locator][]rados.ObjectHandler),
		omaps:    omaps,
		snapSeqs: make(map[rados.SnapID]struct{}),
		metrics:  m,
	}
}

// Name returns the pool's name.
func (p *Pool) Name() string {
	return p.name
}

// Epoch returns the current pool epoch.
func (p *Pool) Epoch() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.epoch
}

// head returns the newest revision of the locator's chain, or nil when no
// chain exists. Callers must hold mu.
func (p *Pool) head(loc rados.Locator) *File {
	chain := p.files[loc]
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}

// observe runs after the verb has released its locks (it is always the
// first deferred call), so taking the shared lock here is safe.
func (p *Pool) observe(op string, err error) {
	if p.metrics == nil {
		return
	}
	p.metrics.ObserveOperation(op, rados.ErrorCode(err))

	p.mu.RLock()
	epoch := p.epoch
	p.mu.RUnlock()
	p.metrics.SetPoolEpoch(p.name, epoch)
}
