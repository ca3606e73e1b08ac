// Package memory implements the in-process, snapshot-aware object store:
// a single-process stand-in reproducing the copy-on-write versioning,
// locking and consistency contract of a clustered object store, so code
// written against the real cluster's client API can be tested against it
// with identical observable behavior.
//
// A Cluster owns named Pools; a Client connects to the cluster and opens
// IoCtx handles bound to one pool and namespace. All verbs execute
// synchronously on the caller's goroutine; the async completion adapter in
// pkg/rados wraps them for callers that need completions.
package memory

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/marmos91/radosmem/internal/logger"
	"github.com/marmos91/radosmem/pkg/metrics"
	"github.com/marmos91/radosmem/pkg/omap"
	omapmemory "github.com/marmos91/radosmem/pkg/omap/memory"
	"github.com/marmos91/radosmem/pkg/rados"
)

// Option configures a Cluster.
type Option func(*Cluster)

// WithClassHandler injects the class-method dispatch collaborator used by
// the exec verb. Without one, exec fails with CodeNotSupported.
func WithClassHandler(h rados.ClassHandler) Option {
	return func(c *Cluster) { c.classHandler = h }
}

// WithOmapFactory selects the omap backend created for each pool. The
// default is the in-memory backend.
func WithOmapFactory(factory func() (omap.Store, error)) Option {
	return func(c *Cluster) { c.omapFactory = factory }
}

// WithMetrics attaches Prometheus instrumentation. nil disables it.
func WithMetrics(m *metrics.StoreMetrics) Option {
	return func(c *Cluster) { c.metrics = m }
}

// Cluster is the top-level container: named pools plus the collaborators
// shared by every pool. It is safe for concurrent use.
type Cluster struct {
	mu           sync.RWMutex
	pools        map[string]*Pool
	classHandler rados.ClassHandler
	omapFactory  func() (omap.Store, error)
	metrics      *metrics.StoreMetrics
}

// NewCluster creates an empty cluster.
func NewCluster(opts ...Option) *Cluster {
	c := &Cluster{
		pools: make(map[string]*Pool),
		omapFactory: func() (omap.Store, error) {
			return omapmemory.NewMemoryStore(), nil
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreatePool creates a named pool. Creating an existing pool fails with
// CodeAlreadyExists.
func (c *Cluster) CreatePool(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pools[name]; ok {
		return &rados.Error{Code: rados.CodeAlreadyExists, Op: "pool_create", Object: name}
	}

	omaps, err := c.omapFactory()
	if err != nil {
		logger.Error("pool_create %s: omap backend: %v", name, err)
		return &rados.Error{Code: rados.CodeIOError, Op: "pool_create", Object: name}
	}

	c.pools[name] = newPool(name, omaps, c.metrics)
	logger.Debug("pool_create %s", name)
	return nil
}

// DeletePool removes a named pool and closes its omap backend.
func (c *Cluster) DeletePool(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pool, ok := c.pools[name]
	if !ok {
		return &rados.Error{Code: rados.CodeNotFound, Op: "pool_delete", Object: name}
	}
	delete(c.pools, name)

	if err := pool.omaps.Close(); err != nil {
		logger.Warn("pool_delete %s: closing omap backend: %v", name, err)
	}
	logger.Debug("pool_delete %s", name)
	return nil
}

// Pool returns the named pool, or nil.
func (c *Cluster) Pool(name string) *Pool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pools[name]
}

// Connect returns a new client connection. Each client carries its own
// instance id and fencing state.
func (c *Cluster) Connect() *Client {
	return &Client{
		cluster:  c,
		instance: uuid.NewString(),
	}
}

// Client is one connection to the cluster. Blocklisting a client fences
// every IoCtx opened through it: all verbs fail with CodeFenced before any
// other check.
type Client struct {
	cluster  *Cluster
	instance string
	fenced   atomic.Bool
}

// Instance returns the client's unique instance id.
func (c *Client) Instance() string {
	return c.instance
}

// Blocklist fences the client.
func (c *Client) Blocklist() {
	c.fenced.Store(true)
	logger.Info("client %s blocklisted", c.instance)
}

// Fenced reports whether the client is blocklisted.
func (c *Client) Fenced() bool {
	return c.fenced.Load()
}

// IoCtx opens an I/O context on the named pool and namespace. The context
// starts with a head read view and an empty snapshot context.
func (c *Client) IoCtx(pool, namespace string) (*IoCtx, error) {
	p := c.cluster.Pool(pool)
	if p == nil {
		return nil, &rados.Error{Code: rados.CodeNotFound, Op: "ioctx_create", Object: pool}
	}
	return &IoCtx{
		client:    c,
		pool:      p,
		namespace: namespace,
		snapRead:  rados.NoSnap,
	}, nil
}
