package config

import (
	"fmt"

	"github.com/marmos91/radosmem/pkg/metrics"
	"github.com/marmos91/radosmem/pkg/omap"
	omapbadger "github.com/marmos91/radosmem/pkg/omap/badger"
	omapmemory "github.com/marmos91/radosmem/pkg/omap/memory"
	"github.com/marmos91/radosmem/pkg/rados/memory"
)

// NewOmapFactory returns the omap backend constructor selected by the
// configuration. The factory is invoked once per pool.
func NewOmapFactory(cfg *OmapConfig) (func() (omap.Store, error), error) {
	switch cfg.Type {
	case "memory":
		return func() (omap.Store, error) {
			return omapmemory.NewMemoryStore(), nil
		}, nil
	case "badger":
		return func() (omap.Store, error) {
			return omapbadger.NewBadgerStore()
		}, nil
	default:
		return nil, fmt.Errorf("unknown omap backend type: %q", cfg.Type)
	}
}

// NewCluster builds a cluster from the configuration: omap backend,
// optional metrics instrumentation, and the configured pools.
func NewCluster(cfg *Config) (*memory.Cluster, error) {
	omapFactory, err := NewOmapFactory(&cfg.Omap)
	if err != nil {
		return nil, err
	}

	opts := []memory.Option{memory.WithOmapFactory(omapFactory)}
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		opts = append(opts, memory.WithMetrics(metrics.NewStoreMetrics()))
	}

	cluster := memory.NewCluster(opts...)
	for _, pool := range cfg.Pools {
		if err := cluster.CreatePool(pool.Name); err != nil {
			return nil, fmt.Errorf("creating pool %q: %w", pool.Name, err)
		}
	}
	return cluster, nil
}
