package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/radosmem/internal/logger"
	"github.com/marmos91/radosmem/pkg/config"
	"github.com/marmos91/radosmem/pkg/metrics"
	"github.com/marmos91/radosmem/pkg/rados"
	"github.com/marmos91/radosmem/pkg/rados/memory"
)

// seedDemoObjects writes a small object history into the first pool so an
// operator poking at a fresh instance has something to look at: a head
// object, a frozen snapshot revision, and omap plus xattr metadata.
func seedDemoObjects(client *memory.Client, pool string) error {
	ioctx, err := client.IoCtx(pool, "")
	if err != nil {
		return fmt.Errorf("opening ioctx on %q: %w", pool, err)
	}

	// write_full refuses to materialize missing objects, so the demo
	// object is written into existence first.
	if err := ioctx.Write("greeting", []byte("hello from radosmem\n"), 0); err != nil {
		return fmt.Errorf("writing greeting: %w", err)
	}

	snap, err := ioctx.SelfmanagedSnapCreate()
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	if err := ioctx.SetSnapContext(rados.SnapContext{Seq: snap, Snaps: []rados.SnapID{snap}}); err != nil {
		return fmt.Errorf("setting snap context: %w", err)
	}

	// This write forks the object: the pre-snapshot bytes stay readable
	// through the snapshot id.
	if err := ioctx.WriteFull("greeting", []byte("hello again, now versioned\n")); err != nil {
		return fmt.Errorf("rewriting greeting: %w", err)
	}

	if err := ioctx.OmapSet("greeting", map[string][]byte{
		"creator": []byte("radosmem"),
		"purpose": []byte("demo"),
	}); err != nil {
		return fmt.Errorf("setting omap: %w", err)
	}
	if err := ioctx.SetXattr("greeting", "version", []byte("2")); err != nil {
		return fmt.Errorf("setting xattr: %w", err)
	}

	logger.Info("seeded demo object %q in pool %q (snapshot %d)", "greeting", pool, snap)
	return nil
}

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	logLevel := flag.String("log-level", "", "Log level override (DEBUG, INFO, WARN, ERROR)")
	seed := flag.Bool("seed", true, "Seed a demo object into the first pool")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	logger.SetLevel(cfg.Logging.Level)
	if cfg.Logging.Output == "stderr" {
		logger.SetOutput(os.Stderr)
	}

	fmt.Println("radosmem - in-process snapshot-aware object store")
	logger.Info("Log level set to: %s", cfg.Logging.Level)
	logger.Info("Omap backend: %s", cfg.Omap.Type)

	cluster, err := config.NewCluster(cfg)
	if err != nil {
		log.Fatalf("Failed to build cluster: %v", err)
	}
	for _, pool := range cfg.Pools {
		logger.Info("Pool ready: %s", pool.Name)
	}

	client := cluster.Connect()
	logger.Info("Client instance: %s", client.Instance())

	if *seed && len(cfg.Pools) > 0 {
		if err := seedDemoObjects(client, cfg.Pools[0].Name); err != nil {
			log.Fatalf("Failed to seed demo objects: %v", err)
		}
	}

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
			logger.Info("Metrics endpoint listening on %s", cfg.Metrics.Listen)
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				logger.Error("Metrics endpoint failed: %v", err)
			}
		}()
	}

	// Block until interrupted; the store is in-process, so there is
	// nothing to drain on the way out.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received %s, shutting down", sig)

	for _, pool := range cfg.Pools {
		if err := cluster.DeletePool(pool.Name); err != nil {
			logger.Warn("Deleting pool %s: %v", pool.Name, err)
		}
	}
}
