package main

import (
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cuemby/arraysim/pkg/api"
	"github.com/cuemby/arraysim/pkg/config"
	"github.com/cuemby/arraysim/pkg/housekeeper"
	"github.com/cuemby/arraysim/pkg/log"
	"github.com/cuemby/arraysim/pkg/manager"
	"github.com/cuemby/arraysim/pkg/metrics"
	"github.com/cuemby/arraysim/pkg/registry"
	"github.com/cuemby/arraysim/pkg/storage"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arraysim",
	Short: "Arraysim - simulated storage array fleet",
	Long: `Arraysim runs a fleet of simulated storage array instances, each exposing
a JSON control plane over HTTP and generating synthetic workload, snapshot,
and replication activity for its volumes.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Arraysim version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an array instance",
	Long: `Start one simulated array instance: load or initialize its on-disk
state, resume its volume workers, and serve its control plane over HTTP.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("config", "", "Path to a YAML configuration file")
	serveCmd.Flags().Int("port", 0, "Listen port (0 uses the configured default)")
	serveCmd.Flags().Bool("port-probe", false, "Probe for a free port in the configured range instead of binding exactly")
	serveCmd.Flags().String("data-dir", "", "Instance data directory (defaults to data_instance_<port>)")
	serveCmd.Flags().String("registry-path", "", "Path to the shared cross-instance registry file")
	serveCmd.Flags().Bool("enable-pprof", false, "Enable pprof profiling endpoints on 127.0.0.1:6060")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	explicitDataDir := false
	if p, _ := cmd.Flags().GetInt("port"); p != 0 {
		if cfg.DataDir == config.DefaultDataDir(cfg.Port) {
			cfg.DataDir = config.DefaultDataDir(p)
		}
		cfg.Port = p
	}
	if probe, _ := cmd.Flags().GetBool("port-probe"); probe {
		cfg.PortProbe = true
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.DataDir = dir
		explicitDataDir = true
	}
	if reg, _ := cmd.Flags().GetString("registry-path"); reg != "" {
		cfg.RegistryPath = reg
	}

	if cfg.PortProbe {
		port, err := probeFreePort(config.ProbeRangeStart, config.ProbeRangeEnd)
		if err != nil {
			return fmt.Errorf("probe free port: %w", err)
		}
		cfg.Port = port
		if !explicitDataDir {
			cfg.DataDir = config.DefaultDataDir(cfg.Port)
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	logger := log.Logger.With().Str("instance", fmt.Sprintf("%d", cfg.Port)).Logger()

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	reg, err := registry.New(cfg.RegistryPath)
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}
	events, err := log.NewEventLog(cfg.Port, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}

	mgr := manager.New(store, reg, events, logger, cfg.Port)
	mgr.Resume()

	hk := housekeeper.New(store, mgr, events, logger)
	hk.Start()
	defer hk.Stop()

	collector := metrics.NewCollector(mgr)
	collector.Start()
	defer collector.Stop()
	metrics.SetVersion(Version)
	metrics.RegisterComponent("store", true, "ready")
	metrics.RegisterComponent("registry", true, "ready")

	srv := api.NewServer(mgr, store, events, reg, hk, logger, cfg.Port)
	metrics.RegisterComponent("api", true, "ready")

	if pprofEnabled, _ := cmd.Flags().GetBool("enable-pprof"); pprofEnabled {
		go func() {
			if err := http.ListenAndServe("127.0.0.1:6060", nil); err != nil {
				logger.Warn().Err(err).Msg("pprof server stopped")
			}
		}()
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(addr) }()

	fmt.Printf("arraysim instance listening on %s (data dir: %s)\n", addr, cfg.DataDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-sigCh:
		fmt.Println("\nShutting down...")
	}
	return nil
}

// probeFreePort tries each port in [start, end) and returns the first one
// that accepts a listener, for instances launched without a fixed port.
func probeFreePort(start, end int) (int, error) {
	for port := start; port < end; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			continue
		}
		ln.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no free port in range [%d, %d)", start, end)
}
