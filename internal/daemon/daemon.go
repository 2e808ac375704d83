// Package daemon orchestrates the long-running generation service: logging,
// PID management, config hot-reload, tracing, and the HTTP server lifecycle.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/planwright/planwright/internal/cache"
	"github.com/planwright/planwright/internal/config"
	"github.com/planwright/planwright/internal/credential"
	"github.com/planwright/planwright/internal/metrics"
	"github.com/planwright/planwright/internal/provider"
	"github.com/planwright/planwright/internal/router"
	"github.com/planwright/planwright/internal/server"
	"github.com/planwright/planwright/internal/tokenizer"
	"github.com/planwright/planwright/internal/tracing"
	"github.com/planwright/planwright/internal/version"
)

// Run is the main daemon orchestrator. It initialises all subsystems, starts
// the HTTP server, and blocks until a shutdown signal is received.
func Run(cfg *config.Config, foreground bool) error {
	// 1. Set up zerolog logger.
	dataDir := cfg.Server.DataDir
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", dataDir, err)
	}

	zerolog.SetGlobalLevel(parseLogLevel(cfg.Server.LogLevel))

	writers := []io.Writer{}

	logPath := filepath.Join(dataDir, "planwright.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", logPath, err)
	}
	defer logFile.Close()
	writers = append(writers, logFile)

	// If foreground, also write to stdout with console formatting.
	if foreground {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}

	multi := zerolog.MultiLevelWriter(writers...)
	log.Logger = zerolog.New(multi).With().Timestamp().Str("service", "planwright").Logger()

	log.Info().
		Str("version", version.Version).
		Str("data_dir", dataDir).
		Bool("foreground", foreground).
		Msg("planwright starting")

	// 2. Check if already running.
	if IsRunning(dataDir) {
		return fmt.Errorf("planwright is already running (PID file exists at %s)", filepath.Join(dataDir, pidFilename))
	}

	// 3. Write PID file.
	if err := WritePID(dataDir); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() {
		if err := RemovePID(dataDir); err != nil {
			log.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	log.Info().Int("pid", os.Getpid()).Msg("PID file written")

	// 4. Init tracing if enabled.
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(
			context.Background(),
			cfg.Tracing.ServiceName,
			version.Version,
			cfg.Tracing.Exporter,
			cfg.Tracing.Endpoint,
			cfg.Tracing.SampleRate,
			cfg.Tracing.Insecure,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to init tracing; continuing without it")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Warn().Err(err).Msg("tracing shutdown error")
				}
			}()
			log.Info().Str("exporter", cfg.Tracing.Exporter).Msg("tracing initialised")
		}
	}

	// 5. Build the generation stack.
	vault := credential.NewVault()
	collector := metrics.NewCollector()
	client := provider.NewClient()
	tok := tokenizer.New()

	candidates := config.BuildProviders(cfg, vault)
	rtr := router.New(candidates, client, collector, log.Logger)
	log.Info().
		Int("configured", len(rtr.Providers())).
		Str("active", rtr.ActiveLabel()).
		Msg("provider chain built")

	genCache, err := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTLSeconds, cfg.Cache.Enabled)
	if err != nil {
		return fmt.Errorf("creating generation cache: %w", err)
	}

	handler := server.NewHandler(
		rtr, candidates, genCache, collector, tok, log.Logger,
		cfg.Server.MaxBodySize,
		cfg.Generation.ServerCredentials,
	)

	// 6. Start config watcher for hot-reload of providers and log level.
	configFile := config.ConfigFilePath()
	if configFile == "" {
		configFile = filepath.Join(dataDir, config.DefaultConfigFilename)
	}

	if _, statErr := os.Stat(configFile); statErr == nil {
		w, watchErr := config.Watch(configFile)
		if watchErr != nil {
			log.Warn().Err(watchErr).Msg("failed to start config watcher; continuing without hot-reload")
		} else {
			defer w.Close()
			w.OnChange(func(old, newCfg *config.Config) {
				zerolog.SetGlobalLevel(parseLogLevel(newCfg.Server.LogLevel))

				newCandidates := config.BuildProviders(newCfg, vault)
				newRouter := router.New(newCandidates, client, collector, log.Logger)
				handler.SwapRouter(newRouter, newCandidates)
				handler.SetServerCredentials(newCfg.Generation.ServerCredentials)

				log.Info().
					Int("configured", len(newRouter.Providers())).
					Str("active", newRouter.ActiveLabel()).
					Msg("provider chain rebuilt from config change")
			})
			log.Info().Str("file", configFile).Msg("config watcher started")
		}
	}

	// 7. Start the HTTP server.
	addr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.Port)
	readTimeout := time.Duration(cfg.Server.ReadTimeout) * time.Second
	writeTimeout := time.Duration(cfg.Server.WriteTimeout) * time.Second
	idleTimeout := time.Duration(cfg.Server.IdleTimeout) * time.Second

	srv := server.NewServer(handler, addr, readTimeout, writeTimeout, idleTimeout, cfg.Tracing.Enabled)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server: %w", err)
		}
	}()

	log.Info().Int("port", cfg.Server.Port).Msg("planwright is ready")

	if foreground {
		fmt.Printf("\n  Planwright is running!\n")
		fmt.Printf("  API: http://%s/api/generate\n\n", addr)
	}

	// 8. Wait for shutdown signal or fatal error.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("fatal server error")
		return err
	}

	// 9. Graceful shutdown with 30-second timeout.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Info().Msg("shutting down server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("planwright stopped")
	return nil
}

// Stop reads the PID file and sends SIGTERM to the running daemon.
func Stop() error {
	dataDir := config.Get().Server.DataDir

	pid, err := ReadPID(dataDir)
	if err != nil {
		return fmt.Errorf("planwright does not appear to be running: %w", err)
	}

	if !isProcessAlive(pid) {
		// Stale PID file; clean it up.
		if rmErr := RemovePID(dataDir); rmErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove stale PID file: %v\n", rmErr)
		}
		return fmt.Errorf("planwright is not running (stale PID file removed)")
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process %d: %w", pid, err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("sending SIGTERM to process %d: %w", pid, err)
	}

	fmt.Printf("Sent SIGTERM to planwright (PID %d)\n", pid)

	// Wait briefly for the process to exit.
	for i := 0; i < 30; i++ {
		time.Sleep(100 * time.Millisecond)
		if !isProcessAlive(pid) {
			return nil
		}
	}

	return nil
}

// Status checks if the daemon is running and prints a summary.
func Status() error {
	cfg := config.Get()
	dataDir := cfg.Server.DataDir

	if !IsRunning(dataDir) {
		fmt.Println("planwright is not running")
		return nil
	}

	pid, _ := ReadPID(dataDir)
	fmt.Printf("planwright is running (PID %d)\n", pid)

	statsURL := fmt.Sprintf("http://localhost:%d/api/stats", cfg.Server.Port)
	client := &http.Client{Timeout: 3 * time.Second}

	resp, err := client.Get(statsURL)
	if err != nil {
		fmt.Println("  (API unreachable)")
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	var stats metrics.Stats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil
	}

	fmt.Printf("\n  Uptime:         %s\n", stats.Uptime)
	fmt.Printf("  Total Requests: %d\n", stats.TotalRequests)
	fmt.Printf("  Fallbacks:      %d\n", stats.Fallbacks)
	fmt.Printf("  Cache Hits:     %d\n", stats.CacheHits)
	fmt.Printf("  Tokens In:      %d\n", stats.TokensIn)
	fmt.Printf("  Tokens Out:     %d\n", stats.TokensOut)
	fmt.Printf("  Active:         %d\n", stats.ActiveRequests)

	return nil
}

// parseLogLevel converts a string log level to a zerolog.Level.
func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
