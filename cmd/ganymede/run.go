package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/api/handlers"
	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/evidence"
	"mercator-hq/ganymede/pkg/evidence/recorder"
	"mercator-hq/ganymede/pkg/evidence/retention"
	"mercator-hq/ganymede/pkg/evidence/storage"
	"mercator-hq/ganymede/pkg/guardrail"
	"mercator-hq/ganymede/pkg/guardrail/checks"
	"mercator-hq/ganymede/pkg/guardrail/source"
	"mercator-hq/ganymede/pkg/redaction"
	"mercator-hq/ganymede/pkg/server"
	"mercator-hq/ganymede/pkg/telemetry/health"
	"mercator-hq/ganymede/pkg/telemetry/logging"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	rulesetPath   string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Ganymede guardrail service",
	Long: `Start the Ganymede guardrail service with the specified configuration.

The server exposes the guardrail check API, ruleset introspection and
reload endpoints, health probes, and Prometheus metrics.

Examples:
  # Start with default config
  ganymede run

  # Start with custom config
  ganymede run --config /etc/ganymede/config.yaml

  # Override listen address and ruleset
  ganymede run --listen 0.0.0.0:8080 --ruleset rules/guardrails.yaml

  # Validate config without starting the server
  ganymede run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&runFlags.rulesetPath, "ruleset", "", "override ruleset file path")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cli.NewConfigError("failed to load config", err)
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if runFlags.rulesetPath != "" {
		cfg.Guardrails.RulesetPath = runFlags.rulesetPath
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	// Redaction patterns drive both the guardrail masker and log
	// redaction, so they load first.
	patterns, err := redaction.LoadPatterns(cfg.Redaction.PatternsPath)
	if err != nil {
		return cli.NewConfigError("failed to load redaction patterns", err)
	}
	masker, err := redaction.NewMasker(patterns, nil)
	if err != nil {
		return cli.NewConfigError("failed to build masker", err)
	}

	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    logging.Format(cfg.Telemetry.Logging.Format),
		AddSource: cfg.Telemetry.Logging.AddSource,
		RedactPII: cfg.Telemetry.Logging.RedactPII,
		Masker:    masker,
	})
	if err != nil {
		return cli.NewConfigError("failed to initialize logging", err)
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	// Ruleset source. Empty path means the built-in defaults.
	var rulesetSource guardrail.RuleSetSource
	if cfg.Guardrails.RulesetPath != "" {
		fileSource := source.NewFileSource(cfg.Guardrails.RulesetPath, logger)
		if cfg.Guardrails.Watch {
			rulesetSource = fileSource
		} else {
			rulesetSource = source.WithoutWatch(fileSource)
		}
	}

	engineCfg := &guardrail.EngineConfig{
		CheckTimeout: cfg.Guardrails.CheckTimeout,
		MaxChecks:    cfg.Guardrails.MaxChecks,
	}
	engine, err := guardrail.NewEngine(engineCfg, rulesetSource, masker, logger)
	if err != nil {
		return cli.NewRuntimeError("failed to initialize guardrail engine", err)
	}
	defer engine.Close()

	judgeCfg := checks.JudgeConfig{
		Endpoint: cfg.Judge.Endpoint,
		APIKey:   cfg.Judge.APIKey,
		Timeout:  cfg.Judge.Timeout,
	}
	if err := checks.RegisterAll(engine, patterns, judgeCfg, logger); err != nil {
		return cli.NewRuntimeError("failed to register checks", err)
	}

	if collector != nil {
		engine.SetMetrics(collector.Guardrail)
		collector.Guardrail.SetChecksLoaded(len(engine.RuleSet().Checks))
	}

	checker := health.New(0)
	checker.RegisterCheck("engine", func(ctx context.Context) error {
		if len(engine.RuleSet().Checks) == 0 {
			return fmt.Errorf("no checks loaded")
		}
		return nil
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var verdictRecorder *recorder.Recorder
	if cfg.Evidence.Enabled {
		store, err := openEvidenceStorage(cfg, logger)
		if err != nil {
			return cli.NewRuntimeError("failed to open evidence storage", err)
		}
		defer store.Close()

		var em *metrics.EvidenceMetrics
		if collector != nil {
			em = collector.Evidence
		}

		verdictRecorder = recorder.NewRecorder(store, &recorder.Config{
			AsyncBuffer:  cfg.Evidence.Recorder.AsyncBuffer,
			WriteTimeout: cfg.Evidence.Recorder.WriteTimeout,
		}, logger, em)
		defer verdictRecorder.Close()

		pruner := retention.NewPruner(store, &retention.Config{
			RetentionDays: cfg.Evidence.Retention.Days,
			PruneSchedule: cfg.Evidence.Retention.PruneSchedule,
			MaxRecords:    int64(cfg.Evidence.Retention.MaxRecords),
		}, logger, em)
		scheduler := retention.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewRuntimeError("failed to start retention scheduler", err)
		}

		if pinger, ok := store.(interface{ Ping(context.Context) error }); ok {
			checker.RegisterCheck("evidence", pinger.Ping)
		}
	}

	printBanner(cfg)

	srv := server.New(&cfg.Server, server.Options{
		Engine:    engine,
		Recorder:  recorderOrNil(verdictRecorder),
		Collector: collector,
		Checker:   checker,
		Logger:    logger,
	})

	return srv.Start(ctx)
}

func openEvidenceStorage(cfg *config.Config, logger *slog.Logger) (evidence.Storage, error) {
	switch cfg.Evidence.Backend {
	case "sqlite":
		return storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.Evidence.SQLite.Path,
			MaxOpenConns: cfg.Evidence.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Evidence.SQLite.MaxIdleConns,
			WALMode:      cfg.Evidence.SQLite.WALMode,
			BusyTimeout:  cfg.Evidence.SQLite.BusyTimeout,
		}, logger)
	default:
		return storage.NewMemoryStorage(), nil
	}
}

// recorderOrNil avoids a typed-nil interface when evidence is disabled.
func recorderOrNil(r *recorder.Recorder) handlers.VerdictRecorder {
	if r == nil {
		return nil
	}
	return r
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Ganymede %s\n", Version)
	fmt.Printf("  listen:   %s\n", cfg.Server.ListenAddress)
	if cfg.Guardrails.RulesetPath != "" {
		fmt.Printf("  ruleset:  %s (watch: %v)\n", cfg.Guardrails.RulesetPath, cfg.Guardrails.Watch)
	} else {
		fmt.Printf("  ruleset:  built-in defaults\n")
	}
	fmt.Printf("  evidence: %s\n", evidenceSummary(cfg))
	fmt.Printf("  started:  %s\n", time.Now().Format(time.RFC3339))
}

func evidenceSummary(cfg *config.Config) string {
	if !cfg.Evidence.Enabled {
		return "disabled"
	}
	if cfg.Evidence.Backend == "sqlite" {
		return "sqlite (" + cfg.Evidence.SQLite.Path + ")"
	}
	return cfg.Evidence.Backend
}
