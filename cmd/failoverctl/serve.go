package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gitlab.bluewillows.net/root/failoverctl/internal/config"
	"gitlab.bluewillows.net/root/failoverctl/internal/dnsquery"
	"gitlab.bluewillows.net/root/failoverctl/internal/health"
	"gitlab.bluewillows.net/root/failoverctl/internal/metrics"
	"gitlab.bluewillows.net/root/failoverctl/internal/monitor"
	"gitlab.bluewillows.net/root/failoverctl/internal/scorer"
	"gitlab.bluewillows.net/root/failoverctl/internal/statemachine"
	"gitlab.bluewillows.net/root/failoverctl/internal/storage"
	"gitlab.bluewillows.net/root/failoverctl/pkg/provider"
	"gitlab.bluewillows.net/root/failoverctl/pkg/registrar"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the failover controller daemon",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := runServe(cmd); err != nil {
			fmt.Fprintln(os.Stderr, "fatal error:", err)
			return err
		}
		return nil
	},
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := setupLogger(cfg.LogLevel(), cfg.LogFormat())
	slog.SetDefault(logger)
	metrics.SetBuildInfo(Version, runtime.Version())

	logger.Info("failoverctl starting",
		slog.String("version", Version),
		slog.String("domain", cfg.Domain()),
		slog.String("profile", cfg.Profile()),
		slog.Bool("dry_run", cfg.DryRun()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	providers, primaryInst, secondaryInst, err := buildProviders(cfg)
	if err != nil {
		return fmt.Errorf("building provider registry: %w", err)
	}

	registry, err := provider.NewRegistry(providers)
	if err != nil {
		return fmt.Errorf("provider registry: %w", err)
	}

	reg, err := buildRegistrar(ctx, primaryInst, cfg.Domain(), logger)
	if err != nil {
		return fmt.Errorf("building registrar driver: %w", err)
	}
	if cfg.DryRun() {
		reg = registrar.NewDryRunRegistrar(reg, logger)
		logger.Warn("dry-run enabled: registrar writes will be logged, not applied")
	}

	store, err := storage.NewBoltSink(cfg.Global.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	profile := resolveProfile(cfg)

	scores := newScoreboard()
	metricsRecorder := metrics.NewRecorder()

	machine, err := statemachine.New(ctx, statemachine.Config{
		Domain:      cfg.Domain(),
		PrimaryID:   primaryInst.Name,
		PrimaryNS:   primaryInst.Nameservers,
		SecondaryID: secondaryInst.Name,
		SecondaryNS: secondaryInst.Nameservers,
		Profile:     profile,
		Registrar:   reg,
		Store:       store,
		Logger:      logger,
		OnTransition: func(from, to statemachine.State) {
			metrics.RecordTransition(string(from), string(to))
		},
		OnSafetyRejection: func(reason string) {
			metrics.RecordSafetyRejection(reason)
		},
	})
	if err != nil {
		return fmt.Errorf("initializing state machine: %w", err)
	}

	query := dnsquery.New()

	mon := monitor.New(monitor.Config{
		Providers: registry,
		Query:     query,
		Storage:   store,
		Metrics:   metricsRecorder,
		Logger:    logger,
		Zone:      cfg.Domain(),
		OnScore: func(_ context.Context, providerID string, score scorer.Score) {
			scores.set(providerID, score.Value)
			logger.Debug("provider score computed",
				slog.String("provider", providerID),
				slog.Float64("score", score.Value),
			)
		},
	})

	healthServer := health.New(cfg.HealthPort(), health.WithLogger(logger))
	healthServer.RegisterAdmin(&adminAdapter{machine: machine, store: store, scores: scores})
	if err := healthServer.Start(); err != nil {
		return fmt.Errorf("starting health server: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go runTickLoop(ctx, logger, mon, machine, scores, cfg.Global.PollInterval)

	sig := <-sigChan
	logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("health server shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("failoverctl shutdown complete")
	return nil
}

// runTickLoop drives the monitor/evaluate cycle described in spec.md §2:
// probe every provider, then hand the full score snapshot to the state
// machine's Evaluate in one call, rather than evaluating once per
// provider inside the monitor's own per-provider score callback.
func runTickLoop(ctx context.Context, logger *slog.Logger, mon *monitor.Monitor, machine *statemachine.Machine, scores *scoreboard, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := mon.RunOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Error("probe sweep failed", slog.String("error", err.Error()))
				continue
			}

			state, transitioned, err := machine.Evaluate(ctx, scores.snapshot())
			if err != nil {
				logger.Error("evaluate failed", slog.String("error", err.Error()))
				continue
			}
			if transitioned {
				logger.Info("state transitioned", slog.String("state", string(state)))
			}
		}
	}
}

// buildProviders converts every configured provider instance to the
// runtime provider.Provider type and locates the primary/secondary
// instance configs the state machine and registrar wiring need directly
// (nameservers, registrar settings).
func buildProviders(cfg *config.Config) ([]provider.Provider, *config.ProviderInstanceConfig, *config.ProviderInstanceConfig, error) {
	var providers []provider.Provider
	var primary, secondary *config.ProviderInstanceConfig

	for _, inst := range cfg.ProviderInstances {
		providers = append(providers, inst.ToProvider())
		switch inst.Role {
		case provider.RolePrimary:
			primary = inst
		case provider.RoleSecondary:
			secondary = inst
		}
	}

	if primary == nil || secondary == nil {
		return nil, nil, nil, fmt.Errorf("exactly one primary and one secondary provider are required")
	}

	return providers, primary, secondary, nil
}

// resolveProfile selects the named threshold/timer profile and applies
// the manual-authorization override, if the operator set one explicitly.
func resolveProfile(cfg *config.Config) statemachine.Profile {
	var profile statemachine.Profile
	if cfg.Profile() == "simplified" {
		profile = statemachine.SimplifiedProfile()
	} else {
		profile = statemachine.ProductionProfile()
	}

	if cfg.Global.RequireManualAuthSet && cfg.Global.RequireManualAuth {
		profile = profile.WithManualAuth()
	}
	return profile
}
