package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	httpadapter "github.com/fredcamaral/hotserve/internal/adapters/primary/http"
	"github.com/fredcamaral/hotserve/internal/adapters/secondary/config"
	"github.com/fredcamaral/hotserve/internal/adapters/secondary/runner"
	"github.com/fredcamaral/hotserve/internal/adapters/secondary/watcher"
	"github.com/fredcamaral/hotserve/internal/domain/entities"
	"github.com/fredcamaral/hotserve/internal/domain/ports"
	"github.com/fredcamaral/hotserve/internal/domain/services"
)

var (
	// Run command flags
	buildCommand string
	workDir      string
	refresh      bool
	clearScreen  bool
	debounceMs   int
	stepMs       int
	cooldownMs   int
	includes     []string
	excludes     []string
	forcedFiles  []string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [command]",
	Short: "Supervise a server command with hot reload",
	Long: `Start the configured server command and restart it gracefully whenever
source files change. With --refresh, asset-only changes skip the restart
and push a refresh event to connected browsers instead.

Example:
  hotserve run "go run ./cmd/app"
  hotserve run --refresh --debounce 100 --cooldown 2000`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Flag defaults of zero mean "use config value"
	runCmd.Flags().StringVar(&buildCommand, "build", "", "Build command run before each start (overrides config)")
	runCmd.Flags().StringVar(&workDir, "dir", "", "Working directory (overrides config)")
	runCmd.Flags().BoolVar(&refresh, "refresh", false, "Enable browser auto-refresh for asset changes (overrides config)")
	runCmd.Flags().BoolVar(&clearScreen, "clear", false, "Clear the terminal before each restart (overrides config)")
	runCmd.Flags().IntVar(&debounceMs, "debounce", 0, "Quiet period in ms before acting on changes (overrides config)")
	runCmd.Flags().IntVar(&stepMs, "step", 0, "Maximum batch age in ms under continuous churn (overrides config)")
	runCmd.Flags().IntVar(&cooldownMs, "cooldown", 0, "Minimum ms between server starts (overrides config)")
	runCmd.Flags().StringSliceVar(&includes, "include", nil, "Paths or globs that trigger a restart (overrides config)")
	runCmd.Flags().StringSliceVar(&excludes, "exclude", nil, "Paths or globs to ignore (overrides config)")
	runCmd.Flags().StringSliceVar(&forcedFiles, "forced-restart-file", nil, "Files that always force a restart (overrides config)")
}

func runRun(cmd *cobra.Command, args []string) error {
	finalConfig, err := loadAndMergeConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if len(args) == 1 {
		finalConfig.Server.Command = args[0]
	}
	applyCliFlags(cmd, finalConfig)

	if err := finalConfig.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(finalConfig.Logging.Verbose)

	orch, refreshServer, err := wireOrchestrator(finalConfig, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if refreshServer != nil {
		if err := refreshServer.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			if err := refreshServer.Stop(stopCtx); err != nil {
				logger.Warn("refresh server shutdown error", slog.String("error", err.Error()))
			}
		}()
	}

	if err := orch.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// wireOrchestrator compiles the path specs and assembles the supervision
// loop from its adapters
func wireOrchestrator(cfg *entities.Config, logger *slog.Logger) (*services.Orchestrator, *httpadapter.Server, error) {
	baseDir := cfg.Server.Dir
	if baseDir == "" {
		baseDir = "."
	}
	baseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving working directory: %w", err)
	}

	reloadSpec, err := services.CompileSpec(cfg.Watch.ReloadInclude, cfg.Watch.ReloadExclude, baseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling reload spec: %w", err)
	}

	assetSpec, err := services.CompileSpec(cfg.Watch.AssetInclude, cfg.Watch.AssetExclude, baseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling asset spec: %w", err)
	}

	classifier := services.NewClassifier(
		reloadSpec,
		assetSpec,
		cfg.Watch.ForcedRestartFiles,
		cfg.Watch.GetCodeExtensions(),
		cfg.Refresh.Enabled,
		baseDir,
	)

	roots := reloadSpec.WatchRoots()
	if cfg.Refresh.Enabled {
		roots = append(roots, assetSpec.WatchRoots()...)
	}
	roots, extraFiles := splitWatchTargets(roots, classifier.ForcedFiles())

	source := watcher.NewRecursiveWatcher(roots, extraFiles, logger)
	clock := ports.NewRealClock()
	batcher := services.NewBatcher(cfg.Watch.GetDebounce(), cfg.Watch.GetStep(), clock, logger)
	scheduler := services.NewRestartScheduler(cfg.Watch.GetCooldown(), clock)

	factory := runner.NewExecFactory(cfg.Server.Command, baseDir, cfg.Server.Env, logger)
	mutator := runner.NewCommandMutator(cfg.Build.Command, baseDir, logger)
	lifecycle := services.NewLifecycleManager(factory, mutator, entities.Hooks{}, logger)

	var refreshServer *httpadapter.Server
	var notifier ports.RefreshNotifier
	if cfg.Refresh.Enabled {
		refreshServer = httpadapter.NewServer(cfg.Refresh, logger)
		notifier = refreshServer
	}

	orch := services.NewOrchestrator(
		source,
		batcher,
		classifier,
		scheduler,
		lifecycle,
		notifier,
		clock,
		entities.Hooks{},
		logger,
		services.OrchestratorOptions{
			LogReloadEvents: cfg.Logging.ShouldLogReloadEvents(),
			ClearOnReload:   cfg.Logging.ClearOnReload,
		},
	)

	return orch, refreshServer, nil
}

// splitWatchTargets deduplicates watch roots and separates out forced
// files that no root already covers
func splitWatchTargets(roots, forced []string) (outRoots, extraFiles []string) {
	seen := make(map[string]struct{}, len(roots))
	for _, r := range roots {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		outRoots = append(outRoots, r)
	}

	for _, f := range forced {
		covered := false
		for _, r := range outRoots {
			if f == r || filepath.Dir(f) == r || isUnder(f, r) {
				covered = true
				break
			}
		}
		if !covered {
			extraFiles = append(extraFiles, f)
		}
	}
	return outRoots, extraFiles
}

// isUnder reports whether path lies below root
func isUnder(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// loadAndMergeConfig loads configuration with proper precedence:
// CLI flags > explicit config file / local config > global config > defaults
func loadAndMergeConfig(cmd *cobra.Command) (*entities.Config, error) {
	loader := config.NewTOMLLoader()
	ctx := cmd.Context()

	finalConfig := config.GetDefaultConfig()

	if explicit, _ := cmd.Flags().GetString("config"); explicit != "" {
		cfg, err := loader.LoadFile(ctx, explicit)
		if err != nil {
			return nil, err
		}
		config.MergeConfigs(finalConfig, cfg)
		return finalConfig, nil
	}

	globalConfig, err := loader.LoadGlobal(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading global config: %w", err)
	}
	if globalConfig != nil {
		config.MergeConfigs(finalConfig, globalConfig)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	localConfig, err := loader.LoadLocal(ctx, cwd)
	if err != nil {
		return nil, fmt.Errorf("loading local config: %w", err)
	}
	if localConfig != nil {
		config.MergeConfigs(finalConfig, localConfig)
	}

	return finalConfig, nil
}

// applyCliFlags applies CLI flag overrides to the configuration
func applyCliFlags(cmd *cobra.Command, cfg *entities.Config) {
	if cmd.Flags().Changed("build") {
		cfg.Build.Command = buildCommand
	}
	if cmd.Flags().Changed("dir") {
		cfg.Server.Dir = workDir
	}
	if cmd.Flags().Changed("refresh") {
		cfg.Refresh.Enabled = refresh
	}
	if cmd.Flags().Changed("clear") {
		cfg.Logging.ClearOnReload = clearScreen
	}
	if cmd.Flags().Changed("debounce") {
		cfg.Watch.DebounceMs = debounceMs
	}
	if cmd.Flags().Changed("step") {
		cfg.Watch.StepMs = stepMs
	}
	if cmd.Flags().Changed("cooldown") {
		cfg.Watch.CooldownMs = cooldownMs
	}
	if cmd.Flags().Changed("include") {
		cfg.Watch.ReloadInclude = includes
	}
	if cmd.Flags().Changed("exclude") {
		cfg.Watch.ReloadExclude = excludes
	}
	if cmd.Flags().Changed("forced-restart-file") {
		cfg.Watch.ForcedRestartFiles = forcedFiles
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); cmd.Flags().Changed("verbose") {
		cfg.Logging.Verbose = verbose
	}
}

// newLogger builds the process-wide structured logger
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
