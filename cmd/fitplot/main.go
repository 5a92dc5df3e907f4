// Fitplot is the local-first storage core of a personal fitness tracker:
// an in-memory reactive store mirrored into an embedded SQLite database,
// with a plain-text notation for manual backup and sharing.
//
// Usage:
//
//	fitplot load [--config <path>] [--verbose]   rebuild state from the database and print a summary
//	fitplot validate <file>                      check a notation file, report the first problem
//	fitplot import <file> [--plan <name>]        validate then import a notation file
//	fitplot export [-o <file>]                   write the database contents as notation text
//	fitplot status                               show config and database state
//	fitplot version                              print version
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gorohovAv/fit-plot-sub000/internal/codec"
	"github.com/gorohovAv/fit-plot-sub000/internal/config"
	"github.com/gorohovAv/fit-plot-sub000/internal/model"
	"github.com/gorohovAv/fit-plot-sub000/internal/storage"
	"github.com/gorohovAv/fit-plot-sub000/internal/store"
	syncp "github.com/gorohovAv/fit-plot-sub000/internal/sync"
	"github.com/gorohovAv/fit-plot-sub000/internal/telemetry"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return printUsage()
	}

	switch cmd := os.Args[1]; cmd {
	case "load":
		return runLoad(os.Args[2:])
	case "validate":
		return runValidate(os.Args[2:])
	case "import":
		return runImport(os.Args[2:])
	case "export":
		return runExport(os.Args[2:])
	case "status":
		return runStatus()
	case "version":
		fmt.Println("fitplot", version)
		return nil
	default:
		return fmt.Errorf("unknown command %q — run 'fitplot' for usage", cmd)
	}
}

func printUsage() error {
	fmt.Fprintln(os.Stderr, "Fitplot — local-first fitness tracking store")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  fitplot load [--config ...] [--verbose]  Rebuild state from the database")
	fmt.Fprintln(os.Stderr, "  fitplot validate <file>                  Check a notation file")
	fmt.Fprintln(os.Stderr, "  fitplot import <file> [--plan <name>]    Validate then import a notation file")
	fmt.Fprintln(os.Stderr, "  fitplot export [-o <file>]               Write database contents as notation")
	fmt.Fprintln(os.Stderr, "  fitplot status                           Show config and database state")
	fmt.Fprintln(os.Stderr, "  fitplot version                          Print version")
	os.Exit(1)
	return nil // unreachable
}

// env bundles what every data-touching subcommand needs.
type env struct {
	cfg   *config.Config
	db    *storage.Store
	log   *slog.Logger
	close func()
}

// setup loads config, configures logging and optional telemetry, and
// opens the database.
func setup(cfgPath string, verbose bool) (*env, error) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config from %q: %w", cfgPath, err)
	}

	var shutdownTel telemetry.ShutdownFunc
	if cfg.Telemetry != nil {
		telCfg := telemetry.Config{
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			Insecure:     cfg.Telemetry.Insecure,
			ServiceName:  cfg.Telemetry.ServiceName,
			Headers:      cfg.Telemetry.Headers,
		}
		shutdownTel, err = telemetry.Setup(context.Background(), telCfg)
		if err != nil {
			logger.Error("telemetry setup failed, continuing without telemetry", "error", err)
			shutdownTel = nil
		} else {
			logger.Info("telemetry enabled", "endpoint", cfg.Telemetry.OTLPEndpoint)
		}
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath, err = storage.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolving database path: %w", err)
		}
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database at %q: %w", dbPath, err)
	}
	logger.Debug("database opened", "path", dbPath)

	return &env{
		cfg: cfg,
		db:  db,
		log: logger,
		close: func() {
			if err := db.Close(); err != nil {
				logger.Error("closing database", "error", err)
			}
			if shutdownTel != nil {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTel(flushCtx); err != nil {
					logger.Error("telemetry shutdown error", "error", err)
				}
			}
		},
	}, nil
}

// --- Subcommands -------------------------------------------------------------

// runLoad performs the startup sequence the embedding application would:
// attach the mirror, run the bootstrap under the gate, and print what was
// reconstructed.
func runLoad(args []string) error {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	defaultCfg, _ := config.DefaultPath()
	cfgPath := fs.String("config", defaultCfg, "path to config.yaml")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := setup(*cfgPath, *verbose)
	if err != nil {
		return err
	}
	defer e.close()

	var gate syncp.Gate
	mirror := syncp.NewMirror(e.db, &gate, e.log)
	st := store.New(model.AppState{Settings: model.DefaultSettings()},
		store.WithInterceptor(mirror.Interceptor()))

	bootstrap := syncp.NewBootstrap(syncp.NewLoader(e.db, e.log), &gate, e.log)
	loaded := bootstrap.Run(context.Background(), st)
	mirror.Wait()

	state := st.GetState()
	fmt.Printf("Loaded: %v\n", loaded)
	fmt.Printf("  Plans:    %d\n", len(state.Plans))
	for _, plan := range state.Plans {
		fmt.Printf("    %s (%d trainings)\n", plan.Name, len(plan.Trainings))
	}
	fmt.Printf("  Calories: %d entries\n", len(state.Calories))
	fmt.Printf("  Settings: theme=%s weight=%.1f devMode=%t\n",
		state.Settings.Theme, state.Settings.Weight, state.Settings.DevMode)
	if state.MaintenanceCalories != nil {
		fmt.Printf("  Maintenance: %d kcal\n", *state.MaintenanceCalories)
	}
	return nil
}

func runValidate(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: fitplot validate <file>")
	}
	text, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %q: %w", args[0], err)
	}

	verdict, lineErr := codec.Validate(string(text), codec.DefaultCatalog())
	fmt.Println(verdict)
	if lineErr != nil {
		fmt.Println(lineErr)
		os.Exit(1)
	}
	return nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	defaultCfg, _ := config.DefaultPath()
	cfgPath := fs.String("config", defaultCfg, "path to config.yaml")
	planName := fs.String("plan", "", "plan to file imported trainings under")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: fitplot import <file> [--plan <name>]")
	}

	text, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("reading %q: %w", fs.Arg(0), err)
	}

	catalog := codec.DefaultCatalog()
	verdict, lineErr := codec.Validate(string(text), catalog)
	switch verdict {
	case codec.VerdictEmpty:
		return fmt.Errorf("%q is empty, nothing to import", fs.Arg(0))
	case codec.VerdictInvalid:
		return fmt.Errorf("refusing to import %q: %s", fs.Arg(0), lineErr)
	}

	e, err := setup(*cfgPath, *verbose)
	if err != nil {
		return err
	}
	defer e.close()

	plan := *planName
	if plan == "" {
		plan = e.cfg.PlanName
	}

	importer := codec.NewImporter(e.db, catalog, e.log)
	stats, err := importer.Run(context.Background(), string(text), plan)
	if err != nil {
		return fmt.Errorf("importing %q: %w", fs.Arg(0), err)
	}

	fmt.Printf("Imported into plan %q:\n", plan)
	fmt.Printf("  Trainings: %d\n", stats.Trainings)
	fmt.Printf("  Exercises: %d\n", stats.Exercises)
	fmt.Printf("  Results:   %d\n", stats.Results)
	fmt.Printf("  Calories:  %d\n", stats.Calories)
	if stats.Orphans > 0 {
		fmt.Printf("  Dropped %d orphaned result line(s)\n", stats.Orphans)
	}
	return nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	defaultCfg, _ := config.DefaultPath()
	cfgPath := fs.String("config", defaultCfg, "path to config.yaml")
	out := fs.String("o", "", "output file (stdout when empty)")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := setup(*cfgPath, *verbose)
	if err != nil {
		return err
	}
	defer e.close()

	snap := syncp.NewLoader(e.db, e.log).Load(context.Background())
	if snap == nil {
		return fmt.Errorf("loading state for export failed")
	}

	text := codec.Export(snap.Plans, snap.Calories)
	if *out == "" {
		fmt.Print(text)
		return nil
	}
	if err := os.WriteFile(*out, []byte(text), 0o600); err != nil {
		return fmt.Errorf("writing %q: %w", *out, err)
	}
	fmt.Printf("Exported to %s\n", *out)
	return nil
}

func runStatus() error {
	cfgPath, _ := config.DefaultPath()
	dbPath, _ := storage.DefaultDBPath()

	fmt.Println("Fitplot Status")
	fmt.Println("──────────────")

	if _, err := os.Stat(cfgPath); err == nil {
		if cfg, loadErr := config.Load(cfgPath); loadErr == nil {
			fmt.Printf("  Config:   %s ✓\n", cfgPath)
			fmt.Printf("  Plan:     %s\n", cfg.PlanName)
			if cfg.DBPath != "" {
				dbPath = cfg.DBPath
			}
		} else {
			fmt.Printf("  Config:   %s (invalid: %v)\n", cfgPath, loadErr)
		}
	} else {
		fmt.Printf("  Config:   not found (%s), using defaults\n", cfgPath)
	}

	if info, err := os.Stat(dbPath); err == nil {
		fmt.Printf("  Database: %s (%s)\n", dbPath, humanSize(info.Size()))
	} else {
		fmt.Printf("  Database: not found (%s)\n", dbPath)
	}

	return nil
}

// humanSize returns a human-readable file size string.
func humanSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
