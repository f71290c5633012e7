package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/handiism/visrec-datasets/internal/catalog"
	"github.com/handiism/visrec-datasets/internal/config"
	"github.com/handiism/visrec-datasets/internal/download"
	ioutils "github.com/handiism/visrec-datasets/internal/io"
	"github.com/handiism/visrec-datasets/internal/model"
	"golang.org/x/term"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Command line flags
	var (
		datasetFlag = flag.String("dataset", "", "Preset name(s) to fetch (comma-separated)")
		allFlag     = flag.Bool("all", false, "Fetch every preset")
		listFlag    = flag.Bool("list", false, "List available presets and exit")
		configFlag  = flag.String("config", "", "Path to settings file")
		presetsFlag = flag.String("presets", "", "Path to a JSON or YAML file with additional presets")
		tmpFlag     = flag.String("tmp", "", "Temporary storage base path (overrides config)")
		verboseFlag = flag.Bool("verbose", false, "Show verbose output")
		logFileFlag = flag.String("log-file", "", "Also write JSON logs to this file")
		dryRunFlag  = flag.Bool("dry-run", false, "Resolve presets without downloading")
	)

	flag.Parse()

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			return 1
		}
	}

	// Apply flags
	if *tmpFlag != "" {
		settings.TempBasePath = *tmpFlag
	}
	if *logFileFlag != "" {
		settings.LogFile = *logFileFlag
	}
	if *presetsFlag != "" {
		settings.PresetFile = *presetsFlag
	}
	if *verboseFlag {
		settings.LogLevel = "debug"
	}
	if err := settings.ExpandPaths(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	level, err := config.ParseLogLevel(settings.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger, cleanup := config.SetupLogger(settings.LogFile, level)
	defer cleanup()
	slog.SetDefault(logger)

	cat := catalog.Default()
	if settings.PresetFile != "" {
		cat, err = catalog.LoadFile(settings.PresetFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading presets: %v\n", err)
			return 1
		}
	}

	if *listFlag {
		printPresets(cat, settings)
		return 0
	}

	// Get selection
	selection := *datasetFlag
	if flag.NArg() > 0 {
		selection = strings.Join(append([]string{selection}, flag.Args()...), ",")
	}
	if *allFlag {
		selection = strings.Join(cat.Names(), ",")
	}
	if strings.Trim(selection, ", ") == "" {
		fmt.Println("VisRec Datasets - Fetch example datasets for visual recognition")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  visrec-fetch -dataset <name>[,<name>...] [options]")
		fmt.Println("  visrec-fetch <name> [<name>...] [options]")
		fmt.Println("  visrec-fetch -all [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: visrec-tui")
		fmt.Println()
		flag.PrintDefaults()
		return 1
	}

	// Scratch files that could not be removed during the run
	defer func() {
		for _, path := range ioutils.RemovePending() {
			logger.Warn("scratch file left behind", "path", path)
		}
	}()

	// Handle interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := newPrinter(term.IsTerminal(int(os.Stdout.Fd())))

	manager := download.NewManager(settings, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case download.LevelError:
			prefix = "✗ "
		case download.LevelWarning:
			prefix = "! "
		case download.LevelSuccess:
			prefix = "✓ "
		case download.LevelInfo:
			prefix = "› "
		default:
			prefix = "  "
		}

		out.Println(prefix + event.Message)
	}, download.WithCatalog(cat), download.WithLogger(logger))

	fmt.Println("VisRec Datasets")
	fmt.Println(strings.Repeat("━", 40))
	fmt.Println()

	if err := manager.Initialize(ctx, selection); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		return 1
	}

	if *dryRunFlag {
		fmt.Println("\n[Dry run - not downloading]")
		return 0
	}

	fmt.Println("\nFetching...")
	fmt.Println()

	stopStatus := out.Follow(func() string {
		received, total, done, files := manager.GetProgress()
		return fmt.Sprintf("%d/%d presets, %s of %s", done, files,
			humanize.Bytes(uint64(max(received, 0))), humanize.Bytes(uint64(max(total, 0))))
	})
	err = manager.StartDownloads(ctx)
	stopStatus()

	fmt.Println()
	fmt.Println(strings.Repeat("━", 40))
	for _, r := range manager.Results() {
		printResult(r)
	}

	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nCancelled.")
			return 130
		}
		fmt.Fprintf(os.Stderr, "\nError during download:\n%v\n", err)
		return 1
	}

	received, _, done, total := manager.GetProgress()
	fmt.Printf("\nComplete! %d/%d presets (%s downloaded)\n", done, total, humanize.Bytes(uint64(received)))
	return 0
}

func printPresets(cat *catalog.Catalog, settings *config.Settings) {
	pathCfg := settings.ToPathConfig()
	for _, p := range cat.Presets() {
		switch p.Kind {
		case model.KindArchive:
			fmt.Printf("%-24s %-8s %s\n%-24s %-8s -> %s\n", p.Name, p.Kind, p.Description, "", "", p.StagingDir(pathCfg))
		default:
			fmt.Printf("%-24s %-8s %s\n", p.Name, p.Kind, p.Description)
		}
	}
}

func printResult(r download.Result) {
	switch {
	case r.Err != nil:
		fmt.Printf("%-24s failed after %d attempt(s)\n", r.Preset.Name, r.Attempts)
	case r.Dataset != nil:
		fmt.Printf("%-24s %d records, columns: %s\n", r.Preset.Name, r.Dataset.Len(), summarizeColumns(r.Dataset.Columns()))
		if first, err := r.Dataset.Record(0); err == nil {
			fmt.Printf("%-24s first: inputs=%v outputs=%v\n", "", truncate(first.Inputs, 6), first.Outputs)
		}
		if in, out, err := r.Dataset.Tensors(); err == nil {
			fmt.Printf("%-24s tensors: inputs %s, outputs %s\n", "", in.Shape(), out.Shape())
		}
	default:
		fmt.Printf("%-24s staged in %s\n", r.Preset.Name, r.Dir)
	}
}

func summarizeColumns(columns []string) string {
	if len(columns) <= 6 {
		return strings.Join(columns, ", ")
	}
	return fmt.Sprintf("%s, ... (%d total)", strings.Join(columns[:5], ", "), len(columns))
}

func truncate(values []float32, n int) []float32 {
	if len(values) <= n {
		return values
	}
	return values[:n]
}
