// Command ulam renders the Ulam spiral of a given odd size as two P3 pixel
// maps, prints a character view, and optionally records the run.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/banshee-data/ulam-spiral/internal/config"
	"github.com/banshee-data/ulam-spiral/internal/db"
	"github.com/banshee-data/ulam-spiral/internal/fsutil"
	"github.com/banshee-data/ulam-spiral/internal/monitoring"
	"github.com/banshee-data/ulam-spiral/internal/raster"
	"github.com/banshee-data/ulam-spiral/internal/report"
	"github.com/banshee-data/ulam-spiral/internal/ulam"
	"github.com/banshee-data/ulam-spiral/internal/version"
)

// Exit codes.
const (
	exitOK          = 0
	exitEvenSize    = 1
	exitUsage       = 2
	exitInvalidSize = 3
	exitIO          = 4
)

const usageLine = "usage: ulam [flags] <size> <output-stem>\n" +
	"       ulam serve [-config file] [-listen addr] [-db path]\n" +
	"       ulam history [-db path] [-limit n]\n" +
	"       ulam migrate [-db path] <up|down|status>"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	restore := monitoring.SetOutput(stderr)
	defer restore()

	if len(args) > 0 {
		switch args[0] {
		case "serve":
			return runServe(args[1:], stderr)
		case "history":
			return runHistory(args[1:], stdout, stderr)
		case "migrate":
			return runMigrate(args[1:], stdout, stderr)
		}
	}
	return runGenerate(args, stdout, stderr, fsutil.OSFileSystem{})
}

type generateOptions struct {
	configPath  string
	outDir      string
	quiet       bool
	dbPath      string
	plot        bool
	chart       bool
	showVersion bool
}

func newGenerateFlags(stderr io.Writer) (*flag.FlagSet, *generateOptions) {
	opts := &generateOptions{}
	fs := flag.NewFlagSet("ulam", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to a JSON config file")
	fs.StringVar(&opts.outDir, "out", "", "Directory for output files (overrides output_dir)")
	fs.BoolVar(&opts.quiet, "quiet", false, "Suppress the console view and diagnostics")
	fs.StringVar(&opts.dbPath, "db", "", "Record the run in this SQLite database (overrides db_path)")
	fs.BoolVar(&opts.plot, "plot", false, "Write <stem>.density.png")
	fs.BoolVar(&opts.chart, "chart", false, "Write <stem>.rings.html")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, usageLine)
		fs.PrintDefaults()
	}
	return fs, opts
}

func loadConfig(path string) (*config.UlamConfig, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}

func runGenerate(args []string, stdout, stderr io.Writer, fsys fsutil.FileSystem) int {
	fs, opts := newGenerateFlags(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if opts.showVersion {
		fmt.Fprintln(stdout, version.String())
		return exitOK
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(stderr, usageLine)
		return exitUsage
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "ulam: %v\n", err)
		return exitUsage
	}
	if opts.quiet {
		monitoring.SetLogger(nil)
	}

	sizeArg, stem := fs.Arg(0), fs.Arg(1)
	size, err := strconv.Atoi(sizeArg)
	if err != nil {
		fmt.Fprintf(stderr, "ulam: size must be an integer, got %q\n", sizeArg)
		return exitInvalidSize
	}

	res, err := ulam.NewPipeline(nil, cfg.GetMaxSize()).Compute(size)
	switch {
	case errors.Is(err, ulam.ErrEvenSize):
		fmt.Fprintf(stderr, "ulam: %v\n", err)
		return exitEvenSize
	case err != nil:
		fmt.Fprintf(stderr, "ulam: %v\n", err)
		return exitInvalidSize
	}

	if cfg.GetConsole() && !opts.quiet {
		if err := raster.RenderConsole(stdout, res.Grid); err != nil {
			fmt.Fprintf(stderr, "ulam: %v\n", err)
			return exitIO
		}
	}

	outDir := cfg.GetOutputDir()
	if opts.outDir != "" {
		outDir = opts.outDir
	}
	sfx := raster.Suffixes{Symbolic: cfg.GetSymbolicSuffix(), Literal: cfg.GetLiteralSuffix()}
	paths, err := raster.WriteArtifacts(fsys, outDir, stem, sfx, res.Grid)
	if err != nil {
		fmt.Fprintf(stderr, "ulam: %v\n", err)
		return exitIO
	}

	dbPath := cfg.GetDBPath()
	if opts.dbPath != "" {
		dbPath = opts.dbPath
	}
	wantPlot := opts.plot || cfg.GetDensityPlot()
	wantChart := opts.chart || cfg.GetRingChart()
	if !wantPlot && !wantChart && dbPath == "" {
		return exitOK
	}

	summary := report.Summarize(res.Grid)
	if wantPlot {
		path := raster.ArtifactPath(outDir, stem, ".density.png")
		if err := report.WriteDensityPlot(summary, path); err != nil {
			fmt.Fprintf(stderr, "ulam: %v\n", err)
			return exitIO
		}
		paths = append(paths, path)
	}
	if wantChart {
		path := raster.ArtifactPath(outDir, stem, ".rings.html")
		if err := writeChart(fsys, path, summary); err != nil {
			fmt.Fprintf(stderr, "ulam: %v\n", err)
			return exitIO
		}
		paths = append(paths, path)
	}
	if dbPath != "" {
		id, err := recordRun(dbPath, res, summary, paths)
		if err != nil {
			fmt.Fprintf(stderr, "ulam: %v\n", err)
			return exitIO
		}
		monitoring.Logf("recorded run %s in %s", id, dbPath)
	}
	return exitOK
}

func writeChart(fsys fsutil.FileSystem, path string, summary report.Summary) (err error) {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	title := fmt.Sprintf("Ulam spiral %dx%d", summary.Size, summary.Size)
	if err := report.WriteRingDensityHTML(f, summary, title); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	monitoring.Logf("wrote ring density chart to %s", path)
	return nil
}

func recordRun(dbPath string, res *ulam.Result, summary report.Summary, paths []string) (string, error) {
	database, err := db.NewDB(dbPath)
	if err != nil {
		return "", err
	}
	defer database.Close()

	rings := make([]db.RingStat, len(summary.Rings))
	for i, r := range summary.Rings {
		rings[i] = db.RingStat{Ring: r.Ring, Cells: r.Cells, Primes: r.Primes}
	}
	run := &db.Run{
		Size:             res.Size,
		Bound:            res.Bound,
		PrimeCount:       summary.PrimeCount,
		DiagonalPrimes:   summary.DiagonalPrimes,
		MeanRingDensity:  summary.MeanRingDensity,
		Artifacts:        paths,
		SieveDuration:    res.SieveDuration,
		FillDuration:     res.FillDuration,
		ClassifyDuration: res.ClassifyDuration,
	}
	if err := database.RecordRun(run, rings); err != nil {
		return "", err
	}
	return run.ID, nil
}
