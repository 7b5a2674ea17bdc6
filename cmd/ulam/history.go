package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/banshee-data/ulam-spiral/internal/db"
)

const defaultDBPath = "ulam.db"

func dbPathOrDefault(flagValue, configPath string) (string, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return "", err
	}
	switch {
	case flagValue != "":
		return flagValue, nil
	case cfg.GetDBPath() != "":
		return cfg.GetDBPath(), nil
	default:
		return defaultDBPath, nil
	}
}

func runHistory(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a JSON config file")
	dbFlag := fs.String("db", "", "SQLite run history")
	limit := fs.Int("limit", 20, "Number of runs to list")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 0 || *limit < 1 {
		fmt.Fprintln(stderr, usageLine)
		return exitUsage
	}
	path, err := dbPathOrDefault(*dbFlag, *configPath)
	if err != nil {
		fmt.Fprintf(stderr, "ulam: %v\n", err)
		return exitUsage
	}

	database, err := db.NewDB(path)
	if err != nil {
		fmt.Fprintf(stderr, "ulam: failed to open run history: %v\n", err)
		return exitIO
	}
	defer database.Close()

	runs, err := database.ListRuns(*limit)
	if err != nil {
		fmt.Fprintf(stderr, "ulam: %v\n", err)
		return exitIO
	}
	writeHistory(stdout, runs)
	return exitOK
}

func writeHistory(w io.Writer, runs []db.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSIZE\tPRIMES\tDIAGONAL\tMEAN RING DENSITY\tTIME\tWHEN\tARTIFACTS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%.4f\t%v\t%s\t%s\n",
			r.ID, r.Size,
			humanize.Comma(int64(r.PrimeCount)),
			humanize.Comma(int64(r.DiagonalPrimes)),
			r.MeanRingDensity,
			r.SieveDuration+r.FillDuration+r.ClassifyDuration,
			humanize.Time(r.CreatedAt),
			strings.Join(r.Artifacts, ","),
		)
	}
	tw.Flush()
}

func runMigrate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a JSON config file")
	dbFlag := fs.String("db", "", "SQLite run history")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	path, err := dbPathOrDefault(*dbFlag, *configPath)
	if err != nil {
		fmt.Fprintf(stderr, "ulam: %v\n", err)
		return exitUsage
	}
	return db.RunMigrateCommand(fs.Args(), path, stdout, stderr)
}
