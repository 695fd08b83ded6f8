// colinspect is a small diagnostics CLI for the column engine: it can
// print version information, run a demonstration of the engine's
// operations, and compute reduction statistics over a CSV column.
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/astropipe/colcore/pkg/colerrors"
	"github.com/astropipe/colcore/pkg/coltype"
	"github.com/astropipe/colcore/pkg/column"
	"github.com/astropipe/colcore/pkg/config"
	"github.com/astropipe/colcore/pkg/logger"
)

var version = "0.1.0"

var engineCfg = config.NewEngineConfig()

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	var configFile string

	root := &cobra.Command{
		Use:   "colinspect",
		Short: "Inspect and summarize typed columns",
		Long: `colinspect exercises the in-memory column engine: it prints column
dumps, runs casts and elementwise arithmetic, and computes reduction
statistics over CSV data.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := config.Load(configFile, engineCfg); err != nil {
					return err
				}
				engineCfg.ApplyDefaults()
			}
			if err := engineCfg.Validate(); err != nil {
				return err
			}
			return logger.Init(logger.Config{
				Level:       engineCfg.Logging.Level,
				Development: engineCfg.Logging.Development,
				Encoding:    engineCfg.Logging.Encoding,
			})
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("colinspect v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "demo",
		Short: "Run a short demonstration of the column engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	})

	var colName, kindName string
	statsCmd := &cobra.Command{
		Use:   "stats <file.csv>",
		Short: "Compute reduction statistics over one CSV column",
		Long: `stats reads a CSV file with a header row, loads the named column
into a typed column (empty cells become invalid elements) and prints
its reduction statistics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args[0], colName, kindName)
		},
	}
	statsCmd.Flags().StringVar(&colName, "column", "", "column name from the header row")
	statsCmd.Flags().StringVar(&kindName, "kind", "double", "element kind (int, long, float, double)")
	_ = statsCmd.MarkFlagRequired("column")
	root.AddCommand(statsCmd)

	if err := root.Execute(); err != nil {
		logger.Error("command failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// dumpColumn prints a column to stdout, capping the rows at the configured
// dump.max_rows (0 means all).
func dumpColumn(c *column.Column) error {
	rows := c.Len()
	if engineCfg.Dump.MaxRows > 0 && engineCfg.Dump.MaxRows < rows {
		rows = engineCfg.Dump.MaxRows
	}
	return c.Dump(os.Stdout, 0, rows)
}

// runDemo builds two small columns and walks them through the engine's
// operations, dumping the intermediate states to stdout.
func runDemo() error {
	log := logger.Get()

	flux, err := column.New(coltype.Float64, 5)
	if err != nil {
		return err
	}
	flux.SetName("flux")
	flux.SetUnit("adu")
	for i, v := range []float64{10, 20, 30, 40, 50} {
		if err := flux.SetFloat(i, v); err != nil {
			return err
		}
	}
	if err := flux.SetInvalid(2); err != nil {
		return err
	}
	if err := dumpColumn(flux); err != nil {
		return err
	}

	gain, err := column.New(coltype.Float64, 5)
	if err != nil {
		return err
	}
	gain.SetName("gain")
	for i := 0; i < 5; i++ {
		if err := gain.SetFloat(i, 2); err != nil {
			return err
		}
	}
	if err := flux.Multiply(gain); err != nil {
		return err
	}
	if err := dumpColumn(flux); err != nil {
		return err
	}

	counts, err := flux.CastTo(coltype.Int64)
	if err != nil {
		return err
	}
	counts.SetName("counts")
	if err := dumpColumn(counts); err != nil {
		return err
	}

	mean, err := flux.Mean()
	if err != nil {
		return err
	}
	stdev, err := flux.Stdev()
	if err != nil {
		return err
	}
	log.Info("flux statistics",
		zap.Float64("mean", mean),
		zap.Float64("stdev", stdev),
		zap.Int("invalid", flux.CountInvalid()))
	return nil
}

// runStats loads a named CSV column and prints its reductions.
func runStats(path, colName, kindName string) error {
	kind, err := coltype.Parse(kindName)
	if err != nil {
		return err
	}
	if !kind.IsNumeric() || kind.IsComplex() {
		return colerrors.Newf(colerrors.CodeInvalidType,
			"stats requires a real numeric kind, have %s", kind)
	}

	f, err := os.Open(path) //nolint:gosec // G304: path comes from the CLI user
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return colerrors.New(colerrors.CodeDataNotFound, "empty CSV file")
	}

	idx := -1
	for i, name := range records[0] {
		if name == colName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return colerrors.Newf(colerrors.CodeDataNotFound,
			"column %q not found in header", colName)
	}

	rows := records[1:]
	col, err := column.New(kind, len(rows))
	if err != nil {
		return err
	}
	col.SetName(colName)
	for i, row := range rows {
		if idx >= len(row) || row[idx] == "" {
			continue // stays invalid
		}
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			return colerrors.Wrap(err, colerrors.CodeIllegalInput,
				fmt.Sprintf("row %d: bad value %q", i+1, row[idx]))
		}
		if err := col.SetFloat(i, v); err != nil {
			return err
		}
	}

	if !col.HasValid() {
		return colerrors.Newf(colerrors.CodeDataNotFound,
			"column %q has no valid values", colName)
	}

	mean, err := col.Mean()
	if err != nil {
		return err
	}
	stdev, err := col.Stdev()
	if err != nil {
		return err
	}
	median, err := col.Median()
	if err != nil {
		return err
	}
	min, err := col.Min()
	if err != nil {
		return err
	}
	max, err := col.Max()
	if err != nil {
		return err
	}

	fmt.Printf("column:  %s (%s)\n", colName, kind)
	fmt.Printf("rows:    %d (%d invalid)\n", col.Len(), col.CountInvalid())
	fmt.Printf("mean:    %g\n", mean)
	fmt.Printf("stdev:   %g\n", stdev)
	fmt.Printf("median:  %g\n", median)
	fmt.Printf("min:     %g\n", min)
	fmt.Printf("max:     %g\n", max)
	return nil
}
