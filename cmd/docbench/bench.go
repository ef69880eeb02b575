package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/VictoriaMetrics/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/docbench/docbench/internal/workload"
	"github.com/docbench/docbench/pkg/binding"
	"github.com/docbench/docbench/pkg/logger"
)

var (
	loadCmd = &cobra.Command{
		Use:     "load",
		Short:   "Load the record set into the target store",
		PreRunE: bindBenchFlags,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executePhase(cmd.Context(), "load", (*workload.Runner).Load)
		},
	}

	runCmd = &cobra.Command{
		Use:     "run",
		Short:   "Run the operation mix against the loaded record set",
		PreRunE: bindBenchFlags,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executePhase(cmd.Context(), "run", (*workload.Runner).Run)
		},
	}
)

func init() {
	defaults := workload.DefaultConfig()
	for _, cmd := range []*cobra.Command{loadCmd, runCmd} {
		cmd.Flags().String("binding", "mongodb", "Binding to drive (see 'docbench bindings')")
		cmd.Flags().String("url", "", "Connection string, e.g. mongodb://host1:port1,host2:port2/database?options")
		cmd.Flags().String("database", "", "Database name used when the URL does not carry one")
		cmd.Flags().String("table", defaults.Table, "Table (collection) to operate on")
		cmd.Flags().Int("threads", defaults.Threads, "Number of concurrent workers")
		cmd.Flags().Int("records", defaults.RecordCount, "Number of records in the data set")
		cmd.Flags().Int("operations", defaults.OperationCount, "Number of operations in the run phase")
		cmd.Flags().Int("fields", defaults.FieldCount, "Number of fields per record")
		cmd.Flags().Int("field-length", defaults.FieldLength, "Length of each field value in bytes")
		cmd.Flags().Float64("read-proportion", defaults.ReadProportion, "Relative weight of reads in the mix")
		cmd.Flags().Float64("update-proportion", defaults.UpdateProportion, "Relative weight of updates in the mix")
		cmd.Flags().Float64("insert-proportion", defaults.InsertProportion, "Relative weight of inserts in the mix")
		cmd.Flags().Float64("scan-proportion", defaults.ScanProportion, "Relative weight of scans in the mix")
		cmd.Flags().Int("max-scan-length", defaults.MaxScanLength, "Upper bound on records per scan")
		cmd.Flags().Bool("metrics", false, "Dump Prometheus-format metrics to stdout after the phase")
	}
}

// bindBenchFlags exposes the executing command's flags through viper so the
// DOCBENCH_* environment can override them.
func bindBenchFlags(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	return viper.BindPFlags(cmd.Root().PersistentFlags())
}

func benchConfig() workload.Config {
	cfg := workload.DefaultConfig()
	cfg.Table = viper.GetString("table")
	cfg.RecordCount = viper.GetInt("records")
	cfg.OperationCount = viper.GetInt("operations")
	cfg.FieldCount = viper.GetInt("fields")
	cfg.FieldLength = viper.GetInt("field-length")
	cfg.ReadProportion = viper.GetFloat64("read-proportion")
	cfg.UpdateProportion = viper.GetFloat64("update-proportion")
	cfg.InsertProportion = viper.GetFloat64("insert-proportion")
	cfg.ScanProportion = viper.GetFloat64("scan-proportion")
	cfg.MaxScanLength = viper.GetInt("max-scan-length")
	cfg.Threads = viper.GetInt("threads")
	return cfg
}

// benchProperties maps flags onto binding properties. Unset flags stay
// absent so each binding applies its own defaults.
func benchProperties() binding.Properties {
	props := binding.Properties{}
	if url := viper.GetString("url"); url != "" {
		props["mongodb.url"] = url
	}
	if database := viper.GetString("database"); database != "" {
		props["mongodb.database"] = database
	}
	return props
}

type phaseFunc func(*workload.Runner, context.Context) (*workload.Report, error)

func executePhase(ctx context.Context, phase string, fn phaseFunc) error {
	log.SetLevel(logger.ParseLevel(viper.GetString("log-level")))

	name := viper.GetString("binding")
	if !binding.IsRegistered(name) {
		return fmt.Errorf("unknown binding %q (registered: %s)", name, strings.Join(binding.ListRegistered(), ", "))
	}

	cfg := benchConfig()
	runner := workload.NewRunner(name, cfg, benchProperties(), log.Named(name))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("starting %s phase on binding %s with %d threads", phase, name, cfg.Threads)
	report, err := fn(runner, ctx)
	if err != nil {
		if binding.IsConfigurationError(err) || binding.IsConnectionError(err) {
			log.Fatalf("%s phase aborted: %v", phase, err)
		}
		return err
	}
	log.Infof("%s phase complete: %s", phase, report)

	if viper.GetBool("metrics") {
		metrics.WritePrometheus(os.Stdout, false)
	}

	if report.Errors > 0 {
		return fmt.Errorf("%d of %d operations failed", report.Errors, report.Operations)
	}
	return nil
}
