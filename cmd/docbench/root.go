package main

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/docbench/docbench/pkg/binding"
	"github.com/docbench/docbench/pkg/logger"

	// Registered bindings.
	_ "github.com/docbench/docbench/internal/database/memory"
	_ "github.com/docbench/docbench/internal/database/mongodb"
)

const version = "0.3.0"

var (
	log = logger.New("docbench")

	rootCmd = &cobra.Command{
		Use:   "docbench",
		Short: "document-store benchmark driver",
		Long: fmt.Sprintf(`docbench (v%s)

Drives CRUD workloads (insert, read, update, delete, range scan) against a
document database through its native client library. Configuration can be
set via command line flags or environment variables of the form
DOCBENCH_<flag> (e.g. DOCBENCH_THREADS=16).`, version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of docbench",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("docbench v%s\n", version)
		},
	}

	bindingsCmd = &cobra.Command{
		Use:   "bindings",
		Short: "List the registered database bindings",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(strings.Join(binding.ListRegistered(), "\n"))
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd, bindingsCmd, loadCmd, runCmd)
}

func initConfig() {
	// A .env file is optional; flags and real environment variables win.
	_ = godotenv.Load()

	viper.SetEnvPrefix("DOCBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
