package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"kvbackup/internal/cliutil"
	"kvbackup/internal/components/telemetry"
	"kvbackup/internal/config"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool

	cfg  config.Config
	otel telemetry.Telemetry
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "", "Path to the config file, by default kvbackup.json5 is searched for from the working directory upwards.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Print debug output, including the http requests made.")
}

var rootCmd = &cobra.Command{
	Use:   "kvbackup",
	Short: "kvbackup backs up Splunk KV store collections to csv files.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)

		wd, err := os.Getwd()
		if err != nil {
			cliutil.Fatal("failed to get working directory", err)
		}
		var found string
		cfg, found, err = config.Load(wd, *configPath)
		if err != nil {
			cliutil.Fatal("failed to read config", err)
		}
		if found != "" {
			slog.Debug("using config", "path", found)
		}

		otel, err = telemetry.Setup(cmd.Context(), "kvbackup", cfg.Telemetry)
		if err != nil {
			cliutil.Fatal("failed to setup telemetry", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := otel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err.Error())
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
