package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"kvbackup/internal/cliutil"
	"kvbackup/internal/components/credentials"
	"kvbackup/internal/config"
	"kvbackup/internal/exporter"
	"kvbackup/internal/history"
	"kvbackup/internal/kvstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type exportFlags struct {
	app        string
	collection string
	username   string
}

var exportArgs exportFlags

func init() {
	exportCmd.Flags().StringVar(&exportArgs.app, "app", "", "The Splunk app (namespace) that owns the collection.")
	exportCmd.Flags().StringVar(&exportArgs.collection, "collection", "", "The collection to back up, a leading 'kvstore_' is ignored.")
	exportCmd.Flags().StringVar(&exportArgs.username, "username", "", "The Splunk username, the password is always prompted for unless KVBACKUP_PASSWORD is set.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [--app <name>] [--collection <name>] [--username <user>]",
	Short: "Backs up a KV store collection to {output_dir}/{app}/kvstore_{collection}.csv.",
	Run: func(cmd *cobra.Command, args []string) {
		_, err := runExport(cmd.Context(), cfg, exportArgs, os.Stdin, os.Stdout)
		if err != nil {
			cliutil.Fatal("export failed", err)
		}
	},
}

func runExport(ctx context.Context, cfg config.Config, flags exportFlags, in *os.File, out io.Writer) (exporter.Result, error) {
	prompt := credentials.NewPrompt(in, out)
	prompt.Username = flags.username

	target := exporter.Target{
		Namespace:  strings.TrimSpace(flags.app),
		Collection: strings.TrimSpace(flags.collection),
	}
	if target.Namespace == "" || target.Collection == "" {
		fmt.Fprintln(out, "Please enter the following information:")
	}
	if target.Namespace == "" {
		answer, err := prompt.Ask("App name")
		if err != nil {
			return exporter.Result{}, fmt.Errorf("read app name: %w", err)
		}
		target.Namespace = strings.TrimSpace(answer)
	}
	if target.Collection == "" {
		answer, err := prompt.Ask("KV store collection name")
		if err != nil {
			return exporter.Result{}, fmt.Errorf("read collection name: %w", err)
		}
		target.Collection = strings.TrimSpace(answer)
	}

	if cfg.SkipVerify() {
		slog.Warn("tls certificate verification is disabled", "base_url", cfg.BaseUrl)
	}
	client, err := kvstore.NewClient(kvstore.Options{
		BaseUrl:            cfg.BaseUrl,
		InsecureSkipVerify: cfg.SkipVerify(),
		Timeout:            cfg.RequestTimeout(),
	})
	if err != nil {
		return exporter.Result{}, err
	}

	schema, err := cfg.SchemaMode()
	if err != nil {
		return exporter.Result{}, err
	}
	extraKeys, err := cfg.ExtraKeyPolicy()
	if err != nil {
		return exporter.Result{}, err
	}

	var options []exporter.ExporterOption
	if cfg.History.Enabled() {
		database, err := history.Open(cfg.History)
		if err != nil {
			return exporter.Result{}, fmt.Errorf("open history: %w", err)
		}
		defer database.Close()
		store, err := history.NewStore(ctx, database)
		if err != nil {
			return exporter.Result{}, fmt.Errorf("open history: %w", err)
		}
		options = append(options, exporter.WithHistory(store))
	}

	exp := exporter.New(client, exporter.Options{
		OutputDir: cfg.OutputDir,
		Schema:    schema,
		ExtraKeys: extraKeys,
	}, options...)

	res, err := exp.Run(ctx, target, credentials.Chain{credentials.Env{}, prompt})
	if err != nil {
		return res, err
	}
	printResult(out, res)
	return res, nil
}

func printResult(out io.Writer, res exporter.Result) {
	t := cliutil.NewTable(out)
	t.AppendHeader(table.Row{"App", "Collection", "Outcome", "Status", "Rows", "Columns", "File"})
	t.AppendRow(table.Row{
		res.Target.Namespace,
		res.Collection,
		res.Outcome,
		res.StatusCode,
		res.Rows,
		len(res.Columns),
		res.Path,
	})
	t.Render()
}
