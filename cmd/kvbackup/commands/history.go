package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"kvbackup/internal/cliutil"
	"kvbackup/internal/config"
	"kvbackup/internal/history"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type historyFlags struct {
	app   string
	limit int
}

var historyArgs historyFlags

func init() {
	historyCmd.Flags().StringVar(&historyArgs.app, "app", "", "Only show runs of this app.")
	historyCmd.Flags().IntVar(&historyArgs.limit, "limit", 20, "The maximum amount of runs to show.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--app <name>] [--limit <n>]",
	Short: "Prints the most recent export runs.",
	Run: func(cmd *cobra.Command, args []string) {
		err := runHistory(cmd.Context(), cfg, historyArgs, os.Stdout)
		if err != nil {
			cliutil.Fatal("failed to read history", err)
		}
	},
}

func runHistory(ctx context.Context, cfg config.Config, flags historyFlags, out io.Writer) error {
	if !cfg.History.Enabled() {
		return fmt.Errorf("history is not configured, set history.file or history.url in %s", config.FileName)
	}

	database, err := history.Open(cfg.History)
	if err != nil {
		return err
	}
	defer database.Close()
	store, err := history.NewStore(ctx, database)
	if err != nil {
		return err
	}

	runs, err := store.List(ctx, history.ListParams{
		Namespace: flags.app,
		Limit:     flags.limit,
	})
	if err != nil {
		return err
	}

	t := cliutil.NewTable(out)
	t.AppendHeader(table.Row{"Started", "Took", "App", "Collection", "Outcome", "Status", "Rows", "File / Error"})
	for _, run := range runs {
		detail := run.OutputPath
		if run.Error != "" {
			detail = run.Error
		}
		t.AppendRow(table.Row{
			run.StartedAt.Format(time.DateTime),
			run.Duration().Round(time.Millisecond),
			run.Namespace,
			run.Collection,
			run.Outcome,
			run.StatusCode,
			run.Rows,
			detail,
		})
	}
	t.Render()
	return nil
}
