package main

import (
	"fmt"

	"github.com/cecat/soundviz/internal/cli"
	"github.com/cecat/soundviz/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent report runs",
		RunE:  runRuns,
	}

	cmd.Flags().IntP("limit", "n", 10, "number of runs to show")
	cmd.Flags().String("db", "", "history database path (default: $HOME/.config/soundviz/history.db)")

	_ = viper.BindPFlag("runs.limit", cmd.Flags().Lookup("limit"))
	_ = viper.BindPFlag("history.db_path", cmd.Flags().Lookup("db"))

	return cmd
}

func runRuns(cmd *cobra.Command, _ []string) error {
	store, err := storage.NewSQLiteStorage(historyDBPath())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate history database: %w", err)
	}

	runs, err := store.ListRuns(ctx, viper.GetInt("runs.limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println(cli.FormatWarning("No recorded runs"))
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Last %d runs", len(runs))))
	for _, run := range runs {
		span := "no data"
		if !run.Span.IsZero() {
			span = fmt.Sprintf("%s to %s",
				run.Span.Start.Format("2006-01-02 15:04"),
				run.Span.End.Format("2006-01-02 15:04"))
		}
		fmt.Printf("#%d  %s  %s\n", run.ID, run.CreatedAt.Format("2006-01-02 15:04"), run.LogPath)
		fmt.Printf("    %d rows (%d valid, %d invalid), %d batches, %s\n",
			run.TotalRows, run.ValidRows, run.InvalidRows, run.Batches, span)
		fmt.Printf("    %s\n", cli.FormatSubtle(run.ReportPath))
	}
	return nil
}
