package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cecat/soundviz/internal/cli"
	"github.com/cecat/soundviz/internal/common"
	"github.com/cecat/soundviz/internal/engine"
	"github.com/cecat/soundviz/internal/model"
	"github.com/cecat/soundviz/internal/report"
	"github.com/cecat/soundviz/internal/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultLogPath = "./logs/log.csv"
	defaultPlotDir = "./plots"
	defaultReport  = "Sound_viz.pdf"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate a sound log and render the PDF report",
		Long: `Read a sound classification log, fold it into aggregate statistics
(sequentially or across a worker pool), and render the multi-section
PDF report.`,
		RunE: runReport,
	}

	cmd.Flags().StringP("input", "i", defaultLogPath, "input CSV log file")
	cmd.Flags().StringP("output", "o", "", "output PDF file (default: <plot-dir>/Sound_viz.pdf)")
	cmd.Flags().String("plot-dir", defaultPlotDir, "directory for intermediate chart images")
	cmd.Flags().IntP("cores", "c", 0, "worker pool size (default: number of CPUs)")
	cmd.Flags().Int("batch-size", 0, "rows per batch")
	cmd.Flags().Bool("save-history", false, "record this run in the history database")
	cmd.Flags().String("db", "", "history database path (default: $HOME/.config/soundviz/history.db)")

	_ = viper.BindPFlag("report.input", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("report.output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("report.plot_dir", cmd.Flags().Lookup("plot-dir"))
	_ = viper.BindPFlag("report.cores", cmd.Flags().Lookup("cores"))
	_ = viper.BindPFlag("report.batch_size", cmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("history.save", cmd.Flags().Lookup("save-history"))
	_ = viper.BindPFlag("history.db_path", cmd.Flags().Lookup("db"))

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	logPath := viper.GetString("report.input")
	plotDir := viper.GetString("report.plot_dir")
	pdfPath := resolvePDFPath(viper.GetString("report.output"), plotDir)

	fmt.Printf("Report will go to %s.\n", pdfPath)

	cfg := engine.DefaultConfig()
	if cores := viper.GetInt("report.cores"); cores > 0 {
		cfg.Workers = cores
	}
	if batch := viper.GetInt("report.batch_size"); batch > 0 {
		cfg.BatchSize = batch
	}

	var bar *progressbar.ProgressBar
	cfg.Progress = func(completed, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Aggregating batches..."),
			)
		}
		_ = bar.Set(completed)
	}

	started := time.Now().UTC()
	result, err := engine.New(cfg).Run(ctx, logPath)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("%s: %w", cli.FormatError("no log file found"), err)
		case errors.Is(err, common.ErrNoValidData):
			return fmt.Errorf("%s: %w", cli.FormatError("log contains no usable rows"), err)
		default:
			return err
		}
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf(
		"Processed %d rows (%d valid, %d invalid) in %d batches",
		result.TotalRows, result.ValidRows, result.InvalidRows, result.Batches)))

	data := report.Data{
		Totals:      result.Totals,
		Rows:        result.Rows,
		Span:        result.Span,
		LogPath:     logPath,
		TotalRows:   result.TotalRows,
		ValidRows:   result.ValidRows,
		InvalidRows: result.InvalidRows,
		Batches:     result.Batches,
	}
	if err := report.NewRenderer(plotDir).Generate(data, pdfPath); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Report written to %s", pdfPath)))

	if viper.GetBool("history.save") {
		if err := saveRunHistory(cmd, started, logPath, pdfPath, result); err != nil {
			// History is best-effort bookkeeping; the report already exists.
			slog.Warn("Failed to record run history", "error", err)
		}
	}
	return nil
}

func saveRunHistory(cmd *cobra.Command, started time.Time, logPath, pdfPath string, result *engine.Result) error {
	store, err := storage.NewSQLiteStorage(historyDBPath())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	_, err = store.SaveRun(ctx, model.RunSummary{
		CreatedAt:   started,
		LogPath:     logPath,
		ReportPath:  pdfPath,
		Span:        result.Span,
		GroupCounts: result.Totals.Classifications,
		TotalRows:   result.TotalRows,
		ValidRows:   result.ValidRows,
		InvalidRows: result.InvalidRows,
		Batches:     result.Batches,
	})
	return err
}

// resolvePDFPath applies the default report location and makes sure
// the output name carries a .pdf extension.
func resolvePDFPath(output, plotDir string) string {
	if output == "" {
		return filepath.Join(plotDir, defaultReport)
	}
	if !strings.EqualFold(filepath.Ext(output), ".pdf") {
		return output + ".pdf"
	}
	return output
}

func historyDBPath() string {
	if path := viper.GetString("history.db_path"); path != "" {
		return path
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "soundviz", "history.db")
}
