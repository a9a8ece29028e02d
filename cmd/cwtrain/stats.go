package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/cwtrain/internal/config"
	"github.com/verte-zerg/cwtrain/internal/model"
	"github.com/verte-zerg/cwtrain/internal/stats"
	"github.com/verte-zerg/cwtrain/internal/statsui"
	"github.com/verte-zerg/cwtrain/internal/store"
)

var (
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsChars       string
	statsPlain       bool
	statsLogPath     string
	statsJournalPath string

	exportFormat string
	exportOutput string
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	flags.IntVar(&statsLast, "last", 0, "limit to last N sessions")
	flags.IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	flags.StringVar(&statsChars, "char", "", "comma separated characters for per-char curves (COMMA for ',')")
	flags.StringVar(&statsLogPath, "log", config.DefaultLogPath(), "session log CSV path")
	flags.StringVar(&statsJournalPath, "journal", config.DefaultJournalPath(), "attempt journal path")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the browser")
	cmd.AddCommand(newStatsExportCmd())
	return cmd
}

func newStatsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stats as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE:  runStatsExportCmd,
	}
	cmd.Flags().StringVar(&exportFormat, "format", stats.FormatJSON, "output format (json or yaml)")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	return cmd
}

func statsConfig(cmd *cobra.Command) (model.StatsConfig, error) {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return model.StatsConfig{}, err
	}
	applyStringConfig(cmd, "log", &statsLogPath, fileCfg.Log.Path)
	applyStringConfig(cmd, "journal", &statsJournalPath, fileCfg.Log.Journal)

	var since *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		since = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return model.StatsConfig{
		Since:       since,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Chars:       statsChars,
	}, nil
}

// openJournal opens the journal read side. A missing journal only
// disables the journal sections.
func openJournal() (*store.Store, stats.JournalReader) {
	if _, err := os.Stat(statsJournalPath); err != nil {
		return nil, nil
	}
	st, err := store.Open(statsJournalPath)
	if err != nil {
		logErrf("attempt journal disabled: %v\n", err)
		return nil, nil
	}
	return st, st
}

func closeJournal(st *store.Store) {
	if st == nil {
		return
	}
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close journal: %v\n", cerr)
	}
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig(cmd)
	if err != nil {
		return err
	}
	st, journal := openJournal()
	defer closeJournal(st)

	load := func(ctx context.Context, cfg model.StatsConfig) (stats.Report, error) {
		return stats.BuildReport(ctx, statsLogPath, journal, nil, cfg)
	}

	out := cmd.OutOrStdout()
	if statsPlain || !stats.UseColor(out) {
		report, err := load(context.Background(), cfg)
		if err != nil {
			return err
		}
		return stats.RenderReport(out, report, cfg, 0, stats.UseColor(out), time.Now())
	}

	m := statsui.NewModel(load, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func runStatsExportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfig(cmd)
	if err != nil {
		return err
	}
	st, journal := openJournal()
	defer closeJournal(st)

	report, err := stats.BuildReport(context.Background(), statsLogPath, journal, nil, cfg)
	if err != nil {
		return err
	}
	export := stats.NewExport(report, time.Now())

	if exportOutput == "" {
		return stats.WriteExport(cmd.OutOrStdout(), export, exportFormat)
	}
	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOutput, err)
	}
	if err := stats.WriteExport(f, export, exportFormat); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", exportOutput, err)
	}
	return nil
}
