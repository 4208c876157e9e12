// Package main provides the CLI entrypoint for toptens.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/toptens/internal/browse"
	"github.com/verte-zerg/toptens/internal/config"
	"github.com/verte-zerg/toptens/internal/model"
	"github.com/verte-zerg/toptens/internal/stats"
	"github.com/verte-zerg/toptens/internal/store"
	"github.com/verte-zerg/toptens/internal/tally"
)

const (
	dotenvPath         = ".env"
	defaultHistoryLast = 20
)

var (
	reportInputDir  string
	reportOutputDir string
	reportQuiet     bool
	reportRecord    bool
	reportDBPath    string

	browseInputDir string

	historyLast   int
	historyDBPath string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "toptens <input> <occupations-out> <states-out>",
		Short:         "Top ten occupations and states of certified applications",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runReportCmd,
	}

	rootCmd.Flags().StringVar(&reportInputDir, "input-dir", config.DefaultInputDir, "directory holding the input file")
	rootCmd.Flags().StringVar(&reportOutputDir, "output-dir", config.DefaultOutputDir, "directory for the report files")
	rootCmd.Flags().BoolVarP(&reportQuiet, "quiet", "q", false, "do not print rankings to stdout")
	rootCmd.Flags().BoolVar(&reportRecord, "record", false, "record the run in the history database")
	rootCmd.Flags().StringVar(&reportDBPath, "db", "", "history database path")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	settings, err := config.Resolve(config.DefaultConfigPath(), dotenvPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	verbose := !reportQuiet
	applyStringConfig(cmd, "input-dir", &reportInputDir, &settings.InputDir)
	applyStringConfig(cmd, "output-dir", &reportOutputDir, &settings.OutputDir)
	applyBoolConfig(cmd, "quiet", &verbose, &settings.Verbose)
	applyBoolConfig(cmd, "record", &reportRecord, &settings.Record)
	applyStringConfig(cmd, "db", &reportDBPath, &settings.DBPath)

	cfg := model.Config{
		InputDir:      reportInputDir,
		InputName:     args[0],
		OutputDir:     reportOutputDir,
		OccupationOut: args[1],
		StateOut:      args[2],
		Verbose:       verbose,
		Record:        reportRecord,
		DBPath:        reportDBPath,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	t, err := tally.ProcessFile(cfg.InputDir, cfg.InputName, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	report := stats.BuildReport(t)
	if cfg.Verbose {
		if err := stats.RenderReport(cmd.OutOrStdout(), report); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if err := stats.WriteReports(cfg.OutputDir, cfg.OccupationOut, cfg.StateOut, report); err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}

	if cfg.Record {
		id, err := recordRun(cmd.Context(), cfg, report)
		if err != nil {
			logErrf("failed to record run: %v\n", err)
		} else {
			logErrf("Recorded run %s\n", id)
		}
	}
	return nil
}

func recordRun(ctx context.Context, cfg model.Config, report stats.Report) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return "", fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	run := model.Run{
		InputPath:     filepath.Join(cfg.InputDir, cfg.InputName),
		OccupationOut: filepath.Join(cfg.OutputDir, cfg.OccupationOut),
		StateOut:      filepath.Join(cfg.OutputDir, cfg.StateOut),
		Total:         report.Total,
	}
	return st.InsertRun(ctx, run,
		stats.Top(report.Occupations, model.TopN),
		stats.Top(report.States, model.TopN))
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse <input>",
		Short: "Browse full rankings interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  runBrowseCmd,
	}
	cmd.Flags().StringVar(&browseInputDir, "input-dir", config.DefaultInputDir, "directory holding the input file")
	return cmd
}

func runBrowseCmd(cmd *cobra.Command, args []string) error {
	settings, err := config.Resolve(config.DefaultConfigPath(), dotenvPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "input-dir", &browseInputDir, &settings.InputDir)
	if err := validateName("input", args[0]); err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("browse needs an interactive terminal; run without browse to write reports")
	}

	t, err := tally.ProcessFile(browseInputDir, args[0], cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	m := browse.NewModel(filepath.Join(browseInputDir, args[0]), stats.BuildReport(t))
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run browse TUI: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs or show one run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "number of most recent runs to list (0 for all)")
	cmd.Flags().StringVar(&historyDBPath, "db", "", "history database path")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	settings, err := config.Resolve(config.DefaultConfigPath(), dotenvPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db", &historyDBPath, &settings.DBPath)
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	st, err := store.Open(historyDBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if len(args) == 1 {
		entries, err := st.ListRunEntries(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to load run: %w", err)
		}
		return stats.RenderRunEntries(cmd.OutOrStdout(), entries)
	}

	runs, err := st.ListRuns(ctx, historyLast)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	leaders := make(map[string][]model.RunEntry, len(runs))
	for _, run := range runs {
		entries, err := st.ListRunEntries(ctx, run.ID)
		if err != nil {
			return fmt.Errorf("failed to load run %s: %w", run.ID, err)
		}
		leaders[run.ID] = entries
	}
	return stats.RenderRuns(cmd.OutOrStdout(), runs, leaders)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# toptens configuration
# Uncomment a value to enable it. Environment variables (TOPTENS_*) override
# config values and CLI flags override both.

[report]
# input-dir = %q          # Directory holding input files
# output-dir = %q        # Directory for report files
# verbose = true               # Print rankings to stdout

[history]
# record = false               # Record runs in the history database
# db = %q
`,
		config.DefaultInputDir,
		config.DefaultOutputDir,
		config.DefaultDBPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if err := validateName("input", cfg.InputName); err != nil {
		return err
	}
	if err := validateName("occupations output", cfg.OccupationOut); err != nil {
		return err
	}
	if err := validateName("states output", cfg.StateOut); err != nil {
		return err
	}
	if cfg.OccupationOut == cfg.StateOut {
		return fmt.Errorf("occupations and states outputs must differ")
	}
	if cfg.InputDir == "" {
		return fmt.Errorf("--input-dir must not be empty")
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("--output-dir must not be empty")
	}
	if cfg.Record && cfg.DBPath == "" {
		return fmt.Errorf("--db must not be empty when recording")
	}
	return nil
}

func validateName(label, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s file name must not be empty", label)
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("%s file name %q must not contain a directory", label, name)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
