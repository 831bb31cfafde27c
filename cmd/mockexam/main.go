// Package main provides the CLI entrypoint for mockexam.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/mockexam/internal/catalog"
	"github.com/verte-zerg/mockexam/internal/config"
	"github.com/verte-zerg/mockexam/internal/logger"
	"github.com/verte-zerg/mockexam/internal/model"
	"github.com/verte-zerg/mockexam/internal/results"
	"github.com/verte-zerg/mockexam/internal/resultui"
	"github.com/verte-zerg/mockexam/internal/session"
	"github.com/verte-zerg/mockexam/internal/store"
	"github.com/verte-zerg/mockexam/internal/tui"
)

const (
	defaultLang          = "en"
	defaultLogLevel      = "info"
	defaultLogFormat     = "json"
	defaultHistoryWindow = 3
	defaultChartHeight   = 8
)

var (
	logLevel  string
	logFormat string
	logFile   string

	takeLang       string
	takeExamsDir   string
	takeFullscreen bool

	resultLang      string
	resultSolutions bool

	historyExam   string
	historySince  string
	historyLast   int
	historyWindow int
	historyHeight int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mockexam [exam-id]",
		Short:         "Timed mock exams in the terminal",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTakeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", defaultLogFormat, "log format (json or pretty)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", config.DefaultLogPath(), "log file path")
	addTakeFlags(rootCmd)

	rootCmd.AddCommand(newTakeCmd())
	rootCmd.AddCommand(newExamsCmd())
	rootCmd.AddCommand(newResultCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addTakeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&takeLang, "lang", defaultLang, "question language (en or hi)")
	cmd.Flags().StringVar(&takeExamsDir, "exams-dir", config.DefaultExamsDir(), "directory with extra exam banks")
	cmd.Flags().BoolVar(&takeFullscreen, "fullscreen", true, "use the alternate screen while the exam runs")
}

func newTakeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "take <exam-id>",
		Short: "Take a mock exam",
		Args:  cobra.ExactArgs(1),
		RunE:  runTakeCmd,
	}
	addTakeFlags(cmd)
	return cmd
}

// env holds the resources shared by every command.
type env struct {
	cfg     config.FileConfig
	log     zerolog.Logger
	catalog *catalog.Catalog
	store   *store.Store
	closers []io.Closer
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			logErrf("failed to close: %v\n", err)
		}
	}
}

func setupEnv(cmd *cobra.Command, withStore bool) (*env, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)
	applyStringConfig(cmd, "exams-dir", &takeExamsDir, fileCfg.Exam.ExamsDir)
	if err := validateLogFormat(logFormat); err != nil {
		return nil, err
	}

	log, logCloser, err := logger.Setup(logLevel, logFormat, logFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	e := &env{cfg: fileCfg, log: log, closers: []io.Closer{logCloser}}

	cat, err := catalog.Load(takeExamsDir, log)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to load exams: %w", err)
	}
	e.catalog = cat

	if withStore {
		st, err := store.Open(config.DefaultDBPath())
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		e.store = st
		e.closers = append(e.closers, st)
	}
	return e, nil
}

func runTakeCmd(cmd *cobra.Command, args []string) error {
	e, err := setupEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	applyStringConfig(cmd, "lang", &takeLang, e.cfg.Exam.Lang)
	applyBoolConfig(cmd, "fullscreen", &takeFullscreen, e.cfg.Exam.Fullscreen)
	locale, ok := model.ParseLocale(takeLang)
	if !ok {
		return fmt.Errorf("--lang must be %q or %q", model.LocalePrimary, model.LocaleSecondary)
	}

	if len(args) == 0 {
		if err := printExams(cmd.OutOrStdout(), e.catalog.Categories()); err != nil {
			return err
		}
		logErrln("Start an exam with: mockexam take <exam-id>")
		return nil
	}

	examID := args[0]
	exam, err := e.catalog.GetExam(examID)
	if err != nil {
		return fmt.Errorf("failed to load exam %q: %w", examID, err)
	}
	questions, err := e.catalog.GetQuestions(examID)
	if err != nil {
		return fmt.Errorf("failed to load questions for %q: %w", examID, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		id, err := runExam(ctx, e, exam, questions, locale)
		if err != nil {
			return err
		}
		if id == "" {
			logErrln("Exam abandoned; nothing was saved.")
			return nil
		}
		attempt, err := e.store.GetAttempt(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load attempt: %w", err)
		}
		retake, err := showResult(cmd.OutOrStdout(), e, exam, questions, attempt, locale, false)
		if err != nil || !retake {
			return err
		}
		e.log.Info().Str("exam", exam.ID).Msg("retaking exam")
	}
}

func runExam(ctx context.Context, e *env, exam model.ExamDefinition, questions []model.Question, locale model.Locale) (string, error) {
	display := tui.NewAltScreen(takeFullscreen && isTerminal())
	sess, err := session.New(exam, questions, session.Options{
		Saver:   e.store,
		Display: display,
		Locale:  locale,
		Logger:  e.log,
	})
	if err != nil {
		return "", fmt.Errorf("failed to start exam %q: %w", exam.ID, err)
	}
	defer sess.Close()

	m := tui.NewModel(ctx, sess, display, e.log)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return "", fmt.Errorf("failed to run TUI: %w", err)
	}
	if m.Abandoned() {
		return "", nil
	}
	return m.AttemptID(), nil
}

// showResult opens the result browser on a terminal and prints the report
// otherwise. It reports whether the user asked to retake the exam.
func showResult(w io.Writer, e *env, exam model.ExamDefinition, questions []model.Question, attempt model.StoredAttempt, locale model.Locale, solutions bool) (bool, error) {
	if isTerminal() {
		m := resultui.NewModel(resultui.Data{
			Exam:      exam,
			Questions: questions,
			Attempt:   attempt,
			Locale:    locale,
		}, e.store)
		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			return false, fmt.Errorf("failed to run result TUI: %w", err)
		}
		return m.Retake(), nil
	}
	return false, printResult(w, exam, questions, attempt, locale, solutions)
}

func printResult(w io.Writer, exam model.ExamDefinition, questions []model.Question, attempt model.StoredAttempt, locale model.Locale, solutions bool) error {
	b := results.Build(exam, questions, attempt.AttemptResult)
	if err := results.RenderSummary(w, exam, attempt, b); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := results.RenderSectionTable(w, b.Sections); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !solutions {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := results.RenderSolutions(w, questions, attempt.AttemptResult, locale); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newExamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exams",
		Short: "List available exams by category",
		Args:  cobra.NoArgs,
		RunE:  runExamsCmd,
	}
	cmd.Flags().StringVar(&takeExamsDir, "exams-dir", config.DefaultExamsDir(), "directory with extra exam banks")
	return cmd
}

func runExamsCmd(cmd *cobra.Command, _ []string) error {
	e, err := setupEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()
	return printExams(cmd.OutOrStdout(), e.catalog.Categories())
}

func printExams(w io.Writer, categories []model.Category) error {
	for i, c := range categories {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		if _, err := fmt.Fprintf(w, "%s (%d exams)\n", c.Name, len(c.Exams)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		for _, ex := range c.Exams {
			line := fmt.Sprintf("  %-10s %s  %d questions, %d min", ex.ID, ex.Name, ex.TotalQuestions, ex.DurationMinutes)
			if _, err := fmt.Fprintln(w, line); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}

func newResultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "result <attempt-id>",
		Short: "Show a stored attempt",
		Args:  cobra.ExactArgs(1),
		RunE:  runResultCmd,
	}
	cmd.Flags().StringVar(&resultLang, "lang", "", "solution language (default: attempt language)")
	cmd.Flags().BoolVar(&resultSolutions, "solutions", false, "print solutions when not on a terminal")
	cmd.Flags().StringVar(&takeExamsDir, "exams-dir", config.DefaultExamsDir(), "directory with extra exam banks")
	return cmd
}

func runResultCmd(cmd *cobra.Command, args []string) error {
	e, err := setupEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	attempt, err := e.store.GetAttempt(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load attempt %q: %w", args[0], err)
	}
	locale := attempt.Locale
	if resultLang != "" {
		l, ok := model.ParseLocale(resultLang)
		if !ok {
			return fmt.Errorf("--lang must be %q or %q", model.LocalePrimary, model.LocaleSecondary)
		}
		locale = l
	}
	exam, err := e.catalog.GetExam(attempt.ExamID)
	if err != nil {
		return fmt.Errorf("failed to load exam %q: %w", attempt.ExamID, err)
	}
	questions, err := e.catalog.GetQuestions(attempt.ExamID)
	if err != nil {
		return fmt.Errorf("failed to load questions for %q: %w", attempt.ExamID, err)
	}
	_, err = showResult(cmd.OutOrStdout(), e, exam, questions, attempt, locale, resultSolutions)
	return err
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past attempts",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyExam, "exam", "", "exam id filter")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&historyWindow, "window", defaultHistoryWindow, "moving average window for the trend")
	cmd.Flags().IntVar(&historyHeight, "height", defaultChartHeight, "trend chart height in rows")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	since, err := parseSince(historySince)
	if err != nil {
		return err
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if historyWindow <= 0 {
		return fmt.Errorf("--window must be > 0")
	}
	if historyHeight <= 0 {
		return fmt.Errorf("--height must be > 0")
	}

	st, err := store.Open(config.DefaultDBPath())
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
	h, err := results.BuildHistory(ctx, st, model.HistoryFilter{
		ExamID: historyExam,
		Since:  since,
		Last:   historyLast,
	})
	if err != nil {
		return err
	}
	if len(h.Attempts) == 0 {
		logErrln("No attempts yet. Take one with: mockexam take <exam-id>")
		return nil
	}
	out := cmd.OutOrStdout()
	if err := results.RenderHistory(out, h, historyWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(h.Percentages) < 2 {
		return nil
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return results.RenderTrendChart(out, h, historyWindow, results.ChartWidthFor(terminalWidth()), historyHeight)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func parseSince(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
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
		if !errors.Is(err, os.ErrNotExist) {
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
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if f := cmd.Flags().Lookup(name); f == nil || f.Changed {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if f := cmd.Flags().Lookup(name); f == nil || f.Changed {
		return
	}
	*target = *value
}

func validateLogFormat(format string) error {
	switch format {
	case "json", "pretty":
		return nil
	default:
		return fmt.Errorf("--log-format must be json or pretty")
	}
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# mockexam configuration
# Uncomment a value to enable it. CLI flags override config values.

[exam]
# lang = %q              # Question language: en or hi
# exams-dir = %q         # Directory with extra exam banks (*.yaml)
# fullscreen = true       # Use the alternate screen during the exam

[log]
# level = %q             # trace, debug, info, warn, error
# format = %q            # json or pretty
# file = %q              # Log file path
`,
		defaultLang,
		config.DefaultExamsDir(),
		defaultLogLevel,
		defaultLogFormat,
		config.DefaultLogPath(),
	)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
