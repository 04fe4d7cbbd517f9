package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/christopherklint97/ponto/internal/backend"
	"github.com/christopherklint97/ponto/internal/config"
	"github.com/christopherklint97/ponto/internal/period"
	"github.com/christopherklint97/ponto/internal/report"
	"github.com/christopherklint97/ponto/internal/store"
	"github.com/spf13/cobra"
	"github.com/tj/go-naturaldate"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	managerFlag int64
	atFlag      string
	verboseFlag bool

	logOutput io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:          "ponto",
	Short:        "Team time-tracking reports",
	Long:         "ponto reads a team's apontamentos from the ponto backend and reports hours, overtime and allocation for the month.",
	SilenceUsage: true,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the backend and save the token",
	RunE:  runLogin,
}

var reportCmd = &cobra.Command{
	Use:       "report [card]",
	Short:     "Print the month's KPI cards",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: cardArgs(),
	RunE:      runReport,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare overtime with the previous month",
	RunE:  runCompare,
}

var chartCmd = &cobra.Command{
	Use:       "chart allocation|overtime",
	Short:     "Print a bar chart",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"allocation", "overtime"},
	RunE:      runChart,
}

var overtimeCmd = &cobra.Command{
	Use:   "overtime <employeeID>",
	Short: "List one employee's horas extras",
	Args:  cobra.ExactArgs(1),
	RunE:  runOvertime,
}

var historyCmd = &cobra.Command{
	Use:       "history <card>",
	Short:     "Show the saved values of a card",
	Args:      cobra.ExactArgs(1),
	ValidArgs: cardArgs(),
	RunE:      runHistory,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive dashboard",
	RunE:  runDashboard,
}

var exportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export the month to an xlsx workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the reports as a JSON API for the web dashboard",
	RunE:  runServe,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config file in your editor",
	RunE:  runConfig,
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&managerFlag, "manager", 0, "manager ID whose team is reported (overrides config)")
	rootCmd.PersistentFlags().StringVar(&atFlag, "at", "", `reference date, e.g. "last month" or "2 months ago"`)
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log debug output to stderr")

	loginCmd.Flags().String("email", "", "account e-mail")
	loginCmd.Flags().String("password", "", "account password (prompted when empty)")
	historyCmd.Flags().Int("limit", 12, "number of values to show")
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(overtimeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func cardArgs() []string {
	keys := report.CardKeys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelWarn
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelWarn
	}
	if verboseFlag {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: level}))
}

// requestLog is where the server writes its JSON request log.
func requestLog(cfg *config.Config) io.Writer {
	if cfg.Log.File == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		Compress:   true,
	}
}

// referenceClock is time.Now, or a clock stopped at the instant named by --at.
func referenceClock() (func() time.Time, error) {
	if strings.TrimSpace(atFlag) == "" {
		return time.Now, nil
	}
	t, err := naturaldate.Parse(atFlag, time.Now(), naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return nil, fmt.Errorf("parsing --at %q: %w", atFlag, err)
	}
	return func() time.Time { return t }, nil
}

func resolveManager(cfg *config.Config) (int64, error) {
	if managerFlag > 0 {
		return managerFlag, nil
	}
	if cfg.Backend.ManagerID > 0 {
		return cfg.Backend.ManagerID, nil
	}
	return 0, config.ErrMissingManager
}

func newBackendClient(cfg *config.Config, db *store.DB, logger *slog.Logger) (*backend.Client, error) {
	token := cfg.Backend.Token
	if token == "" && db != nil {
		saved, err := db.Token()
		if err != nil {
			return nil, fmt.Errorf("reading saved token: %w", err)
		}
		token = saved
	}
	return backend.NewClient(backend.Options{
		BaseURL:    cfg.Backend.BaseURL,
		Token:      token,
		Timeout:    time.Duration(cfg.Backend.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.Backend.MaxRetries,
		Logger:     logger,
	}), nil
}

func businessDays(ctx context.Context, cfg *config.Config, logger *slog.Logger) (period.BusinessDays, error) {
	if cfg.Policy.BusinessDaysMode != "calendar" {
		return period.Fixed(cfg.Policy.BusinessDays), nil
	}
	if cfg.Policy.HolidaysSource == "" {
		return period.Calendar{}, nil
	}
	holidays, err := period.LoadHolidays(ctx, cfg.Policy.HolidaysSource)
	if err != nil {
		return nil, fmt.Errorf("loading holidays: %w", err)
	}
	logger.Debug("loaded holidays", "source", cfg.Policy.HolidaysSource, "count", len(holidays))
	return period.Calendar{Holidays: holidays}, nil
}

// env is everything a report command needs.
type env struct {
	cfg       *config.Config
	db        *store.DB
	client    *backend.Client
	service   *report.Service
	logger    *slog.Logger
	managerID int64
}

func (e *env) Close() {
	if e.db != nil {
		e.db.Close()
	}
}

func setup(ctx context.Context, needManager bool) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	var managerID int64
	if needManager {
		if managerID, err = resolveManager(cfg); err != nil {
			return nil, err
		}
	}

	now, err := referenceClock()
	if err != nil {
		return nil, err
	}

	days, err := businessDays(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	client, err := newBackendClient(cfg, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	svc := report.New(report.Options{
		Source:            client,
		Store:             db,
		BusinessDays:      days,
		DefaultDailyHours: cfg.Policy.DefaultDailyHours,
		Now:               now,
		Logger:            logger,
	})

	return &env{
		cfg:       cfg,
		db:        db,
		client:    client,
		service:   svc,
		logger:    logger,
		managerID: managerID,
	}, nil
}
