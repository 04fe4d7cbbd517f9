package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/christopherklint97/ponto/internal/backend"
	"github.com/christopherklint97/ponto/internal/config"
	"github.com/christopherklint97/ponto/internal/export"
	"github.com/christopherklint97/ponto/internal/present"
	"github.com/christopherklint97/ponto/internal/report"
	"github.com/christopherklint97/ponto/internal/server"
	"github.com/christopherklint97/ponto/internal/store"
	"github.com/christopherklint97/ponto/internal/tui"
	"github.com/spf13/cobra"
)

const barWidth = 40

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	in := bufio.NewReader(os.Stdin)
	if email == "" {
		if email, err = prompt(in, "E-mail: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = prompt(in, "Senha: "); err != nil {
			return err
		}
	}

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	client := backend.NewClient(backend.Options{BaseURL: cfg.Backend.BaseURL, Logger: logger})
	token, err := client.Login(cmd.Context(), email, password)
	if err != nil {
		return err
	}
	if err := db.SetToken(token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	if managerFlag > 0 {
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		if err := config.SaveManagerID(path, managerFlag); err != nil {
			return fmt.Errorf("saving manager ID: %w", err)
		}
	}

	fmt.Println("Logged in.")
	return nil
}

func prompt(in *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runReport(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	var cards []report.Card
	if len(args) == 1 {
		card, err := e.service.Card(ctx, e.managerID, report.CardKey(args[0]))
		if err != nil {
			return err
		}
		cards = []report.Card{card}
	} else {
		cards = e.service.Dashboard(ctx, e.managerID)
	}

	fmt.Println(headerStyle.Render("Período " + e.service.Period().String()))
	fmt.Println()
	failed := 0
	for _, c := range cards {
		fmt.Printf("  %-24s %12s  %s\n", c.Title, present.Value(c), deltaOrError(c))
		if c.State == report.StateFailed {
			failed++
		}
	}
	if failed == len(cards) {
		return fmt.Errorf("no card could be computed: %w", cards[0].Err)
	}
	return nil
}

func deltaOrError(c report.Card) string {
	if c.State == report.StateFailed {
		return dimStyle.Render(c.Err.Error())
	}
	return present.Badge(c.Delta, c.Unit)
}

func runCompare(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer e.Close()

	c, err := e.service.Compare(cmd.Context(), e.managerID)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("Horas extras"))
	fmt.Println()
	fmt.Printf("  %-10s %10s  %s\n", c.Previous.Label(), present.Percent(c.PreviousOvertime), formatHours(c.PreviousAgg.TotalHours()))
	fmt.Printf("  %-10s %10s  %s\n", c.Current.Label(), present.Percent(c.CurrentOvertime), formatHours(c.CurrentAgg.TotalHours()))
	fmt.Printf("\n  Variação: %s\n", present.Badge(c.Delta, report.UnitPercent))
	return nil
}

func formatHours(h float64) string {
	return present.Duration(h) + " trabalhadas"
}

func runChart(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer e.Close()

	var chart report.Chart
	switch args[0] {
	case "allocation":
		chart = e.service.AllocationChart(cmd.Context(), e.managerID)
	case "overtime":
		chart = e.service.OvertimeChart(cmd.Context(), e.managerID)
	default:
		return fmt.Errorf("unknown chart %q (want allocation or overtime)", args[0])
	}

	if chart.State == report.StateFailed {
		return chart.Err
	}
	fmt.Println(headerStyle.Render(chart.Title))
	fmt.Println()
	if len(chart.Bars) == 0 {
		fmt.Println("  Nenhum apontamento no período.")
		return nil
	}
	renderBars(os.Stdout, chart)
	return nil
}

func renderBars(w io.Writer, chart report.Chart) {
	top := 0.0
	for _, b := range chart.Bars {
		top = max(top, b.Value)
	}
	if chart.Unit == report.UnitPercent {
		top = 100
	}
	for _, b := range chart.Bars {
		n := 0
		if top > 0 {
			n = int(b.Value / top * barWidth)
		}
		fmt.Fprintf(w, "  %-20s %s %s\n", b.Label, barStyle.Render(strings.Repeat("█", n)), present.BarValue(b.Value, chart.Unit))
	}
}

func runOvertime(cmd *cobra.Command, args []string) error {
	employeeID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || employeeID <= 0 {
		return fmt.Errorf("invalid employee ID %q", args[0])
	}

	e, err := setup(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer e.Close()

	res := e.service.EmployeeOvertime(cmd.Context(), employeeID)
	summary, err := res.Unwrap()
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Horas extras de %d em %s", employeeID, e.service.Period().Label())))
	fmt.Println()
	if res.Outcome == backend.OutcomeEmpty || len(summary.Entries) == 0 {
		fmt.Println("  Nenhuma hora extra no período.")
		return nil
	}
	for _, entry := range summary.Entries {
		day := entry.DateKey
		if !entry.Dated {
			day = "sem data"
		}
		fmt.Printf("  %-10s  %s  %-10s %s\n", day, present.Duration(entry.HoursWorked), entry.Status, entry.Justification)
	}
	fmt.Printf("\nTotal: %s\n", present.Duration(summary.TotalHours))
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	key, ok := report.StoreKey(report.CardKey(args[0]))
	if !ok {
		return fmt.Errorf("unknown card %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	samples, err := db.History(key, limit)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		fmt.Println("No values saved yet.")
		return nil
	}
	for _, s := range samples {
		fmt.Printf("  %s  %s\n", s.RecordedAt.Local().Format("2006-01-02 15:04"), present.Number(s.Value))
	}
	return nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	// log lines would tear the alt screen
	logOutput = io.Discard

	e, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer e.Close()

	p := tea.NewProgram(tui.NewApp(e.service, e.managerID), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer e.Close()

	snap, err := e.service.Snapshot(cmd.Context(), e.managerID)
	if err != nil {
		return err
	}
	if err := export.WriteWorkbook(args[0], snap); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d cards, %d days).\n", args[0], len(snap.Cards), len(snap.Daily))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	if addr == "" {
		addr = e.cfg.Server.Addr
	}

	h := server.NewHandler(e.service, e.managerID, e.logger)
	router := server.NewRouter(h, server.Options{
		AllowedOrigins: e.cfg.Server.AllowedOrigins,
		StaticDir:      e.cfg.Server.StaticDir,
		LogOutput:      requestLog(e.cfg),
	})

	e.logger.Info("serving", "addr", addr, "manager", e.managerID)
	fmt.Printf("Listening on %s\n", addr)
	return server.ListenAndServe(ctx, addr, router)
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.WriteDefault(configPath); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(editor, []string{editor, configPath}, &proc)
	if err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	_, err = process.Wait()
	return err
}
