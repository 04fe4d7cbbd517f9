package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/christopherklint97/ponto/internal/period"
	"github.com/christopherklint97/ponto/internal/present"
	"github.com/christopherklint97/ponto/internal/report"
)

const (
	cardsPerRow = 4
	cardWidth   = 26
	loadTimeout = 60 * time.Second
)

// CardLoader computes one card. *report.Service satisfies it.
type CardLoader interface {
	Card(ctx context.Context, managerID int64, key report.CardKey) (report.Card, error)
	Period() period.Period
}

var _ CardLoader = (*report.Service)(nil)

type cardMsg struct {
	index int
	gen   int
	card  report.Card
	err   error
}

type App struct {
	loader    CardLoader
	managerID int64
	keys      []report.CardKey
	spinner   spinner.Model

	cards   []report.Card
	errs    []error
	loading []bool
	// gen discards results of a load that a refresh has superseded.
	gen   int
	width int
}

func NewApp(loader CardLoader, managerID int64) *App {
	s := spinner.New()
	s.Spinner = spinner.Dot

	keys := report.CardKeys()
	return &App{
		loader:    loader,
		managerID: managerID,
		keys:      keys,
		spinner:   s,
		cards:     make([]report.Card, len(keys)),
		errs:      make([]error, len(keys)),
		loading:   make([]bool, len(keys)),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.reload())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return a, tea.Quit
		case "r":
			if a.busy() {
				return a, nil
			}
			return a, tea.Batch(a.spinner.Tick, a.reload())
		}
	case cardMsg:
		if msg.gen != a.gen {
			return a, nil
		}
		a.cards[msg.index] = msg.card
		a.errs[msg.index] = msg.err
		a.loading[msg.index] = false
		return a, nil
	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Painel de apontamentos"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Gerente %d · %s", a.managerID, a.loader.Period().Label())))
	b.WriteString("\n")

	perRow := cardsPerRow
	if a.width > 0 && a.width < cardsPerRow*(cardWidth+4) {
		perRow = max(1, a.width/(cardWidth+4))
	}

	var row []string
	for i := range a.keys {
		row = append(row, a.renderCard(i))
		if len(row) == perRow {
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
			b.WriteString("\n")
			row = nil
		}
	}
	if len(row) > 0 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("r: atualizar · q: sair"))
	return b.String()
}

func (a *App) renderCard(i int) string {
	style := boxStyle.Width(cardWidth)
	if a.loading[i] {
		return style.Render(dimStyle.Render(string(a.keys[i])) + "\n" + a.spinner.View() + " carregando...")
	}
	if a.errs[i] != nil {
		return style.BorderForeground(errColor).Render(errorStyle.Render(string(a.keys[i])) + "\n" + a.errs[i].Error())
	}

	c := a.cards[i]
	body := highlightStyle.Render(c.Title) + "\n" + valueStyle.Render(present.Value(c)) + "\n"
	if c.State == report.StateFailed {
		body += errorStyle.Render("falha ao carregar")
		return style.BorderForeground(errColor).Render(body)
	}
	body += present.Badge(c.Delta, c.Unit)
	return style.Render(body)
}

func (a *App) busy() bool {
	for _, l := range a.loading {
		if l {
			return true
		}
	}
	return false
}

// reload starts one independent load per card.
func (a *App) reload() tea.Cmd {
	a.gen++
	cmds := make([]tea.Cmd, len(a.keys))
	for i, key := range a.keys {
		a.loading[i] = true
		cmds[i] = a.load(i, key, a.gen)
	}
	return tea.Batch(cmds...)
}

func (a *App) load(index int, key report.CardKey, gen int) tea.Cmd {
	loader, managerID := a.loader, a.managerID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		card, err := loader.Card(ctx, managerID, key)
		return cardMsg{index: index, gen: gen, card: card, err: err}
	}
}
