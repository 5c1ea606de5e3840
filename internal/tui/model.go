// Package tui implements the interactive runway dashboard.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/runway/internal/metrics"
	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/tui/themes"
)

// Source produces the series the dashboard shows.
type Source interface {
	BaseCurrency() string
	Series(ctx context.Context, start, end time.Time) (metrics.Series, error)
}

// View selects the table on screen.
type View int

// Dashboard views.
const (
	ViewDaily View = iota
	ViewMonthly
)

// chromeHeight is the number of lines taken by everything but the table.
const chromeHeight = 10

// Model holds the dashboard state.
type Model struct {
	ctx      context.Context
	source   Source
	err      error
	theme    themes.Theme
	keymap   KeyMap
	help     help.Model
	spinner  spinner.Model
	daily    table.Model
	monthly  table.Model
	series   metrics.Series
	months   []metrics.MonthlyPoint
	config   Config
	width    int
	height   int
	view     View
	loading  bool
	quitting bool
}

func newModel(ctx context.Context, source Source, cfg Config) Model {
	m := Model{
		ctx:     ctx,
		source:  source,
		config:  cfg,
		theme:   cfg.Theme,
		keymap:  DefaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:   cfg.Width,
		height:  cfg.Height,
		view:    ViewDaily,
		loading: true,
	}

	styles := table.DefaultStyles()
	styles.Header = cfg.Theme.TableHeader
	styles.Cell = cfg.Theme.TableCell
	styles.Selected = cfg.Theme.Selected

	m.daily = table.New(
		table.WithColumns(dailyColumns()),
		table.WithFocused(true),
		table.WithStyles(styles),
	)
	m.monthly = table.New(
		table.WithColumns(monthlyColumns()),
		table.WithStyles(styles),
	)
	m.handleResize()
	return m
}

func dailyColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Income", Width: 12},
		{Title: "Cash cost", Width: 12},
		{Title: "Depreciation", Width: 12},
		{Title: "Net", Width: 12},
		{Title: "Cash", Width: 14},
		{Title: "Capital", Width: 14},
	}
}

func monthlyColumns() []table.Column {
	return []table.Column{
		{Title: "Month", Width: 8},
		{Title: "Income", Width: 14},
		{Title: "Amortized cost", Width: 14},
		{Title: "Net profit", Width: 14},
	}
}

// Init starts loading the series.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadSeries())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keymap.ToggleView):
			m.toggleView()
			return m, nil
		case key.Matches(msg, m.keymap.Refresh):
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.loadSeries())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.handleResize()
		return m, nil

	case seriesLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.setSeries(msg.series)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.view == ViewDaily {
		m.daily, cmd = m.daily.Update(msg)
	} else {
		m.monthly, cmd = m.monthly.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleView() {
	if m.view == ViewDaily {
		m.view = ViewMonthly
		m.daily.Blur()
		m.monthly.Focus()
		return
	}
	m.view = ViewDaily
	m.monthly.Blur()
	m.daily.Focus()
}

func (m *Model) handleResize() {
	h := max(m.height-chromeHeight, 3)
	m.daily.SetHeight(h)
	m.monthly.SetHeight(h)
	m.daily.SetWidth(m.width)
	m.monthly.SetWidth(m.width)
	m.help.Width = m.width
}

func (m *Model) setSeries(series metrics.Series) {
	m.series = series
	m.months = metrics.MonthlyPnL(series.Points)
	code := series.BaseCurrency

	rows := make([]table.Row, 0, len(series.Points))
	for _, p := range series.Points {
		rows = append(rows, table.Row{
			p.Date.Format(model.DateFormat),
			amount(p.Income, code),
			amount(p.TotalDailyCost, code),
			amount(p.DepreciationCost, code),
			amount(p.NetProfit, code),
			amount(p.CashLevel, code),
			amount(p.CapitalLevel, code),
		})
	}
	m.daily.SetRows(rows)
	// Most recent day first in view.
	m.daily.GotoBottom()

	monthRows := make([]table.Row, 0, len(m.months))
	for _, mp := range m.months {
		monthRows = append(monthRows, table.Row{
			mp.Month,
			amount(mp.Income, code),
			amount(mp.AmortizedCost, code),
			amount(mp.NetProfit, code),
		})
	}
	m.monthly.SetRows(monthRows)
}
