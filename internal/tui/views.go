package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/money"
)

func amount(v float64, code string) string {
	return money.Format(v, code)
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.headerView(), m.kpiView()}
	switch {
	case m.err != nil:
		sections = append(sections, m.theme.StatusError.Render("Failed to load series: "+m.err.Error()))
	case m.loading:
		sections = append(sections, m.spinner.View()+" Building daily series...")
	default:
		sections = append(sections, m.tabsView(), m.tableView())
	}
	sections = append(sections, m.help.View(m.keymap))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	title := m.theme.Title.Render("Runway")
	span := m.theme.Subtitle.Render(fmt.Sprintf("%s → %s · %s",
		m.config.Start.Format(model.DateFormat),
		m.config.End.Format(model.DateFormat),
		m.baseCurrency()))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", span)
}

func (m Model) baseCurrency() string {
	if m.series.BaseCurrency != "" {
		return m.series.BaseCurrency
	}
	if m.source != nil {
		return m.source.BaseCurrency()
	}
	return ""
}

func (m Model) kpiView() string {
	if m.loading && len(m.series.Points) == 0 {
		return ""
	}
	code := m.baseCurrency()

	runway := fmt.Sprintf("%.1f months", m.series.RunwayMonths)
	runwayStyle := m.theme.Bold
	switch {
	case m.series.RunwayInfinite:
		runway = "∞"
		runwayStyle = m.theme.StatusSuccess
	case m.series.RunwayMonths < 6:
		runwayStyle = m.theme.StatusError
	case m.series.RunwayMonths < 12:
		runwayStyle = m.theme.StatusWarning
	}

	kpi := func(label, value string, style lipgloss.Style) string {
		return lipgloss.JoinVertical(lipgloss.Left, m.theme.Label.Render(label), style.Render(value))
	}

	box := m.theme.Box.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		kpi("Cash", amount(m.series.CashOnly, code), m.theme.Bold),
		"    ",
		kpi("Avg daily burn", amount(m.series.AvgDailyBurn, code), m.theme.Bold),
		"    ",
		kpi("Runway", runway, runwayStyle),
	))

	if m.series.UsingFallbackRates {
		warning := m.theme.StatusWarning.Render("⚠ approximate fallback exchange rates in use")
		return lipgloss.JoinVertical(lipgloss.Left, box, warning)
	}
	return box
}

func (m Model) tabsView() string {
	tab := func(label string, active bool) string {
		if active {
			return m.theme.ActiveTab.Render(label)
		}
		return m.theme.Tab.Render(label)
	}
	return strings.Join([]string{
		tab("Daily", m.view == ViewDaily),
		tab("Monthly", m.view == ViewMonthly),
	}, " ")
}

func (m Model) tableView() string {
	if m.view == ViewMonthly {
		return m.monthly.View()
	}
	return m.daily.View()
}
