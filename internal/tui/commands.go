package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// loadSeries builds the series for the configured range off the UI loop.
func (m Model) loadSeries() tea.Cmd {
	ctx, source := m.ctx, m.source
	start, end := m.config.Start, m.config.End
	return func() tea.Msg {
		series, err := source.Series(ctx, start, end)
		return seriesLoadedMsg{series: series, err: err}
	}
}
