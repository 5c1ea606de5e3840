package tui

import "github.com/Veraticus/runway/internal/metrics"

type seriesLoadedMsg struct {
	err    error
	series metrics.Series
}
