package tui

import (
	"io"
	"time"

	"github.com/Veraticus/runway/internal/tui/themes"
)

// DefaultWindow is the number of days shown when no range is given.
const DefaultWindow = 90

// Config holds TUI configuration.
type Config struct {
	Start     time.Time
	End       time.Time
	Input     io.Reader
	Output    io.Writer
	Theme     themes.Theme
	Width     int
	Height    int
	AltScreen bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig(today time.Time) Config {
	return Config{
		Theme:     themes.Default,
		Width:     100,
		Height:    30,
		End:       today,
		Start:     today.AddDate(0, 0, -(DefaultWindow - 1)),
		AltScreen: true,
	}
}

// WithRange sets the days shown, inclusive.
func WithRange(start, end time.Time) Option {
	return func(c *Config) {
		c.Start = start
		c.End = end
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithIO replaces the terminal, for tests and pipes. The alternate screen is
// disabled.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *Config) {
		c.Input = in
		c.Output = out
		c.AltScreen = false
	}
}
