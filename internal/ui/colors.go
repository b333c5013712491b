package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#1DB954", "#FFFFFF", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	text   lipgloss.Style
	err    lipgloss.Style
	accent lipgloss.Style
	help   lipgloss.Style
}

func NewPalette(t, x, e, a, h string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		text:   NewStyle(x),
		err:    NewBold(e),
		accent: NewStyle(a),
		help:   NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
