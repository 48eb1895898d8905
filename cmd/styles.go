package main

import (
	"github.com/caio-ishikawa/bountyboard/shared/models"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const (
	tableHeight = 20
	formWidth   = 44
)

type Theme struct {
	Name    string
	Primary string
	Black   string
	Muted   string
	Text    string
	Error   string
}

var themes = map[string]Theme{
	"everforest": {
		Name:    "everforest",
		Primary: "#A7C080",
		Black:   "#1E2326",
		Muted:   "#384B55",
		Text:    "#F2EFDF",
		Error:   "#E67E80",
	},
	"purple": {
		Name:    "purple",
		Primary: "#A78BFA",
		Black:   "#1E1B2E",
		Muted:   "#4C3F78",
		Text:    "#EDE9FE",
		Error:   "#F87171",
	},
	"midnight": {
		Name:    "midnight",
		Primary: "#60A5FA",
		Black:   "#0F172A",
		Muted:   "#334155",
		Text:    "#E2E8F0",
		Error:   "#F87171",
	},
}

var severityColors = map[models.Severity]string{
	models.Critical: "#EF4444",
	models.High:     "#F97316",
	models.Medium:   "#EAB308",
	models.Low:      "#3B82F6",
	models.Info:     "#9CA3AF",
}

func themeByName(name string) Theme {
	if theme, ok := themes[name]; ok {
		return theme
	}
	return themes["everforest"]
}

type BoxStyles struct {
	Active   lipgloss.Style
	Inactive lipgloss.Style
}

func (t Theme) boxStyles() BoxStyles {
	return BoxStyles{
		Active: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(t.Primary)).
			Margin(0, 0),
		Inactive: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(t.Muted)).
			Margin(0, 0),
	}
}

func (t Theme) tableStyles(active bool) table.Styles {
	accent := t.Primary
	selectedFg := t.Black
	if !active {
		accent = t.Muted
		selectedFg = t.Text
	}

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(accent)).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(selectedFg)).
		Background(lipgloss.Color(accent)).
		Bold(true)

	return s
}

func (t Theme) tabStyle(active bool) lipgloss.Style {
	style := lipgloss.NewStyle().Padding(0, 2)
	if active {
		return style.
			Foreground(lipgloss.Color(t.Black)).
			Background(lipgloss.Color(t.Primary)).
			Bold(true)
	}
	return style.Foreground(lipgloss.Color(t.Text))
}

func (t Theme) cardStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Primary)).
		Padding(0, 2).
		Width(22)
}

func (t Theme) labelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted))
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Error)).Bold(true)
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary))
}

func severityStyle(severity models.Severity) lipgloss.Style {
	color, ok := severityColors[severity]
	if !ok {
		color = severityColors[models.Info]
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}
