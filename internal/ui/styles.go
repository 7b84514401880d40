package ui

import (
    "github.com/charmbracelet/lipgloss"

    "hyprwidgets/internal/theme"
)

var (
    titleStyle     = lipgloss.NewStyle().Bold(true)
    headerStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
    statusStyle    = lipgloss.NewStyle().Faint(true)
    selectedStyle  = lipgloss.NewStyle().Bold(true)
    dimStyle       = lipgloss.NewStyle().Faint(true)
    warnStyle      = lipgloss.NewStyle()
    tabStyle       = lipgloss.NewStyle().Faint(true)
    activeTabStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
    ruleStyle      = lipgloss.NewStyle().Faint(true)
    boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
    lyricStyle     = lipgloss.NewStyle().Bold(true)
)

// applyTheme recolors the shared styles from the palette. Without a palette
// the terminal's own colors are left alone.
func applyTheme(th theme.Theme) {
    pal := th.Colors
    fg, accent, warn := pal.Foreground, pal.Accent(), pal.Warn()
    if fg != "" {
        c := lipgloss.Color(fg)
        titleStyle = titleStyle.Foreground(c)
        headerStyle = headerStyle.Foreground(c)
        statusStyle = statusStyle.Foreground(c)
        tabStyle = tabStyle.Foreground(c)
    }
    if accent != "" {
        c := lipgloss.Color(accent)
        selectedStyle = selectedStyle.Foreground(c)
        lyricStyle = lyricStyle.Foreground(c)
        activeTabStyle = activeTabStyle.Foreground(c)
        boxStyle = boxStyle.BorderForeground(c)
        ruleStyle = ruleStyle.Foreground(c)
    }
    if warn != "" { warnStyle = warnStyle.Foreground(lipgloss.Color(warn)) }
}

// cursor marks the selected row.
func cursor(selected bool) string {
    if selected { return selectedStyle.Render("›") }
    return " "
}
