package ui

import (
    "github.com/charmbracelet/glamour"
)

const helpMarkdown = `# Keys

| key | action |
| --- | --- |
| tab / shift+tab | next / previous panel |
| 1-5 | jump to panel |
| ? | toggle this help |
| q / ctrl+c | quit |

## Control
h/l section · j/k select · r refresh · +/- volume or brightness · m mute ·
enter set output, connect device or network · d disconnect Wi-Fi ·
p bluetooth power · s bluetooth scan · w Wi-Fi radio · y copy SSID

## Lyrics
+/- sync offset · space play/pause · n/b next/previous · y copy line ·
P pin the shown lyrics to this track · U unpin · r refetch

## Dock
enter focus or launch · p pin/unpin · J/K reorder pinned · / filter · r refresh

## Run
type to search · enter run · alt+enter run in terminal · ctrl+r reindex $PATH

## Planner
v calendar/schedule · h/l day · a add event (` + "`HH:MM title`" + `) · A add yearly ·
x delete · e edit cell (` + "`title | description`" + `) · + add slot · - remove slot · i idle
`

// renderHelp renders the key reference for the current width and theme,
// caching the result until either changes.
func (m *Model) renderHelp() string {
    if m.helpText != "" { return m.helpText }
    style := "dark"
    if !m.th.Dark { style = "light" }
    r, err := glamour.NewTermRenderer(
        glamour.WithStandardStyle(style),
        glamour.WithWordWrap(max(40, m.width-2)),
    )
    if err != nil { return helpMarkdown }
    out, err := r.Render(helpMarkdown)
    if err != nil { return helpMarkdown }
    m.helpText = out
    return out
}
