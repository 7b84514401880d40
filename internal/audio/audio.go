// Package audio controls PipeWire sinks through wpctl.
package audio

import (
    "context"
    "regexp"
    "strconv"
    "strings"

    "hyprwidgets/internal/proc"
)

// Sink is one audio output.
type Sink struct {
    ID        int
    Name      string
    IsDefault bool
    Volume    float64
    Muted     bool
}

// skipped sinks are virtual devices that should not be offered as outputs.
var skipped = []string{"Easy Effects Sink"}

var sinkRe = regexp.MustCompile(`(\*?)\s*(\d+)\.\s+(.+?)\s*(?:\[vol:\s*([0-9.]+)\s*(MUTED)?\])?\s*$`)

// ParseStatus reads the Sinks section of `wpctl status`. Sinks keep the order
// wpctl prints them in; the default is flagged, not moved.
func ParseStatus(out string) []Sink {
    var sinks []Sink
    in := false
    for _, ln := range strings.Split(out, "\n") {
        if !in {
            if strings.Contains(ln, "Sinks:") && !strings.Contains(ln, "Sink endpoints:") { in = true }
            continue
        }
        if strings.Contains(ln, "Sink endpoints:") || strings.Contains(ln, "Sources:") { break }
        if skip(ln) { continue }
        m := sinkRe.FindStringSubmatch(ln)
        if m == nil { continue }
        id, err := strconv.Atoi(m[2])
        if err != nil { continue }
        s := Sink{ID: id, Name: m[3], IsDefault: m[1] == "*", Muted: m[5] != ""}
        if m[4] != "" { s.Volume, _ = strconv.ParseFloat(m[4], 64) }
        sinks = append(sinks, s)
    }
    return sinks
}

func skip(ln string) bool {
    for _, s := range skipped {
        if strings.Contains(ln, s) { return true }
    }
    return false
}

// Level is the default sink's volume as a percentage.
type Level struct {
    Percent int
    Muted   bool
}

// ParseVolume reads `wpctl get-volume` output such as "Volume: 0.40 [MUTED]".
func ParseVolume(out string) (Level, error) {
    f := strings.Fields(out)
    if len(f) < 2 || f[0] != "Volume:" { return Level{}, &proc.ParseError{Tool: "wpctl", Input: out} }
    v, err := strconv.ParseFloat(f[1], 64)
    if err != nil { return Level{}, &proc.ParseError{Tool: "wpctl", Input: out} }
    return Level{Percent: int(v*100 + 0.5), Muted: strings.Contains(out, "[MUTED]")}, nil
}

// MaxPercent is the most wpctl is asked to amplify.
const MaxPercent = 150

// Mixer runs wpctl.
type Mixer struct {
    R proc.Runner
}

func (m Mixer) Sinks(ctx context.Context) ([]Sink, error) {
    out, err := proc.Output(ctx, m.R, "wpctl", "status")
    if err != nil { return nil, err }
    return ParseStatus(out), nil
}

func (m Mixer) Level(ctx context.Context) (Level, error) {
    out, err := proc.Output(ctx, m.R, "wpctl", "get-volume", "@DEFAULT_SINK@")
    if err != nil { return Level{}, err }
    return ParseVolume(out)
}

// SetVolume sets the default sink's volume, clamped to [0, MaxPercent].
func (m Mixer) SetVolume(ctx context.Context, percent int) error {
    if percent < 0 { percent = 0 }
    if percent > MaxPercent { percent = MaxPercent }
    _, err := proc.Output(ctx, m.R, "wpctl", "set-volume", "@DEFAULT_SINK@", strconv.Itoa(percent)+"%")
    return err
}

func (m Mixer) ToggleMute(ctx context.Context) error {
    _, err := proc.Output(ctx, m.R, "wpctl", "set-mute", "@DEFAULT_SINK@", "toggle")
    return err
}

func (m Mixer) SetDefault(ctx context.Context, id int) error {
    _, err := proc.Output(ctx, m.R, "wpctl", "set-default", strconv.Itoa(id))
    return err
}
