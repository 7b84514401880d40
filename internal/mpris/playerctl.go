package mpris

import (
    "context"
    "math"
    "strconv"
    "strings"
    "time"

    "github.com/pkg/errors"

    "hyprwidgets/internal/lyrics"
    "hyprwidgets/internal/proc"
)

// Playerctl reads the active player through the playerctl binary. It is used
// when the session bus is unavailable or the user prefers it.
type Playerctl struct {
    R proc.Runner
    // Player restricts playerctl to one player name when set.
    Player string
}

const metadataFormat = "{{mpris:trackid}}\t{{artist}}\t{{title}}\t{{album}}\t{{mpris:length}}"

func (p *Playerctl) args(a ...string) []string {
    if p.Player == "" { return a }
    return append([]string{"--player=" + p.Player}, a...)
}

func (p *Playerctl) out(ctx context.Context, a ...string) (string, error) {
    return proc.Output(ctx, p.R, "playerctl", p.args(a...)...)
}

func (p *Playerctl) Metadata(ctx context.Context) (Metadata, error) {
    s, err := p.out(ctx, "metadata", "--format", metadataFormat)
    if err != nil { return Metadata{}, err }
    return ParsePlayerctlMetadata(s), nil
}

// ParsePlayerctlMetadata decodes the tab-separated metadataFormat line.
func ParsePlayerctlMetadata(s string) Metadata {
    f := strings.Split(strings.TrimRight(s, "\n"), "\t")
    for len(f) < 5 {
        f = append(f, "")
    }
    m := Metadata{TrackID: f[0], Artist: f[1], Title: f[2], Album: f[3]}
    if us, err := strconv.ParseInt(strings.TrimSpace(f[4]), 10, 64); err == nil {
        m.Length = time.Duration(us) * time.Microsecond
    }
    return m
}

func (p *Playerctl) Status(ctx context.Context) (Status, error) {
    s, err := p.out(ctx, "status")
    if err != nil { return "", err }
    return Status(s), nil
}

func (p *Playerctl) Position(ctx context.Context) (time.Duration, error) {
    s, err := p.out(ctx, "position")
    if err != nil { return 0, err }
    secs, err := strconv.ParseFloat(s, 64)
    if err != nil { return 0, errors.Wrapf(err, "playerctl position %q", s) }
    return time.Duration(math.Round(secs*1e6)) * time.Microsecond, nil
}

// Sample implements lyrics.PositionSource.
func (p *Playerctl) Sample(ctx context.Context) (lyrics.Sample, error) {
    pos, err := p.Position(ctx)
    if err != nil { return lyrics.Sample{}, err }
    st, err := p.Status(ctx)
    if err != nil { return lyrics.Sample{}, err }
    return lyrics.Sample{Position: pos, Playing: st == Playing}, nil
}

func (p *Playerctl) PlayPause(ctx context.Context) error {
    _, err := p.out(ctx, "play-pause")
    return err
}

func (p *Playerctl) Next(ctx context.Context) error {
    _, err := p.out(ctx, "next")
    return err
}

func (p *Playerctl) Previous(ctx context.Context) error {
    _, err := p.out(ctx, "previous")
    return err
}
