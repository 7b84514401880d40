package ui

import (
    "context"
    "fmt"
    "strings"
    "sync"
    "time"

    "github.com/charmbracelet/bubbles/viewport"
    tea "github.com/charmbracelet/bubbletea"
    "github.com/pkg/errors"

    "hyprwidgets/internal/lyrics"
    "hyprwidgets/internal/mpris"
    "hyprwidgets/internal/poll"
    "hyprwidgets/internal/proc"
)

const metadataPoll = 2 * time.Second

type playerMsg struct {
    src   mpris.Source
    md    mpris.Metadata
    state mpris.Status
    err   error
}

type playerEventMsg struct{ ev mpris.Event }

type lyricsMsg struct {
    key string
    res lyrics.Resolved
    err error
}

type lineMsg struct{ index int }

type lyricsPanel struct {
    deps *Deps
    s    stamp

    mu  sync.Mutex
    src mpris.Source

    driver *lyrics.Driver
    poller *poll.Poller

    md       mpris.Metadata
    state    mpris.Status
    key      string
    fetching bool // lookup for key not answered yet
    res      lyrics.Resolved
    note     string
    index    int
    offset   time.Duration
    vp       viewport.Model
    vpReady  bool
}

func newLyricsPanel(deps *Deps) *lyricsPanel {
    return &lyricsPanel{deps: deps, index: -1, offset: deps.Cfg.Lyrics.SyncOffset}
}

func (l *lyricsPanel) title() string   { return "Lyrics" }
func (l *lyricsPanel) capturing() bool { return false }

func (l *lyricsPanel) source() mpris.Source {
    l.mu.Lock()
    defer l.mu.Unlock()
    return l.src
}

func (l *lyricsPanel) setSource(src mpris.Source) {
    l.mu.Lock()
    l.src = src
    l.mu.Unlock()
}

// sample reads the position from whichever player is current.
func (l *lyricsPanel) sample(ctx context.Context) (lyrics.Sample, error) {
    src := l.source()
    if src == nil { return lyrics.Sample{}, mpris.ErrNoPlayer }
    return src.Sample(ctx)
}

func (l *lyricsPanel) activate(s stamp) tea.Cmd {
    l.s = s
    cfg := l.deps.Cfg.Lyrics
    l.driver = lyrics.NewDriver(lyrics.SourceFunc(l.sample), l.offset, cfg.MinWake, cfg.ResyncInterval,
        func(i int) { s.post(lineMsg{index: i}) }, l.deps.Log.WithField("component", "lyrics"))
    if len(l.res.Lines) > 0 { l.driver.SetLines(l.res.Lines) }
    go func() {
        if err := l.driver.Run(s.ctx()); err != nil && !proc.IsCancelled(err) {
            l.deps.Log.WithError(err).Warn("lyrics driver stopped")
        }
    }()

    if l.deps.PlayerEvents != nil {
        if ch, err := l.deps.PlayerEvents(s.ctx()); err == nil {
            go func() {
                for ev := range ch { s.post(playerEventMsg{ev: ev}) }
            }()
        } else {
            l.deps.Log.WithError(err).Debug("player signals unavailable, polling")
            l.startPolling(s)
        }
    } else {
        l.startPolling(s)
    }
    return l.discover()
}

func (l *lyricsPanel) startPolling(s stamp) {
    l.poller = poll.New(metadataPoll, func(ctx context.Context) {
        if msg := l.readPlayer(ctx); msg != nil { s.post(msg) }
    })
    l.poller.Start(s.ctx())
}

func (l *lyricsPanel) deactivate() {
    if l.poller != nil {
        l.poller.Stop()
        l.poller = nil
    }
    l.offset = l.driver.Offset()
    if l.deps.Lyrics != nil { l.deps.Lyrics.Cancel() }
    // the cancelled lookup never answers; forget its track so the next
    // activation fetches again
    if l.fetching {
        l.key = ""
        l.fetching = false
    }
}

func (l *lyricsPanel) discover() tea.Cmd {
    return l.s.cmd(func(ctx context.Context) tea.Msg { return l.readPlayer(ctx) })
}

func (l *lyricsPanel) readPlayer(ctx context.Context) tea.Msg {
    if l.deps.Player == nil { return playerMsg{err: mpris.ErrNoPlayer} }
    src, err := l.deps.Player(ctx)
    if proc.IsCancelled(err) { return nil }
    if err != nil { return playerMsg{err: err} }
    md, err := src.Metadata(ctx)
    if proc.IsCancelled(err) { return nil }
    st, _ := src.Status(ctx)
    return playerMsg{src: src, md: md, state: st, err: err}
}

func trackKey(t lyrics.Track) string { return t.Signature() + "|" + t.Album }

func (l *lyricsPanel) update(msg tea.Msg) tea.Cmd {
    switch msg := msg.(type) {
    case playerMsg:
        if msg.err != nil {
            l.setSource(nil)
            l.md, l.state = mpris.Metadata{}, ""
            l.note = msg.err.Error()
            if errors.Is(msg.err, mpris.ErrNoPlayer) { l.note = "nothing playing" }
            l.clearLyrics()
            return nil
        }
        l.setSource(msg.src)
        l.state = msg.state
        l.driver.Seeked()
        return l.trackChanged(msg.md)

    case playerEventMsg:
        return l.playerEvent(msg.ev)

    case lyricsMsg:
        if msg.key != l.key { return nil }
        l.fetching = false
        if msg.err != nil {
            l.note = "no synced lyrics"
            if !errors.Is(msg.err, lyrics.ErrNotFound) { l.note = msg.err.Error() }
            return nil
        }
        l.res = msg.res
        l.note = ""
        l.driver.SetLines(msg.res.Lines)
        l.render()
        return nil

    case lineMsg:
        if msg.index >= len(l.res.Lines) { return nil }
        l.index = msg.index
        l.render()
        return nil

    case tea.KeyMsg:
        return l.onKey(msg)
    }
    return nil
}

// playerEvent folds one bus signal in. Signals from players other than the
// one followed are ignored, except arrivals and departures, which trigger a
// new pick.
func (l *lyricsPanel) playerEvent(ev mpris.Event) tea.Cmd {
    switch ev.Kind {
    case mpris.Appeared, mpris.Vanished:
        return l.discover()
    }
    if p, ok := l.source().(*mpris.Player); ok && p.Name != ev.Player { return nil }
    switch ev.Kind {
    case mpris.Seeked:
        l.driver.Seeked()
    case mpris.Changed:
        if ev.Status != "" {
            l.state = ev.Status
            l.driver.Seeked()
        }
        if ev.Metadata != nil { return l.trackChanged(*ev.Metadata) }
    }
    return nil
}

func (l *lyricsPanel) trackChanged(md mpris.Metadata) tea.Cmd {
    t := md.Track()
    key := trackKey(t)
    l.md = md
    if key == l.key { return nil }
    l.key = key
    l.fetching = false
    l.clearLyrics()
    if t.Signature() == "" {
        l.note = "track has no artist or title"
        return nil
    }
    if l.deps.Lyrics == nil {
        l.note = "lyrics lookup disabled"
        return nil
    }
    l.note = "searching…"
    l.fetching = true
    f := l.deps.Lyrics
    return l.s.cmd(func(ctx context.Context) tea.Msg {
        res, err := f.Fetch(ctx, t)
        if proc.IsCancelled(err) { return nil }
        return lyricsMsg{key: key, res: res, err: err}
    })
}

func (l *lyricsPanel) clearLyrics() {
    l.res = lyrics.Resolved{}
    l.index = -1
    if l.driver != nil { l.driver.SetLines(nil) }
    l.render()
}

func (l *lyricsPanel) onKey(msg tea.KeyMsg) tea.Cmd {
    step := l.deps.Cfg.Lyrics.OffsetStep
    src := l.source()
    switch msg.String() {
    case "+", "=":
        l.offset = l.driver.AdjustOffset(step)
        return status(fmt.Sprintf("sync offset %+dms", l.offset.Milliseconds()))
    case "-":
        l.offset = l.driver.AdjustOffset(-step)
        return status(fmt.Sprintf("sync offset %+dms", l.offset.Milliseconds()))
    case " ", "space":
        if src != nil { return l.control(src.PlayPause) }
    case "n":
        if src != nil { return l.control(src.Next) }
    case "b":
        if src != nil { return l.control(src.Previous) }
    case "y":
        if l.index >= 0 && l.index < len(l.res.Lines) { return copyCmd("lyric line", l.res.Lines[l.index].Text) }
    case "P":
        return l.pin()
    case "U":
        return l.unpin()
    case "r":
        l.key = ""
        return l.trackChanged(l.md)
    }
    return nil
}

func (l *lyricsPanel) control(fn func(context.Context) error) tea.Cmd {
    return l.s.cmd(func(ctx context.Context) tea.Msg {
        if err := fn(ctx); err != nil && !proc.IsCancelled(err) { return statusMsg(err.Error()) }
        return nil
    })
}

// pin remembers the shown record for this track so later lookups skip the
// search.
func (l *lyricsPanel) pin() tea.Cmd {
    ids, sig := l.deps.LyricIDs, l.res.Track.Signature()
    if ids == nil || l.res.ID == 0 || sig == "" { return status("nothing to pin") }
    if err := ids.Put(sig, l.res.ID); err != nil { return status("pin: " + err.Error()) }
    return status(fmt.Sprintf("pinned lyrics #%d for %s", l.res.ID, sig))
}

func (l *lyricsPanel) unpin() tea.Cmd {
    ids, sig := l.deps.LyricIDs, l.md.Track().Signature()
    if ids == nil || sig == "" { return nil }
    if err := ids.Forget(sig); err != nil { return status("unpin: " + err.Error()) }
    return status("unpinned " + sig)
}

func (l *lyricsPanel) render() {
    if !l.vpReady { return }
    var b strings.Builder
    for i, ln := range l.res.Lines {
        text := ln.Text
        if i == l.index {
            text = lyricStyle.Render(text)
        } else {
            text = dimStyle.Render(text)
        }
        b.WriteString(text)
        b.WriteByte('\n')
    }
    l.vp.SetContent(b.String())
    l.vp.SetYOffset(lyrics.ScrollOffset(l.index, len(l.res.Lines), l.vp.Height))
}

func (l *lyricsPanel) view(width, height int) string {
    vh := max(1, height-4)
    if !l.vpReady {
        l.vp = viewport.New(width, vh)
        l.vpReady = true
        l.render()
    } else if l.vp.Width != width || l.vp.Height != vh {
        l.vp.Width, l.vp.Height = width, vh
        l.render()
    }

    var b strings.Builder
    if l.md.Title != "" {
        fmt.Fprintf(&b, "%s %s\n", titleStyle.Render(l.md.Title), dimStyle.Render("· "+l.md.Artist))
    } else {
        fmt.Fprintln(&b, titleStyle.Render("Lyrics"))
    }
    info := string(l.state)
    if l.res.Source != "" { info += fmt.Sprintf(" · %s #%d", l.res.Source, l.res.ID) }
    info += fmt.Sprintf(" · offset %+dms", l.offset.Milliseconds())
    fmt.Fprintln(&b, dimStyle.Render(strings.TrimPrefix(info, " · ")))
    if l.note != "" || len(l.res.Lines) == 0 {
        fmt.Fprintln(&b, statusStyle.Render(l.note))
    } else {
        fmt.Fprintln(&b, l.vp.View())
    }
    fmt.Fprint(&b, dimStyle.Render("+/- offset · space play/pause · n/b next/prev · y copy line · P pin · U unpin · r refetch"))
    return b.String()
}
