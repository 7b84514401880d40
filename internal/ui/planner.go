package ui

import (
    "context"
    "fmt"
    "strings"
    "time"

    "github.com/charmbracelet/bubbles/textinput"
    tea "github.com/charmbracelet/bubbletea"
    "github.com/charmbracelet/lipgloss"
    "github.com/pkg/errors"

    "hyprwidgets/internal/planner"
)

const upcomingDays = 7

type plannerView int

const (
    calendarView plannerView = iota
    scheduleView
)

// inputKind is what the open text field will be used for.
type inputKind int

const (
    noInput inputKind = iota
    addEvent
    addRecurring
    editCell
    addSlot
)

type plannerLoadedMsg struct {
    cal      *planner.Calendar
    sched    *planner.Schedule
    settings planner.Settings
    err      error
}

type plannerPanel struct {
    deps *Deps
    s    stamp

    mode     plannerView
    cal      *planner.Calendar
    sched    *planner.Schedule
    settings planner.Settings
    err      error

    day    time.Time
    evCur  int
    slot   int
    col    int
    input  textinput.Model
    inKind inputKind
}

func newPlannerPanel(deps *Deps) *plannerPanel {
    in := textinput.New()
    in.CharLimit = 200
    now := nowFunc()
    return &plannerPanel{
        deps:     deps,
        cal:      planner.NewCalendar(),
        sched:    planner.DefaultSchedule(),
        settings: planner.Settings{IdleEnabled: true},
        day:      time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
        col:      weekdayColumn(now),
        input:    in,
    }
}

// weekdayColumn maps a date to its schedule column, Monday first.
func weekdayColumn(t time.Time) int { return (int(t.Weekday()) + 6) % 7 }

func (p *plannerPanel) title() string   { return "Planner" }
func (p *plannerPanel) capturing() bool { return p.inKind != noInput }

func (p *plannerPanel) activate(s stamp) tea.Cmd {
    p.s = s
    return p.load()
}

func (p *plannerPanel) deactivate() { p.closeInput() }

func (p *plannerPanel) load() tea.Cmd {
    d := p.deps
    return p.s.cmd(func(context.Context) tea.Msg {
        var msg plannerLoadedMsg
        var errs []string
        msg.cal, msg.sched = planner.NewCalendar(), planner.DefaultSchedule()
        msg.settings = planner.Settings{IdleEnabled: true}
        if d.Calendar != nil {
            c, err := d.Calendar.Load()
            msg.cal = c
            if err != nil { errs = append(errs, err.Error()) }
        }
        if d.Schedule != nil {
            sc, err := d.Schedule.Load()
            msg.sched = sc
            if err != nil { errs = append(errs, err.Error()) }
        }
        if d.Settings != nil {
            st, err := d.Settings.Load()
            msg.settings = st
            if err != nil { errs = append(errs, err.Error()) }
        }
        if len(errs) > 0 { msg.err = errors.New(strings.Join(errs, "; ")) }
        return msg
    })
}

func (p *plannerPanel) update(msg tea.Msg) tea.Cmd {
    switch msg := msg.(type) {
    case plannerLoadedMsg:
        p.cal, p.sched, p.settings, p.err = msg.cal, msg.sched, msg.settings, msg.err
        p.slot = max(0, min(p.slot, len(p.sched.TimeSlots)-1))
        p.evCur = 0
        return nil
    case tea.KeyMsg:
        if p.inKind != noInput { return p.inputKey(msg) }
        return p.onKey(msg)
    }
    if p.inKind != noInput {
        var cmd tea.Cmd
        p.input, cmd = p.input.Update(msg)
        return cmd
    }
    return nil
}

func (p *plannerPanel) openInput(kind inputKind, prompt, placeholder, value string) tea.Cmd {
    p.inKind = kind
    p.input.Prompt = prompt
    p.input.Placeholder = placeholder
    p.input.SetValue(value)
    p.input.CursorEnd()
    return p.input.Focus()
}

func (p *plannerPanel) closeInput() {
    p.inKind = noInput
    p.input.Blur()
    p.input.SetValue("")
}

func (p *plannerPanel) inputKey(msg tea.KeyMsg) tea.Cmd {
    switch msg.String() {
    case "esc":
        p.closeInput()
        return nil
    case "enter":
        kind, value := p.inKind, strings.TrimSpace(p.input.Value())
        p.closeInput()
        if value == "" { return nil }
        if err := p.submit(kind, value); err != nil { return status(err.Error()) }
        return nil
    }
    var cmd tea.Cmd
    p.input, cmd = p.input.Update(msg)
    return cmd
}

func (p *plannerPanel) submit(kind inputKind, value string) error {
    switch kind {
    case addEvent, addRecurring:
        clock, title, _ := strings.Cut(value, " ")
        if strings.TrimSpace(title) == "" { return errors.New("expected \"HH:MM title\"") }
        if _, err := p.cal.Add(p.day, clock, strings.TrimSpace(title), kind == addRecurring); err != nil { return err }
        return p.saveCalendar()
    case editCell:
        title, desc, _ := strings.Cut(value, "|")
        slot := p.currentSlot()
        if err := p.sched.Set(slot, p.col, planner.Entry{Title: strings.TrimSpace(title), Description: strings.TrimSpace(desc)}); err != nil { return err }
        return p.saveSchedule()
    case addSlot:
        start, end, err := parseRange(value)
        if err != nil { return err }
        label, err := p.sched.AddSlot(start, end)
        if err != nil { return err }
        for i, s := range p.sched.TimeSlots {
            if s == label { p.slot = i }
        }
        return p.saveSchedule()
    }
    return nil
}

// parseRange reads "09:00-10:30" or "9:00 AM - 10:30 AM".
func parseRange(s string) (int, int, error) {
    a, b, ok := strings.Cut(s, "-")
    if !ok { return 0, 0, errors.Errorf("expected start-end, got %q", s) }
    start, err := planner.ClockMinutes(strings.TrimSpace(a))
    if err != nil { return 0, 0, err }
    end, err := planner.ClockMinutes(strings.TrimSpace(b))
    if err != nil { return 0, 0, err }
    return start, end, nil
}

func (p *plannerPanel) saveCalendar() error {
    if p.deps.Calendar == nil { return nil }
    return p.deps.Calendar.Save(p.cal)
}

func (p *plannerPanel) saveSchedule() error {
    if p.deps.Schedule == nil { return nil }
    return p.deps.Schedule.Save(p.sched)
}

func (p *plannerPanel) currentSlot() string {
    if len(p.sched.TimeSlots) == 0 { return "" }
    return p.sched.TimeSlots[clamp(p.slot, 0, len(p.sched.TimeSlots)-1)]
}

func (p *plannerPanel) onKey(msg tea.KeyMsg) tea.Cmd {
    switch msg.String() {
    case "v":
        p.mode = 1 - p.mode
        return nil
    case "i":
        return p.toggleIdle()
    case "r":
        return p.load()
    }
    if p.mode == scheduleView { return p.scheduleKey(msg) }
    return p.calendarKey(msg)
}

func (p *plannerPanel) toggleIdle() tea.Cmd {
    if p.deps.Settings == nil { return nil }
    st, err := p.deps.Settings.ToggleIdle()
    if err != nil { return status(err.Error()) }
    p.settings = st
    if st.IdleEnabled { return status("idle enabled") }
    return status("idle disabled")
}

func (p *plannerPanel) calendarKey(msg tea.KeyMsg) tea.Cmd {
    day := p.cal.Day(p.day)
    switch msg.String() {
    case "h", "left":
        p.moveDay(-1)
    case "l", "right":
        p.moveDay(1)
    case "H":
        p.moveDay(-7)
    case "L":
        p.moveDay(7)
    case "t":
        now := nowFunc()
        p.day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
        p.evCur = 0
    case "j", "down":
        if p.evCur < len(day)-1 { p.evCur++ }
    case "k", "up":
        if p.evCur > 0 { p.evCur-- }
    case "a":
        return p.openInput(addEvent, "event: ", "HH:MM title", "")
    case "A":
        return p.openInput(addRecurring, "yearly: ", "HH:MM title", "")
    case "x", "d":
        if len(day) == 0 { return nil }
        ev := day[clamp(p.evCur, 0, len(day)-1)]
        if !p.cal.Remove(p.day, ev.ID) { return nil }
        p.evCur = max(0, min(p.evCur, len(day)-2))
        if err := p.saveCalendar(); err != nil { return status(err.Error()) }
        return status("removed " + ev.Title)
    }
    return nil
}

func (p *plannerPanel) moveDay(n int) {
    p.day = p.day.AddDate(0, 0, n)
    p.evCur = 0
}

func (p *plannerPanel) scheduleKey(msg tea.KeyMsg) tea.Cmd {
    switch msg.String() {
    case "h", "left":
        p.col = (p.col + 6) % 7
    case "l", "right":
        p.col = (p.col + 1) % 7
    case "j", "down":
        if p.slot < len(p.sched.TimeSlots)-1 { p.slot++ }
    case "k", "up":
        if p.slot > 0 { p.slot-- }
    case "e", "enter":
        value := ""
        if c := p.sched.Cell(p.currentSlot(), p.col); c != nil {
            value = c.Title
            if c.Description != "" { value += " | " + c.Description }
        }
        return p.openInput(editCell, planner.Days[p.col]+": ", "title | description", value)
    case "x", "d":
        if err := p.sched.Clear(p.currentSlot(), p.col); err != nil { return status(err.Error()) }
        if err := p.saveSchedule(); err != nil { return status(err.Error()) }
    case "+":
        return p.openInput(addSlot, "slot: ", "09:00-10:30", "")
    case "-":
        if err := p.sched.RemoveSlot(p.currentSlot()); err != nil { return status(err.Error()) }
        p.slot = max(0, min(p.slot, len(p.sched.TimeSlots)-1))
        if err := p.saveSchedule(); err != nil { return status(err.Error()) }
    }
    return nil
}

func (p *plannerPanel) view(width, height int) string {
    var b strings.Builder
    idle := "off"
    if p.settings.IdleEnabled { idle = "on" }
    fmt.Fprintf(&b, "%s  %s\n", headerStyle.Render(p.viewTitle()), dimStyle.Render("idle "+idle))
    if p.err != nil { fmt.Fprintln(&b, warnStyle.Render(p.err.Error())) }
    if p.inKind != noInput { fmt.Fprintln(&b, p.input.View()) }
    if p.mode == scheduleView {
        b.WriteString(p.scheduleBody(width))
        fmt.Fprint(&b, dimStyle.Render("h/l day · j/k slot · e edit · x clear · + add slot · - remove slot · v calendar · i idle"))
    } else {
        b.WriteString(p.calendarBody(width))
        fmt.Fprint(&b, dimStyle.Render("h/l day · H/L week · t today · a add · A add yearly · x delete · v schedule · i idle"))
    }
    return b.String()
}

func (p *plannerPanel) viewTitle() string {
    if p.mode == scheduleView { return "Weekly schedule" }
    return p.day.Format("Monday, January 2 2006")
}

func (p *plannerPanel) calendarBody(width int) string {
    var left strings.Builder
    day := p.cal.Day(p.day)
    if len(day) == 0 { fmt.Fprintln(&left, dimStyle.Render("no events")) }
    for i, ev := range day {
        mark := ""
        if ev.Recurring { mark = dimStyle.Render(" ↻") }
        line := fmt.Sprintf("%s %8s  %s%s", cursor(i == p.evCur), planner.Clock12(ev.Time), ev.Title, mark)
        fmt.Fprintln(&left, line)
    }

    var right strings.Builder
    fmt.Fprintln(&right, headerStyle.Render("Upcoming"))
    now := nowFunc()
    up := p.cal.Upcoming(now, upcomingDays)
    if len(up) == 0 { fmt.Fprintln(&right, dimStyle.Render("nothing this week")) }
    for i, u := range up {
        if i >= 8 { break }
        fmt.Fprintf(&right, "%s %s\n", u.Title, dimStyle.Render(u.Label(now)))
    }
    if width < 70 { return left.String() + "\n" + right.String() }
    return lipgloss.JoinHorizontal(lipgloss.Top,
        lipgloss.NewStyle().Width(width/2).Render(left.String()), right.String()) + "\n"
}

func (p *plannerPanel) scheduleBody(width int) string {
    cell := max(6, (width-22)/7)
    var b strings.Builder
    fmt.Fprintf(&b, "%-21s", "")
    for i, d := range planner.Days {
        h := fmt.Sprintf("%-*s", cell, d)
        if i == p.col { h = selectedStyle.Render(h) }
        b.WriteString(h)
    }
    b.WriteByte('\n')
    for si, slot := range p.sched.TimeSlots {
        label := fmt.Sprintf("%-21s", slot)
        if si == p.slot { label = selectedStyle.Render(label) }
        b.WriteString(label)
        for d := range planner.Days {
            text := "·"
            if c := p.sched.Cell(slot, d); c != nil { text = c.Title }
            text = truncate(text, cell-1)
            text = fmt.Sprintf("%-*s", cell, text)
            if si == p.slot && d == p.col { text = activeTabStyle.Render(text) }
            b.WriteString(text)
        }
        b.WriteByte('\n')
    }
    if c := p.sched.Cell(p.currentSlot(), p.col); c != nil && c.Description != "" {
        fmt.Fprintln(&b, dimStyle.Render(c.Description))
    }
    return b.String()
}

func truncate(s string, n int) string {
    r := []rune(s)
    if n <= 0 { return "" }
    if len(r) <= n { return s }
    if n == 1 { return "…" }
    return string(r[:n-1]) + "…"
}
