package planner

import (
    "fmt"
    "sort"
    "strings"

    "github.com/pkg/errors"
    "github.com/samber/lo"

    "hyprwidgets/internal/cache"
)

// Days are the schedule columns, Monday first.
var Days = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var (
    ErrLastSlot    = errors.New("cannot remove the last time slot")
    ErrBadRange    = errors.New("slot must start before it ends")
    ErrSlotExists  = errors.New("time slot already exists")
    ErrUnknownSlot = errors.New("unknown time slot")
)

// Entry fills one cell of the weekly grid.
type Entry struct {
    Title       string `json:"title"`
    Description string `json:"description"`
}

// Row is one slot's seven day cells; a nil cell is empty.
type Row [7]*Entry

// Schedule is the weekly grid. TimeSlots are labels like "09:00 AM - 10:30 AM",
// kept sorted by start time.
type Schedule struct {
    TimeSlots []string       `json:"time_slots"`
    Grid      map[string]Row `json:"schedule"`
}

func DefaultSchedule() *Schedule {
    slot := SlotLabel(9*60, 10*60)
    return &Schedule{TimeSlots: []string{slot}, Grid: map[string]Row{slot: {}}}
}

// ClockMinutes parses "h:mm AM", "hh:mm PM" or 24h "HH:MM" into minutes after
// midnight.
func ClockMinutes(s string) (int, error) {
    var h, m int
    var ampm string
    s = strings.TrimSpace(s)
    if n, _ := fmt.Sscanf(s, "%d:%d %s", &h, &m, &ampm); n == 3 {
        switch strings.ToUpper(ampm) {
        case "PM":
            if h != 12 { h += 12 }
        case "AM":
            if h == 12 { h = 0 }
        default:
            return 0, errors.Errorf("bad clock %q", s)
        }
    } else if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
        return 0, errors.Errorf("bad clock %q", s)
    }
    if h < 0 || h > 23 || m < 0 || m > 59 { return 0, errors.Errorf("bad clock %q", s) }
    return h*60 + m, nil
}

// FormatClock renders minutes after midnight as "09:30 AM". 24*60 is the
// following midnight, "12:00 AM".
func FormatClock(min int) string {
    h, m := (min/60)%24, min%60
    ampm := "AM"
    if h >= 12 { ampm = "PM" }
    dh := h % 12
    if dh == 0 { dh = 12 }
    return fmt.Sprintf("%02d:%02d %s", dh, m, ampm)
}

func SlotLabel(start, end int) string { return FormatClock(start) + " - " + FormatClock(end) }

// SlotStart returns the start minute of a slot label, or -1.
func SlotStart(slot string) int {
    start, _, _ := strings.Cut(slot, " - ")
    m, err := ClockMinutes(start)
    if err != nil { return -1 }
    return m
}

// AddSlot inserts a slot with an empty row and returns its label.
func (s *Schedule) AddSlot(start, end int) (string, error) {
    if start < 0 || end > 24*60 || start >= end { return "", ErrBadRange }
    label := SlotLabel(start, end)
    if lo.Contains(s.TimeSlots, label) { return "", ErrSlotExists }
    s.TimeSlots = append(s.TimeSlots, label)
    sort.SliceStable(s.TimeSlots, func(i, j int) bool { return SlotStart(s.TimeSlots[i]) < SlotStart(s.TimeSlots[j]) })
    if s.Grid == nil { s.Grid = map[string]Row{} }
    s.Grid[label] = Row{}
    return label, nil
}

// RemoveSlot drops a slot and its row. The grid always keeps one slot.
func (s *Schedule) RemoveSlot(slot string) error {
    if !lo.Contains(s.TimeSlots, slot) { return ErrUnknownSlot }
    if len(s.TimeSlots) <= 1 { return ErrLastSlot }
    s.TimeSlots = lo.Without(s.TimeSlots, slot)
    delete(s.Grid, slot)
    return nil
}

// Set fills the cell at slot and day (0 is Monday).
func (s *Schedule) Set(slot string, day int, e Entry) error {
    if err := s.checkCell(slot, day); err != nil { return err }
    row := s.Grid[slot]
    row[day] = &e
    s.Grid[slot] = row
    return nil
}

func (s *Schedule) Clear(slot string, day int) error {
    if err := s.checkCell(slot, day); err != nil { return err }
    row := s.Grid[slot]
    row[day] = nil
    s.Grid[slot] = row
    return nil
}

func (s *Schedule) Cell(slot string, day int) *Entry {
    if day < 0 || day >= len(Days) { return nil }
    return s.Grid[slot][day]
}

func (s *Schedule) checkCell(slot string, day int) error {
    if !lo.Contains(s.TimeSlots, slot) { return ErrUnknownSlot }
    if day < 0 || day >= len(Days) { return errors.Errorf("day %d out of range", day) }
    if s.Grid == nil { s.Grid = map[string]Row{} }
    return nil
}

type ScheduleStore struct {
    Path string
}

// Load reads the grid, writing the default one when the file is missing.
func (st ScheduleStore) Load() (*Schedule, error) {
    s := &Schedule{}
    found, err := cache.ReadJSON(st.Path, s)
    if err != nil { return DefaultSchedule(), errors.Wrap(err, "read schedule") }
    if !found || len(s.TimeSlots) == 0 {
        s = DefaultSchedule()
        return s, st.Save(s)
    }
    if s.Grid == nil { s.Grid = map[string]Row{} }
    for _, slot := range s.TimeSlots {
        if _, ok := s.Grid[slot]; !ok { s.Grid[slot] = Row{} }
    }
    return s, nil
}

func (st ScheduleStore) Save(s *Schedule) error {
    return errors.Wrap(cache.WriteJSON(st.Path, s), "save schedule")
}
