// Package planner holds the calendar, the weekly schedule grid and the sidebar
// settings, each persisted as a JSON document.
package planner

import (
    "fmt"
    "sort"
    "strconv"
    "strings"
    "time"

    "github.com/dustin/go-humanize"
    "github.com/google/uuid"
    "github.com/pkg/errors"

    "hyprwidgets/internal/cache"
)

const (
    dateLayout      = "2006-01-02"
    recurringLayout = "01-02"
    clockLayout     = "15:04"
)

// Event is one calendar entry. Time is a 24h "HH:MM" clock.
type Event struct {
    ID    string `json:"id,omitempty"`
    Time  string `json:"time"`
    Title string `json:"title"`
}

// DayEvent is an event as shown for a given day.
type DayEvent struct {
    Event
    Recurring bool
}

// Calendar maps a date key to that day's events. Recurring events repeat
// every year and are keyed by month and day.
type Calendar struct {
    Events    map[string][]Event
    Recurring map[string][]Event
}

func NewCalendar() *Calendar {
    return &Calendar{Events: map[string][]Event{}, Recurring: map[string][]Event{}}
}

func DateKey(t time.Time) string      { return t.Format(dateLayout) }
func RecurringKey(t time.Time) string { return t.Format(recurringLayout) }

// normalizeKey accepts unpadded keys ("2025-3-7", "3-7") and returns the
// padded form.
func normalizeKey(k string) (string, bool) {
    parts := strings.Split(k, "-")
    nums := make([]int, len(parts))
    for i, p := range parts {
        n, err := strconv.Atoi(strings.TrimSpace(p))
        if err != nil { return "", false }
        nums[i] = n
    }
    switch len(nums) {
    case 3:
        if nums[1] < 1 || nums[1] > 12 || nums[2] < 1 || nums[2] > 31 { return "", false }
        return fmt.Sprintf("%04d-%02d-%02d", nums[0], nums[1], nums[2]), true
    case 2:
        if nums[0] < 1 || nums[0] > 12 || nums[1] < 1 || nums[1] > 31 { return "", false }
        return fmt.Sprintf("%02d-%02d", nums[0], nums[1]), true
    }
    return "", false
}

// ParseClock validates a 24h clock and returns it zero-padded.
func ParseClock(s string) (string, error) {
    t, err := time.Parse(clockLayout, strings.TrimSpace(s))
    if err != nil {
        // tolerate "9:05"
        var h, m int
        if _, serr := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); serr != nil || h < 0 || h > 23 || m < 0 || m > 59 {
            return "", errors.Errorf("invalid time %q, want HH:MM", s)
        }
        return fmt.Sprintf("%02d:%02d", h, m), nil
    }
    return t.Format(clockLayout), nil
}

// Clock12 renders "HH:MM" as "h:MM AM".
func Clock12(clock string) string {
    t, err := time.Parse(clockLayout, clock)
    if err != nil { return clock }
    return t.Format("3:04 PM")
}

func sortEvents(evs []Event) {
    sort.SliceStable(evs, func(i, j int) bool { return evs[i].Time < evs[j].Time })
}

// Add stores a one-off event (or a yearly one when recurring is set) and
// returns it with its new id.
func (c *Calendar) Add(day time.Time, clock, title string, recurring bool) (Event, error) {
    title = strings.TrimSpace(title)
    if title == "" { return Event{}, errors.New("event title is empty") }
    clock, err := ParseClock(clock)
    if err != nil { return Event{}, err }
    ev := Event{ID: uuid.NewString(), Time: clock, Title: title}
    m, key := c.Events, DateKey(day)
    if recurring { m, key = c.Recurring, RecurringKey(day) }
    m[key] = append(m[key], ev)
    sortEvents(m[key])
    return ev, nil
}

// Remove deletes the event with id from day, looking at both the one-off and
// the recurring entries. It reports whether anything was removed.
func (c *Calendar) Remove(day time.Time, id string) bool {
    return removeFrom(c.Events, DateKey(day), id) || removeFrom(c.Recurring, RecurringKey(day), id)
}

func removeFrom(m map[string][]Event, key, id string) bool {
    evs := m[key]
    for i, ev := range evs {
        if ev.ID != id { continue }
        evs = append(evs[:i:i], evs[i+1:]...)
        if len(evs) == 0 {
            delete(m, key)
        } else {
            m[key] = evs
        }
        return true
    }
    return false
}

// Day lists the day's events, recurring and one-off merged in time order.
func (c *Calendar) Day(day time.Time) []DayEvent {
    var out []DayEvent
    for _, ev := range c.Recurring[RecurringKey(day)] {
        out = append(out, DayEvent{Event: ev, Recurring: true})
    }
    for _, ev := range c.Events[DateKey(day)] {
        out = append(out, DayEvent{Event: ev})
    }
    sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
    return out
}

func (c *Calendar) HasEvents(day time.Time) bool {
    return len(c.Events[DateKey(day)]) > 0 || len(c.Recurring[RecurringKey(day)]) > 0
}

// Upcoming is an event placed at a concrete instant.
type Upcoming struct {
    DayEvent
    When time.Time
}

// Label is a relative description such as "3 hours from now".
func (u Upcoming) Label(now time.Time) string {
    return humanize.RelTime(u.When, now, "ago", "from now")
}

// Upcoming lists events from now through the next days days, soonest first.
// Events earlier today that have already passed are skipped.
func (c *Calendar) Upcoming(now time.Time, days int) []Upcoming {
    var out []Upcoming
    start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
    for d := 0; d <= days; d++ {
        day := start.AddDate(0, 0, d)
        for _, ev := range c.Day(day) {
            t, err := time.Parse(clockLayout, ev.Time)
            if err != nil { continue }
            when := day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
            if when.Before(now) { continue }
            out = append(out, Upcoming{DayEvent: ev, When: when})
        }
    }
    return out
}

// CalendarStore persists one-off and recurring events in two files.
type CalendarStore struct {
    EventsPath    string
    RecurringPath string
}

func (s CalendarStore) Load() (*Calendar, error) {
    c := NewCalendar()
    var err error
    if c.Events, err = loadEvents(s.EventsPath); err != nil { return c, err }
    if c.Recurring, err = loadEvents(s.RecurringPath); err != nil { return c, err }
    return c, nil
}

func loadEvents(path string) (map[string][]Event, error) {
    raw := map[string][]Event{}
    if _, err := cache.ReadJSON(path, &raw); err != nil { return map[string][]Event{}, errors.Wrapf(err, "read %s", path) }
    out := make(map[string][]Event, len(raw))
    for k, evs := range raw {
        key, ok := normalizeKey(k)
        if !ok { continue }
        for _, ev := range evs {
            // files written by older tools carry no ids
            if ev.ID == "" { ev.ID = uuid.NewString() }
            out[key] = append(out[key], ev)
        }
        sortEvents(out[key])
    }
    return out, nil
}

func (s CalendarStore) Save(c *Calendar) error {
    if err := cache.WriteJSON(s.EventsPath, c.Events); err != nil { return errors.Wrap(err, "save events") }
    return errors.Wrap(cache.WriteJSON(s.RecurringPath, c.Recurring), "save recurring events")
}
