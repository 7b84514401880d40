package planner

import (
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.Local) }

func TestCalendarAddRemove(t *testing.T) {
    c := NewCalendar()
    d := day(2025, time.March, 7)
    late, err := c.Add(d, "18:30", "dinner", false)
    require.NoError(t, err)
    _, err = c.Add(d, "9:05", "standup", false)
    require.NoError(t, err)
    bday, err := c.Add(d, "00:00", "birthday", true)
    require.NoError(t, err)

    _, err = c.Add(d, "25:00", "nope", false)
    assert.Error(t, err)
    _, err = c.Add(d, "10:00", "  ", false)
    assert.Error(t, err)

    evs := c.Day(d)
    require.Len(t, evs, 3)
    assert.Equal(t, []string{"birthday", "standup", "dinner"}, []string{evs[0].Title, evs[1].Title, evs[2].Title})
    assert.True(t, evs[0].Recurring)
    assert.Equal(t, "09:05", evs[1].Time)

    next := day(2026, time.March, 7)
    assert.True(t, c.HasEvents(next), "recurring events repeat yearly")
    assert.Len(t, c.Day(next), 1)

    assert.True(t, c.Remove(d, late.ID))
    assert.True(t, c.Remove(next, bday.ID))
    assert.False(t, c.Remove(d, "missing"))
    assert.Len(t, c.Day(d), 1)
    assert.Empty(t, c.Recurring)
}

func TestCalendarStoreNormalizesLegacyKeys(t *testing.T) {
    dir := t.TempDir()
    st := CalendarStore{EventsPath: filepath.Join(dir, "events.json"), RecurringPath: filepath.Join(dir, "permanent_events.json")}
    require.NoError(t, os.WriteFile(st.EventsPath, []byte(`{"2025-3-7":[{"time":"14:00","title":"dentist"}],"junk":[]}`), 0o644))
    require.NoError(t, os.WriteFile(st.RecurringPath, []byte(`{"12-25":[{"time":"08:00","title":"gifts"}]}`), 0o644))

    c, err := st.Load()
    require.NoError(t, err)
    evs := c.Day(day(2025, time.March, 7))
    require.Len(t, evs, 1)
    assert.Equal(t, "dentist", evs[0].Title)
    assert.NotEmpty(t, evs[0].ID)
    assert.Len(t, c.Events, 1)
    assert.True(t, c.HasEvents(day(2030, time.December, 25)))

    require.NoError(t, st.Save(c))
    again, err := st.Load()
    require.NoError(t, err)
    assert.Equal(t, c.Events, again.Events, "ids survive a save")
}

func TestUpcoming(t *testing.T) {
    c := NewCalendar()
    now := time.Date(2025, time.March, 7, 12, 0, 0, 0, time.Local)
    _, _ = c.Add(now, "09:00", "past", false)
    _, _ = c.Add(now, "15:00", "later", false)
    _, _ = c.Add(now.AddDate(0, 0, 2), "10:00", "soon", false)
    _, _ = c.Add(now.AddDate(0, 0, 9), "10:00", "far", false)

    up := c.Upcoming(now, 7)
    require.Len(t, up, 2)
    assert.Equal(t, "later", up[0].Title)
    assert.Equal(t, "3 hours from now", up[0].Label(now))
    assert.Equal(t, "soon", up[1].Title)
}

func TestClocks(t *testing.T) {
    for in, want := range map[string]int{"12:00 AM": 0, "12:30 PM": 750, "09:00 AM": 540, "1:15 PM": 795, "17:45": 1065} {
        got, err := ClockMinutes(in)
        require.NoError(t, err, in)
        assert.Equal(t, want, got, in)
    }
    _, err := ClockMinutes("24:00")
    assert.Error(t, err)
    _, err = ClockMinutes("9:00 XM")
    assert.Error(t, err)

    assert.Equal(t, "12:00 AM", FormatClock(0))
    assert.Equal(t, "01:30 PM", FormatClock(13*60+30))
    assert.Equal(t, "12:00 AM", FormatClock(24*60))
    assert.Equal(t, "2:05 PM", Clock12("14:05"))
}

func TestScheduleSlots(t *testing.T) {
    s := DefaultSchedule()
    afternoon, err := s.AddSlot(13*60, 14*60)
    require.NoError(t, err)
    early, err := s.AddSlot(7*60, 8*60+30)
    require.NoError(t, err)
    assert.Equal(t, []string{"07:00 AM - 08:30 AM", "09:00 AM - 10:00 AM", "01:00 PM - 02:00 PM"}, s.TimeSlots)

    late, err := s.AddSlot(23*60, 24*60)
    require.NoError(t, err)
    assert.Equal(t, "11:00 PM - 12:00 AM", late)
    require.NoError(t, s.RemoveSlot(late))

    _, err = s.AddSlot(10*60, 10*60)
    assert.ErrorIs(t, err, ErrBadRange)
    _, err = s.AddSlot(13*60, 14*60)
    assert.ErrorIs(t, err, ErrSlotExists)

    require.NoError(t, s.Set(afternoon, 2, Entry{Title: "gym"}))
    assert.Equal(t, "gym", s.Cell(afternoon, 2).Title)
    assert.Nil(t, s.Cell(afternoon, 3))
    assert.Error(t, s.Set(afternoon, 7, Entry{}))
    require.NoError(t, s.Clear(afternoon, 2))
    assert.Nil(t, s.Cell(afternoon, 2))

    require.NoError(t, s.RemoveSlot(afternoon))
    require.NoError(t, s.RemoveSlot(early))
    assert.ErrorIs(t, s.RemoveSlot(s.TimeSlots[0]), ErrLastSlot)
    assert.ErrorIs(t, s.RemoveSlot("nope"), ErrUnknownSlot)
}

func TestScheduleStore(t *testing.T) {
    st := ScheduleStore{Path: filepath.Join(t.TempDir(), "schedule.json")}
    s, err := st.Load()
    require.NoError(t, err)
    assert.Len(t, s.TimeSlots, 1)
    _, err = os.Stat(st.Path)
    require.NoError(t, err, "default grid is written")

    require.NoError(t, s.Set(s.TimeSlots[0], 0, Entry{Title: "read", Description: "chapter 3"}))
    require.NoError(t, st.Save(s))

    raw, err := os.ReadFile(st.Path)
    require.NoError(t, err)
    assert.Contains(t, string(raw), "null")

    again, err := st.Load()
    require.NoError(t, err)
    assert.Equal(t, "chapter 3", again.Cell(again.TimeSlots[0], 0).Description)
}

func TestSettings(t *testing.T) {
    st := SettingsStore{Path: filepath.Join(t.TempDir(), "settings.json")}
    s, err := st.Load()
    require.NoError(t, err)
    assert.True(t, s.IdleEnabled)

    s, err = st.ToggleIdle()
    require.NoError(t, err)
    assert.False(t, s.IdleEnabled)
    s, err = st.Load()
    require.NoError(t, err)
    assert.False(t, s.IdleEnabled)
}
