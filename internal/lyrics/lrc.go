package lyrics

import (
    "regexp"
    "sort"
    "strconv"
    "strings"
    "time"
)

// Line is one timed lyric line. Lines are immutable once parsed.
type Line struct {
    Time time.Duration
    Text string
}

// Track identifies what is playing. Signature is the cache key for saved
// lyric ids.
type Track struct {
    Artist   string
    Title    string
    Album    string
    Duration time.Duration
}

// Signature returns "artist - title", or "" when either part is missing.
func (t Track) Signature() string {
    if t.Artist == "" || t.Title == "" { return "" }
    return t.Artist + " - " + t.Title
}

var tagRe = regexp.MustCompile(`^\[(\d{1,3}):(\d{2})(?:[.:](\d{1,3}))?\]`)

// ParseLRC extracts timed lines from LRC text. A line may carry several
// leading time tags; metadata tags ([ar:], [ti:]) and lines without text are
// dropped. The result is ordered by time, stable for equal stamps.
func ParseLRC(text string) []Line {
    var out []Line
    for _, raw := range strings.Split(text, "\n") {
        raw = strings.TrimSpace(strings.TrimRight(raw, "\r"))
        var stamps []time.Duration
        for {
            m := tagRe.FindStringSubmatch(raw)
            if m == nil { break }
            stamps = append(stamps, stamp(m[1], m[2], m[3]))
            raw = raw[len(m[0]):]
        }
        body := strings.TrimSpace(raw)
        if len(stamps) == 0 || body == "" { continue }
        for _, s := range stamps {
            out = append(out, Line{Time: s, Text: body})
        }
    }
    sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
    return out
}

func stamp(min, sec, frac string) time.Duration {
    m, _ := strconv.Atoi(min)
    s, _ := strconv.Atoi(sec)
    ms := 0
    if frac != "" {
        ms, _ = strconv.Atoi(frac)
        switch len(frac) {
        case 1:
            ms *= 100
        case 2:
            ms *= 10
        }
    }
    return time.Duration(m)*time.Minute + time.Duration(s)*time.Second + time.Duration(ms)*time.Millisecond
}
