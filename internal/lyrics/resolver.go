package lyrics

import (
    "context"
    "math"
    "strings"
    "time"

    "github.com/agnivade/levenshtein"
    "github.com/pkg/errors"
    "github.com/sirupsen/logrus"
)

// Source names which lookup step produced a result.
type Source string

const (
    FromSaved  Source = "saved"
    FromExact  Source = "exact"
    FromSearch Source = "search"
)

// Resolved is a lyric set ready for display.
type Resolved struct {
    Track  Track
    ID     int64
    Lines  []Line
    Source Source
}

// IDStore remembers the record a user pinned for a track.
type IDStore interface {
    Get(signature string) (int64, bool)
    Forget(signature string) error
}

// Lookup is the subset of Client the resolver needs.
type Lookup interface {
    Get(ctx context.Context, t Track) (Record, error)
    GetByID(ctx context.Context, id int64) (Record, error)
    Search(ctx context.Context, t Track) ([]Record, error)
}

// Resolver finds synced lyrics for a track: the pinned id first, then an exact
// lookup, then a fuzzy search filtered by duration.
type Resolver struct {
    Lookup  Lookup
    IDs     IDStore
    MaxDiff time.Duration
    Log     logrus.FieldLogger
}

func (r *Resolver) Resolve(ctx context.Context, t Track) (Resolved, error) {
    if t.Title == "" { return Resolved{}, ErrNotFound }
    sig := t.Signature()

    if r.IDs != nil {
        if id, ok := r.IDs.Get(sig); ok {
            rec, err := r.Lookup.GetByID(ctx, id)
            switch {
            case err == nil && rec.Synced():
                return resolved(t, rec, FromSaved), nil
            case ctx.Err() != nil:
                return Resolved{}, ctx.Err()
            case errors.Is(err, ErrNotFound):
                _ = r.IDs.Forget(sig)
            }
            r.logf(err, "saved lyric id %d unusable for %q", id, sig)
        }
    }

    rec, err := r.Lookup.Get(ctx, t)
    if err == nil && rec.Synced() { return resolved(t, rec, FromExact), nil }
    if ctx.Err() != nil { return Resolved{}, ctx.Err() }
    if err != nil && !errors.Is(err, ErrNotFound) { r.logf(err, "exact lookup failed for %q", sig) }

    recs, err := r.Lookup.Search(ctx, t)
    if err != nil {
        if ctx.Err() != nil { return Resolved{}, ctx.Err() }
        return Resolved{}, err
    }
    best, ok := Best(recs, t, r.maxDiff())
    if !ok { return Resolved{}, ErrNotFound }
    return resolved(t, best, FromSearch), nil
}

func (r *Resolver) maxDiff() time.Duration {
    if r.MaxDiff <= 0 { return 2 * time.Second }
    return r.MaxDiff
}

func (r *Resolver) logf(err error, format string, args ...any) {
    if r.Log == nil { return }
    e := r.Log.WithField("component", "lyrics")
    if err != nil { e = e.WithError(err) }
    e.Debugf(format, args...)
}

func resolved(t Track, rec Record, src Source) Resolved {
    return Resolved{Track: t, ID: rec.ID, Lines: ParseLRC(rec.SyncedLyrics), Source: src}
}

// Best picks the search result closest in duration to t. Only records with
// synced lyrics count, and anything further than maxDiff away is rejected.
// Equal durations fall back to the closer title. When t has no duration the
// first synced record wins.
func Best(recs []Record, t Track, maxDiff time.Duration) (Record, bool) {
    want := t.Duration.Seconds()
    title := strings.ToLower(t.Title)
    var (
        best     Record
        found    bool
        bestDiff = math.Inf(1)
        bestDist int
    )
    for _, rec := range recs {
        if !rec.Synced() { continue }
        if t.Duration <= 0 { return rec, true }
        diff := math.Abs(rec.Duration - want)
        dist := levenshtein.ComputeDistance(title, strings.ToLower(rec.TrackName))
        if diff < bestDiff || (diff == bestDiff && dist < bestDist) {
            best, bestDiff, bestDist, found = rec, diff, dist, true
        }
    }
    if !found || bestDiff > maxDiff.Seconds() { return Record{}, false }
    return best, true
}
