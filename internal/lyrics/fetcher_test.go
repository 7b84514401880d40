package lyrics

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestFetcherSupersedesPreviousTrack(t *testing.T) {
    fl := &fakeLookup{
        block: map[string]bool{"Slow": true},
        exact: map[string]Record{"Fast": {ID: 2, SyncedLyrics: lrc}},
    }
    f := NewFetcher(&Resolver{Lookup: fl})

    slow := make(chan error, 1)
    go func() {
        _, err := f.Fetch(context.Background(), Track{Artist: "A", Title: "Slow"})
        slow <- err
    }()
    require.Eventually(t, func() bool { return len(fl.Calls()) == 1 }, time.Second, 5*time.Millisecond)

    got, err := f.Fetch(context.Background(), Track{Artist: "A", Title: "Fast"})
    require.NoError(t, err)
    assert.Equal(t, int64(2), got.ID)

    select {
    case err := <-slow:
        assert.ErrorIs(t, err, context.Canceled)
    case <-time.After(time.Second):
        t.Fatal("superseded fetch did not return")
    }
}

func TestFetcherCancel(t *testing.T) {
    fl := &fakeLookup{block: map[string]bool{"Slow": true}}
    f := NewFetcher(&Resolver{Lookup: fl})
    done := make(chan error, 1)
    go func() {
        _, err := f.Fetch(context.Background(), Track{Artist: "A", Title: "Slow"})
        done <- err
    }()
    require.Eventually(t, func() bool { return len(fl.Calls()) == 1 }, time.Second, 5*time.Millisecond)
    f.Cancel()
    assert.ErrorIs(t, <-done, context.Canceled)
}
