package lyrics

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestClientGet(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "/api/get", r.URL.Path)
        assert.Equal(t, "hyprwidgets-test", r.Header.Get("User-Agent"))
        q := r.URL.Query()
        assert.Equal(t, "Song", q.Get("track_name"))
        assert.Equal(t, "Band", q.Get("artist_name"))
        assert.Equal(t, "LP", q.Get("album_name"))
        assert.Equal(t, "200", q.Get("duration"))
        _ = json.NewEncoder(w).Encode(Record{ID: 5, TrackName: "Song", SyncedLyrics: lrc})
    }))
    defer srv.Close()

    c := NewClient(srv.URL, "hyprwidgets-test", time.Second)
    rec, err := c.Get(context.Background(), song)
    require.NoError(t, err)
    assert.Equal(t, int64(5), rec.ID)
    assert.True(t, rec.Synced())
}

func TestClientNotFoundAndRemoteError(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        switch r.URL.Path {
        case "/api/get/404":
            w.WriteHeader(http.StatusNotFound)
            _, _ = w.Write([]byte(`{"code":404,"name":"TrackNotFound"}`))
        default:
            w.WriteHeader(http.StatusBadGateway)
        }
    }))
    defer srv.Close()

    c := NewClient(srv.URL, "", time.Second)
    _, err := c.GetByID(context.Background(), 404)
    assert.ErrorIs(t, err, ErrNotFound)

    _, err = c.Search(context.Background(), song)
    var re *RemoteError
    require.ErrorAs(t, err, &re)
    assert.Equal(t, http.StatusBadGateway, re.Status)
}

func TestClientSearch(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "/api/search", r.URL.Path)
        assert.Equal(t, "", r.URL.Query().Get("duration"))
        _ = json.NewEncoder(w).Encode([]Record{{ID: 1}, {ID: 2, SyncedLyrics: lrc}})
    }))
    defer srv.Close()

    recs, err := NewClient(srv.URL, "", time.Second).Search(context.Background(), song)
    require.NoError(t, err)
    require.Len(t, recs, 2)
    assert.False(t, recs[0].Synced())
}
