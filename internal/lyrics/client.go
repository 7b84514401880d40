package lyrics

import (
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net"
    "net/http"
    "net/url"
    "strconv"
    "strings"
    "time"

    "github.com/pkg/errors"
)

// ErrNotFound means the lyric service has nothing for the query.
var ErrNotFound = errors.New("lyrics not found")

// RemoteError is a non-2xx reply other than 404.
type RemoteError struct {
    Status int
    URL    string
}

func (e *RemoteError) Error() string { return fmt.Sprintf("lrclib: %s: HTTP %d", e.URL, e.Status) }

// Record is one lrclib entry.
type Record struct {
    ID           int64   `json:"id"`
    TrackName    string  `json:"trackName"`
    ArtistName   string  `json:"artistName"`
    AlbumName    string  `json:"albumName"`
    Duration     float64 `json:"duration"`
    Instrumental bool    `json:"instrumental"`
    PlainLyrics  string  `json:"plainLyrics"`
    SyncedLyrics string  `json:"syncedLyrics"`
}

func (r Record) Synced() bool { return strings.TrimSpace(r.SyncedLyrics) != "" }

// Client talks to an lrclib-compatible HTTP API.
type Client struct {
    baseURL   string
    userAgent string
    http      *http.Client
}

func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
    if baseURL == "" { baseURL = "https://lrclib.net" }
    if timeout <= 0 { timeout = 10 * time.Second }
    return &Client{
        baseURL:   strings.TrimRight(baseURL, "/"),
        userAgent: userAgent,
        http: &http.Client{
            Timeout: timeout,
            Transport: &http.Transport{
                Proxy:               http.ProxyFromEnvironment,
                DialContext:         (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext,
                TLSHandshakeTimeout: timeout,
            },
        },
    }
}

// Get does an exact lookup by track signature and duration.
func (c *Client) Get(ctx context.Context, t Track) (Record, error) {
    q := url.Values{}
    q.Set("track_name", t.Title)
    q.Set("artist_name", t.Artist)
    if t.Album != "" { q.Set("album_name", t.Album) }
    if t.Duration > 0 { q.Set("duration", strconv.Itoa(int(t.Duration/time.Second))) }
    var rec Record
    err := c.getJSON(ctx, "/api/get?"+q.Encode(), &rec)
    return rec, err
}

// GetByID fetches a specific record.
func (c *Client) GetByID(ctx context.Context, id int64) (Record, error) {
    var rec Record
    err := c.getJSON(ctx, "/api/get/"+strconv.FormatInt(id, 10), &rec)
    return rec, err
}

// Search returns all candidates for title and artist.
func (c *Client) Search(ctx context.Context, t Track) ([]Record, error) {
    q := url.Values{}
    q.Set("track_name", t.Title)
    if t.Artist != "" { q.Set("artist_name", t.Artist) }
    var recs []Record
    err := c.getJSON(ctx, "/api/search?"+q.Encode(), &recs)
    return recs, err
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
    u := c.baseURL + path
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
    if err != nil { return errors.Wrap(err, "lrclib request") }
    if c.userAgent != "" { req.Header.Set("User-Agent", c.userAgent) }
    req.Header.Set("Accept", "application/json")
    resp, err := c.http.Do(req)
    if err != nil {
        if ctx.Err() != nil { return ctx.Err() }
        return errors.Wrap(err, "lrclib")
    }
    defer resp.Body.Close()
    if resp.StatusCode == http.StatusNotFound {
        _, _ = io.Copy(io.Discard, resp.Body)
        return ErrNotFound
    }
    if resp.StatusCode/100 != 2 {
        _, _ = io.Copy(io.Discard, resp.Body)
        return &RemoteError{Status: resp.StatusCode, URL: u}
    }
    body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
    if err != nil { return errors.Wrap(err, "lrclib read") }
    return errors.Wrap(json.Unmarshal(body, v), "lrclib decode")
}
