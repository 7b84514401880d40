package cache

import (
    "encoding/json"
    "os"
    "path/filepath"

    "github.com/pkg/errors"
)

// ReadJSON decodes the document at path into v. A missing file leaves v
// untouched and reports found=false.
func ReadJSON(path string, v any) (bool, error) {
    b, err := os.ReadFile(path)
    if err != nil {
        if errors.Is(err, os.ErrNotExist) { return false, nil }
        return false, err
    }
    if err := json.Unmarshal(b, v); err != nil { return true, err }
    return true, nil
}

// WriteJSON replaces the document at path wholesale. Writers are infrequent and
// single-instance, so there is no locking; the rename keeps readers from ever
// seeing a half-written file.
func WriteJSON(path string, v any) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { return err }
    b, err := json.MarshalIndent(v, "", "  ")
    if err != nil { return err }
    tmp := path + ".tmp"
    if err := os.WriteFile(tmp, b, 0o644); err != nil { return err }
    return os.Rename(tmp, path)
}

// LyricIDs maps a track signature ("artist - title") to the lyric source id the
// user pinned for it, so ambiguous searches are skipped next time.
type LyricIDs struct {
    path string
}

func NewLyricIDs(path string) *LyricIDs { return &LyricIDs{path: path} }

func (l *LyricIDs) load() (map[string]int64, error) {
    m := map[string]int64{}
    if _, err := ReadJSON(l.path, &m); err != nil { return map[string]int64{}, err }
    if m == nil { m = map[string]int64{} }
    return m, nil
}

// Get returns the saved id, if any. A corrupt file reads as empty.
func (l *LyricIDs) Get(signature string) (int64, bool) {
    if signature == "" { return 0, false }
    m, _ := l.load()
    id, ok := m[signature]
    return id, ok && id > 0
}

func (l *LyricIDs) Put(signature string, id int64) error {
    if signature == "" { return nil }
    m, _ := l.load()
    if id <= 0 {
        delete(m, signature)
    } else {
        m[signature] = id
    }
    return WriteJSON(l.path, m)
}

func (l *LyricIDs) Forget(signature string) error { return l.Put(signature, 0) }
