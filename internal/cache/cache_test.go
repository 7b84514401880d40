package cache

import (
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestReadJSONMissingFile(t *testing.T) {
    var v map[string]int
    found, err := ReadJSON(filepath.Join(t.TempDir(), "nope.json"), &v)
    require.NoError(t, err)
    assert.False(t, found)
}

func TestWriteThenRead(t *testing.T) {
    p := filepath.Join(t.TempDir(), "sub", "doc.json")
    require.NoError(t, WriteJSON(p, map[string]int{"a": 1}))
    var got map[string]int
    found, err := ReadJSON(p, &got)
    require.NoError(t, err)
    assert.True(t, found)
    assert.Equal(t, map[string]int{"a": 1}, got)
    _, err = os.Stat(p + ".tmp")
    assert.True(t, os.IsNotExist(err))
}

func TestLyricIDs(t *testing.T) {
    ids := NewLyricIDs(filepath.Join(t.TempDir(), "saved_lyrics.json"))
    _, ok := ids.Get("Daft Punk - One More Time")
    assert.False(t, ok)

    require.NoError(t, ids.Put("Daft Punk - One More Time", 4242))
    require.NoError(t, ids.Put("Other - Song", 7))
    id, ok := ids.Get("Daft Punk - One More Time")
    assert.True(t, ok)
    assert.Equal(t, int64(4242), id)

    require.NoError(t, ids.Forget("Daft Punk - One More Time"))
    _, ok = ids.Get("Daft Punk - One More Time")
    assert.False(t, ok)
    id, ok = ids.Get("Other - Song")
    assert.True(t, ok)
    assert.Equal(t, int64(7), id)
}

func TestLyricIDsCorruptFileReadsEmpty(t *testing.T) {
    p := filepath.Join(t.TempDir(), "saved_lyrics.json")
    require.NoError(t, os.WriteFile(p, []byte("{not json"), 0o644))
    ids := NewLyricIDs(p)
    _, ok := ids.Get("a - b")
    assert.False(t, ok)
    require.NoError(t, ids.Put("a - b", 1))
    id, ok := ids.Get("a - b")
    assert.True(t, ok)
    assert.Equal(t, int64(1), id)
}
