// Package launcher finds executables on $PATH and launches them.
package launcher

import (
    "bufio"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "time"

    "github.com/pkg/errors"
    "github.com/samber/lo"
    "golang.org/x/sys/unix"
)

// Executable is one runnable program.
type Executable struct {
    Name string
    Path string
}

// RunCache keeps the $PATH scan in a name=path text file so start-up does not
// walk every directory. The cache is rebuilt when it is missing, older than
// TTL, or when asked explicitly.
type RunCache struct {
    File string
    TTL  time.Duration
    // PathEnv is the search path; empty means $PATH.
    PathEnv string

    now func() time.Time
}

func (c *RunCache) clock() time.Time {
    if c.now != nil { return c.now() }
    return time.Now()
}

// Load returns the cached list, rebuilding first when needed. rebuilt reports
// whether the filesystem was scanned.
func (c *RunCache) Load(forceRebuild bool) (exes []Executable, rebuilt bool, err error) {
    if !forceRebuild && !c.Stale() {
        exes, err := c.read()
        if err == nil && len(exes) > 0 { return exes, false, nil }
    }
    exes, err = c.Rebuild()
    return exes, true, err
}

// Stale reports whether the cache file is missing or past its TTL.
func (c *RunCache) Stale() bool {
    fi, err := os.Stat(c.File)
    if err != nil { return true }
    return c.TTL > 0 && c.clock().Sub(fi.ModTime()) > c.TTL
}

// Age returns how old the cache file is.
func (c *RunCache) Age() (time.Duration, bool) {
    fi, err := os.Stat(c.File)
    if err != nil { return 0, false }
    return c.clock().Sub(fi.ModTime()), true
}

// Rebuild scans the search path and rewrites the cache file.
func (c *RunCache) Rebuild() ([]Executable, error) {
    pathEnv := c.PathEnv
    if pathEnv == "" { pathEnv = os.Getenv("PATH") }
    exes := Scan(filepath.SplitList(pathEnv))
    if err := c.write(exes); err != nil { return exes, err }
    return exes, nil
}

// Scan lists executables in dirs. A name found in several directories
// resolves to the first, as the shell would.
func Scan(dirs []string) []Executable {
    var exes []Executable
    for _, dir := range lo.Uniq(dirs) {
        if dir == "" { continue }
        entries, err := os.ReadDir(dir)
        if err != nil { continue }
        for _, e := range entries {
            if e.IsDir() { continue }
            p := filepath.Join(dir, e.Name())
            if fi, err := os.Stat(p); err != nil || fi.IsDir() { continue }
            if unix.Access(p, unix.X_OK) != nil { continue }
            exes = append(exes, Executable{Name: e.Name(), Path: p})
        }
    }
    exes = lo.UniqBy(exes, func(e Executable) string { return e.Name })
    sort.Slice(exes, func(i, j int) bool { return exes[i].Name < exes[j].Name })
    return exes
}

func (c *RunCache) read() ([]Executable, error) {
    f, err := os.Open(c.File)
    if err != nil { return nil, err }
    defer f.Close()
    var exes []Executable
    sc := bufio.NewScanner(f)
    for sc.Scan() {
        name, path, ok := strings.Cut(sc.Text(), "=")
        if !ok || name == "" { continue }
        exes = append(exes, Executable{Name: name, Path: path})
    }
    return exes, sc.Err()
}

func (c *RunCache) write(exes []Executable) error {
    if err := os.MkdirAll(filepath.Dir(c.File), 0o755); err != nil { return errors.Wrap(err, "run cache dir") }
    var b strings.Builder
    for _, e := range exes {
        b.WriteString(e.Name)
        b.WriteByte('=')
        b.WriteString(e.Path)
        b.WriteByte('\n')
    }
    tmp := c.File + ".tmp"
    if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil { return errors.Wrap(err, "run cache") }
    return os.Rename(tmp, c.File)
}
