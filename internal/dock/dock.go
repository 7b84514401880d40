// Package dock keeps the pinned-app list and the running-window map the dock
// panel renders.
package dock

import (
    "context"
    "sort"

    "github.com/pkg/errors"
    "github.com/sahilm/fuzzy"

    "hyprwidgets/internal/cache"
    "hyprwidgets/internal/hypr"
)

// App is one pinned entry. Class matches the window class; Exec launches it.
type App struct {
    Class string `json:"class"`
    Exec  string `json:"exec"`
}

// Store persists the pinned list as a JSON array, preserving order.
type Store struct {
    Path string
}

func (s Store) Load() ([]App, error) {
    var apps []App
    if _, err := cache.ReadJSON(s.Path, &apps); err != nil { return nil, errors.Wrap(err, "pinned apps") }
    return apps, nil
}

func (s Store) Save(apps []App) error {
    if apps == nil { apps = []App{} }
    return errors.Wrap(cache.WriteJSON(s.Path, apps), "pinned apps")
}

// Pin appends app unless its class is already pinned.
func Pin(apps []App, app App) []App {
    if indexOf(apps, app.Class) >= 0 { return apps }
    return append(apps, app)
}

// Unpin removes the entry with the class.
func Unpin(apps []App, class string) []App {
    i := indexOf(apps, class)
    if i < 0 { return apps }
    return append(apps[:i:i], apps[i+1:]...)
}

// Move shifts the entry with class by delta positions, clamped to the list.
func Move(apps []App, class string, delta int) []App {
    i := indexOf(apps, class)
    if i < 0 { return apps }
    j := i + delta
    if j < 0 { j = 0 }
    if j >= len(apps) { j = len(apps) - 1 }
    out := append([]App(nil), apps...)
    app := out[i]
    out = append(out[:i], out[i+1:]...)
    out = append(out[:j], append([]App{app}, out[j:]...)...)
    return out
}

func indexOf(apps []App, class string) int {
    for i, a := range apps {
        if a.Class == class { return i }
    }
    return -1
}

// Item is one dock slot: a pinned app, running or not, or an unpinned
// running class.
type Item struct {
    Class   string
    Exec    string
    Pinned  bool
    Windows int
}

func (i Item) Running() bool { return i.Windows > 0 }

// State is the dock's application state: pinned apps plus the address to
// class map of open windows. It is owned by the UI loop.
type State struct {
    Pinned  []App
    clients map[string]string
}

func NewState(pinned []App) *State {
    return &State{Pinned: pinned, clients: map[string]string{}}
}

// Reset replaces the window map from a full client listing.
func (s *State) Reset(cs []hypr.Client) {
    s.clients = make(map[string]string, len(cs))
    for _, c := range cs {
        if c.Class == "" { continue }
        s.clients[c.Address] = c.Class
    }
}

// Apply folds one compositor event into the window map. It reports whether the
// dock changed.
func (s *State) Apply(ev hypr.Event) bool {
    switch ev.Name {
    case "openwindow":
        w, ok := ev.OpenWindow()
        if !ok || w.Class == "" { return false }
        s.clients[w.Address] = w.Class
        return true
    case "closewindow":
        addr := ev.Address()
        if _, ok := s.clients[addr]; !ok { return false }
        delete(s.clients, addr)
        return true
    }
    return false
}

// Items lists pinned apps in pinned order followed by unpinned running
// classes sorted by name.
func (s *State) Items() []Item {
    count := map[string]int{}
    for _, class := range s.clients {
        count[class]++
    }
    items := make([]Item, 0, len(s.Pinned)+len(count))
    pinned := map[string]bool{}
    for _, a := range s.Pinned {
        pinned[a.Class] = true
        items = append(items, Item{Class: a.Class, Exec: a.Exec, Pinned: true, Windows: count[a.Class]})
    }
    var extra []Item
    for class, n := range count {
        if !pinned[class] { extra = append(extra, Item{Class: class, Windows: n}) }
    }
    sort.Slice(extra, func(i, j int) bool { return extra[i].Class < extra[j].Class })
    return append(items, extra...)
}

type itemSource []Item

func (s itemSource) String(i int) string { return s[i].Class }
func (s itemSource) Len() int            { return len(s) }

// Filter fuzzy-matches items by class, best match first.
func Filter(items []Item, query string) []Item {
    if query == "" { return items }
    matches := fuzzy.FindFrom(query, itemSource(items))
    out := make([]Item, 0, len(matches))
    for _, m := range matches {
        out = append(out, items[m.Index])
    }
    return out
}

// Focuser focuses a window class.
type Focuser interface {
    FocusClass(ctx context.Context, class string) error
}

// Activate focuses a running item or launches a pinned one.
func Activate(ctx context.Context, it Item, f Focuser, launch func(cmdline string) error) error {
    if it.Running() { return f.FocusClass(ctx, it.Class) }
    if it.Exec == "" { return errors.Errorf("%s is not running and has no exec", it.Class) }
    return launch(it.Exec)
}
