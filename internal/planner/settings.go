package planner

import (
    "github.com/pkg/errors"

    "hyprwidgets/internal/cache"
)

// Settings are the sidebar toggles.
type Settings struct {
    IdleEnabled bool `json:"idle_enabled"`
}

type SettingsStore struct {
    Path string
}

// Load returns the settings; a missing file yields idle enabled and is written
// out.
func (st SettingsStore) Load() (Settings, error) {
    s := Settings{IdleEnabled: true}
    found, err := cache.ReadJSON(st.Path, &s)
    if err != nil { return Settings{IdleEnabled: true}, errors.Wrap(err, "read settings") }
    if !found { return s, st.Save(s) }
    return s, nil
}

func (st SettingsStore) Save(s Settings) error {
    return errors.Wrap(cache.WriteJSON(st.Path, s), "save settings")
}

// ToggleIdle flips the idle setting and persists it.
func (st SettingsStore) ToggleIdle() (Settings, error) {
    s, err := st.Load()
    if err != nil { return s, err }
    s.IdleEnabled = !s.IdleEnabled
    return s, st.Save(s)
}
