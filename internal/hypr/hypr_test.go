package hypr

import (
    "context"
    "net"
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "hyprwidgets/internal/proc/proctest"
)

func TestParseEvent(t *testing.T) {
    ev, ok := ParseEvent("openwindow>>55d1a2,2,firefox,Mozilla Firefox, private\n")
    require.True(t, ok)
    assert.Equal(t, "openwindow", ev.Name)
    w, ok := ev.OpenWindow()
    require.True(t, ok)
    assert.Equal(t, Window{Address: "0x55d1a2", Workspace: "2", Class: "firefox", Title: "Mozilla Firefox, private"}, w)

    ev, ok = ParseEvent("closewindow>>55d1a2")
    require.True(t, ok)
    assert.Equal(t, "0x55d1a2", ev.Address())
    _, ok = ev.OpenWindow()
    assert.False(t, ok)

    _, ok = ParseEvent("garbage")
    assert.False(t, ok)
}

func TestSocketDir(t *testing.T) {
    rt := t.TempDir()
    t.Setenv("XDG_RUNTIME_DIR", rt)
    t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "abc")
    dir, err := SocketDir()
    require.NoError(t, err)
    assert.Equal(t, "/tmp/hypr/abc", dir)

    require.NoError(t, os.MkdirAll(filepath.Join(rt, "hypr", "abc"), 0o755))
    dir, err = SocketDir()
    require.NoError(t, err)
    assert.Equal(t, filepath.Join(rt, "hypr", "abc"), dir)

    t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")
    _, err = SocketDir()
    assert.Error(t, err)
}

func TestStream(t *testing.T) {
    sock := filepath.Join(t.TempDir(), "s.sock")
    ln, err := net.Listen("unix", sock)
    require.NoError(t, err)
    defer ln.Close()
    go func() {
        c, err := ln.Accept()
        if err != nil { return }
        _, _ = c.Write([]byte("workspace>>2\nnonsense\nopenwindow>>ab,1,kitty,zsh\n"))
        c.Close()
    }()

    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    ch, err := Stream(ctx, sock)
    require.NoError(t, err)
    var got []Event
    for ev := range ch {
        got = append(got, ev)
    }
    assert.Equal(t, []Event{{Name: "workspace", Data: "2"}, {Name: "openwindow", Data: "ab,1,kitty,zsh"}}, got)
}

func TestClientsAndFocus(t *testing.T) {
    fake := proctest.New().
        Stdout("hyprctl -j clients", `[{"address":"0xab","class":"kitty","title":"zsh","pid":42,"workspace":{"id":1,"name":"1"}}]`).
        Stdout("hyprctl dispatch focuswindow class:^(org\\.gnome\\.Nautilus)$", "ok")
    c := Ctl{R: fake}
    cs, err := c.Clients(context.Background())
    require.NoError(t, err)
    require.Len(t, cs, 1)
    assert.Equal(t, "kitty", cs[0].Class)
    assert.Equal(t, 1, cs[0].Workspace.ID)

    require.NoError(t, c.FocusClass(context.Background(), "org.gnome.Nautilus"))

    fake.Stdout("hyprctl dispatch focuswindow address:0xff", "No such window found")
    assert.Error(t, c.FocusAddress(context.Background(), "0xff"))
}
