package proc_test

import (
    "context"
    "sync/atomic"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "hyprwidgets/internal/proc"
    "hyprwidgets/internal/proc/proctest"
)

func TestExecCapturesOutputAndStatus(t *testing.T) {
    res, err := proc.Exec{}.Run(context.Background(), "sh", "-c", "echo out; echo err >&2; exit 3")
    require.NoError(t, err)
    assert.Equal(t, "out\n", res.Stdout)
    assert.Equal(t, "err\n", res.Stderr)
    assert.Equal(t, 3, res.ExitStatus)
    assert.False(t, res.OK())
}

func TestExecSpawnError(t *testing.T) {
    _, err := proc.Exec{}.Run(context.Background(), "/nonexistent/definitely-not-here")
    require.Error(t, err)
    assert.True(t, proc.IsSpawn(err))
    assert.False(t, proc.IsCancelled(err))
}

func TestArgumentsAreNotShellInterpreted(t *testing.T) {
    res, err := proc.Exec{}.Run(context.Background(), "echo", "a; rm -rf /tmp/x", "$HOME")
    require.NoError(t, err)
    assert.Equal(t, "a; rm -rf /tmp/x $HOME\n", res.Stdout)
}

func TestAsyncDeliversExactlyOnce(t *testing.T) {
    f := proctest.New().Stdout("wpctl status", "ok")
    ch := proc.Async(context.Background(), f, "wpctl", "status")
    out, ok := <-ch
    require.True(t, ok)
    require.NoError(t, out.Err)
    assert.Equal(t, "ok", out.Result.Stdout)
    _, ok = <-ch
    assert.False(t, ok)
}

func TestOutputTurnsExitIntoError(t *testing.T) {
    f := proctest.New().Exit("nmcli connection up id home", 4, "no such connection")
    _, err := proc.Output(context.Background(), f, "nmcli", "connection", "up", "id", "home")
    require.Error(t, err)
    assert.Contains(t, err.Error(), "no such connection")
}

func TestOwnerDropsCallbackAfterClose(t *testing.T) {
    f := proctest.New().On("playerctl position", proctest.Reply{
        Result: proc.Result{Stdout: "12.5"},
        Delay:  50 * time.Millisecond,
    })
    o := proc.NewOwner(context.Background())
    var fired atomic.Bool
    o.Go(f, func(proc.Result, error) { fired.Store(true) }, "playerctl", "position")
    o.Close()
    time.Sleep(120 * time.Millisecond)
    assert.False(t, fired.Load())
    assert.False(t, o.Alive())
}

func TestOwnerDeliversWhileAlive(t *testing.T) {
    f := proctest.New().Stdout("playerctl position", "12.5")
    o := proc.NewOwner(context.Background())
    defer o.Close()
    got := make(chan string, 1)
    o.Go(f, func(r proc.Result, err error) { got <- r.Stdout }, "playerctl", "position")
    select {
    case s := <-got:
        assert.Equal(t, "12.5", s)
    case <-time.After(time.Second):
        t.Fatal("callback never fired")
    }
}

func TestResultLines(t *testing.T) {
    r := proc.Result{Stdout: "a\r\n\nb\n"}
    assert.Equal(t, []string{"a", "b"}, r.Lines())
}
