package notify

import (
    "context"
    "testing"
    "time"

    "github.com/godbus/dbus/v5"
    "github.com/pkg/errors"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "hyprwidgets/internal/logging"
)

type fakeObject struct {
    dbus.BusObject
    method string
    args   []interface{}
    err    error
}

func (f *fakeObject) CallWithContext(_ context.Context, method string, _ dbus.Flags, args ...interface{}) *dbus.Call {
    f.method = method
    f.args = args
    if f.err != nil { return &dbus.Call{Err: f.err} }
    return &dbus.Call{Body: []interface{}{uint32(42)}}
}

func TestSendArguments(t *testing.T) {
    obj := &fakeObject{}
    n := &Notifier{App: "hyprwidgets", Icon: "network-wireless", Timeout: 3 * time.Second, obj: obj, log: logging.Discard()}

    id := n.Send(context.Background(), "Wi-Fi", "Connected to home", Critical)
    assert.Equal(t, uint32(42), id)
    assert.Equal(t, "org.freedesktop.Notifications.Notify", obj.method)
    require.Len(t, obj.args, 8)
    assert.Equal(t, "hyprwidgets", obj.args[0])
    assert.Equal(t, "network-wireless", obj.args[2])
    assert.Equal(t, "Wi-Fi", obj.args[3])
    assert.Equal(t, "Connected to home", obj.args[4])
    hints := obj.args[6].(map[string]dbus.Variant)
    assert.Equal(t, byte(Critical), hints["urgency"].Value())
    assert.Equal(t, int32(3000), obj.args[7])
}

func TestFailuresAreSwallowed(t *testing.T) {
    n := &Notifier{obj: &fakeObject{err: errors.New("no daemon")}, log: logging.Discard()}
    assert.Zero(t, n.Send(context.Background(), "x", "y", Low))

    offline := &Notifier{log: logging.Discard()}
    assert.NotPanics(t, func() { offline.Toast(context.Background(), "x", "y") })
    assert.NoError(t, offline.Close())
}
