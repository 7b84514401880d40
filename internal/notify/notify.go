// Package notify sends desktop toasts over org.freedesktop.Notifications.
package notify

import (
    "context"
    "time"

    "github.com/godbus/dbus/v5"
    "github.com/pkg/errors"
    "github.com/sirupsen/logrus"
)

const (
    busName    = "org.freedesktop.Notifications"
    objectPath = "/org/freedesktop/Notifications"
    method     = busName + ".Notify"

    defaultTimeout = 5 * time.Second
)

// Urgency is the notification hint of the same name.
type Urgency byte

const (
    Low Urgency = iota
    Normal
    Critical
)

// Notifier shows toasts. Failures are logged and never returned to callers
// since a missing notification daemon must not break a widget.
type Notifier struct {
    App     string
    Icon    string
    Timeout time.Duration

    obj  dbus.BusObject
    conn *dbus.Conn
    log  logrus.FieldLogger
}

// New connects to the session bus. Without a bus the notifier only logs.
func New(app string, log logrus.FieldLogger) *Notifier {
    n := &Notifier{App: app, Timeout: defaultTimeout, log: log.WithField("component", "notify")}
    conn, err := dbus.ConnectSessionBus()
    if err != nil {
        n.log.WithError(err).Debug("no session bus, toasts disabled")
        return n
    }
    n.conn = conn
    n.obj = conn.Object(busName, objectPath)
    return n
}

// Close releases the bus connection.
func (n *Notifier) Close() error {
    if n.conn == nil { return nil }
    return n.conn.Close()
}

// Toast shows a normal-urgency notification.
func (n *Notifier) Toast(ctx context.Context, summary, body string) {
    n.Send(ctx, summary, body, Normal)
}

// Send shows a notification and returns its server id, or 0 on failure.
func (n *Notifier) Send(ctx context.Context, summary, body string, urgency Urgency) uint32 {
    id, err := n.send(ctx, summary, body, urgency)
    if err != nil {
        n.log.WithError(err).WithField("summary", summary).Warn("notification failed")
        return 0
    }
    return id
}

func (n *Notifier) send(ctx context.Context, summary, body string, urgency Urgency) (uint32, error) {
    if n.obj == nil { return 0, errors.New("not connected to the session bus") }
    hints := map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(urgency))}
    var id uint32
    call := n.obj.CallWithContext(ctx, method, 0,
        n.App, uint32(0), n.Icon, summary, body, []string{}, hints, int32(n.Timeout/time.Millisecond))
    if call.Err != nil { return 0, errors.Wrap(call.Err, "Notify") }
    if err := call.Store(&id); err != nil { return 0, errors.Wrap(err, "Notify reply") }
    return id, nil
}
