package wifi

import (
    "context"

    "github.com/godbus/dbus/v5"
    "github.com/pkg/errors"
)

const (
    nmDest       = "org.freedesktop.NetworkManager"
    nmPath       = dbus.ObjectPath("/org/freedesktop/NetworkManager")
    nmSettings   = dbus.ObjectPath("/org/freedesktop/NetworkManager/Settings")
    nmDevice     = nmDest + ".Device"
    nmWireless   = nmDest + ".Device.Wireless"
    nmAP         = nmDest + ".AccessPoint"
    nmSettingsIf = nmDest + ".Settings"
    nmConnIf     = nmDest + ".Settings.Connection"
    propsGetAll  = "org.freedesktop.DBus.Properties.GetAll"
    propsGet     = "org.freedesktop.DBus.Properties.Get"

    deviceTypeWifi = 2
    stateAsleep    = 10
)

// NM reads NetworkManager over the system bus.
type NM struct {
    conn *dbus.Conn
}

func ConnectNM() (*NM, error) {
    conn, err := dbus.ConnectSystemBus()
    if err != nil { return nil, errors.Wrap(err, "system bus") }
    return &NM{conn: conn}, nil
}

func (n *NM) Close() error { return n.conn.Close() }

func (n *NM) get(ctx context.Context, path dbus.ObjectPath, iface, prop string) (dbus.Variant, error) {
    var v dbus.Variant
    err := n.conn.Object(nmDest, path).CallWithContext(ctx, propsGet, 0, iface, prop).Store(&v)
    return v, errors.Wrapf(err, "%s.%s", iface, prop)
}

// WirelessDevice returns the first Wi-Fi device and its interface name.
func (n *NM) WirelessDevice(ctx context.Context) (dbus.ObjectPath, string, error) {
    var devs []dbus.ObjectPath
    if err := n.conn.Object(nmDest, nmPath).CallWithContext(ctx, nmDest+".GetDevices", 0).Store(&devs); err != nil {
        return "", "", errors.Wrap(err, "GetDevices")
    }
    for _, d := range devs {
        v, err := n.get(ctx, d, nmDevice, "DeviceType")
        if err != nil { continue }
        if t, ok := v.Value().(uint32); ok && t == deviceTypeWifi {
            iv, _ := n.get(ctx, d, nmDevice, "Interface")
            iface, _ := iv.Value().(string)
            return d, iface, nil
        }
    }
    return "", "", errors.New("no wireless device")
}

// Networks asks the device to rescan and lists the access points it knows.
// The scan request is best effort; NetworkManager rate limits it.
func (n *NM) Networks(ctx context.Context) ([]Network, error) {
    dev, _, err := n.WirelessDevice(ctx)
    if err != nil { return nil, err }
    obj := n.conn.Object(nmDest, dev)
    _ = obj.CallWithContext(ctx, nmWireless+".RequestScan", 0, map[string]dbus.Variant{}).Err

    var aps []dbus.ObjectPath
    if err := obj.CallWithContext(ctx, nmWireless+".GetAllAccessPoints", 0).Store(&aps); err != nil {
        return nil, errors.Wrap(err, "GetAllAccessPoints")
    }
    var active dbus.ObjectPath
    if v, err := n.get(ctx, dev, nmWireless, "ActiveAccessPoint"); err == nil {
        active, _ = v.Value().(dbus.ObjectPath)
    }
    saved, _ := n.SavedSSIDs(ctx)

    nets := make([]Network, 0, len(aps))
    for _, ap := range aps {
        var props map[string]dbus.Variant
        if err := n.conn.Object(nmDest, ap).CallWithContext(ctx, propsGetAll, 0, nmAP).Store(&props); err != nil {
            if ctx.Err() != nil { return nil, ctx.Err() }
            continue
        }
        net := NetworkFromProps(props, ap == active)
        net.Saved = saved[net.SSID]
        nets = append(nets, net)
    }
    return SortNetworks(nets), nil
}

// NetworkFromProps decodes AccessPoint properties. A network is secure when
// any of the privacy flag sets is non-zero.
func NetworkFromProps(props map[string]dbus.Variant, active bool) Network {
    net := Network{Active: active}
    if b, ok := props["Ssid"].Value().([]byte); ok { net.SSID = string(b) }
    if s, ok := props["Strength"].Value().(byte); ok { net.Strength = s }
    for _, k := range []string{"Flags", "WpaFlags", "RsnFlags"} {
        if f, ok := props[k].Value().(uint32); ok && f != 0 { net.Secure = true }
    }
    return net
}

// SavedSSIDs lists the SSIDs of saved wireless profiles.
func (n *NM) SavedSSIDs(ctx context.Context) (map[string]bool, error) {
    var conns []dbus.ObjectPath
    if err := n.conn.Object(nmDest, nmSettings).CallWithContext(ctx, nmSettingsIf+".ListConnections", 0).Store(&conns); err != nil {
        return nil, errors.Wrap(err, "ListConnections")
    }
    saved := map[string]bool{}
    for _, c := range conns {
        var settings map[string]map[string]dbus.Variant
        if err := n.conn.Object(nmDest, c).CallWithContext(ctx, nmConnIf+".GetSettings", 0).Store(&settings); err != nil { continue }
        if ssid := SavedSSID(settings); ssid != "" { saved[ssid] = true }
    }
    return saved, nil
}

// SavedSSID extracts the SSID from a connection settings dict, "" for
// non-wireless profiles.
func SavedSSID(settings map[string]map[string]dbus.Variant) string {
    w, ok := settings["802-11-wireless"]
    if !ok { return "" }
    b, _ := w["ssid"].Value().([]byte)
    return string(b)
}

// Radio reports whether wireless is enabled and NetworkManager is awake.
func (n *NM) Radio(ctx context.Context) (bool, error) {
    v, err := n.get(ctx, nmPath, nmDest, "WirelessEnabled")
    if err != nil { return false, err }
    on, _ := v.Value().(bool)
    if st, err := n.get(ctx, nmPath, nmDest, "State"); err == nil {
        if s, ok := st.Value().(uint32); ok && s == stateAsleep { return false, nil }
    }
    return on, nil
}
