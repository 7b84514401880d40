package wifi

import (
    "context"

    "github.com/sirupsen/logrus"

    "hyprwidgets/internal/proc"
)

// Service is the Wi-Fi back-end the control panel talks to.
type Service struct {
    Cli   Nmcli
    Bus   *NM
    Chain *Chain
    guard Guard
    log   logrus.FieldLogger
}

// NewService wires nmcli and, when the system bus is reachable, the D-Bus
// scanner. bus may be nil.
func NewService(r proc.Runner, bus *NM, log logrus.FieldLogger) *Service {
    s := &Service{
        Cli:   Nmcli{R: r},
        Bus:   bus,
        Chain: &Chain{R: r, Log: log},
        log:   log,
    }
    if s.log == nil { s.log = discard }
    if bus != nil {
        if _, iface, err := bus.WirelessDevice(context.Background()); err == nil && iface != "" {
            s.Chain.Iface = iface
        }
    }
    return s
}

// Networks lists access points, preferring D-Bus and falling back to nmcli.
func (s *Service) Networks(ctx context.Context) ([]Network, error) {
    if s.Bus != nil {
        nets, err := s.Bus.Networks(ctx)
        if err == nil { return nets, nil }
        if proc.IsCancelled(err) { return nil, err }
        s.log.WithError(err).Debug("wifi: d-bus scan failed, using nmcli")
    }
    return s.Cli.Networks(ctx)
}

func (s *Service) Radio(ctx context.Context) (bool, error) {
    if s.Bus != nil {
        if on, err := s.Bus.Radio(ctx); err == nil { return on, nil }
    }
    return s.Cli.Radio(ctx)
}

func (s *Service) SetRadio(ctx context.Context, on bool) error { return s.Cli.SetRadio(ctx, on) }

func (s *Service) Disconnect(ctx context.Context, ssid string) error { return s.Cli.Disconnect(ctx, ssid) }

// Connect runs the retry chain for ssid unless one is already running, in
// which case it returns ErrInFlight.
func (s *Service) Connect(ctx context.Context, ssid string, p Prompter) (Result, error) {
    release, err := s.guard.Begin(ssid)
    if err != nil { return Result{Attempt: Attempt{SSID: ssid}}, err }
    defer release()
    res := s.Chain.Connect(ctx, ssid, p)
    s.log.WithFields(logrus.Fields{"component": "wifi", "ssid": ssid, "outcome": res.Outcome.String()}).Info("connect finished")
    return res, nil
}

// Busy reports whether a chain for ssid is running.
func (s *Service) Busy(ssid string) bool { return s.guard.Busy(ssid) }
