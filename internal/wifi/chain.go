// Package wifi drives NetworkManager: scanning, radio state and the
// connection retry chain.
package wifi

import (
    "context"
    "io"

    "github.com/pkg/errors"
    "github.com/sirupsen/logrus"

    "hyprwidgets/internal/proc"
)

// Step is one state of the connection chain. Steps only move forward within
// a round; a new password starts a new round at DeleteStale.
type Step int

const (
    TryExisting Step = iota
    DeleteStale
    CreateProfile
    Activate
    PromptCredentials
)

func (s Step) String() string {
    switch s {
    case TryExisting:
        return "try-existing"
    case DeleteStale:
        return "delete-stale"
    case CreateProfile:
        return "create-profile"
    case Activate:
        return "activate"
    case PromptCredentials:
        return "prompt-credentials"
    }
    return "unknown"
}

// Outcome is how a chain ended.
type Outcome int

const (
    Connected Outcome = iota
    Failed
    // Abandoned covers a dismissed prompt and cancellation.
    Abandoned
)

func (o Outcome) String() string {
    switch o {
    case Connected:
        return "connected"
    case Failed:
        return "failed"
    }
    return "abandoned"
}

var (
    // ErrUserCancelled is returned by a Prompter when the dialog is dismissed.
    ErrUserCancelled = errors.New("cancelled by user")
    // ErrBadCredentials is the failure after a supplied password did not work.
    ErrBadCredentials = errors.New("connection failed, incorrect password?")
)

// Attempt is the single mutable record a chain carries.
type Attempt struct {
    SSID     string
    Password string
    // Round counts passwords supplied by the user; 0 is the silent round.
    Round int
    Step  Step
    Trace []Step
}

// Result is what Connect reports.
type Result struct {
    Attempt Attempt
    Outcome Outcome
    Err     error
}

// Prompter asks the user for a network password. It blocks until the user
// answers and returns ErrUserCancelled on dismissal.
type Prompter interface {
    Password(ctx context.Context, ssid string) (string, error)
}

type PrompterFunc func(ctx context.Context, ssid string) (string, error)

func (f PrompterFunc) Password(ctx context.Context, ssid string) (string, error) { return f(ctx, ssid) }

// Chain brings a network up with nmcli, tolerating a stale or corrupt saved
// profile, and only asks for a password when the silent steps fail.
type Chain struct {
    R     proc.Runner
    Iface string
    Log   logrus.FieldLogger
    // OnStep is called before each step runs.
    OnStep func(Attempt)
}

// Connect runs the chain for ssid to completion. It blocks; callers run it off
// the UI loop.
func (c *Chain) Connect(ctx context.Context, ssid string, p Prompter) Result {
    a := Attempt{SSID: ssid, Step: TryExisting}
    for {
        if err := ctx.Err(); err != nil { return Result{Attempt: a, Outcome: Abandoned, Err: err} }
        a.Trace = append(a.Trace, a.Step)
        if c.OnStep != nil { c.OnStep(a) }
        log := c.log().WithFields(logrus.Fields{"ssid": ssid, "step": a.Step.String(), "round": a.Round})

        switch a.Step {
        case TryExisting:
            ok, err := c.nmcli(ctx, "connection", "up", "id", ssid)
            if proc.IsCancelled(err) { return Result{Attempt: a, Outcome: Abandoned, Err: err} }
            if ok { return Result{Attempt: a, Outcome: Connected} }
            log.WithError(err).Debug("existing profile did not come up")
            a.Step = DeleteStale

        case DeleteStale:
            // a missing profile is the common case; the outcome does not matter
            _, err := c.nmcli(ctx, "connection", "delete", "id", ssid)
            if proc.IsCancelled(err) { return Result{Attempt: a, Outcome: Abandoned, Err: err} }
            a.Step = CreateProfile

        case CreateProfile:
            ok, err := c.nmcli(ctx, c.addArgs(a)...)
            if proc.IsCancelled(err) { return Result{Attempt: a, Outcome: Abandoned, Err: err} }
            if !ok { log.WithError(err).Warn("profile create failed") }
            a.Step = Activate

        case Activate:
            ok, err := c.nmcli(ctx, "connection", "up", "id", ssid)
            if proc.IsCancelled(err) { return Result{Attempt: a, Outcome: Abandoned, Err: err} }
            if ok { return Result{Attempt: a, Outcome: Connected} }
            log.WithError(err).Debug("new profile did not come up")
            a.Step = PromptCredentials

        case PromptCredentials:
            if a.Round > 0 {
                log.Warn("all connection steps failed with supplied password")
                return Result{Attempt: a, Outcome: Failed, Err: ErrBadCredentials}
            }
            if p == nil { return Result{Attempt: a, Outcome: Failed, Err: errors.New("password required")} }
            pw, err := p.Password(ctx, ssid)
            if err != nil {
                if errors.Is(err, ErrUserCancelled) { return Result{Attempt: a, Outcome: Abandoned} }
                return Result{Attempt: a, Outcome: Abandoned, Err: err}
            }
            a.Password = pw
            a.Round++
            a.Step = DeleteStale
        }
    }
}

func (c *Chain) addArgs(a Attempt) []string {
    iface := c.Iface
    if iface == "" { iface = "wlan0" }
    args := []string{"connection", "add", "type", "wifi", "con-name", a.SSID, "ifname", iface, "ssid", a.SSID}
    if a.Password != "" {
        args = append(args, "--", "wifi-sec.key-mgmt", "wpa-psk", "wifi-sec.psk", a.Password)
    }
    return args
}

// nmcli reports whether the command exited 0. err explains a failure.
func (c *Chain) nmcli(ctx context.Context, args ...string) (bool, error) {
    res, err := c.R.Run(ctx, "nmcli", args...)
    if err != nil { return false, err }
    if !res.OK() { return false, errors.Errorf("nmcli %s: exit %d: %s", args[0]+" "+args[1], res.ExitStatus, res.Stderr) }
    return true, nil
}

var discard = func() *logrus.Logger {
    l := logrus.New()
    l.SetOutput(io.Discard)
    return l
}()

func (c *Chain) log() logrus.FieldLogger {
    if c.Log == nil { return discard }
    return c.Log.WithField("component", "wifi")
}
