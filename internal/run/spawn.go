// Package run launches desktop applications detached from the widget
// process, either directly or inside a terminal.
package run

import (
    "os/exec"
    "syscall"

    "github.com/google/shlex"
    "github.com/pkg/errors"
)

// Detached starts name in its own session so it outlives the widgets and
// never receives our terminal's signals. The child is reaped in the
// background.
func Detached(name string, args ...string) error {
    cmd := exec.Command(name, args...)
    cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
    cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil
    if err := cmd.Start(); err != nil { return errors.Wrapf(err, "start %s", name) }
    go func() { _ = cmd.Wait() }()
    return nil
}

// Starter is the process-start primitive; tests swap it out.
type Starter func(name string, args ...string) error

// Launcher turns exec strings into detached processes. Exec strings are
// tokenised with shell quoting rules but never run through a shell.
type Launcher struct {
    Terminal string
    Start    Starter
}

func (l Launcher) start() Starter {
    if l.Start != nil { return l.Start }
    return Detached
}

// Command launches an exec string such as `firefox --new-window`.
func (l Launcher) Command(cmdline string) error {
    argv, err := Split(cmdline)
    if err != nil { return err }
    return l.start()(argv[0], argv[1:]...)
}

// InTerminal runs an exec string inside a terminal window.
func (l Launcher) InTerminal(cmdline string) error {
    argv, err := Split(cmdline)
    if err != nil { return err }
    term, err := FindTerminal(l.Terminal)
    if err != nil { return err }
    return l.start()(term, append(terminalExecArgs(term), argv...)...)
}

// Split tokenises an exec string. Desktop-entry field codes (%u, %F, ...)
// are dropped.
func Split(cmdline string) ([]string, error) {
    words, err := shlex.Split(cmdline)
    if err != nil { return nil, errors.Wrapf(err, "parse %q", cmdline) }
    argv := words[:0]
    for _, w := range words {
        if len(w) == 2 && w[0] == '%' { continue }
        argv = append(argv, w)
    }
    if len(argv) == 0 { return nil, errors.New("empty command") }
    return argv, nil
}

func terminalExecArgs(term string) []string {
    switch term {
    case "kitty", "foot", "ghostty":
        return nil
    case "wezterm":
        return []string{"start", "--"}
    case "gnome-terminal":
        return []string{"--"}
    }
    return []string{"-e"}
}
