// Package proctest provides a scripted proc.Runner for tests.
package proctest

import (
    "context"
    "strings"
    "sync"
    "time"

    "hyprwidgets/internal/proc"
)

// Reply is the scripted answer for one command line.
type Reply struct {
    Result proc.Result
    Err    error
    Delay  time.Duration
}

// Fake answers commands by their joined command line ("nmcli connection up id x").
// Unscripted commands succeed with empty output.
type Fake struct {
    mu      sync.Mutex
    replies map[string][]Reply
    calls   []string
}

func New() *Fake { return &Fake{replies: map[string][]Reply{}} }

// On queues a reply for the command line. Multiple replies for the same line
// are consumed in order; the last one repeats.
func (f *Fake) On(cmdline string, r Reply) *Fake {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.replies[cmdline] = append(f.replies[cmdline], r)
    return f
}

// Stdout is shorthand for a successful reply.
func (f *Fake) Stdout(cmdline, out string) *Fake {
    return f.On(cmdline, Reply{Result: proc.Result{Stdout: out}})
}

// Exit is shorthand for a reply with a non-zero status.
func (f *Fake) Exit(cmdline string, status int, stderr string) *Fake {
    return f.On(cmdline, Reply{Result: proc.Result{ExitStatus: status, Stderr: stderr}})
}

func (f *Fake) Run(ctx context.Context, name string, args ...string) (proc.Result, error) {
    line := strings.Join(append([]string{name}, args...), " ")
    f.mu.Lock()
    f.calls = append(f.calls, line)
    var r Reply
    if q := f.replies[line]; len(q) > 0 {
        r = q[0]
        if len(q) > 1 { f.replies[line] = q[1:] }
    }
    f.mu.Unlock()
    if r.Delay > 0 {
        select {
        case <-time.After(r.Delay):
        case <-ctx.Done():
            return proc.Result{}, ctx.Err()
        }
    }
    if err := ctx.Err(); err != nil { return proc.Result{}, err }
    return r.Result, r.Err
}

// Calls returns the command lines seen so far.
func (f *Fake) Calls() []string {
    f.mu.Lock()
    defer f.mu.Unlock()
    return append([]string(nil), f.calls...)
}

// Count returns how often the command line ran.
func (f *Fake) Count(cmdline string) int {
    n := 0
    for _, c := range f.Calls() {
        if c == cmdline { n++ }
    }
    return n
}
