package proc

import (
    "bytes"
    "context"
    "fmt"
    "os/exec"
    "strings"

    "github.com/pkg/errors"
)

// Result is the captured output of one finished command.
type Result struct {
    Stdout     string
    Stderr     string
    ExitStatus int
}

// OK reports whether the command exited with status 0.
func (r Result) OK() bool { return r.ExitStatus == 0 }

// Lines returns the non-empty stdout lines.
func (r Result) Lines() []string {
    var out []string
    for _, ln := range strings.Split(r.Stdout, "\n") {
        ln = strings.TrimRight(ln, "\r")
        if ln != "" { out = append(out, ln) }
    }
    return out
}

// SpawnError means the command never started (missing binary, permission).
type SpawnError struct {
    Name string
    Err  error
}

func (e *SpawnError) Error() string { return fmt.Sprintf("spawn %s: %v", e.Name, e.Err) }
func (e *SpawnError) Unwrap() error { return e.Err }

// ParseError means a tool printed something we could not read. Scrapers skip
// malformed lines on their own; this is for output with nothing usable.
type ParseError struct {
    Tool  string
    Input string
}

func (e *ParseError) Error() string { return fmt.Sprintf("unexpected %s output: %q", e.Tool, e.Input) }

// Runner executes a command with an explicit argument vector. Arguments are
// never passed through a shell.
type Runner interface {
    Run(ctx context.Context, name string, args ...string) (Result, error)
}

// Exec runs commands with os/exec.
type Exec struct {
    // Env is appended to the inherited environment when set.
    Env []string
}

func (x Exec) Run(ctx context.Context, name string, args ...string) (Result, error) {
    if err := ctx.Err(); err != nil { return Result{}, err }
    cmd := exec.CommandContext(ctx, name, args...)
    if len(x.Env) > 0 {
        cmd.Env = append(cmd.Environ(), x.Env...)
    }
    var stdout, stderr bytes.Buffer
    cmd.Stdout = &stdout
    cmd.Stderr = &stderr
    if err := cmd.Start(); err != nil {
        return Result{}, &SpawnError{Name: name, Err: err}
    }
    err := cmd.Wait()
    res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
    if ctx.Err() != nil {
        return res, ctx.Err()
    }
    if err != nil {
        var ee *exec.ExitError
        if errors.As(err, &ee) {
            res.ExitStatus = ee.ExitCode()
            return res, nil
        }
        return res, errors.Wrapf(err, "wait %s", name)
    }
    return res, nil
}

// Outcome is what Async delivers.
type Outcome struct {
    Result Result
    Err    error
}

// Async starts the command on its own goroutine and returns a channel that
// receives exactly one Outcome. The channel is buffered so an abandoned
// receiver never blocks the worker.
func Async(ctx context.Context, r Runner, name string, args ...string) <-chan Outcome {
    ch := make(chan Outcome, 1)
    go func() {
        res, err := r.Run(ctx, name, args...)
        ch <- Outcome{Result: res, Err: err}
        close(ch)
    }()
    return ch
}

// Output runs the command and returns trimmed stdout, turning a non-zero exit
// into an error that carries stderr.
func Output(ctx context.Context, r Runner, name string, args ...string) (string, error) {
    res, err := r.Run(ctx, name, args...)
    if err != nil { return "", err }
    if !res.OK() {
        msg := strings.TrimSpace(res.Stderr)
        if msg == "" { msg = strings.TrimSpace(res.Stdout) }
        return "", errors.Errorf("%s %s: exit %d: %s", name, strings.Join(args, " "), res.ExitStatus, msg)
    }
    return strings.TrimSpace(res.Stdout), nil
}

// IsCancelled reports whether err is the expected outcome of a superseded or
// torn-down operation rather than a real failure.
func IsCancelled(err error) bool {
    return errors.Is(err, context.Canceled)
}

// IsSpawn reports whether err is a SpawnError.
func IsSpawn(err error) bool {
    var se *SpawnError
    return errors.As(err, &se)
}
