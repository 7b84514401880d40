package run

import (
    "testing"

    "github.com/pkg/errors"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

type started struct {
    name string
    args []string
}

func recorder(into *[]started) Starter {
    return func(name string, args ...string) error {
        *into = append(*into, started{name, args})
        return nil
    }
}

func TestSplit(t *testing.T) {
    argv, err := Split(`code --new-window "My Project" %F`)
    require.NoError(t, err)
    assert.Equal(t, []string{"code", "--new-window", "My Project"}, argv)

    argv, err = Split("sh -c 'rm -rf /; echo $HOME'")
    require.NoError(t, err)
    assert.Equal(t, []string{"sh", "-c", "rm -rf /; echo $HOME"}, argv, "shell metacharacters stay inside one argument")

    _, err = Split("   ")
    assert.Error(t, err)
}

func TestLauncherCommand(t *testing.T) {
    var got []started
    l := Launcher{Start: recorder(&got)}
    require.NoError(t, l.Command("firefox --private-window"))
    assert.Equal(t, []started{{"firefox", []string{"--private-window"}}}, got)
}

func TestLauncherInTerminal(t *testing.T) {
    defer func(old func(string) (string, error)) { lookPath = old }(lookPath)
    lookPath = func(name string) (string, error) {
        if name == "kitty" { return "/usr/bin/kitty", nil }
        return "", errors.New("not found")
    }

    var got []started
    l := Launcher{Terminal: "alacritty", Start: recorder(&got)}
    require.NoError(t, l.InTerminal("htop -d 10"))
    assert.Equal(t, []started{{"kitty", []string{"htop", "-d", "10"}}}, got)
}

func TestFindTerminal(t *testing.T) {
    defer func(old func(string) (string, error)) { lookPath = old }(lookPath)
    lookPath = func(name string) (string, error) { return "", errors.New("not found") }
    _, err := FindTerminal("alacritty")
    require.Error(t, err)
    assert.Contains(t, err.Error(), "alacritty, kitty")

    lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
    term, err := FindTerminal("foot")
    require.NoError(t, err)
    assert.Equal(t, "foot", term)
    assert.Equal(t, []string{"-e"}, terminalExecArgs("alacritty"))
}
