package audio

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "hyprwidgets/internal/proc"
    "hyprwidgets/internal/proc/proctest"
)

const status = `PipeWire 'pipewire-0' [1.2.7, user@host, cookie:1234]
 └─ Clients:
        33. WirePlumber                         [1.2.7, user@host, pid:1100]

Audio
 ├─ Devices:
 │      42. Built-in Audio                      [alsa]
 │
 ├─ Sinks:
 │      48. HDMI / DisplayPort 1 Output         [vol: 1.00]
 │  *   51. Speakers                            [vol: 0.40]
 │      60. Easy Effects Sink                   [vol: 1.00]
 │      63. USB Headset                         [vol: 0.75 MUTED]
 │
 ├─ Sink endpoints:
 │
 ├─ Sources:
 │  *   52. Built-in Microphone                 [vol: 0.60]

Video
 ├─ Sinks:
 │      90. Not Audio
`

func TestParseStatusOneDefaultAmongThree(t *testing.T) {
    sinks := ParseStatus(status)
    require.Len(t, sinks, 3)
    assert.Equal(t, []Sink{
        {ID: 48, Name: "HDMI / DisplayPort 1 Output", Volume: 1.0},
        {ID: 51, Name: "Speakers", IsDefault: true, Volume: 0.4},
        {ID: 63, Name: "USB Headset", Volume: 0.75, Muted: true},
    }, sinks)

    defaults := 0
    for _, s := range sinks {
        if s.IsDefault { defaults++ }
    }
    assert.Equal(t, 1, defaults)
}

func TestParseStatusNoSinks(t *testing.T) {
    assert.Empty(t, ParseStatus("Audio\n ├─ Devices:\n"))
    assert.Empty(t, ParseStatus(""))
}

func TestParseVolume(t *testing.T) {
    lv, err := ParseVolume("Volume: 0.40\n")
    require.NoError(t, err)
    assert.Equal(t, Level{Percent: 40}, lv)

    lv, err = ParseVolume("Volume: 0.57 [MUTED]")
    require.NoError(t, err)
    assert.Equal(t, Level{Percent: 57, Muted: true}, lv)

    _, err = ParseVolume("Object not found")
    var pe *proc.ParseError
    assert.ErrorAs(t, err, &pe)
}

func TestMixerCommands(t *testing.T) {
    fake := proctest.New()
    m := Mixer{R: fake}
    ctx := context.Background()
    require.NoError(t, m.SetVolume(ctx, 180))
    require.NoError(t, m.SetVolume(ctx, -3))
    require.NoError(t, m.SetDefault(ctx, 51))
    require.NoError(t, m.ToggleMute(ctx))
    assert.Equal(t, []string{
        "wpctl set-volume @DEFAULT_SINK@ 150%",
        "wpctl set-volume @DEFAULT_SINK@ 0%",
        "wpctl set-default 51",
        "wpctl set-mute @DEFAULT_SINK@ toggle",
    }, fake.Calls())
}

func TestMixerMissingBinary(t *testing.T) {
    fake := proctest.New().On("wpctl status", proctest.Reply{Err: &proc.SpawnError{Name: "wpctl", Err: assert.AnError}})
    _, err := Mixer{R: fake}.Sinks(context.Background())
    assert.True(t, proc.IsSpawn(err))
}
