package lyrics

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestParseLRC(t *testing.T) {
    text := "[ar:Someone]\n[ti:Song]\n[00:01.50]first\r\n[00:03.250] second \n[00:04.00]\n[01:02:07]third\nno tag here\n"
    lines := ParseLRC(text)
    require.Len(t, lines, 3)
    assert.Equal(t, Line{Time: ms(1500), Text: "first"}, lines[0])
    assert.Equal(t, Line{Time: ms(3250), Text: "second"}, lines[1])
    assert.Equal(t, Line{Time: time.Minute + 2*time.Second + ms(70), Text: "third"}, lines[2])
}

func TestParseLRCRepeatedTagsAreSorted(t *testing.T) {
    lines := ParseLRC("[00:10.00][00:02.00]chorus\n[00:05.00]verse")
    require.Len(t, lines, 3)
    assert.Equal(t, []time.Duration{ms(2000), ms(5000), ms(10000)},
        []time.Duration{lines[0].Time, lines[1].Time, lines[2].Time})
    assert.Equal(t, "chorus", lines[0].Text)
    assert.Equal(t, "verse", lines[1].Text)
}

func TestParseLRCEmpty(t *testing.T) {
    assert.Empty(t, ParseLRC(""))
    assert.Empty(t, ParseLRC("plain lyrics only\nno timing"))
}

func TestSignature(t *testing.T) {
    assert.Equal(t, "Daft Punk - One More Time", Track{Artist: "Daft Punk", Title: "One More Time"}.Signature())
    assert.Equal(t, "", Track{Title: "Untitled"}.Signature())
}
