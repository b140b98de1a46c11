package lyrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLRC = `[ar:Test Artist]
[ti:Test Title]

[00:12.34]First line
[00:15.67]Second line
[00:20.00]Third line`

func TestIsSynced(t *testing.T) {
	assert.True(t, IsSynced(sampleLRC))
	assert.True(t, IsSynced("[01:02]short form"))
	assert.False(t, IsSynced("just some\nplain lyrics"))
	assert.False(t, IsSynced(""))
}

func TestParseSynced(t *testing.T) {
	lines := ParseSynced(sampleLRC)

	require.Len(t, lines, 3)
	assert.Equal(t, "First line", lines[0].Text)
	assert.Equal(t, 12340*time.Millisecond, lines[0].At)
	assert.Equal(t, "Second line", lines[1].Text)
	assert.Equal(t, "Third line", lines[2].Text)
	assert.Equal(t, 20*time.Second, lines[2].At)
}

func TestParseSynced_RepeatedTimestamps(t *testing.T) {
	lines := ParseSynced("[00:30.00][00:10.00]Chorus")

	require.Len(t, lines, 2)
	assert.Equal(t, 10*time.Second, lines[0].At)
	assert.Equal(t, 30*time.Second, lines[1].At)
	assert.Equal(t, "Chorus", lines[0].Text)
	assert.Equal(t, "Chorus", lines[1].Text)
}

func TestParseSynced_SortsOutOfOrderLines(t *testing.T) {
	lines := ParseSynced("[00:20.00]Later\n[00:05.00]Earlier")

	require.Len(t, lines, 2)
	assert.Equal(t, "Earlier", lines[0].Text)
	assert.Equal(t, "Later", lines[1].Text)
}

func TestParseSynced_MillisecondVariants(t *testing.T) {
	lines := ParseSynced("[00:01.50]centi\n[00:02.500]milli\n[00:03]none")

	require.Len(t, lines, 3)
	assert.Equal(t, 1500*time.Millisecond, lines[0].At)
	assert.Equal(t, 2500*time.Millisecond, lines[1].At)
	assert.Equal(t, 3*time.Second, lines[2].At)
}

func TestParseSynced_PlainInputYieldsNothing(t *testing.T) {
	assert.Empty(t, ParseSynced("no timestamps\nanywhere here"))
}

func TestPlain_StripsTimestampsAndMetadata(t *testing.T) {
	got := Plain(sampleLRC)

	assert.Equal(t, "First line\nSecond line\nThird line", got)
}

func TestPlain_LeavesUnsyncedTextAlone(t *testing.T) {
	assert.Equal(t, "hello\nworld", Plain("hello\nworld\n"))
}
