package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s := Defaults()
	assert.Equal(t, 57600, s.BaudRate)
	assert.Equal(t, 1000, s.FeedRateTravel)
	assert.Equal(t, 500, s.FeedRateDraw)
	assert.Equal(t, "G0 Z90 F1000", s.PenUpCommand())
	assert.Equal(t, "G0 Z40 F1000", s.PenDownCommand())
	assert.Equal(t, []string{"M280 P0 S90 T250", "G0 X0 Y0 F3000"}, s.EndSequence())

	w := s.WorkArea()
	assert.InDelta(t, 841.0, w.Width(), 1e-9)
	assert.InDelta(t, 1189.0, w.Height(), 1e-9)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"baud_rate": 115200, "pen_angle_down": 35}`), 0o644))

	s, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, 115200, s.BaudRate)
	assert.Equal(t, "G0 Z35 F1000", s.PenDownCommand())
	// Omitted fields keep defaults.
	assert.Equal(t, 1000, s.FeedRateTravel)
	assert.InDelta(t, -420.5, s.LimitLeft, 1e-9)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("settings.yaml")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestLoadErrorStillReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestHomingSequence(t *testing.T) {
	s := Defaults()
	s.StartGcode = []string{"M280 P0 S90 T250"}
	seq := s.HomingSequence()

	require.NotEmpty(t, seq)
	assert.Equal(t, "M17", seq[0].Line)
	assert.Equal(t, 500*time.Millisecond, seq[0].Wait)
	assert.Equal(t, "M280 P0 S90 T250", seq[len(seq)-1].Line)

	var sawHomeX, sawHomeY, sawAbsolute bool
	for _, c := range seq {
		switch c.Line {
		case "G28 X":
			sawHomeX = true
		case "G28 Y":
			sawHomeY = true
		case "G90":
			sawAbsolute = true
		}
	}
	assert.True(t, sawHomeX)
	assert.True(t, sawHomeY)
	assert.True(t, sawAbsolute)
}

func TestHomingSequenceZeroDelay(t *testing.T) {
	s := Defaults()
	s.HomingDelayMS = 0
	for _, c := range s.HomingSequence() {
		assert.Zero(t, c.Wait)
	}
}

func TestCodecOptions(t *testing.T) {
	opts := Defaults().CodecOptions()
	assert.Equal(t, 1000, opts.TravelFeed)
	assert.Equal(t, 500, opts.DrawFeed)
	assert.Equal(t, "G0 Z90 F1000", opts.PenUp)
	assert.Equal(t, "G0 Z40 F1000", opts.PenDown)
}
