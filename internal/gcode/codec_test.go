package gcode

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/polargraph/internal/path"
)

func countPrefix(cmds []string, prefix string) int {
	var n int
	for _, c := range cmds {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func TestEncodeTwoColorDocument(t *testing.T) {
	opts := DefaultOptions()

	doc := path.NewDocument()
	doc.JumpTo(0, 0)
	doc.MoveTo(10, 0)
	doc.MoveTo(10, 10)
	doc.SetStroke("#ff0000", 1.0)
	doc.JumpTo(20, 20)
	doc.MoveTo(30, 20)
	doc.MoveTo(30, 30)

	cmds := Encode(doc, opts)

	// One pen-up travel to the first point of each line, one pen-down per
	// line, in layer order.
	assert.Equal(t, 2, countPrefix(cmds, "G0 X"))
	assert.Equal(t, 2, countPrefix(cmds, opts.PenDown))

	firstTravel := opts.TravelCommand(0, 0)
	secondTravel := opts.TravelCommand(20, 20)
	var travels []string
	for _, c := range cmds {
		if strings.HasPrefix(c, "G0 X") {
			travels = append(travels, c)
		}
	}
	assert.Equal(t, []string{firstTravel, secondTravel}, travels)
}

func TestEncodeDeterministic(t *testing.T) {
	doc := path.NewDocument()
	doc.JumpTo(1.0/3.0, 2.0/3.0)
	doc.MoveTo(0.1+0.2, 0)

	a := Encode(doc, DefaultOptions())
	b := Encode(doc, DefaultOptions())
	assert.Equal(t, a, b)
	assert.Contains(t, a, "G0 X0.333 Y0.667 F1000")
	assert.Contains(t, a, "G1 X0.300 Y0.000 F500")
}

func TestEncodeSkipsDegenerateLines(t *testing.T) {
	doc := path.NewDocument()
	doc.JumpTo(5, 5) // single point, never extended
	doc.JumpTo(0, 0)
	doc.MoveTo(1, 0)

	cmds := Encode(doc, DefaultOptions())
	assert.Equal(t, 1, countPrefix(cmds, "G0 X"))
}

func TestEncodeEmptyDocument(t *testing.T) {
	cmds := Encode(path.NewDocument(), DefaultOptions())
	assert.Zero(t, countPrefix(cmds, "G0 X"))
	assert.Zero(t, countPrefix(cmds, "G1 X"))
}

func TestRoundTrip(t *testing.T) {
	doc := path.NewDocument()
	doc.JumpTo(0, 0)
	doc.MoveTo(10, 0)
	doc.MoveTo(10, 10)
	doc.SetStroke("#0000ff", 0.5)
	doc.JumpTo(-5.25, 3.125)
	doc.MoveTo(-5.25, 40)
	doc.Rect(0, 0, 20, 20)

	decoded := Decode(Encode(doc, DefaultOptions()))

	var want, got [][]path.Point
	for _, line := range doc.Lines() {
		want = append(want, line.Points)
	}
	for _, line := range decoded.Lines() {
		got = append(got, line.Points)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("point sequences differ (-want +got):\n%s", diff)
	}
	assert.True(t, decoded.IsPenUp())
}

func TestDecodeSkipsUnrecognizedAndMalformed(t *testing.T) {
	decoded := Decode([]string{
		"; a comment",
		"",
		"M280 P0 S90 T250",
		"G28 X Y",
		"G0 Xbogus Y5 F1000", // malformed X word is dropped, Y still applies
		"G1 X10 Y5 F500",
		"garbage line",
	})

	lines := decoded.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, []path.Point{{X: 0, Y: 5}, {X: 10, Y: 5}}, lines[0].Points)
}

func TestDecodeDrawWithoutTravelOpensLine(t *testing.T) {
	decoded := Decode([]string{
		"G1 X5 Y0 F500",
		"G1 X5 Y5 F500",
	})

	lines := decoded.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, []path.Point{{}, {X: 5}, {X: 5, Y: 5}}, lines[0].Points)
}

func TestParseMove(t *testing.T) {
	cases := []struct {
		name string
		line string
		ok   bool
		draw bool
		x    bool
		z    bool
	}{
		{name: "travel", line: "G0 X1.5 Y2 F1000", ok: true, x: true},
		{name: "draw", line: "G1 X0 Y0 F500", ok: true, draw: true, x: true},
		{name: "long form", line: "G01 X3", ok: true, draw: true, x: true},
		{name: "pen move", line: "G0 Z90 F1000", ok: true, z: true},
		{name: "lowercase", line: "g1 x2 y3", ok: true, draw: true, x: true},
		{name: "comment", line: "; G1 X4", ok: false},
		{name: "blank", line: "   ", ok: false},
		{name: "other command", line: "M17", ok: false},
		{name: "homing", line: "G28 X", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, ok := ParseMove(tc.line)
			require.Equal(t, tc.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tc.draw, m.Draw)
			assert.Equal(t, tc.x, m.X != nil)
			assert.Equal(t, tc.z, m.Z != nil)
		})
	}
}

func TestIsComment(t *testing.T) {
	assert.True(t, IsComment(""))
	assert.True(t, IsComment("   "))
	assert.True(t, IsComment("; pen change"))
	assert.True(t, IsComment("  ; indented"))
	assert.False(t, IsComment("G0 X0 Y0"))
}
