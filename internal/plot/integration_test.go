package plot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/polargraph/internal/serialmux"
)

// Exercises the full loop: controller → mux → mock port → inbound acks →
// dispatch, the way main wires it.
func TestControllerOverSerialMux(t *testing.T) {
	port := serialmux.NewMockPort()
	mux := serialmux.New(serialmux.MockOpener(port))
	require.NoError(t, mux.Connect("/dev/ttyUSB0", 57600))

	c := New(mux, testSettings())
	id, inbound := mux.Subscribe()
	defer mux.Unsubscribe(id)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx, inbound) }()

	require.NoError(t, c.StartLines(commandStream(3)))
	waitForState(t, c, Plotting)

	// Telemetry lines pass through without affecting flow control.
	port.PushLine("X410.0 Y210.0")
	port.PushLine("ok")
	port.PushLine("OK STEPPERS ENGAGED")
	port.PushLine("ok")

	waitForState(t, c, Completed)
	assert.Equal(t, 100, c.Status().Percent)

	written := port.WrittenLines()
	assert.Contains(t, written, "M17")
	assert.Contains(t, written, "G1 X2 Y2 F500")
}
