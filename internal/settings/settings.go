// Package settings holds the plotter configuration consumed by the codec and
// the streaming controller: feed rates, pen servo angles, work-area bounds,
// and the homing and end-of-job command sequences. Values load from a JSON
// file over compiled-in defaults, so a partial file is safe; persistence of
// edits is handled elsewhere.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/polargraph/internal/gcode"
)

// maxFileSize bounds the settings file read to catch a mis-pointed path.
const maxFileSize = 1 << 20

// Settings is the full plotter configuration. JSON field names follow the
// firmware documentation so a config file can be shared with other tools.
type Settings struct {
	// Machine dimensions (mm).
	MachineWidth  float64 `json:"machine_width"`
	MachineHeight float64 `json:"machine_height"`

	// Work area limits (mm), paper centered on the machine origin.
	LimitLeft   float64 `json:"limit_left"`
	LimitRight  float64 `json:"limit_right"`
	LimitTop    float64 `json:"limit_top"`
	LimitBottom float64 `json:"limit_bottom"`

	// Pen servo angles (degrees) and actuation times (ms).
	PenAngleUp       int `json:"pen_angle_up"`
	PenAngleDown     int `json:"pen_angle_down"`
	PenAngleUpTime   int `json:"pen_angle_up_time"`
	PenAngleDownTime int `json:"pen_angle_down_time"`

	// Feed rates (mm/min).
	FeedRateTravel int `json:"feed_rate_travel"`
	FeedRateDraw   int `json:"feed_rate_draw"`

	// Home position (mm).
	HomeX float64 `json:"home_x"`
	HomeY float64 `json:"home_y"`

	// Extra G-code inserted after homing and on stop.
	StartGcode []string `json:"start_gcode"`
	EndGcode   []string `json:"end_gcode"`

	// Serial link.
	BaudRate int `json:"baud_rate"`

	// HomingDelayMS scales the fixed waits inside the homing sequence. The
	// firmware does not acknowledge homing commands individually, so pacing
	// is wall-clock based; tests set this to zero.
	HomingDelayMS int `json:"homing_delay_ms"`
}

// Defaults returns the configuration for the reference 48x60 inch polargraph
// with an A0 work area.
func Defaults() Settings {
	return Settings{
		MachineWidth:  1219.2,
		MachineHeight: 1524.0,

		LimitLeft:   -420.5,
		LimitRight:  420.5,
		LimitTop:    594.5,
		LimitBottom: -594.5,

		PenAngleUp:       90,
		PenAngleDown:     40,
		PenAngleUpTime:   250,
		PenAngleDownTime: 150,

		FeedRateTravel: 1000,
		FeedRateDraw:   500,

		EndGcode: []string{
			"M280 P0 S90 T250",
			"G0 X0 Y0 F3000",
		},

		BaudRate:      57600,
		HomingDelayMS: 100,
	}
}

// Load reads a JSON settings file over the defaults. Fields omitted from the
// file keep their default values. A missing or malformed file is a
// recoverable error; callers typically fall back to Defaults.
func Load(path string) (Settings, error) {
	s := Defaults()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return s, fmt.Errorf("settings file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return s, fmt.Errorf("stat settings file: %w", err)
	}
	if info.Size() > maxFileSize {
		return s, fmt.Errorf("settings file %s too large (%d bytes)", cleanPath, info.Size())
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return s, fmt.Errorf("read settings file: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings file %s: %w", cleanPath, err)
	}
	return s, nil
}

// WorkArea is the drawable region in machine coordinates.
type WorkArea struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// Width returns the horizontal extent of the work area.
func (w WorkArea) Width() float64 { return w.Right - w.Left }

// Height returns the vertical extent of the work area.
func (w WorkArea) Height() float64 { return w.Top - w.Bottom }

// WorkArea returns the configured drawable bounds.
func (s Settings) WorkArea() WorkArea {
	return WorkArea{
		Left:   s.LimitLeft,
		Right:  s.LimitRight,
		Top:    s.LimitTop,
		Bottom: s.LimitBottom,
	}
}

// PenUpCommand returns the G-code that raises the pen. The firmware maps the
// Z axis to the pen servo angle.
func (s Settings) PenUpCommand() string {
	return fmt.Sprintf("G0 Z%d F1000", s.PenAngleUp)
}

// PenDownCommand returns the G-code that lowers the pen.
func (s Settings) PenDownCommand() string {
	return fmt.Sprintf("G0 Z%d F1000", s.PenAngleDown)
}

// CodecOptions returns the encoder parameters derived from these settings.
func (s Settings) CodecOptions() gcode.Options {
	return gcode.Options{
		TravelFeed: s.FeedRateTravel,
		DrawFeed:   s.FeedRateDraw,
		PenUp:      s.PenUpCommand(),
		PenDown:    s.PenDownCommand(),
	}
}

// TimedCommand is a command line paired with the wall-clock settle time the
// firmware needs after it.
type TimedCommand struct {
	Line string
	Wait time.Duration
}

func (s Settings) delay(units int) time.Duration {
	return time.Duration(units*s.HomingDelayMS) * time.Millisecond
}

// SettleDelay returns the short wall-clock pause used where the firmware
// needs a moment to act on a command, e.g. between emergency-stop writes.
func (s Settings) SettleDelay() time.Duration {
	return s.delay(1)
}

// HomingSequence returns the initialization commands sent before every plot:
// motor enable, smoothing parameters tuned for polargraph motion, per-axis
// homing, absolute mode, a slow move to center, then any custom start G-code.
// Waits are multiples of HomingDelayMS, longest around the homing moves.
func (s Settings) HomingSequence() []TimedCommand {
	seq := []TimedCommand{
		{Line: "M17", Wait: s.delay(5)},
		{Line: "M201 X50 Y50", Wait: s.delay(1)},
		{Line: "M204 P50 T100", Wait: s.delay(1)},
		{Line: "M205 X5 Y5", Wait: s.delay(1)},
		{Line: "G28 X", Wait: s.delay(10)},
		{Line: "G28 Y", Wait: s.delay(10)},
		{Line: "G90"},
		{Line: fmt.Sprintf("G0 X%g Y%g F300", s.HomeX, s.HomeY), Wait: s.delay(20)},
	}
	for _, line := range s.StartGcode {
		seq = append(seq, TimedCommand{Line: line, Wait: s.delay(1)})
	}
	return seq
}

// EndSequence returns the end-of-job commands sent on stop.
func (s Settings) EndSequence() []string {
	return append([]string(nil), s.EndGcode...)
}
