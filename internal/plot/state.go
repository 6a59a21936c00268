package plot

// State is the streaming controller's lifecycle state. Transitions:
// Idle → Homing → Plotting ⇄ Paused → Completed, with Stopped reachable from
// Homing/Plotting/Paused and EmergencyStopped reachable from everywhere.
type State int

const (
	Idle State = iota
	Homing
	Plotting
	Paused
	Completed
	Stopped
	EmergencyStopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Homing:
		return "homing"
	case Plotting:
		return "plotting"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	case Stopped:
		return "stopped"
	case EmergencyStopped:
		return "emergency_stopped"
	default:
		return "unknown"
	}
}

// startable reports whether a new plot may begin from this state. An
// emergency stop latches until Reset is called.
func (s State) startable() bool {
	return s == Idle || s == Completed || s == Stopped
}
