package frames

// State is the step of the frame lifecycle the loop is in.
type State int

const (
	StateIdle State = iota
	StateAcquiring
	StateWaiting
	StateSubmitting
	StatePresenting
	StateRebuilding
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateWaiting:
		return "waiting"
	case StateSubmitting:
		return "submitting"
	case StatePresenting:
		return "presenting"
	case StateRebuilding:
		return "rebuilding"
	default:
		return "unknown"
	}
}
