package writer

// State is how far a record got through the writer.
type State int

const (
	Extracted State = iota
	Resolving
	Transforming
	Writing
	Committed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Extracted:
		return "extracted"
	case Resolving:
		return "resolving"
	case Transforming:
		return "transforming"
	case Writing:
		return "writing"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Step lets a handler report the stage it is in, so a failure can be
// attributed to it.
type Step struct {
	state State
}

func (s *Step) Enter(state State) {
	s.state = state
}

func (s *Step) State() State {
	return s.state
}
