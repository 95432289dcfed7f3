package handle

// Kind distinguishes actions from events.
type Kind int

const (
	KindAction Kind = iota
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of a handle.
type State int32

const (
	StateCreated State = iota
	StateRegistered
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRegistered:
		return "registered"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
