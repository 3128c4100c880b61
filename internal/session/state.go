package session

// State is the lifecycle position of a Session.
//
//	Idle -> Awaiting                      (pattern empty or invalid, no walk)
//	Idle -> Searching -> Completed        (walk exhausted)
//	Searching -> Draining -> Completed    (commit pulls everything)
//	any -> Superseded                     (a newer pattern arrived)
type State int

const (
	Idle State = iota
	Awaiting
	Searching
	Superseded
	Draining
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Awaiting:
		return "awaiting"
	case Searching:
		return "searching"
	case Superseded:
		return "superseded"
	case Draining:
		return "draining"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no more results can be recorded in this state.
func (s State) Terminal() bool {
	return s == Superseded || s == Completed || s == Awaiting
}
