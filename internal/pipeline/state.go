package pipeline

// State is a stage of a build invocation
type State int

const (
	Resolving State = iota
	CheckingCache
	Compiling
	UpdatingCache
	Executing
	Done
	Aborted
)

var stateNames = map[State]string{
	Resolving:     "resolving",
	CheckingCache: "checking-cache",
	Compiling:     "compiling",
	UpdatingCache: "updating-cache",
	Executing:     "executing",
	Done:          "done",
	Aborted:       "aborted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}

	return "unknown"
}
