package checkout

// State is a step of the payment hand-off.
type State int

const (
	NoContext State = iota
	ContextLoaded
	MethodSelected
	AwaitingProviderRedirect
	Succeeded
	Failed
)

var stateNames = map[State]string{
	NoContext:                "NO_CONTEXT",
	ContextLoaded:            "CONTEXT_LOADED",
	MethodSelected:           "METHOD_SELECTED",
	AwaitingProviderRedirect: "AWAITING_PROVIDER_REDIRECT",
	Succeeded:                "SUCCEEDED",
	Failed:                   "FAILED",
}

// String representation (for logging)
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s State) IsTerminal() bool {
	return s == Succeeded || s == Failed
}

var transitions = map[State][]State{
	NoContext:                {ContextLoaded},
	ContextLoaded:            {ContextLoaded, MethodSelected, NoContext},
	MethodSelected:           {ContextLoaded, MethodSelected, AwaitingProviderRedirect, Succeeded, NoContext},
	AwaitingProviderRedirect: {Succeeded, Failed},
}

// CanTransitionTo reports whether next may follow s. Terminal states have no successors.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
