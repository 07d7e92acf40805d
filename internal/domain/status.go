package domain

// Token status values. A token only ever moves forward through these.
const (
	StatusWaiting = "WAITING"
	StatusServing = "SERVING"
	StatusServed  = "SERVED"
)

// transitionMap lists the allowed next statuses for each current status.
// SERVED is terminal.
var transitionMap = map[string][]string{
	StatusWaiting: {StatusServing},
	StatusServing: {StatusServed},
	StatusServed:  {},
}

// ValidTransition reports whether a token may move from one status to another.
// Unknown statuses never transition.
func ValidTransition(from, to string) bool {
	allowed, ok := transitionMap[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// KnownStatus reports whether s is one of the defined token statuses.
func KnownStatus(s string) bool {
	_, ok := transitionMap[s]
	return ok
}
