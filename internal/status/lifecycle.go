package status

import "fmt"

var transitions = map[UI]map[UI]struct{}{
	UIPending: {
		UIAssigned:  {},
		UICancelled: {},
	},
	UIAssigned: {
		UIOfferSent: {},
		UIAssigned:  {},
		UICancelled: {},
	},
	UIOfferSent: {
		UIOfferAccepted: {},
		UIOfferRejected: {},
		UICancelled:     {},
	},
	UIOfferAccepted: {
		UIScheduled: {},
		UICancelled: {},
	},
	// a rejected line may be reassigned to another company
	UIOfferRejected: {
		UIAssigned: {},
	},
	UIScheduled: {
		UIInProgress: {},
		UICompleted:  {},
		UICancelled:  {},
	},
	UIInProgress: {
		UIPartiallyDone: {},
		UICompleted:     {},
		UICancelled:     {},
	},
	UIPartiallyDone: {
		UICompleted: {},
		UICancelled: {},
	},
	UICompleted: {},
	UICancelled: {},
}

// CanTransition reports whether an order line may move from one UI status to
// another.
func CanTransition(from, to UI) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// IsTerminal reports whether no further transition is possible.
func IsTerminal(s UI) bool {
	allowed, ok := transitions[s]
	return ok && len(allowed) == 0
}

// TransitionError is returned when a lifecycle step is not allowed.
type TransitionError struct {
	From UI
	To   UI
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move from %s to %s", e.From, e.To)
}

// Transition validates the step and returns the new status.
func Transition(from, to UI) (UI, error) {
	if !CanTransition(from, to) {
		return from, &TransitionError{From: from, To: to}
	}
	return to, nil
}

// Aggregate derives an order's canonical status from the UI statuses of its
// service lines.
func Aggregate(lines []UI) Canonical {
	if len(lines) == 0 {
		return Pending
	}

	var completed, cancelled, progressed int
	for _, l := range lines {
		switch MapToBackend(string(l)) {
		case Completed:
			completed++
		case Cancelled:
			cancelled++
		case InProgress, PartiallyDone:
			progressed++
		}
	}

	switch {
	case cancelled == len(lines):
		return Cancelled
	case completed+cancelled == len(lines):
		return Completed
	case completed > 0:
		return PartiallyDone
	case progressed > 0:
		return InProgress
	default:
		return Pending
	}
}
