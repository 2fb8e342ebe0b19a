package status

import "strings"

// Canonical is one of the order states the backend persists.
type Canonical string

const (
	Pending       Canonical = "pending"
	InProgress    Canonical = "in_progress"
	PartiallyDone Canonical = "partially_done"
	Completed     Canonical = "completed"
	Cancelled     Canonical = "cancelled"
)

// UI refines a canonical status for display and filtering.
type UI string

const (
	UIPending       UI = "pending"
	UIAssigned      UI = "assigned"
	UIOfferSent     UI = "offer_sent"
	UIOfferAccepted UI = "offer_accepted"
	UIOfferRejected UI = "offer_rejected"
	UIScheduled     UI = "scheduled"
	UIInProgress    UI = "in_progress"
	UIPartiallyDone UI = "partially_done"
	UICompleted     UI = "completed"
	UICancelled     UI = "cancelled"
)

var canonicalByUI = map[UI]Canonical{
	UIPending:       Pending,
	UIAssigned:      InProgress,
	UIOfferSent:     InProgress,
	UIOfferAccepted: InProgress,
	UIScheduled:     InProgress,
	UIInProgress:    InProgress,
	UIOfferRejected: Cancelled,
	UIPartiallyDone: PartiallyDone,
	UICompleted:     Completed,
	UICancelled:     Cancelled,
}

// AllCanonical lists the canonical statuses in lifecycle order.
func AllCanonical() []Canonical {
	return []Canonical{Pending, InProgress, PartiallyDone, Completed, Cancelled}
}

// AllUI lists the UI statuses in lifecycle order.
func AllUI() []UI {
	return []UI{
		UIPending, UIAssigned, UIOfferSent, UIOfferAccepted, UIOfferRejected,
		UIScheduled, UIInProgress, UIPartiallyDone, UICompleted, UICancelled,
	}
}

// Result is the outcome of resolving a UI status. Known is false when the
// input was not part of the UI vocabulary and Status fell back to Pending.
type Result struct {
	Status Canonical
	Known  bool
}

// Resolve maps a UI status to its canonical status and reports whether the
// input was recognized.
func Resolve(ui string) Result {
	if c, ok := canonicalByUI[UI(ui)]; ok {
		return Result{Status: c, Known: true}
	}
	return Result{Status: Pending, Known: false}
}

// MapToBackend reduces any UI status to a canonical one. Unknown input
// degrades to Pending; use Resolve to tell the two apart.
func MapToBackend(ui string) Canonical {
	return Resolve(ui).Status
}

// IsCanonical reports whether s is one of the five persisted statuses.
func IsCanonical(s string) bool {
	switch Canonical(s) {
	case Pending, InProgress, PartiallyDone, Completed, Cancelled:
		return true
	}
	return false
}

// IsKnownUI reports whether s belongs to the UI vocabulary.
func IsKnownUI(s string) bool {
	_, ok := canonicalByUI[UI(s)]
	return ok
}

// LabelKey returns the translation key used for a status label.
func LabelKey(s string) string {
	return "status." + s
}

// TranslatedLabel returns the display label for a status. offer_sent is an
// internal state and is shown as pending. When the translator has no entry
// the raw status string is returned.
func TranslatedLabel(s string, translate func(key string) string) string {
	resolved := s
	if UI(s) == UIOfferSent {
		resolved = string(UIPending)
	}
	if translate == nil {
		return resolved
	}
	key := LabelKey(resolved)
	label := strings.TrimSpace(translate(key))
	if label == "" || label == key {
		return resolved
	}
	return label
}

var colors = map[UI]string{
	UIPending:       "yellow",
	UIAssigned:      "blue",
	UIOfferSent:     "yellow",
	UIOfferAccepted: "blue",
	UIScheduled:     "blue",
	UIInProgress:    "blue",
	UIPartiallyDone: "orange",
	UICompleted:     "green",
	UIOfferRejected: "red",
	UICancelled:     "red",
}

// Color returns the badge color for a status, gray for anything unknown.
func Color(s string) string {
	if c, ok := colors[UI(s)]; ok {
		return c
	}
	return "gray"
}
