package domain

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is returned when a guard receives an event its current state does not accept.
var ErrIllegalTransition = errors.New("illegal guard transition")

// Cleanliness tracks whether an artifact has unsaved changes.
type Cleanliness int

const (
	Clean Cleanliness = iota
	Dirty
)

func (c Cleanliness) String() string {
	if c == Dirty {
		return "dirty"
	}
	return "clean"
}

// Phase tracks whether the guard is waiting on an unsaved-changes answer.
type Phase int

const (
	Idle Phase = iota
	Confirming
)

func (p Phase) String() string {
	if p == Confirming {
		return "confirming"
	}
	return "idle"
}

// Choice is the answer to the unsaved-changes prompt.
type Choice int

const (
	ChoiceSave    Choice = iota // Save first, then continue.
	ChoiceDiscard               // Continue without saving.
	ChoiceCancel                // Abort the load.
)

func (c Choice) String() string {
	switch c {
	case ChoiceSave:
		return "save"
	case ChoiceDiscard:
		return "discard"
	default:
		return "cancel"
	}
}

// ParseChoice maps the usual spellings of an answer to a Choice.
func ParseChoice(s string) (Choice, bool) {
	switch s {
	case "y", "yes", "save":
		return ChoiceSave, true
	case "n", "no", "discard", "continue":
		return ChoiceDiscard, true
	case "c", "cancel", "":
		return ChoiceCancel, true
	}
	return ChoiceCancel, false
}

// GuardEvent drives the unsaved-changes state machine.
type GuardEvent int

const (
	EventMark GuardEvent = iota // A drawing command changed the artifact.
	EventSaved                  // The artifact was persisted or freshly loaded.
	EventBeginLoad              // A load was requested.
	EventChooseSave
	EventChooseDiscard
	EventChooseCancel
)

// Decision tells the session what to do after an event.
type Decision int

const (
	DecisionNone Decision = iota
	DecisionProceed
	DecisionPrompt
	DecisionSaveThenProceed
	DecisionAbort
)

func (d Decision) String() string {
	switch d {
	case DecisionProceed:
		return "proceed"
	case DecisionPrompt:
		return "prompt"
	case DecisionSaveThenProceed:
		return "save-then-proceed"
	case DecisionAbort:
		return "abort"
	default:
		return "none"
	}
}

type guardKey struct {
	state Cleanliness
	phase Phase
	event GuardEvent
}

type guardStep struct {
	state    Cleanliness
	phase    Phase
	decision Decision
}

var guardTable = map[guardKey]guardStep{
	{Clean, Idle, EventMark}:  {Dirty, Idle, DecisionNone},
	{Dirty, Idle, EventMark}:  {Dirty, Idle, DecisionNone},
	{Clean, Idle, EventSaved}: {Clean, Idle, DecisionNone},
	{Dirty, Idle, EventSaved}: {Clean, Idle, DecisionNone},

	{Clean, Idle, EventBeginLoad}: {Clean, Idle, DecisionProceed},
	{Dirty, Idle, EventBeginLoad}: {Dirty, Confirming, DecisionPrompt},

	{Dirty, Confirming, EventChooseSave}:    {Dirty, Idle, DecisionSaveThenProceed},
	{Dirty, Confirming, EventChooseDiscard}: {Dirty, Idle, DecisionProceed},
	{Dirty, Confirming, EventChooseCancel}:  {Dirty, Idle, DecisionAbort},
}

// Guard is the unsaved-changes state machine for one artifact (image or command script).
// The zero value is clean and idle.
type Guard struct {
	state Cleanliness
	phase Phase
}

// Fire applies an event and returns the resulting decision.
// The guard is left untouched when the transition is not in the table.
func (g *Guard) Fire(e GuardEvent) (Decision, error) {
	step, ok := guardTable[guardKey{g.state, g.phase, e}]
	if !ok {
		return DecisionNone, fmt.Errorf("%w: %s/%s on event %d", ErrIllegalTransition, g.state, g.phase, e)
	}
	g.state, g.phase = step.state, step.phase
	return step.decision, nil
}

// Mark records an unsaved change.
func (g *Guard) Mark() {
	_, _ = g.Fire(EventMark)
}

// Saved records that the artifact now matches persisted storage.
func (g *Guard) Saved() {
	_, _ = g.Fire(EventSaved)
}

// BeginLoad starts a load and reports whether the caller must prompt.
func (g *Guard) BeginLoad() Decision {
	d, err := g.Fire(EventBeginLoad)
	if err != nil {
		return DecisionAbort
	}
	return d
}

// Resolve answers a pending prompt.
func (g *Guard) Resolve(c Choice) (Decision, error) {
	switch c {
	case ChoiceSave:
		return g.Fire(EventChooseSave)
	case ChoiceDiscard:
		return g.Fire(EventChooseDiscard)
	default:
		return g.Fire(EventChooseCancel)
	}
}

// Dirty reports whether there are unsaved changes.
func (g *Guard) Dirty() bool {
	return g.state == Dirty
}

// Phase returns the current prompt phase.
func (g *Guard) Phase() Phase {
	return g.phase
}
