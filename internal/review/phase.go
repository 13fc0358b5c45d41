package review

import "fmt"

// Phase is a state of the review loop.
type Phase int

const (
	Generating Phase = iota
	Presenting
	Editing
	Confirming
	Committing
	Aborted
	Done
)

func (p Phase) String() string {
	switch p {
	case Generating:
		return "generating"
	case Presenting:
		return "presenting"
	case Editing:
		return "editing"
	case Confirming:
		return "confirming"
	case Committing:
		return "committing"
	case Aborted:
		return "aborted"
	case Done:
		return "done"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Terminal reports whether the loop stops in p.
func (p Phase) Terminal() bool {
	return p == Aborted || p == Done
}

// transitions lists the phases reachable from each phase.
var transitions = map[Phase][]Phase{
	Generating: {Generating, Presenting},
	Presenting: {Confirming},
	Confirming: {Committing, Aborted, Generating, Editing, Presenting},
	Editing:    {Presenting},
	Committing: {Done},
}

// canTransition reports whether the loop may move from one phase to another.
func canTransition(from, to Phase) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// Command is one entry of the review menu.
type Command int

const (
	Accept Command = iota
	Abort
	Reroll
	ToggleFormat
	Edit
	AddPrompt
)

func (c Command) String() string {
	switch c {
	case Accept:
		return "accept"
	case Abort:
		return "abort"
	case Reroll:
		return "reroll"
	case ToggleFormat:
		return "toggle-format"
	case Edit:
		return "edit"
	case AddPrompt:
		return "add-prompt"
	}
	return fmt.Sprintf("Command(%d)", int(c))
}
