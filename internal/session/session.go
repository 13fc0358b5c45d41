// Package session holds the per-invocation generation state that the review
// loop mutates between generations.
package session

import "strings"

// UltrathinkAfter is the number of consecutive manual rerolls that unlocks
// the highest-effort prompt.
const UltrathinkAfter = 2

// Tier is the relative cost/quality level of the model used.
type Tier int

const (
	TierFast Tier = iota
	TierSmart
)

func (t Tier) String() string {
	if t == TierSmart {
		return "smart"
	}
	return "fast"
}

// Format is the requested commit message shape.
type Format int

const (
	SingleLine Format = iota
	MultiLine
)

func (f Format) String() string {
	if f == MultiLine {
		return "multi-line"
	}
	return "single-line"
}

// Toggled returns the other format.
func (f Format) Toggled() Format {
	if f == MultiLine {
		return SingleLine
	}
	return MultiLine
}

// State is the single mutable record for one invocation. Tier and ThinkHard
// only ever escalate.
type State struct {
	ContextLines  int
	Tier          Tier
	Format        Format
	ThinkHard     bool
	ExtraPrompt   string
	ManualRerolls int
	AutoRerolls   int
	Description   string
	UserEdited    bool
}

// New returns the state for a fresh invocation.
func New(contextLines int) *State {
	return &State{
		ContextLines: contextLines,
		Tier:         TierFast,
		Format:       SingleLine,
	}
}

// Ultrathink reports whether the user has rerolled often enough to ask for
// maximum effort.
func (s *State) Ultrathink() bool {
	return s.ManualRerolls >= UltrathinkAfter
}

// escalate moves to the smart tier with think-hard prompting for the rest
// of the session.
func (s *State) escalate() {
	s.Tier = TierSmart
	s.ThinkHard = true
}

// Reroll records an explicit user request to regenerate. It discards any
// edit and starts a fresh automatic retry budget.
func (s *State) Reroll() {
	s.ManualRerolls++
	s.AutoRerolls = 0
	s.UserEdited = false
	s.escalate()
}

// AutoReroll records a regeneration triggered by a validation failure.
func (s *State) AutoReroll() {
	s.AutoRerolls++
	s.escalate()
}

// ToggleFormat flips between single and multi-line output. Toggling is not
// a reroll: the manual count resets and escalation is left as is.
func (s *State) ToggleFormat() {
	s.Format = s.Format.Toggled()
	s.ManualRerolls = 0
	s.AutoRerolls = 0
	s.UserEdited = false
}

// ApplyEdit replaces the description with user-edited text.
func (s *State) ApplyEdit(text string) {
	s.Description = text
	s.UserEdited = true
	s.ManualRerolls = 0
}

// AddPrompt appends extra instructions and rerolls. Blank text changes
// nothing and reports false.
func (s *State) AddPrompt(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if s.ExtraPrompt == "" {
		s.ExtraPrompt = text
	} else {
		s.ExtraPrompt += "\n" + text
	}
	s.Reroll()
	return true
}

// SetGenerated stores a freshly generated description.
func (s *State) SetGenerated(text string) {
	s.Description = text
	s.UserEdited = false
}

// Accept marks the current description as final.
func (s *State) Accept() {
	s.ManualRerolls = 0
}
