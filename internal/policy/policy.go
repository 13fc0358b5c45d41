// Package policy turns the session state into a concrete generation request.
package policy

import (
	"github.com/gerunddev/git-auto-commit/internal/git"
	"github.com/gerunddev/git-auto-commit/internal/session"
)

// Request is everything one generation attempt needs.
type Request struct {
	Tier        session.Tier
	ThinkHard   bool
	Ultrathink  bool
	Format      session.Format
	ExtraPrompt string
	Diff        string
	Files       []git.FileChange
	Staged      bool
}

// Build reads the state and change set; it performs no I/O and never
// mutates either argument.
func Build(s *session.State, cs *git.ChangeSet) Request {
	files := make([]git.FileChange, len(cs.Files))
	copy(files, cs.Files)

	return Request{
		Tier:        s.Tier,
		ThinkHard:   s.ThinkHard,
		Ultrathink:  s.Ultrathink(),
		Format:      s.Format,
		ExtraPrompt: s.ExtraPrompt,
		Diff:        cs.Diff,
		Files:       files,
		Staged:      cs.Staged,
	}
}

// Models maps tiers to backend model names.
type Models struct {
	Fast  string
	Smart string
}

// For returns the model name for tier.
func (m Models) For(tier session.Tier) string {
	if tier == session.TierSmart {
		return m.Smart
	}
	return m.Fast
}
