// Package conversation holds the append-only transcript and the generation
// options of one recipe session.
package conversation

import (
	"slices"

	"github.com/vbonduro/fridgechef/internal/domain"
)

// State is not safe for concurrent use; the owning session serializes access.
type State struct {
	turns   []domain.Turn
	options domain.GenerationOptions
}

func New() *State {
	return &State{options: domain.DefaultOptions()}
}

func (s *State) AppendUser(text string) {
	s.turns = append(s.turns, domain.Turn{Role: domain.RoleUser, Content: text})
}

func (s *State) AppendAssistant(text string) {
	s.turns = append(s.turns, domain.Turn{Role: domain.RoleAssistant, Content: text})
}

// Transcript returns the turns recorded so far, oldest first. Later appends
// are not visible through the returned slice.
func (s *State) Transcript() []domain.Turn {
	return slices.Clone(s.turns)
}

func (s *State) Len() int { return len(s.turns) }

// SetOptions replaces the options wholesale.
func (s *State) SetOptions(opts domain.GenerationOptions) {
	s.options = opts.Normalize()
}

func (s *State) Options() domain.GenerationOptions {
	// Normalize copies the slices so callers cannot mutate stored state.
	return s.options.Normalize()
}
