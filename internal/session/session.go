// Package session implements the in-memory recipe session aggregate: one
// ingredient set, one transcript, one options value and the images processed
// so far. Sessions are never persisted.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/fridgechef/internal/conversation"
	"github.com/vbonduro/fridgechef/internal/domain"
	"github.com/vbonduro/fridgechef/internal/ingredient"
)

var (
	ErrNotFound = errors.New("session not found")
	// ErrBusy is returned when an extraction batch or a generation is already
	// outstanding for the session.
	ErrBusy = errors.New("session is busy")
)

// Session is one user's recipe conversation. All methods are safe for
// concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu          sync.Mutex
	ingredients *ingredient.Set
	conv        *conversation.State
	images      []domain.ImageRecord
	loading     bool
}

// New returns an empty session with a fresh ID and default options.
func New() *Session {
	return &Session{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		ingredients: ingredient.NewSet(),
		conv:        conversation.New(),
	}
}

// Begin sets the loading flag. Only one batch or generation may be in flight.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return ErrBusy
	}
	s.loading = true
	return nil
}

// End clears the loading flag.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// MergeIngredients unions names into the set and returns those that were new.
func (s *Session) MergeIngredients(names []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := make([]string, 0, len(names))
	for _, n := range names {
		if s.ingredients.AddOne(n) {
			added = append(added, strings.TrimSpace(n))
		}
	}
	return added
}

// AddIngredientText merges comma-separated manual input and returns the names
// that were newly inserted.
func (s *Session) AddIngredientText(text string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ingredients.AddText(text)
}

func (s *Session) RemoveIngredient(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingredients.Remove(name)
}

func (s *Session) Ingredients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ingredients.Snapshot()
}

func (s *Session) AppendUser(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv.AppendUser(text)
}

func (s *Session) AppendAssistant(text string) domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv.AppendAssistant(text)
	return domain.Turn{Role: domain.RoleAssistant, Content: text}
}

func (s *Session) Transcript() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Transcript()
}

func (s *Session) SetOptions(opts domain.GenerationOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv.SetOptions(opts)
}

func (s *Session) Options() domain.GenerationOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Options()
}

func (s *Session) AddImage(img domain.ImageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, img)
}

func (s *Session) ImageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// Snapshot is a point-in-time copy of the session used for rendering.
type Snapshot struct {
	ID          string                   `json:"id"`
	CreatedAt   time.Time                `json:"created_at"`
	Ingredients []string                 `json:"ingredients"`
	Transcript  []domain.Turn            `json:"transcript"`
	Options     domain.GenerationOptions `json:"options"`
	ImageCount  int                      `json:"image_count"`
	Loading     bool                     `json:"loading"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:          s.ID,
		CreatedAt:   s.CreatedAt,
		Ingredients: s.ingredients.Snapshot(),
		Transcript:  s.conv.Transcript(),
		Options:     s.conv.Options(),
		ImageCount:  len(s.images),
		Loading:     s.loading,
	}
}
