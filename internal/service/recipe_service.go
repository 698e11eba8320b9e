package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vbonduro/fridgechef/internal/domain"
	"github.com/vbonduro/fridgechef/internal/session"
)

// ErrInvalidOptions wraps every GenerationOptions validation failure.
var ErrInvalidOptions = errors.New("invalid options")

// sessionRepository is the subset of session.MemoryStore that RecipeService
// requires.
type sessionRepository interface {
	Create(ctx context.Context) *session.Session
	Get(ctx context.Context, id string) (*session.Session, error)
	Delete(ctx context.Context, id string) error
}

// RecipeService is the entry point the HTTP layer drives: one method per user
// interaction.
type RecipeService struct {
	sessions     sessionRepository
	batch        *BatchProcessor
	orchestrator *Orchestrator
	logger       *slog.Logger
}

func NewRecipeService(sessions sessionRepository, batch *BatchProcessor, orchestrator *Orchestrator, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		sessions:     sessions,
		batch:        batch,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

func (s *RecipeService) CreateSession(ctx context.Context) session.Snapshot {
	sess := s.sessions.Create(ctx)
	s.logger.Info("session started", "session_id", sess.ID)
	return sess.Snapshot()
}

func (s *RecipeService) GetSession(ctx context.Context, id string) (session.Snapshot, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return session.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

func (s *RecipeService) DeleteSession(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

// UploadImages extracts ingredients from images and merges them into the
// session.
func (s *RecipeService) UploadImages(ctx context.Context, id string, images []domain.ImageRecord) (BatchResult, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return BatchResult{}, err
	}
	return s.batch.ProcessBatch(ctx, sess, images)
}

// AddIngredients merges comma-separated manual input and returns the names
// that were new.
func (s *RecipeService) AddIngredients(ctx context.Context, id, text string) ([]string, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	added := sess.AddIngredientText(text)
	s.logger.Debug("ingredients added", "session_id", id, "added", len(added))
	return added, nil
}

func (s *RecipeService) RemoveIngredient(ctx context.Context, id, name string) error {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.RemoveIngredient(name)
	return nil
}

// SetOptions validates and replaces the session's generation options.
func (s *RecipeService) SetOptions(ctx context.Context, id string, opts domain.GenerationOptions) (domain.GenerationOptions, error) {
	if err := opts.Validate(); err != nil {
		return domain.GenerationOptions{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return domain.GenerationOptions{}, err
	}
	sess.SetOptions(opts)
	return sess.Options(), nil
}

// SendMessage runs one generation round. On a generation failure the returned
// turn is the fallback message and err is a *domain.GenerationError.
func (s *RecipeService) SendMessage(ctx context.Context, id, text string) (domain.Turn, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return domain.Turn{}, err
	}
	return s.orchestrator.GenerateNext(ctx, sess, text)
}
