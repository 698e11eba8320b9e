package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vbonduro/fridgechef/internal/chat"
	"github.com/vbonduro/fridgechef/internal/domain"
	"github.com/vbonduro/fridgechef/internal/session"
)

// FallbackReply is appended in place of a recipe when generation fails.
const FallbackReply = "Sorry, there was an error generating the recipe."

const systemPrompt = "You are a helpful assistant that generates recipes based on given ingredients and preferences."

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 500
)

type OrchestratorOption func(*Orchestrator)

func WithTemperature(t float64) OrchestratorOption {
	return func(o *Orchestrator) { o.temperature = t }
}

func WithMaxTokens(n int) OrchestratorOption {
	return func(o *Orchestrator) { o.maxTokens = n }
}

// Orchestrator produces the next assistant turn of a session.
type Orchestrator struct {
	model       chat.Model
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// NewOrchestrator fails with a *domain.ConfigurationError when no chat model
// is configured.
func NewOrchestrator(model chat.Model, logger *slog.Logger, opts ...OrchestratorOption) (*Orchestrator, error) {
	if model == nil {
		return nil, &domain.ConfigurationError{Name: "CHAT_API_KEY"}
	}
	o := &Orchestrator{
		model:       model,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// GenerateNext appends userText as a user turn, asks the chat model for a
// reply and appends it as an assistant turn. On failure the fixed fallback
// turn is appended instead and returned together with a
// *domain.GenerationError. If the session already has work outstanding,
// session.ErrBusy is returned and nothing is appended.
func (o *Orchestrator) GenerateNext(ctx context.Context, sess *session.Session, userText string) (domain.Turn, error) {
	if err := sess.Begin(); err != nil {
		return domain.Turn{}, err
	}
	defer sess.End()

	prior := sess.Transcript()
	ingredients := sess.Ingredients()
	opts := sess.Options()
	sess.AppendUser(userText)

	req := chat.Request{
		Messages:    BuildMessages(prior, ingredients, opts, userText),
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	}

	o.logger.Info("recipe generation started", "session_id", sess.ID, "messages", len(req.Messages), "ingredients", len(ingredients))

	reply, err := o.model.Complete(ctx, req)
	if err == nil {
		reply = strings.TrimSpace(reply)
		if reply == "" {
			err = &domain.ParseError{Err: errors.New("empty reply")}
		}
	}
	if err != nil {
		genErr := &domain.GenerationError{Err: err}
		o.logger.Error("recipe generation failed", "session_id", sess.ID, "error", genErr)
		return sess.AppendAssistant(FallbackReply), genErr
	}

	o.logger.Info("recipe generation complete", "session_id", sess.ID, "chars", len(reply))
	return sess.AppendAssistant(reply), nil
}

// BuildMessages assembles [system, ...prior, instruction], keeping the prior
// transcript in order.
func BuildMessages(prior []domain.Turn, ingredients []string, opts domain.GenerationOptions, userText string) []chat.Message {
	messages := make([]chat.Message, 0, len(prior)+2)
	messages = append(messages, chat.Message{Role: chat.RoleSystem, Content: systemPrompt})
	for _, t := range prior {
		messages = append(messages, chat.Message{Role: string(t.Role), Content: t.Content})
	}
	messages = append(messages, chat.Message{Role: chat.RoleUser, Content: BuildInstruction(ingredients, opts, userText)})
	return messages
}

// BuildInstruction renders the ingredients, every option field and the user's
// request as natural-language constraints.
func BuildInstruction(ingredients []string, opts domain.GenerationOptions, userText string) string {
	methods := make([]string, len(opts.CookingMethods))
	for i, m := range opts.CookingMethods {
		methods[i] = string(m)
	}
	diets := make([]string, len(opts.DietaryRestrictions))
	for i, d := range opts.DietaryRestrictions {
		diets[i] = string(d)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a recipe using these ingredients: %s.\n", joinOrNone(ingredients))
	fmt.Fprintf(&b, "Cooking methods: %s.\n", joinOrNone(methods))
	fmt.Fprintf(&b, "Cooking time: %d minutes.\n", opts.CookingTimeMinutes)
	fmt.Fprintf(&b, "Difficulty: %s.\n", opts.Difficulty)
	fmt.Fprintf(&b, "Cuisine: %s.\n", opts.Cuisine)
	fmt.Fprintf(&b, "Dietary restrictions: %s.\n", joinOrNone(diets))
	b.WriteString("Be creative and consider the previous conversation context.")
	if text := strings.TrimSpace(userText); text != "" {
		b.WriteString("\nRequest: ")
		b.WriteString(text)
	}
	return b.String()
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}
