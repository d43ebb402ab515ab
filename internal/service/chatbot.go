package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/Team-WishU/wishu-backend/internal/domain"
	"github.com/Team-WishU/wishu-backend/internal/repository"
	apperrors "github.com/Team-WishU/wishu-backend/pkg/errors"
)

// knownTags are the style tags the chatbot understands.
var knownTags = []string{"러블리", "유니크", "스포티", "캐주얼", "미니멀"}

// moreKeywords ask for another recommendation with the previously selected tag.
var moreKeywords = map[string]struct{}{
	"다른거": {},
	"더":   {},
	"또":   {},
}

// BotMessage is one message in a chatbot reply. Either Content or Products
// is set, never both.
type BotMessage struct {
	Type     string           `json:"type"`
	Content  string           `json:"content,omitempty"`
	Products []domain.Product `json:"products,omitempty"`
}

// ChatbotService implements the rule-based recommendation dialogue. Per-user
// conversation state lives in the injected SessionStore; a lost session just
// restarts the dialogue at the greeting.
type ChatbotService struct {
	productRepo repository.ProductRepository
	sessions    repository.SessionStore
	logger      *slog.Logger

	// pickIndex selects a product from n candidates; a field so tests can
	// make the choice deterministic.
	pickIndex func(n int) int
}

// NewChatbotService creates a new chatbot service.
func NewChatbotService(
	productRepo repository.ProductRepository,
	sessions repository.SessionStore,
	logger *slog.Logger,
) *ChatbotService {
	return &ChatbotService{
		productRepo: productRepo,
		sessions:    sessions,
		logger:      logger,
		pickIndex:   rand.Intn,
	}
}

// ProcessMessage advances the user's conversation with one message and
// returns the bot's reply.
func (s *ChatbotService) ProcessMessage(ctx context.Context, userID, message string) ([]BotMessage, error) {
	lower := strings.ToLower(strings.TrimSpace(message))

	session, err := s.sessions.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("load chatbot session: %w", err)
		}
		greeting := domain.NewGreetingSession(userID)
		session = &greeting
	}

	// "다른거" repeats the recommendation with the tag already selected.
	if _, more := moreKeywords[lower]; more && session.Step == domain.StepTagSelected {
		reply, err := s.recommend(ctx, session.SelectedTag, fmt.Sprintf("다른 %q 추천이에요!", session.SelectedTag))
		if err != nil {
			return nil, err
		}
		if err := s.sessions.Put(ctx, session); err != nil {
			s.logSessionError(ctx, userID, err)
		}
		return reply, nil
	}

	if tag := matchTag(lower); tag != "" {
		next, err := domain.NewTagSelectedSession(userID, tag)
		if err != nil {
			return nil, err
		}
		reply, err := s.recommend(ctx, tag, fmt.Sprintf("태그 %q에 대한 추천이에요!", tag))
		if err != nil {
			return nil, err
		}
		if err := s.sessions.Put(ctx, &next); err != nil {
			s.logSessionError(ctx, userID, err)
		}
		return reply, nil
	}

	// Nothing matched: re-greet without touching the session step.
	if err := s.sessions.Put(ctx, session); err != nil {
		s.logSessionError(ctx, userID, err)
	}
	return []BotMessage{
		{Type: "bot", Content: "어떤 분위기를 원하시나요? (예: 러블리, 미니멀)"},
	}, nil
}

// Reset clears the user's conversation state.
func (s *ChatbotService) Reset(ctx context.Context, userID string) error {
	if err := s.sessions.Delete(ctx, userID); err != nil {
		return fmt.Errorf("reset chatbot session: %w", err)
	}
	return nil
}

func (s *ChatbotService) recommend(ctx context.Context, tag, intro string) ([]BotMessage, error) {
	filter := repository.ProductFilter{Tag: &tag}
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find products by tag: %w", err)
	}

	picked := []domain.Product{}
	if len(products) > 0 {
		picked = append(picked, products[s.pickIndex(len(products))])
	}

	return []BotMessage{
		{Type: "bot", Content: intro},
		{Type: "bot", Products: picked},
	}, nil
}

func (s *ChatbotService) logSessionError(ctx context.Context, userID string, err error) {
	s.logger.ErrorContext(ctx, "failed to store chatbot session",
		slog.String("user_id", userID),
		slog.String("error", err.Error()),
	)
}

func matchTag(message string) string {
	for _, tag := range knownTags {
		if strings.Contains(message, tag) {
			return tag
		}
	}
	return ""
}
