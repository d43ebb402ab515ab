package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Team-WishU/wishu-backend/internal/domain"
	"github.com/Team-WishU/wishu-backend/internal/repository"
	apperrors "github.com/Team-WishU/wishu-backend/pkg/errors"
)

func newChatbotService(productRepo *mockProductRepository, sessions *mockSessionStore) *ChatbotService {
	svc := NewChatbotService(productRepo, sessions, newTestLogger())
	svc.pickIndex = func(int) int { return 0 }
	return svc
}

func taggedProducts() []domain.Product {
	return []domain.Product{
		{ID: "prod-1", Title: "Lace blouse", Tags: []string{"러블리"}},
		{ID: "prod-2", Title: "Ribbon skirt", Tags: []string{"러블리"}},
	}
}

func TestChatbotService_TagMessage_SelectsTag(t *testing.T) {
	productRepo := new(mockProductRepository)
	sessions := new(mockSessionStore)
	svc := newChatbotService(productRepo, sessions)
	ctx := context.Background()

	sessions.On("Get", ctx, testUserA).Return(nil, apperrors.NotFound("session", testUserA))
	productRepo.On("List", ctx, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.Tag != nil && *f.Tag == "러블리"
	})).Return(taggedProducts(), nil)
	sessions.On("Put", ctx, mock.MatchedBy(func(s *domain.Session) bool {
		return s.Step == domain.StepTagSelected && s.SelectedTag == "러블리"
	})).Return(nil)

	reply, err := svc.ProcessMessage(ctx, testUserA, "러블리 스타일 보여줘")
	require.NoError(t, err)
	require.Len(t, reply, 2)

	assert.Contains(t, reply[0].Content, "러블리")
	require.Len(t, reply[1].Products, 1)
	assert.Equal(t, "prod-1", reply[1].Products[0].ID)
	sessions.AssertExpectations(t)
}

func TestChatbotService_MoreKeyword_ReusesSelectedTag(t *testing.T) {
	productRepo := new(mockProductRepository)
	sessions := new(mockSessionStore)
	svc := newChatbotService(productRepo, sessions)
	ctx := context.Background()

	existing, err := domain.NewTagSelectedSession(testUserA, "러블리")
	require.NoError(t, err)

	sessions.On("Get", ctx, testUserA).Return(&existing, nil)
	productRepo.On("List", ctx, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.Tag != nil && *f.Tag == "러블리"
	})).Return(taggedProducts(), nil)
	sessions.On("Put", ctx, mock.AnythingOfType("*domain.Session")).Return(nil)

	reply, err := svc.ProcessMessage(ctx, testUserA, "다른거")
	require.NoError(t, err)
	require.Len(t, reply, 2)
	assert.Contains(t, reply[0].Content, "다른")
	require.Len(t, reply[1].Products, 1)
}

func TestChatbotService_MoreKeyword_WithoutTag_Greets(t *testing.T) {
	productRepo := new(mockProductRepository)
	sessions := new(mockSessionStore)
	svc := newChatbotService(productRepo, sessions)
	ctx := context.Background()

	// No session: "더" alone has nothing to repeat.
	sessions.On("Get", ctx, testUserA).Return(nil, apperrors.NotFound("session", testUserA))
	sessions.On("Put", ctx, mock.MatchedBy(func(s *domain.Session) bool {
		return s.Step == domain.StepGreeting
	})).Return(nil)

	reply, err := svc.ProcessMessage(ctx, testUserA, "더")
	require.NoError(t, err)
	require.Len(t, reply, 1)
	assert.Contains(t, reply[0].Content, "분위기")
	productRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestChatbotService_UnknownMessage_Greets(t *testing.T) {
	productRepo := new(mockProductRepository)
	sessions := new(mockSessionStore)
	svc := newChatbotService(productRepo, sessions)
	ctx := context.Background()

	sessions.On("Get", ctx, testUserA).Return(nil, apperrors.NotFound("session", testUserA))
	sessions.On("Put", ctx, mock.AnythingOfType("*domain.Session")).Return(nil)

	reply, err := svc.ProcessMessage(ctx, testUserA, "hello there")
	require.NoError(t, err)
	require.Len(t, reply, 1)
	assert.NotEmpty(t, reply[0].Content)
}

func TestChatbotService_TagWithNoProducts(t *testing.T) {
	productRepo := new(mockProductRepository)
	sessions := new(mockSessionStore)
	svc := newChatbotService(productRepo, sessions)
	ctx := context.Background()

	sessions.On("Get", ctx, testUserA).Return(nil, apperrors.NotFound("session", testUserA))
	productRepo.On("List", ctx, mock.AnythingOfType("repository.ProductFilter")).
		Return([]domain.Product{}, nil)
	sessions.On("Put", ctx, mock.AnythingOfType("*domain.Session")).Return(nil)

	reply, err := svc.ProcessMessage(ctx, testUserA, "미니멀")
	require.NoError(t, err)
	require.Len(t, reply, 2)
	assert.Empty(t, reply[1].Products)
}

func TestChatbotService_Reset(t *testing.T) {
	sessions := new(mockSessionStore)
	svc := newChatbotService(new(mockProductRepository), sessions)
	ctx := context.Background()

	sessions.On("Delete", ctx, testUserA).Return(nil)

	require.NoError(t, svc.Reset(ctx, testUserA))
	sessions.AssertExpectations(t)
}
