package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Team-WishU/wishu-backend/internal/auth"
	"github.com/Team-WishU/wishu-backend/internal/domain"
	"github.com/Team-WishU/wishu-backend/internal/event"
	"github.com/Team-WishU/wishu-backend/internal/repository"
	pkgkafka "github.com/Team-WishU/wishu-backend/pkg/kafka"
)

const (
	testUserA = "2a9f1bfb-14d9-4cde-9549-8d20e2ba9741"
	testUserB = "b3b1c3a0-6a52-4f7e-8f2e-1f7f1c2d3e4f"
)

// --- Mock Bucket Repository ---

type mockBucketRepository struct {
	mock.Mock
}

func (m *mockBucketRepository) GetOrCreate(ctx context.Context, key domain.PairKey) (*domain.SharedBucket, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.SharedBucket), args.Bool(1), args.Error(2)
}

func (m *mockBucketRepository) GetByID(ctx context.Context, id string) (*domain.SharedBucket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SharedBucket), args.Error(1)
}

func (m *mockBucketRepository) FindByUser(ctx context.Context, userID string) ([]domain.SharedBucket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SharedBucket), args.Error(1)
}

func (m *mockBucketRepository) DeleteByPair(ctx context.Context, key domain.PairKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockBucketRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockBucketRepository) AppendComment(ctx context.Context, bucketID string, comment *domain.Comment) error {
	args := m.Called(ctx, bucketID, comment)
	return args.Error(0)
}

func (m *mockBucketRepository) ListComments(ctx context.Context, bucketID string) ([]domain.Comment, error) {
	args := m.Called(ctx, bucketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

// --- Mock Product Repository ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) FindSavedByUsers(ctx context.Context, userIDs []string) ([]domain.Product, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) Save(ctx context.Context, productID, userID string) error {
	args := m.Called(ctx, productID, userID)
	return args.Error(0)
}

func (m *mockProductRepository) Unsave(ctx context.Context, productID, userID string) error {
	args := m.Called(ctx, productID, userID)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetIdentities(ctx context.Context, ids []string) ([]domain.Identity, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Identity), args.Error(1)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Friendship Repository ---

type mockFriendshipRepository struct {
	mock.Mock
}

func (m *mockFriendshipRepository) CreateRequest(ctx context.Context, req *domain.FriendRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *mockFriendshipRepository) DeleteRequest(ctx context.Context, fromUserID, toUserID string) error {
	args := m.Called(ctx, fromUserID, toUserID)
	return args.Error(0)
}

func (m *mockFriendshipRepository) HasRequest(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	args := m.Called(ctx, fromUserID, toUserID)
	return args.Bool(0), args.Error(1)
}

func (m *mockFriendshipRepository) ListIncoming(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FriendRequest), args.Error(1)
}

func (m *mockFriendshipRepository) ListOutgoing(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FriendRequest), args.Error(1)
}

func (m *mockFriendshipRepository) CreateFriendship(ctx context.Context, key domain.PairKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockFriendshipRepository) DeleteFriendship(ctx context.Context, key domain.PairKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockFriendshipRepository) AreFriends(ctx context.Context, key domain.PairKey) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockFriendshipRepository) ListFriends(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockFriendshipRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Mock Session Store ---

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) Get(ctx context.Context, userID string) (*domain.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionStore) Put(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionStore) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Mock Verification Store ---

type mockVerificationStore struct {
	mock.Mock
}

func (m *mockVerificationStore) Put(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

func (m *mockVerificationStore) Consume(ctx context.Context, email, code string) (bool, error) {
	args := m.Called(ctx, email, code)
	return args.Bool(0), args.Error(1)
}

// --- Mock Mailer ---

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Name() string {
	return "mock"
}

func (m *mockMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("test-secret-key-for-testing", 15*time.Minute, 7*24*time.Hour)
}

func newTestEventProducer() *event.Producer {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func mustPairKey(a, b string) domain.PairKey {
	key, err := domain.NewPairKey(a, b)
	if err != nil {
		panic(err)
	}
	return key
}

func strPtr(s string) *string {
	return &s
}
