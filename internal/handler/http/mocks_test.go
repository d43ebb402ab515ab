package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Team-WishU/wishu-backend/internal/auth"
	"github.com/Team-WishU/wishu-backend/internal/domain"
	"github.com/Team-WishU/wishu-backend/internal/event"
	"github.com/Team-WishU/wishu-backend/internal/repository"
	"github.com/Team-WishU/wishu-backend/pkg/httputil"
	pkgkafka "github.com/Team-WishU/wishu-backend/pkg/kafka"
	"github.com/Team-WishU/wishu-backend/pkg/middleware"
)

const (
	testUserID   = "2a9f1bfb-14d9-4cde-9549-8d20e2ba9741"
	testFriendID = "b3b1c3a0-6a52-4f7e-8f2e-1f7f1c2d3e4f"
	testBucketID = "c47ac10b-58cc-4372-a567-0e02b2c3d479"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockBucketRepo struct {
	mock.Mock
}

func (m *mockBucketRepo) GetOrCreate(ctx context.Context, key domain.PairKey) (*domain.SharedBucket, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.SharedBucket), args.Bool(1), args.Error(2)
}

func (m *mockBucketRepo) GetByID(ctx context.Context, id string) (*domain.SharedBucket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SharedBucket), args.Error(1)
}

func (m *mockBucketRepo) FindByUser(ctx context.Context, userID string) ([]domain.SharedBucket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SharedBucket), args.Error(1)
}

func (m *mockBucketRepo) DeleteByPair(ctx context.Context, key domain.PairKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockBucketRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockBucketRepo) AppendComment(ctx context.Context, bucketID string, comment *domain.Comment) error {
	args := m.Called(ctx, bucketID, comment)
	return args.Error(0)
}

func (m *mockBucketRepo) ListComments(ctx context.Context, bucketID string) ([]domain.Comment, error) {
	args := m.Called(ctx, bucketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepo) FindSavedByUsers(ctx context.Context, userIDs []string) ([]domain.Product, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepo) Save(ctx context.Context, productID, userID string) error {
	args := m.Called(ctx, productID, userID)
	return args.Error(0)
}

func (m *mockProductRepo) Unsave(ctx context.Context, productID, userID string) error {
	args := m.Called(ctx, productID, userID)
	return args.Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetIdentities(ctx context.Context, ids []string) ([]domain.Identity, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Identity), args.Error(1)
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockFriendRepo struct {
	mock.Mock
}

func (m *mockFriendRepo) CreateRequest(ctx context.Context, req *domain.FriendRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *mockFriendRepo) DeleteRequest(ctx context.Context, fromUserID, toUserID string) error {
	args := m.Called(ctx, fromUserID, toUserID)
	return args.Error(0)
}

func (m *mockFriendRepo) HasRequest(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	args := m.Called(ctx, fromUserID, toUserID)
	return args.Bool(0), args.Error(1)
}

func (m *mockFriendRepo) ListIncoming(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FriendRequest), args.Error(1)
}

func (m *mockFriendRepo) ListOutgoing(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FriendRequest), args.Error(1)
}

func (m *mockFriendRepo) CreateFriendship(ctx context.Context, key domain.PairKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockFriendRepo) DeleteFriendship(ctx context.Context, key domain.PairKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockFriendRepo) AreFriends(ctx context.Context, key domain.PairKey) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockFriendRepo) ListFriends(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockFriendRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

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

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Name() string { return "mock" }

func (m *mockMailer) SendVerificationCode(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

// ============================================================================
// Test Helpers
// ============================================================================

func handlerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func handlerTestProducer() *event.Producer {
	logger := handlerTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

func handlerTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager("handler-test-secret", 15*time.Minute, 7*24*time.Hour)
}

// fakeTokenValidator returns a middleware.TokenValidator that always succeeds
// and injects the given userID into the request context.
func fakeTokenValidator(userID string) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		return &middleware.Claims{UserID: userID, Email: "test@wishu.app", Nickname: "민지"}, nil
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func sampleBucket() *domain.SharedBucket {
	now := time.Now().UTC()
	return &domain.SharedBucket{
		ID:           testBucketID,
		Participants: []string{testUserID, testFriendID},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func sampleIdentities() []domain.Identity {
	return []domain.Identity{
		{ID: testUserID, Nickname: "민지", ProfileImage: "https://cdn.wishu.app/u/1.png"},
		{ID: testFriendID, Nickname: "하니", ProfileImage: "https://cdn.wishu.app/u/2.png"},
	}
}

func sampleProduct() *domain.Product {
	return &domain.Product{
		ID:         "d290f1ee-6c54-4b01-90e6-d701748f0851",
		Title:      "트위드 자켓",
		Brand:      "wishu studio",
		Price:      89000,
		Category:   "상의",
		Tags:       []string{"러블리"},
		ImageURL:   "https://cdn.wishu.app/p/1.png",
		UploadedBy: domain.Identity{ID: testUserID, Nickname: "민지"},
		SavedBy:    []string{testUserID},
		CreatedAt:  time.Now().UTC(),
	}
}
