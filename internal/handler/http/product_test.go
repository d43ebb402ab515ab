package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Team-WishU/wishu-backend/internal/domain"
	"github.com/Team-WishU/wishu-backend/internal/repository"
	"github.com/Team-WishU/wishu-backend/internal/service"
	"github.com/Team-WishU/wishu-backend/pkg/middleware"
)

func productTestHandler(productRepo *mockProductRepo, userRepo *mockUserRepo) *ProductHandler {
	logger := handlerTestLogger()
	svc := service.NewProductService(productRepo, userRepo, logger)
	return NewProductHandler(svc, logger)
}

func setupProductRouter(handler *ProductHandler, userID string) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(middleware.Auth(fakeTokenValidator(userID)))
		r.Post("/", handler.Create)
		r.Get("/", handler.List)
		r.Get("/wishes/me", handler.MyWishes)
		r.Get("/{id}", handler.GetByID)
		r.Delete("/{id}", handler.Delete)
		r.Post("/{id}/wish", handler.Wish)
		r.Delete("/{id}/wish", handler.Unwish)
	})
	return r
}

func TestCreateProduct_Success(t *testing.T) {
	productRepo := new(mockProductRepo)
	userRepo := new(mockUserRepo)
	handler := productTestHandler(productRepo, userRepo)
	router := setupProductRouter(handler, testUserID)

	userRepo.On("GetByID", mock.Anything, testUserID).Return(&domain.User{ID: testUserID, Nickname: "민지"}, nil)
	productRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	productRepo.On("Save", mock.Anything, mock.AnythingOfType("string"), testUserID).Return(nil)

	body := bytes.NewBufferString(`{
		"title": "트위드 자켓",
		"brand": "wishu studio",
		"price": 89000,
		"category": "상의",
		"tags": ["러블리"],
		"imageUrl": "https://cdn.wishu.app/p/1.png"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/", body)
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	productRepo.AssertExpectations(t)
}

func TestCreateProduct_MissingImage(t *testing.T) {
	handler := productTestHandler(new(mockProductRepo), new(mockUserRepo))
	router := setupProductRouter(handler, testUserID)

	body := bytes.NewBufferString(`{"title": "자켓", "price": 1000, "category": "상의"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/", body)
	req.Header.Set("Authorization", "Bearer test-token")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestListProducts_TagFilter(t *testing.T) {
	productRepo := new(mockProductRepo)
	handler := productTestHandler(productRepo, new(mockUserRepo))
	router := setupProductRouter(handler, testUserID)

	tag := "러블리"
	productRepo.On("List", mock.Anything, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.Tag != nil && *f.Tag == tag && f.Limit == defaultProductLimit
	})).Return([]domain.Product{*sampleProduct()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/?tag="+tag, nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	productRepo.AssertExpectations(t)
}

func TestListProducts_BadLimit(t *testing.T) {
	handler := productTestHandler(new(mockProductRepo), new(mockUserRepo))
	router := setupProductRouter(handler, testUserID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/?limit=0", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteProduct_OnlyUploader(t *testing.T) {
	productRepo := new(mockProductRepo)
	handler := productTestHandler(productRepo, new(mockUserRepo))
	router := setupProductRouter(handler, testFriendID)

	product := sampleProduct() // uploaded by testUserID
	productRepo.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+product.ID, nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	productRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestWishProduct_Success(t *testing.T) {
	productRepo := new(mockProductRepo)
	handler := productTestHandler(productRepo, new(mockUserRepo))
	router := setupProductRouter(handler, testUserID)

	product := sampleProduct()
	productRepo.On("Save", mock.Anything, product.ID, testUserID).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+product.ID+"/wish", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	productRepo.AssertExpectations(t)
}

func TestMyWishes_Success(t *testing.T) {
	productRepo := new(mockProductRepo)
	handler := productTestHandler(productRepo, new(mockUserRepo))
	router := setupProductRouter(handler, testUserID)

	productRepo.On("FindSavedByUsers", mock.Anything, []string{testUserID}).
		Return([]domain.Product{*sampleProduct()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/wishes/me", nil)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	items, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)
}
