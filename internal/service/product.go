package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Team-WishU/wishu-backend/internal/domain"
	"github.com/Team-WishU/wishu-backend/internal/repository"
	apperrors "github.com/Team-WishU/wishu-backend/pkg/errors"
)

// maxProductTags bounds the tag list on a product.
const maxProductTags = 10

// ProductService implements the business logic for the catalog and wish
// membership.
type ProductService struct {
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	logger      *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// CreateProductInput holds the parameters for sharing a product.
type CreateProductInput struct {
	Title      string
	Brand      string
	Price      int64
	Category   string
	Tags       []string
	ImageURL   string
	ProductURL string
}

// Create shares a new product under the caller's identity. The uploader
// automatically wishes their own product.
func (s *ProductService) Create(ctx context.Context, callerID string, input CreateProductInput) (*domain.Product, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.Category == "" {
		return nil, apperrors.InvalidInput("category is required")
	}
	if len(input.Tags) > maxProductTags {
		return nil, apperrors.InvalidInput("too many tags")
	}

	uploader, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	product := &domain.Product{
		ID:         uuid.New().String(),
		Title:      input.Title,
		Brand:      input.Brand,
		Price:      input.Price,
		Category:   input.Category,
		Tags:       tags,
		ImageURL:   input.ImageURL,
		ProductURL: input.ProductURL,
		UploadedBy: uploader.Identity(),
		SavedBy:    []string{callerID},
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	if err := s.productRepo.Save(ctx, product.ID, callerID); err != nil {
		return nil, fmt.Errorf("save own product: %w", err)
	}

	s.logger.InfoContext(ctx, "product shared",
		slog.String("product_id", product.ID),
		slog.String("user_id", callerID),
	)
	return product, nil
}

// GetByID returns a product with its live savedBy set.
func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

// List returns products matching the filter, newest first.
func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	return s.productRepo.List(ctx, filter)
}

// Wish adds the product to the caller's wishes. Wishing twice is a no-op.
func (s *ProductService) Wish(ctx context.Context, callerID, productID string) error {
	if err := s.productRepo.Save(ctx, productID, callerID); err != nil {
		return fmt.Errorf("wish product: %w", err)
	}
	return nil
}

// Unwish removes the product from the caller's wishes. The product drops out
// of every shared wishlist on the next read.
func (s *ProductService) Unwish(ctx context.Context, callerID, productID string) error {
	if err := s.productRepo.Unsave(ctx, productID, callerID); err != nil {
		return fmt.Errorf("unwish product: %w", err)
	}
	return nil
}

// MyWishes returns the products the caller has wished, newest first.
func (s *ProductService) MyWishes(ctx context.Context, callerID string) ([]domain.Product, error) {
	products, err := s.productRepo.FindSavedByUsers(ctx, []string{callerID})
	if err != nil {
		return nil, fmt.Errorf("find wished products: %w", err)
	}
	return products, nil
}

// Delete removes a product. Only the uploader may delete it.
func (s *ProductService) Delete(ctx context.Context, callerID, productID string) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product.UploadedBy.ID != callerID {
		return apperrors.Forbidden("only the uploader can delete a product")
	}

	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", productID),
		slog.String("user_id", callerID),
	)
	return nil
}
