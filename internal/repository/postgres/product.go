package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Team-WishU/wishu-backend/internal/domain"
	"github.com/Team-WishU/wishu-backend/internal/repository"
	"github.com/Team-WishU/wishu-backend/pkg/database"
	apperrors "github.com/Team-WishU/wishu-backend/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using
// PostgreSQL. Wish membership lives in the product_saves join table and is
// aggregated into SavedBy on every read.
type ProductRepository struct {
	db database.DB
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productSelect = `
	SELECT p.id, p.title, p.brand, p.price, p.category, p.tags, p.image_url, p.product_url,
	       u.id, u.nickname, u.profile_image,
	       COALESCE(array_agg(ps.user_id) FILTER (WHERE ps.user_id IS NOT NULL), '{}'),
	       p.created_at, p.updated_at
	FROM products p
	JOIN users u ON u.id = p.uploaded_by
	LEFT JOIN product_saves ps ON ps.product_id = p.id`

const productGroupBy = ` GROUP BY p.id, u.id, u.nickname, u.profile_image`

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, title, brand, price, category, tags, image_url, product_url, uploaded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	tagsJSON, err := json.Marshal(product.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err = r.db.Exec(ctx, query,
		product.ID,
		product.Title,
		product.Brand,
		product.Price,
		product.Category,
		tagsJSON,
		product.ImageURL,
		product.ProductURL,
		product.UploadedBy.ID,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("user", product.UploadedBy.ID)
		}
		return storeErr("insert product", err)
	}
	return nil
}

// GetByID retrieves a product with its savedBy set.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := productSelect + ` WHERE p.id = $1` + productGroupBy

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, storeErr("get product by id", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, storeErr("get product by id", err)
		}
		return nil, apperrors.NotFound("product", id)
	}

	product, err := scanProduct(rows)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// List returns products matching the filter, newest first.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	query := productSelect
	args := []any{}
	argPos := 1

	where := ""
	if filter.Category != nil {
		where += fmt.Sprintf(" WHERE p.category = $%d", argPos)
		args = append(args, *filter.Category)
		argPos++
	}
	if filter.Tag != nil {
		clause := fmt.Sprintf("p.tags @> $%d", argPos)
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		tagJSON, err := json.Marshal([]string{*filter.Tag})
		if err != nil {
			return nil, fmt.Errorf("marshal tag filter: %w", err)
		}
		args = append(args, tagJSON)
		argPos++
	}

	query += where + productGroupBy + ` ORDER BY p.created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
	}

	return r.queryProducts(ctx, "list products", query, args...)
}

// FindSavedByUsers returns products any of the given users have saved,
// newest first. The live product_saves state drives the result, so an
// unsaved product drops out immediately.
func (r *ProductRepository) FindSavedByUsers(ctx context.Context, userIDs []string) ([]domain.Product, error) {
	if len(userIDs) == 0 {
		return []domain.Product{}, nil
	}

	query := productSelect + `
	WHERE p.id IN (SELECT product_id FROM product_saves WHERE user_id = ANY($1))` +
		productGroupBy + ` ORDER BY p.created_at DESC`

	return r.queryProducts(ctx, "find products saved by users", query, userIDs)
}

func (r *ProductRepository) queryProducts(ctx context.Context, op, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

func scanProduct(rows pgx.Rows) (*domain.Product, error) {
	var (
		p        domain.Product
		tagsJSON []byte
	)
	err := rows.Scan(
		&p.ID,
		&p.Title,
		&p.Brand,
		&p.Price,
		&p.Category,
		&tagsJSON,
		&p.ImageURL,
		&p.ProductURL,
		&p.UploadedBy.ID,
		&p.UploadedBy.Nickname,
		&p.UploadedBy.ProfileImage,
		&p.SavedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan product row: %w", err)
	}

	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &p.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.SavedBy == nil {
		p.SavedBy = []string{}
	}
	return &p, nil
}

// Save adds the user to the product's savedBy set. Saving twice is a no-op.
func (r *ProductRepository) Save(ctx context.Context, productID, userID string) error {
	query := `
		INSERT INTO product_saves (product_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, user_id) DO NOTHING`

	_, err := r.db.Exec(ctx, query, productID, userID, time.Now().UTC())
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("product", productID)
		}
		return storeErr("save product", err)
	}
	return nil
}

// Unsave removes the user from the product's savedBy set. Idempotent.
func (r *ProductRepository) Unsave(ctx context.Context, productID, userID string) error {
	query := `DELETE FROM product_saves WHERE product_id = $1 AND user_id = $2`

	if _, err := r.db.Exec(ctx, query, productID, userID); err != nil {
		return storeErr("unsave product", err)
	}
	return nil
}

// Delete removes a product; its save memberships cascade at the schema level.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return storeErr("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}
