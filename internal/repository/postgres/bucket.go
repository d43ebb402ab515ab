package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Team-WishU/wishu-backend/internal/domain"
	"github.com/Team-WishU/wishu-backend/pkg/database"
	apperrors "github.com/Team-WishU/wishu-backend/pkg/errors"
)

// newBucketID generates candidate ids for GetOrCreate; a var so tests can
// pin it.
var newBucketID = uuid.NewString

// BucketRepository implements repository.BucketRepository using PostgreSQL.
type BucketRepository struct {
	db database.DB
}

// NewBucketRepository creates a new PostgreSQL-backed bucket repository.
func NewBucketRepository(db database.DB) *BucketRepository {
	return &BucketRepository{db: db}
}

// GetOrCreate returns the bucket for the canonical pair, creating it if
// absent. The upsert is a single statement keyed on the UNIQUE
// (user_lo, user_hi) index, so concurrent callers for the same pair all
// receive the same row; there is no read-then-write window.
func (r *BucketRepository) GetOrCreate(ctx context.Context, key domain.PairKey) (*domain.SharedBucket, bool, error) {
	candidateID := newBucketID()
	now := time.Now().UTC()

	// The no-op DO UPDATE makes the statement return the existing row on
	// conflict instead of returning nothing.
	query := `
		INSERT INTO shared_buckets (id, user_lo, user_hi, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (user_lo, user_hi) DO UPDATE SET user_lo = EXCLUDED.user_lo
		RETURNING id, user_lo, user_hi, created_at, updated_at`

	var (
		b      domain.SharedBucket
		lo, hi string
	)
	err := r.db.QueryRow(ctx, query, candidateID, key.Lo, key.Hi, now).Scan(
		&b.ID, &lo, &hi, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, false, storeErr("get or create bucket", err)
	}

	b.Participants = []string{lo, hi}
	created := b.ID == candidateID
	return &b, created, nil
}

// GetByID retrieves a bucket by its id.
func (r *BucketRepository) GetByID(ctx context.Context, id string) (*domain.SharedBucket, error) {
	query := `
		SELECT id, user_lo, user_hi, created_at, updated_at
		FROM shared_buckets
		WHERE id = $1`

	var (
		b      domain.SharedBucket
		lo, hi string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(&b.ID, &lo, &hi, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("bucket", id)
		}
		return nil, storeErr("get bucket by id", err)
	}

	b.Participants = []string{lo, hi}
	return &b, nil
}

// FindByUser returns all buckets the given user participates in, most
// recently touched first.
func (r *BucketRepository) FindByUser(ctx context.Context, userID string) ([]domain.SharedBucket, error) {
	query := `
		SELECT id, user_lo, user_hi, created_at, updated_at
		FROM shared_buckets
		WHERE user_lo = $1 OR user_hi = $1
		ORDER BY updated_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, storeErr("find buckets by user", err)
	}
	defer rows.Close()

	var buckets []domain.SharedBucket
	for rows.Next() {
		var (
			b      domain.SharedBucket
			lo, hi string
		)
		if err := rows.Scan(&b.ID, &lo, &hi, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan bucket row: %w", err)
		}
		b.Participants = []string{lo, hi}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bucket rows: %w", err)
	}

	if buckets == nil {
		buckets = []domain.SharedBucket{}
	}
	return buckets, nil
}

// DeleteByPair removes the bucket for the pair. Deleting a nonexistent
// bucket succeeds silently; bucket_comments cascade at the schema level.
func (r *BucketRepository) DeleteByPair(ctx context.Context, key domain.PairKey) error {
	query := `DELETE FROM shared_buckets WHERE user_lo = $1 AND user_hi = $2`

	if _, err := r.db.Exec(ctx, query, key.Lo, key.Hi); err != nil {
		return storeErr("delete bucket by pair", err)
	}
	return nil
}

// DeleteAllForUser removes every bucket the user participates in. Idempotent.
func (r *BucketRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	query := `DELETE FROM shared_buckets WHERE user_lo = $1 OR user_hi = $1`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return storeErr("delete buckets for user", err)
	}
	return nil
}

// AppendComment appends a comment to the bucket's log. The bigserial id is
// the serialization point for concurrent appends: the database assigns each
// row a unique, monotonically increasing position, so no append is lost or
// reordered. The timestamp is server-assigned. The same statement bumps the
// bucket's updated_at so FindByUser surfaces recently active buckets first.
func (r *BucketRepository) AppendComment(ctx context.Context, bucketID string, comment *domain.Comment) error {
	query := `
		WITH appended AS (
			INSERT INTO bucket_comments (bucket_id, user_id, nickname, profile_image, text, created_at)
			VALUES ($1, $2, $3, $4, $5, now())
			RETURNING id, created_at
		), touched AS (
			UPDATE shared_buckets SET updated_at = now() WHERE id = $1
		)
		SELECT id, created_at FROM appended`

	err := r.db.QueryRow(ctx, query,
		bucketID,
		comment.UserID,
		comment.Nickname,
		comment.ProfileImage,
		comment.Text,
	).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("bucket", bucketID)
		}
		return storeErr("append comment", err)
	}

	comment.BucketID = bucketID
	return nil
}

// ListComments returns the bucket's full comment log in append order.
// Ties on created_at are broken by insertion order.
func (r *BucketRepository) ListComments(ctx context.Context, bucketID string) ([]domain.Comment, error) {
	query := `
		SELECT id, bucket_id, user_id, nickname, profile_image, text, created_at
		FROM bucket_comments
		WHERE bucket_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, bucketID)
	if err != nil {
		return nil, storeErr("list comments", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.BucketID, &c.UserID, &c.Nickname, &c.ProfileImage, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comment rows: %w", err)
	}

	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}
