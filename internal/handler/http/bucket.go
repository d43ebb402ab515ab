package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Team-WishU/wishu-backend/internal/service"
	"github.com/Team-WishU/wishu-backend/pkg/httputil"
	"github.com/Team-WishU/wishu-backend/pkg/middleware"
	"github.com/Team-WishU/wishu-backend/pkg/validator"
)

// BucketHandler handles HTTP requests for shared buckets: the pairwise
// get-or-create entry point, the live shared wishlist, and the comment log.
type BucketHandler struct {
	service *service.BucketService
	logger  *slog.Logger
}

// NewBucketHandler creates a new bucket HTTP handler.
func NewBucketHandler(svc *service.BucketService, logger *slog.Logger) *BucketHandler {
	return &BucketHandler{service: svc, logger: logger}
}

// PostCommentRequest is the JSON request body for posting a comment.
type PostCommentRequest struct {
	Text string `json:"text" validate:"required,max=1000"`
}

// Wishlist handles GET /api/v1/shared-buckets/wishlist?friendId=
//
// The backing bucket is created on first visit. The operation is idempotent:
// both participants land on the same bucket no matter who calls first, or
// whether they call at the same time.
func (h *BucketHandler) Wishlist(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())
	friendID := r.URL.Query().Get("friendId")

	view, err := h.service.WishlistWithFriend(r.Context(), callerID, friendID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// FindMine handles GET /api/v1/shared-buckets/my
func (h *BucketHandler) FindMine(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())

	summaries, err := h.service.FindMine(r.Context(), callerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]any{"buckets": summaries},
	})
}

// SharedWishlist handles GET /api/v1/shared-buckets/{id}/wishlist
//
// The wishlist is computed live from both participants' current wishes, so
// it reflects wish and unwish actions immediately.
func (h *BucketHandler) SharedWishlist(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())
	bucketID := chi.URLParam(r, "id")

	wishlist, err := h.service.SharedWishlist(r.Context(), callerID, bucketID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlist})
}

// ListComments handles GET /api/v1/shared-buckets/{id}/comments
func (h *BucketHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())
	bucketID := chi.URLParam(r, "id")

	comments, err := h.service.ListComments(r.Context(), callerID, bucketID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: comments})
}

// PostComment handles POST /api/v1/shared-buckets/{id}/comment
func (h *BucketHandler) PostComment(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())
	bucketID := chi.URLParam(r, "id")

	var req PostCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	posted, err := h.service.PostComment(r.Context(), callerID, bucketID, req.Text)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: posted})
}
