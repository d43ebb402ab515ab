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

// FriendHandler handles HTTP requests for friendships and friend requests.
type FriendHandler struct {
	service *service.FriendService
	logger  *slog.Logger
}

// NewFriendHandler creates a new friend HTTP handler.
func NewFriendHandler(svc *service.FriendService, logger *slog.Logger) *FriendHandler {
	return &FriendHandler{service: svc, logger: logger}
}

// SendRequestRequest is the JSON request body for sending a friend request.
type SendRequestRequest struct {
	ToUserID string `json:"toUserId" validate:"required"`
}

// SendRequest handles POST /api/v1/friends/requests
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())

	var req SendRequestRequest
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

	if err := h.service.SendRequest(r.Context(), callerID, req.ToUserID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{
		Data: map[string]string{"toUserId": req.ToUserID, "status": "requested"},
	})
}

// AcceptRequest handles POST /api/v1/friends/requests/{fromUserId}/accept
func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())
	fromUserID := chi.URLParam(r, "fromUserId")

	if err := h.service.AcceptRequest(r.Context(), callerID, fromUserID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"fromUserId": fromUserID, "status": "accepted"},
	})
}

// RejectRequest handles DELETE /api/v1/friends/requests/{fromUserId}
func (h *FriendHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())
	fromUserID := chi.URLParam(r, "fromUserId")

	if err := h.service.RejectRequest(r.Context(), callerID, fromUserID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"fromUserId": fromUserID, "status": "rejected"},
	})
}

// CancelRequest handles DELETE /api/v1/friends/requests/outgoing/{toUserId}
func (h *FriendHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())
	toUserID := chi.URLParam(r, "toUserId")

	if err := h.service.CancelRequest(r.Context(), callerID, toUserID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"toUserId": toUserID, "status": "cancelled"},
	})
}

// ListIncoming handles GET /api/v1/friends/requests/incoming
func (h *FriendHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())

	requests, err := h.service.ListIncoming(r.Context(), callerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: requests})
}

// ListOutgoing handles GET /api/v1/friends/requests/outgoing
func (h *FriendHandler) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())

	requests, err := h.service.ListOutgoing(r.Context(), callerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: requests})
}

// ListFriends handles GET /api/v1/friends
func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())

	friends, err := h.service.ListFriends(r.Context(), callerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: friends})
}

// RemoveFriend handles DELETE /api/v1/friends/{friendId}
//
// Removing a friend also deletes the pair's shared bucket.
func (h *FriendHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())
	friendID := chi.URLParam(r, "friendId")

	if err := h.service.RemoveFriend(r.Context(), callerID, friendID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"friendId": friendID, "status": "removed"},
	})
}
