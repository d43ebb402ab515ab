package http

import (
	"log/slog"
	"net/http"

	"github.com/Team-WishU/wishu-backend/internal/service"
	"github.com/Team-WishU/wishu-backend/pkg/httputil"
	"github.com/Team-WishU/wishu-backend/pkg/middleware"
	"github.com/Team-WishU/wishu-backend/pkg/validator"
)

// ChatbotHandler handles HTTP requests for the style recommendation chatbot.
type ChatbotHandler struct {
	service *service.ChatbotService
	logger  *slog.Logger
}

// NewChatbotHandler creates a new chatbot HTTP handler.
func NewChatbotHandler(svc *service.ChatbotService, logger *slog.Logger) *ChatbotHandler {
	return &ChatbotHandler{service: svc, logger: logger}
}

// ChatMessageRequest is the JSON request body for a chatbot message.
type ChatMessageRequest struct {
	Message string `json:"message" validate:"required,max=500"`
}

// Message handles POST /api/v1/chatbot/messages
func (h *ChatbotHandler) Message(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())

	var req ChatMessageRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	replies, err := h.service.ProcessMessage(r.Context(), callerID, req.Message)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: replies})
}

// Reset handles DELETE /api/v1/chatbot/session
func (h *ChatbotHandler) Reset(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.UserIDFromContext(r.Context())

	if err := h.service.Reset(r.Context(), callerID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: map[string]string{"status": "reset"},
	})
}
