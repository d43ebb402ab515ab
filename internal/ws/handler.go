package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/Team-WishU/wishu-backend/internal/domain"
	"github.com/Team-WishU/wishu-backend/pkg/middleware"
)

// persistTimeout bounds the append of one realtime message. Detached from
// the connection context so a dropped socket cannot abort a write that is
// already on its way to the log.
const persistTimeout = 5 * time.Second

// BucketAccess is the slice of the bucket service the realtime layer needs.
type BucketAccess interface {
	AuthorizeParticipant(ctx context.Context, callerID, bucketID string) (*domain.SharedBucket, error)
	AppendComment(ctx context.Context, callerID, bucketID, text string) (*domain.Comment, error)
}

// Handler upgrades HTTP requests to websocket connections and dispatches
// room traffic.
type Handler struct {
	hub      *Hub
	buckets  BucketAccess
	validate middleware.TokenValidator
	logger   *slog.Logger

	// roomLocks serializes persist+broadcast per bucket so events reach the
	// room in exactly the order their comments hit the log.
	roomLocks struct {
		sync.Mutex
		m map[string]*sync.Mutex
	}
}

// NewHandler creates a new websocket handler.
func NewHandler(hub *Hub, buckets BucketAccess, validate middleware.TokenValidator, logger *slog.Logger) *Handler {
	h := &Handler{
		hub:      hub,
		buckets:  buckets,
		validate: validate,
		logger:   logger,
	}
	h.roomLocks.m = map[string]*sync.Mutex{}
	return h
}

// inbound message payloads

type joinRoomData struct {
	BucketID string `json:"bucketId"`
}

type sendMessageData struct {
	Text string `json:"text"`
}

type inboundEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// outbound message payloads

type newMessageData struct {
	UserID       string `json:"userId"`
	Nickname     string `json:"nickname"`
	ProfileImage string `json:"profileImage"`
	Text         string `json:"text"`
	CreatedAt    string `json:"createdAt"`
}

type showTypingData struct {
	Nickname string `json:"nickname"`
}

type errorData struct {
	Message string `json:"message"`
}

// ServeHTTP authenticates the handshake via the token query parameter and
// runs the connection's read loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := h.validate(token)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket accept failed",
			slog.String("error", err.Error()),
		)
		return
	}

	client := NewClient(conn, claims.UserID, claims.Nickname, "")
	h.hub.Add(client)
	go client.WriteLoop()
	go client.KeepAlive()

	h.logger.InfoContext(r.Context(), "websocket connected",
		slog.String("user_id", client.UserID),
	)

	h.readLoop(r.Context(), client)

	room := h.hub.Room(client)
	h.hub.Remove(client)
	h.releaseRoomLock(room)
	h.logger.InfoContext(r.Context(), "websocket disconnected",
		slog.String("user_id", client.UserID),
	)
}

func (h *Handler) readLoop(ctx context.Context, client *Client) {
	for {
		var ev inboundEvent
		if err := wsjson.Read(ctx, client.conn, &ev); err != nil {
			return
		}
		h.dispatch(ctx, client, ev)
	}
}

func (h *Handler) dispatch(ctx context.Context, client *Client, ev inboundEvent) {
	switch ev.Type {
	case "joinRoom":
		var data joinRoomData
		if err := json.Unmarshal(ev.Data, &data); err != nil || data.BucketID == "" {
			client.enqueue(Event{Type: "error", Data: errorData{Message: "joinRoom requires a bucketId"}})
			return
		}
		h.handleJoinRoom(ctx, client, data.BucketID)

	case "sendMessage":
		var data sendMessageData
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			client.enqueue(Event{Type: "error", Data: errorData{Message: "malformed sendMessage"}})
			return
		}
		h.handleSendMessage(client, data.Text)

	case "typing":
		h.handleTyping(client)

	default:
		client.enqueue(Event{Type: "error", Data: errorData{Message: "unknown event type"}})
	}
}

// handleJoinRoom admits the client to the bucket's room after checking it is
// one of the two participants. Joining leaves any previous room.
func (h *Handler) handleJoinRoom(ctx context.Context, client *Client, bucketID string) {
	if _, err := h.buckets.AuthorizeParticipant(ctx, client.UserID, bucketID); err != nil {
		client.enqueue(Event{Type: "error", Data: errorData{Message: "cannot join this room"}})
		return
	}

	previous := h.hub.Room(client)
	h.hub.JoinRoom(client, bucketID)
	if previous != "" && previous != bucketID {
		h.releaseRoomLock(previous)
	}

	h.logger.InfoContext(ctx, "client joined room",
		slog.String("user_id", client.UserID),
		slog.String("bucket_id", bucketID),
	)
}

// handleSendMessage persists the message as a bucket comment and then
// broadcasts it to the room, sender included. The room lock holds across
// both steps: no broadcast happens for an unpersisted message, and two
// messages cannot reach the room in an order different from the log.
func (h *Handler) handleSendMessage(client *Client, text string) {
	room := h.hub.Room(client)
	if room == "" {
		client.enqueue(Event{Type: "error", Data: errorData{Message: "join a room first"}})
		return
	}

	lock := h.roomLock(room)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	comment, err := h.buckets.AppendComment(ctx, client.UserID, room, text)
	if err != nil {
		h.logger.WarnContext(ctx, "realtime message rejected",
			slog.String("user_id", client.UserID),
			slog.String("bucket_id", room),
			slog.String("error", err.Error()),
		)
		client.enqueue(Event{Type: "error", Data: errorData{Message: "message not delivered"}})
		return
	}

	h.hub.Broadcast(room, Event{Type: "newMessage", Data: newMessageData{
		UserID:       comment.UserID,
		Nickname:     comment.Nickname,
		ProfileImage: comment.ProfileImage,
		Text:         comment.Text,
		CreatedAt:    comment.CreatedAt.UTC().Format(time.RFC3339),
	}})
}

// handleTyping notifies everyone else in the room. Nothing is persisted.
func (h *Handler) handleTyping(client *Client) {
	room := h.hub.Room(client)
	if room == "" {
		return
	}
	h.hub.BroadcastExcept(room, client, Event{Type: "showTyping", Data: showTypingData{
		Nickname: client.Nickname,
	}})
}

func (h *Handler) roomLock(room string) *sync.Mutex {
	h.roomLocks.Lock()
	defer h.roomLocks.Unlock()

	lock, ok := h.roomLocks.m[room]
	if !ok {
		lock = &sync.Mutex{}
		h.roomLocks.m[room] = lock
	}
	return lock
}

// releaseRoomLock drops the room's lock once the room has emptied, so the
// lock map does not grow with every bucket the process has ever seen.
func (h *Handler) releaseRoomLock(room string) {
	if room == "" || h.hub.RoomSize(room) > 0 {
		return
	}

	h.roomLocks.Lock()
	defer h.roomLocks.Unlock()
	delete(h.roomLocks.m, room)
}
