package ws

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
	pingInterval = 25 * time.Second
	pingTimeout  = 5 * time.Second
)

// Client is one websocket connection with the authenticated identity it
// carries. The identity fields are snapshots from the access token.
type Client struct {
	UserID       string
	Nickname     string
	ProfileImage string

	conn *websocket.Conn
	send chan Event
	room string

	ctx    context.Context
	cancel context.CancelFunc
}

// NewClient wraps an accepted connection. The caller starts WriteLoop and
// KeepAlive.
func NewClient(conn *websocket.Conn, userID, nickname, profileImage string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		UserID:       userID,
		Nickname:     nickname,
		ProfileImage: profileImage,
		conn:         conn,
		send:         make(chan Event, sendBuffer),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// WriteLoop drains the send buffer onto the connection until the client
// stops. Events enqueued after a write failure are dropped with the
// connection; the read side notices and tears the client down.
func (c *Client) WriteLoop() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case ev := <-c.send:
			writeCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			_ = wsjson.Write(writeCtx, c.conn, ev)
			cancel()
		}
	}
}

// KeepAlive pings the connection until the client stops.
func (c *Client) KeepAlive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), pingTimeout)
			_ = c.conn.Ping(pingCtx)
			cancel()
		}
	}
}

// enqueue offers the event to the send buffer. A full buffer drops the
// event instead of blocking the broadcaster.
func (c *Client) enqueue(ev Event) {
	select {
	case c.send <- ev:
	default:
	}
}

func (c *Client) stop() {
	c.cancel()
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, "bye")
	}
}
