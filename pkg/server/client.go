package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound frame queue per client.
	sendQueueSize = 64
)

// Client is one connected socket and its session state. user and roomID are
// written only by the owning read loop; other goroutines reach the client
// solely through its send queue.
type Client struct {
	srv  *Server
	conn *websocket.Conn
	log  slog.Logger

	send chan []byte
	done chan struct{}
	once sync.Once

	user   *User
	roomID string
}

func newClient(srv *Server, conn *websocket.Conn) *Client {
	return &Client{
		srv:  srv,
		conn: conn,
		log:  srv.wsLog,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
}

// run drives the connection until the peer goes away. It blocks in the read
// loop; the write pump runs alongside it.
func (c *Client) run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// sendEvent queues a frame for the peer. Sends are best-effort: a closed or
// saturated client drops the frame rather than blocking the caller.
func (c *Client) sendEvent(event string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		c.log.Errorf("marshal %s payload: %v", event, err)
		return
	}
	frame, err := json.Marshal(Frame{Event: event, Payload: raw})
	if err != nil {
		c.log.Errorf("marshal %s frame: %v", event, err)
		return
	}
	select {
	case <-c.done:
	case c.send <- frame:
	default:
		c.log.Warnf("dropping %s frame: client queue full", event)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.srv.handleDisconnect(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debugf("read: %v", err)
			}
			return
		}
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.log.Warnf("bad frame from %s: %v", c.conn.RemoteAddr(), err)
			continue
		}
		c.dispatch(frame)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
