package realtime

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Session auth happens before the upgrade; cross-origin browser
	// clients are expected.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// InboundHandler processes a frame received from an authenticated
// connection.
type InboundHandler func(userID uint64, data []byte)

// Client is one websocket connection joined to a single group.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	group   string
	userID  uint64
	handler InboundHandler
}

// Serve upgrades the request and runs the connection until it closes.
// The caller must have authenticated the user already; handler may be
// nil for receive-only endpoints.
func Serve(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint64, group string, handler InboundHandler) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 16),
		group:   group,
		userID:  userID,
		handler: handler,
	}

	hub.register <- client

	go client.writePump()
	go client.readPump()
	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
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
				log.Printf("realtime: read error: %v", err)
			}
			return
		}
		if c.handler != nil {
			c.handler(c.userID, data)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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
