package transport

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/wiremix/mixerd/internal/pwire"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 32 * 1024
	sendQueueSize  = 64
)

// CommandSink accepts Commands decoded off a client's WebSocket and hands
// them to the session loop. Satisfied by *session.Session.
type CommandSink interface {
	Submit(pwire.Command)
}

// Client is one connected UI's WebSocket connection: a read pump decoding
// inbound Commands and a write pump draining the Hub's broadcasts onto the
// socket, communicating only through the send channel so the socket itself
// is only ever touched by the write pump (gorilla/websocket connections are
// not safe for concurrent writers).
type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	sink CommandSink
	log  zerolog.Logger
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades r to a WebSocket, registers a Client on hub, and blocks
// running its read/write pumps until the connection closes. sink receives
// every Command the client sends; an initial View snapshot is pushed
// immediately so the client never has to wait for the next event to render.
func ServeWS(hub *Hub, sink CommandSink, initialView func() []byte, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		c := &Client{
			hub:  hub,
			conn: conn,
			send: make(chan []byte, sendQueueSize),
			sink: sink,
			log:  log,
		}
		c.id = hub.register(c)
		log.Info().Uint64("client", c.id).Str("remote", r.RemoteAddr).Msg("websocket client connected")

		if initialView != nil {
			select {
			case c.send <- initialView():
			default:
			}
		}

		go c.writePump()
		c.readPump()
	}
}

// readPump decodes inbound Commands until the connection errors or closes.
// Runs on the goroutine that called ServeWS.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c.id)
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
				c.log.Warn().Err(err).Uint64("client", c.id).Msg("websocket read error")
			}
			return
		}

		cmd, err := decodeCommand(data)
		if err != nil {
			c.log.Warn().Err(err).Uint64("client", c.id).Msg("discarding malformed command")
			continue
		}
		c.sink.Submit(cmd)
	}
}

// writePump drains send and forwards pings, owning the only writer to conn.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
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
