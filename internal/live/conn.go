// Package live is the per-chat streaming connection.
//
// One Conn is open per active chat. A reader goroutine decodes every frame at
// the boundary into an Event and hands it to the app through Events(); frames
// that fail to decode are logged and dropped without closing the connection.
// A dropped connection is not re-established.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zhubert/messly/internal/errors"
	"github.com/zhubert/messly/internal/logger"
	"github.com/zhubert/messly/internal/metrics"
)

const (
	eventBuffer  = 64
	writeTimeout = 10 * time.Second
)

// Channel is an open live connection.
type Channel interface {
	ChatID() int
	Events() <-chan Event
	Send(Outbound) error
	Close() error
	Err() error
}

// Dialer opens live connections.
type Dialer struct {
	urlFor func(chatID int, token string) string
	ws     *websocket.Dialer
}

// NewDialer returns a dialer. urlFor builds the connection target, usually
// api.Client.LiveURL.
func NewDialer(urlFor func(chatID int, token string) string) *Dialer {
	return &Dialer{
		urlFor: urlFor,
		ws: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 15 * time.Second,
		},
	}
}

// Dial opens the live channel for chatID.
func (d *Dialer) Dial(ctx context.Context, chatID int, token string) (Channel, error) {
	const op errors.Op = "live.Dial"

	ws, resp, err := d.ws.DialContext(ctx, d.urlFor(chatID, token), nil)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, errors.Unauthorized(op, "live channel rejected the token")
		}
		return nil, errors.NetworkFailed(op, err)
	}
	return newConn(chatID, ws), nil
}

// Conn is one open websocket for one chat.
type Conn struct {
	chatID int
	ws     *websocket.Conn
	events chan Event
	done   chan struct{}
	log    *slog.Logger

	closeOnce sync.Once
	writeMu   sync.Mutex

	errMu sync.Mutex
	err   error
}

func newConn(chatID int, ws *websocket.Conn) *Conn {
	c := &Conn{
		chatID: chatID,
		ws:     ws,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
		log:    logger.WithComponent("live").With("chatID", chatID),
	}
	metrics.IncLiveActive()
	c.log.Info("live channel opened")
	go c.readLoop()
	return c
}

// ChatID returns the chat this connection belongs to.
func (c *Conn) ChatID() int {
	return c.chatID
}

// Events yields decoded inbound events. It is closed when the connection
// ends, either by Close or because the server dropped it.
func (c *Conn) Events() <-chan Event {
	return c.events
}

// Err returns the error that ended the connection, or nil if it is open or
// was closed locally.
func (c *Conn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *Conn) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.errMu.Lock()
				c.err = errors.NetworkFailed("live.Read", err)
				c.errMu.Unlock()
				c.log.Warn("live channel dropped", "error", err)
			}
			return
		}

		ev, err := Decode(data)
		if err != nil {
			metrics.IncLiveMalformed()
			c.log.Warn("dropping malformed payload", "error", err, "bytes", len(data))
			continue
		}
		metrics.IncLiveEvent("in", ev.Kind())

		select {
		case c.events <- ev:
		case <-c.done:
			return
		}
	}
}

// Send writes one payload. Writes are serialized.
func (c *Conn) Send(p Outbound) error {
	const op errors.Op = "live.Send"

	select {
	case <-c.done:
		return errors.E(op, errors.KindNetwork, "live channel is closed")
	default:
	}

	data, err := json.Marshal(p)
	if err != nil {
		return errors.E(op, errors.KindInvalid, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.NetworkFailed(op, err)
	}
	metrics.IncLiveEvent("out", p.Kind())
	return nil
}

// Close ends the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()

		err = c.ws.Close()
		metrics.DecLiveActive()
		c.log.Info("live channel closed")
	})
	return err
}
