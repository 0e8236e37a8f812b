package server

import (
	"context"
	"time"

	cws "github.com/coder/websocket"
)

const (
	// Clients only send small requests such as system.getVersion.
	wsReadLimit = 4 << 10
	// A write that takes longer fails the push and drops the client.
	wsWriteTimeout = 5 * time.Second
)

// wsChannel carries JSON-RPC messages over one feed WebSocket. It
// implements the jrpc2 channel.Channel interface.
type wsChannel struct {
	conn *cws.Conn
	ctx  context.Context
}

func newWSChannel(ctx context.Context, conn *cws.Conn) *wsChannel {
	conn.SetReadLimit(wsReadLimit)
	return &wsChannel{conn: conn, ctx: ctx}
}

func (c *wsChannel) Send(data []byte) error {
	ctx, cancel := context.WithTimeout(c.ctx, wsWriteTimeout)
	defer cancel()
	return c.conn.Write(ctx, cws.MessageText, data)
}

func (c *wsChannel) Recv() ([]byte, error) {
	_, data, err := c.conn.Read(c.ctx)
	return data, err
}

// Close ends the session with status 1001, since the feed only closes
// connections when shutting down or dropping a client.
func (c *wsChannel) Close() error {
	return c.conn.Close(cws.StatusGoingAway, "iback feed closed")
}
