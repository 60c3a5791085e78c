// Package channels connects the bot to its chat transport and gates what
// may enter the command pipeline.
package channels

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tinyland-inc/beatclaw/pkg/bus"
	"github.com/tinyland-inc/beatclaw/pkg/onebot"
)

const handshakeTimeout = 10 * time.Second

// OneBotChannel consumes a OneBot v11 WebSocket event stream (go-cqhttp
// style) and replies through the gateway's HTTP message API. It is the
// producer side of the pipeline: every accepted frame becomes exactly one
// bus command.
type OneBotChannel struct {
	*BaseChannel
	wsURL  string
	token  string
	api    *onebot.APIClient
	parser Parser

	mu   sync.Mutex
	conn *websocket.Conn
}

type OneBotOptions struct {
	WSURL       string
	AccessToken string
	API         *onebot.APIClient
	Parser      Parser
	AllowGroups []int64
	AllowUsers  []int64
}

func NewOneBotChannel(b *bus.MessageBus, opts OneBotOptions) (*OneBotChannel, error) {
	if opts.WSURL == "" {
		return nil, fmt.Errorf("onebot ws url is required")
	}
	if opts.API == nil {
		return nil, fmt.Errorf("onebot api client is required")
	}
	if opts.Parser == nil {
		return nil, fmt.Errorf("command parser is required")
	}

	return &OneBotChannel{
		BaseChannel: NewBaseChannel("onebot", b, opts.AllowGroups, opts.AllowUsers),
		wsURL:       opts.WSURL,
		token:       opts.AccessToken,
		api:         opts.API,
		parser:      opts.Parser,
	}, nil
}

// Run dials the event stream and pumps frames into the bus until ctx is
// cancelled, which returns nil. A connection loss is fatal: the error is
// returned so the caller stops the process instead of limping along.
func (c *OneBotChannel) Run(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.SetRunning(true)
	defer c.SetRunning(false)

	// ReadMessage takes no context; closing the socket on cancel is what
	// unblocks a pending read.
	watcherDone := make(chan struct{})
	defer close(watcherDone)
	go func() {
		select {
		case <-ctx.Done():
			c.closeConn()
		case <-watcherDone:
		}
	}()

	slog.Info("onebot event stream connected", "url", c.wsURL)

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("onebot event stream lost: %w", err)
		}
		c.handleFrame(frame)
	}
}

func (c *OneBotChannel) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	var header http.Header
	if c.token != "" {
		header = http.Header{}
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := dialer.DialContext(ctx, c.wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("dial onebot event stream %s: %w", c.wsURL, err)
	}
	return conn, nil
}

func (c *OneBotChannel) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// handleFrame runs one frame through decode, gate, translate, parse.
// Whatever falls out along the way is dropped without a reply.
func (c *OneBotChannel) handleFrame(frame []byte) {
	ev, err := onebot.DecodeEvent(frame)
	if err != nil {
		slog.Debug("onebot frame discarded", "error", err)
		return
	}

	if !c.Allowed(ev.MessageType, ev.GroupID, ev.UserID) {
		slog.Debug("onebot message rejected by allowlist",
			"scope", ev.MessageType, "group_id", ev.GroupID, "user_id", ev.UserID)
		return
	}

	raw, err := onebot.Translate(ev)
	if err != nil {
		slog.Debug("onebot message dropped", "user_id", ev.UserID, "error", err)
		return
	}

	argv := c.parser.Parse(raw.Text)
	if argv == nil {
		return
	}

	var group int64
	if ev.MessageType == onebot.ScopeGroup {
		group = ev.GroupID
	}

	cmd := bus.Command{
		Group:   group,
		Sender:  raw.Sender,
		Argv:    argv,
		Targets: raw.Targets,
	}
	if err := c.Publish(cmd); err != nil {
		slog.Warn("inbound command dropped", "command", argv[0], "error", err)
	}
}

// Send delivers a handler reply to its destination. Group replies mention
// the invoking user; private replies go straight to them.
func (c *OneBotChannel) Send(ctx context.Context, reply bus.Reply) error {
	if reply.Group != 0 {
		return c.api.SendGroupMsg(ctx, reply.Group, reply.Text, reply.User)
	}
	return c.api.SendPrivateMsg(ctx, reply.User, reply.Text)
}
