package channels

import (
	"context"
	"sync/atomic"

	"github.com/tinyland-inc/beatclaw/pkg/bus"
	"github.com/tinyland-inc/beatclaw/pkg/onebot"
)

type Channel interface {
	Name() string
	// Run blocks, feeding inbound commands to the bus until ctx is
	// cancelled (returns nil) or the transport fails (returns the error).
	Run(ctx context.Context) error
	Send(ctx context.Context, reply bus.Reply) error
	IsRunning() bool
}

// Parser turns flattened message text into a validated argv, or nil when
// the text is not an invocation of a registered command.
type Parser interface {
	Parse(text string) []string
}

// BaseChannel carries the pieces every channel needs: identity, the shared
// message bus, and the allow-list gate.
type BaseChannel struct {
	name        string
	bus         *bus.MessageBus
	running     atomic.Bool
	allowGroups map[int64]struct{}
	allowUsers  map[int64]struct{}
}

func NewBaseChannel(name string, b *bus.MessageBus, groups, users []int64) *BaseChannel {
	bc := &BaseChannel{
		name:        name,
		bus:         b,
		allowGroups: make(map[int64]struct{}, len(groups)),
		allowUsers:  make(map[int64]struct{}, len(users)),
	}
	for _, id := range groups {
		bc.allowGroups[id] = struct{}{}
	}
	for _, id := range users {
		bc.allowUsers[id] = struct{}{}
	}
	return bc
}

func (c *BaseChannel) Name() string {
	return c.name
}

func (c *BaseChannel) IsRunning() bool {
	return c.running.Load()
}

func (c *BaseChannel) SetRunning(running bool) {
	c.running.Store(running)
}

// AllowGroup reports whether messages from the group may enter the
// pipeline. Membership is strict: an empty allow-list enables nothing.
func (c *BaseChannel) AllowGroup(id int64) bool {
	_, ok := c.allowGroups[id]
	return ok
}

// AllowUser reports whether private messages from the user may enter the
// pipeline. Membership is strict: an empty allow-list enables nothing.
func (c *BaseChannel) AllowUser(id int64) bool {
	_, ok := c.allowUsers[id]
	return ok
}

// Allowed gates an event by scope: group messages check the group list,
// private messages the user list, anything else is denied.
func (c *BaseChannel) Allowed(scope string, groupID, userID int64) bool {
	switch scope {
	case onebot.ScopeGroup:
		return c.AllowGroup(groupID)
	case onebot.ScopePrivate:
		return c.AllowUser(userID)
	default:
		return false
	}
}

func (c *BaseChannel) Publish(cmd bus.Command) error {
	return c.bus.Publish(cmd)
}
