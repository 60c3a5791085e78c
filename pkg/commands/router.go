package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tinyland-inc/beatclaw/pkg/bus"
)

// Replier delivers handler output toward its destination.
type Replier interface {
	Send(ctx context.Context, reply bus.Reply) error
}

// Router executes commands popped off the bus: one at a time, strictly in
// arrival order. It is the consumer side of the pipeline.
type Router struct {
	registry *Registry
	bus      *bus.MessageBus
	replier  Replier
	meter    *Meter
}

func NewRouter(registry *Registry, b *bus.MessageBus, replier Replier) *Router {
	return &Router{
		registry: registry,
		bus:      b,
		replier:  replier,
		meter:    NewMeter(),
	}
}

func (rt *Router) Meter() *Meter {
	return rt.meter
}

// Run consumes the bus until it reports completion. Cancellation is an
// orderly stop: commands already accepted still execute, and their replies
// must not die with the parent context, hence WithoutCancel for dispatch.
func (rt *Router) Run(ctx context.Context) error {
	slog.Info("command router started")
	dispatchCtx := context.WithoutCancel(ctx)
	for {
		cmd, ok := rt.bus.Consume(ctx)
		if !ok {
			slog.Info("command router stopped")
			return nil
		}
		rt.Dispatch(dispatchCtx, cmd)
	}
}

// Dispatch executes one command synchronously: handler first, then reply
// delivery. Only parsed commands reach the bus, so an unregistered name
// here is a programming error and panics.
func (rt *Router) Dispatch(ctx context.Context, cmd bus.Command) {
	if len(cmd.Argv) == 0 {
		panic("commands: dispatch of empty argv")
	}
	name := cmd.Argv[0]
	entry, ok := rt.registry.Get(name)
	if !ok {
		panic(fmt.Sprintf("commands: dispatch of unregistered command %q", name))
	}

	inv := Invocation{
		Args:    cmd.Argv[1:],
		Sender:  cmd.Sender,
		Group:   cmd.Group,
		Targets: cmd.Targets,
	}

	start := time.Now()
	reply, err := entry.Handler(ctx, inv)
	rt.meter.Record(name, time.Since(start), err)
	if err != nil {
		slog.Error("command failed", "command", name, "sender", cmd.Sender, "error", err)
		return
	}
	if reply == "" {
		return
	}
	if cmd.Group == 0 && cmd.Sender == 0 {
		// nowhere to deliver
		return
	}

	out := bus.Reply{Group: cmd.Group, User: cmd.Sender, Text: reply}
	if err := rt.replier.Send(ctx, out); err != nil {
		slog.Warn("reply delivery failed",
			"command", name, "group_id", out.Group, "user_id", out.User, "error", err)
	}
}
