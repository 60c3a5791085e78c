// Package handlers implements the bot's business commands: help, me, and
// rkup. Handlers talk to BeatLeader and the bindings store; reply delivery
// stays with the router.
package handlers

import (
	"context"
	"fmt"

	"github.com/tinyland-inc/beatclaw/pkg/beatleader"
	"github.com/tinyland-inc/beatclaw/pkg/commands"
	"github.com/tinyland-inc/beatclaw/pkg/store"
)

// PlayerAPI is the slice of the BeatLeader client the handlers use.
type PlayerAPI interface {
	Player(ctx context.Context, id string) (*beatleader.Player, error)
	Players(ctx context.Context, q beatleader.PlayersQuery) (*beatleader.PlayersPage, error)
	AccGraph(ctx context.Context, id string) ([]beatleader.AccPoint, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// Options wires the handler set's collaborators.
type Options struct {
	BeatLeader    PlayerAPI
	Bindings      *store.Store
	SearchCountry string // countries filter for keyword search
	SearchLimit   int    // max candidates per search
}

// Set holds the handlers' shared state.
type Set struct {
	registry      *commands.Registry
	api           PlayerAPI
	bindings      *store.Store
	searchCountry string
	searchLimit   int
}

// Register builds the handler set and registers every command on the
// registry. Must run before the pipeline starts; the router table is
// immutable afterwards.
func Register(registry *commands.Registry, opts Options) (*Set, error) {
	if opts.BeatLeader == nil {
		return nil, fmt.Errorf("handlers: beatleader client is required")
	}
	if opts.Bindings == nil {
		return nil, fmt.Errorf("handlers: bindings store is required")
	}

	s := &Set{
		registry:      registry,
		api:           opts.BeatLeader,
		bindings:      opts.Bindings,
		searchCountry: opts.SearchCountry,
		searchLimit:   opts.SearchLimit,
	}
	if s.searchCountry == "" {
		s.searchCountry = "cn"
	}
	if s.searchLimit <= 0 {
		s.searchLimit = 5
	}

	prefix := registry.Prefix()
	entries := []struct {
		name    string
		brief   string
		usage   string
		handler commands.Handler
	}{
		{
			name:    "help",
			brief:   fmt.Sprintf("显示帮助信息，输入 %shelp <命令> 显示详细信息", prefix),
			usage:   fmt.Sprintf("%shelp [命令]", prefix),
			handler: s.Help,
		},
		{
			name:    "me",
			brief:   "查询或关联我的 BL 账号",
			usage:   fmt.Sprintf("%sme [UID | 关键字]", prefix),
			handler: s.Me,
		},
		{
			name:    "rkup",
			brief:   "查询打榜相关信息",
			usage:   fmt.Sprintf("%srkup [排名 | ±排名 | 数值pp | +数值pp] [歌曲数 | 单曲pp]", prefix),
			handler: s.RankUp,
		},
	}
	for _, e := range entries {
		if err := registry.Register(e.name, e.brief, e.usage, e.handler); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// notBoundReply points an unbound sender at the help command.
func (s *Set) notBoundReply() string {
	return fmt.Sprintf("账号暂未关联，请输入 %shelp 查询帮助信息", s.registry.Prefix())
}
