// Package digest posts a scheduled ranking summary of every bound player
// to configured groups.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/google/uuid"

	"github.com/tinyland-inc/beatclaw/pkg/beatleader"
	"github.com/tinyland-inc/beatclaw/pkg/bus"
	"github.com/tinyland-inc/beatclaw/pkg/store"
)

// Replier delivers a digest post to a group.
type Replier interface {
	Send(ctx context.Context, reply bus.Reply) error
}

// PlayerAPI is the profile lookup the digest needs.
type PlayerAPI interface {
	Player(ctx context.Context, id string) (*beatleader.Player, error)
}

// Options configures the scheduler.
type Options struct {
	Schedule string  // cron expression
	Groups   []int64 // destination groups
	API      PlayerAPI
	Bindings *store.Store
	Replier  Replier
}

// Scheduler evaluates the cron expression once a minute and posts the
// digest on due ticks. Failures are logged and skipped, never fatal.
type Scheduler struct {
	schedule string
	groups   []int64
	api      PlayerAPI
	bindings *store.Store
	replier  Replier
	gron     *gronx.Gronx

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewScheduler(opts Options) (*Scheduler, error) {
	g := gronx.New()
	if !g.IsValid(opts.Schedule) {
		return nil, fmt.Errorf("invalid digest schedule %q", opts.Schedule)
	}
	if len(opts.Groups) == 0 {
		return nil, fmt.Errorf("digest needs at least one destination group")
	}
	return &Scheduler{
		schedule: opts.Schedule,
		groups:   opts.Groups,
		api:      opts.API,
		bindings: opts.Bindings,
		replier:  opts.Replier,
		gron:     g,
	}, nil
}

// Start launches the background tick loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("digest scheduler already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(runCtx)

	slog.Info("digest scheduler started", "schedule", s.schedule, "groups", len(s.groups))
	return nil
}

// Stop cancels the loop and waits for it to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	slog.Info("digest scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-ticker.C:
			due, err := s.gron.IsDue(s.schedule, tick)
			if err != nil {
				slog.Warn("digest schedule evaluation failed", "error", err)
				continue
			}
			if due {
				s.runOnce(ctx)
			}
		}
	}
}

// runOnce builds and posts one digest.
func (s *Scheduler) runOnce(ctx context.Context) {
	runID := uuid.NewString()

	text, err := s.build(ctx)
	if err != nil {
		slog.Warn("digest build failed", "run_id", runID, "error", err)
		return
	}
	if text == "" {
		slog.Info("digest skipped, no bindings", "run_id", runID)
		return
	}

	for _, group := range s.groups {
		// No originating sender, so no mention prefix.
		if err := s.replier.Send(ctx, bus.Reply{Group: group, Text: text}); err != nil {
			slog.Warn("digest delivery failed", "run_id", runID, "group_id", group, "error", err)
		}
	}
	slog.Info("digest posted", "run_id", runID, "groups", len(s.groups))
}

// build renders the digest: every bound player's profile line, best country
// rank first. Players whose profile fetch fails are left out.
func (s *Scheduler) build(ctx context.Context) (string, error) {
	bindings, err := s.bindings.All(ctx)
	if err != nil {
		return "", fmt.Errorf("listing bindings: %w", err)
	}
	if len(bindings) == 0 {
		return "", nil
	}

	var players []*beatleader.Player
	for _, b := range bindings {
		p, err := s.api.Player(ctx, b.PlayerID)
		if err != nil {
			slog.Warn("digest profile fetch failed", "player_id", b.PlayerID, "error", err)
			continue
		}
		players = append(players, p)
	}
	if len(players) == 0 {
		return "", nil
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].CountryRank < players[j].CountryRank
	})

	lines := make([]string, 0, len(players)+1)
	lines = append(lines, "今日榜单")
	for i, p := range players {
		lines = append(lines, fmt.Sprintf("%02d. [%s] %s %.2fpp 国区 %d 全球 %d",
			i+1, p.Country, p.Name, p.PP, p.CountryRank, p.Rank))
	}
	return strings.Join(lines, "\n"), nil
}
