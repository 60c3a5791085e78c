package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/tinyland-inc/beatclaw/cmd/beatclaw/internal"
	"github.com/tinyland-inc/beatclaw/pkg/beatleader"
	"github.com/tinyland-inc/beatclaw/pkg/bus"
	"github.com/tinyland-inc/beatclaw/pkg/channels"
	"github.com/tinyland-inc/beatclaw/pkg/commands"
	"github.com/tinyland-inc/beatclaw/pkg/digest"
	"github.com/tinyland-inc/beatclaw/pkg/handlers"
	"github.com/tinyland-inc/beatclaw/pkg/onebot"
	"github.com/tinyland-inc/beatclaw/pkg/store"
)

// gatewayCmd wires the pipeline and runs it until a termination signal or
// a fatal transport error.
func gatewayCmd(debug bool) error {
	if debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		fmt.Println("Debug logging enabled")
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	bindings, err := store.Open(cfg.BindingsPath())
	if err != nil {
		return fmt.Errorf("error opening bindings store: %w", err)
	}
	defer bindings.Close()

	bl := beatleader.New(beatleader.Config{
		BaseURL: cfg.BeatLeader.BaseURL,
		Timeout: cfg.BeatLeader.Timeout(),
	})

	registry := commands.NewRegistry(cfg.Commands.Prefix)
	if _, err := handlers.Register(registry, handlers.Options{
		BeatLeader:    bl,
		Bindings:      bindings,
		SearchCountry: cfg.BeatLeader.SearchCountry,
		SearchLimit:   cfg.BeatLeader.SearchLimit,
	}); err != nil {
		return fmt.Errorf("error registering commands: %w", err)
	}

	msgBus := bus.NewMessageBus()
	api := onebot.NewAPIClient(onebot.APIConfig{
		BaseURL:     cfg.Gateway.APIURL(),
		AccessToken: cfg.Gateway.AccessToken,
		Timeout:     cfg.Gateway.APITimeout(),
	})
	channel, err := channels.NewOneBotChannel(msgBus, channels.OneBotOptions{
		WSURL:       cfg.Gateway.WSURL(),
		AccessToken: cfg.Gateway.AccessToken,
		API:         api,
		Parser:      registry,
		AllowGroups: cfg.Allow.Groups,
		AllowUsers:  cfg.Allow.Users,
	})
	if err != nil {
		return fmt.Errorf("error creating onebot channel: %w", err)
	}
	router := commands.NewRouter(registry, msgBus, channel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var scheduler *digest.Scheduler
	if cfg.Digest.Enabled {
		scheduler, err = digest.NewScheduler(digest.Options{
			Schedule: cfg.Digest.Schedule,
			Groups:   cfg.Digest.Groups,
			API:      bl,
			Bindings: bindings,
			Replier:  channel,
		})
		if err != nil {
			return fmt.Errorf("error creating digest scheduler: %w", err)
		}
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("error starting digest scheduler: %w", err)
		}
		fmt.Printf("✓ Digest scheduled: %s\n", cfg.Digest.Schedule)
	}

	fmt.Printf("✓ Commands registered: %d (prefix %q)\n", len(registry.List()), registry.Prefix())
	fmt.Printf("✓ Allow-listed groups: %d, users: %d\n", len(cfg.Allow.Groups), len(cfg.Allow.Users))
	fmt.Printf("✓ Gateway event stream: %s\n", cfg.Gateway.WSURL())
	fmt.Println("Press Ctrl+C to stop")

	// Producer and consumer; a cancellation-driven exit is nil on both
	// sides, a connection loss surfaces from the channel and cancels the
	// router through the group context.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return channel.Run(gctx) })
	g.Go(func() error { return router.Run(gctx) })
	runErr := g.Wait()

	fmt.Println("\nShutting down...")
	if scheduler != nil {
		scheduler.Stop()
	}
	msgBus.Close()
	if runErr != nil {
		return runErr
	}
	fmt.Println("✓ Gateway stopped")

	return nil
}
