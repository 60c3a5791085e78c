package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/tinyland-inc/beatclaw/cmd/beatclaw/internal"
	"github.com/tinyland-inc/beatclaw/pkg/beatleader"
	"github.com/tinyland-inc/beatclaw/pkg/bus"
	"github.com/tinyland-inc/beatclaw/pkg/commands"
	"github.com/tinyland-inc/beatclaw/pkg/handlers"
	"github.com/tinyland-inc/beatclaw/pkg/store"
)

const defaultConsoleSender = 1

// printReplier writes handler replies to stdout instead of the gateway.
type printReplier struct{}

func (printReplier) Send(_ context.Context, reply bus.Reply) error {
	fmt.Printf("\n%s\n\n", reply.Text)
	return nil
}

// consoleCmd drives the registry and router against stdin: input goes
// through the real parser (prefix required), replies print locally.
func consoleCmd(sender int64, debug bool) error {
	if debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	if sender == 0 {
		sender = defaultConsoleSender
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
	router := commands.NewRouter(registry, bus.NewMessageBus(), printReplier{})

	fmt.Printf("%s Console mode, sender %d (Ctrl+C to exit)\n", internal.Logo, sender)
	fmt.Printf("Commands need the %q prefix; try %shelp. \"stats\" shows usage, \"exit\" leaves.\n\n",
		registry.Prefix(), registry.Prefix())

	interactiveMode(router, registry, sender)
	return nil
}

func interactiveMode(router *commands.Router, registry *commands.Registry, sender int64) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "beatclaw> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".beatclaw_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("Error initializing readline: %v\n", err)
		fmt.Println("Falling back to simple input mode...")
		simpleInteractiveMode(router, registry, sender)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}
		if !handleLine(router, registry, sender, line) {
			return
		}
	}
}

func simpleInteractiveMode(router *commands.Router, registry *commands.Registry, sender int64) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("beatclaw> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}
		if !handleLine(router, registry, sender, line) {
			return
		}
	}
}

// handleLine runs one console line; false means leave the loop.
func handleLine(router *commands.Router, registry *commands.Registry, sender int64, line string) bool {
	input := strings.TrimSpace(line)
	switch input {
	case "":
		return true
	case "exit", "quit":
		fmt.Println("Goodbye!")
		return false
	case "stats":
		printStats(router)
		return true
	}

	argv := registry.Parse(input)
	if argv == nil {
		fmt.Printf("Not a registered command (prefix %q). Try %shelp.\n",
			registry.Prefix(), registry.Prefix())
		return true
	}

	router.Dispatch(context.Background(), bus.Command{Sender: sender, Argv: argv})
	return true
}

func printStats(router *commands.Router) {
	meters := router.Meter().Snapshot()
	if len(meters) == 0 {
		fmt.Println("No commands invoked yet.")
		return
	}
	for _, m := range meters {
		avg := time.Duration(0)
		if m.Calls > 0 {
			avg = m.TotalLatency / time.Duration(m.Calls)
		}
		fmt.Printf("%-8s calls=%d errors=%d avg=%s last=%s\n",
			m.Name, m.Calls, m.Errors, avg, m.LastInvoked.Format("15:04:05"))
	}
}
