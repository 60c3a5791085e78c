// Package commands implements the bot's command surface: the parse rules
// deciding what counts as an invocation, the registry of known commands,
// and the router that executes them off the bus.
package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tinyland-inc/beatclaw/pkg/utils"
)

const DefaultPrefix = `\`

// Handler executes one command invocation and returns the reply text. An
// empty reply means nothing is sent back. A non-nil error is an internal
// failure: it is logged and metered, never delivered to the chat.
type Handler func(ctx context.Context, inv Invocation) (string, error)

// Invocation carries one parsed command to its handler.
type Invocation struct {
	Args    []string // tokens after the command name
	Sender  int64
	Group   int64   // 0 for private messages
	Targets []int64 // users concretely mentioned in the message
}

// Entry holds a registered command.
type Entry struct {
	Name    string // command name without the prefix
	Brief   string // one-line description for the help listing
	Usage   string // argument synopsis for detailed help
	Handler Handler
}

// Registry is a thread-safe registry of prefixed commands.
type Registry struct {
	mu       sync.RWMutex
	prefix   string
	commands map[string]*Entry
}

func NewRegistry(prefix string) *Registry {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Registry{
		prefix:   prefix,
		commands: make(map[string]*Entry),
	}
}

func (r *Registry) Prefix() string {
	return r.prefix
}

// Register adds or replaces a command.
func (r *Registry) Register(name, brief, usage string, handler Handler) error {
	if err := utils.ValidateCommandName(name); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("command %s: nil handler", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = &Entry{
		Name:    name,
		Brief:   brief,
		Usage:   usage,
		Handler: handler,
	}
	return nil
}

// Get looks up a command by name.
func (r *Registry) Get(name string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.commands[name]
	return entry, ok
}

// List returns all registered commands sorted by name.
func (r *Registry) List() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]*Entry, 0, len(r.commands))
	for _, e := range r.commands {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Parse decides whether text invokes a registered command and returns its
// argv with the name de-prefixed, or nil when it does not. Tokens come from
// splitting on single spaces; each is whitespace-trimmed (so CR/LF endings
// drop off) and empties vanish. The prefix must sit on the first token;
// anything unregistered is not an invocation at all.
func (r *Registry) Parse(text string) []string {
	tokens := strings.Split(text, " ")
	argv := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		argv = append(argv, tok)
	}
	if len(argv) == 0 {
		return nil
	}

	if !strings.HasPrefix(argv[0], r.prefix) {
		return nil
	}
	name := strings.TrimPrefix(argv[0], r.prefix)
	if name == "" {
		return nil
	}
	if _, ok := r.Get(name); !ok {
		return nil
	}

	argv[0] = name
	return argv
}
