package commands

import (
	"context"
	"reflect"
	"testing"
)

func nopHandler(context.Context, Invocation) (string, error) {
	return "", nil
}

func newTestRegistry(t *testing.T, names ...string) *Registry {
	t.Helper()
	r := NewRegistry(`\`)
	for _, name := range names {
		if err := r.Register(name, "", "", nopHandler); err != nil {
			t.Fatalf("Register(%q): %v", name, err)
		}
	}
	return r
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry(`\`)

	if err := r.Register("help", "brief", "usage", nopHandler); err != nil {
		t.Errorf("valid registration failed: %v", err)
	}
	if err := r.Register("", "brief", "", nopHandler); err == nil {
		t.Error("empty name must be rejected")
	}
	if err := r.Register("rank up", "brief", "", nopHandler); err == nil {
		t.Error("name with whitespace must be rejected")
	}
	if err := r.Register("me", "brief", "", nil); err == nil {
		t.Error("nil handler must be rejected")
	}
}

func TestRegistryDefaultPrefix(t *testing.T) {
	r := NewRegistry("")
	if r.Prefix() != `\` {
		t.Errorf("default prefix = %q, want backslash", r.Prefix())
	}
}

func TestParse(t *testing.T) {
	r := newTestRegistry(t, "help", "me", "rkup")

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"bare command", `\help`, []string{"help"}},
		{"with args", `\me 76561198059961776`, []string{"me", "76561198059961776"}},
		{"runs of spaces collapse", `\help    me`, []string{"help", "me"}},
		{"leading and trailing spaces", `   \rkup +5   `, []string{"rkup", "+5"}},
		{"crlf line ending", "\\help\r\n", []string{"help"}},
		{"mention padding", ` \me`, []string{"me"}},
		{"no prefix", "help", nil},
		{"prefix not on first token", `hey \help`, nil},
		{"unregistered command", `\unknown`, nil},
		{"bare prefix", `\`, nil},
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
		{"case sensitive", `\HELP`, nil},
		{"doubled prefix", `\\help`, nil},
		{"plain chatter", "what a great score", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Parse(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseCustomPrefix(t *testing.T) {
	r := NewRegistry("!")
	if err := r.Register("help", "", "", nopHandler); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if got := r.Parse("!help"); len(got) != 1 || got[0] != "help" {
		t.Errorf("Parse(!help) = %v", got)
	}
	if got := r.Parse(`\help`); got != nil {
		t.Errorf("old prefix must not parse, got %v", got)
	}
}

func TestListSorted(t *testing.T) {
	r := newTestRegistry(t, "rkup", "help", "me")

	entries := r.List()
	if len(entries) != 3 {
		t.Fatalf("List returned %d entries", len(entries))
	}
	want := []string{"help", "me", "rkup"}
	for i, e := range entries {
		if e.Name != want[i] {
			t.Errorf("List[%d] = %q, want %q", i, e.Name, want[i])
		}
	}
}

func TestGet(t *testing.T) {
	r := newTestRegistry(t, "help")

	if _, ok := r.Get("help"); !ok {
		t.Error("registered command not found")
	}
	if _, ok := r.Get("nope"); ok {
		t.Error("unregistered command found")
	}
}
