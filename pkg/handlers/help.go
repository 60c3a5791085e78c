package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/tinyland-inc/beatclaw/pkg/commands"
)

// Help lists the registered commands, or details one of them.
func (s *Set) Help(ctx context.Context, inv commands.Invocation) (string, error) {
	prefix := s.registry.Prefix()

	if len(inv.Args) > 0 {
		name := strings.TrimPrefix(inv.Args[0], prefix)
		entry, ok := s.registry.Get(name)
		if !ok {
			return fmt.Sprintf("未知命令 %q，输入 %shelp 查看可用命令", name, prefix), nil
		}
		return fmt.Sprintf("%s%s - %s\n用法：%s", prefix, entry.Name, entry.Brief, entry.Usage), nil
	}

	entries := s.registry.List()
	if len(entries) == 0 {
		return "", nil
	}
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, "当前可用命令")
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("%s%s - %s", prefix, entry.Name, entry.Brief))
	}
	return strings.Join(lines, "\n"), nil
}
