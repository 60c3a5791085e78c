package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tinyland-inc/beatclaw/pkg/beatleader"
	"github.com/tinyland-inc/beatclaw/pkg/commands"
	"github.com/tinyland-inc/beatclaw/pkg/store"
)

const minSearchRunes = 3

// Me shows the sender's bound profile, or binds one: a numeric argument is
// taken as a player id, anything else as a search keyword.
func (s *Set) Me(ctx context.Context, inv commands.Invocation) (string, error) {
	bound, err := s.bindings.Get(ctx, inv.Sender)
	alreadyBound := err == nil
	if err != nil && !errors.Is(err, store.ErrNotBound) {
		return "", err
	}

	var uid string
	switch {
	case len(inv.Args) == 0:
		if !alreadyBound {
			return s.notBoundReply(), nil
		}
		uid = bound

	case isDigits(inv.Args[0]):
		candidate := inv.Args[0]
		exists, err := s.api.Exists(ctx, candidate)
		if err != nil || !exists {
			return "非法 UID", nil
		}
		uid = candidate

	default:
		keyword := strings.Join(inv.Args, " ")
		if len([]rune(keyword)) < minSearchRunes {
			return "搜索关键字过短", nil
		}
		page, err := s.api.Players(ctx, beatleader.PlayersQuery{
			Search:    keyword,
			Countries: s.searchCountry,
			Count:     s.searchLimit,
		})
		if err != nil {
			return "搜索失败，请稍后再试", nil
		}
		if len(page.Data) == 0 {
			return "搜索结果为空，请检查关键字", nil
		}
		if len(page.Data) > 1 {
			lines := make([]string, 0, len(page.Data)+1)
			lines = append(lines, "已找到以下候选结果")
			for i, p := range page.Data {
				lines = append(lines, fmt.Sprintf("%02d. [%s] %s / %.2fpp (%s)",
					i+1, p.Country, p.Name, p.PP, p.ID))
			}
			return strings.Join(lines, "\n"), nil
		}
		uid = page.Data[0].ID
	}

	profile, err := s.api.Player(ctx, uid)
	if err != nil {
		if alreadyBound {
			return fmt.Sprintf("已检索到 UID %s，资料获取失败", uid), nil
		}
		return "资料获取失败", nil
	}

	var lines []string
	switch {
	case alreadyBound && bound != uid:
		lines = append(lines, fmt.Sprintf("已切换关联至 UID %s", uid))
	case !alreadyBound:
		lines = append(lines, fmt.Sprintf("已成功关联至 UID %s", uid))
	}
	if err := s.bindings.Put(ctx, inv.Sender, uid); err != nil {
		return "", err
	}

	lines = append(lines, fmt.Sprintf("[%s][%s] %s %.2fpp 国区 %d 全球 %d",
		profile.Country, profile.Platform, profile.Name,
		profile.PP, profile.CountryRank, profile.Rank))
	return strings.Join(lines, "\n"), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
