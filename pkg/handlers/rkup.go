package handlers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tinyland-inc/beatclaw/pkg/beatleader"
	"github.com/tinyland-inc/beatclaw/pkg/commands"
	"github.com/tinyland-inc/beatclaw/pkg/store"
)

const rankPageSize = 10

// rkup target argument forms.
var (
	relRankPattern = regexp.MustCompile(`^[+-]\d+$`)
	absPPPattern   = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)pp$`)
	relPPPattern   = regexp.MustCompile(`^\+(\d+(\.\d*)?|\.\d+)pp$`)
)

// rkup planning modes.
const (
	modeRank        = "rank"         // chase a country rank
	modePP          = "pp"           // chase a profile pp total
	modeRankReverse = "rank-reverse" // measure the margin over a worse rank
)

// rkupPlan is the parsed form of an rkup invocation.
type rkupPlan struct {
	mode   string
	rank   int     // target country rank, modeRank/modeRankReverse
	pp     float64 // target profile pp, modePP
	plays  int     // number of new plays to budget for
	ppEach float64 // fixed per-play raw pp, 0 when unset
}

// RankUp answers what it takes to reach a country rank or a pp total, or
// how much headroom the sender has over a worse-ranked player.
func (s *Set) RankUp(ctx context.Context, inv commands.Invocation) (string, error) {
	uid, err := s.bindings.Get(ctx, inv.Sender)
	if errors.Is(err, store.ErrNotBound) {
		return s.notBoundReply(), nil
	}
	if err != nil {
		return "", err
	}

	profile, err := s.api.Player(ctx, uid)
	if err != nil {
		return "资料获取失败，请稍后再试", nil
	}

	points, err := s.api.AccGraph(ctx, uid)
	if err != nil {
		return "PP 列表获取失败，请稍后再试", nil
	}
	ppList := make([]float64, len(points))
	for i, p := range points {
		ppList[i] = p.PP
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ppList)))

	plan, badInput := parseRkupArgs(inv.Args, profile)
	if badInput != "" {
		return fmt.Sprintf("非法的输入 %q，请输入 %shelp 查询帮助信息", badInput, s.registry.Prefix()), nil
	}

	if plan.mode != modePP && plan.rank == profile.CountryRank {
		return fmt.Sprintf("你已经是国区第 %d 名", plan.rank), nil
	}
	if plan.mode == modePP && profile.PP >= plan.pp {
		if fmt.Sprintf("%.2f", plan.pp) == fmt.Sprintf("%.2f", profile.PP) {
			return fmt.Sprintf("你已经达到 %.2fpp", plan.pp), nil
		}
		return fmt.Sprintf("你已经达到 %.2fpp，目前为 %.2fpp (+%.2f)",
			plan.pp, profile.PP, profile.PP-plan.pp), nil
	}
	if plan.plays == 0 && plan.ppEach == 0 && plan.mode != modeRankReverse {
		return "摆烂是无法上分的，你总得打一首歌", nil
	}

	countryTotal, err := s.countryPlayerCount(ctx, profile.Country)
	if err != nil {
		return fmt.Sprintf("获取国区 %s 的玩家信息失败", profile.Country), nil
	}
	if plan.mode == modeRankReverse && plan.rank > countryTotal {
		return fmt.Sprintf("国区排名 %d 的玩家还没有出生", plan.rank), nil
	}

	switch plan.mode {
	case modePP:
		return s.answerPPTarget(profile, ppList, plan), nil
	default:
		target, err := s.countryPlayerAt(ctx, profile.Country, plan.rank)
		if err != nil {
			return fmt.Sprintf("获取国区排名 %d 的玩家信息失败", plan.rank), nil
		}
		if plan.mode == modeRankReverse {
			return answerRankReverse(profile, plan, target), nil
		}
		return s.answerRankTarget(profile, ppList, plan, target), nil
	}
}

// parseRkupArgs resolves the target and play budget. A non-empty second
// return is the offending argument.
func parseRkupArgs(args []string, profile *beatleader.Player) (rkupPlan, string) {
	plan := rkupPlan{mode: modeRank, plays: 1}

	if len(args) == 0 {
		// Default target: the next better country rank.
		plan.rank = profile.CountryRank - 1
		if plan.rank < 1 {
			plan.rank = 1
		}
		return plan, ""
	}

	switch arg := args[0]; {
	case isDigits(arg):
		plan.rank, _ = strconv.Atoi(arg)
	case relRankPattern.MatchString(arg):
		delta, _ := strconv.Atoi(arg)
		plan.rank = profile.CountryRank - delta
		if plan.rank > profile.CountryRank {
			plan.mode = modeRankReverse
		}
	case relPPPattern.MatchString(arg):
		gain, _ := strconv.ParseFloat(strings.TrimSuffix(arg, "pp"), 64)
		plan.mode = modePP
		plan.pp = profile.PP + gain
	case absPPPattern.MatchString(arg):
		plan.mode = modePP
		plan.pp, _ = strconv.ParseFloat(strings.TrimSuffix(arg, "pp"), 64)
	default:
		return plan, arg
	}

	if len(args) >= 2 {
		switch arg := args[1]; {
		case isDigits(arg):
			plan.plays, _ = strconv.Atoi(arg)
		case absPPPattern.MatchString(arg):
			plan.ppEach, _ = strconv.ParseFloat(strings.TrimSuffix(arg, "pp"), 64)
			plan.plays = 0
		default:
			return plan, arg
		}
	}
	return plan, ""
}

// countryPlayerCount asks for the smallest page of the country ladder and
// reads the total from its metadata.
func (s *Set) countryPlayerCount(ctx context.Context, country string) (int, error) {
	page, err := s.api.Players(ctx, beatleader.PlayersQuery{
		Countries: country,
		SortBy:    "pp",
		Order:     "asc",
		Count:     1,
	})
	if err != nil {
		return 0, err
	}
	return page.Metadata.Total, nil
}

// countryPlayerAt fetches the player holding a country rank.
func (s *Set) countryPlayerAt(ctx context.Context, country string, rank int) (*beatleader.Player, error) {
	if rank < 1 {
		rank = 1
	}
	page, err := s.api.Players(ctx, beatleader.PlayersQuery{
		Countries: country,
		SortBy:    "pp",
		Order:     "desc",
		Count:     rankPageSize,
		Page:      (rank-1)/rankPageSize + 1,
	})
	if err != nil {
		return nil, err
	}
	idx := (rank - 1) % rankPageSize
	if idx >= len(page.Data) {
		return nil, fmt.Errorf("country %s rank %d not in page", country, rank)
	}
	return &page.Data[idx], nil
}

func (s *Set) answerRankTarget(profile *beatleader.Player, ppList []float64, plan rkupPlan, target *beatleader.Player) string {
	needed := target.PP - profile.PP
	header := fmt.Sprintf("目标 国区 #%d %s（全球 #%d）%.2fpp", plan.rank, target.Name, target.Rank, target.PP)
	if needed <= 0 {
		return header + fmt.Sprintf("\n你已超过该玩家，目前为 %.2fpp (+%.2f)", profile.PP, -needed)
	}
	status := fmt.Sprintf("当前 %.2fpp，还差 %.2fpp", profile.PP, needed)
	return strings.Join([]string{header, status, playAdvice(ppList, needed, plan, "超越")}, "\n")
}

func (s *Set) answerPPTarget(profile *beatleader.Player, ppList []float64, plan rkupPlan) string {
	needed := plan.pp - profile.PP
	status := fmt.Sprintf("目标 %.2fpp，当前 %.2fpp，还差 %.2fpp", plan.pp, profile.PP, needed)
	return status + "\n" + playAdvice(ppList, needed, plan, "达到目标")
}

func answerRankReverse(profile *beatleader.Player, plan rkupPlan, target *beatleader.Player) string {
	header := fmt.Sprintf("国区 #%d %s（全球 #%d）%.2fpp", plan.rank, target.Name, target.Rank, target.PP)
	margin := profile.PP - target.PP
	if margin < 0 {
		return header + fmt.Sprintf("\n对方已领先你 %.2fpp", -margin)
	}
	return header + fmt.Sprintf("\n你当前 %.2fpp，领先 %.2fpp", profile.PP, margin)
}

// playAdvice turns a needed profile gain into a concrete plan line: either
// the per-play raw pp for a fixed play count, or the play count for a fixed
// per-play raw pp.
func playAdvice(ppList []float64, needed float64, plan rkupPlan, goal string) string {
	if plan.ppEach > 0 {
		n, ok := playsNeeded(ppList, needed, plan.ppEach)
		if !ok {
			return fmt.Sprintf("一直打 %.2fpp 的歌无法%s，试试更高的单曲 pp", plan.ppEach, goal)
		}
		return fmt.Sprintf("打 %d 首 %.2fpp 的歌即可%s", n, plan.ppEach, goal)
	}
	perPlay := requiredPerPlay(ppList, needed, plan.plays)
	if plan.plays == 1 {
		return fmt.Sprintf("打一首 %.2fpp 的歌即可%s", perPlay, goal)
	}
	return fmt.Sprintf("打 %d 首 %.2fpp 的歌即可%s", plan.plays, perPlay, goal)
}
