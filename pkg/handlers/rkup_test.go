package handlers

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/tinyland-inc/beatclaw/pkg/beatleader"
)

// newRankedAPI builds a fake with the sender's profile at country rank 5 of
// a 20-player CN ladder.
func newRankedAPI() *fakeAPI {
	ladder := make([]beatleader.Player, 20)
	for i := range ladder {
		ladder[i] = beatleader.Player{
			ID:      fmt.Sprintf("p%d", i+1),
			Name:    fmt.Sprintf("player%d", i+1),
			Country: "CN",
			// 100pp between neighbors keeps the math easy to eyeball.
			PP:          float64(3000 - i*100),
			CountryRank: i + 1,
			Rank:        (i + 1) * 7,
		}
	}
	me := ladder[4] // rank 5, 2600pp
	return &fakeAPI{
		players: map[string]*beatleader.Player{me.ID: &me},
		accGraphs: map[string][]beatleader.AccPoint{
			me.ID: {{PP: 430}, {PP: 410}, {PP: 390}, {PP: 370}, {PP: 350}},
		},
		ladder: ladder,
	}
}

func bindRanked(t *testing.T) *Set {
	t.Helper()
	set, st := newTestSet(t, newRankedAPI())
	if err := st.Put(context.Background(), 42, "p5"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	return set
}

func TestRankUpUnbound(t *testing.T) {
	set, _ := newTestSet(t, newRankedAPI())

	if reply := invoke(t, set.RankUp, 7); !strings.Contains(reply, "账号暂未关联") {
		t.Errorf("unbound rkup = %q", reply)
	}
}

func TestRankUpDefaultTargetsNextBetterRank(t *testing.T) {
	set := bindRanked(t)

	reply := invoke(t, set.RankUp, 42)
	if !strings.Contains(reply, "目标 国区 #4 player4") {
		t.Fatalf("default target wrong: %q", reply)
	}
	if !strings.Contains(reply, "还差 100.00pp") {
		t.Errorf("pp deficit wrong: %q", reply)
	}
	if !strings.Contains(reply, "打一首") || !strings.Contains(reply, "即可超越") {
		t.Errorf("missing play advice: %q", reply)
	}
}

func TestRankUpAbsoluteRank(t *testing.T) {
	set := bindRanked(t)

	reply := invoke(t, set.RankUp, 42, "2")
	if !strings.Contains(reply, "目标 国区 #2 player2") || !strings.Contains(reply, "还差 300.00pp") {
		t.Errorf("absolute rank reply = %q", reply)
	}

	// Crossing a page boundary: rank 11 lives on page 2.
	reply = invoke(t, set.RankUp, 42, "11")
	if !strings.Contains(reply, "player11") {
		t.Errorf("paged target lookup broken: %q", reply)
	}
}

func TestRankUpRelativeRank(t *testing.T) {
	set := bindRanked(t)

	// +2 means two ranks better: 5 -> 3.
	reply := invoke(t, set.RankUp, 42, "+2")
	if !strings.Contains(reply, "目标 国区 #3 player3") {
		t.Errorf("+2 reply = %q", reply)
	}

	// -2 points at a worse rank and flips to margin reporting.
	reply = invoke(t, set.RankUp, 42, "-2")
	if !strings.Contains(reply, "国区 #7 player7") || !strings.Contains(reply, "领先 200.00pp") {
		t.Errorf("-2 reply = %q", reply)
	}
}

func TestRankUpAlreadyAtRank(t *testing.T) {
	set := bindRanked(t)

	if reply := invoke(t, set.RankUp, 42, "5"); reply != "你已经是国区第 5 名" {
		t.Errorf("same-rank reply = %q", reply)
	}
}

func TestRankUpPPTargets(t *testing.T) {
	set := bindRanked(t)

	reply := invoke(t, set.RankUp, 42, "2700pp")
	if !strings.Contains(reply, "目标 2700.00pp，当前 2600.00pp，还差 100.00pp") {
		t.Errorf("absolute pp reply = %q", reply)
	}

	reply = invoke(t, set.RankUp, 42, "+50pp")
	if !strings.Contains(reply, "目标 2650.00pp") {
		t.Errorf("relative pp reply = %q", reply)
	}

	if reply := invoke(t, set.RankUp, 42, "2600pp"); reply != "你已经达到 2600.00pp" {
		t.Errorf("reached pp reply = %q", reply)
	}
	reply = invoke(t, set.RankUp, 42, "2500pp")
	if !strings.Contains(reply, "你已经达到 2500.00pp，目前为 2600.00pp (+100.00)") {
		t.Errorf("exceeded pp reply = %q", reply)
	}
}

func TestRankUpPlayBudgets(t *testing.T) {
	set := bindRanked(t)

	reply := invoke(t, set.RankUp, 42, "4", "3")
	if !strings.Contains(reply, "打 3 首") {
		t.Errorf("fixed play count reply = %q", reply)
	}

	// Fixed per-play pp: a 500pp top play covers a 100pp deficit at once.
	reply = invoke(t, set.RankUp, 42, "4", "500pp")
	if !strings.Contains(reply, "打 1 首 500.00pp 的歌即可超越") {
		t.Errorf("fixed per-play reply = %q", reply)
	}

	// Tiny plays converge below the deficit.
	reply = invoke(t, set.RankUp, 42, "1", "10pp")
	if !strings.Contains(reply, "无法超越") {
		t.Errorf("unreachable per-play reply = %q", reply)
	}

	if reply := invoke(t, set.RankUp, 42, "4", "0"); reply != "摆烂是无法上分的，你总得打一首歌" {
		t.Errorf("zero plays reply = %q", reply)
	}
}

func TestRankUpBadInput(t *testing.T) {
	set := bindRanked(t)

	reply := invoke(t, set.RankUp, 42, "soon")
	if !strings.Contains(reply, `非法的输入 "soon"`) {
		t.Errorf("bad first arg reply = %q", reply)
	}
	reply = invoke(t, set.RankUp, 42, "4", "x")
	if !strings.Contains(reply, `非法的输入 "x"`) {
		t.Errorf("bad second arg reply = %q", reply)
	}
}

func TestRankUpUnbornRank(t *testing.T) {
	set := bindRanked(t)

	reply := invoke(t, set.RankUp, 42, "-100")
	if reply != "国区排名 105 的玩家还没有出生" {
		t.Errorf("unborn rank reply = %q", reply)
	}
}

func TestRankUpAPIFailures(t *testing.T) {
	api := newRankedAPI()
	api.accGraphErr = fmt.Errorf("boom")
	set, st := newTestSet(t, api)
	if err := st.Put(context.Background(), 42, "p5"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if reply := invoke(t, set.RankUp, 42); reply != "PP 列表获取失败，请稍后再试" {
		t.Errorf("accgraph failure reply = %q", reply)
	}
}
