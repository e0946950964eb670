package match

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func eleven(prefix string) []string {
	ids := make([]string, 11)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return ids
}

// newLiveMatch builds a live match where home won the toss and bats first,
// with h1 on strike, h2 at the other end and a1 bowling.
func newLiveMatch(t *testing.T, format MatchFormat) *Match {
	t.Helper()
	m := &Match{
		ID:       "m-test",
		ScorerID: "scorer-1",
		Format:   format,
		Status:   StatusMatchUpcoming,
		HomeTeam: Team{ID: "th", Name: "Home CC"},
		AwayTeam: Team{ID: "ta", Name: "Away CC"},
	}
	if err := m.CompleteSetup(SideHome, TossDecisionBat, eleven("h"), eleven("a"), "h1", "h2", "a1"); err != nil {
		t.Fatalf("CompleteSetup: %v", err)
	}
	return m
}

// nextBall derives a delivery from the current live pointers, so consecutive
// calls always pass the sequencing check.
func nextBall(m *Match, runs int, bt BallType) Delivery {
	ls := m.LiveState
	return Delivery{
		Innings:      ls.CurrentInnings,
		Over:         ls.CurrentOver,
		Ball:         ls.CurrentBall,
		StrikerID:    ls.StrikerID,
		NonStrikerID: ls.NonStrikerID,
		BowlerID:     ls.BowlerID,
		Runs:         runs,
		BallType:     bt,
	}
}

func mustApply(t *testing.T, m *Match, d Delivery) {
	t.Helper()
	if err := m.ApplyDelivery(d); err != nil {
		t.Fatalf("ApplyDelivery(%+v): %v", d, err)
	}
}

func TestApplyDeliverySingleRotatesStrike(t *testing.T) {
	m := newLiveMatch(t, FormatT20)

	mustApply(t, m, nextBall(m, 1, BallNormal))

	if m.HomeScore.Runs != 1 {
		t.Fatalf("home runs = %d, want 1", m.HomeScore.Runs)
	}
	if m.HomeScore.Balls != 1 || m.HomeScore.Overs != 0 {
		t.Fatalf("over progress = %d.%d, want 0.1", m.HomeScore.Overs, m.HomeScore.Balls)
	}
	if m.LiveState.StrikerID != "h2" || m.LiveState.NonStrikerID != "h1" {
		t.Fatalf("strike after single = %s/%s, want h2/h1", m.LiveState.StrikerID, m.LiveState.NonStrikerID)
	}

	st := m.BattingStats[StatsKey(1, SideHome, "h1")]
	if st == nil || st.Runs != 1 || st.Balls != 1 {
		t.Fatalf("striker stats = %+v, want 1 run off 1 ball", st)
	}
}

func TestWideDoesNotAdvanceOverOrStrike(t *testing.T) {
	m := newLiveMatch(t, FormatT20)

	mustApply(t, m, nextBall(m, 1, BallWide))

	if m.HomeScore.Runs != 1 || m.HomeScore.Wides != 1 {
		t.Fatalf("score = %d runs %d wides, want 1/1", m.HomeScore.Runs, m.HomeScore.Wides)
	}
	if m.HomeScore.Balls != 0 {
		t.Fatalf("a wide advanced the over: balls = %d", m.HomeScore.Balls)
	}
	if m.LiveState.CurrentBall != 0 {
		t.Fatalf("live ball pointer moved to %d on a wide", m.LiveState.CurrentBall)
	}
	if m.LiveState.StrikerID != "h1" {
		t.Fatalf("strike rotated on a wide: striker = %s", m.LiveState.StrikerID)
	}
	if st := m.BattingStats[StatsKey(1, SideHome, "h1")]; st != nil && st.Balls != 0 {
		t.Fatalf("striker charged %d balls for a wide", st.Balls)
	}

	bw := m.BowlingStats[StatsKey(1, SideAway, "a1")]
	if bw == nil || bw.Conceded != 1 || bw.Wides != 1 || bw.Balls != 0 {
		t.Fatalf("bowler figures after wide = %+v", bw)
	}
}

func TestNoBallRunsGoToExtrasAndBowler(t *testing.T) {
	m := newLiveMatch(t, FormatT20)

	// No-ball worth 3 total (the fixed extra plus two off the bat are not
	// separated at this level; the whole value lands in extras).
	mustApply(t, m, nextBall(m, 3, BallNoBall))

	if m.HomeScore.Runs != 3 || m.HomeScore.NoBalls != 3 {
		t.Fatalf("score = %d runs %d no-balls, want 3/3", m.HomeScore.Runs, m.HomeScore.NoBalls)
	}
	if m.HomeScore.Balls != 0 {
		t.Fatalf("a no-ball advanced the over")
	}
	bw := m.BowlingStats[StatsKey(1, SideAway, "a1")]
	if bw.Conceded != 3 || bw.NoBalls != 1 || bw.Balls != 0 {
		t.Fatalf("bowler figures after no-ball = %+v", bw)
	}
}

func TestByesFacedButNotCredited(t *testing.T) {
	m := newLiveMatch(t, FormatT20)

	mustApply(t, m, nextBall(m, 2, BallBye))

	if m.HomeScore.Runs != 2 || m.HomeScore.Byes != 2 {
		t.Fatalf("score = %d runs %d byes, want 2/2", m.HomeScore.Runs, m.HomeScore.Byes)
	}
	st := m.BattingStats[StatsKey(1, SideHome, "h1")]
	if st.Balls != 1 || st.Runs != 0 {
		t.Fatalf("striker stats after byes = %+v, want 0 off 1", st)
	}
	// Even runs off a bye, no rotation.
	if m.LiveState.StrikerID != "h1" {
		t.Fatalf("strike rotated on even byes")
	}
}

func TestOverRolloverSwapsStrike(t *testing.T) {
	m := newLiveMatch(t, FormatT20)

	for i := 0; i < 6; i++ {
		mustApply(t, m, nextBall(m, 0, BallNormal))
	}

	if m.HomeScore.Overs != 1 || m.HomeScore.Balls != 0 {
		t.Fatalf("after six dots score = %d.%d, want 1.0", m.HomeScore.Overs, m.HomeScore.Balls)
	}
	if m.LiveState.CurrentOver != 1 || m.LiveState.CurrentBall != 0 {
		t.Fatalf("live pointers = %d.%d, want 1.0", m.LiveState.CurrentOver, m.LiveState.CurrentBall)
	}
	if m.LiveState.StrikerID != "h2" || m.LiveState.NonStrikerID != "h1" {
		t.Fatalf("ends not swapped at over boundary: %s/%s", m.LiveState.StrikerID, m.LiveState.NonStrikerID)
	}
}

func TestSixSinglesShareTheStrike(t *testing.T) {
	m := newLiveMatch(t, FormatT20)

	for i := 0; i < 6; i++ {
		mustApply(t, m, nextBall(m, 1, BallNormal))
	}

	if m.HomeScore.Runs != 6 || m.HomeScore.Overs != 1 || m.HomeScore.Balls != 0 {
		t.Fatalf("score = %d runs %d.%d, want 6 runs 1.0",
			m.HomeScore.Runs, m.HomeScore.Overs, m.HomeScore.Balls)
	}

	// Each single hands over the strike, so the openers split the over evenly.
	for _, id := range []string{"h1", "h2"} {
		st := m.BattingStats[StatsKey(1, SideHome, id)]
		if st == nil || st.Runs != 3 || st.Balls != 3 {
			t.Fatalf("%s stats = %+v, want 3 off 3", id, st)
		}
		if st.StrikeRate != 100 {
			t.Fatalf("%s strike rate = %v, want 100", id, st.StrikeRate)
		}
	}
}

func TestSingleOffLastBallKeepsStriker(t *testing.T) {
	m := newLiveMatch(t, FormatT20)

	for i := 0; i < 5; i++ {
		mustApply(t, m, nextBall(m, 0, BallNormal))
	}
	// Odd-run swap and the over-boundary swap cancel out.
	mustApply(t, m, nextBall(m, 1, BallNormal))

	if m.LiveState.StrikerID != "h1" {
		t.Fatalf("striker = %s, want h1 back on strike", m.LiveState.StrikerID)
	}
}

func TestWideOnLastBallDoesNotEndOver(t *testing.T) {
	m := newLiveMatch(t, FormatT20)

	for i := 0; i < 5; i++ {
		mustApply(t, m, nextBall(m, 0, BallNormal))
	}
	mustApply(t, m, nextBall(m, 1, BallWide))

	if m.HomeScore.Overs != 0 || m.HomeScore.Balls != 5 {
		t.Fatalf("score = %d.%d after wide on ball 5, want 0.5", m.HomeScore.Overs, m.HomeScore.Balls)
	}
	if m.LiveState.CurrentBall != 5 {
		t.Fatalf("live ball pointer = %d, want still 5", m.LiveState.CurrentBall)
	}
}

func TestWicketBringsIncomingBatterOnStrike(t *testing.T) {
	m := newLiveMatch(t, FormatT20)

	d := nextBall(m, 0, BallNormal)
	dt := DismissalBowled
	d.IsWicket = true
	d.DismissalType = &dt
	d.IncomingBatterID = "h3"
	mustApply(t, m, d)

	if m.HomeScore.Wickets != 1 {
		t.Fatalf("wickets = %d, want 1", m.HomeScore.Wickets)
	}
	if m.LiveState.StrikerID != "h3" || m.LiveState.NonStrikerID != "h2" {
		t.Fatalf("crease after wicket = %s/%s, want h3/h2", m.LiveState.StrikerID, m.LiveState.NonStrikerID)
	}

	out := m.BattingStats[StatsKey(1, SideHome, "h1")]
	if !out.IsOut || out.DismissalType == nil || *out.DismissalType != DismissalBowled {
		t.Fatalf("dismissed batter not marked out: %+v", out)
	}
	if out.FOWScore == nil || *out.FOWScore != 0 || out.FOWOver == nil || *out.FOWOver != 0 {
		t.Fatalf("fall of wicket marker = %+v", out)
	}

	bw := m.BowlingStats[StatsKey(1, SideAway, "a1")]
	if bw.Wickets != 1 {
		t.Fatalf("bowled dismissal did not credit the bowler")
	}
}

func TestRunOutDoesNotCreditBowler(t *testing.T) {
	m := newLiveMatch(t, FormatT20)

	d := nextBall(m, 1, BallNormal)
	dt := DismissalRunOut
	d.IsWicket = true
	d.DismissalType = &dt
	d.DismissedBatterID = "h2"
	d.FielderID = "a5"
	d.IncomingBatterID = "h3"
	mustApply(t, m, d)

	if m.HomeScore.Wickets != 1 || m.HomeScore.Runs != 1 {
		t.Fatalf("score = %d/%d, want 1/1", m.HomeScore.Runs, m.HomeScore.Wickets)
	}
	out := m.BattingStats[StatsKey(1, SideHome, "h2")]
	if !out.IsOut || out.FielderID != "a5" {
		t.Fatalf("run-out batter not marked: %+v", out)
	}
	if bw := m.BowlingStats[StatsKey(1, SideAway, "a1")]; bw.Wickets != 0 {
		t.Fatalf("run out credited the bowler")
	}
}

func TestTenthWicketRejectsFurtherDismissals(t *testing.T) {
	m := newLiveMatch(t, FormatTest)

	dt := DismissalBowled
	for i := 0; i < 10; i++ {
		d := nextBall(m, 0, BallNormal)
		d.IsWicket = true
		d.DismissalType = &dt
		d.IncomingBatterID = fmt.Sprintf("h%d", i+3)
		mustApply(t, m, d)
	}
	if m.HomeScore.Wickets != 10 {
		t.Fatalf("wickets = %d, want 10", m.HomeScore.Wickets)
	}
	if !m.LiveState.IsInningsBreak {
		t.Fatalf("innings break not flagged at ten wickets")
	}

	d := nextBall(m, 0, BallNormal)
	d.IsWicket = true
	d.DismissalType = &dt
	if err := m.ApplyDelivery(d); err != ErrWicketsExhausted {
		t.Fatalf("eleventh wicket: got %v, want ErrWicketsExhausted", err)
	}
}

func TestOutOfSequenceDeliveryRejected(t *testing.T) {
	m := newLiveMatch(t, FormatT20)

	d := nextBall(m, 0, BallNormal)
	d.Ball = 3
	if err := m.ApplyDelivery(d); err != ErrOutOfSequence {
		t.Fatalf("got %v, want ErrOutOfSequence", err)
	}

	d = nextBall(m, 0, BallNormal)
	d.Innings = 2
	if err := m.ApplyDelivery(d); err != ErrWrongInnings {
		t.Fatalf("got %v, want ErrWrongInnings", err)
	}

	d = nextBall(m, 0, BallNormal)
	d.Ball = 7
	if err := m.ApplyDelivery(d); err != ErrInvalidBallNumber {
		t.Fatalf("got %v, want ErrInvalidBallNumber", err)
	}

	d = nextBall(m, -1, BallNormal)
	if err := m.ApplyDelivery(d); err != ErrNegativeRuns {
		t.Fatalf("got %v, want ErrNegativeRuns", err)
	}

	d = nextBall(m, 0, BallType("beamer"))
	if err := m.ApplyDelivery(d); err != ErrInvalidBallType {
		t.Fatalf("got %v, want ErrInvalidBallType", err)
	}

	d = nextBall(m, 0, BallNormal)
	d.IsWicket = true
	if err := m.ApplyDelivery(d); err != ErrInvalidDismissal {
		t.Fatalf("wicket without dismissal type: got %v, want ErrInvalidDismissal", err)
	}
}

func TestDeliveryRejectedBeforeSetup(t *testing.T) {
	m := &Match{ID: "m-raw", Status: StatusMatchLive, Format: FormatT20}
	err := m.ApplyDelivery(Delivery{Innings: 1, BallType: BallNormal})
	if err != ErrSetupIncomplete {
		t.Fatalf("got %v, want ErrSetupIncomplete", err)
	}
}

func playMixedSpell(t *testing.T, m *Match) {
	t.Helper()
	mustApply(t, m, nextBall(m, 4, BallNormal))
	mustApply(t, m, nextBall(m, 1, BallWide))
	mustApply(t, m, nextBall(m, 1, BallNormal))
	mustApply(t, m, nextBall(m, 0, BallNormal))

	d := nextBall(m, 0, BallNormal)
	dt := DismissalCaught
	d.IsWicket = true
	d.DismissalType = &dt
	d.FielderID = "a7"
	d.IncomingBatterID = "h3"
	mustApply(t, m, d)

	mustApply(t, m, nextBall(m, 2, BallLegBye))
	mustApply(t, m, nextBall(m, 6, BallNormal))
}

func TestRebuildReproducesScorecard(t *testing.T) {
	m := newLiveMatch(t, FormatT20)
	playMixedSpell(t, m)

	before, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal before: %v", err)
	}

	if err := m.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	after, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal after: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("replay diverged from live state\n before: %s\n after:  %s", before, after)
	}
}

func TestUndoRestoresPreviousState(t *testing.T) {
	m := newLiveMatch(t, FormatT20)
	playMixedSpell(t, m)

	want, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	mustApply(t, m, nextBall(m, 3, BallNormal))
	if err := m.UndoLastBall(); err != nil {
		t.Fatalf("UndoLastBall: %v", err)
	}

	got, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(want) != string(got) {
		t.Fatalf("undo did not restore the prior state\n want: %s\n got:  %s", want, got)
	}
}

func TestUndoOnEmptyHistory(t *testing.T) {
	m := newLiveMatch(t, FormatT20)
	if err := m.UndoLastBall(); err != ErrNoDeliveries {
		t.Fatalf("got %v, want ErrNoDeliveries", err)
	}
}

func TestUndoAcrossOverBoundary(t *testing.T) {
	m := newLiveMatch(t, FormatT20)
	for i := 0; i < 5; i++ {
		mustApply(t, m, nextBall(m, 0, BallNormal))
	}
	want, _ := json.Marshal(m)

	mustApply(t, m, nextBall(m, 0, BallNormal))
	if m.HomeScore.Overs != 1 {
		t.Fatalf("over did not complete")
	}
	if err := m.UndoLastBall(); err != nil {
		t.Fatalf("UndoLastBall: %v", err)
	}

	got, _ := json.Marshal(m)
	if string(want) != string(got) {
		t.Fatalf("undo across the over boundary diverged\n want: %s\n got:  %s", want, got)
	}
}

func TestStartSecondInningsSetsTargetAndRate(t *testing.T) {
	m := newLiveMatch(t, FormatT20)
	// Shortcut the first innings to a known total.
	m.HomeScore.Runs = 241

	if err := m.StartSecondInnings("a1", "a2", "h5"); err != nil {
		t.Fatalf("StartSecondInnings: %v", err)
	}

	ls := m.LiveState
	if ls.CurrentInnings != 2 || ls.BattingTeam != SideAway {
		t.Fatalf("live state after switch = %+v", ls)
	}
	if ls.Target == nil || *ls.Target != 242 {
		t.Fatalf("target = %v, want 242", ls.Target)
	}
	if ls.RequiredRunRate == nil || *ls.RequiredRunRate != 12.1 {
		t.Fatalf("required rate = %v, want 12.1", ls.RequiredRunRate)
	}
	if ls.CurrentOver != 0 || ls.CurrentBall != 0 || ls.PartnershipRuns != 0 {
		t.Fatalf("second innings did not start fresh: %+v", ls)
	}

	if err := m.StartSecondInnings("a1", "a2", "h5"); err != ErrNotFirstInnings {
		t.Fatalf("second switch: got %v, want ErrNotFirstInnings", err)
	}
}

func TestChaseRateFallsAsOversDeplete(t *testing.T) {
	m := newLiveMatch(t, FormatT20)
	// First innings closed on 180.
	m.HomeScore.Runs = 180

	if err := m.StartSecondInnings("a1", "a2", "h5"); err != nil {
		t.Fatalf("StartSecondInnings: %v", err)
	}

	// 60 singles over the first ten overs of the chase.
	for i := 0; i < 60; i++ {
		mustApply(t, m, nextBall(m, 1, BallNormal))
	}

	if m.AwayScore.Runs != 60 || m.AwayScore.Overs != 10 || m.AwayScore.Balls != 0 {
		t.Fatalf("chase score = %d runs %d.%d, want 60 runs 10.0",
			m.AwayScore.Runs, m.AwayScore.Overs, m.AwayScore.Balls)
	}

	ls := m.LiveState
	if ls.Target == nil || *ls.Target != 181 {
		t.Fatalf("target = %v, want 181", ls.Target)
	}
	// 121 needed off 60 balls.
	if ls.RequiredRunRate == nil || *ls.RequiredRunRate != 12.1 {
		t.Fatalf("required rate = %v, want 12.1", ls.RequiredRunRate)
	}
	if ls.CurrentRunRate != 6.0 {
		t.Fatalf("current rate = %v, want 6.0", ls.CurrentRunRate)
	}
}

func TestRebuildAcrossInningsSwitch(t *testing.T) {
	m := newLiveMatch(t, FormatT20)
	playMixedSpell(t, m)

	if err := m.StartSecondInnings("a1", "a2", "h5"); err != nil {
		t.Fatalf("StartSecondInnings: %v", err)
	}
	mustApply(t, m, nextBall(m, 1, BallNormal))
	mustApply(t, m, nextBall(m, 4, BallNormal))
	mustApply(t, m, nextBall(m, 1, BallWide))

	before, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal before: %v", err)
	}
	if err := m.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	after, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal after: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("two-innings replay diverged\n before: %s\n after:  %s", before, after)
	}
}

func TestSecondInningsUndoRestoresState(t *testing.T) {
	m := newLiveMatch(t, FormatT20)
	playMixedSpell(t, m)

	if err := m.StartSecondInnings("a1", "a2", "h5"); err != nil {
		t.Fatalf("StartSecondInnings: %v", err)
	}
	mustApply(t, m, nextBall(m, 2, BallNormal))
	mustApply(t, m, nextBall(m, 1, BallNormal))

	want, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	mustApply(t, m, nextBall(m, 6, BallNormal))
	if err := m.UndoLastBall(); err != nil {
		t.Fatalf("UndoLastBall: %v", err)
	}

	got, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(want) != string(got) {
		t.Fatalf("second-innings undo diverged\n want: %s\n got:  %s", want, got)
	}
}

func TestUndoAfterInningsEndKeepsBreakFlag(t *testing.T) {
	m := newLiveMatch(t, FormatTest)

	dt := DismissalBowled
	for i := 0; i < 10; i++ {
		d := nextBall(m, 0, BallNormal)
		d.IsWicket = true
		d.DismissalType = &dt
		d.IncomingBatterID = fmt.Sprintf("h%d", i+3)
		mustApply(t, m, d)
	}
	if !m.LiveState.IsInningsBreak {
		t.Fatalf("innings break not flagged at ten wickets")
	}

	// Non-wicket deliveries are still accepted after the tenth wicket;
	// undoing one must not lose the break flag.
	mustApply(t, m, nextBall(m, 1, BallNormal))
	if err := m.UndoLastBall(); err != nil {
		t.Fatalf("UndoLastBall: %v", err)
	}
	if !m.LiveState.IsInningsBreak {
		t.Fatalf("undo cleared the innings break flag")
	}
	if m.HomeScore.Wickets != 10 {
		t.Fatalf("wickets = %d after undo, want 10", m.HomeScore.Wickets)
	}
}

func TestNoRequiredRateForUnlimitedOvers(t *testing.T) {
	m := newLiveMatch(t, FormatTest)
	m.HomeScore.Runs = 310

	if err := m.StartSecondInnings("a1", "a2", "h5"); err != nil {
		t.Fatalf("StartSecondInnings: %v", err)
	}
	if m.LiveState.Target == nil || *m.LiveState.Target != 311 {
		t.Fatalf("target = %v, want 311", m.LiveState.Target)
	}
	if m.LiveState.RequiredRunRate != nil {
		t.Fatalf("required rate set for an unlimited-overs format: %v", *m.LiveState.RequiredRunRate)
	}
}

func TestPartnershipTracksActivePair(t *testing.T) {
	m := newLiveMatch(t, FormatT20)

	mustApply(t, m, nextBall(m, 4, BallNormal))
	mustApply(t, m, nextBall(m, 1, BallNormal))
	mustApply(t, m, nextBall(m, 2, BallNormal))

	// h1: 5 off 2, h2: 2 off 1.
	if m.LiveState.PartnershipRuns != 7 || m.LiveState.PartnershipBalls != 3 {
		t.Fatalf("partnership = %d off %d, want 7 off 3",
			m.LiveState.PartnershipRuns, m.LiveState.PartnershipBalls)
	}

	d := nextBall(m, 0, BallNormal)
	dt := DismissalBowled
	d.IsWicket = true
	d.DismissalType = &dt
	d.IncomingBatterID = "h3"
	mustApply(t, m, d)

	// New pair is h3 (fresh) and h1, so only h1's aggregate counts.
	if m.LiveState.PartnershipRuns != 5 || m.LiveState.PartnershipBalls != 2 {
		t.Fatalf("partnership after wicket = %d off %d, want 5 off 2",
			m.LiveState.PartnershipRuns, m.LiveState.PartnershipBalls)
	}
}

func TestCompletedMatchIsLocked(t *testing.T) {
	m := newLiveMatch(t, FormatT20)
	mustApply(t, m, nextBall(m, 1, BallNormal))

	res := &MatchResult{Winner: SideHome, Margin: "won by 20 runs"}
	if err := m.Complete(res, time.Now()); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if m.Status != StatusMatchCompleted || !m.IsLocked || m.EndTime == nil {
		t.Fatalf("terminal state not set: status=%s locked=%v", m.Status, m.IsLocked)
	}
	if m.MatchResult == nil || m.MatchResult.Margin != "won by 20 runs" {
		t.Fatalf("result not recorded: %+v", m.MatchResult)
	}

	if err := m.ApplyDelivery(nextBall(m, 0, BallNormal)); err != ErrMatchLocked {
		t.Fatalf("scoring a locked match: got %v, want ErrMatchLocked", err)
	}
	if err := m.UndoLastBall(); err != ErrMatchLocked {
		t.Fatalf("undo on a locked match: got %v, want ErrMatchLocked", err)
	}
	if err := m.Complete(nil, time.Now()); err != ErrMatchLocked {
		t.Fatalf("double complete: got %v, want ErrMatchLocked", err)
	}
	if err := m.Cancel(time.Now()); err != ErrMatchLocked {
		t.Fatalf("cancel after complete: got %v, want ErrMatchLocked", err)
	}
}

func TestCancelLocksMatch(t *testing.T) {
	m := newLiveMatch(t, FormatT20)
	if err := m.Cancel(time.Now()); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if m.Status != StatusMatchCancelled || !m.IsLocked {
		t.Fatalf("cancel did not lock: status=%s locked=%v", m.Status, m.IsLocked)
	}
	if err := m.CompleteSetup(SideHome, TossDecisionBat, eleven("h"), eleven("a"), "h1", "h2", "a1"); err != ErrMatchLocked {
		t.Fatalf("setup on cancelled match: got %v, want ErrMatchLocked", err)
	}
}

func TestTossLoserBatsFirstWhenWinnerBowls(t *testing.T) {
	m := &Match{ID: "m-toss", Status: StatusMatchUpcoming, Format: FormatODI}
	if err := m.CompleteSetup(SideHome, TossDecisionBowl, eleven("h"), eleven("a"), "a1", "a2", "h1"); err != nil {
		t.Fatalf("CompleteSetup: %v", err)
	}
	if m.LiveState.BattingTeam != SideAway {
		t.Fatalf("batting team = %s, want away", m.LiveState.BattingTeam)
	}

	mustApply(t, m, nextBall(m, 4, BallNormal))
	if m.AwayScore.Runs != 4 || m.HomeScore.Runs != 0 {
		t.Fatalf("runs went to the wrong side: home=%d away=%d", m.HomeScore.Runs, m.AwayScore.Runs)
	}
}

func TestUpdateLivePointers(t *testing.T) {
	m := newLiveMatch(t, FormatT20)
	mustApply(t, m, nextBall(m, 1, BallNormal))

	newStriker := "h4"
	if err := m.UpdateLivePointers(LivePointerUpdate{StrikerID: &newStriker}); err != nil {
		t.Fatalf("UpdateLivePointers: %v", err)
	}
	if m.LiveState.StrikerID != "h4" {
		t.Fatalf("striker = %s, want h4", m.LiveState.StrikerID)
	}
	if m.LiveState.NonStrikerID != "h1" {
		t.Fatalf("non-striker changed unexpectedly: %s", m.LiveState.NonStrikerID)
	}

	badBall := 9
	if err := m.UpdateLivePointers(LivePointerUpdate{CurrentBall: &badBall}); err != ErrInvalidBallNumber {
		t.Fatalf("got %v, want ErrInvalidBallNumber", err)
	}
}

func TestInningsBreakAtOversLimit(t *testing.T) {
	m := newLiveMatch(t, FormatT20)
	// Fast-forward to the last over.
	m.HomeScore.Overs = 19
	m.LiveState.CurrentOver = 19

	for i := 0; i < 6; i++ {
		mustApply(t, m, nextBall(m, 1, BallNormal))
	}
	if m.HomeScore.Overs != 20 {
		t.Fatalf("overs = %d, want 20", m.HomeScore.Overs)
	}
	if !m.LiveState.IsInningsBreak {
		t.Fatalf("innings break not flagged at the overs limit")
	}
}
