package match

import "testing"

func TestBuildScorecardKeepsTrailingBalls(t *testing.T) {
	m := newLiveMatch(t, FormatT20)
	for i := 0; i < 9; i++ {
		mustApply(t, m, nextBall(m, i%3, BallNormal))
	}

	card := BuildScorecard(m)
	if len(card.RecentBalls) != recentBallCount {
		t.Fatalf("recent balls = %d, want %d", len(card.RecentBalls), recentBallCount)
	}
	last := card.RecentBalls[len(card.RecentBalls)-1]
	if last.Over != 1 || last.Ball != 2 {
		t.Fatalf("last ball = %d.%d, want 1.2", last.Over, last.Ball)
	}
	if card.HomeTeam.Runs != m.HomeScore.Runs {
		t.Fatalf("scorecard runs = %d, want %d", card.HomeTeam.Runs, m.HomeScore.Runs)
	}
	if card.BattingTeam != "home" || card.Innings != 1 {
		t.Fatalf("scorecard live fields = %+v", card)
	}
}
