package match

import (
	"time"

	"github.com/pitchside/crease/internal/livefeed"
)

// recentBallCount is how many trailing deliveries the live ticker shows.
const recentBallCount = 6

// BuildScorecard derives the compact live view the feed cache stores.
func BuildScorecard(m *Match) *livefeed.Scorecard {
	card := &livefeed.Scorecard{
		MatchID:    m.ID,
		Status:     string(m.Status),
		Format:     string(m.Format),
		SeriesName: m.SeriesName,
		Venue:      m.Venue,
		HomeTeam:   teamLine(m.HomeTeam, m.HomeScore),
		AwayTeam:   teamLine(m.AwayTeam, m.AwayScore),
		UpdatedAt:  time.Now().UTC().Format(time.RFC3339),

		Innings:      m.LiveState.CurrentInnings,
		BattingTeam:  string(m.LiveState.BattingTeam),
		StrikerID:    m.LiveState.StrikerID,
		NonStrikerID: m.LiveState.NonStrikerID,
		BowlerID:     m.LiveState.BowlerID,

		CurrentRunRate:  m.LiveState.CurrentRunRate,
		RequiredRunRate: m.LiveState.RequiredRunRate,
		Target:          m.LiveState.Target,
	}

	start := len(m.BallHistory) - recentBallCount
	if start < 0 {
		start = 0
	}
	for _, d := range m.BallHistory[start:] {
		card.RecentBalls = append(card.RecentBalls, livefeed.BallLine{
			Over:     d.Over,
			Ball:     d.Ball,
			Runs:     d.Runs,
			BallType: string(d.BallType),
			IsWicket: d.IsWicket,
		})
	}
	return card
}

func teamLine(t Team, s TeamScore) livefeed.TeamLine {
	return livefeed.TeamLine{
		Name:      t.Name,
		ShortName: t.ShortName,
		Runs:      s.Runs,
		Wickets:   s.Wickets,
		Overs:     s.Overs,
		Balls:     s.Balls,
	}
}
