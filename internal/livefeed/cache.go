package livefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL constants
const (
	LiveScorecardTTL  = 2 * time.Hour
	FinalScorecardTTL = 6 * time.Hour
)

// Scorecard is the compact live view of a match, written to the cache after
// every successful scoring mutation and served on the public live endpoint.
type Scorecard struct {
	MatchID    string `json:"match_id"`
	Status     string `json:"status"`
	Format     string `json:"format"`
	SeriesName string `json:"series_name,omitempty"`
	Venue      string `json:"venue,omitempty"`

	HomeTeam  TeamLine `json:"home_team"`
	AwayTeam  TeamLine `json:"away_team"`
	UpdatedAt string   `json:"updated_at"`

	Innings      int    `json:"innings"`
	BattingTeam  string `json:"batting_team"`
	StrikerID    string `json:"striker_id,omitempty"`
	NonStrikerID string `json:"non_striker_id,omitempty"`
	BowlerID     string `json:"bowler_id,omitempty"`

	CurrentRunRate  float64  `json:"current_run_rate"`
	RequiredRunRate *float64 `json:"required_run_rate,omitempty"`
	Target          *int     `json:"target,omitempty"`

	RecentBalls []BallLine `json:"recent_balls,omitempty"`
}

// TeamLine is one side's scoreboard line.
type TeamLine struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
	Runs      int    `json:"runs"`
	Wickets   int    `json:"wickets"`
	Overs     int    `json:"overs"`
	Balls     int    `json:"balls"`
}

// BallLine summarizes one recent delivery for the ticker.
type BallLine struct {
	Over     int    `json:"over"`
	Ball     int    `json:"ball"`
	Runs     int    `json:"runs"`
	BallType string `json:"ball_type"`
	IsWicket bool   `json:"is_wicket"`
}

// Cache stores live scorecards in Redis.
type Cache struct {
	client *redis.Client
}

// NewCache creates a scorecard cache on the given Redis client.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func scorecardKey(matchID string) string {
	return fmt.Sprintf("match:%s:scorecard", matchID)
}

// WriteScorecard stores the scorecard with a TTL appropriate to the match
// status.
func (c *Cache) WriteScorecard(ctx context.Context, card *Scorecard) error {
	data, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("marshaling scorecard: %w", err)
	}
	ttl := FinalScorecardTTL
	if card.Status == "live" {
		ttl = LiveScorecardTTL
	}
	return c.client.Set(ctx, scorecardKey(card.MatchID), data, ttl).Err()
}

// ReadScorecard retrieves a cached scorecard. A cache miss returns
// (nil, nil); the caller falls through to the store.
func (c *Cache) ReadScorecard(ctx context.Context, matchID string) (*Scorecard, error) {
	data, err := c.client.Get(ctx, scorecardKey(matchID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var card Scorecard
	if err := json.Unmarshal([]byte(data), &card); err != nil {
		return nil, fmt.Errorf("unmarshaling scorecard: %w", err)
	}
	return &card, nil
}

// DropScorecard removes a cached scorecard.
func (c *Cache) DropScorecard(ctx context.Context, matchID string) error {
	return c.client.Del(ctx, scorecardKey(matchID)).Err()
}
