package match

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// MatchStatus is the lifecycle state of a match. completed and cancelled are
// terminal: once a match reaches either, it is locked and no field may change.
type MatchStatus string

const (
	StatusMatchUpcoming  MatchStatus = "upcoming"
	StatusMatchLive      MatchStatus = "live"
	StatusMatchCompleted MatchStatus = "completed"
	StatusMatchCancelled MatchStatus = "cancelled"
)

// MatchFormat identifies the competition format. Limited-overs formats carry a
// fixed overs cap; multi-day formats do not.
type MatchFormat string

const (
	FormatTest       MatchFormat = "test"
	FormatODI        MatchFormat = "odi"
	FormatT20I       MatchFormat = "t20i"
	FormatT20        MatchFormat = "t20"
	FormatFirstClass MatchFormat = "first_class"
	FormatListA      MatchFormat = "list_a"
)

// MaxOvers returns the per-innings overs cap for the format, or 0 when the
// format has no fixed limit (multi-day cricket).
func (f MatchFormat) MaxOvers() int {
	switch f {
	case FormatT20, FormatT20I:
		return 20
	case FormatODI, FormatListA:
		return 50
	default:
		return 0
	}
}

// TeamSide distinguishes the two sides of a match.
type TeamSide string

const (
	SideHome TeamSide = "home"
	SideAway TeamSide = "away"
)

// Opposite returns the other side.
func (s TeamSide) Opposite() TeamSide {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

// TossDecision is what the toss winner elected to do.
type TossDecision string

const (
	TossDecisionBat  TossDecision = "bat"
	TossDecisionBowl TossDecision = "bowl"
)

// BallType classifies a delivery. Wides and no-balls are illegal deliveries:
// they never advance the over and never count as a ball faced.
type BallType string

const (
	BallNormal BallType = "normal"
	BallWide   BallType = "wide"
	BallNoBall BallType = "no_ball"
	BallBye    BallType = "bye"
	BallLegBye BallType = "leg_bye"
)

func (b BallType) valid() bool {
	switch b {
	case BallNormal, BallWide, BallNoBall, BallBye, BallLegBye:
		return true
	}
	return false
}

// isLegal reports whether the delivery counts towards the six balls of an over.
func (b BallType) isLegal() bool {
	return b != BallWide && b != BallNoBall
}

// countsAsBallFaced reports whether the striker is charged a ball faced.
func (b BallType) countsAsBallFaced() bool {
	switch b {
	case BallNormal, BallBye, BallLegBye:
		return true
	}
	return false
}

// DismissalType enumerates the ways a batter can be out.
type DismissalType string

const (
	DismissalBowled      DismissalType = "bowled"
	DismissalCaught      DismissalType = "caught"
	DismissalLBW         DismissalType = "lbw"
	DismissalRunOut      DismissalType = "run_out"
	DismissalStumped     DismissalType = "stumped"
	DismissalHitWicket   DismissalType = "hit_wicket"
	DismissalRetiredHurt DismissalType = "retired_hurt"
	DismissalRetiredOut  DismissalType = "retired_out"
	DismissalHandledBall DismissalType = "handled_ball"
	DismissalObstructing DismissalType = "obstructing_field"
	DismissalTimedOut    DismissalType = "timed_out"
)

func (d DismissalType) valid() bool {
	switch d {
	case DismissalBowled, DismissalCaught, DismissalLBW, DismissalRunOut,
		DismissalStumped, DismissalHitWicket, DismissalRetiredHurt,
		DismissalRetiredOut, DismissalHandledBall, DismissalObstructing,
		DismissalTimedOut:
		return true
	}
	return false
}

// creditsBowler reports whether the dismissal counts as a wicket in the
// bowler's figures.
func (d DismissalType) creditsBowler() bool {
	switch d {
	case DismissalBowled, DismissalCaught, DismissalLBW, DismissalStumped, DismissalHitWicket:
		return true
	}
	return false
}

// Team identifies one side of the match.
type Team struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// TeamScore is one side's innings score plus its extras breakdown.
type TeamScore struct {
	Runs    int `json:"runs"`
	Wickets int `json:"wickets"` // 0..10
	Overs   int `json:"overs"`   // completed overs
	Balls   int `json:"balls"`   // legal balls into the current over, 0..5

	Wides   int `json:"wides"`
	NoBalls int `json:"no_balls"`
	Byes    int `json:"byes"`
	LegByes int `json:"leg_byes"`
}

// ballsBowled is the total legal deliveries, for run-rate arithmetic.
func (s TeamScore) ballsBowled() int {
	return s.Overs*6 + s.Balls
}

// MatchSetup is the pre-live configuration: toss outcome and the two playing
// elevens. A delivery is only accepted once IsSetupComplete is true.
type MatchSetup struct {
	IsSetupComplete bool         `json:"is_setup_complete"`
	TossWinner      TeamSide     `json:"toss_winner,omitempty"`
	TossDecision    TossDecision `json:"toss_decision,omitempty"`
	HomeXI          []string     `json:"home_xi,omitempty"` // exactly 11 player ids
	AwayXI          []string     `json:"away_xi,omitempty"`
}

// LiveState is the set of live pointers the scorer drives ball by ball.
type LiveState struct {
	CurrentInnings   int      `json:"current_innings"` // 1 or 2
	BattingTeam      TeamSide `json:"batting_team"`
	StrikerID        string   `json:"striker_id"`
	NonStrikerID     string   `json:"non_striker_id"`
	BowlerID         string   `json:"bowler_id"`
	CurrentOver      int      `json:"current_over"`
	CurrentBall      int      `json:"current_ball"` // 0..5
	IsInningsBreak   bool     `json:"is_innings_break"`
	PartnershipRuns  int      `json:"partnership_runs"`
	PartnershipBalls int      `json:"partnership_balls"`
	CurrentRunRate   float64  `json:"current_run_rate"`
	RequiredRunRate  *float64 `json:"required_run_rate,omitempty"` // second innings, limited-overs only
	Target           *int     `json:"target,omitempty"`            // second innings only
}

// Delivery is the immutable record of one ball. The ball history is the
// source of truth: every aggregate on the match must be reconstructible by
// replaying it from an empty scorecard.
type Delivery struct {
	Innings      int    `json:"innings"`
	Over         int    `json:"over"`
	Ball         int    `json:"ball"` // 0..5
	StrikerID    string `json:"striker_id"`
	NonStrikerID string `json:"non_striker_id"`
	BowlerID     string `json:"bowler_id"`

	// Runs is the total attributable to this delivery, already including the
	// fixed extra for a wide or no-ball.
	Runs     int      `json:"runs"`
	BallType BallType `json:"ball_type"`

	IsWicket          bool           `json:"is_wicket"`
	DismissalType     *DismissalType `json:"dismissal_type,omitempty"`
	DismissedBatterID string         `json:"dismissed_batter_id,omitempty"`
	FielderID         string         `json:"fielder_id,omitempty"`
	IncomingBatterID  string         `json:"incoming_batter_id,omitempty"`

	IsBoundary bool `json:"is_boundary"`
	IsSix      bool `json:"is_six"`

	Timestamp time.Time `json:"timestamp"`
}

// BattingStats is one player's batting aggregate for one innings.
type BattingStats struct {
	PlayerID   string  `json:"player_id"`
	Runs       int     `json:"runs"`
	Balls      int     `json:"balls"`
	Fours      int     `json:"fours"`
	Sixes      int     `json:"sixes"`
	StrikeRate float64 `json:"strike_rate"`

	IsOut         bool           `json:"is_out"`
	DismissalType *DismissalType `json:"dismissal_type,omitempty"`
	DismissedBy   string         `json:"dismissed_by,omitempty"`
	FielderID     string         `json:"fielder_id,omitempty"`
	FOWScore      *int           `json:"fow_score,omitempty"` // team score when the wicket fell
	FOWOver       *int           `json:"fow_over,omitempty"`
	FOWBall       *int           `json:"fow_ball,omitempty"`
}

// BowlingStats is one player's bowling aggregate for one innings.
type BowlingStats struct {
	PlayerID string  `json:"player_id"`
	Balls    int     `json:"balls"` // legal deliveries bowled
	Conceded int     `json:"conceded"`
	Wickets  int     `json:"wickets"`
	Wides    int     `json:"wides"`
	NoBalls  int     `json:"no_balls"`
	Economy  float64 `json:"economy"`
}

// OversBowled renders the bowler's balls in overs notation (4.2 = 4 overs
// and 2 balls).
func (b BowlingStats) OversBowled() float64 {
	return float64(b.Balls/6) + float64(b.Balls%6)/10
}

// MatchResult is the caller-supplied outcome recorded on completion. The
// margin is taken verbatim; no derivation is attempted.
type MatchResult struct {
	Winner        TeamSide `json:"winner,omitempty"`
	Margin        string   `json:"margin,omitempty"` // e.g. "won by 5 wickets"
	KeyPerformers []string `json:"key_performers,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// ScorerInfo tracks the owning scorer and their last mutation time.
type ScorerInfo struct {
	ScorerID   string    `json:"scorer_id"`
	LastUpdate time.Time `json:"last_update"`
}

// BattingStatsMap and BowlingStatsMap are JSONB maps of per-player-per-innings
// aggregates keyed by "<innings>:<side>:<playerID>".
type BattingStatsMap map[string]*BattingStats

type BowlingStatsMap map[string]*BowlingStats

// StatsKey builds the aggregate key for an (innings, side, player) triple.
func StatsKey(innings int, side TeamSide, playerID string) string {
	return fmt.Sprintf("%d:%s:%s", innings, side, playerID)
}

// DeliveryLog is the append-only ball history column.
type DeliveryLog []Delivery

// Match is the aggregate root: one document per match id. Nested documents
// are stored as JSONB columns; the scalar columns carry identity, lifecycle
// and the optimistic-concurrency version.
type Match struct {
	ID       string `json:"id" gorm:"primaryKey;size:64"`
	ScorerID string `json:"scorer_id" gorm:"index;not null"`

	SeriesName string      `json:"series_name"`
	Format     MatchFormat `json:"format" gorm:"index;not null"`
	Venue      string      `json:"venue"`
	HomeTeam   Team        `json:"home_team" gorm:"type:jsonb"`
	AwayTeam   Team        `json:"away_team" gorm:"type:jsonb"`

	ScheduledAt time.Time  `json:"scheduled_at"`
	EndTime     *time.Time `json:"end_time,omitempty"`

	Status     MatchStatus `json:"status" gorm:"index;default:'upcoming'"`
	IsVerified bool        `json:"is_verified" gorm:"default:false"`
	IsLocked   bool        `json:"is_locked" gorm:"default:false"`

	HomeScore TeamScore `json:"home_score" gorm:"type:jsonb"`
	AwayScore TeamScore `json:"away_score" gorm:"type:jsonb"`

	MatchSetup MatchSetup `json:"match_setup" gorm:"type:jsonb"`
	LiveState  LiveState  `json:"live_state" gorm:"type:jsonb"`

	BallHistory  DeliveryLog     `json:"ball_history" gorm:"type:jsonb"`
	BattingStats BattingStatsMap `json:"batting_stats" gorm:"type:jsonb"`
	BowlingStats BowlingStatsMap `json:"bowling_stats" gorm:"type:jsonb"`

	MatchResult *MatchResult `json:"match_result,omitempty" gorm:"type:jsonb"`
	ScorerInfo  ScorerInfo   `json:"scorer_info" gorm:"type:jsonb"`

	// Version guards the read-modify-write cycle: the repository only writes
	// when the stored version still matches the one read.
	Version int64 `json:"version" gorm:"not null;default:0"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// scoreFor returns the mutable score for a side.
func (m *Match) scoreFor(side TeamSide) *TeamScore {
	if side == SideHome {
		return &m.HomeScore
	}
	return &m.AwayScore
}

// battingTeamForInnings derives which side bats an innings from the toss:
// the toss winner bats first when it chose to bat, otherwise the other side.
func (m *Match) battingTeamForInnings(innings int) TeamSide {
	first := m.MatchSetup.TossWinner
	if m.MatchSetup.TossDecision == TossDecisionBowl {
		first = first.Opposite()
	}
	if innings == 2 {
		return first.Opposite()
	}
	return first
}

func (m *Match) battingStatsFor(innings int, side TeamSide, playerID string) *BattingStats {
	if m.BattingStats == nil {
		m.BattingStats = BattingStatsMap{}
	}
	key := StatsKey(innings, side, playerID)
	st, ok := m.BattingStats[key]
	if !ok {
		st = &BattingStats{PlayerID: playerID}
		m.BattingStats[key] = st
	}
	return st
}

func (m *Match) bowlingStatsFor(innings int, side TeamSide, playerID string) *BowlingStats {
	if m.BowlingStats == nil {
		m.BowlingStats = BowlingStatsMap{}
	}
	key := StatsKey(innings, side, playerID)
	st, ok := m.BowlingStats[key]
	if !ok {
		st = &BowlingStats{PlayerID: playerID}
		m.BowlingStats[key] = st
	}
	return st
}

// --- JSONB column plumbing ---

func jsonbValue(v interface{}) (driver.Value, error) {
	return json.Marshal(v)
}

// jsonbScan unmarshals a JSONB column into the struct.
func jsonbScan(dst interface{}, src interface{}) error {
	if src == nil {
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		s, sok := src.(string)
		if !sok {
			return fmt.Errorf("jsonb: expected []byte, got %T", src)
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, dst)
}

func (t Team) Value() (driver.Value, error)        { return jsonbValue(t) }
func (t *Team) Scan(src interface{}) error         { return jsonbScan(t, src) }
func (s TeamScore) Value() (driver.Value, error)   { return jsonbValue(s) }
func (s *TeamScore) Scan(src interface{}) error    { return jsonbScan(s, src) }
func (s MatchSetup) Value() (driver.Value, error)  { return jsonbValue(s) }
func (s *MatchSetup) Scan(src interface{}) error   { return jsonbScan(s, src) }
func (l LiveState) Value() (driver.Value, error)   { return jsonbValue(l) }
func (l *LiveState) Scan(src interface{}) error    { return jsonbScan(l, src) }
func (d DeliveryLog) Value() (driver.Value, error) { return jsonbValue(d) }
func (d *DeliveryLog) Scan(src interface{}) error  { return jsonbScan(d, src) }
func (m BattingStatsMap) Value() (driver.Value, error) {
	return jsonbValue(map[string]*BattingStats(m))
}
func (m *BattingStatsMap) Scan(src interface{}) error { return jsonbScan(m, src) }
func (m BowlingStatsMap) Value() (driver.Value, error) {
	return jsonbValue(map[string]*BowlingStats(m))
}
func (m *BowlingStatsMap) Scan(src interface{}) error { return jsonbScan(m, src) }
func (r MatchResult) Value() (driver.Value, error)    { return jsonbValue(r) }
func (r *MatchResult) Scan(src interface{}) error     { return jsonbScan(r, src) }
func (s ScorerInfo) Value() (driver.Value, error)     { return jsonbValue(s) }
func (s *ScorerInfo) Scan(src interface{}) error      { return jsonbScan(s, src) }
