package match

import (
	"time"
)

// This file is the scoring state machine. Every mutation of the live score
// funnels through applyScoring, which is pure arithmetic over the match
// aggregate: replaying the ball history from an empty scorecard through
// Rebuild reproduces currentScore, battingStats and bowlingStats exactly.

// ApplyDelivery validates a delivery against the current live state, applies
// it, and appends it to the ball history. The match is either fully updated
// or untouched: all validation happens before the first field changes.
func (m *Match) ApplyDelivery(d Delivery) error {
	if m.IsLocked {
		return ErrMatchLocked
	}
	if m.Status != StatusMatchLive {
		return ErrMatchNotLive
	}
	if !m.MatchSetup.IsSetupComplete {
		return ErrSetupIncomplete
	}
	if err := m.validateDelivery(&d); err != nil {
		return err
	}
	if d.Timestamp.IsZero() {
		d.Timestamp = time.Now().UTC()
	}
	applyScoring(m, &d)
	m.BallHistory = append(m.BallHistory, d)
	return nil
}

func (m *Match) validateDelivery(d *Delivery) error {
	if d.Ball < 0 || d.Ball > 5 {
		return ErrInvalidBallNumber
	}
	if !d.BallType.valid() {
		return ErrInvalidBallType
	}
	if d.Runs < 0 {
		return ErrNegativeRuns
	}
	if d.IsWicket {
		if d.DismissalType == nil || !d.DismissalType.valid() {
			return ErrInvalidDismissal
		}
		if m.scoreFor(m.LiveState.BattingTeam).Wickets >= 10 {
			return ErrWicketsExhausted
		}
	}
	if d.Innings != m.LiveState.CurrentInnings {
		return ErrWrongInnings
	}
	if d.Over != m.LiveState.CurrentOver || d.Ball != m.LiveState.CurrentBall {
		return ErrOutOfSequence
	}
	return nil
}

// applyScoring folds one delivery into the aggregate. It trusts the record:
// the delivery's own striker/non-striker/bowler fields say who was at the
// crease, so replay does not depend on any state outside the history.
func applyScoring(m *Match, d *Delivery) {
	bat := m.LiveState.BattingTeam
	bowl := bat.Opposite()
	score := m.scoreFor(bat)

	// Runs count to the team total unconditionally; the value already
	// carries the fixed extra for a wide or no-ball.
	score.Runs += d.Runs
	switch d.BallType {
	case BallWide:
		score.Wides += d.Runs
	case BallNoBall:
		score.NoBalls += d.Runs
	case BallBye:
		score.Byes += d.Runs
	case BallLegBye:
		score.LegByes += d.Runs
	}

	if d.IsWicket {
		score.Wickets++
	}

	// Only legal deliveries advance the over.
	overCompleted := false
	if d.BallType.isLegal() {
		score.Balls++
		if score.Balls == 6 {
			score.Balls = 0
			score.Overs++
			overCompleted = true
		}
	}

	// Striker's batting figures. A wide is never faced and never credits the
	// batter; byes and leg-byes are faced but the runs belong to extras.
	bs := m.battingStatsFor(d.Innings, bat, d.StrikerID)
	if d.BallType.countsAsBallFaced() {
		bs.Balls++
	}
	if d.BallType == BallNormal {
		bs.Runs += d.Runs
		if d.IsBoundary {
			bs.Fours++
		}
		if d.IsSix {
			bs.Sixes++
		}
	}
	bs.StrikeRate = strikeRate(bs.Runs, bs.Balls)

	if d.IsWicket {
		outID := d.DismissedBatterID
		if outID == "" {
			outID = d.StrikerID
		}
		out := m.battingStatsFor(d.Innings, bat, outID)
		out.IsOut = true
		out.DismissalType = d.DismissalType
		out.DismissedBy = d.BowlerID
		out.FielderID = d.FielderID
		fowScore, fowOver, fowBall := score.Runs, d.Over, d.Ball
		out.FOWScore, out.FOWOver, out.FOWBall = &fowScore, &fowOver, &fowBall
	}

	// Bowler's figures.
	bw := m.bowlingStatsFor(d.Innings, bowl, d.BowlerID)
	bw.Conceded += d.Runs
	switch d.BallType {
	case BallWide:
		bw.Wides++
	case BallNoBall:
		bw.NoBalls++
	}
	if d.BallType.isLegal() {
		bw.Balls++
	}
	if d.IsWicket && d.DismissalType != nil && d.DismissalType.creditsBowler() {
		bw.Wickets++
	}
	bw.Economy = perSixBalls(bw.Conceded, bw.Balls)

	// Strike rotation. An incoming batter replaces the striker; otherwise odd
	// batter-facing runs swap ends; the end of an over swaps again.
	striker, nonStriker := d.StrikerID, d.NonStrikerID
	if d.IsWicket && d.IncomingBatterID != "" {
		striker = d.IncomingBatterID
	} else if d.BallType.countsAsBallFaced() && d.Runs%2 == 1 {
		striker, nonStriker = nonStriker, striker
	}
	if overCompleted {
		striker, nonStriker = nonStriker, striker
	}

	ls := &m.LiveState
	ls.StrikerID, ls.NonStrikerID, ls.BowlerID = striker, nonStriker, d.BowlerID
	ls.CurrentOver, ls.CurrentBall = score.Overs, score.Balls

	// Partnership is recomputed fresh from the active pair's aggregates, not
	// tracked as a running delta.
	sRuns, sBalls := m.lookupBatting(d.Innings, bat, striker)
	nRuns, nBalls := m.lookupBatting(d.Innings, bat, nonStriker)
	ls.PartnershipRuns = sRuns + nRuns
	ls.PartnershipBalls = sBalls + nBalls

	ls.CurrentRunRate = perSixBalls(score.Runs, score.ballsBowled())
	m.refreshChase()

	maxOvers := m.Format.MaxOvers()
	if d.Innings == 1 && (score.Wickets >= 10 || (maxOvers > 0 && score.Overs >= maxOvers)) {
		ls.IsInningsBreak = true
	}
}

// lookupBatting reads a player's innings aggregate without creating an entry.
func (m *Match) lookupBatting(innings int, side TeamSide, playerID string) (runs, balls int) {
	st, ok := m.BattingStats[StatsKey(innings, side, playerID)]
	if !ok {
		return 0, 0
	}
	return st.Runs, st.Balls
}

// refreshChase recomputes the target and required run rate for the chasing
// side. Outside the second innings both are cleared; formats without a fixed
// overs limit have no required rate.
func (m *Match) refreshChase() {
	ls := &m.LiveState
	if ls.CurrentInnings != 2 {
		ls.Target, ls.RequiredRunRate = nil, nil
		return
	}
	chasing := m.scoreFor(ls.BattingTeam)
	setBy := m.scoreFor(ls.BattingTeam.Opposite())
	target := setBy.Runs + 1
	ls.Target = &target

	maxOvers := m.Format.MaxOvers()
	if maxOvers == 0 {
		ls.RequiredRunRate = nil
		return
	}
	remaining := maxOvers*6 - chasing.ballsBowled()
	if remaining <= 0 {
		ls.RequiredRunRate = nil
		return
	}
	need := float64(target - chasing.Runs)
	if need < 0 {
		need = 0
	}
	rrr := need * 6 / float64(remaining)
	ls.RequiredRunRate = &rrr
}

// Rebuild derives the entire scorecard from the ball history alone. Each
// record seeds the live pointers from its own fields, so a history truncated
// by undo or corrected mid-stream still replays deterministically.
func (m *Match) Rebuild() error {
	m.HomeScore, m.AwayScore = TeamScore{}, TeamScore{}
	m.BattingStats = BattingStatsMap{}
	m.BowlingStats = BowlingStatsMap{}

	firstBat := m.battingTeamForInnings(1)
	ls := &m.LiveState
	ls.CurrentInnings = 1
	ls.BattingTeam = firstBat
	ls.CurrentOver, ls.CurrentBall = 0, 0
	ls.IsInningsBreak = false
	ls.PartnershipRuns, ls.PartnershipBalls = 0, 0
	ls.CurrentRunRate = 0
	ls.Target, ls.RequiredRunRate = nil, nil

	for i := range m.BallHistory {
		d := m.BallHistory[i]
		if d.Innings == 2 && ls.CurrentInnings == 1 {
			ls.CurrentInnings = 2
			ls.BattingTeam = firstBat.Opposite()
			ls.IsInningsBreak = false
		}
		ls.StrikerID, ls.NonStrikerID, ls.BowlerID = d.StrikerID, d.NonStrikerID, d.BowlerID
		ls.CurrentOver, ls.CurrentBall = d.Over, d.Ball
		applyScoring(m, &d)
	}
	return nil
}

// UndoLastBall pops the most recent delivery and rebuilds the scorecard by
// replaying the truncated history. Live pointers are restored from the popped
// record itself: it names who was at the crease and the over/ball coordinates
// before it was bowled.
func (m *Match) UndoLastBall() error {
	if m.IsLocked {
		return ErrMatchLocked
	}
	n := len(m.BallHistory)
	if n == 0 {
		return ErrNoDeliveries
	}
	popped := m.BallHistory[n-1]
	m.BallHistory = m.BallHistory[:n-1]

	if err := m.Rebuild(); err != nil {
		return err
	}

	ls := &m.LiveState
	ls.CurrentInnings = popped.Innings
	ls.BattingTeam = m.battingTeamForInnings(popped.Innings)
	ls.StrikerID, ls.NonStrikerID, ls.BowlerID = popped.StrikerID, popped.NonStrikerID, popped.BowlerID
	ls.CurrentOver, ls.CurrentBall = popped.Over, popped.Ball
	// Rebuild re-derived the break flag from the truncated history; it only
	// needs clearing when the popped ball belongs to the second innings, where
	// the innings switch had already dismissed the break.
	if popped.Innings == 2 {
		ls.IsInningsBreak = false
	}

	bat := ls.BattingTeam
	sRuns, sBalls := m.lookupBatting(popped.Innings, bat, popped.StrikerID)
	nRuns, nBalls := m.lookupBatting(popped.Innings, bat, popped.NonStrikerID)
	ls.PartnershipRuns = sRuns + nRuns
	ls.PartnershipBalls = sBalls + nBalls

	score := m.scoreFor(bat)
	ls.CurrentRunRate = perSixBalls(score.Runs, score.ballsBowled())
	m.refreshChase()
	return nil
}

// CompleteSetup establishes the toss outcome, the two elevens and the opening
// players, and moves an upcoming match to live. Re-running setup on a live
// match restarts the scorecard without regressing the status.
func (m *Match) CompleteSetup(tossWinner TeamSide, decision TossDecision, homeXI, awayXI []string, strikerID, nonStrikerID, bowlerID string) error {
	if m.IsLocked {
		return ErrMatchLocked
	}
	if m.Status == StatusMatchCompleted || m.Status == StatusMatchCancelled {
		return ErrMatchTerminal
	}

	m.MatchSetup = MatchSetup{
		IsSetupComplete: true,
		TossWinner:      tossWinner,
		TossDecision:    decision,
		HomeXI:          homeXI,
		AwayXI:          awayXI,
	}
	// Derived state restarts with the setup so the score always remains
	// reconstructible from the (now empty) history.
	m.HomeScore, m.AwayScore = TeamScore{}, TeamScore{}
	m.BallHistory = nil
	m.BattingStats = BattingStatsMap{}
	m.BowlingStats = BowlingStatsMap{}
	m.LiveState = LiveState{
		CurrentInnings: 1,
		BattingTeam:    m.battingTeamForInnings(1),
		StrikerID:      strikerID,
		NonStrikerID:   nonStrikerID,
		BowlerID:       bowlerID,
	}
	if m.Status == StatusMatchUpcoming {
		m.Status = StatusMatchLive
	}
	return nil
}

// StartSecondInnings switches the batting side, seeds the new openers and
// bowler, and computes the chase target. The first innings' score stays final.
func (m *Match) StartSecondInnings(strikerID, nonStrikerID, bowlerID string) error {
	if m.IsLocked {
		return ErrMatchLocked
	}
	if m.Status != StatusMatchLive {
		return ErrMatchNotLive
	}
	if !m.MatchSetup.IsSetupComplete {
		return ErrSetupIncomplete
	}
	if m.LiveState.CurrentInnings != 1 {
		return ErrNotFirstInnings
	}

	ls := &m.LiveState
	ls.CurrentInnings = 2
	ls.BattingTeam = m.battingTeamForInnings(2)
	ls.StrikerID, ls.NonStrikerID, ls.BowlerID = strikerID, nonStrikerID, bowlerID
	ls.CurrentOver, ls.CurrentBall = 0, 0
	ls.IsInningsBreak = false
	ls.PartnershipRuns, ls.PartnershipBalls = 0, 0
	ls.CurrentRunRate = 0
	m.refreshChase()
	return nil
}

// Complete locks the match and records the caller-supplied result verbatim.
func (m *Match) Complete(result *MatchResult, now time.Time) error {
	if m.IsLocked {
		return ErrMatchLocked
	}
	if m.Status == StatusMatchCompleted || m.Status == StatusMatchCancelled {
		return ErrMatchTerminal
	}
	m.Status = StatusMatchCompleted
	m.EndTime = &now
	m.IsLocked = true
	if result != nil {
		m.MatchResult = result
	}
	return nil
}

// Cancel moves an upcoming or live match to cancelled and locks it.
func (m *Match) Cancel(now time.Time) error {
	if m.IsLocked {
		return ErrMatchLocked
	}
	if m.Status == StatusMatchCompleted || m.Status == StatusMatchCancelled {
		return ErrMatchTerminal
	}
	m.Status = StatusMatchCancelled
	m.EndTime = &now
	m.IsLocked = true
	return nil
}

// LivePointerUpdate is a partial correction of the live pointers, the manual
// escape hatch when the scorer needs to fix who is on strike or the over
// count without touching the recorded history.
type LivePointerUpdate struct {
	StrikerID    *string
	NonStrikerID *string
	BowlerID     *string
	CurrentOver  *int
	CurrentBall  *int
}

// UpdateLivePointers applies a manual correction to the live pointers.
func (m *Match) UpdateLivePointers(upd LivePointerUpdate) error {
	if m.IsLocked {
		return ErrMatchLocked
	}
	if m.Status != StatusMatchLive {
		return ErrMatchNotLive
	}
	if !m.MatchSetup.IsSetupComplete {
		return ErrSetupIncomplete
	}
	if upd.CurrentBall != nil && (*upd.CurrentBall < 0 || *upd.CurrentBall > 5) {
		return ErrInvalidBallNumber
	}
	if upd.CurrentOver != nil && *upd.CurrentOver < 0 {
		return ErrOutOfSequence
	}

	ls := &m.LiveState
	if upd.StrikerID != nil {
		ls.StrikerID = *upd.StrikerID
	}
	if upd.NonStrikerID != nil {
		ls.NonStrikerID = *upd.NonStrikerID
	}
	if upd.BowlerID != nil {
		ls.BowlerID = *upd.BowlerID
	}
	if upd.CurrentOver != nil {
		ls.CurrentOver = *upd.CurrentOver
	}
	if upd.CurrentBall != nil {
		ls.CurrentBall = *upd.CurrentBall
	}

	bat := ls.BattingTeam
	sRuns, sBalls := m.lookupBatting(ls.CurrentInnings, bat, ls.StrikerID)
	nRuns, nBalls := m.lookupBatting(ls.CurrentInnings, bat, ls.NonStrikerID)
	ls.PartnershipRuns = sRuns + nRuns
	ls.PartnershipBalls = sBalls + nBalls
	return nil
}

// strikeRate is runs per hundred balls.
func strikeRate(runs, balls int) float64 {
	if balls == 0 {
		return 0
	}
	return float64(runs) / float64(balls) * 100
}

// perSixBalls converts a runs-per-ball figure to runs per over. Serves both
// run rate (team) and economy (bowler).
func perSixBalls(runs, balls int) float64 {
	if balls == 0 {
		return 0
	}
	return float64(runs) * 6 / float64(balls)
}
