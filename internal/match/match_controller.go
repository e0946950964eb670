package match

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pitchside/crease/config"
	"github.com/pitchside/crease/internal/livefeed"
	"github.com/pitchside/crease/internal/middleware"
	"github.com/pitchside/crease/pkg/responses"
)

// MatchController handles match-related HTTP requests.
type MatchController struct {
	repo      MatchRepository
	feed      *livefeed.Cache
	appConfig *config.Config
}

// NewMatchController creates a new match controller. feed may be nil when no
// Redis is configured; the live endpoint then always reads the store.
func NewMatchController(repo MatchRepository, feed *livefeed.Cache, appConfig *config.Config) *MatchController {
	return &MatchController{
		repo:      repo,
		feed:      feed,
		appConfig: appConfig,
	}
}

// --- DTOs for requests ---

// TeamRequest describes one side of the match at creation.
type TeamRequest struct {
	ID        string `json:"id" binding:"required"`
	Name      string `json:"name" binding:"required,min=2,max=100"`
	ShortName string `json:"short_name" binding:"max=10"`
}

// CreateMatchRequest creates the match shell in upcoming state.
type CreateMatchRequest struct {
	SeriesName  string      `json:"series_name" binding:"max=200"`
	Format      MatchFormat `json:"format" binding:"required,oneof=test odi t20i t20 first_class list_a"`
	Venue       string      `json:"venue" binding:"max=200"`
	HomeTeam    TeamRequest `json:"home_team" binding:"required"`
	AwayTeam    TeamRequest `json:"away_team" binding:"required"`
	ScheduledAt time.Time   `json:"scheduled_at" binding:"required"`
}

// CompleteSetupRequest carries the toss outcome, the two playing elevens and
// the opening players.
type CompleteSetupRequest struct {
	TossWinner   TeamSide     `json:"toss_winner" binding:"required,oneof=home away"`
	TossDecision TossDecision `json:"toss_decision" binding:"required,oneof=bat bowl"`
	HomeXI       []string     `json:"home_xi" binding:"required,len=11,dive,required"`
	AwayXI       []string     `json:"away_xi" binding:"required,len=11,dive,required"`
	StrikerID    string       `json:"striker_id" binding:"required"`
	NonStrikerID string       `json:"non_striker_id" binding:"required"`
	BowlerID     string       `json:"bowler_id" binding:"required"`
}

// RecordBallRequest is one delivery as submitted by the scorer.
type RecordBallRequest struct {
	Innings      int    `json:"innings" binding:"required,gte=1,lte=2"`
	Over         int    `json:"over" binding:"gte=0"`
	Ball         int    `json:"ball" binding:"gte=0,lte=5"`
	StrikerID    string `json:"striker_id" binding:"required"`
	NonStrikerID string `json:"non_striker_id" binding:"required"`
	BowlerID     string `json:"bowler_id" binding:"required"`

	Runs     int      `json:"runs" binding:"gte=0"`
	BallType BallType `json:"ball_type" binding:"required,oneof=normal wide no_ball bye leg_bye"`

	IsWicket          bool           `json:"is_wicket"`
	DismissalType     *DismissalType `json:"dismissal_type,omitempty" binding:"omitempty,oneof=bowled caught lbw run_out stumped hit_wicket retired_hurt retired_out handled_ball obstructing_field timed_out"`
	DismissedBatterID string         `json:"dismissed_batter_id,omitempty"`
	FielderID         string         `json:"fielder_id,omitempty"`
	IncomingBatterID  string         `json:"incoming_batter_id,omitempty"`

	IsBoundary bool `json:"is_boundary"`
	IsSix      bool `json:"is_six"`
}

// StartSecondInningsRequest names the new openers and opening bowler.
type StartSecondInningsRequest struct {
	StrikerID    string `json:"striker_id" binding:"required"`
	NonStrikerID string `json:"non_striker_id" binding:"required"`
	BowlerID     string `json:"bowler_id" binding:"required"`
}

// MatchResultRequest is the caller-supplied result recorded on completion.
type MatchResultRequest struct {
	Winner        TeamSide `json:"winner,omitempty" binding:"omitempty,oneof=home away"`
	Margin        string   `json:"margin,omitempty" binding:"max=200"`
	KeyPerformers []string `json:"key_performers,omitempty"`
	Notes         string   `json:"notes,omitempty" binding:"max=2000"`
}

// CompleteMatchRequest finishes the match, optionally with a result.
type CompleteMatchRequest struct {
	Result *MatchResultRequest `json:"result,omitempty"`
}

// UpdateLiveStateRequest is the manual correction path for live pointers.
type UpdateLiveStateRequest struct {
	StrikerID    *string `json:"striker_id,omitempty"`
	NonStrikerID *string `json:"non_striker_id,omitempty"`
	BowlerID     *string `json:"bowler_id,omitempty"`
	CurrentOver  *int    `json:"current_over,omitempty" binding:"omitempty,gte=0"`
	CurrentBall  *int    `json:"current_ball,omitempty" binding:"omitempty,gte=0,lte=5"`
}

// --- Helpers ---

// loadOwnedMatch fetches the match and checks caller ownership. The match and
// a nil error means go ahead; otherwise a response has been written.
func (mc *MatchController) loadOwnedMatch(c *gin.Context) *Match {
	scorerID, err := middleware.GetScorerIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return nil
	}

	m, err := mc.repo.GetMatchByID(c.Param("id"))
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch match: "+err.Error())
		return nil
	}
	if m == nil {
		respondEngineError(c, ErrMatchNotFound)
		return nil
	}
	if m.ScorerID != scorerID {
		respondEngineError(c, ErrNotMatchScorer)
		return nil
	}
	return m
}

// saveAndRespond persists the mutated aggregate and replies with it. A stale
// version means another request won the write; the caller retries with fresh
// state.
func (mc *MatchController) saveAndRespond(c *gin.Context, m *Match, message string) {
	m.ScorerInfo.ScorerID = m.ScorerID
	m.ScorerInfo.LastUpdate = time.Now().UTC()

	if err := mc.repo.SaveMatch(m); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			responses.ErrorResponse(c, http.StatusConflict, "Match was modified by another request, reload and retry")
			return
		}
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to save match: "+err.Error())
		return
	}

	mc.publishScorecard(c, m)

	responses.SuccessResponse(c, http.StatusOK, gin.H{
		"message": message,
		"match":   m,
	})
}

// publishScorecard pushes the live snapshot to the feed cache, best effort.
func (mc *MatchController) publishScorecard(c *gin.Context, m *Match) {
	if mc.feed == nil {
		return
	}
	if err := mc.feed.WriteScorecard(c.Request.Context(), BuildScorecard(m)); err != nil {
		log.Printf("livefeed: failed to publish scorecard for match %s: %v", m.ID, err)
	}
}

// respondEngineError maps a scoring-engine error onto the HTTP taxonomy.
func respondEngineError(c *gin.Context, err error) {
	switch {
	case IsBadRequest(err):
		responses.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotMatchScorer):
		responses.ErrorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrMatchNotFound):
		responses.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrVersionConflict):
		responses.ErrorResponse(c, http.StatusConflict, err.Error())
	default:
		responses.ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
}

// --- Controller methods ---

// CreateMatch creates a match shell owned by the authenticated scorer.
func (mc *MatchController) CreateMatch(c *gin.Context) {
	scorerID, err := middleware.GetScorerIDFromContext(c)
	if err != nil {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	m := Match{
		ID:          uuid.NewString(),
		ScorerID:    scorerID,
		SeriesName:  req.SeriesName,
		Format:      req.Format,
		Venue:       req.Venue,
		HomeTeam:    Team(req.HomeTeam),
		AwayTeam:    Team(req.AwayTeam),
		ScheduledAt: req.ScheduledAt,
		Status:      StatusMatchUpcoming,
		ScorerInfo:  ScorerInfo{ScorerID: scorerID, LastUpdate: time.Now().UTC()},
	}

	if err := mc.repo.CreateMatch(&m); err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to create match: "+err.Error())
		return
	}

	responses.SuccessResponse(c, http.StatusCreated, gin.H{
		"message": "Match created successfully",
		"match":   m,
	})
}

// GetMatchByID retrieves a specific match by ID.
// @Summary Get a match by ID
// @Tags matches
// @Produce json
// @Param id path string true "Match ID"
// @Success 200 {object} Match
// @Router /matches/{id} [get]
func (mc *MatchController) GetMatchByID(c *gin.Context) {
	m, err := mc.repo.GetMatchByID(c.Param("id"))
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch match: "+err.Error())
		return
	}
	if m == nil {
		responses.ErrorResponse(c, http.StatusNotFound, "Match not found")
		return
	}
	responses.SuccessResponse(c, http.StatusOK, m)
}

// GetMatches retrieves matches based on filters.
// @Summary List matches
// @Tags matches
// @Produce json
// @Param status query string false "Filter by status"
// @Param format query string false "Filter by format"
// @Router /matches [get]
func (mc *MatchController) GetMatches(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	filters := make(map[string]interface{})
	if status := c.Query("status"); status != "" {
		filters["status"] = status
	}
	if format := c.Query("format"); format != "" {
		filters["format"] = format
	}

	matches, total, err := mc.repo.GetMatches(filters, page, pageSize)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch matches: "+err.Error())
		return
	}
	responses.PaginatedResponse(c, http.StatusOK, matches, page, pageSize, total)
}

// GetLiveScorecard serves the compact live view, preferring the feed cache.
func (mc *MatchController) GetLiveScorecard(c *gin.Context) {
	matchID := c.Param("id")

	if mc.feed != nil {
		card, err := mc.feed.ReadScorecard(c.Request.Context(), matchID)
		if err != nil {
			log.Printf("livefeed: read failed for match %s: %v", matchID, err)
		} else if card != nil {
			responses.SuccessResponse(c, http.StatusOK, card)
			return
		}
	}

	m, err := mc.repo.GetMatchByID(matchID)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to fetch match: "+err.Error())
		return
	}
	if m == nil {
		responses.ErrorResponse(c, http.StatusNotFound, "Match not found")
		return
	}

	card := BuildScorecard(m)
	mc.publishScorecard(c, m)
	responses.SuccessResponse(c, http.StatusOK, card)
}

// CompleteSetup establishes rosters, toss and openers, and takes the match
// live.
func (mc *MatchController) CompleteSetup(c *gin.Context) {
	m := mc.loadOwnedMatch(c)
	if m == nil {
		return
	}

	var req CompleteSetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	if err := m.CompleteSetup(req.TossWinner, req.TossDecision, req.HomeXI, req.AwayXI,
		req.StrikerID, req.NonStrikerID, req.BowlerID); err != nil {
		respondEngineError(c, err)
		return
	}

	mc.saveAndRespond(c, m, "Match setup completed")
}

// RecordBall applies one delivery to the live match.
// @Summary Record a delivery
// @Tags scoring
// @Accept json
// @Produce json
// @Param id path string true "Match ID"
// @Param delivery body RecordBallRequest true "Delivery"
// @Router /matches/{id}/balls [post]
func (mc *MatchController) RecordBall(c *gin.Context) {
	m := mc.loadOwnedMatch(c)
	if m == nil {
		return
	}

	var req RecordBallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	d := Delivery{
		Innings:           req.Innings,
		Over:              req.Over,
		Ball:              req.Ball,
		StrikerID:         req.StrikerID,
		NonStrikerID:      req.NonStrikerID,
		BowlerID:          req.BowlerID,
		Runs:              req.Runs,
		BallType:          req.BallType,
		IsWicket:          req.IsWicket,
		DismissalType:     req.DismissalType,
		DismissedBatterID: req.DismissedBatterID,
		FielderID:         req.FielderID,
		IncomingBatterID:  req.IncomingBatterID,
		IsBoundary:        req.IsBoundary,
		IsSix:             req.IsSix,
	}

	if err := m.ApplyDelivery(d); err != nil {
		respondEngineError(c, err)
		return
	}

	mc.saveAndRespond(c, m, "Ball recorded")
}

// UndoLastBall reverts the most recent delivery by replaying the truncated
// history.
func (mc *MatchController) UndoLastBall(c *gin.Context) {
	m := mc.loadOwnedMatch(c)
	if m == nil {
		return
	}

	if err := m.UndoLastBall(); err != nil {
		respondEngineError(c, err)
		return
	}

	mc.saveAndRespond(c, m, "Last ball undone")
}

// StartSecondInnings switches the batting side and sets the chase target.
func (mc *MatchController) StartSecondInnings(c *gin.Context) {
	m := mc.loadOwnedMatch(c)
	if m == nil {
		return
	}

	var req StartSecondInningsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	if err := m.StartSecondInnings(req.StrikerID, req.NonStrikerID, req.BowlerID); err != nil {
		respondEngineError(c, err)
		return
	}

	mc.saveAndRespond(c, m, "Second innings started")
}

// CompleteMatch finishes and locks the match.
func (mc *MatchController) CompleteMatch(c *gin.Context) {
	m := mc.loadOwnedMatch(c)
	if m == nil {
		return
	}

	// An empty body means completion without a result.
	var req CompleteMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		responses.ValidationErrorResponse(c, err)
		return
	}

	var result *MatchResult
	if req.Result != nil {
		result = &MatchResult{
			Winner:        req.Result.Winner,
			Margin:        req.Result.Margin,
			KeyPerformers: req.Result.KeyPerformers,
			Notes:         req.Result.Notes,
		}
	}

	if err := m.Complete(result, time.Now().UTC()); err != nil {
		respondEngineError(c, err)
		return
	}

	mc.saveAndRespond(c, m, "Match completed")
}

// CancelMatch cancels and locks the match.
func (mc *MatchController) CancelMatch(c *gin.Context) {
	m := mc.loadOwnedMatch(c)
	if m == nil {
		return
	}

	if err := m.Cancel(time.Now().UTC()); err != nil {
		respondEngineError(c, err)
		return
	}

	mc.saveAndRespond(c, m, "Match cancelled")
}

// UpdateLiveState is the manual correction path for live pointers.
func (mc *MatchController) UpdateLiveState(c *gin.Context) {
	m := mc.loadOwnedMatch(c)
	if m == nil {
		return
	}

	var req UpdateLiveStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	upd := LivePointerUpdate{
		StrikerID:    req.StrikerID,
		NonStrikerID: req.NonStrikerID,
		BowlerID:     req.BowlerID,
		CurrentOver:  req.CurrentOver,
		CurrentBall:  req.CurrentBall,
	}
	if err := m.UpdateLivePointers(upd); err != nil {
		respondEngineError(c, err)
		return
	}

	mc.saveAndRespond(c, m, "Live state updated")
}
