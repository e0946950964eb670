package match

import "errors"

// Sentinel errors for the scoring state machine. Controllers map these onto
// HTTP statuses; everything else surfaces as an internal error.
var (
	// ErrMatchNotFound: no match exists for the requested id.
	ErrMatchNotFound = errors.New("match not found")

	// ErrNotMatchScorer: the caller does not own this match.
	ErrNotMatchScorer = errors.New("only the match scorer may modify this match")

	// ErrVersionConflict: the stored match changed between read and write.
	// The caller should re-read and retry.
	ErrVersionConflict = errors.New("match was modified concurrently")

	ErrMatchLocked       = errors.New("match is locked")
	ErrMatchNotLive      = errors.New("match is not live")
	ErrMatchTerminal     = errors.New("match is completed or cancelled")
	ErrSetupIncomplete   = errors.New("match setup is not complete")
	ErrInvalidBallNumber = errors.New("ball number must be between 0 and 5")
	ErrInvalidBallType   = errors.New("unknown ball type")
	ErrInvalidDismissal  = errors.New("unknown dismissal type")
	ErrNegativeRuns      = errors.New("runs cannot be negative")
	ErrWicketsExhausted  = errors.New("all ten wickets have already fallen")
	ErrOutOfSequence     = errors.New("delivery does not match the current over and ball")
	ErrWrongInnings      = errors.New("delivery innings does not match the current innings")
	ErrNoDeliveries      = errors.New("no deliveries to undo")
	ErrNotFirstInnings   = errors.New("second innings has already started")
)

// IsBadRequest reports whether the error is a caller mistake rather than an
// ownership, existence or concurrency failure.
func IsBadRequest(err error) bool {
	for _, target := range []error{
		ErrMatchLocked, ErrMatchNotLive, ErrMatchTerminal, ErrSetupIncomplete,
		ErrInvalidBallNumber, ErrInvalidBallType, ErrInvalidDismissal,
		ErrNegativeRuns, ErrWicketsExhausted, ErrOutOfSequence,
		ErrWrongInnings, ErrNoDeliveries, ErrNotFirstInnings,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
