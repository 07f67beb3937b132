package game

import "errors"

// Sentinel errors for the failure modes callers branch on. The HTTP
// layer maps these to error kinds in the response envelope.
var (
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
	ErrTooManyListings   = errors.New("too many listings")
	ErrMalformedState    = errors.New("malformed state")
	ErrGameOver          = errors.New("game over")
)

// KindOf returns the wire kind for an error, or "internal" for
// anything unrecognized.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrInvalidParameters):
		return "invalid_parameters"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrTooManyListings):
		return "too_many_listings"
	case errors.Is(err, ErrMalformedState):
		return "malformed_state"
	case errors.Is(err, ErrGameOver):
		return "game_over"
	default:
		return "internal"
	}
}
