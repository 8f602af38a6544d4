package ledger

import "fmt"

// RejectionError is a business-rule or validation rejection. Code is stable
// and machine-readable; it travels to the API envelope unchanged. A
// rejection never leaves partial state behind.
type RejectionError struct {
	Code string
	Msg  string
}

func (e *RejectionError) Error() string { return e.Msg }

func reject(code, msg string) *RejectionError {
	return &RejectionError{Code: code, Msg: msg}
}

var (
	ErrInvalidSide           = reject("invalid_side", "side must be yes or no")
	ErrInvalidMatchID        = reject("invalid_match_id", "matchId must be a positive number")
	ErrInvalidMarketID       = reject("invalid_market_id", "marketId must be a positive number")
	ErrInvalidOption         = reject("invalid_option", "optionLabel must not be empty")
	ErrInvalidAmount         = reject("invalid_amount", "amount must be positive")
	ErrInvalidUser           = reject("invalid_user", "userId must not be empty")
	ErrUserSuspended         = reject("user_suspended", "user is suspended from trading")
	ErrMatchNotFound         = reject("match_not_found", "match does not exist")
	ErrMatchSettled          = reject("match_settled", "match is already settled")
	ErrMarketSuspended       = reject("market_suspended", "trading on this match is suspended")
	ErrMarketNotFound        = reject("market_not_found", "market does not exist on this match")
	ErrOptionNotFound        = reject("option_not_found", "option label does not resolve on this market")
	ErrStakeTooSmall         = reject("stake_too_small", "amount is too small for the current price")
	ErrInsufficientBalance   = reject("insufficient_balance", "amount exceeds available balance")
	ErrUserExposureCap       = reject("user_exposure_cap", "order would exceed the per-user exposure cap")
	ErrMatchExposureCap      = reject("match_exposure_cap", "order would exceed the per-match exposure cap")
	ErrPositionNotFound      = reject("position_not_found", "position does not exist")
	ErrPositionNotOwned      = reject("position_not_owned", "position belongs to another user")
	ErrPositionNotOpen       = reject("position_not_open", "position is not open")
	ErrCloseExceedsRemaining = reject("close_exceeds_remaining", "sharesToClose exceeds remaining shares")
	ErrNoWinner              = reject("no_winner", "match winner cannot be determined yet")
)

// PersistenceError wraps a durable-store failure after the in-memory
// mutation was rolled back. The request is safe to retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger: %s not persisted: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
