package engine

import "errors"

// Every rejection is a synchronous error with no partial state
// commit. Callers (the keeper included) are expected to distinguish
// these conditions rather than blindly retry.
var (
	// Phase violations.
	ErrCommitClosed    = errors.New("commit phase over")
	ErrRevealNotOpen   = errors.New("reveal not started")
	ErrRevealClosed    = errors.New("reveal phase over")
	ErrRevealNotEnded  = errors.New("reveal not ended")

	// Idempotency violations.
	ErrAlreadySettled  = errors.New("already settled")
	ErrAlreadyRevealed = errors.New("already revealed")
	ErrUpkeepNotNeeded = errors.New("upkeep not needed")

	// Commit/reveal validation.
	ErrNoCommit               = errors.New("no commit found")
	ErrCommitmentMismatch     = errors.New("commitment mismatch")
	ErrInsufficientCollateral = errors.New("insufficient collateral")
	ErrCollateralBelowFloor   = errors.New("collateral below minimum")
	ErrZeroAmount             = errors.New("zero bid amount")
	ErrTextTooLong            = errors.New("text too long")
	ErrCidTooLong             = errors.New("media reference too long")

	// Lookups and post-settlement operations.
	ErrUnknownAuction = errors.New("unknown auction")
	ErrNotSettled     = errors.New("auction not settled")
	ErrNoWinner       = errors.New("auction has no winner")
	ErrZeroTip        = errors.New("zero tip")
	ErrNothingToClaim = errors.New("nothing to claim")
)
