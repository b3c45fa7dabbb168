package service

import (
	"github.com/pkg/errors"

	"github.com/erfannorozi54/highest-voice/engine"
)

var (
	errSystem         = errors.New("system error")
	errInvalidAddress = errors.New("invalid address")
	errInvalidAmount  = errors.New("invalid wei amount")
	errInvalidHash    = errors.New("invalid commitment hash")
	errInvalidSalt    = errors.New("invalid salt")
	errInvalidID      = errors.New("invalid auction id")
)

// ErrorCode maps every error the API can surface to a stable numeric
// code so callers can branch without string matching.
var ErrorCode = map[error]int{
	errSystem:         1000,
	errInvalidAddress: 1001,
	errInvalidAmount:  1002,
	errInvalidHash:    1003,
	errInvalidSalt:    1004,
	errInvalidID:      1005,

	engine.ErrCommitClosed:           2001,
	engine.ErrRevealNotOpen:          2002,
	engine.ErrRevealClosed:           2003,
	engine.ErrRevealNotEnded:         2004,
	engine.ErrAlreadySettled:         2005,
	engine.ErrAlreadyRevealed:        2006,
	engine.ErrNoCommit:               2007,
	engine.ErrCommitmentMismatch:     2008,
	engine.ErrInsufficientCollateral: 2009,
	engine.ErrCollateralBelowFloor:   2010,
	engine.ErrZeroAmount:             2011,
	engine.ErrTextTooLong:            2012,
	engine.ErrCidTooLong:             2013,
	engine.ErrUnknownAuction:         2014,
	engine.ErrNotSettled:             2015,
	engine.ErrNoWinner:               2016,
	engine.ErrZeroTip:                2017,
	engine.ErrNothingToClaim:         2018,
	engine.ErrUpkeepNotNeeded:        2019,
}

// CodeOf resolves an error to its wire code, falling back to the
// generic system code.
func CodeOf(err error) int {
	if code, ok := ErrorCode[errors.Cause(err)]; ok {
		return code
	}
	return ErrorCode[errSystem]
}
