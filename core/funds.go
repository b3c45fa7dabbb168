package core

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// tipWinnerShare is the percentage of a tip forwarded to the winner;
// the remainder goes to the treasury.
const tipWinnerShare = 90

// MeetsCollateralFloor reports whether a commit's value covers the
// anti-spam minimum. Comparison runs through decimal so callers that
// normalize from display representations can't slip past the floor on
// float rounding.
func MeetsCollateralFloor(value *big.Int) bool {
	if value == nil {
		return false
	}
	v := decimal.NewFromBigInt(value, 0)
	return v.GreaterThanOrEqual(decimal.NewFromBigInt(MinCollateral, 0))
}

// SplitTip divides a tip 90/10 between winner and treasury. Integer
// division truncates toward the winner's share; the treasury receives
// the exact remainder so the two always sum to the tip.
func SplitTip(tip *big.Int) (winner, treasury *big.Int) {
	winner = new(big.Int).Mul(tip, big.NewInt(tipWinnerShare))
	winner.Div(winner, big.NewInt(100))
	treasury = new(big.Int).Sub(tip, winner)
	return winner, treasury
}

// RevealFieldsWithinBounds checks the documented size limits on the
// revealed plaintext fields. Oversized fields are rejected at reveal
// time, never truncated.
func RevealFieldsWithinBounds(text, imageCid, voiceCid string) bool {
	if len(text) > MaxTextBytes {
		return false
	}
	if len(imageCid) > MaxCidBytes || len(voiceCid) > MaxCidBytes {
		return false
	}
	return true
}

// WeiToEth renders a wei amount as a decimal ETH string for display.
func WeiToEth(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -18).String()
}
