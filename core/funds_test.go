package core

import (
	"math/big"
	"strings"
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestMeetsCollateralFloor(t *testing.T) {
	check.True(t, MeetsCollateralFloor(MinCollateral))
	check.True(t, MeetsCollateralFloor(new(big.Int).Add(MinCollateral, big.NewInt(1))))
	check.False(t, MeetsCollateralFloor(new(big.Int).Sub(MinCollateral, big.NewInt(1))))
	check.False(t, MeetsCollateralFloor(big.NewInt(0)))
	check.False(t, MeetsCollateralFloor(nil))
}

func TestSplitTip(t *testing.T) {
	testCases := []struct {
		name         string
		tip          int64
		wantWinner   int64
		wantTreasury int64
	}{
		{"even split", 1000, 900, 100},
		{"truncation favors treasury remainder", 999, 899, 100},
		{"one wei", 1, 0, 1},
		{"zero", 0, 0, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			winner, treasury := SplitTip(big.NewInt(tc.tip))
			check.Equal(t, tc.wantWinner, winner.Int64())
			check.Equal(t, tc.wantTreasury, treasury.Int64())
			check.Equal(t, tc.tip, winner.Int64()+treasury.Int64())
		})
	}
}

func TestRevealFieldsWithinBounds(t *testing.T) {
	ok := RevealFieldsWithinBounds(strings.Repeat("a", MaxTextBytes), strings.Repeat("b", MaxCidBytes), "")
	check.True(t, ok)

	check.False(t, RevealFieldsWithinBounds(strings.Repeat("a", MaxTextBytes+1), "", ""))
	check.False(t, RevealFieldsWithinBounds("", strings.Repeat("b", MaxCidBytes+1), ""))
	check.False(t, RevealFieldsWithinBounds("", "", strings.Repeat("c", MaxCidBytes+1)))
}

func TestWeiToEth(t *testing.T) {
	check.Equal(t, "1", WeiToEth(big.NewInt(1_000_000_000_000_000_000)))
	check.Equal(t, "0.001", WeiToEth(MinCollateral))
	check.Equal(t, "0", WeiToEth(nil))
}
