package core

import (
	"math/big"
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestComputeCommitment_Deterministic(t *testing.T) {
	salt := Salt{1, 2, 3}
	amount := big.NewInt(1_000_000_000_000_000_000)

	h1 := ComputeCommitment(amount, "hello", "imgCID", "voiceCID", salt)
	h2 := ComputeCommitment(amount, "hello", "imgCID", "voiceCID", salt)

	check.Equal(t, h1, h2)
}

func TestComputeCommitment_BindsEveryField(t *testing.T) {
	salt := Salt{7}
	base := ComputeCommitment(big.NewInt(100), "text", "img", "voice", salt)

	otherSalt := Salt{8}
	variants := []struct {
		name string
		got  interface{ Hex() string }
	}{
		{"amount differs", ComputeCommitment(big.NewInt(101), "text", "img", "voice", salt)},
		{"text differs", ComputeCommitment(big.NewInt(100), "texT", "img", "voice", salt)},
		{"image cid differs", ComputeCommitment(big.NewInt(100), "text", "imh", "voice", salt)},
		{"voice cid differs", ComputeCommitment(big.NewInt(100), "text", "img", "voicf", salt)},
		{"salt differs", ComputeCommitment(big.NewInt(100), "text", "img", "voice", otherSalt)},
	}
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			check.NotEqual(t, base.Hex(), v.got.Hex())
		})
	}
}

func TestComputeCommitment_LengthPrefixPreventsBoundaryShifts(t *testing.T) {
	// With raw concatenation ("ab","c") and ("a","bc") would encode to
	// the same bytes. The length prefix must keep them apart.
	salt := Salt{}
	h1 := ComputeCommitment(big.NewInt(1), "ab", "c", "", salt)
	h2 := ComputeCommitment(big.NewInt(1), "a", "bc", "", salt)

	check.NotEqual(t, h1, h2)
}

func TestComputeCommitment_NilAmountHashesAsZero(t *testing.T) {
	salt := Salt{}
	h1 := ComputeCommitment(nil, "t", "", "", salt)
	h2 := ComputeCommitment(big.NewInt(0), "t", "", "", salt)

	check.Equal(t, h1, h2)
}
