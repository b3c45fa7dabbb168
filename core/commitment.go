package core

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SaltSize is the length of the blinding salt in bytes.
const SaltSize = 32

// Salt blinds a commitment so equal bids from different bidders hash
// to different values.
type Salt [SaltSize]byte

// ComputeCommitment computes the binding, hiding commitment over a
// bid's revealed fields.
//
// Canonical encoding, hashed with keccak256:
//
//	uint256_be(amount) || u32_be(len(text)) || text ||
//	u32_be(len(imageCid)) || imageCid ||
//	u32_be(len(voiceCid)) || voiceCid || salt
//
// String fields are length-prefixed so the encoding is injective;
// raw concatenation would let ("ab","c") collide with ("a","bc").
// A reveal must reproduce this hash exactly or it is rejected.
func ComputeCommitment(amount *big.Int, text, imageCid, voiceCid string, salt Salt) common.Hash {
	buf := make([]byte, 0, 32+4+len(text)+4+len(imageCid)+4+len(voiceCid)+SaltSize)

	var amountBytes []byte
	if amount != nil {
		amountBytes = amount.Bytes()
	}
	buf = append(buf, common.LeftPadBytes(amountBytes, 32)...)

	for _, s := range []string{text, imageCid, voiceCid} {
		var lenPrefix [4]byte
		binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(s)))
		buf = append(buf, lenPrefix[:]...)
		buf = append(buf, s...)
	}
	buf = append(buf, salt[:]...)

	return crypto.Keccak256Hash(buf)
}
