package core

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Wire-contract constants. Durations are whole seconds so that phase
// boundary arithmetic stays exact across arbitrarily many cycles.
const (
	// CommitDuration is the length of the sealed-commit window.
	CommitDuration int64 = 12 * 60 * 60

	// RevealDuration is the length of the reveal window.
	RevealDuration int64 = 12 * 60 * 60

	// AuctionDuration is one full cycle. Consecutive auctions start
	// exactly this far apart.
	AuctionDuration = CommitDuration + RevealDuration

	// BatchSize caps the number of bidders processed by a single
	// settlement call.
	BatchSize = 50

	// MaxTextBytes bounds the revealed post text.
	MaxTextBytes = 500

	// MaxCidBytes bounds each revealed media reference.
	MaxCidBytes = 100
)

// MinCollateral is the smallest value accepted at commit time:
// 0.001 ETH in wei.
var MinCollateral = big.NewInt(1_000_000_000_000_000)

// Phase identifies where an auction sits relative to a point in time.
type Phase int

const (
	PhaseCommit Phase = iota
	PhaseReveal
	PhaseRevealEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseCommit:
		return "commit"
	case PhaseReveal:
		return "reveal"
	case PhaseRevealEnded:
		return "reveal_ended"
	default:
		return "unknown"
	}
}

// Auction is one cycle of the recurring process. Winner, WinningBid,
// HighestBid and SecondBid are zero until Settled flips to true.
type Auction struct {
	ID        uint64
	StartTime int64
	CommitEnd int64
	RevealEnd int64
	Settled   bool

	Winner     common.Address
	WinningBid *big.Int // clearing price paid, the second-highest revealed amount
	HighestBid *big.Int
	SecondBid  *big.Int
}

// HasWinner reports whether a settled auction produced a winner.
// An auction with zero valid reveals settles empty.
func (a Auction) HasWinner() bool {
	return a.Settled && a.Winner != (common.Address{})
}

// SealedBid is one bidder's entry in one auction's ledger. It is
// created by a commit, mutated once by a matching reveal, and marked
// Processed exactly once during settlement.
type SealedBid struct {
	Bidder     common.Address
	CommitHash common.Hash
	Collateral *big.Int
	Revealed   bool
	Processed  bool

	// Populated only after a successful reveal.
	Amount   *big.Int
	Text     string
	ImageCid string
	VoiceCid string
}

// SettlementCursor tracks batched settlement progress for one
// auction. Processed is monotonically non-decreasing and never
// exceeds Total.
type SettlementCursor struct {
	Processed int
	Total     int
}

// Done reports whether every bidder has been processed.
func (c SettlementCursor) Done() bool {
	return c.Processed >= c.Total
}

// WinnerPost is the artifact minted for an auction that produced a
// winner. Immutable after minting except for TipsReceived.
type WinnerPost struct {
	AuctionID    uint64
	Winner       common.Address
	AmountPaid   *big.Int
	Text         string
	ImageCid     string
	VoiceCid     string
	MintedAt     int64
	TipsReceived *big.Int
}

// ParticipantStats accumulates a bidder's lifetime results across
// auctions.
type ParticipantStats struct {
	Wins           uint64
	TotalSpend     *big.Int
	CurrentStreak  uint64
	BestStreak     uint64
	LastWonAuction uint64
}

// NewParticipantStats returns zeroed stats with allocated amounts.
func NewParticipantStats() *ParticipantStats {
	return &ParticipantStats{TotalSpend: new(big.Int)}
}
