package core

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Tally tracks the running highest and second-highest revealed bids
// while settlement scans the ledger in commit-index order. Only a
// strictly greater amount displaces the leader, so on exact ties the
// earliest processed bid keeps priority.
type Tally struct {
	hasLeader        bool
	leader           common.Address
	leaderCollateral *big.Int
	highest          *big.Int
	second           *big.Int
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{
		highest: new(big.Int),
		second:  new(big.Int),
	}
}

// Displaced describes a former leader pushed out by a higher bid.
// Their full collateral becomes refundable the moment they are
// displaced.
type Displaced struct {
	Bidder     common.Address
	Collateral *big.Int
}

// Observe feeds one revealed bid into the tally. It returns whether
// the bid became the new leader and, if a previous leader was pushed
// out, who that was.
func (t *Tally) Observe(bidder common.Address, amount, collateral *big.Int) (becameLeader bool, displaced *Displaced) {
	if !t.hasLeader {
		t.hasLeader = true
		t.leader = bidder
		t.leaderCollateral = collateral
		t.highest = new(big.Int).Set(amount)
		return true, nil
	}

	if amount.Cmp(t.highest) > 0 {
		displaced = &Displaced{Bidder: t.leader, Collateral: t.leaderCollateral}
		t.second = t.highest
		t.leader = bidder
		t.leaderCollateral = collateral
		t.highest = new(big.Int).Set(amount)
		return true, displaced
	}

	if amount.Cmp(t.second) > 0 {
		t.second = new(big.Int).Set(amount)
	}
	return false, nil
}

// HasLeader reports whether at least one bid was revealed.
func (t *Tally) HasLeader() bool {
	return t.hasLeader
}

// Leader returns the current leading bidder and their held collateral.
func (t *Tally) Leader() (common.Address, *big.Int) {
	return t.leader, t.leaderCollateral
}

// Highest returns the highest revealed amount seen so far.
func (t *Tally) Highest() *big.Int {
	return new(big.Int).Set(t.highest)
}

// ClearingPrice returns the second-highest revealed amount: the price
// the winner pays. Zero when at most one bid revealed.
func (t *Tally) ClearingPrice() *big.Int {
	return new(big.Int).Set(t.second)
}
