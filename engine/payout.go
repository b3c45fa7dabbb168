package engine

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// PayoutSink delivers refunds, winner payouts and tips to their
// recipients. A sink failure never aborts a settlement batch: the
// amount is escrowed in the engine's pending-return ledger and stays
// claimable via ClaimRefund.
type PayoutSink interface {
	Pay(to common.Address, amount *big.Int) error
}

// LedgerSink is the default in-process sink. It credits an internal
// balance per recipient and never fails.
type LedgerSink struct {
	mu       sync.Mutex
	balances map[common.Address]*big.Int
}

// NewLedgerSink returns an empty ledger sink.
func NewLedgerSink() *LedgerSink {
	return &LedgerSink{balances: make(map[common.Address]*big.Int)}
}

// Pay credits the recipient's balance.
func (s *LedgerSink) Pay(to common.Address, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bal, ok := s.balances[to]
	if !ok {
		bal = new(big.Int)
		s.balances[to] = bal
	}
	bal.Add(bal, amount)
	return nil
}

// BalanceOf returns the total credited to an address.
func (s *LedgerSink) BalanceOf(addr common.Address) *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bal, ok := s.balances[addr]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}
