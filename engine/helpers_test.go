package engine

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/peterldowns/testy/assert"

	"github.com/erfannorozi54/highest-voice/core"
)

const testGenesis int64 = 1_700_000_000

var oneEth = big.NewInt(1_000_000_000_000_000_000)

func eth(n int64) *big.Int {
	return new(big.Int).Mul(oneEth, big.NewInt(n))
}

func bidderAddr(n byte) common.Address {
	return common.BytesToAddress([]byte{0xbb, n})
}

// manualClock drives phase transitions deterministically in tests.
type manualClock struct {
	mu  sync.Mutex
	now int64
}

func (c *manualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(t int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *manualClock) Advance(d int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

// flakySink rejects payouts for listed recipients, modeling a refund
// recipient that refuses funds mid-batch.
type flakySink struct {
	ledger *LedgerSink
	reject map[common.Address]bool
}

func newFlakySink() *flakySink {
	return &flakySink{ledger: NewLedgerSink(), reject: make(map[common.Address]bool)}
}

func (s *flakySink) Pay(to common.Address, amount *big.Int) error {
	if s.reject[to] {
		return errors.New("recipient rejects funds")
	}
	return s.ledger.Pay(to, amount)
}

func newTestEngine(batchSize int) (*Engine, *manualClock, *LedgerSink) {
	clock := &manualClock{now: testGenesis}
	sink := NewLedgerSink()
	e := New(Config{
		Genesis:   testGenesis,
		BatchSize: batchSize,
		Clock:     clock,
		Payout:    sink,
	})
	return e, clock, sink
}

// saltFor derives a per-bidder salt so reveals in tests stay
// reproducible.
func saltFor(n byte) core.Salt {
	var s core.Salt
	s[0] = 0x5a
	s[31] = n
	return s
}

// commitSealed commits a bid whose reveal fields are (amount, text)
// and returns the salt needed to reveal it.
func commitSealed(t *testing.T, e *Engine, n byte, amount, collateral *big.Int, text string) core.Salt {
	t.Helper()
	salt := saltFor(n)
	hash := core.ComputeCommitment(amount, text, "", "", salt)
	assert.Nil(t, e.CommitBid(bidderAddr(n), hash, collateral))
	return salt
}
