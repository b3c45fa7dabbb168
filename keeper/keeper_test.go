package keeper

import (
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/erfannorozi54/highest-voice/core"
	"github.com/erfannorozi54/highest-voice/engine"
)

const testGenesis int64 = 1_700_000_000

func eth(n int64) *big.Int {
	wei := big.NewInt(1_000_000_000_000_000_000)
	return wei.Mul(wei, big.NewInt(n))
}

func bidderAddr(n byte) common.Address {
	return common.BytesToAddress([]byte{0xcc, n})
}

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

func newTestKeeper(t *testing.T, batchSize int) (*Keeper, *engine.Engine, *manualClock) {
	t.Helper()
	clock := &manualClock{now: testGenesis}
	eng := engine.New(engine.Config{
		Genesis:   testGenesis,
		BatchSize: batchSize,
		Clock:     clock,
	})
	k, err := New(eng, time.Second)
	assert.Nil(t, err)
	return k, eng, clock
}

func TestNew_NilEngineRejected(t *testing.T) {
	k, err := New(nil, time.Second)
	check.Nil(t, k)
	check.Equal(t, ErrNilEngine, err, cmpopts.EquateErrors())
}

func TestCheckUpkeep_FlipsAtRevealEnd(t *testing.T) {
	k, _, clock := newTestKeeper(t, 0)

	needed, payload := k.CheckUpkeep()
	check.False(t, needed)
	check.Equal(t, uint64(1), payload.AuctionID)

	clock.Set(testGenesis + core.AuctionDuration - 1)
	needed, _ = k.CheckUpkeep()
	check.False(t, needed)

	clock.Set(testGenesis + core.AuctionDuration)
	needed, payload = k.CheckUpkeep()
	check.True(t, needed)
	check.Equal(t, uint64(1), payload.AuctionID)
}

func TestPerformUpkeep_RevalidatesCondition(t *testing.T) {
	k, _, clock := newTestKeeper(t, 0)

	// A forged "work is due" payload is not trusted: the reveal window
	// is still open.
	_, err := k.PerformUpkeep(UpkeepPayload{AuctionID: 1, Total: 50})
	check.Equal(t, engine.ErrUpkeepNotNeeded, err, cmpopts.EquateErrors())

	clock.Set(testGenesis + core.AuctionDuration)
	out, err := k.PerformUpkeep(UpkeepPayload{AuctionID: 1})
	assert.Nil(t, err)
	check.True(t, out.Finalized)

	// A payload that became stale between check and perform fails the
	// same way direct settlement would.
	_, err = k.PerformUpkeep(UpkeepPayload{AuctionID: 1})
	check.Equal(t, engine.ErrAlreadySettled, err, cmpopts.EquateErrors())
}

func TestManualSettle_SharesGuards(t *testing.T) {
	k, _, clock := newTestKeeper(t, 0)

	_, err := k.ManualSettle()
	check.Equal(t, engine.ErrRevealNotEnded, err, cmpopts.EquateErrors())

	clock.Set(testGenesis + core.AuctionDuration)
	out, err := k.ManualSettle()
	assert.Nil(t, err)
	check.True(t, out.Finalized)
}

func TestUpkeep_DrivesMultiBatchSettlementToCompletion(t *testing.T) {
	// 7 bidders against a batch size of 3: upkeep must be performed
	// three times before the auction finalizes.
	k, eng, clock := newTestKeeper(t, 3)

	for n := byte(1); n <= 7; n++ {
		bidder := bidderAddr(n)
		salt := core.Salt{31: n}
		amount := eth(int64(n))
		hash := core.ComputeCommitment(amount, "kept", "", "", salt)
		assert.Nil(t, eng.CommitBid(bidder, hash, amount))
	}
	clock.Set(testGenesis + core.AuctionDuration)

	processed := 0
	for i := 0; i < 3; i++ {
		needed, payload := k.CheckUpkeep()
		assert.True(t, needed)
		out, err := k.PerformUpkeep(payload)
		assert.Nil(t, err)
		check.True(t, out.Processed > processed)
		processed = out.Processed
	}
	check.Equal(t, 7, processed)

	s := k.GetStatus()
	check.Equal(t, uint64(2), s.AuctionID)
	check.False(t, s.NeedsSettlement)
}

func TestGetStatus_Projection(t *testing.T) {
	k, _, clock := newTestKeeper(t, 0)
	clock.Set(testGenesis + core.AuctionDuration + 5)

	s := k.GetStatus()
	check.Equal(t, uint64(1), s.AuctionID)
	check.Equal(t, testGenesis+core.AuctionDuration, s.RevealEnd)
	check.True(t, s.NeedsSettlement)
	check.Equal(t, 0, s.Processed)
}
