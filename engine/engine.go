package engine

import (
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/erfannorozi54/highest-voice/core"
)

// Clock supplies the engine's notion of now, in unix seconds.
// Injected so tests can drive phase transitions deterministically.
type Clock interface {
	Now() int64
}

type systemClock struct{}

func (systemClock) Now() int64 {
	return time.Now().Unix()
}

// Config configures a new engine. Zero values fall back to production
// defaults.
type Config struct {
	// Genesis anchors auction 1's start time. Zero means "now".
	Genesis int64

	// BatchSize overrides core.BatchSize, mainly for tests.
	BatchSize int

	Clock    Clock
	Payout   PayoutSink
	Treasury common.Address
}

// auctionState bundles the mutable per-auction records: the bid
// ledger keyed by bidder, the commit-order index that fixes the
// settlement processing order, the resumable cursor, and the running
// second-price tally.
type auctionState struct {
	auction  core.Auction
	bids     map[common.Address]*core.SealedBid
	order    []common.Address
	cursor   core.SettlementCursor
	tally    *core.Tally
	settling bool
}

func newAuctionState(a core.Auction) *auctionState {
	return &auctionState{
		auction: a,
		bids:    make(map[common.Address]*core.SealedBid),
		tally:   core.NewTally(),
	}
}

// Engine is the serialized auction aggregate. Every entry point and
// read view runs under one mutex, so state transitions are atomic per
// call and concurrent settlement callers serialize on the cursor.
type Engine struct {
	mu sync.Mutex

	clock     Clock
	batchSize int
	payout    PayoutSink
	treasury  common.Address

	current         *auctionState
	history         map[uint64]core.Auction
	finalCursors    map[uint64]core.SettlementCursor
	posts           map[uint64]*core.WinnerPost
	stats           map[common.Address]*core.ParticipantStats
	pending         map[common.Address]*big.Int
	treasuryBalance *big.Int

	subscribers []subscriber
}

// New opens auction 1 and returns a ready engine.
func New(cfg Config) *Engine {
	clock := cfg.Clock
	if clock == nil {
		clock = systemClock{}
	}
	genesis := cfg.Genesis
	if genesis == 0 {
		genesis = clock.Now()
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = core.BatchSize
	}
	payout := cfg.Payout
	if payout == nil {
		payout = NewLedgerSink()
	}

	e := &Engine{
		clock:           clock,
		batchSize:       batchSize,
		payout:          payout,
		treasury:        cfg.Treasury,
		current:         newAuctionState(core.GenesisAuction(genesis)),
		history:         make(map[uint64]core.Auction),
		finalCursors:    make(map[uint64]core.SettlementCursor),
		posts:           make(map[uint64]*core.WinnerPost),
		stats:           make(map[common.Address]*core.ParticipantStats),
		pending:         make(map[common.Address]*big.Int),
		treasuryBalance: new(big.Int),
	}

	log.Printf("INFO: Auction engine initialized, auction 1 opens at %d (commit %ds, reveal %ds)",
		genesis, core.CommitDuration, core.RevealDuration)
	return e
}

// CommitBid stores a sealed commitment with its escrowed collateral.
// A repeat commit from the same bidder in the same commit window
// replaces the commitment and raises the locked collateral.
func (e *Engine) CommitBid(bidder common.Address, commitHash common.Hash, value *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.current
	now := e.clock.Now()
	if core.PhaseAt(st.auction, now) != core.PhaseCommit {
		return ErrCommitClosed
	}
	if !core.MeetsCollateralFloor(value) {
		return ErrCollateralBelowFloor
	}

	bid, raised := st.bids[bidder]
	if raised {
		bid.CommitHash = commitHash
		bid.Collateral = new(big.Int).Add(bid.Collateral, value)
	} else {
		bid = &core.SealedBid{
			Bidder:     bidder,
			CommitHash: commitHash,
			Collateral: new(big.Int).Set(value),
		}
		st.bids[bidder] = bid
		st.order = append(st.order, bidder)
	}

	log.Printf("INFO: Commit from %s in auction %d (collateral=%s wei, raised=%v)",
		bidder.Hex(), st.auction.ID, bid.Collateral, raised)
	e.emit(EventNewCommit, st.auction.ID, CommitPayload{
		Bidder:     bidder.Hex(),
		Collateral: bid.Collateral.String(),
		Raised:     raised,
	})
	return nil
}

// RevealBid opens a sealed commitment. The reveal must reproduce the
// stored commitment hash exactly and the escrowed collateral must
// cover the revealed amount.
func (e *Engine) RevealBid(bidder common.Address, amount *big.Int, text, imageCid, voiceCid string, salt core.Salt) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.current
	switch core.PhaseAt(st.auction, e.clock.Now()) {
	case core.PhaseCommit:
		return ErrRevealNotOpen
	case core.PhaseRevealEnded:
		return ErrRevealClosed
	}

	bid, ok := st.bids[bidder]
	if !ok {
		return ErrNoCommit
	}
	if bid.Revealed {
		return ErrAlreadyRevealed
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	if !core.RevealFieldsWithinBounds(text, imageCid, voiceCid) {
		if len(text) > core.MaxTextBytes {
			return ErrTextTooLong
		}
		return ErrCidTooLong
	}
	if core.ComputeCommitment(amount, text, imageCid, voiceCid, salt) != bid.CommitHash {
		return ErrCommitmentMismatch
	}
	if bid.Collateral.Cmp(amount) < 0 {
		return ErrInsufficientCollateral
	}

	bid.Revealed = true
	bid.Amount = new(big.Int).Set(amount)
	bid.Text = text
	bid.ImageCid = imageCid
	bid.VoiceCid = voiceCid

	log.Printf("INFO: Reveal from %s in auction %d (amount=%s wei)",
		bidder.Hex(), st.auction.ID, amount)
	e.emit(EventNewReveal, st.auction.ID, RevealPayload{
		Bidder:   bidder.Hex(),
		Amount:   amount.String(),
		Text:     text,
		ImageCid: imageCid,
		VoiceCid: voiceCid,
	})
	return nil
}

// TipWinner forwards a tip to a settled auction's winner, splitting
// it 90/10 between winner and treasury.
func (e *Engine) TipWinner(auctionID uint64, from common.Address, tip *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tip == nil || tip.Sign() <= 0 {
		return ErrZeroTip
	}
	if auctionID == e.current.auction.ID {
		return ErrNotSettled
	}
	a, ok := e.history[auctionID]
	if !ok {
		return ErrUnknownAuction
	}
	if !a.HasWinner() {
		return ErrNoWinner
	}

	winnerShare, treasuryShare := core.SplitTip(tip)
	e.payLocked(a.Winner, winnerShare, auctionID)
	e.treasuryBalance.Add(e.treasuryBalance, treasuryShare)

	post := e.posts[auctionID]
	post.TipsReceived = new(big.Int).Add(post.TipsReceived, tip)

	e.emit(EventTipReceived, auctionID, TipPayload{
		From:          from.Hex(),
		WinnerShare:   winnerShare.String(),
		TreasuryShare: treasuryShare.String(),
	})
	return nil
}

// ClaimRefund withdraws a previously escrowed refund. Escrow entries
// exist only for recipients whose payout failed during settlement.
func (e *Engine) ClaimRefund(bidder common.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	owed, ok := e.pending[bidder]
	if !ok || owed.Sign() == 0 {
		return nil, ErrNothingToClaim
	}
	if err := e.payout.Pay(bidder, owed); err != nil {
		return nil, err
	}
	delete(e.pending, bidder)
	log.Printf("INFO: Escrowed refund of %s wei claimed by %s", owed, bidder.Hex())
	return owed, nil
}

// payLocked sends amount to an address through the payout sink. On
// sink failure the amount moves to the claimable escrow instead of
// aborting the caller. Callers hold e.mu.
func (e *Engine) payLocked(to common.Address, amount *big.Int, auctionID uint64) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	if err := e.payout.Pay(to, amount); err != nil {
		log.Printf("WARNING: Payout of %s wei to %s failed, escrowing for claim: %v",
			amount, to.Hex(), err)
		owed, ok := e.pending[to]
		if !ok {
			owed = new(big.Int)
			e.pending[to] = owed
		}
		owed.Add(owed, amount)
		e.emit(EventRefundEscrowed, auctionID, EscrowPayload{
			Bidder: to.Hex(),
			Amount: amount.String(),
		})
	}
}

// statsFor returns the mutable stats record for an address,
// allocating it on first use. Callers hold e.mu.
func (e *Engine) statsFor(addr common.Address) *core.ParticipantStats {
	s, ok := e.stats[addr]
	if !ok {
		s = core.NewParticipantStats()
		e.stats[addr] = s
	}
	return s
}
