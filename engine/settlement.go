package engine

import (
	"log"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/erfannorozi54/highest-voice/core"
)

// SettleOutcome reports what one settlement call accomplished.
type SettleOutcome struct {
	AuctionID uint64
	Processed int
	Total     int
	Finalized bool
}

// Settle advances settlement of the identified auction by one batch,
// finalizing it when the last bidder is processed. Any caller may
// invoke it once the reveal window has ended; repeated calls resume
// from the persisted cursor. A call naming an auction that already
// settled fails with ErrAlreadySettled so stale retries are
// detectable, and a call before the reveal end fails with
// ErrRevealNotEnded. Neither failure mutates state.
func (e *Engine) Settle(auctionID uint64) (SettleOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.current
	if auctionID != st.auction.ID {
		if _, ok := e.history[auctionID]; ok {
			return SettleOutcome{AuctionID: auctionID}, ErrAlreadySettled
		}
		return SettleOutcome{AuctionID: auctionID}, ErrUnknownAuction
	}

	now := e.clock.Now()
	if now < st.auction.RevealEnd {
		return SettleOutcome{AuctionID: auctionID}, ErrRevealNotEnded
	}

	if !st.settling {
		st.settling = true
		st.cursor.Total = len(st.order)
		log.Printf("INFO: Settlement triggered for auction %d (%d bidders)",
			st.auction.ID, st.cursor.Total)
		e.emit(EventSettlementTriggered, st.auction.ID, TriggerPayload{Timestamp: now})
	}

	end := st.cursor.Processed + e.batchSize
	if end > st.cursor.Total {
		end = st.cursor.Total
	}
	for i := st.cursor.Processed; i < end; i++ {
		e.processBidder(st, st.bids[st.order[i]])
	}
	st.cursor.Processed = end

	log.Printf("INFO: Settlement batch complete for auction %d (%d/%d)",
		st.auction.ID, st.cursor.Processed, st.cursor.Total)
	e.emit(EventSettlementBatchCompleted, st.auction.ID, BatchPayload{
		Processed: st.cursor.Processed,
		Total:     st.cursor.Total,
	})

	out := SettleOutcome{
		AuctionID: st.auction.ID,
		Processed: st.cursor.Processed,
		Total:     st.cursor.Total,
	}
	if st.cursor.Done() {
		e.finalize(st)
		out.Finalized = true
	}
	return out, nil
}

// SettleCurrent settles whichever auction is current, with identical
// guards.
func (e *Engine) SettleCurrent() (SettleOutcome, error) {
	return e.Settle(e.CurrentAuctionID())
}

// processBidder handles exactly one ledger entry: feeds revealed bids
// into the tally and refunds whatever collateral is already known to
// be returnable. The running leader's collateral stays held until
// they are displaced or the auction finalizes.
func (e *Engine) processBidder(st *auctionState, bid *core.SealedBid) {
	if bid.Processed {
		return
	}
	auctionID := st.auction.ID

	if !bid.Revealed {
		// Never revealed: forfeits winner eligibility, keeps the
		// collateral refund.
		e.payLocked(bid.Bidder, bid.Collateral, auctionID)
	} else {
		becameLeader, displaced := st.tally.Observe(bid.Bidder, bid.Amount, bid.Collateral)
		if displaced != nil {
			e.payLocked(displaced.Bidder, displaced.Collateral, auctionID)
		}
		if !becameLeader {
			e.payLocked(bid.Bidder, bid.Collateral, auctionID)
		}
	}
	bid.Processed = true
}

// finalize writes the auction result, settles the winner's funds,
// mints the winner post, updates lifetime stats, and opens the next
// auction at exactly this auction's scheduled reveal end.
func (e *Engine) finalize(st *auctionState) {
	a := &st.auction

	if st.tally.HasLeader() {
		winner, heldCollateral := st.tally.Leader()
		clearing := st.tally.ClearingPrice()

		// Winner pays the second price; the rest of their escrow
		// comes back.
		excess := new(big.Int).Sub(heldCollateral, clearing)
		e.payLocked(winner, excess, a.ID)
		e.treasuryBalance.Add(e.treasuryBalance, clearing)

		a.Winner = winner
		a.WinningBid = clearing
		a.HighestBid = st.tally.Highest()
		a.SecondBid = st.tally.ClearingPrice()

		winnerBid := st.bids[winner]
		e.posts[a.ID] = &core.WinnerPost{
			AuctionID:    a.ID,
			Winner:       winner,
			AmountPaid:   new(big.Int).Set(clearing),
			Text:         winnerBid.Text,
			ImageCid:     winnerBid.ImageCid,
			VoiceCid:     winnerBid.VoiceCid,
			MintedAt:     e.clock.Now(),
			TipsReceived: new(big.Int),
		}

		e.updateStats(st, winner, clearing)

		log.Printf("INFO: Auction %d settled: winner=%s paid %s wei (highest %s)",
			a.ID, winner.Hex(), clearing, a.HighestBid)
		e.emit(EventNewWinner, a.ID, WinnerPayload{
			Winner:   winner.Hex(),
			Amount:   clearing.String(),
			Text:     winnerBid.Text,
			ImageCid: winnerBid.ImageCid,
			VoiceCid: winnerBid.VoiceCid,
		})
	} else {
		a.WinningBid = new(big.Int)
		a.HighestBid = new(big.Int)
		a.SecondBid = new(big.Int)
		log.Printf("INFO: Auction %d settled empty, no valid reveals", a.ID)
	}

	a.Settled = true
	e.history[a.ID] = *a
	e.finalCursors[a.ID] = st.cursor

	next := core.NextAuction(*a)
	e.current = newAuctionState(next)
	log.Printf("INFO: Auction %d opened, scheduled start %d (reveal ends %d)",
		next.ID, next.StartTime, next.RevealEnd)
}

// updateStats records the auction outcome in every revealed
// participant's lifetime stats. A win extends the winner's streak
// only if they also won the immediately preceding auction; every
// other revealed participant's current streak resets. Callers hold
// e.mu.
func (e *Engine) updateStats(st *auctionState, winner common.Address, clearing *big.Int) {
	a := st.auction
	for _, addr := range st.order {
		bid := st.bids[addr]
		if !bid.Revealed {
			continue
		}
		s := e.statsFor(addr)
		if addr != winner {
			s.CurrentStreak = 0
			continue
		}
		s.Wins++
		s.TotalSpend.Add(s.TotalSpend, clearing)
		if s.LastWonAuction == a.ID-1 {
			s.CurrentStreak++
		} else {
			s.CurrentStreak = 1
		}
		if s.CurrentStreak > s.BestStreak {
			s.BestStreak = s.CurrentStreak
		}
		s.LastWonAuction = a.ID
	}
}
