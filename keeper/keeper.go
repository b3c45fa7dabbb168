// Package keeper implements the automation surface that drives
// settlement: a checkUpkeep/performUpkeep pair any external scheduler
// can poll, plus a self-contained loop for deployments without an
// external automation network.
package keeper

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/erfannorozi54/highest-voice/engine"
)

// ErrNilEngine rejects construction against a missing settlement
// target.
var ErrNilEngine = errors.New("invalid keeper target: nil engine")

// Engine is the slice of the auction engine the keeper drives.
type Engine interface {
	Status() engine.StatusSnapshot
	Settle(auctionID uint64) (engine.SettleOutcome, error)
}

// UpkeepPayload is the hint checkUpkeep hands to the executor. It is
// never trusted: performUpkeep re-validates everything against the
// engine before acting.
type UpkeepPayload struct {
	AuctionID uint64 `json:"auction_id"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
}

// Keeper polls an auction engine and triggers settlement batches
// once each reveal window closes.
type Keeper struct {
	eng      Engine
	interval time.Duration
}

// New returns a keeper bound to eng. A nil engine is rejected at
// construction rather than discovered on first upkeep.
func New(eng Engine, interval time.Duration) (*Keeper, error) {
	if eng == nil {
		return nil, ErrNilEngine
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Keeper{eng: eng, interval: interval}, nil
}

// CheckUpkeep reports whether settlement work is due, with a payload
// describing the work for the executor's benefit.
func (k *Keeper) CheckUpkeep() (bool, UpkeepPayload) {
	s := k.eng.Status()
	return s.NeedsSettlement, UpkeepPayload{
		AuctionID: s.AuctionID,
		Processed: s.Processed,
		Total:     s.Total,
	}
}

// PerformUpkeep runs one settlement batch for the auction named in
// the payload. The condition is re-validated here: a payload naming
// the current auction before its reveal window closed fails with
// ErrUpkeepNotNeeded. Past that, the engine's own guards apply, so a
// stale payload fails with "already settled" exactly as direct
// settlement would.
func (k *Keeper) PerformUpkeep(p UpkeepPayload) (engine.SettleOutcome, error) {
	s := k.eng.Status()
	if p.AuctionID == s.AuctionID && !s.NeedsSettlement {
		return engine.SettleOutcome{AuctionID: p.AuctionID}, engine.ErrUpkeepNotNeeded
	}
	return k.eng.Settle(p.AuctionID)
}

// ManualSettle triggers one settlement batch for the current auction,
// bypassing the check/perform split but with identical guards.
func (k *Keeper) ManualSettle() (engine.SettleOutcome, error) {
	return k.eng.Settle(k.eng.Status().AuctionID)
}

// Status is a read-only projection for operators and dashboards.
type Status struct {
	AuctionID       uint64 `json:"auction_id"`
	RevealEnd       int64  `json:"reveal_end"`
	Processed       int    `json:"processed"`
	Total           int    `json:"total"`
	NeedsSettlement bool   `json:"needs_settlement"`
}

// GetStatus returns the keeper's view of the current auction.
func (k *Keeper) GetStatus() Status {
	s := k.eng.Status()
	return Status{
		AuctionID:       s.AuctionID,
		RevealEnd:       s.RevealEnd,
		Processed:       s.Processed,
		Total:           s.Total,
		NeedsSettlement: s.NeedsSettlement,
	}
}

// Run polls on a ticker and, when upkeep is due, performs settlement
// batches until the auction finalizes. Returns when ctx is done.
func (k *Keeper) Run(ctx context.Context) {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	log.Printf("INFO: Keeper loop started (interval %s)", k.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("INFO: Keeper loop stopped")
			return
		case <-ticker.C:
			k.runOnce(ctx)
		}
	}
}

func (k *Keeper) runOnce(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		needed, payload := k.CheckUpkeep()
		if !needed {
			return
		}

		out, err := k.PerformUpkeep(payload)
		if err != nil {
			// Another caller may have raced us through the same
			// batch; re-check on the next tick.
			log.Printf("WARNING: Upkeep for auction %d failed: %v", payload.AuctionID, err)
			return
		}
		log.Printf("INFO: Upkeep advanced auction %d to %d/%d (finalized=%v)",
			out.AuctionID, out.Processed, out.Total, out.Finalized)
		if out.Finalized {
			return
		}
	}
}
