// Package database archives the live engine's history into mysql so
// past rounds survive restarts and reporting queries never touch the
// engine's lock.
package database

import (
	"context"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erfannorozi54/highest-voice/database/orm"
	"github.com/erfannorozi54/highest-voice/engine"
)

// Recorder subscribes to engine events and writes them behind the
// auction's critical path. Archive failures are logged and skipped;
// the engine remains the source of truth.
type Recorder struct {
	db  *gorm.DB
	eng *engine.Engine
}

// NewRecorder migrates the archive tables and returns a recorder.
func NewRecorder(db *gorm.DB, eng *engine.Engine) (*Recorder, error) {
	if err := db.AutoMigrate(
		&orm.Auction{},
		&orm.WinnerPost{},
		&orm.Event{},
	); err != nil {
		return nil, err
	}
	return &Recorder{db: db, eng: eng}, nil
}

// Run consumes the event stream until ctx is done.
func (r *Recorder) Run(ctx context.Context) {
	events := r.eng.Subscribe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.record(ev)
		}
	}
}

func (r *Recorder) record(ev engine.Event) {
	payload, err := ev.EncodePayload()
	if err != nil {
		log.Printf("ERROR: encoding event %s payload: %v", ev.ID, err)
		return
	}

	row := &orm.Event{
		EventID:   ev.ID,
		Type:      string(ev.Type),
		AuctionID: ev.AuctionID,
		Timestamp: ev.Timestamp,
		Payload:   payload,
	}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error; err != nil {
		log.Printf("ERROR: archiving event %s: %v", ev.ID, err)
	}

	// A winner event closes the auction, snapshot its final state.
	if ev.Type == engine.EventNewWinner {
		r.archiveAuction(ev.AuctionID)
	}
}

func (r *Recorder) archiveAuction(id uint64) {
	a, err := r.eng.AuctionResult(id)
	if err != nil {
		log.Printf("ERROR: loading settled auction %d: %v", id, err)
		return
	}

	row := &orm.Auction{
		AuctionID: a.ID,
		StartTime: a.StartTime,
		CommitEnd: a.CommitEnd,
		RevealEnd: a.RevealEnd,
	}
	if a.HasWinner() {
		row.Winner = a.Winner.Hex()
		row.WinningBidWei = a.WinningBid.String()
		row.HighestBidWei = a.HighestBid.String()
		row.SecondBidWei = a.SecondBid.String()
	}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error; err != nil {
		log.Printf("ERROR: archiving auction %d: %v", id, err)
		return
	}

	post, err := r.eng.WinnerPost(id)
	if err != nil {
		// Auctions with no revealed bids mint no post.
		return
	}
	postRow := &orm.WinnerPost{
		AuctionID:       post.AuctionID,
		Winner:          post.Winner.Hex(),
		Text:            post.Text,
		ImageCid:        post.ImageCid,
		VoiceCid:        post.VoiceCid,
		AmountPaidWei:   post.AmountPaid.String(),
		TipsReceivedWei: post.TipsReceived.String(),
	}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(postRow).Error; err != nil {
		log.Printf("ERROR: archiving winner post %d: %v", id, err)
	}
}
