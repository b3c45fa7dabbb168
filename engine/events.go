package engine

import (
	"context"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// EventType names one of the engine's observable events.
type EventType string

const (
	EventNewCommit                EventType = "new_commit"
	EventNewReveal                EventType = "new_reveal"
	EventNewWinner                EventType = "new_winner"
	EventSettlementTriggered      EventType = "settlement_triggered"
	EventSettlementBatchCompleted EventType = "settlement_batch_completed"
	EventRefundEscrowed           EventType = "refund_escrowed"
	EventTipReceived              EventType = "tip_received"
)

// Event is one entry in the engine's observable stream. Payload holds
// one of the *Payload structs below.
type Event struct {
	ID        string
	Type      EventType
	AuctionID uint64
	Timestamp int64
	Payload   any
}

// EncodePayload serializes the payload to CBOR for journaling.
func (e Event) EncodePayload() ([]byte, error) {
	return cbor.Marshal(e.Payload)
}

// CommitPayload accompanies EventNewCommit. Amounts are wei strings.
type CommitPayload struct {
	Bidder     string `cbor:"bidder"`
	Collateral string `cbor:"collateral"`
	Raised     bool   `cbor:"raised"`
}

// RevealPayload accompanies EventNewReveal.
type RevealPayload struct {
	Bidder   string `cbor:"bidder"`
	Amount   string `cbor:"amount"`
	Text     string `cbor:"text"`
	ImageCid string `cbor:"image_cid"`
	VoiceCid string `cbor:"voice_cid"`
}

// WinnerPayload accompanies EventNewWinner.
type WinnerPayload struct {
	Winner   string `cbor:"winner"`
	Amount   string `cbor:"amount"`
	Text     string `cbor:"text"`
	ImageCid string `cbor:"image_cid"`
	VoiceCid string `cbor:"voice_cid"`
}

// TriggerPayload accompanies EventSettlementTriggered.
type TriggerPayload struct {
	Timestamp int64 `cbor:"timestamp"`
}

// BatchPayload accompanies EventSettlementBatchCompleted.
type BatchPayload struct {
	Processed int `cbor:"processed"`
	Total     int `cbor:"total"`
}

// EscrowPayload accompanies EventRefundEscrowed.
type EscrowPayload struct {
	Bidder string `cbor:"bidder"`
	Amount string `cbor:"amount"`
}

// TipPayload accompanies EventTipReceived.
type TipPayload struct {
	From          string `cbor:"from"`
	WinnerShare   string `cbor:"winner_share"`
	TreasuryShare string `cbor:"treasury_share"`
}

type subscriber struct {
	ctx context.Context
	ch  chan Event
}

// Subscribe returns a channel of engine events. Delivery is
// best-effort: a subscriber that falls behind misses events instead
// of blocking settlement. The subscription ends when ctx is done.
func (e *Engine) Subscribe(ctx context.Context) <-chan Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan Event, 64)
	e.subscribers = append(e.subscribers, subscriber{ctx: ctx, ch: ch})
	return ch
}

// emit fans an event out to subscribers. Callers hold e.mu.
func (e *Engine) emit(typ EventType, auctionID uint64, payload any) {
	ev := Event{
		ID:        uuid.NewString(),
		Type:      typ,
		AuctionID: auctionID,
		Timestamp: e.clock.Now(),
		Payload:   payload,
	}

	kept := e.subscribers[:0]
	for _, sub := range e.subscribers {
		select {
		case <-sub.ctx.Done():
			close(sub.ch)
			continue
		default:
		}
		select {
		case sub.ch <- ev:
		default:
			// Subscriber buffer full, drop this event for them.
		}
		kept = append(kept, sub)
	}
	e.subscribers = kept
}
