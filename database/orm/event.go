package orm

import (
	"time"
)

// Event is a gorm table definition archiving the engine's lifecycle
// events. Payload holds the CBOR-encoded event body.
type Event struct {
	ID        uint64 `gorm:"primary_key"`
	EventID   string `gorm:"uniqueIndex;size:36"`
	Type      string `gorm:"index"`
	AuctionID uint64 `gorm:"index"`
	Timestamp int64
	Payload   []byte `gorm:"type:blob"`
	CreatedAt time.Time
}

// TableName changes the default table name.
func (e Event) TableName() string {
	return "events"
}
