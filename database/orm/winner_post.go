package orm

import (
	"time"
)

// WinnerPost is a gorm table definition archiving winner artifacts.
type WinnerPost struct {
	ID              uint64 `gorm:"primary_key"`
	AuctionID       uint64 `gorm:"uniqueIndex"`
	Winner          string `gorm:"index"`
	Text            string `gorm:"size:500"`
	ImageCid        string `gorm:"size:100"`
	VoiceCid        string `gorm:"size:100"`
	AmountPaidWei   string
	TipsReceivedWei string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName changes the default table name.
func (p WinnerPost) TableName() string {
	return "winner_posts"
}
