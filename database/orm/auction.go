package orm

import (
	"time"
)

// Auction is a gorm table definition archiving settled auctions.
type Auction struct {
	ID            uint64 `gorm:"primary_key"`
	AuctionID     uint64 `gorm:"uniqueIndex"`
	StartTime     int64
	CommitEnd     int64
	RevealEnd     int64
	Winner        string
	WinningBidWei string
	HighestBidWei string
	SecondBidWei  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName changes the default table name.
func (a Auction) TableName() string {
	return "auctions"
}
