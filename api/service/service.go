package service

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/erfannorozi54/highest-voice/core"
	"github.com/erfannorozi54/highest-voice/engine"
	"github.com/erfannorozi54/highest-voice/keeper"
)

// Service exposes the engine and keeper over HTTP handlers. Every
// handler returns (data, error); the server layer wraps both into the
// wire envelope.
type Service struct {
	eng  *engine.Engine
	keep *keeper.Keeper
}

func New(eng *engine.Engine, keep *keeper.Keeper) *Service {
	return &Service{eng: eng, keep: keep}
}

// Ping is the liveness probe.
func (s *Service) Ping(_ *gin.Context) (any, error) {
	return "pong", nil
}

type statusResp struct {
	AuctionID       uint64 `json:"auction_id"`
	Phase           string `json:"phase"`
	StartTime       int64  `json:"start_time"`
	CommitEnd       int64  `json:"commit_end"`
	RevealEnd       int64  `json:"reveal_end"`
	Processed       int    `json:"processed"`
	Total           int    `json:"total"`
	NeedsSettlement bool   `json:"needs_settlement"`
	Now             int64  `json:"now"`
}

// Status reports the current auction's phase and settlement cursor.
func (s *Service) Status(_ *gin.Context) (any, error) {
	st := s.eng.Status()
	return statusResp{
		AuctionID:       st.AuctionID,
		Phase:           st.Phase.String(),
		StartTime:       st.StartTime,
		CommitEnd:       st.CommitEnd,
		RevealEnd:       st.RevealEnd,
		Processed:       st.Processed,
		Total:           st.Total,
		NeedsSettlement: st.NeedsSettlement,
		Now:             st.Now,
	}, nil
}

type auctionResp struct {
	AuctionID     uint64 `json:"auction_id"`
	StartTime     int64  `json:"start_time"`
	CommitEnd     int64  `json:"commit_end"`
	RevealEnd     int64  `json:"reveal_end"`
	Settled       bool   `json:"settled"`
	Winner        string `json:"winner,omitempty"`
	WinningBidWei string `json:"winning_bid_wei,omitempty"`
	WinningBidEth string `json:"winning_bid_eth,omitempty"`
	HighestBidWei string `json:"highest_bid_wei,omitempty"`
	SecondBidWei  string `json:"second_bid_wei,omitempty"`
}

func auctionView(a core.Auction) auctionResp {
	resp := auctionResp{
		AuctionID: a.ID,
		StartTime: a.StartTime,
		CommitEnd: a.CommitEnd,
		RevealEnd: a.RevealEnd,
		Settled:   a.Settled,
	}
	if a.HasWinner() {
		resp.Winner = a.Winner.Hex()
		resp.WinningBidWei = a.WinningBid.String()
		resp.WinningBidEth = core.WeiToEth(a.WinningBid)
		resp.HighestBidWei = a.HighestBid.String()
		resp.SecondBidWei = a.SecondBid.String()
	}
	return resp
}

// CurrentAuction returns the schedule of the auction accepting bids.
func (s *Service) CurrentAuction(_ *gin.Context) (any, error) {
	a, err := s.eng.AuctionInfo(s.eng.CurrentAuctionID())
	if err != nil {
		return nil, err
	}
	return auctionView(a), nil
}

type countdownResp struct {
	Phase    string `json:"phase"`
	PhaseEnd int64  `json:"phase_end"`
	Now      int64  `json:"now"`
}

// Countdown reports when the current phase window closes.
func (s *Service) Countdown(_ *gin.Context) (any, error) {
	st := s.eng.Status()
	return countdownResp{
		Phase:    st.Phase.String(),
		PhaseEnd: s.eng.CountdownEnd(),
		Now:      st.Now,
	}, nil
}

// Auction returns the schedule of any known auction by id.
func (s *Service) Auction(c *gin.Context) (any, error) {
	id, err := parseAuctionID(c.Param("id"))
	if err != nil {
		return nil, err
	}
	a, err := s.eng.AuctionInfo(id)
	if err != nil {
		return nil, err
	}
	return auctionView(a), nil
}

// AuctionResult returns a settled auction's outcome.
func (s *Service) AuctionResult(c *gin.Context) (any, error) {
	id, err := parseAuctionID(c.Param("id"))
	if err != nil {
		return nil, err
	}
	a, err := s.eng.AuctionResult(id)
	if err != nil {
		return nil, err
	}
	return auctionView(a), nil
}

type progressResp struct {
	AuctionID uint64 `json:"auction_id"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Done      bool   `json:"done"`
}

// AuctionProgress returns the settlement cursor for an auction.
func (s *Service) AuctionProgress(c *gin.Context) (any, error) {
	id, err := parseAuctionID(c.Param("id"))
	if err != nil {
		return nil, err
	}
	cur, err := s.eng.SettlementProgress(id)
	if err != nil {
		return nil, err
	}
	return progressResp{
		AuctionID: id,
		Processed: cur.Processed,
		Total:     cur.Total,
		Done:      cur.Done(),
	}, nil
}

type postResp struct {
	AuctionID       uint64 `json:"auction_id"`
	Winner          string `json:"winner"`
	Text            string `json:"text"`
	ImageCid        string `json:"image_cid,omitempty"`
	VoiceCid        string `json:"voice_cid,omitempty"`
	AmountPaidWei   string `json:"amount_paid_wei"`
	AmountPaidEth   string `json:"amount_paid_eth"`
	TipsReceivedWei string `json:"tips_received_wei"`
}

// AuctionPost returns the winner artifact minted at settlement.
func (s *Service) AuctionPost(c *gin.Context) (any, error) {
	id, err := parseAuctionID(c.Param("id"))
	if err != nil {
		return nil, err
	}
	post, err := s.eng.WinnerPost(id)
	if err != nil {
		return nil, err
	}
	return postResp{
		AuctionID:       post.AuctionID,
		Winner:          post.Winner.Hex(),
		Text:            post.Text,
		ImageCid:        post.ImageCid,
		VoiceCid:        post.VoiceCid,
		AmountPaidWei:   post.AmountPaid.String(),
		AmountPaidEth:   core.WeiToEth(post.AmountPaid),
		TipsReceivedWei: post.TipsReceived.String(),
	}, nil
}

type participantResp struct {
	Address          string `json:"address"`
	Wins             uint64 `json:"wins"`
	TotalSpendWei    string `json:"total_spend_wei"`
	TotalSpendEth    string `json:"total_spend_eth"`
	CurrentStreak    uint64 `json:"current_streak"`
	BestStreak       uint64 `json:"best_streak"`
	LastWonAuction   uint64 `json:"last_won_auction"`
	PendingReturnWei string `json:"pending_return_wei"`
}

// Participant returns lifetime stats and the claimable escrow balance
// for an address.
func (s *Service) Participant(c *gin.Context) (any, error) {
	addr, err := parseAddress(c.Param("address"))
	if err != nil {
		return nil, err
	}
	stats := s.eng.StatsOf(addr)
	return participantResp{
		Address:          addr.Hex(),
		Wins:             stats.Wins,
		TotalSpendWei:    stats.TotalSpend.String(),
		TotalSpendEth:    core.WeiToEth(stats.TotalSpend),
		CurrentStreak:    stats.CurrentStreak,
		BestStreak:       stats.BestStreak,
		LastWonAuction:   stats.LastWonAuction,
		PendingReturnWei: s.eng.PendingReturn(addr).String(),
	}, nil
}

type commitReq struct {
	Bidder     string `json:"bidder" binding:"required"`
	CommitHash string `json:"commit_hash" binding:"required"`
	ValueWei   string `json:"value_wei" binding:"required"`
}

// Commit submits (or raises) a sealed bid for the current auction.
func (s *Service) Commit(c *gin.Context) (any, error) {
	var req commitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errors.Wrap(errSystem, err.Error())
	}
	bidder, err := parseAddress(req.Bidder)
	if err != nil {
		return nil, err
	}
	hash, err := parseHash(req.CommitHash)
	if err != nil {
		return nil, err
	}
	value, err := parseWei(req.ValueWei)
	if err != nil {
		return nil, err
	}
	if err := s.eng.CommitBid(bidder, hash, value); err != nil {
		return nil, err
	}
	return gin.H{"auction_id": s.eng.CurrentAuctionID()}, nil
}

type revealReq struct {
	Bidder    string `json:"bidder" binding:"required"`
	AmountWei string `json:"amount_wei" binding:"required"`
	Text      string `json:"text"`
	ImageCid  string `json:"image_cid"`
	VoiceCid  string `json:"voice_cid"`
	Salt      string `json:"salt" binding:"required"`
}

// Reveal opens a sealed bid during the reveal window.
func (s *Service) Reveal(c *gin.Context) (any, error) {
	var req revealReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errors.Wrap(errSystem, err.Error())
	}
	bidder, err := parseAddress(req.Bidder)
	if err != nil {
		return nil, err
	}
	amount, err := parseWei(req.AmountWei)
	if err != nil {
		return nil, err
	}
	salt, err := parseSalt(req.Salt)
	if err != nil {
		return nil, err
	}
	if err := s.eng.RevealBid(bidder, amount, req.Text, req.ImageCid, req.VoiceCid, salt); err != nil {
		return nil, err
	}
	return gin.H{"auction_id": s.eng.CurrentAuctionID()}, nil
}

type settleReq struct {
	AuctionID uint64 `json:"auction_id"`
}

type settleResp struct {
	AuctionID uint64 `json:"auction_id"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Finalized bool   `json:"finalized"`
}

// Settle runs one settlement batch. Omitting auction_id targets the
// current auction.
func (s *Service) Settle(c *gin.Context) (any, error) {
	var req settleReq
	// The body is optional; an absent or empty body targets the
	// current auction.
	_ = c.ShouldBindJSON(&req)
	var (
		out engine.SettleOutcome
		err error
	)
	if req.AuctionID == 0 {
		out, err = s.keep.ManualSettle()
	} else {
		out, err = s.eng.Settle(req.AuctionID)
	}
	if err != nil {
		return nil, err
	}
	return settleResp{
		AuctionID: out.AuctionID,
		Processed: out.Processed,
		Total:     out.Total,
		Finalized: out.Finalized,
	}, nil
}

type tipReq struct {
	AuctionID uint64 `json:"auction_id" binding:"required"`
	From      string `json:"from" binding:"required"`
	AmountWei string `json:"amount_wei" binding:"required"`
}

// Tip forwards appreciation to a past winner, 90/10 with treasury.
func (s *Service) Tip(c *gin.Context) (any, error) {
	var req tipReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errors.Wrap(errSystem, err.Error())
	}
	from, err := parseAddress(req.From)
	if err != nil {
		return nil, err
	}
	amount, err := parseWei(req.AmountWei)
	if err != nil {
		return nil, err
	}
	if err := s.eng.TipWinner(req.AuctionID, from, amount); err != nil {
		return nil, err
	}
	return gin.H{"auction_id": req.AuctionID}, nil
}

type claimReq struct {
	Bidder string `json:"bidder" binding:"required"`
}

// Claim withdraws a bidder's escrowed refunds.
func (s *Service) Claim(c *gin.Context) (any, error) {
	var req claimReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, errors.Wrap(errSystem, err.Error())
	}
	bidder, err := parseAddress(req.Bidder)
	if err != nil {
		return nil, err
	}
	claimed, err := s.eng.ClaimRefund(bidder)
	if err != nil {
		return nil, err
	}
	return gin.H{"claimed_wei": claimed.String()}, nil
}

// KeeperStatus exposes the automation projection.
func (s *Service) KeeperStatus(_ *gin.Context) (any, error) {
	return s.keep.GetStatus(), nil
}

func parseAuctionID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return id, nil
}

func parseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, errInvalidAddress
	}
	return common.HexToAddress(raw), nil
}

func parseWei(raw string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok || v.Sign() < 0 {
		return nil, errInvalidAmount
	}
	return v, nil
}

func parseHash(raw string) (common.Hash, error) {
	trimmed := strings.TrimPrefix(raw, "0x")
	if len(trimmed) != common.HashLength*2 {
		return common.Hash{}, errInvalidHash
	}
	if _, err := hex.DecodeString(trimmed); err != nil {
		return common.Hash{}, errInvalidHash
	}
	return common.HexToHash(raw), nil
}

func parseSalt(raw string) (core.Salt, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
	if err != nil || len(b) != core.SaltSize {
		return core.Salt{}, errInvalidSalt
	}
	var salt core.Salt
	copy(salt[:], b)
	return salt, nil
}
