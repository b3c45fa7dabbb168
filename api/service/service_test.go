package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp/cmpopts"
	require "github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/pkg/errors"

	"github.com/erfannorozi54/highest-voice/core"
	"github.com/erfannorozi54/highest-voice/engine"
	"github.com/erfannorozi54/highest-voice/keeper"
)

type fixedClock struct {
	now int64
}

func (c *fixedClock) Now() int64 { return c.now }

func newTestService(t *testing.T) (*Service, *fixedClock) {
	t.Helper()

	clock := &fixedClock{now: 1_700_000_000}
	eng := engine.New(engine.Config{
		Genesis: clock.now,
		Clock:   clock,
		Payout:  engine.NewLedgerSink(),
	})
	keep, err := keeper.New(eng, 0)
	require.Nil(t, err)
	return New(eng, keep), clock
}

func jsonCtx(t *testing.T, body any) *gin.Context {
	t.Helper()

	raw, err := json.Marshal(body)
	require.Nil(t, err)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(
		http.MethodPost,
		"/",
		bytes.NewReader(raw),
	)
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestCommitHandler(t *testing.T) {
	svc, _ := newTestService(t)

	bidder := "0x00000000000000000000000000000000000000aa"
	salt := core.Salt{1}
	amount := "2000000000000000000"
	hash := core.ComputeCommitment(
		mustWei(t, amount), "hello", "", "", salt,
	)

	c := jsonCtx(t, gin.H{
		"bidder":      bidder,
		"commit_hash": hash.Hex(),
		"value_wei":   "3000000000000000000",
	})
	_, err := svc.Commit(c)
	check.Nil(t, err)

	// Bad address is rejected before touching the engine.
	c = jsonCtx(t, gin.H{
		"bidder":      "not-an-address",
		"commit_hash": hash.Hex(),
		"value_wei":   "1",
	})
	_, err = svc.Commit(c)
	check.Equal(t, errInvalidAddress, errors.Cause(err), cmpopts.EquateErrors())
}

func TestRevealHandler_FullRound(t *testing.T) {
	svc, clock := newTestService(t)

	bidder := "0x00000000000000000000000000000000000000aa"
	salt := core.Salt{7}
	hash := core.ComputeCommitment(
		mustWei(t, "2000000000000000000"), "gm", "", "", salt,
	)

	c := jsonCtx(t, gin.H{
		"bidder":      bidder,
		"commit_hash": hash.Hex(),
		"value_wei":   "2000000000000000000",
	})
	_, err := svc.Commit(c)
	require.Nil(t, err)

	clock.now += core.CommitDuration

	c = jsonCtx(t, gin.H{
		"bidder":     bidder,
		"amount_wei": "2000000000000000000",
		"text":       "gm",
		"salt":       fmt.Sprintf("%x", salt[:]),
	})
	_, err = svc.Reveal(c)
	require.Nil(t, err)

	clock.now += core.RevealDuration

	c = jsonCtx(t, gin.H{})
	data, err := svc.Settle(c)
	require.Nil(t, err)
	out := data.(settleResp)
	check.True(t, out.Finalized)

	// Sole revealer pays the zero second price.
	w := httptest.NewRecorder()
	pc, _ := gin.CreateTestContext(w)
	pc.Params = gin.Params{{Key: "id", Value: "1"}}
	data, err = svc.AuctionPost(pc)
	require.Nil(t, err)
	post := data.(postResp)
	check.Equal(t, "gm", post.Text)
	check.Equal(t, "0", post.AmountPaidWei)
	check.Equal(t, "0", post.AmountPaidEth)
}

func TestAuctionView_RendersWeiAndEth(t *testing.T) {
	winner := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	a := core.Auction{
		ID:         3,
		StartTime:  1_700_000_000,
		CommitEnd:  1_700_000_000 + core.CommitDuration,
		RevealEnd:  1_700_000_000 + core.AuctionDuration,
		Settled:    true,
		Winner:     winner,
		WinningBid: mustWei(t, "1500000000000000000"),
		HighestBid: mustWei(t, "2000000000000000000"),
		SecondBid:  mustWei(t, "1500000000000000000"),
	}

	resp := auctionView(a)
	check.Equal(t, winner.Hex(), resp.Winner)
	check.Equal(t, "1500000000000000000", resp.WinningBidWei)
	check.Equal(t, "1.5", resp.WinningBidEth)
	check.Equal(t, "2000000000000000000", resp.HighestBidWei)
}

func TestStatusHandler(t *testing.T) {
	svc, _ := newTestService(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	data, err := svc.Status(c)
	require.Nil(t, err)

	st := data.(statusResp)
	check.Equal(t, uint64(1), st.AuctionID)
	check.Equal(t, "commit", st.Phase)
	check.False(t, st.NeedsSettlement)
}

func TestParseHelpers(t *testing.T) {
	_, err := parseAuctionID("0")
	check.Equal(t, errInvalidID, err, cmpopts.EquateErrors())
	_, err = parseAuctionID("abc")
	check.Equal(t, errInvalidID, err, cmpopts.EquateErrors())
	id, err := parseAuctionID("42")
	check.Nil(t, err)
	check.Equal(t, uint64(42), id)

	_, err = parseWei("-1")
	check.Equal(t, errInvalidAmount, err, cmpopts.EquateErrors())
	_, err = parseWei("1.5")
	check.Equal(t, errInvalidAmount, err, cmpopts.EquateErrors())

	_, err = parseHash("0x1234")
	check.Equal(t, errInvalidHash, err, cmpopts.EquateErrors())

	_, err = parseSalt("0xzz")
	check.Equal(t, errInvalidSalt, err, cmpopts.EquateErrors())
	salt, err := parseSalt(fmt.Sprintf("%064x", 7))
	check.Nil(t, err)
	check.Equal(t, byte(7), salt[core.SaltSize-1])
}

func TestCodeOf(t *testing.T) {
	check.Equal(t, 2001, CodeOf(engine.ErrCommitClosed))
	check.Equal(t, 2001, CodeOf(errors.Wrap(engine.ErrCommitClosed, "wrapped")))
	check.Equal(t, 1000, CodeOf(errors.New("something else")))
}

func mustWei(t *testing.T, raw string) *big.Int {
	t.Helper()

	v, err := parseWei(raw)
	require.Nil(t, err)
	return v
}
