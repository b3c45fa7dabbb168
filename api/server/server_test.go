package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	require "github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/erfannorozi54/highest-voice/api/service"
	"github.com/erfannorozi54/highest-voice/engine"
	"github.com/erfannorozi54/highest-voice/keeper"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	eng := engine.New(engine.Config{})
	keep, err := keeper.New(eng, 0)
	require.Nil(t, err)
	return New(0, 0, service.New(eng, keep))
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func get(t *testing.T, s *Server, path string) (int, envelope) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.engine.ServeHTTP(w, req)

	var env envelope
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

func TestRoutes_Ping(t *testing.T) {
	s := newTestServer(t)

	status, env := get(t, s, "/auction/v1/ping")
	check.Equal(t, http.StatusOK, status)
	check.Equal(t, 0, env.Code)
	check.Equal(t, `"pong"`, string(env.Data))
}

func TestRoutes_ErrorEnvelope(t *testing.T) {
	s := newTestServer(t)

	// Auction 99 does not exist yet.
	status, env := get(t, s, "/auction/v1/auctions/99")
	check.Equal(t, http.StatusBadRequest, status)
	check.Equal(t, service.CodeOf(engine.ErrUnknownAuction), env.Code)
	check.Equal(t, engine.ErrUnknownAuction.Error(), env.Message)
}

func TestRoutes_Status(t *testing.T) {
	s := newTestServer(t)

	status, env := get(t, s, "/auction/v1/status")
	check.Equal(t, http.StatusOK, status)

	var data struct {
		AuctionID uint64 `json:"auction_id"`
		Phase     string `json:"phase"`
	}
	require.Nil(t, json.Unmarshal(env.Data, &data))
	check.Equal(t, uint64(1), data.AuctionID)
	check.Equal(t, "commit", data.Phase)
}
