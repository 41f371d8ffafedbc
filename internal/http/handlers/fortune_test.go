package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/street-spirit/shrine-backend/internal/fortune"
	"github.com/street-spirit/shrine-backend/internal/models"
	"github.com/street-spirit/shrine-backend/internal/models/dto"
)

func TestFortuneRequiresAuth(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/api/fortune", "", dto.FortuneRequest{Input: "worry"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFortuneHappyPath(t *testing.T) {
	e := newEnv(t)
	user, token := e.newUser(t)
	e.store.SetCredits(user.ID, 1)

	rec := e.do(t, http.MethodPost, "/api/fortune", token, dto.FortuneRequest{Input: "Will my garden grow?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp dto.FortuneResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, models.TierKichi, resp.Reading.FortuneLevel)
	assert.Equal(t, "Will my garden grow?", resp.Reading.InputText)
	assert.Equal(t, "Crystal Bead", resp.Reading.LuckyItem)
	assert.True(t, resp.GoshuinAwarded)

	balance, err := e.store.Balance(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestFortuneInsufficientCredit(t *testing.T) {
	e := newEnv(t)
	_, token := e.newUser(t)

	rec := e.do(t, http.MethodPost, "/api/fortune", token, dto.FortuneRequest{Input: "worry"})
	require.Equal(t, http.StatusPaymentRequired, rec.Code)

	var resp map[string]string
	decodeData(t, rec, &resp)
	assert.Equal(t, testPaymentLink, resp["payment_link"])
	assert.Zero(t, e.gen.calls)
}

func TestFortunePaymentConfirmedSkipsCredit(t *testing.T) {
	e := newEnv(t)
	_, token := e.newUser(t)

	rec := e.do(t, http.MethodPost, "/api/fortune", token, dto.FortuneRequest{Input: "worry after checkout", PaymentConfirmed: true})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestFortuneOracleDown(t *testing.T) {
	e := newEnv(t)
	user, token := e.newUser(t)
	e.store.SetCredits(user.ID, 1)
	e.gen.err = fortune.ErrUnavailable

	rec := e.do(t, http.MethodPost, "/api/fortune", token, dto.FortuneRequest{Input: "worry"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "the oracle is silent, please try again later", decodeEnvelope(t, rec).Message)
}

func TestFortuneLedgerOutage(t *testing.T) {
	e := newEnv(t)
	user, token := e.newUser(t)
	e.store.SetCredits(user.ID, 1)
	e.store.RedeemErr = assert.AnError

	rec := e.do(t, http.MethodPost, "/api/fortune", token, dto.FortuneRequest{Input: "worry"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFortuneEmptyInput(t *testing.T) {
	e := newEnv(t)
	user, token := e.newUser(t)
	e.store.SetCredits(user.ID, 1)

	rec := e.do(t, http.MethodPost, "/api/fortune", token, dto.FortuneRequest{Input: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, e.gen.calls)
}

func TestFortuneRejectsGet(t *testing.T) {
	e := newEnv(t)
	_, token := e.newUser(t)
	rec := e.do(t, http.MethodGet, "/api/fortune", token, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
