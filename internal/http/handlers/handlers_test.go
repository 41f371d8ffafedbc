package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/street-spirit/shrine-backend/internal/auth"
	"github.com/street-spirit/shrine-backend/internal/middleware"
	"github.com/street-spirit/shrine-backend/internal/models"
	"github.com/street-spirit/shrine-backend/internal/shrine"
	"github.com/street-spirit/shrine-backend/internal/storage/memory"
)

const (
	testJWTSecret     = "handlers-test-secret"
	testIssuer        = "shrine-backend"
	testPaymentLink   = "https://buy.stripe.com/test_reading"
	testWebhookSecret = "whsec_test_signing_secret"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type stubGenerator struct {
	result models.FortuneResult
	err    error
	calls  int
}

func (g *stubGenerator) Generate(_ context.Context, _ string) (models.FortuneResult, error) {
	g.calls++
	if g.err != nil {
		return models.FortuneResult{}, g.err
	}
	return g.result, nil
}

func sampleResult() models.FortuneResult {
	return models.FortuneResult{
		Fortune: models.TierKichi,
		GodName: "Spirit Guardian of New Beginnings",
		Waka:    models.Waka{Text: "朝露に", Meaning: "A path glitters in the morning dew."},
		Advice: models.Advice{
			Wish: "Patient.", Love: "Near.", WaitingPerson: "Late.", Business: "Steady.",
			Studies: "Basics.", Health: "Certain.", Housing: "West.", Travel: "Lucky.",
			Proposal: "Sincere.", LostItem: "Low place.",
		},
		LuckyItem: "Crystal Bead",
	}
}

// env bundles the full API surface behind the real middleware chain so tests
// exercise routing, authentication, and handlers together.
type env struct {
	store   *memory.Store
	tokens  *auth.TokenManager
	gen     *stubGenerator
	handler http.Handler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.New()
	tokens := auth.NewTokenManager(testJWTSecret, testIssuer, time.Hour)
	gen := &stubGenerator{result: sampleResult()}
	service := shrine.NewService(store, gen, func() time.Time { return testNow })

	mux := http.NewServeMux()
	NewAuthHandler(store, tokens).Register(mux)
	NewFortuneHandler(service, testPaymentLink).Register(mux)
	NewReadingsHandler(store).Register(mux)
	NewEmaHandler(store).Register(mux)
	NewShrineHandler(store, service).Register(mux)
	NewWebhookHandler(store, testWebhookSecret).Register(mux)

	return &env{
		store:   store,
		tokens:  tokens,
		gen:     gen,
		handler: middleware.Authn(tokens, mux),
	}
}

// newUser creates an anonymous visitor and a valid session token for it.
func (e *env) newUser(t *testing.T) (models.User, string) {
	t.Helper()
	user, err := e.store.CreateAnonymousUser(context.Background())
	require.NoError(t, err)
	token, err := e.tokens.Generate(user)
	require.NoError(t, err)
	return user, token
}

// do performs one request through the middleware chain. A non-empty token is
// sent as a Bearer credential; a non-nil body is JSON-encoded.
func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors the respond package wrapper with the data left raw for
// per-test decoding.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	body := decodeEnvelope(t, rec)
	require.NotNil(t, body.Data)
	require.NoError(t, json.Unmarshal(body.Data, out))
}
