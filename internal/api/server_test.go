package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/coder/quartz"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/game"
	"github.com/lox/blackjack-trainer/internal/history"
	"github.com/lox/blackjack-trainer/internal/randutil"
	"github.com/lox/blackjack-trainer/internal/rules"
	"github.com/lox/blackjack-trainer/internal/session"
)

type testServer struct {
	srv     *Server
	handler http.Handler
}

// newTestServer deals cards in order: player, dealer up, player, dealer hole,
// then draws
func newTestServer(t *testing.T, cards string, bankroll int64, opts ...Option) *testServer {
	t.Helper()
	tracker := session.NewTracker(decimal.NewFromInt(bankroll), session.WithClock(quartz.NewMock(t)))
	shoe := deck.NewStackedShoe(deck.MustParseCards(cards), 1)
	table, err := game.NewTable(randutil.New(1), rules.Default(),
		game.WithShoe(shoe),
		game.WithWallet(tracker),
		game.WithResultSink(tracker),
	)
	require.NoError(t, err)
	srv := NewServer(table, tracker, opts...)
	return &testServer{srv: srv, handler: srv.Routes()}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type viewBody struct {
	Phase       string   `json:"phase"`
	Round       int      `json:"round"`
	DealerCards []string `json:"dealer_cards"`
	Hands       []struct {
		Total int      `json:"total"`
		Legal []string `json:"legal"`
	} `json:"hands"`
	InsuranceOffered bool `json:"insurance_offered"`
	Last             *struct {
		Net decimal.Decimal `json:"net"`
	} `json:"last"`
}

func TestPlayRoundOverHTTP(t *testing.T) {
	// player T 7 against dealer 9 with 7 in the hole, dealer draws a 2
	ts := newTestServer(t, "Th 9c 7d 7s 2h", 1000)

	rec := ts.do(t, http.MethodPost, "/api/v1/rounds", StartRoundRequest{Bet: ptr(decimal.NewFromInt(10))})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decodeBody[viewBody](t, rec)
	assert.Equal(t, "player_actions", view.Phase)
	assert.Equal(t, []string{"9c"}, view.DealerCards, "hole card hidden")
	require.Len(t, view.Hands, 1)
	assert.Equal(t, 17, view.Hands[0].Total)
	assert.Contains(t, view.Hands[0].Legal, "stand")

	rec = ts.do(t, http.MethodGet, "/api/v1/hands/0/recommendation", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	advice := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "stand", advice["action"])
	assert.Equal(t, "hard", advice["source"])

	rec = ts.do(t, http.MethodPost, "/api/v1/hands/0/actions", ActionRequest{Action: "stand"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view = decodeBody[viewBody](t, rec)
	assert.Equal(t, "idle", view.Phase)
	require.NotNil(t, view.Last)
	assert.True(t, decimal.NewFromInt(-10).Equal(view.Last.Net), "dealer 18 beats 17")

	rec = ts.do(t, http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeBody[session.Summary](t, rec)
	assert.Equal(t, 1, summary.Rounds)
	assert.True(t, decimal.NewFromInt(990).Equal(summary.EndingBankroll))
	assert.Equal(t, 100.0, summary.Accuracy)
}

func TestInsuranceOverHTTP(t *testing.T) {
	ts := newTestServer(t, "Th As 7d 9s", 1000)

	rec := ts.do(t, http.MethodPost, "/api/v1/rounds", StartRoundRequest{Bet: ptr(decimal.NewFromInt(10))})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decodeBody[viewBody](t, rec)
	assert.Equal(t, "insurance", view.Phase)
	assert.True(t, view.InsuranceOffered)

	rec = ts.do(t, http.MethodPost, "/api/v1/hands/0/actions", ActionRequest{Action: "hit"})
	assert.Equal(t, http.StatusConflict, rec.Code, "actions wait for the insurance answer")

	rec = ts.do(t, http.MethodPost, "/api/v1/insurance", InsuranceRequest{Take: false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view = decodeBody[viewBody](t, rec)
	assert.Equal(t, "player_actions", view.Phase)
}

func TestStartRoundWithoutBetUsesSpread(t *testing.T) {
	ts := newTestServer(t, "Th 9c 7d 7s 2h", 1000)

	rec := ts.do(t, http.MethodPost, "/api/v1/rounds", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "10", body["bet"])
}

func TestErrorMapping(t *testing.T) {
	t.Run("illegal action is 409", func(t *testing.T) {
		ts := newTestServer(t, "Th 9c 7d 7s", 1000)
		rec := ts.do(t, http.MethodPost, "/api/v1/hands/0/actions", ActionRequest{Action: "hit"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "illegal_action", decodeBody[ErrorResponse](t, rec).Error)
	})

	t.Run("bet outside limits is 409", func(t *testing.T) {
		ts := newTestServer(t, "Th 9c 7d 7s", 100000)
		rec := ts.do(t, http.MethodPost, "/api/v1/rounds", StartRoundRequest{Bet: ptr(decimal.NewFromInt(5000))})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unaffordable bet is 402", func(t *testing.T) {
		ts := newTestServer(t, "Th 9c 7d 7s", 5)
		rec := ts.do(t, http.MethodPost, "/api/v1/rounds", StartRoundRequest{Bet: ptr(decimal.NewFromInt(10))})
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
		assert.Equal(t, "insufficient_bankroll", decodeBody[ErrorResponse](t, rec).Error)
	})

	t.Run("exhausted shoe is 500", func(t *testing.T) {
		ts := newTestServer(t, "Th 9c 7d", 1000)
		rec := ts.do(t, http.MethodPost, "/api/v1/rounds", StartRoundRequest{Bet: ptr(decimal.NewFromInt(10))})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "shoe_exhausted", decodeBody[ErrorResponse](t, rec).Error)

		rec = ts.do(t, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("unknown action is 400", func(t *testing.T) {
		ts := newTestServer(t, "Th 9c 7d 7s", 1000)
		rec := ts.do(t, http.MethodPost, "/api/v1/hands/0/actions", ActionRequest{Action: "fold"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad hand index is 400", func(t *testing.T) {
		ts := newTestServer(t, "Th 9c 7d 7s", 1000)
		rec := ts.do(t, http.MethodGet, "/api/v1/hands/first/recommendation", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed json is 400", func(t *testing.T) {
		ts := newTestServer(t, "Th 9c 7d 7s", 1000)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/rounds", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReadOnlyEndpoints(t *testing.T) {
	ts := newTestServer(t, "Th 9c 7d 7s", 1000)

	rec := ts.do(t, http.MethodGet, "/api/v1/rules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rulesBody := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "S17 DAS", rulesBody["variant"])
	assert.Equal(t, "3:2", rulesBody["blackjack_payout"])
	assert.NotEmpty(t, rulesBody["deviations"])

	rec = ts.do(t, http.MethodGet, "/api/v1/count", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	countBody := decodeBody[map[string]any](t, rec)
	assert.Equal(t, 0.0, countBody["running_count"])
	assert.Equal(t, false, countBody["insurance"])

	rec = ts.do(t, http.MethodGet, "/api/v1/round", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", decodeBody[viewBody](t, rec).Phase)

	rec = ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody[HealthResponse](t, rec).Status)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestSessionHistory(t *testing.T) {
	store := history.NewJSONStore(filepath.Join(t.TempDir(), "history.json"))
	ts := newTestServer(t, "Th 9c 7d 7s 2h", 1000, WithHistory(store))

	rec := ts.do(t, http.MethodPost, "/api/v1/session", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/v1/history?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]session.Summary](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, ts.srv.tracker.ID(), list[0].ID)

	rec = ts.do(t, http.MethodGet, "/api/v1/history?limit=many", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryDisabled(t *testing.T) {
	ts := newTestServer(t, "Th 9c 7d 7s", 1000)
	rec := ts.do(t, http.MethodGet, "/api/v1/history", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func ptr[T any](v T) *T { return &v }
