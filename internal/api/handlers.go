package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lox/blackjack-trainer/internal/betting"
	"github.com/lox/blackjack-trainer/internal/count"
	"github.com/lox/blackjack-trainer/internal/rules"
	"github.com/lox/blackjack-trainer/internal/strategy"
)

var errBadRequest = errors.New("api: bad request")

func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func handIndex(r *http.Request) (int, error) {
	i, err := strconv.Atoi(chi.URLParam(r, "hand"))
	if err != nil {
		return 0, fmt.Errorf("%w: hand index must be an integer", errBadRequest)
	}
	return i, nil
}

// StartRoundRequest places a bet. A missing bet uses the spread
// recommendation for the current count.
type StartRoundRequest struct {
	Bet *decimal.Decimal `json:"bet,omitempty"`
}

func (s *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	var req StartRoundRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bet := s.betRecommendation().Amount
	if req.Bet != nil {
		bet = *req.Bet
	}
	if err := s.table.StartRound(bet); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, s.table.View())
}

// InsuranceRequest answers the insurance offer
type InsuranceRequest struct {
	Take bool `json:"take"`
}

func (s *Server) handleInsurance(w http.ResponseWriter, r *http.Request) {
	var req InsuranceRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.table.SubmitInsurance(req.Take); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.table.View())
}

// ActionRequest plays one action on a hand
type ActionRequest struct {
	Action string `json:"action"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	i, err := handIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req ActionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	action, err := strategy.ParseAction(req.Action)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.table.SubmitAction(i, action); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.table.View())
}

// RecommendationResponse is the strategy answer for one hand
type RecommendationResponse struct {
	Hand      int               `json:"hand"`
	Action    strategy.Action   `json:"action"`
	Source    strategy.Source   `json:"source"`
	Deviation string            `json:"deviation,omitempty"`
	Legal     []strategy.Action `json:"legal"`
	TrueCount float64           `json:"true_count"`
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	i, err := handIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.table.Recommendation(i)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := RecommendationResponse{
		Hand:      i,
		Action:    rec.Action,
		Source:    rec.Source,
		Legal:     s.table.LegalActions(i),
		TrueCount: s.table.CountState().TrueCount,
	}
	if rec.Deviation != nil {
		resp.Deviation = rec.Deviation.String()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, s.table.View())
}

// CountResponse is the count with the bet and insurance advice it implies
type CountResponse struct {
	count.State
	Index     int                    `json:"index"`
	Bet       betting.Recommendation `json:"bet"`
	Insurance bool                   `json:"insurance"`
	WongOut   bool                   `json:"wong_out"`
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.table.CountState()
	s.writeJSON(w, http.StatusOK, CountResponse{
		State:     state,
		Index:     state.Index(),
		Bet:       s.betRecommendation(),
		Insurance: s.table.Engine().Insurance(state.TrueCount),
		WongOut:   betting.WongOut(state.TrueCount),
	})
}

func (s *Server) betRecommendation() betting.Recommendation {
	cfg := s.table.Rules()
	rec := s.spread.Recommend(s.table.CountState().TrueCount, cfg.MinBet, s.maxSpread)
	rec.Amount = decimal.Min(rec.Amount, cfg.MaxBet)
	return rec
}

// RulesResponse is the rule set with its strategy variant
type RulesResponse struct {
	rules.Config
	Variant        string   `json:"variant"`
	Description    string   `json:"description"`
	Deviations     []string `json:"deviations"`
	InsuranceIndex int      `json:"insurance_index"`
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.table.Rules()
	engine := s.table.Engine()
	resp := RulesResponse{
		Config:         cfg,
		Variant:        cfg.Variant(),
		Description:    cfg.String(),
		Deviations:     []string{},
		InsuranceIndex: engine.InsuranceIndex(),
	}
	for _, d := range engine.Deviations() {
		resp.Deviations = append(resp.Deviations, d.String())
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, s.tracker.Summary())
}

func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, fmt.Errorf("%w: history is not enabled", errBadRequest))
		return
	}

	s.mu.Lock()
	summary := s.tracker.Summary()
	s.mu.Unlock()

	if err := s.store.Save(r.Context(), summary); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("Session saved", "id", summary.ID, "rounds", summary.Rounds)
	s.writeJSON(w, http.StatusCreated, summary)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, fmt.Errorf("%w: history is not enabled", errBadRequest))
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: limit must be an integer", errBadRequest))
			return
		}
		limit = n
	}
	sessions, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessions)
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Phase  string `json:"phase"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := HealthResponse{
		Status: "healthy",
		Uptime: time.Since(s.startTime).Round(time.Second).String(),
		Phase:  s.table.Phase().String(),
	}
	status := http.StatusOK
	if err := s.table.Err(); err != nil {
		resp.Status = "unhealthy"
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, resp)
}
