package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/elguaire/polla-settlement/internal/pool/dto"
	"github.com/elguaire/polla-settlement/internal/pool/engine"
	"github.com/elguaire/polla-settlement/internal/pool/model"
)

// Server expõe a API HTTP do motor de liquidação.
type Server struct {
	log *zap.Logger
	eng *engine.Engine
}

func NewServer(log *zap.Logger, eng *engine.Engine) *Server {
	return &Server{log: log, eng: eng}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/users", s.createUser)          // POST
	mux.HandleFunc("/events", s.createEvent)        // POST
	mux.HandleFunc("/events/", s.eventRoutes)       // GET /events/{id}, POST {id}/entries|results|pay, GET {id}/winners
	mux.HandleFunc("/balance", s.balance)           // GET ?userId=...
	mux.HandleFunc("/transactions", s.transactions) // GET ?userId=...
	mux.HandleFunc("/deposits", s.deposit)          // POST
	return mux
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	u, err := s.eng.CreateUser(r.Context(), req.Alias, req.Email)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, dto.UserResponse{UserID: u.ID, Alias: u.Alias, Email: u.Email})
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	kind, err := model.ParseEventKind(req.Kind)
	if err != nil {
		http.Error(w, "invalid kind", http.StatusBadRequest)
		return
	}
	mode := model.ExactScore
	if req.Mode != "" {
		if mode, err = model.ParseScoringMode(req.Mode); err != nil {
			http.Error(w, "invalid mode", http.StatusBadRequest)
			return
		}
	}
	price, err := decimal.NewFromString(req.PriceEntry)
	if err != nil {
		http.Error(w, "invalid price_entry", http.StatusBadRequest)
		return
	}

	ev := &model.Event{
		Code:       req.Code,
		Name:       req.Name,
		Venue:      req.Venue,
		Kind:       kind,
		Mode:       mode,
		PriceEntry: price,
	}
	for _, m := range req.Matches {
		ev.Matches = append(ev.Matches, &model.Match{Home: m.Home, Away: m.Away})
	}

	if ev, err = s.eng.CreateEvent(r.Context(), ev); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, eventResponse(ev))
}

// eventRoutes despacha /events/{id} e as sub-rotas de liquidação.
func (s *Server) eventRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/events/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "eventId required", http.StatusBadRequest)
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.getEvent(w, r, id)
		return
	}

	switch parts[1] {
	case "entries":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.placeEntry(w, r, id)
	case "results":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.enterResults(w, r, id)
	case "pay":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.pay(w, r, id)
	case "winners":
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.winners(w, r, id)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request, id string) {
	ev, err := s.eng.Event(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, eventResponse(ev))
}

func (s *Server) placeEntry(w http.ResponseWriter, r *http.Request, id string) {
	var req dto.PlaceEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}

	pred := engine.Prediction{}
	if len(req.Picks) > 0 {
		if len(req.Picks) != model.NumSlots {
			http.Error(w, "picks must have 6 selections", http.StatusBadRequest)
			return
		}
		copy(pred.Picks[:], req.Picks)
	}
	for _, mp := range req.Predictions {
		pred.Subs = append(pred.Subs, engine.SubPick{MatchID: mp.MatchID, Score1: mp.Score1, Score2: mp.Score2})
	}

	en, err := s.eng.PlaceEntry(r.Context(), req.UserID, id, pred)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, dto.EntryResponse{
		EntryID: en.ID,
		EventID: en.EventID,
		UserID:  en.UserID,
		Cost:    en.Cost.StringFixed(2),
		Score:   en.Score,
	})
}

func (s *Server) enterResults(w http.ResponseWriter, r *http.Request, id string) {
	var req dto.EnterResultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	res := engine.Results{}
	if len(req.Slots) > 0 {
		if len(req.Slots) != model.NumSlots {
			http.Error(w, "slots must have 6 winners", http.StatusBadRequest)
			return
		}
		for i := range req.Slots {
			v := req.Slots[i]
			res.Slots[i] = &v
		}
	}
	for _, mr := range req.Results {
		res.Matches = append(res.Matches, engine.MatchResult{MatchID: mr.MatchID, Score1: mr.Score1, Score2: mr.Score2})
	}

	if err := s.eng.EnterResults(r.Context(), id, res); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"CLOSED"}`))
}

func (s *Server) pay(w http.ResponseWriter, r *http.Request, id string) {
	paid, err := s.eng.Pay(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, dto.PayResponse{EventID: id, Paid: paid})
}

func (s *Server) winners(w http.ResponseWriter, r *http.Request, id string) {
	recs, err := s.eng.Winners(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	out := make([]dto.WinnerResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, dto.WinnerResponse{
			UserID: rec.Entry.UserID,
			Place:  rec.Place,
			Points: rec.Points,
			Prize:  rec.Prize.StringFixed(2),
		})
	}
	writeJSON(w, out)
}

func (s *Server) balance(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	bal, err := s.eng.Balance(r.Context(), userID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, dto.BalanceResponse{UserID: userID, Balance: bal.StringFixed(2)})
}

func (s *Server) transactions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	rows, err := s.eng.Transactions(r.Context(), userID)
	if err != nil {
		s.fail(w, err)
		return
	}
	out := make([]dto.TransactionResponse, 0, len(rows))
	for _, l := range rows {
		out = append(out, dto.TransactionResponse{
			ID:       l.ID,
			EventID:  l.EventID,
			Amount:   l.Amount.StringFixed(2),
			Category: string(l.Category),
			Memo:     l.Memo,
			TrxDate:  l.TrxDate,
		})
	}
	writeJSON(w, out)
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || req.UserID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := s.eng.Deposit(r.Context(), req.UserID, amount, req.Memo); err != nil {
		s.fail(w, err)
		return
	}
	bal, err := s.eng.Balance(r.Context(), req.UserID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, dto.BalanceResponse{UserID: req.UserID, Balance: bal.StringFixed(2)})
}

// fail converte erros do motor em status HTTP.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, engine.ErrInsufficientFunds),
		errors.Is(err, engine.ErrDuplicateEntry),
		errors.Is(err, engine.ErrInvalidState),
		errors.Is(err, engine.ErrEventLocked):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, engine.ErrInvalidPrediction),
		errors.Is(err, engine.ErrIncompleteResults),
		errors.Is(err, engine.ErrInvalidEvent):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("internal error", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func eventResponse(ev *model.Event) dto.EventResponse {
	resp := dto.EventResponse{
		EventID:    ev.ID,
		Code:       ev.Code,
		Name:       ev.Name,
		Venue:      ev.Venue,
		Kind:       ev.Kind.String(),
		PriceEntry: ev.PriceEntry.StringFixed(2),
		State:      ev.State.String(),
	}
	if ev.Kind == model.Graded {
		resp.Mode = ev.Mode.String()
		for _, m := range ev.Matches {
			resp.Matches = append(resp.Matches, dto.MatchResponse{
				MatchID: m.ID,
				Order:   m.Order,
				Home:    m.Home,
				Away:    m.Away,
				Score1:  m.Score1,
				Score2:  m.Score2,
			})
		}
		return resp
	}
	for _, s := range ev.Slots {
		if s == nil {
			break
		}
		resp.Slots = append(resp.Slots, *s)
	}
	return resp
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
