package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/elguaire/polla-settlement/internal/pool/model"
	"github.com/elguaire/polla-settlement/internal/pool/payout"
	"github.com/elguaire/polla-settlement/internal/pool/ranking"
	"github.com/elguaire/polla-settlement/internal/pool/scoring"
	"github.com/elguaire/polla-settlement/pkg/contracts/events"
)

// Divisão da taxa de inscrição, fixa por variante de evento.
// Polla: 10% comissão, 10% acumulado, 80% pote. Evento: 15% comissão, 85% pote.
var (
	pctCommissionFixed  = decimal.RequireFromString("0.10")
	pctCarryoverFixed   = decimal.RequireFromString("0.10")
	pctCommissionGraded = decimal.RequireFromString("0.15")
)

// Publisher despacha notificações de ganhador. Best-effort: falha de
// publicação nunca desfaz a liquidação.
type Publisher interface {
	PublishWinner(ctx context.Context, e events.WinnerNotified) error
}

// Locker serializa operações de liquidação por evento (modelo de escritor
// único: o guard CLOSED->PAID é check-then-act e precisa de exclusão mútua).
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// Engine orquestra o ciclo de liquidação de um evento:
// pontuação -> ranking -> alocação -> lançamentos, com garantia de
// execução única por evento.
type Engine struct {
	log      *zap.Logger
	store    Store
	lock     Locker
	publ     Publisher
	treasury string // conta do sistema dona de pote/comissão/acumulado

	lockTTL time.Duration
}

func New(log *zap.Logger, store Store, lock Locker, publ Publisher, treasury string) *Engine {
	return &Engine{
		log:      log,
		store:    store,
		lock:     lock,
		publ:     publ,
		treasury: treasury,
		lockTTL:  30 * time.Second,
	}
}

// CreateUser registra um apostador.
func (g *Engine) CreateUser(ctx context.Context, alias, email string) (*model.User, error) {
	if alias == "" || email == "" {
		return nil, fmt.Errorf("%w: alias and email required", ErrInvalidEvent)
	}
	u := &model.User{
		ID:        uuid.NewString(),
		Alias:     alias,
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := g.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateEvent registra um evento apostável em estado OPEN.
func (g *Engine) CreateEvent(ctx context.Context, ev *model.Event) (*model.Event, error) {
	if ev.Code == "" || ev.Name == "" {
		return nil, fmt.Errorf("%w: code and name required", ErrInvalidEvent)
	}
	if ev.PriceEntry.Sign() <= 0 {
		return nil, fmt.Errorf("%w: entry price must be positive", ErrInvalidEvent)
	}
	if ev.Kind == model.Graded && len(ev.Matches) == 0 {
		return nil, fmt.Errorf("%w: graded event needs at least one match", ErrInvalidEvent)
	}

	ev.ID = uuid.NewString()
	ev.State = model.StateOpen
	ev.CreatedAt = time.Now()
	for i, m := range ev.Matches {
		m.ID = uuid.NewString()
		m.EventID = ev.ID
		m.Order = i + 1
	}
	if err := g.store.CreateEvent(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Event retorna a definição do evento.
func (g *Engine) Event(ctx context.Context, eventID string) (*model.Event, error) {
	return g.store.Event(ctx, eventID)
}

// Balance retorna o saldo do usuário (soma dos lançamentos não conciliados).
func (g *Engine) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	return g.store.Balance(ctx, userID)
}

// Transactions retorna o extrato do usuário.
func (g *Engine) Transactions(ctx context.Context, userID string) ([]*model.LedgerEntry, error) {
	return g.store.LedgerEntries(ctx, userID)
}

// Deposit credita saldo a um usuário (recarga feita pelo operador).
func (g *Engine) Deposit(ctx context.Context, userID string, amount decimal.Decimal, memo string) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: deposit must be positive", ErrInvalidPrediction)
	}
	return g.store.InsertLedger(ctx, &model.LedgerEntry{
		ID:       uuid.NewString(),
		UserID:   userID,
		Amount:   amount,
		Category: model.CategoryDeposit,
		Memo:     memo,
		TrxDate:  time.Now(),
	})
}

// PlaceEntry registra a aposta de um usuário em um evento OPEN.
// Atômico: aposta, palpites, débito da taxa e créditos de comissão/pote/
// acumulado entram juntos ou nada entra.
func (g *Engine) PlaceEntry(ctx context.Context, userID, eventID string, pred Prediction) (*model.Entry, error) {
	ev, err := g.store.Event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.State != model.StateOpen {
		return nil, fmt.Errorf("%w: event %s is %s", ErrInvalidState, ev.Code, ev.State)
	}
	if err := validatePrediction(ev, pred); err != nil {
		return nil, err
	}

	// Pré-checagem de saldo; a transação do store revalida sob lock de
	// linha do usuário antes de gravar.
	bal, err := g.store.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bal.LessThan(ev.PriceEntry) {
		return nil, fmt.Errorf("%w: balance %s, price %s", ErrInsufficientFunds, bal, ev.PriceEntry)
	}

	now := time.Now()
	en := &model.Entry{
		ID:       uuid.NewString(),
		EventID:  ev.ID,
		UserID:   userID,
		Picks:    pred.Picks,
		Cost:     ev.PriceEntry.Neg(),
		PlacedAt: now,
	}
	for _, sp := range pred.Subs {
		en.Subs = append(en.Subs, &model.SubPrediction{
			ID:      uuid.NewString(),
			EntryID: en.ID,
			MatchID: sp.MatchID,
			Pred1:   sp.Score1,
			Pred2:   sp.Score2,
		})
	}

	rows := g.entryLedger(ev, en, now)
	if err := g.store.CreateEntry(ctx, ev, en, rows); err != nil {
		return nil, err
	}

	g.log.Info("entry placed",
		zap.String("eventId", ev.ID),
		zap.String("userId", userID),
		zap.String("entryId", en.ID),
	)
	return en, nil
}

// entryLedger monta os lançamentos da aposta: débito da taxa no usuário e
// repartição para a tesouraria.
func (g *Engine) entryLedger(ev *model.Event, en *model.Entry, now time.Time) []*model.LedgerEntry {
	price := ev.PriceEntry

	row := func(userID string, amount decimal.Decimal, cat model.LedgerCategory, memo string) *model.LedgerEntry {
		return &model.LedgerEntry{
			ID:       uuid.NewString(),
			UserID:   userID,
			EventID:  ev.ID,
			EntryID:  en.ID,
			Amount:   amount,
			Category: cat,
			Memo:     memo,
			TrxDate:  now,
		}
	}

	rows := []*model.LedgerEntry{
		row(en.UserID, price.Neg(), model.CategoryEntryFee, "Apuesta: "+ev.Code),
	}

	if ev.Kind == model.FixedOutcome {
		commission := price.Mul(pctCommissionFixed).Round(2)
		carryover := price.Mul(pctCarryoverFixed).Round(2)
		pot := price.Sub(commission).Sub(carryover)
		rows = append(rows,
			row(g.treasury, commission, model.CategoryCommission, "Comisión sistema - "+ev.Code),
			row(g.treasury, pot, model.CategoryPot, "Pote a repartir - "+ev.Code),
			row(g.treasury, carryover, model.CategoryCarryover, "Acumulado - "+ev.Code),
		)
		return rows
	}

	commission := price.Mul(pctCommissionGraded).Round(2)
	pot := price.Sub(commission)
	rows = append(rows,
		row(g.treasury, commission, model.CategoryCommission, "Comisión sistema - "+ev.Code),
		row(g.treasury, pot, model.CategoryPot, "Pote a repartir - "+ev.Code),
	)
	return rows
}

func validatePrediction(ev *model.Event, pred Prediction) error {
	if ev.Kind == model.FixedOutcome {
		for i, pick := range pred.Picks {
			if pick < 1 || pick > 20 {
				return fmt.Errorf("%w: slot %d pick %d out of range 1..20", ErrInvalidPrediction, i+1, pick)
			}
		}
		return nil
	}

	if len(pred.Subs) != len(ev.Matches) {
		return fmt.Errorf("%w: event has %d matches, got %d predictions", ErrInvalidPrediction, len(ev.Matches), len(pred.Subs))
	}
	seen := make(map[string]bool, len(pred.Subs))
	byID := make(map[string]bool, len(ev.Matches))
	for _, m := range ev.Matches {
		byID[m.ID] = true
	}
	for _, sp := range pred.Subs {
		if !byID[sp.MatchID] {
			return fmt.Errorf("%w: unknown match %s", ErrInvalidPrediction, sp.MatchID)
		}
		if seen[sp.MatchID] {
			return fmt.Errorf("%w: duplicate prediction for match %s", ErrInvalidPrediction, sp.MatchID)
		}
		if sp.Score1 < 0 || sp.Score2 < 0 {
			return fmt.Errorf("%w: negative score", ErrInvalidPrediction)
		}
		seen[sp.MatchID] = true
	}
	return nil
}

// EnterResults grava o conjunto completo de resultados finais, repontua
// todas as apostas e fecha o evento. Aceito em OPEN (fechamento normal) e em
// CLOSED (correção do operador antes do pagamento); nunca em PAID.
// Tudo-ou-nada: faltando qualquer resultado, nada é gravado.
func (g *Engine) EnterResults(ctx context.Context, eventID string, res Results) error {
	unlock, err := g.acquire(ctx, eventID)
	if err != nil {
		return err
	}
	defer unlock()

	ev, err := g.store.Event(ctx, eventID)
	if err != nil {
		return err
	}
	if ev.State == model.StatePaid {
		return fmt.Errorf("%w: event %s already paid", ErrInvalidState, ev.Code)
	}

	if err := applyResults(ev, res); err != nil {
		return err
	}
	if !ev.ResultsComplete() {
		return fmt.Errorf("%w: event %s", ErrIncompleteResults, ev.Code)
	}

	entries, err := g.store.Entries(ctx, eventID)
	if err != nil {
		return err
	}
	scorer := scoring.ForEvent(ev)
	for _, en := range entries {
		scorer.Score(ev, en)
	}

	if ev.State == model.StateOpen {
		ev.State = model.StateClosed
	}
	if err := g.store.SaveResults(ctx, ev, entries); err != nil {
		return fmt.Errorf("save results: %w", err)
	}

	g.log.Info("results entered",
		zap.String("eventId", ev.ID),
		zap.String("code", ev.Code),
		zap.Int("entries", len(entries)),
	)
	return nil
}

// applyResults valida e aplica os resultados ao evento em memória.
func applyResults(ev *model.Event, res Results) error {
	if ev.Kind == model.FixedOutcome {
		for i, winner := range res.Slots {
			if winner == nil {
				return fmt.Errorf("%w: slot %d missing", ErrIncompleteResults, i+1)
			}
			if *winner < 1 || *winner > 20 {
				return fmt.Errorf("%w: slot %d winner %d out of range 1..20", ErrIncompleteResults, i+1, *winner)
			}
		}
		ev.Slots = res.Slots
		return nil
	}

	byID := make(map[string]*model.Match, len(ev.Matches))
	for _, m := range ev.Matches {
		byID[m.ID] = m
	}
	if len(res.Matches) != len(ev.Matches) {
		return fmt.Errorf("%w: event has %d matches, got %d results", ErrIncompleteResults, len(ev.Matches), len(res.Matches))
	}
	for _, r := range res.Matches {
		m := byID[r.MatchID]
		if m == nil {
			return fmt.Errorf("%w: unknown match %s", ErrIncompleteResults, r.MatchID)
		}
		if r.Score1 < 0 || r.Score2 < 0 {
			return fmt.Errorf("%w: negative score for match %s", ErrIncompleteResults, r.MatchID)
		}
		s1, s2 := r.Score1, r.Score2
		m.Score1, m.Score2 = &s1, &s2
	}
	return nil
}

// Pay liquida um evento CLOSED: ranqueia, aloca o pote e posta os
// lançamentos pareados (crédito no ganhador, débito no pote da tesouraria)
// junto com a virada CLOSED -> PAID, tudo em uma transação. Chamada sobre
// evento já PAID é no-op e retorna false. Evento sem apostas vira PAID sem
// lançamento algum e retorna true.
func (g *Engine) Pay(ctx context.Context, eventID string) (bool, error) {
	unlock, err := g.acquire(ctx, eventID)
	if err != nil {
		return false, err
	}
	defer unlock()

	ev, err := g.store.Event(ctx, eventID)
	if err != nil {
		return false, err
	}
	if ev.State == model.StatePaid {
		return false, nil
	}
	if ev.State != model.StateClosed {
		return false, fmt.Errorf("%w: event %s is %s, enter results first", ErrInvalidState, ev.Code, ev.State)
	}

	allocs, err := g.allocate(ctx, ev)
	if err != nil {
		return false, err
	}

	now := time.Now()
	var rows []*model.LedgerEntry
	for _, a := range allocs {
		rows = append(rows,
			&model.LedgerEntry{
				ID:       uuid.NewString(),
				UserID:   a.Entry.UserID,
				EventID:  ev.ID,
				EntryID:  a.Entry.ID,
				Amount:   a.Prize,
				Category: model.CategoryPrize,
				Memo:     fmt.Sprintf("Premio %s - %s", a.Place, ev.Code),
				TrxDate:  now,
			},
			&model.LedgerEntry{
				ID:       uuid.NewString(),
				UserID:   g.treasury,
				EventID:  ev.ID,
				Amount:   a.Prize.Neg(),
				Category: model.CategoryPot,
				Memo:     fmt.Sprintf("Premio pagado %s - %s", a.Place, ev.Code),
				TrxDate:  now,
			},
		)
	}

	if err := g.store.PostPayout(ctx, eventID, rows); err != nil {
		if errors.Is(err, ErrAlreadySettled) {
			return false, nil
		}
		return false, fmt.Errorf("post payout: %w", err)
	}

	g.log.Info("event paid",
		zap.String("eventId", ev.ID),
		zap.String("code", ev.Code),
		zap.Int("winners", len(allocs)),
	)

	// Notificação é best-effort e fora da transação: falha aqui nunca
	// desfaz a liquidação.
	g.notifyWinners(ctx, ev, allocs)

	return true, nil
}

func (g *Engine) notifyWinners(ctx context.Context, ev *model.Event, allocs []payout.Allocation) {
	if g.publ == nil {
		return
	}
	for _, a := range allocs {
		e := events.WinnerNotified{
			EventID:   ev.ID,
			EventCode: ev.Code,
			EventName: ev.Name,
			UserID:    a.Entry.UserID,
			Place:     a.Place,
			Points:    a.Points,
			Amount:    a.Prize.StringFixed(2),
			Ts:        time.Now(),
		}
		if err := g.publ.PublishWinner(ctx, e); err != nil {
			g.log.Warn("winner notification publish failed",
				zap.String("eventId", ev.ID),
				zap.String("userId", a.Entry.UserID),
				zap.Error(err),
			)
		}
	}
}

// Winners calcula a lista de ganhadores sob demanda, sem efeito colateral.
// Seguro de chamar em qualquer estado.
func (g *Engine) Winners(ctx context.Context, eventID string) ([]*model.WinnerRecord, error) {
	ev, err := g.store.Event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	allocs, err := g.allocate(ctx, ev)
	if err != nil {
		return nil, err
	}
	return payout.Winners(allocs), nil
}

func (g *Engine) allocate(ctx context.Context, ev *model.Event) ([]payout.Allocation, error) {
	entries, err := g.store.Entries(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	pot, err := g.store.Pot(ctx, ev.ID)
	if err != nil {
		return nil, err
	}
	return payout.Allocate(ranking.Rank(entries), pot), nil
}

// acquire pega o mutex de liquidação do evento; segura o modelo de escritor
// único exigido pelas sequências check-then-act de EnterResults/Pay.
func (g *Engine) acquire(ctx context.Context, eventID string) (func(), error) {
	if g.lock == nil {
		return func() {}, nil
	}
	key := "settle:" + eventID
	ok, err := g.lock.TryLock(ctx, key, g.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("settlement lock: %w", err)
	}
	if !ok {
		return nil, ErrEventLocked
	}
	return func() {
		if err := g.lock.Unlock(context.Background(), key); err != nil {
			g.log.Warn("settlement unlock failed", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
