package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/elguaire/polla-settlement/internal/pool/engine"
	"github.com/elguaire/polla-settlement/internal/pool/model"
)

// Postgres implementa engine.Store sobre Postgres com SQL cru.
// Cada método de escrita abre a própria transação: ou todas as linhas
// entram e o estado muda, ou nada acontece.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

func (p *Postgres) CreateUser(ctx context.Context, u *model.User) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (id, alias, email, created_at)
		VALUES ($1,$2,$3,$4)`,
		u.ID, u.Alias, u.Email, u.CreatedAt,
	)
	return err
}

func (p *Postgres) CreateEvent(ctx context.Context, ev *model.Event) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (id, code, name, venue, kind, mode, price_entry, state, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		ev.ID, ev.Code, ev.Name, ev.Venue, ev.Kind.String(), ev.Mode.String(),
		ev.PriceEntry, ev.State.String(), ev.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, m := range ev.Matches {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO matches (id, event_id, ord, home, away)
			VALUES ($1,$2,$3,$4,$5)`,
			m.ID, m.EventID, m.Order, m.Home, m.Away,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (p *Postgres) Event(ctx context.Context, id string) (*model.Event, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, code, name, venue, kind, mode, price_entry, state,
		       f1, f2, f3, f4, f5, f6, created_at
		FROM events WHERE id=$1`, id)

	ev := &model.Event{}
	var kind, mode, state string
	var slots [model.NumSlots]sql.NullInt64
	err := row.Scan(
		&ev.ID, &ev.Code, &ev.Name, &ev.Venue, &kind, &mode, &ev.PriceEntry, &state,
		&slots[0], &slots[1], &slots[2], &slots[3], &slots[4], &slots[5], &ev.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, engine.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if ev.Kind, err = model.ParseEventKind(kind); err != nil {
		return nil, err
	}
	if ev.Mode, err = model.ParseScoringMode(mode); err != nil {
		return nil, err
	}
	if ev.State, err = model.ParseEventState(state); err != nil {
		return nil, err
	}
	for i := range slots {
		ev.Slots[i] = intPtr(slots[i])
	}

	if ev.Kind == model.Graded {
		if ev.Matches, err = p.matches(ctx, ev.ID); err != nil {
			return nil, err
		}
	}
	return ev, nil
}

func (p *Postgres) matches(ctx context.Context, eventID string) ([]*model.Match, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, event_id, ord, home, away, score1, score2
		FROM matches WHERE event_id=$1 ORDER BY ord`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Match
	for rows.Next() {
		m := &model.Match{}
		var s1, s2 sql.NullInt64
		if err := rows.Scan(&m.ID, &m.EventID, &m.Order, &m.Home, &m.Away, &s1, &s2); err != nil {
			return nil, err
		}
		m.Score1, m.Score2 = intPtr(s1), intPtr(s2)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (p *Postgres) Entries(ctx context.Context, eventID string) ([]*model.Entry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, event_id, user_id, c1, c2, c3, c4, c5, c6, cost, score, placed_at
		FROM entries WHERE event_id=$1 ORDER BY placed_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Entry
	byID := map[string]*model.Entry{}
	for rows.Next() {
		en := &model.Entry{}
		if err := rows.Scan(
			&en.ID, &en.EventID, &en.UserID,
			&en.Picks[0], &en.Picks[1], &en.Picks[2], &en.Picks[3], &en.Picks[4], &en.Picks[5],
			&en.Cost, &en.Score, &en.PlacedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, en)
		byID[en.ID] = en
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subRows, err := p.db.QueryContext(ctx, `
		SELECT sp.id, sp.entry_id, sp.match_id, sp.pred1, sp.pred2, sp.points
		FROM sub_predictions sp
		JOIN entries e ON e.id = sp.entry_id
		WHERE e.event_id=$1`, eventID)
	if err != nil {
		return nil, err
	}
	defer subRows.Close()

	for subRows.Next() {
		sp := &model.SubPrediction{}
		if err := subRows.Scan(&sp.ID, &sp.EntryID, &sp.MatchID, &sp.Pred1, &sp.Pred2, &sp.Points); err != nil {
			return nil, err
		}
		if en := byID[sp.EntryID]; en != nil {
			en.Subs = append(en.Subs, sp)
		}
	}
	return out, subRows.Err()
}

// Balance soma os lançamentos não conciliados do usuário (filtro
// "conciliado" preservado do legado).
func (p *Postgres) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := p.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM ledger_entries
		WHERE user_id=$1 AND reconciled=false`, userID).Scan(&bal)
	return bal, err
}

// Pot soma as contribuições e débitos de pote do evento.
func (p *Postgres) Pot(ctx context.Context, eventID string) (decimal.Decimal, error) {
	var pot decimal.Decimal
	err := p.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM ledger_entries
		WHERE event_id=$1 AND category=$2`, eventID, string(model.CategoryPot)).Scan(&pot)
	return pot, err
}

// CreateEntry grava aposta, palpites e lançamentos em uma transação,
// revalidando saldo e unicidade sob lock pessimista da linha do usuário.
// A checagem saldo-então-débito não pode intercalar com outra aposta ou
// pagamento do mesmo usuário.
func (p *Postgres) CreateEntry(ctx context.Context, ev *model.Event, en *model.Entry, rows []*model.LedgerEntry) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var userID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id=$1 FOR UPDATE`, en.UserID).Scan(&userID)
	if err == sql.ErrNoRows {
		return engine.ErrNotFound
	}
	if err != nil {
		return err
	}

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM entries WHERE event_id=$1 AND user_id=$2`, en.EventID, en.UserID).Scan(&exists)
	if err == nil {
		return engine.ErrDuplicateEntry
	}
	if err != sql.ErrNoRows {
		return err
	}

	var bal decimal.Decimal
	if err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM ledger_entries
		WHERE user_id=$1 AND reconciled=false`, en.UserID).Scan(&bal); err != nil {
		return err
	}
	if bal.LessThan(ev.PriceEntry) {
		return engine.ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO entries (id, event_id, user_id, c1, c2, c3, c4, c5, c6, cost, score, placed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,0,$11)`,
		en.ID, en.EventID, en.UserID,
		en.Picks[0], en.Picks[1], en.Picks[2], en.Picks[3], en.Picks[4], en.Picks[5],
		en.Cost, en.PlacedAt,
	); err != nil {
		return err
	}

	for _, sp := range en.Subs {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO sub_predictions (id, entry_id, match_id, pred1, pred2, points)
			VALUES ($1,$2,$3,$4,$5,0)`,
			sp.ID, sp.EntryID, sp.MatchID, sp.Pred1, sp.Pred2,
		); err != nil {
			return err
		}
	}

	for _, l := range rows {
		if err = insertLedgerTx(ctx, tx, l); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveResults grava resultados, pontuações e o estado do evento.
func (p *Postgres) SaveResults(ctx context.Context, ev *model.Event, entries []*model.Entry) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `
		UPDATE events SET state=$1, f1=$2, f2=$3, f3=$4, f4=$5, f5=$6, f6=$7
		WHERE id=$8`,
		ev.State.String(),
		nullInt(ev.Slots[0]), nullInt(ev.Slots[1]), nullInt(ev.Slots[2]),
		nullInt(ev.Slots[3]), nullInt(ev.Slots[4]), nullInt(ev.Slots[5]),
		ev.ID,
	); err != nil {
		return err
	}

	for _, m := range ev.Matches {
		if _, err = tx.ExecContext(ctx, `
			UPDATE matches SET score1=$1, score2=$2 WHERE id=$3`,
			nullInt(m.Score1), nullInt(m.Score2), m.ID,
		); err != nil {
			return err
		}
	}

	for _, en := range entries {
		if _, err = tx.ExecContext(ctx, `UPDATE entries SET score=$1 WHERE id=$2`, en.Score, en.ID); err != nil {
			return err
		}
		for _, sp := range en.Subs {
			if _, err = tx.ExecContext(ctx, `UPDATE sub_predictions SET points=$1 WHERE id=$2`, sp.Points, sp.ID); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// PostPayout vira CLOSED -> PAID com compare-and-swap e insere os
// lançamentos de prêmio na mesma transação. Evento já PAID retorna
// engine.ErrAlreadySettled sem efeito colateral.
func (p *Postgres) PostPayout(ctx context.Context, eventID string, rows []*model.LedgerEntry) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE events SET state=$1 WHERE id=$2 AND state=$3`,
		model.StatePaid.String(), eventID, model.StateClosed.String(),
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var state string
		if err := tx.QueryRowContext(ctx, `SELECT state FROM events WHERE id=$1`, eventID).Scan(&state); err != nil {
			if err == sql.ErrNoRows {
				return engine.ErrNotFound
			}
			return err
		}
		if state == model.StatePaid.String() {
			return engine.ErrAlreadySettled
		}
		return fmt.Errorf("%w: event is %s", engine.ErrInvalidState, state)
	}

	for _, l := range rows {
		if err = insertLedgerTx(ctx, tx, l); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LedgerEntries retorna o extrato do usuário, mais recente primeiro.
func (p *Postgres) LedgerEntries(ctx context.Context, userID string) ([]*model.LedgerEntry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, event_id, entry_id, amount, category, memo, reconciled, trx_date
		FROM ledger_entries WHERE user_id=$1 ORDER BY trx_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.LedgerEntry
	for rows.Next() {
		l := &model.LedgerEntry{}
		var evID, enID sql.NullString
		var cat string
		if err := rows.Scan(&l.ID, &l.UserID, &evID, &enID, &l.Amount, &cat, &l.Memo, &l.Reconciled, &l.TrxDate); err != nil {
			return nil, err
		}
		l.EventID, l.EntryID = strOrEmpty(evID), strOrEmpty(enID)
		l.Category = model.LedgerCategory(cat)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (p *Postgres) InsertLedger(ctx context.Context, l *model.LedgerEntry) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err = insertLedgerTx(ctx, tx, l); err != nil {
		return err
	}
	return tx.Commit()
}

func insertLedgerTx(ctx context.Context, tx *sql.Tx, l *model.LedgerEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, user_id, event_id, entry_id, amount, category, memo, reconciled, trx_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,false,$8)`,
		l.ID, l.UserID, nullStr(l.EventID), nullStr(l.EntryID),
		l.Amount, string(l.Category), l.Memo, l.TrxDate,
	)
	return err
}
