package engine

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/elguaire/polla-settlement/internal/pool/model"
)

// Store é o colaborador de persistência do motor de liquidação. Cada método
// de escrita é uma unidade atômica: ou todas as linhas entram e o estado
// muda, ou nada acontece.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	CreateEvent(ctx context.Context, ev *model.Event) error

	Event(ctx context.Context, id string) (*model.Event, error)
	Entries(ctx context.Context, eventID string) ([]*model.Entry, error)

	// Balance soma os lançamentos não conciliados do usuário.
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
	// Pot soma os lançamentos de categoria POT do evento.
	Pot(ctx context.Context, eventID string) (decimal.Decimal, error)

	// CreateEntry grava aposta + palpites + lançamentos em uma transação,
	// revalidando saldo e unicidade (user, event) sob lock de linha.
	CreateEntry(ctx context.Context, ev *model.Event, en *model.Entry, rows []*model.LedgerEntry) error

	// SaveResults grava resultados, pontuações recalculadas e o novo estado
	// do evento em uma transação.
	SaveResults(ctx context.Context, ev *model.Event, entries []*model.Entry) error

	// PostPayout insere os lançamentos de prêmio e vira o estado
	// CLOSED -> PAID com compare-and-swap; se o evento já estiver PAID,
	// retorna ErrAlreadySettled sem efeito colateral.
	PostPayout(ctx context.Context, eventID string, rows []*model.LedgerEntry) error

	InsertLedger(ctx context.Context, row *model.LedgerEntry) error

	// LedgerEntries retorna o extrato do usuário, mais recente primeiro.
	LedgerEntries(ctx context.Context, userID string) ([]*model.LedgerEntry, error)
}

// Prediction é o palpite bruto enviado pelo apostador, já resolvido para a
// variante do evento (o legado montava isso de campos de formulário soltos).
type Prediction struct {
	// Picks são as seleções das seis corridas (FixedOutcome), cavalos 1..20.
	Picks [model.NumSlots]int
	// Subs são os palpites por partida (Graded), um por partida do evento.
	Subs []SubPick
}

// SubPick é o palpite para uma partida.
type SubPick struct {
	MatchID string
	Score1  int
	Score2  int
}

// Results é o conjunto completo de resultados finais informado pelo operador.
type Results struct {
	// Slots são os ganhadores das seis corridas (FixedOutcome).
	Slots [model.NumSlots]*int
	// Matches são os placares finais (Graded), um por partida.
	Matches []MatchResult
}

// MatchResult é o placar final de uma partida.
type MatchResult struct {
	MatchID string
	Score1  int
	Score2  int
}
