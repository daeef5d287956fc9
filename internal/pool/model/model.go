package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// NumSlots é a quantidade de corridas de uma polla (fixo no legado).
const NumSlots = 6

// EventKind distingue as duas variantes de evento apostável.
type EventKind int

const (
	// FixedOutcome: polla de hipódromo com seis corridas resolvidas
	// independentemente (ganhador 1..20 por corrida).
	FixedOutcome EventKind = iota
	// Graded: evento esportivo composto de partidas ordenadas, pontuado
	// conforme o ScoringMode.
	Graded
)

func (k EventKind) String() string {
	if k == Graded {
		return "GRADED"
	}
	return "FIXED_OUTCOME"
}

func ParseEventKind(v string) (EventKind, error) {
	switch v {
	case "FIXED_OUTCOME":
		return FixedOutcome, nil
	case "GRADED":
		return Graded, nil
	}
	return 0, fmt.Errorf("unknown event kind %q", v)
}

// ScoringMode é a variante de pontuação de eventos Graded, resolvida uma
// única vez a partir do evento (o legado re-derivava do tipo_juego cru a
// cada requisição).
type ScoringMode int

const (
	// ExactScore: placar exato vale 3, acerto de vencedor/empate vale 1.
	ExactScore ScoringMode = iota
	// WinnerOnly: só importa o vencedor; empate não é representável.
	WinnerOnly
	// WinnerOrTie: três resultados possíveis {casa, empate, fora}.
	WinnerOrTie
)

func (m ScoringMode) String() string {
	switch m {
	case WinnerOnly:
		return "WINNER_ONLY"
	case WinnerOrTie:
		return "WINNER_OR_TIE"
	}
	return "EXACT_SCORE"
}

func ParseScoringMode(v string) (ScoringMode, error) {
	switch v {
	case "EXACT_SCORE":
		return ExactScore, nil
	case "WINNER_ONLY":
		return WinnerOnly, nil
	case "WINNER_OR_TIE":
		return WinnerOrTie, nil
	}
	return 0, fmt.Errorf("unknown scoring mode %q", v)
}

// User identifica um apostador (ou a conta de tesouraria do sistema).
type User struct {
	ID        string
	Alias     string
	Email     string
	CreatedAt time.Time
}

// Event é a coisa apostada: uma polla (FixedOutcome) ou um evento de
// partidas (Graded).
type Event struct {
	ID         string
	Code       string // código curto visível, ex "LR15"
	Name       string
	Venue      string // hipódromo ou liga
	Kind       EventKind
	Mode       ScoringMode // relevante apenas para Graded
	PriceEntry decimal.Decimal
	State      EventState

	// Resultados das seis corridas (FixedOutcome); nil = corrida sem resultado.
	Slots [NumSlots]*int

	// Partidas ordenadas (Graded).
	Matches []*Match

	CreatedAt time.Time
}

// Match é uma partida dentro de um evento Graded.
type Match struct {
	ID      string
	EventID string
	Order   int
	Home    string
	Away    string

	// Resultado real, preenchido pelo operador; nil = sem resultado.
	Score1 *int
	Score2 *int
}

// HasResult informa se o placar real da partida já foi registrado.
func (m *Match) HasResult() bool { return m.Score1 != nil && m.Score2 != nil }

// ResultsComplete informa se o evento tem o conjunto completo de resultados
// exigido para fechar (tudo-ou-nada: não existe CLOSED parcial).
func (e *Event) ResultsComplete() bool {
	if e.Kind == FixedOutcome {
		for _, s := range e.Slots {
			if s == nil {
				return false
			}
		}
		return true
	}
	for _, m := range e.Matches {
		if !m.HasResult() {
			return false
		}
	}
	return true
}

// Entry é a aposta de um usuário em um evento; única por (usuário, evento).
type Entry struct {
	ID      string
	EventID string
	UserID  string

	// Palpites das seis corridas (FixedOutcome).
	Picks [NumSlots]int

	// Palpites por partida (Graded).
	Subs []*SubPrediction

	Cost     decimal.Decimal // negativo: valor debitado na criação
	Score    int             // derivado, mutado apenas pelo scoring
	PlacedAt time.Time       // desempate de ordenação
}

// SubPrediction é o palpite de uma aposta para uma partida específica.
type SubPrediction struct {
	ID      string
	EntryID string
	MatchID string
	Pred1   int
	Pred2   int
	Points  int // derivado, mutado apenas pelo scoring
}

// WinnerRecord é derivado sob demanda de Entries + pote; só vira linha de
// ledger quando o pagamento é efetivado.
type WinnerRecord struct {
	Entry  *Entry
	Place  string // "1er Lugar", "2do Lugar", "3er Lugar"
	Points int
	Prize  decimal.Decimal
}
