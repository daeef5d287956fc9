package scoring

import "github.com/elguaire/polla-settlement/internal/pool/model"

// Scorer calcula a pontuação de uma aposta a partir dos resultados já
// registrados no evento. Score é determinístico e re-executável: os mesmos
// resultados produzem sempre a mesma pontuação.
//
// Este é o único componente autorizado a mutar campos de pontuação
// (Entry.Score e SubPrediction.Points); a persistência fica com o chamador.
type Scorer interface {
	Score(ev *model.Event, en *model.Entry) int
}

// ForEvent resolve o scorer adequado para a variante do evento.
func ForEvent(ev *model.Event) Scorer {
	if ev.Kind == model.Graded {
		return Graded{}
	}
	return Fixed{}
}

// Fixed pontua apostas de polla: 1 ponto por corrida em que o palpite bate
// com o ganhador registrado. Corridas sem resultado são puladas (não contam
// nem penalizam). Total no intervalo 0..6.
type Fixed struct{}

func (Fixed) Score(ev *model.Event, en *model.Entry) int {
	points := 0
	for i, winner := range ev.Slots {
		if winner == nil {
			continue
		}
		if en.Picks[i] == *winner {
			points++
		}
	}
	en.Score = points
	return points
}

// Graded pontua apostas de evento partida a partida, conforme o ScoringMode
// do evento. Partidas sem resultado são puladas.
type Graded struct{}

func (Graded) Score(ev *model.Event, en *model.Entry) int {
	byMatch := make(map[string]*model.Match, len(ev.Matches))
	for _, m := range ev.Matches {
		byMatch[m.ID] = m
	}

	total := 0
	for _, sub := range en.Subs {
		m := byMatch[sub.MatchID]
		if m == nil || !m.HasResult() {
			sub.Points = 0
			continue
		}
		sub.Points = gradeMatch(ev.Mode, sub.Pred1, sub.Pred2, *m.Score1, *m.Score2)
		total += sub.Points
	}
	en.Score = total
	return total
}

func gradeMatch(mode model.ScoringMode, p1, p2, a1, a2 int) int {
	switch mode {
	case model.WinnerOnly:
		// Só o vencedor importa; empate classifica como visitante (regra
		// herdada do tipo_juego=3 do legado, que usava um teste binário).
		if winnerOnlyPick(p1, p2) == winnerOnlyPick(a1, a2) {
			return 1
		}
		return 0

	case model.WinnerOrTie:
		if outcome(p1, p2) == outcome(a1, a2) {
			return 1
		}
		return 0

	default: // ExactScore
		if p1 == a1 && p2 == a2 {
			return 3
		}
		if outcome(p1, p2) == outcome(a1, a2) {
			return 1
		}
		return 0
	}
}

// outcome classifica um placar em {casa, empate, fora} pelo sinal de a-b.
func outcome(a, b int) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return 2
	}
	return 0
}

func winnerOnlyPick(a, b int) int {
	if a > b {
		return 1
	}
	return 2
}
