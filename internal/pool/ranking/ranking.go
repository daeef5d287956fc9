package ranking

import (
	"sort"

	"github.com/elguaire/polla-settlement/internal/pool/model"
)

// Rank ordena apostas por pontuação decrescente; empates em pontos são
// desfeitos pelo horário da aposta (quem apostou antes fica acima). Esse
// desempate vale só para exibição e rótulo de posição: para divisão de
// prêmio o que conta é o grupo de mesma pontuação (ver Groups).
//
// Não modifica o slice de entrada; retorna uma cópia ordenada.
func Rank(entries []*model.Entry) []*model.Entry {
	ranked := make([]*model.Entry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].PlacedAt.Before(ranked[j].PlacedAt)
	})

	return ranked
}

// Groups agrupa apostas já ordenadas por pontuação distinta, na ordem do
// ranking. Cada grupo ocupa exatamente uma colocação paga; o timestamp
// nunca separa apostas empatadas para fins de prêmio.
func Groups(ranked []*model.Entry) [][]*model.Entry {
	var groups [][]*model.Entry
	for _, en := range ranked {
		n := len(groups)
		if n > 0 && groups[n-1][0].Score == en.Score {
			groups[n-1] = append(groups[n-1], en)
			continue
		}
		groups = append(groups, []*model.Entry{en})
	}
	return groups
}
