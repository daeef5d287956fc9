package payout

import (
	"github.com/shopspring/decimal"

	"github.com/elguaire/polla-settlement/internal/pool/model"
	"github.com/elguaire/polla-settlement/internal/pool/ranking"
)

// Tabelas de premiação herdadas do legado: até 49 participantes pagam-se
// duas colocações (70/30); de 50 em diante, três (60/25/15).
var (
	scheduleSmall = []decimal.Decimal{
		decimal.RequireFromString("0.70"),
		decimal.RequireFromString("0.30"),
	}
	scheduleLarge = []decimal.Decimal{
		decimal.RequireFromString("0.60"),
		decimal.RequireFromString("0.25"),
		decimal.RequireFromString("0.15"),
	}
)

const largeThreshold = 50

var placeLabels = []string{"1er Lugar", "2do Lugar", "3er Lugar"}

// Allocation é o prêmio atribuído a uma aposta em uma colocação paga.
type Allocation struct {
	Entry  *model.Entry
	Place  string
	Points int
	Prize  decimal.Decimal
}

// Schedule seleciona a tabela de percentuais pelo número de participantes.
func Schedule(participants int) []decimal.Decimal {
	if participants >= largeThreshold {
		return scheduleLarge
	}
	return scheduleSmall
}

// Allocate distribui o pote entre as apostas ranqueadas.
//
// A colocação avança por grupo de pontuação distinta: o grupo na posição i
// divide igualmente pote × percentual(i), arredondado a 2 casas. O resíduo
// de arredondamento não é redistribuído. Pote zero ou nenhuma aposta
// resultam em alocação vazia, sem erro.
func Allocate(rankedEntries []*model.Entry, totalPot decimal.Decimal) []Allocation {
	if len(rankedEntries) == 0 || totalPot.Sign() <= 0 {
		return nil
	}

	pcts := Schedule(len(rankedEntries))
	groups := ranking.Groups(rankedEntries)

	var allocs []Allocation
	for i, group := range groups {
		if i >= len(pcts) {
			break
		}
		share := totalPot.Mul(pcts[i]).
			Div(decimal.NewFromInt(int64(len(group)))).
			Round(2)
		for _, en := range group {
			allocs = append(allocs, Allocation{
				Entry:  en,
				Place:  placeLabels[i],
				Points: en.Score,
				Prize:  share,
			})
		}
	}
	return allocs
}

// Winners converte a alocação no formato de consulta (lista de ganhadores).
func Winners(allocs []Allocation) []*model.WinnerRecord {
	out := make([]*model.WinnerRecord, 0, len(allocs))
	for _, a := range allocs {
		out = append(out, &model.WinnerRecord{
			Entry:  a.Entry,
			Place:  a.Place,
			Points: a.Points,
			Prize:  a.Prize,
		})
	}
	return out
}
