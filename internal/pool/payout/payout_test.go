package payout

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elguaire/polla-settlement/internal/pool/model"
	"github.com/elguaire/polla-settlement/internal/pool/ranking"
)

func entry(id string, score int, offset time.Duration) *model.Entry {
	return &model.Entry{
		ID:       id,
		Score:    score,
		PlacedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Add(offset),
	}
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSchedule(t *testing.T) {
	assert.Len(t, Schedule(1), 2)
	assert.Len(t, Schedule(49), 2)
	assert.Len(t, Schedule(50), 3)
	assert.Len(t, Schedule(500), 3)
}

func TestAllocateTwoWayTieForFirst(t *testing.T) {
	// Dois empatados em 10 dividem os 70% do 1º lugar; o 8 leva os 30%
	// do 2º. A colocação avança por grupo de pontuação distinta.
	ranked := ranking.Rank([]*model.Entry{
		entry("a", 10, 0),
		entry("b", 10, time.Minute),
		entry("c", 8, 0),
	})

	allocs := Allocate(ranked, money("100.00"))
	require.Len(t, allocs, 3)

	assert.Equal(t, "1er Lugar", allocs[0].Place)
	assert.True(t, allocs[0].Prize.Equal(money("35.00")), "got %s", allocs[0].Prize)
	assert.Equal(t, "1er Lugar", allocs[1].Place)
	assert.True(t, allocs[1].Prize.Equal(money("35.00")), "got %s", allocs[1].Prize)

	assert.Equal(t, "2do Lugar", allocs[2].Place)
	assert.Equal(t, "c", allocs[2].Entry.ID)
	assert.True(t, allocs[2].Prize.Equal(money("30.00")), "got %s", allocs[2].Prize)
}

func TestAllocateLargeSchedule(t *testing.T) {
	// 50 participantes: três colocações, 60/25/15.
	entries := make([]*model.Entry, 0, 50)
	entries = append(entries,
		entry("first", 12, 0),
		entry("second", 11, 0),
		entry("third", 10, 0),
	)
	for i := 0; i < 47; i++ {
		entries = append(entries, entry(fmt.Sprintf("rest%d", i), 3, time.Duration(i)*time.Second))
	}

	allocs := Allocate(ranking.Rank(entries), money("100.00"))
	require.Len(t, allocs, 3)

	assert.True(t, allocs[0].Prize.Equal(money("60.00")))
	assert.True(t, allocs[1].Prize.Equal(money("25.00")))
	assert.True(t, allocs[2].Prize.Equal(money("15.00")))
}

func TestAllocateTieAcrossPlaceBoundary(t *testing.T) {
	// Premissa assumida para empate atravessando colocação: cada grupo
	// empatado divide apenas o percentual da própria colocação, nunca um
	// pool de colocações. O comportamento do sistema legado era ambíguo
	// aqui; esta é a regra escolhida.
	entries := make([]*model.Entry, 0, 50)
	entries = append(entries,
		entry("first", 12, 0),
		entry("tied1", 11, 0),
		entry("tied2", 11, time.Minute),
		entry("third", 9, 0),
	)
	for i := 0; i < 46; i++ {
		entries = append(entries, entry(fmt.Sprintf("rest%d", i), 3, time.Duration(i)*time.Second))
	}

	allocs := Allocate(ranking.Rank(entries), money("100.00"))
	require.Len(t, allocs, 4)

	// 1º inteiro; empatados dividem só os 25% do 2º; o próximo grupo de
	// pontuação distinta leva os 15% do 3º.
	assert.True(t, allocs[0].Prize.Equal(money("60.00")))
	assert.Equal(t, "2do Lugar", allocs[1].Place)
	assert.True(t, allocs[1].Prize.Equal(money("12.50")))
	assert.True(t, allocs[2].Prize.Equal(money("12.50")))
	assert.Equal(t, "3er Lugar", allocs[3].Place)
	assert.Equal(t, "third", allocs[3].Entry.ID)
	assert.True(t, allocs[3].Prize.Equal(money("15.00")))
}

func TestAllocateRoundingResidue(t *testing.T) {
	// Empate triplo no 1º: 70.00/3 = 23.33 cada; o resíduo de $0.01 não é
	// redistribuído. Limite aceito: < $0.01 por colocação paga.
	ranked := ranking.Rank([]*model.Entry{
		entry("a", 9, 0),
		entry("b", 9, time.Minute),
		entry("c", 9, 2*time.Minute),
		entry("d", 1, 0),
	})

	pot := money("100.00")
	allocs := Allocate(ranked, pot)
	require.Len(t, allocs, 4)

	distributed := decimal.Zero
	for _, a := range allocs {
		distributed = distributed.Add(a.Prize)
	}
	residue := pot.Sub(distributed)
	assert.True(t, residue.GreaterThanOrEqual(decimal.Zero))
	assert.True(t, residue.LessThan(money("0.02")), "residue %s over bound", residue) // 2 colocações pagas
}

func TestAllocateEdgeCases(t *testing.T) {
	t.Run("no entries", func(t *testing.T) {
		assert.Empty(t, Allocate(nil, money("100.00")))
	})

	t.Run("zero pot", func(t *testing.T) {
		assert.Empty(t, Allocate([]*model.Entry{entry("a", 5, 0)}, decimal.Zero))
	})

	t.Run("single participant takes only first place", func(t *testing.T) {
		allocs := Allocate([]*model.Entry{entry("a", 5, 0)}, money("100.00"))
		require.Len(t, allocs, 1)
		assert.True(t, allocs[0].Prize.Equal(money("70.00")))
	})
}

func TestWinners(t *testing.T) {
	allocs := Allocate(ranking.Rank([]*model.Entry{
		entry("a", 4, 0),
		entry("b", 2, 0),
	}), money("10.00"))

	recs := Winners(allocs)
	require.Len(t, recs, 2)
	assert.Equal(t, "1er Lugar", recs[0].Place)
	assert.Equal(t, 4, recs[0].Points)
	assert.True(t, recs[0].Prize.Equal(money("7.00")))
}
