package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elguaire/polla-settlement/internal/pool/model"
)

func intp(v int) *int { return &v }

func fixedEvent(slots ...*int) *model.Event {
	ev := &model.Event{Kind: model.FixedOutcome}
	copy(ev.Slots[:], slots)
	return ev
}

func TestFixedScoring(t *testing.T) {
	t.Run("one point per matching race", func(t *testing.T) {
		ev := fixedEvent(intp(7), intp(3), intp(12), intp(1), intp(9), intp(4))
		en := &model.Entry{Picks: [6]int{7, 3, 5, 1, 2, 4}}

		assert.Equal(t, 4, Fixed{}.Score(ev, en))
		assert.Equal(t, 4, en.Score)
	})

	t.Run("races without result are skipped", func(t *testing.T) {
		// só duas corridas resolvidas: palpite certo na primeira, errado na segunda
		ev := fixedEvent(intp(7), intp(3), nil, nil, nil, nil)
		en := &model.Entry{Picks: [6]int{7, 5, 1, 1, 1, 1}}

		assert.Equal(t, 1, Fixed{}.Score(ev, en))
	})

	t.Run("perfect card", func(t *testing.T) {
		ev := fixedEvent(intp(1), intp(2), intp(3), intp(4), intp(5), intp(6))
		en := &model.Entry{Picks: [6]int{1, 2, 3, 4, 5, 6}}

		assert.Equal(t, 6, Fixed{}.Score(ev, en))
	})

	t.Run("idempotent", func(t *testing.T) {
		ev := fixedEvent(intp(7), intp(3), intp(12), nil, nil, nil)
		en := &model.Entry{Picks: [6]int{7, 3, 12, 1, 1, 1}}

		first := Fixed{}.Score(ev, en)
		second := Fixed{}.Score(ev, en)
		assert.Equal(t, first, second)
		assert.Equal(t, 3, en.Score)
	})
}

func gradedEvent(mode model.ScoringMode, s1, s2 *int) (*model.Event, *model.Entry) {
	ev := &model.Event{
		Kind:    model.Graded,
		Mode:    mode,
		Matches: []*model.Match{{ID: "m1", Score1: s1, Score2: s2}},
	}
	en := &model.Entry{Subs: []*model.SubPrediction{{ID: "sp1", MatchID: "m1"}}}
	return ev, en
}

func TestGradedExactScore(t *testing.T) {
	cases := []struct {
		name           string
		p1, p2, a1, a2 int
		want           int
	}{
		{"exact score", 2, 1, 2, 1, 3},
		{"right winner wrong score", 3, 0, 2, 1, 1},
		{"right tie wrong score", 1, 1, 2, 2, 1},
		{"wrong outcome", 0, 2, 2, 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, en := gradedEvent(model.ExactScore, &tc.a1, &tc.a2)
			en.Subs[0].Pred1, en.Subs[0].Pred2 = tc.p1, tc.p2

			assert.Equal(t, tc.want, Graded{}.Score(ev, en))
			assert.Equal(t, tc.want, en.Subs[0].Points)
		})
	}
}

func TestGradedWinnerOnly(t *testing.T) {
	t.Run("right winner", func(t *testing.T) {
		a1, a2 := 21, 14
		ev, en := gradedEvent(model.WinnerOnly, &a1, &a2)
		en.Subs[0].Pred1, en.Subs[0].Pred2 = 3, 0

		assert.Equal(t, 1, Graded{}.Score(ev, en))
	})

	t.Run("wrong winner", func(t *testing.T) {
		a1, a2 := 14, 21
		ev, en := gradedEvent(model.WinnerOnly, &a1, &a2)
		en.Subs[0].Pred1, en.Subs[0].Pred2 = 3, 0

		assert.Equal(t, 0, Graded{}.Score(ev, en))
	})
}

func TestGradedWinnerOrTie(t *testing.T) {
	t.Run("both classify as tie", func(t *testing.T) {
		a1, a2 := 2, 2
		ev, en := gradedEvent(model.WinnerOrTie, &a1, &a2)
		en.Subs[0].Pred1, en.Subs[0].Pred2 = 1, 1

		assert.Equal(t, 1, Graded{}.Score(ev, en))
	})

	t.Run("home pick against actual tie", func(t *testing.T) {
		a1, a2 := 2, 2
		ev, en := gradedEvent(model.WinnerOrTie, &a1, &a2)
		en.Subs[0].Pred1, en.Subs[0].Pred2 = 3, 1

		assert.Equal(t, 0, Graded{}.Score(ev, en))
	})

	t.Run("away win matched", func(t *testing.T) {
		a1, a2 := 0, 1
		ev, en := gradedEvent(model.WinnerOrTie, &a1, &a2)
		en.Subs[0].Pred1, en.Subs[0].Pred2 = 1, 4

		assert.Equal(t, 1, Graded{}.Score(ev, en))
	})
}

func TestGradedSkipsMatchesWithoutResult(t *testing.T) {
	one := 1
	ev := &model.Event{
		Kind: model.Graded,
		Mode: model.ExactScore,
		Matches: []*model.Match{
			{ID: "m1", Score1: &one, Score2: &one},
			{ID: "m2"}, // sem resultado
		},
	}
	en := &model.Entry{Subs: []*model.SubPrediction{
		{ID: "sp1", MatchID: "m1", Pred1: 1, Pred2: 1},
		{ID: "sp2", MatchID: "m2", Pred1: 9, Pred2: 9},
	}}

	assert.Equal(t, 3, Graded{}.Score(ev, en))
	assert.Equal(t, 3, en.Subs[0].Points)
	assert.Equal(t, 0, en.Subs[1].Points)

	// repontuar sem resultados novos não muda nada
	assert.Equal(t, 3, Graded{}.Score(ev, en))
}

func TestForEvent(t *testing.T) {
	assert.IsType(t, Fixed{}, ForEvent(&model.Event{Kind: model.FixedOutcome}))
	assert.IsType(t, Graded{}, ForEvent(&model.Event{Kind: model.Graded}))
}
