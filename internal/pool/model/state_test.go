package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventStateTransitions(t *testing.T) {
	t.Run("forward only", func(t *testing.T) {
		assert.True(t, StateOpen.CanTransition(StateClosed))
		assert.True(t, StateClosed.CanTransition(StatePaid))
	})

	t.Run("no skips or reversals", func(t *testing.T) {
		assert.False(t, StateOpen.CanTransition(StatePaid))
		assert.False(t, StateClosed.CanTransition(StateOpen))
		assert.False(t, StatePaid.CanTransition(StateOpen))
		assert.False(t, StatePaid.CanTransition(StateClosed))
	})

	t.Run("paid is terminal", func(t *testing.T) {
		for _, to := range []EventState{StateOpen, StateClosed, StatePaid} {
			assert.False(t, StatePaid.CanTransition(to))
		}
	})
}

func TestParseEventState(t *testing.T) {
	for _, s := range []EventState{StateOpen, StateClosed, StatePaid} {
		parsed, err := ParseEventState(s.String())
		assert.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseEventState("Running") // formato string do legado não é aceito
	assert.Error(t, err)
}

func TestResultsComplete(t *testing.T) {
	t.Run("fixed outcome", func(t *testing.T) {
		ev := &Event{Kind: FixedOutcome}
		assert.False(t, ev.ResultsComplete())

		for i := 0; i < NumSlots; i++ {
			w := i + 1
			ev.Slots[i] = &w
		}
		assert.True(t, ev.ResultsComplete())

		ev.Slots[3] = nil
		assert.False(t, ev.ResultsComplete())
	})

	t.Run("graded", func(t *testing.T) {
		one, two := 1, 2
		ev := &Event{Kind: Graded, Matches: []*Match{
			{ID: "m1", Score1: &one, Score2: &two},
			{ID: "m2"},
		}}
		assert.False(t, ev.ResultsComplete())

		ev.Matches[1].Score1, ev.Matches[1].Score2 = &one, &one
		assert.True(t, ev.ResultsComplete())
	})
}
