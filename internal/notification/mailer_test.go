package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/elguaire/polla-settlement/pkg/contracts/events"
)

func winnerEvent() events.WinnerNotified {
	return events.WinnerNotified{
		EventID:   "ev1",
		EventCode: "LR15",
		EventName: "Polla La Rinconada",
		UserID:    "u1",
		Place:     "1er Lugar",
		Points:    6,
		Amount:    "35.00",
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Ganaste 1er Lugar - Polla La Rinconada!", Subject(winnerEvent()))
}

func TestBody(t *testing.T) {
	body := Body(winnerEvent())
	assert.Contains(t, body, "Felicitaciones")
	assert.Contains(t, body, "1er Lugar en Polla La Rinconada (LR15)")
	assert.Contains(t, body, "USD $35.00")
}

func TestLogSender(t *testing.T) {
	s := NewLogSender(zap.NewNop())
	assert.NoError(t, s.Send(context.Background(), winnerEvent()))
}
