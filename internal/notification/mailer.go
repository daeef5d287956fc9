package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/elguaire/polla-settlement/pkg/contracts/events"
)

// Sender entrega a notificação de ganhador. Best-effort em todo o pipeline:
// falha de envio é logada e engolida, nunca desfaz a liquidação.
type Sender interface {
	Send(ctx context.Context, e events.WinnerNotified) error
}

// Subject monta o assunto do e-mail de parabéns.
func Subject(e events.WinnerNotified) string {
	return fmt.Sprintf("Ganaste %s - %s!", e.Place, e.EventName)
}

// Body monta o corpo do e-mail de parabéns, no tom do sistema legado.
func Body(e events.WinnerNotified) string {
	return fmt.Sprintf(
		"Felicitaciones:\n\n"+
			"Has ganado %s en %s (%s).\n"+
			"Se ha acreditado USD $%s a tu cuenta.\n\n"+
			"Sigue jugando, Suerte!\n",
		e.Place, e.EventName, e.EventCode, e.Amount,
	)
}

// LogSender escreve a notificação no log. Usado em ambientes sem SMTP e
// como destino padrão do worker.
type LogSender struct {
	Log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender { return &LogSender{Log: log} }

func (s *LogSender) Send(_ context.Context, e events.WinnerNotified) error {
	s.Log.Info("winner mail",
		zap.String("userId", e.UserID),
		zap.String("subject", Subject(e)),
		zap.String("body", Body(e)),
	)
	return nil
}
