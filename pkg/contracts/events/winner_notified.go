package events

import "time"

// Evento publicado pelo pool-service após a liquidação de um evento.
// O notification-worker consome e envia o e-mail de parabéns.
type WinnerNotified struct {
	EventID   string    `json:"event_id"`
	EventCode string    `json:"event_code"`
	EventName string    `json:"event_name"`
	UserID    string    `json:"user_id"`
	Place     string    `json:"place"`  // "1er Lugar" | "2do Lugar" | "3er Lugar"
	Points    int       `json:"points"` // pontuação final da aposta premiada
	Amount    string    `json:"amount"` // valor do prêmio, decimal serializado
	Ts        time.Time `json:"ts"`
}
