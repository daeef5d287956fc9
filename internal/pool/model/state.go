package model

import "fmt"

// EventState é o ciclo de vida de um evento: OPEN -> CLOSED -> PAID.
// PAID é terminal. O legado usava comparação de string ("Running"/"Close"/"Paid");
// aqui as transições são verificadas por tipo.
type EventState int

const (
	StateOpen EventState = iota
	StateClosed
	StatePaid
)

func (s EventState) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateClosed:
		return "CLOSED"
	case StatePaid:
		return "PAID"
	}
	return "UNKNOWN"
}

func ParseEventState(v string) (EventState, error) {
	switch v {
	case "OPEN":
		return StateOpen, nil
	case "CLOSED":
		return StateClosed, nil
	case "PAID":
		return StatePaid, nil
	}
	return 0, fmt.Errorf("unknown event state %q", v)
}

// CanTransition informa se a transição s -> to é válida.
// Transições são unidirecionais, sem saltos.
func (s EventState) CanTransition(to EventState) bool {
	switch s {
	case StateOpen:
		return to == StateClosed
	case StateClosed:
		return to == StatePaid
	}
	return false
}
