package engine

import "errors"

// Rejeições de regra de negócio são recuperáveis pelo chamador (corrigir a
// entrada e tentar de novo); falhas de persistência sobem embrulhadas.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDuplicateEntry    = errors.New("duplicate entry for user and event")
	ErrInvalidState      = errors.New("operation not allowed in current event state")
	ErrIncompleteResults = errors.New("incomplete result set")
	ErrInvalidPrediction = errors.New("invalid prediction")
	ErrEventLocked       = errors.New("event settlement in progress")
	ErrAlreadySettled    = errors.New("event already settled")
	ErrInvalidEvent      = errors.New("invalid event definition")
)
