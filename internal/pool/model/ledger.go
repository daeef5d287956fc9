package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerCategory classifica uma movimentação de saldo.
type LedgerCategory string

const (
	CategoryEntryFee   LedgerCategory = "ENTRY_FEE"  // débito da aposta ("Apuesta" no legado)
	CategoryPrize      LedgerCategory = "PRIZE"      // crédito de prêmio ("Premio")
	CategoryCommission LedgerCategory = "COMMISSION" // comissão do sistema ("Comision")
	CategoryPot        LedgerCategory = "POT"        // contribuição/débito do pote ("Pote")
	CategoryCarryover  LedgerCategory = "CARRYOVER"  // acumulado de pollas ("Acumulado")
	CategoryDeposit    LedgerCategory = "DEPOSIT"    // recarga de saldo feita pelo operador
)

// LedgerEntry é um registro imutável de movimentação de saldo, append-only.
// Correções nunca alteram linhas existentes: entram como lançamentos de
// compensação. O saldo de um usuário é a soma dos amounts não conciliados.
type LedgerEntry struct {
	ID         string
	UserID     string
	EventID    string // opcional
	EntryID    string // opcional
	Amount     decimal.Decimal
	Category   LedgerCategory
	Memo       string
	Reconciled bool // "conciliado" do legado: linhas conciliadas saem do saldo
	TrxDate    time.Time
}
