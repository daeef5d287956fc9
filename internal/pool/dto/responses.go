package dto

import "time"

type UserResponse struct {
	UserID string `json:"userId"`
	Alias  string `json:"alias"`
	Email  string `json:"email"`
}

type EventResponse struct {
	EventID    string          `json:"eventId"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Venue      string          `json:"venue"`
	Kind       string          `json:"kind"`
	Mode       string          `json:"mode,omitempty"`
	PriceEntry string          `json:"price_entry"`
	State      string          `json:"state"`
	Slots      []int           `json:"slots,omitempty"`
	Matches    []MatchResponse `json:"matches,omitempty"`
}

type MatchResponse struct {
	MatchID string `json:"matchId"`
	Order   int    `json:"order"`
	Home    string `json:"home"`
	Away    string `json:"away"`
	Score1  *int   `json:"score1,omitempty"`
	Score2  *int   `json:"score2,omitempty"`
}

type EntryResponse struct {
	EntryID string `json:"entryId"`
	EventID string `json:"eventId"`
	UserID  string `json:"userId"`
	Cost    string `json:"cost"`
	Score   int    `json:"score"`
}

type PayResponse struct {
	EventID string `json:"eventId"`
	Paid    bool   `json:"paid"` // false: evento já estava liquidado
}

type WinnerResponse struct {
	UserID string `json:"userId"`
	Place  string `json:"place"`
	Points int    `json:"points"`
	Prize  string `json:"prize"`
}

type BalanceResponse struct {
	UserID  string `json:"userId"`
	Balance string `json:"balance"`
}

type TransactionResponse struct {
	ID       string    `json:"id"`
	EventID  string    `json:"eventId,omitempty"`
	Amount   string    `json:"amount"`
	Category string    `json:"category"`
	Memo     string    `json:"memo"`
	TrxDate  time.Time `json:"trx_date"`
}
