package dto

type CreateUserRequest struct {
	Alias string `json:"alias"`
	Email string `json:"email"`
}

type CreateEventRequest struct {
	Code       string      `json:"code"`
	Name       string      `json:"name"`
	Venue      string      `json:"venue"`             // hipódromo ou liga
	Kind       string      `json:"kind"`              // "FIXED_OUTCOME" | "GRADED"
	Mode       string      `json:"mode,omitempty"`    // "EXACT_SCORE" | "WINNER_ONLY" | "WINNER_OR_TIE"
	PriceEntry string      `json:"price_entry"`       // decimal, ex: "2.00"
	Matches    []MatchSpec `json:"matches,omitempty"` // só para GRADED
}

type MatchSpec struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

type PlaceEntryRequest struct {
	UserID string `json:"userId"`
	// Picks: seis seleções de cavalos (FIXED_OUTCOME)
	Picks []int `json:"picks,omitempty"`
	// Predictions: um palpite por partida (GRADED)
	Predictions []MatchPrediction `json:"predictions,omitempty"`
}

type MatchPrediction struct {
	MatchID string `json:"matchId"`
	Score1  int    `json:"score1"`
	Score2  int    `json:"score2"`
}

type EnterResultsRequest struct {
	// Slots: ganhadores das seis corridas (FIXED_OUTCOME)
	Slots []int `json:"slots,omitempty"`
	// Results: placares finais por partida (GRADED)
	Results []MatchResult `json:"results,omitempty"`
}

type MatchResult struct {
	MatchID string `json:"matchId"`
	Score1  int    `json:"score1"`
	Score2  int    `json:"score2"`
}

type DepositRequest struct {
	UserID string `json:"userId"`
	Amount string `json:"amount"` // decimal, ex: "20.00"
	Memo   string `json:"memo,omitempty"`
}
