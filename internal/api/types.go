package api

// EndCursor marks the last page of a paginated listing.
const EndCursor = "LTE="

// MarketsPage from GET /markets
type MarketsPage struct {
	Data       []Market `json:"data"`
	NextCursor string   `json:"next_cursor"`
	Limit      int      `json:"limit"`
	Count      int      `json:"count"`
}

// Market represents a market from the catalog.
type Market struct {
	ConditionID string  `json:"condition_id"`
	QuestionID  string  `json:"question_id"`
	Question    string  `json:"question"`
	MarketSlug  string  `json:"market_slug"`
	Active      bool    `json:"active"`
	Closed      bool    `json:"closed"`
	Archived    bool    `json:"archived"`
	EndDateISO  string  `json:"end_date_iso"`
	Tokens      []Token `json:"tokens"`
}

// Token is one tradable outcome of a market.
type Token struct {
	TokenID string  `json:"token_id"`
	Outcome string  `json:"outcome"`
	Price   float64 `json:"price"`
	Winner  bool    `json:"winner"`
}

// lastPage reports whether cursor ends pagination.
func lastPage(cursor string) bool {
	return cursor == "" || cursor == EndCursor
}
