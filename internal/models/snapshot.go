package models

// WeatherSnapshot is the normalized result of one weather fetch. Synthetic
// fallback snapshots populate every field so that downstream rules never need
// to distinguish them from real data; Fallback only marks provenance.
type WeatherSnapshot struct {
	City        string  `json:"city"`
	TempC       float64 `json:"temp_c"`
	TempF       float64 `json:"temp_f"`
	Condition   string  `json:"condition"`
	Description string  `json:"description"`
	ObservedAt  int64   `json:"observed_at"`
	Fallback    bool    `json:"fallback,omitempty"`
}

// SportsEvent is a single game result. Scores stay strings because the
// upstream API reports them as strings that may be absent or non-numeric for
// in-progress games.
type SportsEvent struct {
	Name      string `json:"name"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore string `json:"home_score"`
	AwayScore string `json:"away_score"`
	Status    string `json:"status"`
	Date      string `json:"date"`
}

// SportsSnapshot is the normalized result of one sports fetch.
type SportsSnapshot struct {
	Events   []SportsEvent `json:"events"`
	Fallback bool          `json:"fallback,omitempty"`
}
