package model

type RankingEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	SolvedCount int    `json:"solved_count"`
}
