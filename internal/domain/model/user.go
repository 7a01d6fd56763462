package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           string    `json:"role"`
	Score          int       `json:"score"`
	Rank           int       `json:"rank"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	SolvedChallenges     []SolvedChallenge   `json:"solved_challenges,omitempty"`
	InProgressChallenges []ChallengeProgress `json:"in_progress_challenges,omitempty"`
}

// SolvedChallenge records the score credited for a challenge. A challenge
// appears in at most one of the solved or in-progress sets per user.
type SolvedChallenge struct {
	ChallengeID string    `json:"challenge_id"`
	SolvedAt    time.Time `json:"solved_at"`
	Score       int       `json:"score"`

	ChallengeTitle      *string              `json:"challenge_title,omitempty"`      // For display
	ChallengeCategory   *ChallengeCategory   `json:"challenge_category,omitempty"`   // For display
	ChallengeDifficulty *ChallengeDifficulty `json:"challenge_difficulty,omitempty"` // For display
	ChallengePoints     *int                 `json:"challenge_points,omitempty"`     // For display
}

type ChallengeProgress struct {
	ChallengeID string    `json:"challenge_id"`
	StartedAt   time.Time `json:"started_at"`
	LastAttempt time.Time `json:"last_attempt"`

	ChallengeTitle      *string              `json:"challenge_title,omitempty"`
	ChallengeCategory   *ChallengeCategory   `json:"challenge_category,omitempty"`
	ChallengeDifficulty *ChallengeDifficulty `json:"challenge_difficulty,omitempty"`
	ChallengePoints     *int                 `json:"challenge_points,omitempty"`
}
