package model

import (
	"time"
)

type ChallengeCategory string
type ChallengeDifficulty string
type ChallengeStatus string

const (
	CategoryDSA     ChallengeCategory = "DSA"
	CategoryQuiz    ChallengeCategory = "Quiz"
	CategoryProject ChallengeCategory = "Project"

	DifficultyEasy   ChallengeDifficulty = "Easy"
	DifficultyMedium ChallengeDifficulty = "Medium"
	DifficultyHard   ChallengeDifficulty = "Hard"
	DifficultyExpert ChallengeDifficulty = "Expert"

	StatusActive   ChallengeStatus = "active"
	StatusDraft    ChallengeStatus = "draft"
	StatusArchived ChallengeStatus = "archived"
)

func (c ChallengeCategory) Valid() bool {
	switch c {
	case CategoryDSA, CategoryQuiz, CategoryProject:
		return true
	}
	return false
}

func (d ChallengeDifficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return true
	}
	return false
}

func (s ChallengeStatus) Valid() bool {
	switch s {
	case StatusActive, StatusDraft, StatusArchived:
		return true
	}
	return false
}

type Challenge struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Slug        string              `json:"slug"`
	Description string              `json:"description"`
	Category    ChallengeCategory   `json:"category"`
	Difficulty  ChallengeDifficulty `json:"difficulty"`
	Points      int                 `json:"points"`
	Status      ChallengeStatus     `json:"status"`
	CreatedByID *string             `json:"created_by_id,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	// Category-specific payload. Exactly one group is populated,
	// keyed by Category.
	Examples     []Example  `json:"examples,omitempty"`     // DSA
	Constraints  []string   `json:"constraints,omitempty"`  // DSA
	TestCases    []TestCase `json:"test_cases,omitempty"`   // DSA (hidden cases stripped for non-admins)
	Questions    []Question `json:"questions,omitempty"`    // Quiz (answers stripped for non-admins)
	Requirements []string   `json:"requirements,omitempty"` // Project
}

type Example struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

type TestCase struct {
	Input    string `json:"input"`
	Output   string `json:"output"`
	IsHidden bool   `json:"is_hidden"`
}

type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer,omitempty"`
}
