package model

import "time"

type SubmissionType string
type SubmissionStatus string

const (
	SubmissionTypeCode   SubmissionType = "code"
	SubmissionTypeGithub SubmissionType = "github"
	SubmissionTypeQuiz   SubmissionType = "quiz"

	SubmissionPending  SubmissionStatus = "pending"
	SubmissionAccepted SubmissionStatus = "accepted"
	SubmissionRejected SubmissionStatus = "rejected"
)

func (t SubmissionType) Valid() bool {
	switch t {
	case SubmissionTypeCode, SubmissionTypeGithub, SubmissionTypeQuiz:
		return true
	}
	return false
}

type Submission struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	ChallengeID string           `json:"challenge_id"`
	Type        SubmissionType   `json:"submission_type"`
	Status      SubmissionStatus `json:"status"`
	Score       int              `json:"score"`
	Feedback    *string          `json:"feedback,omitempty"`
	SubmittedAt time.Time        `json:"submitted_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Type-specific payload, keyed by Type.
	Code       *string  `json:"code,omitempty"`        // code
	Language   *string  `json:"language,omitempty"`    // code
	GithubLink *string  `json:"github_link,omitempty"` // github
	Notes      *string  `json:"notes,omitempty"`       // github
	Answers    []string `json:"answers,omitempty"`     // quiz

	UserName          *string            `json:"user_name,omitempty"`          // For display
	UserEmail         *string            `json:"user_email,omitempty"`         // For display
	ChallengeTitle    *string            `json:"challenge_title,omitempty"`    // For display
	ChallengeCategory *ChallengeCategory `json:"challenge_category,omitempty"` // For display
}
