package model

import (
	"encoding/json"
	"time"
)

const (
	JobStatusQueued         = "Queued"
	JobStatusProcessing     = "Processing"     // Worker picked it up, trying to get lock
	JobStatusSentToExecutor = "SentToExecutor" // Awaiting executor webhook
	JobStatusCompleted      = "Completed"      // Webhook received
	JobStatusFailed         = "Failed"         // Worker failed before sending or unrecoverable error
)

// ExecutionJob tracks one code-validation run against a DSA challenge's
// test cases. The run itself happens in an external executor; results
// arrive via webhook.
type ExecutionJob struct {
	ID          string          `json:"id"`
	ChallengeID string          `json:"challenge_id"`
	UserID      string          `json:"user_id"`
	Status      string          `json:"status"`
	Payload     json.RawMessage `json:"-"` // Internal use
	Result      json.RawMessage `json:"-"`
	Attempts    int             `json:"attempts"`
	LastError   *string         `json:"last_error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CodeValidationPayload is stored in ExecutionJob.Payload.
type CodeValidationPayload struct {
	ChallengeID string `json:"challenge_id"`
	UserID      string `json:"user_id"`
	Language    string `json:"language"`
	Code        string `json:"code"`
}

// TestCaseResult is one entry of ExecutionJob.Result, as reported back by
// the executor.
type TestCaseResult struct {
	Input        string `json:"input"`
	Expected     string `json:"expected"`
	ActualOutput string `json:"actual_output"`
	Passed       bool   `json:"passed"`
	IsHidden     bool   `json:"is_hidden"`
}

// ValidationReport is the client-facing view of a completed job.
type ValidationReport struct {
	JobID     string           `json:"job_id"`
	Status    string           `json:"status"`
	AllPassed bool             `json:"all_passed"`
	Results   []TestCaseResult `json:"results,omitempty"`
	Message   string           `json:"message,omitempty"`
}
