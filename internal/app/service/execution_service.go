package service

import (
	"context"
	"database/sql"
	"encoding/json"

	"challengehub/internal/common"
	"challengehub/internal/domain/model"
	"challengehub/internal/domain/repository"
	"challengehub/internal/platform/config"
	"challengehub/internal/platform/logging"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ExecutionService owns the code-validation pipeline: it enqueues jobs for
// the worker and records results reported back by the external executor.
type ExecutionService struct {
	jobRepo       repository.ExecutionJobRepository
	challengeRepo repository.ChallengeRepository
	rdb           *redis.Client
	db            *sql.DB
}

func NewExecutionService(jobRepo repository.ExecutionJobRepository, challengeRepo repository.ChallengeRepository, rdb *redis.Client, db *sql.DB) *ExecutionService {
	return &ExecutionService{jobRepo: jobRepo, challengeRepo: challengeRepo, rdb: rdb, db: db}
}

// EnqueueCodeValidation creates a job record and pushes its ID to Redis.
func (s *ExecutionService) EnqueueCodeValidation(ctx context.Context, userID, challengeID, language, code string) (*model.ExecutionJob, error) {
	if code == "" || language == "" {
		return nil, common.Errorf("code and language are required: %w", common.ErrValidation)
	}

	challenge, err := s.challengeRepo.FindByID(ctx, challengeID)
	if err != nil {
		return nil, common.Errorf("challenge not found: %w", err)
	}
	if challenge.Category != model.CategoryDSA {
		return nil, common.Errorf("only DSA challenges support code validation: %w", common.ErrValidation)
	}

	payloadBytes, err := json.Marshal(model.CodeValidationPayload{
		ChallengeID: challengeID,
		UserID:      userID,
		Language:    language,
		Code:        code,
	})
	if err != nil {
		return nil, common.Errorf("failed to marshal validation payload: %w", err)
	}

	job := &model.ExecutionJob{
		ID:          uuid.NewString(),
		ChallengeID: challengeID,
		UserID:      userID,
		Status:      model.JobStatusQueued,
		Payload:     payloadBytes,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.jobRepo.CreateJob(ctx, tx, job); err != nil {
		return nil, common.Errorf("failed to create validation job: %w", err)
	}

	// If the DB commit succeeds but this push fails the transaction rolls
	// back, so no orphaned job row is left behind.
	if err := s.rdb.LPush(ctx, config.AppConfig.ValidationQueueName, job.ID).Err(); err != nil {
		return nil, common.Errorf("failed to push job to Redis queue: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	logging.L.Info("Validation job enqueued",
		zap.String("job_id", job.ID),
		zap.String("challenge_id", challengeID))
	return job, nil
}

// ExecutionResultPayload is the webhook body posted by the external executor.
type ExecutionResultPayload struct {
	JobID     string                 `json:"job_id"`
	AllPassed bool                   `json:"all_passed"`
	Results   []model.TestCaseResult `json:"results"`
	Error     *string                `json:"error,omitempty"`
}

type storedResult struct {
	AllPassed bool                   `json:"all_passed"`
	Results   []model.TestCaseResult `json:"results"`
}

func (s *ExecutionService) HandleExecutionResult(ctx context.Context, payload ExecutionResultPayload) error {
	job, err := s.jobRepo.GetJobByID(ctx, payload.JobID)
	if err != nil {
		return common.Errorf("job %s not found: %w", payload.JobID, err)
	}
	if job.Status == model.JobStatusCompleted || job.Status == model.JobStatusFailed {
		logging.L.Warn("Job already processed, ignoring webhook",
			zap.String("job_id", job.ID), zap.String("status", job.Status))
		return nil // Idempotency
	}

	if payload.Error != nil {
		return s.jobRepo.UpdateJobStatus(ctx, nil, job.ID, model.JobStatusFailed, payload.Error)
	}

	resultBytes, err := json.Marshal(storedResult{AllPassed: payload.AllPassed, Results: payload.Results})
	if err != nil {
		return common.Errorf("failed to marshal execution result: %w", err)
	}
	if err := s.jobRepo.SetJobResult(ctx, job.ID, model.JobStatusCompleted, resultBytes); err != nil {
		return common.Errorf("failed to store execution result: %w", err)
	}

	logging.L.Info("Validation job completed",
		zap.String("job_id", job.ID), zap.Bool("all_passed", payload.AllPassed))
	return nil
}

// GetValidationReport returns the client-facing view of a job. Hidden test
// case results are filtered out for non-admin callers.
func (s *ExecutionService) GetValidationReport(ctx context.Context, jobID string, userRole string) (*model.ValidationReport, error) {
	job, err := s.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	report := &model.ValidationReport{JobID: job.ID, Status: job.Status}
	if job.Status != model.JobStatusCompleted {
		if job.LastError != nil {
			report.Message = *job.LastError
		}
		return report, nil
	}

	var stored storedResult
	if err := json.Unmarshal(job.Result, &stored); err != nil {
		return nil, common.Errorf("failed to unmarshal stored result for job %s: %w", job.ID, err)
	}

	report.AllPassed = stored.AllPassed
	if report.AllPassed {
		report.Message = "All test cases passed!"
	} else {
		report.Message = "Some test cases failed. Please review your solution."
	}

	for _, r := range stored.Results {
		if r.IsHidden && userRole != model.RoleAdmin {
			continue
		}
		report.Results = append(report.Results, r)
	}
	return report, nil
}
