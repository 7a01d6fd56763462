package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"challengehub/internal/common"
	"challengehub/internal/domain/model"
)

type ExecutionJobRepository interface {
	CreateJob(ctx context.Context, tx *sql.Tx, job *model.ExecutionJob) error
	GetJobByID(ctx context.Context, id string) (*model.ExecutionJob, error)
	UpdateJobStatus(ctx context.Context, tx *sql.Tx, jobID string, status string, lastError *string) error
	SetJobResult(ctx context.Context, jobID string, status string, result []byte) error
	IncrementJobAttempts(ctx context.Context, jobID string) error
}

type pgExecutionJobRepository struct {
	db *sql.DB
}

func NewPgExecutionJobRepository(db *sql.DB) ExecutionJobRepository {
	return &pgExecutionJobRepository{db: db}
}

func (r *pgExecutionJobRepository) CreateJob(ctx context.Context, tx *sql.Tx, job *model.ExecutionJob) error {
	query := `INSERT INTO execution_jobs (id, challenge_id, user_id, status, payload)
	          VALUES ($1, $2, $3, $4, $5)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, job.ID, job.ChallengeID, job.UserID, job.Status, []byte(job.Payload))
	} else {
		_, err = r.db.ExecContext(ctx, query, job.ID, job.ChallengeID, job.UserID, job.Status, []byte(job.Payload))
	}
	if err != nil {
		return fmt.Errorf("pgExecutionJobRepository.CreateJob: %w", err)
	}
	return nil
}

func (r *pgExecutionJobRepository) GetJobByID(ctx context.Context, id string) (*model.ExecutionJob, error) {
	query := `SELECT id, challenge_id, user_id, status, payload, result, attempts, last_error, created_at, updated_at
	          FROM execution_jobs WHERE id = $1`
	job := &model.ExecutionJob{}
	var payload, result []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.ChallengeID, &job.UserID, &job.Status, &payload, &result,
		&job.Attempts, &job.LastError, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgExecutionJobRepository.GetJobByID: %w", err)
	}
	job.Payload = payload
	job.Result = result
	return job, nil
}

func (r *pgExecutionJobRepository) UpdateJobStatus(ctx context.Context, tx *sql.Tx, jobID string, status string, lastError *string) error {
	query := `UPDATE execution_jobs SET status = $1, last_error = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, status, lastError, jobID)
	} else {
		_, err = r.db.ExecContext(ctx, query, status, lastError, jobID)
	}
	if err != nil {
		return fmt.Errorf("pgExecutionJobRepository.UpdateJobStatus: %w", err)
	}
	return nil
}

func (r *pgExecutionJobRepository) SetJobResult(ctx context.Context, jobID string, status string, result []byte) error {
	query := `UPDATE execution_jobs SET status = $1, result = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, status, result, jobID)
	if err != nil {
		return fmt.Errorf("pgExecutionJobRepository.SetJobResult: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgExecutionJobRepository) IncrementJobAttempts(ctx context.Context, jobID string) error {
	query := `UPDATE execution_jobs SET attempts = attempts + 1, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, jobID); err != nil {
		return fmt.Errorf("pgExecutionJobRepository.IncrementJobAttempts: %w", err)
	}
	return nil
}
