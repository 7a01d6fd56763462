package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"challengehub/internal/domain/model"
	"challengehub/internal/domain/repository"
	"challengehub/internal/platform/config"
	"challengehub/internal/platform/logging"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ExecutionWorker drains the validation queue and hands jobs to the
// external executor. Results come back asynchronously via the execution
// webhook.
type ExecutionWorker struct {
	rdb           *redis.Client
	jobRepo       repository.ExecutionJobRepository
	challengeRepo repository.ChallengeRepository
	httpClient    *http.Client
}

func NewExecutionWorker(rdb *redis.Client, jobRepo repository.ExecutionJobRepository, challengeRepo repository.ChallengeRepository) *ExecutionWorker {
	return &ExecutionWorker{
		rdb:           rdb,
		jobRepo:       jobRepo,
		challengeRepo: challengeRepo,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ExecutorRequest is the format sent to the external execution service.
type ExecutorRequest struct {
	JobID      string             `json:"job_id"`
	Language   string             `json:"language"`
	Code       string             `json:"code"`
	TestCases  []ExecutorTestCase `json:"test_cases"`
	WebhookURL string             `json:"webhook_url"`
}

type ExecutorTestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	IsHidden       bool   `json:"is_hidden"`
}

func (w *ExecutionWorker) Start(ctx context.Context) {
	logging.L.Info("Execution worker started", zap.String("queue", config.AppConfig.ValidationQueueName))
	for {
		select {
		case <-ctx.Done():
			logging.L.Info("Execution worker stopping")
			return
		default:
			res, err := w.rdb.BRPop(ctx, 0*time.Second, config.AppConfig.ValidationQueueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					time.Sleep(1 * time.Second)
					continue
				}
				logging.L.Error("BRPop failed", zap.Error(err))
				time.Sleep(5 * time.Second)
				continue
			}

			// res is [queueName, value]
			if len(res) < 2 || res[1] == "" {
				continue
			}
			w.processJobWithLock(ctx, res[1])
		}
	}
}

// processJobWithLock serializes executor dispatch across workers with a
// Redis SETNX lock; a job that loses the race is re-queued.
func (w *ExecutionWorker) processJobWithLock(ctx context.Context, jobID string) {
	lockValue := uuid.NewString()
	lockTTL := time.Duration(config.AppConfig.ValidationLockTTLSeconds) * time.Second

	ok, err := w.rdb.SetNX(ctx, config.AppConfig.ValidationLockKey, lockValue, lockTTL).Result()
	if err != nil {
		logging.L.Error("Lock acquisition failed", zap.String("job_id", jobID), zap.Error(err))
		w.requeueJob(ctx, jobID)
		return
	}
	if !ok {
		logging.L.Info("Executor busy, re-queueing job", zap.String("job_id", jobID))
		w.requeueJob(ctx, jobID)
		return
	}

	defer func() {
		// Release only if we still hold the lock (CAS delete).
		script := redis.NewScript(`
            if redis.call("get", KEYS[1]) == ARGV[1] then
                return redis.call("del", KEYS[1])
            else
                return 0
            end
        `)
		if _, err := script.Run(ctx, w.rdb, []string{config.AppConfig.ValidationLockKey}, lockValue).Result(); err != nil {
			logging.L.Error("Failed to release execution lock", zap.String("job_id", jobID), zap.Error(err))
		}
	}()

	w.handleJob(ctx, jobID)
}

func (w *ExecutionWorker) requeueJob(ctx context.Context, jobID string) {
	if err := w.rdb.RPush(ctx, config.AppConfig.ValidationQueueName, jobID).Err(); err != nil {
		logging.L.Error("Failed to re-queue job", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (w *ExecutionWorker) failJob(ctx context.Context, jobID, msg string) {
	logging.L.Error("Validation job failed", zap.String("job_id", jobID), zap.String("error", msg))
	if err := w.jobRepo.UpdateJobStatus(ctx, nil, jobID, model.JobStatusFailed, &msg); err != nil {
		logging.L.Error("Failed to mark job failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (w *ExecutionWorker) handleJob(ctx context.Context, jobID string) {
	job, err := w.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		logging.L.Error("Failed to fetch job", zap.String("job_id", jobID), zap.Error(err))
		return
	}

	if err := w.jobRepo.UpdateJobStatus(ctx, nil, job.ID, model.JobStatusProcessing, nil); err != nil {
		logging.L.Error("Failed to update job status", zap.String("job_id", job.ID), zap.Error(err))
	}
	if err := w.jobRepo.IncrementJobAttempts(ctx, job.ID); err != nil {
		logging.L.Error("Failed to increment job attempts", zap.String("job_id", job.ID), zap.Error(err))
	}

	var payload model.CodeValidationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		w.failJob(ctx, job.ID, fmt.Sprintf("failed to unmarshal job payload: %v", err))
		return
	}

	challenge, err := w.challengeRepo.FindByID(ctx, payload.ChallengeID)
	if err != nil {
		w.failJob(ctx, job.ID, fmt.Sprintf("failed to fetch challenge %s: %v", payload.ChallengeID, err))
		return
	}
	if len(challenge.TestCases) == 0 {
		w.failJob(ctx, job.ID, fmt.Sprintf("challenge %s has no test cases", challenge.ID))
		return
	}

	req := ExecutorRequest{
		JobID:      job.ID,
		Language:   payload.Language,
		Code:       payload.Code,
		WebhookURL: config.AppConfig.ExecutorWebhookCallbackURL,
	}
	for _, tc := range challenge.TestCases {
		req.TestCases = append(req.TestCases, ExecutorTestCase{
			Input:          tc.Input,
			ExpectedOutput: tc.Output,
			IsHidden:       tc.IsHidden,
		})
	}

	if err := w.sendToExecutor(ctx, req); err != nil {
		w.failJob(ctx, job.ID, fmt.Sprintf("failed to dispatch to executor: %v", err))
		return
	}

	if err := w.jobRepo.UpdateJobStatus(ctx, nil, job.ID, model.JobStatusSentToExecutor, nil); err != nil {
		logging.L.Error("Failed to update job status", zap.String("job_id", job.ID), zap.Error(err))
	}
	logging.L.Info("Job dispatched to executor", zap.String("job_id", job.ID))
}

func (w *ExecutionWorker) sendToExecutor(ctx context.Context, req ExecutorRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal executor request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, config.AppConfig.ExecutorURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build executor request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("executor request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("executor returned status %d", resp.StatusCode)
	}
	return nil
}
