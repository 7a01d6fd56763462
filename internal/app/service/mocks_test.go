package service

import (
	"context"
	"database/sql"
	"errors"

	"challengehub/internal/domain/model"
)

// Mock repositories for testing

type mockUserRepository struct {
	createFunc                  func(ctx context.Context, user *model.User) error
	findByEmailFunc             func(ctx context.Context, email string) (*model.User, error)
	findByIDFunc                func(ctx context.Context, id string) (*model.User, error)
	listAllFunc                 func(ctx context.Context) ([]model.User, error)
	updateProfileFunc           func(ctx context.Context, user *model.User) error
	addScoreFunc                func(ctx context.Context, tx *sql.Tx, userID string, delta int) error
	listForRankingFunc          func(ctx context.Context, tx *sql.Tx) ([]model.User, error)
	updateRankFunc              func(ctx context.Context, tx *sql.Tx, userID string, rank int) error
	getRankingsFunc             func(ctx context.Context, limit int) ([]model.RankingEntry, error)
	isChallengeSolvedFunc       func(ctx context.Context, userID, challengeID string) (bool, error)
	upsertChallengeProgressFunc func(ctx context.Context, tx *sql.Tx, userID, challengeID string) error
	addSolvedChallengeFunc      func(ctx context.Context, tx *sql.Tx, userID, challengeID string, score int) error
	removeChallengeProgressFunc func(ctx context.Context, tx *sql.Tx, userID, challengeID string) error
	getSolvedChallengesFunc     func(ctx context.Context, userID string) ([]model.SolvedChallenge, error)
	getChallengeProgressFunc    func(ctx context.Context, userID string) ([]model.ChallengeProgress, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, user)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) AddScore(ctx context.Context, tx *sql.Tx, userID string, delta int) error {
	if m.addScoreFunc != nil {
		return m.addScoreFunc(ctx, tx, userID, delta)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) ListForRanking(ctx context.Context, tx *sql.Tx) ([]model.User, error) {
	if m.listForRankingFunc != nil {
		return m.listForRankingFunc(ctx, tx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) UpdateRank(ctx context.Context, tx *sql.Tx, userID string, rank int) error {
	if m.updateRankFunc != nil {
		return m.updateRankFunc(ctx, tx, userID, rank)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) GetRankings(ctx context.Context, limit int) ([]model.RankingEntry, error) {
	if m.getRankingsFunc != nil {
		return m.getRankingsFunc(ctx, limit)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) IsChallengeSolved(ctx context.Context, userID, challengeID string) (bool, error) {
	if m.isChallengeSolvedFunc != nil {
		return m.isChallengeSolvedFunc(ctx, userID, challengeID)
	}
	return false, errors.New("not implemented")
}

func (m *mockUserRepository) UpsertChallengeProgress(ctx context.Context, tx *sql.Tx, userID, challengeID string) error {
	if m.upsertChallengeProgressFunc != nil {
		return m.upsertChallengeProgressFunc(ctx, tx, userID, challengeID)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) AddSolvedChallenge(ctx context.Context, tx *sql.Tx, userID, challengeID string, score int) error {
	if m.addSolvedChallengeFunc != nil {
		return m.addSolvedChallengeFunc(ctx, tx, userID, challengeID, score)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) RemoveChallengeProgress(ctx context.Context, tx *sql.Tx, userID, challengeID string) error {
	if m.removeChallengeProgressFunc != nil {
		return m.removeChallengeProgressFunc(ctx, tx, userID, challengeID)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) GetSolvedChallenges(ctx context.Context, userID string) ([]model.SolvedChallenge, error) {
	if m.getSolvedChallengesFunc != nil {
		return m.getSolvedChallengesFunc(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) GetChallengeProgress(ctx context.Context, userID string) ([]model.ChallengeProgress, error) {
	if m.getChallengeProgressFunc != nil {
		return m.getChallengeProgressFunc(ctx, userID)
	}
	return nil, errors.New("not implemented")
}

type mockChallengeRepository struct {
	createFunc   func(ctx context.Context, tx *sql.Tx, challenge *model.Challenge) error
	updateFunc   func(ctx context.Context, tx *sql.Tx, challenge *model.Challenge) error
	deleteFunc   func(ctx context.Context, id string) error
	findByIDFunc func(ctx context.Context, id string) (*model.Challenge, error)
	listFunc     func(ctx context.Context, category model.ChallengeCategory, status model.ChallengeStatus, searchTerm string) ([]model.Challenge, error)
}

func (m *mockChallengeRepository) Create(ctx context.Context, tx *sql.Tx, challenge *model.Challenge) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, tx, challenge)
	}
	return errors.New("not implemented")
}

func (m *mockChallengeRepository) Update(ctx context.Context, tx *sql.Tx, challenge *model.Challenge) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, tx, challenge)
	}
	return errors.New("not implemented")
}

func (m *mockChallengeRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (m *mockChallengeRepository) FindByID(ctx context.Context, id string) (*model.Challenge, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockChallengeRepository) List(ctx context.Context, category model.ChallengeCategory, status model.ChallengeStatus, searchTerm string) ([]model.Challenge, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, category, status, searchTerm)
	}
	return nil, errors.New("not implemented")
}

type mockSubmissionRepository struct {
	createFunc           func(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	findByIDFunc         func(ctx context.Context, id string) (*model.Submission, error)
	listFunc             func(ctx context.Context, challengeID, userID string) ([]model.Submission, error)
	listRecentByUserFunc func(ctx context.Context, userID string, limit int) ([]model.Submission, error)
	updateReviewFunc     func(ctx context.Context, tx *sql.Tx, id string, status model.SubmissionStatus, score int, feedback *string) error
}

func (m *mockSubmissionRepository) Create(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, tx, sub)
	}
	return errors.New("not implemented")
}

func (m *mockSubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSubmissionRepository) List(ctx context.Context, challengeID, userID string) ([]model.Submission, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, challengeID, userID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSubmissionRepository) ListRecentByUser(ctx context.Context, userID string, limit int) ([]model.Submission, error) {
	if m.listRecentByUserFunc != nil {
		return m.listRecentByUserFunc(ctx, userID, limit)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSubmissionRepository) UpdateReview(ctx context.Context, tx *sql.Tx, id string, status model.SubmissionStatus, score int, feedback *string) error {
	if m.updateReviewFunc != nil {
		return m.updateReviewFunc(ctx, tx, id, status, score, feedback)
	}
	return errors.New("not implemented")
}

type mockExecutionJobRepository struct {
	createJobFunc            func(ctx context.Context, tx *sql.Tx, job *model.ExecutionJob) error
	getJobByIDFunc           func(ctx context.Context, id string) (*model.ExecutionJob, error)
	updateJobStatusFunc      func(ctx context.Context, tx *sql.Tx, jobID string, status string, lastError *string) error
	setJobResultFunc         func(ctx context.Context, jobID string, status string, result []byte) error
	incrementJobAttemptsFunc func(ctx context.Context, jobID string) error
}

func (m *mockExecutionJobRepository) CreateJob(ctx context.Context, tx *sql.Tx, job *model.ExecutionJob) error {
	if m.createJobFunc != nil {
		return m.createJobFunc(ctx, tx, job)
	}
	return errors.New("not implemented")
}

func (m *mockExecutionJobRepository) GetJobByID(ctx context.Context, id string) (*model.ExecutionJob, error) {
	if m.getJobByIDFunc != nil {
		return m.getJobByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockExecutionJobRepository) UpdateJobStatus(ctx context.Context, tx *sql.Tx, jobID string, status string, lastError *string) error {
	if m.updateJobStatusFunc != nil {
		return m.updateJobStatusFunc(ctx, tx, jobID, status, lastError)
	}
	return errors.New("not implemented")
}

func (m *mockExecutionJobRepository) SetJobResult(ctx context.Context, jobID string, status string, result []byte) error {
	if m.setJobResultFunc != nil {
		return m.setJobResultFunc(ctx, jobID, status, result)
	}
	return errors.New("not implemented")
}

func (m *mockExecutionJobRepository) IncrementJobAttempts(ctx context.Context, jobID string) error {
	if m.incrementJobAttemptsFunc != nil {
		return m.incrementJobAttemptsFunc(ctx, jobID)
	}
	return errors.New("not implemented")
}
