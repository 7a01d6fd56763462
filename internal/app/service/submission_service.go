package service

import (
	"context"
	"database/sql"

	"challengehub/internal/common"
	"challengehub/internal/domain/model"
	"challengehub/internal/domain/repository"
	"challengehub/internal/platform/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	challengeRepo  repository.ChallengeRepository
	userRepo       repository.UserRepository
	rankingService *RankingService
	db             *sql.DB // For transactions
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	challengeRepo repository.ChallengeRepository,
	userRepo repository.UserRepository,
	rankingService *RankingService,
	db *sql.DB,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		challengeRepo:  challengeRepo,
		userRepo:       userRepo,
		rankingService: rankingService,
		db:             db,
	}
}

type CreateSubmissionRequest struct {
	ChallengeID string               `json:"challenge_id"`
	Type        model.SubmissionType `json:"submission_type"`

	Code       *string  `json:"code,omitempty"`
	Language   *string  `json:"language,omitempty"`
	GithubLink *string  `json:"github_link,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
	Answers    []string `json:"answers,omitempty"`
}

// validatePayload enforces that the type-specific payload matches the
// declared submission type.
func validatePayload(req CreateSubmissionRequest) error {
	switch req.Type {
	case model.SubmissionTypeCode:
		if req.Code == nil || *req.Code == "" || req.Language == nil || *req.Language == "" {
			return common.Errorf("code submission requires code and language: %w", common.ErrValidation)
		}
	case model.SubmissionTypeGithub:
		if req.GithubLink == nil || *req.GithubLink == "" {
			return common.Errorf("github submission requires a repository link: %w", common.ErrValidation)
		}
	case model.SubmissionTypeQuiz:
		if len(req.Answers) == 0 {
			return common.Errorf("quiz submission requires answers: %w", common.ErrValidation)
		}
	default:
		return common.Errorf("unknown submission type %q: %w", req.Type, common.ErrValidation)
	}
	return nil
}

// CreateSubmission persists a pending submission and upserts the user's
// in-progress entry for the challenge. Creation never grants credit: the
// solved set and score are only touched at review time.
func (s *SubmissionService) CreateSubmission(ctx context.Context, userID string, req CreateSubmissionRequest) (*model.Submission, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}

	if _, err := s.challengeRepo.FindByID(ctx, req.ChallengeID); err != nil {
		return nil, common.Errorf("challenge not found: %w", err)
	}

	alreadySolved, err := s.userRepo.IsChallengeSolved(ctx, userID, req.ChallengeID)
	if err != nil {
		return nil, common.Errorf("failed to check solved set: %w", err)
	}

	submission := &model.Submission{
		ID:          uuid.NewString(),
		UserID:      userID,
		ChallengeID: req.ChallengeID,
		Type:        req.Type,
		Status:      model.SubmissionPending,
		Score:       0,
		Code:        req.Code,
		Language:    req.Language,
		GithubLink:  req.GithubLink,
		Notes:       req.Notes,
		Answers:     req.Answers,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.submissionRepo.Create(ctx, tx, submission); err != nil {
		return nil, common.Errorf("failed to create submission: %w", err)
	}

	if !alreadySolved {
		if err := s.userRepo.UpsertChallengeProgress(ctx, tx, userID, req.ChallengeID); err != nil {
			return nil, common.Errorf("failed to update in-progress challenges: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	logging.L.Info("Submission created",
		zap.String("submission_id", submission.ID),
		zap.String("challenge_id", req.ChallengeID),
		zap.String("user_id", userID))
	return submission, nil
}

func (s *SubmissionService) ListSubmissions(ctx context.Context, challengeID, userID string) ([]model.Submission, error) {
	return s.submissionRepo.List(ctx, challengeID, userID)
}

func (s *SubmissionService) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	return s.submissionRepo.FindByID(ctx, id)
}

type ReviewSubmissionRequest struct {
	Status   model.SubmissionStatus `json:"status"`
	Score    int                    `json:"score"`
	Feedback *string                `json:"feedback,omitempty"`
}

// ReviewSubmission applies an admin decision. Re-review of an already
// decided submission is permitted and overwrites status/score/feedback.
// Credit (solved set, user score, ranks) is granted at most once per
// user/challenge pair, inside a single transaction.
func (s *SubmissionService) ReviewSubmission(ctx context.Context, submissionID string, req ReviewSubmissionRequest) (*model.Submission, error) {
	if req.Status != model.SubmissionAccepted && req.Status != model.SubmissionRejected {
		return nil, common.Errorf("review status must be accepted or rejected: %w", common.ErrValidation)
	}

	submission, err := s.submissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		return nil, common.Errorf("submission not found: %w", err)
	}

	score := req.Score
	if req.Status == model.SubmissionRejected {
		score = 0
	}

	var alreadySolved bool
	if req.Status == model.SubmissionAccepted {
		alreadySolved, err = s.userRepo.IsChallengeSolved(ctx, submission.UserID, submission.ChallengeID)
		if err != nil {
			return nil, common.Errorf("failed to check solved set: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.submissionRepo.UpdateReview(ctx, tx, submissionID, req.Status, score, req.Feedback); err != nil {
		return nil, common.Errorf("failed to update submission: %w", err)
	}

	credited := req.Status == model.SubmissionAccepted && !alreadySolved
	if credited {
		if err := s.userRepo.AddSolvedChallenge(ctx, tx, submission.UserID, submission.ChallengeID, score); err != nil {
			return nil, common.Errorf("failed to record solved challenge: %w", err)
		}
		if err := s.userRepo.RemoveChallengeProgress(ctx, tx, submission.UserID, submission.ChallengeID); err != nil {
			return nil, common.Errorf("failed to clear in-progress entry: %w", err)
		}
		if err := s.userRepo.AddScore(ctx, tx, submission.UserID, score); err != nil {
			return nil, common.Errorf("failed to update user score: %w", err)
		}
		if err := s.rankingService.RecomputeRanks(ctx, tx); err != nil {
			return nil, common.Errorf("failed to recompute ranks: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	if credited {
		s.rankingService.InvalidateCache(ctx)
	}

	logging.L.Info("Submission reviewed",
		zap.String("submission_id", submissionID),
		zap.String("status", string(req.Status)),
		zap.Bool("credited", credited))

	submission.Status = req.Status
	submission.Score = score
	submission.Feedback = req.Feedback
	return submission, nil
}
