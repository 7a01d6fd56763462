package service

import (
	"context"

	"challengehub/internal/common"
	"challengehub/internal/domain/model"
	"challengehub/internal/domain/repository"
	"challengehub/internal/platform/logging"

	"go.uber.org/zap"
)

const recentSubmissionsLimit = 5

type UserService struct {
	userRepo       repository.UserRepository
	submissionRepo repository.SubmissionRepository
}

func NewUserService(userRepo repository.UserRepository, submissionRepo repository.SubmissionRepository) *UserService {
	return &UserService{userRepo: userRepo, submissionRepo: submissionRepo}
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.ListAll(ctx)
}

type UserProfile struct {
	User              *model.User        `json:"user"`
	RecentSubmissions []model.Submission `json:"recent_submissions"`
}

// GetProfile returns the credential-stripped user with solved/in-progress
// sets joined with challenge display fields, plus the five most recent
// submissions.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = ""

	solved, err := s.userRepo.GetSolvedChallenges(ctx, userID)
	if err != nil {
		return nil, common.Errorf("failed to load solved challenges: %w", err)
	}
	user.SolvedChallenges = solved

	progress, err := s.userRepo.GetChallengeProgress(ctx, userID)
	if err != nil {
		return nil, common.Errorf("failed to load in-progress challenges: %w", err)
	}
	user.InProgressChallenges = progress

	recent, err := s.submissionRepo.ListRecentByUser(ctx, userID, recentSubmissionsLimit)
	if err != nil {
		return nil, common.Errorf("failed to load recent submissions: %w", err)
	}

	return &UserProfile{User: user, RecentSubmissions: recent}, nil
}

type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *string `json:"role,omitempty"`
}

// UpdateUser applies profile changes. Passwords are not updatable through
// this path; score and rank are derived and never independently settable.
func (s *UserService) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		if *req.Role != model.RoleUser && *req.Role != model.RoleAdmin {
			return nil, common.Errorf("unknown role %q: %w", *req.Role, common.ErrValidation)
		}
		user.Role = *req.Role
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, common.Errorf("failed to update user: %w", err)
	}

	logging.L.Info("User updated", zap.String("user_id", userID))
	user.HashedPassword = ""
	return user, nil
}
