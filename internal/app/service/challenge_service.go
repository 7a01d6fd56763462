package service

import (
	"context"
	"database/sql"

	"challengehub/internal/common"
	"challengehub/internal/domain/model"
	"challengehub/internal/domain/repository"
	"challengehub/internal/platform/logging"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

type ChallengeService struct {
	challengeRepo repository.ChallengeRepository
	db            *sql.DB
}

func NewChallengeService(challengeRepo repository.ChallengeRepository, db *sql.DB) *ChallengeService {
	return &ChallengeService{challengeRepo: challengeRepo, db: db}
}

type ChallengePayloadRequest struct {
	Title       string                    `json:"title"`
	Description string                    `json:"description"`
	Category    model.ChallengeCategory   `json:"category"`
	Difficulty  model.ChallengeDifficulty `json:"difficulty"`
	Points      int                       `json:"points"`
	Status      model.ChallengeStatus     `json:"status,omitempty"`

	Examples     []model.Example  `json:"examples,omitempty"`
	Constraints  []string         `json:"constraints,omitempty"`
	TestCases    []model.TestCase `json:"test_cases,omitempty"`
	Questions    []model.Question `json:"questions,omitempty"`
	Requirements []string         `json:"requirements,omitempty"`
}

// validateChallenge checks the common fields and that the category-specific
// payload matches the declared category.
func validateChallenge(c *model.Challenge) error {
	if c.Title == "" || c.Description == "" {
		return common.Errorf("title and description are required: %w", common.ErrValidation)
	}
	if !c.Category.Valid() {
		return common.Errorf("unknown category %q: %w", c.Category, common.ErrValidation)
	}
	if !c.Difficulty.Valid() {
		return common.Errorf("unknown difficulty %q: %w", c.Difficulty, common.ErrValidation)
	}
	if c.Points <= 0 {
		return common.Errorf("points must be positive: %w", common.ErrValidation)
	}
	if !c.Status.Valid() {
		return common.Errorf("unknown status %q: %w", c.Status, common.ErrValidation)
	}

	switch c.Category {
	case model.CategoryDSA:
		if len(c.TestCases) == 0 {
			return common.Errorf("DSA challenge requires test cases: %w", common.ErrValidation)
		}
		if len(c.Questions) > 0 || len(c.Requirements) > 0 {
			return common.Errorf("DSA challenge cannot carry quiz or project payload: %w", common.ErrValidation)
		}
	case model.CategoryQuiz:
		if len(c.Questions) == 0 {
			return common.Errorf("quiz challenge requires questions: %w", common.ErrValidation)
		}
		for _, q := range c.Questions {
			if q.Question == "" || len(q.Options) == 0 || q.Answer == "" {
				return common.Errorf("quiz question requires text, options and an answer: %w", common.ErrValidation)
			}
		}
		if len(c.TestCases) > 0 || len(c.Requirements) > 0 {
			return common.Errorf("quiz challenge cannot carry DSA or project payload: %w", common.ErrValidation)
		}
	case model.CategoryProject:
		if len(c.Requirements) == 0 {
			return common.Errorf("project challenge requires requirements: %w", common.ErrValidation)
		}
		if len(c.TestCases) > 0 || len(c.Questions) > 0 {
			return common.Errorf("project challenge cannot carry DSA or quiz payload: %w", common.ErrValidation)
		}
	}
	return nil
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, userID string, req ChallengePayloadRequest) (*model.Challenge, error) {
	status := req.Status
	if status == "" {
		status = model.StatusActive
	}

	challenge := &model.Challenge{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Slug:         slug.Make(req.Title),
		Description:  req.Description,
		Category:     req.Category,
		Difficulty:   req.Difficulty,
		Points:       req.Points,
		Status:       status,
		CreatedByID:  &userID,
		Examples:     req.Examples,
		Constraints:  req.Constraints,
		TestCases:    req.TestCases,
		Questions:    req.Questions,
		Requirements: req.Requirements,
	}

	if err := validateChallenge(challenge); err != nil {
		return nil, err
	}

	if err := s.challengeRepo.Create(ctx, nil, challenge); err != nil {
		return nil, common.Errorf("failed to create challenge: %w", err)
	}

	logging.L.Info("Challenge created",
		zap.String("challenge_id", challenge.ID),
		zap.String("category", string(challenge.Category)))
	return challenge, nil
}

func (s *ChallengeService) UpdateChallenge(ctx context.Context, id string, req ChallengePayloadRequest) (*model.Challenge, error) {
	existing, err := s.challengeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = existing.Status
	}

	updated := &model.Challenge{
		ID:           existing.ID,
		Title:        req.Title,
		Slug:         slug.Make(req.Title),
		Description:  req.Description,
		Category:     req.Category,
		Difficulty:   req.Difficulty,
		Points:       req.Points,
		Status:       status,
		CreatedByID:  existing.CreatedByID,
		CreatedAt:    existing.CreatedAt,
		Examples:     req.Examples,
		Constraints:  req.Constraints,
		TestCases:    req.TestCases,
		Questions:    req.Questions,
		Requirements: req.Requirements,
	}

	if err := validateChallenge(updated); err != nil {
		return nil, err
	}

	if err := s.challengeRepo.Update(ctx, nil, updated); err != nil {
		return nil, common.Errorf("failed to update challenge: %w", err)
	}
	return updated, nil
}

func (s *ChallengeService) DeleteChallenge(ctx context.Context, id string) error {
	return s.challengeRepo.Delete(ctx, id)
}

// GetChallenge returns a challenge with grading material stripped for
// non-admin callers: hidden test cases and quiz answers stay server-side.
func (s *ChallengeService) GetChallenge(ctx context.Context, id string, userRole string) (*model.Challenge, error) {
	challenge, err := s.challengeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if userRole != model.RoleAdmin {
		stripGradingMaterial(challenge)
	}
	return challenge, nil
}

func stripGradingMaterial(c *model.Challenge) {
	visible := c.TestCases[:0]
	for _, tc := range c.TestCases {
		if !tc.IsHidden {
			visible = append(visible, tc)
		}
	}
	c.TestCases = visible
	for i := range c.Questions {
		c.Questions[i].Answer = ""
	}
}

// ListChallenges filters by category, status and a case-insensitive
// title/description substring. Non-admin callers only ever see active
// challenges regardless of the requested status.
func (s *ChallengeService) ListChallenges(ctx context.Context, category model.ChallengeCategory, status model.ChallengeStatus, searchTerm string, userRole string) ([]model.Challenge, error) {
	if userRole != model.RoleAdmin {
		status = model.StatusActive
	}
	if category != "" && !category.Valid() {
		return nil, common.Errorf("unknown category %q: %w", category, common.ErrValidation)
	}
	if status != "" && !status.Valid() {
		return nil, common.Errorf("unknown status %q: %w", status, common.ErrValidation)
	}
	return s.challengeRepo.List(ctx, category, status, searchTerm)
}
