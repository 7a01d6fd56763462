package service

import (
	"context"
	"database/sql"
	"testing"

	"challengehub/internal/common"
	"challengehub/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func activeDSAChallenge(id string) *model.Challenge {
	return &model.Challenge{
		ID:         id,
		Title:      "Two Sum",
		Category:   model.CategoryDSA,
		Difficulty: model.DifficultyEasy,
		Points:     100,
		Status:     model.StatusActive,
		TestCases:  []model.TestCase{{Input: "1 2", Output: "3"}},
	}
}

func TestCreateSubmission(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending submission and upserts progress", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		var created *model.Submission
		var progressUpserted bool

		challengeRepo := &mockChallengeRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Challenge, error) {
				return activeDSAChallenge(id), nil
			},
		}
		userRepo := &mockUserRepository{
			isChallengeSolvedFunc: func(ctx context.Context, userID, challengeID string) (bool, error) {
				return false, nil
			},
			upsertChallengeProgressFunc: func(ctx context.Context, tx *sql.Tx, userID, challengeID string) error {
				progressUpserted = true
				assert.Equal(t, "user-1", userID)
				assert.Equal(t, "chal-1", challengeID)
				return nil
			},
		}
		subRepo := &mockSubmissionRepository{
			createFunc: func(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
				created = sub
				return nil
			},
		}

		svc := NewSubmissionService(subRepo, challengeRepo, userRepo, NewRankingService(userRepo, nil), db)
		sub, err := svc.CreateSubmission(ctx, "user-1", CreateSubmissionRequest{
			ChallengeID: "chal-1",
			Type:        model.SubmissionTypeCode,
			Code:        strPtr("print(1)"),
			Language:    strPtr("python"),
		})

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, model.SubmissionPending, sub.Status)
		assert.Equal(t, 0, sub.Score)
		assert.Equal(t, "user-1", sub.UserID)
		assert.NotEmpty(t, sub.ID)
		assert.True(t, progressUpserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips progress upsert when challenge already solved", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		var progressUpserted bool
		challengeRepo := &mockChallengeRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Challenge, error) {
				return activeDSAChallenge(id), nil
			},
		}
		userRepo := &mockUserRepository{
			isChallengeSolvedFunc: func(ctx context.Context, userID, challengeID string) (bool, error) {
				return true, nil
			},
			upsertChallengeProgressFunc: func(ctx context.Context, tx *sql.Tx, userID, challengeID string) error {
				progressUpserted = true
				return nil
			},
		}
		subRepo := &mockSubmissionRepository{
			createFunc: func(ctx context.Context, tx *sql.Tx, sub *model.Submission) error { return nil },
		}

		svc := NewSubmissionService(subRepo, challengeRepo, userRepo, NewRankingService(userRepo, nil), db)
		sub, err := svc.CreateSubmission(ctx, "user-1", CreateSubmissionRequest{
			ChallengeID: "chal-1",
			Type:        model.SubmissionTypeQuiz,
			Answers:     []string{"a", "b"},
		})

		require.NoError(t, err)
		assert.Equal(t, model.SubmissionPending, sub.Status)
		assert.False(t, progressUpserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects submission for unknown challenge", func(t *testing.T) {
		db, _ := newTestDB(t)
		challengeRepo := &mockChallengeRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Challenge, error) {
				return nil, common.ErrNotFound
			},
		}
		userRepo := &mockUserRepository{}
		subRepo := &mockSubmissionRepository{}

		svc := NewSubmissionService(subRepo, challengeRepo, userRepo, NewRankingService(userRepo, nil), db)
		_, err := svc.CreateSubmission(ctx, "user-1", CreateSubmissionRequest{
			ChallengeID: "missing",
			Type:        model.SubmissionTypeGithub,
			GithubLink:  strPtr("https://github.com/u/r"),
		})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("rejects mismatched payloads", func(t *testing.T) {
		db, _ := newTestDB(t)
		svc := NewSubmissionService(&mockSubmissionRepository{}, &mockChallengeRepository{}, &mockUserRepository{}, nil, db)

		cases := []struct {
			name string
			req  CreateSubmissionRequest
		}{
			{"code without language", CreateSubmissionRequest{ChallengeID: "c", Type: model.SubmissionTypeCode, Code: strPtr("x")}},
			{"code without code", CreateSubmissionRequest{ChallengeID: "c", Type: model.SubmissionTypeCode, Language: strPtr("go")}},
			{"github without link", CreateSubmissionRequest{ChallengeID: "c", Type: model.SubmissionTypeGithub}},
			{"quiz without answers", CreateSubmissionRequest{ChallengeID: "c", Type: model.SubmissionTypeQuiz}},
			{"unknown type", CreateSubmissionRequest{ChallengeID: "c", Type: "essay"}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.CreateSubmission(ctx, "user-1", tc.req)
				assert.ErrorIs(t, err, common.ErrValidation)
			})
		}
	})
}

func TestReviewSubmission(t *testing.T) {
	ctx := context.Background()

	pendingSubmission := func() *model.Submission {
		return &model.Submission{
			ID:          "sub-1",
			UserID:      "user-1",
			ChallengeID: "chal-1",
			Type:        model.SubmissionTypeCode,
			Status:      model.SubmissionPending,
		}
	}

	t.Run("first accept grants credit and recomputes ranks", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		var solvedScore int
		var progressRemoved bool
		var scoreDelta int
		ranks := map[string]int{}

		userRepo := &mockUserRepository{
			isChallengeSolvedFunc: func(ctx context.Context, userID, challengeID string) (bool, error) {
				return false, nil
			},
			addSolvedChallengeFunc: func(ctx context.Context, tx *sql.Tx, userID, challengeID string, score int) error {
				solvedScore = score
				return nil
			},
			removeChallengeProgressFunc: func(ctx context.Context, tx *sql.Tx, userID, challengeID string) error {
				progressRemoved = true
				return nil
			},
			addScoreFunc: func(ctx context.Context, tx *sql.Tx, userID string, delta int) error {
				scoreDelta = delta
				return nil
			},
			listForRankingFunc: func(ctx context.Context, tx *sql.Tx) ([]model.User, error) {
				return []model.User{
					{ID: "user-1", Name: "alice", Score: 80},
					{ID: "user-2", Name: "bob", Score: 50},
				}, nil
			},
			updateRankFunc: func(ctx context.Context, tx *sql.Tx, userID string, rank int) error {
				ranks[userID] = rank
				return nil
			},
		}
		subRepo := &mockSubmissionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Submission, error) {
				return pendingSubmission(), nil
			},
			updateReviewFunc: func(ctx context.Context, tx *sql.Tx, id string, status model.SubmissionStatus, score int, feedback *string) error {
				assert.Equal(t, model.SubmissionAccepted, status)
				assert.Equal(t, 80, score)
				return nil
			},
		}

		svc := NewSubmissionService(subRepo, &mockChallengeRepository{}, userRepo, NewRankingService(userRepo, nil), db)
		sub, err := svc.ReviewSubmission(ctx, "sub-1", ReviewSubmissionRequest{
			Status:   model.SubmissionAccepted,
			Score:    80,
			Feedback: strPtr("good work"),
		})

		require.NoError(t, err)
		assert.Equal(t, model.SubmissionAccepted, sub.Status)
		assert.Equal(t, 80, sub.Score)
		assert.Equal(t, 80, solvedScore)
		assert.Equal(t, 80, scoreDelta)
		assert.True(t, progressRemoved)
		assert.Equal(t, map[string]int{"user-1": 1, "user-2": 2}, ranks)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("accept on already solved challenge grants no credit", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		// Credit mutation funcs stay nil so any call fails the test.
		userRepo := &mockUserRepository{
			isChallengeSolvedFunc: func(ctx context.Context, userID, challengeID string) (bool, error) {
				return true, nil
			},
		}
		var reviewed bool
		subRepo := &mockSubmissionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Submission, error) {
				return pendingSubmission(), nil
			},
			updateReviewFunc: func(ctx context.Context, tx *sql.Tx, id string, status model.SubmissionStatus, score int, feedback *string) error {
				reviewed = true
				return nil
			},
		}

		svc := NewSubmissionService(subRepo, &mockChallengeRepository{}, userRepo, NewRankingService(userRepo, nil), db)
		sub, err := svc.ReviewSubmission(ctx, "sub-1", ReviewSubmissionRequest{
			Status: model.SubmissionAccepted,
			Score:  60,
		})

		require.NoError(t, err)
		assert.True(t, reviewed)
		assert.Equal(t, model.SubmissionAccepted, sub.Status)
		assert.Equal(t, 60, sub.Score)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reject zeroes the score and leaves the user untouched", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		userRepo := &mockUserRepository{}
		var recordedScore int
		subRepo := &mockSubmissionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Submission, error) {
				return pendingSubmission(), nil
			},
			updateReviewFunc: func(ctx context.Context, tx *sql.Tx, id string, status model.SubmissionStatus, score int, feedback *string) error {
				recordedScore = score
				return nil
			},
		}

		svc := NewSubmissionService(subRepo, &mockChallengeRepository{}, userRepo, NewRankingService(userRepo, nil), db)
		sub, err := svc.ReviewSubmission(ctx, "sub-1", ReviewSubmissionRequest{
			Status:   model.SubmissionRejected,
			Score:    50,
			Feedback: strPtr("wrong approach"),
		})

		require.NoError(t, err)
		assert.Equal(t, model.SubmissionRejected, sub.Status)
		assert.Equal(t, 0, sub.Score)
		assert.Equal(t, 0, recordedScore)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("re-review overwrites an earlier decision", func(t *testing.T) {
		db, mock := newTestDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		rejected := pendingSubmission()
		rejected.Status = model.SubmissionRejected
		userRepo := &mockUserRepository{
			isChallengeSolvedFunc: func(ctx context.Context, userID, challengeID string) (bool, error) {
				return false, nil
			},
			addSolvedChallengeFunc: func(ctx context.Context, tx *sql.Tx, userID, challengeID string, score int) error {
				return nil
			},
			removeChallengeProgressFunc: func(ctx context.Context, tx *sql.Tx, userID, challengeID string) error {
				return nil
			},
			addScoreFunc: func(ctx context.Context, tx *sql.Tx, userID string, delta int) error {
				return nil
			},
			listForRankingFunc: func(ctx context.Context, tx *sql.Tx) ([]model.User, error) {
				return nil, nil
			},
		}
		subRepo := &mockSubmissionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Submission, error) {
				return rejected, nil
			},
			updateReviewFunc: func(ctx context.Context, tx *sql.Tx, id string, status model.SubmissionStatus, score int, feedback *string) error {
				return nil
			},
		}

		svc := NewSubmissionService(subRepo, &mockChallengeRepository{}, userRepo, NewRankingService(userRepo, nil), db)
		sub, err := svc.ReviewSubmission(ctx, "sub-1", ReviewSubmissionRequest{
			Status: model.SubmissionAccepted,
			Score:  40,
		})

		require.NoError(t, err)
		assert.Equal(t, model.SubmissionAccepted, sub.Status)
		assert.Equal(t, 40, sub.Score)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects an invalid review status", func(t *testing.T) {
		db, _ := newTestDB(t)
		svc := NewSubmissionService(&mockSubmissionRepository{}, &mockChallengeRepository{}, &mockUserRepository{}, nil, db)
		_, err := svc.ReviewSubmission(ctx, "sub-1", ReviewSubmissionRequest{Status: model.SubmissionPending})
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("returns not found for unknown submission", func(t *testing.T) {
		db, _ := newTestDB(t)
		subRepo := &mockSubmissionRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Submission, error) {
				return nil, common.ErrNotFound
			},
		}
		svc := NewSubmissionService(subRepo, &mockChallengeRepository{}, &mockUserRepository{}, nil, db)
		_, err := svc.ReviewSubmission(ctx, "missing", ReviewSubmissionRequest{Status: model.SubmissionAccepted, Score: 10})
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}
