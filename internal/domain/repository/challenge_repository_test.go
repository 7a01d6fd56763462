package repository

import (
	"context"
	"testing"
	"time"

	"challengehub/internal/common"
	"challengehub/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgChallengeRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPgChallengeRepository(db)
	ctx := context.Background()

	creator := "admin-1"
	challenge := &model.Challenge{
		ID:          "chal-1",
		Title:       "Two Sum",
		Slug:        "two-sum",
		Description: "desc",
		Category:    model.CategoryDSA,
		Difficulty:  model.DifficultyEasy,
		Points:      100,
		Status:      model.StatusActive,
		CreatedByID: &creator,
		TestCases:   []model.TestCase{{Input: "1 2", Output: "3"}},
	}

	// Absent payload slices are stored as empty JSON arrays, not NULL.
	mock.ExpectExec("INSERT INTO challenges").
		WithArgs(challenge.ID, challenge.Title, challenge.Slug, challenge.Description,
			challenge.Category, challenge.Difficulty, challenge.Points, challenge.Status,
			[]byte("[]"), []byte("[]"),
			[]byte(`[{"input":"1 2","output":"3","is_hidden":false}]`),
			[]byte("[]"), []byte("[]"), &creator).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(ctx, nil, challenge))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgChallengeRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPgChallengeRepository(db)
	ctx := context.Background()

	columns := []string{"id", "title", "slug", "description", "category", "difficulty", "points", "status",
		"examples", "constraints", "test_cases", "questions", "requirements", "created_by", "created_at", "updated_at"}

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(columns).
			AddRow("chal-1", "Two Sum", "two-sum", "desc", "DSA", "Easy", 100, "active",
				[]byte(`[{"input":"in","output":"out"}]`), []byte(`["n < 100"]`),
				[]byte(`[{"input":"1","output":"1","is_hidden":true}]`),
				[]byte("[]"), []byte("[]"), "admin-1", now, now)

		mock.ExpectQuery("SELECT id, title, slug, description").
			WithArgs("chal-1").
			WillReturnRows(rows)

		challenge, err := repo.FindByID(ctx, "chal-1")
		require.NoError(t, err)
		assert.Equal(t, model.CategoryDSA, challenge.Category)
		require.Len(t, challenge.TestCases, 1)
		assert.True(t, challenge.TestCases[0].IsHidden)
		assert.Equal(t, []string{"n < 100"}, challenge.Constraints)
		require.Len(t, challenge.Examples, 1)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, title, slug, description").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgChallengeRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPgChallengeRepository(db)
	ctx := context.Background()

	columns := []string{"id", "title", "slug", "description", "category", "difficulty", "points", "status", "created_at", "updated_at"}

	t.Run("AllFilters", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(columns).
			AddRow("chal-1", "Binary Search", "binary-search", "desc", "DSA", "Medium", 150, "active", now, now)

		mock.ExpectQuery(`status = \$1 AND category = \$2 AND \(title ILIKE \$3 OR description ILIKE \$4\)`).
			WithArgs(model.StatusActive, model.CategoryDSA, "%search%", "%search%").
			WillReturnRows(rows)

		challenges, err := repo.List(ctx, model.CategoryDSA, model.StatusActive, "search")
		require.NoError(t, err)
		require.Len(t, challenges, 1)
		assert.Equal(t, "chal-1", challenges[0].ID)
	})

	t.Run("NoFilters", func(t *testing.T) {
		mock.ExpectQuery("ORDER BY created_at DESC").
			WillReturnRows(sqlmock.NewRows(columns))

		challenges, err := repo.List(ctx, "", "", "")
		require.NoError(t, err)
		assert.Len(t, challenges, 0)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgChallengeRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPgChallengeRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM challenges").
			WithArgs("chal-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(ctx, "chal-1"))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM challenges").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, "missing"), common.ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
