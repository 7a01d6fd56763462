package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"challengehub/internal/common"
	"challengehub/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ChallengeRepository interface {
	Create(ctx context.Context, tx *sql.Tx, challenge *model.Challenge) error
	Update(ctx context.Context, tx *sql.Tx, challenge *model.Challenge) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Challenge, error)
	List(ctx context.Context, category model.ChallengeCategory, status model.ChallengeStatus, searchTerm string) ([]model.Challenge, error)
}

type pgChallengeRepository struct {
	db *sql.DB
}

func NewPgChallengeRepository(db *sql.DB) ChallengeRepository {
	return &pgChallengeRepository{db: db}
}

// Category-specific payloads live in JSONB columns; marshal/unmarshal at
// the repository boundary so the rest of the code sees typed slices.
func marshalPayload(v interface{}) ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}

func (r *pgChallengeRepository) Create(ctx context.Context, tx *sql.Tx, c *model.Challenge) error {
	examples, err := marshalPayload(c.Examples)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Create marshal examples: %w", err)
	}
	constraints, err := marshalPayload(c.Constraints)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Create marshal constraints: %w", err)
	}
	testCases, err := marshalPayload(c.TestCases)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Create marshal test cases: %w", err)
	}
	questions, err := marshalPayload(c.Questions)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Create marshal questions: %w", err)
	}
	requirements, err := marshalPayload(c.Requirements)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Create marshal requirements: %w", err)
	}

	query := `INSERT INTO challenges (id, title, slug, description, category, difficulty, points, status,
	              examples, constraints, test_cases, questions, requirements, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	args := []interface{}{c.ID, c.Title, c.Slug, c.Description, c.Category, c.Difficulty, c.Points, c.Status,
		examples, constraints, testCases, questions, requirements, c.CreatedByID}

	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("challenge with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgChallengeRepository.Create: %w", err)
	}
	return nil
}

func (r *pgChallengeRepository) Update(ctx context.Context, tx *sql.Tx, c *model.Challenge) error {
	examples, err := marshalPayload(c.Examples)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Update marshal examples: %w", err)
	}
	constraints, err := marshalPayload(c.Constraints)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Update marshal constraints: %w", err)
	}
	testCases, err := marshalPayload(c.TestCases)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Update marshal test cases: %w", err)
	}
	questions, err := marshalPayload(c.Questions)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Update marshal questions: %w", err)
	}
	requirements, err := marshalPayload(c.Requirements)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Update marshal requirements: %w", err)
	}

	query := `UPDATE challenges SET
	              title = $1, slug = $2, description = $3, category = $4, difficulty = $5,
	              points = $6, status = $7, examples = $8, constraints = $9, test_cases = $10,
	              questions = $11, requirements = $12, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $13`
	args := []interface{}{c.Title, c.Slug, c.Description, c.Category, c.Difficulty, c.Points, c.Status,
		examples, constraints, testCases, questions, requirements, c.ID}

	var res sql.Result
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, args...)
	} else {
		res, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Delete does not cascade: submissions and solved/in-progress entries
// referencing the challenge are left dangling.
func (r *pgChallengeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM challenges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgChallengeRepository.Delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgChallengeRepository) FindByID(ctx context.Context, id string) (*model.Challenge, error) {
	query := `SELECT id, title, slug, description, category, difficulty, points, status,
	              examples, constraints, test_cases, questions, requirements, created_by, created_at, updated_at
	          FROM challenges WHERE id = $1`
	c := &model.Challenge{}
	var examples, constraints, testCases, questions, requirements []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.Slug, &c.Description, &c.Category, &c.Difficulty, &c.Points, &c.Status,
		&examples, &constraints, &testCases, &questions, &requirements, &c.CreatedByID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgChallengeRepository.FindByID: %w", err)
	}
	if err := unmarshalChallengePayload(c, examples, constraints, testCases, questions, requirements); err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.FindByID: %w", err)
	}
	return c, nil
}

func unmarshalChallengePayload(c *model.Challenge, examples, constraints, testCases, questions, requirements []byte) error {
	if len(examples) > 0 {
		if err := json.Unmarshal(examples, &c.Examples); err != nil {
			return fmt.Errorf("unmarshal examples: %w", err)
		}
	}
	if len(constraints) > 0 {
		if err := json.Unmarshal(constraints, &c.Constraints); err != nil {
			return fmt.Errorf("unmarshal constraints: %w", err)
		}
	}
	if len(testCases) > 0 {
		if err := json.Unmarshal(testCases, &c.TestCases); err != nil {
			return fmt.Errorf("unmarshal test cases: %w", err)
		}
	}
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &c.Questions); err != nil {
			return fmt.Errorf("unmarshal questions: %w", err)
		}
	}
	if len(requirements) > 0 {
		if err := json.Unmarshal(requirements, &c.Requirements); err != nil {
			return fmt.Errorf("unmarshal requirements: %w", err)
		}
	}
	return nil
}

func (r *pgChallengeRepository) List(ctx context.Context, category model.ChallengeCategory, status model.ChallengeStatus, searchTerm string) ([]model.Challenge, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, title, slug, description, category, difficulty, points, status, created_at, updated_at
	          FROM challenges`)

	var conditions []string
	var args []interface{}
	argID := 1

	if status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, status)
		argID++
	}
	if category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argID))
		args = append(args, category)
		argID++
	}
	if searchTerm != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", argID, argID+1))
		likeTerm := "%" + searchTerm + "%"
		args = append(args, likeTerm, likeTerm)
		argID += 2
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.List: %w", err)
	}
	defer rows.Close()

	challenges := []model.Challenge{}
	for rows.Next() {
		var c model.Challenge
		if err := rows.Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.Category, &c.Difficulty,
			&c.Points, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgChallengeRepository.List scan: %w", err)
		}
		challenges = append(challenges, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgChallengeRepository.List rows.Err: %w", err)
	}
	return challenges, nil
}
