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
)

type SubmissionRepository interface {
	Create(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	FindByID(ctx context.Context, id string) (*model.Submission, error)
	List(ctx context.Context, challengeID, userID string) ([]model.Submission, error)
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]model.Submission, error)
	UpdateReview(ctx context.Context, tx *sql.Tx, id string, status model.SubmissionStatus, score int, feedback *string) error
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) Create(ctx context.Context, tx *sql.Tx, s *model.Submission) error {
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Create marshal answers: %w", err)
	}

	query := `INSERT INTO submissions (id, user_id, challenge_id, submission_type, code, language,
	              github_link, notes, answers, status, score, feedback)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	args := []interface{}{s.ID, s.UserID, s.ChallengeID, s.Type, s.Code, s.Language,
		s.GithubLink, s.Notes, answers, s.Status, s.Score, s.Feedback}

	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}
	return nil
}

const submissionSelect = `
        SELECT s.id, s.user_id, s.challenge_id, s.submission_type, s.code, s.language,
               s.github_link, s.notes, s.answers, s.status, s.score, s.feedback,
               s.submitted_at, s.updated_at,
               u.name AS user_name, u.email AS user_email,
               c.title AS challenge_title, c.category AS challenge_category
        FROM submissions s
        LEFT JOIN users u ON s.user_id = u.id
        LEFT JOIN challenges c ON s.challenge_id = c.id`

func scanSubmission(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Submission, error) {
	s := &model.Submission{}
	var answers []byte
	err := scanner.Scan(
		&s.ID, &s.UserID, &s.ChallengeID, &s.Type, &s.Code, &s.Language,
		&s.GithubLink, &s.Notes, &answers, &s.Status, &s.Score, &s.Feedback,
		&s.SubmittedAt, &s.UpdatedAt,
		&s.UserName, &s.UserEmail, &s.ChallengeTitle, &s.ChallengeCategory,
	)
	if err != nil {
		return nil, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &s.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	return s, nil
}

func (r *pgSubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	query := submissionSelect + ` WHERE s.id = $1`
	s, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.FindByID: %w", err)
	}
	return s, nil
}

// List returns submissions newest first, optionally filtered by challenge
// and/or user (AND semantics). Display fields come from a read-time join.
func (r *pgSubmissionRepository) List(ctx context.Context, challengeID, userID string) ([]model.Submission, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(submissionSelect)

	var conditions []string
	var args []interface{}
	argID := 1

	if challengeID != "" {
		conditions = append(conditions, fmt.Sprintf("s.challenge_id = $%d", argID))
		args = append(args, challengeID)
		argID++
	}
	if userID != "" {
		conditions = append(conditions, fmt.Sprintf("s.user_id = $%d", argID))
		args = append(args, userID)
		argID++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY s.submitted_at DESC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.List: %w", err)
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.List scan: %w", err)
		}
		submissions = append(submissions, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.List rows.Err: %w", err)
	}
	return submissions, nil
}

func (r *pgSubmissionRepository) ListRecentByUser(ctx context.Context, userID string, limit int) ([]model.Submission, error) {
	query := submissionSelect + ` WHERE s.user_id = $1 ORDER BY s.submitted_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListRecentByUser: %w", err)
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListRecentByUser scan: %w", err)
		}
		submissions = append(submissions, *s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListRecentByUser rows.Err: %w", err)
	}
	return submissions, nil
}

func (r *pgSubmissionRepository) UpdateReview(ctx context.Context, tx *sql.Tx, id string, status model.SubmissionStatus, score int, feedback *string) error {
	query := `UPDATE submissions SET status = $1, score = $2, feedback = $3, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $4`
	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, status, score, feedback, id)
	} else {
		res, err = r.db.ExecContext(ctx, query, status, score, feedback, id)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.UpdateReview: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}
