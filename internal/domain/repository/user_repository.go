package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"challengehub/internal/common"
	"challengehub/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error

	AddScore(ctx context.Context, tx *sql.Tx, userID string, delta int) error
	ListForRanking(ctx context.Context, tx *sql.Tx) ([]model.User, error)
	UpdateRank(ctx context.Context, tx *sql.Tx, userID string, rank int) error
	GetRankings(ctx context.Context, limit int) ([]model.RankingEntry, error)

	IsChallengeSolved(ctx context.Context, userID, challengeID string) (bool, error)
	UpsertChallengeProgress(ctx context.Context, tx *sql.Tx, userID, challengeID string) error
	AddSolvedChallenge(ctx context.Context, tx *sql.Tx, userID, challengeID string, score int) error
	RemoveChallengeProgress(ctx context.Context, tx *sql.Tx, userID, challengeID string) error
	GetSolvedChallenges(ctx context.Context, userID string) ([]model.SolvedChallenge, error)
	GetChallengeProgress(ctx context.Context, userID string) ([]model.ChallengeProgress, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, name, email, hashed_password, role, score, rank)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.HashedPassword, user.Role, user.Score, user.Rank)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT id, name, email, hashed_password, role, score, rank, created_at, updated_at
	          FROM users WHERE email = $1`
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.HashedPassword, &user.Role, &user.Score, &user.Rank, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT id, name, email, hashed_password, role, score, rank, created_at, updated_at
	          FROM users WHERE id = $1`
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.HashedPassword, &user.Role, &user.Score, &user.Rank, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	query := `SELECT id, name, email, role, score, rank, created_at, updated_at
	          FROM users ORDER BY score DESC, name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListAll: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Score, &u.Rank, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgUserRepository.ListAll scan: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListAll rows.Err: %w", err)
	}
	return users, nil
}

func (r *pgUserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET name = $1, email = $2, role = $3, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $4`
	res, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.Role, user.ID)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdateProfile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) AddScore(ctx context.Context, tx *sql.Tx, userID string, delta int) error {
	query := `UPDATE users SET score = score + $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, delta, userID)
	} else {
		_, err = r.db.ExecContext(ctx, query, delta, userID)
	}
	if err != nil {
		return fmt.Errorf("pgUserRepository.AddScore: %w", err)
	}
	return nil
}

// ListForRanking returns every user in the deterministic ranking order:
// score descending, ties broken by name ascending.
func (r *pgUserRepository) ListForRanking(ctx context.Context, tx *sql.Tx) ([]model.User, error) {
	query := `SELECT id, name, score FROM users ORDER BY score DESC, name ASC`
	var rows *sql.Rows
	var err error
	if tx != nil {
		rows, err = tx.QueryContext(ctx, query)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListForRanking: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Score); err != nil {
			return nil, fmt.Errorf("pgUserRepository.ListForRanking scan: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListForRanking rows.Err: %w", err)
	}
	return users, nil
}

func (r *pgUserRepository) UpdateRank(ctx context.Context, tx *sql.Tx, userID string, rank int) error {
	query := `UPDATE users SET rank = $1 WHERE id = $2`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, rank, userID)
	} else {
		_, err = r.db.ExecContext(ctx, query, rank, userID)
	}
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdateRank: %w", err)
	}
	return nil
}

func (r *pgUserRepository) GetRankings(ctx context.Context, limit int) ([]model.RankingEntry, error) {
	query := `
        SELECT u.id, u.name, u.score, u.rank, COUNT(sc.challenge_id) AS solved_count
        FROM users u
        LEFT JOIN user_solved_challenges sc ON sc.user_id = u.id
        WHERE u.role = $1
        GROUP BY u.id, u.name, u.score, u.rank
        ORDER BY u.score DESC, u.name ASC
        LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, model.RoleUser, limit)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.GetRankings: %w", err)
	}
	defer rows.Close()

	entries := []model.RankingEntry{}
	for rows.Next() {
		var e model.RankingEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.Score, &e.Rank, &e.SolvedCount); err != nil {
			return nil, fmt.Errorf("pgUserRepository.GetRankings scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.GetRankings rows.Err: %w", err)
	}
	return entries, nil
}

func (r *pgUserRepository) IsChallengeSolved(ctx context.Context, userID, challengeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_solved_challenges WHERE user_id = $1 AND challenge_id = $2)`
	var solved bool
	if err := r.db.QueryRowContext(ctx, query, userID, challengeID).Scan(&solved); err != nil {
		return false, fmt.Errorf("pgUserRepository.IsChallengeSolved: %w", err)
	}
	return solved, nil
}

// UpsertChallengeProgress inserts an in-progress entry, or refreshes
// last_attempt on an existing one. started_at is immutable once set.
func (r *pgUserRepository) UpsertChallengeProgress(ctx context.Context, tx *sql.Tx, userID, challengeID string) error {
	query := `INSERT INTO user_challenge_progress (user_id, challenge_id, started_at, last_attempt)
	          VALUES ($1, $2, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	          ON CONFLICT (user_id, challenge_id)
	          DO UPDATE SET last_attempt = CURRENT_TIMESTAMP`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, userID, challengeID)
	} else {
		_, err = r.db.ExecContext(ctx, query, userID, challengeID)
	}
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpsertChallengeProgress: %w", err)
	}
	return nil
}

func (r *pgUserRepository) AddSolvedChallenge(ctx context.Context, tx *sql.Tx, userID, challengeID string, score int) error {
	query := `INSERT INTO user_solved_challenges (user_id, challenge_id, solved_at, score)
	          VALUES ($1, $2, CURRENT_TIMESTAMP, $3)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, userID, challengeID, score)
	} else {
		_, err = r.db.ExecContext(ctx, query, userID, challengeID, score)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("challenge already solved by user: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.AddSolvedChallenge: %w", err)
	}
	return nil
}

func (r *pgUserRepository) RemoveChallengeProgress(ctx context.Context, tx *sql.Tx, userID, challengeID string) error {
	query := `DELETE FROM user_challenge_progress WHERE user_id = $1 AND challenge_id = $2`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, userID, challengeID)
	} else {
		_, err = r.db.ExecContext(ctx, query, userID, challengeID)
	}
	if err != nil {
		return fmt.Errorf("pgUserRepository.RemoveChallengeProgress: %w", err)
	}
	return nil
}

func (r *pgUserRepository) GetSolvedChallenges(ctx context.Context, userID string) ([]model.SolvedChallenge, error) {
	query := `
        SELECT sc.challenge_id, sc.solved_at, sc.score,
               c.title, c.category, c.difficulty, c.points
        FROM user_solved_challenges sc
        LEFT JOIN challenges c ON sc.challenge_id = c.id
        WHERE sc.user_id = $1
        ORDER BY sc.solved_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.GetSolvedChallenges: %w", err)
	}
	defer rows.Close()

	solved := []model.SolvedChallenge{}
	for rows.Next() {
		var s model.SolvedChallenge
		if err := rows.Scan(&s.ChallengeID, &s.SolvedAt, &s.Score,
			&s.ChallengeTitle, &s.ChallengeCategory, &s.ChallengeDifficulty, &s.ChallengePoints); err != nil {
			return nil, fmt.Errorf("pgUserRepository.GetSolvedChallenges scan: %w", err)
		}
		solved = append(solved, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.GetSolvedChallenges rows.Err: %w", err)
	}
	return solved, nil
}

func (r *pgUserRepository) GetChallengeProgress(ctx context.Context, userID string) ([]model.ChallengeProgress, error) {
	query := `
        SELECT cp.challenge_id, cp.started_at, cp.last_attempt,
               c.title, c.category, c.difficulty, c.points
        FROM user_challenge_progress cp
        LEFT JOIN challenges c ON cp.challenge_id = c.id
        WHERE cp.user_id = $1
        ORDER BY cp.last_attempt DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.GetChallengeProgress: %w", err)
	}
	defer rows.Close()

	progress := []model.ChallengeProgress{}
	for rows.Next() {
		var p model.ChallengeProgress
		if err := rows.Scan(&p.ChallengeID, &p.StartedAt, &p.LastAttempt,
			&p.ChallengeTitle, &p.ChallengeCategory, &p.ChallengeDifficulty, &p.ChallengePoints); err != nil {
			return nil, fmt.Errorf("pgUserRepository.GetChallengeProgress scan: %w", err)
		}
		progress = append(progress, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.GetChallengeProgress rows.Err: %w", err)
	}
	return progress, nil
}
