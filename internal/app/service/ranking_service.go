package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"challengehub/internal/domain/model"
	"challengehub/internal/domain/repository"
	"challengehub/internal/platform/config"
	"challengehub/internal/platform/logging"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultRankingsLimit = 100

type RankingService struct {
	userRepo repository.UserRepository
	rdb      *redis.Client // nil disables the rankings cache
}

func NewRankingService(userRepo repository.UserRepository, rdb *redis.Client) *RankingService {
	return &RankingService{userRepo: userRepo, rdb: rdb}
}

// RecomputeRanks reassigns every user's rank from the current scores:
// score descending, name ascending on ties, rank = 1-based position.
// Full recomputation on every score-changing event, O(users) writes.
func (s *RankingService) RecomputeRanks(ctx context.Context, tx *sql.Tx) error {
	users, err := s.userRepo.ListForRanking(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to load users for ranking: %w", err)
	}
	for i := range users {
		if err := s.userRepo.UpdateRank(ctx, tx, users[i].ID, i+1); err != nil {
			return fmt.Errorf("failed to update rank for user %s: %w", users[i].ID, err)
		}
	}
	logging.L.Info("Ranks recomputed", zap.Int("users", len(users)))
	return nil
}

func rankingsCacheKey(limit int) string {
	return fmt.Sprintf("rankings:top:%d", limit)
}

func (s *RankingService) GetRankings(ctx context.Context, limit int) ([]model.RankingEntry, error) {
	if limit <= 0 {
		limit = DefaultRankingsLimit
	}

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, rankingsCacheKey(limit)).Bytes()
		if err == nil {
			var entries []model.RankingEntry
			if err := json.Unmarshal(cached, &entries); err == nil {
				return entries, nil
			}
			// Corrupt cache entry, fall through to the database
		}
	}

	entries, err := s.userRepo.GetRankings(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(entries); err == nil {
			ttl := time.Duration(config.AppConfig.RankingsCacheTTLSeconds) * time.Second
			if err := s.rdb.Set(ctx, rankingsCacheKey(limit), data, ttl).Err(); err != nil {
				logging.L.Warn("Failed to cache rankings", zap.Error(err))
			}
		}
	}
	return entries, nil
}

// InvalidateCache drops cached rankings; called after a successful rank
// recomputation commit.
func (s *RankingService) InvalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	iter := s.rdb.Scan(ctx, 0, "rankings:top:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			logging.L.Warn("Failed to invalidate rankings cache key", zap.String("key", iter.Val()), zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		logging.L.Warn("Rankings cache invalidation scan failed", zap.Error(err))
	}
}
