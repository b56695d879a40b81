package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/config"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
)

// LeaderboardService ranks learners by their summed score. The ranking lives
// in a Redis sorted set kept current by the leaderboard worker.
type LeaderboardService struct {
	rdb         *redis.Client
	submissions SubmissionReader
	maxSize     int
	log         zerolog.Logger
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(rdb *redis.Client, submissions SubmissionReader, maxSize int, log zerolog.Logger) *LeaderboardService {
	if maxSize < 1 {
		maxSize = 50
	}
	return &LeaderboardService{
		rdb:         rdb,
		submissions: submissions,
		maxSize:     maxSize,
		log:         log.With().Str("component", "leaderboard_service").Logger(),
	}
}

// Rebuild replaces the sorted set with totals computed from the database.
// Queued submission events are already counted in those totals and are
// discarded in the same transaction.
func (s *LeaderboardService) Rebuild(ctx context.Context) error {
	totals, err := s.submissions.TotalsByUser(ctx)
	if err != nil {
		return fmt.Errorf("load totals: %w", err)
	}

	key := config.CacheKey.LeaderboardTotalScore
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key, config.WorkerKey.SubmissionEventsQueue)
	if len(totals) > 0 {
		members := make([]redis.Z, len(totals))
		for i, t := range totals {
			members[i] = redis.Z{Score: t.TotalScore, Member: t.UserID.String()}
		}
		pipe.ZAdd(ctx, key, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rebuild leaderboard: %w", err)
	}

	s.log.Info().Int("learners", len(totals)).Msg("Leaderboard rebuilt")
	return nil
}

// Top returns the n best learners. n is clamped to the configured size.
func (s *LeaderboardService) Top(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if n < 1 || n > s.maxSize {
		n = s.maxSize
	}

	zs, err := s.rdb.ZRevRangeWithScores(ctx, config.CacheKey.LeaderboardTotalScore, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	return rankEntries(zs, s.log), nil
}

// rankEntries assigns dense ranks to members sorted by descending score:
// equal totals share a rank and the next distinct total takes the next rank.
func rankEntries(zs []redis.Z, log zerolog.Logger) []model.LeaderboardEntry {
	entries := make([]model.LeaderboardEntry, 0, len(zs))
	rank := 0
	var prev float64
	for _, z := range zs {
		member, _ := z.Member.(string)
		id, err := uuid.Parse(member)
		if err != nil {
			log.Warn().Str("member", member).Msg("Skipping malformed leaderboard member")
			continue
		}
		if len(entries) == 0 || z.Score != prev {
			rank++
			prev = z.Score
		}
		entries = append(entries, model.LeaderboardEntry{Rank: rank, UserID: id, TotalScore: z.Score})
	}
	return entries
}
