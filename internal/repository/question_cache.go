package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/config"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/session"
)

// CachedQuestionStore serves question sets from Redis, falling back to the
// database on a miss and writing the result back. Redis failures never fail
// a load; they only cost a database round trip.
type CachedQuestionStore struct {
	db  session.QuestionStore
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewCachedQuestionStore wraps db with a Redis cache of the given TTL.
func NewCachedQuestionStore(db session.QuestionStore, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedQuestionStore {
	return &CachedQuestionStore{
		db:  db,
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "question_cache").Logger(),
	}
}

// ListByExam returns the exam's question set.
func (s *CachedQuestionStore) ListByExam(ctx context.Context, examID int64) ([]model.Question, error) {
	key := config.CacheKey.ExamQuestionsKey(examID)

	data, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var questions []model.Question
		if err := json.Unmarshal(data, &questions); err == nil {
			return questions, nil
		}
		s.log.Warn().Int64("exam_id", examID).Msg("Corrupt cached question set, reloading")
	case errors.Is(err, redis.Nil):
	default:
		s.log.Warn().Err(err).Int64("exam_id", examID).Msg("Question cache unavailable, reading database")
	}

	questions, err := s.db.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	if err := s.store(ctx, key, questions); err != nil {
		s.log.Warn().Err(err).Int64("exam_id", examID).Msg("Failed to cache question set")
	}
	return questions, nil
}

// Invalidate drops the cached question set of an exam.
func (s *CachedQuestionStore) Invalidate(ctx context.Context, examID int64) error {
	return s.rdb.Del(ctx, config.CacheKey.ExamQuestionsKey(examID)).Err()
}

// Prewarm loads the question sets of exams into Redis. Failures are logged
// and skipped.
func (s *CachedQuestionStore) Prewarm(ctx context.Context, examIDs []int64) int {
	warmed := 0
	for _, id := range examIDs {
		questions, err := s.db.ListByExam(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Int64("exam_id", id).Msg("Failed to load exam, skipping")
			continue
		}
		if err := s.store(ctx, config.CacheKey.ExamQuestionsKey(id), questions); err != nil {
			s.log.Warn().Err(err).Int64("exam_id", id).Msg("Failed to warm exam, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().Int("warmed", warmed).Int("total", len(examIDs)).Msg("Prewarming complete")
	return warmed
}

func (s *CachedQuestionStore) store(ctx context.Context, key string, questions []model.Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	return s.rdb.Set(ctx, key, data, s.ttl).Err()
}
