package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/config"
)

// SessionStateRepository keeps running-session state in Redis so it survives
// a server restart.
type SessionStateRepository struct {
	rdb *redis.Client
}

func NewSessionStateRepository(rdb *redis.Client) *SessionStateRepository {
	return &SessionStateRepository{rdb: rdb}
}

// ClaimStart records now as the session start unless one is already
// recorded, and returns the recorded instant.
func (r *SessionStateRepository) ClaimStart(ctx context.Context, examID int64, learnerID uuid.UUID, now time.Time, ttl time.Duration) (time.Time, error) {
	key := config.CacheKey.SessionStartKey(examID, learnerID.String())

	ok, err := r.rdb.SetNX(ctx, key, now.UnixMilli(), ttl).Result()
	if err != nil {
		return time.Time{}, fmt.Errorf("claim session start: %w", err)
	}
	if ok {
		return now, nil
	}

	ms, err := r.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		// Expired between the two calls.
		return now, r.rdb.Set(ctx, key, now.UnixMilli(), ttl).Err()
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read session start: %w", err)
	}
	return time.UnixMilli(ms), nil
}

// SaveAnswer stores one answer and extends the hash's lifetime to ttl.
func (r *SessionStateRepository) SaveAnswer(ctx context.Context, examID int64, learnerID uuid.UUID, questionID, optionID int64, ttl time.Duration) error {
	key := config.CacheKey.SessionAnswersKey(examID, learnerID.String())

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, strconv.FormatInt(questionID, 10), optionID)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Answers returns the stored answers. Malformed fields are skipped.
func (r *SessionStateRepository) Answers(ctx context.Context, examID int64, learnerID uuid.UUID) (map[int64]int64, error) {
	raw, err := r.rdb.HGetAll(ctx, config.CacheKey.SessionAnswersKey(examID, learnerID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("read session answers: %w", err)
	}
	return parseAnswers(raw), nil
}

// Clear removes the session's state once its submission is persisted.
func (r *SessionStateRepository) Clear(ctx context.Context, examID int64, learnerID uuid.UUID) error {
	id := learnerID.String()
	return r.rdb.Del(ctx,
		config.CacheKey.SessionStartKey(examID, id),
		config.CacheKey.SessionAnswersKey(examID, id),
	).Err()
}

func parseAnswers(raw map[string]string) map[int64]int64 {
	out := make(map[int64]int64, len(raw))
	for k, v := range raw {
		qid, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		oid, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[qid] = oid
	}
	return out
}
