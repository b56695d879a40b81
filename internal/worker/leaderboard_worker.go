package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/config"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
)

const (
	LeaderboardBatchSize    = 50
	LeaderboardBatchTimeout = 2 * time.Second
	LeaderboardPollTimeout  = 1 * time.Second
)

// LeaderboardWorker folds submission events into the leaderboard sorted set.
type LeaderboardWorker struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewLeaderboardWorker(rdb *redis.Client, log zerolog.Logger) *LeaderboardWorker {
	return &LeaderboardWorker{
		rdb: rdb,
		log: log.With().Str("component", "leaderboard_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

// Start blocks until ctx is done, then flushes what it holds.
func (w *LeaderboardWorker) Start(ctx context.Context) {
	w.log.Info().Msg("LeaderboardWorker started")

	batch := make([]model.SubmissionEvent, 0, LeaderboardBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= LeaderboardBatchSize || time.Since(lastFlush) >= LeaderboardBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			w.flushSafe(flushCtx, batch)
			cancel()
			return

		default:
			item, err := w.rdb.BLPop(ctx, LeaderboardPollTimeout, config.WorkerKey.SubmissionEventsQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
					// Back off so a Redis outage does not spin the loop.
					time.Sleep(LeaderboardPollTimeout)
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			ev, ok := decodeEvent(item[1])
			if !ok {
				w.log.Error().Str("payload", item[1]).Msg("Invalid submission event")
				continue
			}

			batch = append(batch, ev)
		}
	}
}

// decodeEvent parses a queued event. Events without a learner are rejected.
func decodeEvent(raw string) (model.SubmissionEvent, bool) {
	var ev model.SubmissionEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		return ev, false
	}
	if ev.UserID == uuid.Nil {
		return ev, false
	}
	return ev, true
}

// aggregate sums scores per learner so each learner costs one ZINCRBY.
func aggregate(batch []model.SubmissionEvent) map[uuid.UUID]float64 {
	totals := make(map[uuid.UUID]float64, len(batch))
	for _, ev := range batch {
		totals[ev.UserID] += float64(ev.Score)
	}
	return totals
}

// ----------------------------------------------------------------
// Pipelined ZINCRBY with requeue on failure
// ----------------------------------------------------------------

func (w *LeaderboardWorker) flushSafe(ctx context.Context, batch []model.SubmissionEvent) {
	if len(batch) == 0 {
		return
	}

	totals := aggregate(batch)
	pipe := w.rdb.TxPipeline()
	for userID, score := range totals {
		pipe.ZIncrBy(ctx, config.CacheKey.LeaderboardTotalScore, score, userID.String())
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("events", len(batch)).Msg("Leaderboard update failed, requeueing")
		w.requeue(batch)
		return
	}

	w.log.Debug().Int("events", len(batch)).Int("learners", len(totals)).Msg("Leaderboard updated")
}

// requeue pushes the batch back. It uses its own context so a cancelled
// worker does not lose events.
func (w *LeaderboardWorker) requeue(batch []model.SubmissionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	values := make([]any, 0, len(batch))
	for _, ev := range batch {
		raw, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		values = append(values, raw)
	}
	if err := w.rdb.RPush(ctx, config.WorkerKey.SubmissionEventsQueue, values...).Err(); err != nil {
		w.log.Error().Err(err).Int("events", len(values)).Msg("Requeue failed, events dropped")
	}
}
