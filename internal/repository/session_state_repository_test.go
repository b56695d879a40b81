package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseAnswers(t *testing.T) {
	got := parseAnswers(map[string]string{
		"1":   "11",
		"2":   "22",
		"x":   "31",
		"4":   "forty",
		"500": "5001",
	})

	assert.Equal(t, map[int64]int64{1: 11, 2: 22, 500: 5001}, got)
	assert.Empty(t, parseAnswers(nil))
}

func TestSessionStateRepository_RedisDown(t *testing.T) {
	repo := NewSessionStateRepository(unreachableRedis(t))
	ctx := context.Background()
	learner := uuid.New()

	_, err := repo.ClaimStart(ctx, 1, learner, time.Now(), time.Hour)
	assert.Error(t, err)
	_, err = repo.Answers(ctx, 1, learner)
	assert.Error(t, err)
	assert.Error(t, repo.SaveAnswer(ctx, 1, learner, 1, 11, time.Hour))
	assert.Error(t, repo.Clear(ctx, 1, learner))
}
