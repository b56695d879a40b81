package config

import (
	"fmt"
)

type CacheKeyStruct struct {
	// LeaderboardTotalScore is the sorted set of learner ids by summed score.
	LeaderboardTotalScore string
}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{LeaderboardTotalScore: "leaderboard:total_score"}
}

// ExamQuestionsKey returns the cache key for an exam's question set
func (r *CacheKeyStruct) ExamQuestionsKey(examID int64) string {
	return fmt.Sprintf("exam:%d:questions", examID)
}

// SessionStartKey returns the key holding a learner's session start instant (unix ms)
func (r *CacheKeyStruct) SessionStartKey(examID int64, learnerID string) string {
	return fmt.Sprintf("exam:%d:session:%s:started_at", examID, learnerID)
}

// SessionAnswersKey returns the hash of a learner's answers, question id to option id
func (r *CacheKeyStruct) SessionAnswersKey(examID int64, learnerID string) string {
	return fmt.Sprintf("exam:%d:session:%s:answers", examID, learnerID)
}

var CacheKey = NewCacheKeyStruct()
