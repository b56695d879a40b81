package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/config"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/repository"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/session"
)

var testSecret = "test-secret"

var testConfigOtherSecret = config.Config{JWTSecret: "another-secret"}

func testConfig() *config.Config {
	return &config.Config{JWTSecret: testSecret, LeaderboardSize: 10}
}

type fakeExams struct {
	exams []model.Exam
}

func (f *fakeExams) GetByID(_ context.Context, id int64) (*model.Exam, error) {
	for i := range f.exams {
		if f.exams[i].ID == id {
			e := f.exams[i]
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeExams) ListAll(context.Context) ([]model.Exam, error) {
	return f.exams, nil
}

type fakeSubmissions struct {
	mu     sync.Mutex
	scores map[uuid.UUID]map[int64]int
	list   []model.LearnerSubmission
	limit  int
	offset int
}

func (f *fakeSubmissions) ScoresByUser(_ context.Context, userID uuid.UUID) (map[int64]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64]int)
	for k, v := range f.scores[userID] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeSubmissions) ListByUser(_ context.Context, _ uuid.UUID, limit, offset int) ([]model.LearnerSubmission, int, error) {
	f.limit, f.offset = limit, offset
	return f.list, len(f.list), nil
}

func (f *fakeSubmissions) TotalsByUser(context.Context) ([]model.LearnerTotal, error) {
	return nil, nil
}

type fakeQueue struct {
	mu     sync.Mutex
	pushed map[string][]string
}

func (q *fakeQueue) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pushed == nil {
		q.pushed = make(map[string][]string)
	}
	for _, v := range values {
		switch b := v.(type) {
		case []byte:
			q.pushed[key] = append(q.pushed[key], string(b))
		case string:
			q.pushed[key] = append(q.pushed[key], b)
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(q.pushed[key])))
	return cmd
}

func (q *fakeQueue) items(key string) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.pushed[key]...)
}

func ptrTime(t time.Time) *time.Time { return &t }
func ptrInt(v int) *int              { return &v }

// fakeClock is a manual session.Clock. Step advances time and delivers one
// tick to the newest ticker.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now().Truncate(time.Second)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) NewTicker(time.Duration) session.Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time), stopped: make(chan struct{})}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func (f *fakeClock) Step(d time.Duration) bool {
	f.Advance(d)
	f.mu.Lock()
	if len(f.tickers) == 0 {
		f.mu.Unlock()
		return false
	}
	t := f.tickers[len(f.tickers)-1]
	f.mu.Unlock()

	select {
	case t.c <- f.Now():
		return true
	case <-t.stopped:
		return false
	case <-time.After(time.Second):
		return false
	}
}

type fakeTicker struct {
	c        chan time.Time
	stopped  chan struct{}
	stopOnce sync.Once
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.stopOnce.Do(func() { close(t.stopped) })
}

// memState is an in-memory SessionStateStore.
type memState struct {
	mu      sync.Mutex
	starts  map[sessionKey]time.Time
	answers map[sessionKey]map[int64]int64
}

func newMemState() *memState {
	return &memState{
		starts:  make(map[sessionKey]time.Time),
		answers: make(map[sessionKey]map[int64]int64),
	}
}

func (m *memState) ClaimStart(_ context.Context, examID int64, learnerID uuid.UUID, now time.Time, _ time.Duration) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sessionKey{examID: examID, learnerID: learnerID}
	if at, ok := m.starts[key]; ok {
		return at, nil
	}
	m.starts[key] = now
	return now, nil
}

func (m *memState) SaveAnswer(_ context.Context, examID int64, learnerID uuid.UUID, questionID, optionID int64, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sessionKey{examID: examID, learnerID: learnerID}
	if m.answers[key] == nil {
		m.answers[key] = make(map[int64]int64)
	}
	m.answers[key][questionID] = optionID
	return nil
}

func (m *memState) Answers(_ context.Context, examID int64, learnerID uuid.UUID) (map[int64]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]int64)
	for k, v := range m.answers[sessionKey{examID: examID, learnerID: learnerID}] {
		out[k] = v
	}
	return out, nil
}

func (m *memState) Clear(_ context.Context, examID int64, learnerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sessionKey{examID: examID, learnerID: learnerID}
	delete(m.starts, key)
	delete(m.answers, key)
	return nil
}

func (m *memState) has(examID int64, learnerID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.starts[sessionKey{examID: examID, learnerID: learnerID}]
	return ok
}
