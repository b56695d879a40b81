package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
)

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) NewTicker(time.Duration) Ticker {
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

func (f *fakeClock) ticker() *fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tickers) == 0 {
		return nil
	}
	return f.tickers[len(f.tickers)-1]
}

func (f *fakeClock) tickerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

// Step advances the clock by d and delivers one tick. It reports whether the
// countdown goroutine took the tick.
func (f *fakeClock) Step(d time.Duration) bool {
	f.Advance(d)
	t := f.ticker()
	if t == nil {
		return false
	}
	return t.tick(f.Now())
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

func (t *fakeTicker) tick(now time.Time) bool {
	select {
	case t.c <- now:
		return true
	case <-t.stopped:
		return false
	case <-time.After(time.Second):
		return false
	}
}

type fakeLoader struct {
	questions []model.Question
	err       error
	calls     int
}

func (f *fakeLoader) Load(context.Context, int64) ([]model.Question, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

type fakeStore struct {
	mu     sync.Mutex
	inputs []model.CreateSubmissionInput
	errs   []error
	block  chan struct{}
}

func (f *fakeStore) CreateSubmission(_ context.Context, in model.CreateSubmissionInput) (*model.Submission, error) {
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)

	var err error
	if len(f.errs) > 0 {
		err = f.errs[0]
		f.errs = f.errs[1:]
	}
	if err != nil {
		return nil, err
	}
	return &model.Submission{
		ID:                   int64(len(f.inputs)),
		ExamID:               in.ExamID,
		UserID:               in.UserID,
		Score:                in.Score,
		SolveDurationMinutes: in.SolveDurationMinutes,
	}, nil
}

func (f *fakeStore) calls() []model.CreateSubmissionInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.CreateSubmissionInput, len(f.inputs))
	copy(out, f.inputs)
	return out
}

type fakeIdentity struct {
	id  uuid.UUID
	err error
}

func (f fakeIdentity) CurrentUserID(context.Context) (uuid.UUID, error) {
	return f.id, f.err
}

type fakeCheckpoint struct {
	mu      sync.Mutex
	started time.Time
	answers map[int64]int64
	err     error
}

func (f *fakeCheckpoint) Begin(_ context.Context, now time.Time) (time.Time, map[int64]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return time.Time{}, nil, f.err
	}
	if f.started.IsZero() {
		f.started = now
	}
	out := make(map[int64]int64, len(f.answers))
	for k, v := range f.answers {
		out[k] = v
	}
	return f.started, out, nil
}

func (f *fakeCheckpoint) Record(questionID, optionID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return
	}
	if f.answers == nil {
		f.answers = make(map[int64]int64)
	}
	f.answers[questionID] = optionID
}

func (f *fakeCheckpoint) snapshot() (time.Time, map[int64]int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64]int64, len(f.answers))
	for k, v := range f.answers {
		out[k] = v
	}
	return f.started, out
}

var errStoreDown = errors.New("connection refused")

// question builds a question whose options are numbered id*10+1.. and whose
// correct option is the one at correct (-1 for none).
func question(id int64, options int, correct ...int) model.Question {
	q := model.Question{ID: id, ExamID: 1, QuestionText: "q"}
	for i := 0; i < options; i++ {
		o := model.Option{ID: id*10 + int64(i+1), QuestionID: id, OptionText: "o"}
		for _, c := range correct {
			if c == i {
				o.IsCorrect = true
			}
		}
		q.Options = append(q.Options, o)
	}
	return q
}

func intPtr(v int) *int { return &v }
