package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
)

// State is the lifecycle position of a session.
type State string

const (
	StateLoading    State = "LOADING"
	StateInProgress State = "IN_PROGRESS"
	StateFinalizing State = "FINALIZING"
	StateCompleted  State = "COMPLETED"
	StateFailed     State = "FAILED"
)

// Identity resolves the learner on whose behalf a submission is written.
type Identity interface {
	CurrentUserID(ctx context.Context) (uuid.UUID, error)
}

// SubmissionStore persists finished sessions. Implementations must return an
// error wrapping ErrSubmissionConflict when the learner already submitted.
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, in model.CreateSubmissionInput) (*model.Submission, error)
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Loader   Loader
	Store    SubmissionStore
	Identity Identity
	Clock    Clock
	Log      zerolog.Logger

	// Checkpoint is optional. Without it a session lives only in memory.
	Checkpoint Checkpoint
}

// Result is what a completed session reports.
type Result struct {
	Score                int    `json:"score"`
	TotalQuestions       int    `json:"total_questions"`
	CorrectCount         int    `json:"correct_count"`
	SolveDurationMinutes int    `json:"solve_duration_minutes"`
	AlreadySubmitted     bool   `json:"already_submitted"`
	SubmissionID         *int64 `json:"submission_id,omitempty"`
}

// View is a point-in-time copy of everything a client renders.
type View struct {
	ExamID           int64                      `json:"exam_id"`
	ExamName         string                     `json:"exam_name"`
	TotalGrade       float64                    `json:"total_grade"`
	State            State                      `json:"state"`
	RemainingSeconds *int                       `json:"remaining_seconds"`
	Questions        []model.QuestionForLearner `json:"questions"`
	Answers          map[int64]int64            `json:"answers"`
	Result           *Result                    `json:"result,omitempty"`
	Error            string                     `json:"error,omitempty"`
	Retryable        bool                       `json:"retryable"`
}

// Controller runs one learner through one exam. It owns the countdown, the
// answer ledger and the submission guard, and guarantees that a score is
// computed and persisted at most once however finalize is triggered.
type Controller struct {
	exam model.Exam
	deps Deps
	log  zerolog.Logger

	// base bounds deadline-triggered persistence.
	base context.Context

	mu        sync.Mutex
	state     State
	loading   bool
	questions []model.Question
	index     map[int64]model.Question
	startedAt time.Time
	countdown *Countdown
	frozen    *int
	result    *Result
	err       error
	retryable bool
	closed    bool

	ledger *AnswerLedger
	guard  *SubmissionGuard
	hub    *Hub

	done     chan struct{}
	doneOnce sync.Once
}

// NewController creates a session in the LOADING state. ctx bounds any
// persistence triggered by the deadline rather than by a caller.
func NewController(ctx context.Context, exam model.Exam, deps Deps) *Controller {
	if deps.Clock == nil {
		deps.Clock = SystemClock()
	}
	log := deps.Log.With().Int64("exam_id", exam.ID).Logger()

	return &Controller{
		exam:   exam,
		deps:   deps,
		log:    log,
		base:   ctx,
		state:  StateLoading,
		ledger: NewAnswerLedger(),
		guard:  NewSubmissionGuard(),
		hub:    NewHub(log),
		done:   make(chan struct{}),
	}
}

// Exam returns the exam the session runs.
func (c *Controller) Exam() model.Exam { return c.exam }

// Load fetches the question set and starts the session. On failure the session
// moves to FAILED and the error wraps ErrDataUnavailable.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateLoading || c.loading {
		c.mu.Unlock()
		return ErrAlreadyLoaded
	}
	c.loading = true
	c.mu.Unlock()

	questions, err := c.deps.Loader.Load(ctx, c.exam.ID)

	c.mu.Lock()
	if c.state != StateLoading {
		// Closed while loading.
		c.mu.Unlock()
		return ErrAlreadyLoaded
	}
	if err != nil {
		if !errors.Is(err, ErrDataUnavailable) {
			err = fmt.Errorf("%w: %w", ErrDataUnavailable, err)
		}
		c.state = StateFailed
		c.err = err
		c.retryable = false
		c.publishStateLocked()
		c.mu.Unlock()

		c.log.Error().Err(err).Msg("Failed to load question set")
		c.markDone()
		return err
	}

	c.mu.Unlock()

	startedAt, restored := c.begin(ctx)

	c.mu.Lock()
	if c.state != StateLoading {
		c.mu.Unlock()
		return ErrAlreadyLoaded
	}
	c.questions = questions
	c.index = make(map[int64]model.Question, len(questions))
	for _, q := range questions {
		c.index[q.ID] = q
	}
	resumed := 0
	for qid, oid := range restored {
		if q, ok := c.index[qid]; ok && q.HasOption(oid) {
			c.ledger.Record(qid, oid)
			resumed++
		}
	}
	c.startedAt = startedAt
	c.countdown = NewCountdown(c.exam.TimeLimit(), c.startedAt, c.deps.Clock)
	c.state = StateInProgress
	c.publishStateLocked()
	countdown := c.countdown
	c.mu.Unlock()

	c.log.Info().
		Int("questions", len(questions)).
		Int("resumed_answers", resumed).
		Time("started_at", startedAt).
		Dur("time_limit", c.exam.TimeLimit()).
		Msg("Session started")

	if countdown.Timed() && countdown.Remaining() == 0 {
		// Resumed after the deadline passed.
		c.onDeadline()
		return nil
	}
	countdown.Start(c.onTick, c.onDeadline)
	return nil
}

// begin resolves the start instant. A checkpoint failure degrades to an
// in-memory session starting now.
func (c *Controller) begin(ctx context.Context) (time.Time, map[int64]int64) {
	now := c.deps.Clock.Now()
	if c.deps.Checkpoint == nil {
		return now, nil
	}
	startedAt, answers, err := c.deps.Checkpoint.Begin(ctx, now)
	if err != nil {
		c.log.Warn().Err(err).Msg("Session checkpoint unavailable, starting in memory")
		return now, nil
	}
	if startedAt.After(now) {
		startedAt = now
	}
	return startedAt, answers
}

// Answer records optionID as the answer to questionID. Outside IN_PROGRESS the
// call is ignored and returns nil.
func (c *Controller) Answer(questionID, optionID int64) error {
	c.mu.Lock()
	if c.closed || c.state != StateInProgress {
		c.mu.Unlock()
		return nil
	}
	q, ok := c.index[questionID]
	if !ok {
		c.mu.Unlock()
		return ErrUnknownQuestion
	}
	if !q.HasOption(optionID) {
		c.mu.Unlock()
		return ErrUnknownOption
	}
	c.ledger.Record(questionID, optionID)
	c.mu.Unlock()

	if c.deps.Checkpoint != nil {
		c.deps.Checkpoint.Record(questionID, optionID)
	}
	return nil
}

// Finish finalizes the session on the learner's request. If another trigger
// already won, Finish does nothing and returns nil.
func (c *Controller) Finish(ctx context.Context) error {
	return c.finalize(ctx, TriggerManual)
}

// Retry re-attempts persistence after a retryable failure, reusing the sealed
// outcome. It returns ErrRetryNotAllowed in any other state.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateFailed || !c.retryable {
		c.mu.Unlock()
		return ErrRetryNotAllowed
	}
	fin, ok := c.guard.Sealed()
	if !ok {
		c.mu.Unlock()
		return ErrRetryNotAllowed
	}
	c.state = StateFinalizing
	c.err = nil
	c.retryable = false
	c.publishStateLocked()
	c.mu.Unlock()

	c.log.Info().Msg("Retrying submission")
	return c.persist(ctx, fin)
}

func (c *Controller) onTick(remaining time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress {
		return
	}
	secs := wholeSeconds(remaining)
	c.hub.Publish(Event{Type: EventTick, RemainingSeconds: &secs})
}

func (c *Controller) onDeadline() {
	c.log.Info().Msg("Deadline reached")
	if err := c.finalize(c.base, TriggerDeadline); err != nil {
		c.log.Warn().Err(err).Msg("Deadline finalize did not complete")
	}
}

func (c *Controller) finalize(ctx context.Context, trigger Trigger) error {
	c.mu.Lock()
	if c.closed || c.state != StateInProgress || !c.guard.TryFinalize(trigger) {
		c.mu.Unlock()
		return nil
	}

	c.countdown.Stop()
	if c.countdown.Timed() {
		secs := wholeSeconds(c.countdown.Remaining())
		c.frozen = &secs
	}
	c.state = StateFinalizing

	snapshot := c.ledger.Snapshot()
	finishedAt := c.deps.Clock.Now()
	fin, err := c.guard.Seal(func() Finalization {
		return Finalization{
			Outcome:              Score(c.questions, snapshot, c.exam.TotalGrade),
			SolveDurationMinutes: solveMinutes(c.startedAt, finishedAt),
			FinalizedAt:          finishedAt,
			Trigger:              trigger,
		}
	})
	c.publishStateLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	c.log.Info().
		Str("trigger", string(trigger)).
		Int("answered", len(snapshot)).
		Int("score", fin.Score).
		Msg("Session finalizing")

	return c.persist(ctx, fin)
}

// persist runs outside the controller lock. It has no timeout of its own.
func (c *Controller) persist(ctx context.Context, fin Finalization) error {
	learnerID, err := c.deps.Identity.CurrentUserID(ctx)
	if err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			err = fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
		c.fail(err, false)
		c.log.Error().Err(err).Msg("No learner identity at finalize")
		return err
	}

	sub, err := c.deps.Store.CreateSubmission(ctx, model.CreateSubmissionInput{
		ExamID:               c.exam.ID,
		UserID:               learnerID,
		Score:                fin.Score,
		SolveDurationMinutes: fin.SolveDurationMinutes,
	})
	switch {
	case errors.Is(err, ErrSubmissionConflict):
		c.log.Info().Str("learner_id", learnerID.String()).Msg("Submission already exists, treating as submitted")
		c.complete(fin, nil, true)
		return nil
	case err != nil:
		err = fmt.Errorf("%w: %w", ErrPersistFailed, err)
		c.fail(err, true)
		c.log.Error().Err(err).Msg("Failed to persist submission")
		return err
	default:
		c.complete(fin, sub, false)
		return nil
	}
}

func (c *Controller) complete(fin Finalization, sub *model.Submission, already bool) {
	res := &Result{
		Score:                fin.Score,
		TotalQuestions:       fin.TotalQuestions,
		CorrectCount:         fin.CorrectCount,
		SolveDurationMinutes: fin.SolveDurationMinutes,
		AlreadySubmitted:     already,
	}
	if sub != nil {
		id := sub.ID
		res.SubmissionID = &id
	}

	c.mu.Lock()
	if c.state != StateFinalizing {
		c.mu.Unlock()
		return
	}
	c.state = StateCompleted
	c.result = res
	c.publishStateLocked()
	c.mu.Unlock()

	c.log.Info().Int("score", res.Score).Int("correct", res.CorrectCount).Int("total", res.TotalQuestions).Msg("Session completed")
	c.markDone()
}

func (c *Controller) fail(err error, retryable bool) {
	c.mu.Lock()
	if c.state != StateFinalizing {
		c.mu.Unlock()
		return
	}
	c.state = StateFailed
	c.err = err
	c.retryable = retryable
	c.publishStateLocked()
	c.mu.Unlock()

	if !retryable {
		c.markDone()
	}
}

// View returns a snapshot of the session.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	v := View{
		ExamID:     c.exam.ID,
		ExamName:   c.exam.Name,
		TotalGrade: c.exam.TotalGrade,
		State:      c.state,
		Questions:  make([]model.QuestionForLearner, len(c.questions)),
		Answers:    c.ledger.Snapshot(),
		Retryable:  c.retryable,
	}
	for i, q := range c.questions {
		v.Questions[i] = q.ForLearner()
	}

	switch {
	case c.countdown == nil || !c.countdown.Timed():
	case c.state == StateInProgress:
		secs := wholeSeconds(c.countdown.Remaining())
		v.RemainingSeconds = &secs
	case c.frozen != nil:
		secs := *c.frozen
		v.RemainingSeconds = &secs
	}

	if c.result != nil {
		res := *c.result
		v.Result = &res
	}
	if c.err != nil {
		v.Error = c.err.Error()
	}
	return v
}

// Err returns the error held by a FAILED session.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe streams tick and state events until the session is closed.
func (c *Controller) Subscribe(buffer int) (<-chan Event, func()) {
	return c.hub.Subscribe(buffer)
}

// Done is closed once the session reaches a terminal state: COMPLETED, or
// FAILED without retry.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Close stops the countdown and releases subscribers. A session closed before
// finalizing is abandoned and never persisted.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	if c.countdown != nil {
		c.countdown.Stop()
	}
	if c.state == StateLoading {
		c.state = StateFailed
		c.err = context.Canceled
	}
	c.mu.Unlock()

	c.hub.Close()
	c.markDone()
}

func (c *Controller) publishStateLocked() {
	v := c.viewLocked()
	c.hub.Publish(Event{Type: EventState, View: &v})
}

func (c *Controller) markDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

func solveMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}
