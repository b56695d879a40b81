package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/config"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/session"
)

// ErrSessionNotFound is returned when the learner has no live session on the exam.
var ErrSessionNotFound = errors.New("session not found")

const (
	// stateGrace keeps a timed session's state past its deadline so a restart
	// within it still finalizes with the recorded answers.
	stateGrace = time.Hour

	// untimedStateTTL bounds the state of sessions without a time limit.
	untimedStateTTL = 24 * time.Hour

	stateWriteTimeout = 2 * time.Second
)

type sessionKey struct {
	examID    int64
	learnerID uuid.UUID
}

// SessionService keeps one live session controller per learner and exam.
type SessionService struct {
	exams     *ExamService
	auth      *AuthService
	loader    session.Loader
	store     session.SubmissionStore
	queue     Queue
	state     SessionStateStore
	clock     session.Clock
	retention time.Duration
	log       zerolog.Logger

	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	sessions map[sessionKey]*session.Controller
}

// NewSessionService creates a new SessionService. Finished sessions remain
// readable for retention before they are dropped. A nil state keeps sessions
// in memory only.
func NewSessionService(
	exams *ExamService,
	auth *AuthService,
	loader session.Loader,
	store session.SubmissionStore,
	queue Queue,
	state SessionStateStore,
	clock session.Clock,
	retention time.Duration,
	log zerolog.Logger,
) *SessionService {
	if clock == nil {
		clock = session.SystemClock()
	}
	base, cancel := context.WithCancel(context.Background())
	return &SessionService{
		exams:     exams,
		auth:      auth,
		loader:    loader,
		store:     store,
		queue:     queue,
		state:     state,
		clock:     clock,
		retention: retention,
		log:       log.With().Str("component", "session_service").Logger(),
		base:      base,
		cancel:    cancel,
		sessions:  make(map[sessionKey]*session.Controller),
	}
}

// Start opens a session for the caller on examID, or returns the one already
// running. The exam must be available to the learner.
func (s *SessionService) Start(ctx context.Context, claims *Claims, examID int64) (*session.Controller, error) {
	learnerID, err := claims.LearnerID()
	if err != nil {
		return nil, err
	}
	key := sessionKey{examID: examID, learnerID: learnerID}

	if ctrl := s.live(key); ctrl != nil {
		return ctrl, nil
	}

	exam, err := s.exams.Get(ctx, examID)
	if err != nil {
		return nil, err
	}
	avail, err := s.exams.Availability(ctx, learnerID, *exam, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if avail != model.AvailabilityAvailable {
		return nil, fmt.Errorf("%w: %s", ErrExamNotAvailable, avail)
	}

	s.mu.Lock()
	if ctrl := s.liveLocked(key); ctrl != nil {
		s.mu.Unlock()
		return ctrl, nil
	}
	log := s.log.With().Str("learner_id", learnerID.String()).Logger()
	deps := session.Deps{
		Loader:   s.loader,
		Store:    s.store,
		Identity: s.auth.Identity(claims),
		Clock:    s.clock,
		Log:      log,
	}
	if s.state != nil {
		deps.Checkpoint = &checkpoint{
			state: s.state,
			base:  s.base,
			key:   key,
			ttl:   stateTTL(*exam),
			log:   log,
		}
	}
	ctrl := session.NewController(s.base, *exam, deps)
	s.sessions[key] = ctrl
	s.wg.Add(1)
	s.mu.Unlock()

	go s.watch(key, ctrl, learnerID)

	if err := ctrl.Load(ctx); err != nil {
		return ctrl, err
	}
	return ctrl, nil
}

// Get returns the learner's session on examID.
func (s *SessionService) Get(learnerID uuid.UUID, examID int64) (*session.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.sessions[sessionKey{examID: examID, learnerID: learnerID}]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ctrl, nil
}

// Answer records an answer on the learner's session.
func (s *SessionService) Answer(learnerID uuid.UUID, examID, questionID, optionID int64) (session.View, error) {
	ctrl, err := s.Get(learnerID, examID)
	if err != nil {
		return session.View{}, err
	}
	if err := ctrl.Answer(questionID, optionID); err != nil {
		return session.View{}, err
	}
	return ctrl.View(), nil
}

// Finish finalizes the learner's session and returns the resulting view.
func (s *SessionService) Finish(ctx context.Context, learnerID uuid.UUID, examID int64) (session.View, error) {
	ctrl, err := s.Get(learnerID, examID)
	if err != nil {
		return session.View{}, err
	}
	err = ctrl.Finish(ctx)
	return ctrl.View(), err
}

// Retry re-attempts a failed submission.
func (s *SessionService) Retry(ctx context.Context, learnerID uuid.UUID, examID int64) (session.View, error) {
	ctrl, err := s.Get(learnerID, examID)
	if err != nil {
		return session.View{}, err
	}
	err = ctrl.Retry(ctx)
	return ctrl.View(), err
}

// Active returns the number of registered sessions.
func (s *SessionService) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Shutdown closes every session and waits for their watchers. Sessions still
// in progress are abandoned; in-flight writes are cancelled.
func (s *SessionService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ctrls := make([]*session.Controller, 0, len(s.sessions))
	for _, c := range s.sessions {
		ctrls = append(ctrls, c)
	}
	s.mu.Unlock()

	for _, c := range ctrls {
		c.Close()
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info().Int("sessions", len(ctrls)).Msg("Sessions closed")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SessionService) live(key sessionKey) *session.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLocked(key)
}

// liveLocked returns the registered controller unless it ended without a
// submission, in which case the learner may start over.
func (s *SessionService) liveLocked(key sessionKey) *session.Controller {
	ctrl, ok := s.sessions[key]
	if !ok {
		return nil
	}
	select {
	case <-ctrl.Done():
		if ctrl.State() != session.StateCompleted {
			delete(s.sessions, key)
			return nil
		}
	default:
	}
	return ctrl
}

func (s *SessionService) watch(key sessionKey, ctrl *session.Controller, learnerID uuid.UUID) {
	defer s.wg.Done()

	select {
	case <-ctrl.Done():
	case <-s.base.Done():
		return
	}

	view := ctrl.View()
	if view.State == session.StateCompleted {
		s.clearState(key)
		if view.Result != nil && !view.Result.AlreadySubmitted {
			s.publish(ctrl.Exam().ID, learnerID, view.Result)
		}
	}

	timer := time.NewTimer(s.retention)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-s.base.Done():
	}

	s.mu.Lock()
	if s.sessions[key] == ctrl {
		delete(s.sessions, key)
	}
	s.mu.Unlock()
	ctrl.Close()
}

func (s *SessionService) publish(examID int64, learnerID uuid.UUID, res *session.Result) {
	ev := model.SubmissionEvent{
		ExamID:      examID,
		UserID:      learnerID,
		Score:       res.Score,
		SubmittedAt: s.clock.Now(),
	}
	if res.SubmissionID != nil {
		ev.SubmissionID = *res.SubmissionID
	}

	raw, err := json.Marshal(ev)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal submission event")
		return
	}
	if err := s.queue.RPush(s.base, config.WorkerKey.SubmissionEventsQueue, raw).Err(); err != nil {
		s.log.Error().Err(err).Int64("exam_id", examID).Msg("Failed to queue submission event")
	}
}

func (s *SessionService) clearState(key sessionKey) {
	if s.state == nil {
		return
	}
	ctx, cancel := context.WithTimeout(s.base, stateWriteTimeout)
	defer cancel()
	if err := s.state.Clear(ctx, key.examID, key.learnerID); err != nil {
		s.log.Warn().Err(err).Int64("exam_id", key.examID).Msg("Failed to clear session state")
	}
}

func stateTTL(exam model.Exam) time.Duration {
	if limit := exam.TimeLimit(); limit > 0 {
		return limit + stateGrace
	}
	return untimedStateTTL
}

// checkpoint adapts a SessionStateStore to one session.
type checkpoint struct {
	state SessionStateStore
	base  context.Context
	key   sessionKey
	ttl   time.Duration
	log   zerolog.Logger
}

func (c *checkpoint) Begin(ctx context.Context, now time.Time) (time.Time, map[int64]int64, error) {
	startedAt, err := c.state.ClaimStart(ctx, c.key.examID, c.key.learnerID, now, c.ttl)
	if err != nil {
		return time.Time{}, nil, err
	}
	answers, err := c.state.Answers(ctx, c.key.examID, c.key.learnerID)
	if err != nil {
		// The start instant is what keeps the deadline; answers are best effort.
		c.log.Warn().Err(err).Msg("Failed to restore answers")
		answers = nil
	}
	return startedAt, answers, nil
}

func (c *checkpoint) Record(questionID, optionID int64) {
	ctx, cancel := context.WithTimeout(c.base, stateWriteTimeout)
	defer cancel()
	if err := c.state.SaveAnswer(ctx, c.key.examID, c.key.learnerID, questionID, optionID, c.ttl); err != nil {
		c.log.Warn().Err(err).Int64("question_id", questionID).Msg("Failed to save answer")
	}
}
