package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/config"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/middleware"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/repository"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/service"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/session"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

var nopLog = zerolog.New(io.Discard)

type fakeExams struct {
	exams []model.Exam
}

func (f *fakeExams) GetByID(_ context.Context, id int64) (*model.Exam, error) {
	for _, e := range f.exams {
		if e.ID == id {
			e := e
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
	scores map[int64]int
	list   []model.LearnerSubmission
	err    error
}

func (f *fakeSubmissions) ScoresByUser(context.Context, uuid.UUID) (map[int64]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[int64]int, len(f.scores))
	for k, v := range f.scores {
		out[k] = v
	}
	return out, nil
}

func (f *fakeSubmissions) ListByUser(_ context.Context, _ uuid.UUID, limit, offset int) ([]model.LearnerSubmission, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	if offset >= len(f.list) {
		return nil, len(f.list), nil
	}
	end := offset + limit
	if end > len(f.list) {
		end = len(f.list)
	}
	return f.list[offset:end], len(f.list), nil
}

func (f *fakeSubmissions) TotalsByUser(context.Context) ([]model.LearnerTotal, error) {
	return nil, nil
}

type fakeLoader struct {
	err error
}

func (l *fakeLoader) Load(context.Context, int64) ([]model.Question, error) {
	if l.err != nil {
		return nil, l.err
	}
	return []model.Question{
		{ID: 1, Options: []model.Option{{ID: 11, IsCorrect: true}, {ID: 12}}},
		{ID: 2, Options: []model.Option{{ID: 21}, {ID: 22, IsCorrect: true}}},
	}, nil
}

// fakeStore fails the first len(errs) writes with those errors.
type fakeStore struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (s *fakeStore) CreateSubmission(_ context.Context, in model.CreateSubmissionInput) (*model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}
	return &model.Submission{ID: 501, ExamID: in.ExamID, UserID: in.UserID, Score: in.Score}, nil
}

type nopQueue struct{}

func (nopQueue) RPush(_ context.Context, _ string, _ ...interface{}) *redis.IntCmd {
	return redis.NewIntResult(1, nil)
}

var errDown = errors.New("connection refused")

// testAPI is a learner API wired on fakes.
type testAPI struct {
	engine   *gin.Engine
	auth     *service.AuthService
	sessions *service.SessionService
	store    *fakeStore
	subs     *fakeSubmissions
	loader   *fakeLoader
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	now := time.Now()
	exams := &fakeExams{exams: []model.Exam{
		{ID: 1, Name: "Algebra", TotalGrade: 20},
		{ID: 2, Name: "Closed", TotalGrade: 20, EndDate: ptrTime(now.Add(-time.Hour))},
		{ID: 3, Name: "Later", TotalGrade: 20, StartDate: ptrTime(now.Add(time.Hour))},
	}}

	api := &testAPI{
		auth:   service.NewAuthService(&config.Config{JWTSecret: "handler-secret"}),
		store:  &fakeStore{},
		subs:   &fakeSubmissions{scores: map[int64]int{}},
		loader: &fakeLoader{},
	}
	examSvc := service.NewExamService(exams, api.subs, nopLog)
	api.sessions = service.NewSessionService(examSvc, api.auth, api.loader, api.store, nopQueue{}, nil, nil, time.Minute, nopLog)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = api.sessions.Shutdown(ctx)
	})

	learner := NewLearnerHandler(examSvc, nopLog)
	sess := NewSessionHandler(api.sessions, nopLog)
	ws := NewWSHandler(api.sessions, nopLog, nil)

	r := gin.New()
	g := r.Group("/api/v1/learner", middleware.RequireLearnerJWT(api.auth))
	g.GET("/exams", learner.Lobby)
	g.GET("/submissions", learner.Submissions)
	g.POST("/exams/:exam_id/session", sess.Start)
	g.GET("/exams/:exam_id/session", sess.View)
	g.POST("/exams/:exam_id/session/answers", sess.Answer)
	g.POST("/exams/:exam_id/session/finish", sess.Finish)
	g.POST("/exams/:exam_id/session/retry", sess.Retry)
	r.GET("/ws/v1/learner/exams/:exam_id/stream", middleware.RequireLearnerWSAuth(api.auth), ws.ExamStream)
	api.engine = r
	return api
}

func (a *testAPI) token(t *testing.T, learner uuid.UUID) string {
	t.Helper()
	tok, err := a.auth.GenerateLearnerToken(learner, time.Hour)
	require.NoError(t, err)
	return tok
}

func (a *testAPI) do(method, path, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func ptrTime(t time.Time) *time.Time { return &t }

// envelope decodes the standard response body.
type envelope[T any] struct {
	Data  T `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

var _ session.SubmissionStore = (*fakeStore)(nil)
