package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/config"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/database"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/logger"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/model"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/repository"
	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/service"
)

// seedQuestions is a short Arabic grammar quiz. The first option is correct.
var seedQuestions = []struct {
	text    string
	options []string
}{
	{"ما إعراب كلمة (الطالبُ) في جملة: نجح الطالبُ؟", []string{"فاعل مرفوع", "مفعول به منصوب", "مبتدأ مرفوع", "خبر مرفوع"}},
	{"ما جمع كلمة (كتاب)؟", []string{"كُتُب", "كتابات", "أكتاب", "كتيبات"}},
	{"ما نوع الفعل (اكتبْ)؟", []string{"فعل أمر", "فعل ماضٍ", "فعل مضارع", "اسم فعل"}},
	{"ما ضد كلمة (الصدق)؟", []string{"الكذب", "الأمانة", "الوفاء", "الإخلاص"}},
	{"ما علامة نصب جمع المؤنث السالم؟", []string{"الكسرة", "الفتحة", "الياء", "الألف"}},
	{"أي الكلمات التالية اسم إشارة؟", []string{"هذا", "الذي", "هو", "مَن"}},
	{"ما مفرد كلمة (مدارس)؟", []string{"مدرسة", "مدرس", "دراسة", "درس"}},
	{"ما الحرف الناسخ في جملة: إنَّ العلمَ نورٌ؟", []string{"إنَّ", "العلم", "نور", "لا يوجد"}},
}

func main() {
	var (
		name       string
		duration   int
		totalGrade float64
		tokenTTL   time.Duration
		appendTo   int64
	)
	flag.StringVar(&name, "name", "اختبار النحو التجريبي", "Exam name")
	flag.IntVar(&duration, "duration", 15, "Time limit in minutes, 0 for untimed")
	flag.Float64Var(&totalGrade, "grade", 100, "Total grade")
	flag.DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "Lifetime of the printed learner token")
	flag.Int64Var(&appendTo, "exam", 0, "Add the questions to this existing exam instead of creating one")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)

	var exam *model.Exam
	if appendTo > 0 {
		fmt.Println("=== Adding questions to exam ===")
		exam, err = examRepo.GetByID(ctx, appendTo)
		if err != nil {
			log.Fatal().Err(err).Int64("exam_id", appendTo).Msg("Failed to load exam")
		}
		fmt.Printf("Using exam %q with ID: %d\n", exam.Name, exam.ID)
	} else {
		fmt.Println("=== Seeding exam ===")
		start := time.Now().Add(-time.Minute)
		end := start.Add(7 * 24 * time.Hour)
		exam = &model.Exam{
			Name:       name,
			StartDate:  &start,
			EndDate:    &end,
			TotalGrade: totalGrade,
		}
		if duration > 0 {
			exam.DurationMinutes = &duration
		}
		if err := examRepo.Create(ctx, exam); err != nil {
			log.Fatal().Err(err).Msg("Failed to create exam")
		}
		fmt.Printf("Created exam %q with ID: %d\n", exam.Name, exam.ID)
	}

	successCount := 0
	for _, sq := range seedQuestions {
		q := &model.Question{ExamID: exam.ID, QuestionText: sq.text}
		for i, text := range sq.options {
			q.Options = append(q.Options, model.Option{OptionText: text, IsCorrect: i == 0})
		}
		if err := questionRepo.Create(ctx, q); err != nil {
			fmt.Printf("Error creating question %q: %v\n", sq.text, err)
			continue
		}
		successCount++
	}
	fmt.Printf("Added %d/%d questions.\n", successCount, len(seedQuestions))

	if appendTo > 0 && successCount > 0 {
		invalidateQuestions(ctx, cfg, log, questionRepo, exam.ID)
	}

	// Learners authenticate against an external identity provider; a
	// locally signed token lets the exam be taken without it.
	learnerID := uuid.New()
	token, err := service.NewAuthService(cfg).GenerateLearnerToken(learnerID, tokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign learner token")
	}
	fmt.Printf("\nLearner %s token:\n%s\n", learnerID, token)
}

// invalidateQuestions drops the cached question set so running servers load
// the new questions on the next session start.
func invalidateQuestions(ctx context.Context, cfg *config.Config, log zerolog.Logger, db *repository.QuestionRepository, examID int64) {
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, cached question set may be stale until it expires")
		return
	}
	defer rdb.Close()

	cache := repository.NewCachedQuestionStore(db, rdb, cfg.QuestionCacheTTL, log)
	if err := cache.Invalidate(ctx, examID); err != nil {
		log.Warn().Err(err).Int64("exam_id", examID).Msg("Failed to invalidate question cache")
		return
	}
	fmt.Printf("Invalidated cached question set of exam %d.\n", examID)
}
