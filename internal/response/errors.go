package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrLearnerAccessOnly ErrCode = "LEARNER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Exam session ──────────────────────────────────────────────────
	ErrExamNotAvailable     ErrCode = "EXAM_NOT_AVAILABLE"
	ErrSessionNotFound      ErrCode = "SESSION_NOT_FOUND"
	ErrQuestionsUnavailable ErrCode = "QUESTIONS_UNAVAILABLE"
	ErrUnknownQuestion      ErrCode = "UNKNOWN_QUESTION"
	ErrUnknownOption        ErrCode = "UNKNOWN_OPTION"
	ErrSubmissionFailed     ErrCode = "SUBMISSION_FAILED"
	ErrRetryNotAllowed      ErrCode = "RETRY_NOT_ALLOWED"
	ErrUnauthenticated      ErrCode = "UNAUTHENTICATED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "رمز المصادقة مطلوب."
	case ErrTokenInvalid:
		return "رمز المصادقة غير صالح."
	case ErrTokenExpired:
		return "انتهت صلاحية رمز المصادقة."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrLearnerAccessOnly:
		return "هذا المورد متاح للطلاب فقط."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "فشل التحقق. يرجى مراجعة المدخلات."
	case ErrInvalidID:
		return "صيغة المعرف غير صالحة."
	case ErrInvalidPayload:
		return "محتوى الطلب غير صالح."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "المورد غير موجود."

	// ─── Exam session ──────────────────────────────────────────────────
	case ErrExamNotAvailable:
		return "هذا الاختبار غير متاح حاليًا."
	case ErrSessionNotFound:
		return "لا توجد جلسة اختبار نشطة."
	case ErrQuestionsUnavailable:
		return "تعذر تحميل أسئلة الاختبار."
	case ErrUnknownQuestion:
		return "السؤال لا ينتمي إلى هذا الاختبار."
	case ErrUnknownOption:
		return "الخيار لا ينتمي إلى هذا السؤال."
	case ErrSubmissionFailed:
		return "حدث خطأ أثناء تسليم الاختبار. يمكنك إعادة المحاولة."
	case ErrRetryNotAllowed:
		return "لا يمكن إعادة محاولة التسليم الآن."
	case ErrUnauthenticated:
		return "تعذر التحقق من هوية الطالب. يرجى تسجيل الدخول مرة أخرى."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "طلبات كثيرة جدًا. يرجى المحاولة لاحقًا."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "حدث خطأ داخلي في الخادم."
	default:
		return "حدث خطأ غير متوقع."
	}
}
