package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrNotAuthenticated   ErrCode = "NOT_AUTHENTICATED"
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly  ErrCode = "STUDENT_ACCESS_ONLY"
	ErrDelegateAccessOnly ErrCode = "DELEGATE_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation       ErrCode = "VALIDATION_ERROR"
	ErrInvalidID        ErrCode = "INVALID_ID"
	ErrInvalidTimeRange ErrCode = "INVALID_TIME_RANGE"
	ErrStartInPast      ErrCode = "START_IN_PAST"
	ErrSessionOverlap   ErrCode = "SESSION_OVERLAP"
	ErrNotReschedulable ErrCode = "SESSION_NOT_RESCHEDULABLE"
	ErrCourseNotFound   ErrCode = "COURSE_NOT_FOUND"

	// ─── Attendance ────────────────────────────────────────────────────
	ErrSessionNotFound ErrCode = "SESSION_NOT_FOUND"
	ErrInvalidToken    ErrCode = "INVALID_TOKEN"
	ErrSessionExpired  ErrCode = "SESSION_EXPIRED"
	ErrSessionNotOpen  ErrCode = "SESSION_NOT_OPEN"
	ErrNotEnrolled     ErrCode = "NOT_ENROLLED"
	ErrAlreadyMarked   ErrCode = "ALREADY_MARKED"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrNotAuthenticated:
		return "Authentication is required."
	case ErrInvalidCredentials:
		return "Invalid credentials."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrSessionInvalidated:
		return "Your login session has ended. Please sign in again."
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrDelegateAccessOnly:
		return "This resource is restricted to class delegates."
	case ErrValidation:
		return "The request payload is invalid."
	case ErrInvalidID:
		return "The identifier in the request is invalid."
	case ErrInvalidTimeRange:
		return "The start time must be before the end time."
	case ErrStartInPast:
		return "The session must start in the future."
	case ErrSessionOverlap:
		return "The session overlaps an existing session for this class."
	case ErrNotReschedulable:
		return "Only a session that has not started yet can be rescheduled."
	case ErrCourseNotFound:
		return "The course does not exist."
	case ErrSessionNotFound:
		return "The session does not exist."
	case ErrInvalidToken:
		return "The session token is incorrect."
	case ErrSessionExpired:
		return "The session has already closed."
	case ErrSessionNotOpen:
		return "The session is not open yet."
	case ErrNotEnrolled:
		return "You are not enrolled in this course."
	case ErrAlreadyMarked:
		return "Attendance has already been marked for this session."
	case ErrNotFound:
		return "The requested resource was not found."
	case ErrRateLimitExceeded:
		return "Too many requests. Please slow down."
	case ErrInternal:
		return "An unexpected error occurred."
	default:
		return "Unknown error."
	}
}
