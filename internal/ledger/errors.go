package ledger

import "github.com/yigit/transcriptledger/internal/pkg/apperrors"

// Ledger rejections. Each wraps one of the apperrors sentinels so the HTTP
// layer can map it without knowing the ledger taxonomy.
var (
	// Unauthorized
	ErrUnauthorized         = apperrors.NewCustomError(apperrors.ErrPermissionDenied, "Caller lacks the required role").WithCode("UNAUTHORIZED")
	ErrNotIssuer            = apperrors.NewCustomError(apperrors.ErrPermissionDenied, "Caller is not the issuing institution").WithCode("UNAUTHORIZED")
	ErrInstitutionInactive  = apperrors.NewCustomError(apperrors.ErrPermissionDenied, "Institution is not active").WithCode("UNAUTHORIZED")
	ErrCallerNotInstitution = apperrors.NewCustomError(apperrors.ErrPermissionDenied, "Caller is not a registered institution").WithCode("UNAUTHORIZED")

	// DuplicateRegistration
	ErrInstitutionAlreadyRegistered = apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "Institution already registered").WithCode("DUPLICATE_REGISTRATION")
	ErrStudentAlreadyRegistered     = apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "Student already registered").WithCode("DUPLICATE_REGISTRATION")

	// NotFound
	ErrInstitutionNotFound  = apperrors.NewCustomError(apperrors.ErrResourceNotFound, "Institution does not exist").WithCode("NOT_FOUND")
	ErrTranscriptNotFound   = apperrors.NewCustomError(apperrors.ErrResourceNotFound, "Transcript does not exist").WithCode("NOT_FOUND")
	ErrStudentNotRegistered = apperrors.NewCustomError(apperrors.ErrResourceNotFound, "Student not registered").WithCode("NOT_FOUND")

	// InvalidInput
	ErrEmptyField         = apperrors.NewCustomError(apperrors.ErrValidationFailed, "Required field cannot be empty").WithCode("INVALID_INPUT")
	ErrInvalidCredits     = apperrors.NewCustomError(apperrors.ErrValidationFailed, "Credits must be between 1 and 100").WithCode("INVALID_INPUT")
	ErrInvalidGrade       = apperrors.NewCustomError(apperrors.ErrValidationFailed, "Unrecognized grade").WithCode("INVALID_INPUT")
	ErrInvalidAddress     = apperrors.NewCustomError(apperrors.ErrValidationFailed, "Invalid address").WithCode("INVALID_INPUT")
	ErrInvalidDate        = apperrors.NewCustomError(apperrors.ErrValidationFailed, "Invalid date").WithCode("INVALID_INPUT")
	ErrInvalidRole        = apperrors.NewCustomError(apperrors.ErrValidationFailed, "Invalid role").WithCode("INVALID_INPUT")
	ErrLastAdmin          = apperrors.NewCustomError(apperrors.ErrValidationFailed, "Cannot revoke the last admin").WithCode("INVALID_INPUT")
	ErrAlreadyDeactivated = apperrors.NewCustomError(apperrors.ErrValidationFailed, "Institution already deactivated").WithCode("INVALID_INPUT")

	// AlreadyVerified
	ErrAlreadyVerified = apperrors.NewCustomError(apperrors.ErrAlreadyVerified, "Transcript already verified").WithCode("ALREADY_VERIFIED")

	// Journal
	ErrJournalCorrupt  = apperrors.NewCustomError(apperrors.ErrConflict, "Journal chain is corrupt").WithCode("JOURNAL_CORRUPT")
	ErrJournalConflict = apperrors.NewCustomError(apperrors.ErrConflict, "Journal head moved").WithCode("JOURNAL_CONFLICT")
)
