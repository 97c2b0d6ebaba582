package apperror

// ErrorCode is the general, system-level category of an error.
type ErrorCode string

const (
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeRateLimited      ErrorCode = "RATE_LIMITED"
	CodeInternalError    ErrorCode = "INTERNAL_SERVER_ERROR"
)

// BusinessCode is the specific reason behind an error.
type BusinessCode string

const (
	BusinessCodeInvalidFormat     BusinessCode = "INVALID_FORMAT"
	BusinessCodeMissingField      BusinessCode = "MISSING_FIELD"
	BusinessCodeUnsupportedMedia  BusinessCode = "UNSUPPORTED_MEDIA"
	BusinessCodeMediaTooLarge     BusinessCode = "MEDIA_TOO_LARGE"
	BusinessCodePostNotFound      BusinessCode = "POST_NOT_FOUND"
	BusinessCodeRouteNotFound     BusinessCode = "ROUTE_NOT_FOUND"
	BusinessCodeMediaUploadFailed BusinessCode = "MEDIA_UPLOAD_FAILED"
	BusinessCodeStorageFailed     BusinessCode = "STORAGE_FAILED"
)
