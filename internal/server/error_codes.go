package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidJSON     = 1001
	ErrCodeRequestTooLarge = 1002
	ErrCodeInvalidQuery    = 1003
	ErrCodeInvalidClaimID  = 1004
	ErrCodeMissingRequired = 1009

	// Domain state (2xxx)
	ErrCodeClaimNotFound     = 2001
	ErrCodeThumbnailNotFound = 2003
	ErrCodeBlocked           = 2201

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeResourceExhausted = 3003

	// Internal/system (4xxx)
	ErrCodeInternal          = 4001
	ErrCodeStoreFailure      = 4002
	ErrCodeDaemonUnavailable = 4101
	ErrCodeDaemonError       = 4102
	ErrCodeDaemonTimeout     = 4103
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 404:
		return ErrCodeClaimNotFound
	case 429:
		return ErrCodeResourceExhausted
	case 451:
		return ErrCodeBlocked
	case 500:
		return ErrCodeInternal
	case 502:
		return ErrCodeDaemonError
	case 504:
		return ErrCodeDaemonTimeout
	default:
		return 0
	}
}
