package services

// Error codes returned alongside HTTP status so clients can branch on the
// failure kind instead of parsing messages.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidState        = "INVALID_STATE"
	CodeEmptySelection      = "EMPTY_SELECTION"
	CodeCarUnavailable      = "CAR_UNAVAILABLE"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
	CodeFileTooLarge        = "FILE_TOO_LARGE"
	CodeCorruptFile         = "CORRUPT_FILE"
	CodeAlreadyVerified     = "ALREADY_VERIFIED"
	CodeConflict            = "CONFLICT"
	CodeBadRequest          = "BAD_REQUEST"
	CodeInternal            = "INTERNAL"
)

type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func errNotFound(message string) *ServiceError {
	return &ServiceError{StatusCode: 404, Code: CodeNotFound, Message: message}
}

func errInvalidState(message string) *ServiceError {
	return &ServiceError{StatusCode: 409, Code: CodeInvalidState, Message: message}
}

func errConflict() *ServiceError {
	return &ServiceError{StatusCode: 409, Code: CodeConflict, Message: "Order was modified concurrently, retry"}
}

func errBadRequest(code, message string) *ServiceError {
	return &ServiceError{StatusCode: 400, Code: code, Message: message}
}

func errInternal(message string) *ServiceError {
	return &ServiceError{StatusCode: 500, Code: CodeInternal, Message: message}
}
