package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeStorageError       ErrorCode = "COMMON_012"
	ErrCodeExternalService    ErrorCode = "COMMON_013"
)

// Analysis-result ingestion error codes.
const (
	ErrCodeAnalysisPayloadMalformed ErrorCode = "ANL_001"
	ErrCodeAnalysisTextEmpty        ErrorCode = "ANL_002"
	ErrCodeAnalysisIdentityMissing  ErrorCode = "ANL_003"
)

// Annotation indexing error codes.
const (
	ErrCodeAnnotationRangeInvalid  ErrorCode = "ANN_001"
	ErrCodeAnnotationQuoteNotFound ErrorCode = "ANN_002"
)

// View-state persistence error codes.
const (
	ErrCodeViewStateKeyMissing   ErrorCode = "VST_001"
	ErrCodeViewStateDecodeFailed ErrorCode = "VST_002"
	ErrCodeViewStateStale        ErrorCode = "VST_003"
)

// Navigation / coordinator error codes.
const (
	ErrCodeCollectionUnknown    ErrorCode = "NAV_001"
	ErrCodeIndexOutOfBounds     ErrorCode = "NAV_002"
	ErrCodeGestureNotRecognized ErrorCode = "NAV_003"
)

// Scroll tracking error codes.
const (
	ErrCodeScrollSnapshotStale    ErrorCode = "SCR_001"
	ErrCodeScrollRestoreExhausted ErrorCode = "SCR_002"
)

// Feedback emission error codes.
const (
	ErrCodeFeedbackTypeInvalid ErrorCode = "FBK_001"
	ErrCodeFeedbackEmitFailed  ErrorCode = "FBK_002"
)

// Session error codes.
const (
	ErrCodeSessionNotFound ErrorCode = "SES_001"
)

// httpStatusByCode maps error codes to the HTTP status returned by the
// interfaces layer.  Codes absent from the map fall back to 500.
var httpStatusByCode = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusUnprocessableEntity,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodeAnalysisPayloadMalformed: http.StatusUnprocessableEntity,
	ErrCodeAnalysisTextEmpty:        http.StatusUnprocessableEntity,
	ErrCodeAnalysisIdentityMissing:  http.StatusUnprocessableEntity,

	ErrCodeAnnotationRangeInvalid:  http.StatusUnprocessableEntity,
	ErrCodeAnnotationQuoteNotFound: http.StatusNotFound,

	ErrCodeViewStateKeyMissing:   http.StatusBadRequest,
	ErrCodeViewStateDecodeFailed: http.StatusUnprocessableEntity,
	ErrCodeViewStateStale:        http.StatusGone,

	ErrCodeCollectionUnknown:    http.StatusBadRequest,
	ErrCodeIndexOutOfBounds:     http.StatusBadRequest,
	ErrCodeGestureNotRecognized: http.StatusBadRequest,

	ErrCodeFeedbackTypeInvalid: http.StatusBadRequest,
	ErrCodeFeedbackEmitFailed:  http.StatusBadGateway,

	ErrCodeSessionNotFound: http.StatusNotFound,
}

// HTTPStatus returns the HTTP status code associated with c.
func (c ErrorCode) HTTPStatus() int {
	if status, ok := httpStatusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}
