package dto

import "net/http"

// Transport-level error codes. Domain codes come straight from the
// shared errors package and are returned unchanged.
const (
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeInvalidJSON = "INVALID_JSON"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps error codes to HTTP statuses. Conflicts on
// shared state map to 409; business rule rejections map to 422.
var errorCodeHTTPStatus = map[string]int{
	"NOT_FOUND": http.StatusNotFound,

	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"DUPLICATE_BILL":       http.StatusConflict,
	"ROOM_STATE_CONFLICT":  http.StatusConflict,

	"INVALID_INPUT":    http.StatusBadRequest,
	"INVALID_AMOUNT":   http.StatusBadRequest,
	"MISSING_EVIDENCE": http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	"INVALID_STATE":         http.StatusUnprocessableEntity,
	"INVALID_READING":       http.StatusUnprocessableEntity,
	"OUTSTANDING_BALANCE":   http.StatusUnprocessableEntity,
	"CONFIGURATION_MISSING": http.StatusUnprocessableEntity,

	"EVIDENCE_UPLOAD_FAILED": http.StatusBadGateway,

	ErrCodeInternal: http.StatusInternalServerError,
}

// HTTPStatus returns the status for an error code, defaulting to 500
// for codes the map does not know
func HTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
