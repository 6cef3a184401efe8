package server

import (
	"encoding/json"
	"net/http"

	apperrors "vyapara-admin/internal/common/errors"
)

// errorBody is the wire shape of every failed response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps a tagged error onto its HTTP status and the shared error
// envelope. Untagged errors surface as transport failures.
func writeError(w http.ResponseWriter, err error) {
	se := apperrors.AsStandard(err)
	if se == nil {
		se = apperrors.NewTransportError("request", err)
	}
	writeJSON(w, statusFor(se.Code), errorBody{Error: errorDetail{
		Code:    string(se.Code),
		Message: se.Message,
		Field:   se.Field,
	}})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidationFailed:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodePermissionDenied:
		return http.StatusForbidden
	case apperrors.ErrCodeStatusConflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
