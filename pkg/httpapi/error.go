package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorEnvelope standardizes JSON error responses. Message is meant to be
// shown to the user as is.
type ErrorEnvelope struct {
	Message   string            `json:"message"`
	Code      string            `json:"code"`
	RequestID string            `json:"request_id,omitempty"`
	Meta      map[string]string `json:"meta,omitempty"`
}

const (
	CodeInvalidUpload  = "RESHAPE_INVALID_UPLOAD"
	CodeUploadTooLarge = "RESHAPE_UPLOAD_TOO_LARGE"
	CodeUnreadableFile = "RESHAPE_UNREADABLE_FILE"
	CodeSchemaMismatch = "RESHAPE_SCHEMA_MISMATCH"
	CodeInternal       = "RESHAPE_INTERNAL"
)

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, requestID, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Meta:      meta,
	})
}

// SetAttachment marks the response as a downloadable file.
func SetAttachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
