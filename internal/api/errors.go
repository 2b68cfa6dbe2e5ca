package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteErrorDetails(w, status, code, message, nil)
}

func WriteErrorDetails(w http.ResponseWriter, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Error: APIError{Code: code, Message: message, Details: details},
	})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeAndValidate decodes a JSON body into dst and runs struct validation.
// On failure it writes a VALIDATION_FAILED response and returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", ValidationMessage(err))
		return false
	}
	return true
}

// ValidationMessage flattens validator errors into one readable line.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if field != "" {
			field = strings.ToLower(field[:1]) + field[1:]
		}
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "email":
			parts = append(parts, field+" must be an email")
		case "datetime":
			parts = append(parts, fmt.Sprintf("%s must match %s", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
