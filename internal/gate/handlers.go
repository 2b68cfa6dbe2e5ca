package gate

import (
	"errors"
	"log"
	"net/http"

	"outingpass/internal/api"
)

type Handlers struct {
	Service Service
}

type VerifyRequest struct {
	Code string `json:"code" validate:"required"`
}

func (h Handlers) Verify(w http.ResponseWriter, r *http.Request) {
	staff := api.StaffFromContext(r.Context())
	if staff == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing staff identity")
		return
	}

	var req VerifyRequest
	if !api.DecodeAndValidate(w, r, &req) {
		return
	}

	pass, err := h.Service.Verify(r.Context(), req.Code, staff.Username)
	switch {
	case err == nil:
		api.WriteJSON(w, http.StatusOK, pass)
	case errors.Is(err, ErrMalformedCode):
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	case errors.Is(err, ErrInvalidCode):
		api.WriteError(w, http.StatusNotFound, "INVALID_CODE", err.Error())
	default:
		log.Printf("gate verify failed actor=%s err=%v", staff.Username, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
