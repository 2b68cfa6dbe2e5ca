package booking

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"outingpass/internal/api"
	"outingpass/internal/events"
	"outingpass/internal/guard"
)

type Timeline interface {
	ListByBooking(ctx context.Context, bookingID string) ([]events.Event, error)
}

type Handlers struct {
	Service  *Service
	Guard    *guard.Guard
	Timeline Timeline
}

// writeError maps domain errors onto the API envelope.
func writeError(w http.ResponseWriter, err error) {
	var (
		banned *BannedError
		ve     ValidationError
	)
	switch {
	case errors.As(err, &banned):
		api.WriteErrorDetails(w, http.StatusConflict, "BANNED", banned.Error(), banned.Standing)
	case errors.As(err, &ve):
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", ve.Message)
	case errors.Is(err, ErrReasonRequired):
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	case errors.Is(err, ErrNotFound):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
	case errors.Is(err, ErrInvalidTransition):
		api.WriteError(w, http.StatusConflict, "INVALID_STATE_TRANSITION", err.Error())
	case errors.Is(err, ErrActiveBooking):
		api.WriteError(w, http.StatusConflict, "ACTIVE_BOOKING_EXISTS", err.Error())
	case errors.Is(err, ErrNotDeletable):
		api.WriteError(w, http.StatusConflict, "INVALID_STATE_TRANSITION", err.Error())
	case errors.Is(err, ErrConflict):
		api.WriteError(w, http.StatusConflict, "CONFLICT", err.Error())
	default:
		log.Printf("booking request failed err=%v", err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func (h Handlers) ListMine(w http.ResponseWriter, r *http.Request) {
	st := api.StudentFromContext(r.Context())
	if st == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing student identity")
		return
	}
	items, err := h.Service.ListMine(r.Context(), st.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	st := api.StudentFromContext(r.Context())
	if st == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing student identity")
		return
	}
	var req CreateRequest
	if !api.DecodeAndValidate(w, r, &req) {
		return
	}
	b, err := h.Service.Create(r.Context(), Requester{Email: st.Email, Name: st.Name}, req)
	if err != nil {
		writeError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, b)
}

func (h Handlers) DeleteMine(w http.ResponseWriter, r *http.Request) {
	st := api.StudentFromContext(r.Context())
	if st == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing student identity")
		return
	}
	if err := h.Service.DeleteMine(r.Context(), st.Email, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// load fetches a booking and checks the staff member may see it.
func (h Handlers) load(w http.ResponseWriter, r *http.Request) (*Booking, bool) {
	staff := api.StaffFromContext(r.Context())
	if staff == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing staff identity")
		return nil, false
	}
	b, err := h.Service.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if !staff.CanActOn(b.HostelName) {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "booking belongs to another hostel")
		return nil, false
	}
	return b, true
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	b, ok := h.load(w, r)
	if !ok {
		return
	}
	api.WriteJSON(w, http.StatusOK, b)
}

func (h Handlers) Events(w http.ResponseWriter, r *http.Request) {
	b, ok := h.load(w, r)
	if !ok {
		return
	}
	items, err := h.Timeline.ListByBooking(r.Context(), b.ID)
	if err != nil {
		log.Printf("timeline failed booking=%s err=%v", b.ID, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type TransitionBody struct {
	Status string `json:"status" validate:"required,oneof=still_out confirmed rejected"`
	Reason string `json:"reason" validate:"max=500"`
}

// Transition handles a staff action button. The first press only arms the
// action; a second press inside the confirm window performs it.
func (h Handlers) Transition(w http.ResponseWriter, r *http.Request) {
	b, ok := h.load(w, r)
	if !ok {
		return
	}
	staff := api.StaffFromContext(r.Context())

	var body TransitionBody
	if !api.DecodeAndValidate(w, r, &body) {
		return
	}
	next, err := ParseStatus(body.Status)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status")
		return
	}

	if h.Guard != nil {
		decision, release, err := h.Guard.Begin(r.Context(), staff.Username, b.ID, string(next))
		if err != nil {
			log.Printf("guard failed actor=%s booking=%s err=%v", staff.Username, b.ID, err)
			api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
			return
		}
		switch decision {
		case guard.Armed:
			api.WriteError(w, http.StatusAccepted, "CONFIRMATION_REQUIRED", "press again to confirm")
			return
		case guard.Busy:
			api.WriteError(w, http.StatusTooManyRequests, "ACTION_IN_FLIGHT", "another action is still being processed")
			return
		}
		defer release()
	}

	res, err := h.Service.Transition(r.Context(), TransitionRequest{
		BookingID: b.ID,
		Next:      next,
		Actor:     Actor{Username: staff.Username, Role: staff.Role},
		Reason:    body.Reason,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}
