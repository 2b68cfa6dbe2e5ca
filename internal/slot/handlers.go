package slot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"outingpass/internal/adminaction"
	"outingpass/internal/api"
	"outingpass/internal/events"
)

type Store interface {
	List(ctx context.Context) ([]Slot, error)
	Insert(ctx context.Context, s Slot) (*Slot, error)
	Delete(ctx context.Context, id string) error
}

type Handlers struct {
	// Actions receives the admin action log; nil skips it.
	Actions events.Execer
	Slots   Store
}

func (h Handlers) logAction(r *http.Request, action adminaction.ActionType, target, reason, actor string, meta any) {
	if h.Actions == nil {
		return
	}
	if err := adminaction.Insert(r.Context(), h.Actions, action, target, reason, actor, meta); err != nil {
		log.Printf("admin action log failed action=%s err=%v", action, err)
	}
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Slots.List(r.Context())
	if err != nil {
		log.Printf("slot list failed err=%v", err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	staff := api.StaffFromContext(r.Context())
	if staff == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing staff identity")
		return
	}

	var req CreateRequest
	if !api.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	s, err := h.Slots.Insert(r.Context(), Slot{
		Lab:       strings.TrimSpace(req.Lab),
		DayIndex:  *req.DayIndex,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    strings.TrimSpace(req.Reason),
		LockedBy:  staff.Username,
	})
	if err != nil {
		log.Printf("slot insert failed err=%v", err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	h.logAction(r, adminaction.ActionLockSlot, s.ID, s.Reason, staff.Username,
		map[string]any{"lab": s.Lab, "day": s.DayIndex, "range": fmt.Sprintf("%s-%s", s.StartTime, s.EndTime)})
	api.WriteJSON(w, http.StatusCreated, s)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	staff := api.StaffFromContext(r.Context())
	if staff == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing staff identity")
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.Slots.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "slot not found")
			return
		}
		log.Printf("slot delete failed id=%s err=%v", id, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	h.logAction(r, adminaction.ActionUnlockSlot, id, "", staff.Username, nil)
	w.WriteHeader(http.StatusNoContent)
}
