package ban

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"outingpass/internal/adminaction"
	"outingpass/internal/api"
	"outingpass/internal/events"
)

// BanStore is what the staff and student handlers need from ban storage.
type BanStore interface {
	Store
	List(ctx context.Context) ([]Ban, error)
	Insert(ctx context.Context, b Ban) (*Ban, error)
	Delete(ctx context.Context, id string) error
}

type Handlers struct {
	// DB receives the admin action log; nil skips it.
	DB       events.Execer
	Bans     BanStore
	Location *time.Location
	Now      func() time.Time
}

func (h Handlers) today() time.Time {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	if h.Location == nil {
		return now()
	}
	return now().In(h.Location)
}

func (h Handlers) logAction(r *http.Request, action adminaction.ActionType, target, reason, actor string, meta any) {
	if h.DB == nil {
		return
	}
	if err := adminaction.Insert(r.Context(), h.DB, action, target, reason, actor, meta); err != nil {
		log.Printf("admin action log failed action=%s err=%v", action, err)
	}
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Bans.List(r.Context())
	if err != nil {
		log.Printf("ban list failed err=%v", err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type CreateRequest struct {
	StudentEmail string `json:"studentEmail" validate:"required,email"`
	FromDate     string `json:"fromDate" validate:"required,datetime=2006-01-02"`
	TillDate     string `json:"tillDate" validate:"required,datetime=2006-01-02"`
	Reason       string `json:"reason" validate:"max=500"`
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
	if req.TillDate < req.FromDate {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "tillDate must not be before fromDate")
		return
	}

	b, err := h.Bans.Insert(r.Context(), Ban{
		StudentEmail: strings.TrimSpace(req.StudentEmail),
		FromDate:     req.FromDate,
		TillDate:     req.TillDate,
		Reason:       strings.TrimSpace(req.Reason),
		BannedBy:     staff.Username,
	})
	if err != nil {
		log.Printf("ban insert failed email=%s err=%v", req.StudentEmail, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	h.logAction(r, adminaction.ActionIssueBan, b.StudentEmail, b.Reason, staff.Username,
		map[string]any{"banId": b.ID, "from": b.FromDate, "till": b.TillDate})
	api.WriteJSON(w, http.StatusCreated, b)
}

func (h Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	staff := api.StaffFromContext(r.Context())
	if staff == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing staff identity")
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.Bans.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "ban not found")
			return
		}
		log.Printf("ban delete failed id=%s err=%v", id, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	h.logAction(r, adminaction.ActionLiftBan, id, "", staff.Username, nil)
	w.WriteHeader(http.StatusNoContent)
}

// Mine reports the signed-in student's ban standing.
func (h Handlers) Mine(w http.ResponseWriter, r *http.Request) {
	st := api.StudentFromContext(r.Context())
	if st == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing student identity")
		return
	}
	standing, err := Service{Store: h.Bans}.Standing(r.Context(), st.Email, h.today())
	if err != nil {
		log.Printf("ban standing failed email=%s err=%v", st.Email, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusOK, standing)
}
