package admin

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"outingpass/internal/adminaction"
	"outingpass/internal/api"
	"outingpass/internal/directory"
	"outingpass/internal/events"
)

const maxSheetBytes = 10 << 20

type Directory interface {
	UpsertStudent(ctx context.Context, s directory.Student) error
	CreateStaff(ctx context.Context, s directory.Staff) (*directory.Staff, error)
}

type Handlers struct {
	Directory   Directory
	Actions     events.Execer
	EmailDomain string
}

func (h Handlers) logAction(r *http.Request, action adminaction.ActionType, target, actor string, meta any) {
	if h.Actions == nil {
		return
	}
	if err := adminaction.Insert(r.Context(), h.Actions, action, target, "", actor, meta); err != nil {
		log.Printf("admin action log failed action=%s err=%v", action, err)
	}
}

type importResult struct {
	Imported int                  `json:"imported"`
	Skipped  []directory.RowError `json:"skipped"`
}

// ImportStudents upserts student profiles from an uploaded .xlsx sheet
// (multipart field "file"). Bad rows are reported and skipped.
func (h Handlers) ImportStudents(w http.ResponseWriter, r *http.Request) {
	staff := api.StaffFromContext(r.Context())
	if staff == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing staff identity")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSheetBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing file")
		return
	}
	defer file.Close()

	students, rowErrs, err := directory.ParseStudentSheet(file, h.EmailDomain)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	res := importResult{Skipped: rowErrs}
	if res.Skipped == nil {
		res.Skipped = []directory.RowError{}
	}
	for _, s := range students {
		if err := h.Directory.UpsertStudent(r.Context(), s); err != nil {
			log.Printf("student import failed email=%s err=%v", s.Email, err)
			api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
			return
		}
		res.Imported++
	}

	h.logAction(r, adminaction.ActionImportStudents, "students", staff.Username,
		map[string]any{"imported": res.Imported, "skipped": len(res.Skipped)})
	log.Printf("student import user=%s imported=%d skipped=%d", staff.Username, res.Imported, len(res.Skipped))
	api.WriteJSON(w, http.StatusOK, res)
}

type CreateStaffRequest struct {
	Username string   `json:"username" validate:"required,min=3,max=64"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Password string   `json:"password" validate:"required,min=8,max=128"`
	Role     string   `json:"role" validate:"required,oneof=staff warden superadmin gate"`
	Hostels  []string `json:"hostels"`
}

func (h Handlers) CreateStaff(w http.ResponseWriter, r *http.Request) {
	actor := api.StaffFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing staff identity")
		return
	}

	var req CreateStaffRequest
	if !api.DecodeAndValidate(w, r, &req) {
		return
	}
	role, err := directory.ParseRole(req.Role)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	hash, err := directory.HashPassword(req.Password)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	var hostels []string
	for _, hn := range req.Hostels {
		if hn = strings.TrimSpace(hn); hn != "" {
			hostels = append(hostels, hn)
		}
	}

	created, err := h.Directory.CreateStaff(r.Context(), directory.Staff{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Role:         role,
		Hostels:      hostels,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, directory.ErrUsernameTaken) {
			api.WriteError(w, http.StatusConflict, "CONFLICT", "username already exists")
			return
		}
		log.Printf("create staff failed user=%s err=%v", req.Username, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	h.logAction(r, adminaction.ActionCreateStaff, created.Username, actor.Username, map[string]any{"role": created.Role})
	api.WriteJSON(w, http.StatusCreated, created)
}
