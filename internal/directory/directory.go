package directory

import (
	"errors"
	"strings"
)

var (
	ErrNotFound      = errors.New("directory: not found")
	ErrUsernameTaken = errors.New("directory: username already exists")
)

type Role string

const (
	RoleStaff      Role = "staff"
	RoleWarden     Role = "warden"
	RoleSuperadmin Role = "superadmin"
	RoleGate       Role = "gate"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleStaff:
		return RoleStaff, nil
	case RoleWarden:
		return RoleWarden, nil
	case RoleSuperadmin:
		return RoleSuperadmin, nil
	case RoleGate:
		return RoleGate, nil
	}
	return "", errors.New("unknown role: " + s)
}

type Student struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	HostelName  string `json:"hostelName"`
	RoomNumber  string `json:"roomNumber"`
	ParentEmail string `json:"parentEmail"`
	ParentPhone string `json:"parentPhone"`
}

type Staff struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Role         Role     `json:"role"`
	Hostels      []string `json:"hostels"`
	PasswordHash string   `json:"-"`
}

// CanActOn reports whether the staff member may handle bookings of a hostel.
// Superadmins act on every hostel; everyone else only on assigned ones.
func (s *Staff) CanActOn(hostel string) bool {
	if s == nil {
		return false
	}
	if s.Role == RoleSuperadmin {
		return true
	}
	for _, h := range s.Hostels {
		if strings.EqualFold(h, hostel) {
			return true
		}
	}
	return false
}

// Scope returns the hostels a listing should be restricted to; nil means all.
// Only superadmins get nil; anyone without assigned hostels sees none.
func (s *Staff) Scope() []string {
	if s != nil && s.Role == RoleSuperadmin {
		return nil
	}
	if s == nil || s.Hostels == nil {
		return []string{}
	}
	return s.Hostels
}

func (s *Staff) HasRole(roles ...Role) bool {
	if s == nil {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}
