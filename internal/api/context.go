package api

import (
	"context"

	"outingpass/internal/directory"
)

type ctxKey string

const (
	ctxKeyStaff   ctxKey = "staff"
	ctxKeyStudent ctxKey = "student"
)

// Student is the identity of a signed-in requester.
type Student struct {
	Email string
	Name  string
}

func WithStaff(ctx context.Context, s *directory.Staff) context.Context {
	return context.WithValue(ctx, ctxKeyStaff, s)
}

func StaffFromContext(ctx context.Context) *directory.Staff {
	s, _ := ctx.Value(ctxKeyStaff).(*directory.Staff)
	return s
}

func WithStudent(ctx context.Context, s *Student) context.Context {
	return context.WithValue(ctx, ctxKeyStudent, s)
}

func StudentFromContext(ctx context.Context) *Student {
	s, _ := ctx.Value(ctxKeyStudent).(*Student)
	return s
}
