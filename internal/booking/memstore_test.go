package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Store with the same conditional-update semantics
// as the Postgres repository.
type memStore struct {
	mu       sync.Mutex
	rows     map[string]*Booking
	seq      int
	applied  int
	applyErr error
	notes    map[string][]Notification
}

func newMemStore(bs ...*Booking) *memStore {
	m := &memStore{rows: map[string]*Booking{}}
	for _, b := range bs {
		cp := *b
		m.rows[b.ID] = &cp
	}
	return m
}

func (m *memStore) Get(_ context.Context, id string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) CodeExists(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.rows {
		if b.OTP == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ApplyTransition(_ context.Context, prev Status, b *Booking, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}
	cur, ok := m.rows[b.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Status != prev {
		return ErrConflict
	}
	cp := *b
	m.rows[b.ID] = &cp
	m.applied++
	return nil
}

func (m *memStore) Insert(_ context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.rows {
		if cur.Email == b.Email && cur.Status.Active() {
			return ErrActiveBooking
		}
	}
	m.seq++
	if b.ID == "" {
		b.ID = fmt.Sprintf("b%d", m.seq)
	}
	cp := *b
	m.rows[b.ID] = &cp
	return nil
}

func (m *memStore) ActiveFor(_ context.Context, email string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.rows {
		if b.Email == email && b.Status.Active() {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListByEmail(_ context.Context, email string) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Booking
	for _, b := range m.rows {
		if b.Email == email {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) DeleteWaiting(_ context.Context, id, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	if !ok || b.Email != email {
		return ErrNotFound
	}
	if b.Status != StatusWaiting {
		return ErrNotDeletable
	}
	delete(m.rows, id)
	return nil
}

func (m *memStore) RecordNotification(_ context.Context, bookingID, _ string, n Notification, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.notes == nil {
		m.notes = map[string][]Notification{}
	}
	m.notes[bookingID] = append(m.notes[bookingID], n)
	return nil
}
