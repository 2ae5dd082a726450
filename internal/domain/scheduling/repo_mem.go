package scheduling

import (
	"context"
	"sync"
)

// InMemoryRepository keeps appointments in insertion order behind a mutex.
// It backs the memory storage driver used in development and is the test
// double for everything above the repository.
type InMemoryRepository struct {
	mu           sync.RWMutex
	appointments []Appointment
	fetchErr     error
	updateErr    error
	fetchCalls   int
	updateCalls  int
}

// NewInMemoryRepository returns an empty in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Seed appends appointments; insertion order is fetch order.
func (r *InMemoryRepository) Seed(appts ...Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments = append(r.appointments, appts...)
}

// SetFetchError makes every FetchScheduled fail with err until reset to nil.
func (r *InMemoryRepository) SetFetchError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchErr = err
}

// SetUpdateError makes every UpdateStatus fail with err until reset to nil.
func (r *InMemoryRepository) SetUpdateError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateErr = err
}

// FetchCalls reports how many times FetchScheduled ran.
func (r *InMemoryRepository) FetchCalls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fetchCalls
}

// UpdateCalls reports how many times UpdateStatus ran.
func (r *InMemoryRepository) UpdateCalls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updateCalls
}

func (r *InMemoryRepository) FetchScheduled(_ context.Context) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchCalls++
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	var out []Appointment
	for _, a := range r.appointments {
		if a.Status == StatusScheduled {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, sel Selector, status string) error {
	if err := sel.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	if r.updateErr != nil {
		return r.updateErr
	}
	matched := false
	for i := range r.appointments {
		if r.appointments[i].Status != StatusScheduled {
			continue
		}
		if sel.Matches(r.appointments[i]) {
			r.appointments[i].Status = status
			matched = true
		}
	}
	if !matched {
		return ErrAppointmentNotFound
	}
	return nil
}

// All returns a copy of every stored appointment regardless of status.
func (r *InMemoryRepository) All() []Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Appointment, len(r.appointments))
	copy(out, r.appointments)
	return out
}
