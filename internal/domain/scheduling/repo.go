package scheduling

import "context"

// Repository is the persistent store behind the board. The dashboard only
// ever reads rows still in scheduled status and only ever writes the status
// column; creation, editing and deletion belong to the booking flow.
type Repository interface {
	// FetchScheduled returns every appointment in scheduled status in stable
	// fetch order. The order breaks ties everywhere downstream, so it must
	// not change between cycles unless the data does.
	FetchScheduled(ctx context.Context) ([]Appointment, error)

	// UpdateStatus transitions the appointment matched by sel to the given
	// status. Only rows still in scheduled status are touched; matching
	// nothing returns ErrAppointmentNotFound. Under the selector uniqueness
	// precondition a structural selector matches one row; if upstream data
	// violates that, every match transitions.
	UpdateStatus(ctx context.Context, sel Selector, status string) error
}
