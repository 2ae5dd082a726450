package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. Status is the only field the dashboard ever mutates;
// everything else is pass-through from the upstream booking flow.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var validAppointmentStatuses = map[string]bool{
	StatusScheduled: true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// Appointment maps to the appointments table. RawDate is kept exactly as the
// booking flow recorded it ("2025-10-14", "14th Oct", ...); it is never
// rewritten, only interpreted. StartTime is a zero-padded HH:MM string and is
// compared lexicographically.
type Appointment struct {
	ID          uuid.UUID `db:"id" json:"id,omitempty"`
	PatientName string    `db:"patient_name" json:"patient_name"`
	Phone       string    `db:"phone" json:"phone"`
	Email       string    `db:"email" json:"email"`
	Symptoms    *string   `db:"symptoms" json:"symptoms,omitempty"`
	ReportRef   *string   `db:"report_ref" json:"report_ref,omitempty"`
	RawDate     string    `db:"raw_date" json:"raw_date"`
	StartTime   string    `db:"start_time" json:"start_time"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// HasID reports whether the upstream row carries a stable identifier.
// Rows imported from paper books or legacy exports may not.
func (a Appointment) HasID() bool { return a.ID != uuid.Nil }

// Action is an operator-initiated status transition.
type Action string

const (
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

var validActions = map[Action]bool{
	ActionComplete: true,
	ActionCancel:   true,
}

// TargetStatus returns the status the action transitions an appointment into.
func (act Action) TargetStatus() string {
	if act == ActionComplete {
		return StatusCompleted
	}
	return StatusCancelled
}

// Event returns the webhook event name dispatched after the action persists.
func (act Action) Event() string {
	if act == ActionComplete {
		return EventAppointmentCompleted
	}
	return EventAppointmentCancelled
}

// Webhook event names, one per action.
const (
	EventAppointmentCompleted = "appointment.completed"
	EventAppointmentCancelled = "appointment.cancelled"
)

// Selector identifies the appointment a status update applies to. Exactly one
// addressing mode is set: the stable id when the row has one, otherwise the
// (patient name, raw date, start time) triple. The triple is assumed unique
// among scheduled appointments; if duplicates exist upstream, a structural
// update touches every match.
type Selector struct {
	id          uuid.UUID
	patientName string
	rawDate     string
	startTime   string
}

// SelectorForID addresses an appointment by its stable identifier.
func SelectorForID(id uuid.UUID) Selector { return Selector{id: id} }

// SelectorForFields addresses an appointment by its structural triple, for
// rows that have no stable identifier.
func SelectorForFields(patientName, rawDate, startTime string) Selector {
	return Selector{patientName: patientName, rawDate: rawDate, startTime: startTime}
}

// SelectorFor picks the strongest selector the appointment supports.
func SelectorFor(a Appointment) Selector {
	if a.HasID() {
		return SelectorForID(a.ID)
	}
	return SelectorForFields(a.PatientName, a.RawDate, a.StartTime)
}

// ByID reports whether the selector addresses by stable id.
func (sel Selector) ByID() bool { return sel.id != uuid.Nil }

// ID returns the stable id; zero unless ByID.
func (sel Selector) ID() uuid.UUID { return sel.id }

// Fields returns the structural triple; empty strings unless structural.
func (sel Selector) Fields() (patientName, rawDate, startTime string) {
	return sel.patientName, sel.rawDate, sel.startTime
}

// Matches reports whether the selector addresses the given appointment.
func (sel Selector) Matches(a Appointment) bool {
	if sel.ByID() {
		return a.ID == sel.id
	}
	return a.PatientName == sel.patientName && a.RawDate == sel.rawDate && a.StartTime == sel.startTime
}

// Validate rejects selectors with neither addressing mode set.
func (sel Selector) Validate() error {
	if !sel.ByID() && (sel.patientName == "" || sel.rawDate == "" || sel.startTime == "") {
		return ErrInvalidSelector
	}
	return nil
}

func (sel Selector) String() string {
	if sel.ByID() {
		return "id=" + sel.id.String()
	}
	return "patient=" + sel.patientName + " date=" + sel.rawDate + " time=" + sel.startTime
}

// TimestampMode selects how action notices carry their timestamp: a field
// named after the action (completed_at / cancelled_at) or a single action_at
// field regardless of action.
type TimestampMode string

const (
	TimestampPerAction TimestampMode = "perAction"
	TimestampUnified   TimestampMode = "actionAt"
)

// ActionNotice is the JSON body posted to the action's webhook endpoint.
// One canonical shape; identity is the appointment id when the row has one,
// the raw date plus start time otherwise, and exactly one timestamp field is
// populated per TimestampMode.
type ActionNotice struct {
	PatientName   string `json:"patient_name"`
	Email         string `json:"email"`
	AppointmentID string `json:"appointment_id,omitempty"`
	RawDate       string `json:"raw_date,omitempty"`
	StartTime     string `json:"start_time,omitempty"`
	Status        string `json:"status"`
	CompletedAt   string `json:"completed_at,omitempty"`
	CancelledAt   string `json:"cancelled_at,omitempty"`
	ActionAt      string `json:"action_at,omitempty"`
}

// buildNotice assembles the webhook payload for an applied action.
func buildNotice(a Appointment, act Action, at time.Time, mode TimestampMode) ActionNotice {
	n := ActionNotice{
		PatientName: a.PatientName,
		Email:       a.Email,
		Status:      act.TargetStatus(),
	}
	if a.HasID() {
		n.AppointmentID = a.ID.String()
	} else {
		n.RawDate = a.RawDate
		n.StartTime = a.StartTime
	}
	stamp := at.UTC().Format(time.RFC3339)
	switch {
	case mode == TimestampUnified:
		n.ActionAt = stamp
	case act == ActionComplete:
		n.CompletedAt = stamp
	default:
		n.CancelledAt = stamp
	}
	return n
}
