package scheduling

import "errors"

var (
	// ErrFetchFailed wraps repository failures during a fetch cycle. The board
	// shows an empty state and waits for the next cycle; there is no retry.
	ErrFetchFailed = errors.New("appointment fetch failed")

	// ErrPersistenceFailed wraps repository failures while persisting a status
	// transition. The optimistic removal is reconciled by a full re-fetch, not
	// rolled back point-wise.
	ErrPersistenceFailed = errors.New("status update failed to persist")

	// ErrAppointmentNotFound is returned when a selector matches nothing in
	// the working set or the store.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrInvalidSelector is returned for selectors with neither a stable id
	// nor a complete structural triple.
	ErrInvalidSelector = errors.New("selector needs an id or patient name, raw date and start time")

	// ErrInvalidAction is returned for actions other than complete or cancel.
	ErrInvalidAction = errors.New("unknown action")

	// ErrInvalidWindow is returned for window sizes other than 0, 20 or all.
	ErrInvalidWindow = errors.New("unsupported window size")
)
