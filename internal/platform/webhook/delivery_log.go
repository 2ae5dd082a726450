package webhook

import "sync"

// DeliveryLog keeps the most recent delivery attempts in memory, newest
// first. It is the only record of fire-and-forget outcomes besides the
// structured log.
type DeliveryLog struct {
	mu       sync.RWMutex
	attempts []DeliveryAttempt
	limit    int
}

// NewDeliveryLog creates a log capped at limit attempts.
func NewDeliveryLog(limit int) *DeliveryLog {
	if limit <= 0 {
		limit = 500
	}
	return &DeliveryLog{limit: limit}
}

// Record prepends an attempt, evicting the oldest past the cap.
func (l *DeliveryLog) Record(attempt DeliveryAttempt) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts = append([]DeliveryAttempt{attempt}, l.attempts...)
	if len(l.attempts) > l.limit {
		l.attempts = l.attempts[:l.limit]
	}
}

// List returns a page of attempts and the total retained count.
func (l *DeliveryLog) List(limit, offset int) ([]DeliveryAttempt, int) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := len(l.attempts)
	if offset >= total {
		return nil, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]DeliveryAttempt, end-offset)
	copy(out, l.attempts[offset:end])
	return out, total
}

// Stats counts retained attempts by outcome.
func (l *DeliveryLog) Stats() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := map[string]int{"success": 0, "failed": 0}
	for _, a := range l.attempts {
		if a.Success {
			stats["success"]++
		} else {
			stats["failed"]++
		}
	}
	return stats
}
