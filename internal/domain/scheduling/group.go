package scheduling

import (
	"sort"
	"time"
)

// Bucket is one day of the board: every windowed appointment whose raw date
// normalizes to the same calendar day. Key is the normalized day rendered as
// ISO year-month-day and doubles as the bucket's display label, so spelling
// variants of the same day ("14th Oct", "2025-10-14") land together.
type Bucket struct {
	Key          string        `json:"key"`
	Date         time.Time     `json:"date"`
	Appointments []Appointment `json:"appointments"`
}

// BuildBuckets groups the working set into chronologically ordered day
// buckets. It is a pure function of its inputs and is recomputed from the
// current collection after every mutation, never patched incrementally, so
// regrouping its own output changes nothing.
//
// Appointments whose raw date does not normalize are dropped without comment;
// they stay in the working set and surface again once the date is fixed
// upstream. Buckets are never empty: removing a bucket's last appointment
// removes the bucket on the next rebuild. Within a bucket, appointments sort
// by start time ascending (plain byte comparison on HH:MM), equal starts
// keeping fetch order.
func BuildBuckets(appts []Appointment, referenceNow time.Time, w Window) []Bucket {
	var buckets []Bucket
	byKey := make(map[string]int)

	for _, a := range appts {
		if a.Status != StatusScheduled {
			continue
		}
		day, ok := NormalizeDate(a.RawDate, referenceNow)
		if !ok {
			continue
		}
		if !InWindow(day, referenceNow, w) {
			continue
		}
		key := day.Format(isoDateLayout)
		i, seen := byKey[key]
		if !seen {
			buckets = append(buckets, Bucket{Key: key, Date: day})
			i = len(buckets) - 1
			byKey[key] = i
		}
		buckets[i].Appointments = append(buckets[i].Appointments, a)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Date.Before(buckets[j].Date)
	})
	for i := range buckets {
		members := buckets[i].Appointments
		sort.SliceStable(members, func(a, b int) bool {
			return members[a].StartTime < members[b].StartTime
		})
	}
	return buckets
}

// CountUnparseable reports how many of the given appointments have a raw
// date the normalizer cannot interpret. The board keeps these rows but never
// surfaces them; the count feeds the unparseable-appointments gauge.
func CountUnparseable(appts []Appointment, referenceNow time.Time) int {
	n := 0
	for _, a := range appts {
		if _, ok := NormalizeDate(a.RawDate, referenceNow); !ok {
			n++
		}
	}
	return n
}
