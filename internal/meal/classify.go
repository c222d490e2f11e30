package meal

import (
	"sort"
	"time"
)

// Views is one classification of a snapshot at a given moment.
//
// Membership rules:
//   - Today: dated today, any completion state. Time ascending.
//   - Scheduled: uncompleted and still reachable: dated after today, or dated
//     today with a time strictly after the current minute. (date, time) ascending.
//   - History: completed, or dated strictly before today. (date, time) descending,
//     most recent first.
//   - Missed: uncompleted, dated today, time already passed. Such records belong
//     to Today but to neither Scheduled nor History; this view keeps them visible.
//
// Today and Scheduled overlap only on records dated today.
type Views struct {
	Today     []Meal
	Scheduled []Meal
	History   []Meal
	Missed    []Meal
}

// Classify partitions the snapshot relative to now. Pure; the input slice is
// not reordered or retained.
func Classify(meals []Meal, now time.Time) Views {
	today := DateOf(now)
	nowMin := now.Hour()*60 + now.Minute()

	var v Views
	for _, m := range meals {
		if m.Date == today {
			v.Today = append(v.Today, m)
		}
		switch {
		case m.Completed || m.Date < today:
			v.History = append(v.History, m)
		case m.Date > today:
			v.Scheduled = append(v.Scheduled, m)
		default: // dated today, not completed
			if minuteOrNegative(m.Time) > nowMin {
				v.Scheduled = append(v.Scheduled, m)
			} else {
				v.Missed = append(v.Missed, m)
			}
		}
	}

	sortAscending(v.Today)
	sortAscending(v.Scheduled)
	sortAscending(v.Missed)
	sortDescending(v.History)
	return v
}

// scheduleLess orders by calendar date, then by minute of day. ISO dates are
// zero-padded so the string comparison is deliberate, not accidental (times go
// through MinuteOfDay to avoid relying on the same property twice).
func scheduleLess(a, b Meal) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return minuteOrNegative(a.Time) < minuteOrNegative(b.Time)
}

func sortAscending(ms []Meal) {
	sort.SliceStable(ms, func(i, j int) bool { return scheduleLess(ms[i], ms[j]) })
}

func sortDescending(ms []Meal) {
	sort.SliceStable(ms, func(i, j int) bool { return scheduleLess(ms[j], ms[i]) })
}
