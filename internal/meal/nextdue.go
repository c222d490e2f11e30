package meal

import "time"

// NextDue picks today's nearest uncompleted meal whose time is still ahead of
// now's minute.
//
// A linear scan keeps the current best only when a strictly smaller qualifying
// time is found, so on a tie the earlier record in the snapshot wins. Returns
// ok=false when every candidate is completed or already passed.
func NextDue(meals []Meal, now time.Time) (Meal, bool) {
	today := DateOf(now)
	nowMin := now.Hour()*60 + now.Minute()

	var best Meal
	bestMin := -1
	for _, m := range meals {
		if m.Completed || m.Date != today {
			continue
		}
		min := minuteOrNegative(m.Time)
		if min <= nowMin {
			continue
		}
		if bestMin < 0 || min < bestMin {
			best = m
			bestMin = min
		}
	}
	return best, bestMin >= 0
}
