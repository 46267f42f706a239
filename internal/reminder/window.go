package reminder

import (
	"strings"
	"time"
)

// Window is the interval before an appointment's instant during which a
// reminder should go out: more than 0 and at most 24 hours away.
const Window = 24 * time.Hour

// CombineDateTime joins a wall-clock date ("2006-01-02") and time of day
// ("15:04") in the given location. No timezone conversion is applied beyond
// interpreting the pair in loc.
func CombineDateTime(date, timeOfDay string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04",
		strings.TrimSpace(date)+" "+strings.TrimSpace(timeOfDay), loc)
}

// DueForReminder reports whether an appointment at (date, timeOfDay) falls
// inside the reminder window relative to now. Past appointments and
// appointments more than 24h away are not due. Unparseable values are never
// due.
func DueForReminder(date, timeOfDay string, now time.Time) bool {
	at, err := CombineDateTime(date, timeOfDay, now.Location())
	if err != nil {
		return false
	}
	until := at.Sub(now)
	return until > 0 && until <= Window
}
