package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// DateOnly truncates a timestamp to a calendar date at UTC midnight.
// All schedule and accrual decisions operate on calendar dates, not instants.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// MonthsBetween returns the number of whole calendar months elapsed from a to b,
// ignoring the day-of-month component. Used by the periodic schedulers.
func MonthsBetween(a, b time.Time) int {
	ad, bd := DateOnly(a), DateOnly(b)
	return int(bd.Month()) - int(ad.Month()) + (bd.Year()-ad.Year())*12
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
