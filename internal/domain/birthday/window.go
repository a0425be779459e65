// Package birthday finds contacts whose yearly birthday falls inside a
// window of days starting today. Only month and day of the stored
// birthday are used; the stored year is ignored.
package birthday

import (
	"sort"
	"time"

	"github.com/oksasatya/go-contactbook/internal/domain/entity"
)

// Match is a contact paired with the date its birthday next occurs.
type Match struct {
	Contact entity.Contact
	Next    time.Time
}

// Day truncates t to midnight UTC of its calendar date in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// occurrence returns month/day in the given year. A Feb 29 birthday
// occurs on Feb 28 in years that have no Feb 29.
func occurrence(year int, month time.Month, day int) time.Time {
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// NextOccurrence returns the first date on or after today whose month and
// day match birthday.
func NextOccurrence(birthday, today time.Time) time.Time {
	today = Day(today)
	_, m, d := birthday.Date()
	next := occurrence(today.Year(), m, d)
	if next.Before(today) {
		next = occurrence(today.Year()+1, m, d)
	}
	return next
}

// InWindow reports whether birthday next occurs within [today, today+days].
func InWindow(birthday, today time.Time, days int) bool {
	if days < 0 {
		return false
	}
	today = Day(today)
	next := NextOccurrence(birthday, today)
	return !next.After(today.AddDate(0, 0, days))
}

// MonthDays lists the "MM-DD" keys of stored birthdays that can occur in
// [today, today+days]. A nil result means every key can.
func MonthDays(today time.Time, days int) []string {
	if days < 0 {
		return []string{}
	}
	if days >= 365 {
		return nil
	}
	today = Day(today)
	out := make([]string, 0, days+2)
	for i := 0; i <= days; i++ {
		d := today.AddDate(0, 0, i)
		out = append(out, d.Format("01-02"))
		if d.Month() == time.February && d.Day() == 28 && !isLeap(d.Year()) {
			out = append(out, "02-29")
		}
	}
	return out
}

// Upcoming filters contacts to those with a birthday in the window, sorted
// by next occurrence and then by id, and returns the requested page.
// Contacts without a birthday are skipped. A limit <= 0 means no limit.
func Upcoming(contacts []entity.Contact, today time.Time, days, limit, offset int) []Match {
	today = Day(today)
	matches := make([]Match, 0, len(contacts))
	for _, c := range contacts {
		if c.Birthday == nil || !InWindow(*c.Birthday, today, days) {
			continue
		}
		matches = append(matches, Match{Contact: c, Next: NextOccurrence(*c.Birthday, today)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].Next.Equal(matches[j].Next) {
			return matches[i].Next.Before(matches[j].Next)
		}
		return matches[i].Contact.ID < matches[j].Contact.ID
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(matches) {
		return []Match{}
	}
	matches = matches[offset:]
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches
}
