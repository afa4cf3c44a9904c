// services/message.go
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/SOLSKEY/bbb-auto-sales-dms-sub003/models"
)

const noteMaxLen = 60

// ComposeMessage builds the SMS body for one firing: the full detail
// template for a single appointment, the compact list template for a
// batch. Appointment times are rendered in the dealership timezone and
// every message ends with the deep link back to the DMS calendar.
func ComposeMessage(kind models.ReminderKind, appointments []models.Appointment, loc *time.Location, linkURL string) string {
	var b strings.Builder

	if len(appointments) == 1 {
		composeSingle(&b, kind, appointments[0], loc)
	} else {
		composeBatch(&b, kind, appointments, loc)
	}

	b.WriteString("\n")
	b.WriteString(linkURL)
	return b.String()
}

func composeSingle(b *strings.Builder, kind models.ReminderKind, a models.Appointment, loc *time.Location) {
	local := a.ScheduledAt.In(loc)

	fmt.Fprintf(b, "Appointment %s: %s, %s\n", kindPhrase(kind), a.CustomerName, a.CustomerPhone)
	fmt.Fprintf(b, "%s\n", local.Format("Mon Jan 2 at 3:04 PM"))

	if len(a.InterestTags) > 0 {
		fmt.Fprintf(b, "Interested in: %s\n", strings.Join(a.InterestTags, ", "))
	}
	if note := truncateNote(a.Notes); note != "" {
		fmt.Fprintf(b, "Notes: %s\n", note)
	}
	if a.Status != "" && a.Status != models.AppointmentStatusScheduled {
		fmt.Fprintf(b, "Status: %s\n", a.Status)
	}
}

func composeBatch(b *strings.Builder, kind models.ReminderKind, appointments []models.Appointment, loc *time.Location) {
	fmt.Fprintf(b, "%d appointments %s:\n", len(appointments), kindPhrase(kind))

	for i, a := range appointments {
		local := a.ScheduledAt.In(loc)
		fmt.Fprintf(b, "%d. %s, %s - %s", i+1, a.CustomerName, a.CustomerPhone, local.Format("3:04 PM"))
		if a.Status != "" && a.Status != models.AppointmentStatusScheduled {
			fmt.Fprintf(b, " [%s]", a.Status)
		}
		b.WriteString("\n")
	}
}

func kindPhrase(kind models.ReminderKind) string {
	switch kind {
	case models.KindDayBefore:
		return "tomorrow"
	case models.KindDayOf:
		return "today"
	default:
		return "coming up"
	}
}

func truncateNote(note string) string {
	note = strings.TrimSpace(note)
	// Cut on runes, not bytes, so an accented note never turns into a
	// half-rune of mojibake at the boundary.
	runes := []rune(note)
	if len(runes) <= noteMaxLen {
		return note
	}
	return string(runes[:noteMaxLen]) + "..."
}
