package maintenance

import (
	"fmt"
)

// Reminder is the text of a maintenance notification.
type Reminder struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// BuildReminder selects the reminder for a report. It returns false when
// every service is ok.
//
// The title counts overdue services when there are any; the body names the
// most urgent item and how many other items need attention.
func BuildReminder(r Report) (Reminder, bool) {
	critical := r.Critical()
	if len(critical) == 0 {
		return Reminder{}, false
	}

	title := "Maintenance reminder"
	if r.UrgentCount > 0 {
		title = fmt.Sprintf("Attention! %d overdue %s", r.UrgentCount, plural(r.UrgentCount, "service", "services"))
	}

	body := fmt.Sprintf("%s needs attention.", critical[0].Name)
	if more := len(critical) - 1; more > 0 {
		body += fmt.Sprintf(" +%d more pending.", more)
	}

	return Reminder{Title: title, Body: body}, true
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
