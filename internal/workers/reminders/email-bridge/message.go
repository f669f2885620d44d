package emailbridge

import (
	"regexp"
	"strings"
	"time"

	"task-reminder-bridge/internal/models"
)

// DueTimeLayout renders e.g. "17 Oct 2026 at 3:04 PM".
const DueTimeLayout = "02 Jan 2006 at 3:04 PM"

var taskTitlePattern = regexp.MustCompile(`Task '([^']+)'`)

// ExtractTaskTitle pulls the quoted title out of messages such as
// "Task 'Buy milk' is due in 5 minutes". Messages without one are returned
// whole.
func ExtractTaskTitle(message string) string {
	if m := taskTitlePattern.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	return message
}

// TaskTitle prefers the structured title when the API sends one.
func TaskTitle(n models.Notification) string {
	if title := strings.TrimSpace(n.TaskTitle); title != "" {
		return title
	}
	return ExtractTaskTitle(n.Message)
}

// DefaultRecipientName greets users whose account has no name.
const DefaultRecipientName = "User"

func RecipientName(user models.User) string {
	if name := strings.TrimSpace(user.Name); name != "" {
		return name
	}
	return DefaultRecipientName
}

// FormatDueTime formats t in loc. The bridge passes the send time, not the
// task's due date.
func FormatDueTime(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(DueTimeLayout)
}
