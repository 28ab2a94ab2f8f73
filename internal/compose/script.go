package compose

import (
	"fmt"
	"strings"
	"time"
)

// Script is the text content of the daily reminder video.
type Script struct {
	Title     string
	Lines     []string
	Narration string
}

// VideoScript derives the video title, on-screen lines and narration for date.
// At most three focus areas are shown on screen; narration reads five.
func VideoScript(project string, date time.Time, focusAreas []string) Script {
	project = titleCase(project)
	if len(focusAreas) == 0 {
		focusAreas = DefaultFocusAreas
	}
	day := formatDate(date)

	lines := []string{
		fmt.Sprintf("Time to work on %s!", project),
		"",
		"Your startup needs you today!",
		"",
		"Focus areas for today:",
	}
	for _, area := range head(focusAreas, 3) {
		lines = append(lines, "• "+area)
	}
	lines = append(lines, "", "You've got this!")

	var narration strings.Builder
	fmt.Fprintf(&narration, "Hey! It's %s and this is your reminder about %s. ", day, project)
	narration.WriteString("Remember why you started this journey. ")
	fmt.Fprintf(&narration, "Today's focus areas for %s: ", project)
	narration.WriteString(strings.Join(head(focusAreas, 5), ", "))
	narration.WriteString(". Your passion is what makes this special, so don't let that fire go out. ")
	fmt.Fprintf(&narration, "Go make %s shine today!", project)

	return Script{
		Title:     fmt.Sprintf("%s Daily Reminder - %s", project, day),
		Lines:     lines,
		Narration: narration.String(),
	}
}

func head(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}
