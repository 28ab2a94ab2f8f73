package progress

import "sort"

const (
	// DateLayout formats calendar-day keys such as start_date and daily_tasks keys.
	DateLayout = "2006-01-02"
	// TimestampLayout formats creation, completion and reminder timestamps.
	TimestampLayout = "2006-01-02 15:04:05"
)

// TaskEntry is one logged unit of work. IDs are 1-based within their day.
type TaskEntry struct {
	ID          int     `json:"id"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
	Completed   bool    `json:"completed"`
	Timestamp   string  `json:"timestamp"`
	CompletedAt string  `json:"completed_at,omitempty"`
}

// Milestone is an append-only achievement record.
type Milestone struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Timestamp   string `json:"timestamp"`
}

// Document is the persisted tracker state. TotalHours accumulates the hours of
// every task ever added and is never decremented.
type Document struct {
	StartDate    string                 `json:"start_date"`
	DailyTasks   map[string][]TaskEntry `json:"daily_tasks"`
	Milestones   []Milestone            `json:"milestones"`
	TotalHours   float64                `json:"total_hours"`
	LastReminder *string                `json:"last_reminder"`
}

func newDocument(today string) Document {
	return Document{
		StartDate:  today,
		DailyTasks: map[string][]TaskEntry{},
		Milestones: []Milestone{},
	}
}

func (d Document) clone() Document {
	out := d
	out.DailyTasks = make(map[string][]TaskEntry, len(d.DailyTasks))
	for day, tasks := range d.DailyTasks {
		out.DailyTasks[day] = append([]TaskEntry(nil), tasks...)
	}
	out.Milestones = append([]Milestone{}, d.Milestones...)
	if d.LastReminder != nil {
		v := *d.LastReminder
		out.LastReminder = &v
	}
	return out
}

// Days returns the dates that have tasks, oldest first.
func (d Document) Days() []string {
	days := make([]string, 0, len(d.DailyTasks))
	for day := range d.DailyTasks {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}

// Stats summarizes the document.
type Stats struct {
	StartDate       string
	TotalTasks      int
	CompletedTasks  int
	TotalHours      float64
	Milestones      int
	ActiveDays      int
	HoursByCategory map[string]float64
}

// CompletionRate returns the completed share of all tasks as a percentage,
// and false when there are no tasks.
func (s Stats) CompletionRate() (float64, bool) {
	if s.TotalTasks == 0 {
		return 0, false
	}
	return float64(s.CompletedTasks) / float64(s.TotalTasks) * 100, true
}

func (d Document) stats() Stats {
	st := Stats{
		StartDate:       d.StartDate,
		TotalHours:      d.TotalHours,
		Milestones:      len(d.Milestones),
		HoursByCategory: map[string]float64{},
	}
	for _, tasks := range d.DailyTasks {
		if len(tasks) > 0 {
			st.ActiveDays++
		}
		for _, task := range tasks {
			st.TotalTasks++
			if task.Completed {
				st.CompletedTasks++
			}
			st.HoursByCategory[task.Category] += task.Hours
		}
	}
	return st
}
