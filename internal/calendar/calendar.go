// Package calendar renders the weekly content plan as a standalone HTML
// document, the artifact behind the agent's render_calendar tool.
package calendar

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"outreach/internal/content"
)

const weekTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Content calendar, week of {{.WeekOf}}</title>
<style>
body { font-family: -apple-system, Segoe UI, sans-serif; margin: 2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #d0d0d0; padding: 0.5rem 0.75rem; vertical-align: top; }
th { background: #f5f5f5; text-align: left; }
.platform { font-size: 0.8rem; color: #666; text-transform: uppercase; }
.time { font-weight: 600; }
.empty { color: #aaa; }
</style>
</head>
<body>
<h1>Content calendar</h1>
<p>Week of {{.WeekOf}}</p>
<table>
<tr><th>Day</th><th>Planned content</th></tr>
{{range .Days}}<tr>
<td>{{.Label}}</td>
<td>{{if .Tasks}}{{range .Tasks}}<div><span class="time">{{.Time}}</span> <span class="platform">{{.Platform}}</span> {{.Description}}</div>
{{end}}{{else}}<span class="empty">Nothing planned</span>{{end}}</td>
</tr>
{{end}}</table>
</body>
</html>
`

var weekTmpl = template.Must(template.New("week").Parse(weekTemplate))

type taskView struct {
	Time        string
	Platform    string
	Description string
}

type dayView struct {
	Label string
	Tasks []taskView
}

type weekView struct {
	WeekOf string
	Days   []dayView
}

// WeekStart returns the Monday of the week containing t, at midnight in
// t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

// Render builds the week view for the week containing weekOf. Tasks
// outside the week are dropped; tasks within a day are ordered by time.
func Render(tasks []content.ScheduledTask, weekOf time.Time) (string, error) {
	start := WeekStart(weekOf)
	end := start.AddDate(0, 0, 7)

	byDay := make(map[string][]content.ScheduledTask)
	for _, task := range tasks {
		at := task.ScheduledAt.In(start.Location())
		if at.Before(start) || !at.Before(end) {
			continue
		}
		// Bucket by calendar date, not elapsed time: a DST transition
		// makes one day of the week 23 or 25 hours long.
		key := at.Format("2006-01-02")
		byDay[key] = append(byDay[key], task)
	}

	view := weekView{WeekOf: start.Format("January 2, 2006")}
	for day := 0; day < 7; day++ {
		date := start.AddDate(0, 0, day)
		dayTasks := byDay[date.Format("2006-01-02")]
		sort.Slice(dayTasks, func(i, j int) bool {
			return dayTasks[i].ScheduledAt.Before(dayTasks[j].ScheduledAt)
		})

		views := make([]taskView, 0, len(dayTasks))
		for _, task := range dayTasks {
			views = append(views, taskView{
				Time:        task.ScheduledAt.In(start.Location()).Format("15:04"),
				Platform:    string(task.ContentType),
				Description: task.Description,
			})
		}
		view.Days = append(view.Days, dayView{
			Label: date.Format("Monday, Jan 2"),
			Tasks: views,
		})
	}

	var b strings.Builder
	if err := weekTmpl.Execute(&b, view); err != nil {
		return "", fmt.Errorf("render calendar: %w", err)
	}
	return b.String(), nil
}
