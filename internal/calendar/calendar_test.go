package calendar

import (
	"strings"
	"testing"
	"time"

	"outreach/internal/content"
)

func scheduled(at time.Time, platform content.Platform, desc string) content.ScheduledTask {
	return content.ScheduledTask{
		ID:          desc,
		CreatedAt:   at.Add(-48 * time.Hour),
		ScheduledAt: at,
		Description: desc,
		ContentType: platform,
		Status:      content.StatusPending,
	}
}

func TestWeekStartIsMonday(t *testing.T) {
	// 2026-03-04 is a Wednesday.
	wednesday := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)
	start := WeekStart(wednesday)
	if start.Weekday() != time.Monday {
		t.Fatalf("expected Monday, got %s", start.Weekday())
	}
	if start.Day() != 2 || start.Hour() != 0 {
		t.Fatalf("expected midnight March 2, got %v", start)
	}
	if got := WeekStart(start); !got.Equal(start) {
		t.Fatalf("week start not stable: %v", got)
	}
}

func TestRenderGroupsTasksByDay(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	html, err := Render([]content.ScheduledTask{
		scheduled(monday.Add(10*time.Hour), content.PlatformLinkedIn, "launch recap"),
		scheduled(monday.Add(9*time.Hour), content.PlatformTwitter, "teaser thread"),
		scheduled(monday.AddDate(0, 0, 3).Add(14*time.Hour), content.PlatformYouTube, "demo video"),
	}, monday.Add(36*time.Hour))
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.Contains(html, "Week of March 2, 2026") {
		t.Fatal("week heading missing")
	}
	// Same-day tasks in time order.
	teaser := strings.Index(html, "teaser thread")
	recap := strings.Index(html, "launch recap")
	if teaser == -1 || recap == -1 || teaser > recap {
		t.Fatalf("same-day ordering wrong: teaser=%d recap=%d", teaser, recap)
	}
	if !strings.Contains(html, "demo video") {
		t.Fatal("thursday task missing")
	}
	if !strings.Contains(html, "Nothing planned") {
		t.Fatal("empty days should render a placeholder")
	}
}

func TestRenderDropsTasksOutsideWeek(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	html, err := Render([]content.ScheduledTask{
		scheduled(monday.AddDate(0, 0, -1), content.PlatformTwitter, "last week"),
		scheduled(monday.AddDate(0, 0, 8), content.PlatformTwitter, "next week"),
	}, monday)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "last week") || strings.Contains(html, "next week") {
		t.Fatal("out-of-week tasks rendered")
	}
}

func TestRenderKeepsDayBucketsAcrossDSTChange(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// Clocks fall back on Sunday November 1, 2026, so that week's Sunday
	// is 25 hours long. Bucketing by elapsed hours would push a late
	// Sunday task past the end of the week and drop it.
	monday := time.Date(2026, 10, 26, 0, 0, 0, 0, loc)
	html, err := Render([]content.ScheduledTask{
		scheduled(time.Date(2026, 10, 31, 12, 0, 0, 0, loc), content.PlatformTwitter, "saturday teaser"),
		scheduled(time.Date(2026, 11, 1, 23, 30, 0, 0, loc), content.PlatformLinkedIn, "sunday wrap-up"),
	}, monday)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	saturday := strings.Index(html, "Saturday, Oct 31")
	sunday := strings.Index(html, "Sunday, Nov 1")
	teaser := strings.Index(html, "saturday teaser")
	wrapUp := strings.Index(html, "sunday wrap-up")
	if saturday == -1 || sunday == -1 {
		t.Fatal("day labels missing")
	}
	if teaser < saturday || teaser > sunday {
		t.Fatalf("saturday task in wrong row: teaser=%d saturday=%d sunday=%d", teaser, saturday, sunday)
	}
	if wrapUp < sunday {
		t.Fatalf("sunday task misplaced or dropped: wrapUp=%d sunday=%d", wrapUp, sunday)
	}
}

func TestRenderEscapesDescriptions(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	html, err := Render([]content.ScheduledTask{
		scheduled(monday.Add(8*time.Hour), content.PlatformTwitter, "<script>alert(1)</script>"),
	}, monday)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Fatal("description not escaped")
	}
}
