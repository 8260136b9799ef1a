// Package tasks holds the callable entry points the service exposes:
// thin wrappers that run the agent (or hit the store directly) and
// report the outcome as a human-readable status string.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"outreach/internal/agent"
	"outreach/internal/calendar"
	"outreach/internal/content"
	"outreach/pkg/logging"
)

type AgentRunner interface {
	Run(ctx context.Context, prompt string) (agent.RunResult, error)
}

// DraftStore is the store slice the direct (non-agent) tasks need.
type DraftStore interface {
	DeleteLinkedIn(ctx context.Context, id int64) error
	DeleteTwitter(ctx context.Context, id int64) error
	DeleteYouTube(ctx context.Context, id int64) error
	ListByDateRange(ctx context.Context, platform content.Platform, from, to time.Time) ([]time.Time, error)
}

type Runner struct {
	agent  AgentRunner
	store  DraftStore
	logger logging.Logger
	now    func() time.Time
}

func NewRunner(agentRunner AgentRunner, store DraftStore, logger logging.Logger) *Runner {
	return &Runner{agent: agentRunner, store: store, logger: logger, now: time.Now}
}

// GenerateAndPublishNow runs one agent pass that drafts and immediately
// publishes content about the topic.
func (r *Runner) GenerateAndPublishNow(ctx context.Context, topic string) string {
	if strings.TrimSpace(topic) == "" {
		return "Error: a topic is required"
	}
	prompt := fmt.Sprintf("Write and immediately publish content about: %s. Draft it first, then post it.", topic)
	return r.runAgent(ctx, prompt)
}

// PlanWeek runs one agent pass over a free-form planning prompt,
// typically producing tasks and a rendered calendar.
func (r *Runner) PlanWeek(ctx context.Context, prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		prompt = "Plan this week's content across LinkedIn, Twitter, and YouTube, then render the calendar."
	}
	return r.runAgent(ctx, prompt)
}

func (r *Runner) runAgent(ctx context.Context, prompt string) string {
	result, err := r.agent.Run(ctx, prompt)
	if err != nil {
		r.logger.WithError(err).Error("Agent run failed")
		return fmt.Sprintf("Error: %v", err)
	}

	var b strings.Builder
	if result.FinalMessage != "" {
		b.WriteString(result.FinalMessage)
	} else {
		b.WriteString("Run completed.")
	}
	if len(result.Persisted) > 0 {
		parts := make([]string, 0, len(result.Persisted))
		for _, platform := range []content.Platform{content.PlatformLinkedIn, content.PlatformTwitter, content.PlatformYouTube} {
			if n := result.Persisted[platform]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s: %d", platform, n))
			}
		}
		fmt.Fprintf(&b, "\nSaved posts (%s)", strings.Join(parts, ", "))
	}
	for _, failure := range result.PersistFailures {
		fmt.Fprintf(&b, "\nWarning: could not save %s", failure)
	}
	return b.String()
}

// DeleteDraft removes one stored draft by platform and ID.
func (r *Runner) DeleteDraft(ctx context.Context, platform content.Platform, id int64) string {
	var err error
	switch platform {
	case content.PlatformLinkedIn:
		err = r.store.DeleteLinkedIn(ctx, id)
	case content.PlatformTwitter:
		err = r.store.DeleteTwitter(ctx, id)
	case content.PlatformYouTube:
		err = r.store.DeleteYouTube(ctx, id)
	default:
		return fmt.Sprintf("Error: unknown platform %q", platform)
	}
	if err != nil {
		r.logger.WithError(err).WithField("platform", string(platform)).Error("Delete draft failed")
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("Deleted %s draft %d", platform, id)
}

// ShowWeek summarizes what is already scheduled this week, per platform.
func (r *Runner) ShowWeek(ctx context.Context) string {
	start := calendar.WeekStart(r.now())
	end := start.AddDate(0, 0, 7)

	var b strings.Builder
	fmt.Fprintf(&b, "Week of %s\n", start.Format("January 2, 2006"))
	for _, platform := range []content.Platform{content.PlatformLinkedIn, content.PlatformTwitter, content.PlatformYouTube} {
		dates, err := r.store.ListByDateRange(ctx, platform, start, end)
		if err != nil {
			r.logger.WithError(err).WithField("platform", string(platform)).Warn("Week lookup failed")
			fmt.Fprintf(&b, "%s: unavailable (%v)\n", platform, err)
			continue
		}
		if len(dates) == 0 {
			fmt.Fprintf(&b, "%s: nothing scheduled\n", platform)
			continue
		}
		formatted := make([]string, 0, len(dates))
		for _, d := range dates {
			formatted = append(formatted, d.Format("Mon 15:04"))
		}
		fmt.Fprintf(&b, "%s: %d scheduled (%s)\n", platform, len(dates), strings.Join(formatted, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}
