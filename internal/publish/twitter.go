package publish

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"

	"outreach/internal/content"
	"outreach/pkg/logging"
)

const (
	twitterLoginURL = "https://twitter.com/login"
	twitterHomeURL  = "https://twitter.com/home"
)

type twitterAutomation interface {
	EnsureLoggedIn(ctx context.Context, creds Credentials) error
	PostNow(ctx context.Context, text string) error
	Schedule(ctx context.Context, text string, at time.Time) error
}

type TwitterPublisher struct {
	creds      Credentials
	automation twitterAutomation
	logger     logging.Logger
}

func NewTwitterPublisher(session *Session, creds Credentials, logger logging.Logger) *TwitterPublisher {
	return &TwitterPublisher{
		creds:      creds,
		automation: &rodTwitter{session: session, logger: logger},
		logger:     logger,
	}
}

// Publish posts a tweet draft, immediately or through the platform's
// scheduler when scheduleAt is set. Same contract as LinkedIn: validate
// first, authenticate second, one automation attempt, no retry.
func (p *TwitterPublisher) Publish(ctx context.Context, post content.TwitterPost, scheduleAt string) (Result, error) {
	at, err := ParseScheduleTime(scheduleAt)
	if err != nil {
		return failed(err), err
	}
	if !p.creds.complete() {
		err := fmt.Errorf("%w: TWITTER_USERNAME and TWITTER_PASSWORD must be set", ErrAuthentication)
		return failed(err), err
	}

	if err := p.automation.EnsureLoggedIn(ctx, p.creds); err != nil {
		err = fmt.Errorf("%w: twitter login: %v", ErrAuthentication, err)
		return failed(err), err
	}

	log := p.logger.WithField("platform", "twitter")
	if at != nil {
		if err := p.automation.Schedule(ctx, post.Body, *at); err != nil {
			err = fmt.Errorf("%w: schedule tweet: %v", ErrAutomation, err)
			return failed(err), err
		}
		log.WithField("schedule_at", at.Format(time.RFC3339)).Info("Tweet scheduled")
		return Result{Success: true, ScheduledFor: at}, nil
	}

	if err := p.automation.PostNow(ctx, post.Body); err != nil {
		err = fmt.Errorf("%w: publish tweet: %v", ErrAutomation, err)
		return failed(err), err
	}
	log.Info("Tweet published")
	return Result{Success: true}, nil
}

type rodTwitter struct {
	session *Session
	logger  logging.Logger
}

func (d *rodTwitter) EnsureLoggedIn(ctx context.Context, creds Credentials) error {
	page, err := d.session.Page()
	if err != nil {
		return err
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.Navigate(twitterHomeURL); err != nil {
		return fmt.Errorf("navigate to home: %w", err)
	}
	_ = page.WaitStable(time.Second)

	info, err := page.Info()
	if err == nil && strings.Contains(info.URL, "/home") {
		return nil
	}

	d.logger.Info("Twitter session expired, logging in")
	if err := page.Navigate(twitterLoginURL); err != nil {
		return fmt.Errorf("navigate to login: %w", err)
	}

	// Two-step login: username first, password on the next screen.
	username, err := firstElement(page, "input[name='text']")
	if err != nil {
		return fmt.Errorf("username field: %w", err)
	}
	if err := username.Input(creds.Login); err != nil {
		return fmt.Errorf("enter username: %w", err)
	}
	if err := username.Type(input.Enter); err != nil {
		return fmt.Errorf("submit username: %w", err)
	}

	password, err := firstElement(page, "input[name='password']")
	if err != nil {
		return fmt.Errorf("password field: %w", err)
	}
	if err := password.Input(creds.Password); err != nil {
		return fmt.Errorf("enter password: %w", err)
	}
	if err := password.Type(input.Enter); err != nil {
		return fmt.Errorf("submit password: %w", err)
	}
	_ = page.WaitStable(2 * time.Second)

	info, err = page.Info()
	if err != nil || !strings.Contains(info.URL, "/home") {
		return fmt.Errorf("credentials rejected")
	}
	return nil
}

func (d *rodTwitter) PostNow(ctx context.Context, text string) error {
	page, err := d.openComposer(ctx, text)
	if err != nil {
		return err
	}
	defer page.Close()

	if err := clickFirst(page, "button[data-testid='tweetButtonInline']"); err != nil {
		return fmt.Errorf("tweet button: %w", err)
	}
	_ = page.WaitStable(2 * time.Second)
	return nil
}

func (d *rodTwitter) Schedule(ctx context.Context, text string, at time.Time) error {
	page, err := d.openComposer(ctx, text)
	if err != nil {
		return err
	}
	defer page.Close()

	if err := clickFirst(page, "button[data-testid='scheduleOption']"); err != nil {
		return fmt.Errorf("schedule option: %w", err)
	}

	// The scheduling dialog is six native selects, month through AM/PM.
	fields := []struct {
		id    string
		value string
	}{
		{"#SELECTOR_1", at.Format("January")},
		{"#SELECTOR_2", strconv.Itoa(at.Day())},
		{"#SELECTOR_3", strconv.Itoa(at.Year())},
		{"#SELECTOR_4", strconv.Itoa(hour12(at))},
		{"#SELECTOR_5", fmt.Sprintf("%02d", at.Minute())},
		{"#SELECTOR_6", at.Format("PM")},
	}
	for _, f := range fields {
		el, err := firstElement(page, f.id)
		if err != nil {
			return fmt.Errorf("schedule field %s: %w", f.id, err)
		}
		if err := el.Select([]string{f.value}, true, rod.SelectorTypeText); err != nil {
			return fmt.Errorf("set %s to %s: %w", f.id, f.value, err)
		}
	}

	if err := clickFirst(page, "button[data-testid='scheduledConfirmationPrimaryAction']"); err != nil {
		return fmt.Errorf("confirm schedule: %w", err)
	}
	_ = page.WaitStable(time.Second)

	// Back in the composer the tweet button now reads Schedule.
	if err := clickFirst(page, "button[data-testid='tweetButtonInline']"); err != nil {
		return fmt.Errorf("schedule tweet: %w", err)
	}
	_ = page.WaitStable(2 * time.Second)
	return nil
}

func (d *rodTwitter) openComposer(ctx context.Context, text string) (*rod.Page, error) {
	page, err := d.session.Page()
	if err != nil {
		return nil, err
	}
	page = page.Context(ctx)

	if err := page.Navigate(twitterHomeURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("navigate to home: %w", err)
	}
	_ = page.WaitStable(time.Second)

	editor, err := firstElement(page,
		"div[data-testid='tweetTextarea_0']",
		"div[aria-label='Tweet text']",
	)
	if err != nil {
		page.Close()
		return nil, fmt.Errorf("tweet editor: %w", err)
	}
	if err := editor.Input(text); err != nil {
		page.Close()
		return nil, fmt.Errorf("enter tweet text: %w", err)
	}
	return page, nil
}

func hour12(t time.Time) int {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	return h
}
