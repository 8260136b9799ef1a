package publish

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"outreach/internal/content"
	"outreach/pkg/logging"
)

const (
	linkedInLoginURL = "https://www.linkedin.com/login"
	linkedInFeedURL  = "https://www.linkedin.com/feed/"

	// Post visibility values LinkedIn knows about.
	VisibilityConnections = "connections"
	VisibilityPublic      = "public"
)

// linkedInAutomation is the browser seam for LinkedIn. Tests swap it for
// a fake; production uses the rod driver below.
type linkedInAutomation interface {
	EnsureLoggedIn(ctx context.Context, creds Credentials) error
	PostNow(ctx context.Context, text, visibility string) error
	Schedule(ctx context.Context, text string, at time.Time, visibility string) error
}

type LinkedInPublisher struct {
	creds      Credentials
	automation linkedInAutomation
	logger     logging.Logger
}

func NewLinkedInPublisher(session *Session, creds Credentials, logger logging.Logger) *LinkedInPublisher {
	return &LinkedInPublisher{
		creds:      creds,
		automation: &rodLinkedIn{session: session, logger: logger},
		logger:     logger,
	}
}

// Publish posts a LinkedIn draft, immediately or via the platform's own
// scheduler when scheduleAt is set. Input validation happens before any
// browser action; a failed attempt is never retried here because the
// post may already be live.
func (p *LinkedInPublisher) Publish(ctx context.Context, post content.LinkedInPost, scheduleAt, visibility string) (Result, error) {
	at, err := ParseScheduleTime(scheduleAt)
	if err != nil {
		return failed(err), err
	}
	if visibility == "" {
		visibility = VisibilityConnections
	}
	if visibility != VisibilityConnections && visibility != VisibilityPublic {
		err := fmt.Errorf("%w: visibility must be %q or %q", ErrValidation, VisibilityConnections, VisibilityPublic)
		return failed(err), err
	}
	if !p.creds.complete() {
		err := fmt.Errorf("%w: LINKEDIN_EMAIL and LINKEDIN_PASSWORD must be set", ErrAuthentication)
		return failed(err), err
	}

	if err := p.automation.EnsureLoggedIn(ctx, p.creds); err != nil {
		err = fmt.Errorf("%w: linkedin login: %v", ErrAuthentication, err)
		return failed(err), err
	}

	log := p.logger.WithField("platform", "linkedin")
	if at != nil {
		if err := p.automation.Schedule(ctx, post.Body, *at, visibility); err != nil {
			err = fmt.Errorf("%w: schedule linkedin post: %v", ErrAutomation, err)
			return failed(err), err
		}
		log.WithField("schedule_at", at.Format(time.RFC3339)).Info("LinkedIn post scheduled")
		return Result{Success: true, ScheduledFor: at}, nil
	}

	if err := p.automation.PostNow(ctx, post.Body, visibility); err != nil {
		err = fmt.Errorf("%w: publish linkedin post: %v", ErrAutomation, err)
		return failed(err), err
	}
	log.Info("LinkedIn post published")
	return Result{Success: true}, nil
}

// rodLinkedIn drives the LinkedIn web UI. Selectors come in fallback
// lists since the markup shifts between rollouts.
type rodLinkedIn struct {
	session *Session
	logger  logging.Logger
}

func (d *rodLinkedIn) EnsureLoggedIn(ctx context.Context, creds Credentials) error {
	page, err := d.session.Page()
	if err != nil {
		return err
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.Navigate(linkedInFeedURL); err != nil {
		return fmt.Errorf("navigate to feed: %w", err)
	}
	_ = page.WaitStable(time.Second)

	info, err := page.Info()
	if err == nil && !strings.Contains(info.URL, "login") {
		return nil
	}

	d.logger.Info("LinkedIn session expired, logging in")
	if err := page.Navigate(linkedInLoginURL); err != nil {
		return fmt.Errorf("navigate to login: %w", err)
	}

	email, err := firstElement(page, "#username")
	if err != nil {
		return fmt.Errorf("email field: %w", err)
	}
	if err := email.Input(creds.Login); err != nil {
		return fmt.Errorf("enter email: %w", err)
	}
	password, err := firstElement(page, "#password")
	if err != nil {
		return fmt.Errorf("password field: %w", err)
	}
	if err := password.Input(creds.Password); err != nil {
		return fmt.Errorf("enter password: %w", err)
	}
	if err := clickFirst(page, "button[type='submit']"); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	_ = page.WaitStable(2 * time.Second)

	info, err = page.Info()
	if err != nil || strings.Contains(info.URL, "login") {
		return fmt.Errorf("credentials rejected")
	}
	return nil
}

func (d *rodLinkedIn) PostNow(ctx context.Context, text, visibility string) error {
	page, err := d.openComposer(ctx, text)
	if err != nil {
		return err
	}
	defer page.Close()

	if visibility == VisibilityPublic {
		d.setVisibilityPublic(page)
	}

	if err := clickFirst(page,
		"button.share-actions__primary-action",
		"button.artdeco-button--primary[class*='share-actions']",
	); err != nil {
		return fmt.Errorf("post button: %w", err)
	}
	_ = page.WaitStable(2 * time.Second)
	return nil
}

func (d *rodLinkedIn) Schedule(ctx context.Context, text string, at time.Time, visibility string) error {
	page, err := d.openComposer(ctx, text)
	if err != nil {
		return err
	}
	defer page.Close()

	if visibility == VisibilityPublic {
		d.setVisibilityPublic(page)
	}

	if err := clickFirst(page,
		"button[aria-label*='Schedule post']",
		"button.share-actions__scheduled-post-btn",
	); err != nil {
		return fmt.Errorf("schedule button: %w", err)
	}

	date, err := firstElement(page, "input[aria-label*='Date']", "input[type='date']")
	if err != nil {
		return fmt.Errorf("date field: %w", err)
	}
	if err := date.Input(at.Format("01/02/2006")); err != nil {
		return fmt.Errorf("enter date: %w", err)
	}
	clock, err := firstElement(page, "input[aria-label*='Time']", "input[type='time']")
	if err != nil {
		return fmt.Errorf("time field: %w", err)
	}
	if err := clock.Input(at.Format("3:04 PM")); err != nil {
		return fmt.Errorf("enter time: %w", err)
	}

	// The dialog steps through two Next screens, then wants the text
	// re-entered before confirming.
	for i := 0; i < 2; i++ {
		if err := clickFirst(page, "button[aria-label*='Next']", ".share-box-footer__primary-btn"); err != nil {
			return fmt.Errorf("next button: %w", err)
		}
		_ = page.WaitStable(time.Second)
	}
	if editor, editorErr := firstElement(page, "div.ql-editor", "div[contenteditable='true']"); editorErr == nil {
		_ = editor.Input(text)
	}

	if err := clickFirst(page,
		"button.share-actions__primary-action",
		"button[aria-label*='Schedule']",
	); err != nil {
		return fmt.Errorf("confirm schedule: %w", err)
	}
	_ = page.WaitStable(2 * time.Second)
	return nil
}

func (d *rodLinkedIn) openComposer(ctx context.Context, text string) (*rod.Page, error) {
	page, err := d.session.Page()
	if err != nil {
		return nil, err
	}
	page = page.Context(ctx)

	if err := page.Navigate(linkedInFeedURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("navigate to feed: %w", err)
	}
	_ = page.WaitStable(time.Second)

	if err := clickFirst(page,
		"button[aria-label*='Start a post']",
		"button.share-box-feed-entry__trigger",
	); err != nil {
		page.Close()
		return nil, fmt.Errorf("start a post: %w", err)
	}

	editor, err := firstElement(page,
		"div.ql-editor",
		"div[aria-label*='Text editor for creating content']",
		"div[contenteditable='true']",
	)
	if err != nil {
		page.Close()
		return nil, fmt.Errorf("post editor: %w", err)
	}
	if err := editor.Input(text); err != nil {
		page.Close()
		return nil, fmt.Errorf("enter post text: %w", err)
	}
	return page, nil
}

func (d *rodLinkedIn) setVisibilityPublic(page *rod.Page) {
	if err := clickFirst(page, "button[aria-label*='Anyone']", "button[aria-label*='Connections']"); err != nil {
		d.logger.WithError(err).Warn("Could not open visibility selector")
		return
	}
	if err := clickFirst(page, "button[id='ANYONE']", "button[aria-label*='Anyone']"); err != nil {
		d.logger.WithError(err).Warn("Could not set visibility to public")
	}
}

const elementTimeout = 5 * time.Second

// firstElement tries each selector in turn, waiting briefly for each.
func firstElement(page *rod.Page, selectors ...string) (*rod.Element, error) {
	var lastErr error
	for _, sel := range selectors {
		el, err := page.Timeout(elementTimeout).Element(sel)
		if err == nil {
			return el.CancelTimeout(), nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no selector matched %v: %w", selectors, lastErr)
}

func clickFirst(page *rod.Page, selectors ...string) error {
	el, err := firstElement(page, selectors...)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}
