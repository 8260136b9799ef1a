package publish

import (
	"context"
	"errors"
	"testing"
	"time"

	"outreach/internal/content"
	"outreach/pkg/logging"
)

func TestParseScheduleTime(t *testing.T) {
	if at, err := ParseScheduleTime(""); err != nil || at != nil {
		t.Fatalf("empty input should mean publish now, got %v %v", at, err)
	}
	at, err := ParseScheduleTime("2026-09-01T10:00:00")
	if err != nil {
		t.Fatalf("bare ISO timestamp rejected: %v", err)
	}
	if at.Hour() != 10 {
		t.Fatalf("wrong hour: %v", at)
	}
	if _, err := ParseScheduleTime("2026-09-01T10:00:00Z"); err != nil {
		t.Fatalf("RFC3339 timestamp rejected: %v", err)
	}
	_, err = ParseScheduleTime("next tuesday")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

type fakeLinkedIn struct {
	loginCalls    int
	postCalls     int
	scheduleCalls int
	scheduledAt   time.Time
	loginErr      error
	postErr       error
}

func (f *fakeLinkedIn) EnsureLoggedIn(ctx context.Context, creds Credentials) error {
	f.loginCalls++
	return f.loginErr
}

func (f *fakeLinkedIn) PostNow(ctx context.Context, text, visibility string) error {
	f.postCalls++
	return f.postErr
}

func (f *fakeLinkedIn) Schedule(ctx context.Context, text string, at time.Time, visibility string) error {
	f.scheduleCalls++
	f.scheduledAt = at
	return nil
}

func newTestLinkedIn(fake *fakeLinkedIn) *LinkedInPublisher {
	return &LinkedInPublisher{
		creds:      Credentials{Login: "user@example.com", Password: "hunter2"},
		automation: fake,
		logger:     logging.NewLogger(),
	}
}

func TestLinkedInRejectsBadTimestampBeforeAutomation(t *testing.T) {
	fake := &fakeLinkedIn{}
	p := newTestLinkedIn(fake)

	result, err := p.Publish(context.Background(), content.LinkedInPost{Body: "hi"}, "not-a-date", "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if result.Success {
		t.Fatal("result should not be success")
	}
	if fake.loginCalls != 0 || fake.postCalls != 0 || fake.scheduleCalls != 0 {
		t.Fatalf("automation touched despite invalid input: %+v", fake)
	}
}

func TestLinkedInRejectsMissingCredentials(t *testing.T) {
	fake := &fakeLinkedIn{}
	p := &LinkedInPublisher{automation: fake, logger: logging.NewLogger()}

	_, err := p.Publish(context.Background(), content.LinkedInPost{Body: "hi"}, "", "")
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if fake.loginCalls != 0 {
		t.Fatal("login attempted without credentials")
	}
}

func TestLinkedInRejectsUnknownVisibility(t *testing.T) {
	fake := &fakeLinkedIn{}
	p := newTestLinkedIn(fake)

	_, err := p.Publish(context.Background(), content.LinkedInPost{Body: "hi"}, "", "friends-only")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestLinkedInPostsImmediatelyWithoutSchedule(t *testing.T) {
	fake := &fakeLinkedIn{}
	p := newTestLinkedIn(fake)

	result, err := p.Publish(context.Background(), content.LinkedInPost{Body: "hi"}, "", "")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !result.Success || result.ScheduledFor != nil {
		t.Fatalf("expected immediate success, got %+v", result)
	}
	if fake.postCalls != 1 || fake.scheduleCalls != 0 {
		t.Fatalf("wrong automation path: %+v", fake)
	}
}

func TestLinkedInUsesPlatformScheduler(t *testing.T) {
	fake := &fakeLinkedIn{}
	p := newTestLinkedIn(fake)

	result, err := p.Publish(context.Background(), content.LinkedInPost{Body: "hi"}, "2026-09-01T10:00:00", "public")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if result.ScheduledFor == nil || result.ScheduledFor.Hour() != 10 {
		t.Fatalf("expected scheduled result, got %+v", result)
	}
	if fake.scheduleCalls != 1 || fake.postCalls != 0 {
		t.Fatalf("wrong automation path: %+v", fake)
	}
	if fake.scheduledAt.Hour() != 10 {
		t.Fatalf("schedule time not forwarded: %v", fake.scheduledAt)
	}
}

func TestLinkedInLoginFailureIsAuthentication(t *testing.T) {
	fake := &fakeLinkedIn{loginErr: errors.New("credentials rejected")}
	p := newTestLinkedIn(fake)

	result, err := p.Publish(context.Background(), content.LinkedInPost{Body: "hi"}, "", "")
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if result.ErrorDetail == "" {
		t.Fatal("expected error detail in result")
	}
	if fake.postCalls != 0 {
		t.Fatal("post attempted after failed login")
	}
}

func TestLinkedInAutomationFailureIsSingleAttempt(t *testing.T) {
	fake := &fakeLinkedIn{postErr: errors.New("post button missing")}
	p := newTestLinkedIn(fake)

	_, err := p.Publish(context.Background(), content.LinkedInPost{Body: "hi"}, "", "")
	if !errors.Is(err, ErrAutomation) {
		t.Fatalf("expected ErrAutomation, got %v", err)
	}
	// The post may have partially gone through, so exactly one attempt.
	if fake.postCalls != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", fake.postCalls)
	}
}

type fakeTwitter struct {
	postCalls     int
	scheduleCalls int
}

func (f *fakeTwitter) EnsureLoggedIn(ctx context.Context, creds Credentials) error { return nil }

func (f *fakeTwitter) PostNow(ctx context.Context, text string) error {
	f.postCalls++
	return nil
}

func (f *fakeTwitter) Schedule(ctx context.Context, text string, at time.Time) error {
	f.scheduleCalls++
	return nil
}

func TestTwitterPublishAndSchedule(t *testing.T) {
	fake := &fakeTwitter{}
	p := &TwitterPublisher{
		creds:      Credentials{Login: "handle", Password: "pw"},
		automation: fake,
		logger:     logging.NewLogger(),
	}

	if _, err := p.Publish(context.Background(), content.TwitterPost{Body: "now"}, ""); err != nil {
		t.Fatalf("publish now: %v", err)
	}
	result, err := p.Publish(context.Background(), content.TwitterPost{Body: "later"}, "2026-09-02T08:30:00")
	if err != nil {
		t.Fatalf("publish scheduled: %v", err)
	}
	if result.ScheduledFor == nil {
		t.Fatal("expected scheduled result")
	}
	if fake.postCalls != 1 || fake.scheduleCalls != 1 {
		t.Fatalf("wrong automation paths: %+v", fake)
	}
}

func TestTwitterBadTimestampSkipsAutomation(t *testing.T) {
	fake := &fakeTwitter{}
	p := &TwitterPublisher{
		creds:      Credentials{Login: "handle", Password: "pw"},
		automation: fake,
		logger:     logging.NewLogger(),
	}

	_, err := p.Publish(context.Background(), content.TwitterPost{Body: "x"}, "tomorrow-ish")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if fake.postCalls != 0 && fake.scheduleCalls != 0 {
		t.Fatalf("automation touched: %+v", fake)
	}
}
