package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"outreach/internal/content"
	"outreach/internal/publish"
	"outreach/pkg/llm"
	"outreach/pkg/logging"
)

// scriptedProvider replays one turn per Complete call. A turn is either
// assistant text or a set of tool calls.
type turn struct {
	content   string
	toolCalls []llm.ToolCall
}

type scriptedProvider struct {
	turns []turn
	calls int
}

type turnStream struct {
	chunks []llm.Chunk
}

func (s *turnStream) Recv() (llm.Chunk, error) {
	if len(s.chunks) == 0 {
		return llm.Chunk{}, io.EOF
	}
	chunk := s.chunks[0]
	s.chunks = s.chunks[1:]
	return chunk, nil
}

func (s *turnStream) Close() error { return nil }

func (p *scriptedProvider) Complete(ctx context.Context, messages []llm.Message, tools []llm.Tool) (llm.Stream, error) {
	if p.calls >= len(p.turns) {
		return nil, fmt.Errorf("no scripted turn left (call %d)", p.calls)
	}
	t := p.turns[p.calls]
	p.calls++

	var chunks []llm.Chunk
	if t.content != "" {
		chunks = append(chunks, llm.Chunk{Content: t.content})
	}
	if len(t.toolCalls) > 0 {
		chunks = append(chunks, llm.Chunk{ToolCalls: t.toolCalls})
	}
	return &turnStream{chunks: chunks}, nil
}

type fakeStore struct {
	linkedin []content.LinkedInPost
	twitter  []content.TwitterPost
	youtube  []content.YouTubePost

	insertedLinkedIn []content.LinkedInPost
	insertedTwitter  []content.TwitterPost
	insertedYouTube  []content.YouTubePost

	twitterInsertErr error
}

func (f *fakeStore) ListLinkedIn(ctx context.Context) ([]content.LinkedInPost, error) {
	return f.linkedin, nil
}

func (f *fakeStore) ListTwitter(ctx context.Context) ([]content.TwitterPost, error) {
	return f.twitter, nil
}

func (f *fakeStore) ListYouTube(ctx context.Context) ([]content.YouTubePost, error) {
	return f.youtube, nil
}

func (f *fakeStore) InsertLinkedIn(ctx context.Context, posts []content.LinkedInPost) error {
	f.insertedLinkedIn = append(f.insertedLinkedIn, posts...)
	return nil
}

func (f *fakeStore) InsertTwitter(ctx context.Context, posts []content.TwitterPost) error {
	if f.twitterInsertErr != nil {
		return f.twitterInsertErr
	}
	f.insertedTwitter = append(f.insertedTwitter, posts...)
	return nil
}

func (f *fakeStore) InsertYouTube(ctx context.Context, posts []content.YouTubePost) error {
	f.insertedYouTube = append(f.insertedYouTube, posts...)
	return nil
}

type fakeComposer struct {
	pastTwitterSeen int
}

func (f *fakeComposer) ComposeLinkedIn(ctx context.Context, params content.GenerationParams, past []content.LinkedInPost) (content.LinkedInPost, error) {
	return content.LinkedInPost{Title: "About " + params.Topic, Body: "body", Status: content.StatusPending}, nil
}

func (f *fakeComposer) ComposeTwitter(ctx context.Context, params content.GenerationParams, past []content.TwitterPost) (content.TwitterPost, error) {
	f.pastTwitterSeen = len(past)
	return content.TwitterPost{Body: "tweet about " + params.Topic, Status: content.StatusPending}, nil
}

func (f *fakeComposer) ComposeYouTube(ctx context.Context, params content.GenerationParams, past []content.YouTubePost) (content.YouTubePost, error) {
	return content.YouTubePost{Title: params.Topic, Description: "desc", Status: content.StatusPending}, nil
}

type fakeTwitterPoster struct {
	posts []string
	err   error
}

func (f *fakeTwitterPoster) Publish(ctx context.Context, post content.TwitterPost, scheduleAt string) (publish.Result, error) {
	if f.err != nil {
		return publish.Result{ErrorDetail: f.err.Error()}, f.err
	}
	f.posts = append(f.posts, post.Body)
	at, _ := publish.ParseScheduleTime(scheduleAt)
	return publish.Result{Success: true, ScheduledFor: at}, nil
}

type fakeLinkedInPoster struct {
	posts []string
}

func (f *fakeLinkedInPoster) Publish(ctx context.Context, post content.LinkedInPost, scheduleAt, visibility string) (publish.Result, error) {
	f.posts = append(f.posts, post.Body)
	return publish.Result{Success: true}, nil
}

func newTestOrchestrator(provider llm.Provider, store *fakeStore, twitter TwitterPoster, linkedin LinkedInPoster) (*Orchestrator, *fakeComposer) {
	composer := &fakeComposer{}
	o := NewOrchestrator(OrchestratorConfig{
		LLMProvider: provider,
		Composer:    composer,
		LinkedIn:    linkedin,
		Twitter:     twitter,
		Store:       store,
		Logger:      logging.NewLogger(),
		Now:         func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) },
	})
	return o, composer
}

func TestRunWithoutToolCallsFinishesImmediately(t *testing.T) {
	provider := &scriptedProvider{turns: []turn{
		{content: "Nothing to do today."},
	}}
	store := &fakeStore{}
	o, _ := newTestOrchestrator(provider, store, &fakeTwitterPoster{}, &fakeLinkedInPoster{})

	result, err := o.Run(context.Background(), "status check")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.FinalMessage != "Nothing to do today." {
		t.Fatalf("unexpected final message: %q", result.FinalMessage)
	}
	if result.Rounds != 1 || len(result.ToolCalls) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(store.insertedTwitter)+len(store.insertedLinkedIn)+len(store.insertedYouTube) != 0 {
		t.Fatal("nothing should be persisted")
	}
}

func TestRunDraftThenPostPersistsOnlyPosted(t *testing.T) {
	provider := &scriptedProvider{turns: []turn{
		{toolCalls: []llm.ToolCall{{ID: "c1", Name: "write_twitter_post", Arguments: `{"topic":"launch"}`}}},
		{toolCalls: []llm.ToolCall{{ID: "c2", Name: "post_to_twitter", Arguments: `{"post":"tweet about launch"}`}}},
		{content: "Posted the launch tweet."},
	}}
	store := &fakeStore{twitter: []content.TwitterPost{{ID: 1, Body: "old tweet", Status: content.StatusPosted}}}
	poster := &fakeTwitterPoster{}
	o, composer := newTestOrchestrator(provider, store, poster, &fakeLinkedInPoster{})

	result, err := o.Run(context.Background(), "write and post a launch tweet")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Rounds != 3 {
		t.Fatalf("expected 3 rounds, got %d", result.Rounds)
	}
	// Drafting saw the stored history.
	if composer.pastTwitterSeen != 1 {
		t.Fatalf("composer should have seen 1 past tweet, saw %d", composer.pastTwitterSeen)
	}
	if len(poster.posts) != 1 || poster.posts[0] != "tweet about launch" {
		t.Fatalf("publisher got wrong posts: %v", poster.posts)
	}
	// State holds the pending draft and the posted copy.
	if len(result.State.NewTwitterPosts) != 2 {
		t.Fatalf("expected 2 new tweets in state, got %d", len(result.State.NewTwitterPosts))
	}
	// Only the posted copy reaches the store.
	if len(store.insertedTwitter) != 1 || store.insertedTwitter[0].Status != content.StatusPosted {
		t.Fatalf("unexpected persisted tweets: %+v", store.insertedTwitter)
	}
	if result.Persisted[content.PlatformTwitter] != 1 {
		t.Fatalf("unexpected persisted counts: %+v", result.Persisted)
	}
	if result.FinalMessage != "Posted the launch tweet." {
		t.Fatalf("unexpected final message: %q", result.FinalMessage)
	}
}

func TestRunToolFailureBecomesToolMessage(t *testing.T) {
	provider := &scriptedProvider{turns: []turn{
		{toolCalls: []llm.ToolCall{{ID: "c1", Name: "post_to_twitter", Arguments: `{"post":"x","schedule_time":"bad-date"}`}}},
		{content: "The schedule time was invalid."},
	}}
	store := &fakeStore{}
	poster := &fakeTwitterPoster{err: fmt.Errorf("%w: invalid schedule time", publish.ErrValidation)}
	o, _ := newTestOrchestrator(provider, store, poster, &fakeLinkedInPoster{})

	result, err := o.Run(context.Background(), "post now")
	if err != nil {
		t.Fatalf("run should not abort on tool failure: %v", err)
	}
	if len(result.ToolCalls) != 1 || result.ToolCalls[0].Error == "" {
		t.Fatalf("expected recorded tool failure, got %+v", result.ToolCalls)
	}
	var toolMsg *llm.Message
	for i, m := range result.State.Messages {
		if m.Role == "tool" {
			toolMsg = &result.State.Messages[i]
		}
	}
	if toolMsg == nil || !strings.Contains(toolMsg.Content, "failed") {
		t.Fatalf("expected failure surfaced as tool message, got %+v", toolMsg)
	}
	if toolMsg.ToolCallID != "c1" {
		t.Fatalf("tool message not linked to call: %+v", toolMsg)
	}
	if len(store.insertedTwitter) != 0 {
		t.Fatal("failed post must not be persisted")
	}
}

func TestRunUnknownToolKeepsGoing(t *testing.T) {
	provider := &scriptedProvider{turns: []turn{
		{toolCalls: []llm.ToolCall{{ID: "c1", Name: "launch_rocket", Arguments: `{}`}}},
		{content: "That tool does not exist."},
	}}
	o, _ := newTestOrchestrator(provider, &fakeStore{}, &fakeTwitterPoster{}, &fakeLinkedInPoster{})

	result, err := o.Run(context.Background(), "do something odd")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.ToolCalls[0].Error == "" || !strings.Contains(result.ToolCalls[0].Error, "unknown tool") {
		t.Fatalf("expected unknown tool error, got %+v", result.ToolCalls)
	}
	if result.FinalMessage != "That tool does not exist." {
		t.Fatalf("unexpected final message: %q", result.FinalMessage)
	}
}

func TestRunStopsAtMaxRounds(t *testing.T) {
	// Every turn asks for another task; the loop must cut it off.
	turns := make([]turn, 10)
	for i := range turns {
		turns[i] = turn{toolCalls: []llm.ToolCall{{
			ID:        fmt.Sprintf("c%d", i),
			Name:      "add_task",
			Arguments: `{"description":"more","scheduled_at":"2026-03-05T10:00:00","content_type":"twitter"}`,
		}}}
	}
	provider := &scriptedProvider{turns: turns}
	store := &fakeStore{}
	composer := &fakeComposer{}
	o := NewOrchestrator(OrchestratorConfig{
		LLMProvider: provider,
		Composer:    composer,
		Store:       store,
		Logger:      logging.NewLogger(),
		MaxRounds:   3,
	})

	result, err := o.Run(context.Background(), "plan forever")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Rounds != 3 {
		t.Fatalf("expected 3 rounds, got %d", result.Rounds)
	}
	if provider.calls != 3 {
		t.Fatalf("expected 3 model calls, got %d", provider.calls)
	}
	if !strings.Contains(result.FinalMessage, "round limit") {
		t.Fatalf("expected limit message, got %q", result.FinalMessage)
	}
	if len(result.State.Tasks) != 3 {
		t.Fatalf("expected 3 tasks accumulated, got %d", len(result.State.Tasks))
	}
}

func TestRunTaskLifecycleAndCalendar(t *testing.T) {
	provider := &scriptedProvider{turns: []turn{
		{toolCalls: []llm.ToolCall{
			{ID: "c1", Name: "add_task", Arguments: `{"description":"launch recap","scheduled_at":"2026-03-03T10:00:00","content_type":"linkedin"}`},
			{ID: "c2", Name: "add_task", Arguments: `{"description":"teaser","scheduled_at":"2026-03-04T09:00:00","content_type":"twitter"}`},
		}},
		{toolCalls: []llm.ToolCall{{ID: "c3", Name: "render_calendar", Arguments: `{}`}}},
		{content: "Plan is ready."},
	}}
	o, _ := newTestOrchestrator(provider, &fakeStore{}, &fakeTwitterPoster{}, &fakeLinkedInPoster{})

	result, err := o.Run(context.Background(), "plan the week")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.State.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(result.State.Tasks))
	}
	if result.State.Tasks[0].ID == result.State.Tasks[1].ID {
		t.Fatal("task IDs must be unique")
	}
	if !strings.Contains(result.State.CalendarHTML, "launch recap") {
		t.Fatal("calendar missing first task")
	}
	if !strings.Contains(result.State.CalendarHTML, "teaser") {
		t.Fatal("calendar missing second task")
	}
}

func TestRunDeleteUnknownTaskIsNoop(t *testing.T) {
	provider := &scriptedProvider{turns: []turn{
		{toolCalls: []llm.ToolCall{{ID: "c1", Name: "add_task", Arguments: `{"description":"keep me","scheduled_at":"2026-03-03T10:00:00","content_type":"twitter"}`}}},
		{toolCalls: []llm.ToolCall{{ID: "c2", Name: "delete_task", Arguments: `{"id":"no-such-task"}`}}},
		{content: "Removed."},
	}}
	o, _ := newTestOrchestrator(provider, &fakeStore{}, &fakeTwitterPoster{}, &fakeLinkedInPoster{})

	result, err := o.Run(context.Background(), "add then delete")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.State.Tasks) != 1 || result.State.Tasks[0].Description != "keep me" {
		t.Fatalf("unknown-id delete must be a no-op, got %+v", result.State.Tasks)
	}
}

func TestRunPersistFailureIsolatedPerPlatform(t *testing.T) {
	provider := &scriptedProvider{turns: []turn{
		{toolCalls: []llm.ToolCall{
			{ID: "c1", Name: "post_to_twitter", Arguments: `{"post":"tw"}`},
			{ID: "c2", Name: "post_to_linkedin", Arguments: `{"title":"t","post":"li"}`},
		}},
		{content: "Both posted."},
	}}
	store := &fakeStore{twitterInsertErr: errors.New("connection refused")}
	o, _ := newTestOrchestrator(provider, store, &fakeTwitterPoster{}, &fakeLinkedInPoster{})

	result, err := o.Run(context.Background(), "post everywhere")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.PersistFailures) != 1 || !strings.Contains(result.PersistFailures[0], "twitter") {
		t.Fatalf("expected twitter persist failure, got %v", result.PersistFailures)
	}
	if result.Persisted[content.PlatformLinkedIn] != 1 {
		t.Fatalf("linkedin should persist despite twitter failure: %+v", result.Persisted)
	}
	if len(store.insertedLinkedIn) != 1 {
		t.Fatalf("linkedin insert missing: %+v", store.insertedLinkedIn)
	}
}

func TestRunToolsExecuteInRequestOrder(t *testing.T) {
	provider := &scriptedProvider{turns: []turn{
		{toolCalls: []llm.ToolCall{
			{ID: "c1", Name: "write_twitter_post", Arguments: `{"topic":"first"}`},
			{ID: "c2", Name: "write_twitter_post", Arguments: `{"topic":"second"}`},
		}},
		{content: "Done."},
	}}
	o, composer := newTestOrchestrator(provider, &fakeStore{}, &fakeTwitterPoster{}, &fakeLinkedInPoster{})

	result, err := o.Run(context.Background(), "two drafts")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	drafts := result.State.NewTwitterPosts
	if len(drafts) != 2 || !strings.Contains(drafts[0].Body, "first") || !strings.Contains(drafts[1].Body, "second") {
		t.Fatalf("drafts out of order: %+v", drafts)
	}
	// The second compose saw the first draft as history.
	if composer.pastTwitterSeen != 1 {
		t.Fatalf("second draft should have seen 1 past tweet, saw %d", composer.pastTwitterSeen)
	}
}

func TestMergeToolCallsReplacesArgumentsByID(t *testing.T) {
	merged := mergeToolCalls(
		[]llm.ToolCall{{ID: "a", Name: "add_task", Arguments: `{"par`}},
		[]llm.ToolCall{{ID: "a", Name: "add_task", Arguments: `{"partial":true}`}, {ID: "b", Name: "delete_task"}},
	)
	if len(merged) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(merged))
	}
	if merged[0].Arguments != `{"partial":true}` {
		t.Fatalf("arguments not replaced: %q", merged[0].Arguments)
	}
}
