package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"outreach/internal/calendar"
	"outreach/internal/content"
	"outreach/internal/publish"
	"outreach/pkg/llm"
	"outreach/pkg/logging"
)

const defaultMaxToolRounds = 8

// Phase labels the stage a run is in, for logging.
type Phase string

const (
	PhaseLoading       Phase = "loading"
	PhaseDeciding      Phase = "deciding"
	PhaseExecutingTool Phase = "executing_tool"
	PhaseFinalizing    Phase = "finalizing"
	PhaseDone          Phase = "done"
)

// Composer drafts platform content from a brief.
type Composer interface {
	ComposeLinkedIn(ctx context.Context, params content.GenerationParams, past []content.LinkedInPost) (content.LinkedInPost, error)
	ComposeTwitter(ctx context.Context, params content.GenerationParams, past []content.TwitterPost) (content.TwitterPost, error)
	ComposeYouTube(ctx context.Context, params content.GenerationParams, past []content.YouTubePost) (content.YouTubePost, error)
}

type LinkedInPoster interface {
	Publish(ctx context.Context, post content.LinkedInPost, scheduleAt, visibility string) (publish.Result, error)
}

type TwitterPoster interface {
	Publish(ctx context.Context, post content.TwitterPost, scheduleAt string) (publish.Result, error)
}

type VideoUploader interface {
	Upload(ctx context.Context, videoPath string, post content.YouTubePost, privacyStatus, publishAt string) (publish.Result, error)
}

// ContentStore is the slice of the persistence layer the run loop needs:
// hydration at start, posted drafts at the end.
type ContentStore interface {
	ListLinkedIn(ctx context.Context) ([]content.LinkedInPost, error)
	ListTwitter(ctx context.Context) ([]content.TwitterPost, error)
	ListYouTube(ctx context.Context) ([]content.YouTubePost, error)
	InsertLinkedIn(ctx context.Context, posts []content.LinkedInPost) error
	InsertTwitter(ctx context.Context, posts []content.TwitterPost) error
	InsertYouTube(ctx context.Context, posts []content.YouTubePost) error
}

type OrchestratorConfig struct {
	LLMProvider llm.Provider
	Composer    Composer
	LinkedIn    LinkedInPoster
	Twitter     TwitterPoster
	YouTube     VideoUploader
	Store       ContentStore
	Logger      logging.Logger
	MaxRounds   int
	Now         func() time.Time
}

// Orchestrator runs the agent loop: hydrate state, let the model decide,
// execute its tool calls in order, fold the resulting deltas back into
// state, and persist what got posted once the model stops calling tools.
type Orchestrator struct {
	llmProvider llm.Provider
	composer    Composer
	linkedin    LinkedInPoster
	twitter     TwitterPoster
	youtube     VideoUploader
	store       ContentStore
	logger      logging.Logger
	tools       []llm.Tool
	maxRounds   int
	now         func() time.Time
}

type ToolCallRecord struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Error     string          `json:"error,omitempty"`
}

type RunResult struct {
	// FinalMessage is the model's closing summary.
	FinalMessage string

	Rounds    int
	ToolCalls []ToolCallRecord

	// State is the full accumulated run state, calendar artifact included.
	State content.State

	// Persisted counts posted drafts written per platform. A platform
	// that failed to persist appears in PersistFailures instead; one
	// platform failing does not block the others.
	Persisted       map[content.Platform]int
	PersistFailures []string
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	tools := make([]llm.Tool, 0, len(ToolDefinitions))
	for _, tool := range ToolDefinitions {
		tools = append(tools, llm.Tool{
			Name:        tool.Function.Name,
			Description: tool.Function.Description,
			Parameters:  tool.Function.Parameters,
		})
	}
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		llmProvider: cfg.LLMProvider,
		composer:    cfg.Composer,
		linkedin:    cfg.LinkedIn,
		twitter:     cfg.Twitter,
		youtube:     cfg.YouTube,
		store:       cfg.Store,
		logger:      cfg.Logger,
		tools:       tools,
		maxRounds:   maxRounds,
		now:         now,
	}
}

func (o *Orchestrator) Run(ctx context.Context, userPrompt string) (RunResult, error) {
	if o == nil || o.llmProvider == nil {
		return RunResult{}, errors.New("llm provider is required")
	}

	state, err := o.loadState(ctx)
	if err != nil {
		runsTotal.WithLabelValues("error").Inc()
		return RunResult{}, fmt.Errorf("load state: %w", err)
	}
	state = state.Apply(content.Delta{
		Messages: []llm.Message{{Role: "user", Content: userPrompt}},
	})

	result := RunResult{Persisted: make(map[content.Platform]int)}
	var response strings.Builder

	for round := 0; round < o.maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			runsTotal.WithLabelValues("error").Inc()
			return RunResult{}, err
		}
		result.Rounds = round + 1
		o.logPhase(PhaseDeciding, round)

		messages := append([]llm.Message{{Role: "system", Content: systemPrompt(o.now())}}, state.Messages...)

		llmStart := time.Now()
		stream, err := o.llmProvider.Complete(ctx, messages, o.tools)
		if err != nil {
			llmCallsTotal.WithLabelValues("error").Inc()
			runsTotal.WithLabelValues("error").Inc()
			return RunResult{}, err
		}

		response.Reset()
		var pendingToolCalls []llm.ToolCall
		for {
			chunk, recvErr := stream.Recv()
			if recvErr != nil {
				if errors.Is(recvErr, io.EOF) {
					break
				}
				_ = stream.Close()
				llmCallsTotal.WithLabelValues("error").Inc()
				runsTotal.WithLabelValues("error").Inc()
				return RunResult{}, recvErr
			}
			if chunk.Content != "" {
				response.WriteString(chunk.Content)
			}
			if len(chunk.ToolCalls) > 0 {
				pendingToolCalls = mergeToolCalls(pendingToolCalls, chunk.ToolCalls)
			}
		}
		_ = stream.Close()
		llmCallsTotal.WithLabelValues("success").Inc()
		llmDuration.Observe(time.Since(llmStart).Seconds())

		// No tool calls means the model is done deciding.
		if len(pendingToolCalls) == 0 {
			result.FinalMessage = strings.TrimSpace(response.String())
			break
		}

		state = state.Apply(content.Delta{
			Messages: []llm.Message{{
				Role:      "assistant",
				Content:   response.String(),
				ToolCalls: pendingToolCalls,
			}},
		})

		// Tools run one at a time, in the order the model asked for
		// them: later calls may depend on earlier drafts.
		for _, call := range pendingToolCalls {
			o.logPhase(PhaseExecutingTool, round)
			record := ToolCallRecord{Name: call.Name}
			if call.Arguments != "" {
				record.Arguments = json.RawMessage(call.Arguments)
			}

			toolStart := time.Now()
			delta, err := o.executeTool(ctx, state, call)
			toolDuration.WithLabelValues(call.Name).Observe(time.Since(toolStart).Seconds())
			if err != nil {
				toolCallsTotal.WithLabelValues(call.Name, "error").Inc()
				o.logger.WithError(err).WithField("tool", call.Name).Warn("Tool execution failed")
				record.Error = err.Error()
				// Failures go back to the model as tool results; the
				// run keeps going.
				delta = content.Delta{Messages: []llm.Message{{
					Role:       "tool",
					Content:    fmt.Sprintf("Tool %s failed: %v", call.Name, err),
					Name:       call.Name,
					ToolCallID: call.ID,
				}}}
			} else {
				toolCallsTotal.WithLabelValues(call.Name, "success").Inc()
			}
			result.ToolCalls = append(result.ToolCalls, record)
			state = state.Apply(delta)
		}

		if round == o.maxRounds-2 {
			state = state.Apply(content.Delta{Messages: []llm.Message{{
				Role:    "user",
				Content: "[System note: you have one remaining tool round. Wrap up and summarize what was done.]",
			}}})
		}
		if round == o.maxRounds-1 {
			result.FinalMessage = "Reached the tool round limit before finishing."
		}
	}

	o.logPhase(PhaseFinalizing, result.Rounds)
	o.finalize(ctx, state, &result)

	result.State = state
	runsTotal.WithLabelValues("success").Inc()
	runRounds.Observe(float64(result.Rounds))
	o.logPhase(PhaseDone, result.Rounds)
	return result, nil
}

// loadState hydrates run state from the store. Corrupt rows were already
// filtered by the store; everything loaded counts as posted history.
func (o *Orchestrator) loadState(ctx context.Context) (content.State, error) {
	o.logPhase(PhaseLoading, 0)
	var state content.State
	if o.store == nil {
		return state, nil
	}

	linkedin, err := o.store.ListLinkedIn(ctx)
	if err != nil {
		return state, err
	}
	twitter, err := o.store.ListTwitter(ctx)
	if err != nil {
		return state, err
	}
	youtube, err := o.store.ListYouTube(ctx)
	if err != nil {
		return state, err
	}
	state.LinkedInPosts = linkedin
	state.TwitterPosts = twitter
	state.YouTubePosts = youtube
	return state, nil
}

// finalize persists the run's posted drafts. Pending drafts are
// discarded: only content that actually reached a platform is worth
// keeping as history. Platforms persist independently.
func (o *Orchestrator) finalize(ctx context.Context, state content.State, result *RunResult) {
	if o.store == nil {
		return
	}

	if posted := postedLinkedIn(state.NewLinkedInPosts); len(posted) > 0 {
		if err := o.store.InsertLinkedIn(ctx, posted); err != nil {
			o.logger.WithError(err).Error("Failed to persist LinkedIn posts")
			result.PersistFailures = append(result.PersistFailures, fmt.Sprintf("linkedin: %v", err))
		} else {
			result.Persisted[content.PlatformLinkedIn] = len(posted)
			draftsPersistedTotal.WithLabelValues("linkedin").Add(float64(len(posted)))
		}
	}
	if posted := postedTwitter(state.NewTwitterPosts); len(posted) > 0 {
		if err := o.store.InsertTwitter(ctx, posted); err != nil {
			o.logger.WithError(err).Error("Failed to persist Twitter posts")
			result.PersistFailures = append(result.PersistFailures, fmt.Sprintf("twitter: %v", err))
		} else {
			result.Persisted[content.PlatformTwitter] = len(posted)
			draftsPersistedTotal.WithLabelValues("twitter").Add(float64(len(posted)))
		}
	}
	if posted := postedYouTube(state.NewYouTubePosts); len(posted) > 0 {
		if err := o.store.InsertYouTube(ctx, posted); err != nil {
			o.logger.WithError(err).Error("Failed to persist YouTube posts")
			result.PersistFailures = append(result.PersistFailures, fmt.Sprintf("youtube: %v", err))
		} else {
			result.Persisted[content.PlatformYouTube] = len(posted)
			draftsPersistedTotal.WithLabelValues("youtube").Add(float64(len(posted)))
		}
	}
}

func postedLinkedIn(posts []content.LinkedInPost) []content.LinkedInPost {
	var posted []content.LinkedInPost
	for _, p := range posts {
		if p.Status == content.StatusPosted {
			posted = append(posted, p)
		}
	}
	return posted
}

func postedTwitter(posts []content.TwitterPost) []content.TwitterPost {
	var posted []content.TwitterPost
	for _, p := range posts {
		if p.Status == content.StatusPosted {
			posted = append(posted, p)
		}
	}
	return posted
}

func postedYouTube(posts []content.YouTubePost) []content.YouTubePost {
	var posted []content.YouTubePost
	for _, p := range posts {
		if p.Status == content.StatusPosted {
			posted = append(posted, p)
		}
	}
	return posted
}

func (o *Orchestrator) executeTool(ctx context.Context, state content.State, call llm.ToolCall) (content.Delta, error) {
	switch call.Name {
	case "write_linkedin_post":
		return o.writeLinkedInPost(ctx, state, call)
	case "write_twitter_post":
		return o.writeTwitterPost(ctx, state, call)
	case "write_youtube_description":
		return o.writeYouTubeDescription(ctx, state, call)
	case "post_to_linkedin":
		return o.postToLinkedIn(ctx, call)
	case "post_to_twitter":
		return o.postToTwitter(ctx, call)
	case "upload_to_youtube":
		return o.uploadToYouTube(ctx, call)
	case "add_task":
		return o.addTask(call)
	case "delete_task":
		return o.deleteTask(call)
	case "render_calendar":
		return o.renderCalendar(state, call)
	default:
		return content.Delta{}, fmt.Errorf("unknown tool %q", call.Name)
	}
}

func toolReply(call llm.ToolCall, text string) content.Delta {
	return content.Delta{Messages: []llm.Message{{
		Role:       "tool",
		Content:    text,
		Name:       call.Name,
		ToolCallID: call.ID,
	}}}
}

type writePostInput struct {
	Topic          string `json:"topic"`
	TargetAudience string `json:"target_audience"`
	ContentType    string `json:"content_type"`
	Goal           string `json:"goal"`
	VideoSummary   string `json:"video_summary"`
	PostDate       string `json:"post_date"`
}

func (in writePostInput) params() content.GenerationParams {
	return content.GenerationParams{
		Topic:        in.Topic,
		Audience:     in.TargetAudience,
		ContentType:  in.ContentType,
		Goal:         in.Goal,
		VideoSummary: in.VideoSummary,
	}
}

func (o *Orchestrator) writeLinkedInPost(ctx context.Context, state content.State, call llm.ToolCall) (content.Delta, error) {
	if o.composer == nil {
		return content.Delta{}, errors.New("composer not configured")
	}
	var in writePostInput
	if err := json.Unmarshal([]byte(call.Arguments), &in); err != nil {
		return content.Delta{}, fmt.Errorf("parse arguments: %w", err)
	}
	postAt, err := publish.ParseScheduleTime(in.PostDate)
	if err != nil {
		return content.Delta{}, err
	}

	past := append(append([]content.LinkedInPost{}, state.LinkedInPosts...), state.NewLinkedInPosts...)
	draft, err := o.composer.ComposeLinkedIn(ctx, in.params(), past)
	if err != nil {
		return content.Delta{}, err
	}
	draft.PostAt = postAt

	delta := toolReply(call, fmt.Sprintf("LinkedIn post written: %s\n\n%s", draft.Title, draft.Body))
	delta.NewLinkedInPosts = []content.LinkedInPost{draft}
	return delta, nil
}

func (o *Orchestrator) writeTwitterPost(ctx context.Context, state content.State, call llm.ToolCall) (content.Delta, error) {
	if o.composer == nil {
		return content.Delta{}, errors.New("composer not configured")
	}
	var in writePostInput
	if err := json.Unmarshal([]byte(call.Arguments), &in); err != nil {
		return content.Delta{}, fmt.Errorf("parse arguments: %w", err)
	}

	past := append(append([]content.TwitterPost{}, state.TwitterPosts...), state.NewTwitterPosts...)
	draft, err := o.composer.ComposeTwitter(ctx, in.params(), past)
	if err != nil {
		return content.Delta{}, err
	}

	delta := toolReply(call, fmt.Sprintf("Twitter post written: %s", draft.Body))
	delta.NewTwitterPosts = []content.TwitterPost{draft}
	return delta, nil
}

func (o *Orchestrator) writeYouTubeDescription(ctx context.Context, state content.State, call llm.ToolCall) (content.Delta, error) {
	if o.composer == nil {
		return content.Delta{}, errors.New("composer not configured")
	}
	var in writePostInput
	if err := json.Unmarshal([]byte(call.Arguments), &in); err != nil {
		return content.Delta{}, fmt.Errorf("parse arguments: %w", err)
	}

	past := append(append([]content.YouTubePost{}, state.YouTubePosts...), state.NewYouTubePosts...)
	draft, err := o.composer.ComposeYouTube(ctx, in.params(), past)
	if err != nil {
		return content.Delta{}, err
	}

	delta := toolReply(call, fmt.Sprintf("YouTube description written: %s", draft.Title))
	delta.NewYouTubePosts = []content.YouTubePost{draft}
	return delta, nil
}

func (o *Orchestrator) postToLinkedIn(ctx context.Context, call llm.ToolCall) (content.Delta, error) {
	if o.linkedin == nil {
		return content.Delta{}, errors.New("linkedin publisher not configured")
	}
	var in struct {
		Title        string `json:"title"`
		Post         string `json:"post"`
		Visibility   string `json:"visibility"`
		ScheduleTime string `json:"schedule_time"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &in); err != nil {
		return content.Delta{}, fmt.Errorf("parse arguments: %w", err)
	}

	draft := content.LinkedInPost{Title: in.Title, Body: in.Post, Status: content.StatusPending}
	res, err := o.linkedin.Publish(ctx, draft, in.ScheduleTime, in.Visibility)
	if err != nil {
		return content.Delta{}, err
	}

	postedAt := o.now()
	reply := "Successfully posted to LinkedIn"
	if res.ScheduledFor != nil {
		postedAt = *res.ScheduledFor
		reply = fmt.Sprintf("Successfully scheduled LinkedIn post for %s", postedAt.Format("2006-01-02 15:04"))
	}

	delta := toolReply(call, reply)
	delta.NewLinkedInPosts = []content.LinkedInPost{draft.MarkPosted(postedAt)}
	return delta, nil
}

func (o *Orchestrator) postToTwitter(ctx context.Context, call llm.ToolCall) (content.Delta, error) {
	if o.twitter == nil {
		return content.Delta{}, errors.New("twitter publisher not configured")
	}
	var in struct {
		Post         string `json:"post"`
		ScheduleTime string `json:"schedule_time"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &in); err != nil {
		return content.Delta{}, fmt.Errorf("parse arguments: %w", err)
	}

	draft := content.TwitterPost{Body: in.Post, Status: content.StatusPending}
	res, err := o.twitter.Publish(ctx, draft, in.ScheduleTime)
	if err != nil {
		return content.Delta{}, err
	}

	postedAt := o.now()
	reply := "Successfully posted to Twitter"
	if res.ScheduledFor != nil {
		postedAt = *res.ScheduledFor
		reply = fmt.Sprintf("Successfully scheduled Twitter post for %s", postedAt.Format("2006-01-02 15:04"))
	}

	delta := toolReply(call, reply)
	delta.NewTwitterPosts = []content.TwitterPost{draft.MarkPosted(postedAt)}
	return delta, nil
}

func (o *Orchestrator) uploadToYouTube(ctx context.Context, call llm.ToolCall) (content.Delta, error) {
	if o.youtube == nil {
		return content.Delta{}, errors.New("youtube uploader not configured")
	}
	var in struct {
		VideoPath     string `json:"video_path"`
		Title         string `json:"title"`
		Description   string `json:"description"`
		PrivacyStatus string `json:"privacy_status"`
		PublishAt     string `json:"publish_at"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &in); err != nil {
		return content.Delta{}, fmt.Errorf("parse arguments: %w", err)
	}

	draft := content.YouTubePost{Title: in.Title, Description: in.Description, Status: content.StatusPending}
	res, err := o.youtube.Upload(ctx, in.VideoPath, draft, in.PrivacyStatus, in.PublishAt)
	if err != nil {
		return content.Delta{}, err
	}

	draft.VideoURL = "https://www.youtube.com/watch?v=" + res.PlatformRef
	postedAt := o.now()
	reply := fmt.Sprintf("Successfully uploaded to YouTube: %s", draft.VideoURL)
	if res.ScheduledFor != nil {
		postedAt = *res.ScheduledFor
		reply = fmt.Sprintf("Successfully uploaded to YouTube, goes public %s: %s",
			postedAt.Format("2006-01-02 15:04"), draft.VideoURL)
	}

	delta := toolReply(call, reply)
	delta.NewYouTubePosts = []content.YouTubePost{draft.MarkPosted(postedAt)}
	return delta, nil
}

func (o *Orchestrator) addTask(call llm.ToolCall) (content.Delta, error) {
	var in struct {
		Description string `json:"description"`
		ScheduledAt string `json:"scheduled_at"`
		ContentType string `json:"content_type"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &in); err != nil {
		return content.Delta{}, fmt.Errorf("parse arguments: %w", err)
	}
	if strings.TrimSpace(in.Description) == "" {
		return content.Delta{}, errors.New("description is required")
	}
	at, err := publish.ParseScheduleTime(in.ScheduledAt)
	if err != nil {
		return content.Delta{}, err
	}
	if at == nil {
		return content.Delta{}, errors.New("scheduled_at is required")
	}
	platform := content.Platform(strings.ToLower(in.ContentType))
	switch platform {
	case content.PlatformLinkedIn, content.PlatformTwitter, content.PlatformYouTube:
	default:
		return content.Delta{}, fmt.Errorf("unknown content_type %q", in.ContentType)
	}

	task := content.ScheduledTask{
		ID:          uuid.NewString(),
		CreatedAt:   o.now(),
		ScheduledAt: *at,
		Description: in.Description,
		ContentType: platform,
		Status:      content.StatusPending,
	}

	delta := toolReply(call, fmt.Sprintf("Task %s added for %s: %s", task.ID, at.Format("2006-01-02 15:04"), task.Description))
	delta.TaskOps = []content.TaskOp{task}
	return delta, nil
}

func (o *Orchestrator) deleteTask(call llm.ToolCall) (content.Delta, error) {
	var in struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &in); err != nil {
		return content.Delta{}, fmt.Errorf("parse arguments: %w", err)
	}
	if in.ID == "" {
		return content.Delta{}, errors.New("id is required")
	}

	delta := toolReply(call, fmt.Sprintf("Task %s deleted", in.ID))
	delta.TaskOps = []content.TaskOp{content.DeleteTask{ID: in.ID}}
	return delta, nil
}

func (o *Orchestrator) renderCalendar(state content.State, call llm.ToolCall) (content.Delta, error) {
	var in struct {
		WeekOf string `json:"week_of"`
	}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &in); err != nil {
			return content.Delta{}, fmt.Errorf("parse arguments: %w", err)
		}
	}
	weekOf := o.now()
	if at, err := publish.ParseScheduleTime(in.WeekOf); err != nil {
		return content.Delta{}, err
	} else if at != nil {
		weekOf = *at
	}

	html, err := calendar.Render(state.Tasks, weekOf)
	if err != nil {
		return content.Delta{}, err
	}

	delta := toolReply(call, fmt.Sprintf("Calendar rendered for the week of %s with %d tasks",
		calendar.WeekStart(weekOf).Format("2006-01-02"), len(state.Tasks)))
	delta.CalendarHTML = html
	return delta, nil
}

func (o *Orchestrator) logPhase(phase Phase, round int) {
	if o.logger == nil {
		return
	}
	o.logger.WithFields(logging.Fields{"phase": string(phase), "round": round}).Debug("Agent phase")
}

// mergeToolCalls accumulates tool calls across streaming chunks. A chunk
// carrying an already-seen ID replaces that call's arguments (providers
// may split one call across frames); new IDs are appended.
func mergeToolCalls(existing, incoming []llm.ToolCall) []llm.ToolCall {
	for _, inc := range incoming {
		found := false
		for i, ex := range existing {
			if ex.ID != "" && ex.ID == inc.ID {
				existing[i].Arguments = inc.Arguments
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, inc)
		}
	}
	return existing
}
