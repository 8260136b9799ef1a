package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"outreach/internal/content"
	"outreach/pkg/llm"
	"outreach/pkg/logging"
)

const (
	maxTweetLength = 280
	composeTimeout = 60 * time.Second
)

// ErrGeneration marks a draft the model produced that does not satisfy
// the schema (unparseable JSON, empty required fields). The draft is
// discarded; nothing partial reaches state or storage.
var ErrGeneration = errors.New("generation failure")

type ComposerConfig struct {
	LLM    llm.Provider
	Brand  BrandProfile
	Logger logging.Logger
}

// Composer turns generation briefs into platform drafts. One model call
// per draft, strict JSON out, validated before it is returned.
type Composer struct {
	llm    llm.Provider
	brand  BrandProfile
	logger logging.Logger
}

func NewComposer(cfg ComposerConfig) *Composer {
	return &Composer{
		llm:    cfg.LLM,
		brand:  cfg.Brand,
		logger: cfg.Logger,
	}
}

func (c *Composer) ComposeLinkedIn(ctx context.Context, params content.GenerationParams, past []content.LinkedInPost) (content.LinkedInPost, error) {
	params.Platform = content.PlatformLinkedIn
	examples := make([]string, 0, len(past))
	for _, p := range past {
		examples = append(examples, p.Body)
	}

	var draft struct {
		Title string `json:"title"`
		Post  string `json:"post"`
	}
	if err := c.composeJSON(ctx, params, examples, &draft); err != nil {
		return content.LinkedInPost{}, err
	}
	if draft.Title == "" || draft.Post == "" {
		return content.LinkedInPost{}, fmt.Errorf("%w: linkedin draft missing title or post", ErrGeneration)
	}
	return content.LinkedInPost{
		Title:  draft.Title,
		Body:   draft.Post,
		Status: content.StatusPending,
	}, nil
}

func (c *Composer) ComposeTwitter(ctx context.Context, params content.GenerationParams, past []content.TwitterPost) (content.TwitterPost, error) {
	params.Platform = content.PlatformTwitter
	examples := make([]string, 0, len(past))
	for _, p := range past {
		examples = append(examples, p.Body)
	}

	var draft struct {
		Post string `json:"post"`
	}
	if err := c.composeJSON(ctx, params, examples, &draft); err != nil {
		return content.TwitterPost{}, err
	}
	if draft.Post == "" {
		return content.TwitterPost{}, fmt.Errorf("%w: tweet draft is empty", ErrGeneration)
	}
	if len(draft.Post) > maxTweetLength {
		c.logger.WithField("length", len(draft.Post)).Debug("Composer: tweet too long, truncating")
		draft.Post = truncateAtWord(draft.Post, maxTweetLength)
	}
	return content.TwitterPost{
		Body:   draft.Post,
		Status: content.StatusPending,
	}, nil
}

func (c *Composer) ComposeYouTube(ctx context.Context, params content.GenerationParams, past []content.YouTubePost) (content.YouTubePost, error) {
	params.Platform = content.PlatformYouTube
	examples := make([]string, 0, len(past))
	for _, p := range past {
		examples = append(examples, p.Description)
	}

	var draft struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.composeJSON(ctx, params, examples, &draft); err != nil {
		return content.YouTubePost{}, err
	}
	if draft.Title == "" || draft.Description == "" {
		return content.YouTubePost{}, fmt.Errorf("%w: youtube draft missing title or description", ErrGeneration)
	}
	return content.YouTubePost{
		Title:       draft.Title,
		Description: draft.Description,
		Status:      content.StatusPending,
	}, nil
}

// composeJSON runs one generation and decodes the model's reply into
// out. A reply that does not decode gets a single corrective retry
// before the draft is rejected.
func (c *Composer) composeJSON(ctx context.Context, params content.GenerationParams, examples []string, out any) error {
	if c.llm == nil {
		return errors.New("LLM provider not configured")
	}

	system := systemPromptFor(params.Platform, c.brand)
	brief := buildBrief(params, examples)

	raw, err := c.generate(ctx, system, brief)
	if err != nil {
		return fmt.Errorf("compose %s draft: %w", params.Platform, err)
	}

	if decodeErr := json.Unmarshal(extractJSON(raw), out); decodeErr != nil {
		c.logger.WithError(decodeErr).Debug("Composer: reply not valid JSON, retrying")
		raw, err = c.generate(ctx, system, brief+"\n\nIMPORTANT: Your previous response was not valid JSON. Respond with only the JSON object.")
		if err != nil {
			return fmt.Errorf("compose %s draft retry: %w", params.Platform, err)
		}
		if decodeErr = json.Unmarshal(extractJSON(raw), out); decodeErr != nil {
			return fmt.Errorf("%w: %v", ErrGeneration, decodeErr)
		}
	}
	return nil
}

func (c *Composer) generate(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, composeTimeout)
	defer cancel()

	stream, err := c.llm.Complete(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, nil)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var reply strings.Builder
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		reply.WriteString(chunk.Content)
	}

	return strings.TrimSpace(reply.String()), nil
}

// extractJSON strips markdown fences and surrounding prose, keeping the
// outermost object. Models wrap JSON despite instructions often enough.
func extractJSON(raw string) []byte {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return []byte(raw[start : end+1])
	}
	return []byte(raw)
}

func truncateAtWord(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	truncated := s[:maxLen]
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace > maxLen/2 {
		return truncated[:lastSpace]
	}
	return truncated
}
