package content

import "time"

// Status tracks a draft through its lifecycle. The only legal transition
// is pending -> posted.
type Status string

const (
	StatusPending Status = "pending"
	StatusPosted  Status = "posted"
)

// Platform identifies a publishing target.
type Platform string

const (
	PlatformLinkedIn Platform = "linkedin"
	PlatformTwitter  Platform = "twitter"
	PlatformYouTube  Platform = "youtube"
)

// GenerationParams carries the strategy inputs for a generated draft.
// The text fields are free-form from the caller or the deciding model.
type GenerationParams struct {
	Topic        string
	Audience     string
	Platform     Platform
	ContentType  string
	Goal         string
	VideoSummary string
}

// LinkedInPost is a LinkedIn draft. ID is zero until the store assigns one.
type LinkedInPost struct {
	ID     int64      `json:"id,omitempty"`
	Title  string     `json:"title"`
	Body   string     `json:"post"`
	Status Status     `json:"status"`
	PostAt *time.Time `json:"post_date,omitempty"`
}

// TwitterPost is a tweet draft.
type TwitterPost struct {
	ID     int64      `json:"id,omitempty"`
	Body   string     `json:"post"`
	Status Status     `json:"status"`
	PostAt *time.Time `json:"post_date,omitempty"`
}

// YouTubePost is a video title/description draft plus the video location.
type YouTubePost struct {
	ID          int64      `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	VideoURL    string     `json:"video_url"`
	Status      Status     `json:"status"`
	PostAt      *time.Time `json:"post_date,omitempty"`
}

// ScheduledTask is a planned content action owned by the working session.
type ScheduledTask struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Description string    `json:"description"`
	ContentType Platform  `json:"content_type"`
	Status      Status    `json:"status"`
}

// DeleteTask marks a task for removal by ID. Unknown IDs are a no-op.
type DeleteTask struct {
	ID string `json:"id"`
}

// MarkPosted returns the post with status advanced to posted. A posted
// draft never goes back to pending.
func (p LinkedInPost) MarkPosted(at time.Time) LinkedInPost {
	p.Status = StatusPosted
	p.PostAt = &at
	return p
}

func (p TwitterPost) MarkPosted(at time.Time) TwitterPost {
	p.Status = StatusPosted
	p.PostAt = &at
	return p
}

func (p YouTubePost) MarkPosted(at time.Time) YouTubePost {
	p.Status = StatusPosted
	p.PostAt = &at
	return p
}
