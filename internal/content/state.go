package content

import "outreach/pkg/llm"

// State is the working state of one agent run. Existing drafts come from
// the store at load time; new drafts accumulate as tools execute and are
// the only candidates for persistence at the end of the run. A State is
// owned by exactly one run and never shared.
type State struct {
	Messages []llm.Message

	LinkedInPosts    []LinkedInPost
	TwitterPosts     []TwitterPost
	YouTubePosts     []YouTubePost
	NewLinkedInPosts []LinkedInPost
	NewTwitterPosts  []TwitterPost
	NewYouTubePosts  []YouTubePost

	Tasks []ScheduledTask

	CalendarHTML string
}

// Delta is the incremental update produced by executing one tool call.
// Nil/empty fields leave the corresponding state field untouched.
type Delta struct {
	Messages []llm.Message

	NewLinkedInPosts []LinkedInPost
	NewTwitterPosts  []TwitterPost
	NewYouTubePosts  []YouTubePost

	// TaskOps is applied left to right: a ScheduledTask appends, a
	// DeleteTask removes every accumulated task with a matching ID.
	TaskOps []TaskOp

	CalendarHTML string
}

// TaskOp is either a ScheduledTask insertion or a DeleteTask marker.
type TaskOp interface {
	isTaskOp()
}

func (ScheduledTask) isTaskOp() {}
func (DeleteTask) isTaskOp()    {}

// Apply merges a delta into the state under the per-field policies:
// append-only for messages and drafts, keyed delete for tasks, last
// write wins for the calendar artifact. Applying an empty delta returns
// the state unchanged.
func (s State) Apply(d Delta) State {
	s.Messages = Append(s.Messages, d.Messages)
	s.NewLinkedInPosts = Append(s.NewLinkedInPosts, d.NewLinkedInPosts)
	s.NewTwitterPosts = Append(s.NewTwitterPosts, d.NewTwitterPosts)
	s.NewYouTubePosts = Append(s.NewYouTubePosts, d.NewYouTubePosts)
	s.Tasks = MergeTasks(s.Tasks, d.TaskOps)
	if d.CalendarHTML != "" {
		s.CalendarHTML = d.CalendarHTML
	}
	return s
}
