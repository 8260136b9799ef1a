package agent

type ToolDefinition struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolDefinitions lists every tool the planner can call. Drafting tools
// add pending drafts to the run state; publishing tools push content to
// a platform and record a posted copy; task tools maintain the weekly
// plan.
var ToolDefinitions = []ToolDefinition{
	{
		Type: "function",
		Function: ToolFunction{
			Name:        "write_linkedin_post",
			Description: "Draft a LinkedIn post about a topic. The draft stays pending until posted with post_to_linkedin.",
			Parameters: toolParams(
				map[string]any{
					"topic": map[string]any{
						"type":        "string",
						"description": "What the post is about.",
					},
					"target_audience": map[string]any{
						"type":        "string",
						"description": "Who the post should speak to.",
					},
					"content_type": map[string]any{
						"type":        "string",
						"description": "Content format, e.g. viral thread, sales page, newsletter.",
					},
					"goal": map[string]any{
						"type":        "string",
						"description": "What the post should achieve: engagement, clicks, conversions, or leads.",
					},
					"post_date": map[string]any{
						"type":        "string",
						"description": "Intended publish date in ISO format (YYYY-MM-DDTHH:MM:SS), optional.",
					},
				},
				[]string{"topic"},
			),
		},
	},
	{
		Type: "function",
		Function: ToolFunction{
			Name:        "write_twitter_post",
			Description: "Draft a tweet about a topic. The draft stays pending until posted with post_to_twitter.",
			Parameters: toolParams(
				map[string]any{
					"topic": map[string]any{
						"type":        "string",
						"description": "What the tweet is about.",
					},
					"target_audience": map[string]any{
						"type":        "string",
						"description": "Who the tweet should speak to.",
					},
					"content_type": map[string]any{
						"type":        "string",
						"description": "Content format, e.g. viral thread, announcement.",
					},
					"goal": map[string]any{
						"type":        "string",
						"description": "What the tweet should achieve.",
					},
				},
				[]string{"topic"},
			),
		},
	},
	{
		Type: "function",
		Function: ToolFunction{
			Name:        "write_youtube_description",
			Description: "Draft a YouTube video title and description from a video summary.",
			Parameters: toolParams(
				map[string]any{
					"topic": map[string]any{
						"type":        "string",
						"description": "What the video is about.",
					},
					"target_audience": map[string]any{
						"type":        "string",
						"description": "Who the video is for.",
					},
					"video_summary": map[string]any{
						"type":        "string",
						"description": "Summary of the video content.",
					},
					"content_type": map[string]any{
						"type":        "string",
						"description": "Video format, e.g. tutorial, demo.",
					},
					"goal": map[string]any{
						"type":        "string",
						"description": "What the description should achieve.",
					},
				},
				[]string{"topic", "video_summary"},
			),
		},
	},
	{
		Type: "function",
		Function: ToolFunction{
			Name:        "post_to_linkedin",
			Description: "Publish a LinkedIn post, immediately or scheduled through LinkedIn's own scheduler.",
			Parameters: toolParams(
				map[string]any{
					"title": map[string]any{
						"type":        "string",
						"description": "Title of the draft being posted.",
					},
					"post": map[string]any{
						"type":        "string",
						"description": "Full text of the post.",
					},
					"visibility": map[string]any{
						"type":        "string",
						"description": "Post visibility: connections or public (default connections).",
					},
					"schedule_time": map[string]any{
						"type":        "string",
						"description": "When to publish, ISO format (YYYY-MM-DDTHH:MM:SS). Omit to post now.",
					},
				},
				[]string{"title", "post"},
			),
		},
	},
	{
		Type: "function",
		Function: ToolFunction{
			Name:        "post_to_twitter",
			Description: "Publish a tweet, immediately or scheduled through the platform's own scheduler.",
			Parameters: toolParams(
				map[string]any{
					"post": map[string]any{
						"type":        "string",
						"description": "Full text of the tweet.",
					},
					"schedule_time": map[string]any{
						"type":        "string",
						"description": "When to publish, ISO format (YYYY-MM-DDTHH:MM:SS). Omit to post now.",
					},
				},
				[]string{"post"},
			),
		},
	},
	{
		Type: "function",
		Function: ToolFunction{
			Name:        "upload_to_youtube",
			Description: "Upload a local video file to YouTube with the drafted title and description. A publish_at time keeps the video private until then.",
			Parameters: toolParams(
				map[string]any{
					"video_path": map[string]any{
						"type":        "string",
						"description": "Path to the local video file.",
					},
					"title": map[string]any{
						"type":        "string",
						"description": "Video title.",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "Video description.",
					},
					"privacy_status": map[string]any{
						"type":        "string",
						"description": "private, unlisted, or public (default private).",
					},
					"publish_at": map[string]any{
						"type":        "string",
						"description": "When to go public, ISO format (YYYY-MM-DDTHH:MM:SS). Optional.",
					},
				},
				[]string{"video_path", "title", "description"},
			),
		},
	},
	{
		Type: "function",
		Function: ToolFunction{
			Name:        "add_task",
			Description: "Add a content task to the weekly plan.",
			Parameters: toolParams(
				map[string]any{
					"description": map[string]any{
						"type":        "string",
						"description": "What content to produce.",
					},
					"scheduled_at": map[string]any{
						"type":        "string",
						"description": "When the content should go out, ISO format (YYYY-MM-DDTHH:MM:SS).",
					},
					"content_type": map[string]any{
						"type":        "string",
						"description": "Target platform: linkedin, twitter, or youtube.",
					},
				},
				[]string{"description", "scheduled_at", "content_type"},
			),
		},
	},
	{
		Type: "function",
		Function: ToolFunction{
			Name:        "delete_task",
			Description: "Remove a task from the weekly plan by its ID.",
			Parameters: toolParams(
				map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "ID of the task to remove.",
					},
				},
				[]string{"id"},
			),
		},
	},
	{
		Type: "function",
		Function: ToolFunction{
			Name:        "render_calendar",
			Description: "Render the weekly plan as an HTML calendar.",
			Parameters: toolParams(
				map[string]any{
					"week_of": map[string]any{
						"type":        "string",
						"description": "Any date inside the week to render, ISO format. Defaults to the current week.",
					},
				},
				nil,
			),
		},
	},
}

func toolParams(properties map[string]any, required []string) map[string]any {
	params := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		params["required"] = required
	}
	return params
}
