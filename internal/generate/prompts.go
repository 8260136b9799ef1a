package generate

import (
	"fmt"
	"strings"

	"outreach/internal/content"
)

// BrandProfile seeds every prompt with who is speaking. Configured once
// at startup so the same binary can write for different products.
type BrandProfile struct {
	Company string
	Product string
	Mission string
}

func (b BrandProfile) intro() string {
	return fmt.Sprintf("You work for %s, the company behind %q. %s", b.Company, b.Product, b.Mission)
}

const socialSystemPrompt = `You are a world-class copywriter and content strategist.
%s
Your job is to write high-performing content for the given brief.
Instructions:
1. Start with a scroll-stopping hook
2. Use clear, concise, natural language
3. Apply storytelling, persuasion, and value delivery
4. Follow proven frameworks (AIDA, PAS, Hook-Point-Action, etc.)
5. End with a strong CTA
Write like a human. No fluff. No cringe. Make it hit.
Respond with ONLY a JSON object of the form %s, nothing else.`

const youtubeSystemPrompt = `You are a world-class YouTube content strategist and SEO expert.
%s
Your job is to write high-performing YouTube video descriptions for the given brief.
Instructions:
1. Start with a compelling hook that matches the video title
2. Include relevant keywords naturally throughout the description
3. Provide a brief overview of what viewers will learn
4. Include relevant links and resources
5. End with a call-to-action for engagement (like, subscribe, comment)
6. Keep it under 5000 characters
Respond with ONLY a JSON object of the form {"title": "...", "description": "..."}, nothing else.`

func systemPromptFor(platform content.Platform, brand BrandProfile) string {
	switch platform {
	case content.PlatformLinkedIn:
		return fmt.Sprintf(socialSystemPrompt, brand.intro(), `{"title": "...", "post": "..."}`)
	case content.PlatformTwitter:
		return fmt.Sprintf(socialSystemPrompt, brand.intro(), `{"post": "..."}`) +
			"\nThe post must fit in a single tweet (max 280 characters)."
	case content.PlatformYouTube:
		return fmt.Sprintf(youtubeSystemPrompt, brand.intro())
	default:
		return fmt.Sprintf(socialSystemPrompt, brand.intro(), `{"title": "...", "post": "..."}`)
	}
}

func buildBrief(params content.GenerationParams, pastExamples []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", params.Topic)
	if params.Audience != "" {
		fmt.Fprintf(&b, "Target audience: %s\n", params.Audience)
	}
	fmt.Fprintf(&b, "Platform: %s\n", params.Platform)
	if params.ContentType != "" {
		fmt.Fprintf(&b, "Content type: %s\n", params.ContentType)
	}
	if params.Goal != "" {
		fmt.Fprintf(&b, "Goal: %s\n", params.Goal)
	}
	if params.VideoSummary != "" {
		fmt.Fprintf(&b, "\nVideo summary:\n%s\n", params.VideoSummary)
	}

	if len(pastExamples) > 0 {
		b.WriteString("\nUse the past posts as a reference for tone and style, but do not repeat them:\n")
		for i, example := range pastExamples {
			if i >= 10 {
				break
			}
			fmt.Fprintf(&b, "---\n%s\n", example)
		}
	}

	return b.String()
}
